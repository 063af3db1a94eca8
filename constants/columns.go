package constants

// Canonical header names of the assaying master sheet.
const (
	ColCommodity         = "Commodity"
	ColParameterType     = "Parameter Type"
	ColParameterName     = "Parameter Name"
	ColUoM               = "UoM"
	ColMeasurementMethod = "Measurement Unit / Method"
	ColSampleSize        = "Sample size"
	ColSequenceNo        = "Sequence No"
	ColRange1            = "Range-1 (Min - Max)"
	ColRange2            = "Range-2 (Min - Max)"
	ColRange3            = "Range-3 (Min - Max)"
	ColFAQRange          = "FAQ Range"
)

// Header names of the commodity types CSV.
const (
	ColCommodityTypeName = "commodity_type_name"
	ColDescription       = "description"
	ColStatus            = "status"
	ColCreatedBy         = "created_by"
	ColUpdatedBy         = "updated_by"
)
