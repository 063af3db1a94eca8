package entity

// ReferenceKind identifies one master-data table the pipeline resolves names against.
type ReferenceKind string

const (
	KindCommodity         ReferenceKind = "commodity"
	KindAssayingParameter ReferenceKind = "assaying_parameter"
	KindMeasurementMethod ReferenceKind = "measurement_method"
	KindUoM               ReferenceKind = "uom"
)

// ReferenceKinds lists every kind in resolution order.
var ReferenceKinds = []ReferenceKind{
	KindCommodity,
	KindAssayingParameter,
	KindMeasurementMethod,
	KindUoM,
}

// Label is the human-readable name used in skip reasons.
func (k ReferenceKind) Label() string {
	switch k {
	case KindCommodity:
		return "Commodity"
	case KindAssayingParameter:
		return "Parameter"
	case KindMeasurementMethod:
		return "Measurement method"
	case KindUoM:
		return "UOM"
	}
	return string(k)
}
