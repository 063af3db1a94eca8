package ingest

import (
	"strings"

	"github.com/joseph-ayodele/assay-loader/constants"
	"github.com/joseph-ayodele/assay-loader/internal/common"
	"github.com/joseph-ayodele/assay-loader/internal/source"
)

// requiredColumns are checked in this order; missing names are reported in it.
var requiredColumns = []string{
	constants.ColCommodity,
	constants.ColParameterType,
	constants.ColParameterName,
	constants.ColUoM,
	constants.ColMeasurementMethod,
	constants.ColSampleSize,
}

// ValidateRow checks that every required field is non-empty after trimming.
// Parameter Type is checked after normalization, so unrecognized labels count as missing.
func ValidateRow(row source.Row) (bool, []string) {
	v := common.NewValidator()
	for _, col := range requiredColumns {
		value := row.Get(col)
		if col == constants.ColParameterType {
			pt, _ := constants.NormalizeParameterType(value)
			value = string(pt)
		}
		v.Field(col, value, common.Required)
	}
	if !v.HasErrors() {
		return true, nil
	}
	return false, v.Fields()
}

func missingFieldsReason(missing []string) string {
	return "Missing required fields: " + strings.Join(missing, ", ")
}
