package constants

import (
	"strings"
)

type ParameterType string

const (
	Essential ParameterType = "Essential"
	Optional  ParameterType = "Optional"
)

var allParameterTypes = []ParameterType{
	Essential,
	Optional,
}

// ParameterTypes returns the stored values accepted by commodity_wise_assaying_details.parameter_type.
func ParameterTypes() []string {
	result := make([]string, len(allParameterTypes))
	for i, pt := range allParameterTypes {
		result[i] = string(pt)
	}
	return result
}

// optionalMarkers flag the "Optional (Industrial/Processor)" family of labels.
var optionalMarkers = []string{"industrial", "processor"}

// NormalizeParameterType maps a raw sheet label onto a stored parameter type.
// Labels mentioning industrial or processor use are Optional; otherwise only
// exact Essential/Optional pass. ok is false when the label is unrecognized.
func NormalizeParameterType(raw string) (ParameterType, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	lower := strings.ToLower(s)
	for _, m := range optionalMarkers {
		if strings.Contains(lower, m) {
			return Optional, true
		}
	}

	for _, pt := range allParameterTypes {
		if s == string(pt) {
			return pt, true
		}
	}
	return "", false
}
