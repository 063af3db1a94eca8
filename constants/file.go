package constants

import "strings"

// Source formats understood by the tabular source reader.
const (
	XLSX = "XLSX"
	CSV  = "CSV"
)

// AllowedExtensions maps source file extensions (lowercased, no dot) to formats.
var AllowedExtensions = map[string]string{
	"xlsx": XLSX,
	"xlsm": XLSX,
	"csv":  CSV,
}

// DefaultSheet is the worksheet read when none is configured.
const DefaultSheet = "Sheet1"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the source format for ext, or "" if unsupported.
func MapExtToFormat(ext string) string {
	return AllowedExtensions[NormalizeExt(ext)]
}
