package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeParameterType(t *testing.T) {
	tests := []struct {
		raw    string
		want   ParameterType
		wantOK bool
	}{
		{"Essential", Essential, true},
		{"Optional", Optional, true},
		{"  Essential  ", Essential, true},
		{"Optional (Industrial/Processor)", Optional, true},
		{"INDUSTRIAL use", Optional, true},
		{"for processor", Optional, true},
		{"Foo", "", false},
		{"essential", "", false},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeParameterType(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapExtToFormat(t *testing.T) {
	assert.Equal(t, XLSX, MapExtToFormat(".XLSX"))
	assert.Equal(t, CSV, MapExtToFormat("csv"))
	assert.Equal(t, "", MapExtToFormat(".xls"))
}

func TestOutcomeKindIsSkip(t *testing.T) {
	assert.False(t, OutcomeInserted.IsSkip())
	assert.False(t, OutcomeFatal.IsSkip())
	assert.True(t, OutcomeSkippedMissingField.IsSkip())
	assert.True(t, OutcomeSkippedMissingReference.IsSkip())
	assert.True(t, OutcomeSkippedError.IsSkip())
}

func TestParameterTypes(t *testing.T) {
	assert.Equal(t, []string{"Essential", "Optional"}, ParameterTypes())
}
