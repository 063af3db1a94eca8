package export

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/assay-loader/constants"
	"github.com/joseph-ayodele/assay-loader/internal/ingest"
)

func sampleSummary() ingest.Summary {
	return ingest.Summary{
		Inserted: 4,
		Skipped:  2,
		Reasons: []ingest.SkipReason{
			{Reason: "Missing required fields: UoM", Count: 1},
			{Reason: "Missing reference data: Commodity 'Tin'", Count: 1},
		},
		Rows: []ingest.SkippedRow{
			{Index: 1, Line: 3, Kind: constants.OutcomeSkippedMissingField, Reason: "Missing required fields: UoM", Commodity: "Gold", Parameter: "Purity"},
			{Index: 5, Line: 7, Kind: constants.OutcomeSkippedMissingReference, Reason: "Missing reference data: Commodity 'Tin'", Commodity: "Tin", Parameter: "Moisture"},
		},
	}
}

func TestSkipReportXLSX(t *testing.T) {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	data, err := svc.SkipReportXLSX(sampleSummary())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Skipped", "Reasons"}, f.GetSheetList())

	rows, err := f.GetRows("Skipped")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Row", "Sheet Line", "Outcome", "Reason", "Commodity", "Parameter Name"}, rows[0])
	assert.Equal(t, []string{"5", "7", "SKIPPED_MISSING_REFERENCE", "Missing reference data: Commodity 'Tin'", "Tin", "Moisture"}, rows[2])

	reasons, err := f.GetRows("Reasons")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "Missing required fields: UoM"}, reasons[1])
	assert.Equal(t, []string{"Inserted", "4"}, reasons[4])
	assert.Equal(t, []string{"Skipped", "2"}, reasons[5])
}

func TestWriteSkipReport(t *testing.T) {
	svc := NewService(nil)
	path := filepath.Join(t.TempDir(), "reports", "skipped.xlsx")
	require.NoError(t, svc.WriteSkipReport(path, sampleSummary()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	v, err := f.GetCellValue("Skipped", "D2")
	require.NoError(t, err)
	assert.Equal(t, "Missing required fields: UoM", v)
}

func TestWriteRows_UnknownSheet(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	require.NoError(t, writeRows(f, "Sheet1", 1, [][]any{{"Count", "Reason"}}))
	err := writeRows(f, "Reasons", 3, [][]any{{"Inserted", 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write Reasons row 3")
}
