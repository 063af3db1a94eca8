package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/assay-loader/constants"
	"github.com/joseph-ayodele/assay-loader/internal/common"
)

func clearDBEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DB_URL", "DB_HOST", "DB_NAME", "DB_USER", "DB_PASSWORD", "LOG_FILE", "LOG_LEVEL", "METRICS_FILE", "SOURCE_SHEET"} {
		t.Setenv(k, "")
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestUsageErrors(t *testing.T) {
	clearDBEnv(t)
	logFile := filepath.Join(t.TempDir(), "app.log")

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"assaying-details", "--dsn", "sqlite::memory:", "--log-file", logFile}},
		{"unknown flag", []string{"assaying-details", "--bogus"}},
		{"unknown command", []string{"reticulate"}},
		{"extra args", []string{"migrate", "now", "--inmem"}},
		{"no dsn", []string{"migrate", "--log-file", logFile}},
		{"missing config", []string{"migrate", "--inmem", "--config", filepath.Join(t.TempDir(), "nope.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, common.ExitUsage, common.ExitCode(err))
			assert.Contains(t, stderr, "Error:")
		})
	}
}

func writeMasterSheet(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	rows := [][]any{
		{constants.ColCommodity, constants.ColParameterType, constants.ColParameterName, constants.ColUoM,
			constants.ColMeasurementMethod, constants.ColSampleSize, constants.ColSequenceNo, constants.ColRange1},
		{"Wheat", "Essential", "Moisture", "%", "Oven", "100g", 1, "10 - 12"},
		{"Wheat", "Essential", "Protein", "", "Kjeldahl", "50g", 2, ""},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	p := filepath.Join(dir, "AssayCommodityMaster.xlsx")
	require.NoError(t, f.SaveAs(p))
	return p
}

func TestAssayingDetails_EndToEnd(t *testing.T) {
	clearDBEnv(t)
	dir := t.TempDir()
	dsn := "sqlite:" + filepath.Join(dir, "assay.db")
	base := []string{"--dsn", dsn, "--log-file", filepath.Join(dir, "app.log")}

	out, _, err := run(t, append([]string{"migrate"}, base...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema is up to date.")

	sheet := writeMasterSheet(t, dir)
	report := filepath.Join(dir, "skipped.xlsx")
	metricsFile := filepath.Join(dir, "assay.prom")
	out, _, err = run(t, append([]string{"assaying-details", "--file", sheet, "--report", report, "--metrics-file", metricsFile}, base...)...)
	require.NoError(t, err, "skipped rows still complete the run")
	assert.Contains(t, out, "Success: 0, Skipped: 2")
	assert.Contains(t, out, "1 records skipped because: Missing required fields: UoM")
	assert.Contains(t, out, "Missing reference data: Commodity 'Wheat', Parameter 'Moisture', Measurement method 'Oven', UOM '%'")

	assert.FileExists(t, report)
	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `assay_loader_rows_total{loader="assaying_details",outcome="SKIPPED_MISSING_FIELD"} 1`)

	logData, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "data insertion completed")
}

func TestAssayingDetails_MissingSourceFails(t *testing.T) {
	clearDBEnv(t)
	dir := t.TempDir()
	_, _, err := run(t, "assaying-details", "--inmem", "--log-file", filepath.Join(dir, "app.log"),
		"--file", filepath.Join(dir, "absent.xlsx"))
	require.Error(t, err)
	assert.Equal(t, common.ExitFailure, common.ExitCode(err))
}

func TestMasterLoaders_EndToEnd(t *testing.T) {
	clearDBEnv(t)
	dir := t.TempDir()
	flags := []string{"--inmem", "--log-file", filepath.Join(dir, "app.log")}

	csvPath := filepath.Join(dir, "commodity_types_valid.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"commodity_type_name,description,status,created_by,updated_by\n"+
			"Cereals,Grains,ACTIVE,admin,admin\n"+
			"Pulses,,ACTIVE,admin,admin\n"+
			",orphan,,,\n"), 0o600))
	out, _, err := run(t, append([]string{"commodity-types", "--file", csvPath}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted 2 commodity types (1 skipped).")

	sheet := writeMasterSheet(t, dir)
	out, _, err = run(t, append([]string{"measurement-methods", "--file", sheet}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted: 2, Existing: 0, Duplicates: 0, Blank: 0")
}

func TestExecute_InterruptedRunIsFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.AddCommand(&cobra.Command{
		Use: "interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cancel()
			return fmt.Errorf("row 1: %w", cmd.Context().Err())
		},
	})

	err := executeCmd(ctx, root, []string{"interrupted"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, common.ExitFailure, common.ExitCode(err))
	assert.Contains(t, stderr.String(), "RUN_ABORTED")
}

func TestExecute_UnreadableConfigIsFailure(t *testing.T) {
	clearDBEnv(t)
	dir := t.TempDir()
	_, _, err := run(t, "migrate", "--inmem", "--config", dir, "--log-file", filepath.Join(dir, "app.log"))
	require.Error(t, err)
	assert.Equal(t, common.ExitFailure, common.ExitCode(err))
	assert.True(t, errors.Is(err, common.ErrSource))
}
