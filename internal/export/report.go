package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/assay-loader/internal/ingest"
)

const reportSheet = "Skipped"


// Service writes run reports as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// SkipReportXLSX returns a workbook listing every skipped row of sum followed
// by a sheet with the reason frequency table.
func (s *Service) SkipReportXLSX(sum ingest.Summary) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, err
	}
	skipped := [][]any{{"Row", "Sheet Line", "Outcome", "Reason", "Commodity", "Parameter Name"}}
	for _, r := range sum.Rows {
		skipped = append(skipped, []any{r.Index, r.Line, string(r.Kind), r.Reason, r.Commodity, r.Parameter})
	}
	if err := writeRows(f, reportSheet, 1, skipped); err != nil {
		return nil, err
	}

	const reasons = "Reasons"
	if _, err := f.NewSheet(reasons); err != nil {
		return nil, err
	}
	freq := [][]any{{"Count", "Reason"}}
	for _, r := range sum.Reasons {
		freq = append(freq, []any{r.Count, r.Reason})
	}
	if err := writeRows(f, reasons, 1, freq); err != nil {
		return nil, err
	}
	totals := [][]any{{"Inserted", sum.Inserted}, {"Skipped", sum.Skipped}}
	if err := writeRows(f, reasons, len(freq)+2, totals); err != nil {
		return nil, err
	}

	// Widen a few columns
	_ = f.SetColWidth(reportSheet, "A", "C", 14)
	_ = f.SetColWidth(reportSheet, "D", "D", 80) // reason
	_ = f.SetColWidth(reportSheet, "E", "F", 28)
	_ = f.SetColWidth(reasons, "B", "B", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("skip report built",
		"run_id", sum.RunID,
		"rows", len(sum.Rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// writeRows writes rows to sheet starting at row number first.
func writeRows(f *excelize.File, sheet string, first int, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, first+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, first+i, err)
		}
	}
	return nil
}

// WriteSkipReport builds the skip report and saves it at path.
func (s *Service) WriteSkipReport(path string, sum ingest.Summary) error {
	data, err := s.SkipReportXLSX(sum)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	s.logger.Info("skip report written", "path", path)
	return nil
}
