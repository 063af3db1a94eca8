package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/assay-loader/constants"
	"github.com/joseph-ayodele/assay-loader/internal/common"
)

// Options controls how a location is parsed.
type Options struct {
	// Sheet is the worksheet read from XLSX sources; defaults to constants.DefaultSheet.
	Sheet string
	// Aliases maps alternative header spellings (case-insensitive) onto canonical names.
	Aliases map[string]string
}

// Reader opens tabular sources from the local filesystem or S3.
type Reader struct {
	objects ObjectGetter
	logger  *slog.Logger
}

type ReaderOption func(*Reader)

// WithObjectGetter enables s3:// locations.
func WithObjectGetter(g ObjectGetter) ReaderOption {
	return func(r *Reader) { r.objects = g }
}

func NewReader(logger *slog.Logger, opts ...ReaderOption) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reader{logger: logger}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Open reads the whole source at location into memory.
func (r *Reader) Open(ctx context.Context, location string, opts Options) (*Table, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, common.NewAppError("SOURCE_ERROR", "source location is required", common.ErrInvalidInput)
	}
	if opts.Sheet == "" {
		opts.Sheet = constants.DefaultSheet
	}

	var (
		format = formatOf(location)
		data   []byte
		err    error
	)
	if format == "" {
		return nil, common.NewAppError("SOURCE_ERROR", fmt.Sprintf("unsupported source extension: %q", location), common.ErrInvalidInput)
	}

	if bucket, key, ok := parseS3URI(location); ok {
		data, err = r.fetchS3(ctx, bucket, key)
	} else {
		data, err = readLocal(location)
	}
	if err != nil {
		r.logger.Error("failed to read source", "location", location, "error", err)
		if errors.Is(err, fs.ErrNotExist) {
			err = errors.Join(common.ErrNotFound, err)
		}
		return nil, common.NewAppError("SOURCE_ERROR", "failed to read source", errors.Join(common.ErrSource, err))
	}

	var records [][]string
	switch format {
	case constants.XLSX:
		records, err = readXLSX(data, opts.Sheet)
	case constants.CSV:
		records, err = readCSV(data)
	}
	if err != nil {
		r.logger.Error("failed to parse source", "location", location, "format", format, "error", err)
		return nil, common.NewAppError("SOURCE_ERROR", "failed to parse source", errors.Join(common.ErrSource, err))
	}

	header, rows := buildTable(records, opts.Aliases)
	t := &Table{Location: location, Format: format, Header: header, Rows: rows}
	r.logger.Info("source loaded", "location", location, "format", format, "columns", len(header), "rows", len(rows))
	return t, nil
}

func formatOf(location string) string {
	if _, key, ok := parseS3URI(location); ok {
		return constants.MapExtToFormat(path.Ext(key))
	}
	return constants.MapExtToFormat(filepath.Ext(location))
}

func readLocal(p string) ([]byte, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	return os.ReadFile(abs)
}

// readXLSX returns the raw cell values of sheet, so formulas yield their cached results.
func readXLSX(data []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return nil, fmt.Errorf("sheet %q not found (available: %s)", sheet, strings.Join(f.GetSheetList(), ", "))
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	var out [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		out = append(out, rec)
	}
}
