package source

import "strings"

// Row is one data row of a table, keyed by canonical header name.
type Row struct {
	// Index is the 0-based position of the row among the table's data rows.
	Index int
	// Line is the 1-based line (or sheet row) the row was read from.
	Line   int
	Fields map[string]string
}

// Get returns the named field, or "" when the column is absent.
func (r Row) Get(name string) string {
	return r.Fields[name]
}

// Table is a fully materialized source: header plus data rows in source order.
type Table struct {
	Location string
	Format   string
	Header   []string
	Rows     []Row
}

// HasColumn reports whether the header carries name.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// buildTable turns raw records into a Table. The first non-empty record is the
// header; fully blank records are dropped.
func buildTable(records [][]string, aliases map[string]string) ([]string, []Row) {
	var (
		header []string
		rows   []Row
	)
	for i, rec := range records {
		if isBlank(rec) {
			continue
		}
		if header == nil {
			header = canonicalHeader(rec, aliases)
			continue
		}
		fields := make(map[string]string, len(header))
		for col, name := range header {
			if name == "" {
				continue
			}
			if _, dup := fields[name]; dup {
				continue
			}
			if col < len(rec) {
				fields[name] = rec[col]
			} else {
				fields[name] = ""
			}
		}
		rows = append(rows, Row{Index: len(rows), Line: i + 1, Fields: fields})
	}
	return header, rows
}

func canonicalHeader(rec []string, aliases map[string]string) []string {
	lookup := make(map[string]string, len(aliases))
	for alias, canonical := range aliases {
		lookup[strings.ToLower(strings.TrimSpace(alias))] = canonical
	}
	header := make([]string, len(rec))
	for i, h := range rec {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if c, ok := lookup[strings.ToLower(h)]; ok {
			h = c
		}
		header[i] = h
	}
	return header
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
