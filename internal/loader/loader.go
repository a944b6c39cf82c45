// Package loader acquires tables from external boundaries: delimited files,
// spreadsheets, SQLite databases, and exported record JSON. Loaders produce a
// rectangular table with inferred column kinds; downstream packages rely on
// those kinds instead of re-sniffing values.
package loader

import (
	"strings"

	"github.com/KaramelBytes/dashloom/internal/table"
)

// buildColumns turns a string grid (header + rows) into typed columns. A
// column becomes numeric or datetime only when every non-empty value parses
// that way; anything else stays text. Empty strings are nulls.
func buildColumns(header []string, rows [][]string) []table.Column {
	cols := make([]table.Column, len(header))
	for i, name := range header {
		cols[i] = inferColumn(strings.TrimSpace(name), column(rows, i))
	}
	return cols
}

func column(rows [][]string, idx int) []string {
	vals := make([]string, len(rows))
	for r, row := range rows {
		if idx < len(row) {
			vals[r] = strings.TrimSpace(row[idx])
		}
	}
	return vals
}

func inferColumn(name string, vals []string) table.Column {
	numeric, datetime, nonEmpty := true, true, 0
	for _, v := range vals {
		if v == "" {
			continue
		}
		nonEmpty++
		if numeric {
			if _, ok := table.ParseNumber(v); !ok {
				numeric = false
			}
		}
		if datetime {
			if _, ok := table.ParseTime(v); !ok {
				datetime = false
			}
		}
	}
	kind := table.Text
	if nonEmpty > 0 {
		switch {
		case numeric:
			kind = table.Numeric
		case datetime:
			kind = table.Datetime
		}
	}
	cells := make([]table.Cell, len(vals))
	for r, v := range vals {
		if v == "" {
			cells[r] = table.NullCell()
			continue
		}
		switch kind {
		case table.Numeric:
			n, _ := table.ParseNumber(v)
			cells[r] = table.NumCell(n)
		case table.Datetime:
			ts, _ := table.ParseTime(v)
			cells[r] = table.TimeCell(ts)
		default:
			cells[r] = table.StrCell(v)
		}
	}
	return table.Column{Name: name, Kind: kind, Cells: cells}
}
