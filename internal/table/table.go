// Package table defines the in-memory tabular model shared by the profiler,
// cleaner, transformer, and stores. A Table is column-major: every column
// carries an explicit semantic kind and a uniform cell slice with per-cell
// null flags, replacing any loose per-value type sniffing downstream.
package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the semantic type of a column.
type Kind int

const (
	Numeric Kind = iota
	Text
	Categorical
	Datetime
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	case Categorical:
		return "categorical"
	case Datetime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Cell is a single value. Exactly one of the payload fields is meaningful,
// selected by the owning column's Kind; Null overrides them all.
type Cell struct {
	Null bool
	Num  float64
	Str  string
	Time time.Time
}

// NumCell constructs a numeric cell.
func NumCell(v float64) Cell { return Cell{Num: v} }

// StrCell constructs a text/categorical cell.
func StrCell(s string) Cell { return Cell{Str: s} }

// TimeCell constructs a datetime cell.
func TimeCell(t time.Time) Cell { return Cell{Time: t} }

// NullCell constructs a null cell.
func NullCell() Cell { return Cell{Null: true} }

// Key renders a cell as a stable string for group-by keys and row
// fingerprints. Not a display format.
func (c Cell) Key(k Kind) string {
	if c.Null {
		return "\x00"
	}
	switch k {
	case Numeric:
		return strconv.FormatFloat(c.Num, 'g', -1, 64)
	case Datetime:
		return c.Time.UTC().Format(time.RFC3339Nano)
	default:
		return c.Str
	}
}

// Column is a named, uniformly typed cell sequence.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// DType returns the interchange dtype string for the column. Numeric columns
// report "integer" only when every non-null value is whole.
func (c *Column) DType() string {
	switch c.Kind {
	case Numeric:
		for _, cell := range c.Cells {
			if cell.Null {
				continue
			}
			if cell.Num != float64(int64(cell.Num)) {
				return "float"
			}
		}
		return "integer"
	case Text:
		return "text"
	case Categorical:
		return "categorical"
	case Datetime:
		return "datetime"
	}
	return "text"
}

// KindForDType maps an interchange dtype string back to a column kind.
func KindForDType(dtype string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(dtype)) {
	case "integer", "int", "int64", "float", "float64", "floating-point", "numeric":
		return Numeric, true
	case "text", "string", "object":
		return Text, true
	case "categorical", "category":
		return Categorical, true
	case "datetime", "datetime64[ns]", "date":
		return Datetime, true
	}
	return Text, false
}

// Table is a rectangular set of named columns. Stored tables are treated as
// immutable; every transforming operation returns a fresh Table.
type Table struct {
	cols []Column
}

// New builds a table, verifying all columns have equal length and names are
// unique.
func New(cols ...Column) (*Table, error) {
	if len(cols) == 0 {
		return &Table{}, nil
	}
	n := len(cols[0].Cells)
	seen := make(map[string]bool, len(cols))
	for i := range cols {
		if len(cols[i].Cells) != n {
			return nil, fmt.Errorf("column %q has %d rows, want %d", cols[i].Name, len(cols[i].Cells), n)
		}
		if seen[cols[i].Name] {
			return nil, fmt.Errorf("duplicate column name %q", cols[i].Name)
		}
		seen[cols[i].Name] = true
	}
	return &Table{cols: cols}, nil
}

// MustNew is New for programmatic construction where the shape is known good
// (fixtures, generated tables).
func MustNew(cols ...Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows reports the row count.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Cells)
}

// NumCols reports the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the column slice. Callers must not mutate it; use Clone
// when a writable copy is needed.
func (t *Table) Columns() []Column { return t.cols }

// Names returns column names in declaration order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i := range t.cols {
		names[i] = t.cols[i].Name
	}
	return names
}

// Column returns the named column, or false if absent.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.cols {
		if t.cols[i].Name == name {
			return &t.cols[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy sharing no backing storage with the receiver.
func (t *Table) Clone() *Table {
	out := make([]Column, len(t.cols))
	for i := range t.cols {
		cells := make([]Cell, len(t.cols[i].Cells))
		copy(cells, t.cols[i].Cells)
		out[i] = Column{Name: t.cols[i].Name, Kind: t.cols[i].Kind, Cells: cells}
	}
	return &Table{cols: out}
}

// Filter returns a new table keeping only rows where keep[i] is true.
func (t *Table) Filter(keep []bool) *Table {
	out := make([]Column, len(t.cols))
	for i := range t.cols {
		cells := make([]Cell, 0, len(t.cols[i].Cells))
		for r, cell := range t.cols[i].Cells {
			if r < len(keep) && keep[r] {
				cells = append(cells, cell)
			}
		}
		out[i] = Column{Name: t.cols[i].Name, Kind: t.cols[i].Kind, Cells: cells}
	}
	return &Table{cols: out}
}

// RowKey fingerprints a row for duplicate detection.
func (t *Table) RowKey(row int) string {
	var sb strings.Builder
	for i := range t.cols {
		if i > 0 {
			sb.WriteByte('\x1f')
		}
		sb.WriteString(t.cols[i].Cells[row].Key(t.cols[i].Kind))
	}
	return sb.String()
}

// DuplicateRows counts rows whose full contents repeat an earlier row.
func (t *Table) DuplicateRows() int {
	seen := make(map[string]bool, t.NumRows())
	dups := 0
	for r := 0; r < t.NumRows(); r++ {
		key := t.RowKey(r)
		if seen[key] {
			dups++
		} else {
			seen[key] = true
		}
	}
	return dups
}

// MemoryBytes estimates the in-memory footprint of cell payloads.
func (t *Table) MemoryBytes() int {
	total := 0
	for i := range t.cols {
		c := &t.cols[i]
		switch c.Kind {
		case Numeric:
			total += 8 * len(c.Cells)
		case Datetime:
			total += 24 * len(c.Cells)
		default:
			for _, cell := range c.Cells {
				total += 16 + len(cell.Str)
			}
		}
	}
	return total
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"2006/01/02",
}

// ParseTime parses a value using the date layouts the profiler and cleaner
// recognize.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ParseNumber parses a numeric literal, tolerating surrounding whitespace.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
