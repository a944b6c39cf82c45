package table

import (
	"time"
)

// Records is the row-oriented interchange form of a table: a record list plus
// declared dtype strings so kinds survive an export/import round trip.
// Numeric width fidelity is not promised; integers may come back as floats.
type Records struct {
	Columns []string          `json:"columns"`
	DTypes  map[string]string `json:"dtypes"`
	Data    []map[string]any  `json:"data"`
}

// ToRecords converts a table to its interchange form.
func (t *Table) ToRecords() Records {
	rec := Records{
		Columns: t.Names(),
		DTypes:  make(map[string]string, t.NumCols()),
		Data:    make([]map[string]any, t.NumRows()),
	}
	for i := range t.cols {
		rec.DTypes[t.cols[i].Name] = t.cols[i].DType()
	}
	for r := 0; r < t.NumRows(); r++ {
		row := make(map[string]any, t.NumCols())
		for i := range t.cols {
			c := &t.cols[i]
			cell := c.Cells[r]
			if cell.Null {
				row[c.Name] = nil
				continue
			}
			switch c.Kind {
			case Numeric:
				row[c.Name] = cell.Num
			case Datetime:
				row[c.Name] = cell.Time.UTC().Format(time.RFC3339)
			default:
				row[c.Name] = cell.Str
			}
		}
		rec.Data[r] = row
	}
	return rec
}

// FromRecords rebuilds a table from its interchange form. Values that do not
// parse under the declared dtype become nulls rather than errors; a column
// with no declared dtype is treated as text.
func FromRecords(rec Records) *Table {
	cols := make([]Column, 0, len(rec.Columns))
	for _, name := range rec.Columns {
		kind, _ := KindForDType(rec.DTypes[name])
		cells := make([]Cell, len(rec.Data))
		for r, row := range rec.Data {
			cells[r] = coerceCell(row[name], kind)
		}
		cols = append(cols, Column{Name: name, Kind: kind, Cells: cells})
	}
	return &Table{cols: cols}
}

func coerceCell(v any, kind Kind) Cell {
	if v == nil {
		return NullCell()
	}
	switch kind {
	case Numeric:
		switch x := v.(type) {
		case float64:
			return NumCell(x)
		case int:
			return NumCell(float64(x))
		case int64:
			return NumCell(float64(x))
		case string:
			if f, ok := ParseNumber(x); ok {
				return NumCell(f)
			}
		}
		return NullCell()
	case Datetime:
		switch x := v.(type) {
		case time.Time:
			return TimeCell(x)
		case string:
			if ts, ok := ParseTime(x); ok {
				return TimeCell(ts)
			}
		}
		return NullCell()
	default:
		switch x := v.(type) {
		case string:
			return StrCell(x)
		case float64:
			return StrCell(formatFloat(x))
		default:
			return NullCell()
		}
	}
}

func formatFloat(v float64) string {
	return Cell{Num: v}.Key(Numeric)
}
