package clean

import (
	"fmt"

	"github.com/KaramelBytes/dashloom/internal/table"
)

// Date parts extractable from a datetime column.
const (
	PartYear    = "year"
	PartMonth   = "month"
	PartDay     = "day"
	PartWeekday = "weekday"
	PartQuarter = "quarter"
)

// Arithmetic operations over two numeric columns.
const (
	CalcAdd        = "add"
	CalcSubtract   = "subtract"
	CalcMultiply   = "multiply"
	CalcDivide     = "divide"
	CalcPercentage = "percentage"
)

// DeriveOp describes one derived column. Exactly one of DatePart or
// Calculation selects the mode.
type DeriveOp struct {
	Name string

	// Date-part extraction
	SourceColumn string
	DatePart     string

	// Two-column arithmetic
	Column1     string
	Column2     string
	Calculation string
}

// Derive appends derived columns to a copy of t. Failing operations are
// reported per-op and skipped; the remaining operations still run.
func Derive(t *table.Table, ops []DeriveOp) (*table.Table, []Diagnostic) {
	out := t.Clone()
	var diags []Diagnostic
	for _, op := range ops {
		col, err := deriveOne(out, op)
		if err != nil {
			diags = append(diags, Diagnostic{Column: op.Name, Step: "derive", Detail: err.Error()})
			continue
		}
		next, err := table.New(append(out.Columns(), *col)...)
		if err != nil {
			diags = append(diags, Diagnostic{Column: op.Name, Step: "derive", Detail: err.Error()})
			continue
		}
		out = next
	}
	return out, diags
}

func deriveOne(t *table.Table, op DeriveOp) (*table.Column, error) {
	if op.Name == "" {
		return nil, fmt.Errorf("derived column has no name")
	}
	if op.DatePart != "" {
		return deriveDatePart(t, op)
	}
	if op.Calculation != "" {
		return deriveCalculation(t, op)
	}
	return nil, fmt.Errorf("operation %q selects neither a date part nor a calculation", op.Name)
}

func deriveDatePart(t *table.Table, op DeriveOp) (*table.Column, error) {
	src, ok := t.Column(op.SourceColumn)
	if !ok {
		return nil, fmt.Errorf("source column %q not found", op.SourceColumn)
	}
	if src.Kind != table.Datetime {
		return nil, &TypeMismatchError{Column: op.SourceColumn, Kind: src.Kind}
	}
	kind := table.Numeric
	if op.DatePart == PartWeekday {
		kind = table.Categorical
	}
	cells := make([]table.Cell, len(src.Cells))
	for r, cell := range src.Cells {
		if cell.Null {
			cells[r] = table.NullCell()
			continue
		}
		ts := cell.Time
		switch op.DatePart {
		case PartYear:
			cells[r] = table.NumCell(float64(ts.Year()))
		case PartMonth:
			cells[r] = table.NumCell(float64(ts.Month()))
		case PartDay:
			cells[r] = table.NumCell(float64(ts.Day()))
		case PartWeekday:
			cells[r] = table.StrCell(ts.Weekday().String())
		case PartQuarter:
			cells[r] = table.NumCell(float64((int(ts.Month())-1)/3 + 1))
		default:
			return nil, fmt.Errorf("unknown date part %q", op.DatePart)
		}
	}
	return &table.Column{Name: op.Name, Kind: kind, Cells: cells}, nil
}

func deriveCalculation(t *table.Table, op DeriveOp) (*table.Column, error) {
	a, ok := t.Column(op.Column1)
	if !ok {
		return nil, fmt.Errorf("column %q not found", op.Column1)
	}
	b, ok := t.Column(op.Column2)
	if !ok {
		return nil, fmt.Errorf("column %q not found", op.Column2)
	}
	if a.Kind != table.Numeric {
		return nil, &TypeMismatchError{Column: op.Column1, Kind: a.Kind}
	}
	if b.Kind != table.Numeric {
		return nil, &TypeMismatchError{Column: op.Column2, Kind: b.Kind}
	}
	cells := make([]table.Cell, len(a.Cells))
	for r := range a.Cells {
		if a.Cells[r].Null || b.Cells[r].Null {
			cells[r] = table.NullCell()
			continue
		}
		x, y := a.Cells[r].Num, b.Cells[r].Num
		switch op.Calculation {
		case CalcAdd:
			cells[r] = table.NumCell(x + y)
		case CalcSubtract:
			cells[r] = table.NumCell(x - y)
		case CalcMultiply:
			cells[r] = table.NumCell(x * y)
		case CalcDivide:
			if y == 0 {
				cells[r] = table.NullCell()
			} else {
				cells[r] = table.NumCell(x / y)
			}
		case CalcPercentage:
			if y == 0 {
				cells[r] = table.NullCell()
			} else {
				cells[r] = table.NumCell(x / y * 100)
			}
		default:
			return nil, fmt.Errorf("unknown calculation %q", op.Calculation)
		}
	}
	return &table.Column{Name: op.Name, Kind: table.Numeric, Cells: cells}, nil
}
