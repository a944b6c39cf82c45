package table_test

import (
	"testing"
	"time"

	"github.com/KaramelBytes/dashloom/internal/table"
)

func TestNewRejectsRaggedColumns(t *testing.T) {
	_, err := table.New(
		table.Column{Name: "a", Kind: table.Numeric, Cells: []table.Cell{table.NumCell(1)}},
		table.Column{Name: "b", Kind: table.Numeric, Cells: []table.Cell{table.NumCell(1), table.NumCell(2)}},
	)
	if err == nil {
		t.Fatal("expected error for ragged columns")
	}
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := table.New(
		table.Column{Name: "a", Kind: table.Numeric, Cells: []table.Cell{table.NumCell(1)}},
		table.Column{Name: "a", Kind: table.Text, Cells: []table.Cell{table.StrCell("x")}},
	)
	if err == nil {
		t.Fatal("expected error for duplicate column names")
	}
}

func TestCloneSharesNothing(t *testing.T) {
	orig := table.MustNew(table.Column{Name: "a", Kind: table.Numeric, Cells: []table.Cell{table.NumCell(1), table.NumCell(2)}})
	clone := orig.Clone()
	col, _ := clone.Column("a")
	col.Cells[0] = table.NumCell(99)
	origCol, _ := orig.Column("a")
	if origCol.Cells[0].Num != 1 {
		t.Fatalf("mutating a clone changed the original: got %v", origCol.Cells[0].Num)
	}
}

func TestFilter(t *testing.T) {
	tab := table.MustNew(table.Column{Name: "a", Kind: table.Numeric, Cells: []table.Cell{
		table.NumCell(1), table.NumCell(2), table.NumCell(3),
	}})
	out := tab.Filter([]bool{true, false, true})
	if out.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", out.NumRows())
	}
	col, _ := out.Column("a")
	if col.Cells[0].Num != 1 || col.Cells[1].Num != 3 {
		t.Fatalf("unexpected kept rows: %v", col.Cells)
	}
}

func TestDuplicateRows(t *testing.T) {
	tab := table.MustNew(
		table.Column{Name: "x", Kind: table.Text, Cells: []table.Cell{
			table.StrCell("a"), table.StrCell("a"), table.StrCell("b"), table.StrCell("a"),
		}},
		table.Column{Name: "y", Kind: table.Numeric, Cells: []table.Cell{
			table.NumCell(1), table.NumCell(1), table.NumCell(2), table.NumCell(1),
		}},
	)
	if got := tab.DuplicateRows(); got != 2 {
		t.Fatalf("DuplicateRows = %d, want 2", got)
	}
}

func TestDTypeIntegerVsFloat(t *testing.T) {
	ints := table.Column{Name: "i", Kind: table.Numeric, Cells: []table.Cell{table.NumCell(1), table.NumCell(2)}}
	floats := table.Column{Name: "f", Kind: table.Numeric, Cells: []table.Cell{table.NumCell(1.5)}}
	if got := ints.DType(); got != "integer" {
		t.Fatalf("DType = %q, want integer", got)
	}
	if got := floats.DType(); got != "float" {
		t.Fatalf("DType = %q, want float", got)
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	ts, _ := table.ParseTime("2024-03-01")
	orig := table.MustNew(
		table.Column{Name: "region", Kind: table.Categorical, Cells: []table.Cell{table.StrCell("north"), table.StrCell("south")}},
		table.Column{Name: "sales", Kind: table.Numeric, Cells: []table.Cell{table.NumCell(10.5), table.NullCell()}},
		table.Column{Name: "day", Kind: table.Datetime, Cells: []table.Cell{table.TimeCell(ts), table.NullCell()}},
	)
	back := table.FromRecords(orig.ToRecords())
	if back.NumRows() != 2 || back.NumCols() != 3 {
		t.Fatalf("shape = %dx%d, want 2x3", back.NumRows(), back.NumCols())
	}
	region, _ := back.Column("region")
	if region.Kind != table.Categorical {
		t.Fatalf("region kind = %v, want categorical", region.Kind)
	}
	sales, _ := back.Column("sales")
	if sales.Kind != table.Numeric || sales.Cells[0].Num != 10.5 || !sales.Cells[1].Null {
		t.Fatalf("sales column did not survive round trip: %+v", sales.Cells)
	}
	day, _ := back.Column("day")
	if day.Kind != table.Datetime || !day.Cells[0].Time.Equal(ts) {
		t.Fatalf("day column did not survive round trip: %+v", day.Cells)
	}
}

func TestFromRecordsBadValuesBecomeNulls(t *testing.T) {
	rec := table.Records{
		Columns: []string{"n"},
		DTypes:  map[string]string{"n": "float"},
		Data:    []map[string]any{{"n": "not a number"}, {"n": 3.0}},
	}
	tab := table.FromRecords(rec)
	col, _ := tab.Column("n")
	if !col.Cells[0].Null {
		t.Fatal("unparseable numeric should import as null")
	}
	if col.Cells[1].Num != 3 {
		t.Fatalf("got %v, want 3", col.Cells[1].Num)
	}
}

func TestParseTimeLayouts(t *testing.T) {
	cases := []string{"2024-01-31", "01/31/2024", "01-31-2024", "2024/01/31"}
	for _, in := range cases {
		ts, ok := table.ParseTime(in)
		if !ok {
			t.Fatalf("ParseTime(%q) failed", in)
		}
		if ts.Year() != 2024 || ts.Month() != time.January || ts.Day() != 31 {
			t.Fatalf("ParseTime(%q) = %v", in, ts)
		}
	}
	if _, ok := table.ParseTime("yesterday"); ok {
		t.Fatal("ParseTime should reject non-dates")
	}
}
