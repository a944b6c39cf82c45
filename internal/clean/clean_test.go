package clean_test

import (
	"errors"
	"testing"

	"github.com/KaramelBytes/dashloom/internal/clean"
	"github.com/KaramelBytes/dashloom/internal/table"
)

func col(name string, kind table.Kind, cells ...table.Cell) table.Column {
	return table.Column{Name: name, Kind: kind, Cells: cells}
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	opts := clean.Options{FillMissing: true, Fill: clean.FillOptions{NumericStrategy: "mode"}}
	if err := opts.Validate(); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestZeroOptionsIsNoOp(t *testing.T) {
	tab := table.MustNew(col("a", table.Numeric, table.NumCell(1), table.NullCell()))
	out, rep, err := clean.Apply(tab, clean.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.StepsApplied) != 0 {
		t.Fatalf("steps = %v, want none", rep.StepsApplied)
	}
	c, _ := out.Column("a")
	if !c.Cells[1].Null {
		t.Fatal("no-op options changed the table")
	}
}

func TestRemoveEmptyRows(t *testing.T) {
	tab := table.MustNew(
		col("a", table.Numeric, table.NumCell(1), table.NullCell(), table.NumCell(3)),
		col("b", table.Text, table.StrCell("x"), table.NullCell(), table.NullCell()),
	)
	out, rep, err := clean.Apply(tab, clean.Options{RemoveEmptyRows: true})
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", out.NumRows())
	}
	if rep.RowsRemoved != 1 {
		t.Fatalf("removed = %d, want 1", rep.RowsRemoved)
	}
}

func TestFillMissingMedianAndMode(t *testing.T) {
	tab := table.MustNew(
		col("n", table.Numeric, table.NumCell(1), table.NumCell(3), table.NumCell(10), table.NullCell()),
		col("t", table.Text, table.StrCell("a"), table.StrCell("a"), table.StrCell("b"), table.NullCell()),
	)
	out, _, err := clean.Apply(tab, clean.Options{FillMissing: true})
	if err != nil {
		t.Fatal(err)
	}
	n, _ := out.Column("n")
	if n.Cells[3].Num != 3 {
		t.Fatalf("numeric fill = %v, want median 3", n.Cells[3].Num)
	}
	txt, _ := out.Column("t")
	if txt.Cells[3].Str != "a" {
		t.Fatalf("text fill = %q, want most frequent %q", txt.Cells[3].Str, "a")
	}
}

func TestFillMissingZeroAndUnknown(t *testing.T) {
	tab := table.MustNew(
		col("n", table.Numeric, table.NumCell(5), table.NullCell()),
		col("t", table.Text, table.StrCell("a"), table.NullCell()),
	)
	out, _, err := clean.Apply(tab, clean.Options{
		FillMissing: true,
		Fill:        clean.FillOptions{NumericStrategy: clean.NumericZero, TextStrategy: clean.TextUnknown},
	})
	if err != nil {
		t.Fatal(err)
	}
	n, _ := out.Column("n")
	if n.Cells[1].Num != 0 || n.Cells[1].Null {
		t.Fatalf("numeric fill = %+v, want 0", n.Cells[1])
	}
	txt, _ := out.Column("t")
	if txt.Cells[1].Str != "Unknown" {
		t.Fatalf("text fill = %q, want Unknown", txt.Cells[1].Str)
	}
}

func TestFillMissingDropRows(t *testing.T) {
	tab := table.MustNew(
		col("n", table.Numeric, table.NumCell(1), table.NullCell(), table.NumCell(3)),
	)
	out, rep, err := clean.Apply(tab, clean.Options{
		FillMissing: true,
		Fill:        clean.FillOptions{NumericStrategy: clean.NumericDropRows},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 2 || rep.RowsRemoved != 1 {
		t.Fatalf("rows = %d removed = %d, want 2/1", out.NumRows(), rep.RowsRemoved)
	}
}

func TestRemoveDuplicatesKeepsFirst(t *testing.T) {
	tab := table.MustNew(
		col("x", table.Text, table.StrCell("a"), table.StrCell("a"), table.StrCell("b")),
		col("y", table.Numeric, table.NumCell(1), table.NumCell(1), table.NumCell(2)),
	)
	out, _, err := clean.Apply(tab, clean.Options{RemoveDuplicates: true})
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", out.NumRows())
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		" Total Sales ":  "total_sales",
		"Price-per-Unit": "price_per_unit",
		"Revenue ($)":    "revenue",
		"2024 totals":    "col_2024_totals",
	}
	for in, want := range cases {
		if got := clean.SanitizeName(in, 0); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenameCollisionSuffixes(t *testing.T) {
	tab := table.MustNew(
		col("Total Sales", table.Numeric, table.NumCell(1)),
		col("total-sales", table.Numeric, table.NumCell(2)),
		col("TOTAL SALES", table.Numeric, table.NumCell(3)),
	)
	out, rep, err := clean.Apply(tab, clean.Options{RenameColumns: true})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"total_sales", "total_sales_1", "total_sales_2"}
	got := out.Names()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names = %v, want %v", got, want)
		}
	}
	if rep.RenamedFrom["total_sales_2"] != "TOTAL SALES" {
		t.Fatalf("rename map = %v", rep.RenamedFrom)
	}
}

func TestParseDatesUsesPreRenameNames(t *testing.T) {
	tab := table.MustNew(
		col("Order Date", table.Text, table.StrCell("2024-01-05"), table.StrCell("bogus")),
	)
	out, rep, err := clean.Apply(tab, clean.Options{
		RenameColumns:    true,
		ParseDateColumns: []string{"Order Date"},
	})
	if err != nil {
		t.Fatal(err)
	}
	c, ok := out.Column("order_date")
	if !ok {
		t.Fatalf("columns = %v", out.Names())
	}
	if c.Kind != table.Datetime {
		t.Fatalf("kind = %v, want datetime", c.Kind)
	}
	if c.Cells[0].Null || !c.Cells[1].Null {
		t.Fatalf("cells = %+v, want parsed then null", c.Cells)
	}
	found := false
	for _, d := range rep.Diagnostics {
		if d.Column == "order_date" && d.Step == "parse_date_columns" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a diagnostic for unparseable values, got %v", rep.Diagnostics)
	}
}

func TestOptimizeTypesNumericCoercion(t *testing.T) {
	tab := table.MustNew(col("n", table.Text, table.StrCell("1"), table.StrCell("2.5"), table.NullCell()))
	out, _, err := clean.Apply(tab, clean.Options{OptimizeTypes: true})
	if err != nil {
		t.Fatal(err)
	}
	c, _ := out.Column("n")
	if c.Kind != table.Numeric {
		t.Fatalf("kind = %v, want numeric", c.Kind)
	}
	if c.Cells[1].Num != 2.5 || !c.Cells[2].Null {
		t.Fatalf("cells = %+v", c.Cells)
	}
}

func TestOptimizeTypesCategoricalDetection(t *testing.T) {
	// 30 rows, 2 distinct values: ratio well under 10%.
	cells := make([]table.Cell, 30)
	for i := range cells {
		if i%2 == 0 {
			cells[i] = table.StrCell("yes")
		} else {
			cells[i] = table.StrCell("no")
		}
	}
	tab := table.MustNew(table.Column{Name: "flag", Kind: table.Text, Cells: cells})
	out, _, err := clean.Apply(tab, clean.Options{OptimizeTypes: true})
	if err != nil {
		t.Fatal(err)
	}
	c, _ := out.Column("flag")
	if c.Kind != table.Categorical {
		t.Fatalf("kind = %v, want categorical", c.Kind)
	}
}

func TestRemoveOutliersIQR(t *testing.T) {
	tab := table.MustNew(col("v", table.Numeric,
		table.NumCell(10), table.NumCell(11), table.NumCell(9), table.NumCell(10),
		table.NumCell(12), table.NumCell(10), table.NumCell(500),
	))
	out, removed, err := clean.RemoveOutliers(tab, nil, clean.OutlierIQR, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if out.NumRows() != 6 {
		t.Fatalf("rows = %d, want 6", out.NumRows())
	}
}

func TestRemoveOutliersTypeMismatch(t *testing.T) {
	tab := table.MustNew(col("t", table.Text, table.StrCell("a")))
	_, _, err := clean.RemoveOutliers(tab, []string{"t"}, clean.OutlierIQR, 0)
	var tm *clean.TypeMismatchError
	if !errors.As(err, &tm) {
		t.Fatalf("err = %v, want TypeMismatchError", err)
	}
	if tm.Column != "t" {
		t.Fatalf("column = %q, want t", tm.Column)
	}
}

func TestDeriveDatePartAndCalc(t *testing.T) {
	d1, _ := table.ParseTime("2024-05-15")
	tab := table.MustNew(
		table.Column{Name: "day", Kind: table.Datetime, Cells: []table.Cell{table.TimeCell(d1)}},
		col("a", table.Numeric, table.NumCell(10)),
		col("b", table.Numeric, table.NumCell(4)),
	)
	out, diags := clean.Derive(tab, []clean.DeriveOp{
		{Name: "quarter", SourceColumn: "day", DatePart: clean.PartQuarter},
		{Name: "ratio", Column1: "a", Column2: "b", Calculation: clean.CalcDivide},
		{Name: "bad", Column1: "a", Column2: "missing", Calculation: clean.CalcAdd},
	})
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want one for the bad op", diags)
	}
	q, _ := out.Column("quarter")
	if q.Cells[0].Num != 2 {
		t.Fatalf("quarter = %v, want 2", q.Cells[0].Num)
	}
	r, _ := out.Column("ratio")
	if r.Cells[0].Num != 2.5 {
		t.Fatalf("ratio = %v, want 2.5", r.Cells[0].Num)
	}
	if _, ok := out.Column("bad"); ok {
		t.Fatal("failed op should not add a column")
	}
}
