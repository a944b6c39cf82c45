package transform_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/KaramelBytes/dashloom/internal/dashboard"
	"github.com/KaramelBytes/dashloom/internal/table"
	"github.com/KaramelBytes/dashloom/internal/transform"
)

func salesTable(t *testing.T) *table.Table {
	t.Helper()
	return table.MustNew(
		table.Column{Name: "product", Kind: table.Categorical, Cells: []table.Cell{
			table.StrCell("a"), table.StrCell("a"), table.StrCell("b"),
		}},
		table.Column{Name: "region", Kind: table.Categorical, Cells: []table.Cell{
			table.StrCell("north"), table.StrCell("south"), table.StrCell("north"),
		}},
		table.Column{Name: "sales", Kind: table.Numeric, Cells: []table.Cell{
			table.NumCell(10), table.NumCell(5), table.NumCell(3),
		}},
	)
}

func TestBarAggregatesCategoricalX(t *testing.T) {
	src := salesTable(t)
	spec := &dashboard.ChartSpec{Kind: dashboard.KindBar, XColumn: "product", YColumn: "sales"}
	out, err := transform.ChartData(src, spec, transform.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", out.NumRows())
	}
	x, _ := out.Column("product")
	y, _ := out.Column("sales")
	if x.Cells[0].Str != "a" || y.Cells[0].Num != 15 {
		t.Fatalf("group 0 = (%s, %v), want (a, 15)", x.Cells[0].Str, y.Cells[0].Num)
	}
	if x.Cells[1].Str != "b" || y.Cells[1].Num != 3 {
		t.Fatalf("group 1 = (%s, %v), want (b, 3)", x.Cells[1].Str, y.Cells[1].Num)
	}
}

func TestPieGroupsByColorColumn(t *testing.T) {
	src := salesTable(t)
	spec := &dashboard.ChartSpec{
		Kind: dashboard.KindPie, XColumn: "product", YColumn: "sales", ColorColumn: "region",
	}
	out, err := transform.ChartData(src, spec, transform.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", out.NumRows())
	}
	region, _ := out.Column("region")
	sales, _ := out.Column("sales")
	if region.Cells[0].Str != "north" || sales.Cells[0].Num != 13 {
		t.Fatalf("slice 0 = (%s, %v), want (north, 13)", region.Cells[0].Str, sales.Cells[0].Num)
	}
	if region.Cells[1].Str != "south" || sales.Cells[1].Num != 5 {
		t.Fatalf("slice 1 = (%s, %v), want (south, 5)", region.Cells[1].Str, sales.Cells[1].Num)
	}
}

func TestBarWithColorKeepsGroupPairs(t *testing.T) {
	src := salesTable(t)
	spec := &dashboard.ChartSpec{
		Kind: dashboard.KindBar, XColumn: "product", YColumn: "sales", ColorColumn: "region",
	}
	out, err := transform.ChartData(src, spec, transform.Options{})
	if err != nil {
		t.Fatal(err)
	}
	// (a,north), (a,south), (b,north) stay distinct.
	if out.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", out.NumRows())
	}
}

func TestHistogramPassesThrough(t *testing.T) {
	src := salesTable(t)
	spec := &dashboard.ChartSpec{Kind: dashboard.KindHistogram, XColumn: "sales"}
	out, err := transform.ChartData(src, spec, transform.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != src.NumRows() || out.NumCols() != src.NumCols() {
		t.Fatalf("shape = %dx%d, want %dx%d", out.NumRows(), out.NumCols(), src.NumRows(), src.NumCols())
	}
}

func TestLineSortsNumericX(t *testing.T) {
	src := table.MustNew(
		table.Column{Name: "x", Kind: table.Numeric, Cells: []table.Cell{
			table.NumCell(3), table.NumCell(1), table.NumCell(2),
		}},
		table.Column{Name: "y", Kind: table.Numeric, Cells: []table.Cell{
			table.NumCell(30), table.NumCell(10), table.NumCell(20),
		}},
	)
	spec := &dashboard.ChartSpec{Kind: dashboard.KindLine, XColumn: "x", YColumn: "y"}
	out, err := transform.ChartData(src, spec, transform.Options{})
	if err != nil {
		t.Fatal(err)
	}
	x, _ := out.Column("x")
	y, _ := out.Column("y")
	for i, want := range []float64{1, 2, 3} {
		if x.Cells[i].Num != want {
			t.Fatalf("x = %v, want sorted ascending", x.Cells)
		}
		if y.Cells[i].Num != want*10 {
			t.Fatalf("y did not move with x: %v", y.Cells)
		}
	}
}

func TestScatterSamplingIsSeededAndOrderPreserving(t *testing.T) {
	n := 10000
	cells := make([]table.Cell, n)
	for i := range cells {
		cells[i] = table.NumCell(float64(i))
	}
	src := table.MustNew(table.Column{Name: "v", Kind: table.Numeric, Cells: cells})
	spec := &dashboard.ChartSpec{Kind: dashboard.KindScatter, XColumn: "v"}
	opts := transform.Options{MaxRows: 5000, Seed: 42}

	first, err := transform.ChartData(src, spec, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.NumRows() != 5000 {
		t.Fatalf("rows = %d, want 5000", first.NumRows())
	}
	second, err := transform.ChartData(src, spec, opts)
	if err != nil {
		t.Fatal(err)
	}
	fc, _ := first.Column("v")
	sc, _ := second.Column("v")
	prev := -1.0
	for i := range fc.Cells {
		if fc.Cells[i].Num != sc.Cells[i].Num {
			t.Fatalf("row %d differs across runs with the same seed", i)
		}
		if fc.Cells[i].Num <= prev {
			t.Fatalf("sample broke source order at row %d", i)
		}
		prev = fc.Cells[i].Num
	}
}

func TestSmallTableIsNotSampled(t *testing.T) {
	src := salesTable(t)
	spec := &dashboard.ChartSpec{Kind: dashboard.KindScatter, XColumn: "sales"}
	out, err := transform.ChartData(src, spec, transform.Options{MaxRows: 100})
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 3 {
		t.Fatalf("rows = %d, want all 3", out.NumRows())
	}
}

func TestMissingColumn(t *testing.T) {
	src := salesTable(t)
	spec := &dashboard.ChartSpec{Kind: dashboard.KindBar, XColumn: "nope", YColumn: "sales"}
	_, err := transform.ChartData(src, spec, transform.Options{})
	var nf *transform.ColumnNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want ColumnNotFoundError", err)
	}
	if nf.Column != "nope" {
		t.Fatalf("column = %q, want nope", nf.Column)
	}
}

func TestAggregationRejectsTextValueColumn(t *testing.T) {
	src := salesTable(t)
	spec := &dashboard.ChartSpec{Kind: dashboard.KindPie, XColumn: "product", YColumn: "region"}
	_, err := transform.ChartData(src, spec, transform.Options{})
	var tm *transform.TypeMismatchError
	if !errors.As(err, &tm) {
		t.Fatalf("err = %v, want TypeMismatchError", err)
	}
}

func TestAggregationSkipsNullValues(t *testing.T) {
	src := table.MustNew(
		table.Column{Name: "k", Kind: table.Categorical, Cells: []table.Cell{
			table.StrCell("a"), table.StrCell("a"),
		}},
		table.Column{Name: "v", Kind: table.Numeric, Cells: []table.Cell{
			table.NumCell(7), table.NullCell(),
		}},
	)
	spec := &dashboard.ChartSpec{Kind: dashboard.KindPie, XColumn: "k", YColumn: "v"}
	out, err := transform.ChartData(src, spec, transform.Options{})
	if err != nil {
		t.Fatal(err)
	}
	v, _ := out.Column("v")
	if out.NumRows() != 1 || v.Cells[0].Num != 7 {
		t.Fatalf("aggregate = %v, want single group summing 7", v.Cells)
	}
}

func TestCacheKeyVariesByShapeInputs(t *testing.T) {
	spec := &dashboard.ChartSpec{Kind: dashboard.KindBar, XColumn: "x", YColumn: "y"}
	base := transform.CacheKey("sales", "abc", spec, transform.Options{})
	if base != fmt.Sprintf("sales|abc|bar|x|y||%d", transform.DefaultMaxRows) {
		t.Fatalf("key = %q", base)
	}
	other := transform.CacheKey("sales", "abc", spec, transform.Options{MaxRows: 10})
	if base == other {
		t.Fatal("row cap must be part of the key")
	}
}
