package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/dashloom/internal/loader"
	"github.com/KaramelBytes/dashloom/internal/table"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromCSVTypesAndNulls(t *testing.T) {
	path := writeFile(t, "sales.csv", "month,revenue,when\njan,100,2024-01-31\nfeb,,2024-02-29\nmar,150.5,2024-03-31\n")
	tab, err := loader.FromCSV(path, loader.CSVOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if tab.NumRows() != 3 || tab.NumCols() != 3 {
		t.Fatalf("shape = %dx%d, want 3x3", tab.NumRows(), tab.NumCols())
	}
	month, _ := tab.Column("month")
	if month.Kind != table.Text {
		t.Fatalf("month kind = %v, want text", month.Kind)
	}
	revenue, _ := tab.Column("revenue")
	if revenue.Kind != table.Numeric {
		t.Fatalf("revenue kind = %v, want numeric", revenue.Kind)
	}
	if !revenue.Cells[1].Null {
		t.Fatal("empty cell must load as null")
	}
	if revenue.Cells[2].Num != 150.5 {
		t.Fatalf("revenue[2] = %v", revenue.Cells[2].Num)
	}
	when, _ := tab.Column("when")
	if when.Kind != table.Datetime {
		t.Fatalf("when kind = %v, want datetime", when.Kind)
	}
}

func TestFromCSVMixedColumnStaysText(t *testing.T) {
	path := writeFile(t, "mixed.csv", "v\n1\nabc\n")
	tab, err := loader.FromCSV(path, loader.CSVOptions{})
	if err != nil {
		t.Fatal(err)
	}
	v, _ := tab.Column("v")
	if v.Kind != table.Text {
		t.Fatalf("kind = %v, want text for mixed values", v.Kind)
	}
}

func TestFromCSVSniffsSemicolon(t *testing.T) {
	path := writeFile(t, "semi.csv", "a;b\n1;2\n")
	tab, err := loader.FromCSV(path, loader.CSVOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if tab.NumCols() != 2 {
		t.Fatalf("cols = %d, want delimiter sniffed", tab.NumCols())
	}
}

func TestFromCSVMaxRows(t *testing.T) {
	path := writeFile(t, "cap.csv", "v\n1\n2\n3\n4\n")
	tab, err := loader.FromCSV(path, loader.CSVOptions{MaxRows: 2})
	if err != nil {
		t.Fatal(err)
	}
	if tab.NumRows() != 2 {
		t.Fatalf("rows = %d, want capped at 2", tab.NumRows())
	}
}

func TestFromCSVRaggedRowsPad(t *testing.T) {
	path := writeFile(t, "ragged.csv", "a,b\n1,2\n3\n")
	tab, err := loader.FromCSV(path, loader.CSVOptions{})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := tab.Column("b")
	if !b.Cells[1].Null {
		t.Fatal("short row must pad with nulls")
	}
}

func TestFromXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	f := excelize.NewFile()
	rows := [][]any{
		{"month", "revenue"},
		{"jan", 100},
		{"feb", 250},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	tab, err := loader.FromXLSX(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if tab.NumRows() != 2 || tab.NumCols() != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", tab.NumRows(), tab.NumCols())
	}
	revenue, _ := tab.Column("revenue")
	if revenue.Kind != table.Numeric || revenue.Cells[1].Num != 250 {
		t.Fatalf("revenue = %+v", revenue)
	}
}

func TestFromJSONRecordsEnvelope(t *testing.T) {
	payload := `{
  "columns": ["month", "revenue"],
  "dtypes": {"month": "categorical", "revenue": "float"},
  "data": [
    {"month": "jan", "revenue": 100.5},
    {"month": "feb", "revenue": null}
  ]
}`
	path := writeFile(t, "records.json", payload)
	tab, err := loader.FromJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	month, _ := tab.Column("month")
	if month.Kind != table.Categorical {
		t.Fatalf("month kind = %v, want categorical from declared dtype", month.Kind)
	}
	revenue, _ := tab.Column("revenue")
	if revenue.Cells[0].Num != 100.5 || !revenue.Cells[1].Null {
		t.Fatalf("revenue = %+v", revenue.Cells)
	}
}

func TestFromJSONBareRecords(t *testing.T) {
	path := writeFile(t, "bare.json", `[{"b": 2, "a": "x"}, {"b": 3, "a": "y"}]`)
	tab, err := loader.FromJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	names := tab.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("columns = %v, want sorted [a b]", names)
	}
	b, _ := tab.Column("b")
	if b.Kind != table.Numeric || b.Cells[1].Num != 3 {
		t.Fatalf("b = %+v, want inferred numeric", b)
	}
}
