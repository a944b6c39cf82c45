package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/KaramelBytes/dashloom/internal/table"
)

// FromJSON loads a table from its record interchange form: either the full
// Records envelope (columns + dtypes + data) or a bare record array, in which
// case columns are sorted by name and kinds are inferred.
func FromJSON(path string) (*table.Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	var rec table.Records
	if err := json.Unmarshal(b, &rec); err == nil && len(rec.Columns) > 0 {
		return table.FromRecords(rec), nil
	}
	var bare []map[string]any
	if err := json.Unmarshal(b, &bare); err != nil {
		return nil, fmt.Errorf("parse json records: %w", err)
	}
	return fromBareRecords(bare)
}

func fromBareRecords(records []map[string]any) (*table.Table, error) {
	if len(records) == 0 {
		return table.New()
	}
	var names []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for name := range rec {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	// Render values to strings and reuse the grid inference path so bare
	// JSON gets the same typing rules as CSV.
	header := names
	grid := make([][]string, len(records))
	for r, rec := range records {
		row := make([]string, len(names))
		for i, name := range names {
			switch v := rec[name].(type) {
			case nil:
				row[i] = ""
			case string:
				row[i] = v
			case float64:
				row[i] = table.Cell{Num: v}.Key(table.Numeric)
			case bool:
				if v {
					row[i] = "1"
				} else {
					row[i] = "0"
				}
			default:
				row[i] = fmt.Sprint(v)
			}
		}
		grid[r] = row
	}
	return table.New(buildColumns(header, grid)...)
}
