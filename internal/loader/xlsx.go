package loader

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/dashloom/internal/table"
)

// FromXLSX loads a worksheet as a typed table. An empty sheet name selects
// the workbook's first sheet. The first row is the header.
func FromXLSX(path, sheet string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return table.New()
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return table.New()
	}
	header := rows[0]
	// Pad ragged rows to the header width; excelize drops trailing empties.
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		data = append(data, row)
	}
	return table.New(buildColumns(header, data)...)
}
