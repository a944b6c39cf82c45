// Package clean applies configurable, independently toggleable table
// transformations. Failures are column-scoped: a column that cannot be
// processed is left as-is and reported, and cleaning continues.
package clean

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/KaramelBytes/dashloom/internal/table"
)

// Missing-value strategies.
const (
	NumericMedian   = "median"
	NumericMean     = "mean"
	NumericZero     = "zero"
	NumericDropRows = "drop_rows"

	TextMostFrequent = "most_frequent"
	TextUnknown      = "unknown"
	TextDropRows     = "drop_rows"
)

// FillOptions controls missing-value imputation.
type FillOptions struct {
	NumericStrategy string
	TextStrategy    string
}

// Options enumerates the recognized cleaning operations. The zero value is a
// full no-op. Unknown strategy strings are rejected up front rather than
// silently ignored.
type Options struct {
	RemoveEmptyRows  bool
	FillMissing      bool
	Fill             FillOptions
	RemoveDuplicates bool
	RenameColumns    bool
	// ParseDateColumns names columns (by their pre-rename identifiers) to
	// force-parse as datetime. Unparseable cells become nulls.
	ParseDateColumns []string
	OptimizeTypes    bool
}

// Validate rejects unrecognized strategy values.
func (o Options) Validate() error {
	if o.FillMissing {
		switch o.Fill.NumericStrategy {
		case "", NumericMedian, NumericMean, NumericZero, NumericDropRows:
		default:
			return fmt.Errorf("unknown numeric fill strategy %q", o.Fill.NumericStrategy)
		}
		switch o.Fill.TextStrategy {
		case "", TextMostFrequent, TextUnknown, TextDropRows:
		default:
			return fmt.Errorf("unknown text fill strategy %q", o.Fill.TextStrategy)
		}
	}
	return nil
}

// Diagnostic reports a column-scoped outcome of a cleaning step.
type Diagnostic struct {
	Column string
	Step   string
	Detail string
}

// Report accumulates what each step did.
type Report struct {
	RowsRemoved  int
	RenamedFrom  map[string]string // new name -> original name
	Diagnostics  []Diagnostic
	StepsApplied []string
}

func (r *Report) diag(col, step, detail string) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Column: col, Step: step, Detail: detail})
}

// Apply runs the enabled operations in a fixed order: empty-row removal,
// missing-value fill, duplicate removal, renaming, date parsing, type
// optimization. Date columns are addressed by pre-rename names because
// renaming happens first in the remaining pipeline.
func Apply(t *table.Table, opts Options) (*table.Table, *Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	rep := &Report{RenamedFrom: map[string]string{}}
	out := t.Clone()

	if opts.RemoveEmptyRows {
		out = removeEmptyRows(out, rep)
		rep.StepsApplied = append(rep.StepsApplied, "remove_empty_rows")
	}
	if opts.FillMissing {
		out = fillMissing(out, opts.Fill, rep)
		rep.StepsApplied = append(rep.StepsApplied, "fill_missing")
	}
	if opts.RemoveDuplicates {
		out = removeDuplicates(out, rep)
		rep.StepsApplied = append(rep.StepsApplied, "remove_duplicates")
	}

	// Capture pre-rename identifiers so date parsing can address columns by
	// the names the caller saw.
	dateCols := make(map[string]bool, len(opts.ParseDateColumns))
	for _, name := range opts.ParseDateColumns {
		dateCols[name] = true
	}
	if opts.RenameColumns {
		out = renameColumns(out, rep)
		rep.StepsApplied = append(rep.StepsApplied, "rename_columns")
		renamed := make(map[string]bool, len(dateCols))
		for newName, orig := range rep.RenamedFrom {
			if dateCols[orig] {
				renamed[newName] = true
			}
		}
		if len(rep.RenamedFrom) > 0 {
			dateCols = renamed
		}
	}
	if len(dateCols) > 0 {
		out = parseDates(out, dateCols, rep)
		rep.StepsApplied = append(rep.StepsApplied, "parse_date_columns")
	}
	if opts.OptimizeTypes {
		out = optimizeTypes(out, rep)
		rep.StepsApplied = append(rep.StepsApplied, "optimize_types")
	}
	return out, rep, nil
}

func removeEmptyRows(t *table.Table, rep *Report) *table.Table {
	keep := make([]bool, t.NumRows())
	removed := 0
	for r := 0; r < t.NumRows(); r++ {
		empty := true
		for _, col := range t.Columns() {
			if !col.Cells[r].Null {
				empty = false
				break
			}
		}
		keep[r] = !empty
		if empty {
			removed++
		}
	}
	if removed == 0 {
		return t
	}
	rep.RowsRemoved += removed
	return t.Filter(keep)
}

func fillMissing(t *table.Table, fill FillOptions, rep *Report) *table.Table {
	numStrategy := fill.NumericStrategy
	if numStrategy == "" {
		numStrategy = NumericMedian
	}
	txtStrategy := fill.TextStrategy
	if txtStrategy == "" {
		txtStrategy = TextMostFrequent
	}

	// drop_rows on either side removes any row with a null in a column of
	// that class.
	dropNumeric := numStrategy == NumericDropRows
	dropText := txtStrategy == TextDropRows
	if dropNumeric || dropText {
		keep := make([]bool, t.NumRows())
		for r := range keep {
			keep[r] = true
		}
		removed := 0
		for _, col := range t.Columns() {
			isNum := col.Kind == table.Numeric
			isTxt := col.Kind == table.Text || col.Kind == table.Categorical
			if (isNum && dropNumeric) || (isTxt && dropText) {
				for r, cell := range col.Cells {
					if cell.Null && keep[r] {
						keep[r] = false
						removed++
					}
				}
			}
		}
		if removed > 0 {
			rep.RowsRemoved += removed
			t = t.Filter(keep)
		}
	}

	cols := t.Columns()
	for i := range cols {
		col := &cols[i]
		switch col.Kind {
		case table.Numeric:
			if dropNumeric {
				continue
			}
			fillNumericColumn(col, numStrategy, rep)
		case table.Text, table.Categorical:
			if dropText {
				continue
			}
			fillTextColumn(col, txtStrategy, rep)
		case table.Datetime:
			// No imputation for datetimes; nulls stay.
		}
	}
	return t
}

func fillNumericColumn(col *table.Column, strategy string, rep *Report) {
	nulls := 0
	var vals []float64
	for _, cell := range col.Cells {
		if cell.Null {
			nulls++
		} else {
			vals = append(vals, cell.Num)
		}
	}
	if nulls == 0 {
		return
	}
	if len(vals) == 0 && strategy != NumericZero {
		rep.diag(col.Name, "fill_missing", "column is entirely null; left unmodified")
		return
	}
	var fill float64
	switch strategy {
	case NumericMean:
		for _, v := range vals {
			fill += v
		}
		fill /= float64(len(vals))
	case NumericZero:
		fill = 0
	default: // median
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		if n := len(sorted); n%2 == 1 {
			fill = sorted[n/2]
		} else {
			fill = (sorted[n/2-1] + sorted[n/2]) / 2
		}
	}
	for r := range col.Cells {
		if col.Cells[r].Null {
			col.Cells[r] = table.NumCell(fill)
		}
	}
	rep.diag(col.Name, "fill_missing", fmt.Sprintf("filled %d nulls (%s)", nulls, strategy))
}

func fillTextColumn(col *table.Column, strategy string, rep *Report) {
	nulls := 0
	counts := make(map[string]int)
	for _, cell := range col.Cells {
		if cell.Null {
			nulls++
		} else {
			counts[cell.Str]++
		}
	}
	if nulls == 0 {
		return
	}
	fill := "Unknown"
	if strategy == TextMostFrequent && len(counts) > 0 {
		best := -1
		for v, n := range counts {
			if n > best || (n == best && v < fill) {
				fill = v
				best = n
			}
		}
	}
	for r := range col.Cells {
		if col.Cells[r].Null {
			col.Cells[r] = table.StrCell(fill)
		}
	}
	rep.diag(col.Name, "fill_missing", fmt.Sprintf("filled %d nulls (%s)", nulls, strategy))
}

func removeDuplicates(t *table.Table, rep *Report) *table.Table {
	seen := make(map[string]bool, t.NumRows())
	keep := make([]bool, t.NumRows())
	removed := 0
	for r := 0; r < t.NumRows(); r++ {
		key := t.RowKey(r)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		keep[r] = true
	}
	if removed == 0 {
		return t
	}
	rep.RowsRemoved += removed
	return t.Filter(keep)
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)
var multiUnderscore = regexp.MustCompile(`_+`)

// SanitizeName applies the column-name normalization: trim, non-alphanumeric
// runs to single underscores, lowercase, `col_` prefix for names that start
// with a digit.
func SanitizeName(name string, position int) string {
	clean := nonAlnum.ReplaceAllString(strings.TrimSpace(name), "_")
	clean = multiUnderscore.ReplaceAllString(clean, "_")
	clean = strings.Trim(clean, "_")
	clean = strings.ToLower(clean)
	if clean != "" && clean[0] >= '0' && clean[0] <= '9' {
		clean = "col_" + clean
	}
	if clean == "" {
		clean = fmt.Sprintf("col_%d", position)
	}
	return clean
}

func renameColumns(t *table.Table, rep *Report) *table.Table {
	cols := t.Columns()
	used := make(map[string]bool, len(cols))
	for i := range cols {
		orig := cols[i].Name
		clean := SanitizeName(orig, i)
		// Collisions resolved deterministically in first-seen order.
		if used[clean] {
			n := 1
			for used[fmt.Sprintf("%s_%d", clean, n)] {
				n++
			}
			clean = fmt.Sprintf("%s_%d", clean, n)
		}
		used[clean] = true
		rep.RenamedFrom[clean] = orig
		cols[i].Name = clean
	}
	return t
}

func parseDates(t *table.Table, names map[string]bool, rep *Report) *table.Table {
	cols := t.Columns()
	for i := range cols {
		col := &cols[i]
		if !names[col.Name] {
			continue
		}
		if col.Kind == table.Datetime {
			continue
		}
		if col.Kind == table.Numeric {
			rep.diag(col.Name, "parse_date_columns", "numeric column; left unmodified")
			continue
		}
		bad := 0
		cells := make([]table.Cell, len(col.Cells))
		for r, cell := range col.Cells {
			if cell.Null {
				cells[r] = table.NullCell()
				continue
			}
			if ts, ok := table.ParseTime(cell.Str); ok {
				cells[r] = table.TimeCell(ts)
			} else {
				cells[r] = table.NullCell()
				bad++
			}
		}
		col.Kind = table.Datetime
		col.Cells = cells
		if bad > 0 {
			rep.diag(col.Name, "parse_date_columns", fmt.Sprintf("%d unparseable values set to null", bad))
		}
	}
	return t
}

// Text columns with a distinct-value ratio under this bound become
// categorical during type optimization.
const categoricalRatio = 0.10

func optimizeTypes(t *table.Table, rep *Report) *table.Table {
	cols := t.Columns()
	for i := range cols {
		col := &cols[i]
		if col.Kind != table.Text {
			continue
		}
		nonNull := 0
		distinct := make(map[string]bool)
		numeric := true
		for _, cell := range col.Cells {
			if cell.Null {
				continue
			}
			nonNull++
			distinct[cell.Str] = true
			if numeric {
				if _, ok := table.ParseNumber(cell.Str); !ok {
					numeric = false
				}
			}
		}
		if nonNull == 0 {
			continue
		}
		if numeric {
			cells := make([]table.Cell, len(col.Cells))
			for r, cell := range col.Cells {
				if cell.Null {
					cells[r] = table.NullCell()
					continue
				}
				v, _ := table.ParseNumber(cell.Str)
				cells[r] = table.NumCell(v)
			}
			col.Kind = table.Numeric
			col.Cells = cells
			rep.diag(col.Name, "optimize_types", "converted to numeric")
			continue
		}
		if float64(len(distinct))/float64(nonNull) < categoricalRatio {
			col.Kind = table.Categorical
			rep.diag(col.Name, "optimize_types", "converted to categorical")
		}
	}
	return t
}
