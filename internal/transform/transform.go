// Package transform turns a source table and a chart spec into the exact
// bounded, aggregated table the rendering collaborator will plot. Inputs are
// never mutated; every path returns a fresh table.
package transform

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/KaramelBytes/dashloom/internal/dashboard"
	"github.com/KaramelBytes/dashloom/internal/table"
)

// Row caps for pass-through chart kinds. Sampling exists purely for render
// performance, never for correctness.
const (
	DefaultMaxRows = 5000
	PreviewMaxRows = 1000
)

// ColumnNotFoundError reports a spec column absent from the source table,
// typically after the source was replaced with an incompatible schema.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found in source table", e.Column)
}

// TypeMismatchError reports an aggregation pointed at a non-numeric value
// column.
type TypeMismatchError struct {
	Column string
	Kind   table.Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("column %q is %s; aggregation requires numeric", e.Column, e.Kind)
}

// Options tunes the transform. The zero value gives the generic render path:
// 5000-row cap, time-seeded sampling.
type Options struct {
	// MaxRows caps pass-through results; 0 means DefaultMaxRows.
	MaxRows int
	// Seed fixes the sampling RNG for reproducibility. 0 leaves sampling
	// time-seeded.
	Seed int64
}

// ChartData produces the render-ready table for one chart.
func ChartData(t *table.Table, spec *dashboard.ChartSpec, opts Options) (*table.Table, error) {
	if err := checkColumns(t, spec); err != nil {
		return nil, err
	}
	switch spec.Kind {
	case dashboard.KindHistogram:
		// Binning is the renderer's job.
		return t.Clone(), nil
	case dashboard.KindPie:
		group := spec.ColorColumn
		if group == "" {
			group = spec.XColumn
		}
		return aggregateSum(t, []string{group}, spec.YColumn)
	case dashboard.KindBar, dashboard.KindLine, dashboard.KindArea:
		x, _ := t.Column(spec.XColumn)
		if x.Kind == table.Text || x.Kind == table.Categorical {
			keys := []string{spec.XColumn}
			if spec.ColorColumn != "" {
				keys = append(keys, spec.ColorColumn)
			}
			out, err := aggregateSum(t, keys, spec.YColumn)
			if err != nil {
				return nil, err
			}
			return sortByColumn(out, spec.XColumn), nil
		}
		return sortByColumn(sample(t, opts), spec.XColumn), nil
	default:
		// Scatter, box, and any other continuous-axis case pass through
		// under the row cap.
		return sample(t, opts), nil
	}
}

func checkColumns(t *table.Table, spec *dashboard.ChartSpec) error {
	if _, ok := t.Column(spec.XColumn); !ok {
		return &ColumnNotFoundError{Column: spec.XColumn}
	}
	if spec.YColumn != "" {
		if _, ok := t.Column(spec.YColumn); !ok {
			return &ColumnNotFoundError{Column: spec.YColumn}
		}
	}
	if spec.ColorColumn != "" {
		if _, ok := t.Column(spec.ColorColumn); !ok {
			return &ColumnNotFoundError{Column: spec.ColorColumn}
		}
	}
	return nil
}

// aggregateSum groups rows by the key columns and sums the value column.
// Result order follows first appearance of each group.
func aggregateSum(t *table.Table, keys []string, value string) (*table.Table, error) {
	valCol, ok := t.Column(value)
	if !ok {
		return nil, &ColumnNotFoundError{Column: value}
	}
	if valCol.Kind != table.Numeric {
		return nil, &TypeMismatchError{Column: value, Kind: valCol.Kind}
	}
	keyCols := make([]*table.Column, len(keys))
	for i, name := range keys {
		col, ok := t.Column(name)
		if !ok {
			return nil, &ColumnNotFoundError{Column: name}
		}
		keyCols[i] = col
	}

	type group struct {
		cells []table.Cell
		sum   float64
	}
	index := make(map[string]int)
	var groups []group
	for r := 0; r < t.NumRows(); r++ {
		key := ""
		for _, kc := range keyCols {
			key += kc.Cells[r].Key(kc.Kind) + "\x1f"
		}
		gi, seen := index[key]
		if !seen {
			cells := make([]table.Cell, len(keyCols))
			for i, kc := range keyCols {
				cells[i] = kc.Cells[r]
			}
			gi = len(groups)
			groups = append(groups, group{cells: cells})
			index[key] = gi
		}
		if !valCol.Cells[r].Null {
			groups[gi].sum += valCol.Cells[r].Num
		}
	}

	outCols := make([]table.Column, 0, len(keyCols)+1)
	for i, kc := range keyCols {
		cells := make([]table.Cell, len(groups))
		for g := range groups {
			cells[g] = groups[g].cells[i]
		}
		outCols = append(outCols, table.Column{Name: kc.Name, Kind: kc.Kind, Cells: cells})
	}
	sums := make([]table.Cell, len(groups))
	for g := range groups {
		sums[g] = table.NumCell(groups[g].sum)
	}
	outCols = append(outCols, table.Column{Name: value, Kind: table.Numeric, Cells: sums})
	return table.New(outCols...)
}

// sortByColumn sorts ascending by the named column when it is numeric or
// datetime; other kinds are left in existing order.
func sortByColumn(t *table.Table, name string) *table.Table {
	col, ok := t.Column(name)
	if !ok {
		return t
	}
	if col.Kind != table.Numeric && col.Kind != table.Datetime {
		return t
	}
	order := make([]int, t.NumRows())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := col.Cells[order[i]], col.Cells[order[j]]
		if a.Null != b.Null {
			return b.Null // nulls last
		}
		if a.Null {
			return false
		}
		if col.Kind == table.Datetime {
			return a.Time.Before(b.Time)
		}
		return a.Num < b.Num
	})
	cols := t.Columns()
	out := make([]table.Column, len(cols))
	for i := range cols {
		cells := make([]table.Cell, len(order))
		for r, src := range order {
			cells[r] = cols[i].Cells[src]
		}
		out[i] = table.Column{Name: cols[i].Name, Kind: cols[i].Kind, Cells: cells}
	}
	res, _ := table.New(out...)
	return res
}

// sample caps the row count with a uniform random subset, preserving source
// order among the kept rows. A fixed seed makes the subset reproducible.
func sample(t *table.Table, opts Options) *table.Table {
	max := opts.MaxRows
	if max <= 0 {
		max = DefaultMaxRows
	}
	n := t.NumRows()
	if n <= max {
		return t.Clone()
	}
	var rng *rand.Rand
	if opts.Seed != 0 {
		rng = rand.New(rand.NewSource(opts.Seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	chosen := rng.Perm(n)[:max]
	sort.Ints(chosen)
	keep := make([]bool, n)
	for _, r := range chosen {
		keep[r] = true
	}
	return t.Filter(keep)
}

// CacheKey derives the opaque result-cache key for a transform request. The
// source name is embedded so source-scoped invalidation catches it.
func CacheKey(source, contentHash string, spec *dashboard.ChartSpec, opts Options) string {
	max := opts.MaxRows
	if max <= 0 {
		max = DefaultMaxRows
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%d",
		source, contentHash, spec.Kind, spec.XColumn, spec.YColumn, spec.ColorColumn, max)
}
