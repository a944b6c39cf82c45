package clean

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/dashloom/internal/table"
)

// Outlier detection methods.
const (
	OutlierIQR    = "iqr"
	OutlierZScore = "zscore"
)

// TypeMismatchError reports an operation that requires a numeric column but
// was pointed at something else.
type TypeMismatchError struct {
	Column string
	Kind   table.Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("column %q is %s, not numeric", e.Column, e.Kind)
}

// RemoveOutliers drops rows holding outlier values in the named numeric
// columns (all numeric columns when names is empty). A named non-numeric
// column is a TypeMismatchError; a missing name is skipped.
func RemoveOutliers(t *table.Table, names []string, method string, threshold float64) (*table.Table, int, error) {
	if threshold <= 0 {
		if method == OutlierZScore {
			threshold = 3
		} else {
			threshold = 1.5
		}
	}
	var cols []*table.Column
	if len(names) == 0 {
		all := t.Columns()
		for i := range all {
			if all[i].Kind == table.Numeric {
				cols = append(cols, &all[i])
			}
		}
	} else {
		for _, name := range names {
			col, ok := t.Column(name)
			if !ok {
				continue
			}
			if col.Kind != table.Numeric {
				return nil, 0, &TypeMismatchError{Column: name, Kind: col.Kind}
			}
			cols = append(cols, col)
		}
	}

	drop := make(map[int]bool)
	for _, col := range cols {
		switch method {
		case OutlierZScore:
			zscoreOutliers(col, threshold, drop)
		default:
			iqrOutliers(col, threshold, drop)
		}
	}
	if len(drop) == 0 {
		return t.Clone(), 0, nil
	}
	keep := make([]bool, t.NumRows())
	for r := range keep {
		keep[r] = !drop[r]
	}
	return t.Filter(keep), len(drop), nil
}

func iqrOutliers(col *table.Column, threshold float64, drop map[int]bool) {
	var vals []float64
	for _, cell := range col.Cells {
		if !cell.Null {
			vals = append(vals, cell.Num)
		}
	}
	if len(vals) < 4 {
		return
	}
	sort.Float64s(vals)
	q1 := quantile(vals, 0.25)
	q3 := quantile(vals, 0.75)
	iqr := q3 - q1
	lo := q1 - threshold*iqr
	hi := q3 + threshold*iqr
	for r, cell := range col.Cells {
		if !cell.Null && (cell.Num < lo || cell.Num > hi) {
			drop[r] = true
		}
	}
}

func zscoreOutliers(col *table.Column, threshold float64, drop map[int]bool) {
	var n int
	var mean, m2 float64
	for _, cell := range col.Cells {
		if cell.Null {
			continue
		}
		n++
		delta := cell.Num - mean
		mean += delta / float64(n)
		m2 += delta * (cell.Num - mean)
	}
	if n < 2 {
		return
	}
	std := math.Sqrt(m2 / float64(n-1))
	if std == 0 {
		return
	}
	for r, cell := range col.Cells {
		if !cell.Null && math.Abs((cell.Num-mean)/std) > threshold {
			drop[r] = true
		}
	}
}

// quantile interpolates linearly on an already sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
