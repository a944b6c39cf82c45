// Package profile inspects a table and produces descriptive statistics plus
// retype suggestions. Profiling is a pure read: it never mutates the table
// and never fails on malformed values.
package profile

import (
	"math"
	"regexp"
	"sort"
	"time"

	"github.com/KaramelBytes/dashloom/internal/table"
)

// Profile summarizes a table.
type Profile struct {
	Rows          int
	Cols          int
	MemoryBytes   int
	DuplicateRows int
	Columns       []ColumnProfile
}

// ColumnProfile captures per-column statistics. Only the block matching Kind
// is populated.
type ColumnProfile struct {
	Name        string
	Kind        table.Kind
	NonNull     int
	NullCount   int
	NullPercent float64

	// Numeric
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	Std    float64
	Zeros  int

	// Categorical / text
	Unique       int
	MostFrequent string
	ModeCount    int

	// Datetime
	MinTime  string
	MaxTime  string
	SpanDays int
}

// Build profiles every column of t.
func Build(t *table.Table) *Profile {
	p := &Profile{
		Rows:          t.NumRows(),
		Cols:          t.NumCols(),
		MemoryBytes:   t.MemoryBytes(),
		DuplicateRows: t.DuplicateRows(),
	}
	for _, col := range t.Columns() {
		p.Columns = append(p.Columns, profileColumn(&col, t.NumRows()))
	}
	return p
}

func profileColumn(c *table.Column, rows int) ColumnProfile {
	cp := ColumnProfile{Name: c.Name, Kind: c.Kind}
	for _, cell := range c.Cells {
		if cell.Null {
			cp.NullCount++
		} else {
			cp.NonNull++
		}
	}
	if rows > 0 {
		cp.NullPercent = float64(cp.NullCount) / float64(rows) * 100
	}

	switch c.Kind {
	case table.Numeric:
		profileNumeric(c, &cp)
	case table.Text, table.Categorical:
		profileCategorical(c, &cp)
	case table.Datetime:
		profileDatetime(c, &cp)
	}
	return cp
}

func profileNumeric(c *table.Column, cp *ColumnProfile) {
	// Welford accumulation for mean/std; values retained for the median.
	var (
		n    int
		mean float64
		m2   float64
		vals []float64
	)
	cp.Min = math.Inf(1)
	cp.Max = math.Inf(-1)
	for _, cell := range c.Cells {
		if cell.Null {
			continue
		}
		x := cell.Num
		if x == 0 {
			cp.Zeros++
		}
		if x < cp.Min {
			cp.Min = x
		}
		if x > cp.Max {
			cp.Max = x
		}
		n++
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
		vals = append(vals, x)
	}
	if n == 0 {
		cp.Min, cp.Max = 0, 0
		return
	}
	cp.Mean = mean
	if n > 1 {
		cp.Std = math.Sqrt(m2 / float64(n-1))
	}
	cp.Median = median(vals)
}

func median(vals []float64) float64 {
	sort.Float64s(vals)
	n := len(vals)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

func profileCategorical(c *table.Column, cp *ColumnProfile) {
	counts := make(map[string]int)
	for _, cell := range c.Cells {
		if cell.Null {
			continue
		}
		counts[cell.Str]++
	}
	cp.Unique = len(counts)
	for v, n := range counts {
		if n > cp.ModeCount || (n == cp.ModeCount && v < cp.MostFrequent) {
			cp.MostFrequent = v
			cp.ModeCount = n
		}
	}
}

func profileDatetime(c *table.Column, cp *ColumnProfile) {
	var haveAny bool
	var min, max time.Time
	for _, cell := range c.Cells {
		if cell.Null {
			continue
		}
		if !haveAny {
			min, max = cell.Time, cell.Time
			haveAny = true
			continue
		}
		if cell.Time.Before(min) {
			min = cell.Time
		}
		if cell.Time.After(max) {
			max = cell.Time
		}
	}
	if !haveAny {
		return
	}
	cp.MinTime = min.UTC().Format("2006-01-02")
	cp.MaxTime = max.UTC().Format("2006-01-02")
	cp.SpanDays = int(max.Sub(min).Hours() / 24)
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`),
	regexp.MustCompile(`^\d{2}-\d{2}-\d{4}`),
	regexp.MustCompile(`^\d{4}/\d{2}/\d{2}`),
}

const (
	suggestSampleSize = 100
	dateLikeThreshold = 0.7
)

// SuggestTypes proposes retypes for text columns: date-like columns (at least
// 70% of a 100-value sample matching a known date shape) become datetime;
// columns whose whole sample parses as numbers become numeric.
func SuggestTypes(t *table.Table) map[string]table.Kind {
	suggestions := make(map[string]table.Kind)
	for _, col := range t.Columns() {
		if col.Kind != table.Text {
			continue
		}
		var sample []string
		for _, cell := range col.Cells {
			if cell.Null || cell.Str == "" {
				continue
			}
			sample = append(sample, cell.Str)
			if len(sample) >= suggestSampleSize {
				break
			}
		}
		if len(sample) == 0 {
			continue
		}
		dateLike := 0
		for _, v := range sample {
			for _, pat := range datePatterns {
				if pat.MatchString(v) {
					dateLike++
					break
				}
			}
		}
		if float64(dateLike)/float64(len(sample)) > dateLikeThreshold {
			suggestions[col.Name] = table.Datetime
			continue
		}
		allNumeric := true
		for _, v := range sample {
			if _, ok := table.ParseNumber(v); !ok {
				allNumeric = false
				break
			}
		}
		if allNumeric {
			suggestions[col.Name] = table.Numeric
		}
	}
	return suggestions
}
