package dashboard

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/dashloom/internal/table"
)

// ChartKind enumerates the supported chart types.
type ChartKind string

const (
	KindLine      ChartKind = "line"
	KindBar       ChartKind = "bar"
	KindScatter   ChartKind = "scatter"
	KindPie       ChartKind = "pie"
	KindArea      ChartKind = "area"
	KindHistogram ChartKind = "histogram"
	KindBox       ChartKind = "box"
)

// Kinds lists every valid chart kind.
func Kinds() []ChartKind {
	return []ChartKind{KindLine, KindBar, KindScatter, KindPie, KindArea, KindHistogram, KindBox}
}

func (k ChartKind) valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// NeedsY reports whether the kind requires a y column. Histograms bin a
// single column, so they carry only x.
func (k ChartKind) NeedsY() bool { return k != KindHistogram }

// Aggregates reports whether the kind sums its y column during the data
// transform, which requires y to be numeric.
func (k ChartKind) Aggregates() bool {
	switch k {
	case KindPie, KindBar, KindLine, KindArea:
		return true
	}
	return false
}

// ChartSpec declares one chart's data binding and display options.
type ChartSpec struct {
	ID          string    `json:"id"`
	Kind        ChartKind `json:"chart_type"`
	DataSource  string    `json:"data_source"`
	XColumn     string    `json:"x_column"`
	YColumn     string    `json:"y_column,omitempty"`
	ColorColumn string    `json:"color_column,omitempty"`
	Title       string    `json:"title"`
	Height      int       `json:"height"`
	ShowLegend  bool      `json:"show_legend"`
	FontSize    int       `json:"font_size"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
}

// Validate checks the spec's internal consistency and, when a source table is
// provided, its column bindings against the live schema. The y column must be
// numeric for aggregating kinds.
func (s *ChartSpec) Validate(src *table.Table) error {
	var reasons []string
	if !s.Kind.valid() {
		reasons = append(reasons, fmt.Sprintf("unknown chart kind %q", s.Kind))
	}
	if s.DataSource == "" {
		reasons = append(reasons, "data source is required")
	}
	if s.XColumn == "" {
		reasons = append(reasons, "x column is required")
	}
	if s.Kind.valid() && s.Kind.NeedsY() && s.YColumn == "" {
		reasons = append(reasons, fmt.Sprintf("%s charts require a y column", s.Kind))
	}
	if src != nil && len(reasons) == 0 {
		if _, ok := src.Column(s.XColumn); !ok {
			reasons = append(reasons, fmt.Sprintf("x column %q not in source", s.XColumn))
		}
		if s.YColumn != "" {
			col, ok := src.Column(s.YColumn)
			if !ok {
				reasons = append(reasons, fmt.Sprintf("y column %q not in source", s.YColumn))
			} else if s.Kind.Aggregates() && col.Kind != table.Numeric {
				reasons = append(reasons, fmt.Sprintf("y column %q must be numeric for %s charts", s.YColumn, s.Kind))
			}
		}
		if s.ColorColumn != "" {
			if _, ok := src.Column(s.ColorColumn); !ok {
				reasons = append(reasons, fmt.Sprintf("color column %q not in source", s.ColorColumn))
			}
		}
	}
	if len(reasons) > 0 {
		return &InvalidSpecError{Reasons: reasons}
	}
	return nil
}

// GridCell places a chart in the dashboard grid.
type GridCell struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Layout is the grid arrangement of a dashboard.
type Layout struct {
	Columns int                 `json:"columns"`
	Cells   map[string]GridCell `json:"cells,omitempty"`
}

// Filters restricts what a dashboard displays.
type Filters struct {
	DateFrom string   `json:"date_from,omitempty"`
	DateTo   string   `json:"date_to,omitempty"`
	Category string   `json:"category,omitempty"`
	Regions  []string `json:"regions,omitempty"`
}

// Settings holds per-dashboard behavior toggles.
type Settings struct {
	AutoRefresh     bool `json:"auto_refresh"`
	RefreshInterval int  `json:"refresh_interval"`
}

// Dashboard is a named collection of chart specs with an optional layout.
type Dashboard struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Created     time.Time             `json:"created"`
	Modified    time.Time             `json:"modified"`
	Charts      map[string]*ChartSpec `json:"charts"`
	Layout      Layout                `json:"layout"`
	Filters     Filters               `json:"filters"`
	Settings    Settings              `json:"settings"`
}
