// Package dashboard is the authoritative registry of dashboards and the
// chart specs inside them. One Store instance spans one user session; it is
// not safe for concurrent use and is meant to be injected into every
// operation that touches dashboard state.
package dashboard

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tiendc/go-deepcopy"

	"github.com/KaramelBytes/dashloom/internal/table"
)

// History action tags.
const (
	ActionCreated      = "created"
	ActionDeleted      = "deleted"
	ActionChartAdded   = "chart_added"
	ActionChartRemoved = "chart_removed"
	ActionDuplicated   = "duplicated"
)

const (
	historyLimit        = 100
	historyCleanupLimit = 50
	defaultLayoutCols   = 2
	defaultRefreshSecs  = 300
)

// HistoryEntry records one store mutation. Diagnostic only.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Dashboard string    `json:"dashboard"`
	Action    string    `json:"action"`
}

// Preferences holds session-level display defaults carried through
// export/import.
type Preferences struct {
	DefaultChartHeight  int    `json:"default_chart_height"`
	DefaultColorScheme  string `json:"default_color_scheme"`
	AutoRefreshInterval int    `json:"auto_refresh_interval"`
	ShowDataPreview     bool   `json:"show_data_preview"`
}

// DefaultPreferences mirrors the defaults a fresh session starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		DefaultChartHeight:  400,
		DefaultColorScheme:  "default",
		AutoRefreshInterval: 30,
		ShowDataPreview:     true,
	}
}

// TableResolver resolves a data source name to its live table so chart specs
// can be validated against the real schema. Implemented by the data source
// store.
type TableResolver interface {
	Resolve(name string) (*table.Table, bool)
}

// Store owns all dashboards for one session.
type Store struct {
	dashboards map[string]*Dashboard
	current    string
	history    []HistoryEntry
	prefs      Preferences

	tables TableResolver // optional; nil skips schema validation
	now    func() time.Time
	newID  func() string
}

// NewStore builds an empty store. The resolver may be nil, in which case
// chart specs are validated structurally but not against table schemas.
func NewStore(tables TableResolver) *Store {
	return &Store{
		dashboards: make(map[string]*Dashboard),
		prefs:      DefaultPreferences(),
		tables:     tables,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Create registers a new, empty dashboard.
func (s *Store) Create(name, description string) (*Dashboard, error) {
	if _, exists := s.dashboards[name]; exists {
		return nil, &DuplicateNameError{Name: name}
	}
	now := s.now()
	d := &Dashboard{
		ID:          s.newID(),
		Name:        name,
		Description: description,
		Created:     now,
		Modified:    now,
		Charts:      make(map[string]*ChartSpec),
		Layout:      Layout{Columns: defaultLayoutCols},
		Settings:    Settings{RefreshInterval: defaultRefreshSecs},
	}
	s.dashboards[name] = d
	s.logHistory(name, ActionCreated)
	return d, nil
}

// Delete removes a dashboard, clearing the current pointer when it referred
// to the deleted one.
func (s *Store) Delete(name string) error {
	if _, exists := s.dashboards[name]; !exists {
		return &NotFoundError{Kind: "dashboard", Name: name}
	}
	delete(s.dashboards, name)
	if s.current == name {
		s.current = ""
	}
	s.logHistory(name, ActionDeleted)
	return nil
}

// Get returns the named dashboard.
func (s *Store) Get(name string) (*Dashboard, error) {
	d, exists := s.dashboards[name]
	if !exists {
		return nil, &NotFoundError{Kind: "dashboard", Name: name}
	}
	return d, nil
}

// Names lists dashboard names sorted for stable output.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.dashboards))
	for name := range s.dashboards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetCurrent marks the active dashboard.
func (s *Store) SetCurrent(name string) error {
	if _, exists := s.dashboards[name]; !exists {
		return &NotFoundError{Kind: "dashboard", Name: name}
	}
	s.current = name
	return nil
}

// Current returns the active dashboard name; empty when none is set.
func (s *Store) Current() string { return s.current }

// AddChart validates the spec, assigns it a fresh id, and attaches it to the
// dashboard. Returns the new chart id.
func (s *Store) AddChart(dashboardName string, spec ChartSpec) (string, error) {
	d, exists := s.dashboards[dashboardName]
	if !exists {
		return "", &NotFoundError{Kind: "dashboard", Name: dashboardName}
	}
	if err := spec.Validate(s.resolve(spec.DataSource)); err != nil {
		return "", err
	}
	now := s.now()
	spec.ID = s.newID()
	spec.Created = now
	spec.Modified = now
	d.Charts[spec.ID] = &spec
	d.Modified = now
	s.logHistory(dashboardName, ActionChartAdded)
	return spec.ID, nil
}

// RemoveChart deletes a chart and purges its layout cell so the layout never
// holds an entry for a chart that no longer exists.
func (s *Store) RemoveChart(dashboardName, chartID string) error {
	d, exists := s.dashboards[dashboardName]
	if !exists {
		return &NotFoundError{Kind: "dashboard", Name: dashboardName}
	}
	if _, exists := d.Charts[chartID]; !exists {
		return &NotFoundError{Kind: "chart", Name: chartID}
	}
	delete(d.Charts, chartID)
	delete(d.Layout.Cells, chartID)
	d.Modified = s.now()
	s.logHistory(dashboardName, ActionChartRemoved)
	return nil
}

// UpdateChart replaces a chart's spec contents, preserving the chart id and
// original creation timestamp.
func (s *Store) UpdateChart(dashboardName, chartID string, spec ChartSpec) error {
	d, exists := s.dashboards[dashboardName]
	if !exists {
		return &NotFoundError{Kind: "dashboard", Name: dashboardName}
	}
	existing, exists := d.Charts[chartID]
	if !exists {
		return &NotFoundError{Kind: "chart", Name: chartID}
	}
	if err := spec.Validate(s.resolve(spec.DataSource)); err != nil {
		return err
	}
	spec.ID = chartID
	spec.Created = existing.Created
	spec.Modified = s.now()
	d.Charts[chartID] = &spec
	d.Modified = spec.Modified
	return nil
}

// SetLayout places charts in the grid. Every referenced chart id must exist.
func (s *Store) SetLayout(dashboardName string, layout Layout) error {
	d, exists := s.dashboards[dashboardName]
	if !exists {
		return &NotFoundError{Kind: "dashboard", Name: dashboardName}
	}
	for chartID := range layout.Cells {
		if _, ok := d.Charts[chartID]; !ok {
			return &NotFoundError{Kind: "chart", Name: chartID}
		}
	}
	if layout.Columns <= 0 {
		layout.Columns = defaultLayoutCols
	}
	d.Layout = layout
	d.Modified = s.now()
	return nil
}

// Duplicate deep-copies a dashboard under a new name, minting fresh ids for
// the dashboard and every chart so the copy aliases nothing in the source.
func (s *Store) Duplicate(sourceName, newName string) (*Dashboard, error) {
	src, exists := s.dashboards[sourceName]
	if !exists {
		return nil, &NotFoundError{Kind: "dashboard", Name: sourceName}
	}
	if _, exists := s.dashboards[newName]; exists {
		return nil, &DuplicateNameError{Name: newName}
	}
	var dup Dashboard
	if err := deepcopy.Copy(&dup, src); err != nil {
		return nil, err
	}
	now := s.now()
	dup.ID = s.newID()
	dup.Name = newName
	dup.Created = now
	dup.Modified = now

	charts := make(map[string]*ChartSpec, len(dup.Charts))
	idMap := make(map[string]string, len(dup.Charts))
	for oldID, spec := range dup.Charts {
		newID := s.newID()
		idMap[oldID] = newID
		spec.ID = newID
		spec.Created = now
		spec.Modified = now
		charts[newID] = spec
	}
	dup.Charts = charts
	if len(dup.Layout.Cells) > 0 {
		cells := make(map[string]GridCell, len(dup.Layout.Cells))
		for oldID, cell := range dup.Layout.Cells {
			if newID, ok := idMap[oldID]; ok {
				cells[newID] = cell
			}
		}
		dup.Layout.Cells = cells
	}

	s.dashboards[newName] = &dup
	s.logHistory(newName, ActionDuplicated)
	return &dup, nil
}

// Dependents returns the sorted names of dashboards holding at least one
// chart bound to the given data source.
func (s *Store) Dependents(source string) []string {
	var names []string
	for name, d := range s.dashboards {
		for _, spec := range d.Charts {
			if spec.DataSource == source {
				names = append(names, name)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}

// Cleanup removes chartless dashboards older than maxAge and trims history.
// Returns the number of dashboards removed.
func (s *Store) Cleanup(maxAge time.Duration) int {
	now := s.now()
	var stale []string
	for name, d := range s.dashboards {
		if len(d.Charts) == 0 && now.Sub(d.Created) > maxAge {
			stale = append(stale, name)
		}
	}
	for _, name := range stale {
		delete(s.dashboards, name)
		if s.current == name {
			s.current = ""
		}
	}
	if len(s.history) > historyCleanupLimit {
		s.history = append([]HistoryEntry(nil), s.history[len(s.history)-historyCleanupLimit:]...)
	}
	return len(stale)
}

// History returns the recorded actions, oldest first.
func (s *Store) History() []HistoryEntry {
	return append([]HistoryEntry(nil), s.history...)
}

// Preferences returns the session display defaults.
func (s *Store) Preferences() Preferences { return s.prefs }

// SetPreferences replaces the session display defaults.
func (s *Store) SetPreferences(p Preferences) { s.prefs = p }

// Stats summarizes the store.
type Stats struct {
	Dashboards  int `json:"total_dashboards"`
	Charts      int `json:"total_charts"`
	SourcesUsed int `json:"data_sources_used"`
}

// Stats counts dashboards, charts, and distinct data sources in use.
func (s *Store) Stats() Stats {
	st := Stats{Dashboards: len(s.dashboards)}
	sources := make(map[string]bool)
	for _, d := range s.dashboards {
		st.Charts += len(d.Charts)
		for _, spec := range d.Charts {
			if spec.DataSource != "" {
				sources[spec.DataSource] = true
			}
		}
	}
	st.SourcesUsed = len(sources)
	return st
}

func (s *Store) resolve(source string) *table.Table {
	if s.tables == nil {
		return nil
	}
	t, ok := s.tables.Resolve(source)
	if !ok {
		return nil
	}
	return t
}

func (s *Store) logHistory(name, action string) {
	s.history = append(s.history, HistoryEntry{Timestamp: s.now(), Dashboard: name, Action: action})
	if len(s.history) > historyLimit {
		s.history = append([]HistoryEntry(nil), s.history[len(s.history)-historyLimit:]...)
	}
}
