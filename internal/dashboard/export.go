package dashboard

import (
	"encoding/json"
	"fmt"
	"time"
)

const exportVersion = "1.0"

// exportEnvelope is the persisted-state interchange shape. Ids round-trip
// as-is; only Duplicate mints new ones.
type exportEnvelope struct {
	Dashboards      map[string]*Dashboard `json:"dashboards"`
	UserPreferences Preferences           `json:"user_preferences"`
	ExportTimestamp time.Time             `json:"export_timestamp"`
	Version         string                `json:"version"`
}

// Export serializes the full store state as indented JSON.
func (s *Store) Export() ([]byte, error) {
	env := exportEnvelope{
		Dashboards:      s.dashboards,
		UserPreferences: s.prefs,
		ExportTimestamp: s.now(),
		Version:         exportVersion,
	}
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal dashboard state: %w", err)
	}
	return b, nil
}

// Import merges a previously exported state into the store: new names are
// added, colliding names are overwritten. Parsing is all-or-nothing; a
// payload that cannot be decoded leaves the store untouched and returns
// MalformedInputError. Returns the number of dashboards imported.
func (s *Store) Import(blob []byte) (int, error) {
	var env exportEnvelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return 0, &MalformedInputError{Err: err}
	}
	if env.Dashboards == nil {
		return 0, &MalformedInputError{Err: fmt.Errorf("missing dashboards section")}
	}
	for name, d := range env.Dashboards {
		if d.Charts == nil {
			d.Charts = make(map[string]*ChartSpec)
		}
		d.Name = name
		s.dashboards[name] = d
	}
	if env.UserPreferences != (Preferences{}) {
		s.prefs = env.UserPreferences
	}
	return len(env.Dashboards), nil
}
