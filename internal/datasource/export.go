package datasource

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/KaramelBytes/dashloom/internal/profile"
	"github.com/KaramelBytes/dashloom/internal/table"
)

const exportVersion = "1.0"

type exportEnvelope struct {
	DataSources     map[string]table.Records `json:"data_sources"`
	Metadata        map[string]*Metadata     `json:"metadata"`
	ExportTimestamp time.Time                `json:"export_timestamp"`
	Version         string                   `json:"version"`
}

// Export serializes every source as row records plus declared dtypes so
// column kinds can be restored on import.
func (s *Store) Export() ([]byte, error) {
	env := exportEnvelope{
		DataSources:     make(map[string]table.Records, len(s.tables)),
		Metadata:        s.meta,
		ExportTimestamp: s.now(),
		Version:         exportVersion,
	}
	for name, t := range s.tables {
		env.DataSources[name] = t.ToRecords()
	}
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal data sources: %w", err)
	}
	return b, nil
}

// Import merges previously exported sources into the store, restoring column
// kinds from the declared dtypes. Unparseable cells become nulls. Returns the
// number of sources imported; a payload that cannot be decoded leaves the
// store untouched and returns MalformedInputError.
func (s *Store) Import(blob []byte) (int, error) {
	var env exportEnvelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return 0, &MalformedInputError{Err: err}
	}
	if env.DataSources == nil {
		return 0, &MalformedInputError{Err: fmt.Errorf("missing data_sources section")}
	}
	count := 0
	for name, rec := range env.DataSources {
		t := table.FromRecords(rec)
		s.Add(name, t, nil)
		count++
	}
	for name, m := range env.Metadata {
		if existing, ok := s.meta[name]; ok && m != nil {
			if len(m.Custom) > 0 {
				existing.Custom = m.Custom
			}
		}
	}
	return count, nil
}

// Info is the detailed view of a single source.
type Info struct {
	Metadata     *Metadata
	Dependencies []string
	Profile      *profile.Profile
}

// Info assembles metadata, dashboard dependencies, and a full profile for a
// source.
func (s *Store) Info(name string) (*Info, error) {
	t, exists := s.tables[name]
	if !exists {
		return nil, &NotFoundError{Name: name}
	}
	info := &Info{
		Metadata: s.meta[name],
		Profile:  profile.Build(t),
	}
	if s.deps != nil {
		info.Dependencies = s.deps.Dependents(name)
	}
	return info, nil
}
