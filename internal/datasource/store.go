// Package datasource is the registry of named tables available for chart
// binding. It owns table metadata (content hash, shape, dtypes, footprint),
// guards deletion behind a dashboard dependency check, and keeps a
// short-lived advisory cache of transformed results.
package datasource

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/dashloom/internal/table"
)

// NotFoundError reports a missing data source.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("data source %q not found", e.Name)
}

// HasDependentsError blocks a removal because dashboards still reference the
// source. It carries the blocking dashboard names so a caller can explain why.
type HasDependentsError struct {
	Name       string
	Dashboards []string
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf("data source %q is used by dashboards: %s", e.Name, strings.Join(e.Dashboards, ", "))
}

// MalformedInputError reports an import payload that could not be parsed.
type MalformedInputError struct {
	Err error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed import payload: %v", e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// Metadata describes a stored table. The hash is recomputed on every update
// so it always reflects the current content.
type Metadata struct {
	Name          string            `json:"name"`
	Hash          string            `json:"hash"`
	Rows          int               `json:"rows"`
	Columns       int               `json:"columns"`
	ColumnTypes   map[string]string `json:"column_types"`
	MissingValues map[string]int    `json:"missing_values"`
	SizeBytes     int               `json:"size_bytes"`
	Created       time.Time         `json:"created"`
	Modified      time.Time         `json:"modified"`
	Custom        map[string]string `json:"custom_metadata,omitempty"`
}

// DependencyChecker reports which dashboards reference a data source.
// Implemented by the dashboard store.
type DependencyChecker interface {
	Dependents(source string) []string
}

// Store owns tables and metadata for one session.
type Store struct {
	tables map[string]*table.Table
	meta   map[string]*Metadata
	cache  map[string]cacheEntry

	deps DependencyChecker // optional; nil disables the dependency guard
	now  func() time.Time
}

// NewStore builds an empty store. The checker may be nil, which disables
// dependency-safe deletion (used by tests and one-shot tooling).
func NewStore(deps DependencyChecker) *Store {
	return &Store{
		tables: make(map[string]*table.Table),
		meta:   make(map[string]*Metadata),
		cache:  make(map[string]cacheEntry),
		deps:   deps,
		now:    time.Now,
	}
}

// SetDependencyChecker wires the dashboard store after both stores exist.
func (s *Store) SetDependencyChecker(deps DependencyChecker) { s.deps = deps }

// Add registers a table under a unique name. Re-adding an existing name
// replaces it, matching update semantics with fresh metadata.
func (s *Store) Add(name string, t *table.Table, custom map[string]string) *Metadata {
	now := s.now()
	m := s.buildMetadata(name, t)
	m.Created = now
	m.Modified = now
	m.Custom = custom
	if prev, ok := s.meta[name]; ok {
		m.Created = prev.Created
	}
	s.tables[name] = t
	s.meta[name] = m
	return m
}

// Remove deletes a table and its metadata. Blocked with HasDependentsError
// while any dashboard chart still references the source. Cache entries keyed
// to the source are invalidated.
func (s *Store) Remove(name string) error {
	if _, exists := s.tables[name]; !exists {
		return &NotFoundError{Name: name}
	}
	if s.deps != nil {
		if blocking := s.deps.Dependents(name); len(blocking) > 0 {
			return &HasDependentsError{Name: name, Dashboards: blocking}
		}
	}
	delete(s.tables, name)
	delete(s.meta, name)
	s.InvalidateSource(name)
	return nil
}

// Update replaces a table's content and recomputes hash/shape/dtype metadata.
// With preserveMetadata the recomputed block is merged into the existing one
// (custom metadata and creation time survive); otherwise it is fully
// replaced. Source-scoped cache entries are invalidated either way.
func (s *Store) Update(name string, t *table.Table, preserveMetadata bool) error {
	existing, exists := s.meta[name]
	if !exists {
		return &NotFoundError{Name: name}
	}
	m := s.buildMetadata(name, t)
	m.Modified = s.now()
	if preserveMetadata {
		m.Created = existing.Created
		m.Custom = existing.Custom
	} else {
		m.Created = m.Modified
	}
	s.tables[name] = t
	s.meta[name] = m
	s.InvalidateSource(name)
	return nil
}

// Resolve returns the named table. Satisfies dashboard.TableResolver.
func (s *Store) Resolve(name string) (*table.Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// Metadata returns the stored metadata block for a source.
func (s *Store) Metadata(name string) (*Metadata, error) {
	m, exists := s.meta[name]
	if !exists {
		return nil, &NotFoundError{Name: name}
	}
	return m, nil
}

// Names lists source names sorted for stable output.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckIntegrity recomputes the content hash and compares it to the stored
// one. A mismatch means the table was mutated without going through Update;
// callers should treat it as a warning, not a crash.
func (s *Store) CheckIntegrity(name string) (bool, error) {
	t, exists := s.tables[name]
	if !exists {
		return false, &NotFoundError{Name: name}
	}
	m, exists := s.meta[name]
	if !exists {
		return false, &NotFoundError{Name: name}
	}
	return Hash(t) == m.Hash, nil
}

func (s *Store) buildMetadata(name string, t *table.Table) *Metadata {
	m := &Metadata{
		Name:          name,
		Hash:          Hash(t),
		Rows:          t.NumRows(),
		Columns:       t.NumCols(),
		ColumnTypes:   make(map[string]string, t.NumCols()),
		MissingValues: make(map[string]int, t.NumCols()),
		SizeBytes:     t.MemoryBytes(),
	}
	for _, col := range t.Columns() {
		m.ColumnTypes[col.Name] = col.DType()
		nulls := 0
		for _, cell := range col.Cells {
			if cell.Null {
				nulls++
			}
		}
		m.MissingValues[col.Name] = nulls
	}
	return m
}

// hashSampleRows bounds how much content feeds the hash. The hash is a
// change-detection heuristic, not a cryptographic identity: shape and dtype
// changes always alter it, content changes beyond the sample may not.
const hashSampleRows = 5

// Hash fingerprints a table from its shape, per-column dtypes, and a leading
// content sample.
func Hash(t *table.Table) string {
	h := md5.New()
	fmt.Fprintf(h, "%dx%d\n", t.NumRows(), t.NumCols())
	for _, col := range t.Columns() {
		fmt.Fprintf(h, "%s:%s\n", col.Name, col.DType())
	}
	limit := t.NumRows()
	if limit > hashSampleRows {
		limit = hashSampleRows
	}
	for r := 0; r < limit; r++ {
		fmt.Fprintln(h, t.RowKey(r))
	}
	return hex.EncodeToString(h.Sum(nil))
}
