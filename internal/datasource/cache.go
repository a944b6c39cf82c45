package datasource

import (
	"strings"
	"time"

	"github.com/KaramelBytes/dashloom/internal/table"
)

// cacheEntry holds a materialized table until its expiry.
type cacheEntry struct {
	data    *table.Table
	expiry  time.Time
	created time.Time
}

// CacheKey builds a cache key embedding the source name, so that
// InvalidateSource can find every entry derived from a source by substring.
func CacheKey(source, contentHash string, parts ...string) string {
	key := source + "|" + contentHash
	if len(parts) > 0 {
		key += "|" + strings.Join(parts, "|")
	}
	return key
}

// CachePut stores a transformed table under key with the given TTL. Expired
// entries across the whole cache are swept opportunistically on every put.
func (s *Store) CachePut(key string, data *table.Table, ttl time.Duration) {
	now := s.now()
	s.cache[key] = cacheEntry{data: data, expiry: now.Add(ttl), created: now}
	s.sweepCache()
}

// CacheGet returns the cached table for key, or false when absent or
// expired. Expired entries are purged lazily on access. The cache is
// advisory: a miss never changes correctness, only cost.
func (s *Store) CacheGet(key string) (*table.Table, bool) {
	entry, exists := s.cache[key]
	if !exists {
		return nil, false
	}
	if !s.now().Before(entry.expiry) {
		delete(s.cache, key)
		return nil, false
	}
	return entry.data, true
}

// InvalidateSource drops every cache entry whose key references the source.
func (s *Store) InvalidateSource(source string) {
	for key := range s.cache {
		if strings.Contains(key, source) {
			delete(s.cache, key)
		}
	}
}

// CacheLen reports the live entry count, sweeping expired entries first.
func (s *Store) CacheLen() int {
	s.sweepCache()
	return len(s.cache)
}

func (s *Store) sweepCache() {
	now := s.now()
	for key, entry := range s.cache {
		if !now.Before(entry.expiry) {
			delete(s.cache, key)
		}
	}
}

// StorageStats summarizes what the store holds.
type StorageStats struct {
	Sources      int    `json:"total_sources"`
	Rows         int    `json:"total_rows"`
	MemoryBytes  int    `json:"total_memory_bytes"`
	CacheEntries int    `json:"cache_entries"`
	Largest      string `json:"largest_source"`
}

// Stats aggregates source counts, total rows, memory, and the largest source
// by row count.
func (s *Store) Stats() StorageStats {
	st := StorageStats{Sources: len(s.tables), CacheEntries: s.CacheLen()}
	largest := -1
	for name, t := range s.tables {
		st.Rows += t.NumRows()
		st.MemoryBytes += t.MemoryBytes()
		if t.NumRows() > largest || (t.NumRows() == largest && name < st.Largest) {
			largest = t.NumRows()
			st.Largest = name
		}
	}
	return st
}
