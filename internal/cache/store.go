package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Recorder receives hit/miss notifications, typically backed by Prometheus
// counters. Implementations must be safe for concurrent use.
type Recorder interface {
	CacheHit()
	CacheMiss()
}

// Store is a thread-safe mapping from key to Entry with a store-level
// freshness window.
//
// Get returns a value only while its entry is fresh; GetRaw returns whatever
// is present regardless of staleness, for callers that want to show old data
// while revalidating. Readers never observe a torn entry: the RWMutex
// serializes all map mutation, and entries are replaced wholesale.
type Store[K comparable, V any] struct {
	mu       sync.RWMutex
	entries  map[K]Entry[V]
	freshFor time.Duration

	now      func() time.Time
	logger   *zap.Logger
	recorder Recorder

	hits   int64
	misses int64
}

// Option configures a Store.
type Option[K comparable, V any] func(*Store[K, V])

// WithClock overrides the time source. Tests use this to step through
// freshness windows without sleeping.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(s *Store[K, V]) { s.now = now }
}

// WithLogger attaches a logger for invalidation events.
func WithLogger[K comparable, V any](logger *zap.Logger) Option[K, V] {
	return func(s *Store[K, V]) { s.logger = logger }
}

// WithRecorder attaches a hit/miss recorder.
func WithRecorder[K comparable, V any](r Recorder) Option[K, V] {
	return func(s *Store[K, V]) { s.recorder = r }
}

// NewStore creates a Store whose entries stay fresh for freshFor.
func NewStore[K comparable, V any](freshFor time.Duration, opts ...Option[K, V]) *Store[K, V] {
	s := &Store[K, V]{
		entries:  make(map[K]Entry[V]),
		freshFor: freshFor,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value for key only if an entry exists and is still fresh.
// A stale or absent entry is a miss.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	ent, ok := s.entries[key]
	now := s.now()
	s.mu.RUnlock()

	if !ok || ent.Stale(now) {
		s.recordMiss()
		var zero V
		return zero, false
	}
	s.recordHit()
	return ent.Value, true
}

// GetRaw returns the entry for key regardless of staleness. Used by callers
// that serve stale data while a refresh is in flight. GetRaw does not count
// toward hit/miss statistics.
func (s *Store[K, V]) GetRaw(key K) (Entry[V], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ent, ok := s.entries[key]
	return ent, ok
}

// Set creates or replaces the entry for key, stamping the current time and
// the store-level freshness window.
func (s *Store[K, V]) Set(key K, value V) {
	s.SetTTL(key, value, s.freshFor)
}

// SetTTL is Set with a per-entry freshness override.
func (s *Store[K, V]) SetTTL(key K, value V, freshFor time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry[V]{
		Value:     value,
		FetchedAt: s.now(),
		FreshFor:  freshFor,
	}
}

// Remove deletes the entry for key. Removing an absent key is a no-op.
func (s *Store[K, V]) Remove(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// RemoveFunc deletes every entry whose key matches the predicate and returns
// the number removed.
func (s *Store[K, V]) RemoveFunc(match func(K) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if match(key) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes every entry.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.entries)
	s.entries = make(map[K]Entry[V])
	if count > 0 {
		s.logger.Debug("cleared cache entries", zap.Int("count", count))
	}
}

// Len returns the number of entries, fresh or stale.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats holds hit/miss statistics for a store.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
	HitRate float64
}

// GetStats returns hit/miss statistics.
func (s *Store[K, V]) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hitRate := float64(0)
	if total := s.hits + s.misses; total > 0 {
		hitRate = float64(s.hits) / float64(total)
	}
	return Stats{
		Hits:    s.hits,
		Misses:  s.misses,
		Entries: len(s.entries),
		HitRate: hitRate,
	}
}

func (s *Store[K, V]) recordHit() {
	s.mu.Lock()
	s.hits++
	s.mu.Unlock()
	if s.recorder != nil {
		s.recorder.CacheHit()
	}
}

func (s *Store[K, V]) recordMiss() {
	s.mu.Lock()
	s.misses++
	s.mu.Unlock()
	if s.recorder != nil {
		s.recorder.CacheMiss()
	}
}
