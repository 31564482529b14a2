// Package cache implements the in-memory, process-lifetime cache store used
// by every repository. Each repository owns its own Store instances; stores
// are never shared across domains.
package cache

import "time"

// Entry is a cached value plus the bookkeeping needed to decide freshness.
// Entries are immutable once constructed; a write replaces the whole entry,
// it never mutates one in place.
type Entry[V any] struct {
	Value     V
	FetchedAt time.Time
	FreshFor  time.Duration
}

// Stale reports whether the entry has outlived its freshness window at the
// given instant.
func (e Entry[V]) Stale(now time.Time) bool {
	return now.Sub(e.FetchedAt) > e.FreshFor
}

// Age returns how long ago the entry was fetched.
func (e Entry[V]) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}
