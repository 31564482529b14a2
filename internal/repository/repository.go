// Package repository implements the cache-aside data access layer. Each
// repository owns the caches for one data domain, deduplicates concurrent
// fetches through a flight group, merges successful mutation responses back
// into its caches, and reports every mutation to the shared invalidator so
// cross-domain cascades fire.
//
// Error contract: a failed refresh never evicts existing entries. Stale data
// stays available through the raw accessors until a fetch succeeds or an
// invalidation rule clears it. The single exception is a NOT_FOUND on a
// single-entity fetch, which drops that entity from the caches.
package repository

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"nestegg-client/internal/cache"
	apperrors "nestegg-client/internal/errors"
	"nestegg-client/internal/flight"
	"nestegg-client/internal/observability"
)

// Collection caches hold the whole collection under a single key; singletons
// use their own fixed key so the two kinds cannot collide in logs.
const (
	allKey       = "all"
	singletonKey = "current"
)

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// storeOpts assembles the standard store options: the domain-scoped logger
// and, when metrics are wired, a hit/miss recorder labelled with the domain.
func storeOpts[V any](logger *zap.Logger, metrics *observability.Collector, domain string) []cache.Option[string, V] {
	opts := []cache.Option[string, V]{
		cache.WithLogger[string, V](logger.Named(domain)),
	}
	if metrics != nil {
		opts = append(opts, cache.WithRecorder[string, V](metrics.Recorder(domain)))
	}
	return opts
}

// fetchThrough is the cache-aside read path: a fresh entry is returned
// immediately; otherwise the load runs through the flight group and the
// result is stored from inside the producer, so the cache is populated even
// when the triggering caller has already gone away.
func fetchThrough[V any](ctx context.Context, store *cache.Store[string, V], group *flight.Group[V], key string, load func(context.Context) (V, error)) (V, error) {
	if v, ok := store.Get(key); ok {
		return v, nil
	}
	return group.Do(ctx, key, func(ctx context.Context) (V, error) {
		v, err := load(ctx)
		if err != nil {
			var zero V
			return zero, err
		}
		store.Set(key, v)
		return v, nil
	})
}

// upsert merges item into the cached collection under key, replacing the
// element matched by same or appending when no element matches. A collection
// that was never fetched is left absent: merging into nothing would fabricate
// a one-element "collection" and misrepresent the server.
func upsert[T any](store *cache.Store[string, []T], key string, item T, same func(T) bool) {
	ent, ok := store.GetRaw(key)
	if !ok {
		return
	}
	merged := make([]T, 0, len(ent.Value)+1)
	replaced := false
	for _, existing := range ent.Value {
		if same(existing) {
			merged = append(merged, item)
			replaced = true
		} else {
			merged = append(merged, existing)
		}
	}
	if !replaced {
		merged = append(merged, item)
	}
	store.Set(key, merged)
}

// removeWhere drops matching elements from the cached collection under key.
// Absent collections are a no-op.
func removeWhere[T any](store *cache.Store[string, []T], key string, match func(T) bool) {
	ent, ok := store.GetRaw(key)
	if !ok {
		return
	}
	kept := make([]T, 0, len(ent.Value))
	for _, existing := range ent.Value {
		if !match(existing) {
			kept = append(kept, existing)
		}
	}
	store.Set(key, kept)
}

// filterView copies the elements keep accepts. Derived reads hand out these
// copies so callers cannot mutate the cached slice.
func filterView[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// checkInput validates a payload struct and converts the failure into the
// unified error type.
func checkInput(v *validator.Validate, op string, input any) error {
	if err := v.Struct(input); err != nil {
		return apperrors.Validation("INVALID_INPUT", "input failed validation").
			WithOperation(op).
			WithDetails(err.Error()).
			WithCause(err).
			Build()
	}
	return nil
}

// requirePositive rejects zero and negative monetary amounts before they
// reach the network.
func requirePositive(op string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperrors.Validation("NON_POSITIVE_AMOUNT", "amount must be positive").
			WithOperation(op).
			Build()
	}
	return nil
}

// wholeStoreTarget adapts a store whose invalidation rules only ever clear it
// wholesale (singletons, and collections rebuilt server-side). Any edge mode
// clears everything, which is always safe.
type wholeStoreTarget[V any] struct {
	store *cache.Store[string, V]
}

func (t wholeStoreTarget[V]) ClearAll()         { t.store.Clear() }
func (t wholeStoreTarget[V]) Remove(string)     { t.store.Clear() }
func (t wholeStoreTarget[V]) ClearScope(string) { t.store.Clear() }

// scopedStoreTarget adapts a store keyed by parent scope (e.g. holdings per
// portfolio id). ClearScope drops one scope's entry; RemoveEntity has no
// meaningful key here and falls back to clearing everything.
type scopedStoreTarget[V any] struct {
	store *cache.Store[string, V]
}

func (t scopedStoreTarget[V]) ClearAll()               { t.store.Clear() }
func (t scopedStoreTarget[V]) Remove(string)           { t.store.Clear() }
func (t scopedStoreTarget[V]) ClearScope(scope string) { t.store.Remove(scope) }

// collectionTarget adapts a single-key collection store whose elements carry
// their own ids, so RemoveEntity can filter one element out in place.
type collectionTarget[T any] struct {
	store *cache.Store[string, []T]
	key   string
	id    func(T) string
}

func (t collectionTarget[T]) ClearAll() { t.store.Clear() }

func (t collectionTarget[T]) Remove(entityID string) {
	removeWhere(t.store, t.key, func(item T) bool { return t.id(item) == entityID })
}

func (t collectionTarget[T]) ClearScope(string) { t.store.Clear() }
