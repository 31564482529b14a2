// Package flight deduplicates concurrent fetches for the same key: for a
// given key the number of producer invocations equals the number of cache
// misses, not the number of callers.
//
// The coordinator does not decide staleness. Repositories consult their cache
// first and come here only on a miss, and they store the producer's result
// inside the producer itself so a fetch abandoned by its caller still
// populates the cache.
package flight

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Group coordinates in-flight producers per key. The zero value is ready to
// use. A Group must not be copied after first use.
type Group[V any] struct {
	sf singleflight.Group
}

// Do returns the result of the producer for key. If a producer for key is
// already in flight, the caller attaches to its outcome instead of starting a
// second one; callers arriving after the producer started but before it
// finished attach the same way.
//
// The producer runs detached from the caller's context: cancelling ctx makes
// this caller return ctx.Err() immediately, but the shared producer keeps
// running for the benefit of the other waiters and the cache.
//
// A producer failure is delivered to every waiter and is not remembered; the
// next Do for the same key invokes the producer again.
func (g *Group[V]) Do(ctx context.Context, key string, producer func(context.Context) (V, error)) (V, error) {
	ch := g.sf.DoChan(key, func() (interface{}, error) {
		// Keep request-scoped values but drop the first caller's deadline
		// and cancellation: the result is useful to the cache even if the
		// caller that triggered the fetch has gone away.
		return producer(context.WithoutCancel(ctx))
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(V)
		if !ok {
			// Only possible if a producer returned (nil, nil) for a
			// non-nilable V; treat as the zero value.
			return zero, nil
		}
		return v, nil
	}
}

// Forget drops the in-flight record for key, so the next Do starts a fresh
// producer instead of attaching. Used by explicit invalidation paths.
func (g *Group[V]) Forget(key string) {
	g.sf.Forget(key)
}
