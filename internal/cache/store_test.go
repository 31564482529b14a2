package cache

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStore_GetRespectsFreshness(t *testing.T) {
	clock := newFakeClock()
	store := NewStore[string, int](time.Minute, WithClock[string, int](clock.Now))

	store.Set("balance", 42)

	v, ok := store.Get("balance")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	// Just inside the freshness window.
	clock.Advance(time.Minute - time.Millisecond)
	_, ok = store.Get("balance")
	assert.True(t, ok)

	// Just past it: Get misses, GetRaw still serves the stale entry.
	clock.Advance(2 * time.Millisecond)
	_, ok = store.Get("balance")
	assert.False(t, ok)

	ent, ok := store.GetRaw("balance")
	require.True(t, ok)
	assert.Equal(t, 42, ent.Value)
	assert.True(t, ent.Stale(clock.Now()))
}

func TestStore_GetMissesOnAbsentKey(t *testing.T) {
	store := NewStore[string, string](time.Minute)

	_, ok := store.Get("nope")
	assert.False(t, ok)

	_, ok = store.GetRaw("nope")
	assert.False(t, ok)
}

func TestStore_SetReplacesEntryAndRestampsTime(t *testing.T) {
	clock := newFakeClock()
	store := NewStore[string, int](time.Minute, WithClock[string, int](clock.Now))

	store.Set("k", 1)
	clock.Advance(2 * time.Minute) // entry goes stale

	_, ok := store.Get("k")
	require.False(t, ok)

	// A write moves the entry straight back to fresh.
	store.Set("k", 2)
	v, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestStore_SetTTLOverridesWindow(t *testing.T) {
	clock := newFakeClock()
	store := NewStore[string, int](time.Hour, WithClock[string, int](clock.Now))

	store.SetTTL("quote", 101, 5*time.Second)
	clock.Advance(6 * time.Second)

	_, ok := store.Get("quote")
	assert.False(t, ok)
}

func TestStore_RemoveAndClear(t *testing.T) {
	store := NewStore[string, int](time.Minute)
	store.Set("a", 1)
	store.Set("b", 2)

	store.Remove("a")
	_, ok := store.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())

	// Removing an absent key is a no-op.
	store.Remove("a")

	store.Clear()
	assert.Equal(t, 0, store.Len())
}

func TestStore_RemoveFunc(t *testing.T) {
	store := NewStore[string, int](time.Minute)
	store.Set("p1/h1", 1)
	store.Set("p1/h2", 2)
	store.Set("p2/h1", 3)

	removed := store.RemoveFunc(func(key string) bool {
		return strings.HasPrefix(key, "p1/")
	})

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, store.Len())
	_, ok := store.Get("p2/h1")
	assert.True(t, ok)
}

func TestStore_Stats(t *testing.T) {
	store := NewStore[string, int](time.Minute)
	store.Set("k", 1)

	store.Get("k")      // hit
	store.Get("absent") // miss
	store.GetRaw("k")   // not counted

	stats := store.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 0.5, stats.HitRate)
	assert.Equal(t, 1, stats.Entries)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore[string, int](time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				store.Set(fmt.Sprintf("k%d", j%8), i*1000+j)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if v, ok := store.Get(fmt.Sprintf("k%d", j%8)); ok {
					// A read sees a complete entry, never a mix.
					assert.GreaterOrEqual(t, v, 0)
				}
				store.GetRaw(fmt.Sprintf("k%d", j%8))
			}
		}()
	}
	wg.Wait()
}
