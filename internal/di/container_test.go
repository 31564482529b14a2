package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	// No config file: defaults plus whatever the environment supplies.
	c, err := InitializeContainer("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestInitializeContainerWiresEverything(t *testing.T) {
	c := newTestContainer(t)

	assert.NotNil(t, c.Logger)
	assert.NotNil(t, c.Metrics)
	assert.NotNil(t, c.Client)
	assert.NotNil(t, c.Invalidator)
	assert.NotNil(t, c.Portfolios)
	assert.NotNil(t, c.Goals)
	assert.NotNil(t, c.Schedules)
	assert.NotNil(t, c.Families)
	assert.NotNil(t, c.Funding)
	assert.NotNil(t, c.Stocks)
	assert.NotNil(t, c.Users)
	assert.NotNil(t, c.Insights)
}

func TestCacheStatsCoversEveryDomain(t *testing.T) {
	c := newTestContainer(t)

	stats := c.CacheStats()
	for _, name := range []string{
		"portfolio_list", "holdings", "ledger",
		"goals", "schedules",
		"family", "pending_invites", "received_invites",
		"funding_balance", "transfers",
		"quotes", "stock_details", "market_hours", "watchlist",
		"user", "insights", "stock_explanations", "investing_tips",
	} {
		_, ok := stats[name]
		assert.True(t, ok, "missing stats for %s", name)
	}
}

func TestClearAllCachesIsSafeOnEmptyCaches(t *testing.T) {
	c := newTestContainer(t)
	assert.NotPanics(t, c.ClearAllCaches)
}
