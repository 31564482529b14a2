package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NormalizeSymbol canonicalizes a ticker symbol for use as a cache key.
// "aapl" and "AAPL" must land on the same entry.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Quote is a live price snapshot for one symbol.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	AsOf          time.Time       `json:"asOf"`
}

// StockDetails is slow-moving reference metadata for one symbol.
type StockDetails struct {
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	Exchange    string          `json:"exchange"`
	Sector      string          `json:"sector"`
	MarketCap   decimal.Decimal `json:"marketCap"`
	PERatio     decimal.Decimal `json:"peRatio"`
	DividendPct decimal.Decimal `json:"dividendPct"`
	Description string          `json:"description"`
}

// WatchlistItem is one watched symbol with its quote and metadata, as
// assembled by the server.
type WatchlistItem struct {
	Symbol  string    `json:"symbol"`
	Name    string    `json:"name"`
	Quote   Quote     `json:"quote"`
	AddedAt time.Time `json:"addedAt"`
}

// MarketHours reports whether the market is currently open.
type MarketHours struct {
	Open     bool      `json:"open"`
	OpensAt  time.Time `json:"opensAt"`
	ClosesAt time.Time `json:"closesAt"`
}

// ClosedMarketHours is the known-safe default substituted when the
// market-hours endpoint cannot be reached.
func ClosedMarketHours() MarketHours {
	return MarketHours{Open: false}
}
