package repository

import (
	"context"

	"go.uber.org/zap"

	"nestegg-client/internal/cache"
	"nestegg-client/internal/domain"
	apperrors "nestegg-client/internal/errors"
	"nestegg-client/internal/flight"
	"nestegg-client/internal/invalidation"
	"nestegg-client/internal/observability"
	"nestegg-client/internal/remote"
)

// StockSource is the remote surface the stock repository needs.
type StockSource interface {
	GetQuote(ctx context.Context, symbol string) (domain.Quote, error)
	GetDetails(ctx context.Context, symbol string) (domain.StockDetails, error)
	GetMarketHours(ctx context.Context) (domain.MarketHours, error)
	ListWatchlist(ctx context.Context) ([]domain.WatchlistItem, error)
	AddToWatchlist(ctx context.Context, symbol string) (domain.WatchlistItem, error)
	RemoveFromWatchlist(ctx context.Context, symbol string) error
}

var _ StockSource = (*remote.StockSource)(nil)

// StockRepository caches market data keyed by normalized symbol. Quotes have
// the shortest freshness window in the client; reference details the longest
// of the stock caches.
type StockRepository struct {
	source StockSource
	inv    *invalidation.Invalidator
	logger *zap.Logger

	quotes    *cache.Store[string, domain.Quote]
	details   *cache.Store[string, domain.StockDetails]
	hours     *cache.Store[string, domain.MarketHours]
	watchlist *cache.Store[string, []domain.WatchlistItem]

	quoteFlight     flight.Group[domain.Quote]
	detailsFlight   flight.Group[domain.StockDetails]
	hoursFlight     flight.Group[domain.MarketHours]
	watchlistFlight flight.Group[[]domain.WatchlistItem]
}

// NewStockRepository wires the repository and registers the watchlist
// invalidation target. Quotes, details and market hours are read-only and
// never appear in the cascade table.
func NewStockRepository(source StockSource, inv *invalidation.Invalidator, logger *zap.Logger, metrics *observability.Collector) *StockRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if inv == nil {
		inv = invalidation.NewInvalidator(logger)
	}
	r := &StockRepository{
		source:    source,
		inv:       inv,
		logger:    logger.Named("stock"),
		quotes:    cache.NewStore(cache.FreshQuote, storeOpts[domain.Quote](logger, metrics, "quotes")...),
		details:   cache.NewStore(cache.FreshStockDetails, storeOpts[domain.StockDetails](logger, metrics, "stock_details")...),
		hours:     cache.NewStore(cache.FreshDefault, storeOpts[domain.MarketHours](logger, metrics, "market_hours")...),
		watchlist: cache.NewStore(cache.FreshWatchlist, storeOpts[[]domain.WatchlistItem](logger, metrics, "watchlist")...),
	}
	inv.Register(invalidation.CacheWatchlist, collectionTarget[domain.WatchlistItem]{
		store: r.watchlist,
		key:   allKey,
		id:    func(item domain.WatchlistItem) string { return item.Symbol },
	})
	return r
}

// FetchQuote returns a price snapshot for symbol, cache-first. Symbols are
// normalized so "aapl" and "AAPL" share one entry and one in-flight fetch.
func (r *StockRepository) FetchQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	key, err := symbolKey("stock.quote", symbol)
	if err != nil {
		return domain.Quote{}, err
	}
	return fetchThrough(ctx, r.quotes, &r.quoteFlight, key, func(ctx context.Context) (domain.Quote, error) {
		return r.source.GetQuote(ctx, key)
	})
}

// FetchDetails returns reference metadata for symbol, cache-first.
func (r *StockRepository) FetchDetails(ctx context.Context, symbol string) (domain.StockDetails, error) {
	key, err := symbolKey("stock.details", symbol)
	if err != nil {
		return domain.StockDetails{}, err
	}
	return fetchThrough(ctx, r.details, &r.detailsFlight, key, func(ctx context.Context) (domain.StockDetails, error) {
		return r.source.GetDetails(ctx, key)
	})
}

// FetchMarketHours reports whether the market is open. This read gates
// trading UI, so it never fails: on fetch errors the last known state is
// served, and with nothing cached the market is reported closed, the safe
// side.
func (r *StockRepository) FetchMarketHours(ctx context.Context) domain.MarketHours {
	hours, err := fetchThrough(ctx, r.hours, &r.hoursFlight, singletonKey, r.source.GetMarketHours)
	if err == nil {
		return hours
	}
	r.logger.Warn("market hours fetch failed, serving fallback", zap.Error(err))
	if ent, ok := r.hours.GetRaw(singletonKey); ok {
		return ent.Value
	}
	return domain.ClosedMarketHours()
}

// FetchWatchlist returns the watched symbols with their quotes, cache-first.
func (r *StockRepository) FetchWatchlist(ctx context.Context) ([]domain.WatchlistItem, error) {
	return fetchThrough(ctx, r.watchlist, &r.watchlistFlight, allKey, r.source.ListWatchlist)
}

// AddToWatchlist starts watching a symbol. The server assembles quote and
// metadata for the new row, so the list is refetched rather than merged.
func (r *StockRepository) AddToWatchlist(ctx context.Context, symbol string) (domain.WatchlistItem, error) {
	key, err := symbolKey("watchlist.add", symbol)
	if err != nil {
		return domain.WatchlistItem{}, err
	}
	item, err := r.source.AddToWatchlist(ctx, key)
	if err != nil {
		return domain.WatchlistItem{}, err
	}
	r.inv.Apply(invalidation.OpWatchlistAdded, invalidation.Scope{EntityID: key})
	return item, nil
}

// RemoveFromWatchlist stops watching a symbol.
func (r *StockRepository) RemoveFromWatchlist(ctx context.Context, symbol string) error {
	key, err := symbolKey("watchlist.remove", symbol)
	if err != nil {
		return err
	}
	if err := r.source.RemoveFromWatchlist(ctx, key); err != nil {
		return err
	}
	r.inv.Apply(invalidation.OpWatchlistRemoved, invalidation.Scope{EntityID: key})
	return nil
}

// InvalidateCache clears every market-data cache.
func (r *StockRepository) InvalidateCache() {
	r.quotes.Clear()
	r.details.Clear()
	r.hours.Clear()
	r.watchlist.Clear()
}

// Stats reports per-cache hit/miss statistics.
func (r *StockRepository) Stats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"quotes":        r.quotes.GetStats(),
		"stock_details": r.details.GetStats(),
		"market_hours":  r.hours.GetStats(),
		"watchlist":     r.watchlist.GetStats(),
	}
}

func symbolKey(op, symbol string) (string, error) {
	key := domain.NormalizeSymbol(symbol)
	if key == "" {
		return "", apperrors.Validation("EMPTY_SYMBOL", "a ticker symbol is required").
			WithOperation(op).
			Build()
	}
	return key, nil
}
