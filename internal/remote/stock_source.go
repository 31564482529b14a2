package remote

import (
	"context"

	"nestegg-client/internal/domain"
)

// StockSource talks to the market-data and watchlist endpoints.
type StockSource struct {
	client *Client
}

func NewStockSource(client *Client) *StockSource {
	return &StockSource{client: client}
}

func (s *StockSource) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	var out domain.Quote
	if err := s.client.get(ctx, "/v1/stocks/"+domain.NormalizeSymbol(symbol)+"/quote", &out); err != nil {
		return domain.Quote{}, err
	}
	return out, nil
}

func (s *StockSource) GetDetails(ctx context.Context, symbol string) (domain.StockDetails, error) {
	var out domain.StockDetails
	if err := s.client.get(ctx, "/v1/stocks/"+domain.NormalizeSymbol(symbol), &out); err != nil {
		return domain.StockDetails{}, err
	}
	return out, nil
}

func (s *StockSource) GetMarketHours(ctx context.Context) (domain.MarketHours, error) {
	var out domain.MarketHours
	if err := s.client.get(ctx, "/v1/stocks/market-hours", &out); err != nil {
		return domain.MarketHours{}, err
	}
	return out, nil
}

func (s *StockSource) ListWatchlist(ctx context.Context) ([]domain.WatchlistItem, error) {
	var out []domain.WatchlistItem
	if err := s.client.get(ctx, "/v1/watchlist", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *StockSource) AddToWatchlist(ctx context.Context, symbol string) (domain.WatchlistItem, error) {
	body := map[string]string{"symbol": domain.NormalizeSymbol(symbol)}
	var out domain.WatchlistItem
	if err := s.client.post(ctx, "/v1/watchlist", body, &out); err != nil {
		return domain.WatchlistItem{}, err
	}
	return out, nil
}

func (s *StockSource) RemoveFromWatchlist(ctx context.Context, symbol string) error {
	return s.client.delete(ctx, "/v1/watchlist/"+domain.NormalizeSymbol(symbol))
}
