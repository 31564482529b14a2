package remote

import (
	"context"

	"nestegg-client/internal/domain"
)

// InsightSource talks to the AI-insight endpoints of the Nestegg API.
type InsightSource struct {
	client *Client
}

func NewInsightSource(client *Client) *InsightSource {
	return &InsightSource{client: client}
}

func (s *InsightSource) ListInsights(ctx context.Context) ([]domain.Insight, error) {
	var out []domain.Insight
	if err := s.client.get(ctx, "/v1/insights", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *InsightSource) GetStockExplanation(ctx context.Context, symbol string) (domain.StockExplanation, error) {
	var out domain.StockExplanation
	if err := s.client.get(ctx, "/v1/insights/stocks/"+domain.NormalizeSymbol(symbol), &out); err != nil {
		return domain.StockExplanation{}, err
	}
	return out, nil
}

func (s *InsightSource) ListInvestingTips(ctx context.Context) ([]domain.InvestingTip, error) {
	var out []domain.InvestingTip
	if err := s.client.get(ctx, "/v1/insights/tips", &out); err != nil {
		return nil, err
	}
	return out, nil
}
