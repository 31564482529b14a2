package repository

import (
	"context"

	"go.uber.org/zap"

	"nestegg-client/internal/cache"
	"nestegg-client/internal/domain"
	apperrors "nestegg-client/internal/errors"
	"nestegg-client/internal/flight"
	"nestegg-client/internal/observability"
	"nestegg-client/internal/remote"
)

// InsightSource is the remote surface the insight repository needs. Both the
// API-backed source and the Gemini-backed source satisfy it.
type InsightSource interface {
	ListInsights(ctx context.Context) ([]domain.Insight, error)
	GetStockExplanation(ctx context.Context, symbol string) (domain.StockExplanation, error)
	ListInvestingTips(ctx context.Context) ([]domain.InvestingTip, error)
}

var (
	_ InsightSource = (*remote.InsightSource)(nil)
	_ InsightSource = (*remote.GenAIInsightSource)(nil)
)

// InsightRepository caches AI-generated content. The domain is read-only, so
// it registers no invalidation targets; generation is expensive, so the
// freshness windows are the longest in the client.
type InsightRepository struct {
	source InsightSource
	logger *zap.Logger

	insights     *cache.Store[string, []domain.Insight]
	explanations *cache.Store[string, domain.StockExplanation]
	tips         *cache.Store[string, []domain.InvestingTip]

	insightsFlight     flight.Group[[]domain.Insight]
	explanationsFlight flight.Group[domain.StockExplanation]
	tipsFlight         flight.Group[[]domain.InvestingTip]
}

// NewInsightRepository wires the repository.
func NewInsightRepository(source InsightSource, logger *zap.Logger, metrics *observability.Collector) *InsightRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightRepository{
		source:       source,
		logger:       logger.Named("insight"),
		insights:     cache.NewStore(cache.FreshInsights, storeOpts[[]domain.Insight](logger, metrics, "insights")...),
		explanations: cache.NewStore(cache.FreshStockExplanation, storeOpts[domain.StockExplanation](logger, metrics, "stock_explanations")...),
		tips:         cache.NewStore(cache.FreshInvestingTips, storeOpts[[]domain.InvestingTip](logger, metrics, "investing_tips")...),
	}
}

// FetchInsights returns AI observations about the user's finances,
// cache-first.
func (r *InsightRepository) FetchInsights(ctx context.Context) ([]domain.Insight, error) {
	return fetchThrough(ctx, r.insights, &r.insightsFlight, allKey, r.source.ListInsights)
}

// FetchStockExplanation returns a plain-language description of one stock.
// Symbols are normalized, so concurrent requests for "aapl" and "AAPL" share
// a single generation.
func (r *InsightRepository) FetchStockExplanation(ctx context.Context, symbol string) (domain.StockExplanation, error) {
	key := domain.NormalizeSymbol(symbol)
	if key == "" {
		return domain.StockExplanation{}, apperrors.Validation("EMPTY_SYMBOL", "a ticker symbol is required").
			WithOperation("insight.stock_explanation").
			Build()
	}
	return fetchThrough(ctx, r.explanations, &r.explanationsFlight, key, func(ctx context.Context) (domain.StockExplanation, error) {
		return r.source.GetStockExplanation(ctx, key)
	})
}

// FetchInvestingTips returns near-static editorial tips, cache-first.
func (r *InsightRepository) FetchInvestingTips(ctx context.Context) ([]domain.InvestingTip, error) {
	return fetchThrough(ctx, r.tips, &r.tipsFlight, allKey, r.source.ListInvestingTips)
}

// InvalidateCache clears every insight cache.
func (r *InsightRepository) InvalidateCache() {
	r.insights.Clear()
	r.explanations.Clear()
	r.tips.Clear()
}

// Stats reports per-cache hit/miss statistics.
func (r *InsightRepository) Stats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"insights":           r.insights.GetStats(),
		"stock_explanations": r.explanations.GetStats(),
		"investing_tips":     r.tips.GetStats(),
	}
}
