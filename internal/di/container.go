// Package di assembles the client: configuration, logging, metrics, the
// remote transport, the shared invalidator and one repository per data
// domain. Construction goes through InitializeContainer (generated by Wire);
// the providers here are the single source of truth for how each piece is
// built.
package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"nestegg-client/internal/cache"
	"nestegg-client/internal/config"
	"nestegg-client/internal/invalidation"
	"nestegg-client/internal/observability"
	"nestegg-client/internal/remote"
	"nestegg-client/internal/repository"
)

// Container holds every constructed component of the client.
type Container struct {
	Config      config.Config
	Watcher     *config.Watcher
	Logger      *zap.Logger
	Metrics     *observability.Collector
	Client      *remote.Client
	Invalidator *invalidation.Invalidator

	Portfolios *repository.PortfolioRepository
	Goals      *repository.GoalRepository
	Schedules  *repository.ScheduleRepository
	Families   *repository.FamilyRepository
	Funding    *repository.FundingRepository
	Stocks     *repository.StockRepository
	Users      *repository.UserRepository
	Insights   *repository.InsightRepository
}

// ClearAllCaches drops every cached entry across all domains, e.g. on
// sign-out.
func (c *Container) ClearAllCaches() {
	c.Portfolios.InvalidateCache()
	c.Goals.InvalidateCache()
	c.Schedules.InvalidateCache()
	c.Families.InvalidateCache()
	c.Funding.InvalidateCache()
	c.Stocks.InvalidateCache()
	c.Users.InvalidateCache()
	c.Insights.InvalidateCache()
	c.Logger.Info("all caches cleared")
}

// CacheStats merges hit/miss statistics from every repository, keyed by cache
// name.
func (c *Container) CacheStats() map[string]cache.Stats {
	merged := make(map[string]cache.Stats)
	for _, stats := range []map[string]cache.Stats{
		c.Portfolios.Stats(),
		c.Goals.Stats(),
		c.Schedules.Stats(),
		c.Families.Stats(),
		c.Funding.Stats(),
		c.Stocks.Stats(),
		c.Users.Stats(),
		c.Insights.Stats(),
	} {
		for name, s := range stats {
			merged[name] = s
		}
	}
	return merged
}

// Close releases the container's resources.
func (c *Container) Close() error {
	err := c.Watcher.Close()
	_ = c.Logger.Sync()
	return err
}

func provideLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.LogLevel, err)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = level
	return zapCfg.Build()
}

func provideWatcher(cfg config.Config, logger *zap.Logger) (*config.Watcher, error) {
	return config.NewWatcher(cfg, logger)
}

func provideMetrics() *observability.Collector {
	return observability.NewCollector("nestegg")
}

// provideTokenProvider reads the token through the watcher, so a rotated
// credential reaches the transport without reconstruction.
func provideTokenProvider(watcher *config.Watcher) remote.TokenProvider {
	return func() string {
		return watcher.Current().API.Token
	}
}

func provideRemoteClient(cfg config.Config, token remote.TokenProvider, logger *zap.Logger, metrics *observability.Collector) (*remote.Client, error) {
	return remote.NewClient(remote.Options{
		BaseURL:    cfg.API.BaseURL,
		Token:      token,
		Timeout:    cfg.API.Timeout,
		MaxRetries: cfg.API.MaxRetries,
		Logger:     logger,
		Metrics:    metrics,
	})
}

func provideInvalidator(logger *zap.Logger) *invalidation.Invalidator {
	return invalidation.NewInvalidator(logger)
}

func providePortfolioRepository(client *remote.Client, inv *invalidation.Invalidator, logger *zap.Logger, metrics *observability.Collector) *repository.PortfolioRepository {
	return repository.NewPortfolioRepository(remote.NewPortfolioSource(client), inv, logger, metrics)
}

func provideGoalRepository(client *remote.Client, inv *invalidation.Invalidator, logger *zap.Logger, metrics *observability.Collector) *repository.GoalRepository {
	return repository.NewGoalRepository(remote.NewGoalSource(client), inv, logger, metrics)
}

func provideScheduleRepository(client *remote.Client, inv *invalidation.Invalidator, logger *zap.Logger, metrics *observability.Collector) *repository.ScheduleRepository {
	return repository.NewScheduleRepository(remote.NewScheduleSource(client), inv, logger, metrics)
}

func provideFamilyRepository(client *remote.Client, inv *invalidation.Invalidator, logger *zap.Logger, metrics *observability.Collector) *repository.FamilyRepository {
	return repository.NewFamilyRepository(remote.NewFamilySource(client), inv, logger, metrics)
}

func provideFundingRepository(client *remote.Client, inv *invalidation.Invalidator, logger *zap.Logger, metrics *observability.Collector) *repository.FundingRepository {
	return repository.NewFundingRepository(remote.NewFundingSource(client), inv, logger, metrics)
}

func provideStockRepository(client *remote.Client, inv *invalidation.Invalidator, logger *zap.Logger, metrics *observability.Collector) *repository.StockRepository {
	return repository.NewStockRepository(remote.NewStockSource(client), inv, logger, metrics)
}

func provideUserRepository(client *remote.Client, inv *invalidation.Invalidator, logger *zap.Logger, metrics *observability.Collector) *repository.UserRepository {
	return repository.NewUserRepository(remote.NewUserSource(client), inv, logger, metrics)
}

// provideInsightRepository picks the insight backend: Gemini when a key is
// configured, the API's insight endpoints otherwise.
func provideInsightRepository(cfg config.Config, client *remote.Client, logger *zap.Logger, metrics *observability.Collector) (*repository.InsightRepository, error) {
	var source repository.InsightSource = remote.NewInsightSource(client)
	if key := cfg.Insights.GeminiAPIKey; key != "" {
		genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		source = remote.NewGenAIInsightSource(genaiClient)
		logger.Info("insights backed by gemini")
	}
	return repository.NewInsightRepository(source, logger, metrics), nil
}
