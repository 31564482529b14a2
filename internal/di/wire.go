//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"nestegg-client/internal/config"
)

// InitializeContainer builds the full dependency graph from a config file
// path. Run `wire` in this directory after changing providers.
func InitializeContainer(configPath string) (*Container, error) {
	wire.Build(
		config.Load,
		provideLogger,
		provideWatcher,
		provideMetrics,
		provideTokenProvider,
		provideRemoteClient,
		provideInvalidator,
		providePortfolioRepository,
		provideGoalRepository,
		provideScheduleRepository,
		provideFamilyRepository,
		provideFundingRepository,
		provideStockRepository,
		provideUserRepository,
		provideInsightRepository,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil
}
