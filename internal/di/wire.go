//go:build wireinject
// +build wireinject

package di

import (
	"IntelPull/pkg/config"
	"IntelPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient infrastructure
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,
		ProvideRateLimiter,

		// Source clients
		ProvideNewsSource,
		ProvideFinnhubStream,
		ProvideQuoteSource,
		ProvideFlightSource,
		ProvideVesselSource,
		ProvideSocialSource,

		// Analysis dependencies
		ProvideAnalyst,
		ProvideStateStore,
		ProvideArchive,
		ProvidePublisher,

		// Use cases
		ProvideAggregator,
		ProvideScoreUsecase,
		ProvideAnalysisUsecase,
		ProvideScheduler,

		// Facade and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
