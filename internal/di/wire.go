//go:build wireinject
// +build wireinject

package di

import (
	"PairPulse/pkg/config"
	"PairPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideTickStore,
		ProvideTickPublisher,
		ProvideMarketStream,

		// Pipeline
		ProvideTickBuffer,
		ProvideIngestPipeline,
		ProvideTickCollector,
		ProvidePersistenceWorker,

		// Analytics and alerts
		ProvideAlertEngine,
		ProvideLiveBroadcaster,
		ProvideBytesCache,
		ProvideMarketDataUseCase,
		ProvidePairAnalyticsUseCase,

		// HTTP surface
		ProvideRouter,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
