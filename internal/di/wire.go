//go:build wireinject
// +build wireinject

package di

import (
	"MacroPulse/pkg/config"
	"MacroPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideStore,
		ProvideArchive,
		ProvideHub,
		ProvideEventPublisher,

		// Repositories and providers
		ProvideSeriesRepository,
		ProvideObservationProvider,

		// Use cases
		ProvideRefresher,
		ProvideIndicators,

		// HTTP and scheduling
		ProvideHandler,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
