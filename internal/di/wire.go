//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"DevSight/pkg/config"
	"DevSight/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Catalog and pricing
		ProvideCatalog,
		ProvidePriceCache,
		ProvideSampler,
		ProvideIdentifier,

		// Persistence and recording
		ProvideLoginStore,
		ProvideLiveHub,
		ProvideLoginPublisher,
		ProvideLoginRecorder,
		ProvideKafkaConsumer,
		ProvideReports,

		// HTTP
		ProvideLimiter,
		ProvideRouter,
		ProvideHTTPServer,

		ProvideApp,
	)
	return nil, nil, nil
}
