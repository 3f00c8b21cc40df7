//go:build wireinject
// +build wireinject

package di

import (
	"FundVal/pkg/config"
	"FundVal/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideHTTPClient,
		ProvideLimiter,
		ProvidePostgres,
		ProvideQuoteCache,
		ProvideKafkaConsumer,

		// Providers and stores
		ProvideRateCache,
		ProvideConverter,
		ProvideAlphaVantage,
		ProvideFundamentalsSource,
		ProvideFinnhub,
		ProvideMarketCapResolver,
		ProvideIncomeStore,
		ProvideBalanceSheetStore,

		// Use cases
		ProvideValuationService,
		ProvideFilingEventHandler,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
