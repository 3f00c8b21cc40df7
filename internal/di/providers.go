package di

import (
	"context"
	"fmt"
	"time"

	"FundVal/internal/domain/repository"
	"FundVal/internal/handler/api"
	internalrepo "FundVal/internal/repository"
	"FundVal/internal/service/alphavantage"
	"FundVal/internal/service/finnhub"
	"FundVal/internal/service/fx"
	"FundVal/internal/service/marketcap"
	"FundVal/internal/service/ratelimit"
	"FundVal/internal/usecase"
	"FundVal/pkg/cache"
	"FundVal/pkg/config"
	xhttp "FundVal/pkg/http"
	pkgkafka "FundVal/pkg/kafka"
	"FundVal/pkg/logger"
	"FundVal/pkg/metrics"
	"FundVal/pkg/postgres"
	"FundVal/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the shared outbound HTTP client.
func ProvideHTTPClient() *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(30 * time.Second))
}

// ProvideLimiter creates the shared provider rate limiter.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvidePostgres connects to Postgres and applies pending migrations.
func ProvidePostgres(cfg *config.Config) (*postgres.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := postgres.NewClient(ctx,
		postgres.WithHost(cfg.Postgres.Host),
		postgres.WithPort(cfg.Postgres.Port),
		postgres.WithDatabase(cfg.Postgres.Database),
		postgres.WithCredentials(cfg.Postgres.User, cfg.Postgres.Password),
		postgres.WithSSLMode(cfg.Postgres.SSLMode),
		postgres.WithPool(cfg.Postgres.MaxConns, cfg.Postgres.MinConns),
		postgres.WithDialTimeout(cfg.Postgres.DialTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}

	if err := postgres.Migrate(client.DSN()); err != nil {
		client.Close()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	return client, nil
}

// ProvideIncomeStore creates the income series store.
func ProvideIncomeStore(pg *postgres.Client) repository.IncomeStore {
	return internalrepo.NewIncomeStore(pg.Pool())
}

// ProvideBalanceSheetStore creates the balance sheet series store.
func ProvideBalanceSheetStore(pg *postgres.Client) repository.BalanceSheetStore {
	return internalrepo.NewBalanceSheetStore(pg.Pool())
}

// ProvideRateCache creates the exchange rate snapshot cache.
func ProvideRateCache(httpClient *xhttp.Client, log *logger.Logger, cfg *config.Config) *fx.RateCache {
	source := fx.NewHTTPRateSource(httpClient, cfg.ExchangeRate.URL)
	return fx.NewRateCache(source, log, fx.WithMaxAge(cfg.ExchangeRate.MaxAge))
}

// ProvideConverter creates the USD converter.
func ProvideConverter(rates *fx.RateCache) *fx.Converter {
	return fx.NewConverter(rates)
}

// ProvideAlphaVantage creates the Alpha Vantage client.
func ProvideAlphaVantage(
	httpClient *xhttp.Client,
	converter *fx.Converter,
	limiter *ratelimit.Limiter,
	log *logger.Logger,
	cfg *config.Config,
) *alphavantage.Client {
	return alphavantage.NewClient(httpClient, converter, limiter, log,
		alphavantage.WithAPIKey(cfg.AlphaVantage.APIKey),
		alphavantage.WithBaseURL(cfg.AlphaVantage.BaseURL),
		alphavantage.WithRequestsPerMinute(cfg.AlphaVantage.RequestsPerMinute),
	)
}

// ProvideFundamentalsSource exposes the Alpha Vantage client as the
// fundamentals source.
func ProvideFundamentalsSource(client *alphavantage.Client) repository.FundamentalsSource {
	return client
}

// ProvideFinnhub creates the Finnhub client.
func ProvideFinnhub(httpClient *xhttp.Client, limiter *ratelimit.Limiter, log *logger.Logger, cfg *config.Config) *finnhub.Client {
	return finnhub.NewClient(httpClient, limiter, log,
		finnhub.WithAPIKey(cfg.Finnhub.APIKey),
		finnhub.WithBaseURL(cfg.Finnhub.BaseURL),
	)
}

// ProvideQuoteCache creates the quote cache backend.
func ProvideQuoteCache(cfg *config.Config) (cache.Service, error) {
	if cfg.QuoteCache.Backend == "redis" {
		prefix := cfg.QuoteCache.Redis.Prefix
		if prefix == "" {
			prefix = "fundval"
		}
		return cache.NewRedisCache(
			cache.WithRedisHost(cfg.QuoteCache.Redis.Host),
			cache.WithRedisPort(cfg.QuoteCache.Redis.Port),
			cache.WithRedisPassword(cfg.QuoteCache.Redis.Password),
			cache.WithRedisDB(cfg.QuoteCache.Redis.DB),
			cache.WithRedisPrefix(prefix),
		)
	}
	return cache.NewMemoryCache(), nil
}

// ProvideMarketCapResolver creates the market cap resolver with Finnhub as
// the primary source and Alpha Vantage as the fallback.
func ProvideMarketCapResolver(
	primary *finnhub.Client,
	secondary *alphavantage.Client,
	quotes cache.Service,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) repository.MarketCapSource {
	return marketcap.NewResolver(primary, secondary, quotes, m, log,
		marketcap.WithTTL(cfg.QuoteCache.TTL))
}

// ProvideValuationService creates the valuation orchestrator.
func ProvideValuationService(
	source repository.FundamentalsSource,
	incomes repository.IncomeStore,
	sheets repository.BalanceSheetStore,
	caps repository.MarketCapSource,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.ValuationService {
	return usecase.NewValuationService(source, incomes, sheets, caps, m, log)
}

// ProvideKafkaConsumer creates the filing event consumer, or nil when no
// brokers are configured.
func ProvideKafkaConsumer(cfg *config.Config, log *logger.Logger) (*pkgkafka.Consumer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(log,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideFilingEventHandler creates the filing topic handler.
func ProvideFilingEventHandler(svc *usecase.ValuationService, cfg *config.Config, log *logger.Logger) pkgkafka.MessageHandler {
	if cfg.Kafka.FilingsTopic == "" {
		return nil
	}
	return usecase.NewFilingEventHandler(svc, cfg.Kafka.FilingsTopic, log)
}

// ProvideHTTPHandler creates the HTTP route handler.
func ProvideHTTPHandler(svc *usecase.ValuationService, log *logger.Logger) xhttp.Handler {
	return api.NewValuationHandler(svc, log)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	handler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	pg *postgres.Client,
) *server.App {
	return server.New(cfg, log, handler, consumer, kh, pg)
}
