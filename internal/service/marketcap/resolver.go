package marketcap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FundVal/internal/domain/models"
	"FundVal/internal/domain/repository"
	"FundVal/pkg/cache"
	"FundVal/pkg/logger"

	"github.com/shopspring/decimal"
)

// Resolver resolves market capitalization by trying the primary source
// first and falling back to the secondary. Resolved values sit in the quote
// cache so repeated valuations of the same ticker do not burn provider
// quota.
type Resolver struct {
	primary   repository.MarketCapSource
	secondary repository.MarketCapSource
	quotes    cache.Service
	metrics   repository.Metrics
	log       *logger.Logger
	ttl       time.Duration
}

// Option configures Resolver.
type Option func(*Resolver)

func NewResolver(primary, secondary repository.MarketCapSource, quotes cache.Service, metrics repository.Metrics, log *logger.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		primary:   primary,
		secondary: secondary,
		quotes:    quotes,
		metrics:   metrics,
		log:       log,
		ttl:       15 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithTTL sets how long a resolved quote stays cached.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) { r.ttl = ttl }
}

// MarketCap returns the market capitalization in USD for a ticker, or
// models.ErrNoData when neither source can resolve it.
func (r *Resolver) MarketCap(ctx context.Context, ticker string) (decimal.Decimal, error) {
	key := quoteKey(ticker)

	var cached decimal.Decimal
	if err := r.quotes.Get(ctx, key, &cached); err == nil {
		r.metrics.RecordCacheOutcome("market_cap", true)
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		r.log.Warn("quote cache read failed", logger.Error(err))
	}
	r.metrics.RecordCacheOutcome("market_cap", false)

	cap, err := r.primary.MarketCap(ctx, ticker)
	if err == nil {
		r.metrics.RecordFetch("finnhub", "ok")
		r.store(ctx, key, cap)
		return cap, nil
	}
	r.metrics.RecordFetch("finnhub", outcome(err))
	if ctx.Err() != nil {
		return decimal.Zero, ctx.Err()
	}

	cap, err = r.secondary.MarketCap(ctx, ticker)
	if err == nil {
		r.metrics.RecordFetch("alphavantage", "ok")
		r.store(ctx, key, cap)
		return cap, nil
	}
	r.metrics.RecordFetch("alphavantage", outcome(err))

	return decimal.Zero, fmt.Errorf("%w: market cap for %s", models.ErrNoData, ticker)
}

func (r *Resolver) store(ctx context.Context, key string, cap decimal.Decimal) {
	if err := r.quotes.Set(ctx, key, cap, r.ttl); err != nil {
		r.log.Warn("quote cache write failed", logger.Error(err))
	}
}

func quoteKey(ticker string) string {
	return "quote:marketcap:" + ticker
}

func outcome(err error) string {
	switch {
	case errors.Is(err, models.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, models.ErrNoData):
		return "no_data"
	default:
		return "error"
	}
}
