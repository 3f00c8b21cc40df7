package fx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FundVal/internal/domain/models"
	pkghttp "FundVal/pkg/http"
	"FundVal/pkg/logger"

	"github.com/shopspring/decimal"
)

// RateSource fetches a full USD-based exchange rate table. Each entry is
// "1 USD = X units of currency".
type RateSource interface {
	Fetch(ctx context.Context) (map[string]float64, error)
}

// HTTPRateSource pulls the rate table from an open exchange rate endpoint.
type HTTPRateSource struct {
	client *pkghttp.Client
	url    string
}

func NewHTTPRateSource(client *pkghttp.Client, url string) *HTTPRateSource {
	return &HTTPRateSource{client: client, url: url}
}

type rateResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

func (s *HTTPRateSource) Fetch(ctx context.Context) (map[string]float64, error) {
	var resp rateResponse
	if err := s.client.GetJSON(ctx, &pkghttp.RequestOptions{URL: s.url}, &resp); err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	if resp.Result != "success" || len(resp.Rates) == 0 {
		return nil, fmt.Errorf("fetch rates: provider returned %q", resp.Result)
	}
	return resp.Rates, nil
}

// RateCache holds one snapshot of the full rate table and replaces it
// wholesale once it is older than maxAge. Rates inside a snapshot are never
// mixed with rates from another snapshot.
type RateCache struct {
	source RateSource
	maxAge time.Duration
	log    *logger.Logger
	now    func() time.Time

	mu        sync.Mutex
	rates     map[string]decimal.Decimal
	fetchedAt time.Time
}

// RateCacheOption configures RateCache.
type RateCacheOption func(*RateCache)

func NewRateCache(source RateSource, log *logger.Logger, opts ...RateCacheOption) *RateCache {
	rc := &RateCache{
		source: source,
		maxAge: 24 * time.Hour,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// WithMaxAge sets how long a snapshot stays valid.
func WithMaxAge(d time.Duration) RateCacheOption {
	return func(rc *RateCache) {
		rc.maxAge = d
	}
}

// WithNowFunc overrides the clock.
func WithNowFunc(now func() time.Time) RateCacheOption {
	return func(rc *RateCache) {
		rc.now = now
	}
}

// Rate returns the USD rate for a currency code. A missing or non-positive
// rate, or a failed refresh once the snapshot has aged out, yields
// models.ErrRateUnavailable. An expired snapshot is never served.
func (rc *RateCache) Rate(ctx context.Context, currency string) (decimal.Decimal, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.rates == nil || rc.now().Sub(rc.fetchedAt) > rc.maxAge {
		if err := rc.refreshLocked(ctx); err != nil {
			rc.log.Warn("exchange rate refresh failed",
				logger.Error(err))
			return decimal.Zero, fmt.Errorf("%w: %s", models.ErrRateUnavailable, currency)
		}
	}

	rate, ok := rc.rates[currency]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", models.ErrRateUnavailable, currency)
	}
	return rate, nil
}

func (rc *RateCache) refreshLocked(ctx context.Context) error {
	raw, err := rc.source.Fetch(ctx)
	if err != nil {
		return err
	}

	rates := make(map[string]decimal.Decimal, len(raw))
	for code, v := range raw {
		rates[code] = decimal.NewFromFloat(v)
	}
	rc.rates = rates
	rc.fetchedAt = rc.now()

	rc.log.Debug("exchange rate snapshot replaced",
		logger.Int("currencies", len(rates)))
	return nil
}
