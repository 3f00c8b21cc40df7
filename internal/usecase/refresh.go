package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"FundVal/internal/domain/models"
	"FundVal/internal/domain/repository"
	"FundVal/pkg/logger"

	"github.com/shopspring/decimal"
)

// ValuationService orchestrates the fetch-compute-cache pipeline. Reads go
// to the store first; a refresh happens only when nothing is cached or a
// newer filing has been observed. A failed refresh falls back to whatever
// the store already holds, so a dead provider degrades results instead of
// erasing them.
type ValuationService struct {
	source  repository.FundamentalsSource
	incomes repository.IncomeStore
	sheets  repository.BalanceSheetStore
	caps    repository.MarketCapSource
	metrics repository.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// ServiceOption configures ValuationService.
type ServiceOption func(*ValuationService)

func NewValuationService(
	source repository.FundamentalsSource,
	incomes repository.IncomeStore,
	sheets repository.BalanceSheetStore,
	caps repository.MarketCapSource,
	metrics repository.Metrics,
	log *logger.Logger,
	opts ...ServiceOption,
) *ValuationService {
	s := &ValuationService{
		source:  source,
		incomes: incomes,
		sheets:  sheets,
		caps:    caps,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithNowFunc overrides the clock used for refresh stamps.
func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *ValuationService) { s.now = now }
}

type queryOptions struct {
	marketCap  *decimal.Decimal
	filingDate *time.Time
}

// QueryOption adjusts a single valuation query.
type QueryOption func(*queryOptions)

// WithMarketCap supplies a market capitalization instead of resolving one.
func WithMarketCap(cap decimal.Decimal) QueryOption {
	return func(o *queryOptions) { o.marketCap = &cap }
}

// WithFilingDate supplies the newest observed filing date. Cached series
// stamped before this date are refreshed before computing.
func WithFilingDate(d time.Time) QueryOption {
	return func(o *queryOptions) { o.filingDate = &d }
}

// AveragePE returns the trailing average P/E for a ticker. A nil result
// with a nil error means the ratio is undefined for this ticker right now.
func (s *ValuationService) AveragePE(ctx context.Context, ticker string, opts ...QueryOption) (*models.PEResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordLatency("average_pe", time.Since(start).Seconds())
	}()

	ticker = NormalizeTicker(ticker)
	q := applyOptions(opts)

	cap, ok, err := s.resolveMarketCap(ctx, ticker, q)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	cached, err := s.ensureIncome(ctx, ticker, q.filingDate)
	if err != nil {
		return nil, err
	}

	return AveragePE(cached, cap), nil
}

// AssetValuation returns NTA/NCAV metrics for a ticker. A nil result with a
// nil error means no balance sheet data or market cap is available.
func (s *ValuationService) AssetValuation(ctx context.Context, ticker string, opts ...QueryOption) (*models.AssetValuationResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordLatency("asset_valuation", time.Since(start).Seconds())
	}()

	ticker = NormalizeTicker(ticker)
	q := applyOptions(opts)

	cap, ok, err := s.resolveMarketCap(ctx, ticker, q)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	cached, err := s.ensureBalanceSheet(ctx, ticker, q.filingDate)
	if err != nil {
		return nil, err
	}
	if cached == nil || len(cached.Records) == 0 {
		return nil, nil
	}

	return AssetValuation(cached.Records[0], cap), nil
}

// Refresh re-validates both cached datasets for a ticker against an
// observed filing date. Used by the filing event consumer; a provider
// failure is not an error here, only a store failure is.
func (s *ValuationService) Refresh(ctx context.Context, ticker string, observed time.Time) error {
	ticker = NormalizeTicker(ticker)

	if _, err := s.ensureIncome(ctx, ticker, &observed); err != nil {
		return err
	}
	if _, err := s.ensureBalanceSheet(ctx, ticker, &observed); err != nil {
		return err
	}
	return nil
}

func (s *ValuationService) ensureIncome(ctx context.Context, ticker string, observed *time.Time) (*models.CachedIncome, error) {
	cached, err := s.incomes.Read(ctx, ticker)
	if err != nil {
		s.metrics.RecordError("store_read")
		return nil, err
	}
	s.metrics.RecordCacheOutcome("income", cached != nil)

	if !needsRefresh(cached == nil, lastRefreshedOf(cached), observed) {
		return cached, nil
	}

	records, err := s.source.FetchIncome(ctx, ticker)
	if err != nil {
		s.metrics.RecordFetch("alphavantage", fetchOutcome(err))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Warn("income refresh failed, serving cached data",
			logger.String("ticker", ticker),
			logger.Bool("have_cache", cached != nil),
			logger.Error(err))
		return cached, nil
	}
	s.metrics.RecordFetch("alphavantage", "ok")

	if err := s.incomes.Write(ctx, ticker, records, s.today()); err != nil {
		s.metrics.RecordError("store_write")
		return nil, err
	}
	return s.incomes.Read(ctx, ticker)
}

func (s *ValuationService) ensureBalanceSheet(ctx context.Context, ticker string, observed *time.Time) (*models.CachedBalanceSheet, error) {
	cached, err := s.sheets.Read(ctx, ticker)
	if err != nil {
		s.metrics.RecordError("store_read")
		return nil, err
	}
	s.metrics.RecordCacheOutcome("balance_sheet", cached != nil)

	if !needsRefresh(cached == nil, lastRefreshedOfSheet(cached), observed) {
		return cached, nil
	}

	records, err := s.source.FetchBalanceSheet(ctx, ticker)
	if err != nil {
		s.metrics.RecordFetch("alphavantage", fetchOutcome(err))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Warn("balance sheet refresh failed, serving cached data",
			logger.String("ticker", ticker),
			logger.Bool("have_cache", cached != nil),
			logger.Error(err))
		return cached, nil
	}
	s.metrics.RecordFetch("alphavantage", "ok")

	if err := s.sheets.Write(ctx, ticker, records, s.today()); err != nil {
		s.metrics.RecordError("store_write")
		return nil, err
	}
	return s.sheets.Read(ctx, ticker)
}

func (s *ValuationService) resolveMarketCap(ctx context.Context, ticker string, q *queryOptions) (decimal.Decimal, bool, error) {
	if q.marketCap != nil {
		return *q.marketCap, true, nil
	}

	cap, err := s.caps.MarketCap(ctx, ticker)
	if err != nil {
		if errors.Is(err, models.ErrNoData) || errors.Is(err, models.ErrNotConfigured) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	return cap, true, nil
}

func (s *ValuationService) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

// NormalizeTicker uppercases and trims a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func applyOptions(opts []QueryOption) *queryOptions {
	q := &queryOptions{}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// needsRefresh is the staleness rule: refresh when nothing is cached, or
// when a filing was observed after the cache was last stamped.
func needsRefresh(missing bool, lastRefreshed time.Time, observed *time.Time) bool {
	if missing {
		return true
	}
	return observed != nil && observed.After(lastRefreshed)
}

func lastRefreshedOf(c *models.CachedIncome) time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.LastRefreshed
}

func lastRefreshedOfSheet(c *models.CachedBalanceSheet) time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.LastRefreshed
}

func fetchOutcome(err error) string {
	switch {
	case errors.Is(err, models.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, models.ErrNoData):
		return "no_data"
	default:
		return "error"
	}
}
