package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"FundVal/internal/domain/models"
	"FundVal/pkg/logger"

	"github.com/shopspring/decimal"
)

type fakeFundamentals struct {
	income      []models.IncomeRecord
	incomeErr   error
	incomeCalls int
	sheets      []models.BalanceSheetRecord
	sheetsErr   error
	sheetsCalls int
}

func (f *fakeFundamentals) FetchIncome(_ context.Context, _ string) ([]models.IncomeRecord, error) {
	f.incomeCalls++
	if f.incomeErr != nil {
		return nil, f.incomeErr
	}
	return f.income, nil
}

func (f *fakeFundamentals) FetchBalanceSheet(_ context.Context, _ string) ([]models.BalanceSheetRecord, error) {
	f.sheetsCalls++
	if f.sheetsErr != nil {
		return nil, f.sheetsErr
	}
	return f.sheets, nil
}

type fakeIncomeStore struct {
	data map[string]*models.CachedIncome
	err  error
}

func (f *fakeIncomeStore) Write(_ context.Context, ticker string, records []models.IncomeRecord, asOf time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.data[ticker] = &models.CachedIncome{Ticker: ticker, LastRefreshed: asOf, Records: records}
	return nil
}

func (f *fakeIncomeStore) Read(_ context.Context, ticker string) (*models.CachedIncome, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data[ticker], nil
}

type fakeSheetStore struct {
	data map[string]*models.CachedBalanceSheet
}

func (f *fakeSheetStore) Write(_ context.Context, ticker string, records []models.BalanceSheetRecord, asOf time.Time) error {
	f.data[ticker] = &models.CachedBalanceSheet{Ticker: ticker, LastRefreshed: asOf, Records: records}
	return nil
}

func (f *fakeSheetStore) Read(_ context.Context, ticker string) (*models.CachedBalanceSheet, error) {
	return f.data[ticker], nil
}

type fixedCaps struct {
	cap decimal.Decimal
	err error
}

func (f fixedCaps) MarketCap(_ context.Context, _ string) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.cap, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string)      {}
func (nopMetrics) RecordCacheOutcome(string, bool) {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLatency(string, float64)   {}

func sevenFlatYears(income int64) []models.IncomeRecord {
	records := make([]models.IncomeRecord, 0, 7)
	for y := 2024; y >= 2018; y-- {
		records = append(records, models.IncomeRecord{
			Ticker:     "AAPL",
			FiscalYear: y,
			NetIncome:  decimal.NewFromInt(income),
		})
	}
	return records
}

type fixture struct {
	svc     *ValuationService
	source  *fakeFundamentals
	incomes *fakeIncomeStore
	sheets  *fakeSheetStore
}

func newFixture(t *testing.T, caps fixedCaps) *fixture {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	source := &fakeFundamentals{}
	incomes := &fakeIncomeStore{data: make(map[string]*models.CachedIncome)}
	sheets := &fakeSheetStore{data: make(map[string]*models.CachedBalanceSheet)}
	svc := NewValuationService(source, incomes, sheets, caps, nopMetrics{}, log,
		WithNowFunc(func() time.Time {
			return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		}))

	return &fixture{svc: svc, source: source, incomes: incomes, sheets: sheets}
}

func TestAveragePEColdCacheFetches(t *testing.T) {
	f := newFixture(t, fixedCaps{cap: decimal.NewFromInt(2_000_000_000)})
	f.source.income = sevenFlatYears(100_000_000)

	got, err := f.svc.AveragePE(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("AveragePE: %v", err)
	}
	if got == nil || got.PERatio != 20.0 {
		t.Fatalf("unexpected result %+v", got)
	}
	if f.source.incomeCalls != 1 {
		t.Fatalf("expected one fetch, got %d", f.source.incomeCalls)
	}
	cached := f.incomes.data["AAPL"]
	if cached == nil || len(cached.Records) != 7 {
		t.Fatalf("fetch result should be cached")
	}
	if !cached.LastRefreshed.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("cache stamped %v, want today at midnight", cached.LastRefreshed)
	}
}

func TestAveragePEWarmCacheSkipsFetch(t *testing.T) {
	f := newFixture(t, fixedCaps{cap: decimal.NewFromInt(2_000_000_000)})
	f.incomes.data["AAPL"] = &models.CachedIncome{
		Ticker:        "AAPL",
		LastRefreshed: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Records:       sevenFlatYears(100_000_000),
	}

	got, err := f.svc.AveragePE(context.Background(), "AAPL")
	if err != nil || got == nil {
		t.Fatalf("AveragePE: %v, %+v", err, got)
	}
	if f.source.incomeCalls != 0 {
		t.Fatalf("warm cache should not fetch")
	}
}

func TestAveragePENewFilingTriggersRefresh(t *testing.T) {
	f := newFixture(t, fixedCaps{cap: decimal.NewFromInt(2_000_000_000)})
	f.incomes.data["AAPL"] = &models.CachedIncome{
		Ticker:        "AAPL",
		LastRefreshed: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Records:       sevenFlatYears(50_000_000),
	}
	f.source.income = sevenFlatYears(100_000_000)

	got, err := f.svc.AveragePE(context.Background(), "AAPL",
		WithFilingDate(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("AveragePE: %v", err)
	}
	if f.source.incomeCalls != 1 {
		t.Fatalf("newer filing should trigger a fetch")
	}
	if got.PERatio != 20.0 {
		t.Fatalf("result should use refreshed series, got %v", got.PERatio)
	}
}

func TestAveragePEOldFilingKeepsCache(t *testing.T) {
	f := newFixture(t, fixedCaps{cap: decimal.NewFromInt(2_000_000_000)})
	f.incomes.data["AAPL"] = &models.CachedIncome{
		Ticker:        "AAPL",
		LastRefreshed: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Records:       sevenFlatYears(100_000_000),
	}

	_, err := f.svc.AveragePE(context.Background(), "AAPL",
		WithFilingDate(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("AveragePE: %v", err)
	}
	if f.source.incomeCalls != 0 {
		t.Fatalf("older filing must not trigger a fetch")
	}
}

func TestAveragePEFetchFailureServesStaleCache(t *testing.T) {
	f := newFixture(t, fixedCaps{cap: decimal.NewFromInt(2_000_000_000)})
	f.incomes.data["AAPL"] = &models.CachedIncome{
		Ticker:        "AAPL",
		LastRefreshed: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Records:       sevenFlatYears(100_000_000),
	}
	f.source.incomeErr = models.ErrNoData

	got, err := f.svc.AveragePE(context.Background(), "AAPL",
		WithFilingDate(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("stale cache should still serve: %v", err)
	}
	if got == nil || got.PERatio != 20.0 {
		t.Fatalf("expected stale result, got %+v", got)
	}
}

func TestAveragePEColdCacheFetchFailure(t *testing.T) {
	f := newFixture(t, fixedCaps{cap: decimal.NewFromInt(2_000_000_000)})
	f.source.incomeErr = models.ErrNotConfigured

	got, err := f.svc.AveragePE(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("no data is not an error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no result, got %+v", got)
	}
}

func TestAveragePENoMarketCap(t *testing.T) {
	f := newFixture(t, fixedCaps{err: models.ErrNoData})
	f.source.income = sevenFlatYears(100_000_000)

	got, err := f.svc.AveragePE(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("AveragePE: %v", err)
	}
	if got != nil {
		t.Fatalf("no market cap should mean no result")
	}
	if f.source.incomeCalls != 0 {
		t.Fatalf("no fetch should happen without a market cap")
	}
}

func TestAveragePESuppliedMarketCapSkipsResolver(t *testing.T) {
	f := newFixture(t, fixedCaps{err: errors.New("resolver must not be called")})
	f.source.income = sevenFlatYears(100_000_000)

	got, err := f.svc.AveragePE(context.Background(), "AAPL",
		WithMarketCap(decimal.NewFromInt(1_000_000_000)))
	if err != nil {
		t.Fatalf("AveragePE: %v", err)
	}
	if got == nil || got.PERatio != 10.0 {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestAssetValuationUsesMostRecentSheet(t *testing.T) {
	f := newFixture(t, fixedCaps{cap: decimal.NewFromInt(200_000_000_000)})
	f.sheets.data["AAPL"] = &models.CachedBalanceSheet{
		Ticker:        "AAPL",
		LastRefreshed: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Records: []models.BalanceSheetRecord{
			{
				FiscalYear:         2024,
				TotalAssets:        decimal.NewFromInt(100_000_000_000),
				TotalLiabilities:   decimal.NewFromInt(50_000_000_000),
				TotalCurrentAssets: decimal.NewFromInt(40_000_000_000),
				Goodwill:           decimal.NewFromInt(5_000_000_000),
				IntangibleAssets:   decimal.NewFromInt(3_000_000_000),
			},
			{
				FiscalYear:       2023,
				TotalAssets:      decimal.NewFromInt(1),
				TotalLiabilities: decimal.NewFromInt(1),
			},
		},
	}

	got, err := f.svc.AssetValuation(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("AssetValuation: %v", err)
	}
	if !got.NTA.Equal(decimal.NewFromInt(42_000_000_000)) {
		t.Fatalf("NTA = %s", got.NTA)
	}
	if got.PNCAV != nil {
		t.Fatalf("negative NCAV must leave PNCAV nil")
	}
}

func TestAssetValuationNoData(t *testing.T) {
	f := newFixture(t, fixedCaps{cap: decimal.NewFromInt(100)})
	f.source.sheetsErr = models.ErrNoData

	got, err := f.svc.AssetValuation(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("AssetValuation: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no result, got %+v", got)
	}
}

func TestRefreshReplacesBothSeries(t *testing.T) {
	f := newFixture(t, fixedCaps{cap: decimal.NewFromInt(100)})
	f.incomes.data["AAPL"] = &models.CachedIncome{
		Ticker:        "AAPL",
		LastRefreshed: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Records:       sevenFlatYears(50),
	}
	f.source.income = sevenFlatYears(100)
	f.source.sheets = []models.BalanceSheetRecord{{
		FiscalYear:  2024,
		TotalAssets: decimal.NewFromInt(10),
	}}

	err := f.svc.Refresh(context.Background(), "aapl",
		time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if f.source.incomeCalls != 1 || f.source.sheetsCalls != 1 {
		t.Fatalf("both datasets should refresh, got %d/%d",
			f.source.incomeCalls, f.source.sheetsCalls)
	}
	if !f.incomes.data["AAPL"].Records[0].NetIncome.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("income series should be replaced")
	}
	if len(f.sheets.data["AAPL"].Records) != 1 {
		t.Fatalf("balance sheet series should be written")
	}
}

func TestStoreFailureIsHard(t *testing.T) {
	f := newFixture(t, fixedCaps{cap: decimal.NewFromInt(100)})
	f.incomes.err = errors.New("connection refused")

	_, err := f.svc.AveragePE(context.Background(), "AAPL")
	if err == nil {
		t.Fatalf("store failure must surface")
	}
}
