package repository

import (
	"context"
	"time"

	"FundVal/internal/domain/models"

	"github.com/shopspring/decimal"
)

// FundamentalsSource fetches annual fundamentals from an external provider.
// Both operations return records sorted descending by fiscal year, already
// normalized to USD. Soft failures surface as models.ErrNoData, a missing
// API key as models.ErrNotConfigured; neither is a fault.
type FundamentalsSource interface {
	FetchIncome(ctx context.Context, ticker string) ([]models.IncomeRecord, error)
	FetchBalanceSheet(ctx context.Context, ticker string) ([]models.BalanceSheetRecord, error)
}

// MarketCapSource resolves current market capitalization in USD.
type MarketCapSource interface {
	MarketCap(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// IncomeStore persists per-ticker annual income series. Write replaces the
// whole series for a ticker in one transaction; partial writes must never
// become visible.
type IncomeStore interface {
	Write(ctx context.Context, ticker string, records []models.IncomeRecord, asOf time.Time) error
	Read(ctx context.Context, ticker string) (*models.CachedIncome, error)
}

// BalanceSheetStore persists per-ticker annual balance sheet series with the
// same replace-and-stamp contract as IncomeStore.
type BalanceSheetStore interface {
	Write(ctx context.Context, ticker string, records []models.BalanceSheetRecord, asOf time.Time) error
	Read(ctx context.Context, ticker string) (*models.CachedBalanceSheet, error)
}

// Metrics records operational counters for the refresh pipeline.
type Metrics interface {
	RecordFetch(provider, outcome string)
	RecordCacheOutcome(dataset string, hit bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
