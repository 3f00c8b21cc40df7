package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeRecord is one annual income statement line for a ticker.
// NetIncome is USD and may be negative.
type IncomeRecord struct {
	Ticker     string          `json:"ticker"`
	FiscalYear int             `json:"fiscal_year"`
	NetIncome  decimal.Decimal `json:"net_income"`
}

// BalanceSheetRecord is one annual balance sheet for a ticker, all values USD.
type BalanceSheetRecord struct {
	Ticker             string          `json:"ticker"`
	FiscalYear         int             `json:"fiscal_year"`
	TotalAssets        decimal.Decimal `json:"total_assets"`
	TotalLiabilities   decimal.Decimal `json:"total_liabilities"`
	TotalCurrentAssets decimal.Decimal `json:"total_current_assets"`
	Goodwill           decimal.Decimal `json:"goodwill"`
	IntangibleAssets   decimal.Decimal `json:"intangible_assets"`
}

// CachedIncome is the full cached income series for one ticker.
// Records are ordered descending by fiscal year and share LastRefreshed,
// because a refresh always replaces the whole series.
type CachedIncome struct {
	Ticker        string         `json:"ticker"`
	LastRefreshed time.Time      `json:"last_refreshed"`
	Records       []IncomeRecord `json:"records"`
}

// CachedBalanceSheet is the full cached balance sheet series for one ticker.
type CachedBalanceSheet struct {
	Ticker        string               `json:"ticker"`
	LastRefreshed time.Time            `json:"last_refreshed"`
	Records       []BalanceSheetRecord `json:"records"`
}
