package usecase

import (
	"FundVal/internal/domain/models"

	"github.com/shopspring/decimal"
)

// pePeriodYears is how many trailing fiscal years feed the average P/E.
const pePeriodYears = 7

// AveragePE computes the trailing average P/E from a cached income series.
// It needs at least seven records whose newest seven fiscal years are
// strictly consecutive, and a strictly positive average net income. Any
// violation returns nil: a gap in the series or an average loss makes the
// multiple meaningless, not zero.
func AveragePE(cached *models.CachedIncome, marketCap decimal.Decimal) *models.PEResult {
	if cached == nil || len(cached.Records) < pePeriodYears {
		return nil
	}

	window := cached.Records[:pePeriodYears]
	for i := 0; i < len(window)-1; i++ {
		if window[i].FiscalYear-window[i+1].FiscalYear != 1 {
			return nil
		}
	}

	sum := decimal.Zero
	for _, r := range window {
		sum = sum.Add(r.NetIncome)
	}
	avg := sum.Div(decimal.NewFromInt(pePeriodYears))
	if !avg.IsPositive() {
		return nil
	}

	return &models.PEResult{
		PERatio:       marketCap.Div(avg).InexactFloat64(),
		AverageIncome: avg,
	}
}

// AssetValuation computes NTA and NCAV from the most recent balance sheet
// and derives the price multiples. The multiples stay nil when their asset
// base is not positive.
func AssetValuation(record models.BalanceSheetRecord, marketCap decimal.Decimal) *models.AssetValuationResult {
	nta := record.TotalAssets.
		Sub(record.TotalLiabilities).
		Sub(record.Goodwill).
		Sub(record.IntangibleAssets)
	ncav := record.TotalCurrentAssets.Sub(record.TotalLiabilities)

	result := &models.AssetValuationResult{NTA: nta, NCAV: ncav}
	if nta.IsPositive() {
		v := marketCap.Div(nta).InexactFloat64()
		result.PNTA = &v
	}
	if ncav.IsPositive() {
		v := marketCap.Div(ncav).InexactFloat64()
		result.PNCAV = &v
	}
	return result
}
