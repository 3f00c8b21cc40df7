package models

import "github.com/shopspring/decimal"

// PEResult is the 7-year average P/E outcome. Only produced when exactly
// seven consecutive fiscal years are on record and their average net income
// is strictly positive.
type PEResult struct {
	PERatio       float64         `json:"pe_ratio"`
	AverageIncome decimal.Decimal `json:"average_income"`
}

// AssetValuationResult carries NTA/NCAV and the derived price multiples for
// the most recent fiscal year. PNTA and PNCAV are nil when the underlying
// asset base is not positive; a ratio against a non-positive denominator is
// undefined, not zero.
type AssetValuationResult struct {
	NTA   decimal.Decimal `json:"nta"`
	NCAV  decimal.Decimal `json:"ncav"`
	PNTA  *float64        `json:"p_nta"`
	PNCAV *float64        `json:"p_ncav"`
}
