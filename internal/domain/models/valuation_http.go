package models

import "github.com/shopspring/decimal"

// PERequest is the query contract for GET /api/pe.
type PERequest struct {
	Ticker     string `query:"ticker" validate:"required,alpha,max=5"`
	MarketCap  string `query:"market_cap" validate:"omitempty,number"`
	FilingDate string `query:"filing_date" validate:"omitempty,datetime=2006-01-02"`
}

// AssetValuationRequest is the query contract for GET /api/asset-valuation.
type AssetValuationRequest struct {
	Ticker     string `query:"ticker" validate:"required,alpha,max=5"`
	MarketCap  string `query:"market_cap" validate:"omitempty,number"`
	FilingDate string `query:"filing_date" validate:"omitempty,datetime=2006-01-02"`
}

// PEResponse renders a PE result, or Available=false when the core reports
// no data (the handler layer owns "N/A" rendering).
type PEResponse struct {
	Ticker        string           `json:"ticker"`
	Available     bool             `json:"available"`
	PERatio       *float64         `json:"pe_ratio,omitempty"`
	AverageIncome *decimal.Decimal `json:"average_income,omitempty"`
}

// AssetValuationResponse renders NTA/NCAV valuation for a ticker.
type AssetValuationResponse struct {
	Ticker    string           `json:"ticker"`
	Available bool             `json:"available"`
	NTA       *decimal.Decimal `json:"nta,omitempty"`
	NCAV      *decimal.Decimal `json:"ncav,omitempty"`
	PNTA      *float64         `json:"p_nta,omitempty"`
	PNCAV     *float64         `json:"p_ncav,omitempty"`
}

// FilingEvent is the payload consumed from the filings topic. A collaborator
// that watches regulatory filings publishes one event per newly observed
// filing; the date is the staleness signal for cached fundamentals.
type FilingEvent struct {
	Ticker     string `json:"ticker"`
	FilingDate string `json:"filing_date"`
	FormType   string `json:"form_type,omitempty"`
}
