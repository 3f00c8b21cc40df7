package usecase

import (
	"context"
	"testing"

	"FundVal/internal/domain/models"

	"github.com/shopspring/decimal"
)

func TestFilingEventTriggersRefresh(t *testing.T) {
	f := newFixture(t, fixedCaps{cap: decimal.NewFromInt(100)})
	f.source.income = sevenFlatYears(100)
	f.source.sheets = []models.BalanceSheetRecord{{
		FiscalYear:  2024,
		TotalAssets: decimal.NewFromInt(10),
	}}
	h := NewFilingEventHandler(f.svc, "filings", f.svc.log)

	err := h.Handle(context.Background(),
		[]byte(`{"ticker":"aapl","filing_date":"2026-02-15","form_type":"10-K"}`))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if f.source.incomeCalls != 1 || f.source.sheetsCalls != 1 {
		t.Fatalf("expected both datasets fetched, got %d/%d",
			f.source.incomeCalls, f.source.sheetsCalls)
	}
	if _, ok := f.incomes.data["AAPL"]; !ok {
		t.Fatalf("ticker should be normalized to upper case")
	}
}

func TestFilingEventBadPayload(t *testing.T) {
	f := newFixture(t, fixedCaps{cap: decimal.NewFromInt(100)})
	h := NewFilingEventHandler(f.svc, "filings", f.svc.log)

	cases := []string{
		`not json`,
		`{"ticker":"","filing_date":"2026-02-15"}`,
		`{"ticker":"AAPL","filing_date":"02/15/2026"}`,
	}
	for _, payload := range cases {
		if err := h.Handle(context.Background(), []byte(payload)); err == nil {
			t.Fatalf("payload %s should fail", payload)
		}
	}
	if f.source.incomeCalls != 0 {
		t.Fatalf("bad payloads must not trigger fetches")
	}
}
