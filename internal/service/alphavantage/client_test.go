package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"FundVal/internal/domain/models"
	"FundVal/internal/service/fx"
	"FundVal/internal/service/ratelimit"
	pkghttp "FundVal/pkg/http"
	"FundVal/pkg/logger"

	"github.com/shopspring/decimal"
)

type staticRates struct {
	rates map[string]float64
}

func (s staticRates) Fetch(_ context.Context) (map[string]float64, error) {
	if s.rates == nil {
		return nil, errors.New("rates down")
	}
	return s.rates, nil
}

func newTestClient(t *testing.T, url string, rates map[string]float64) *Client {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	conv := fx.NewConverter(fx.NewRateCache(staticRates{rates: rates}, log))
	return NewClient(pkghttp.NewClient(), conv, ratelimit.New(), log,
		WithAPIKey("test-key"),
		WithBaseURL(url),
		WithRequestsPerMinute(600))
}

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchIncomeSortsDescending(t *testing.T) {
	srv := serve(t, `{"annualReports":[
		{"fiscalDateEnding":"2022-09-30","reportedCurrency":"USD","netIncome":"90"},
		{"fiscalDateEnding":"2024-09-30","reportedCurrency":"USD","netIncome":"110"},
		{"fiscalDateEnding":"2023-09-30","reportedCurrency":"USD","netIncome":"100"}]}`)

	got, err := newTestClient(t, srv.URL, nil).FetchIncome(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchIncome: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i, want := range []int{2024, 2023, 2022} {
		if got[i].FiscalYear != want {
			t.Fatalf("record %d fiscal year = %d, want %d", i, got[i].FiscalYear, want)
		}
	}
	if !got[0].NetIncome.Equal(decimal.NewFromInt(110)) {
		t.Fatalf("unexpected net income %s", got[0].NetIncome)
	}
}

func TestFetchIncomeSkipsSentinelValues(t *testing.T) {
	srv := serve(t, `{"annualReports":[
		{"fiscalDateEnding":"2024-09-30","reportedCurrency":"USD","netIncome":"None"},
		{"fiscalDateEnding":"2023-09-30","reportedCurrency":"USD","netIncome":"100"},
		{"fiscalDateEnding":"None","reportedCurrency":"USD","netIncome":"50"}]}`)

	got, err := newTestClient(t, srv.URL, nil).FetchIncome(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchIncome: %v", err)
	}
	if len(got) != 1 || got[0].FiscalYear != 2023 {
		t.Fatalf("expected only 2023 to survive, got %+v", got)
	}
}

func TestFetchIncomeProviderErrorPayloads(t *testing.T) {
	for _, body := range []string{
		`{"Error Message":"Invalid API call"}`,
		`{"Note":"API call frequency exceeded"}`,
		`{"Information":"premium endpoint"}`,
		`{"annualReports":[]}`,
	} {
		srv := serve(t, body)
		_, err := newTestClient(t, srv.URL, nil).FetchIncome(context.Background(), "AAPL")
		if !errors.Is(err, models.ErrNoData) {
			t.Fatalf("body %s: expected ErrNoData, got %v", body, err)
		}
	}
}

func TestFetchIncomeNotConfigured(t *testing.T) {
	c := newTestClient(t, "http://unused", nil)
	c.apiKey = ""
	_, err := c.FetchIncome(context.Background(), "AAPL")
	if !errors.Is(err, models.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestFetchIncomeConvertsToUSD(t *testing.T) {
	srv := serve(t, `{"annualReports":[
		{"fiscalDateEnding":"2024-03-31","reportedCurrency":"JPY","netIncome":"300"}]}`)

	got, err := newTestClient(t, srv.URL, map[string]float64{"JPY": 150}).
		FetchIncome(context.Background(), "SONY")
	if err != nil {
		t.Fatalf("FetchIncome: %v", err)
	}
	if !got[0].NetIncome.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("300 JPY at 150 = %s, want 2", got[0].NetIncome)
	}
}

func TestFetchIncomeConversionFailureDropsBatch(t *testing.T) {
	srv := serve(t, `{"annualReports":[
		{"fiscalDateEnding":"2024-03-31","reportedCurrency":"JPY","netIncome":"300"},
		{"fiscalDateEnding":"2023-03-31","reportedCurrency":"JPY","netIncome":"250"}]}`)

	_, err := newTestClient(t, srv.URL, nil).FetchIncome(context.Background(), "SONY")
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected whole batch dropped, got %v", err)
	}
}

func TestFetchBalanceSheetSentinelTotalsDropRecord(t *testing.T) {
	srv := serve(t, `{"annualReports":[
		{"fiscalDateEnding":"2024-12-31","reportedCurrency":"USD",
		 "totalAssets":"None","totalLiabilities":"400",
		 "totalCurrentAssets":"500","goodwill":"0","intangibleAssets":"0"},
		{"fiscalDateEnding":"2023-12-31","reportedCurrency":"USD",
		 "totalAssets":"900","totalLiabilities":"300",
		 "totalCurrentAssets":"None","goodwill":"0","intangibleAssets":"0"},
		{"fiscalDateEnding":"2022-12-31","reportedCurrency":"USD",
		 "totalAssets":"800","totalLiabilities":"250",
		 "totalCurrentAssets":"400","goodwill":"","intangibleAssets":"None"}]}`)

	got, err := newTestClient(t, srv.URL, nil).FetchBalanceSheet(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchBalanceSheet: %v", err)
	}
	if len(got) != 1 || got[0].FiscalYear != 2022 {
		t.Fatalf("records with sentinel totals must be dropped, got %+v", got)
	}
	r := got[0]
	if !r.Goodwill.IsZero() || !r.IntangibleAssets.IsZero() {
		t.Fatalf("sentinel goodwill/intangibles should be zero, got %+v", r)
	}
	if !r.TotalAssets.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("unexpected total assets %s", r.TotalAssets)
	}
}

func TestFetchBalanceSheetAllSentinelTotalsNoData(t *testing.T) {
	srv := serve(t, `{"annualReports":[
		{"fiscalDateEnding":"2024-12-31","reportedCurrency":"USD",
		 "totalAssets":"None","totalLiabilities":"None",
		 "totalCurrentAssets":"None","goodwill":"0","intangibleAssets":"0"}]}`)

	_, err := newTestClient(t, srv.URL, nil).FetchBalanceSheet(context.Background(), "AAPL")
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestFetchBalanceSheetSkipsUnparsableRecord(t *testing.T) {
	srv := serve(t, `{"annualReports":[
		{"fiscalDateEnding":"2024-12-31","reportedCurrency":"USD",
		 "totalAssets":"garbage","totalLiabilities":"400",
		 "totalCurrentAssets":"500","goodwill":"0","intangibleAssets":"0"},
		{"fiscalDateEnding":"2023-12-31","reportedCurrency":"USD",
		 "totalAssets":"900","totalLiabilities":"300",
		 "totalCurrentAssets":"450","goodwill":"0","intangibleAssets":"0"}]}`)

	got, err := newTestClient(t, srv.URL, nil).FetchBalanceSheet(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchBalanceSheet: %v", err)
	}
	if len(got) != 1 || got[0].FiscalYear != 2023 {
		t.Fatalf("expected only 2023 to survive, got %+v", got)
	}
}

func TestMarketCap(t *testing.T) {
	srv := serve(t, `{"MarketCapitalization":"2000000000"}`)

	cap, err := newTestClient(t, srv.URL, nil).MarketCap(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("MarketCap: %v", err)
	}
	if !cap.Equal(decimal.NewFromInt(2000000000)) {
		t.Fatalf("unexpected market cap %s", cap)
	}
}

func TestMarketCapMissing(t *testing.T) {
	srv := serve(t, `{"MarketCapitalization":"None"}`)

	_, err := newTestClient(t, srv.URL, nil).MarketCap(context.Background(), "AAPL")
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}
