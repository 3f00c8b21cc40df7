package alphavantage

import (
	"context"
	"fmt"
	"sort"

	"FundVal/internal/domain/models"
	"FundVal/internal/service/fx"
	"FundVal/internal/service/ratelimit"
	pkghttp "FundVal/pkg/http"
	"FundVal/pkg/logger"
	"FundVal/pkg/util"

	"github.com/shopspring/decimal"
)

const limiterKey = "alphavantage"

// Client fetches annual fundamentals from the Alpha Vantage REST API.
//
// Alpha Vantage signals soft failures inside a 200 response: an
// "Error Message" for unknown symbols, a "Note" when throttled, and an
// "Information" banner on exhausted free keys. All three map to
// models.ErrNoData so callers fall back to cache instead of failing hard.
type Client struct {
	http      *pkghttp.Client
	converter *fx.Converter
	limiter   *ratelimit.Limiter
	log       *logger.Logger

	apiKey  string
	baseURL string
	rpm     float64
}

// Option configures Client.
type Option func(*Client)

func NewClient(httpClient *pkghttp.Client, converter *fx.Converter, limiter *ratelimit.Limiter, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		http:      httpClient,
		converter: converter,
		limiter:   limiter,
		log:       log,
		baseURL:   "https://www.alphavantage.co/query",
		rpm:       5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithRequestsPerMinute(rpm int) Option {
	return func(c *Client) {
		if rpm > 0 {
			c.rpm = float64(rpm)
		}
	}
}

type errorEnvelope struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

func (e *errorEnvelope) failed() bool {
	return e.ErrorMessage != "" || e.Note != "" || e.Information != ""
}

type annualReport struct {
	FiscalDateEnding   string `json:"fiscalDateEnding"`
	ReportedCurrency   string `json:"reportedCurrency"`
	NetIncome          string `json:"netIncome"`
	TotalAssets        string `json:"totalAssets"`
	TotalLiabilities   string `json:"totalLiabilities"`
	TotalCurrentAssets string `json:"totalCurrentAssets"`
	Goodwill           string `json:"goodwill"`
	IntangibleAssets   string `json:"intangibleAssets"`
}

type reportPayload struct {
	errorEnvelope
	AnnualReports []annualReport `json:"annualReports"`
}

// FetchIncome pulls annual income statements for a ticker, normalized to USD
// and sorted descending by fiscal year.
func (c *Client) FetchIncome(ctx context.Context, ticker string) ([]models.IncomeRecord, error) {
	reports, currency, err := c.fetchReports(ctx, "INCOME_STATEMENT", ticker)
	if err != nil {
		return nil, err
	}

	records := make([]models.IncomeRecord, 0, len(reports))
	for _, entry := range reports {
		year, ok := util.FiscalYearOf(entry.FiscalDateEnding)
		if !ok {
			continue
		}
		netIncome, ok := parseRequired(entry.NetIncome)
		if !ok {
			continue
		}

		usd, err := c.converter.ToUSD(ctx, netIncome, currency)
		if err != nil {
			// One unconvertible amount poisons the whole series; a mixed
			// currency batch must never reach the cache.
			c.log.Warn("income conversion failed, dropping batch",
				logger.String("ticker", ticker),
				logger.String("currency", currency),
				logger.Error(err))
			return nil, fmt.Errorf("%w: convert %s", models.ErrNoData, currency)
		}

		records = append(records, models.IncomeRecord{
			Ticker:     ticker,
			FiscalYear: year,
			NetIncome:  usd,
		})
	}

	if len(records) == 0 {
		return nil, models.ErrNoData
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].FiscalYear > records[j].FiscalYear
	})
	return records, nil
}

// FetchBalanceSheet pulls annual balance sheets for a ticker, normalized to
// USD and sorted descending by fiscal year. Missing goodwill or intangibles
// count as zero; a record missing any of the three asset/liability totals is
// skipped, a sentinel total is not a zero.
func (c *Client) FetchBalanceSheet(ctx context.Context, ticker string) ([]models.BalanceSheetRecord, error) {
	reports, currency, err := c.fetchReports(ctx, "BALANCE_SHEET", ticker)
	if err != nil {
		return nil, err
	}

	records := make([]models.BalanceSheetRecord, 0, len(reports))
	for _, entry := range reports {
		year, ok := util.FiscalYearOf(entry.FiscalDateEnding)
		if !ok {
			continue
		}

		assets, okAssets := parseRequired(entry.TotalAssets)
		liabilities, okLiabilities := parseRequired(entry.TotalLiabilities)
		current, okCurrent := parseRequired(entry.TotalCurrentAssets)
		goodwill, okGoodwill := parseAmount(entry.Goodwill)
		intangibles, okIntangibles := parseAmount(entry.IntangibleAssets)
		if !okAssets || !okLiabilities || !okCurrent || !okGoodwill || !okIntangibles {
			continue
		}

		amounts := []decimal.Decimal{assets, liabilities, current, goodwill, intangibles}

		for i, v := range amounts {
			usd, err := c.converter.ToUSD(ctx, v, currency)
			if err != nil {
				c.log.Warn("balance sheet conversion failed, dropping batch",
					logger.String("ticker", ticker),
					logger.String("currency", currency),
					logger.Error(err))
				return nil, fmt.Errorf("%w: convert %s", models.ErrNoData, currency)
			}
			amounts[i] = usd
		}

		records = append(records, models.BalanceSheetRecord{
			Ticker:             ticker,
			FiscalYear:         year,
			TotalAssets:        amounts[0],
			TotalLiabilities:   amounts[1],
			TotalCurrentAssets: amounts[2],
			Goodwill:           amounts[3],
			IntangibleAssets:   amounts[4],
		})
	}

	if len(records) == 0 {
		return nil, models.ErrNoData
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].FiscalYear > records[j].FiscalYear
	})
	return records, nil
}

type overviewPayload struct {
	errorEnvelope
	MarketCapitalization string `json:"MarketCapitalization"`
}

// MarketCap resolves market capitalization in USD from the OVERVIEW endpoint.
func (c *Client) MarketCap(ctx context.Context, ticker string) (decimal.Decimal, error) {
	if c.apiKey == "" {
		return decimal.Zero, models.ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx, limiterKey, c.rpm, c.rpm/60); err != nil {
		return decimal.Zero, err
	}

	var payload overviewPayload
	err := c.http.GetJSON(ctx, &pkghttp.RequestOptions{
		URL: c.baseURL,
		QueryParams: map[string]string{
			"function": "OVERVIEW",
			"symbol":   ticker,
			"apikey":   c.apiKey,
		},
	}, &payload)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", models.ErrNoData, err)
	}
	if payload.failed() {
		return decimal.Zero, models.ErrNoData
	}

	cap, ok := parseRequired(payload.MarketCapitalization)
	if !ok || !cap.IsPositive() {
		return decimal.Zero, models.ErrNoData
	}
	return cap, nil
}

func (c *Client) fetchReports(ctx context.Context, function, ticker string) ([]annualReport, string, error) {
	if c.apiKey == "" {
		return nil, "", models.ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx, limiterKey, c.rpm, c.rpm/60); err != nil {
		return nil, "", err
	}

	var payload reportPayload
	err := c.http.GetJSON(ctx, &pkghttp.RequestOptions{
		URL: c.baseURL,
		QueryParams: map[string]string{
			"function": function,
			"symbol":   ticker,
			"apikey":   c.apiKey,
		},
	}, &payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", models.ErrNoData, err)
	}
	if payload.failed() {
		c.log.Debug("provider declined request",
			logger.String("function", function),
			logger.String("ticker", ticker),
			logger.String("note", payload.Note))
		return nil, "", models.ErrNoData
	}
	if len(payload.AnnualReports) == 0 {
		return nil, "", models.ErrNoData
	}

	// The whole batch shares the currency reported on the newest filing.
	currency := payload.AnnualReports[0].ReportedCurrency
	if currency == "" {
		currency = "USD"
	}
	return payload.AnnualReports, currency, nil
}

// parseAmount decodes a report amount. The provider writes "None" or an
// empty string for fields it has no value for; those count as zero. Only a
// genuinely unparsable value fails.
func parseAmount(raw string) (decimal.Decimal, bool) {
	if raw == "" || raw == "None" {
		return decimal.Zero, true
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// parseRequired decodes an amount that must actually be present; sentinels
// and parse failures both reject the value.
func parseRequired(raw string) (decimal.Decimal, bool) {
	if raw == "" || raw == "None" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}
