package finnhub

import (
	"context"
	"fmt"

	"FundVal/internal/domain/models"
	"FundVal/internal/service/ratelimit"
	pkghttp "FundVal/pkg/http"
	"FundVal/pkg/logger"

	"github.com/shopspring/decimal"
)

const limiterKey = "finnhub"

// Client resolves company profiles from the Finnhub REST API. Used as the
// primary market capitalization source.
type Client struct {
	http    *pkghttp.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger

	apiKey  string
	baseURL string
}

// Option configures Client.
type Option func(*Client)

func NewClient(httpClient *pkghttp.Client, limiter *ratelimit.Limiter, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		http:    httpClient,
		limiter: limiter,
		log:     log,
		baseURL: "https://finnhub.io/api/v1",
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

type profilePayload struct {
	// Finnhub reports market capitalization in millions of USD.
	MarketCapitalization float64 `json:"marketCapitalization"`
	Ticker               string  `json:"ticker"`
	Currency             string  `json:"currency"`
}

// MarketCap resolves current market capitalization in USD for a ticker.
// An unknown symbol comes back as an empty profile, which maps to
// models.ErrNoData.
func (c *Client) MarketCap(ctx context.Context, ticker string) (decimal.Decimal, error) {
	if c.apiKey == "" {
		return decimal.Zero, models.ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx, limiterKey, 60, 1); err != nil {
		return decimal.Zero, err
	}

	var payload profilePayload
	err := c.http.GetJSON(ctx, &pkghttp.RequestOptions{
		URL: c.baseURL + "/stock/profile2",
		QueryParams: map[string]string{
			"symbol": ticker,
			"token":  c.apiKey,
		},
	}, &payload)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", models.ErrNoData, err)
	}

	if payload.MarketCapitalization <= 0 {
		c.log.Debug("empty profile", logger.String("ticker", ticker))
		return decimal.Zero, models.ErrNoData
	}

	return decimal.NewFromFloat(payload.MarketCapitalization).
		Mul(decimal.NewFromInt(1_000_000)), nil
}
