package fx

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Converter normalizes reported amounts into USD.
type Converter struct {
	rates *RateCache
}

func NewConverter(rates *RateCache) *Converter {
	return &Converter{rates: rates}
}

// ToUSD converts an amount from the given currency into USD. Rates are
// quoted as "1 USD = X currency", so conversion divides by the rate.
// USD and blank currency codes pass through untouched.
func (c *Converter) ToUSD(ctx context.Context, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" || code == "USD" {
		return amount, nil
	}

	rate, err := c.rates.Rate(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Div(rate), nil
}
