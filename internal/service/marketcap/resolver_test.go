package marketcap

import (
	"context"
	"errors"
	"testing"

	"FundVal/internal/domain/models"
	"FundVal/pkg/cache"
	"FundVal/pkg/logger"

	"github.com/shopspring/decimal"
)

type fakeSource struct {
	cap   decimal.Decimal
	err   error
	calls int
}

func (f *fakeSource) MarketCap(_ context.Context, _ string) (decimal.Decimal, error) {
	f.calls++
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.cap, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string)      {}
func (nopMetrics) RecordCacheOutcome(string, bool) {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLatency(string, float64)   {}

func newResolver(t *testing.T, primary, secondary *fakeSource) *Resolver {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	quotes := cache.NewMemoryCache()
	t.Cleanup(func() { _ = quotes.Close() })
	return NewResolver(primary, secondary, quotes, nopMetrics{}, log)
}

func TestPrimaryWins(t *testing.T) {
	primary := &fakeSource{cap: decimal.NewFromInt(100)}
	secondary := &fakeSource{cap: decimal.NewFromInt(200)}
	r := newResolver(t, primary, secondary)

	got, err := r.MarketCap(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("MarketCap: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected primary value, got %s", got)
	}
	if secondary.calls != 0 {
		t.Fatalf("secondary should not be called")
	}
}

func TestFallbackToSecondary(t *testing.T) {
	primary := &fakeSource{err: models.ErrNotConfigured}
	secondary := &fakeSource{cap: decimal.NewFromInt(200)}
	r := newResolver(t, primary, secondary)

	got, err := r.MarketCap(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("MarketCap: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected secondary value, got %s", got)
	}
}

func TestBothFail(t *testing.T) {
	primary := &fakeSource{err: models.ErrNoData}
	secondary := &fakeSource{err: errors.New("boom")}
	r := newResolver(t, primary, secondary)

	_, err := r.MarketCap(context.Background(), "AAPL")
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestQuoteIsCached(t *testing.T) {
	primary := &fakeSource{cap: decimal.NewFromInt(100)}
	secondary := &fakeSource{}
	r := newResolver(t, primary, secondary)

	for i := 0; i < 3; i++ {
		if _, err := r.MarketCap(context.Background(), "AAPL"); err != nil {
			t.Fatalf("MarketCap: %v", err)
		}
	}
	if primary.calls != 1 {
		t.Fatalf("expected single provider call, got %d", primary.calls)
	}
}
