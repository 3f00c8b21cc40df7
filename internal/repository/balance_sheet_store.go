package repository

import (
	"context"
	"fmt"
	"time"

	"FundVal/internal/domain/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BalanceSheetStore persists annual balance sheet series in Postgres with
// the same replace-in-one-transaction contract as IncomeStore.
type BalanceSheetStore struct {
	pool *pgxpool.Pool
}

func NewBalanceSheetStore(pool *pgxpool.Pool) *BalanceSheetStore {
	return &BalanceSheetStore{pool: pool}
}

func (s *BalanceSheetStore) Write(ctx context.Context, ticker string, records []models.BalanceSheetRecord, asOf time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin balance sheet write: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM balance_sheets WHERE ticker = $1`, ticker); err != nil {
		return fmt.Errorf("clear balance sheet series: %w", err)
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO balance_sheets (
				ticker, fiscal_year, total_assets, total_liabilities,
				total_current_assets, goodwill, intangible_assets, last_updated
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, ticker, r.FiscalYear, r.TotalAssets, r.TotalLiabilities,
			r.TotalCurrentAssets, r.Goodwill, r.IntangibleAssets, asOf)
	}

	br := tx.SendBatch(ctx, batch)
	for range records {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert balance sheet record: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close balance sheet batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit balance sheet write: %w", err)
	}
	return nil
}

// Read returns the cached balance sheet series for a ticker ordered by
// fiscal year descending, or (nil, nil) when nothing is cached.
func (s *BalanceSheetStore) Read(ctx context.Context, ticker string) (*models.CachedBalanceSheet, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT fiscal_year, total_assets, total_liabilities,
		       total_current_assets, goodwill, intangible_assets, last_updated
		FROM balance_sheets
		WHERE ticker = $1
		ORDER BY fiscal_year DESC
	`, ticker)
	if err != nil {
		return nil, fmt.Errorf("read balance sheet series: %w", err)
	}
	defer rows.Close()

	var (
		records       []models.BalanceSheetRecord
		lastRefreshed time.Time
	)
	for rows.Next() {
		var (
			year                         int
			assets, liabilities, current decimal.Decimal
			goodwill, intangibles        decimal.Decimal
			updated                      time.Time
		)
		if err := rows.Scan(&year, &assets, &liabilities, &current, &goodwill, &intangibles, &updated); err != nil {
			return nil, fmt.Errorf("scan balance sheet record: %w", err)
		}
		records = append(records, models.BalanceSheetRecord{
			Ticker:             ticker,
			FiscalYear:         year,
			TotalAssets:        assets,
			TotalLiabilities:   liabilities,
			TotalCurrentAssets: current,
			Goodwill:           goodwill,
			IntangibleAssets:   intangibles,
		})
		lastRefreshed = updated
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance sheet series: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	return &models.CachedBalanceSheet{
		Ticker:        ticker,
		LastRefreshed: lastRefreshed,
		Records:       records,
	}, nil
}
