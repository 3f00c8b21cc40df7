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

// IncomeStore persists annual income series in Postgres. A Write replaces
// the whole series for a ticker inside one transaction so readers never see
// a half-written mix of old and new fiscal years.
type IncomeStore struct {
	pool *pgxpool.Pool
}

func NewIncomeStore(pool *pgxpool.Pool) *IncomeStore {
	return &IncomeStore{pool: pool}
}

func (s *IncomeStore) Write(ctx context.Context, ticker string, records []models.IncomeRecord, asOf time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin income write: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM income_statements WHERE ticker = $1`, ticker); err != nil {
		return fmt.Errorf("clear income series: %w", err)
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO income_statements (ticker, fiscal_year, net_income, last_updated)
			VALUES ($1, $2, $3, $4)
		`, ticker, r.FiscalYear, r.NetIncome, asOf)
	}

	br := tx.SendBatch(ctx, batch)
	for range records {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert income record: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close income batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit income write: %w", err)
	}
	return nil
}

// Read returns the cached income series for a ticker ordered by fiscal year
// descending, or (nil, nil) when nothing is cached.
func (s *IncomeStore) Read(ctx context.Context, ticker string) (*models.CachedIncome, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT fiscal_year, net_income, last_updated
		FROM income_statements
		WHERE ticker = $1
		ORDER BY fiscal_year DESC
	`, ticker)
	if err != nil {
		return nil, fmt.Errorf("read income series: %w", err)
	}
	defer rows.Close()

	var (
		records       []models.IncomeRecord
		lastRefreshed time.Time
	)
	for rows.Next() {
		var (
			year      int
			netIncome decimal.Decimal
			updated   time.Time
		)
		if err := rows.Scan(&year, &netIncome, &updated); err != nil {
			return nil, fmt.Errorf("scan income record: %w", err)
		}
		records = append(records, models.IncomeRecord{
			Ticker:     ticker,
			FiscalYear: year,
			NetIncome:  netIncome,
		})
		lastRefreshed = updated
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate income series: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	return &models.CachedIncome{
		Ticker:        ticker,
		LastRefreshed: lastRefreshed,
		Records:       records,
	}, nil
}
