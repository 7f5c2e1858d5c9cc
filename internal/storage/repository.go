package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/lucamachado49/finance-pipeline/internal/models"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
)

const uniqueViolation = pq.ErrorCode("23505")

const insertRecord = `
	INSERT INTO stock_data (stock_date, ticker, open, high, low, close, volume)
	VALUES (:stock_date, :ticker, :open, :high, :low, :close, :volume)
`

const upsertRecord = insertRecord + `
	ON CONFLICT (stock_date, ticker) DO UPDATE SET
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		volume = EXCLUDED.volume
`

// Repository provides methods for reading and writing the stock_data table.
type Repository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Open connects to PostgreSQL and configures the connection pool.
func Open(cfg Config, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sqlx.Connect("postgres", cfg.ConnString())
	if err != nil {
		return nil, &models.StorageError{Op: "connect", Err: err}
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	logger.Info("connected to database",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("dbname", cfg.DBName))
	return &Repository{db: db, logger: logger}, nil
}

// Close closes the connection pool.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info("closing database connection")
		return r.db.Close()
	}
	return nil
}

// Write inserts all records in one transaction. Any failure, including a
// duplicate (stock_date, ticker) key, rolls the whole batch back and
// returns a StorageError. An empty batch is a no-op.
func (r *Repository) Write(ctx context.Context, records []models.StockRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.writeAll(ctx, insertRecord, records)
}

// Replace is Write with overwrite semantics: rows that collide on
// (stock_date, ticker) are updated in place instead of failing the batch.
func (r *Repository) Replace(ctx context.Context, records []models.StockRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.writeAll(ctx, upsertRecord, records)
}

func (r *Repository) writeAll(ctx context.Context, query string, records []models.StockRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return &models.StorageError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	for _, rec := range records {
		if _, err := tx.NamedExecContext(ctx, query, rec); err != nil {
			if isUniqueViolation(err) {
				err = fmt.Errorf("duplicate row %s/%s: %w", rec.StockDate, rec.Ticker, err)
			}
			return &models.StorageError{Op: "write", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &models.StorageError{Op: "commit", Err: err}
	}

	r.logger.Info("stored records",
		zap.String("ticker", records[0].Ticker),
		zap.Int("count", len(records)))
	return nil
}

// CountRecords returns the number of rows in stock_data.
func (r *Repository) CountRecords(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM stock_data"); err != nil {
		return 0, &models.StorageError{Op: "count", Err: err}
	}
	return count, nil
}

// LatestRecords returns the most recent rows, optionally filtered by
// tickers, newest first.
func (r *Repository) LatestRecords(ctx context.Context, tickers []string, limit int) ([]models.StockRecord, error) {
	query := "SELECT stock_date, ticker, open, high, low, close, volume FROM stock_data"
	var args []interface{}

	if len(tickers) > 0 {
		query += " WHERE ticker IN ("
		for i, ticker := range tickers {
			if i > 0 {
				query += ", "
			}
			query += fmt.Sprintf("$%d", i+1)
			args = append(args, ticker)
		}
		query += ")"
	}
	query += " ORDER BY stock_date DESC, ticker"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var records []models.StockRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, &models.StorageError{Op: "select", Err: err}
	}
	return records, nil
}

// RecordsForTicker returns stored rows for one ticker, newest first.
func (r *Repository) RecordsForTicker(ctx context.Context, ticker string, limit int) ([]models.StockRecord, error) {
	query := `
		SELECT stock_date, ticker, open, high, low, close, volume
		FROM stock_data
		WHERE ticker = $1
		ORDER BY stock_date DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var records []models.StockRecord
	if err := r.db.SelectContext(ctx, &records, query, ticker); err != nil {
		return nil, &models.StorageError{Op: "select", Err: err}
	}
	return records, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
