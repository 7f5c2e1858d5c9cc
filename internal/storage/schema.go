package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/lucamachado49/finance-pipeline/internal/models"
)

// Prices stay NUMERIC for full precision; volume is NUMERIC with integer
// values supplied by the writers.
const createStockData = `
	CREATE TABLE IF NOT EXISTS stock_data (
		stock_date VARCHAR(10) NOT NULL,
		ticker     VARCHAR(10) NOT NULL,
		open       NUMERIC,
		high       NUMERIC,
		low        NUMERIC,
		close      NUMERIC,
		volume     NUMERIC,
		PRIMARY KEY (stock_date, ticker)
	)
`

const dropStockData = `DROP TABLE IF EXISTS stock_data`

// EnsureSchema creates the stock_data table when absent. It never touches
// existing rows and is safe to run on every start.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createStockData); err != nil {
		return &models.StorageError{Op: "ensure schema", Err: err}
	}
	r.logger.Info("schema ready", zap.String("table", "stock_data"))
	return nil
}

// ResetSchema drops and recreates stock_data, discarding every stored
// row. Reached only through an explicit operator command, never as part
// of a normal run.
func (r *Repository) ResetSchema(ctx context.Context) error {
	r.logger.Warn("dropping table", zap.String("table", "stock_data"))
	if _, err := r.db.ExecContext(ctx, dropStockData); err != nil {
		return &models.StorageError{Op: "drop schema", Err: err}
	}
	return r.EnsureSchema(ctx)
}
