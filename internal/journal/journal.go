// Package journal persists order records to Postgres. It is optional:
// the trader runs identically without it, and a nil *Journal is safe to
// pass as a no-op recorder.
package journal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courtline/courtline/internal/config"
	"github.com/courtline/courtline/internal/trader"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id            BIGSERIAL PRIMARY KEY,
    ticker        TEXT NOT NULL,
    event_ticker  TEXT NOT NULL,
    side          TEXT NOT NULL,
    count         INT NOT NULL,
    price_cents   INT NOT NULL,
    model_prob    DOUBLE PRECISION NOT NULL,
    implied_prob  DOUBLE PRECISION NOT NULL,
    edge          DOUBLE PRECISION NOT NULL,
    ev            DOUBLE PRECISION NOT NULL,
    kelly         DOUBLE PRECISION NOT NULL,
    status        TEXT NOT NULL,
    order_id      TEXT,
    error         TEXT,
    placed_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS orders_ticker_idx ON orders (ticker);
CREATE INDEX IF NOT EXISTS orders_placed_at_idx ON orders (placed_at);
`

// Journal writes order records to the orders table.
type Journal struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects to the database, verifies the connection and ensures
// the orders table exists.
func Open(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}

	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	logger.Info("order journal connected", "host", cfg.Host, "database", cfg.Name)
	return &Journal{pool: pool, logger: logger}, nil
}

// Record inserts one order record. Nil receivers are a no-op so a
// disabled journal needs no branching at call sites.
func (j *Journal) Record(ctx context.Context, rec trader.OrderRecord) error {
	if j == nil {
		return nil
	}
	_, err := j.pool.Exec(ctx, `
		INSERT INTO orders (
			ticker, event_ticker, side, count, price_cents,
			model_prob, implied_prob, edge, ev, kelly,
			status, order_id, error, placed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		rec.Ticker, rec.EventTicker, string(rec.Side), rec.Count, rec.PriceCents,
		rec.ModelProb, rec.ImpliedProb, rec.Edge, rec.EV, rec.Kelly,
		rec.Status, rec.OrderID, rec.Error, rec.At,
	)
	if err != nil {
		return fmt.Errorf("insert order record: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (j *Journal) Close() {
	if j != nil && j.pool != nil {
		j.pool.Close()
	}
}
