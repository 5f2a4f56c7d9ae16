package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openioc/vmecore/internal/config"
)

type PostgresClient struct {
	pool *pgxpool.Pool
}

func NewPostgresClient(ctx context.Context, cfg config.ArchiveConfig) (*PostgresClient, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{pool: pool}, nil
}

func (p *PostgresClient) Close() {
	p.pool.Close()
}

func (p *PostgresClient) Pool() *pgxpool.Pool {
	return p.pool
}

// EnsureSchema creates the archive table if it does not exist yet. The
// archive is append-only; there is nothing to migrate.
func (p *PostgresClient) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS record_updates (
			id          UUID PRIMARY KEY,
			record_name TEXT NOT NULL,
			record_kind TEXT NOT NULL,
			value       JSONB NOT NULL,
			raw_value   INTEGER NOT NULL,
			condition   TEXT NOT NULL DEFAULT '',
			severity    TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS record_updates_name_time
			ON record_updates (record_name, recorded_at DESC)
	`)
	if err != nil {
		return fmt.Errorf("failed to create archive schema: %w", err)
	}
	return nil
}
