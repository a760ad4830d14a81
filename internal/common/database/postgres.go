package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"listings-workers/internal/common/config"
	apperrors "listings-workers/internal/common/errors"

	_ "github.com/lib/pq"
)

// SearchEventsSchema creates the audit table written by record-search-event.
const SearchEventsSchema = `CREATE TABLE IF NOT EXISTS search_events (
	id               UUID PRIMARY KEY,
	search_query     TEXT NOT NULL,
	normalized_query TEXT NOT NULL,
	is_location      BOOLEAN NOT NULL,
	reason           TEXT NOT NULL,
	request_path     TEXT NOT NULL,
	backend_count    INTEGER NOT NULL DEFAULT 0,
	result_count     INTEGER NOT NULL DEFAULT 0,
	error_message    TEXT,
	workflow_key     BIGINT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return apperrors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Migrate applies the search_events schema.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, SearchEventsSchema); err != nil {
		return fmt.Errorf("migrate search_events: %w", err)
	}
	return nil
}
