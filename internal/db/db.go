// Package db provides optional PostgreSQL persistence for cached Last.fm
// tag lookups.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool and verifies the connection.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Migrate creates the schema if it does not exist.
func (db *DB) Migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS tag_cache (
			artist     text        NOT NULL,
			track      text        NOT NULL,
			tag_name   text        NOT NULL,
			position   int         NOT NULL,
			fetched_at timestamptz NOT NULL,
			PRIMARY KEY (artist, track, tag_name)
		)
	`
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating tag_cache table: %w", err)
	}
	return nil
}

// Tags returns a TagStore.
func (db *DB) Tags() *TagStore {
	return &TagStore{pool: db.pool}
}
