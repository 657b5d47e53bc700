// Package postgres implements the persistent store for indexed PDF files
// and their per-page text, backed by PostgreSQL full-text search.
//
// The serving path shares one pgxpool.Pool; every request acquires its own
// connection from the pool for the duration of the query. The ingestion
// pipeline does not use the pool: each worker dials a dedicated connection
// so its per-file transaction never contends with request traffic (see
// pkg/ingest).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abiiranathan/lexicon-sub000/internal/logger"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Config holds connection settings for the store.
type Config struct {
	// ConnString is a Postgres URL or DSN.
	ConnString string

	// MaxConns caps the pool size. Zero keeps the pgxpool default
	// (greater of 4 and the number of CPUs).
	MaxConns int32
}

// Store wraps the connection pool and the query surface of the service.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens the pool, verifies connectivity and applies pending schema
// migrations. Startup fails hard on any of these: a server without a
// reachable, migrated store cannot serve anything.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(cfg.ConnString); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Connected to Postgres", "max_conns", poolCfg.MaxConns)
	return &Store{pool: pool}, nil
}

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases all pooled connections.
func (s *Store) Close() {
	s.pool.Close()
}
