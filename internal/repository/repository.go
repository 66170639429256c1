// Package repository provides the PostgreSQL access layer for users,
// companies, lists and saved searches.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool sizing. Enrichment holds a connection only for its final write,
// so a small pool serves many concurrent enrichments.
const (
	defaultMaxConns        = 10
	defaultMinConns        = 2
	defaultConnMaxIdleTime = 5 * time.Minute
	defaultHealthCheck     = 30 * time.Second
)

// Repository is the PostgreSQL store behind every service.
type Repository struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and verifies the connection.
// Pool settings in the URL (pool_max_conns etc.) override the defaults.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	applyPoolDefaults(config)

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// applyPoolDefaults fills settings the URL left at pgx's defaults.
func applyPoolDefaults(config *pgxpool.Config) {
	connString := config.ConnString()
	if !hasParam(connString, "pool_max_conns") {
		config.MaxConns = defaultMaxConns
	}
	if !hasParam(connString, "pool_min_conns") {
		config.MinConns = defaultMinConns
	}
	if !hasParam(connString, "pool_max_conn_idle_time") {
		config.MaxConnIdleTime = defaultConnMaxIdleTime
	}
	if !hasParam(connString, "pool_health_check_period") {
		config.HealthCheckPeriod = defaultHealthCheck
	}
}

func hasParam(connString, name string) bool {
	return strings.Contains(connString, name+"=")
}

// Ping backs the /readyz postgres check.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool. Tests use it for schema resets.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}
