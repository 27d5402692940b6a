package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// DB represents a database connection pool shared by the scheduler, the bot and the dashboard
type DB struct {
	*pgxpool.Pool
}

// PoolOptions bounds the size of the shared connection pool
type PoolOptions struct {
	MinConns int32
	MaxConns int32
}

// DefaultPoolOptions mirrors a small bot deployment: 1 to 10 connections
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{MinConns: 1, MaxConns: 10}
}

// NewConnection creates a new database connection pool
func NewConnection(ctx context.Context, databaseURL string, opts PoolOptions) (*DB, error) {
	// Parse config to set timezone
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Set timezone to UTC for all connections
	config.ConnConfig.RuntimeParams["timezone"] = "UTC"

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 && opts.MinConns <= config.MaxConns {
		config.MinConns = opts.MinConns
	}
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// ConnectWithRetry opens the pool, retrying a bounded number of times while the
// database is still starting up. Exhausting the attempts is a fatal startup error.
func ConnectWithRetry(ctx context.Context, databaseURL string, opts PoolOptions, attempts int, delay time.Duration) (*DB, error) {
	if attempts < 1 {
		attempts = 1
	}

	var db *DB
	attempt := 0
	operation := func() error {
		attempt++
		conn, err := NewConnection(ctx, databaseURL, opts)
		if err != nil {
			log.Warnf("Database not ready, retrying in %v (%d/%d): %v", delay, attempt, attempts, err)
			return err
		}
		db = conn
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(attempts-1)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("could not connect to database after %d attempts: %w", attempt, err)
	}

	return db, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}
