package slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createSlotsTable = `CREATE TABLE IF NOT EXISTS slots (
	slot_key   TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresBackend stores slots in a PostgreSQL table through a pgx pool.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to databaseURL and creates the slots table if needed.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	backend, err := NewPostgresBackend(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return backend, nil
}

// NewPostgresBackend creates the slots table on pool and returns a backend using it.
func NewPostgresBackend(ctx context.Context, pool *pgxpool.Pool) (*PostgresBackend, error) {
	if _, err := pool.Exec(ctx, createSlotsTable); err != nil {
		return nil, fmt.Errorf("failed to create slots table: %w", err)
	}
	return &PostgresBackend{pool: pool}, nil
}

// Get retrieves the value stored under key.
func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.pool.QueryRow(ctx, `SELECT value FROM slots WHERE slot_key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}
	return value, nil
}

// Set inserts or replaces the value stored under key.
func (b *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO slots (slot_key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (slot_key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to save slot: %w", err)
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (b *PostgresBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.pool.Exec(ctx, `DELETE FROM slots WHERE slot_key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

// Ping checks the pool connection.
func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

// Close closes the pool.
func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
