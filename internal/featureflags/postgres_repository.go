package featureflags

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// PostgresSchema creates the feature_flags table.
	PostgresSchema = `
	CREATE TABLE IF NOT EXISTS feature_flags (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

	selectFlagsSQL = `SELECT key, value, updated_at FROM feature_flags`

	upsertFlagSQL = `
		INSERT INTO feature_flags (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
)

// PostgresRepository stores flags in the feature_flags table, values as
// JSONB.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL feature flags repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate creates the table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("create feature_flags table: %w", err)
	}
	return nil
}

func scanFlag(row pgx.Row) (*Flag, error) {
	var (
		flag  Flag
		value []byte
	)
	if err := row.Scan(&flag.Key, &value, &flag.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(value, &flag.Value); err != nil {
		return nil, fmt.Errorf("decoding flag %s: %w", flag.Key, err)
	}
	return &flag, nil
}

// List returns all stored flags ordered by key.
func (r *PostgresRepository) List(ctx context.Context) ([]*Flag, error) {
	rows, err := r.pool.Query(ctx, selectFlagsSQL+` ORDER BY key`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Flag, error) {
		return scanFlag(row)
	})
}

// Upsert writes flags in one transaction.
func (r *PostgresRepository) Upsert(ctx context.Context, flags []*Flag) error {
	batch := &pgx.Batch{}
	for _, flag := range flags {
		value, err := json.Marshal(flag.Value)
		if err != nil {
			return fmt.Errorf("encoding flag %s: %w", flag.Key, err)
		}
		batch.Queue(upsertFlagSQL, flag.Key, value)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
}

// Delete removes a feature flag by key.
func (r *PostgresRepository) Delete(ctx context.Context, key string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM feature_flags WHERE key = $1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFlagNotFound
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
