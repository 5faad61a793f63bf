package featureflags

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteSchema creates the feature_flags table. Values are JSON text and
// timestamps RFC 3339.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS feature_flags (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`

// SQLiteRepository stores flags in a SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite feature flags repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Migrate creates the table if it does not exist.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, SQLiteSchema); err != nil {
		return fmt.Errorf("create feature_flags table: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*Flag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value, updated_at FROM feature_flags ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list feature flags: %w", err)
	}
	defer rows.Close()

	var out []*Flag
	for rows.Next() {
		var (
			flag             Flag
			value, updatedAt string
		)
		if err := rows.Scan(&flag.Key, &value, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan feature flag: %w", err)
		}
		if err := json.Unmarshal([]byte(value), &flag.Value); err != nil {
			return nil, fmt.Errorf("decoding flag %s: %w", flag.Key, err)
		}
		if flag.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("decoding flag %s: %w", flag.Key, err)
		}
		out = append(out, &flag)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Upsert(ctx context.Context, flags []*Flag) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, flag := range flags {
		value, err := json.Marshal(flag.Value)
		if err != nil {
			return fmt.Errorf("encoding flag %s: %w", flag.Key, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO feature_flags (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			flag.Key, string(value), now); err != nil {
			return fmt.Errorf("upsert flag %s: %w", flag.Key, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feature_flags WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete flag %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrFlagNotFound
	}
	return nil
}

var _ Repository = (*SQLiteRepository)(nil)
