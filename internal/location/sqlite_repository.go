package location

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nimbusweather/nimbus/internal/weather"
)

// SQLiteSchema creates the locations table with the serialized location in
// a TEXT column.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS locations (
  id         TEXT PRIMARY KEY,
  data       TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`

// SQLiteRepository is a SQLite implementation of weather.Repository.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite location repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Migrate creates the locations table if it does not exist.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, SQLiteSchema); err != nil {
		return fmt.Errorf("create locations table: %w", err)
	}
	return nil
}

// Get retrieves a location by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*weather.Location, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM locations WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, weather.ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	return decode([]byte(data))
}

// List returns every location ordered by ID.
func (r *SQLiteRepository) List(ctx context.Context) ([]*weather.Location, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM locations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []*weather.Location
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		loc, err := decode([]byte(data))
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return out, nil
}

// Save creates or replaces a location.
func (r *SQLiteRepository) Save(ctx context.Context, loc *weather.Location) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}

	query := `
		INSERT INTO locations (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := r.db.ExecContext(ctx, query, loc.ID, string(data), now); err != nil {
		return fmt.Errorf("save location: %w", err)
	}
	return nil
}

// Delete removes a location.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return weather.ErrLocationNotFound
	}
	return nil
}
