package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nimbusweather/nimbus/internal/weather"
)

// PostgresSchema creates the locations table. The serialized location,
// including its last good weather, is kept in one JSONB column.
const PostgresSchema = `
	CREATE TABLE IF NOT EXISTS locations (
		id         TEXT PRIMARY KEY,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// PostgresRepository is a PostgreSQL implementation of weather.Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL location repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate creates the locations table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("create locations table: %w", err)
	}
	return nil
}

// Get retrieves a location by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*weather.Location, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM locations WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, weather.ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	return decode(data)
}

// List returns every location ordered by ID.
func (r *PostgresRepository) List(ctx context.Context) ([]*weather.Location, error) {
	rows, err := r.pool.Query(ctx, `SELECT data FROM locations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []*weather.Location
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		loc, err := decode(data)
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
func (r *PostgresRepository) Save(ctx context.Context, loc *weather.Location) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}

	query := `
		INSERT INTO locations (id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.pool.Exec(ctx, query, loc.ID, data); err != nil {
		return fmt.Errorf("save location: %w", err)
	}
	return nil
}

// Delete removes a location.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return weather.ErrLocationNotFound
	}
	return nil
}

func decode(data []byte) (*weather.Location, error) {
	var loc weather.Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}
	return &loc, nil
}
