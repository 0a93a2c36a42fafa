package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"creditagent/pkg/models"
)

// Connect opens a pgx pool for the given URL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return pool, nil
}

// PostgresStore keeps each customer as a JSONB blob keyed by customer_id.
//
// Schema assumption (managed outside this service):
//
//	CREATE TABLE IF NOT EXISTS customer_profiles (
//	  customer_id TEXT PRIMARY KEY,
//	  name        TEXT NOT NULL,
//	  profile_type TEXT,
//	  series_json JSONB NOT NULL,
//	  updated_at  TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Save upserts the full series blob.
func (s *PostgresStore) Save(ctx context.Context, series *models.CustomerTimeSeries) error {
	if s.pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	blob, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("marshal customer %s: %w", series.CustomerID, err)
	}

	query := `
		INSERT INTO customer_profiles (customer_id, name, profile_type, series_json, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (customer_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			profile_type = EXCLUDED.profile_type,
			series_json = EXCLUDED.series_json,
			updated_at = EXCLUDED.updated_at;
	`

	_, err = s.pool.Exec(ctx, query, series.CustomerID, series.Name, string(series.ProfileType), blob, time.Now())
	if err != nil {
		return fmt.Errorf("save customer %s: %w", series.CustomerID, err)
	}
	return nil
}

func (s *PostgresStore) queryOne(ctx context.Context, query, arg string) (*models.CustomerTimeSeries, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var blob []byte
	err := s.pool.QueryRow(ctx, query, arg).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%q: %w", arg, ErrNotFound)
		}
		return nil, fmt.Errorf("load customer %q: %w", arg, err)
	}

	var series models.CustomerTimeSeries
	if err := json.Unmarshal(blob, &series); err != nil {
		return nil, fmt.Errorf("decode customer %q: %w", arg, err)
	}
	return &series, nil
}

// Get loads a customer by identifier.
func (s *PostgresStore) Get(ctx context.Context, customerID string) (*models.CustomerTimeSeries, error) {
	return s.queryOne(ctx, `SELECT series_json FROM customer_profiles WHERE customer_id = $1`, customerID)
}

// GetByName loads the first customer with a matching display name.
func (s *PostgresStore) GetByName(ctx context.Context, name string) (*models.CustomerTimeSeries, error) {
	return s.queryOne(ctx,
		`SELECT series_json FROM customer_profiles WHERE name = $1 ORDER BY customer_id LIMIT 1`, name)
}

// List returns all stored customers ordered by identifier.
func (s *PostgresStore) List(ctx context.Context) ([]*models.CustomerTimeSeries, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	rows, err := s.pool.Query(ctx, `SELECT series_json FROM customer_profiles ORDER BY customer_id`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []*models.CustomerTimeSeries
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		var series models.CustomerTimeSeries
		if err := json.Unmarshal(blob, &series); err != nil {
			return nil, fmt.Errorf("decode customer row: %w", err)
		}
		out = append(out, &series)
	}
	return out, rows.Err()
}
