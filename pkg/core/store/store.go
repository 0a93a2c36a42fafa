// Package store persists customer time series. The primary backend is
// Postgres (JSONB blob per customer); a file-based store mirrors the legacy
// on-disk layout and doubles as the local fallback when no database is
// configured.
package store

import (
	"context"
	"errors"

	"creditagent/pkg/models"
)

// ErrNotFound indicates the identifier or name has no stored customer.
var ErrNotFound = errors.New("customer not found")

// Store is the persistence boundary the analyzer and handlers depend on.
// Implementations own the data; callers treat returned series as read-only.
type Store interface {
	Save(ctx context.Context, series *models.CustomerTimeSeries) error
	Get(ctx context.Context, customerID string) (*models.CustomerTimeSeries, error)
	GetByName(ctx context.Context, name string) (*models.CustomerTimeSeries, error)
	List(ctx context.Context) ([]*models.CustomerTimeSeries, error)
}
