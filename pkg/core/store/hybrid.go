package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"creditagent/pkg/models"
)

// HybridStore uses Postgres as the primary backend and the file store as the
// local fallback when no pool is configured. When a pool is set we rely on
// it exclusively; mixing backends per call would make reads inconsistent.
type HybridStore struct {
	db   *PostgresStore
	file *FileStore
}

// NewHybridStore picks the backend at construction time: a nil pool means
// file-only operation under dir.
func NewHybridStore(pool *pgxpool.Pool, dir string) (*HybridStore, error) {
	h := &HybridStore{}
	if pool != nil {
		h.db = NewPostgresStore(pool)
		return h, nil
	}
	file, err := NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	h.file = file
	return h, nil
}

func (h *HybridStore) backend() Store {
	if h.db != nil {
		return h.db
	}
	return h.file
}

func (h *HybridStore) Save(ctx context.Context, series *models.CustomerTimeSeries) error {
	return h.backend().Save(ctx, series)
}

func (h *HybridStore) Get(ctx context.Context, customerID string) (*models.CustomerTimeSeries, error) {
	return h.backend().Get(ctx, customerID)
}

func (h *HybridStore) GetByName(ctx context.Context, name string) (*models.CustomerTimeSeries, error) {
	return h.backend().GetByName(ctx, name)
}

func (h *HybridStore) List(ctx context.Context) ([]*models.CustomerTimeSeries, error) {
	return h.backend().List(ctx)
}
