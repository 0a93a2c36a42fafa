package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"creditagent/pkg/models"
)

const indexFile = "customer_data.json"

// FileStore keeps one JSON file per customer plus an index file holding all
// customers, matching the layout older tooling expects:
//
//	<dir>/customer_<ID>.json
//	<dir>/customer_data.json
//
// Writes are serialized with a mutex; concurrent writers across processes
// are an accepted external risk, not handled here.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) customerPath(customerID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("customer_%s.json", customerID))
}

func (s *FileStore) indexPath() string {
	return filepath.Join(s.dir, indexFile)
}

// Save writes the per-customer file and upserts the customer into the index.
func (s *FileStore) Save(ctx context.Context, series *models.CustomerTimeSeries) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSON(s.customerPath(series.CustomerID), series); err != nil {
		return err
	}

	index, err := s.readIndex()
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range index {
		if existing.CustomerID == series.CustomerID {
			index[i] = series
			replaced = true
			break
		}
	}
	if !replaced {
		index = append(index, series)
	}

	return writeJSON(s.indexPath(), index)
}

// Get loads a customer by identifier from its own file.
func (s *FileStore) Get(ctx context.Context, customerID string) (*models.CustomerTimeSeries, error) {
	data, err := os.ReadFile(s.customerPath(customerID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
		}
		return nil, fmt.Errorf("read customer %s: %w", customerID, err)
	}

	var series models.CustomerTimeSeries
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, fmt.Errorf("decode customer %s: %w", customerID, err)
	}
	return &series, nil
}

// GetByName scans the index for a display-name match. Names are not unique;
// the first match wins, same as the legacy behavior.
func (s *FileStore) GetByName(ctx context.Context, name string) (*models.CustomerTimeSeries, error) {
	index, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	for _, c := range index {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("customer named %q: %w", name, ErrNotFound)
}

// List returns every customer in the index.
func (s *FileStore) List(ctx context.Context) ([]*models.CustomerTimeSeries, error) {
	return s.readIndex()
}

func (s *FileStore) readIndex() ([]*models.CustomerTimeSeries, error) {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.CustomerTimeSeries{}, nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}

	var index []*models.CustomerTimeSeries
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return index, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
