package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"storefront/internal/domain"
)

// StateStore is the slice of the catalog store persistence needs: a
// consistent copy out, a wholesale replace back in.
type StateStore interface {
	Snapshot(ctx context.Context) ([]domain.Customer, []domain.Product, []domain.Order)
	Restore(ctx context.Context, customers []domain.Customer, products []domain.Product, orders []domain.Order) error
}

// FileStore persists snapshots to a single JSON file
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore { return &FileStore{Path: path} }

// Save writes the current state atomically: temp file in the same
// directory, then rename over the target.
func (f *FileStore) Save(ctx context.Context, store StateStore) error {
	customers, products, orders := store.Snapshot(ctx)

	tmp, err := os.CreateTemp(filepath.Dir(f.Path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, customers, products, orders); err != nil {
		tmp.Close()
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load decodes and validates the snapshot fully before restoring the store,
// so a corrupt file leaves prior in-memory state untouched. A missing file
// surfaces as fs.ErrNotExist: the expected first-run condition, for the
// caller to log and move past.
func (f *FileStore) Load(ctx context.Context, store StateStore) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	customers, products, orders, err := Decode(file)
	if err != nil {
		return err
	}
	return store.Restore(ctx, customers, products, orders)
}
