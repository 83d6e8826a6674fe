// Package ledger persists the receipt collection as one JSON document under a fixed key
// of a storage.Store.
//
// Every write is a read-modify-write of the whole collection. Writers inside one process
// are serialised; writers in different processes sharing a backend are last-write-wins.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tfkr-ae/raseed/domain"
	"github.com/tfkr-ae/raseed/storage"
)

// DefaultKey is the storage key the receipt collection is kept under.
const DefaultKey = "receipts"

var _ domain.ReceiptRepository = (*Repository)(nil)

// Repository implements domain.ReceiptRepository on a storage.Store.
type Repository struct {
	mu    sync.Mutex
	store storage.Store
	key   string
}

// New returns a repository that keeps receipts under key in store.
// An empty key falls back to DefaultKey.
func New(store storage.Store, key string) *Repository {
	if key == "" {
		key = DefaultKey
	}
	return &Repository{store: store, key: key}
}

// Key returns the storage key the repository reads and writes.
func (repo *Repository) Key() string {
	return repo.key
}

// LoadAll retrieves every receipt in insertion order.
// A missing key yields an empty slice. Undecodable data yields an error wrapping
// domain.ErrStoreCorrupted and is left in place.
func (repo *Repository) LoadAll(ctx context.Context) ([]*domain.Receipt, error) {
	raw, err := repo.store.Get(ctx, repo.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []*domain.Receipt{}, nil
		}
		return nil, fmt.Errorf("loading receipts from %s: %w", repo.store.Driver(), err)
	}

	receipts := []*domain.Receipt{}
	if err := json.Unmarshal(raw, &receipts); err != nil {
		return nil, fmt.Errorf("%w: decoding %q: %v", domain.ErrStoreCorrupted, repo.key, err)
	}
	// A stored JSON null decodes to a nil slice.
	if receipts == nil {
		receipts = []*domain.Receipt{}
	}
	for i, r := range receipts {
		if r == nil {
			return nil, fmt.Errorf("%w: decoding %q: receipt %d is null", domain.ErrStoreCorrupted, repo.key, i)
		}
	}
	return receipts, nil
}

// Append adds receipt to the end of the stored collection and rewrites the whole collection.
// It refuses to write when the existing data is corrupted.
func (repo *Repository) Append(ctx context.Context, receipt *domain.Receipt) error {
	if receipt == nil {
		return errors.New("appending receipt: receipt is nil")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	receipts, err := repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("appending receipt %s: %w", receipt.ID, err)
	}
	receipts = append(receipts, receipt)

	encoded, err := json.Marshal(receipts)
	if err != nil {
		return fmt.Errorf("encoding receipts: %w", err)
	}
	if err := repo.store.Put(ctx, repo.key, encoded); err != nil {
		return fmt.Errorf("storing receipts: %w", err)
	}
	return nil
}

// FindByID scans the collection for the first receipt with the given id.
func (repo *Repository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, bool, error) {
	receipts, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, r := range receipts {
		if r.ID == id {
			return r, true, nil
		}
	}
	return nil, false, nil
}

// Reset deletes the stored collection, including corrupted data.
func (repo *Repository) Reset(ctx context.Context) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if err := repo.store.Delete(ctx, repo.key); err != nil {
		return fmt.Errorf("resetting receipts: %w", err)
	}
	return nil
}
