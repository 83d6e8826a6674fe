package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tfkr-ae/raseed/storage"
)

var _ storage.Store = (*Repository)(nil)

// dbEntry represents a key-value pair as stored in the database.
type dbEntry struct {
	Name string `db:"name"` // The storage key.
	Data string `db:"data"` // The stored value, JSON text for receipt collections.
}

// Driver reports whether the repository is backed by SQLite or Postgres.
func (repo *Repository) Driver() storage.Driver {
	return repo.driver
}

// Get retrieves the value stored under key.
// It returns storage.ErrNotFound when the key has no row.
func (repo *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	var entry dbEntry
	query := repo.dbConn.Rebind(`SELECT name, data FROM kv_store WHERE name = ?`)

	err := repo.dbConn.GetContext(ctx, &entry, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("getting value for %s: %w", key, err)
	}
	return []byte(entry.Data), nil
}

// Put creates or replaces the value stored under key.
func (repo *Repository) Put(ctx context.Context, key string, value []byte) error {
	query := repo.dbConn.Rebind(`INSERT INTO kv_store (name, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`)

	_, err := repo.dbConn.ExecContext(ctx, query, key, string(value))
	if err != nil {
		return fmt.Errorf("storing value for %s: %w", key, err)
	}
	return nil
}

// Delete removes the row for key. Deleting a key that does not exist is not an error.
func (repo *Repository) Delete(ctx context.Context, key string) error {
	query := repo.dbConn.Rebind(`DELETE FROM kv_store WHERE name = ?`)

	_, err := repo.dbConn.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("deleting value for %s: %w", key, err)
	}
	return nil
}
