package db

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/tfkr-ae/raseed/storage"
)

func TestStoreRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("should return ErrNotFound for a missing key", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		_, err := repo.Get(ctx, "receipts")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", storage.ErrNotFound, err)
		}
	})

	t.Run("should insert and then overwrite a value", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		if err := repo.Put(ctx, "receipts", []byte(`[1]`)); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if err := repo.Put(ctx, "receipts", []byte(`[1,2]`)); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got, err := repo.Get(ctx, "receipts")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if string(got) != `[1,2]` {
			t.Fatalf("\nwanted:\n[1,2]\ngot:\n%s", got)
		}

		var rows int
		repo.dbConn.Get(&rows, `SELECT COUNT(*) FROM kv_store`)
		if rows != 1 {
			t.Fatalf("\nwanted:\n1\ngot:\n%d", rows)
		}
	})

	t.Run("should keep keys independent", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		repo.Put(ctx, "receipts", []byte(`a`))
		repo.Put(ctx, "other", []byte(`b`))

		got, _ := repo.Get(ctx, "receipts")
		if string(got) != "a" {
			t.Fatalf("\nwanted:\na\ngot:\n%s", got)
		}
	})

	t.Run("should delete a key and tolerate missing keys", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		repo.Put(ctx, "receipts", []byte(`[]`))

		if err := repo.Delete(ctx, "receipts"); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if err := repo.Delete(ctx, "receipts"); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if _, err := repo.Get(ctx, "receipts"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", storage.ErrNotFound, err)
		}
	})

	t.Run("should round trip against postgres when configured", func(t *testing.T) {
		dsn := os.Getenv("RASEED_TEST_POSTGRES_DSN")
		if dsn == "" {
			t.Skip("RASEED_TEST_POSTGRES_DSN not set")
		}

		dbConn, err := NewPostgres(dsn)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		repo := NewStoreRepo(dbConn)
		defer repo.Close()

		if repo.Driver() != storage.DriverPostgres {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", storage.DriverPostgres, repo.Driver())
		}
		if err := repo.Put(ctx, "raseed-test", []byte(`[]`)); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		defer repo.Delete(ctx, "raseed-test")

		got, err := repo.Get(ctx, "raseed-test")
		if err != nil || string(got) != `[]` {
			t.Fatalf("\nwanted:\n[]\ngot:\n%s (%v)", got, err)
		}
	})
}
