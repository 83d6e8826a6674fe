package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/tfkr-ae/raseed/storage"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("should return ErrNotFound for a missing key", func(t *testing.T) {
		s := New()

		_, err := s.Get(ctx, "receipts")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", storage.ErrNotFound, err)
		}
	})

	t.Run("should overwrite and return copies", func(t *testing.T) {
		s := New()
		value := []byte("first")

		if err := s.Put(ctx, "receipts", value); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		value[0] = 'X'
		if err := s.Put(ctx, "receipts", []byte("second")); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got, err := s.Get(ctx, "receipts")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if string(got) != "second" {
			t.Fatalf("\nwanted:\nsecond\ngot:\n%s", got)
		}

		got[0] = 'Y'
		again, _ := s.Get(ctx, "receipts")
		if string(again) != "second" {
			t.Fatalf("\nwanted:\nsecond\ngot:\n%s", again)
		}
	})

	t.Run("should delete keys", func(t *testing.T) {
		s := New()
		s.Put(ctx, "receipts", []byte("x"))

		if err := s.Delete(ctx, "receipts"); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if err := s.Delete(ctx, "receipts"); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if _, err := s.Get(ctx, "receipts"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", storage.ErrNotFound, err)
		}
	})
}
