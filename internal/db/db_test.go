package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	dbgen "github.com/codr1/Runway/internal/db/generated"
)

func TestRunInTx(t *testing.T) {
	database, err := New(filepath.Join(t.TempDir(), "tx.db"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	ctx := context.Background()

	insert := func(tx *DB, slug string) error {
		now := time.Now().UTC()
		_, err := tx.Queries.CreateEvent(ctx, dbgen.CreateEventParams{
			Name: slug, Slug: slug, CreatedAt: now, UpdatedAt: now,
		})
		return err
	}
	count := func() int {
		t.Helper()
		var n int
		if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
			t.Fatalf("count: %v", err)
		}
		return n
	}

	if err := database.RunInTx(ctx, func(tx *DB) error { return insert(tx, "kept") }); err != nil {
		t.Fatalf("commit: %v", err)
	}

	boom := errors.New("boom")
	err = database.RunInTx(ctx, func(tx *DB) error {
		if err := insert(tx, "dropped"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = database.RunInTx(ctx, func(tx *DB) error {
			_ = insert(tx, "panicked")
			panic("boom")
		})
	}()

	if got := count(); got != 1 {
		t.Fatalf("events = %d, want 1", got)
	}
}
