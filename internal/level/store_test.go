package level

import (
	"context"
	"errors"
	"testing"

	"github.com/waypointworks/liftnet-core/internal/infrastructure/database"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{Path: ":memory:", BusyTimeout: 1})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck

	_, err = db.Exec(`
		CREATE TABLE current_levels (
			network_id TEXT PRIMARY KEY,
			stop_uuid  TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`)
	if err != nil {
		t.Fatalf("failed to create current_levels table: %v", err)
	}
	return db
}

func TestStoreUnknownState(t *testing.T) {
	store := NewSQLiteStore(setupTestDB(t))

	_, err := store.Current(context.Background(), "Tower")
	if !errors.Is(err, ErrUnknown) {
		t.Errorf("expected ErrUnknown for never-recorded network, got %v", err)
	}
}

func TestStoreSetAndCurrent(t *testing.T) {
	store := NewSQLiteStore(setupTestDB(t))
	ctx := context.Background()

	if err := store.Set(ctx, "Tower", "wp-a"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Current(ctx, "Tower")
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if got != "wp-a" {
		t.Errorf("expected wp-a, got %s", got)
	}

	// Last write wins.
	if err := store.Set(ctx, "Tower", "wp-b"); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}
	got, err = store.Current(ctx, "Tower")
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if got != "wp-b" {
		t.Errorf("expected wp-b after overwrite, got %s", got)
	}
}

func TestStoreSetValidation(t *testing.T) {
	store := NewSQLiteStore(setupTestDB(t))
	ctx := context.Background()

	if err := store.Set(ctx, "", "wp-a"); err == nil {
		t.Error("expected error for empty network ID")
	}
	if err := store.Set(ctx, "Tower", ""); err == nil {
		t.Error("expected error for empty stop UUID")
	}
}

func TestStoreAll(t *testing.T) {
	store := NewSQLiteStore(setupTestDB(t))
	ctx := context.Background()

	if err := store.Set(ctx, "Tower", "wp-a"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "Spire", "wp-x"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 networks, got %d", len(all))
	}
	if all["Tower"] != "wp-a" || all["Spire"] != "wp-x" {
		t.Errorf("unexpected levels map: %v", all)
	}
}
