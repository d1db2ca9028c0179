package network

import (
	"context"
	"errors"
	"testing"

	"github.com/waypointworks/liftnet-core/internal/infrastructure/database"
)

// setupTestDB creates an in-memory database with the networks table.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{Path: ":memory:", BusyTimeout: 1})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck

	_, err = db.Exec(`
		CREATE TABLE networks (
			network_id TEXT PRIMARY KEY,
			entry      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`)
	if err != nil {
		t.Fatalf("failed to create networks table: %v", err)
	}
	return db
}

func testEntry() *Entry {
	return &Entry{
		NetworkID: "Tower",
		HomeUUID:  "wp-c",
		Stops: []Stop{
			{UUID: "wp-a", Label: "Penthouse"},
			{UUID: "wp-b", Label: "Mezzanine"},
			{UUID: "wp-c", Label: "Lobby"},
		},
		Icon:          "icons/elevator.svg",
		IconSize:      1.5,
		AlwaysVisible: true,
		Theme:         "brass",
	}
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	entry := testEntry()
	if err := repo.SaveEntry(ctx, entry); err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}

	got, err := repo.Entry(ctx, "Tower")
	if err != nil {
		t.Fatalf("Entry failed: %v", err)
	}

	if got.NetworkID != entry.NetworkID {
		t.Errorf("expected network ID %s, got %s", entry.NetworkID, got.NetworkID)
	}
	if got.HomeUUID != entry.HomeUUID {
		t.Errorf("expected home %s, got %s", entry.HomeUUID, got.HomeUUID)
	}
	if len(got.Stops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(got.Stops))
	}
	// Stop order carries floor numbering and must survive storage.
	for i, stop := range entry.Stops {
		if got.Stops[i] != stop {
			t.Errorf("stop %d: expected %+v, got %+v", i, stop, got.Stops[i])
		}
	}
	if !got.AlwaysVisible || got.Icon != entry.Icon || got.Theme != entry.Theme {
		t.Errorf("shared attributes did not round trip: %+v", got)
	}
}

func TestSQLiteRepositorySaveReplaces(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	entry := testEntry()
	if err := repo.SaveEntry(ctx, entry); err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}

	entry.Stops = entry.Stops[:2]
	if err := repo.SaveEntry(ctx, entry); err != nil {
		t.Fatalf("second SaveEntry failed: %v", err)
	}

	got, err := repo.Entry(ctx, "Tower")
	if err != nil {
		t.Fatalf("Entry failed: %v", err)
	}
	if len(got.Stops) != 2 {
		t.Errorf("expected replacement to keep 2 stops, got %d", len(got.Stops))
	}
}

func TestSQLiteRepositoryNotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if _, err := repo.Entry(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteEntry(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestSQLiteRepositoryEmptyNetworkID(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	if err := repo.SaveEntry(context.Background(), &Entry{}); err == nil {
		t.Error("expected error saving entry with empty network ID")
	}
}

func TestSQLiteRepositoryList(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"Spire", "Tower", "Annex"} {
		entry := testEntry()
		entry.NetworkID = id
		if err := repo.SaveEntry(ctx, entry); err != nil {
			t.Fatalf("SaveEntry(%s) failed: %v", id, err)
		}
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	wantOrder := []string{"Annex", "Spire", "Tower"}
	for i, want := range wantOrder {
		if entries[i].NetworkID != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, entries[i].NetworkID)
		}
	}
}

func TestSQLiteRepositoryDelete(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.SaveEntry(ctx, testEntry()); err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}
	if err := repo.DeleteEntry(ctx, "Tower"); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	if _, err := repo.Entry(ctx, "Tower"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
