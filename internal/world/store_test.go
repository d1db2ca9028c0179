package world

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the world tables.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'player',
			online INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE entities (
			uuid TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			scene_uuid TEXT NOT NULL,
			x REAL NOT NULL DEFAULT 0,
			y REAL NOT NULL DEFAULT 0,
			owners TEXT NOT NULL DEFAULT '[]'
		);
		CREATE TABLE waypoints (
			uuid TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			scene_uuid TEXT NOT NULL,
			x REAL NOT NULL DEFAULT 0,
			y REAL NOT NULL DEFAULT 0,
			width REAL NOT NULL DEFAULT 0,
			height REAL NOT NULL DEFAULT 0,
			attrs TEXT NOT NULL DEFAULT '{}'
		);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func seedWorld(t *testing.T, db *sql.DB) {
	t.Helper()

	stmts := []string{
		`INSERT INTO users VALUES ('usr-gm', 'Game Master', 'gm', 1)`,
		`INSERT INTO users VALUES ('usr-ann', 'Ann', 'player', 1)`,
		`INSERT INTO users VALUES ('usr-bob', 'Bob', 'player', 0)`,
		`INSERT INTO entities VALUES ('Token.hero', 'Hero', 'Scene.one', 10, 10, '["usr-ann"]')`,
		`INSERT INTO entities VALUES ('Token.npc', 'Guard', 'Scene.one', 95, 95, '[]')`,
		`INSERT INTO entities VALUES ('Token.far', 'Wanderer', 'Scene.two', 10, 10, '["usr-bob"]')`,
		`INSERT INTO waypoints VALUES ('Region.lobby', 'Lobby', 'Scene.one', 0, 0, 50, 50, '{}')`,
		`INSERT INTO waypoints VALUES ('Region.roof', 'Roof', 'Scene.one', 200, 200, 50, 50, '{}')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}

func TestStore_Entity(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	e, err := store.Entity(ctx, "Token.hero")
	if err != nil {
		t.Fatalf("Entity() error = %v", err)
	}
	if e.Name != "Hero" {
		t.Errorf("Name = %q, want %q", e.Name, "Hero")
	}
	if !e.OwnedBy("usr-ann") {
		t.Error("OwnedBy(usr-ann) = false, want true")
	}
	if e.OwnedBy("usr-bob") {
		t.Error("OwnedBy(usr-bob) = true, want false")
	}
}

func TestStore_EntityNotFound(t *testing.T) {
	db := setupTestDB(t)
	store := NewSQLiteStore(db)

	_, err := store.Entity(context.Background(), "Token.gone")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Entity() error = %v, want ErrNotFound", err)
	}
}

func TestStore_WaypointNotFound(t *testing.T) {
	db := setupTestDB(t)
	store := NewSQLiteStore(db)

	_, err := store.Waypoint(context.Background(), "Region.gone")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Waypoint() error = %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateWaypoint(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	wp, err := store.Waypoint(ctx, "Region.lobby")
	if err != nil {
		t.Fatalf("Waypoint() error = %v", err)
	}

	wp.Label = "elev1 02 Lobby"
	wp.Attrs = map[string]any{"enabled": true, "networkId": "elev1"}
	if err := store.UpdateWaypoint(ctx, wp); err != nil {
		t.Fatalf("UpdateWaypoint() error = %v", err)
	}

	reloaded, err := store.Waypoint(ctx, "Region.lobby")
	if err != nil {
		t.Fatalf("Waypoint() reload error = %v", err)
	}
	if reloaded.Label != "elev1 02 Lobby" {
		t.Errorf("Label = %q, want %q", reloaded.Label, "elev1 02 Lobby")
	}
	if reloaded.Attrs["networkId"] != "elev1" {
		t.Errorf("Attrs[networkId] = %v, want elev1", reloaded.Attrs["networkId"])
	}
}

func TestStore_MoveEntity(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	dest, err := store.Waypoint(ctx, "Region.roof")
	if err != nil {
		t.Fatalf("Waypoint() error = %v", err)
	}

	if err := store.MoveEntity(ctx, "Token.hero", dest); err != nil {
		t.Fatalf("MoveEntity() error = %v", err)
	}

	moved, err := store.Entity(ctx, "Token.hero")
	if err != nil {
		t.Fatalf("Entity() error = %v", err)
	}
	want := dest.Bounds.Center()
	if moved.Pos != want {
		t.Errorf("Pos = %+v, want %+v", moved.Pos, want)
	}

	if err := store.MoveEntity(ctx, "Token.gone", dest); !errors.Is(err, ErrNotFound) {
		t.Errorf("MoveEntity(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_Owners(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	owners, err := store.Owners(ctx, "Token.hero")
	if err != nil {
		t.Fatalf("Owners() error = %v", err)
	}
	if len(owners) != 1 || owners[0].ID != "usr-ann" {
		t.Errorf("Owners() = %+v, want [usr-ann]", owners)
	}

	none, err := store.Owners(ctx, "Token.npc")
	if err != nil {
		t.Fatalf("Owners() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Owners(unowned) = %+v, want empty", none)
	}
}

func TestStore_UsersByRole(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	store := NewSQLiteStore(db)

	gms, err := store.UsersByRole(context.Background(), RoleGM)
	if err != nil {
		t.Fatalf("UsersByRole() error = %v", err)
	}
	if len(gms) != 1 || gms[0].ID != "usr-gm" {
		t.Errorf("UsersByRole(gm) = %+v, want [usr-gm]", gms)
	}
}

func TestStore_EntitiesInWaypoint(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	lobby, err := store.Waypoint(ctx, "Region.lobby")
	if err != nil {
		t.Fatalf("Waypoint() error = %v", err)
	}

	inside, err := store.EntitiesInWaypoint(ctx, lobby)
	if err != nil {
		t.Fatalf("EntitiesInWaypoint() error = %v", err)
	}

	// Hero (10,10) is inside; Guard (95,95) is out of bounds; Wanderer
	// is in another scene.
	if len(inside) != 1 || inside[0].UUID != "Token.hero" {
		t.Errorf("EntitiesInWaypoint() = %+v, want [Token.hero]", inside)
	}
}
