package world

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Store defines the host-document operations the rest of the module
// consumes. Keeping it an interface lets the sync engine, approval
// workflow, and panel controller run against a fake in tests.
type Store interface {
	// Entity resolves an entity UUID to a live document.
	// Returns ErrNotFound if the UUID no longer resolves.
	Entity(ctx context.Context, uuid string) (*Entity, error)

	// Waypoint resolves a waypoint UUID to a live document.
	// Returns ErrNotFound if the UUID no longer resolves.
	Waypoint(ctx context.Context, uuid string) (*Waypoint, error)

	// UpdateWaypoint persists a waypoint's label and attribute block.
	UpdateWaypoint(ctx context.Context, wp *Waypoint) error

	// MoveEntity places an entity at the destination waypoint's center.
	// Returns ErrNotFound if the entity no longer resolves.
	MoveEntity(ctx context.Context, entityUUID string, dest *Waypoint) error

	// User returns a participant by ID.
	User(ctx context.Context, id string) (*User, error)

	// Owners returns every user with ownership rights over the entity.
	Owners(ctx context.Context, entityUUID string) ([]User, error)

	// UsersByRole returns every user with the given role, online or not.
	UsersByRole(ctx context.Context, role Role) ([]User, error)

	// EntitiesInWaypoint scans the waypoint's scene for entities
	// geometrically inside its bounds.
	EntitiesInWaypoint(ctx context.Context, wp *Waypoint) ([]Entity, error)
}

// SQLiteStore implements Store against the world tables.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed world store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Entity resolves an entity UUID to a live document.
func (s *SQLiteStore) Entity(ctx context.Context, uuid string) (*Entity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT uuid, name, scene_uuid, x, y, owners FROM entities WHERE uuid = ?`, uuid)

	var e Entity
	var ownersJSON string
	err := row.Scan(&e.UUID, &e.Name, &e.SceneUUID, &e.Pos.X, &e.Pos.Y, &ownersJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying entity: %w", err)
	}
	if err := json.Unmarshal([]byte(ownersJSON), &e.Owners); err != nil {
		return nil, fmt.Errorf("decoding entity owners: %w", err)
	}
	return &e, nil
}

// Waypoint resolves a waypoint UUID to a live document.
func (s *SQLiteStore) Waypoint(ctx context.Context, uuid string) (*Waypoint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT uuid, label, scene_uuid, x, y, width, height, attrs
		 FROM waypoints WHERE uuid = ?`, uuid)

	var w Waypoint
	var attrsJSON string
	err := row.Scan(&w.UUID, &w.Label, &w.SceneUUID,
		&w.Bounds.X, &w.Bounds.Y, &w.Bounds.Width, &w.Bounds.Height, &attrsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying waypoint: %w", err)
	}
	if err := json.Unmarshal([]byte(attrsJSON), &w.Attrs); err != nil {
		return nil, fmt.Errorf("decoding waypoint attrs: %w", err)
	}
	return &w, nil
}

// UpdateWaypoint persists a waypoint's label and attribute block.
func (s *SQLiteStore) UpdateWaypoint(ctx context.Context, wp *Waypoint) error {
	attrsJSON, err := json.Marshal(wp.Attrs)
	if err != nil {
		return fmt.Errorf("encoding waypoint attrs: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE waypoints SET label = ?, attrs = ? WHERE uuid = ?`,
		wp.Label, string(attrsJSON), wp.UUID)
	if err != nil {
		return fmt.Errorf("updating waypoint: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking waypoint update: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// MoveEntity places an entity at the destination waypoint's center.
func (s *SQLiteStore) MoveEntity(ctx context.Context, entityUUID string, dest *Waypoint) error {
	center := dest.Bounds.Center()
	result, err := s.db.ExecContext(ctx,
		`UPDATE entities SET scene_uuid = ?, x = ?, y = ? WHERE uuid = ?`,
		dest.SceneUUID, center.X, center.Y, entityUUID)
	if err != nil {
		return fmt.Errorf("moving entity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking entity move: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// User returns a participant by ID.
func (s *SQLiteStore) User(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, online FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// Owners returns every user with ownership rights over the entity.
func (s *SQLiteStore) Owners(ctx context.Context, entityUUID string) ([]User, error) {
	entity, err := s.Entity(ctx, entityUUID)
	if err != nil {
		return nil, err
	}

	var owners []User
	for _, id := range entity.Owners {
		u, err := s.User(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Stale ownership entries are skipped, not fatal.
				continue
			}
			return nil, err
		}
		owners = append(owners, *u)
	}
	return owners, nil
}

// UsersByRole returns every user with the given role, online or not.
func (s *SQLiteStore) UsersByRole(ctx context.Context, role Role) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, online FROM users WHERE role = ? ORDER BY id`, string(role))
	if err != nil {
		return nil, fmt.Errorf("querying users by role: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var users []User
	for rows.Next() {
		var u User
		var roleStr string
		var online int
		if err := rows.Scan(&u.ID, &u.Name, &roleStr, &online); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.Role = Role(roleStr)
		u.Online = online != 0
		users = append(users, u)
	}
	return users, rows.Err()
}

// EntitiesInWaypoint scans the waypoint's scene for entities inside its bounds.
func (s *SQLiteStore) EntitiesInWaypoint(ctx context.Context, wp *Waypoint) ([]Entity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT uuid, name, scene_uuid, x, y, owners FROM entities WHERE scene_uuid = ?`,
		wp.SceneUUID)
	if err != nil {
		return nil, fmt.Errorf("scanning scene entities: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var inside []Entity
	for rows.Next() {
		var e Entity
		var ownersJSON string
		if err := rows.Scan(&e.UUID, &e.Name, &e.SceneUUID, &e.Pos.X, &e.Pos.Y, &ownersJSON); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		if err := json.Unmarshal([]byte(ownersJSON), &e.Owners); err != nil {
			return nil, fmt.Errorf("decoding entity owners: %w", err)
		}
		if wp.Bounds.Contains(e.Pos) {
			inside = append(inside, e)
		}
	}
	return inside, rows.Err()
}

// scanUser reads one user row.
func scanUser(row *sql.Row) (*User, error) {
	var u User
	var roleStr string
	var online int
	if err := row.Scan(&u.ID, &u.Name, &roleStr, &online); err != nil {
		return nil, err
	}
	u.Role = Role(roleStr)
	u.Online = online != 0
	return &u, nil
}
