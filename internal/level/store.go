package level

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/waypointworks/liftnet-core/internal/infrastructure/database"
)

// Store is the persisted current-level state: one stop UUID per network
// ID. A network with no row is in the Unknown state.
//
// The store is single-writer. Only the authority calls Set; every other
// client reads it indirectly through currentLevelChanged broadcasts and
// keeps its own optimistic Cache instead.
type Store interface {
	// Current returns the current stop UUID for a network.
	// Returns ErrUnknown when no level has ever been recorded.
	Current(ctx context.Context, networkID string) (string, error)

	// Set records the current stop for a network, replacing any prior value.
	Set(ctx context.Context, networkID, stopUUID string) error

	// All returns the full networkID to stop UUID map.
	All(ctx context.Context) (map[string]string, error)
}

// SQLiteStore implements Store against the current_levels table.
type SQLiteStore struct {
	db *database.DB
}

// NewSQLiteStore creates a SQLite-backed current-level store.
func NewSQLiteStore(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Current returns the current stop UUID for a network.
func (s *SQLiteStore) Current(ctx context.Context, networkID string) (string, error) {
	var stopUUID string
	err := s.db.QueryRowContext(ctx,
		`SELECT stop_uuid FROM current_levels WHERE network_id = ?`, networkID,
	).Scan(&stopUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUnknown
	}
	if err != nil {
		return "", fmt.Errorf("querying current level for %s: %w", networkID, err)
	}
	return stopUUID, nil
}

// Set records the current stop for a network.
func (s *SQLiteStore) Set(ctx context.Context, networkID, stopUUID string) error {
	if networkID == "" || stopUUID == "" {
		return fmt.Errorf("level: network ID and stop UUID are required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO current_levels (network_id, stop_uuid, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(network_id) DO UPDATE SET
		   stop_uuid = excluded.stop_uuid,
		   updated_at = excluded.updated_at`,
		networkID, stopUUID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("setting current level for %s: %w", networkID, err)
	}
	return nil
}

// All returns the full network to stop mapping.
func (s *SQLiteStore) All(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT network_id, stop_uuid FROM current_levels`)
	if err != nil {
		return nil, fmt.Errorf("listing current levels: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	levels := make(map[string]string)
	for rows.Next() {
		var networkID, stopUUID string
		if err := rows.Scan(&networkID, &stopUUID); err != nil {
			return nil, fmt.Errorf("scanning current level: %w", err)
		}
		levels[networkID] = stopUUID
	}
	return levels, rows.Err()
}
