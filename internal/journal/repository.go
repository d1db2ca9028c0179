package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/waypointworks/liftnet-core/internal/infrastructure/database"
)

// Repository stores journal events.
type Repository interface {
	// Record persists one event.
	Record(ctx context.Context, event *Event) error

	// Recent returns the newest events, newest first.
	Recent(ctx context.Context, limit int) ([]*Event, error)

	// ByNetwork returns the newest events for one network, newest first.
	ByNetwork(ctx context.Context, networkID string, limit int) ([]*Event, error)
}

// SQLiteRepository implements Repository against the journal_events table.
type SQLiteRepository struct {
	db *database.DB
}

// NewSQLiteRepository creates a journal repository using the given database.
func NewSQLiteRepository(db *database.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record persists one event.
func (r *SQLiteRepository) Record(ctx context.Context, event *Event) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("encoding event details: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO journal_events
		   (id, action, network_id, stop_uuid, user_id, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Action, event.NetworkID, event.StopUUID,
		event.UserID, string(details), event.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("recording journal event: %w", err)
	}
	return nil
}

// Recent returns the newest events.
func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]*Event, error) {
	return r.query(ctx,
		`SELECT id, action, network_id, stop_uuid, user_id, details, created_at
		 FROM journal_events ORDER BY created_at DESC, id LIMIT ?`, limit)
}

// ByNetwork returns the newest events for one network.
func (r *SQLiteRepository) ByNetwork(ctx context.Context, networkID string, limit int) ([]*Event, error) {
	return r.query(ctx,
		`SELECT id, action, network_id, stop_uuid, user_id, details, created_at
		 FROM journal_events WHERE network_id = ?
		 ORDER BY created_at DESC, id LIMIT ?`, networkID, limit)
}

func (r *SQLiteRepository) query(ctx context.Context, q string, args ...any) ([]*Event, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal events: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var events []*Event
	for rows.Next() {
		var event Event
		var details string
		var createdAt int64
		err := rows.Scan(&event.ID, &event.Action, &event.NetworkID,
			&event.StopUUID, &event.UserID, &details, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning journal event: %w", err)
		}
		if err := json.Unmarshal([]byte(details), &event.Details); err != nil {
			return nil, fmt.Errorf("decoding event details: %w", err)
		}
		event.CreatedAt = time.Unix(createdAt, 0).UTC()
		events = append(events, &event)
	}
	return events, rows.Err()
}
