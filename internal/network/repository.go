package network

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/waypointworks/liftnet-core/internal/infrastructure/database"
)

// Repository provides persistent storage for network registry entries.
//
// The registry is single-writer: only the authority mutates entries.
// Implementations do not need to guard against concurrent writers.
type Repository interface {
	// Entry retrieves the registry entry for a network ID.
	// Returns ErrNotFound if no entry exists.
	Entry(ctx context.Context, networkID string) (*Entry, error)

	// SaveEntry inserts or replaces the entry for its network ID.
	SaveEntry(ctx context.Context, entry *Entry) error

	// DeleteEntry removes the entry for a network ID.
	// Returns ErrNotFound if no entry exists.
	DeleteEntry(ctx context.Context, networkID string) error

	// List returns all registry entries, ordered by network ID.
	List(ctx context.Context) ([]*Entry, error)
}

// SQLiteRepository implements Repository backed by SQLite. Entries are
// stored as a JSON document keyed by network ID, which keeps the stop
// list's order intact without a join table.
type SQLiteRepository struct {
	db *database.DB
}

// NewSQLiteRepository creates a repository using the given database.
func NewSQLiteRepository(db *database.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Entry retrieves a single registry entry by network ID.
func (r *SQLiteRepository) Entry(ctx context.Context, networkID string) (*Entry, error) {
	var blob []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT entry FROM networks WHERE network_id = ?`, networkID,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query network %s: %w", networkID, err)
	}

	var entry Entry
	if err := json.Unmarshal(blob, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode network %s: %w", networkID, err)
	}
	return &entry, nil
}

// SaveEntry inserts or replaces the registry entry.
func (r *SQLiteRepository) SaveEntry(ctx context.Context, entry *Entry) error {
	if entry.NetworkID == "" {
		return fmt.Errorf("network: entry has empty network ID")
	}

	blob, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode network %s: %w", entry.NetworkID, err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO networks (network_id, entry, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(network_id) DO UPDATE SET
		   entry = excluded.entry,
		   updated_at = excluded.updated_at`,
		entry.NetworkID, blob, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save network %s: %w", entry.NetworkID, err)
	}
	return nil
}

// DeleteEntry removes a registry entry.
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, networkID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM networks WHERE network_id = ?`, networkID)
	if err != nil {
		return fmt.Errorf("failed to delete network %s: %w", networkID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every registry entry ordered by network ID.
func (r *SQLiteRepository) List(ctx context.Context) ([]*Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT entry FROM networks ORDER BY network_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("failed to scan network row: %w", err)
		}
		var entry Entry
		if err := json.Unmarshal(blob, &entry); err != nil {
			return nil, fmt.Errorf("failed to decode network row: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
