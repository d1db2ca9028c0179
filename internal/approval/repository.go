package approval

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/waypointworks/liftnet-core/internal/infrastructure/database"
)

// Message is one durable, human-visible approval request. It carries
// everything a recipient needs to render approve/deny actions and, via
// the embedded payload, everything the executor needs to act, so it
// survives reconnects without external lookups.
type Message struct {
	ID               string          `json:"id"`
	Recipients       []string        `json:"recipients"`
	RoutedAs         RoutedAs        `json:"routedAs"`
	Prompt           string          `json:"prompt"`
	SubjectLabel     string          `json:"subjectLabel,omitempty"`
	DestinationLabel string          `json:"destinationLabel,omitempty"`
	RequesterName    string          `json:"requesterName"`
	Payload          TeleportRequest `json:"payload"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// AddressedTo reports whether the user is among the message recipients.
func (m *Message) AddressedTo(userID string) bool {
	for _, id := range m.Recipients {
		if id == userID {
			return true
		}
	}
	return false
}

// MessageRepository stores pending approval messages.
//
// Deletion is the only mutation and acts as the resolution mutex: the
// first successful delete wins, and later actions on the same message
// observe ErrMessageGone.
type MessageRepository interface {
	// Create persists a new message, assigning its ID.
	Create(ctx context.Context, msg *Message) error

	// Message retrieves one message by ID.
	// Returns ErrMessageGone if it was already resolved.
	Message(ctx context.Context, id string) (*Message, error)

	// Delete resolves a message. Returns ErrMessageGone if another
	// recipient resolved it first.
	Delete(ctx context.Context, id string) error

	// PendingFor returns messages addressed to the user, oldest first.
	PendingFor(ctx context.Context, userID string) ([]*Message, error)
}

// SQLiteMessageRepository implements MessageRepository against the
// approval_messages table.
type SQLiteMessageRepository struct {
	db *database.DB
}

// NewSQLiteMessageRepository creates a message repository using the
// given database.
func NewSQLiteMessageRepository(db *database.DB) *SQLiteMessageRepository {
	return &SQLiteMessageRepository{db: db}
}

// Create persists a new message, assigning a fresh ID.
func (r *SQLiteMessageRepository) Create(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = "msg-" + uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	recipients, err := json.Marshal(msg.Recipients)
	if err != nil {
		return fmt.Errorf("encoding recipients: %w", err)
	}
	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO approval_messages
		   (id, recipients, routed_as, prompt, subject_label, destination_label,
		    requester_name, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, string(recipients), string(msg.RoutedAs), msg.Prompt,
		msg.SubjectLabel, msg.DestinationLabel, msg.RequesterName,
		string(payload), msg.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("creating approval message: %w", err)
	}
	return nil
}

// Message retrieves one message by ID.
func (r *SQLiteMessageRepository) Message(ctx context.Context, id string) (*Message, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, recipients, routed_as, prompt, subject_label, destination_label,
		        requester_name, payload, created_at
		 FROM approval_messages WHERE id = ?`, id)

	msg, err := scanMessage(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageGone
		}
		return nil, fmt.Errorf("querying approval message: %w", err)
	}
	return msg, nil
}

// Delete resolves a message. The zero-rows case maps to ErrMessageGone,
// which is how a second approve or a late deny observes "already gone."
func (r *SQLiteMessageRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM approval_messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting approval message: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking message delete: %w", err)
	}
	if rows == 0 {
		return ErrMessageGone
	}
	return nil
}

// PendingFor returns messages addressed to the user, oldest first.
func (r *SQLiteMessageRepository) PendingFor(ctx context.Context, userID string) ([]*Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, recipients, routed_as, prompt, subject_label, destination_label,
		        requester_name, payload, created_at
		 FROM approval_messages ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing approval messages: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var pending []*Message
	for rows.Next() {
		msg, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning approval message: %w", err)
		}
		if msg.AddressedTo(userID) {
			pending = append(pending, msg)
		}
	}
	return pending, rows.Err()
}

// scanMessage reads one message row from either a Row or Rows scan.
func scanMessage(scan func(dest ...any) error) (*Message, error) {
	var msg Message
	var recipients, routedAs, payload string
	var createdAt int64

	err := scan(&msg.ID, &recipients, &routedAs, &msg.Prompt,
		&msg.SubjectLabel, &msg.DestinationLabel, &msg.RequesterName,
		&payload, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(recipients), &msg.Recipients); err != nil {
		return nil, fmt.Errorf("decoding recipients: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &msg.Payload); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	msg.RoutedAs = RoutedAs(routedAs)
	msg.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &msg, nil
}
