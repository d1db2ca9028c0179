package approval

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
		CREATE TABLE approval_messages (
			id                TEXT PRIMARY KEY,
			recipients        TEXT NOT NULL,
			routed_as         TEXT NOT NULL,
			prompt            TEXT NOT NULL,
			subject_label     TEXT NOT NULL DEFAULT '',
			destination_label TEXT NOT NULL DEFAULT '',
			requester_name    TEXT NOT NULL,
			payload           TEXT NOT NULL,
			created_at        INTEGER NOT NULL
		)`)
	if err != nil {
		t.Fatalf("failed to create approval_messages table: %v", err)
	}
	return db
}

func sampleMessage() *Message {
	return &Message{
		Recipients:       []string{"usr-gm", "usr-ann"},
		RoutedAs:         RoutedAsOwner,
		Prompt:           "Annika requests moving Bob to the roof",
		SubjectLabel:     "Bob",
		DestinationLabel: "Roof",
		RequesterName:    "Annika",
		Payload: TeleportRequest{
			RequestID:        "req-1",
			RequesterID:      "usr-ann",
			RequesterName:    "Annika",
			NetworkID:        "Tower",
			DestinationUUID:  "wp-dest",
			DestinationLabel: "Roof",
			SubjectUUIDs:     []string{"ent-bob"},
			OriginUUID:       "wp-origin",
		},
	}
}

func TestMessageRepositoryRoundTrip(t *testing.T) {
	repo := NewSQLiteMessageRepository(setupTestDB(t))
	ctx := context.Background()

	msg := sampleMessage()
	if err := repo.Create(ctx, msg); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("Create must assign an ID")
	}

	got, err := repo.Message(ctx, msg.ID)
	if err != nil {
		t.Fatalf("Message failed: %v", err)
	}
	if got.Prompt != msg.Prompt || got.RoutedAs != msg.RoutedAs {
		t.Errorf("message fields did not round trip: %+v", got)
	}
	if len(got.Recipients) != 2 || !got.AddressedTo("usr-ann") {
		t.Errorf("recipients did not round trip: %v", got.Recipients)
	}
	// The embedded payload must be self-contained.
	if got.Payload.DestinationUUID != "wp-dest" || len(got.Payload.SubjectUUIDs) != 1 {
		t.Errorf("payload did not round trip: %+v", got.Payload)
	}
}

func TestMessageRepositoryDeleteFirstWins(t *testing.T) {
	repo := NewSQLiteMessageRepository(setupTestDB(t))
	ctx := context.Background()

	msg := sampleMessage()
	if err := repo.Create(ctx, msg); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.Delete(ctx, msg.ID); err != nil {
		t.Fatalf("first Delete failed: %v", err)
	}
	// Everyone after the first resolver observes "already gone".
	if err := repo.Delete(ctx, msg.ID); !errors.Is(err, ErrMessageGone) {
		t.Errorf("expected ErrMessageGone on second delete, got %v", err)
	}
	if _, err := repo.Message(ctx, msg.ID); !errors.Is(err, ErrMessageGone) {
		t.Errorf("expected ErrMessageGone on lookup, got %v", err)
	}
}

func TestMessageRepositoryPendingFor(t *testing.T) {
	repo := NewSQLiteMessageRepository(setupTestDB(t))
	ctx := context.Background()

	first := sampleMessage()
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	second := sampleMessage()
	second.Recipients = []string{"usr-gm"}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	annPending, err := repo.PendingFor(ctx, "usr-ann")
	if err != nil {
		t.Fatalf("PendingFor failed: %v", err)
	}
	if len(annPending) != 1 || annPending[0].ID != first.ID {
		t.Errorf("expected only the first message for usr-ann, got %d", len(annPending))
	}

	gmPending, err := repo.PendingFor(ctx, "usr-gm")
	if err != nil {
		t.Fatalf("PendingFor failed: %v", err)
	}
	if len(gmPending) != 2 {
		t.Errorf("expected both messages for usr-gm, got %d", len(gmPending))
	}
}
