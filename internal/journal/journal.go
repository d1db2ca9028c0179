package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/waypointworks/liftnet-core/internal/infrastructure/logging"
)

// Actions recorded in the journal.
const (
	ActionLevelChanged     = "level_changed"
	ActionNetworkSynced    = "network_synced"
	ActionApprovalRequest  = "approval_requested"
	ActionApprovalApproved = "approval_approved"
	ActionApprovalDenied   = "approval_denied"
)

// Event is one journal entry. NetworkID, StopUUID and UserID are
// optional depending on the action; Details carries anything else.
type Event struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	NetworkID string         `json:"networkId,omitempty"`
	StopUUID  string         `json:"stopUuid,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Mirror receives a copy of selected events for time-series analysis.
// *influxdb.Client satisfies it.
type Mirror interface {
	WriteLevelChange(networkID, stopUUID string, floor int)
	WriteApprovalOutcome(networkID, outcome string, movedCount int)
}

// Journal records what happened to networks and approvals. Every event
// lands in the repository; level and approval events are additionally
// mirrored to the time-series backend when one is configured.
//
// Recording never fails the operation that triggered it: persistence
// errors are logged and swallowed.
type Journal struct {
	repo   Repository
	mirror Mirror
	logger *logging.Logger
}

// New creates a journal. mirror may be nil when time-series export is
// disabled.
func New(repo Repository, mirror Mirror, logger *logging.Logger) *Journal {
	return &Journal{repo: repo, mirror: mirror, logger: logger}
}

// LevelChanged records an authoritative current-level write. Floor is
// the stop's position in the network's numbering; callers that cannot
// resolve it pass 0.
func (j *Journal) LevelChanged(ctx context.Context, networkID, stopUUID string, floor int, requesterName string) {
	j.record(ctx, &Event{
		Action:    ActionLevelChanged,
		NetworkID: networkID,
		StopUUID:  stopUUID,
		Details:   map[string]any{"requester": requesterName, "floor": floor},
	})
	if j.mirror != nil {
		j.mirror.WriteLevelChange(networkID, stopUUID, floor)
	}
}

// NetworkSynced records a sync engine run over a network.
func (j *Journal) NetworkSynced(ctx context.Context, networkID string, stops int) {
	j.record(ctx, &Event{
		Action:    ActionNetworkSynced,
		NetworkID: networkID,
		Details:   map[string]any{"stops": stops},
	})
}

// ApprovalRequested records a teleport request entering the workflow.
func (j *Journal) ApprovalRequested(ctx context.Context, networkID, requesterID string, messages int) {
	j.record(ctx, &Event{
		Action:    ActionApprovalRequest,
		NetworkID: networkID,
		UserID:    requesterID,
		Details:   map[string]any{"messages": messages},
	})
}

// ApprovalResolved records an approve or deny action on a message.
func (j *Journal) ApprovalResolved(ctx context.Context, networkID, userID string, approved bool, moved int) {
	action := ActionApprovalDenied
	outcome := "denied"
	if approved {
		action = ActionApprovalApproved
		outcome = "approved"
	}
	j.record(ctx, &Event{
		Action:    action,
		NetworkID: networkID,
		UserID:    userID,
		Details:   map[string]any{"moved": moved},
	})
	if j.mirror != nil {
		j.mirror.WriteApprovalOutcome(networkID, outcome, moved)
	}
}

// record assigns identity and persists, logging instead of failing.
func (j *Journal) record(ctx context.Context, event *Event) {
	event.ID = "evt-" + uuid.NewString()
	event.CreatedAt = time.Now().UTC()

	if err := j.repo.Record(ctx, event); err != nil {
		j.logger.Error("failed to record journal event",
			"action", event.Action, "network_id", event.NetworkID, "error", err)
	}
}
