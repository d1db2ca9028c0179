package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/waypointworks/liftnet-core/internal/infrastructure/logging"
	"github.com/waypointworks/liftnet-core/internal/world"
)

// Notifier delivers a short private message to one user.
type Notifier interface {
	Notify(ctx context.Context, userID, text string) error
}

// LevelSetter records a network's new current level after an approved
// move. *messaging.Courier satisfies it.
type LevelSetter interface {
	RequestSetCurrentLevel(ctx context.Context, networkID, stopUUID string) error
}

// Outcome summarizes one approval execution.
type Outcome struct {
	// Moved lists entity UUIDs that reached the destination.
	Moved []string

	// Skipped lists entities excluded by ownership checks or that no
	// longer resolve.
	Skipped []string
}

// Workflow owns the approval life cycle: routing a teleport request
// into durable messages, and executing approve or deny actions on them.
type Workflow struct {
	store    world.Store
	router   *Router
	messages MessageRepository
	levels   LevelSetter
	notifier Notifier
	logger   *logging.Logger

	onRequested func(networkID, requesterID string, messages int)
	onResolved  func(networkID, userID string, approved bool, moved int)
}

// NewWorkflow wires the approval workflow.
func NewWorkflow(
	store world.Store,
	messages MessageRepository,
	levels LevelSetter,
	notifier Notifier,
	logger *logging.Logger,
) *Workflow {
	return &Workflow{
		store:    store,
		router:   NewRouter(store),
		messages: messages,
		levels:   levels,
		notifier: notifier,
		logger:   logger,
	}
}

// SetOnRequested registers a callback invoked after Submit creates at
// least one approval message. Must be set before the workflow is used.
func (w *Workflow) SetOnRequested(fn func(networkID, requesterID string, messages int)) {
	w.onRequested = fn
}

// SetOnResolved registers a callback invoked after a message is
// resolved by approval or denial. Must be set before the workflow is
// used.
func (w *Workflow) SetOnResolved(fn func(networkID, userID string, approved bool, moved int)) {
	w.onResolved = fn
}

// Submit routes a teleport request into durable approval messages, one
// per distinct recipient set, and pings each recipient. Returns how
// many messages were created.
//
// The destination must resolve before anything is written; a stale or
// missing destination aborts with ErrMissingDestination and no side
// effects.
func (w *Workflow) Submit(ctx context.Context, req TeleportRequest) (int, error) {
	if req.DestinationUUID == "" {
		return 0, ErrMissingDestination
	}
	if _, err := w.store.Waypoint(ctx, req.DestinationUUID); err != nil {
		if errors.Is(err, world.ErrNotFound) {
			return 0, ErrMissingDestination
		}
		return 0, fmt.Errorf("resolving destination: %w", err)
	}

	routes, err := w.planRoutes(ctx, req)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, route := range routes {
		msg := buildMessage(req, route)
		if err := w.messages.Create(ctx, msg); err != nil {
			return created, fmt.Errorf("creating approval message: %w", err)
		}
		created++

		for _, recipient := range route.Recipients {
			if err := w.notifier.Notify(ctx, recipient.ID, msg.Prompt); err != nil {
				w.logger.Warn("failed to notify approval recipient",
					"user_id", recipient.ID, "message_id", msg.ID, "error", err)
			}
		}
	}

	if created > 0 && w.onRequested != nil {
		w.onRequested(req.NetworkID, req.RequesterID, created)
	}
	return created, nil
}

// planRoutes handles the privacy case: a request without enumerable
// subjects routes straight to the authority, since ownership cannot be
// evaluated for entities the initiator could not see.
func (w *Workflow) planRoutes(ctx context.Context, req TeleportRequest) ([]Route, error) {
	if len(req.SubjectUUIDs) > 0 {
		return w.router.Plan(ctx, req.SubjectUUIDs)
	}

	authorities, err := w.store.UsersByRole(ctx, world.RoleGM)
	if err != nil {
		return nil, fmt.Errorf("querying authority users: %w", err)
	}
	var online []world.User
	for _, u := range authorities {
		if u.Online {
			online = append(online, u)
		}
	}
	recipients := online
	if len(recipients) == 0 {
		recipients = authorities
	}
	if len(recipients) == 0 {
		return nil, nil
	}
	return []Route{{Recipients: recipients, RoutedAs: RoutedAsAuthority}}, nil
}

// buildMessage renders one route into a durable message.
func buildMessage(req TeleportRequest, route Route) *Message {
	var names []string
	for _, subject := range route.Subjects {
		names = append(names, subject.Name)
	}
	subjectLabel := strings.Join(names, ", ")

	subject := subjectLabel
	if subject == "" {
		subject = "the occupants"
	}
	prompt := fmt.Sprintf("%s requests moving %s to %s",
		req.RequesterName, subject, req.DestinationLabel)

	recipients := make([]string, len(route.Recipients))
	for i, u := range route.Recipients {
		recipients[i] = u.ID
	}

	payload := req
	if len(route.Subjects) > 0 {
		// Scope the embedded payload to this route's own subjects so an
		// owner's approval never covers another route's entities.
		payload.SubjectUUIDs = make([]string, len(route.Subjects))
		for i, s := range route.Subjects {
			payload.SubjectUUIDs[i] = s.UUID
		}
	}

	return &Message{
		Recipients:       recipients,
		RoutedAs:         route.RoutedAs,
		Prompt:           prompt,
		SubjectLabel:     subjectLabel,
		DestinationLabel: req.DestinationLabel,
		RequesterName:    req.RequesterName,
		Payload:          payload,
	}
}

// Approve executes an approval message on behalf of the clicking user.
//
// Candidates come from the embedded payload, or from re-scanning the
// origin waypoint when the payload carries none. Non-authority
// approvers only ever move entities they themselves own, regardless of
// what the message covers. Movement failures are per-entity; siblings
// continue.
//
// If nothing moved the message stays in place and ErrNothingMoved is
// returned. Otherwise the network's current level is updated and the
// requester notified, both best-effort, and the message is deleted.
// A message already resolved elsewhere yields ErrMessageGone.
func (w *Workflow) Approve(ctx context.Context, approver world.User, messageID string) (*Outcome, error) {
	msg, err := w.messages.Message(ctx, messageID)
	if err != nil {
		return nil, err
	}
	req := msg.Payload

	destination, err := w.store.Waypoint(ctx, req.DestinationUUID)
	if err != nil {
		if errors.Is(err, world.ErrNotFound) {
			return nil, ErrMissingDestination
		}
		return nil, fmt.Errorf("resolving destination: %w", err)
	}

	candidates, err := w.candidateSubjects(ctx, req)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{}
	for _, entityUUID := range candidates {
		entity, err := w.store.Entity(ctx, entityUUID)
		if err != nil {
			if errors.Is(err, world.ErrNotFound) {
				outcome.Skipped = append(outcome.Skipped, entityUUID)
				continue
			}
			return nil, fmt.Errorf("resolving subject %s: %w", entityUUID, err)
		}

		// Defense in depth: an owner's click moves only their own
		// entities even when the message covers several.
		if !approver.Role.IsAuthority() && !entity.OwnedBy(approver.ID) {
			outcome.Skipped = append(outcome.Skipped, entityUUID)
			continue
		}

		if err := w.store.MoveEntity(ctx, entityUUID, destination); err != nil {
			w.logger.Warn("failed to move approved entity",
				"entity_uuid", entityUUID,
				"destination_uuid", destination.UUID,
				"error", err)
			outcome.Skipped = append(outcome.Skipped, entityUUID)
			continue
		}
		outcome.Moved = append(outcome.Moved, entityUUID)
	}

	if len(outcome.Moved) == 0 {
		// Nothing consumed; the message stays for another attempt.
		return outcome, ErrNothingMoved
	}

	if err := w.levels.RequestSetCurrentLevel(ctx, req.NetworkID, req.DestinationUUID); err != nil {
		w.logger.Warn("failed to update level after approval",
			"network_id", req.NetworkID, "error", err)
	}

	confirmation := fmt.Sprintf("Your request to move to %s was approved", req.DestinationLabel)
	if err := w.notifier.Notify(ctx, req.RequesterID, confirmation); err != nil {
		w.logger.Warn("failed to notify requester",
			"user_id", req.RequesterID, "error", err)
	}

	if err := w.messages.Delete(ctx, messageID); err != nil && !errors.Is(err, ErrMessageGone) {
		w.logger.Warn("failed to delete resolved approval message",
			"message_id", messageID, "error", err)
	}

	if w.onResolved != nil {
		w.onResolved(req.NetworkID, approver.ID, true, len(outcome.Moved))
	}
	return outcome, nil
}

// Deny resolves a message without moving anything. Denying a message
// that was already resolved yields ErrMessageGone, which callers treat
// as a quiet no-op.
func (w *Workflow) Deny(ctx context.Context, denier world.User, messageID string) error {
	msg, err := w.messages.Message(ctx, messageID)
	if err != nil {
		return err
	}
	if err := w.messages.Delete(ctx, messageID); err != nil {
		return err
	}

	if w.onResolved != nil {
		w.onResolved(msg.Payload.NetworkID, denier.ID, false, 0)
	}
	return nil
}

// candidateSubjects returns the payload's subject list, or re-derives
// it from the origin waypoint when the initiator could not enumerate
// entities they do not own. Entities owned by the requester are
// excluded from the re-derived set; the requester never needed approval
// to move their own.
func (w *Workflow) candidateSubjects(ctx context.Context, req TeleportRequest) ([]string, error) {
	if len(req.SubjectUUIDs) > 0 {
		return req.SubjectUUIDs, nil
	}
	if req.OriginUUID == "" {
		return nil, nil
	}

	origin, err := w.store.Waypoint(ctx, req.OriginUUID)
	if err != nil {
		if errors.Is(err, world.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolving origin: %w", err)
	}

	entities, err := w.store.EntitiesInWaypoint(ctx, origin)
	if err != nil {
		return nil, fmt.Errorf("scanning origin waypoint: %w", err)
	}

	var candidates []string
	for _, entity := range entities {
		if entity.OwnedBy(req.RequesterID) {
			continue
		}
		candidates = append(candidates, entity.UUID)
	}
	return candidates, nil
}
