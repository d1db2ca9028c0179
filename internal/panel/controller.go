package panel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/waypointworks/liftnet-core/internal/approval"
	"github.com/waypointworks/liftnet-core/internal/infrastructure/logging"
	"github.com/waypointworks/liftnet-core/internal/network"
	"github.com/waypointworks/liftnet-core/internal/world"
)

// SoundPlayer starts an arrival sound and returns a channel closed when
// playback finishes. Playback is provided by the host; the controller
// only bounds how long it is willing to wait.
type SoundPlayer interface {
	Play(name string) <-chan struct{}
}

// LevelRequester is the courier surface the controller drives.
type LevelRequester interface {
	RequestSetCurrentLevel(ctx context.Context, networkID, stopUUID string) error
	RequestSyncCurrentLevel(networkID string) error
}

// Selection is the result of one panel selection.
type Selection struct {
	// MovedDirectly lists entities the selecting user moved themselves.
	MovedDirectly []string

	// ApprovalsSent is how many approval messages went out for entities
	// the user does not own.
	ApprovalsSent int
}

// Controller orchestrates a level selection end to end: validating the
// destination against the registry, waiting out the travel delay and
// arrival sound, moving what the user owns, and routing everything
// else through the approval workflow.
type Controller struct {
	store    world.Store
	registry network.Repository
	courier  LevelRequester
	workflow *approval.Workflow
	sound    SoundPlayer
	logger   *logging.Logger

	arrivalDelay         time.Duration
	soundFallbackTimeout time.Duration
}

// NewController wires a panel controller. sound may be nil when the
// host provides no playback.
func NewController(
	store world.Store,
	registry network.Repository,
	courier LevelRequester,
	workflow *approval.Workflow,
	sound SoundPlayer,
	arrivalDelay, soundFallbackTimeout time.Duration,
	logger *logging.Logger,
) *Controller {
	return &Controller{
		store:                store,
		registry:             registry,
		courier:              courier,
		workflow:             workflow,
		sound:                sound,
		logger:               logger,
		arrivalDelay:         arrivalDelay,
		soundFallbackTimeout: soundFallbackTimeout,
	}
}

// SelectLevel handles a user picking a destination stop on an open panel.
//
// The destination must belong to the network; a stop outside the
// registry aborts with ErrInvalidDestination before anything mutates.
// Entities the user owns move directly after the arrival delay;
// entities they do not own become teleport requests routed for
// approval. Either way the network's current level is updated through
// the courier, which handles the authority and non-authority write
// paths.
func (c *Controller) SelectLevel(
	ctx context.Context,
	user world.User,
	networkID, stopUUID string,
	selected []string,
	originUUID string,
) (*Selection, error) {
	entry, err := c.registry.Entry(ctx, networkID)
	if err != nil {
		if errors.Is(err, network.ErrNotFound) {
			return nil, ErrInvalidDestination
		}
		return nil, fmt.Errorf("loading network %s: %w", networkID, err)
	}
	if !entry.ContainsStop(stopUUID) {
		return nil, ErrInvalidDestination
	}

	destination, err := c.store.Waypoint(ctx, stopUUID)
	if err != nil {
		if errors.Is(err, world.ErrNotFound) {
			return nil, ErrInvalidDestination
		}
		return nil, fmt.Errorf("resolving destination: %w", err)
	}

	owned, foreign := c.partition(ctx, user, selected)
	if len(owned) == 0 && len(foreign) == 0 {
		return nil, ErrNothingSelected
	}

	if err := c.awaitArrival(ctx); err != nil {
		return nil, err
	}

	result := &Selection{}
	for _, entityUUID := range owned {
		if err := c.store.MoveEntity(ctx, entityUUID, destination); err != nil {
			c.logger.Warn("failed to move selected entity",
				"entity_uuid", entityUUID, "error", err)
			continue
		}
		result.MovedDirectly = append(result.MovedDirectly, entityUUID)
	}

	if len(result.MovedDirectly) > 0 {
		if err := c.courier.RequestSetCurrentLevel(ctx, networkID, stopUUID); err != nil {
			c.logger.Warn("failed to update current level",
				"network_id", networkID, "error", err)
		}
	}

	if len(foreign) > 0 {
		req := approval.TeleportRequest{
			RequestID:        uuid.NewString(),
			RequesterID:      user.ID,
			RequesterName:    user.Name,
			NetworkID:        networkID,
			DestinationUUID:  stopUUID,
			DestinationLabel: destination.Label,
			SubjectUUIDs:     foreign,
			OriginUUID:       originUUID,
		}
		sent, err := c.workflow.Submit(ctx, req)
		if err != nil {
			return result, fmt.Errorf("routing approval request: %w", err)
		}
		result.ApprovalsSent = sent
	}

	return result, nil
}

// RequestApproval raises a teleport request without moving anything
// locally. Used when the user has nothing of their own selected, or for
// the privacy case where they cannot enumerate the occupants at all
// (empty subjects).
func (c *Controller) RequestApproval(
	ctx context.Context,
	user world.User,
	networkID, stopUUID string,
	subjects []string,
	originUUID string,
) (int, error) {
	destination, err := c.store.Waypoint(ctx, stopUUID)
	if err != nil {
		if errors.Is(err, world.ErrNotFound) {
			return 0, ErrInvalidDestination
		}
		return 0, fmt.Errorf("resolving destination: %w", err)
	}

	return c.workflow.Submit(ctx, approval.TeleportRequest{
		RequestID:        uuid.NewString(),
		RequesterID:      user.ID,
		RequesterName:    user.Name,
		NetworkID:        networkID,
		DestinationUUID:  stopUUID,
		DestinationLabel: destination.Label,
		SubjectUUIDs:     subjects,
		OriginUUID:       originUUID,
	})
}

// SyncOnReconnect refreshes this client's view of every registered
// network after a connection drop.
func (c *Controller) SyncOnReconnect(ctx context.Context) error {
	entries, err := c.registry.List(ctx)
	if err != nil {
		return fmt.Errorf("listing networks: %w", err)
	}
	for _, entry := range entries {
		if err := c.courier.RequestSyncCurrentLevel(entry.NetworkID); err != nil {
			c.logger.Warn("failed to request level sync",
				"network_id", entry.NetworkID, "error", err)
		}
	}
	return nil
}

// partition splits the selection into entities the user may move
// directly and entities needing approval. The authority owns
// everything by definition; unresolvable selections are dropped.
func (c *Controller) partition(ctx context.Context, user world.User, selected []string) (owned, foreign []string) {
	for _, entityUUID := range selected {
		entity, err := c.store.Entity(ctx, entityUUID)
		if err != nil {
			if !errors.Is(err, world.ErrNotFound) {
				c.logger.Warn("failed to resolve selected entity",
					"entity_uuid", entityUUID, "error", err)
			}
			continue
		}
		if user.Role.IsAuthority() || entity.OwnedBy(user.ID) {
			owned = append(owned, entityUUID)
		} else {
			foreign = append(foreign, entityUUID)
		}
	}
	return owned, foreign
}

// awaitArrival waits out the fixed travel delay, then the arrival
// sound. The sound wait is bounded by the fallback timeout so a stuck
// or failed playback can never stall the selection.
func (c *Controller) awaitArrival(ctx context.Context) error {
	if c.arrivalDelay > 0 {
		select {
		case <-time.After(c.arrivalDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if c.sound == nil {
		return nil
	}
	select {
	case <-c.sound.Play("elevator-arrival"):
	case <-time.After(c.soundFallbackTimeout):
		c.logger.Debug("arrival sound did not finish in time, continuing")
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
