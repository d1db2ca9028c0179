package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/waypointworks/liftnet-core/internal/infrastructure/logging"
	"github.com/waypointworks/liftnet-core/internal/infrastructure/mqtt"
	"github.com/waypointworks/liftnet-core/internal/level"
	"github.com/waypointworks/liftnet-core/internal/world"
)

// Transport is the slice of the messaging client the courier needs.
// *mqtt.Client satisfies it; tests substitute an in-memory fake.
type Transport interface {
	PublishDefault(topic string, payload []byte) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Courier binds the level-state protocol to the messaging channel.
//
// Every outgoing message is published twice: once on the primary socket
// topic and once on the per-kind legacy topic older clients still
// listen on. Incoming traffic is read from both, which is why every
// envelope passes through the request-ID dedup before dispatch.
//
// The courier's role decides which kinds it acts on. The authority
// services setCurrentLevel and getCurrentLevel requests against the
// persisted store; every client, authority included, applies
// currentLevelChanged broadcasts to its optimistic cache.
type Courier struct {
	transport Transport
	topics    mqtt.Topics
	role      world.Role
	requester string
	store     level.Store
	cache     *level.Cache
	rerender  *level.Coalescer
	dedup     *Dedup
	logger    *logging.Logger

	// onLevelPersisted fires after an authoritative store write, letting
	// the journal observe level changes without the courier knowing it.
	onLevelPersisted func(networkID, stopUUID, requester string)
}

// NewCourier creates a courier for the given role. The requester string
// is this client's display name, attached to outgoing requests so the
// authority and approval messages can show who asked.
func NewCourier(
	transport Transport,
	role world.Role,
	requester string,
	store level.Store,
	cache *level.Cache,
	rerender *level.Coalescer,
	dedup *Dedup,
	logger *logging.Logger,
) *Courier {
	return &Courier{
		transport: transport,
		role:      role,
		requester: requester,
		store:     store,
		cache:     cache,
		rerender:  rerender,
		dedup:     dedup,
		logger:    logger,
	}
}

// RequestSetCurrentLevel records a new current level for a network.
//
// The optimistic cache is written immediately for a responsive local
// UI. If this client is the authority the persisted store is written
// directly and a currentLevelChanged broadcast follows; otherwise a
// setCurrentLevel request is emitted and nothing persistent is touched.
func (c *Courier) RequestSetCurrentLevel(ctx context.Context, networkID, stopUUID string) error {
	c.cache.Set(networkID, stopUUID)
	if c.rerender != nil {
		c.rerender.Request(networkID)
	}

	if !c.role.IsAuthority() {
		return c.Send(NewSetCurrentLevel(networkID, stopUUID, c.requester))
	}

	if err := c.store.Set(ctx, networkID, stopUUID); err != nil {
		return fmt.Errorf("persisting level for %s: %w", networkID, err)
	}
	if c.onLevelPersisted != nil {
		c.onLevelPersisted(networkID, stopUUID, c.requester)
	}
	return c.Send(NewCurrentLevelChanged(networkID, stopUUID))
}

// RequestSyncCurrentLevel asks the authority to re-broadcast a
// network's current level. The authority already holds the persisted
// truth, so for it this is a no-op.
func (c *Courier) RequestSyncCurrentLevel(networkID string) error {
	if c.role.IsAuthority() {
		return nil
	}
	return c.Send(NewGetCurrentLevel(networkID, c.requester))
}

// SetOnLevelPersisted registers a callback invoked after each
// authoritative persisted write. Must be called before Start.
func (c *Courier) SetOnLevelPersisted(fn func(networkID, stopUUID, requester string)) {
	c.onLevelPersisted = fn
}

// Start subscribes to the primary socket topic and the legacy topics.
func (c *Courier) Start() error {
	if err := c.transport.Subscribe(c.topics.Socket(), 1, c.handleMessage); err != nil {
		return fmt.Errorf("subscribing to socket topic: %w", err)
	}
	if err := c.transport.Subscribe(c.topics.AllLegacy(), 1, c.handleMessage); err != nil {
		return fmt.Errorf("subscribing to legacy topics: %w", err)
	}
	return nil
}

// Send publishes the envelope on the primary socket topic and mirrors
// it on the matching legacy topic. Both deliveries carry the same
// request ID, so receivers process the message at most once.
func (c *Courier) Send(env Envelope) error {
	payload, err := env.Encode()
	if err != nil {
		return err
	}

	primaryErr := c.transport.PublishDefault(c.topics.Socket(), payload)
	legacyErr := c.transport.PublishDefault(c.topics.Legacy(string(env.Kind)), payload)
	return errors.Join(primaryErr, legacyErr)
}

// handleMessage is the shared subscription handler for both topics.
func (c *Courier) handleMessage(topic string, payload []byte) error {
	env, err := Decode(payload)
	if err != nil {
		return fmt.Errorf("rejecting message on %s: %w", topic, err)
	}

	if !c.dedup.FirstSeen(env.RequestID) {
		c.logger.Debug("dropping duplicate message",
			"kind", string(env.Kind), "request_id", env.RequestID)
		return nil
	}

	switch env.Kind {
	case KindSetCurrentLevel:
		return c.handleSetCurrentLevel(env)
	case KindGetCurrentLevel:
		return c.handleGetCurrentLevel(env)
	case KindCurrentLevelChanged:
		c.handleCurrentLevelChanged(env)
		return nil
	}
	return nil
}

// handleSetCurrentLevel services a non-authority client's write request.
// Only the authority persists; everyone else ignores the kind entirely.
func (c *Courier) handleSetCurrentLevel(env Envelope) error {
	if !c.role.IsAuthority() {
		return nil
	}

	ctx := context.Background()
	if err := c.store.Set(ctx, env.NetworkID, env.StopUUID); err != nil {
		return fmt.Errorf("persisting level for %s: %w", env.NetworkID, err)
	}
	if c.onLevelPersisted != nil {
		c.onLevelPersisted(env.NetworkID, env.StopUUID, env.Requester)
	}

	if err := c.Send(NewCurrentLevelChanged(env.NetworkID, env.StopUUID)); err != nil {
		return fmt.Errorf("broadcasting level change for %s: %w", env.NetworkID, err)
	}
	return nil
}

// handleGetCurrentLevel answers a sync request by re-broadcasting the
// persisted level. There is no point-to-point reply; the requester
// picks the broadcast up by network ID like everyone else.
func (c *Courier) handleGetCurrentLevel(env Envelope) error {
	if !c.role.IsAuthority() {
		return nil
	}

	ctx := context.Background()
	stopUUID, err := c.store.Current(ctx, env.NetworkID)
	if err != nil {
		if errors.Is(err, level.ErrUnknown) {
			c.logger.Debug("no recorded level to announce", "network_id", env.NetworkID)
			return nil
		}
		return fmt.Errorf("reading level for %s: %w", env.NetworkID, err)
	}

	if err := c.Send(NewCurrentLevelChanged(env.NetworkID, stopUUID)); err != nil {
		return fmt.Errorf("answering level sync for %s: %w", env.NetworkID, err)
	}
	return nil
}

// handleCurrentLevelChanged applies an authoritative broadcast to the
// local optimistic cache. Never a second persisted write; the authority
// already wrote the store before broadcasting.
func (c *Courier) handleCurrentLevelChanged(env Envelope) {
	c.cache.Set(env.NetworkID, env.StopUUID)
	if c.rerender != nil {
		c.rerender.Request(env.NetworkID)
	}
}
