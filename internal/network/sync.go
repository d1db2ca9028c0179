package network

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/waypointworks/liftnet-core/internal/infrastructure/logging"
	"github.com/waypointworks/liftnet-core/internal/world"
)

// Attribute keys the sync engine owns on each member waypoint. Keys
// outside this set are preserved untouched during a merge.
const (
	attrEnabled       = "enabled"
	attrNetworkID     = "networkId"
	attrLevels        = "levels"
	attrReturn        = "return"
	attrElevatorHere  = "isElevatorHere"
	attrIcon          = "icon"
	attrIconSize      = "iconSize"
	attrAlwaysVisible = "alwaysVisible"
	attrTheme         = "theme"

	// attrTeleportTarget is a pre-existing single-destination affordance
	// on the waypoint. Sync does not create it, only constrains it.
	attrTeleportTarget = "teleportTarget"
)

// Engine rewrites every member stop of a network so the network is
// self-consistent: display names encode floor numbers, sibling lists
// are symmetric, and the return pointer leads home.
//
// Sync is safe to re-run: on an already-consistent network it produces
// no writes beyond a self-healing prune of stale stop references.
type Engine struct {
	registry Repository
	store    world.Store
	logger   *logging.Logger
}

// NewEngine creates a sync engine over the given registry and world store.
func NewEngine(registry Repository, store world.Store, logger *logging.Logger) *Engine {
	return &Engine{
		registry: registry,
		store:    store,
		logger:   logger,
	}
}

// resolvedStop pairs a normalized stop with its live waypoint document.
type resolvedStop struct {
	stop Stop
	wp   *world.Waypoint
}

// Sync brings every member stop of a network into a consistent state
// using the registry's stored home stop.
//
// Only the authority may sync; non-authority callers and unknown or
// empty network IDs are silent no-ops. Per-stop failures are logged and
// do not stop the remaining stops from being synced.
func (e *Engine) Sync(ctx context.Context, role world.Role, networkID string) error {
	return e.SyncWithHome(ctx, role, networkID, "")
}

// SyncWithHome is Sync with an explicit home stop override. An empty
// homeUUID falls back to the registry's stored home, then to the first
// resolved stop.
func (e *Engine) SyncWithHome(ctx context.Context, role world.Role, networkID, homeUUID string) error {
	if !role.IsAuthority() {
		return nil
	}
	if networkID == "" {
		return nil
	}

	entry, err := e.registry.Entry(ctx, networkID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.logger.Debug("sync skipped, network unknown", "network_id", networkID)
			return nil
		}
		return fmt.Errorf("loading network %s: %w", networkID, err)
	}

	entry = entry.Normalized()

	resolved := e.resolveStops(ctx, entry)
	if len(resolved) == 0 {
		e.logger.Warn("sync aborted, no stop resolves", "network_id", networkID)
		return nil
	}

	// Self-healing: drop stale stop references from the registry so they
	// stop appearing in derived sibling lists.
	if len(resolved) < len(entry.Stops) {
		pruned := make([]Stop, 0, len(resolved))
		for _, rs := range resolved {
			pruned = append(pruned, rs.stop)
		}
		entry.Stops = pruned
		if err := e.registry.SaveEntry(ctx, entry); err != nil {
			e.logger.Error("failed to persist pruned stop list",
				"network_id", networkID, "error", err)
		} else {
			e.logger.Info("pruned stale stops from network",
				"network_id", networkID, "remaining", len(pruned))
		}
	}

	home := e.resolveHome(entry, resolved, homeUUID)

	for i, rs := range resolved {
		if err := e.syncStop(ctx, entry, resolved, i, home); err != nil {
			e.logger.Error("failed to sync stop",
				"network_id", networkID,
				"stop_uuid", rs.stop.UUID,
				"error", err)
		}
	}

	return nil
}

// resolveStops maps each normalized stop to its live waypoint, dropping
// stops whose UUID no longer resolves.
func (e *Engine) resolveStops(ctx context.Context, entry *Entry) []resolvedStop {
	resolved := make([]resolvedStop, 0, len(entry.Stops))
	for _, stop := range entry.Stops {
		wp, err := e.store.Waypoint(ctx, stop.UUID)
		if err != nil {
			if errors.Is(err, world.ErrNotFound) {
				e.logger.Debug("dropping unresolvable stop",
					"network_id", entry.NetworkID, "stop_uuid", stop.UUID)
				continue
			}
			e.logger.Error("failed to resolve stop",
				"network_id", entry.NetworkID, "stop_uuid", stop.UUID, "error", err)
			continue
		}
		resolved = append(resolved, resolvedStop{stop: stop, wp: wp})
	}
	return resolved
}

// resolveHome picks the home stop: explicit override, else the
// registry's stored home, else the first resolved stop.
func (e *Engine) resolveHome(entry *Entry, resolved []resolvedStop, override string) Stop {
	for _, candidate := range []string{override, entry.HomeUUID} {
		if candidate == "" {
			continue
		}
		for _, rs := range resolved {
			if rs.stop.UUID == candidate {
				return rs.stop
			}
		}
	}
	return resolved[0].stop
}

// syncStop computes and persists the derived attributes for one member
// stop. Writes are skipped when the waypoint already matches.
func (e *Engine) syncStop(ctx context.Context, entry *Entry, resolved []resolvedStop, index int, home Stop) error {
	rs := resolved[index]
	floor := len(resolved) - index
	desiredName := fmt.Sprintf("%s %02d %s", entry.NetworkID, floor, rs.stop.Label)

	attrs := make(map[string]any, len(rs.wp.Attrs)+8)
	for k, v := range rs.wp.Attrs {
		attrs[k] = v
	}

	attrs[attrEnabled] = true
	attrs[attrNetworkID] = entry.NetworkID
	attrs[attrLevels] = siblingList(resolved, index)

	isHome := rs.stop.UUID == home.UUID
	// Home always carries the here-marker; manual per-stop overrides do
	// not survive a sync.
	attrs[attrElevatorHere] = isHome
	if isHome {
		delete(attrs, attrReturn)
	} else {
		attrs[attrReturn] = map[string]any{
			"uuid":  home.UUID,
			"label": home.Label,
		}
	}

	applySharedAttrs(attrs, entry)
	constrainTeleportTarget(attrs, entry, resolved, home, e.logger)

	if rs.wp.Label == desiredName && reflect.DeepEqual(rs.wp.Attrs, attrs) {
		return nil
	}

	updated := *rs.wp
	updated.Label = desiredName
	updated.Attrs = attrs
	return e.store.UpdateWaypoint(ctx, &updated)
}

// siblingList builds the "levels" attribute: every resolved stop except
// the one at index, in floor order. Values use JSON-native types so a
// round trip through storage compares equal.
func siblingList(resolved []resolvedStop, index int) []any {
	levels := make([]any, 0, len(resolved)-1)
	for i, rs := range resolved {
		if i == index {
			continue
		}
		levels = append(levels, map[string]any{
			"uuid":  rs.stop.UUID,
			"label": rs.stop.Label,
		})
	}
	return levels
}

// applySharedAttrs copies the entry's network-wide presentation
// attributes onto the stop. Unset entry fields clear the attribute so a
// removed icon does not linger on members.
func applySharedAttrs(attrs map[string]any, entry *Entry) {
	setOrClear(attrs, attrIcon, entry.Icon, entry.Icon != "")
	setOrClear(attrs, attrIconSize, entry.IconSize, entry.IconSize != 0)
	setOrClear(attrs, attrTheme, entry.Theme, entry.Theme != "")
	attrs[attrAlwaysVisible] = entry.AlwaysVisible
}

func setOrClear(attrs map[string]any, key string, value any, present bool) {
	if present {
		attrs[key] = value
		return
	}
	delete(attrs, key)
}

// constrainTeleportTarget keeps a pre-existing single-destination
// teleport affordance pointed inside the network, falling back to home.
// Best effort: a malformed value is logged and left alone.
func constrainTeleportTarget(attrs map[string]any, entry *Entry, resolved []resolvedStop, home Stop, logger *logging.Logger) {
	raw, ok := attrs[attrTeleportTarget]
	if !ok {
		return
	}
	target, ok := raw.(string)
	if !ok {
		logger.Warn("teleport target has unexpected shape, leaving untouched",
			"network_id", entry.NetworkID)
		return
	}
	for _, rs := range resolved {
		if rs.stop.UUID == target {
			return
		}
	}
	attrs[attrTeleportTarget] = home.UUID
}
