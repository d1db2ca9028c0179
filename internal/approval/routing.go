package approval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/waypointworks/liftnet-core/internal/world"
)

// RoutedAs labels which rule produced a recipient set.
type RoutedAs string

const (
	// RoutedAsOwner means online non-authority owners received the message.
	RoutedAsOwner RoutedAs = "owner"

	// RoutedAsAuthority means authority users received the message,
	// either because they were online or as a queue-for-return fallback.
	RoutedAsAuthority RoutedAs = "authority"
)

// Route is one message-to-be: a recipient set, how it was derived, and
// the subject entities that routed to it. Entities whose recipient sets
// match are folded into a single route so recipients get one message,
// not one per entity.
type Route struct {
	Recipients []world.User
	RoutedAs   RoutedAs
	Subjects   []world.Entity
}

// Router decides who must approve the movement of each subject entity.
type Router struct {
	store world.Store
}

// NewRouter creates a router over the given world store.
func NewRouter(store world.Store) *Router {
	return &Router{store: store}
}

// Plan routes every subject entity independently and folds entities
// with identical recipient sets into shared routes.
//
// Per entity: online non-authority owners win; otherwise online
// authority users; otherwise all authority users, relying on the
// message's durability to queue for their return. An entity with no
// recipients at all is silently dropped.
func (r *Router) Plan(ctx context.Context, subjectUUIDs []string) ([]Route, error) {
	routes := make(map[string]*Route)
	var order []string

	for _, entityUUID := range subjectUUIDs {
		entity, err := r.store.Entity(ctx, entityUUID)
		if err != nil {
			if errors.Is(err, world.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolving subject %s: %w", entityUUID, err)
		}

		recipients, routedAs, err := r.routeEntity(ctx, entity)
		if err != nil {
			return nil, err
		}
		if len(recipients) == 0 {
			continue
		}

		key := routeKey(recipients)
		route, ok := routes[key]
		if !ok {
			route = &Route{Recipients: recipients, RoutedAs: routedAs}
			routes[key] = route
			order = append(order, key)
		}
		route.Subjects = append(route.Subjects, *entity)
	}

	planned := make([]Route, 0, len(order))
	for _, key := range order {
		planned = append(planned, *routes[key])
	}
	return planned, nil
}

// routeEntity applies the three-step routing rule for one entity.
func (r *Router) routeEntity(ctx context.Context, entity *world.Entity) ([]world.User, RoutedAs, error) {
	owners, err := r.store.Owners(ctx, entity.UUID)
	if err != nil {
		return nil, "", fmt.Errorf("querying owners of %s: %w", entity.UUID, err)
	}

	var onlineOwners []world.User
	for _, owner := range owners {
		if owner.Online && !owner.Role.IsAuthority() {
			onlineOwners = append(onlineOwners, owner)
		}
	}
	if len(onlineOwners) > 0 {
		return onlineOwners, RoutedAsOwner, nil
	}

	authorities, err := r.store.UsersByRole(ctx, world.RoleGM)
	if err != nil {
		return nil, "", fmt.Errorf("querying authority users: %w", err)
	}

	var online []world.User
	for _, user := range authorities {
		if user.Online {
			online = append(online, user)
		}
	}
	if len(online) > 0 {
		return online, RoutedAsAuthority, nil
	}

	// Nobody online: address all authority users and let the durable
	// message wait for their return.
	return authorities, RoutedAsAuthority, nil
}

// routeKey canonicalizes a recipient set so identical sets fold together.
func routeKey(recipients []world.User) string {
	ids := make([]string, len(recipients))
	for i, u := range recipients {
		ids[i] = u.ID
	}
	sort.Strings(ids)
	return strings.Join(ids, "\x00")
}
