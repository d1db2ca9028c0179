package approval

import (
	"context"
	"fmt"
	"testing"

	"github.com/waypointworks/liftnet-core/internal/world"
)

// fakeWorld is an in-memory world.Store for workflow tests. The
// embedded nil interface panics on methods a test did not expect.
type fakeWorld struct {
	world.Store
	entities  map[string]*world.Entity
	waypoints map[string]*world.Waypoint
	users     map[string]*world.User
	moved     []string
	failMove  map[string]bool
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		entities:  make(map[string]*world.Entity),
		waypoints: make(map[string]*world.Waypoint),
		users:     make(map[string]*world.User),
		failMove:  make(map[string]bool),
	}
}

func (f *fakeWorld) addUser(id, name string, role world.Role, online bool) {
	f.users[id] = &world.User{ID: id, Name: name, Role: role, Online: online}
}

func (f *fakeWorld) addEntity(uuid, scene string, pos world.Point, owners ...string) {
	f.entities[uuid] = &world.Entity{
		UUID: uuid, Name: uuid, SceneUUID: scene, Pos: pos, Owners: owners,
	}
}

func (f *fakeWorld) addWaypoint(uuid, scene string, bounds world.Rect) {
	f.waypoints[uuid] = &world.Waypoint{
		UUID: uuid, Label: uuid, SceneUUID: scene, Bounds: bounds,
		Attrs: map[string]any{},
	}
}

func (f *fakeWorld) Entity(_ context.Context, uuid string) (*world.Entity, error) {
	e, ok := f.entities[uuid]
	if !ok {
		return nil, world.ErrNotFound
	}
	return e, nil
}

func (f *fakeWorld) Waypoint(_ context.Context, uuid string) (*world.Waypoint, error) {
	w, ok := f.waypoints[uuid]
	if !ok {
		return nil, world.ErrNotFound
	}
	return w, nil
}

func (f *fakeWorld) MoveEntity(_ context.Context, entityUUID string, dest *world.Waypoint) error {
	if f.failMove[entityUUID] {
		return fmt.Errorf("simulated movement failure")
	}
	e, ok := f.entities[entityUUID]
	if !ok {
		return world.ErrNotFound
	}
	e.SceneUUID = dest.SceneUUID
	e.Pos = dest.Bounds.Center()
	f.moved = append(f.moved, entityUUID)
	return nil
}

func (f *fakeWorld) User(_ context.Context, id string) (*world.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, world.ErrNotFound
	}
	return u, nil
}

func (f *fakeWorld) Owners(_ context.Context, entityUUID string) ([]world.User, error) {
	e, ok := f.entities[entityUUID]
	if !ok {
		return nil, world.ErrNotFound
	}
	var owners []world.User
	for _, id := range e.Owners {
		if u, ok := f.users[id]; ok {
			owners = append(owners, *u)
		}
	}
	return owners, nil
}

func (f *fakeWorld) UsersByRole(_ context.Context, role world.Role) ([]world.User, error) {
	var users []world.User
	for _, u := range f.users {
		if u.Role == role {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (f *fakeWorld) EntitiesInWaypoint(_ context.Context, wp *world.Waypoint) ([]world.Entity, error) {
	var inside []world.Entity
	for _, e := range f.entities {
		if wp.Contains(e) {
			inside = append(inside, *e)
		}
	}
	return inside, nil
}

// seededWorld builds the standing cast: one GM, one online player, one
// offline player, and entities with varied ownership.
func seededWorld() *fakeWorld {
	w := newFakeWorld()
	w.addUser("usr-gm", "Greta", world.RoleGM, true)
	w.addUser("usr-ann", "Annika", world.RolePlayer, true)
	w.addUser("usr-bob", "Bob", world.RolePlayer, false)

	w.addEntity("ent-ann", "scene-one", world.Point{X: 10, Y: 10}, "usr-ann")
	w.addEntity("ent-bob", "scene-one", world.Point{X: 12, Y: 12}, "usr-bob")
	w.addEntity("ent-npc", "scene-one", world.Point{X: 14, Y: 14})

	w.addWaypoint("wp-origin", "scene-one", world.Rect{X: 0, Y: 0, Width: 50, Height: 50})
	w.addWaypoint("wp-dest", "scene-one", world.Rect{X: 200, Y: 0, Width: 50, Height: 50})
	return w
}

func containsID(users []world.User, id string) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func TestRouteToOnlineOwner(t *testing.T) {
	w := seededWorld()
	router := NewRouter(w)

	routes, err := router.Plan(context.Background(), []string{"ent-ann"})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(routes))
	}

	route := routes[0]
	if route.RoutedAs != RoutedAsOwner {
		t.Errorf("expected owner routing, got %s", route.RoutedAs)
	}
	if len(route.Recipients) != 1 || !containsID(route.Recipients, "usr-ann") {
		t.Errorf("expected only the online owner, got %+v", route.Recipients)
	}
}

func TestRouteOfflineOwnerFallsToAuthority(t *testing.T) {
	w := seededWorld()
	router := NewRouter(w)

	// ent-bob's only owner is offline; the online GM takes it.
	routes, err := router.Plan(context.Background(), []string{"ent-bob"})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(routes))
	}
	if routes[0].RoutedAs != RoutedAsAuthority {
		t.Errorf("expected authority routing, got %s", routes[0].RoutedAs)
	}
	if !containsID(routes[0].Recipients, "usr-gm") {
		t.Errorf("expected the GM as recipient, got %+v", routes[0].Recipients)
	}
}

func TestRouteQueuesForOfflineAuthority(t *testing.T) {
	w := seededWorld()
	w.users["usr-gm"].Online = false
	router := NewRouter(w)

	routes, err := router.Plan(context.Background(), []string{"ent-npc"})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(routes))
	}
	// Message still addresses the offline GM; durability queues it.
	if !containsID(routes[0].Recipients, "usr-gm") {
		t.Errorf("expected offline GM addressed, got %+v", routes[0].Recipients)
	}
	if routes[0].RoutedAs != RoutedAsAuthority {
		t.Errorf("expected authority routing, got %s", routes[0].RoutedAs)
	}
}

func TestRouteEntitiesIndependently(t *testing.T) {
	w := seededWorld()
	router := NewRouter(w)

	// ent-ann routes to its owner, ent-bob and ent-npc both to the
	// online GM: two routes total, with the GM pair folded together.
	routes, err := router.Plan(context.Background(), []string{"ent-ann", "ent-bob", "ent-npc"})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}

	for _, route := range routes {
		switch route.RoutedAs {
		case RoutedAsOwner:
			if len(route.Subjects) != 1 || route.Subjects[0].UUID != "ent-ann" {
				t.Errorf("owner route has wrong subjects: %+v", route.Subjects)
			}
		case RoutedAsAuthority:
			if len(route.Subjects) != 2 {
				t.Errorf("expected GM route folding 2 entities, got %d", len(route.Subjects))
			}
		}
	}
}

func TestRouteSkipsUnresolvableAndUnroutable(t *testing.T) {
	w := newFakeWorld()
	// An entity whose only owner record is stale and with no authority
	// users anywhere: no recipients, silently skipped.
	w.addEntity("ent-lost", "scene-one", world.Point{}, "usr-gone")
	router := NewRouter(w)

	routes, err := router.Plan(context.Background(), []string{"ent-lost", "ent-missing"})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(routes) != 0 {
		t.Errorf("expected no routes, got %d", len(routes))
	}
}
