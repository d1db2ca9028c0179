package world

import "strings"

// Role is the privilege level of a connected client, decided once at
// startup from configuration and threaded explicitly through every
// operation that behaves differently for the authority. Code must never
// re-derive it from ambient state mid-operation.
type Role string

const (
	// RoleGM is the authority: the single actor permitted to write
	// persisted shared state (registry, current levels, world documents).
	RoleGM Role = "gm"

	// RolePlayer is a non-authoritative client. Writes are routed
	// through the message bus and the approval workflow.
	RolePlayer Role = "player"
)

// ParseRole converts a configuration string to a Role.
// Unrecognised values default to RolePlayer; running an accidental
// authority is worse than running an accidental player.
func ParseRole(s string) Role {
	if strings.EqualFold(s, string(RoleGM)) {
		return RoleGM
	}
	return RolePlayer
}

// IsAuthority reports whether this role may write persisted shared state.
func (r Role) IsAuthority() bool {
	return r == RoleGM
}

// User is a participant in the shared world.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Online bool   `json:"online"`
}

// Point is a position within a scene.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned bounding box within a scene.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p falls inside the rectangle.
// Edges count as inside; a zero-size rect contains only its own corner.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{
		X: r.X + r.Width/2,
		Y: r.Y + r.Height/2,
	}
}

// Entity is a movable addressable document (a token) identified by a
// stable UUID. Ownership is a set of user IDs with full rights.
type Entity struct {
	UUID      string   `json:"uuid"`
	Name      string   `json:"name"`
	SceneUUID string   `json:"scene_uuid"`
	Pos       Point    `json:"pos"`
	Owners    []string `json:"owners"`
}

// OwnedBy reports whether the given user has ownership rights over the entity.
func (e *Entity) OwnedBy(userID string) bool {
	for _, id := range e.Owners {
		if id == userID {
			return true
		}
	}
	return false
}

// Waypoint is a stationary addressable document (a region) identified by
// a stable UUID. Label is the display name; Attrs is the free-form
// attribute block this module's sync engine merges its derived keys into.
type Waypoint struct {
	UUID      string         `json:"uuid"`
	Label     string         `json:"label"`
	SceneUUID string         `json:"scene_uuid"`
	Bounds    Rect           `json:"bounds"`
	Attrs     map[string]any `json:"attrs"`
}

// Contains reports whether the entity's position is geometrically inside
// the waypoint's bounds. Scene mismatch is never inside.
func (w *Waypoint) Contains(e *Entity) bool {
	return w.SceneUUID == e.SceneUUID && w.Bounds.Contains(e.Pos)
}
