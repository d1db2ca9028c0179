// Package world models the host's addressable documents at the boundary
// the elevator module consumes them: entities (tokens) that can be moved,
// waypoints (regions) with geometry and a mergeable attribute block, and
// users with roles, ownership, and presence.
//
// Everything beyond this boundary - rendering, hit testing, scene
// management - belongs to the host and is out of scope. The module only
// needs five primitives: resolve a UUID, move an entity to a waypoint,
// query ownership, query presence, and test geometric containment.
//
// The Store interface captures those primitives; SQLiteStore implements
// them against the world tables. Tests substitute in-memory fakes.
package world
