package world

import "errors"

// Domain errors for the world package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, world.ErrNotFound) {
//	    // stale UUID; prune it
//	}
var (
	// ErrNotFound is returned when a UUID no longer resolves to a live document.
	ErrNotFound = errors.New("world: document not found")
)
