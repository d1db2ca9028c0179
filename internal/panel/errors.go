package panel

import "errors"

var (
	// ErrInvalidDestination indicates the selected stop is missing or
	// not part of the network. Surfaced to the user; nothing mutates.
	ErrInvalidDestination = errors.New("panel: destination missing or not in network")

	// ErrNothingSelected indicates the selection resolved to no movable
	// entities.
	ErrNothingSelected = errors.New("panel: nothing selected to move")
)
