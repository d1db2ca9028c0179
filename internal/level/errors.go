package level

import "errors"

// ErrUnknown indicates no current level has ever been recorded for the
// network. This is the initial state, not a fault.
var ErrUnknown = errors.New("level: current level unknown")
