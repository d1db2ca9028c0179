package approval

import "errors"

var (
	// ErrMessageGone indicates the approval message was already resolved
	// by another recipient. Callers treat this as a quiet no-op.
	ErrMessageGone = errors.New("approval: message already resolved")

	// ErrMissingDestination indicates the request named no destination,
	// or one that no longer resolves. Surfaced to the user; nothing is
	// mutated.
	ErrMissingDestination = errors.New("approval: destination missing or unresolvable")

	// ErrNothingMoved indicates no entity passed the checks or survived
	// the move. The message stays in place for another attempt.
	ErrNothingMoved = errors.New("approval: no entities were moved")
)
