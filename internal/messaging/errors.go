package messaging

import "errors"

var (
	// ErrMalformedMessage indicates a payload that failed to parse or is
	// missing a field its kind requires.
	ErrMalformedMessage = errors.New("messaging: malformed message")

	// ErrUnknownKind indicates a message kind outside the closed set.
	ErrUnknownKind = errors.New("messaging: unknown message kind")
)
