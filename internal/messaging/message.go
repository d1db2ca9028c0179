package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Kind identifies one of the closed set of socket message shapes.
// Unknown kinds are rejected at decode time, never dispatched.
type Kind string

const (
	// KindSetCurrentLevel asks the authority to record a new current
	// level. Emitted by non-authority clients in place of a direct write.
	KindSetCurrentLevel Kind = "setCurrentLevel"

	// KindGetCurrentLevel asks the authority to re-broadcast the current
	// level, typically after a reconnect.
	KindGetCurrentLevel Kind = "getCurrentLevel"

	// KindCurrentLevelChanged announces the authoritative current level.
	// Recipients filter by network ID client-side; the channel has no
	// point-to-point delivery.
	KindCurrentLevelChanged Kind = "currentLevelChanged"
)

// Envelope is the wire shape shared by all socket messages. Fields not
// used by a kind are omitted from the encoding.
type Envelope struct {
	Kind      Kind   `json:"kind"`
	RequestID string `json:"requestId"`
	NetworkID string `json:"networkId"`
	StopUUID  string `json:"uuid,omitempty"`
	Requester string `json:"requester,omitempty"`
}

// NewSetCurrentLevel builds a setCurrentLevel request with a fresh request ID.
func NewSetCurrentLevel(networkID, stopUUID, requester string) Envelope {
	return Envelope{
		Kind:      KindSetCurrentLevel,
		RequestID: uuid.NewString(),
		NetworkID: networkID,
		StopUUID:  stopUUID,
		Requester: requester,
	}
}

// NewGetCurrentLevel builds a getCurrentLevel request with a fresh request ID.
func NewGetCurrentLevel(networkID, requester string) Envelope {
	return Envelope{
		Kind:      KindGetCurrentLevel,
		RequestID: uuid.NewString(),
		NetworkID: networkID,
		Requester: requester,
	}
}

// NewCurrentLevelChanged builds a currentLevelChanged broadcast with a
// fresh request ID.
func NewCurrentLevelChanged(networkID, stopUUID string) Envelope {
	return Envelope{
		Kind:      KindCurrentLevelChanged,
		RequestID: uuid.NewString(),
		NetworkID: networkID,
		StopUUID:  stopUUID,
	}
}

// Validate checks the envelope carries every field its kind requires.
func (e Envelope) Validate() error {
	if e.RequestID == "" {
		return fmt.Errorf("%w: missing requestId", ErrMalformedMessage)
	}
	if e.NetworkID == "" {
		return fmt.Errorf("%w: missing networkId", ErrMalformedMessage)
	}

	switch e.Kind {
	case KindSetCurrentLevel:
		if e.StopUUID == "" {
			return fmt.Errorf("%w: setCurrentLevel missing uuid", ErrMalformedMessage)
		}
		if e.Requester == "" {
			return fmt.Errorf("%w: setCurrentLevel missing requester", ErrMalformedMessage)
		}
	case KindGetCurrentLevel:
		if e.Requester == "" {
			return fmt.Errorf("%w: getCurrentLevel missing requester", ErrMalformedMessage)
		}
	case KindCurrentLevelChanged:
		if e.StopUUID == "" {
			return fmt.Errorf("%w: currentLevelChanged missing uuid", ErrMalformedMessage)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	return nil
}

// Encode serializes the envelope for the wire.
func (e Envelope) Encode() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// Decode parses and validates a wire payload. Unknown kinds and
// missing required fields are rejected here so handlers only ever see
// well-formed envelopes.
func Decode(payload []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(payload, &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := e.Validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}
