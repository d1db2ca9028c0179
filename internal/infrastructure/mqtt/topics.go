package mqtt

import "fmt"

// Topic prefixes for the shared-world message bus.
//
// All liftnet traffic lives under a single root so one wildcard
// subscription can observe the whole module.
const (
	// TopicRoot is the base for all liftnet topics.
	TopicRoot = "liftnet"

	// TopicPrefixLegacy is the base for the backward-compatible
	// per-event channels. Older module versions subscribe to these
	// instead of the socket topic, so every logical message is emitted
	// on both; receivers de-duplicate by request ID.
	TopicPrefixLegacy = "liftnet/legacy"

	// TopicPrefixUser is the base for per-user direct notifications.
	TopicPrefixUser = "liftnet/user"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "liftnet/system"
)

// Topics provides builders for liftnet MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	socket := topics.Socket()
//	// Returns: "liftnet/socket"
type Topics struct{}

// Socket returns the primary module channel carrying all level-state
// messages as tagged envelopes.
//
// Example: liftnet/socket
func (Topics) Socket() string {
	return fmt.Sprintf("%s/socket", TopicRoot)
}

// Legacy returns the backward-compatible channel for one message kind.
// The kind string matches the envelope tag (e.g. "setCurrentLevel").
//
// Example: liftnet/legacy/currentLevelChanged
func (Topics) Legacy(kind string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixLegacy, kind)
}

// AllLegacy returns a pattern matching every legacy per-event channel.
//
// Pattern: liftnet/legacy/+
func (Topics) AllLegacy() string {
	return fmt.Sprintf("%s/+", TopicPrefixLegacy)
}

// UserNotification returns the direct notification topic for one user.
// Used for private requester confirmations after an approval executes.
//
// Example: liftnet/user/usr-4f21/notification
func (Topics) UserNotification(userID string) string {
	return fmt.Sprintf("%s/%s/notification", TopicPrefixUser, userID)
}

// SystemStatus returns the system status topic used for online/offline
// presence and the Last Will message.
//
// Example: liftnet/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
