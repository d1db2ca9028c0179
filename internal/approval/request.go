package approval

// TeleportRequest is the payload a non-owning client raises when its
// selection would move entities it has no rights over. It travels
// embedded inside the durable approval message so the message is
// self-contained and survives reconnects.
type TeleportRequest struct {
	// RequestID is unique per logical request and drives de-duplication.
	RequestID string `json:"requestId"`

	// RequesterID and RequesterName identify the initiating client.
	RequesterID   string `json:"requesterId"`
	RequesterName string `json:"requesterName"`

	NetworkID string `json:"networkId"`

	// Destination is where approved entities are moved.
	DestinationUUID  string `json:"destinationUuid"`
	DestinationLabel string `json:"destinationLabel"`

	// SubjectUUIDs lists the entities to move. May be empty when the
	// initiator could not enumerate entities they do not own; approvers
	// re-derive the set from the origin waypoint instead.
	SubjectUUIDs []string `json:"subjectUuids,omitempty"`

	// OriginUUID is the waypoint the request originated from, used for
	// the re-derivation scan.
	OriginUUID string `json:"originUuid"`
}
