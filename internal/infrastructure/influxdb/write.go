package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteLevelChange records an elevator arriving at a stop.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - networkID: The elevator network (e.g., "elev1")
//   - stopUUID: The stop the elevator arrived at
//   - floor: Floor number of the stop (0 if unknown)
//
// Example:
//
//	client.WriteLevelChange("elev1", "Region.abc123", 3)
func (c *Client) WriteLevelChange(networkID, stopUUID string, floor int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"level_changes",
		map[string]string{
			"network_id": networkID,
		},
		map[string]interface{}{
			"stop_uuid": stopUUID,
			"floor":     floor,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteApprovalOutcome records an approval message being resolved.
//
// Parameters:
//   - networkID: The elevator network the request targeted
//   - outcome: "approved" or "denied"
//   - movedCount: Number of entities that actually moved
func (c *Client) WriteApprovalOutcome(networkID, outcome string, movedCount int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"approvals",
		map[string]string{
			"network_id": networkID,
			"outcome":    outcome,
		},
		map[string]interface{}{
			"moved": movedCount,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
