// Package influxdb provides InfluxDB connectivity for the travel journal mirror.
//
// It wraps the official influxdb-client-go v2 library with liftnet-specific
// patterns for connection management, point writing, and health monitoring.
//
// # Purpose
//
// Time-series storage for dashboards:
//   - Elevator level changes per network
//   - Approval outcomes (approved/denied, entities moved)
//
// The authoritative record lives in SQLite (internal/journal); this mirror
// is optional and loses nothing when disabled.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.Journal.Influx)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without the mirror
//	}
//	defer client.Close()
//
//	client.WriteLevelChange("elev1", "Region.abc123", 3)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
package influxdb
