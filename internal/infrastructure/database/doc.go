// Package database provides SQLite database connectivity for the liftnet daemon.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations from embedded .sql files
//   - Connection lifecycle and health checks
//
// The database is the daemon's scoped key/value store: network registry
// entries, current-level state, durable approval messages, the world
// document snapshot, and the travel journal all live here. Only the
// authority (GM) process writes the shared tables; player processes keep
// read-only copies and route writes through the message bus.
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
package database
