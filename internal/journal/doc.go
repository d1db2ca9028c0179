// Package journal keeps an append-only record of level changes, sync
// runs, and approval activity. Events persist in SQLite; level and
// approval events also stream to the time-series backend when it is
// enabled. Journaling is observational only and never fails the
// operation it records.
package journal
