// Package messaging carries the level-state protocol over the pub/sub
// channel.
//
// The wire protocol is a closed set of three message kinds sharing one
// envelope: setCurrentLevel, getCurrentLevel, and currentLevelChanged.
// Each message is published on the primary socket topic and mirrored on
// a per-kind legacy topic for older clients, so every receiver sees up
// to two copies; a time-windowed request-ID dedup reduces that to
// at-most-once processing. No ordering is assumed anywhere. The state
// converges because only the authority originates persisted writes.
package messaging
