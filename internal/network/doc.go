// Package network holds the elevator network registry and its sync engine.
//
// A network is a named, ordered list of stops. Stop order encodes floor
// numbering: the first stored stop is the highest floor and the last is
// floor 1. The registry persists one JSON entry per network in SQLite.
//
// The sync engine is the authority's tool for keeping member stops
// consistent: it rewrites each stop's display name, sibling list, return
// pointer, and shared presentation attributes, pruning stops whose UUID
// no longer resolves. Running it twice on an unchanged network writes
// nothing the second time.
package network
