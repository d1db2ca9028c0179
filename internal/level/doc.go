// Package level tracks which stop each elevator network is currently at.
//
// Two views exist side by side. The persisted Store is authoritative
// and single-writer: only the authority writes it, and every write is
// followed by a broadcast. The in-memory Cache is each client's
// optimistic view, updated instantly on local selection and corrected
// by broadcasts; it converges because the authority is the only origin
// of persisted values.
//
// The Coalescer keeps UI refreshes cheap when duplicate or bursty
// broadcasts arrive for the same network.
package level
