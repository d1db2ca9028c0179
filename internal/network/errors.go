package network

import "errors"

// ErrNotFound indicates no registry entry exists for the network ID.
var ErrNotFound = errors.New("network: entry not found")
