// Package panel drives a level selection from click to arrival.
//
// The controller validates the destination against the network
// registry, waits out the travel delay and the arrival sound, moves
// the entities the user owns, and hands everything else to the
// approval workflow. The RoundWaiter parks selection unlocks until a
// combat round boundary; round waits have no timeout and are released
// by cancellation or the next round advance.
package panel
