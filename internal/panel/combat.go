package panel

import "sync"

// RoundHandle is one pending wait on a combat-round boundary. The
// caller selects on Done and calls Cancel when it stops caring; a
// handle that is never resolved and never cancelled waits forever,
// which is the intended behavior for combat locks.
type RoundHandle struct {
	waiter *RoundWaiter
	id     uint64
	done   chan struct{}
}

// Done is closed when the round advances or the handle is cancelled.
func (h *RoundHandle) Done() <-chan struct{} {
	return h.done
}

// Cancel abandons the wait. Safe to call more than once and after
// resolution.
func (h *RoundHandle) Cancel() {
	h.waiter.remove(h.id)
}

// RoundWaiter parks selection unlocks until the next combat-round
// boundary. There is deliberately no timeout: a round that never ends
// keeps its locks. The host UI layer, which owns combat state and sits
// outside this daemon, is the component that calls Wait and
// RoundAdvanced; nothing in the core suspends on it directly.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type RoundWaiter struct {
	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan struct{}
}

// NewRoundWaiter creates an empty waiter.
func NewRoundWaiter() *RoundWaiter {
	return &RoundWaiter{pending: make(map[uint64]chan struct{})}
}

// Wait registers a new handle resolved by the next RoundAdvanced call.
func (w *RoundWaiter) Wait() *RoundHandle {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	done := make(chan struct{})
	w.pending[w.nextID] = done
	return &RoundHandle{waiter: w, id: w.nextID, done: done}
}

// RoundAdvanced resolves every pending handle.
func (w *RoundWaiter) RoundAdvanced() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, done := range w.pending {
		close(done)
		delete(w.pending, id)
	}
}

// Pending returns how many handles are waiting.
func (w *RoundWaiter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *RoundWaiter) remove(id uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if done, ok := w.pending[id]; ok {
		close(done)
		delete(w.pending, id)
	}
}
