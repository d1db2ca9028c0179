package level

import (
	"sync"
	"time"
)

// Coalescer collapses rapid rerender requests for the same network ID
// into a single callback invocation.
//
// Duplicate broadcasts and bursts of state changes would otherwise each
// trigger a UI refresh; the coalescer holds a short window per network
// ID and fires the callback once when it elapses. Requests for
// different networks coalesce independently.
//
// Thread Safety:
//   - Request and Stop are safe for concurrent use. The callback runs
//     on a timer goroutine; it must do its own synchronization.
type Coalescer struct {
	window   time.Duration
	rerender func(networkID string)

	mu      sync.Mutex
	pending map[string]*time.Timer
	stopped bool
}

// NewCoalescer creates a coalescer that invokes rerender once per
// network ID per window.
func NewCoalescer(window time.Duration, rerender func(networkID string)) *Coalescer {
	return &Coalescer{
		window:   window,
		rerender: rerender,
		pending:  make(map[string]*time.Timer),
	}
}

// Request schedules a rerender for the network. Requests arriving while
// one is already pending for the same network are absorbed into it.
func (c *Coalescer) Request(networkID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	if _, ok := c.pending[networkID]; ok {
		return
	}

	c.pending[networkID] = time.AfterFunc(c.window, func() {
		c.mu.Lock()
		delete(c.pending, networkID)
		stopped := c.stopped
		c.mu.Unlock()

		if !stopped {
			c.rerender(networkID)
		}
	})
}

// Stop cancels all pending rerenders and rejects further requests.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	for networkID, timer := range c.pending {
		timer.Stop()
		delete(c.pending, networkID)
	}
}
