package messaging

import (
	"sync"
	"time"
)

// DefaultDedupWindow is how long a request ID stays suppressed after
// first sight. The same logical message arrives on both the primary
// socket topic and a legacy per-kind topic, so a window of a few
// seconds is enough to absorb the duplicate delivery.
const DefaultDedupWindow = 8 * time.Second

// Dedup is a bounded, time-windowed set of recently seen request IDs.
//
// Thread Safety:
//   - FirstSeen is safe for concurrent use; handlers for the primary
//     and legacy topics may fire on different goroutines.
type Dedup struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewDedup creates a dedup set with the given suppression window.
// A non-positive window falls back to DefaultDedupWindow.
func NewDedup(window time.Duration) *Dedup {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Dedup{
		window: window,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
}

// FirstSeen records the request ID and reports whether this is its
// first appearance within the window. Expired entries are pruned on
// each call, which bounds the set to IDs seen inside one window.
func (d *Dedup) FirstSeen(requestID string) bool {
	now := d.now()
	cutoff := now.Add(-d.window)

	d.mu.Lock()
	defer d.mu.Unlock()

	for id, seenAt := range d.seen {
		if seenAt.Before(cutoff) {
			delete(d.seen, id)
		}
	}

	if seenAt, ok := d.seen[requestID]; ok && !seenAt.Before(cutoff) {
		return false
	}
	d.seen[requestID] = now
	return true
}

// Len returns the number of request IDs currently tracked.
func (d *Dedup) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
