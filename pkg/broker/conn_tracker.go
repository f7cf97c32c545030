package broker

import (
	"sync"
	"time"
)

// connTracker tracks sockets that have not completed ClientConnect yet,
// keyed by client handle, with their accept times. The service loop reaps
// the ones that stay silent longer than the connect timeout.
type connTracker struct {
	mu    sync.Mutex
	conns map[int]time.Time
}

func newConnTracker() *connTracker {
	return &connTracker{
		conns: make(map[int]time.Time),
	}
}

// Add registers a handle with the given accept time.
func (ct *connTracker) Add(handle int, accepted time.Time) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.conns[handle] = accepted
}

// Remove deregisters a handle. Safe to call on absent handles.
func (ct *connTracker) Remove(handle int) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	delete(ct.conns, handle)
}

// Stale removes and returns all handles accepted before now-maxAge.
func (ct *connTracker) Stale(now time.Time, maxAge time.Duration) []int {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	cutoff := now.Add(-maxAge)
	var stale []int
	for handle, added := range ct.conns {
		if added.Before(cutoff) {
			delete(ct.conns, handle)
			stale = append(stale, handle)
		}
	}
	return stale
}

// Len returns the number of tracked handles.
func (ct *connTracker) Len() int {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return len(ct.conns)
}
