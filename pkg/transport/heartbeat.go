package transport

import (
	"context"
	"sync"
	"time"
)

// Heartbeat constants.
const (
	// DefaultHeartbeatInterval is how long a side may stay quiet before it
	// sends a Null message.
	DefaultHeartbeatInterval = 15 * time.Second

	// DefaultHeartbeatTimeout is how long a peer may stay silent before the
	// connection is considered lost.
	DefaultHeartbeatTimeout = 45 * time.Second
)

// HeartbeatConfig configures heartbeat behavior.
type HeartbeatConfig struct {
	// Interval is the maximum quiet time before a Null is sent.
	Interval time.Duration

	// Timeout is the maximum peer silence.
	Timeout time.Duration
}

// DefaultHeartbeatConfig returns the E1.33 heartbeat configuration.
func DefaultHeartbeatConfig() HeartbeatConfig {
	return HeartbeatConfig{
		Interval: DefaultHeartbeatInterval,
		Timeout:  DefaultHeartbeatTimeout,
	}
}

func (c HeartbeatConfig) withDefaults() HeartbeatConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultHeartbeatInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultHeartbeatTimeout
	}
	return c
}

// HeartbeatTracker records send and receive activity on one connection.
// It is safe for concurrent use.
type HeartbeatTracker struct {
	config HeartbeatConfig

	mu       sync.Mutex
	lastSent time.Time
	lastRecv time.Time
}

// NewHeartbeatTracker returns a tracker that treats now as the last
// activity in both directions.
func NewHeartbeatTracker(config HeartbeatConfig, now time.Time) *HeartbeatTracker {
	return &HeartbeatTracker{config: config.withDefaults(), lastSent: now, lastRecv: now}
}

// Sent records outgoing traffic.
func (h *HeartbeatTracker) Sent(now time.Time) {
	h.mu.Lock()
	h.lastSent = now
	h.mu.Unlock()
}

// Received records incoming traffic.
func (h *HeartbeatTracker) Received(now time.Time) {
	h.mu.Lock()
	h.lastRecv = now
	h.mu.Unlock()
}

// NullDue reports whether nothing has been sent for a full interval.
func (h *HeartbeatTracker) NullDue(now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return now.Sub(h.lastSent) >= h.config.Interval
}

// Expired reports whether the peer has been silent longer than the timeout
// and returns how long it has been silent.
func (h *HeartbeatTracker) Expired(now time.Time) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	silence := now.Sub(h.lastRecv)
	return silence, silence >= h.config.Timeout
}

// Heartbeat runs the heartbeat for a single connection in its own
// goroutine: it sends Null messages when due and reports peer silence.
type Heartbeat struct {
	tracker   *HeartbeatTracker
	tick      time.Duration
	sendNull  func() error
	onTimeout func(silence time.Duration)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewHeartbeat creates a heartbeat over tracker. onTimeout is called at
// most once, from the heartbeat goroutine.
func NewHeartbeat(tracker *HeartbeatTracker, sendNull func() error, onTimeout func(silence time.Duration)) *Heartbeat {
	tick := tracker.config.Interval / 3
	if tick <= 0 {
		tick = time.Second
	}
	return &Heartbeat{
		tracker:   tracker,
		tick:      tick,
		sendNull:  sendNull,
		onTimeout: onTimeout,
	}
}

// Start begins the heartbeat loop.
func (hb *Heartbeat) Start(ctx context.Context) {
	hb.mu.Lock()
	defer hb.mu.Unlock()
	if hb.running {
		return
	}
	hb.running = true
	hb.stopCh = make(chan struct{})
	hb.doneCh = make(chan struct{})
	go hb.loop(ctx, hb.stopCh, hb.doneCh)
}

// Stop stops the loop and waits for it to exit. It must not be called
// from the onTimeout callback.
func (hb *Heartbeat) Stop() {
	hb.mu.Lock()
	if !hb.running {
		hb.mu.Unlock()
		return
	}
	hb.running = false
	close(hb.stopCh)
	done := hb.doneCh
	hb.mu.Unlock()
	<-done
}

// IsRunning returns true if the heartbeat loop is active.
func (hb *Heartbeat) IsRunning() bool {
	hb.mu.Lock()
	defer hb.mu.Unlock()
	return hb.running
}

func (hb *Heartbeat) loop(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	ticker := time.NewTicker(hb.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case now := <-ticker.C:
			if silence, expired := hb.tracker.Expired(now); expired {
				if hb.onTimeout != nil {
					hb.onTimeout(silence)
				}
				return
			}
			if hb.tracker.NullDue(now) {
				// A failed send shows up as a read error or timeout.
				_ = hb.sendNull()
			}
		}
	}
}
