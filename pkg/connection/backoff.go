package connection

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Retry timing between broker connection attempts of one scope.
const (
	InitialBackoff    = 1 * time.Second
	MaxBackoff        = 30 * time.Second
	BackoffMultiplier = 2.0

	// JitterFactor is the largest jitter, as a fraction of the base delay.
	JitterFactor = 0.25
)

// BackoffConfig customizes a Backoff. Zero fields take the defaults,
// except Jitter where zero disables jitter.
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// Backoff hands out exponentially growing retry delays with jitter. The
// jittered delay of the upcoming retry is drawn in advance, so Peek and
// the following Wait agree.
type Backoff struct {
	cfg BackoffConfig

	mu       sync.Mutex
	base     time.Duration
	pending  time.Duration
	attempts int
}

// NewBackoff returns a Backoff with the E1.33 client defaults.
func NewBackoff() *Backoff {
	return NewBackoffWithConfig(BackoffConfig{Jitter: JitterFactor})
}

// NewBackoffWithConfig returns a Backoff using cfg.
func NewBackoffWithConfig(cfg BackoffConfig) *Backoff {
	if cfg.Initial <= 0 {
		cfg.Initial = InitialBackoff
	}
	if cfg.Max <= 0 {
		cfg.Max = MaxBackoff
	}
	if cfg.Max < cfg.Initial {
		cfg.Max = cfg.Initial
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = BackoffMultiplier
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}
	b := &Backoff{cfg: cfg}
	b.restart()
	return b
}

// Next returns the delay of the upcoming retry and advances to the one
// after it.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	d := b.pending
	b.attempts++
	b.base = min(time.Duration(float64(b.base)*b.cfg.Multiplier), b.cfg.Max)
	b.pending = b.jittered(b.base)
	return d
}

// Wait sleeps for Next. It returns the context error if ctx is done
// first; the retry counts as taken either way.
func (b *Backoff) Wait(ctx context.Context) error {
	t := time.NewTimer(b.Next())
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Peek returns the delay the next Wait will sleep for.
func (b *Backoff) Peek() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Attempts returns the number of delays handed out since the last Reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Reset starts over at the initial delay. Call it once a connection is up.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.restart()
}

func (b *Backoff) restart() {
	b.base = b.cfg.Initial
	b.pending = b.jittered(b.base)
	b.attempts = 0
}

func (b *Backoff) jittered(d time.Duration) time.Duration {
	if b.cfg.Jitter <= 0 {
		return d
	}
	return d + time.Duration(float64(d)*b.cfg.Jitter*rand.Float64())
}
