package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// DefaultConnectTimeout bounds a TCP connect attempt.
const DefaultConnectTimeout = 10 * time.Second

// ErrDialFailed wraps TCP-level connect failures (refused, unreachable,
// timed out).
var ErrDialFailed = errors.New("dial failed")

// Dial connects to a broker and returns the framed connection.
func Dial(ctx context.Context, address string, timeout time.Duration, config ConnConfig) (*Conn, error) {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	c, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDialFailed, address, err)
	}
	conn := NewConn(c, config)
	conn.logState("", "CONNECTED")
	return conn, nil
}
