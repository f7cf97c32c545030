package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPort is the port a broker listens on when none is configured.
// E1.33 brokers use an ephemeral port advertised through DNS-SD; a fixed
// default keeps static configurations simple.
const DefaultPort = 8888

// ListenerConfig configures a broker listener.
type ListenerConfig struct {
	// Address to listen on (e.g., ":8888" or "127.0.0.1:0").
	Address string

	// OnConnection is called for every accepted socket. The callee owns
	// the socket and may close it immediately to reject it.
	OnConnection func(conn net.Conn)

	// OnError is called when accept fails while the listener is running.
	OnError func(err error)
}

// Listener accepts TCP connections on one address in its own goroutine.
type Listener struct {
	config   ListenerConfig
	listener net.Listener

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewListener creates a listener. Start binds the address.
func NewListener(config ListenerConfig) *Listener {
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	return &Listener{config: config}
}

// Start binds the address and starts the accept loop.
func (l *Listener) Start(ctx context.Context) error {
	if l.running.Load() {
		return fmt.Errorf("listener already running")
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", l.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.config.Address, err)
	}
	l.listener = ln
	l.running.Store(true)

	l.wg.Add(1)
	go l.acceptLoop()
	return nil
}

// Stop closes the listening socket, which unblocks Accept, and waits for
// the accept loop to exit.
func (l *Listener) Stop() error {
	if !l.running.Swap(false) {
		return nil
	}
	err := l.listener.Close()
	l.wg.Wait()
	return err
}

// Addr returns the bound address, or nil before Start.
func (l *Listener) Addr() net.Addr {
	if l.listener != nil {
		return l.listener.Addr()
	}
	return nil
}

func (l *Listener) acceptLoop() {
	defer l.wg.Done()

	for l.running.Load() {
		conn, err := l.listener.Accept()
		if err != nil {
			if !l.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			if l.config.OnError != nil {
				l.config.OnError(fmt.Errorf("accept error: %w", err))
			}
			// Back off briefly so a persistent error (e.g. out of file
			// descriptors) does not spin.
			time.Sleep(5 * time.Millisecond)
			continue
		}

		if l.config.OnConnection != nil {
			l.config.OnConnection(conn)
		} else {
			conn.Close()
		}
	}
}
