package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"sync"
	"time"

	"github.com/ETCLabs/rdmnet-go/pkg/connection"
	"github.com/ETCLabs/rdmnet-go/pkg/log"
	"github.com/ETCLabs/rdmnet-go/pkg/transport"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
)

// Connector errors.
var (
	ErrNotBound         = errors.New("connector not bound to a client")
	ErrAlreadyConnected = errors.New("scope already connected")
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrUnexpectedReply  = errors.New("unexpected reply to client connect")
)

// maxRedirects bounds how many Redirect messages one attempt follows.
const maxRedirects = 3

// TCPConnectorConfig configures a TCPConnector.
type TCPConnectorConfig struct {
	// ConnectTimeout bounds the TCP connect and the wait for the broker's
	// reply, each.
	ConnectTimeout time.Duration

	// Heartbeat timing of established connections.
	Heartbeat transport.HeartbeatConfig

	// Backoff between attempts of one scope.
	Backoff connection.BackoffConfig

	// WriteTimeout bounds a single send.
	WriteTimeout time.Duration

	// ProtocolLogger receives protocol events (optional).
	ProtocolLogger log.Logger

	// Logger for operational messages (optional).
	Logger *slog.Logger
}

// DefaultTCPConnectorConfig returns the E1.33 default timing.
func DefaultTCPConnectorConfig() TCPConnectorConfig {
	return TCPConnectorConfig{
		ConnectTimeout: transport.DefaultConnectTimeout,
		Heartbeat:      transport.DefaultHeartbeatConfig(),
		Backoff:        connection.BackoffConfig{Jitter: connection.JitterFactor},
		WriteTimeout:   5 * time.Second,
	}
}

// TCPConnector connects scopes to brokers over TCP.
type TCPConnector struct {
	config TCPConnectorConfig

	mu       sync.Mutex
	events   ConnectionEvents
	sessions map[ScopeHandle]*session
}

// session is the connection of one scope. gen changes whenever an attempt
// is started or the scope is disconnected locally, so that results of an
// older attempt are dropped.
type session struct {
	backoff   *connection.Backoff
	attempted bool
	gen       uint64
	cancel    context.CancelFunc
	conn      *transport.Conn
}

// NewTCPConnector creates a connector.
func NewTCPConnector(config TCPConnectorConfig) *TCPConnector {
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = transport.DefaultConnectTimeout
	}
	return &TCPConnector{
		config:   config,
		sessions: make(map[ScopeHandle]*session),
	}
}

// Bind sets the receiver of connection events.
func (t *TCPConnector) Bind(events ConnectionEvents) {
	t.mu.Lock()
	t.events = events
	t.mu.Unlock()
}

// Connect starts an attempt in the background. Every attempt after the
// first of a scope waits for the backoff delay.
func (t *TCPConnector) Connect(h ScopeHandle, addr netip.AddrPort, msg *wire.ClientConnect) error {
	t.mu.Lock()
	events := t.events
	if events == nil {
		t.mu.Unlock()
		return ErrNotBound
	}
	s, ok := t.sessions[h]
	if !ok {
		s = &session{backoff: connection.NewBackoffWithConfig(t.config.Backoff)}
		t.sessions[h] = s
	}
	if s.conn != nil {
		t.mu.Unlock()
		return ErrAlreadyConnected
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.gen++
	gen := s.gen
	wait := s.attempted
	s.attempted = true
	t.mu.Unlock()

	go t.attempt(ctx, events, h, s, gen, wait, addr, msg)
	return nil
}

func (t *TCPConnector) attempt(ctx context.Context, events ConnectionEvents, h ScopeHandle, s *session, gen uint64, wait bool, addr netip.AddrPort, msg *wire.ClientConnect) {
	if wait {
		if err := s.backoff.Wait(ctx); err != nil {
			return
		}
	}

	conn, info, fail := t.handshake(ctx, addr, msg)
	t.mu.Lock()
	if s.gen != gen || ctx.Err() != nil {
		t.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if fail != nil {
		s.cancel = nil
		fail.Attempt = s.backoff.Attempts() + 1
		fail.RetryIn = s.backoff.Peek()
		t.mu.Unlock()
		t.debugLog("client: connect failed", "handle", h, "addr", addr, "event", fail.Event,
			"attempt", fail.Attempt, "retryIn", fail.RetryIn, "error", fail.Err)
		events.HandleConnectFailed(h, *fail)
		return
	}
	s.conn = conn
	s.backoff.Reset()
	t.mu.Unlock()

	hb := transport.NewHeartbeat(conn.Heartbeat(),
		func() error { return conn.SendMessage(&wire.Null{}) },
		func(silence time.Duration) {
			t.lost(events, h, gen, conn, DisconnectedInfo{
				Event: DisconnectNoHeartbeat,
				Err:   fmt.Errorf("broker silent for %s", silence),
			})
		})
	hb.Start(ctx)

	t.debugLog("client: connected", "handle", h, "addr", info.Addr, "broker", info.BrokerUID)
	events.HandleConnected(h, info)
	go t.readLoop(events, h, gen, conn)
}

// handshake connects, sends msg and waits for the broker's answer,
// following redirects.
func (t *TCPConnector) handshake(ctx context.Context, addr netip.AddrPort, msg *wire.ClientConnect) (*transport.Conn, ConnectedInfo, *ConnectFailedInfo) {
	role := log.RoleDevice
	if msg.Entry.RPT != nil && msg.Entry.RPT.Type == wire.RPTClientTypeController {
		role = log.RoleController
	}
	cfg := transport.ConnConfig{
		LocalCID:     msg.Entry.CID,
		Role:         role,
		Scope:        msg.Scope,
		Heartbeat:    t.config.Heartbeat,
		WriteTimeout: t.config.WriteTimeout,
		Logger:       t.config.ProtocolLogger,
	}

	for redirects := 0; ; redirects++ {
		conn, err := transport.Dial(ctx, addr.String(), t.config.ConnectTimeout, cfg)
		if err != nil {
			return nil, ConnectedInfo{}, &ConnectFailedInfo{Event: ConnectFailTCP, Err: err}
		}
		if err := conn.SendMessage(msg); err != nil {
			_ = conn.Close()
			return nil, ConnectedInfo{}, &ConnectFailedInfo{Event: ConnectFailTCP, Err: err}
		}

		reply, err := t.awaitReply(conn)
		if err != nil {
			_ = conn.Close()
			return nil, ConnectedInfo{}, &ConnectFailedInfo{Event: ConnectFailNoReply, Err: err}
		}

		switch r := reply.Payload.(type) {
		case *wire.ConnectReply:
			if r.Code != wire.ConnectOK {
				_ = conn.Close()
				return nil, ConnectedInfo{}, &ConnectFailedInfo{
					Event: ConnectFailRejected,
					Code:  r.Code,
					Err:   fmt.Errorf("broker rejected connect: %s", r.Code),
				}
			}
			return conn, ConnectedInfo{
				BrokerCID: reply.SenderCID,
				BrokerUID: r.BrokerUID,
				ClientUID: r.ClientUID,
				Addr:      addr,
			}, nil
		case *wire.Redirect:
			_ = conn.Close()
			if redirects >= maxRedirects {
				return nil, ConnectedInfo{}, &ConnectFailedInfo{Event: ConnectFailNoReply, Err: ErrTooManyRedirects}
			}
			t.debugLog("client: redirected", "from", addr, "to", r.Addr)
			addr = r.Addr
		}
	}
}

// awaitReply reads until a ConnectReply or Redirect arrives or the connect
// timeout passes.
func (t *TCPConnector) awaitReply(conn *transport.Conn) (wire.Message, error) {
	deadline := time.Now().Add(t.config.ConnectTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return wire.Message{}, transport.ErrReceiveTimeout
		}
		msgs, err := conn.Receive(remaining)
		for _, m := range msgs {
			switch m.Payload.(type) {
			case *wire.ConnectReply, *wire.Redirect:
				return m, nil
			case *wire.Null:
			default:
				return wire.Message{}, fmt.Errorf("%w: %s", ErrUnexpectedReply, m)
			}
		}
		if err != nil && !errors.Is(err, transport.ErrDecode) {
			return wire.Message{}, err
		}
	}
}

func (t *TCPConnector) readLoop(events ConnectionEvents, h ScopeHandle, gen uint64, conn *transport.Conn) {
	for {
		msgs, err := conn.Receive(0)
		for _, m := range msgs {
			switch p := m.Payload.(type) {
			case *wire.Null:
			case *wire.Disconnect:
				t.lost(events, h, gen, conn, DisconnectedInfo{Event: DisconnectGracefulRemote, Reason: p.Reason})
				return
			default:
				events.HandleMessage(h, m)
			}
		}
		if err != nil {
			if errors.Is(err, transport.ErrDecode) {
				continue
			}
			t.lost(events, h, gen, conn, DisconnectedInfo{Event: DisconnectAbruptClose, Err: err})
			return
		}
	}
}

// lost ends a connection that failed on the broker side. Nothing is
// reported when the scope was disconnected locally in the meantime.
func (t *TCPConnector) lost(events ConnectionEvents, h ScopeHandle, gen uint64, conn *transport.Conn, info DisconnectedInfo) {
	t.mu.Lock()
	s, ok := t.sessions[h]
	if !ok || s.gen != gen || s.conn != conn {
		t.mu.Unlock()
		return
	}
	s.conn = nil
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	t.mu.Unlock()

	_ = conn.Close()
	t.debugLog("client: connection lost", "handle", h, "event", info.Event, "error", info.Err)
	events.HandleDisconnected(h, info)
}

// Disconnect closes the scope's connection after sending a Disconnect
// message, or cancels an attempt in progress. The next attempt of the
// scope starts without delay.
func (t *TCPConnector) Disconnect(h ScopeHandle, reason wire.DisconnectReason) error {
	t.mu.Lock()
	s, ok := t.sessions[h]
	if !ok {
		t.mu.Unlock()
		return nil
	}
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	conn := s.conn
	s.conn = nil
	s.attempted = false
	s.backoff.Reset()
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	_ = conn.SendMessage(&wire.Disconnect{Reason: reason})
	return conn.Close()
}

// Send sends p on the scope's connection.
func (t *TCPConnector) Send(h ScopeHandle, p wire.Payload) error {
	t.mu.Lock()
	var conn *transport.Conn
	if s, ok := t.sessions[h]; ok {
		conn = s.conn
	}
	t.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.SendMessage(p)
}

// Close disconnects every scope.
func (t *TCPConnector) Close() error {
	t.mu.Lock()
	handles := make([]ScopeHandle, 0, len(t.sessions))
	for h := range t.sessions {
		handles = append(handles, h)
	}
	t.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := t.Disconnect(h, wire.DisconnectShutdown); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *TCPConnector) debugLog(msg string, args ...any) {
	if t.config.Logger != nil {
		t.config.Logger.Debug(msg, args...)
	}
}
