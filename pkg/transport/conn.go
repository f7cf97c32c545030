package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/ETCLabs/rdmnet-go/pkg/log"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
	"github.com/google/uuid"
)

// Connection errors.
var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrReceiveTimeout   = errors.New("receive timeout")

	// ErrDecode wraps a codec error for a block that was framed correctly.
	// The stream is intact and the caller may keep reading.
	ErrDecode = errors.New("decode failed")
)

// ConnConfig configures a framed connection.
type ConnConfig struct {
	// LocalCID is the sender CID written into every outgoing message.
	LocalCID uuid.UUID

	// Role of the local component, for protocol logs.
	Role log.Role

	// Scope of the connection, for protocol logs.
	Scope string

	// Heartbeat timing.
	Heartbeat HeartbeatConfig

	// WriteTimeout bounds a single blocking send (0 = no limit).
	WriteTimeout time.Duration

	// MaxBlockSize is the largest accepted incoming block (default 1 MB).
	MaxBlockSize int

	// Logger for protocol logging (optional).
	Logger log.Logger
}

// Conn is a framed RDMnet TCP connection.
type Conn struct {
	conn       net.Conn
	framer     *Framer
	config     ConnConfig
	connID     string
	remoteAddr net.Addr
	heartbeat  *HeartbeatTracker

	readMu    sync.Mutex
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeCh   chan struct{}
}

// NewConn wraps an established TCP connection.
func NewConn(c net.Conn, config ConnConfig) *Conn {
	connID := uuid.New().String()
	framer := NewFramer(c)
	if config.MaxBlockSize > 0 {
		framer.SetMaxBlockSize(config.MaxBlockSize)
	}
	if log.Enabled(config.Logger) {
		framer.SetLogger(config.Logger, connID)
	}
	return &Conn{
		conn:       c,
		framer:     framer,
		config:     config,
		connID:     connID,
		remoteAddr: c.RemoteAddr(),
		heartbeat:  NewHeartbeatTracker(config.Heartbeat, time.Now()),
		closeCh:    make(chan struct{}),
	}
}

// ConnID returns the unique connection identifier.
func (c *Conn) ConnID() string {
	return c.connID
}

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.remoteAddr
}

// LocalCID returns the CID used as sender on this connection.
func (c *Conn) LocalCID() uuid.UUID {
	return c.config.LocalCID
}

// Heartbeat returns the connection's activity tracker.
func (c *Conn) Heartbeat() *HeartbeatTracker {
	return c.heartbeat
}

// Send writes one packed packet. It blocks until the packet is written or
// the write timeout expires.
func (c *Conn) Send(packet []byte) error {
	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.config.WriteTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	}
	if err := c.framer.WriteFrame(packet); err != nil {
		return err
	}
	c.heartbeat.Sent(time.Now())
	return nil
}

// SendMessage packs p with the local CID and sends it.
func (c *Conn) SendMessage(p wire.Payload) error {
	packet, err := wire.Encode(c.config.LocalCID, p)
	if err != nil {
		return err
	}
	if err := c.Send(packet); err != nil {
		return err
	}
	c.logMessage(p, log.DirectionOut)
	return nil
}

// Receive reads and decodes one block. A zero timeout blocks until data
// arrives or the connection closes. After ErrReceiveTimeout the stream
// position is undefined and the connection should be closed.
func (c *Conn) Receive(timeout time.Duration) ([]wire.Message, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	if timeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
		defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()
	}

	block, err := c.framer.ReadFrame()
	if err != nil {
		select {
		case <-c.closeCh:
			return nil, ErrConnectionClosed
		default:
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrReceiveTimeout, err)
		}
		return nil, err
	}
	c.heartbeat.Received(time.Now())

	msgs, err := wire.Decode(block)
	for _, m := range msgs {
		c.logMessage(m.Payload, log.DirectionIn)
	}
	if err != nil {
		c.logError(err, "decode")
		return msgs, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return msgs, nil
}

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
		c.logState("CONNECTED", "CLOSED")
	})
	return err
}

// Done is closed when Close has been called.
func (c *Conn) Done() <-chan struct{} {
	return c.closeCh
}

func (c *Conn) baseEvent(layer log.Layer, cat log.Category, dir log.Direction) log.Event {
	return log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    dir,
		Layer:        layer,
		Category:     cat,
		LocalRole:    c.config.Role,
		RemoteAddr:   c.remoteAddr.String(),
		Scope:        c.config.Scope,
	}
}

func (c *Conn) logMessage(p wire.Payload, dir log.Direction) {
	if !log.Enabled(c.config.Logger) {
		return
	}
	layer, msg := log.NewMessageEvent(p)
	cat := log.CategoryMessage
	if _, ok := p.(*wire.Null); ok {
		cat = log.CategoryHeartbeat
	}
	ev := c.baseEvent(layer, cat, dir)
	if cat == log.CategoryHeartbeat {
		ev.Heartbeat = &log.HeartbeatEvent{Type: log.HeartbeatNull}
	} else {
		ev.Message = msg
	}
	c.config.Logger.Log(ev)
}

func (c *Conn) logState(old, new string) {
	if !log.Enabled(c.config.Logger) {
		return
	}
	ev := c.baseEvent(log.LayerTransport, log.CategoryState, log.DirectionOut)
	ev.StateChange = &log.StateChangeEvent{Entity: log.StateEntityConnection, OldState: old, NewState: new}
	c.config.Logger.Log(ev)
}

func (c *Conn) logError(err error, context string) {
	if !log.Enabled(c.config.Logger) {
		return
	}
	ev := c.baseEvent(log.LayerTransport, log.CategoryError, log.DirectionIn)
	ev.Error = &log.ErrorEventData{Layer: log.LayerTransport, Message: err.Error(), Context: context}
	c.config.Logger.Log(ev)
}
