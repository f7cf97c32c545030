package transport

import (
	"net"
	"time"

	"github.com/ETCLabs/rdmnet-go/pkg/wire"
)

// Connection is a framed RDMnet connection.
// Implemented by Conn.
type Connection interface {
	// ConnID returns the unique connection identifier.
	ConnID() string

	// RemoteAddr returns the remote network address.
	RemoteAddr() net.Addr

	// Send writes one packed packet.
	Send(packet []byte) error

	// SendMessage packs and writes one message.
	SendMessage(p wire.Payload) error

	// Receive reads and decodes one block.
	Receive(timeout time.Duration) ([]wire.Message, error)

	// Close closes the connection.
	Close() error
}

// FrameReadWriter provides preamble-framed block I/O.
// Implemented by Framer.
type FrameReadWriter interface {
	// ReadFrame reads one block.
	ReadFrame() ([]byte, error)

	// WriteFrame writes one packet.
	WriteFrame(packet []byte) error
}

// Compile-time interface satisfaction checks.
var (
	_ Connection      = (*Conn)(nil)
	_ FrameReadWriter = (*Framer)(nil)
)
