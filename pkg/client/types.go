package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	"github.com/ETCLabs/rdmnet-go/pkg/connection"
	"github.com/ETCLabs/rdmnet-go/pkg/discovery"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/responder"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
	"github.com/google/uuid"
)

// Client errors.
var (
	ErrInvalidConfig    = errors.New("invalid client config")
	ErrScopeNotFound    = errors.New("scope not found")
	ErrDuplicateScope   = errors.New("scope already added")
	ErrNotConnected     = errors.New("scope not connected")
	ErrClosed           = errors.New("client closed")
	ErrRequestAbandoned = errors.New("request abandoned")
	ErrFragmentMismatch = errors.New("overflow fragment does not match request")
	ErrOverflowCapacity = errors.New("overflow response exceeds capacity")
	ErrNotDevice        = errors.New("operation requires the device role")
)

// DefaultMaxAckOverflowBytes bounds a reassembled ACK_OVERFLOW response.
const DefaultMaxAckOverflowBytes = 8192

// ScopeHandle identifies a scope added to a Client.
type ScopeHandle int

// String returns the handle for logs.
func (h ScopeHandle) String() string {
	return fmt.Sprintf("scope#%d", int(h))
}

// ScopeConfig configures one scope. A zero StaticBroker means the broker is
// found through DNS-SD.
type ScopeConfig struct {
	Scope        string
	StaticBroker netip.AddrPort
}

// IsStatic reports whether the scope uses a configured broker address.
func (s ScopeConfig) IsStatic() bool {
	return s.StaticBroker.IsValid()
}

// Validate checks the scope name.
func (s ScopeConfig) Validate() error {
	if err := discovery.ValidateScope(s.Scope); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Config configures a Client.
type Config struct {
	// CID of this component.
	CID uuid.UUID

	// UID of this component. A UID built with rdm.DynamicRequest asks the
	// broker to assign one.
	UID rdm.UID

	// Type selects the Controller or Device role.
	Type wire.RPTClientType

	// SearchDomain for DNS-SD (default "local.").
	SearchDomain string

	// AutoQuery makes a Controller read the standard properties of the
	// broker and of every Device it learns about.
	AutoQuery bool

	// MaxAckOverflowBytes bounds reassembled responses.
	MaxAckOverflowBytes int

	// Responder answers RDM commands in the Device role. When nil, a Device
	// gets a default responder unless RawCommands is set.
	Responder *responder.Responder

	// RawCommands makes a Device deliver RDM commands to the EventHandler
	// instead of answering them with Responder.
	RawCommands bool

	// Logger for operational messages (optional).
	Logger *slog.Logger
}

// DefaultConfig returns a Controller configuration with a fresh CID and a
// dynamic UID request for manufacturer.
func DefaultConfig(manufacturer uint16) Config {
	return Config{
		CID:                 uuid.New(),
		UID:                 rdm.DynamicRequest(manufacturer),
		Type:                wire.RPTClientTypeController,
		SearchDomain:        discovery.DefaultSearchDomain,
		AutoQuery:           true,
		MaxAckOverflowBytes: DefaultMaxAckOverflowBytes,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.CID == uuid.Nil {
		return fmt.Errorf("%w: CID is nil", ErrInvalidConfig)
	}
	if c.UID.IsZero() || c.UID.IsBroadcast() {
		return fmt.Errorf("%w: UID %s", ErrInvalidConfig, c.UID)
	}
	if c.Type != wire.RPTClientTypeController && c.Type != wire.RPTClientTypeDevice {
		return fmt.Errorf("%w: client type %s", ErrInvalidConfig, c.Type)
	}
	if len(c.SearchDomain) > responder.MaxSearchDomainLen {
		return fmt.Errorf("%w: search domain too long", ErrInvalidConfig)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.SearchDomain == "" {
		c.SearchDomain = discovery.DefaultSearchDomain
	}
	if c.MaxAckOverflowBytes <= 0 {
		c.MaxAckOverflowBytes = DefaultMaxAckOverflowBytes
	}
	return c
}

// ConnectFailEvent classifies a failed connection attempt.
type ConnectFailEvent uint8

const (
	// ConnectFailSocket means no socket could be created.
	ConnectFailSocket ConnectFailEvent = iota

	// ConnectFailTCP means the TCP connect timed out or was refused.
	ConnectFailTCP

	// ConnectFailNoReply means the broker did not answer ClientConnect.
	ConnectFailNoReply

	// ConnectFailRejected means the broker answered with an error code.
	ConnectFailRejected
)

// String returns the event name.
func (e ConnectFailEvent) String() string {
	switch e {
	case ConnectFailSocket:
		return "SOCKET_FAILURE"
	case ConnectFailTCP:
		return "TCP_LEVEL"
	case ConnectFailNoReply:
		return "NO_REPLY"
	case ConnectFailRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// DisconnectEvent classifies the loss of an established connection.
type DisconnectEvent uint8

const (
	// DisconnectAbruptClose means the TCP connection was reset or closed.
	DisconnectAbruptClose DisconnectEvent = iota

	// DisconnectNoHeartbeat means the broker went silent.
	DisconnectNoHeartbeat

	// DisconnectGracefulRemote means the broker sent a Disconnect message.
	DisconnectGracefulRemote

	// DisconnectGracefulLocal means this side disconnected on purpose.
	DisconnectGracefulLocal
)

// String returns the event name.
func (e DisconnectEvent) String() string {
	switch e {
	case DisconnectAbruptClose:
		return "ABRUPT_CLOSE"
	case DisconnectNoHeartbeat:
		return "NO_HEARTBEAT"
	case DisconnectGracefulRemote:
		return "GRACEFUL_REMOTE"
	case DisconnectGracefulLocal:
		return "GRACEFUL_LOCAL"
	default:
		return "UNKNOWN"
	}
}

// ConnectedInfo is reported by a Connector when the broker accepted the
// connection.
type ConnectedInfo struct {
	BrokerCID uuid.UUID
	BrokerUID rdm.UID

	// ClientUID is the UID the broker confirmed or assigned.
	ClientUID rdm.UID

	// Addr is the address actually connected to. It differs from the
	// requested one after a redirect.
	Addr netip.AddrPort
}

// ConnectFailedInfo is reported by a Connector when an attempt failed.
type ConnectFailedInfo struct {
	Event ConnectFailEvent
	Err   error

	// Code is set for ConnectFailRejected.
	Code wire.ConnectStatus

	// Attempt counts the attempts of the scope since it last connected or
	// was disconnected locally, this one included.
	Attempt int

	// RetryIn is the delay the connector waits before the next attempt.
	RetryIn time.Duration
}

// IsFatal reports whether the failure stops further attempts.
func (i ConnectFailedInfo) IsFatal() bool {
	switch i.Event {
	case ConnectFailSocket:
		return true
	case ConnectFailRejected:
		return i.Code.IsFatal()
	}
	return false
}

// DisconnectedInfo is reported by a Connector when an established
// connection ended.
type DisconnectedInfo struct {
	Event DisconnectEvent
	Err   error

	// Reason is set for graceful disconnects.
	Reason wire.DisconnectReason
}

// IsFatal reports whether the disconnect stops further attempts.
func (i DisconnectedInfo) IsFatal() bool {
	return i.Event == DisconnectGracefulRemote && i.Reason == wire.DisconnectIncorrectScope
}

// ConnectedEvent is reported to the application on connect.
type ConnectedEvent struct {
	Scope     string
	BrokerCID uuid.UUID
	BrokerUID rdm.UID
	ClientUID rdm.UID
	Addr      netip.AddrPort
}

// ConnectFailedEvent is reported to the application when an attempt
// failed. WillRetry is false after a fatal failure.
type ConnectFailedEvent struct {
	Scope     string
	Event     ConnectFailEvent
	Code      wire.ConnectStatus
	Err       error
	WillRetry bool

	// Attempt is the number of the failed attempt, starting at 1.
	Attempt int

	// RetryIn is the delay before the next attempt; zero without a retry.
	RetryIn time.Duration
}

// DisconnectedEvent is reported to the application when a connection
// ended, including local reconfiguration.
type DisconnectedEvent struct {
	Scope     string
	Event     DisconnectEvent
	Reason    wire.DisconnectReason
	Err       error
	WillRetry bool
}

// ResponseResult is a complete response to a command sent by this client,
// or an unsolicited response.
type ResponseResult struct {
	// Header of the last notification that contributed to the result.
	Header wire.RPTHeader

	// Source is the responder's UID.
	Source rdm.UID

	// Seqnum is the RPT sequence number of the request (0 when unsolicited).
	Seqnum uint32

	// Command is the original command, when known.
	Command *rdm.Command

	ResponseType rdm.ResponseType
	CommandClass rdm.CommandClass
	ParamID      uint16
	Subdevice    uint16

	// Data is the reassembled parameter data.
	Data []byte

	// Unsolicited is set for responses no outstanding request matched.
	// ACK_OVERFLOW parts of an unsolicited response are joined only within
	// one Notification. A sequence still open at the end of a Notification
	// is reported with ErrFragmentMismatch and the rest arrives separately.
	Unsolicited bool

	// Partial is set when Data is incomplete. Err says why.
	Partial bool
	Err     error
}

// NackReason returns the reason of a NACK result.
func (r *ResponseResult) NackReason() (rdm.NackReason, bool) {
	if r.ResponseType != rdm.ResponseTypeNackReason || len(r.Data) < 2 {
		return 0, false
	}
	return rdm.NackReason(uint16(r.Data[0])<<8 | uint16(r.Data[1])), true
}

// StatusResult is an RPT Status received for a request of this client.
type StatusResult struct {
	Header  wire.RPTHeader
	Seqnum  uint32
	Code    wire.RPTStatusCode
	Text    string
	Command *rdm.Command
}

// ScopeInfo is a snapshot of one scope.
type ScopeInfo struct {
	Handle     ScopeHandle
	Config     ScopeConfig
	State      connection.State
	BrokerAddr netip.AddrPort
	BrokerCID  uuid.UUID
	BrokerUID  rdm.UID

	// ClientUID is this client's UID on the scope once connected.
	ClientUID rdm.UID

	// UnhealthyEvents counts heartbeat losses since the last reset.
	UnhealthyEvents uint16
}
