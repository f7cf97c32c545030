package broker

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	"github.com/ETCLabs/rdmnet-go/pkg/discovery"
	"github.com/ETCLabs/rdmnet-go/pkg/log"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/responder"
	"github.com/ETCLabs/rdmnet-go/pkg/transport"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
	"github.com/google/uuid"
)

// Broker errors.
var (
	ErrNotStarted      = errors.New("broker not started")
	ErrAlreadyStarted  = errors.New("broker already started")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrShutdownTimeout = errors.New("broker shutdown timed out")
	ErrClientNotFound  = errors.New("client not found")

	// ErrConnectionLost and ErrHeartbeatTimeout describe a client that went
	// away without a Disconnect message.
	ErrConnectionLost   = errors.New("connection lost")
	ErrHeartbeatTimeout = errors.New("heartbeat timeout")
)

// Defaults.
const (
	DefaultMaxConnections        = 20000
	DefaultMaxControllerMessages = 500
	DefaultMaxDeviceMessages     = 500
	DefaultMaxSocketsPerWorker   = 1024
	DefaultMaxPollWorkers        = 16
	DefaultServiceInterval       = 5 * time.Millisecond
	DefaultStopTimeout           = 10 * time.Second
)

// State is the broker lifecycle state.
type State uint8

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Config configures a Broker.
type Config struct {
	// CID of the broker. Generated when nil.
	CID uuid.UUID

	// UID of the broker. Must be a static UID.
	UID rdm.UID

	// Scope served by the broker.
	Scope string

	// SearchDomain for DNS-SD registration.
	SearchDomain string

	// ListenAddresses to accept clients on (e.g. ":8888", "127.0.0.1:0").
	ListenAddresses []string

	// MaxConnections caps open sockets, connected or not.
	MaxConnections int

	// MaxControllers and MaxDevices cap connected clients per type (0 = no limit).
	MaxControllers int
	MaxDevices     int

	// MaxControllerMessages bounds a controller's outbound queue.
	MaxControllerMessages int

	// MaxDeviceMessages bounds a device's outbound queues in total.
	MaxDeviceMessages int

	// MaxSocketsPerWorker and MaxPollWorkers size the poll pool.
	MaxSocketsPerWorker int
	MaxPollWorkers      int

	// ServiceInterval is how long the service loop sleeps when nothing was sent.
	ServiceInterval time.Duration

	// Heartbeat timing of client connections.
	Heartbeat transport.HeartbeatConfig

	// ConnectTimeout bounds how long a socket may stay open without a
	// ClientConnect.
	ConnectTimeout time.Duration

	// StopTimeout bounds Stop.
	StopTimeout time.Duration

	// WriteTimeout bounds a single send to a client.
	WriteTimeout time.Duration

	// Identity answered by the broker's RDM responder. UID, Role, Scope and
	// SearchDomain are filled in by the broker.
	Identity responder.Config

	// ServiceInstanceName, Model and Manufacturer are advertised via DNS-SD.
	ServiceInstanceName string
	Model               string
	Manufacturer        string

	// Advertiser registers the broker (optional).
	Advertiser discovery.Advertiser

	// Monitor watches the broker's own scope for other brokers (optional).
	Monitor discovery.Monitor

	// ProtocolLogger receives protocol events (optional).
	ProtocolLogger log.Logger

	// Logger for operational messages (optional).
	Logger *slog.Logger
}

// DefaultConfig returns a configuration for the default scope.
func DefaultConfig() Config {
	return Config{
		Scope:                 "default",
		SearchDomain:          discovery.DefaultSearchDomain,
		ListenAddresses:       []string{fmt.Sprintf(":%d", transport.DefaultPort)},
		MaxConnections:        DefaultMaxConnections,
		MaxControllerMessages: DefaultMaxControllerMessages,
		MaxDeviceMessages:     DefaultMaxDeviceMessages,
		MaxSocketsPerWorker:   DefaultMaxSocketsPerWorker,
		MaxPollWorkers:        DefaultMaxPollWorkers,
		ServiceInterval:       DefaultServiceInterval,
		Heartbeat:             transport.DefaultHeartbeatConfig(),
		ConnectTimeout:        transport.DefaultConnectTimeout,
		StopTimeout:           DefaultStopTimeout,
		WriteTimeout:          5 * time.Second,
		ServiceInstanceName:   "RDMnet Broker",
		Model:                 "rdmnet-go broker",
		Manufacturer:          responder.DefaultSoftwareManufacturer,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.UID.IsZero() || c.UID.IsBroadcast() || c.UID.IsDynamicRequest() {
		return fmt.Errorf("%w: broker needs a static UID, got %s", ErrInvalidConfig, c.UID)
	}
	if err := discovery.ValidateScope(c.Scope); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if len(c.SearchDomain) > responder.MaxSearchDomainLen {
		return fmt.Errorf("%w: search domain too long", ErrInvalidConfig)
	}
	if len(c.ListenAddresses) == 0 {
		return fmt.Errorf("%w: no listen address", ErrInvalidConfig)
	}
	if c.MaxControllers < 0 || c.MaxDevices < 0 || c.MaxConnections < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidConfig)
	}
	return nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CID == uuid.Nil {
		c.CID = uuid.New()
	}
	if c.SearchDomain == "" {
		c.SearchDomain = d.SearchDomain
	}
	if c.MaxConnections == 0 {
		c.MaxConnections = d.MaxConnections
	}
	if c.MaxControllerMessages <= 0 {
		c.MaxControllerMessages = d.MaxControllerMessages
	}
	if c.MaxDeviceMessages <= 0 {
		c.MaxDeviceMessages = d.MaxDeviceMessages
	}
	if c.MaxSocketsPerWorker <= 0 {
		c.MaxSocketsPerWorker = d.MaxSocketsPerWorker
	}
	if c.MaxPollWorkers <= 0 {
		c.MaxPollWorkers = d.MaxPollWorkers
	}
	if c.ServiceInterval <= 0 {
		c.ServiceInterval = d.ServiceInterval
	}
	if c.Heartbeat.Interval <= 0 {
		c.Heartbeat.Interval = d.Heartbeat.Interval
	}
	if c.Heartbeat.Timeout <= 0 {
		c.Heartbeat.Timeout = d.Heartbeat.Timeout
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = d.StopTimeout
	}
	if c.ServiceInstanceName == "" {
		c.ServiceInstanceName = d.ServiceInstanceName
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.Manufacturer == "" {
		c.Manufacturer = d.Manufacturer
	}
	return c
}

// ClientInfo describes a connected client.
type ClientInfo struct {
	Handle             int
	Entry              wire.ClientEntry
	Addr               netip.AddrPort
	IncrementalUpdates bool
	QueuedMessages     int
}

// EventType identifies a broker event.
type EventType uint8

const (
	EventClientConnected EventType = iota
	EventClientRejected
	EventClientDisconnected
	EventOtherBrokerFound
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case EventClientConnected:
		return "CLIENT_CONNECTED"
	case EventClientRejected:
		return "CLIENT_REJECTED"
	case EventClientDisconnected:
		return "CLIENT_DISCONNECTED"
	case EventOtherBrokerFound:
		return "OTHER_BROKER_FOUND"
	default:
		return "UNKNOWN"
	}
}

// Event reports a change in the broker's client population.
type Event struct {
	Type   EventType
	Client ClientInfo

	// Code is set for EventClientRejected.
	Code wire.ConnectStatus

	// Reason is set for EventClientDisconnected when the disconnect was
	// graceful; Err is set instead when the connection was lost.
	Reason wire.DisconnectReason
	Err    error

	// Broker is set for EventOtherBrokerFound.
	Broker *discovery.BrokerInfo
}

// EventHandler receives broker events. It is called from broker
// goroutines and must not block.
type EventHandler func(Event)
