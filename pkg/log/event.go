package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the TCP connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// LocalRole is the role of the component that logged the event.
	LocalRole Role `cbor:"6,keyasint,omitempty"`

	// RemoteAddr is the peer address (IP:port).
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// Scope is the RDMnet scope of the connection.
	Scope string `cbor:"8,keyasint,omitempty"`

	// PeerCID is the CID of the remote component, once known.
	PeerCID string `cbor:"9,keyasint,omitempty"`

	// PeerUID is the RPT UID of the remote component, once known.
	PeerUID string `cbor:"10,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"11,keyasint,omitempty"` // Transport layer
	Message     *MessageEvent     `cbor:"12,keyasint,omitempty"` // Broker/RPT/RDM layers
	StateChange *StateChangeEvent `cbor:"13,keyasint,omitempty"` // Connection/scope state
	Heartbeat   *HeartbeatEvent   `cbor:"14,keyasint,omitempty"` // Null messages and timeouts
	Error       *ErrorEventData   `cbor:"15,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the TCP block layer (raw bytes).
	LayerTransport Layer = 0
	// LayerBroker is the Broker protocol (connect, client lists, heartbeat).
	LayerBroker Layer = 1
	// LayerRPT is the RPT layer (request, status, notification).
	LayerRPT Layer = 2
	// LayerRDM is the tunneled RDM layer.
	LayerRDM Layer = 3
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerBroker:
		return "BROKER"
	case LayerRPT:
		return "RPT"
	case LayerRDM:
		return "RDM"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a protocol message.
	CategoryMessage Category = 0
	// CategoryHeartbeat indicates a Null message or heartbeat timeout.
	CategoryHeartbeat Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryHeartbeat:
		return "HEARTBEAT"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role indicates the kind of RDMnet component that logged the event.
type Role uint8

const (
	// RoleDevice indicates an RPT Device.
	RoleDevice Role = 0
	// RoleController indicates an RPT Controller.
	RoleController Role = 1
	// RoleBroker indicates a Broker.
	RoleBroker Role = 2
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleDevice:
		return "DEVICE"
	case RoleController:
		return "CONTROLLER"
	case RoleBroker:
		return "BROKER"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures a raw TCP block at the transport layer.
type FrameEvent struct {
	// Size is the block size in bytes (including the preamble).
	Size int `cbor:"1,keyasint"`

	// Data is the raw block bytes (may be truncated for large blocks).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MessageEvent captures a decoded RDMnet message.
type MessageEvent struct {
	// Name is the message type, e.g. CLIENT_CONNECT or RPT_REQUEST.
	Name string `cbor:"1,keyasint"`

	// Vector is the broker or RPT vector.
	Vector uint32 `cbor:"2,keyasint,omitempty"`

	// RPT addressing, set for RPT messages.
	SourceUID string `cbor:"3,keyasint,omitempty"`
	DestUID   string `cbor:"4,keyasint,omitempty"`
	Seqnum    uint32 `cbor:"5,keyasint,omitempty"`

	// RDM fields, set when an RDM command or response is carried.
	ParamID      *uint16 `cbor:"6,keyasint,omitempty"`
	CommandClass string  `cbor:"7,keyasint,omitempty"`
	ResponseType string  `cbor:"8,keyasint,omitempty"`

	// Code is a connect status, disconnect reason or RPT status code.
	Code *uint16 `cbor:"9,keyasint,omitempty"`

	// Entries is the number of client entries in a client list.
	Entries int `cbor:"10,keyasint,omitempty"`
}

// StateChangeEvent captures connection and scope lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a TCP connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntityScope indicates a client scope state change.
	StateEntityScope StateEntity = 1
	// StateEntityClient indicates a broker-side client registration change.
	StateEntityClient StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityScope:
		return "SCOPE"
	case StateEntityClient:
		return "CLIENT"
	default:
		return "UNKNOWN"
	}
}

// HeartbeatEvent captures heartbeat traffic.
type HeartbeatEvent struct {
	// Type of heartbeat event.
	Type HeartbeatType `cbor:"1,keyasint"`

	// Silence is how long the peer had been silent (timeouts only).
	Silence time.Duration `cbor:"2,keyasint,omitempty"`
}

// HeartbeatType indicates the type of heartbeat event.
type HeartbeatType uint8

const (
	// HeartbeatNull indicates a Null message.
	HeartbeatNull HeartbeatType = 0
	// HeartbeatTimeout indicates the peer was silent too long.
	HeartbeatTimeout HeartbeatType = 1
)

// String returns the heartbeat type name.
func (h HeartbeatType) String() string {
	switch h {
	case HeartbeatNull:
		return "NULL"
	case HeartbeatTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the error code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
