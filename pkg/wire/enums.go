package wire

import "fmt"

// ClientProtocol identifies the protocol a client speaks over a broker.
type ClientProtocol uint32

// String returns the protocol name.
func (p ClientProtocol) String() string {
	switch p {
	case ClientProtocolRPT:
		return "RPT"
	case ClientProtocolEPT:
		return "EPT"
	default:
		return fmt.Sprintf("PROTOCOL(0x%08x)", uint32(p))
	}
}

// RPTClientType is the role of an RPT client.
type RPTClientType uint8

const (
	// RPTClientTypeDevice answers RDM commands.
	RPTClientTypeDevice RPTClientType = 0x00

	// RPTClientTypeController originates RDM commands.
	RPTClientTypeController RPTClientType = 0x01

	// RPTClientTypeUnknown is used before the type is known.
	RPTClientTypeUnknown RPTClientType = 0xFF
)

// String returns the client type name.
func (t RPTClientType) String() string {
	switch t {
	case RPTClientTypeDevice:
		return "DEVICE"
	case RPTClientTypeController:
		return "CONTROLLER"
	default:
		return "UNKNOWN"
	}
}

// ConnectStatus is the result code of a ConnectReply.
type ConnectStatus uint16

const (
	ConnectOK                 ConnectStatus = 0x0000
	ConnectScopeMismatch      ConnectStatus = 0x0001
	ConnectCapacityExceeded   ConnectStatus = 0x0002
	ConnectDuplicateUID       ConnectStatus = 0x0003
	ConnectInvalidClientEntry ConnectStatus = 0x0004
	ConnectInvalidUID         ConnectStatus = 0x0005
)

// String returns the connect status name.
func (s ConnectStatus) String() string {
	switch s {
	case ConnectOK:
		return "OK"
	case ConnectScopeMismatch:
		return "SCOPE_MISMATCH"
	case ConnectCapacityExceeded:
		return "CAPACITY_EXCEEDED"
	case ConnectDuplicateUID:
		return "DUPLICATE_UID"
	case ConnectInvalidClientEntry:
		return "INVALID_CLIENT_ENTRY"
	case ConnectInvalidUID:
		return "INVALID_UID"
	default:
		return fmt.Sprintf("CONNECT_STATUS(%d)", uint16(s))
	}
}

// IsFatal reports whether a client should stop retrying after this
// rejection. Only a full broker is worth retrying.
func (s ConnectStatus) IsFatal() bool {
	return s != ConnectOK && s != ConnectCapacityExceeded
}

// DisconnectReason is carried by a Broker Disconnect message.
type DisconnectReason uint16

const (
	DisconnectShutdown          DisconnectReason = 0x0000
	DisconnectCapacityExhausted DisconnectReason = 0x0001
	DisconnectHardwareFault     DisconnectReason = 0x0002
	DisconnectSoftwareFault     DisconnectReason = 0x0003
	DisconnectSoftwareReset     DisconnectReason = 0x0004
	DisconnectIncorrectScope    DisconnectReason = 0x0005
	DisconnectRPTReconfigure    DisconnectReason = 0x0006
	DisconnectLLRPReconfigure   DisconnectReason = 0x0007
	DisconnectUserReconfigure   DisconnectReason = 0x0008
)

// String returns the disconnect reason name.
func (r DisconnectReason) String() string {
	switch r {
	case DisconnectShutdown:
		return "SHUTDOWN"
	case DisconnectCapacityExhausted:
		return "CAPACITY_EXHAUSTED"
	case DisconnectHardwareFault:
		return "HARDWARE_FAULT"
	case DisconnectSoftwareFault:
		return "SOFTWARE_FAULT"
	case DisconnectSoftwareReset:
		return "SOFTWARE_RESET"
	case DisconnectIncorrectScope:
		return "INCORRECT_SCOPE"
	case DisconnectRPTReconfigure:
		return "RPT_RECONFIGURE"
	case DisconnectLLRPReconfigure:
		return "LLRP_RECONFIGURE"
	case DisconnectUserReconfigure:
		return "USER_RECONFIGURE"
	default:
		return fmt.Sprintf("DISCONNECT_REASON(%d)", uint16(r))
	}
}

// RPTStatusCode is carried by an RPT Status PDU.
type RPTStatusCode uint16

const (
	RPTStatusUnknownRPTUID       RPTStatusCode = 0x0001
	RPTStatusRDMTimeout          RPTStatusCode = 0x0002
	RPTStatusInvalidRDMResponse  RPTStatusCode = 0x0003
	RPTStatusUnknownRDMUID       RPTStatusCode = 0x0004
	RPTStatusUnknownEndpoint     RPTStatusCode = 0x0005
	RPTStatusBroadcastComplete   RPTStatusCode = 0x0006
	RPTStatusUnknownVector       RPTStatusCode = 0x0007
	RPTStatusInvalidMessage      RPTStatusCode = 0x0008
	RPTStatusInvalidCommandClass RPTStatusCode = 0x0009
)

// String returns the status code name.
func (c RPTStatusCode) String() string {
	switch c {
	case RPTStatusUnknownRPTUID:
		return "UNKNOWN_RPT_UID"
	case RPTStatusRDMTimeout:
		return "RDM_TIMEOUT"
	case RPTStatusInvalidRDMResponse:
		return "RDM_INVALID_RESPONSE"
	case RPTStatusUnknownRDMUID:
		return "UNKNOWN_RDM_UID"
	case RPTStatusUnknownEndpoint:
		return "UNKNOWN_ENDPOINT"
	case RPTStatusBroadcastComplete:
		return "BROADCAST_COMPLETE"
	case RPTStatusUnknownVector:
		return "UNKNOWN_VECTOR"
	case RPTStatusInvalidMessage:
		return "INVALID_MESSAGE"
	case RPTStatusInvalidCommandClass:
		return "INVALID_COMMAND_CLASS"
	default:
		return fmt.Sprintf("RPT_STATUS(%d)", uint16(c))
	}
}

// DynamicUIDStatus is the per-entry result in an AssignedDynamicUIDs list.
type DynamicUIDStatus uint16

const (
	DynamicUIDOK                DynamicUIDStatus = 0x0000
	DynamicUIDInvalidRequest    DynamicUIDStatus = 0x0001
	DynamicUIDNotFound          DynamicUIDStatus = 0x0002
	DynamicUIDDuplicateRID      DynamicUIDStatus = 0x0003
	DynamicUIDCapacityExhausted DynamicUIDStatus = 0x0004
)

// String returns the dynamic UID status name.
func (s DynamicUIDStatus) String() string {
	switch s {
	case DynamicUIDOK:
		return "OK"
	case DynamicUIDInvalidRequest:
		return "INVALID_REQUEST"
	case DynamicUIDNotFound:
		return "UID_NOT_FOUND"
	case DynamicUIDDuplicateRID:
		return "DUPLICATE_RID"
	case DynamicUIDCapacityExhausted:
		return "CAPACITY_EXHAUSTED"
	default:
		return fmt.Sprintf("DYNAMIC_UID_STATUS(%d)", uint16(s))
	}
}

// ClientListAction says how a receiver applies a client list.
type ClientListAction uint16

const (
	// ClientListReplace replaces the receiver's view (Connected Client List).
	ClientListReplace ClientListAction = ClientListAction(VectorBrokerConnectedClientList)

	// ClientListAdd adds entries.
	ClientListAdd ClientListAction = ClientListAction(VectorBrokerClientAdd)

	// ClientListRemove removes entries.
	ClientListRemove ClientListAction = ClientListAction(VectorBrokerClientRemove)

	// ClientListChange updates existing entries in place.
	ClientListChange ClientListAction = ClientListAction(VectorBrokerClientEntryChange)
)

// String returns the action name.
func (a ClientListAction) String() string {
	switch a {
	case ClientListReplace:
		return "REPLACE"
	case ClientListAdd:
		return "ADD"
	case ClientListRemove:
		return "REMOVE"
	case ClientListChange:
		return "CHANGE"
	default:
		return "UNKNOWN"
	}
}
