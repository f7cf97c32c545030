package client

import (
	"net/netip"

	"github.com/ETCLabs/rdmnet-go/pkg/discovery"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
)

// Connector performs the network side of a scope's broker connection.
//
// Connect is asynchronous: the outcome is reported through the
// ConnectionEvents the connector is bound to. Every attempt after the
// first for a handle is delayed by the connector's backoff.
type Connector interface {
	// Connect starts an attempt to connect to the broker at addr and
	// introduce the client with msg.
	Connect(h ScopeHandle, addr netip.AddrPort, msg *wire.ClientConnect) error

	// Disconnect sends a Disconnect message with reason, closes the
	// connection and cancels any attempt in progress. No events are
	// reported for a local disconnect.
	Disconnect(h ScopeHandle, reason wire.DisconnectReason) error

	// Send sends a message on the scope's connection.
	Send(h ScopeHandle, p wire.Payload) error
}

// ConnectionEvents receives connector outcomes. Client implements it.
type ConnectionEvents interface {
	HandleConnected(h ScopeHandle, info ConnectedInfo)
	HandleConnectFailed(h ScopeHandle, info ConnectFailedInfo)
	HandleDisconnected(h ScopeHandle, info DisconnectedInfo)
	HandleMessage(h ScopeHandle, msg wire.Message)
}

// EventBinder is implemented by connectors that report to ConnectionEvents.
// New binds such a connector to the client.
type EventBinder interface {
	Bind(events ConnectionEvents)
}

// EventHandler receives client events. Methods are never called with the
// client lock held and may call back into the client.
type EventHandler interface {
	// Connected reports a successful broker connection.
	Connected(h ScopeHandle, ev ConnectedEvent)

	// ConnectFailed reports a failed attempt.
	ConnectFailed(h ScopeHandle, ev ConnectFailedEvent)

	// Disconnected reports the end of a connection.
	Disconnected(h ScopeHandle, ev DisconnectedEvent)

	// ClientListUpdate reports a complete client list or change.
	ClientListUpdate(h ScopeHandle, action wire.ClientListAction, entries []wire.ClientEntry)

	// DynamicUIDsAssigned reports the broker's answer to a dynamic UID
	// request or list fetch.
	DynamicUIDsAssigned(h ScopeHandle, mappings []wire.DynamicUIDMapping)

	// RDMResponse reports a complete response.
	RDMResponse(h ScopeHandle, res *ResponseResult)

	// RPTStatus reports a status for a request.
	RPTStatus(h ScopeHandle, st *StatusResult)

	// RDMCommand delivers a command to a Device configured with
	// RawCommands. The application answers with SendResponse.
	RDMCommand(h ScopeHandle, cmd *rdm.Command, hdr wire.RPTHeader)
}

var (
	_ ConnectionEvents         = (*Client)(nil)
	_ discovery.MonitorHandler = (*Client)(nil)
	_ Connector                = (*TCPConnector)(nil)
	_ EventBinder              = (*TCPConnector)(nil)
)
