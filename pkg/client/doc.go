// Package client implements an RPT client: a Controller or Device that
// joins one or more scopes, finds each scope's broker (statically or via
// DNS-SD), keeps the broker connection alive and exchanges RDM messages
// through it.
//
// A Client owns the per-scope connection state machine. The actual TCP
// work is delegated to a Connector; TCPConnector is the implementation
// used outside tests. Connector and discovery events are fed back through
// the Handle* methods and the discovery.MonitorHandler methods, and are
// reported to the application through an EventHandler.
//
// Outgoing commands are correlated with their responses by sequence
// number and destination UID. ACK_OVERFLOW fragments are reassembled and
// SUPPORTED_PARAMETERS responses are completed with the baseline PIDs the
// responder's role must support.
package client
