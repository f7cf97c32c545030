// Package connection provides connection lifecycle helpers for RDMnet
// clients.
//
// This package handles:
//   - Exponential backoff between broker connection attempts
//   - Jitter to prevent thundering herd after a broker restart
//   - The per-scope connection state machine
//
// # Scope States
//
//	IDLE -> DISCOVERING -> CONNECTING -> CONNECTED
//	                            |            |
//	                            v            v
//	                         RETRYING <------+
//	                            |
//	                            v
//	                          FATAL
//
// A static scope skips DISCOVERING. FATAL is left only by reconfiguring the
// scope, which resets it to IDLE.
//
// # Backoff
//
// Delays start at 1 second and double up to 30 seconds:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
//
// The backoff is reset after a broker accepts the connection.
package connection
