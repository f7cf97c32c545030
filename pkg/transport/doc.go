// Package transport provides the RDMnet TCP transport.
//
// The transport layer handles:
//   - ACN TCP preamble framing
//   - Framed connections with blocking send and receive-with-timeout
//   - Broker listeners
//   - Heartbeat bookkeeping (Null messages and silence timeouts)
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   Broker / RPT PDUs (wire)     │
//	├────────────────────────────────┤
//	│   Root Layer PDUs              │
//	├────────────────────────────────┤
//	│   ACN TCP preamble (16B)       │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// # Heartbeat
//
// Both sides send a Null message when they have sent nothing else for
// 15 seconds. A peer that has been silent for 45 seconds is considered
// lost.
package transport
