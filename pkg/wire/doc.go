// Package wire implements the ANSI E1.33 (RDMnet) TCP wire format.
//
// A TCP stream carries a sequence of blocks. Each block starts with the ACN
// TCP preamble (the 12-byte packet identifier "ASC-E1.17\0\0\0" and a 4-byte
// block length) followed by one or more Root Layer PDUs:
//
//	[flags+len:3][vector:4][sender CID:16][data]
//
// The root vector selects the data: Broker PDUs carry connection
// management, RPT PDUs carry RDM traffic between controllers and devices.
//
// # Length Encoding
//
// Every PDU starts with a 3-byte flags and length field. The high nibble
// holds the flags (always 0xF) and the remaining 20 bits hold the PDU
// length including the field itself.
//
// # Messages
//
// Decoded messages are Message values whose Payload is one of the concrete
// types in this package (ClientConnect, ConnectReply, ClientList,
// RPTMessage, ...). Unknown vectors decode to Unknown so the receiver can
// answer with a status instead of dropping the connection.
//
// # Packing
//
// BufSize returns the exact number of bytes Pack writes for a payload,
// including the TCP preamble. Pack never truncates: it fails with
// ErrBufferTooSmall when the buffer is short. Encode allocates a buffer of
// exactly BufSize bytes.
package wire
