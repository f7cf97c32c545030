// Package rdm implements the ANSI E1.20 Remote Device Management message
// format as it is carried inside RDMnet.
//
// # Message Layout
//
// Every RDM message is a 24-byte header, up to 231 bytes of parameter data
// and a 2-byte checksum:
//
//	[0xCC start][0xF1 sub-start][len][dest:6][src:6][tn][port/resp type]
//	[msg count][subdevice:2][cmd class][pid:2][pdl][data:pdl][checksum:2]
//
// The length field covers the header and parameter data but not the
// checksum. The checksum is the 16-bit sum of every preceding byte.
//
// # Commands and Responses
//
// Command and Response are immutable value types. PackCommand and
// PackResponse write into a caller-supplied buffer and fail with
// ErrBufferTooSmall rather than truncating. UnpackCommand and UnpackResponse
// run ValidateMessage before decoding.
//
// # Parameter IDs
//
// PID constants for the E1.20 and E1.33 parameters used by RDMnet are in
// pids.go. PIDName is generated from pids.yaml by cmd/rdmnet-pidgen.
package rdm
