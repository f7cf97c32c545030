// Package log captures RDMnet protocol events for debugging and analysis.
//
// It is separate from operational logging (slog): a protocol capture is a
// complete machine-readable trace of what crossed the wire and how each
// connection and scope changed state.
//
// # Basic Usage
//
//	// Console output while developing
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Capture file, one session per run
//	file, _ := log.NewFileLogger("/var/log/rdmnet/broker.rlog",
//		log.CaptureHeader{Role: log.RoleBroker, CID: cid.String(), Scope: "default"})
//
//	// Both
//	cfg.ProtocolLogger = log.Tee(console, file)
//
// # Layers
//
// Events are tagged with the layer that produced them: Transport (raw TCP
// blocks), Broker (connect handshake, client lists, Null), RPT (request,
// status, notification) and RDM.
//
// # File Format
//
// Capture files use the .rlog extension. They are a stream of CBOR items:
// each session starts with a CaptureHeader wrapped in CBOR tag 0x524C4F47
// ("RLOG"), followed by events encoded as maps with integer keys. A Reader
// refuses streams that do not open with a header. cmd/rdmnet-log reads and
// filters them.
package log
