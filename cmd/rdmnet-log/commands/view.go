package commands

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/ETCLabs/rdmnet-go/pkg/log"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
)

// RunView prints the matching events of path in human-readable form, each
// session introduced by a banner naming the component that wrote it.
func RunView(path string, filter log.Filter, w io.Writer) error {
	session := func(h log.CaptureHeader) error {
		fmt.Fprintf(w, "=== Session: %s ===\n\n", sessionLabel(h))
		return nil
	}
	return eachEvent(path, filter, session, func(event log.Event) error {
		formatEvent(w, event)
		return nil
	})
}

// sessionLabel describes the component and start time of a session.
func sessionLabel(h log.CaptureHeader) string {
	label := fmt.Sprintf("%s cid=%s", h.Role, orDash(h.CID))
	if h.Scope != "" {
		label += fmt.Sprintf(" scope=%q", h.Scope)
	}
	label += " started " + h.Started.UTC().Format(timestampFormat)
	if h.Library != "" {
		label += " (rdmnet-go " + h.Library + ")"
	}
	return label
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [conn:id] DIRECTION LAYER label
	ts := event.Timestamp.UTC().Format(timestampFormat)
	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s\n", ts, shortenConnID(event.ConnectionID),
		event.Direction, event.Layer, eventLabel(event))

	if event.Scope != "" || event.PeerUID != "" || event.RemoteAddr != "" {
		fmt.Fprintf(w, "  Peer: %s", event.RemoteAddr)
		if event.PeerUID != "" {
			fmt.Fprintf(w, " uid=%s", event.PeerUID)
		}
		if event.Scope != "" {
			fmt.Fprintf(w, " scope=%q", event.Scope)
		}
		fmt.Fprintln(w)
	}

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Message != nil:
		formatMessageDetails(w, event.Message)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Heartbeat != nil:
		if event.Heartbeat.Silence > 0 {
			fmt.Fprintf(w, "  Silence: %s\n", event.Heartbeat.Silence)
		}
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprint(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

func formatMessageDetails(w io.Writer, msg *log.MessageEvent) {
	if msg.Vector != 0 {
		fmt.Fprintf(w, "  Vector: 0x%04X\n", msg.Vector)
	}
	if msg.SourceUID != "" || msg.DestUID != "" {
		fmt.Fprintf(w, "  %s -> %s", orDash(msg.SourceUID), orDash(msg.DestUID))
		if msg.Seqnum != 0 {
			fmt.Fprintf(w, " seq=%d", msg.Seqnum)
		}
		fmt.Fprintln(w)
	}
	if msg.ParamID != nil {
		fmt.Fprintf(w, "  RDM: %s %s", msg.CommandClass, rdm.PIDName(*msg.ParamID))
		if msg.ResponseType != "" {
			fmt.Fprintf(w, " %s", msg.ResponseType)
		}
		fmt.Fprintln(w)
	}
	if msg.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *msg.Code)
	}
	if msg.Entries > 0 {
		fmt.Fprintf(w, "  Entries: %d\n", msg.Entries)
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
