// Package commands implements the rdmnet-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ETCLabs/rdmnet-go/pkg/log"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
)

// FilterOptions holds the filter flags shared by all commands. Empty
// fields match everything.
type FilterOptions struct {
	ConnID    string
	Scope     string
	PeerUID   string
	TimeStart string
	TimeEnd   string
	Layer     string
	Direction string
	Category  string
	CID       string
	UID       string
	Seqnum    string
	PID       string
}

// Build converts the flags into a reader filter.
func (o FilterOptions) Build() (log.Filter, error) {
	filter := log.Filter{
		ConnectionID: o.ConnID,
		Scope:        o.Scope,
	}

	if o.CID != "" {
		cid, err := uuid.Parse(o.CID)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid cid: %w", err)
		}
		filter.CID = cid.String()
	}
	if o.UID != "" {
		uid, err := rdm.ParseUID(o.UID)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid uid: %w", err)
		}
		filter.UID = uid.String()
	}
	if o.Seqnum != "" {
		n, err := strconv.ParseUint(o.Seqnum, 0, 32)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid seqnum: %w", err)
		}
		seq := uint32(n)
		filter.Seqnum = &seq
	}
	if o.PID != "" {
		pid, err := rdm.ParsePID(o.PID)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid pid: %w", err)
		}
		filter.ParamID = &pid
	}

	if o.PeerUID != "" {
		uid, err := rdm.ParseUID(o.PeerUID)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid peer-uid: %w", err)
		}
		filter.PeerUID = uid.String()
	}
	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}
	if o.Layer != "" {
		l, err := parseLayer(o.Layer)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Layer = &l
	}
	if o.Direction != "" {
		d, err := parseDirection(o.Direction)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Direction = &d
	}
	if o.Category != "" {
		c, err := parseCategory(o.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}
	return filter, nil
}

func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "broker":
		return log.LayerBroker, nil
	case "rpt":
		return log.LayerRPT, nil
	case "rdm":
		return log.LayerRDM, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, broker, rpt or rdm)", s)
	}
}

func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "heartbeat":
		return log.CategoryHeartbeat, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, heartbeat, state or error)", s)
	}
}

// eachEvent calls fn for every event of path that passes filter. When
// session is not nil it is called with each session header before the
// first matching event of that session.
func eachEvent(path string, filter log.Filter, session func(log.CaptureHeader) error, fn func(log.Event) error) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var current *log.CaptureHeader
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if h := reader.Header(); session != nil && h != current {
			current = h
			if err := session(*h); err != nil {
				return err
			}
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}

// eventLabel names the payload of an event.
func eventLabel(event log.Event) string {
	switch {
	case event.Frame != nil:
		return "Frame"
	case event.Message != nil:
		return event.Message.Name
	case event.StateChange != nil:
		return "State"
	case event.Heartbeat != nil:
		return "Heartbeat " + event.Heartbeat.Type.String()
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

const timestampFormat = "2006-01-02T15:04:05.000000Z"
