package log

import (
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter specifies criteria for filtering capture events.
// Empty/nil fields match all events for that criterion.
type Filter struct {
	// ConnectionID filters by exact connection ID match.
	ConnectionID string

	// Direction filters by message direction.
	Direction *Direction

	// Layer filters by protocol layer (Transport, Broker, RPT, RDM).
	Layer *Layer

	// Category filters by event category.
	Category *Category

	// TimeStart filters events at or after this time.
	TimeStart *time.Time

	// TimeEnd filters events before this time.
	TimeEnd *time.Time

	// Scope filters by RDMnet scope.
	Scope string

	// PeerUID filters by remote RPT UID.
	PeerUID string

	// CID keeps only sessions written by the component with this CID.
	CID string

	// UID matches messages sent from or to this UID, and events whose
	// peer has it.
	UID string

	// Seqnum filters RPT messages by sequence number.
	Seqnum *uint32

	// ParamID filters messages carrying this RDM parameter.
	ParamID *uint16
}

// matchesSession reports whether events of the session h can match.
func (f *Filter) matchesSession(h *CaptureHeader) bool {
	return f.CID == "" || h.CID == f.CID
}

// matches returns true if the event matches all event criteria.
func (f *Filter) matches(event Event) bool {
	if f.ConnectionID != "" && event.ConnectionID != f.ConnectionID {
		return false
	}
	if f.Direction != nil && event.Direction != *f.Direction {
		return false
	}
	if f.Layer != nil && event.Layer != *f.Layer {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	if f.Scope != "" && event.Scope != f.Scope {
		return false
	}
	if f.PeerUID != "" && event.PeerUID != f.PeerUID {
		return false
	}
	if f.UID != "" && !involvesUID(event, f.UID) {
		return false
	}
	if f.Seqnum != nil && (event.Message == nil || event.Message.Seqnum != *f.Seqnum) {
		return false
	}
	if f.ParamID != nil {
		m := event.Message
		if m == nil || m.ParamID == nil || *m.ParamID != *f.ParamID {
			return false
		}
	}
	return true
}

func involvesUID(event Event, uid string) bool {
	if event.PeerUID == uid {
		return true
	}
	m := event.Message
	return m != nil && (m.SourceUID == uid || m.DestUID == uid)
}

// Reader reads protocol events from a capture file. It provides an
// iterator interface for streaming large files.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter
	header  *CaptureHeader
	skip    bool
}

// NewReader creates a Reader that reads all events from the specified capture file.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader creates a Reader that reads events matching the filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		file:    f,
		decoder: logDecMode.NewDecoder(f),
		filter:  filter,
	}, nil
}

// Next returns the next event that matches the filter.
// Returns io.EOF when no more events are available. A stream that does not
// start with a session header yields ErrNotCapture.
func (r *Reader) Next() (Event, error) {
	for {
		rec, err := readRecord(r.decoder)
		if err != nil {
			return Event{}, err
		}

		if rec.header != nil {
			if err := rec.header.validate(); err != nil {
				return Event{}, err
			}
			r.header = rec.header
			r.skip = !r.filter.matchesSession(rec.header)
			continue
		}
		if r.header == nil {
			return Event{}, ErrNotCapture
		}
		if !r.skip && r.filter.matches(rec.event) {
			return rec.event, nil
		}
	}
}

// Header returns the header of the session the last event belongs to, or
// nil before the first event.
func (r *Reader) Header() *CaptureHeader {
	return r.header
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
