package client

import (
	"encoding/binary"
	"fmt"

	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/version"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
)

// AssemblyState is the outcome of feeding one response to a
// ResponseAssembler.
type AssemblyState uint8

const (
	// AssemblyIncomplete means more fragments are expected.
	AssemblyIncomplete AssemblyState = iota

	// AssemblyTimer means the responder answered ACK_TIMER; the request
	// stays outstanding.
	AssemblyTimer

	// AssemblyComplete means the final fragment arrived.
	AssemblyComplete

	// AssemblyFailed means a fragment could not be used. The data
	// collected so far is kept and marked partial.
	AssemblyFailed
)

// String returns the state name.
func (s AssemblyState) String() string {
	switch s {
	case AssemblyIncomplete:
		return "INCOMPLETE"
	case AssemblyTimer:
		return "TIMER"
	case AssemblyComplete:
		return "COMPLETE"
	case AssemblyFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// ResponseAssembler concatenates ACK_OVERFLOW fragments in arrival order.
type ResponseAssembler struct {
	max       int
	started   bool
	pid       uint16
	class     rdm.CommandClass
	last      *rdm.Response
	data      []byte
	fragments int
	partial   bool
	err       error
}

// NewResponseAssembler returns an assembler keeping at most maxBytes of
// parameter data.
func NewResponseAssembler(maxBytes int) *ResponseAssembler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxAckOverflowBytes
	}
	return &ResponseAssembler{max: maxBytes}
}

// Add feeds the next response.
func (a *ResponseAssembler) Add(resp *rdm.Response) AssemblyState {
	if a.started && (resp.ParamID != a.pid || resp.CommandClass != a.class) {
		a.fail(fmt.Errorf("%w: got %s %s, want %s %s", ErrFragmentMismatch,
			resp.CommandClass, rdm.PIDName(resp.ParamID), a.class, rdm.PIDName(a.pid)))
		return AssemblyFailed
	}

	switch resp.ResponseType {
	case rdm.ResponseTypeAckTimer:
		if a.fragments > 0 {
			a.fail(fmt.Errorf("%w: ACK_TIMER inside overflow sequence", ErrFragmentMismatch))
			return AssemblyFailed
		}
		a.last = resp
		return AssemblyTimer
	case rdm.ResponseTypeAckOverflow:
		a.start(resp)
		a.append(resp.Data)
		a.fragments++
		return AssemblyIncomplete
	case rdm.ResponseTypeAck:
		a.start(resp)
		a.append(resp.Data)
		a.fragments++
		return AssemblyComplete
	case rdm.ResponseTypeNackReason:
		a.start(resp)
		if a.fragments > 0 {
			a.partial = true
		}
		a.data = append([]byte(nil), resp.Data...)
		return AssemblyComplete
	default:
		a.fail(fmt.Errorf("%w: response type %d", rdm.ErrInvalidResponseType, resp.ResponseType))
		return AssemblyFailed
	}
}

// Fail marks the assembly as failed with err, keeping the data so far.
func (a *ResponseAssembler) Fail(err error) {
	a.fail(err)
}

func (a *ResponseAssembler) fail(err error) {
	a.partial = true
	if a.err == nil {
		a.err = err
	}
}

func (a *ResponseAssembler) start(resp *rdm.Response) {
	if !a.started {
		a.started = true
		a.pid = resp.ParamID
		a.class = resp.CommandClass
	}
	a.last = resp
}

func (a *ResponseAssembler) append(data []byte) {
	room := a.max - len(a.data)
	if len(data) > room {
		if room > 0 {
			a.data = append(a.data, data[:room]...)
		}
		a.fail(fmt.Errorf("%w: limit %d bytes", ErrOverflowCapacity, a.max))
		return
	}
	a.data = append(a.data, data...)
}

// Data returns the concatenated parameter data.
func (a *ResponseAssembler) Data() []byte { return a.data }

// Last returns the most recent response fed to the assembler.
func (a *ResponseAssembler) Last() *rdm.Response { return a.last }

// Fragments returns the number of data-carrying fragments received.
func (a *ResponseAssembler) Fragments() int { return a.fragments }

// Partial reports whether Data is incomplete.
func (a *ResponseAssembler) Partial() bool { return a.partial }

// Err returns the reason Data is partial.
func (a *ResponseAssembler) Err() error { return a.err }

// BaselinePIDs returns the PIDs every component of role must support,
// from the current version profile.
func BaselinePIDs(role string) []uint16 {
	return version.CurrentProfile().Baseline(role)
}

// AugmentSupportedParameters returns SUPPORTED_PARAMETERS data with every
// baseline PID present exactly once. Reported order is kept and missing
// baseline PIDs are appended. A trailing odd byte is dropped.
func AugmentSupportedParameters(data []byte, baseline []uint16) []byte {
	seen := make(map[uint16]bool, len(data)/2+len(baseline))
	out := make([]byte, 0, len(data)+2*len(baseline))
	add := func(pid uint16) {
		if seen[pid] {
			return
		}
		seen[pid] = true
		out = binary.BigEndian.AppendUint16(out, pid)
	}
	for i := 0; i+1 < len(data); i += 2 {
		add(binary.BigEndian.Uint16(data[i:]))
	}
	for _, pid := range baseline {
		add(pid)
	}
	return out
}

// ParsePIDList decodes a SUPPORTED_PARAMETERS payload.
func ParsePIDList(data []byte) []uint16 {
	pids := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		pids = append(pids, binary.BigEndian.Uint16(data[i:]))
	}
	return pids
}

// ClientListAssembler joins the chunks of a client list. Chunks with
// Partial set are held until the final chunk of the same action arrives.
type ClientListAssembler struct {
	action  wire.ClientListAction
	entries []wire.ClientEntry
	active  bool
}

// Add feeds one chunk. It returns the complete list when l is the final
// chunk. A chunk with a different action discards a held partial list.
func (a *ClientListAssembler) Add(l *wire.ClientList) (wire.ClientListAction, []wire.ClientEntry, bool) {
	if a.active && a.action != l.Action {
		a.Reset()
	}
	if !a.active {
		a.active = true
		a.action = l.Action
	}
	a.entries = append(a.entries, l.Entries...)
	if l.Partial {
		return 0, nil, false
	}
	action, entries := a.action, a.entries
	a.Reset()
	return action, entries, true
}

// Reset drops any held chunks.
func (a *ClientListAssembler) Reset() {
	a.active = false
	a.entries = nil
}
