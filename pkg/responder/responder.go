package responder

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/version"
)

// RootSubdevice addresses the root device; AllSubdevices is the E1.20
// subdevice broadcast.
const (
	RootSubdevice uint16 = 0x0000
	AllSubdevices uint16 = 0xFFFF
)

// NackError makes a parameter handler answer with a NACK.
type NackError struct {
	Reason rdm.NackReason
}

// Error implements error.
func (e *NackError) Error() string {
	return fmt.Sprintf("nack: %s", e.Reason)
}

// Nack returns an error that is answered with reason.
func Nack(reason rdm.NackReason) error {
	return &NackError{Reason: reason}
}

// GetFunc answers a GET command with the parameter data.
type GetFunc func(cmd *rdm.Command) ([]byte, error)

// SetFunc applies a SET command. Returned data is sent in the ACK.
type SetFunc func(cmd *rdm.Command) ([]byte, error)

// Param describes one supported parameter. A nil Get or Set makes that
// command class unsupported.
type Param struct {
	PID uint16
	Get GetFunc
	Set SetFunc
}

// Responder answers RDM commands for one UID.
type Responder struct {
	mu     sync.RWMutex
	uid    rdm.UID
	role   string
	params map[uint16]*Param
	state  state

	onIdentify           func(on bool)
	onScopeChange        func(slot uint16, cfg ScopeConfig) error
	onSearchDomainChange func(domain string) error
	onResetTCPStats      func(scope string) error
	tcpCommsStatus       func() []TCPCommsEntry
	brokerStatus         func() BrokerStatus
	onBrokerStateChange  func(state BrokerState) error
}

// New creates a responder with the standard parameters for config.Role.
func New(config Config) *Responder {
	config = config.withDefaults()
	r := &Responder{
		uid:    config.UID,
		role:   config.Role,
		params: make(map[uint16]*Param),
		state:  newState(config),
	}
	r.registerStandard()
	return r
}

// UID returns the responder's UID.
func (r *Responder) UID() rdm.UID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.uid
}

// SetUID changes the responder's UID, e.g. after a dynamic assignment.
func (r *Responder) SetUID(uid rdm.UID) {
	r.mu.Lock()
	r.uid = uid
	r.mu.Unlock()
}

// Register adds or replaces a parameter.
func (r *Responder) Register(p Param) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := p
	r.params[p.PID] = &cp
}

// Unregister removes a parameter.
func (r *Responder) Unregister(pid uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.params, pid)
}

// SupportedPIDs returns every registered PID in ascending order.
func (r *Responder) SupportedPIDs() []uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pids := make([]uint16, 0, len(r.params))
	for pid := range r.params {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}

// Addressed reports whether a command sent to dest is for this responder.
func (r *Responder) Addressed(dest rdm.UID) bool {
	uid := r.UID()
	switch {
	case dest == uid:
		return true
	case dest.IsControllerBroadcast():
		return r.role == version.RoleController
	case dest.IsDeviceBroadcast():
		if m, ok := dest.IsDeviceManufacturerBroadcast(); ok {
			return r.role == version.RoleDevice && m == uid.Manufacturer
		}
		return r.role == version.RoleDevice
	case dest.Device == 0xFFFFFFFF:
		// E1.20 broadcast, to everyone or to one manufacturer.
		return dest.Manufacturer == 0xFFFF || dest.Manufacturer == uid.Manufacturer
	}
	return false
}

// Handle answers cmd. It returns nil when no response is due: the command
// is not addressed to this responder, or it was a broadcast. Long
// responses come back as several ACK_OVERFLOW fragments ending in an ACK.
func (r *Responder) Handle(cmd *rdm.Command) []*rdm.Response {
	if !r.Addressed(cmd.Dest) {
		return nil
	}
	uid := r.UID()
	broadcast := cmd.Dest != uid

	resps := r.handle(cmd)
	if broadcast {
		return nil
	}
	for _, resp := range resps {
		resp.Source = uid
	}
	return resps
}

func (r *Responder) handle(cmd *rdm.Command) []*rdm.Response {
	switch cmd.CommandClass {
	case rdm.CommandClassGet, rdm.CommandClassSet:
	default:
		return nack(cmd, rdm.NackUnsupportedCommandClass)
	}
	if cmd.Subdevice != RootSubdevice {
		return nack(cmd, rdm.NackSubDeviceOutOfRange)
	}

	r.mu.RLock()
	p, ok := r.params[cmd.ParamID]
	r.mu.RUnlock()
	if !ok {
		return nack(cmd, rdm.NackUnknownPID)
	}

	var (
		data []byte
		err  error
	)
	switch cmd.CommandClass {
	case rdm.CommandClassGet:
		if p.Get == nil {
			return nack(cmd, rdm.NackUnsupportedCommandClass)
		}
		data, err = p.Get(cmd)
	case rdm.CommandClassSet:
		if p.Set == nil {
			return nack(cmd, rdm.NackUnsupportedCommandClass)
		}
		data, err = p.Set(cmd)
	}

	if err != nil {
		var ne *NackError
		if errors.As(err, &ne) {
			return nack(cmd, ne.Reason)
		}
		return nack(cmd, rdm.NackHardwareFault)
	}
	return SplitResponse(cmd, data)
}

func nack(cmd *rdm.Command, reason rdm.NackReason) []*rdm.Response {
	return []*rdm.Response{rdm.NewNackResponse(cmd, reason)}
}

// SplitResponse builds the ACK for cmd, splitting data longer than one RDM
// message into ACK_OVERFLOW fragments followed by a final ACK.
func SplitResponse(cmd *rdm.Command, data []byte) []*rdm.Response {
	if len(data) <= rdm.MaxDataLen {
		return []*rdm.Response{rdm.NewAckResponse(cmd, data)}
	}
	var resps []*rdm.Response
	for len(data) > rdm.MaxDataLen {
		resps = append(resps, rdm.NewResponseTo(cmd, rdm.ResponseTypeAckOverflow, data[:rdm.MaxDataLen]))
		data = data[rdm.MaxDataLen:]
	}
	return append(resps, rdm.NewAckResponse(cmd, data))
}
