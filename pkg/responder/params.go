package responder

import (
	"bytes"
	"encoding/binary"
	"net/netip"

	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/version"
)

// Parameter data sizes.
const (
	deviceInfoLen      = 19
	scopeFieldLen      = 63
	componentScopeLen  = 2 + scopeFieldLen + 1 + 4 + 16 + 2
	tcpCommsEntryLen   = scopeFieldLen + 4 + 16 + 2 + 2
	rdmProtocolVersion = 0x0100
	maxDMXAddress      = 512
)

// requiredPIDs are answered by every responder and, per E1.20, not
// listed in its own SUPPORTED_PARAMETERS.
var requiredPIDs = map[uint16]bool{
	rdm.PIDSupportedParameters:  true,
	rdm.PIDParameterDescription: true,
	rdm.PIDDeviceInfo:           true,
	rdm.PIDSoftwareVersionLabel: true,
	rdm.PIDDMXStartAddress:      true,
	rdm.PIDIdentifyDevice:       true,
}

// OnIdentify sets the callback for IDENTIFY_DEVICE changes.
func (r *Responder) OnIdentify(fn func(on bool)) {
	r.mu.Lock()
	r.onIdentify = fn
	r.mu.Unlock()
}

// OnScopeChange sets the callback for SET COMPONENT_SCOPE. Returning an
// error rejects the change.
func (r *Responder) OnScopeChange(fn func(slot uint16, cfg ScopeConfig) error) {
	r.mu.Lock()
	r.onScopeChange = fn
	r.mu.Unlock()
}

// OnSearchDomainChange sets the callback for SET SEARCH_DOMAIN.
func (r *Responder) OnSearchDomainChange(fn func(domain string) error) {
	r.mu.Lock()
	r.onSearchDomainChange = fn
	r.mu.Unlock()
}

// OnResetTCPStats sets the callback for SET TCP_COMMS_STATUS.
func (r *Responder) OnResetTCPStats(fn func(scope string) error) {
	r.mu.Lock()
	r.onResetTCPStats = fn
	r.mu.Unlock()
}

// SetTCPCommsStatusSource sets the provider of TCP_COMMS_STATUS records.
func (r *Responder) SetTCPCommsStatusSource(fn func() []TCPCommsEntry) {
	r.mu.Lock()
	r.tcpCommsStatus = fn
	r.mu.Unlock()
}

// SetBrokerStatusSource sets the provider of BROKER_STATUS.
func (r *Responder) SetBrokerStatusSource(fn func() BrokerStatus) {
	r.mu.Lock()
	r.brokerStatus = fn
	r.mu.Unlock()
}

// OnBrokerStateChange sets the callback for SET BROKER_STATUS.
func (r *Responder) OnBrokerStateChange(fn func(state BrokerState) error) {
	r.mu.Lock()
	r.onBrokerStateChange = fn
	r.mu.Unlock()
}

// SetScope updates the scope reported in COMPONENT_SCOPE slot 1.
func (r *Responder) SetScope(cfg ScopeConfig) {
	r.mu.Lock()
	r.state.config.Scope = cfg.Scope
	r.state.config.StaticBroker = cfg.StaticBroker
	r.mu.Unlock()
}

// SetSearchDomain updates the reported search domain.
func (r *Responder) SetSearchDomain(domain string) {
	r.mu.Lock()
	r.state.config.SearchDomain = domain
	r.mu.Unlock()
}

// Identifying reports the IDENTIFY_DEVICE state.
func (r *Responder) Identifying() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.identify
}

// DeviceLabel returns the current DEVICE_LABEL.
func (r *Responder) DeviceLabel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.config.DeviceLabel
}

func (r *Responder) registerStandard() {
	r.params[rdm.PIDSupportedParameters] = &Param{PID: rdm.PIDSupportedParameters, Get: r.getSupportedParameters}
	r.params[rdm.PIDDeviceInfo] = &Param{PID: rdm.PIDDeviceInfo, Get: r.getDeviceInfo}
	r.params[rdm.PIDDeviceModelDescription] = &Param{PID: rdm.PIDDeviceModelDescription, Get: r.getString(func(c *Config) string { return c.ModelDescription })}
	r.params[rdm.PIDManufacturerLabel] = &Param{PID: rdm.PIDManufacturerLabel, Get: r.getString(func(c *Config) string { return c.Manufacturer })}
	r.params[rdm.PIDSoftwareVersionLabel] = &Param{PID: rdm.PIDSoftwareVersionLabel, Get: r.getString(func(c *Config) string { return c.SoftwareLabel })}
	r.params[rdm.PIDDeviceLabel] = &Param{PID: rdm.PIDDeviceLabel, Get: r.getString(func(c *Config) string { return c.DeviceLabel }), Set: r.setDeviceLabel}
	r.params[rdm.PIDIdentifyDevice] = &Param{PID: rdm.PIDIdentifyDevice, Get: r.getIdentify, Set: r.setIdentify}
	r.params[rdm.PIDComponentScope] = &Param{PID: rdm.PIDComponentScope, Get: r.getComponentScope, Set: r.setComponentScope}
	r.params[rdm.PIDSearchDomain] = &Param{PID: rdm.PIDSearchDomain, Get: r.getString(func(c *Config) string { return c.SearchDomain }), Set: r.setSearchDomain}
	r.params[rdm.PIDTCPCommsStatus] = &Param{PID: rdm.PIDTCPCommsStatus, Get: r.getTCPCommsStatus, Set: r.setTCPCommsStatus}

	switch r.role {
	case version.RoleDevice:
		r.params[rdm.PIDDMXStartAddress] = &Param{PID: rdm.PIDDMXStartAddress, Get: r.getStartAddress, Set: r.setStartAddress}
		r.params[rdm.PIDEndpointList] = &Param{PID: rdm.PIDEndpointList, Get: r.getEndpointChange}
		r.params[rdm.PIDEndpointListChange] = &Param{PID: rdm.PIDEndpointListChange, Get: r.getEndpointChange}
		r.params[rdm.PIDEndpointResponders] = &Param{PID: rdm.PIDEndpointResponders, Get: r.getNoEndpoint}
		r.params[rdm.PIDEndpointResponderListChange] = &Param{PID: rdm.PIDEndpointResponderListChange, Get: r.getNoEndpoint}
	case version.RoleBroker:
		r.params[rdm.PIDBrokerStatus] = &Param{PID: rdm.PIDBrokerStatus, Get: r.getBrokerStatus, Set: r.setBrokerStatus}
	}
}

func (r *Responder) getSupportedParameters(cmd *rdm.Command) ([]byte, error) {
	var data []byte
	for _, pid := range r.SupportedPIDs() {
		if requiredPIDs[pid] {
			continue
		}
		data = binary.BigEndian.AppendUint16(data, pid)
	}
	return data, nil
}

func (r *Responder) getDeviceInfo(cmd *rdm.Command) ([]byte, error) {
	r.mu.RLock()
	c := r.state.config
	r.mu.RUnlock()

	b := make([]byte, deviceInfoLen)
	binary.BigEndian.PutUint16(b[0:2], rdmProtocolVersion)
	binary.BigEndian.PutUint16(b[2:4], c.ModelID)
	binary.BigEndian.PutUint16(b[4:6], c.ProductCategory)
	binary.BigEndian.PutUint32(b[6:10], version.SoftwareVersionID())
	binary.BigEndian.PutUint16(b[10:12], c.DMXFootprint)
	if c.DMXFootprint > 0 {
		b[12], b[13] = 1, 1
		binary.BigEndian.PutUint16(b[14:16], c.DMXStartAddress)
	} else {
		binary.BigEndian.PutUint16(b[14:16], 0xFFFF)
	}
	return b, nil
}

func (r *Responder) getString(field func(*Config) string) GetFunc {
	return func(cmd *rdm.Command) ([]byte, error) {
		r.mu.RLock()
		s := field(&r.state.config)
		r.mu.RUnlock()
		return []byte(s), nil
	}
}

func (r *Responder) setDeviceLabel(cmd *rdm.Command) ([]byte, error) {
	if len(cmd.Data) > MaxLabelLen {
		return nil, Nack(rdm.NackFormatError)
	}
	r.mu.Lock()
	r.state.config.DeviceLabel = string(cmd.Data)
	r.mu.Unlock()
	return nil, nil
}

func (r *Responder) getIdentify(cmd *rdm.Command) ([]byte, error) {
	if r.Identifying() {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

func (r *Responder) setIdentify(cmd *rdm.Command) ([]byte, error) {
	if len(cmd.Data) != 1 {
		return nil, Nack(rdm.NackFormatError)
	}
	if cmd.Data[0] > 1 {
		return nil, Nack(rdm.NackDataOutOfRange)
	}
	on := cmd.Data[0] == 1

	r.mu.Lock()
	r.state.identify = on
	fn := r.onIdentify
	r.mu.Unlock()

	if fn != nil {
		fn(on)
	}
	return nil, nil
}

func (r *Responder) getStartAddress(cmd *rdm.Command) ([]byte, error) {
	r.mu.RLock()
	c := r.state.config
	r.mu.RUnlock()

	addr := c.DMXStartAddress
	if c.DMXFootprint == 0 {
		addr = 0xFFFF
	}
	return binary.BigEndian.AppendUint16(nil, addr), nil
}

func (r *Responder) setStartAddress(cmd *rdm.Command) ([]byte, error) {
	if len(cmd.Data) != 2 {
		return nil, Nack(rdm.NackFormatError)
	}
	addr := binary.BigEndian.Uint16(cmd.Data)

	r.mu.Lock()
	defer r.mu.Unlock()
	c := &r.state.config
	if c.DMXFootprint == 0 || addr == 0 || int(addr)+int(c.DMXFootprint)-1 > maxDMXAddress {
		return nil, Nack(rdm.NackDataOutOfRange)
	}
	c.DMXStartAddress = addr
	return nil, nil
}

func (r *Responder) getComponentScope(cmd *rdm.Command) ([]byte, error) {
	if len(cmd.Data) != 2 {
		return nil, Nack(rdm.NackFormatError)
	}
	slot := binary.BigEndian.Uint16(cmd.Data)
	if slot != 1 {
		return nil, Nack(rdm.NackDataOutOfRange)
	}

	r.mu.RLock()
	c := r.state.config
	r.mu.RUnlock()
	return packComponentScope(slot, ScopeConfig{Scope: c.Scope, StaticBroker: c.StaticBroker}), nil
}

func (r *Responder) setComponentScope(cmd *rdm.Command) ([]byte, error) {
	slot, cfg, err := parseComponentScope(cmd.Data)
	if err != nil {
		return nil, err
	}
	if slot != 1 {
		return nil, Nack(rdm.NackDataOutOfRange)
	}

	r.mu.RLock()
	fn := r.onScopeChange
	r.mu.RUnlock()
	if fn != nil {
		if err := fn(slot, cfg); err != nil {
			return nil, err
		}
	}
	r.SetScope(cfg)
	return nil, nil
}

func (r *Responder) setSearchDomain(cmd *rdm.Command) ([]byte, error) {
	if len(cmd.Data) > MaxSearchDomainLen {
		return nil, Nack(rdm.NackFormatError)
	}
	domain := string(cmd.Data)

	r.mu.RLock()
	fn := r.onSearchDomainChange
	r.mu.RUnlock()
	if fn != nil {
		if err := fn(domain); err != nil {
			return nil, err
		}
	}
	r.SetSearchDomain(domain)
	return nil, nil
}

func (r *Responder) getTCPCommsStatus(cmd *rdm.Command) ([]byte, error) {
	r.mu.RLock()
	fn := r.tcpCommsStatus
	r.mu.RUnlock()
	if fn == nil {
		return nil, nil
	}

	entries := fn()
	data := make([]byte, 0, len(entries)*tcpCommsEntryLen)
	for _, e := range entries {
		b := make([]byte, tcpCommsEntryLen)
		putPadded(b[:scopeFieldLen], e.Scope)
		putAddr(b[scopeFieldLen:], e.BrokerAddr)
		binary.BigEndian.PutUint16(b[scopeFieldLen+22:], e.UnhealthyEvents)
		data = append(data, b...)
	}
	return data, nil
}

func (r *Responder) setTCPCommsStatus(cmd *rdm.Command) ([]byte, error) {
	if len(cmd.Data) != scopeFieldLen {
		return nil, Nack(rdm.NackFormatError)
	}
	scope := getPadded(cmd.Data)

	r.mu.RLock()
	fn := r.onResetTCPStats
	r.mu.RUnlock()
	if fn != nil {
		if err := fn(scope); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (r *Responder) getBrokerStatus(cmd *rdm.Command) ([]byte, error) {
	r.mu.RLock()
	fn := r.brokerStatus
	r.mu.RUnlock()

	status := BrokerStatus{State: BrokerStateActive}
	if fn != nil {
		status = fn()
	}
	b := []byte{0, byte(status.State)}
	if status.SetAllowed {
		b[0] = 1
	}
	return b, nil
}

func (r *Responder) setBrokerStatus(cmd *rdm.Command) ([]byte, error) {
	if len(cmd.Data) != 1 {
		return nil, Nack(rdm.NackFormatError)
	}
	st := BrokerState(cmd.Data[0])
	if st > BrokerStateStandby {
		return nil, Nack(rdm.NackDataOutOfRange)
	}

	r.mu.RLock()
	fn := r.onBrokerStateChange
	r.mu.RUnlock()
	if fn == nil {
		return nil, Nack(rdm.NackWriteProtect)
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	return nil, nil
}

func (r *Responder) getEndpointChange(cmd *rdm.Command) ([]byte, error) {
	r.mu.RLock()
	n := r.state.endpointChange
	r.mu.RUnlock()
	return binary.BigEndian.AppendUint32(nil, n), nil
}

func (r *Responder) getNoEndpoint(cmd *rdm.Command) ([]byte, error) {
	if len(cmd.Data) != 2 {
		return nil, Nack(rdm.NackFormatError)
	}
	return nil, Nack(rdm.NackEndpointNumberInvalid)
}

func packComponentScope(slot uint16, cfg ScopeConfig) []byte {
	b := make([]byte, componentScopeLen)
	binary.BigEndian.PutUint16(b[0:2], slot)
	putPadded(b[2:2+scopeFieldLen], cfg.Scope)
	off := 2 + scopeFieldLen
	switch {
	case cfg.StaticBroker.Addr().Is4():
		b[off] = byte(StaticConfigIPv4)
	case cfg.StaticBroker.IsValid():
		b[off] = byte(StaticConfigIPv6)
	default:
		b[off] = byte(StaticConfigNone)
	}
	putAddr(b[off+1:], cfg.StaticBroker)
	return b
}

func parseComponentScope(b []byte) (uint16, ScopeConfig, error) {
	if len(b) != componentScopeLen {
		return 0, ScopeConfig{}, Nack(rdm.NackFormatError)
	}
	slot := binary.BigEndian.Uint16(b[0:2])
	cfg := ScopeConfig{Scope: getPadded(b[2 : 2+scopeFieldLen])}
	if cfg.Scope == "" || len(cfg.Scope) > MaxScopeLen {
		return 0, ScopeConfig{}, Nack(rdm.NackFormatError)
	}

	off := 2 + scopeFieldLen
	a := b[off+1:]
	port := binary.BigEndian.Uint16(a[20:22])
	switch StaticConfigType(b[off]) {
	case StaticConfigNone:
	case StaticConfigIPv4:
		if port == 0 {
			return 0, ScopeConfig{}, Nack(rdm.NackInvalidPort)
		}
		cfg.StaticBroker = netip.AddrPortFrom(netip.AddrFrom4([4]byte(a[0:4])), port)
	case StaticConfigIPv6:
		if port == 0 {
			return 0, ScopeConfig{}, Nack(rdm.NackInvalidPort)
		}
		cfg.StaticBroker = netip.AddrPortFrom(netip.AddrFrom16([16]byte(a[4:20])), port)
	default:
		return 0, ScopeConfig{}, Nack(rdm.NackInvalidStaticConfigType)
	}
	return slot, cfg, nil
}

// putAddr writes IPv4(4) + IPv6(16) + port(2) with the unused family zeroed.
func putAddr(b []byte, ap netip.AddrPort) {
	if !ap.IsValid() {
		return
	}
	if ap.Addr().Is4() {
		v4 := ap.Addr().As4()
		copy(b[0:4], v4[:])
	} else {
		v6 := ap.Addr().As16()
		copy(b[4:20], v6[:])
	}
	binary.BigEndian.PutUint16(b[20:22], ap.Port())
}

func putPadded(b []byte, s string) {
	n := copy(b[:len(b)-1], s)
	clear(b[n:])
}

func getPadded(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
