package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/ETCLabs/rdmnet-go/pkg/version"
	"github.com/enbility/zeroconf/v3"
)

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		TTL: 120 * time.Second,
	}
}

// MDNSAdvertiser implements Advertiser using zeroconf.
type MDNSAdvertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) *MDNSAdvertiser {
	return &MDNSAdvertiser{config: config}
}

// RegisterBroker starts advertising the broker on _rdmnet._tcp with the
// scope subtype.
func (a *MDNSAdvertiser) RegisterBroker(ctx context.Context, info *RegisterInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	txt := TXTRecordsToStrings(EncodeBrokerTXT(info, version.E133Version))

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		info.ServiceInstanceName,
		ServiceType+","+SubtypeFor(info.Scope),
		Domain,
		int(info.Port),
		txt,
		selectInterfaces(a.config.Interface),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register broker service: %w", err)
	}
	a.server = server
	return nil
}

// UnregisterBroker withdraws the registration.
func (a *MDNSAdvertiser) UnregisterBroker() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotRegistered
	}
	a.server.Shutdown()
	a.server = nil
	return nil
}

// IsRegistered reports whether a registration is active.
func (a *MDNSAdvertiser) IsRegistered() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.server != nil
}

// MonitorConfig configures monitor behavior.
type MonitorConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// Logger for discovery diagnostics (optional).
	Logger *slog.Logger
}

// MDNSMonitor implements Monitor using zeroconf browsing.
type MDNSMonitor struct {
	config MonitorConfig

	mu      sync.Mutex
	handler MonitorHandler
	scopes  map[string]*scopeWatch
}

// NewMDNSMonitor creates a new mDNS monitor.
func NewMDNSMonitor(config MonitorConfig) *MDNSMonitor {
	return &MDNSMonitor{
		config: config,
		scopes: make(map[string]*scopeWatch),
	}
}

// SetHandler sets the receiver of discovery events.
func (m *MDNSMonitor) SetHandler(h MonitorHandler) {
	m.mu.Lock()
	m.handler = h
	m.mu.Unlock()
}

// StartMonitoring begins browsing for brokers on scope.
func (m *MDNSMonitor) StartMonitoring(scope, searchDomain string) error {
	if err := ValidateScope(scope); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.scopes[scope]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyMonitoring, scope)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := newScopeWatch(scope)
	w.cancel = cancel
	m.scopes[scope] = w

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go m.process(ctx, w, entries, removed)

	domain := browseDomain(searchDomain)
	var opts []zeroconf.ClientOption
	if ifaces := selectInterfaces(m.config.Interface); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}
	go func() {
		if err := zeroconf.Browse(ctx, ServiceType+","+SubtypeFor(scope), domain, entries, removed, opts...); err != nil {
			m.logWarn("browse failed", "scope", scope, "error", err)
		}
	}()
	return nil
}

// StopMonitoring stops browsing for scope.
func (m *MDNSMonitor) StopMonitoring(scope string) {
	m.mu.Lock()
	w, ok := m.scopes[scope]
	delete(m.scopes, scope)
	m.mu.Unlock()

	if ok {
		w.cancel()
	}
}

// StopAll stops every active browse.
func (m *MDNSMonitor) StopAll() {
	m.mu.Lock()
	scopes := m.scopes
	m.scopes = make(map[string]*scopeWatch)
	m.mu.Unlock()

	for _, w := range scopes {
		w.cancel()
	}
}

// IsMonitoring reports whether scope is being browsed.
func (m *MDNSMonitor) IsMonitoring(scope string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.scopes[scope]
	return ok
}

func (m *MDNSMonitor) process(ctx context.Context, w *scopeWatch, entries, removed <-chan *zeroconf.ServiceEntry) {
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return
			}
			m.deliver(ctx, w, w.add(fromZeroconf(entry)))

		case entry, ok := <-removed:
			if !ok {
				continue
			}
			m.deliver(ctx, w, w.remove(fromZeroconf(entry)))

		case <-ctx.Done():
			return
		}
	}
}

func (m *MDNSMonitor) deliver(ctx context.Context, w *scopeWatch, ev watchEvent) {
	if ev.kind == eventNone || ctx.Err() != nil {
		return
	}
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h == nil {
		return
	}

	switch ev.kind {
	case eventFound:
		h.BrokerFound(w.scope, ev.info)
	case eventUpdated:
		h.BrokerUpdated(w.scope, ev.info)
	case eventLost:
		h.BrokerLost(w.scope, ev.name)
	}
}

func (m *MDNSMonitor) logWarn(msg string, args ...any) {
	if m.config.Logger != nil {
		m.config.Logger.Warn(msg, args...)
	}
}

type eventKind int

const (
	eventNone eventKind = iota
	eventFound
	eventUpdated
	eventLost
)

type watchEvent struct {
	kind eventKind
	info *BrokerInfo
	name string
}

// scopeWatch aggregates resolved entries of one scope by instance name.
// Addresses seen on several interfaces are merged into a single broker.
// It is owned by the process goroutine.
type scopeWatch struct {
	scope   string
	cancel  context.CancelFunc
	brokers map[string]*BrokerInfo
}

func newScopeWatch(scope string) *scopeWatch {
	return &scopeWatch{scope: scope, brokers: make(map[string]*BrokerInfo)}
}

func (w *scopeWatch) add(e *ServiceEntry) watchEvent {
	info, err := BrokerFromEntry(e)
	if err != nil || info.Scope != w.scope {
		return watchEvent{}
	}

	existing, found := w.brokers[info.ServiceInstanceName]
	if !found {
		w.brokers[info.ServiceInstanceName] = info
		return watchEvent{kind: eventFound, info: info.Clone()}
	}

	merged := info.Clone()
	merged.ListenAddrs = mergeAddresses(existing.ListenAddrs, info.ListenAddrs)
	if merged.Equal(existing) {
		return watchEvent{}
	}
	w.brokers[info.ServiceInstanceName] = merged
	return watchEvent{kind: eventUpdated, info: merged.Clone()}
}

func (w *scopeWatch) remove(e *ServiceEntry) watchEvent {
	existing, found := w.brokers[e.Instance]
	if !found {
		return watchEvent{}
	}

	gone := entryAddrs(e.AddrIPv4, e.AddrIPv6, existing.Port)
	remaining := removeAddresses(existing.ListenAddrs, gone)
	if len(gone) == 0 || len(remaining) == 0 {
		delete(w.brokers, e.Instance)
		return watchEvent{kind: eventLost, name: e.Instance}
	}
	if len(remaining) == len(existing.ListenAddrs) {
		return watchEvent{}
	}
	existing.ListenAddrs = remaining
	return watchEvent{kind: eventUpdated, info: existing.Clone()}
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, add []netip.AddrPort) []netip.AddrPort {
	result := append([]netip.AddrPort(nil), existing...)
	seen := make(map[netip.AddrPort]bool, len(existing))
	for _, a := range existing {
		seen[a] = true
	}
	for _, a := range add {
		if !seen[a] {
			result = append(result, a)
			seen[a] = true
		}
	}
	return result
}

func removeAddresses(addresses, gone []netip.AddrPort) []netip.AddrPort {
	toRemove := make(map[netip.AddrPort]bool, len(gone))
	for _, a := range gone {
		toRemove[a] = true
	}
	result := make([]netip.AddrPort, 0, len(addresses))
	for _, a := range addresses {
		if !toRemove[a] {
			result = append(result, a)
		}
	}
	return result
}

func fromZeroconf(z *zeroconf.ServiceEntry) *ServiceEntry {
	e := &ServiceEntry{
		Instance: z.Instance,
		Service:  z.Service,
		Domain:   z.Domain,
		Host:     z.HostName,
		Port:     z.Port,
		Text:     z.Text,
	}
	for _, ip := range z.AddrIPv4 {
		if a, ok := netip.AddrFromSlice(ip); ok {
			e.AddrIPv4 = append(e.AddrIPv4, a.Unmap())
		}
	}
	for _, ip := range z.AddrIPv6 {
		if a, ok := netip.AddrFromSlice(ip); ok {
			e.AddrIPv6 = append(e.AddrIPv6, a)
		}
	}
	return e
}

// browseDomain turns a search domain ("local.") into a zeroconf domain.
func browseDomain(searchDomain string) string {
	d := strings.TrimSuffix(searchDomain, ".")
	if d == "" {
		return Domain
	}
	return d
}

// selectInterfaces returns the configured interface, or nil for all.
func selectInterfaces(name string) []net.Interface {
	if name == "" {
		return nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Compile-time interface satisfaction checks.
var (
	_ Advertiser = (*MDNSAdvertiser)(nil)
	_ Monitor    = (*MDNSMonitor)(nil)
)
