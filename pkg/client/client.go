package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"sort"
	"sync"

	"github.com/ETCLabs/rdmnet-go/pkg/connection"
	"github.com/ETCLabs/rdmnet-go/pkg/discovery"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/responder"
	"github.com/ETCLabs/rdmnet-go/pkg/version"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
	"github.com/google/uuid"
)

// scope is the state of one configured scope. Guarded by Client.mu.
type scope struct {
	handle  ScopeHandle
	config  ScopeConfig
	machine *connection.Machine

	// monitoring is set while a DNS-SD browse runs for config.Scope.
	monitoring bool

	// candidates are the listen addresses of the broker in use; next is
	// the index of the current attempt.
	candidates []netip.AddrPort
	next       int
	brokerName string
	addr       netip.AddrPort

	connected ConnectedInfo
	uid       rdm.UID

	seqnum  uint32
	txn     uint8
	pending map[pendingKey]*pendingRequest

	lists     ClientListAssembler
	clients   map[uuid.UUID]wire.ClientEntry
	unhealthy uint16
}

func newScope(h ScopeHandle, cfg ScopeConfig) *scope {
	return &scope{
		handle:  h,
		config:  cfg,
		machine: connection.NewMachine(),
		pending: make(map[pendingKey]*pendingRequest),
		clients: make(map[uuid.UUID]wire.ClientEntry),
	}
}

func (s *scope) info() ScopeInfo {
	info := ScopeInfo{
		Handle:          s.handle,
		Config:          s.config,
		State:           s.machine.State(),
		UnhealthyEvents: s.unhealthy,
	}
	if info.State == connection.StateConnected {
		info.BrokerAddr = s.addr
		info.BrokerCID = s.connected.BrokerCID
		info.BrokerUID = s.connected.BrokerUID
		info.ClientUID = s.uid
	}
	return info
}

// actions are collaborator calls collected under the client lock and run
// after it is released, in order.
type actions []func() error

func (a *actions) do(fn func()) {
	*a = append(*a, func() error { fn(); return nil })
}

func (a *actions) try(fn func() error) {
	*a = append(*a, fn)
}

func (a actions) run() error {
	var errs []error
	for _, fn := range a {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Client is an RPT Controller or Device participating in one or more
// scopes.
type Client struct {
	mu sync.Mutex

	config    Config
	connector Connector
	monitor   discovery.Monitor
	handler   EventHandler
	resp      *responder.Responder
	logger    *slog.Logger

	scopes     map[ScopeHandle]*scope
	nextHandle ScopeHandle
	closed     bool

	// deferred holds reconfiguration requested by SET commands; it runs
	// after the command has been answered.
	deferMu  sync.Mutex
	deferred []func()
}

// New creates a client. The monitor may be nil when only static scopes are
// used. A connector implementing EventBinder is bound to the client.
func New(config Config, connector Connector, monitor discovery.Monitor, handler EventHandler) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if connector == nil || handler == nil {
		return nil, fmt.Errorf("%w: connector and handler are required", ErrInvalidConfig)
	}
	config = config.withDefaults()

	c := &Client{
		config:    config,
		connector: connector,
		monitor:   monitor,
		handler:   handler,
		logger:    config.Logger,
		scopes:    make(map[ScopeHandle]*scope),
	}

	if config.Type == wire.RPTClientTypeDevice && !config.RawCommands {
		c.resp = config.Responder
		if c.resp == nil {
			c.resp = responder.New(responder.Config{
				UID:          config.UID,
				Role:         version.RoleDevice,
				SearchDomain: config.SearchDomain,
			})
		}
		c.bindResponder()
	}

	if monitor != nil {
		monitor.SetHandler(c)
	}
	if b, ok := connector.(EventBinder); ok {
		b.Bind(c)
	}
	return c, nil
}

// Responder returns the responder answering commands in the Device role,
// or nil.
func (c *Client) Responder() *responder.Responder {
	return c.resp
}

// AddScope adds a scope and starts connecting to its broker: directly for
// a static broker address, otherwise after DNS-SD finds one.
func (c *Client) AddScope(cfg ScopeConfig) (ScopeHandle, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	var acts actions
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClosed
	}
	if err := c.checkScopeLocked(0, cfg); err != nil {
		c.mu.Unlock()
		return 0, err
	}
	c.nextHandle++
	h := c.nextHandle
	s := newScope(h, cfg)
	c.scopes[h] = s
	c.startScopeLocked(s, &acts)
	c.mu.Unlock()

	if err := acts.run(); err != nil {
		c.mu.Lock()
		delete(c.scopes, h)
		c.mu.Unlock()
		return 0, err
	}
	c.syncResponder()
	c.debugLog("client: scope added", "handle", h, "scope", cfg.Scope, "static", cfg.StaticBroker)
	return h, nil
}

// RemoveScope disconnects from the scope's broker with reason and forgets
// the scope. No Disconnected event is reported.
func (c *Client) RemoveScope(h ScopeHandle, reason wire.DisconnectReason) error {
	var acts actions
	c.mu.Lock()
	s, ok := c.scopes[h]
	if !ok {
		c.mu.Unlock()
		return ErrScopeNotFound
	}
	delete(c.scopes, h)
	c.teardownLocked(s, reason, false, &acts)
	c.mu.Unlock()

	err := acts.run()
	c.syncResponder()
	return err
}

// ChangeScope replaces the configuration of a scope. An existing
// connection is closed with reason and reported as a local, graceful
// disconnect that will retry. A scope in the fatal state starts over.
func (c *Client) ChangeScope(h ScopeHandle, cfg ScopeConfig, reason wire.DisconnectReason) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var acts actions
	c.mu.Lock()
	s, ok := c.scopes[h]
	if !ok {
		c.mu.Unlock()
		return ErrScopeNotFound
	}
	if err := c.checkScopeLocked(h, cfg); err != nil {
		c.mu.Unlock()
		return err
	}
	c.teardownLocked(s, reason, true, &acts)
	s.config = cfg
	c.startScopeLocked(s, &acts)
	c.mu.Unlock()

	err := acts.run()
	c.syncResponder()
	return err
}

// ChangeSearchDomain sets the DNS-SD search domain and reconnects every
// scope, since the domain is part of the client's connect message.
func (c *Client) ChangeSearchDomain(domain string, reason wire.DisconnectReason) error {
	if domain == "" {
		domain = discovery.DefaultSearchDomain
	}
	if len(domain) > responder.MaxSearchDomainLen {
		return fmt.Errorf("%w: search domain too long", ErrInvalidConfig)
	}

	var acts actions
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.config.SearchDomain = domain
	for _, s := range c.sortedScopesLocked() {
		c.teardownLocked(s, reason, true, &acts)
		c.startScopeLocked(s, &acts)
	}
	c.mu.Unlock()

	err := acts.run()
	c.syncResponder()
	return err
}

// SearchDomain returns the configured search domain.
func (c *Client) SearchDomain() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.SearchDomain
}

// ScopeInfo returns a snapshot of a scope. It stays available in the fatal
// state until the scope is changed or removed.
func (c *Client) ScopeInfo(h ScopeHandle) (ScopeInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.scopes[h]
	if !ok {
		return ScopeInfo{}, ErrScopeNotFound
	}
	return s.info(), nil
}

// Scopes returns snapshots of every scope, ordered by handle.
func (c *Client) Scopes() []ScopeInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	scopes := c.sortedScopesLocked()
	out := make([]ScopeInfo, 0, len(scopes))
	for _, s := range scopes {
		out = append(out, s.info())
	}
	return out
}

// Clients returns the broker's client list as last reported for a scope.
func (c *Client) Clients(h ScopeHandle) ([]wire.ClientEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.scopes[h]
	if !ok {
		return nil, ErrScopeNotFound
	}
	out := make([]wire.ClientEntry, 0, len(s.clients))
	for _, e := range s.clients {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CID.String() < out[j].CID.String()
	})
	return out, nil
}

// Close disconnects every scope with a shutdown reason. The client cannot
// be used afterwards.
func (c *Client) Close() error {
	var acts actions
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	for _, s := range c.sortedScopesLocked() {
		c.teardownLocked(s, wire.DisconnectShutdown, false, &acts)
	}
	c.scopes = make(map[ScopeHandle]*scope)
	c.mu.Unlock()
	return acts.run()
}

func (c *Client) checkScopeLocked(self ScopeHandle, cfg ScopeConfig) error {
	for h, s := range c.scopes {
		if h != self && s.config.Scope == cfg.Scope {
			return fmt.Errorf("%w: %q", ErrDuplicateScope, cfg.Scope)
		}
	}
	if !cfg.IsStatic() && c.monitor == nil {
		return fmt.Errorf("%w: scope %q needs discovery but no monitor is configured", ErrInvalidConfig, cfg.Scope)
	}
	return nil
}

func (c *Client) sortedScopesLocked() []*scope {
	out := make([]*scope, 0, len(c.scopes))
	for _, s := range c.scopes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].handle < out[j].handle })
	return out
}

// startScopeLocked leaves StateIdle: static scopes connect at once,
// dynamic scopes start browsing.
func (c *Client) startScopeLocked(s *scope, acts *actions) {
	s.candidates = nil
	s.next = 0
	s.brokerName = ""

	if s.config.IsStatic() {
		s.candidates = []netip.AddrPort{s.config.StaticBroker}
		c.transitionLocked(s, connection.StateConnecting, "static broker")
		c.connectLocked(s, acts)
		return
	}

	c.transitionLocked(s, connection.StateDiscovering, "browsing")
	s.monitoring = true
	scopeName, domain := s.config.Scope, c.config.SearchDomain
	acts.try(func() error {
		if err := c.monitor.StartMonitoring(scopeName, domain); err != nil {
			return fmt.Errorf("monitoring scope %q: %w", scopeName, err)
		}
		return nil
	})
}

// teardownLocked returns a scope to StateIdle. The connector is told to
// disconnect with reason from every other state, Fatal included, so that
// it drops the scope's retry delay; report adds a Disconnected event for
// a connection that was up.
func (c *Client) teardownLocked(s *scope, reason wire.DisconnectReason, report bool, acts *actions) {
	h := s.handle
	st := s.machine.State()

	if st != connection.StateIdle {
		acts.do(func() {
			if err := c.connector.Disconnect(h, reason); err != nil {
				c.debugLog("client: disconnect failed", "handle", h, "error", err)
			}
		})
	}
	c.abandonLocked(s, acts)
	s.lists.Reset()
	s.clients = make(map[uuid.UUID]wire.ClientEntry)

	if st == connection.StateConnected && report {
		ev := DisconnectedEvent{
			Scope:     s.config.Scope,
			Event:     DisconnectGracefulLocal,
			Reason:    reason,
			WillRetry: true,
		}
		acts.do(func() { c.handler.Disconnected(h, ev) })
	}

	if s.monitoring {
		s.monitoring = false
		scopeName := s.config.Scope
		acts.do(func() { c.monitor.StopMonitoring(scopeName) })
	}
	if st != connection.StateIdle {
		c.transitionLocked(s, connection.StateIdle, "reconfigure")
	}
}

// connectLocked starts an attempt against the current candidate.
func (c *Client) connectLocked(s *scope, acts *actions) {
	h := s.handle
	addr := s.candidates[s.next]
	s.addr = addr
	msg := &wire.ClientConnect{
		Scope:              s.config.Scope,
		E133Version:        version.E133Version,
		SearchDomain:       c.config.SearchDomain,
		IncrementalUpdates: c.config.Type == wire.RPTClientTypeController,
		Entry:              wire.NewRPTClientEntry(c.config.CID, c.config.UID, c.config.Type),
	}
	acts.do(func() {
		if err := c.connector.Connect(h, addr, msg); err != nil {
			c.HandleConnectFailed(h, ConnectFailedInfo{Event: ConnectFailSocket, Err: err})
		}
	})
}

// retryLocked moves on after a recoverable failure: the same address for a
// static scope, the next listen address for a dynamic one. A dynamic scope
// that ran out of addresses waits for the next discovery event.
func (c *Client) retryLocked(s *scope, acts *actions) {
	if s.config.IsStatic() {
		s.next = 0
		c.transitionLocked(s, connection.StateRetrying, "retry static broker")
		c.connectLocked(s, acts)
		return
	}
	s.next++
	if s.next < len(s.candidates) {
		c.transitionLocked(s, connection.StateRetrying, "next listen address")
		c.connectLocked(s, acts)
		return
	}
	s.next = 0
	c.transitionLocked(s, connection.StateDiscovering, "listen addresses exhausted")
}

func (c *Client) transitionLocked(s *scope, to connection.State, reason string) {
	if err := s.machine.Transition(to, reason); err != nil {
		c.debugLog("client: unexpected transition", "handle", s.handle, "error", err)
	}
}

// HandleConnected is called by the connector when the broker accepted the
// connection.
func (c *Client) HandleConnected(h ScopeHandle, info ConnectedInfo) {
	var acts actions
	c.mu.Lock()
	s, ok := c.scopes[h]
	if !ok || !s.machine.State().IsAttempting() {
		c.mu.Unlock()
		c.debugLog("client: stale connected event", "handle", h)
		return
	}

	c.transitionLocked(s, connection.StateConnected, "connect reply ok")
	s.connected = info
	if info.Addr.IsValid() {
		s.addr = info.Addr
	}
	s.uid = info.ClientUID
	if s.uid.IsZero() {
		s.uid = c.config.UID
	}

	ev := ConnectedEvent{
		Scope:     s.config.Scope,
		BrokerCID: info.BrokerCID,
		BrokerUID: info.BrokerUID,
		ClientUID: s.uid,
		Addr:      s.addr,
	}
	acts.do(func() { c.handler.Connected(h, ev) })
	c.sendLocked(s, &wire.FetchClientList{}, &acts)
	if c.config.Type == wire.RPTClientTypeController && c.config.AutoQuery {
		c.autoQueryLocked(s, info.BrokerUID, &acts)
	}
	uid := s.uid
	c.mu.Unlock()

	if c.resp != nil {
		c.resp.SetUID(uid)
	}
	_ = acts.run()
}

// HandleConnectFailed is called by the connector when an attempt failed.
func (c *Client) HandleConnectFailed(h ScopeHandle, info ConnectFailedInfo) {
	var acts actions
	c.mu.Lock()
	s, ok := c.scopes[h]
	if !ok || !s.machine.State().IsAttempting() {
		c.mu.Unlock()
		c.debugLog("client: stale connect failure", "handle", h)
		return
	}

	ev := ConnectFailedEvent{
		Scope:   s.config.Scope,
		Event:   info.Event,
		Code:    info.Code,
		Err:     info.Err,
		Attempt: info.Attempt,
	}
	if info.IsFatal() {
		c.transitionLocked(s, connection.StateFatal, info.Event.String())
		acts.do(func() { c.handler.ConnectFailed(h, ev) })
	} else {
		ev.WillRetry = true
		ev.RetryIn = info.RetryIn
		acts.do(func() { c.handler.ConnectFailed(h, ev) })
		c.retryLocked(s, &acts)
	}
	c.mu.Unlock()

	c.debugLog("client: connect failed", "handle", h, "event", info.Event, "code", info.Code, "willRetry", ev.WillRetry, "error", info.Err)
	_ = acts.run()
}

// HandleDisconnected is called by the connector when an established
// connection ended.
func (c *Client) HandleDisconnected(h ScopeHandle, info DisconnectedInfo) {
	var acts actions
	c.mu.Lock()
	s, ok := c.scopes[h]
	if !ok || s.machine.State() != connection.StateConnected {
		c.mu.Unlock()
		c.debugLog("client: stale disconnect", "handle", h)
		return
	}

	c.abandonLocked(s, &acts)
	s.lists.Reset()
	s.clients = make(map[uuid.UUID]wire.ClientEntry)
	if info.Event == DisconnectNoHeartbeat && s.unhealthy < 0xFFFF {
		s.unhealthy++
	}

	ev := DisconnectedEvent{
		Scope:  s.config.Scope,
		Event:  info.Event,
		Reason: info.Reason,
		Err:    info.Err,
	}
	switch {
	case info.IsFatal():
		c.transitionLocked(s, connection.StateFatal, info.Event.String())
		acts.do(func() { c.handler.Disconnected(h, ev) })
	case s.config.IsStatic() || len(s.candidates) > 0:
		ev.WillRetry = true
		acts.do(func() { c.handler.Disconnected(h, ev) })
		s.next = 0
		c.transitionLocked(s, connection.StateRetrying, info.Event.String())
		c.connectLocked(s, &acts)
	default:
		ev.WillRetry = true
		acts.do(func() { c.handler.Disconnected(h, ev) })
		c.transitionLocked(s, connection.StateDiscovering, "broker lost")
	}
	c.mu.Unlock()

	c.debugLog("client: disconnected", "handle", h, "event", info.Event, "reason", info.Reason, "willRetry", ev.WillRetry)
	_ = acts.run()
}

// BrokerFound implements discovery.MonitorHandler.
func (c *Client) BrokerFound(scopeName string, info *discovery.BrokerInfo) {
	c.brokerSeen(scopeName, info)
}

// BrokerUpdated implements discovery.MonitorHandler.
func (c *Client) BrokerUpdated(scopeName string, info *discovery.BrokerInfo) {
	c.brokerSeen(scopeName, info)
}

// BrokerLost implements discovery.MonitorHandler. A scope that is not
// connected forgets the broker's addresses; a connected scope keeps its
// connection and falls back to discovery when it drops.
func (c *Client) BrokerLost(scopeName string, serviceName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.scopes {
		if !s.monitoring || s.config.Scope != scopeName || s.brokerName != serviceName {
			continue
		}
		s.candidates = nil
		s.next = 0
		s.brokerName = ""
	}
}

func (c *Client) brokerSeen(scopeName string, info *discovery.BrokerInfo) {
	var acts actions
	c.mu.Lock()
	for _, s := range c.sortedScopesLocked() {
		if !s.monitoring || s.config.Scope != scopeName {
			continue
		}
		if s.brokerName != "" && s.brokerName != info.ServiceInstanceName {
			c.debugLog("client: ignoring second broker on scope", "scope", scopeName, "broker", info.ServiceInstanceName)
			continue
		}
		s.brokerName = info.ServiceInstanceName
		s.candidates = append([]netip.AddrPort(nil), info.ListenAddrs...)

		if s.machine.State() != connection.StateDiscovering {
			if s.next >= len(s.candidates) {
				s.next = 0
			}
			continue
		}
		if len(s.candidates) == 0 {
			continue
		}
		s.next = 0
		c.transitionLocked(s, connection.StateConnecting, "broker found")
		c.connectLocked(s, &acts)
	}
	c.mu.Unlock()
	_ = acts.run()
}

func (c *Client) sendLocked(s *scope, p wire.Payload, acts *actions) {
	h := s.handle
	acts.do(func() {
		if err := c.connector.Send(h, p); err != nil {
			c.debugLog("client: send failed", "handle", h, "message", wire.PayloadName(p), "error", err)
		}
	})
}

// syncResponder reports the first scope and the search domain through the
// device responder.
func (c *Client) syncResponder() {
	if c.resp == nil {
		return
	}
	c.mu.Lock()
	domain := c.config.SearchDomain
	var first *ScopeConfig
	if scopes := c.sortedScopesLocked(); len(scopes) > 0 {
		first = &scopes[0].config
	}
	var cfg responder.ScopeConfig
	if first != nil {
		cfg = responder.ScopeConfig{Scope: first.Scope, StaticBroker: first.StaticBroker}
	}
	c.mu.Unlock()

	if first != nil {
		c.resp.SetScope(cfg)
	}
	c.resp.SetSearchDomain(domain)
}

func (c *Client) debugLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
