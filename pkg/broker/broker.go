package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ETCLabs/rdmnet-go/pkg/discovery"
	"github.com/ETCLabs/rdmnet-go/pkg/log"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/responder"
	"github.com/ETCLabs/rdmnet-go/pkg/transport"
	"github.com/ETCLabs/rdmnet-go/pkg/version"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
	"github.com/google/uuid"
)

// Broker accepts RPT clients on one scope and routes RDM traffic between
// controllers and devices.
type Broker struct {
	config    Config
	logger    *slog.Logger
	responder *responder.Responder

	stateMu   sync.Mutex
	state     State
	runCtx    context.Context
	cancel    context.CancelFunc
	listeners []*transport.Listener
	port      uint16
	done      chan struct{}
	running   atomic.Bool

	// mu guards clients, uids, counts, nextHandle, scope and searchDomain.
	mu           sync.RWMutex
	clients      map[int]*brokerClient
	uids         *uidTable
	counts       map[wire.RPTClientType]int
	nextHandle   int
	scope        string
	searchDomain string

	// listMu serializes client list publication.
	listMu sync.Mutex

	pool    *pollPool
	pending *connTracker

	destroyMu sync.Mutex
	toDestroy map[int]destroyRequest

	deferMu  sync.Mutex
	deferred []func()

	nullPacket    []byte
	serviceBuf    []*brokerClient
	eventMu       sync.RWMutex
	eventHandlers []EventHandler
}

// destroyRequest records why a client is being destroyed. With notify set
// a Disconnect message is sent first; err is set for lost connections.
type destroyRequest struct {
	reason wire.DisconnectReason
	err    error
	notify bool
}

// New creates a broker. Start begins accepting clients.
func New(config Config) (*Broker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.withDefaults()

	identity := config.Identity
	identity.UID = config.UID
	identity.Role = version.RoleBroker
	identity.Scope = config.Scope
	identity.SearchDomain = config.SearchDomain
	if identity.Manufacturer == "" {
		identity.Manufacturer = config.Manufacturer
	}
	if identity.ModelDescription == "" {
		identity.ModelDescription = config.Model
	}

	null, err := wire.Encode(config.CID, &wire.Null{})
	if err != nil {
		return nil, err
	}

	b := &Broker{
		config:       config,
		logger:       config.Logger,
		responder:    responder.New(identity),
		clients:      make(map[int]*brokerClient),
		uids:         newUIDTable(),
		counts:       make(map[wire.RPTClientType]int),
		scope:        config.Scope,
		searchDomain: config.SearchDomain,
		pending:      newConnTracker(),
		toDestroy:    make(map[int]destroyRequest),
		nullPacket:   null,
	}
	b.pool = newPollPool(config.MaxSocketsPerWorker, config.MaxPollWorkers, b.pollConnections)
	b.wireResponder()
	return b, nil
}

// OnEvent registers a handler for client population events.
func (b *Broker) OnEvent(handler EventHandler) {
	b.eventMu.Lock()
	defer b.eventMu.Unlock()
	b.eventHandlers = append(b.eventHandlers, handler)
}

// Start binds the listen addresses, registers the broker via DNS-SD and
// starts the service loop.
func (b *Broker) Start(ctx context.Context) error {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()
	if b.state != StateIdle && b.state != StateStopped {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	b.pool = newPollPool(b.config.MaxSocketsPerWorker, b.config.MaxPollWorkers, b.pollConnections)
	b.running.Store(true)

	listeners := make([]*transport.Listener, 0, len(b.config.ListenAddresses))
	for _, addr := range b.config.ListenAddresses {
		l := transport.NewListener(transport.ListenerConfig{
			Address:      addr,
			OnConnection: b.onNewConnection,
			OnError: func(err error) {
				b.warnLog("broker: accept failed", "error", err)
			},
		})
		if err := l.Start(runCtx); err != nil {
			b.running.Store(false)
			for _, started := range listeners {
				_ = started.Stop()
			}
			cancel()
			return err
		}
		listeners = append(listeners, l)
	}

	b.runCtx = runCtx
	b.cancel = cancel
	b.listeners = listeners
	b.port = 0
	if ta, ok := listeners[0].Addr().(*net.TCPAddr); ok {
		b.port = uint16(ta.Port)
	}
	b.done = make(chan struct{})
	b.state = StateRunning
	go b.serviceLoop(runCtx, b.done)

	b.register(runCtx, b.port)
	if m := b.config.Monitor; m != nil {
		m.SetHandler(monitorHandler{b})
		if err := m.StartMonitoring(b.Scope(), b.SearchDomain()); err != nil {
			b.warnLog("broker: monitoring own scope failed", "scope", b.Scope(), "error", err)
		}
	}

	b.debugLog("broker: started", "cid", b.config.CID, "uid", b.config.UID, "scope", b.Scope())
	return nil
}

// Stop disconnects every client with reason Shutdown, closes the
// listeners and waits for all goroutines. It returns ErrShutdownTimeout
// if that takes longer than the configured stop timeout.
func (b *Broker) Stop() error {
	b.stateMu.Lock()
	if b.state != StateRunning {
		b.stateMu.Unlock()
		return ErrNotStarted
	}
	b.state = StateStopping
	b.running.Store(false)
	listeners := b.listeners
	b.listeners = nil
	cancel := b.cancel
	done := b.done
	b.stateMu.Unlock()

	if m := b.config.Monitor; m != nil {
		m.StopAll()
	}
	if a := b.config.Advertiser; a != nil {
		if err := a.UnregisterBroker(); err != nil && !errors.Is(err, discovery.ErrNotRegistered) {
			b.debugLog("broker: unregister failed", "error", err)
		}
	}

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for _, l := range listeners {
			_ = l.Stop()
		}
		cancel()
		<-done
		b.destroyAll(wire.DisconnectShutdown)
		b.pool.close()
	}()

	var err error
	select {
	case <-finished:
	case <-time.After(b.config.StopTimeout):
		err = ErrShutdownTimeout
	}

	b.stateMu.Lock()
	b.state = StateStopped
	b.stateMu.Unlock()
	b.debugLog("broker: stopped", "error", err)
	return err
}

// State returns the lifecycle state.
func (b *Broker) State() State {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()
	return b.state
}

// CID returns the broker's component identifier.
func (b *Broker) CID() uuid.UUID {
	return b.config.CID
}

// UID returns the broker's RDM UID.
func (b *Broker) UID() rdm.UID {
	return b.config.UID
}

// Scope returns the scope currently served.
func (b *Broker) Scope() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scope
}

// SearchDomain returns the DNS-SD search domain.
func (b *Broker) SearchDomain() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.searchDomain
}

// Addrs returns the bound listen addresses.
func (b *Broker) Addrs() []net.Addr {
	b.stateMu.Lock()
	defer b.stateMu.Unlock()
	addrs := make([]net.Addr, 0, len(b.listeners))
	for _, l := range b.listeners {
		if a := l.Addr(); a != nil {
			addrs = append(addrs, a)
		}
	}
	return addrs
}

// Clients returns the connected clients ordered by handle.
func (b *Broker) Clients() []ClientInfo {
	b.mu.RLock()
	infos := make([]ClientInfo, 0, len(b.clients))
	for _, c := range b.clients {
		if c.isConnected() {
			infos = append(infos, c.info())
		}
	}
	b.mu.RUnlock()
	sort.Slice(infos, func(i, j int) bool { return infos[i].Handle < infos[j].Handle })
	return infos
}

// DisconnectClient sends a Disconnect with reason to a connected client
// and destroys it on the next service tick.
func (b *Broker) DisconnectClient(handle int, reason wire.DisconnectReason) error {
	b.mu.RLock()
	c, ok := b.clients[handle]
	b.mu.RUnlock()
	if !ok || !c.isConnected() {
		return fmt.Errorf("%w: handle %d", ErrClientNotFound, handle)
	}
	b.markForDestruction(handle, destroyRequest{reason: reason, notify: true})
	return nil
}

// ChangeScope moves the broker to a new scope. Connected clients are
// disconnected with UserReconfigure and the DNS-SD registration follows.
func (b *Broker) ChangeScope(scope string) error {
	return b.changeScope(scope, wire.DisconnectUserReconfigure)
}

// ChangeSearchDomain changes the DNS-SD search domain used to watch the
// scope for other brokers.
func (b *Broker) ChangeSearchDomain(domain string) error {
	if len(domain) > responder.MaxSearchDomainLen {
		return fmt.Errorf("%w: search domain too long", ErrInvalidConfig)
	}
	if domain == "" {
		domain = discovery.DefaultSearchDomain
	}
	b.mu.Lock()
	b.searchDomain = domain
	scope := b.scope
	b.mu.Unlock()
	b.responder.SetSearchDomain(domain)

	if m := b.config.Monitor; m != nil && b.running.Load() {
		m.StopMonitoring(scope)
		if err := m.StartMonitoring(scope, domain); err != nil {
			b.warnLog("broker: monitoring own scope failed", "scope", scope, "error", err)
		}
	}
	return nil
}

func (b *Broker) changeScope(scope string, reason wire.DisconnectReason) error {
	if err := discovery.ValidateScope(scope); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	b.mu.Lock()
	old := b.scope
	b.scope = scope
	domain := b.searchDomain
	var handles []int
	for h, c := range b.clients {
		if c.isConnected() {
			handles = append(handles, h)
		}
	}
	b.mu.Unlock()
	if old == scope {
		return nil
	}
	b.responder.SetScope(responder.ScopeConfig{Scope: scope})
	b.debugLog("broker: scope changed", "old", old, "new", scope)

	if !b.running.Load() {
		return nil
	}
	b.stateMu.Lock()
	ctx, port := b.runCtx, b.port
	b.stateMu.Unlock()
	b.register(ctx, port)
	if m := b.config.Monitor; m != nil {
		m.StopMonitoring(old)
		if err := m.StartMonitoring(scope, domain); err != nil {
			b.warnLog("broker: monitoring own scope failed", "scope", scope, "error", err)
		}
	}
	for _, h := range handles {
		b.markForDestruction(h, destroyRequest{reason: reason, notify: true})
	}
	return nil
}

// register advertises the broker on its current scope. Failure is logged;
// clients with a static broker address can still connect.
func (b *Broker) register(ctx context.Context, port uint16) {
	a := b.config.Advertiser
	if a == nil || ctx == nil {
		return
	}
	info := &discovery.RegisterInfo{
		ServiceInstanceName: b.config.ServiceInstanceName,
		Port:                port,
		Scope:               b.Scope(),
		CID:                 b.config.CID,
		UID:                 b.config.UID,
		Model:               b.config.Model,
		Manufacturer:        b.config.Manufacturer,
	}
	if err := a.RegisterBroker(ctx, info); err != nil {
		b.warnLog("broker: DNS-SD registration failed", "scope", info.Scope, "error", err)
	}
}

// wireResponder connects the broker's RDM responder to its configuration.
// Reconfiguration runs after the acknowledging reply has been queued.
func (b *Broker) wireResponder() {
	b.responder.OnScopeChange(func(_ uint16, cfg responder.ScopeConfig) error {
		if err := discovery.ValidateScope(cfg.Scope); err != nil {
			return responder.Nack(rdm.NackFormatError)
		}
		b.deferAfterReply(func() {
			if err := b.changeScope(cfg.Scope, wire.DisconnectRPTReconfigure); err != nil {
				b.debugLog("broker: scope change from COMPONENT_SCOPE", "error", err)
			}
		})
		return nil
	})
	b.responder.OnSearchDomainChange(func(domain string) error {
		b.deferAfterReply(func() {
			if err := b.ChangeSearchDomain(domain); err != nil {
				b.debugLog("broker: search domain change from SEARCH_DOMAIN", "error", err)
			}
		})
		return nil
	})
	b.responder.SetBrokerStatusSource(func() responder.BrokerStatus {
		if b.running.Load() {
			return responder.BrokerStatus{State: responder.BrokerStateActive}
		}
		return responder.BrokerStatus{State: responder.BrokerStateDisabled}
	})
}

func (b *Broker) deferAfterReply(fn func()) {
	b.deferMu.Lock()
	b.deferred = append(b.deferred, fn)
	b.deferMu.Unlock()
}

func (b *Broker) runDeferred() {
	b.deferMu.Lock()
	fns := b.deferred
	b.deferred = nil
	b.deferMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// onNewConnection is called by a listener for every accepted socket.
func (b *Broker) onNewConnection(nc net.Conn) {
	if !b.running.Load() {
		_ = nc.Close()
		return
	}
	conn := transport.NewConn(nc, transport.ConnConfig{
		LocalCID:     b.config.CID,
		Role:         log.RoleBroker,
		Scope:        b.Scope(),
		Heartbeat:    b.config.Heartbeat,
		WriteTimeout: b.config.WriteTimeout,
		Logger:       b.config.ProtocolLogger,
	})

	b.mu.Lock()
	if len(b.clients) >= b.config.MaxConnections {
		b.mu.Unlock()
		b.debugLog("broker: connection limit reached", "remote", nc.RemoteAddr())
		_ = conn.Close()
		return
	}
	b.nextHandle++
	c := newBrokerClient(b.nextHandle, conn)
	b.clients[c.handle] = c
	b.mu.Unlock()

	b.pending.Add(c.handle, time.Now())
	if err := b.pool.add(c); err != nil {
		b.debugLog("broker: no poll capacity", "remote", c.addr, "error", err)
		b.pending.Remove(c.handle)
		b.mu.Lock()
		delete(b.clients, c.handle)
		b.mu.Unlock()
		_ = conn.Close()
		return
	}
	b.debugLog("broker: accepted connection", "handle", c.handle, "remote", c.addr)
}

// monitorHandler receives discovery events for the broker's own scope.
type monitorHandler struct {
	b *Broker
}

func (h monitorHandler) BrokerFound(scope string, info *discovery.BrokerInfo) {
	if info.CID == h.b.config.CID || scope != h.b.Scope() {
		return
	}
	h.b.warnLog("broker: another broker serves this scope",
		"scope", scope, "service", info.ServiceInstanceName, "cid", info.CID)
	h.b.emitEvent(Event{Type: EventOtherBrokerFound, Broker: info.Clone()})
}

func (h monitorHandler) BrokerUpdated(scope string, info *discovery.BrokerInfo) {
	h.b.debugLog("broker: other broker updated", "scope", scope, "service", info.ServiceInstanceName)
}

func (h monitorHandler) BrokerLost(scope string, serviceName string) {
	h.b.debugLog("broker: other broker lost", "scope", scope, "service", serviceName)
}

// emitEvent delivers an event to every registered handler.
func (b *Broker) emitEvent(event Event) {
	b.eventMu.RLock()
	handlers := b.eventHandlers
	b.eventMu.RUnlock()
	for _, handler := range handlers {
		go handler(event)
	}
}

// debugLog logs a debug message if logging is enabled.
func (b *Broker) debugLog(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}

func (b *Broker) warnLog(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Warn(msg, args...)
	}
}
