package broker

import (
	"bytes"
	"errors"
	"sort"

	"github.com/ETCLabs/rdmnet-go/pkg/version"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
	"github.com/google/uuid"
)

// maxListEntries bounds the entries packed into one incremental client
// list message.
const maxListEntries = 1000

// pollConnections is the shared handler of every poll worker.
func (b *Broker) pollConnections(batch []incoming) {
	for _, in := range batch {
		if !b.registered(in.client) {
			continue
		}
		for _, m := range in.msgs {
			b.handleMessage(in.client, m)
		}
		if in.err == nil {
			continue
		}
		if isDecodeError(in.err) {
			b.debugLog("broker: undecodable block", "handle", in.client.handle, "error", in.err)
			continue
		}
		b.markForDestruction(in.client.handle, destroyRequest{err: errors.Join(ErrConnectionLost, in.err)})
	}
	b.runDeferred()
}

func (b *Broker) registered(c *brokerClient) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.clients[c.handle] == c
}

func (b *Broker) handleMessage(c *brokerClient, msg wire.Message) {
	if cc, ok := msg.Payload.(*wire.ClientConnect); ok {
		b.handleClientConnect(c, cc)
		return
	}
	if !c.isConnected() {
		b.debugLog("broker: message before ClientConnect", "handle", c.handle, "message", wire.PayloadName(msg.Payload))
		return
	}

	switch p := msg.Payload.(type) {
	case *wire.Null:
	case *wire.Disconnect:
		b.debugLog("broker: client disconnecting", "handle", c.handle, "reason", p.Reason)
		b.markForDestruction(c.handle, destroyRequest{reason: p.Reason})
	case *wire.FetchClientList:
		b.sendClientList(c)
	case *wire.ClientEntryUpdate:
		b.handleEntryUpdate(c, p)
	case *wire.RequestDynamicUIDs:
		b.mu.Lock()
		mappings := b.uids.assignAll(p.Requests)
		b.mu.Unlock()
		b.enqueuePayload(c, &wire.AssignedDynamicUIDs{Mappings: mappings})
	case *wire.FetchDynamicUIDList:
		b.mu.RLock()
		mappings := b.uids.fetch(p.UIDs)
		b.mu.RUnlock()
		b.enqueuePayload(c, &wire.AssignedDynamicUIDs{Mappings: mappings})
	case *wire.RPTMessage:
		b.handleRPT(c, p)
	case *wire.Unknown:
		if p.RPTHeader != nil {
			b.sendStatus(c, *p.RPTHeader, wire.RPTStatusUnknownVector, "")
			return
		}
		b.debugLog("broker: unknown vector", "handle", c.handle, "root", p.RootVector, "vector", p.Vector)
	case *wire.Malformed:
		if p.RPTHeader != nil {
			b.sendStatus(c, *p.RPTHeader, wire.RPTStatusInvalidMessage, "")
			return
		}
		b.debugLog("broker: malformed message", "handle", c.handle, "error", p.Err)
	default:
		b.debugLog("broker: unexpected message", "handle", c.handle, "message", wire.PayloadName(p))
	}
}

func (b *Broker) handleClientConnect(c *brokerClient, msg *wire.ClientConnect) {
	if c.isConnected() {
		b.debugLog("broker: repeated ClientConnect ignored", "handle", c.handle)
		return
	}
	b.pending.Remove(c.handle)
	if !version.SupportsE133(msg.E133Version) {
		b.debugLog("broker: client E1.33 version differs", "handle", c.handle, "version", msg.E133Version)
	}

	code := b.checkConnect(msg)
	if code == wire.ConnectOK {
		code = b.admit(c, msg)
	}
	if code != wire.ConnectOK {
		b.reject(c, msg, code)
		return
	}

	info := c.info()
	b.debugLog("broker: client connected", "handle", c.handle, "uid", info.Entry.UID(),
		"type", info.Entry.RPT.Type, "remote", c.addr)
	b.publishClientList()
	b.emitEvent(Event{Type: EventClientConnected, Client: info})
}

// checkConnect validates a ClientConnect against the broker's scope and
// the entry rules that do not depend on other clients.
func (b *Broker) checkConnect(msg *wire.ClientConnect) wire.ConnectStatus {
	if msg.Scope != b.Scope() {
		return wire.ConnectScopeMismatch
	}
	e := &msg.Entry
	if e.Protocol != wire.ClientProtocolRPT || e.Validate() != nil {
		return wire.ConnectInvalidClientEntry
	}
	switch e.RPT.Type {
	case wire.RPTClientTypeController, wire.RPTClientTypeDevice:
	default:
		return wire.ConnectInvalidClientEntry
	}

	uid := e.RPT.UID
	if uid.IsDynamicRequest() {
		return wire.ConnectOK
	}
	// Static UIDs never carry the dynamic flag.
	if uid.IsZero() || uid.IsBroadcast() || uid.Manufacturer&0x8000 != 0 {
		return wire.ConnectInvalidUID
	}
	return wire.ConnectOK
}

// admit adds c to the routing table and queues the ConnectReply.
func (b *Broker) admit(c *brokerClient, msg *wire.ClientConnect) wire.ConnectStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	typ := msg.Entry.RPT.Type
	limit := b.config.MaxDevices
	queueMax := b.config.MaxDeviceMessages
	if typ == wire.RPTClientTypeController {
		limit = b.config.MaxControllers
		queueMax = b.config.MaxControllerMessages
	}
	if limit > 0 && b.counts[typ] >= limit {
		return wire.ConnectCapacityExceeded
	}

	uid := msg.Entry.RPT.UID
	if uid.IsDynamicRequest() {
		assigned, status := b.uids.assign(uid, msg.Entry.CID)
		if status != wire.DynamicUIDOK {
			return wire.ConnectCapacityExceeded
		}
		uid = assigned
	}
	if uid == b.config.UID || !b.uids.add(uid, c.handle) {
		return wire.ConnectDuplicateUID
	}

	reply, err := wire.Encode(b.config.CID, &wire.ConnectReply{
		Code:        wire.ConnectOK,
		E133Version: version.E133Version,
		BrokerUID:   b.config.UID,
		ClientUID:   uid,
	})
	if err != nil {
		b.uids.remove(uid)
		return wire.ConnectInvalidClientEntry
	}

	entry := msg.Entry
	rpt := *entry.RPT
	rpt.UID = uid
	entry.RPT = &rpt

	var q outboundQueue
	if typ == wire.RPTClientTypeController {
		q = newControllerQueue(queueMax)
	} else {
		q = newDeviceQueue(queueMax)
	}
	q.push(brokerSource, reply)

	c.mu.Lock()
	c.connected = true
	c.entry = entry
	c.incremental = msg.IncrementalUpdates
	c.queue = q
	c.mu.Unlock()
	b.counts[typ]++

	if typ == wire.RPTClientTypeController && msg.IncrementalUpdates {
		view := b.populationLocked()
		c.mu.Lock()
		c.view = view
		c.mu.Unlock()
	}
	return wire.ConnectOK
}

// reject answers a refused ClientConnect directly and schedules the
// socket for silent destruction.
func (b *Broker) reject(c *brokerClient, msg *wire.ClientConnect, code wire.ConnectStatus) {
	b.debugLog("broker: client rejected", "handle", c.handle, "code", code, "remote", c.addr)
	reply := &wire.ConnectReply{Code: code, E133Version: version.E133Version, BrokerUID: b.config.UID}
	if err := c.conn.SendMessage(reply); err != nil {
		b.debugLog("broker: sending ConnectReply failed", "handle", c.handle, "error", err)
	}
	b.markForDestruction(c.handle, destroyRequest{})
	b.emitEvent(Event{
		Type:   EventClientRejected,
		Client: ClientInfo{Handle: c.handle, Entry: msg.Entry, Addr: c.addr},
		Code:   code,
	})
}

func (b *Broker) handleEntryUpdate(c *brokerClient, upd *wire.ClientEntryUpdate) {
	c.mu.RLock()
	cur := c.entry
	c.mu.RUnlock()

	e := upd.Entry
	if e.CID != cur.CID || e.Protocol != wire.ClientProtocolRPT || e.RPT == nil ||
		e.RPT.UID != cur.RPT.UID || e.RPT.Type != cur.RPT.Type {
		b.debugLog("broker: client entry update ignored", "handle", c.handle)
		return
	}

	var view map[uuid.UUID]wire.ClientEntry
	if cur.RPT.Type == wire.RPTClientTypeController && upd.IncrementalUpdates {
		b.mu.RLock()
		view = b.populationLocked()
		b.mu.RUnlock()
	}

	rpt := *e.RPT
	e.RPT = &rpt
	c.mu.Lock()
	c.entry = e
	if upd.IncrementalUpdates && !c.incremental {
		c.view = view
	}
	if !upd.IncrementalUpdates {
		c.view = nil
	}
	c.incremental = upd.IncrementalUpdates
	c.mu.Unlock()

	b.publishClientList()
}

// populationLocked returns the entries of all connected clients. The
// caller holds b.mu.
func (b *Broker) populationLocked() map[uuid.UUID]wire.ClientEntry {
	pop := make(map[uuid.UUID]wire.ClientEntry, len(b.clients))
	for _, c := range b.clients {
		c.mu.RLock()
		if c.connected {
			pop[c.entry.CID] = c.entry
		}
		c.mu.RUnlock()
	}
	return pop
}

// sendClientList answers FetchClientList with the full list. An
// incremental controller's view is reset to what it was sent.
func (b *Broker) sendClientList(c *brokerClient) {
	b.listMu.Lock()
	defer b.listMu.Unlock()

	b.mu.RLock()
	pop := b.populationLocked()
	b.mu.RUnlock()

	entries := make([]wire.ClientEntry, 0, len(pop))
	for _, e := range pop {
		entries = append(entries, e)
	}
	sortEntries(entries)

	c.mu.Lock()
	if c.incremental {
		c.view = pop
	}
	c.mu.Unlock()
	b.enqueuePayload(c, &wire.ClientList{Action: wire.ClientListReplace, Entries: entries})
}

// publishClientList brings every incremental controller's view up to date
// with the connected population by sending Add, Remove and Change lists.
func (b *Broker) publishClientList() {
	b.listMu.Lock()
	defer b.listMu.Unlock()

	b.mu.RLock()
	pop := b.populationLocked()
	controllers := make([]*brokerClient, 0, b.counts[wire.RPTClientTypeController])
	for _, c := range b.clients {
		if c.isController() {
			controllers = append(controllers, c)
		}
	}
	b.mu.RUnlock()

	for _, c := range controllers {
		c.mu.Lock()
		if !c.incremental || c.view == nil {
			c.mu.Unlock()
			continue
		}
		added, removed, changed := diffEntries(c.view, pop)
		c.view = pop
		c.mu.Unlock()

		b.sendEntries(c, wire.ClientListAdd, added)
		b.sendEntries(c, wire.ClientListRemove, removed)
		b.sendEntries(c, wire.ClientListChange, changed)
	}
}

func (b *Broker) sendEntries(c *brokerClient, action wire.ClientListAction, entries []wire.ClientEntry) {
	for len(entries) > 0 {
		n := min(len(entries), maxListEntries)
		b.enqueuePayload(c, &wire.ClientList{Action: action, Entries: entries[:n]})
		entries = entries[n:]
	}
}

// diffEntries compares a controller's last known view with the current
// population. The view is not modified.
func diffEntries(view, pop map[uuid.UUID]wire.ClientEntry) (added, removed, changed []wire.ClientEntry) {
	for cid, e := range pop {
		old, ok := view[cid]
		switch {
		case !ok:
			added = append(added, e)
		case !old.Equal(&e):
			changed = append(changed, e)
		}
	}
	for cid, e := range view {
		if _, ok := pop[cid]; !ok {
			removed = append(removed, e)
		}
	}
	sortEntries(added)
	sortEntries(removed)
	sortEntries(changed)
	return added, removed, changed
}

// sortEntries orders entries by UID, then CID.
func sortEntries(entries []wire.ClientEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].UID(), entries[j].UID()
		if a != b {
			if a.Manufacturer != b.Manufacturer {
				return a.Manufacturer < b.Manufacturer
			}
			return a.Device < b.Device
		}
		return bytes.Compare(entries[i].CID[:], entries[j].CID[:]) < 0
	})
}
