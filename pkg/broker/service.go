package broker

import (
	"context"
	"errors"
	"time"

	"github.com/ETCLabs/rdmnet-go/pkg/transport"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
)

// serviceLoop sends queued messages, destroys marked clients and runs
// heartbeat and connect-timeout checks. It sleeps for the service interval
// only when a pass sent nothing.
func (b *Broker) serviceLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(b.config.ServiceInterval)
	defer timer.Stop()

	lastCheck := time.Now()
	for {
		if ctx.Err() != nil {
			return
		}
		sent := b.serviceQueues()
		b.destroyMarked()

		if now := time.Now(); now.Sub(lastCheck) >= b.checkInterval() {
			b.checkHeartbeats(now)
			b.reapPending(now)
			lastCheck = now
		}
		if sent {
			continue
		}

		timer.Reset(b.config.ServiceInterval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

func (b *Broker) checkInterval() time.Duration {
	return min(time.Second, b.config.Heartbeat.Interval/2)
}

// serviceQueues sends at most one message per client and reports whether
// anything was sent.
func (b *Broker) serviceQueues() bool {
	b.mu.RLock()
	clients := b.serviceBuf[:0]
	for _, c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	sent := false
	for _, c := range clients {
		packet, ok := c.pop()
		if !ok {
			continue
		}
		if err := c.conn.Send(packet); err != nil {
			b.debugLog("broker: send failed", "handle", c.handle, "error", err)
			b.markForDestruction(c.handle, destroyRequest{err: errors.Join(ErrConnectionLost, err)})
			continue
		}
		sent = true
	}

	clear(clients)
	b.serviceBuf = clients
	return sent
}

// checkHeartbeats destroys silent clients and queues a Null for clients
// the broker has not written to for a heartbeat interval.
func (b *Broker) checkHeartbeats(now time.Time) {
	b.mu.RLock()
	clients := make([]*brokerClient, 0, len(b.clients))
	for _, c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	for _, c := range clients {
		hb := c.conn.Heartbeat()
		if silence, expired := hb.Expired(now); expired {
			b.debugLog("broker: client heartbeat expired", "handle", c.handle, "silence", silence)
			b.markForDestruction(c.handle, destroyRequest{err: ErrHeartbeatTimeout})
			continue
		}
		if !c.isConnected() || !hb.NullDue(now) {
			continue
		}
		c.mu.RLock()
		idle := c.queue.len() == 0
		c.mu.RUnlock()
		if idle {
			b.enqueue(c, brokerSource, b.nullPacket)
		}
	}
}

// reapPending destroys sockets that never sent ClientConnect.
func (b *Broker) reapPending(now time.Time) {
	for _, h := range b.pending.Stale(now, b.config.ConnectTimeout) {
		b.debugLog("broker: no ClientConnect received", "handle", h)
		b.markForDestruction(h, destroyRequest{err: ErrConnectionLost})
	}
}

// markForDestruction schedules a client for destruction on the next
// service tick. The first request for a handle wins.
func (b *Broker) markForDestruction(handle int, req destroyRequest) {
	b.destroyMu.Lock()
	defer b.destroyMu.Unlock()
	if _, ok := b.toDestroy[handle]; !ok {
		b.toDestroy[handle] = req
	}
}

func (b *Broker) destroyMarked() {
	b.destroyMu.Lock()
	marked := b.toDestroy
	if len(marked) == 0 {
		b.destroyMu.Unlock()
		return
	}
	b.toDestroy = make(map[int]destroyRequest)
	b.destroyMu.Unlock()

	for handle, req := range marked {
		b.destroy(handle, req)
	}
}

// destroyAll destroys every client, announcing reason to connected ones.
func (b *Broker) destroyAll(reason wire.DisconnectReason) {
	b.destroyMarked()

	b.mu.RLock()
	handles := make([]int, 0, len(b.clients))
	for h := range b.clients {
		handles = append(handles, h)
	}
	b.mu.RUnlock()

	for _, h := range handles {
		b.destroy(h, destroyRequest{reason: reason, notify: true})
	}
}

func (b *Broker) destroy(handle int, req destroyRequest) {
	b.mu.Lock()
	c, ok := b.clients[handle]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.clients, handle)

	c.mu.RLock()
	connected := c.connected
	entry := c.entry
	c.mu.RUnlock()
	if connected {
		b.uids.remove(entry.UID())
		b.counts[entry.RPT.Type]--
		if entry.RPT.Type == wire.RPTClientTypeController {
			for _, other := range b.clients {
				other.removeSource(handle)
			}
		}
	}
	b.mu.Unlock()

	b.pending.Remove(handle)
	b.pool.remove(c)
	if req.notify && connected {
		if req.reason != wire.DisconnectCapacityExhausted {
			b.flush(c)
		}
		if err := c.conn.SendMessage(&wire.Disconnect{Reason: req.reason}); err != nil {
			b.debugLog("broker: sending Disconnect failed", "handle", handle, "error", err)
		}
	}
	_ = c.conn.Close()

	if !connected {
		return
	}
	b.debugLog("broker: client removed", "handle", handle, "uid", entry.UID(), "reason", req.reason, "error", req.err)
	b.publishClientList()
	b.emitEvent(Event{Type: EventClientDisconnected, Client: c.info(), Reason: req.reason, Err: req.err})
}

// flush sends whatever is still queued for c.
func (b *Broker) flush(c *brokerClient) {
	for {
		packet, ok := c.pop()
		if !ok {
			return
		}
		if err := c.conn.Send(packet); err != nil {
			return
		}
	}
}

// enqueue queues a packet for c. A full queue marks the client for
// destruction with CapacityExhausted; other clients are not affected.
func (b *Broker) enqueue(c *brokerClient, source int, packet []byte) {
	if !c.push(source, packet) {
		b.debugLog("broker: client queue full", "handle", c.handle)
		b.markForDestruction(c.handle, destroyRequest{reason: wire.DisconnectCapacityExhausted, notify: true})
	}
}

// enqueuePayload packs p with the broker CID and queues it for c.
func (b *Broker) enqueuePayload(c *brokerClient, p wire.Payload) {
	packet, err := wire.Encode(b.config.CID, p)
	if err != nil {
		b.debugLog("broker: encode failed", "message", wire.PayloadName(p), "error", err)
		return
	}
	b.enqueue(c, brokerSource, packet)
}

func isDecodeError(err error) bool {
	return errors.Is(err, transport.ErrDecode)
}
