package broker

import (
	"errors"

	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
)

// handleRPT routes an RPT message from a connected client.
func (b *Broker) handleRPT(c *brokerClient, m *wire.RPTMessage) {
	switch c.rptType() {
	case wire.RPTClientTypeController:
		b.fromController(c, m)
	case wire.RPTClientTypeDevice:
		b.fromDevice(c, m)
	}
}

func (b *Broker) fromController(c *brokerClient, m *wire.RPTMessage) {
	switch body := m.Body.(type) {
	case *wire.RPTRequest:
		b.routeRequest(c, m.Header, body)
	case *wire.RPTNotification:
		b.debugLog("broker: notification from controller dropped", "handle", c.handle, "header", m.Header)
	case *wire.RPTStatus:
		b.debugLog("broker: status from controller dropped", "handle", c.handle, "header", m.Header, "code", body.Code)
	}
}

func (b *Broker) fromDevice(c *brokerClient, m *wire.RPTMessage) {
	switch body := m.Body.(type) {
	case *wire.RPTNotification:
		b.routeNotification(c, m)
	case *wire.RPTStatus:
		b.routeStatus(c, m, body)
	case *wire.RPTRequest:
		b.sendStatus(c, m.Header, wire.RPTStatusInvalidMessage, "")
	}
}

// routeRequest delivers a controller's request to its destination device,
// to every device of a broadcast, or to the broker's own responder.
func (b *Broker) routeRequest(c *brokerClient, hdr wire.RPTHeader, req *wire.RPTRequest) {
	cmd, err := req.UnpackCommand()
	switch {
	case errors.Is(err, rdm.ErrNotCommand):
		b.sendStatus(c, hdr, wire.RPTStatusInvalidCommandClass, "")
		return
	case err != nil:
		b.sendStatus(c, hdr, wire.RPTStatusInvalidMessage, "")
		return
	case cmd.CommandClass != rdm.CommandClassGet && cmd.CommandClass != rdm.CommandClassSet:
		b.sendStatus(c, hdr, wire.RPTStatusInvalidCommandClass, "")
		return
	}

	switch {
	case hdr.DestUID == b.config.UID:
		b.answerRequest(c, hdr, req, cmd)
	case hdr.DestUID.IsDeviceBroadcast():
		b.broadcastRequest(c, hdr, req)
	default:
		dest := b.lookup(hdr.DestUID)
		if dest == nil || !dest.isDevice() {
			b.sendStatus(c, hdr, wire.RPTStatusUnknownRPTUID, "")
			return
		}
		b.forward(dest, c.handle, &wire.RPTMessage{Header: hdr, Body: req})
	}
}

// answerRequest lets the broker's responder answer a request addressed to
// the broker. The reply echoes the command as E1.33 notifications do.
func (b *Broker) answerRequest(c *brokerClient, hdr wire.RPTHeader, req *wire.RPTRequest, cmd *rdm.Command) {
	if hdr.DestEndpoint != wire.NullEndpoint {
		b.sendStatus(c, hdr, wire.RPTStatusUnknownEndpoint, "")
		return
	}
	resps := b.responder.Handle(cmd)
	if len(resps) == 0 {
		return
	}

	msgs := make([][]byte, 0, len(resps)+1)
	msgs = append(msgs, req.Command)
	for _, resp := range resps {
		buf, err := rdm.EncodeResponse(resp)
		if err != nil {
			b.debugLog("broker: encoding response failed", "pid", cmd.ParamID, "error", err)
			return
		}
		msgs = append(msgs, buf)
	}
	b.enqueuePayload(c, &wire.RPTMessage{
		Header: replyHeader(hdr),
		Body:   &wire.RPTNotification{Messages: msgs},
	})
}

// broadcastRequest queues the request for every matching device and tells
// the controller the broadcast went out.
func (b *Broker) broadcastRequest(c *brokerClient, hdr wire.RPTHeader, req *wire.RPTRequest) {
	manu, single := hdr.DestUID.IsDeviceManufacturerBroadcast()

	b.mu.RLock()
	targets := make([]*brokerClient, 0, b.counts[wire.RPTClientTypeDevice])
	for _, d := range b.clients {
		if !d.isDevice() {
			continue
		}
		if single && d.info().Entry.UID().Manufacturer != manu {
			continue
		}
		targets = append(targets, d)
	}
	b.mu.RUnlock()

	packet, err := wire.Encode(b.config.CID, &wire.RPTMessage{Header: hdr, Body: req})
	if err != nil {
		b.debugLog("broker: encoding broadcast failed", "error", err)
		return
	}
	for _, d := range targets {
		b.enqueue(d, c.handle, packet)
	}
	b.sendStatus(c, hdr, wire.RPTStatusBroadcastComplete, "")
}

// routeNotification delivers a device's notification to one controller or
// to all of them. An unknown destination is dropped.
func (b *Broker) routeNotification(c *brokerClient, m *wire.RPTMessage) {
	if m.Header.DestUID.IsControllerBroadcast() {
		b.mu.RLock()
		targets := make([]*brokerClient, 0, b.counts[wire.RPTClientTypeController])
		for _, ctl := range b.clients {
			if ctl.isController() {
				targets = append(targets, ctl)
			}
		}
		b.mu.RUnlock()

		packet, err := wire.Encode(b.config.CID, m)
		if err != nil {
			b.debugLog("broker: encoding notification failed", "error", err)
			return
		}
		for _, ctl := range targets {
			b.enqueue(ctl, c.handle, packet)
		}
		return
	}

	dest := b.lookup(m.Header.DestUID)
	if dest == nil || !dest.isController() {
		b.debugLog("broker: notification for unknown controller dropped", "handle", c.handle, "header", m.Header)
		return
	}
	b.forward(dest, c.handle, m)
}

// routeStatus delivers a device's status to the controller it answers.
func (b *Broker) routeStatus(c *brokerClient, m *wire.RPTMessage, status *wire.RPTStatus) {
	dest := b.lookup(m.Header.DestUID)
	if dest == nil || !dest.isController() {
		b.debugLog("broker: status for unknown controller dropped", "handle", c.handle,
			"header", m.Header, "code", status.Code)
		return
	}
	b.forward(dest, c.handle, m)
}

func (b *Broker) lookup(uid rdm.UID) *brokerClient {
	b.mu.RLock()
	defer b.mu.RUnlock()
	h, ok := b.uids.lookup(uid)
	if !ok {
		return nil
	}
	return b.clients[h]
}

func (b *Broker) forward(dest *brokerClient, source int, m *wire.RPTMessage) {
	packet, err := wire.Encode(b.config.CID, m)
	if err != nil {
		b.debugLog("broker: encoding forwarded message failed", "header", m.Header, "error", err)
		return
	}
	b.enqueue(dest, source, packet)
}

// sendStatus answers the message with header hdr with an RPT Status. The
// status comes from the original destination.
func (b *Broker) sendStatus(c *brokerClient, hdr wire.RPTHeader, code wire.RPTStatusCode, text string) {
	b.debugLog("broker: sending status", "handle", c.handle, "header", hdr, "code", code)
	b.enqueuePayload(c, &wire.RPTMessage{
		Header: replyHeader(hdr),
		Body:   &wire.RPTStatus{Code: code, Text: text},
	})
}

func replyHeader(hdr wire.RPTHeader) wire.RPTHeader {
	return wire.RPTHeader{
		SourceUID:      hdr.DestUID,
		SourceEndpoint: hdr.DestEndpoint,
		DestUID:        hdr.SourceUID,
		DestEndpoint:   hdr.SourceEndpoint,
		Seqnum:         hdr.Seqnum,
	}
}
