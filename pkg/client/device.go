package client

import (
	"fmt"

	"github.com/ETCLabs/rdmnet-go/pkg/connection"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/responder"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
)

// bindResponder connects the E1.33 parameters of the device responder to
// the client's scopes.
func (c *Client) bindResponder() {
	c.resp.OnScopeChange(func(slot uint16, cfg responder.ScopeConfig) error {
		sc := ScopeConfig{Scope: cfg.Scope, StaticBroker: cfg.StaticBroker}
		if err := sc.Validate(); err != nil {
			return responder.Nack(rdm.NackFormatError)
		}
		h, ok := c.firstScope()
		if !ok {
			return responder.Nack(rdm.NackDataOutOfRange)
		}
		c.deferAfterReply(func() {
			if err := c.ChangeScope(h, sc, wire.DisconnectRPTReconfigure); err != nil {
				c.debugLog("client: scope change from COMPONENT_SCOPE", "error", err)
			}
		})
		return nil
	})
	c.resp.OnSearchDomainChange(func(domain string) error {
		c.deferAfterReply(func() {
			if err := c.ChangeSearchDomain(domain, wire.DisconnectRPTReconfigure); err != nil {
				c.debugLog("client: search domain change from SEARCH_DOMAIN", "error", err)
			}
		})
		return nil
	})
	c.resp.OnResetTCPStats(c.resetTCPStats)
	c.resp.SetTCPCommsStatusSource(c.tcpCommsStatus)
}

func (c *Client) firstScope() (ScopeHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	scopes := c.sortedScopesLocked()
	if len(scopes) == 0 {
		return 0, false
	}
	return scopes[0].handle, true
}

func (c *Client) resetTCPStats(scopeName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.scopes {
		if s.config.Scope == scopeName {
			s.unhealthy = 0
			return nil
		}
	}
	return responder.Nack(rdm.NackDataOutOfRange)
}

func (c *Client) tcpCommsStatus() []responder.TCPCommsEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []responder.TCPCommsEntry
	for _, s := range c.sortedScopesLocked() {
		info := s.info()
		out = append(out, responder.TCPCommsEntry{
			Scope:           info.Config.Scope,
			BrokerAddr:      info.BrokerAddr,
			UnhealthyEvents: info.UnhealthyEvents,
		})
	}
	return out
}

func (c *Client) deferAfterReply(fn func()) {
	c.deferMu.Lock()
	c.deferred = append(c.deferred, fn)
	c.deferMu.Unlock()
}

func (c *Client) runDeferred() {
	c.deferMu.Lock()
	fns := c.deferred
	c.deferred = nil
	c.deferMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// handleRequest answers an RDM command addressed to this Device.
func (c *Client) handleRequest(h ScopeHandle, hdr wire.RPTHeader, req *wire.RPTRequest) {
	if c.config.Type != wire.RPTClientTypeDevice {
		c.debugLog("client: request received by controller", "handle", h, "header", hdr)
		return
	}

	cmd, err := req.UnpackCommand()
	if err != nil {
		c.debugLog("client: bad RDM command", "handle", h, "error", err)
		_ = c.SendStatus(h, hdr, wire.RPTStatusInvalidMessage, "")
		return
	}
	if hdr.DestEndpoint != 0 {
		_ = c.SendStatus(h, hdr, wire.RPTStatusUnknownEndpoint, "")
		return
	}
	if c.resp == nil {
		c.handler.RDMCommand(h, cmd, hdr)
		return
	}

	resps := c.resp.Handle(cmd)
	if len(resps) > 0 {
		if err := c.SendResponse(h, hdr, cmd, resps); err != nil {
			c.debugLog("client: sending response", "handle", h, "error", err)
		}
	}
	c.runDeferred()
}

// SendResponse answers the command carried by a request with header hdr.
// The notification echoes the command followed by the responses.
func (c *Client) SendResponse(h ScopeHandle, hdr wire.RPTHeader, cmd *rdm.Command, resps []*rdm.Response) error {
	cmdBuf, err := rdm.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	return c.notify(h, wire.RPTHeader{
		SourceEndpoint: hdr.DestEndpoint,
		DestUID:        hdr.SourceUID,
		DestEndpoint:   hdr.SourceEndpoint,
		Seqnum:         hdr.Seqnum,
	}, cmdBuf, resps)
}

// SendUnsolicited sends responses to every controller, announcing a change
// not caused by a command.
func (c *Client) SendUnsolicited(h ScopeHandle, resps []*rdm.Response) error {
	return c.notify(h, wire.RPTHeader{DestUID: rdm.RPTAllControllers}, nil, resps)
}

// SendStatus reports a problem with the request carrying hdr back to its
// sender.
func (c *Client) SendStatus(h ScopeHandle, hdr wire.RPTHeader, code wire.RPTStatusCode, text string) error {
	uid, err := c.deviceUID(h)
	if err != nil {
		return err
	}
	return c.connector.Send(h, &wire.RPTMessage{
		Header: wire.RPTHeader{
			SourceUID:      uid,
			SourceEndpoint: hdr.DestEndpoint,
			DestUID:        hdr.SourceUID,
			DestEndpoint:   hdr.SourceEndpoint,
			Seqnum:         hdr.Seqnum,
		},
		Body: &wire.RPTStatus{Code: code, Text: text},
	})
}

func (c *Client) notify(h ScopeHandle, hdr wire.RPTHeader, cmdBuf []byte, resps []*rdm.Response) error {
	uid, err := c.deviceUID(h)
	if err != nil {
		return err
	}
	hdr.SourceUID = uid

	msgs := make([][]byte, 0, len(resps)+1)
	if cmdBuf != nil {
		msgs = append(msgs, cmdBuf)
	}
	for _, r := range resps {
		if r.Source.IsZero() {
			r.Source = uid
		}
		buf, err := rdm.EncodeResponse(r)
		if err != nil {
			return fmt.Errorf("packing %s response: %w", rdm.PIDName(r.ParamID), err)
		}
		msgs = append(msgs, buf)
	}
	return c.connector.Send(h, &wire.RPTMessage{Header: hdr, Body: &wire.RPTNotification{Messages: msgs}})
}

func (c *Client) deviceUID(h ScopeHandle) (rdm.UID, error) {
	if c.config.Type != wire.RPTClientTypeDevice {
		return rdm.UID{}, ErrNotDevice
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.scopes[h]
	if !ok {
		return rdm.UID{}, ErrScopeNotFound
	}
	if s.machine.State() != connection.StateConnected {
		return rdm.UID{}, ErrNotConnected
	}
	return s.uid, nil
}
