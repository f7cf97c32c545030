package client

import (
	"fmt"

	"github.com/ETCLabs/rdmnet-go/pkg/connection"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/version"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
	"github.com/google/uuid"
)

// defaultPortID is the RDM port ID used for commands sent over RPT.
const defaultPortID = 1

// pendingKey identifies an outstanding request.
type pendingKey struct {
	seqnum uint32
	dest   rdm.UID
}

type pendingRequest struct {
	cmd *rdm.Command
	asm *ResponseAssembler
}

// SendCommand sends an RDM command to dest on endpoint and returns the RPT
// sequence number the response will carry. Responses are reported through
// EventHandler.RDMResponse or EventHandler.RPTStatus.
func (c *Client) SendCommand(h ScopeHandle, dest rdm.UID, endpoint uint16, class rdm.CommandClass, subdevice, pid uint16, data []byte) (uint32, error) {
	c.mu.Lock()
	s, ok := c.scopes[h]
	if !ok {
		c.mu.Unlock()
		return 0, ErrScopeNotFound
	}
	if s.machine.State() != connection.StateConnected {
		c.mu.Unlock()
		return 0, ErrNotConnected
	}
	msg, err := c.newRequestLocked(s, dest, endpoint, class, subdevice, pid, data)
	c.mu.Unlock()
	if err != nil {
		return 0, err
	}

	seqnum := msg.Header.Seqnum
	if err := c.connector.Send(h, msg); err != nil {
		c.mu.Lock()
		delete(s.pending, pendingKey{seqnum: seqnum, dest: dest})
		c.mu.Unlock()
		return 0, fmt.Errorf("sending %s: %w", rdm.PIDName(pid), err)
	}
	return seqnum, nil
}

// SendGet sends a GET command to the root device of dest.
func (c *Client) SendGet(h ScopeHandle, dest rdm.UID, pid uint16, data []byte) (uint32, error) {
	return c.SendCommand(h, dest, 0, rdm.CommandClassGet, 0, pid, data)
}

// SendSet sends a SET command to the root device of dest.
func (c *Client) SendSet(h ScopeHandle, dest rdm.UID, pid uint16, data []byte) (uint32, error) {
	return c.SendCommand(h, dest, 0, rdm.CommandClassSet, 0, pid, data)
}

// RequestDynamicUIDs asks the broker to assign dynamic UIDs for the given
// responder IDs. The answer arrives through EventHandler.DynamicUIDsAssigned.
func (c *Client) RequestDynamicUIDs(h ScopeHandle, reqs []wire.DynamicUIDRequest) error {
	return c.sendConnected(h, &wire.RequestDynamicUIDs{Requests: reqs})
}

// FetchDynamicUIDList asks the broker for the assignments of uids.
func (c *Client) FetchDynamicUIDList(h ScopeHandle, uids []rdm.UID) error {
	return c.sendConnected(h, &wire.FetchDynamicUIDList{UIDs: uids})
}

// FetchClientList asks the broker for its full client list.
func (c *Client) FetchClientList(h ScopeHandle) error {
	return c.sendConnected(h, &wire.FetchClientList{})
}

func (c *Client) sendConnected(h ScopeHandle, p wire.Payload) error {
	c.mu.Lock()
	s, ok := c.scopes[h]
	if !ok {
		c.mu.Unlock()
		return ErrScopeNotFound
	}
	connected := s.machine.State() == connection.StateConnected
	c.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}
	return c.connector.Send(h, p)
}

// newRequestLocked builds an RPT request and, unless dest is a broadcast,
// records it as outstanding.
func (c *Client) newRequestLocked(s *scope, dest rdm.UID, endpoint uint16, class rdm.CommandClass, subdevice, pid uint16, data []byte) (*wire.RPTMessage, error) {
	s.txn++
	cmd := &rdm.Command{
		Source:         s.uid,
		Dest:           dest,
		TransactionNum: s.txn,
		PortID:         defaultPortID,
		Subdevice:      subdevice,
		CommandClass:   class,
		ParamID:        pid,
		Data:           data,
	}
	buf, err := rdm.EncodeCommand(cmd)
	if err != nil {
		return nil, err
	}

	s.seqnum++
	if s.seqnum == 0 {
		s.seqnum = 1
	}
	if !dest.IsBroadcast() {
		s.pending[pendingKey{seqnum: s.seqnum, dest: dest}] = &pendingRequest{
			cmd: cmd,
			asm: NewResponseAssembler(c.config.MaxAckOverflowBytes),
		}
	}
	return &wire.RPTMessage{
		Header: wire.RPTHeader{
			SourceUID:    s.uid,
			DestUID:      dest,
			DestEndpoint: endpoint,
			Seqnum:       s.seqnum,
		},
		Body: &wire.RPTRequest{Command: buf},
	}, nil
}

// autoQueryLocked queues the version profile's standard GETs to dest.
func (c *Client) autoQueryLocked(s *scope, dest rdm.UID, acts *actions) {
	for _, pid := range version.CurrentProfile().AutoQuery {
		var data []byte
		if pid == rdm.PIDComponentScope {
			data = []byte{0x00, 0x01}
		}
		msg, err := c.newRequestLocked(s, dest, 0, rdm.CommandClassGet, 0, pid, data)
		if err != nil {
			c.debugLog("client: auto query", "pid", rdm.PIDName(pid), "error", err)
			continue
		}
		c.sendLocked(s, msg, acts)
	}
}

// lookupLocked finds the request a reply belongs to: by sequence number and
// responder UID, or by sequence number alone when the reply comes from the
// broker on the responder's behalf.
func (s *scope) lookupLocked(hdr wire.RPTHeader) (pendingKey, *pendingRequest) {
	key := pendingKey{seqnum: hdr.Seqnum, dest: hdr.SourceUID}
	if p, ok := s.pending[key]; ok {
		return key, p
	}
	if hdr.Seqnum == 0 {
		return key, nil
	}
	for k, p := range s.pending {
		if k.seqnum == hdr.Seqnum {
			return k, p
		}
	}
	return key, nil
}

// abandonLocked reports every outstanding request as abandoned.
func (c *Client) abandonLocked(s *scope, acts *actions) {
	h := s.handle
	for key, p := range s.pending {
		p.asm.Fail(ErrRequestAbandoned)
		res := c.resultLocked(s, wire.RPTHeader{SourceUID: key.dest, Seqnum: key.seqnum}, p.cmd, p.asm)
		acts.do(func() { c.handler.RDMResponse(h, res) })
	}
	clear(s.pending)
}

// HandleMessage is called by the connector for every message received on
// an established connection.
func (c *Client) HandleMessage(h ScopeHandle, msg wire.Message) {
	switch p := msg.Payload.(type) {
	case *wire.ClientList:
		c.handleClientList(h, p)
	case *wire.AssignedDynamicUIDs:
		c.handler.DynamicUIDsAssigned(h, p.Mappings)
	case *wire.RPTMessage:
		switch body := p.Body.(type) {
		case *wire.RPTNotification:
			c.handleNotification(h, p.Header, body)
		case *wire.RPTStatus:
			c.handleStatus(h, p.Header, body)
		case *wire.RPTRequest:
			c.handleRequest(h, p.Header, body)
		}
	case *wire.Unknown, *wire.Malformed:
		c.debugLog("client: undecodable message", "handle", h, "message", wire.PayloadName(p))
	default:
		c.debugLog("client: ignoring message", "handle", h, "message", wire.PayloadName(p))
	}
}

func (c *Client) handleClientList(h ScopeHandle, l *wire.ClientList) {
	var acts actions
	c.mu.Lock()
	s, ok := c.scopes[h]
	if !ok || s.machine.State() != connection.StateConnected {
		c.mu.Unlock()
		return
	}
	action, entries, done := s.lists.Add(l)
	if !done {
		c.mu.Unlock()
		return
	}

	var added []wire.ClientEntry
	switch action {
	case wire.ClientListReplace:
		old := s.clients
		s.clients = make(map[uuid.UUID]wire.ClientEntry, len(entries))
		for _, e := range entries {
			s.clients[e.CID] = e
			if _, known := old[e.CID]; !known {
				added = append(added, e)
			}
		}
	case wire.ClientListAdd, wire.ClientListChange:
		for _, e := range entries {
			if _, known := s.clients[e.CID]; !known {
				added = append(added, e)
			}
			s.clients[e.CID] = e
		}
	case wire.ClientListRemove:
		for _, e := range entries {
			delete(s.clients, e.CID)
		}
	}

	if c.config.Type == wire.RPTClientTypeController && c.config.AutoQuery {
		for _, e := range added {
			if e.RPT != nil && e.RPT.Type == wire.RPTClientTypeDevice && e.RPT.UID != s.uid {
				c.autoQueryLocked(s, e.RPT.UID, &acts)
			}
		}
	}
	acts.do(func() { c.handler.ClientListUpdate(h, action, entries) })
	c.mu.Unlock()
	_ = acts.run()
}

func (c *Client) handleNotification(h ScopeHandle, hdr wire.RPTHeader, n *wire.RPTNotification) {
	resps, decodeErr := n.Responses()

	var acts actions
	c.mu.Lock()
	s, ok := c.scopes[h]
	if !ok || s.machine.State() != connection.StateConnected {
		c.mu.Unlock()
		return
	}

	key, p := s.lookupLocked(hdr)
	if p == nil {
		c.unsolicitedLocked(s, hdr, n, resps, decodeErr, &acts)
		c.mu.Unlock()
		_ = acts.run()
		return
	}

	done := false
	for i, resp := range resps {
		switch p.asm.Add(resp) {
		case AssemblyIncomplete:
			continue
		case AssemblyTimer:
			res := c.resultLocked(s, hdr, p.cmd, p.asm)
			acts.do(func() { c.handler.RDMResponse(h, res) })
			continue
		}
		done = true
		if extra := len(resps) - i - 1; extra > 0 {
			c.debugLog("client: responses after final fragment", "handle", h, "seqnum", hdr.Seqnum, "count", extra)
		}
		break
	}
	if !done && decodeErr != nil {
		p.asm.Fail(fmt.Errorf("%w: %w", ErrFragmentMismatch, decodeErr))
		done = true
	}
	if done {
		delete(s.pending, key)
		res := c.resultLocked(s, hdr, p.cmd, p.asm)
		acts.do(func() { c.handler.RDMResponse(h, res) })
	}
	c.mu.Unlock()
	_ = acts.run()
}

// unsolicitedLocked reports responses that match no outstanding request,
// such as change notifications sent to all controllers.
func (c *Client) unsolicitedLocked(s *scope, hdr wire.RPTHeader, n *wire.RPTNotification, resps []*rdm.Response, decodeErr error, acts *actions) {
	h := s.handle
	cmd, _ := n.Command()
	asm := NewResponseAssembler(c.config.MaxAckOverflowBytes)
	flush := func() {
		res := c.resultLocked(s, hdr, cmd, asm)
		res.Unsolicited = true
		acts.do(func() { c.handler.RDMResponse(h, res) })
		asm = NewResponseAssembler(c.config.MaxAckOverflowBytes)
	}
	for _, resp := range resps {
		if asm.Add(resp) != AssemblyIncomplete {
			flush()
		}
	}
	if asm.Fragments() > 0 || decodeErr != nil {
		if decodeErr != nil {
			asm.Fail(decodeErr)
		} else {
			asm.Fail(fmt.Errorf("%w: overflow sequence not terminated", ErrFragmentMismatch))
		}
		flush()
	}
}

func (c *Client) handleStatus(h ScopeHandle, hdr wire.RPTHeader, st *wire.RPTStatus) {
	c.mu.Lock()
	s, ok := c.scopes[h]
	if !ok || s.machine.State() != connection.StateConnected {
		c.mu.Unlock()
		return
	}
	res := &StatusResult{
		Header: hdr,
		Seqnum: hdr.Seqnum,
		Code:   st.Code,
		Text:   st.Text,
	}
	if key, p := s.lookupLocked(hdr); p != nil {
		res.Command = p.cmd
		delete(s.pending, key)
	}
	c.mu.Unlock()

	c.handler.RPTStatus(h, res)
}

// resultLocked builds the result of an assembly. Complete
// SUPPORTED_PARAMETERS answers get the baseline PIDs of the responder's
// role added.
func (c *Client) resultLocked(s *scope, hdr wire.RPTHeader, cmd *rdm.Command, asm *ResponseAssembler) *ResponseResult {
	res := &ResponseResult{
		Header:  hdr,
		Source:  hdr.SourceUID,
		Seqnum:  hdr.Seqnum,
		Command: cmd,
		Data:    asm.Data(),
		Partial: asm.Partial(),
		Err:     asm.Err(),
	}
	if last := asm.Last(); last != nil {
		res.Source = last.Source
		res.ResponseType = last.ResponseType
		res.CommandClass = last.CommandClass
		res.ParamID = last.ParamID
		res.Subdevice = last.Subdevice
	} else if cmd != nil {
		res.CommandClass = cmd.CommandClass.ResponseClass()
		res.ParamID = cmd.ParamID
		res.Subdevice = cmd.Subdevice
	}

	if res.ParamID == rdm.PIDSupportedParameters &&
		res.CommandClass == rdm.CommandClassGetResponse &&
		res.ResponseType == rdm.ResponseTypeAck {
		res.Data = AugmentSupportedParameters(res.Data, BaselinePIDs(s.roleOf(res.Source)))
	}
	return res
}

// roleOf returns the version profile role of a component on the scope.
func (s *scope) roleOf(uid rdm.UID) string {
	if uid == s.connected.BrokerUID {
		return version.RoleBroker
	}
	for _, e := range s.clients {
		if e.RPT != nil && e.RPT.UID == uid && e.RPT.Type == wire.RPTClientTypeController {
			return version.RoleController
		}
	}
	return version.RoleDevice
}
