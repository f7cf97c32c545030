package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"net/netip"

	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/google/uuid"
)

// MaxClientEntriesPerChunk bounds how many entries Decode puts into one
// ClientList. Longer lists are split into chunks with Partial set on all
// but the last.
const MaxClientEntriesPerChunk = 64

// Decode parses a root layer block (the bytes following the TCP preamble).
// A block may hold several root layer PDUs; the messages decoded before an
// error are returned along with it.
func Decode(block []byte) ([]Message, error) {
	var out []Message
	for len(block) > 0 {
		pdu, rest, err := nextPDU(block, RootHeaderSize)
		if err != nil {
			return out, err
		}
		block = rest

		vector := binary.BigEndian.Uint32(pdu[3:])
		var cid uuid.UUID
		copy(cid[:], pdu[7:7+CIDSize])
		data := pdu[RootHeaderSize:]

		var payloads []Payload
		switch vector {
		case RootVectorBroker:
			payloads, err = decodeBroker(data)
		case RootVectorRPT:
			var p Payload
			p, err = decodeRPT(data)
			if p != nil {
				payloads = []Payload{p}
			}
		default:
			payloads = []Payload{&Unknown{RootVector: vector}}
		}
		for _, p := range payloads {
			out = append(out, Message{SenderCID: cid, Payload: p})
		}
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

func decodeBroker(b []byte) ([]Payload, error) {
	pdu, _, err := nextPDU(b, BrokerHeaderSize)
	if err != nil {
		return nil, err
	}
	vector := binary.BigEndian.Uint16(pdu[3:])
	d := pdu[BrokerHeaderSize:]

	one := func(p Payload, err error) ([]Payload, error) {
		if err != nil {
			return nil, err
		}
		return []Payload{p}, nil
	}

	switch vector {
	case VectorBrokerConnect:
		return one(decodeClientConnect(d))
	case VectorBrokerConnectReply:
		if len(d) < connectReplyDataLen {
			return nil, fmt.Errorf("%w: connect reply %d bytes", ErrMalformed, len(d))
		}
		return one(&ConnectReply{
			Code:        ConnectStatus(binary.BigEndian.Uint16(d)),
			E133Version: binary.BigEndian.Uint16(d[2:]),
			BrokerUID:   rdm.GetUID(d[4:]),
			ClientUID:   rdm.GetUID(d[10:]),
		}, nil)
	case VectorBrokerClientEntryUpdate:
		if len(d) < 1 {
			return nil, fmt.Errorf("%w: empty client entry update", ErrMalformed)
		}
		entry, _, err := parseClientEntry(d[1:])
		return one(&ClientEntryUpdate{IncrementalUpdates: d[0]&ConnectFlagIncrementalUpdates != 0, Entry: entry}, err)
	case VectorBrokerRedirectV4, VectorBrokerRedirectV6:
		return one(decodeRedirect(vector, d))
	case VectorBrokerFetchClientList:
		return one(&FetchClientList{}, nil)
	case VectorBrokerConnectedClientList, VectorBrokerClientAdd, VectorBrokerClientRemove, VectorBrokerClientEntryChange:
		return decodeClientList(ClientListAction(vector), d)
	case VectorBrokerRequestDynamicUIDs:
		if len(d)%dynamicUIDRequestLen != 0 {
			return nil, fmt.Errorf("%w: dynamic UID request list %d bytes", ErrMalformed, len(d))
		}
		msg := &RequestDynamicUIDs{}
		for off := 0; off < len(d); off += dynamicUIDRequestLen {
			r := DynamicUIDRequest{UID: rdm.GetUID(d[off:])}
			copy(r.RID[:], d[off+6:off+dynamicUIDRequestLen])
			msg.Requests = append(msg.Requests, r)
		}
		return one(msg, nil)
	case VectorBrokerAssignedDynamicUIDs:
		if len(d)%dynamicUIDMappingLen != 0 {
			return nil, fmt.Errorf("%w: dynamic UID mapping list %d bytes", ErrMalformed, len(d))
		}
		msg := &AssignedDynamicUIDs{}
		for off := 0; off < len(d); off += dynamicUIDMappingLen {
			m := DynamicUIDMapping{UID: rdm.GetUID(d[off:])}
			copy(m.RID[:], d[off+6:off+6+CIDSize])
			m.Status = DynamicUIDStatus(binary.BigEndian.Uint16(d[off+6+CIDSize:]))
			msg.Mappings = append(msg.Mappings, m)
		}
		return one(msg, nil)
	case VectorBrokerFetchDynamicUIDList:
		if len(d)%rdm.UIDSize != 0 {
			return nil, fmt.Errorf("%w: UID list %d bytes", ErrMalformed, len(d))
		}
		msg := &FetchDynamicUIDList{}
		for off := 0; off < len(d); off += rdm.UIDSize {
			msg.UIDs = append(msg.UIDs, rdm.GetUID(d[off:]))
		}
		return one(msg, nil)
	case VectorBrokerDisconnect:
		if len(d) < 2 {
			return nil, fmt.Errorf("%w: disconnect %d bytes", ErrMalformed, len(d))
		}
		return one(&Disconnect{Reason: DisconnectReason(binary.BigEndian.Uint16(d))}, nil)
	case VectorBrokerNull:
		return one(&Null{}, nil)
	default:
		return one(&Unknown{RootVector: RootVectorBroker, Vector: uint32(vector)}, nil)
	}
}

func decodeClientConnect(d []byte) (Payload, error) {
	if len(d) < clientConnectFixedLen {
		return nil, fmt.Errorf("%w: client connect %d bytes", ErrMalformed, len(d))
	}
	msg := &ClientConnect{
		Scope:              getPadded(d[:ScopeStringSize]),
		E133Version:        binary.BigEndian.Uint16(d[ScopeStringSize:]),
		SearchDomain:       getPadded(d[ScopeStringSize+2 : ScopeStringSize+2+DomainStringSize]),
		IncrementalUpdates: d[clientConnectFixedLen-1]&ConnectFlagIncrementalUpdates != 0,
	}
	entry, _, err := parseClientEntry(d[clientConnectFixedLen:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidClientEntry, err)
	}
	msg.Entry = entry
	return msg, nil
}

func decodeRedirect(vector uint16, d []byte) (Payload, error) {
	addrLen := 4
	if vector == VectorBrokerRedirectV6 {
		addrLen = 16
	}
	if len(d) < addrLen+2 {
		return nil, fmt.Errorf("%w: redirect %d bytes", ErrMalformed, len(d))
	}
	addr, _ := netip.AddrFromSlice(d[:addrLen])
	return &Redirect{Addr: netip.AddrPortFrom(addr, binary.BigEndian.Uint16(d[addrLen:]))}, nil
}

func decodeClientList(action ClientListAction, d []byte) ([]Payload, error) {
	s := NewClientListStream(action, d, MaxClientEntriesPerChunk)
	var out []Payload
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, chunk)
	}
}

// ClientListStream yields the entries of a client list PDU in bounded chunks.
type ClientListStream struct {
	action ClientListAction
	data   []byte
	max    int
	done   bool
}

// NewClientListStream returns a stream over the packed client entries in
// data, yielding at most maxEntries per chunk.
func NewClientListStream(action ClientListAction, data []byte, maxEntries int) *ClientListStream {
	if maxEntries <= 0 {
		maxEntries = MaxClientEntriesPerChunk
	}
	return &ClientListStream{action: action, data: data, max: maxEntries}
}

// Next returns the next chunk, or io.EOF after the chunk with Partial
// unset. An empty list yields one empty, non-partial chunk.
func (s *ClientListStream) Next() (*ClientList, error) {
	if s.done {
		return nil, io.EOF
	}
	chunk := &ClientList{Action: s.action}
	for len(s.data) > 0 && len(chunk.Entries) < s.max {
		entry, rest, err := parseClientEntry(s.data)
		if err != nil {
			s.done = true
			return nil, err
		}
		chunk.Entries = append(chunk.Entries, entry)
		s.data = rest
	}
	chunk.Partial = len(s.data) > 0
	s.done = !chunk.Partial
	return chunk, nil
}

func decodeRPT(b []byte) (Payload, error) {
	pdu, _, err := nextPDU(b, RPTHeaderSize)
	if err != nil {
		return nil, err
	}
	vector := binary.BigEndian.Uint32(pdu[3:])
	hdr := RPTHeader{
		SourceUID:      rdm.GetUID(pdu[7:]),
		SourceEndpoint: binary.BigEndian.Uint16(pdu[13:]),
		DestUID:        rdm.GetUID(pdu[15:]),
		DestEndpoint:   binary.BigEndian.Uint16(pdu[21:]),
		Seqnum:         binary.BigEndian.Uint32(pdu[23:]),
	}
	d := pdu[RPTHeaderSize:]

	malformed := func(err error) (Payload, error) {
		return &Malformed{RootVector: RootVectorRPT, Vector: vector, RPTHeader: &hdr, Err: err}, nil
	}

	switch vector {
	case VectorRPTRequest:
		msgs, err := decodeRDMList(d)
		if err != nil {
			return malformed(err)
		}
		if len(msgs) != 1 {
			return malformed(fmt.Errorf("%w: request carries %d RDM commands", ErrMalformed, len(msgs)))
		}
		return &RPTMessage{Header: hdr, Body: &RPTRequest{Command: msgs[0]}}, nil
	case VectorRPTNotification:
		msgs, err := decodeRDMList(d)
		if err != nil {
			return malformed(err)
		}
		if len(msgs) == 0 {
			return malformed(ErrEmptyNotification)
		}
		return &RPTMessage{Header: hdr, Body: &RPTNotification{Messages: msgs}}, nil
	case VectorRPTStatus:
		sp, _, err := nextPDU(d, StatusHeaderSize)
		if err != nil {
			return malformed(err)
		}
		text := sp[StatusHeaderSize:]
		if len(text) > MaxStatusStringLen {
			return malformed(fmt.Errorf("%w: %d bytes", ErrStatusStringTooLong, len(text)))
		}
		return &RPTMessage{Header: hdr, Body: &RPTStatus{
			Code: RPTStatusCode(binary.BigEndian.Uint16(sp[3:])),
			Text: getPadded(text),
		}}, nil
	default:
		return &Unknown{RootVector: RootVectorRPT, Vector: vector, RPTHeader: &hdr}, nil
	}
}

// decodeRDMList parses a Request/Notification PDU into raw RDM buffers. The
// buffers are copied so they outlive the receive buffer. Their contents are
// not validated here.
func decodeRDMList(b []byte) ([][]byte, error) {
	pdu, _, err := nextPDU(b, RequestHeaderSize)
	if err != nil {
		return nil, err
	}
	if v := binary.BigEndian.Uint32(pdu[3:]); v != VectorRequestRDMCommand {
		return nil, fmt.Errorf("%w: RDM list vector %#x", ErrMalformed, v)
	}
	var msgs [][]byte
	for d := pdu[RequestHeaderSize:]; len(d) > 0; {
		cmd, rest, err := nextPDU(d, RDMCommandHeader+1)
		if err != nil {
			return nil, err
		}
		if cmd[RDMCommandHeader] != rdm.StartCode {
			return nil, fmt.Errorf("%w: RDM command PDU vector %#02x", ErrMalformed, cmd[RDMCommandHeader])
		}
		msgs = append(msgs, append([]byte(nil), cmd[RDMCommandHeader:]...))
		d = rest
	}
	return msgs, nil
}
