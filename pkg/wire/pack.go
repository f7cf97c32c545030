package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/google/uuid"
)

// BufSize returns the exact number of bytes Pack writes for p, including
// the TCP preamble. It returns 0 for payloads that cannot be packed.
func BufSize(p Payload) int {
	n := innerSize(p)
	if n == 0 {
		return 0
	}
	return PreambleSize + RootHeaderSize + n
}

// Pack writes p, sent by senderCID, into buf as one complete TCP block and
// returns the number of bytes written. Nothing is written when buf is
// shorter than BufSize(p).
func Pack(buf []byte, senderCID uuid.UUID, p Payload) (int, error) {
	if err := validatePayload(p); err != nil {
		return 0, err
	}
	size := BufSize(p)
	if size == 0 {
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedPayload, p)
	}
	rootLen := size - PreambleSize
	if err := checkPDULength(rootLen); err != nil {
		return 0, err
	}
	if len(buf) < size {
		return 0, fmt.Errorf("%w: need %d, have %d", ErrBufferTooSmall, size, len(buf))
	}

	PutPreamble(buf, rootLen)
	b := buf[PreambleSize:]
	putFlagsLength(b, rootLen)
	copy(b[7:], senderCID[:])
	b = b[RootHeaderSize:]

	switch v := p.(type) {
	case *RPTMessage:
		binary.BigEndian.PutUint32(buf[PreambleSize+3:], RootVectorRPT)
		packRPT(b, v)
	default:
		binary.BigEndian.PutUint32(buf[PreambleSize+3:], RootVectorBroker)
		packBroker(b, p)
	}
	return size, nil
}

// Encode packs p into a newly allocated buffer of exactly BufSize(p) bytes.
func Encode(senderCID uuid.UUID, p Payload) ([]byte, error) {
	size := BufSize(p)
	if size == 0 {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPayload, p)
	}
	buf := make([]byte, size)
	if _, err := Pack(buf, senderCID, p); err != nil {
		return nil, err
	}
	return buf, nil
}

func validatePayload(p Payload) error {
	switch v := p.(type) {
	case *ClientConnect:
		if len(v.Scope) > MaxScopeLen {
			return fmt.Errorf("%w: %d bytes", ErrScopeTooLong, len(v.Scope))
		}
		if len(v.SearchDomain) > MaxDomainLen {
			return fmt.Errorf("%w: %d bytes", ErrSearchDomainTooLong, len(v.SearchDomain))
		}
		return v.Entry.Validate()
	case *ClientEntryUpdate:
		return v.Entry.Validate()
	case *ClientList:
		for i := range v.Entries {
			if err := v.Entries[i].Validate(); err != nil {
				return err
			}
		}
	case *Redirect:
		if !v.Addr.IsValid() {
			return fmt.Errorf("%w: invalid redirect address", ErrMalformed)
		}
	case *RPTMessage:
		switch body := v.Body.(type) {
		case *RPTRequest:
			return validateRDMBuffer(body.Command)
		case *RPTStatus:
			if len(body.Text) > MaxStatusStringLen {
				return fmt.Errorf("%w: %d bytes", ErrStatusStringTooLong, len(body.Text))
			}
		case *RPTNotification:
			if len(body.Messages) == 0 {
				return ErrEmptyNotification
			}
			for _, m := range body.Messages {
				if err := validateRDMBuffer(m); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func validateRDMBuffer(b []byte) error {
	if err := rdm.ValidateMessage(b); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRDMBuffer, err)
	}
	return nil
}

// innerSize returns the size of the PDU carried by the root layer.
func innerSize(p Payload) int {
	if m, ok := p.(*RPTMessage); ok {
		return rptSize(m)
	}
	n, ok := brokerDataLen(p)
	if !ok {
		return 0
	}
	return BrokerHeaderSize + n
}

func rptSize(m *RPTMessage) int {
	switch body := m.Body.(type) {
	case *RPTRequest:
		return RPTHeaderSize + RequestHeaderSize + RDMCommandHeader + len(body.Command)
	case *RPTStatus:
		return RPTHeaderSize + StatusHeaderSize + len(body.Text)
	case *RPTNotification:
		n := RPTHeaderSize + RequestHeaderSize
		for _, msg := range body.Messages {
			n += RDMCommandHeader + len(msg)
		}
		return n
	}
	return 0
}

func packRPT(b []byte, m *RPTMessage) {
	n := rptSize(m)
	putFlagsLength(b, n)
	h := &m.Header
	rdm.PutUID(b[7:], h.SourceUID)
	binary.BigEndian.PutUint16(b[13:], h.SourceEndpoint)
	rdm.PutUID(b[15:], h.DestUID)
	binary.BigEndian.PutUint16(b[21:], h.DestEndpoint)
	binary.BigEndian.PutUint32(b[23:], h.Seqnum)
	b[27] = 0
	inner := b[RPTHeaderSize:n]

	switch body := m.Body.(type) {
	case *RPTRequest:
		binary.BigEndian.PutUint32(b[3:], VectorRPTRequest)
		packRDMList(inner, [][]byte{body.Command})
	case *RPTNotification:
		binary.BigEndian.PutUint32(b[3:], VectorRPTNotification)
		packRDMList(inner, body.Messages)
	case *RPTStatus:
		binary.BigEndian.PutUint32(b[3:], VectorRPTStatus)
		putFlagsLength(inner, len(inner))
		binary.BigEndian.PutUint16(inner[3:], uint16(body.Code))
		copy(inner[StatusHeaderSize:], body.Text)
	}
}

// packRDMList writes a Request or Notification PDU holding msgs.
func packRDMList(b []byte, msgs [][]byte) {
	putFlagsLength(b, len(b))
	binary.BigEndian.PutUint32(b[3:], VectorRequestRDMCommand)
	off := RequestHeaderSize
	for _, m := range msgs {
		putFlagsLength(b[off:], RDMCommandHeader+len(m))
		copy(b[off+RDMCommandHeader:], m)
		off += RDMCommandHeader + len(m)
	}
}

// brokerDataLen returns the broker PDU data length of p.
func brokerDataLen(p Payload) (int, bool) {
	switch v := p.(type) {
	case *ClientConnect:
		return clientConnectFixedLen + v.Entry.size(), true
	case *ConnectReply:
		return connectReplyDataLen, true
	case *ClientEntryUpdate:
		return 1 + v.Entry.size(), true
	case *Redirect:
		if v.Addr.Addr().Is4() {
			return 4 + 2, true
		}
		return 16 + 2, true
	case *FetchClientList, *Null:
		return 0, true
	case *ClientList:
		n := 0
		for i := range v.Entries {
			n += v.Entries[i].size()
		}
		return n, true
	case *RequestDynamicUIDs:
		return len(v.Requests) * dynamicUIDRequestLen, true
	case *AssignedDynamicUIDs:
		return len(v.Mappings) * dynamicUIDMappingLen, true
	case *FetchDynamicUIDList:
		return len(v.UIDs) * rdm.UIDSize, true
	case *Disconnect:
		return 2, true
	}
	return 0, false
}

func brokerVector(p Payload) uint16 {
	switch v := p.(type) {
	case *ClientConnect:
		return VectorBrokerConnect
	case *ConnectReply:
		return VectorBrokerConnectReply
	case *ClientEntryUpdate:
		return VectorBrokerClientEntryUpdate
	case *Redirect:
		if v.Addr.Addr().Is4() {
			return VectorBrokerRedirectV4
		}
		return VectorBrokerRedirectV6
	case *FetchClientList:
		return VectorBrokerFetchClientList
	case *ClientList:
		return uint16(v.Action)
	case *RequestDynamicUIDs:
		return VectorBrokerRequestDynamicUIDs
	case *AssignedDynamicUIDs:
		return VectorBrokerAssignedDynamicUIDs
	case *FetchDynamicUIDList:
		return VectorBrokerFetchDynamicUIDList
	case *Disconnect:
		return VectorBrokerDisconnect
	default:
		return VectorBrokerNull
	}
}

func packBroker(b []byte, p Payload) {
	dataLen, _ := brokerDataLen(p)
	putFlagsLength(b, BrokerHeaderSize+dataLen)
	binary.BigEndian.PutUint16(b[3:], brokerVector(p))
	d := b[BrokerHeaderSize : BrokerHeaderSize+dataLen]

	switch v := p.(type) {
	case *ClientConnect:
		putPadded(d[:ScopeStringSize], v.Scope)
		binary.BigEndian.PutUint16(d[ScopeStringSize:], v.E133Version)
		putPadded(d[ScopeStringSize+2:ScopeStringSize+2+DomainStringSize], v.SearchDomain)
		d[clientConnectFixedLen-1] = connectFlags(v.IncrementalUpdates)
		v.Entry.pack(d[clientConnectFixedLen:])
	case *ConnectReply:
		binary.BigEndian.PutUint16(d[0:], uint16(v.Code))
		binary.BigEndian.PutUint16(d[2:], v.E133Version)
		rdm.PutUID(d[4:], v.BrokerUID)
		rdm.PutUID(d[10:], v.ClientUID)
	case *ClientEntryUpdate:
		d[0] = connectFlags(v.IncrementalUpdates)
		v.Entry.pack(d[1:])
	case *Redirect:
		addr := v.Addr.Addr().AsSlice()
		copy(d, addr)
		binary.BigEndian.PutUint16(d[len(addr):], v.Addr.Port())
	case *ClientList:
		off := 0
		for i := range v.Entries {
			off += v.Entries[i].pack(d[off:])
		}
	case *RequestDynamicUIDs:
		for i, r := range v.Requests {
			e := d[i*dynamicUIDRequestLen:]
			rdm.PutUID(e, r.UID)
			copy(e[6:], r.RID[:])
		}
	case *AssignedDynamicUIDs:
		for i, m := range v.Mappings {
			e := d[i*dynamicUIDMappingLen:]
			rdm.PutUID(e, m.UID)
			copy(e[6:], m.RID[:])
			binary.BigEndian.PutUint16(e[6+CIDSize:], uint16(m.Status))
		}
	case *FetchDynamicUIDList:
		for i, u := range v.UIDs {
			rdm.PutUID(d[i*rdm.UIDSize:], u)
		}
	case *Disconnect:
		binary.BigEndian.PutUint16(d, uint16(v.Reason))
	}
}

func connectFlags(incremental bool) uint8 {
	if incremental {
		return ConnectFlagIncrementalUpdates
	}
	return 0
}
