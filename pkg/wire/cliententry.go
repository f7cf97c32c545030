package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/google/uuid"
)

// ClientEntry describes one client connected to a broker. Exactly one of
// RPT and EPT is used, selected by Protocol.
type ClientEntry struct {
	CID      uuid.UUID
	Protocol ClientProtocol
	RPT      *RPTClientEntry
	EPT      []EPTSubProtocol
}

// RPTClientEntry is the RPT specific part of a client entry.
type RPTClientEntry struct {
	UID        rdm.UID
	Type       RPTClientType
	BindingCID uuid.UUID
}

// EPTSubProtocol is one protocol advertised by an EPT client.
type EPTSubProtocol struct {
	Vector uint32
	Name   string
}

// NewRPTClientEntry returns an RPT client entry.
func NewRPTClientEntry(cid uuid.UUID, uid rdm.UID, typ RPTClientType) ClientEntry {
	return ClientEntry{
		CID:      cid,
		Protocol: ClientProtocolRPT,
		RPT:      &RPTClientEntry{UID: uid, Type: typ},
	}
}

// UID returns the RPT UID of the entry, or the zero UID for other protocols.
func (e *ClientEntry) UID() rdm.UID {
	if e.RPT == nil {
		return rdm.UID{}
	}
	return e.RPT.UID
}

// Equal reports whether two entries carry the same information.
func (e *ClientEntry) Equal(o *ClientEntry) bool {
	if e.CID != o.CID || e.Protocol != o.Protocol {
		return false
	}
	if (e.RPT == nil) != (o.RPT == nil) || (e.RPT != nil && *e.RPT != *o.RPT) {
		return false
	}
	if len(e.EPT) != len(o.EPT) {
		return false
	}
	for i := range e.EPT {
		if e.EPT[i] != o.EPT[i] {
			return false
		}
	}
	return true
}

// Validate checks that the entry can be packed.
func (e *ClientEntry) Validate() error {
	switch e.Protocol {
	case ClientProtocolRPT:
		if e.RPT == nil {
			return fmt.Errorf("%w: RPT entry without RPT data", ErrInvalidClientEntry)
		}
	case ClientProtocolEPT:
		for _, sp := range e.EPT {
			if len(sp.Name) > EPTProtocolStringSize-1 {
				return fmt.Errorf("%w: EPT protocol name %q too long", ErrInvalidClientEntry, sp.Name)
			}
		}
	default:
		return fmt.Errorf("%w: protocol %s", ErrInvalidClientEntry, e.Protocol)
	}
	return nil
}

// size returns the packed size of the client entry PDU.
func (e *ClientEntry) size() int {
	if e.Protocol == ClientProtocolEPT {
		return ClientEntryHeaderSize + len(e.EPT)*EPTSubProtocolSize
	}
	return RPTClientEntrySize
}

func (e *ClientEntry) pack(b []byte) int {
	n := e.size()
	putFlagsLength(b, n)
	binary.BigEndian.PutUint32(b[3:], uint32(e.Protocol))
	copy(b[7:], e.CID[:])
	off := ClientEntryHeaderSize
	if e.Protocol == ClientProtocolEPT {
		for _, sp := range e.EPT {
			binary.BigEndian.PutUint32(b[off:], sp.Vector)
			putPadded(b[off+4:off+EPTSubProtocolSize], sp.Name)
			off += EPTSubProtocolSize
		}
		return n
	}
	rdm.PutUID(b[off:], e.RPT.UID)
	b[off+6] = byte(e.RPT.Type)
	copy(b[off+7:], e.RPT.BindingCID[:])
	return n
}

// parseClientEntry decodes one client entry PDU from the front of b.
func parseClientEntry(b []byte) (ClientEntry, []byte, error) {
	pdu, rest, err := nextPDU(b, ClientEntryHeaderSize)
	if err != nil {
		return ClientEntry{}, nil, err
	}
	var e ClientEntry
	e.Protocol = ClientProtocol(binary.BigEndian.Uint32(pdu[3:]))
	copy(e.CID[:], pdu[7:7+CIDSize])
	data := pdu[ClientEntryHeaderSize:]

	switch e.Protocol {
	case ClientProtocolRPT:
		if len(data) != RPTClientEntryDataLen {
			return ClientEntry{}, nil, fmt.Errorf("%w: RPT entry data %d bytes", ErrInvalidClientEntry, len(data))
		}
		e.RPT = &RPTClientEntry{
			UID:  rdm.GetUID(data),
			Type: RPTClientType(data[6]),
		}
		copy(e.RPT.BindingCID[:], data[7:])
	case ClientProtocolEPT:
		if len(data)%EPTSubProtocolSize != 0 {
			return ClientEntry{}, nil, fmt.Errorf("%w: EPT entry data %d bytes", ErrInvalidClientEntry, len(data))
		}
		for off := 0; off < len(data); off += EPTSubProtocolSize {
			e.EPT = append(e.EPT, EPTSubProtocol{
				Vector: binary.BigEndian.Uint32(data[off:]),
				Name:   getPadded(data[off+4 : off+EPTSubProtocolSize]),
			})
		}
	default:
		return ClientEntry{}, nil, fmt.Errorf("%w: protocol %s", ErrInvalidClientEntry, e.Protocol)
	}
	return e, rest, nil
}
