package wire

import (
	"fmt"
	"net/netip"

	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/google/uuid"
)

// Message is one decoded PDU together with the CID of the component that
// sent it.
type Message struct {
	SenderCID uuid.UUID
	Payload   Payload
}

// Payload is implemented by every concrete message type in this package.
type Payload interface {
	payload()
}

// RPTBody is implemented by the bodies an RPTMessage can carry.
type RPTBody interface {
	rptBody()
}

// ClientConnect is sent by a client as the first message on a connection.
type ClientConnect struct {
	Scope              string
	E133Version        uint16
	SearchDomain       string
	IncrementalUpdates bool
	Entry              ClientEntry
}

// ConnectReply answers a ClientConnect.
type ConnectReply struct {
	Code        ConnectStatus
	E133Version uint16
	BrokerUID   rdm.UID
	ClientUID   rdm.UID
}

// ClientEntryUpdate changes a connected client's entry.
type ClientEntryUpdate struct {
	IncrementalUpdates bool
	Entry              ClientEntry
}

// Redirect tells a client to connect to another broker address.
type Redirect struct {
	Addr netip.AddrPort
}

// FetchClientList asks the broker for the full connected client list.
type FetchClientList struct{}

// ClientList carries client entries. A long list may be delivered as
// several chunks; every chunk except the last has Partial set.
type ClientList struct {
	Action  ClientListAction
	Entries []ClientEntry
	Partial bool
}

// DynamicUIDRequest asks for a dynamic UID for the responder identified by RID.
type DynamicUIDRequest struct {
	UID rdm.UID
	RID uuid.UUID
}

// DynamicUIDMapping is one entry of an AssignedDynamicUIDs list.
type DynamicUIDMapping struct {
	UID    rdm.UID
	RID    uuid.UUID
	Status DynamicUIDStatus
}

// RequestDynamicUIDs asks the broker to assign dynamic UIDs.
type RequestDynamicUIDs struct {
	Requests []DynamicUIDRequest
}

// AssignedDynamicUIDs reports dynamic UID assignments.
type AssignedDynamicUIDs struct {
	Mappings []DynamicUIDMapping
}

// FetchDynamicUIDList asks for the assignments of the given UIDs.
type FetchDynamicUIDList struct {
	UIDs []rdm.UID
}

// Disconnect announces a graceful close.
type Disconnect struct {
	Reason DisconnectReason
}

// Null is the heartbeat message.
type Null struct{}

// RPTHeader addresses an RPT message.
type RPTHeader struct {
	SourceUID      rdm.UID
	SourceEndpoint uint16
	DestUID        rdm.UID
	DestEndpoint   uint16
	Seqnum         uint32
}

// String returns a short description for logs.
func (h RPTHeader) String() string {
	return fmt.Sprintf("%s/%d -> %s/%d seq %d", h.SourceUID, h.SourceEndpoint, h.DestUID, h.DestEndpoint, h.Seqnum)
}

// RPTMessage is an RPT PDU.
type RPTMessage struct {
	Header RPTHeader
	Body   RPTBody
}

// RPTRequest carries exactly one RDM command from a controller.
type RPTRequest struct {
	Command []byte
}

// RPTStatus reports a routing or processing problem.
type RPTStatus struct {
	Code RPTStatusCode
	Text string
}

// RPTNotification carries RDM messages back to controllers. A response to a
// request normally carries the original command followed by the responses.
type RPTNotification struct {
	Messages [][]byte
}

// Unknown is produced for vectors this package does not understand. For RPT
// PDUs the header is kept so the receiver can address a status reply.
type Unknown struct {
	RootVector uint32
	Vector     uint32
	RPTHeader  *RPTHeader
}

// Malformed is produced for an RPT PDU whose header parsed but whose body
// did not. The header is kept so the receiver can answer with a status.
type Malformed struct {
	RootVector uint32
	Vector     uint32
	RPTHeader  *RPTHeader
	Err        error
}

func (*ClientConnect) payload()       {}
func (*ConnectReply) payload()        {}
func (*ClientEntryUpdate) payload()   {}
func (*Redirect) payload()            {}
func (*FetchClientList) payload()     {}
func (*ClientList) payload()          {}
func (*RequestDynamicUIDs) payload()  {}
func (*AssignedDynamicUIDs) payload() {}
func (*FetchDynamicUIDList) payload() {}
func (*Disconnect) payload()          {}
func (*Null) payload()                {}
func (*RPTMessage) payload()          {}
func (*Unknown) payload()             {}
func (*Malformed) payload()           {}

func (*RPTRequest) rptBody()      {}
func (*RPTStatus) rptBody()       {}
func (*RPTNotification) rptBody() {}

// UnpackCommand decodes the RDM command carried by the request.
func (r *RPTRequest) UnpackCommand() (*rdm.Command, error) {
	return rdm.UnpackCommand(r.Command)
}

// Responses decodes every RDM response in the notification, skipping the
// echoed command. The first decode error is returned with the responses
// decoded so far.
func (n *RPTNotification) Responses() ([]*rdm.Response, error) {
	var out []*rdm.Response
	for _, buf := range n.Messages {
		if rdm.IsCommandBuffer(buf) {
			continue
		}
		resp, err := rdm.UnpackResponse(buf)
		if err != nil {
			return out, err
		}
		out = append(out, resp)
	}
	return out, nil
}

// Command returns the echoed RDM command of the notification, if any.
func (n *RPTNotification) Command() (*rdm.Command, bool) {
	for _, buf := range n.Messages {
		if rdm.IsCommandBuffer(buf) {
			cmd, err := rdm.UnpackCommand(buf)
			return cmd, err == nil
		}
	}
	return nil, false
}

// String returns the message type name for logs.
func (m Message) String() string {
	return PayloadName(m.Payload)
}

// PayloadName returns a short, stable name for the payload type.
func PayloadName(p Payload) string {
	switch v := p.(type) {
	case *ClientConnect:
		return "CLIENT_CONNECT"
	case *ConnectReply:
		return "CONNECT_REPLY"
	case *ClientEntryUpdate:
		return "CLIENT_ENTRY_UPDATE"
	case *Redirect:
		return "REDIRECT"
	case *FetchClientList:
		return "FETCH_CLIENT_LIST"
	case *ClientList:
		return "CLIENT_LIST_" + v.Action.String()
	case *RequestDynamicUIDs:
		return "REQUEST_DYNAMIC_UIDS"
	case *AssignedDynamicUIDs:
		return "ASSIGNED_DYNAMIC_UIDS"
	case *FetchDynamicUIDList:
		return "FETCH_DYNAMIC_UID_LIST"
	case *Disconnect:
		return "DISCONNECT"
	case *Null:
		return "NULL"
	case *RPTMessage:
		switch v.Body.(type) {
		case *RPTRequest:
			return "RPT_REQUEST"
		case *RPTStatus:
			return "RPT_STATUS"
		case *RPTNotification:
			return "RPT_NOTIFICATION"
		}
		return "RPT"
	case *Unknown:
		return fmt.Sprintf("UNKNOWN(0x%x/0x%x)", v.RootVector, v.Vector)
	case *Malformed:
		return fmt.Sprintf("MALFORMED(0x%x/0x%x)", v.RootVector, v.Vector)
	default:
		return "NONE"
	}
}
