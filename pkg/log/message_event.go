package log

import (
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
)

// NewMessageEvent summarizes a decoded message for the protocol log and
// returns the layer it belongs to.
func NewMessageEvent(p wire.Payload) (Layer, *MessageEvent) {
	ev := &MessageEvent{Name: wire.PayloadName(p)}
	code := func(c uint16) { ev.Code = &c }

	switch v := p.(type) {
	case *wire.ClientConnect:
		ev.Vector = uint32(wire.VectorBrokerConnect)
		ev.SourceUID = v.Entry.UID().String()
	case *wire.ConnectReply:
		ev.Vector = uint32(wire.VectorBrokerConnectReply)
		ev.DestUID = v.ClientUID.String()
		code(uint16(v.Code))
	case *wire.ClientList:
		ev.Vector = uint32(v.Action)
		ev.Entries = len(v.Entries)
	case *wire.Disconnect:
		ev.Vector = uint32(wire.VectorBrokerDisconnect)
		code(uint16(v.Reason))
	case *wire.Null:
		ev.Vector = uint32(wire.VectorBrokerNull)
	case *wire.RPTMessage:
		ev.SourceUID = v.Header.SourceUID.String()
		ev.DestUID = v.Header.DestUID.String()
		ev.Seqnum = v.Header.Seqnum
		switch body := v.Body.(type) {
		case *wire.RPTRequest:
			ev.Vector = wire.VectorRPTRequest
			if cmd, err := body.UnpackCommand(); err == nil {
				setCommand(ev, cmd)
			}
		case *wire.RPTNotification:
			ev.Vector = wire.VectorRPTNotification
			if rs, err := body.Responses(); err == nil && len(rs) > 0 {
				last := rs[len(rs)-1]
				pid := last.ParamID
				ev.ParamID = &pid
				ev.CommandClass = last.CommandClass.String()
				ev.ResponseType = last.ResponseType.String()
			} else if cmd, ok := body.Command(); ok {
				setCommand(ev, cmd)
			}
		case *wire.RPTStatus:
			ev.Vector = wire.VectorRPTStatus
			code(uint16(body.Code))
		}
		return LayerRPT, ev
	case *wire.Unknown:
		ev.Vector = v.Vector
	case *wire.Malformed:
		ev.Vector = v.Vector
		return LayerRPT, ev
	}
	return LayerBroker, ev
}

func setCommand(ev *MessageEvent, cmd *rdm.Command) {
	pid := cmd.ParamID
	ev.ParamID = &pid
	ev.CommandClass = cmd.CommandClass.String()
}
