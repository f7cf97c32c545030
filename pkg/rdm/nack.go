package rdm

import (
	"encoding/binary"
	"fmt"
)

// NewResponseTo builds a response header matching cmd: source and
// destination swapped, same transaction number, subdevice and PID, and the
// response command class.
func NewResponseTo(cmd *Command, rt ResponseType, data []byte) *Response {
	return &Response{
		Source:         cmd.Dest,
		Dest:           cmd.Source,
		TransactionNum: cmd.TransactionNum,
		ResponseType:   rt,
		Subdevice:      cmd.Subdevice,
		CommandClass:   cmd.CommandClass.ResponseClass(),
		ParamID:        cmd.ParamID,
		Data:           data,
	}
}

// NewAckResponse returns an ACK for cmd carrying data.
func NewAckResponse(cmd *Command, data []byte) *Response {
	return NewResponseTo(cmd, ResponseTypeAck, data)
}

// NewNackResponse returns a NACK_REASON response for cmd.
func NewNackResponse(cmd *Command, reason NackReason) *Response {
	data := make([]byte, 2)
	binary.BigEndian.PutUint16(data, uint16(reason))
	return NewResponseTo(cmd, ResponseTypeNackReason, data)
}

// NackReason returns the reason code carried by a NACK_REASON response.
func (r *Response) NackReason() (NackReason, error) {
	if r.ResponseType != ResponseTypeNackReason {
		return 0, ErrNotNack
	}
	if len(r.Data) < 2 {
		return 0, fmt.Errorf("%w: nack reason needs 2 bytes, have %d", ErrLengthMismatch, len(r.Data))
	}
	return NackReason(binary.BigEndian.Uint16(r.Data)), nil
}
