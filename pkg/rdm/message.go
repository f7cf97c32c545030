package rdm

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Message format constants.
const (
	StartCode    byte = 0xCC
	SubStartCode byte = 0xF1

	// HeaderSize is the size of the fixed header preceding parameter data.
	HeaderSize = 24

	// ChecksumSize is the size of the trailing checksum.
	ChecksumSize = 2

	// MaxDataLen is the maximum parameter data length.
	MaxDataLen = 231

	// MinMessageSize is the size of a message with no parameter data.
	MinMessageSize = HeaderSize + ChecksumSize

	// MaxMessageSize is the size of a message with maximum parameter data.
	MaxMessageSize = HeaderSize + MaxDataLen + ChecksumSize
)

// Errors returned by the codec.
var (
	ErrBufferTooSmall      = errors.New("rdm: buffer too small")
	ErrDataTooLong         = errors.New("rdm: parameter data too long")
	ErrInvalidCommandClass = errors.New("rdm: invalid command class")
	ErrTooShort            = errors.New("rdm: message too short")
	ErrTooLong             = errors.New("rdm: message too long")
	ErrLengthMismatch      = errors.New("rdm: length mismatch")
	ErrBadStartCode        = errors.New("rdm: bad start code")
	ErrChecksum            = errors.New("rdm: checksum mismatch")
	ErrNotCommand          = errors.New("rdm: not a command")
	ErrNotResponse         = errors.New("rdm: not a response")
	ErrInvalidResponseType = errors.New("rdm: invalid response type")
	ErrNotNack             = errors.New("rdm: response is not a NACK")
)

// header field offsets
const (
	offStartCode    = 0
	offSubStartCode = 1
	offLength       = 2
	offDest         = 3
	offSrc          = 9
	offTransaction  = 15
	offPortOrResp   = 16
	offMsgCount     = 17
	offSubdevice    = 18
	offCmdClass     = 20
	offPID          = 21
	offPDL          = 23
)

// Command is an RDM request sent by a controller.
type Command struct {
	Source         UID
	Dest           UID
	TransactionNum uint8
	PortID         uint8
	Subdevice      uint16
	CommandClass   CommandClass
	ParamID        uint16
	Data           []byte
}

// Response is an RDM response sent by a responder.
type Response struct {
	Source         UID
	Dest           UID
	TransactionNum uint8
	ResponseType   ResponseType
	MessageCount   uint8
	Subdevice      uint16
	CommandClass   CommandClass
	ParamID        uint16
	Data           []byte
}

// Validate checks that c can be packed.
func (c *Command) Validate() error {
	if len(c.Data) > MaxDataLen {
		return fmt.Errorf("%w: %d bytes", ErrDataTooLong, len(c.Data))
	}
	if !c.CommandClass.IsCommand() {
		return fmt.Errorf("%w: %s", ErrInvalidCommandClass, c.CommandClass)
	}
	return nil
}

// Validate checks that r can be packed.
func (r *Response) Validate() error {
	if len(r.Data) > MaxDataLen {
		return fmt.Errorf("%w: %d bytes", ErrDataTooLong, len(r.Data))
	}
	if !r.CommandClass.IsResponse() {
		return fmt.Errorf("%w: %s", ErrInvalidCommandClass, r.CommandClass)
	}
	if !r.ResponseType.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidResponseType, r.ResponseType)
	}
	return nil
}

// Size returns the packed size of c.
func (c *Command) Size() int { return MinMessageSize + len(c.Data) }

// Size returns the packed size of r.
func (r *Response) Size() int { return MinMessageSize + len(r.Data) }

// String returns a short description for logs.
func (c *Command) String() string {
	return fmt.Sprintf("%s %s -> %s sub %d tn %d pdl %d", c.CommandClass, PIDName(c.ParamID), c.Dest, c.Subdevice, c.TransactionNum, len(c.Data))
}

// String returns a short description for logs.
func (r *Response) String() string {
	return fmt.Sprintf("%s %s %s <- %s tn %d pdl %d", r.CommandClass, r.ResponseType, PIDName(r.ParamID), r.Source, r.TransactionNum, len(r.Data))
}

// PackCommand writes c into buf and returns the number of bytes written.
func PackCommand(buf []byte, c *Command) (int, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	return pack(buf, c.Dest, c.Source, c.TransactionNum, c.PortID, 0, c.Subdevice, c.CommandClass, c.ParamID, c.Data)
}

// PackResponse writes r into buf and returns the number of bytes written.
func PackResponse(buf []byte, r *Response) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	return pack(buf, r.Dest, r.Source, r.TransactionNum, uint8(r.ResponseType), r.MessageCount, r.Subdevice, r.CommandClass, r.ParamID, r.Data)
}

// EncodeCommand packs c into a new buffer of exactly c.Size() bytes.
func EncodeCommand(c *Command) ([]byte, error) {
	buf := make([]byte, c.Size())
	if _, err := PackCommand(buf, c); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeResponse packs r into a new buffer of exactly r.Size() bytes.
func EncodeResponse(r *Response) ([]byte, error) {
	buf := make([]byte, r.Size())
	if _, err := PackResponse(buf, r); err != nil {
		return nil, err
	}
	return buf, nil
}

func pack(buf []byte, dest, src UID, tn, portOrResp, msgCount uint8, subdevice uint16, cc CommandClass, pid uint16, data []byte) (int, error) {
	size := MinMessageSize + len(data)
	if len(buf) < size {
		return 0, fmt.Errorf("%w: need %d, have %d", ErrBufferTooSmall, size, len(buf))
	}
	buf[offStartCode] = StartCode
	buf[offSubStartCode] = SubStartCode
	buf[offLength] = byte(HeaderSize + len(data))
	PutUID(buf[offDest:], dest)
	PutUID(buf[offSrc:], src)
	buf[offTransaction] = tn
	buf[offPortOrResp] = portOrResp
	buf[offMsgCount] = msgCount
	binary.BigEndian.PutUint16(buf[offSubdevice:], subdevice)
	buf[offCmdClass] = byte(cc)
	binary.BigEndian.PutUint16(buf[offPID:], pid)
	buf[offPDL] = byte(len(data))
	copy(buf[HeaderSize:], data)
	n := HeaderSize + len(data)
	binary.BigEndian.PutUint16(buf[n:], Checksum(buf[:n]))
	return size, nil
}

// Checksum returns the 16-bit additive checksum of b.
func Checksum(b []byte) uint16 {
	var sum uint16
	for _, v := range b {
		sum += uint16(v)
	}
	return sum
}

// ValidateMessage checks the framing, length fields and checksum of an RDM
// message buffer. buf must hold exactly one message.
func ValidateMessage(buf []byte) error {
	if len(buf) < MinMessageSize {
		return fmt.Errorf("%w: %d bytes", ErrTooShort, len(buf))
	}
	if len(buf) > MaxMessageSize {
		return fmt.Errorf("%w: %d bytes", ErrTooLong, len(buf))
	}
	if buf[offStartCode] != StartCode || buf[offSubStartCode] != SubStartCode {
		return fmt.Errorf("%w: %#02x %#02x", ErrBadStartCode, buf[offStartCode], buf[offSubStartCode])
	}
	msgLen := int(buf[offLength])
	if msgLen+ChecksumSize != len(buf) {
		return fmt.Errorf("%w: length field %d, buffer %d", ErrLengthMismatch, msgLen, len(buf))
	}
	if int(buf[offPDL]) != msgLen-HeaderSize {
		return fmt.Errorf("%w: pdl %d, length field %d", ErrLengthMismatch, buf[offPDL], msgLen)
	}
	want := binary.BigEndian.Uint16(buf[msgLen:])
	if got := Checksum(buf[:msgLen]); got != want {
		return fmt.Errorf("%w: computed %#04x, received %#04x", ErrChecksum, got, want)
	}
	return nil
}

// IsCommandBuffer reports whether a valid message buffer carries a command.
func IsCommandBuffer(buf []byte) bool {
	return len(buf) > offCmdClass && CommandClass(buf[offCmdClass]).IsCommand()
}

// UnpackCommand validates and decodes a command buffer.
func UnpackCommand(buf []byte) (*Command, error) {
	if err := ValidateMessage(buf); err != nil {
		return nil, err
	}
	cc := CommandClass(buf[offCmdClass])
	if !cc.IsCommand() {
		return nil, fmt.Errorf("%w: %s", ErrNotCommand, cc)
	}
	return &Command{
		Dest:           GetUID(buf[offDest:]),
		Source:         GetUID(buf[offSrc:]),
		TransactionNum: buf[offTransaction],
		PortID:         buf[offPortOrResp],
		Subdevice:      binary.BigEndian.Uint16(buf[offSubdevice:]),
		CommandClass:   cc,
		ParamID:        binary.BigEndian.Uint16(buf[offPID:]),
		Data:           copyData(buf),
	}, nil
}

// UnpackResponse validates and decodes a response buffer.
func UnpackResponse(buf []byte) (*Response, error) {
	if err := ValidateMessage(buf); err != nil {
		return nil, err
	}
	cc := CommandClass(buf[offCmdClass])
	if !cc.IsResponse() {
		return nil, fmt.Errorf("%w: %s", ErrNotResponse, cc)
	}
	rt := ResponseType(buf[offPortOrResp])
	if !rt.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidResponseType, rt)
	}
	return &Response{
		Dest:           GetUID(buf[offDest:]),
		Source:         GetUID(buf[offSrc:]),
		TransactionNum: buf[offTransaction],
		ResponseType:   rt,
		MessageCount:   buf[offMsgCount],
		Subdevice:      binary.BigEndian.Uint16(buf[offSubdevice:]),
		CommandClass:   cc,
		ParamID:        binary.BigEndian.Uint16(buf[offPID:]),
		Data:           copyData(buf),
	}, nil
}

func copyData(buf []byte) []byte {
	pdl := int(buf[offPDL])
	if pdl == 0 {
		return nil
	}
	data := make([]byte, pdl)
	copy(data, buf[HeaderSize:HeaderSize+pdl])
	return data
}
