package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Codec errors.
var (
	ErrBufferTooSmall      = errors.New("wire: buffer too small")
	ErrMalformed           = errors.New("wire: malformed PDU")
	ErrScopeTooLong        = errors.New("wire: scope too long")
	ErrSearchDomainTooLong = errors.New("wire: search domain too long")
	ErrStatusStringTooLong = errors.New("wire: status string too long")
	ErrEmptyNotification   = errors.New("wire: notification carries no RDM messages")
	ErrPDUTooLarge         = errors.New("wire: PDU exceeds 20-bit length")
	ErrBadPacketIdentifier = errors.New("wire: bad ACN packet identifier")
	ErrInvalidClientEntry  = errors.New("wire: invalid client entry")
	ErrUnsupportedPayload  = errors.New("wire: payload cannot be packed")
	ErrInvalidRDMBuffer    = errors.New("wire: invalid RDM buffer")
)

// putFlagsLength writes the 3-byte flags and length field for a PDU of
// length n (which includes the field itself).
func putFlagsLength(b []byte, n int) {
	b[0] = pduFlags | byte(n>>16&0x0F)
	b[1] = byte(n >> 8)
	b[2] = byte(n)
}

// pduLength reads the length from a flags and length field.
func pduLength(b []byte) int {
	return int(b[0]&0x0F)<<16 | int(b[1])<<8 | int(b[2])
}

// nextPDU splits the PDU at the start of b from whatever follows it.
func nextPDU(b []byte, minLen int) (pdu, rest []byte, err error) {
	if len(b) < FlagsLengthSize {
		return nil, nil, fmt.Errorf("%w: %d bytes left for flags and length", ErrMalformed, len(b))
	}
	if b[0]&0x80 == 0 {
		return nil, nil, fmt.Errorf("%w: flags %#02x without extended length", ErrMalformed, b[0]&0xF0)
	}
	n := pduLength(b)
	if n < minLen || n > len(b) {
		return nil, nil, fmt.Errorf("%w: pdu length %d, need >= %d, have %d", ErrMalformed, n, minLen, len(b))
	}
	return b[:n], b[n:], nil
}

func checkPDULength(n int) error {
	if n > MaxPDULength {
		return fmt.Errorf("%w: %d bytes", ErrPDUTooLarge, n)
	}
	return nil
}

// putPadded copies s into a zero-filled field.
func putPadded(b []byte, s string) {
	n := copy(b, s)
	clear(b[n:])
}

// getPadded returns the text before the first NUL in b.
func getPadded(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// PutPreamble writes the ACN TCP preamble announcing a block of blockLen bytes.
func PutPreamble(b []byte, blockLen int) {
	copy(b, PacketIdentifier[:])
	binary.BigEndian.PutUint32(b[len(PacketIdentifier):], uint32(blockLen))
}

// ParsePreamble checks the packet identifier and returns the block length.
func ParsePreamble(b []byte) (int, error) {
	if len(b) < PreambleSize {
		return 0, fmt.Errorf("%w: preamble needs %d bytes, have %d", ErrMalformed, PreambleSize, len(b))
	}
	if !bytes.Equal(b[:len(PacketIdentifier)], PacketIdentifier[:]) {
		return 0, ErrBadPacketIdentifier
	}
	return int(binary.BigEndian.Uint32(b[len(PacketIdentifier):])), nil
}
