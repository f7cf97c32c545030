package rdm

import "fmt"

// CommandClass is the RDM command class byte.
type CommandClass uint8

const (
	// CommandClassDiscovery is a discovery command.
	CommandClassDiscovery CommandClass = 0x10

	// CommandClassDiscoveryResponse is a response to a discovery command.
	CommandClassDiscoveryResponse CommandClass = 0x11

	// CommandClassGet reads a parameter.
	CommandClassGet CommandClass = 0x20

	// CommandClassGetResponse answers a GET.
	CommandClassGetResponse CommandClass = 0x21

	// CommandClassSet writes a parameter.
	CommandClassSet CommandClass = 0x30

	// CommandClassSetResponse answers a SET.
	CommandClassSetResponse CommandClass = 0x31
)

// IsCommand returns true for the request command classes.
func (c CommandClass) IsCommand() bool {
	return c == CommandClassDiscovery || c == CommandClassGet || c == CommandClassSet
}

// IsResponse returns true for the response command classes.
func (c CommandClass) IsResponse() bool {
	return c == CommandClassDiscoveryResponse || c == CommandClassGetResponse || c == CommandClassSetResponse
}

// IsValid returns true for any defined command class.
func (c CommandClass) IsValid() bool {
	return c.IsCommand() || c.IsResponse()
}

// ResponseClass returns the response class matching a command class.
func (c CommandClass) ResponseClass() CommandClass {
	if c.IsCommand() {
		return c + 1
	}
	return c
}

// String returns the command class name.
func (c CommandClass) String() string {
	switch c {
	case CommandClassDiscovery:
		return "DISCOVERY_COMMAND"
	case CommandClassDiscoveryResponse:
		return "DISCOVERY_COMMAND_RESPONSE"
	case CommandClassGet:
		return "GET_COMMAND"
	case CommandClassGetResponse:
		return "GET_COMMAND_RESPONSE"
	case CommandClassSet:
		return "SET_COMMAND"
	case CommandClassSetResponse:
		return "SET_COMMAND_RESPONSE"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02x)", uint8(c))
	}
}

// ResponseType is carried in the port ID slot of a response.
type ResponseType uint8

const (
	// ResponseTypeAck indicates success; the data is complete.
	ResponseTypeAck ResponseType = 0x00

	// ResponseTypeAckTimer indicates the responder needs more time.
	ResponseTypeAckTimer ResponseType = 0x01

	// ResponseTypeNackReason indicates failure; the data is a 2-byte reason.
	ResponseTypeNackReason ResponseType = 0x02

	// ResponseTypeAckOverflow indicates more response fragments follow.
	ResponseTypeAckOverflow ResponseType = 0x03
)

// IsValid returns true for any defined response type.
func (r ResponseType) IsValid() bool {
	return r <= ResponseTypeAckOverflow
}

// String returns the response type name.
func (r ResponseType) String() string {
	switch r {
	case ResponseTypeAck:
		return "ACK"
	case ResponseTypeAckTimer:
		return "ACK_TIMER"
	case ResponseTypeNackReason:
		return "NACK_REASON"
	case ResponseTypeAckOverflow:
		return "ACK_OVERFLOW"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02x)", uint8(r))
	}
}

// NackReason is the reason code carried by a NACK_REASON response.
type NackReason uint16

// NACK reason codes from E1.20 and E1.33.
const (
	NackUnknownPID              NackReason = 0x0000
	NackFormatError             NackReason = 0x0001
	NackHardwareFault           NackReason = 0x0002
	NackProxyReject             NackReason = 0x0003
	NackWriteProtect            NackReason = 0x0004
	NackUnsupportedCommandClass NackReason = 0x0005
	NackDataOutOfRange          NackReason = 0x0006
	NackBufferFull              NackReason = 0x0007
	NackPacketSizeUnsupported   NackReason = 0x0008
	NackSubDeviceOutOfRange     NackReason = 0x0009
	NackProxyBufferFull         NackReason = 0x000A
	NackActionNotSupported      NackReason = 0x000B
	NackEndpointNumberInvalid   NackReason = 0x0011
	NackInvalidEndpointMode     NackReason = 0x0012
	NackUnknownUID              NackReason = 0x0013
	NackUnknownScope            NackReason = 0x0014
	NackInvalidStaticConfigType NackReason = 0x0015
	NackInvalidIPv4Address      NackReason = 0x0016
	NackInvalidIPv6Address      NackReason = 0x0017
	NackInvalidPort             NackReason = 0x0018
)

var nackReasonNames = map[NackReason]string{
	NackUnknownPID:              "UNKNOWN_PID",
	NackFormatError:             "FORMAT_ERROR",
	NackHardwareFault:           "HARDWARE_FAULT",
	NackProxyReject:             "PROXY_REJECT",
	NackWriteProtect:            "WRITE_PROTECT",
	NackUnsupportedCommandClass: "UNSUPPORTED_COMMAND_CLASS",
	NackDataOutOfRange:          "DATA_OUT_OF_RANGE",
	NackBufferFull:              "BUFFER_FULL",
	NackPacketSizeUnsupported:   "PACKET_SIZE_UNSUPPORTED",
	NackSubDeviceOutOfRange:     "SUB_DEVICE_OUT_OF_RANGE",
	NackProxyBufferFull:         "PROXY_BUFFER_FULL",
	NackActionNotSupported:      "ACTION_NOT_SUPPORTED",
	NackEndpointNumberInvalid:   "ENDPOINT_NUMBER_INVALID",
	NackInvalidEndpointMode:     "INVALID_ENDPOINT_MODE",
	NackUnknownUID:              "UNKNOWN_UID",
	NackUnknownScope:            "UNKNOWN_SCOPE",
	NackInvalidStaticConfigType: "INVALID_STATIC_CONFIG_TYPE",
	NackInvalidIPv4Address:      "INVALID_IPV4_ADDRESS",
	NackInvalidIPv6Address:      "INVALID_IPV6_ADDRESS",
	NackInvalidPort:             "INVALID_PORT",
}

// String returns the NACK reason name.
func (n NackReason) String() string {
	if name, ok := nackReasonNames[n]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%04x)", uint16(n))
}
