package wire

// PacketIdentifier starts every ACN TCP block.
var PacketIdentifier = [12]byte{'A', 'S', 'C', '-', 'E', '1', '.', '1', '7', 0, 0, 0}

// E133Version is the protocol version sent in connect messages.
const E133Version uint16 = 1

// Sizes of fixed wire structures.
const (
	PreambleSize      = 16
	FlagsLengthSize   = 3
	CIDSize           = 16
	RootHeaderSize    = FlagsLengthSize + 4 + CIDSize
	BrokerHeaderSize  = FlagsLengthSize + 2
	RPTHeaderSize     = 28
	RequestHeaderSize = FlagsLengthSize + 4
	StatusHeaderSize  = FlagsLengthSize + 2
	RDMCommandHeader  = FlagsLengthSize

	// ScopeStringSize is the padded scope field; at most 62 bytes of text.
	ScopeStringSize = 63
	MaxScopeLen     = ScopeStringSize - 1

	// DomainStringSize is the padded search domain field.
	DomainStringSize = 231
	MaxDomainLen     = DomainStringSize - 1

	// MaxStatusStringLen bounds the optional RPT status string.
	MaxStatusStringLen = 1024

	// MaxPDULength is the largest value a 20-bit length field holds.
	MaxPDULength = 0xFFFFF

	ClientEntryHeaderSize = FlagsLengthSize + 4 + CIDSize
	RPTClientEntryDataLen = 6 + 1 + CIDSize
	RPTClientEntrySize    = ClientEntryHeaderSize + RPTClientEntryDataLen
	EPTProtocolStringSize = 32
	EPTSubProtocolSize    = 4 + EPTProtocolStringSize

	clientConnectFixedLen = ScopeStringSize + 2 + DomainStringSize + 1
	connectReplyDataLen   = 2 + 2 + 6 + 6
	dynamicUIDRequestLen  = 6 + CIDSize
	dynamicUIDMappingLen  = 6 + CIDSize + 2
)

// pduFlags is the flags nibble set on every E1.33 PDU.
const pduFlags = 0xF0

// Root layer vectors.
const (
	RootVectorRPT    uint32 = 0x00000005
	RootVectorBroker uint32 = 0x00000009
	RootVectorLLRP   uint32 = 0x0000000A
	RootVectorEPT    uint32 = 0x0000000B
)

// Broker PDU vectors.
const (
	VectorBrokerConnect             uint16 = 0x0001
	VectorBrokerConnectReply        uint16 = 0x0002
	VectorBrokerClientEntryUpdate   uint16 = 0x0003
	VectorBrokerRedirectV4          uint16 = 0x0004
	VectorBrokerRedirectV6          uint16 = 0x0005
	VectorBrokerFetchClientList     uint16 = 0x0006
	VectorBrokerConnectedClientList uint16 = 0x0007
	VectorBrokerClientAdd           uint16 = 0x0008
	VectorBrokerClientRemove        uint16 = 0x0009
	VectorBrokerClientEntryChange   uint16 = 0x000A
	VectorBrokerRequestDynamicUIDs  uint16 = 0x000B
	VectorBrokerAssignedDynamicUIDs uint16 = 0x000C
	VectorBrokerFetchDynamicUIDList uint16 = 0x000D
	VectorBrokerDisconnect          uint16 = 0x000E
	VectorBrokerNull                uint16 = 0x000F
)

// RPT PDU vectors.
const (
	VectorRPTRequest      uint32 = 0x00000001
	VectorRPTStatus       uint32 = 0x00000002
	VectorRPTNotification uint32 = 0x00000003
)

// VectorRequestRDMCommand is the vector of the PDU wrapping RDM commands
// inside RPT Request and Notification PDUs.
const VectorRequestRDMCommand uint32 = 0x00000001

// Client protocol vectors used in client entries.
const (
	ClientProtocolRPT ClientProtocol = 0x00000005
	ClientProtocolEPT ClientProtocol = 0x0000000B
)

// Endpoint IDs with special meaning in RPT headers.
const (
	NullEndpoint      uint16 = 0x0000
	BroadcastEndpoint uint16 = 0xFFFF
)

// Connect flags.
const (
	ConnectFlagIncrementalUpdates uint8 = 0x01
)
