package responder

import (
	"net/netip"

	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/version"
)

// Label and string limits.
const (
	MaxLabelLen        = 32
	MaxScopeLen        = 62
	MaxSearchDomainLen = 230
)

// DefaultSearchDomain is reported when none is configured.
const DefaultSearchDomain = "local."

// Product categories reported in DEVICE_INFO.
const (
	ProductCategoryControl      uint16 = 0x7001
	ProductCategoryDataDistrib  uint16 = 0x7101
	ProductCategoryNotDeclared  uint16 = 0x0000
	DefaultSoftwareManufacturer        = "ETC"
)

// Config describes the responder's identity.
type Config struct {
	// UID answered by the responder.
	UID rdm.UID

	// Role selects the standard parameter set (version.RoleDevice,
	// version.RoleController or version.RoleBroker).
	Role string

	ModelID          uint16
	ProductCategory  uint16
	ModelDescription string
	Manufacturer     string
	DeviceLabel      string

	// SoftwareLabel defaults to version.SoftwareLabel(Role).
	SoftwareLabel string

	// DMX properties (device role).
	DMXFootprint    uint16
	DMXStartAddress uint16

	// Scope is the configured scope in slot 1.
	Scope string

	// StaticBroker is the scope's static broker address, if any.
	StaticBroker netip.AddrPort

	SearchDomain string
}

func (c Config) withDefaults() Config {
	if c.Role == "" {
		c.Role = version.RoleDevice
	}
	if c.SoftwareLabel == "" {
		c.SoftwareLabel = version.SoftwareLabel(c.Role)
	}
	if c.Manufacturer == "" {
		c.Manufacturer = DefaultSoftwareManufacturer
	}
	if c.Scope == "" {
		c.Scope = "default"
	}
	if c.SearchDomain == "" {
		c.SearchDomain = DefaultSearchDomain
	}
	if c.ProductCategory == 0 {
		switch c.Role {
		case version.RoleBroker:
			c.ProductCategory = ProductCategoryDataDistrib
		case version.RoleController:
			c.ProductCategory = ProductCategoryControl
		}
	}
	if c.DMXFootprint > 0 && c.DMXStartAddress == 0 {
		c.DMXStartAddress = 1
	}
	return c
}

// StaticConfigType values of COMPONENT_SCOPE.
type StaticConfigType uint8

const (
	StaticConfigNone StaticConfigType = 0x00
	StaticConfigIPv4 StaticConfigType = 0x01
	StaticConfigIPv6 StaticConfigType = 0x02
)

// ScopeConfig is the content of one COMPONENT_SCOPE slot.
type ScopeConfig struct {
	Scope        string
	StaticBroker netip.AddrPort
}

// TCPCommsEntry is one scope's TCP_COMMS_STATUS record.
type TCPCommsEntry struct {
	Scope           string
	BrokerAddr      netip.AddrPort
	UnhealthyEvents uint16
}

// BrokerState values of BROKER_STATUS.
type BrokerState uint8

const (
	BrokerStateDisabled BrokerState = 0x00
	BrokerStateActive   BrokerState = 0x01
	BrokerStateStandby  BrokerState = 0x02
)

// String returns the state name.
func (s BrokerState) String() string {
	switch s {
	case BrokerStateDisabled:
		return "DISABLED"
	case BrokerStateActive:
		return "ACTIVE"
	case BrokerStateStandby:
		return "STANDBY"
	default:
		return "UNKNOWN"
	}
}

// BrokerStatus is the content of BROKER_STATUS.
type BrokerStatus struct {
	SetAllowed bool
	State      BrokerState
}

type state struct {
	config         Config
	identify       bool
	endpointChange uint32
}

func newState(config Config) state {
	return state{config: config}
}
