package discovery

import (
	"errors"
	"net/netip"
	"time"

	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/google/uuid"
)

// Service type constants for DNS-SD.
const (
	// ServiceType is the RDMnet broker service type.
	ServiceType = "_rdmnet._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultSearchDomain is the search domain used when none is configured.
	DefaultSearchDomain = "local."

	// DefaultScope is the scope every component starts with.
	DefaultScope = "default"
)

// TXT record key constants.
const (
	TXTKeyVersion      = "TxtVers"
	TXTKeyScope        = "ConfScope"
	TXTKeyE133Version  = "E133Vers"
	TXTKeyCID          = "CID"
	TXTKeyUID          = "UID"
	TXTKeyModel        = "Model"
	TXTKeyManufacturer = "Manuf"

	// TXTVersion is the TXT record format this package writes.
	TXTVersion = 1
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// MaxScopeLen is the longest scope string in bytes.
	MaxScopeLen = 62

	// MaxTXTValueLen is the longest informational TXT value written.
	MaxTXTValueLen = 250
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for one-shot lookups.
	BrowseTimeout = 10 * time.Second
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrScopeTooLong        = errors.New("scope exceeds 62 bytes")
	ErrAlreadyMonitoring   = errors.New("scope already monitored")
	ErrNotRegistered       = errors.New("broker not registered")
	ErrNotFound            = errors.New("service not found")
)

// BrokerInfo describes a broker discovered on the network.
type BrokerInfo struct {
	// ServiceInstanceName is the DNS-SD instance name.
	ServiceInstanceName string

	// Host is the target hostname (e.g., "broker-1.local.").
	Host string

	// Port is the TCP port the broker listens on.
	Port uint16

	// ListenAddrs are the resolved addresses in preference order (IPv4 first).
	ListenAddrs []netip.AddrPort

	// Scope is the scope the broker serves (TXT "ConfScope").
	Scope string

	// E133Version is the protocol version (TXT "E133Vers").
	E133Version uint16

	// CID is the broker's component identifier (TXT "CID").
	CID uuid.UUID

	// UID is the broker's RDM UID (TXT "UID").
	UID rdm.UID

	// Model is informational (TXT "Model").
	Model string

	// Manufacturer is informational (TXT "Manuf").
	Manufacturer string
}

// Clone returns a deep copy of the info.
func (b *BrokerInfo) Clone() *BrokerInfo {
	c := *b
	c.ListenAddrs = append([]netip.AddrPort(nil), b.ListenAddrs...)
	return &c
}

// Equal reports whether two infos describe the same registration.
func (b *BrokerInfo) Equal(o *BrokerInfo) bool {
	if b.ServiceInstanceName != o.ServiceInstanceName || b.Host != o.Host || b.Port != o.Port ||
		b.Scope != o.Scope || b.E133Version != o.E133Version || b.CID != o.CID || b.UID != o.UID ||
		b.Model != o.Model || b.Manufacturer != o.Manufacturer {
		return false
	}
	if len(b.ListenAddrs) != len(o.ListenAddrs) {
		return false
	}
	for i := range b.ListenAddrs {
		if b.ListenAddrs[i] != o.ListenAddrs[i] {
			return false
		}
	}
	return true
}

// RegisterInfo contains what a broker advertises.
type RegisterInfo struct {
	// ServiceInstanceName is the requested DNS-SD instance name.
	ServiceInstanceName string

	// Port is the TCP port to advertise.
	Port uint16

	// Scope the broker serves.
	Scope string

	// CID and UID of the broker.
	CID uuid.UUID
	UID rdm.UID

	// Model and Manufacturer are informational.
	Model        string
	Manufacturer string
}

// Validate checks that the info can be advertised.
func (r *RegisterInfo) Validate() error {
	if err := ValidateInstanceName(r.ServiceInstanceName); err != nil {
		return err
	}
	if err := ValidateScope(r.Scope); err != nil {
		return err
	}
	if r.Port == 0 {
		return ErrMissingRequired
	}
	return nil
}

// ServiceEntry is a resolved DNS-SD service instance, independent of the
// mDNS library that produced it.
type ServiceEntry struct {
	Instance string
	Service  string
	Domain   string
	Host     string
	Port     int
	Text     []string
	AddrIPv4 []netip.Addr
	AddrIPv6 []netip.Addr
}
