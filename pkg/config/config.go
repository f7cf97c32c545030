// Package config loads the YAML configuration shared by the rdmnet
// binaries and converts it into broker and client configurations.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/ETCLabs/rdmnet-go/pkg/broker"
	"github.com/ETCLabs/rdmnet-go/pkg/client"
	"github.com/ETCLabs/rdmnet-go/pkg/discovery"
	"github.com/ETCLabs/rdmnet-go/pkg/persistence"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/responder"
	"github.com/ETCLabs/rdmnet-go/pkg/version"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root of a configuration file.
type Config struct {
	Broker  BrokerConfig  `yaml:"broker"`
	Client  ClientConfig  `yaml:"client"`
	Logging LoggingConfig `yaml:"logging"`
}

// BrokerConfig configures rdmnet-broker.
type BrokerConfig struct {
	Scope                 string        `yaml:"scope"`
	ListenAddresses       []string      `yaml:"listen_addresses"`
	CID                   string        `yaml:"cid"`
	UID                   string        `yaml:"uid"`
	StateFile             string        `yaml:"state_file"`
	MaxConnections        int           `yaml:"max_connections"`
	MaxControllers        int           `yaml:"max_controllers"`
	MaxControllerMessages int           `yaml:"max_controller_messages"`
	MaxDevices            int           `yaml:"max_devices"`
	MaxDeviceMessages     int           `yaml:"max_device_messages"`
	MaxSocketsPerWorker   int           `yaml:"max_sockets_per_worker"`
	MaxPollWorkers        int           `yaml:"max_poll_workers"`
	ServiceInterval       time.Duration `yaml:"service_interval"`
	SearchDomain          string        `yaml:"search_domain"`
	MDNS                  MDNSConfig    `yaml:"mdns"`
}

// MDNSConfig configures DNS-SD registration and monitoring.
type MDNSConfig struct {
	Enabled             bool   `yaml:"enabled"`
	ServiceInstanceName string `yaml:"service_instance_name"`
	Model               string `yaml:"model"`
	Manufacturer        string `yaml:"manufacturer"`
	Interface           string `yaml:"interface"`
}

// ClientConfig configures rdmnet-controller and rdmnet-device.
type ClientConfig struct {
	CID          string        `yaml:"cid"`
	UID          string        `yaml:"uid"`
	StateFile    string        `yaml:"state_file"`
	Type         string        `yaml:"type"`
	SearchDomain string        `yaml:"search_domain"`
	AutoQuery    bool          `yaml:"auto_query"`
	DeviceLabel  string        `yaml:"device_label"`
	Scopes       []ScopeConfig `yaml:"scopes"`
}

// ScopeConfig is one scope of a client.
type ScopeConfig struct {
	Name string `yaml:"name"`

	// StaticBroker is "host:port"; empty means DNS-SD discovery.
	StaticBroker string `yaml:"static_broker"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() Config {
	b := broker.DefaultConfig()
	return Config{
		Broker: BrokerConfig{
			Scope:                 b.Scope,
			ListenAddresses:       b.ListenAddresses,
			UID:                   "6574:00000001",
			MaxConnections:        b.MaxConnections,
			MaxControllerMessages: b.MaxControllerMessages,
			MaxDeviceMessages:     b.MaxDeviceMessages,
			MaxSocketsPerWorker:   b.MaxSocketsPerWorker,
			MaxPollWorkers:        b.MaxPollWorkers,
			ServiceInterval:       b.ServiceInterval,
			SearchDomain:          b.SearchDomain,
			MDNS: MDNSConfig{
				Enabled:             true,
				ServiceInstanceName: b.ServiceInstanceName,
				Model:               b.Model,
				Manufacturer:        b.Manufacturer,
			},
		},
		Client: ClientConfig{
			UID:          rdm.DynamicRequest(0x6574).String(),
			Type:         "controller",
			SearchDomain: discovery.DefaultSearchDomain,
			AutoQuery:    true,
			Scopes:       []ScopeConfig{{Name: "default"}},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads path, applies it over Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Broker.validate(); err != nil {
		return fmt.Errorf("%w: broker: %w", ErrInvalidConfig, err)
	}
	if err := c.Client.validate(); err != nil {
		return fmt.Errorf("%w: client: %w", ErrInvalidConfig, err)
	}
	if err := c.Logging.validate(); err != nil {
		return fmt.Errorf("%w: logging: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (b *BrokerConfig) validate() error {
	if err := discovery.ValidateScope(b.Scope); err != nil {
		return err
	}
	if len(b.SearchDomain) > responder.MaxSearchDomainLen {
		return fmt.Errorf("search_domain longer than %d bytes", responder.MaxSearchDomainLen)
	}
	if len(b.ListenAddresses) == 0 {
		return errors.New("listen_addresses must not be empty")
	}
	if _, err := parseCID(b.CID); err != nil {
		return err
	}
	uid, err := rdm.ParseUID(b.UID)
	if err != nil {
		return fmt.Errorf("uid: %w", err)
	}
	if uid.IsZero() || uid.IsBroadcast() || uid.IsDynamicRequest() {
		return fmt.Errorf("uid %s is not a static UID", uid)
	}
	for name, v := range map[string]int{
		"max_connections":         b.MaxConnections,
		"max_controllers":         b.MaxControllers,
		"max_controller_messages": b.MaxControllerMessages,
		"max_devices":             b.MaxDevices,
		"max_device_messages":     b.MaxDeviceMessages,
		"max_sockets_per_worker":  b.MaxSocketsPerWorker,
		"max_poll_workers":        b.MaxPollWorkers,
	} {
		if v < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}
	if b.ServiceInterval < 0 {
		return errors.New("service_interval cannot be negative")
	}
	return nil
}

func (c *ClientConfig) validate() error {
	if _, err := parseCID(c.CID); err != nil {
		return err
	}
	uid, err := rdm.ParseUID(c.UID)
	if err != nil {
		return fmt.Errorf("uid: %w", err)
	}
	if uid.IsZero() || uid.IsBroadcast() {
		return fmt.Errorf("uid %s cannot be used by a client", uid)
	}
	if _, err := c.clientType(); err != nil {
		return err
	}
	if len(c.SearchDomain) > responder.MaxSearchDomainLen {
		return fmt.Errorf("search_domain longer than %d bytes", responder.MaxSearchDomainLen)
	}
	if len(c.DeviceLabel) > responder.MaxLabelLen {
		return fmt.Errorf("device_label longer than %d bytes", responder.MaxLabelLen)
	}
	seen := make(map[string]bool, len(c.Scopes))
	for _, s := range c.Scopes {
		if err := discovery.ValidateScope(s.Name); err != nil {
			return err
		}
		if seen[s.Name] {
			return fmt.Errorf("scope %q listed twice", s.Name)
		}
		seen[s.Name] = true
		if s.StaticBroker != "" {
			if _, _, err := net.SplitHostPort(s.StaticBroker); err != nil {
				return fmt.Errorf("scope %q: static_broker: %w", s.Name, err)
			}
		}
	}
	return nil
}

func (c *ClientConfig) clientType() (wire.RPTClientType, error) {
	switch strings.ToLower(c.Type) {
	case "controller":
		return wire.RPTClientTypeController, nil
	case "device":
		return wire.RPTClientTypeDevice, nil
	default:
		return wire.RPTClientTypeUnknown, fmt.Errorf("type %q must be controller or device", c.Type)
	}
}

// parseCID parses a CID; an empty string yields uuid.Nil.
func parseCID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	cid, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("cid: %w", err)
	}
	return cid, nil
}

// resolveCID returns the configured CID. Without one, the CID kept in
// stateFile is used, or created there on first use. With neither, the
// result is uuid.Nil.
func resolveCID(s, stateFile string) (uuid.UUID, error) {
	cid, err := parseCID(s)
	if err != nil || cid != uuid.Nil || stateFile == "" {
		return cid, err
	}
	cid, err = persistence.NewStore(stateFile).CID()
	if err != nil {
		return uuid.Nil, fmt.Errorf("state_file: %w", err)
	}
	return cid, nil
}

// BrokerConfig converts the broker section. Advertiser, Monitor and the
// loggers are left for the caller to set.
func (c *Config) BrokerConfig() (broker.Config, error) {
	b := &c.Broker
	cid, err := resolveCID(b.CID, b.StateFile)
	if err != nil {
		return broker.Config{}, fmt.Errorf("%w: broker: %w", ErrInvalidConfig, err)
	}
	uid, err := rdm.ParseUID(b.UID)
	if err != nil {
		return broker.Config{}, fmt.Errorf("%w: broker: uid: %w", ErrInvalidConfig, err)
	}

	out := broker.DefaultConfig()
	out.CID = cid
	out.UID = uid
	out.Scope = b.Scope
	out.SearchDomain = b.SearchDomain
	out.ListenAddresses = b.ListenAddresses
	out.MaxConnections = b.MaxConnections
	out.MaxControllers = b.MaxControllers
	out.MaxControllerMessages = b.MaxControllerMessages
	out.MaxDevices = b.MaxDevices
	out.MaxDeviceMessages = b.MaxDeviceMessages
	out.MaxSocketsPerWorker = b.MaxSocketsPerWorker
	out.MaxPollWorkers = b.MaxPollWorkers
	out.ServiceInterval = b.ServiceInterval
	if b.MDNS.ServiceInstanceName != "" {
		out.ServiceInstanceName = b.MDNS.ServiceInstanceName
	}
	if b.MDNS.Model != "" {
		out.Model = b.MDNS.Model
	}
	if b.MDNS.Manufacturer != "" {
		out.Manufacturer = b.MDNS.Manufacturer
	}
	return out, nil
}

// ClientConfig converts the client section. A missing CID comes from the
// state file or is generated. Static broker host names are resolved.
func (c *Config) ClientConfig() (client.Config, []client.ScopeConfig, error) {
	cc := &c.Client
	cid, err := resolveCID(cc.CID, cc.StateFile)
	if err != nil {
		return client.Config{}, nil, fmt.Errorf("%w: client: %w", ErrInvalidConfig, err)
	}
	if cid == uuid.Nil {
		cid = uuid.New()
	}
	uid, err := rdm.ParseUID(cc.UID)
	if err != nil {
		return client.Config{}, nil, fmt.Errorf("%w: client: uid: %w", ErrInvalidConfig, err)
	}
	typ, err := cc.clientType()
	if err != nil {
		return client.Config{}, nil, fmt.Errorf("%w: client: %w", ErrInvalidConfig, err)
	}

	out := client.Config{
		CID:                 cid,
		UID:                 uid,
		Type:                typ,
		SearchDomain:        cc.SearchDomain,
		AutoQuery:           cc.AutoQuery,
		MaxAckOverflowBytes: client.DefaultMaxAckOverflowBytes,
	}
	if typ == wire.RPTClientTypeDevice {
		out.Responder = responder.New(responder.Config{
			UID:          uid,
			Role:         version.RoleDevice,
			DeviceLabel:  cc.DeviceLabel,
			SearchDomain: cc.SearchDomain,
		})
	}

	scopes := make([]client.ScopeConfig, 0, len(cc.Scopes))
	for _, s := range cc.Scopes {
		sc := client.ScopeConfig{Scope: s.Name}
		if s.StaticBroker != "" {
			ap, err := resolveAddrPort(s.StaticBroker)
			if err != nil {
				return client.Config{}, nil, fmt.Errorf("%w: scope %q: %w", ErrInvalidConfig, s.Name, err)
			}
			sc.StaticBroker = ap
		}
		scopes = append(scopes, sc)
	}
	if out.Responder != nil && len(scopes) > 0 {
		out.Responder.SetScope(responder.ScopeConfig{Scope: scopes[0].Scope, StaticBroker: scopes[0].StaticBroker})
	}
	return out, scopes, nil
}

func resolveAddrPort(hostport string) (netip.AddrPort, error) {
	if ap, err := netip.ParseAddrPort(hostport); err == nil {
		return ap, nil
	}
	addr, err := net.ResolveTCPAddr("tcp", hostport)
	if err != nil {
		return netip.AddrPort{}, err
	}
	ap := addr.AddrPort()
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()), nil
}
