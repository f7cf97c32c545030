// Command rdmnet-device runs an RDMnet device that answers the standard
// E1.20 and E1.33 parameters through its broker.
//
// Usage:
//
//	rdmnet-device [flags]
//
// Flags:
//
//	-config string     Configuration file path
//	-scope string      Scope to join (overrides the config file)
//	-broker string     Static broker address (host:port)
//	-uid string        Static UID (mmmm:dddddddd); default is a dynamic UID
//	-label string      Initial DEVICE_LABEL
//	-state string      State file keeping the CID across restarts
//	-log-level string  Log level: debug, info, warn, error
//	-no-mdns           Do not browse for brokers
//
// Examples:
//
//	# Join the default scope with a dynamic UID
//	rdmnet-device -label "Stage Left"
//
//	# Join a known broker with a static UID
//	rdmnet-device -scope stage -broker 192.168.1.10:8888 -uid 6574:00000010
//
//	# Keep the same CID, and so the same dynamic UID, across restarts
//	rdmnet-device -state /var/lib/rdmnet/device.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ETCLabs/rdmnet-go/pkg/client"
	"github.com/ETCLabs/rdmnet-go/pkg/config"
	"github.com/ETCLabs/rdmnet-go/pkg/discovery"
	rlog "github.com/ETCLabs/rdmnet-go/pkg/log"
	"github.com/ETCLabs/rdmnet-go/pkg/persistence"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
)

type flags struct {
	configFile string
	scope      string
	broker     string
	uid        string
	label      string
	stateFile  string
	logLevel   string
	noMDNS     bool
}

func main() {
	var f flags
	flag.StringVar(&f.configFile, "config", "", "Configuration file path")
	flag.StringVar(&f.scope, "scope", "", "Scope to join (overrides the config file)")
	flag.StringVar(&f.broker, "broker", "", "Static broker address (host:port)")
	flag.StringVar(&f.uid, "uid", "", "Static UID (mmmm:dddddddd); default is a dynamic UID")
	flag.StringVar(&f.label, "label", "", "Initial DEVICE_LABEL")
	flag.StringVar(&f.stateFile, "state", "", "State file keeping the CID across restarts")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&f.noMDNS, "no-mdns", false, "Do not browse for brokers")
	flag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "rdmnet-device: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the file, if any, and applies flag overrides. A device
// joins exactly one scope, the first one configured.
func loadConfig(f flags) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	cfg.Client.Type = "device"
	if len(cfg.Client.Scopes) > 1 {
		cfg.Client.Scopes = cfg.Client.Scopes[:1]
	}
	if len(cfg.Client.Scopes) == 0 {
		cfg.Client.Scopes = []config.ScopeConfig{{Name: discovery.DefaultScope}}
	}
	if f.scope != "" {
		cfg.Client.Scopes[0].Name = f.scope
	}
	if f.broker != "" {
		cfg.Client.Scopes[0].StaticBroker = f.broker
	}
	if f.uid != "" {
		cfg.Client.UID = f.uid
	}
	if f.label != "" {
		cfg.Client.DeviceLabel = f.label
	}
	if f.stateFile != "" {
		cfg.Client.StateFile = f.stateFile
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func run(f flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	logger := cfg.Logging.NewLogger(os.Stderr)

	cc, scopes, err := cfg.ClientConfig()
	if err != nil {
		return err
	}

	protoLogger, closeProto, err := cfg.Logging.NewProtocolLogger(logger, rlog.CaptureHeader{
		Role:  rlog.RoleDevice,
		CID:   cc.CID.String(),
		Scope: scopes[0].Scope,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeProto() }()
	cc.Logger = logger
	cc.Responder.OnIdentify(func(on bool) {
		logger.Info("identify", "on", on)
	})

	connCfg := client.DefaultTCPConnectorConfig()
	connCfg.Logger = logger
	connCfg.ProtocolLogger = protoLogger

	var monitor discovery.Monitor
	if !f.noMDNS {
		monitor = discovery.NewMDNSMonitor(discovery.MonitorConfig{Logger: logger})
	}

	events := &deviceEvents{logger: logger}
	if cfg.Client.StateFile != "" {
		events.store = persistence.NewStore(cfg.Client.StateFile)
	}

	c, err := client.New(cc, client.NewTCPConnector(connCfg), monitor, events)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if _, err := c.AddScope(scopes[0]); err != nil {
		return fmt.Errorf("adding scope %q: %w", scopes[0].Scope, err)
	}
	logger.Info("device started", "cid", cc.CID, "uid", cc.UID, "scope", scopes[0].Scope)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	return nil
}

// deviceEvents logs client events and, with a store, records the UID the
// device connected with. Commands are answered by the responder, so
// RDMCommand is never called.
type deviceEvents struct {
	logger *slog.Logger
	store  *persistence.Store
}

var _ client.EventHandler = (*deviceEvents)(nil)

func (d *deviceEvents) Connected(_ client.ScopeHandle, ev client.ConnectedEvent) {
	d.logger.Info("connected", "scope", ev.Scope, "broker", ev.Addr, "broker_uid", ev.BrokerUID, "uid", ev.ClientUID)
	if d.store == nil {
		return
	}
	err := d.store.Update(func(s *persistence.ComponentState) {
		s.Scope = ev.Scope
		s.UID = ev.ClientUID.String()
		s.ConnectedAt = time.Now()
	})
	if err != nil {
		d.logger.Warn("saving state failed", "path", d.store.Path(), "error", err)
	}
}

func (d *deviceEvents) ConnectFailed(_ client.ScopeHandle, ev client.ConnectFailedEvent) {
	d.logger.Warn("connect failed", "scope", ev.Scope, "event", ev.Event, "code", ev.Code,
		"error", ev.Err, "attempt", ev.Attempt, "will_retry", ev.WillRetry, "retry_in", ev.RetryIn)
}

func (d *deviceEvents) Disconnected(_ client.ScopeHandle, ev client.DisconnectedEvent) {
	d.logger.Warn("disconnected", "scope", ev.Scope, "event", ev.Event, "reason", ev.Reason,
		"error", ev.Err, "will_retry", ev.WillRetry)
}

func (d *deviceEvents) ClientListUpdate(client.ScopeHandle, wire.ClientListAction, []wire.ClientEntry) {
}

func (d *deviceEvents) DynamicUIDsAssigned(client.ScopeHandle, []wire.DynamicUIDMapping) {}

func (d *deviceEvents) RDMResponse(client.ScopeHandle, *client.ResponseResult) {}

func (d *deviceEvents) RPTStatus(client.ScopeHandle, *client.StatusResult) {}

func (d *deviceEvents) RDMCommand(_ client.ScopeHandle, cmd *rdm.Command, _ wire.RPTHeader) {
	d.logger.Debug("unhandled command", "pid", rdm.PIDName(cmd.ParamID))
}
