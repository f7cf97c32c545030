// Command rdmnet-controller is an interactive RDMnet controller.
//
// It connects to the brokers of its scopes, keeps their client lists and
// sends RDM GET and SET commands typed at the prompt.
//
// Usage:
//
//	rdmnet-controller [flags]
//
// Flags:
//
//	-config string     Configuration file path
//	-scope string      Comma separated scopes (overrides the config file)
//	-broker string     Static broker address for every scope (host:port)
//	-log-level string  Log level: debug, info, warn, error
//	-no-mdns           Do not browse for brokers
//
// Examples:
//
//	# Find the broker of the default scope via DNS-SD
//	rdmnet-controller
//
//	# Connect to a known broker
//	rdmnet-controller -scope stage -broker 192.168.1.10:8888 -no-mdns
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ETCLabs/rdmnet-go/cmd/rdmnet-controller/interactive"
	"github.com/ETCLabs/rdmnet-go/pkg/client"
	"github.com/ETCLabs/rdmnet-go/pkg/config"
	"github.com/ETCLabs/rdmnet-go/pkg/discovery"
	rlog "github.com/ETCLabs/rdmnet-go/pkg/log"
)

type flags struct {
	configFile string
	scopes     string
	broker     string
	logLevel   string
	noMDNS     bool
}

func main() {
	var f flags
	flag.StringVar(&f.configFile, "config", "", "Configuration file path")
	flag.StringVar(&f.scopes, "scope", "", "Comma separated scopes (overrides the config file)")
	flag.StringVar(&f.broker, "broker", "", "Static broker address for every scope (host:port)")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&f.noMDNS, "no-mdns", false, "Do not browse for brokers")
	flag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "rdmnet-controller: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the file, if any, and applies flag overrides. The
// client always runs as a controller.
func loadConfig(f flags) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	cfg.Client.Type = "controller"
	if f.scopes != "" {
		cfg.Client.Scopes = nil
		for _, name := range strings.Split(f.scopes, ",") {
			cfg.Client.Scopes = append(cfg.Client.Scopes, config.ScopeConfig{Name: strings.TrimSpace(name)})
		}
	}
	if f.broker != "" {
		for i := range cfg.Client.Scopes {
			cfg.Client.Scopes[i].StaticBroker = f.broker
		}
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

	shell, err := interactive.New()
	if err != nil {
		return err
	}

	logger := cfg.Logging.NewLogger(shell.Stderr())

	cc, scopes, err := cfg.ClientConfig()
	if err != nil {
		return err
	}
	cc.Logger = logger

	protoLogger, closeProto, err := cfg.Logging.NewProtocolLogger(logger, captureHeader(cc, scopes))
	if err != nil {
		return err
	}
	defer func() { _ = closeProto() }()

	connCfg := client.DefaultTCPConnectorConfig()
	connCfg.Logger = logger
	connCfg.ProtocolLogger = protoLogger

	var monitor discovery.Monitor
	if !f.noMDNS {
		monitor = discovery.NewMDNSMonitor(discovery.MonitorConfig{Logger: logger})
	}

	c, err := client.New(cc, client.NewTCPConnector(connCfg), monitor, shell)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()
	shell.Attach(c)

	for _, sc := range scopes {
		if _, err := c.AddScope(sc); err != nil {
			return fmt.Errorf("adding scope %q: %w", sc.Scope, err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shell.Run(ctx, cancel)
	return nil
}

// captureHeader describes the controller in its protocol capture. The scope
// is named only when the controller joins one.
func captureHeader(cc client.Config, scopes []client.ScopeConfig) rlog.CaptureHeader {
	h := rlog.CaptureHeader{Role: rlog.RoleController, CID: cc.CID.String()}
	if len(scopes) == 1 {
		h.Scope = scopes[0].Scope
	}
	return h
}
