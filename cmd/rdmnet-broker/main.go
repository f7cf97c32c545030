// Command rdmnet-broker runs an RDMnet broker for one scope.
//
// Usage:
//
//	rdmnet-broker [flags]
//
// Flags:
//
//	-config string     Configuration file path
//	-scope string      Scope to serve (overrides the config file)
//	-listen string     Comma separated listen addresses (overrides the config file)
//	-log-level string  Log level: debug, info, warn, error
//	-no-mdns           Disable DNS-SD registration and monitoring
//
// Examples:
//
//	# Serve the default scope on port 8888
//	rdmnet-broker
//
//	# Serve scope "stage" with a protocol capture configured in the file
//	rdmnet-broker -config /etc/rdmnet/broker.yaml -scope stage
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ETCLabs/rdmnet-go/pkg/broker"
	"github.com/ETCLabs/rdmnet-go/pkg/config"
	"github.com/ETCLabs/rdmnet-go/pkg/discovery"
	rlog "github.com/ETCLabs/rdmnet-go/pkg/log"
	"github.com/google/uuid"
)

type flags struct {
	configFile string
	scope      string
	listen     string
	logLevel   string
	noMDNS     bool
}

func main() {
	var f flags
	flag.StringVar(&f.configFile, "config", "", "Configuration file path")
	flag.StringVar(&f.scope, "scope", "", "Scope to serve (overrides the config file)")
	flag.StringVar(&f.listen, "listen", "", "Comma separated listen addresses (overrides the config file)")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&f.noMDNS, "no-mdns", false, "Disable DNS-SD registration and monitoring")
	flag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "rdmnet-broker: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the file, if any, and applies flag overrides.
func loadConfig(f flags) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	if f.scope != "" {
		cfg.Broker.Scope = f.scope
	}
	if f.listen != "" {
		cfg.Broker.ListenAddresses = strings.Split(f.listen, ",")
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.noMDNS {
		cfg.Broker.MDNS.Enabled = false
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

	bc, err := cfg.BrokerConfig()
	if err != nil {
		return err
	}
	if bc.CID == uuid.Nil {
		bc.CID = uuid.New()
	}

	protoLogger, closeProto, err := cfg.Logging.NewProtocolLogger(logger, rlog.CaptureHeader{
		Role:  rlog.RoleBroker,
		CID:   bc.CID.String(),
		Scope: bc.Scope,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := closeProto(); err != nil {
			logger.Warn("closing protocol log", "error", err)
		}
	}()
	bc.Logger = logger
	bc.ProtocolLogger = protoLogger
	if cfg.Broker.MDNS.Enabled {
		adv := discovery.DefaultAdvertiserConfig()
		adv.Interface = cfg.Broker.MDNS.Interface
		bc.Advertiser = discovery.NewMDNSAdvertiser(adv)
		bc.Monitor = discovery.NewMDNSMonitor(discovery.MonitorConfig{
			Interface: cfg.Broker.MDNS.Interface,
			Logger:    logger,
		})
	}

	b, err := broker.New(bc)
	if err != nil {
		return err
	}
	b.OnEvent(eventLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("starting broker: %w", err)
	}
	logger.Info("broker started",
		"scope", b.Scope(),
		"cid", b.CID(),
		"uid", b.UID(),
		"addrs", b.Addrs(),
		"mdns", cfg.Broker.MDNS.Enabled)

	<-ctx.Done()
	logger.Info("shutting down")
	return b.Stop()
}

// eventLogger reports client population changes.
func eventLogger(logger *slog.Logger) broker.EventHandler {
	return func(e broker.Event) {
		switch e.Type {
		case broker.EventClientConnected:
			logger.Info("client connected",
				"handle", e.Client.Handle,
				"uid", e.Client.Entry.UID(),
				"type", e.Client.Entry.RPT.Type,
				"addr", e.Client.Addr)
		case broker.EventClientRejected:
			logger.Warn("client rejected", "addr", e.Client.Addr, "code", e.Code)
		case broker.EventClientDisconnected:
			if e.Err != nil {
				logger.Info("client lost", "handle", e.Client.Handle, "uid", e.Client.Entry.UID(), "error", e.Err)
				return
			}
			logger.Info("client disconnected", "handle", e.Client.Handle, "uid", e.Client.Entry.UID(), "reason", e.Reason)
		case broker.EventOtherBrokerFound:
			logger.Warn("another broker serves this scope",
				"instance", e.Broker.ServiceInstanceName,
				"host", e.Broker.Host,
				"cid", e.Broker.CID)
		}
	}
}
