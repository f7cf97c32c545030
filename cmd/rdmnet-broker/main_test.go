package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ETCLabs/rdmnet-go/pkg/broker"
	"github.com/ETCLabs/rdmnet-go/pkg/config"
	"github.com/ETCLabs/rdmnet-go/pkg/discovery"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broker.yaml")
	require.NoError(t, os.WriteFile(path, []byte("broker:\n  scope: house\n  mdns:\n    enabled: true\n"), 0o644))

	cfg, err := loadConfig(flags{
		configFile: path,
		scope:      "stage",
		listen:     "127.0.0.1:0,[::1]:0",
		logLevel:   "debug",
		noMDNS:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "stage", cfg.Broker.Scope)
	assert.Equal(t, []string{"127.0.0.1:0", "[::1]:0"}, cfg.Broker.ListenAddresses)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Broker.MDNS.Enabled)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(flags{})
	require.NoError(t, err)
	assert.Equal(t, config.Default().Broker.Scope, cfg.Broker.Scope)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	_, err := loadConfig(flags{logLevel: "loud"})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = loadConfig(flags{configFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestEventLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := eventLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	handler(broker.Event{Type: broker.EventClientDisconnected, Reason: wire.DisconnectShutdown})
	assert.Contains(t, buf.String(), "client disconnected")

	buf.Reset()
	handler(broker.Event{Type: broker.EventOtherBrokerFound, Broker: &discovery.BrokerInfo{ServiceInstanceName: "Other"}})
	assert.Contains(t, buf.String(), "instance=Other")

	buf.Reset()
	handler(broker.Event{Type: broker.EventClientRejected, Code: wire.ConnectScopeMismatch})
	assert.Contains(t, buf.String(), "client rejected")
}
