package config

import (
	"bytes"
	"log/slog"
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	rlog "github.com/ETCLabs/rdmnet-go/pkg/log"
	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
	"github.com/ETCLabs/rdmnet-go/pkg/wire"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
broker:
  scope: studio
  listen_addresses: ["127.0.0.1:8888", "[::1]:8888"]
  cid: 5a2c8a5e-8f4a-4a7e-9c1b-0f1e2d3c4b5a
  uid: "6574:0000abcd"
  max_controllers: 10
  max_device_messages: 200
  service_interval: 2ms
  mdns:
    enabled: false
    service_instance_name: "Studio Broker"
client:
  uid: "1234:00000002"
  type: device
  device_label: Dimmer Rack
  auto_query: false
  scopes:
    - name: studio
      static_broker: "10.0.0.5:8888"
    - name: stage
logging:
  level: debug
  format: json
`

func TestParseFullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "studio", cfg.Broker.Scope)
	assert.Equal(t, []string{"127.0.0.1:8888", "[::1]:8888"}, cfg.Broker.ListenAddresses)
	assert.Equal(t, 2*time.Millisecond, cfg.Broker.ServiceInterval)
	assert.False(t, cfg.Broker.MDNS.Enabled)
	// Keys left out keep their defaults.
	assert.Equal(t, Default().Broker.MaxConnections, cfg.Broker.MaxConnections)
	assert.Equal(t, Default().Broker.MDNS.Model, cfg.Broker.MDNS.Model)

	bc, err := cfg.BrokerConfig()
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse("5a2c8a5e-8f4a-4a7e-9c1b-0f1e2d3c4b5a"), bc.CID)
	assert.Equal(t, rdm.UID{Manufacturer: 0x6574, Device: 0xabcd}, bc.UID)
	assert.Equal(t, 10, bc.MaxControllers)
	assert.Equal(t, 200, bc.MaxDeviceMessages)
	assert.Equal(t, "Studio Broker", bc.ServiceInstanceName)
	require.NoError(t, bc.Validate())

	cc, scopes, err := cfg.ClientConfig()
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, cc.CID)
	assert.Equal(t, wire.RPTClientTypeDevice, cc.Type)
	assert.False(t, cc.AutoQuery)
	require.NotNil(t, cc.Responder)
	require.Len(t, scopes, 2)
	assert.Equal(t, netip.MustParseAddrPort("10.0.0.5:8888"), scopes[0].StaticBroker)
	assert.False(t, scopes[1].IsStatic())
	require.NoError(t, cc.Validate())
}

func TestDefaultIsValid(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	cc, scopes, err := cfg.ClientConfig()
	require.NoError(t, err)
	assert.Equal(t, wire.RPTClientTypeController, cc.Type)
	assert.True(t, cc.UID.IsDynamicRequest())
	assert.True(t, cc.AutoQuery)
	assert.Nil(t, cc.Responder)
	require.Len(t, scopes, 1)
	assert.Equal(t, "default", scopes[0].Scope)
}

func TestStateFileKeepsCID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.json")
	cfg := Default()
	cfg.Client.StateFile = path
	cfg.Broker.StateFile = filepath.Join(t.TempDir(), "broker.json")

	first, _, err := cfg.ClientConfig()
	require.NoError(t, err)
	second, _, err := cfg.ClientConfig()
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.CID)
	assert.Equal(t, first.CID, second.CID)

	bc1, err := cfg.BrokerConfig()
	require.NoError(t, err)
	bc2, err := cfg.BrokerConfig()
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, bc1.CID)
	assert.Equal(t, bc1.CID, bc2.CID)
	assert.NotEqual(t, first.CID, bc1.CID)

	// An explicit CID wins over the state file.
	cfg.Client.CID = "5a2c8a5e-8f4a-4a7e-9c1b-0f1e2d3c4b5a"
	cc, _, err := cfg.ClientConfig()
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse(cfg.Client.CID), cc.CID)
}

func TestStateFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	cfg := Default()
	cfg.Client.StateFile = path

	_, _, err := cfg.ClientConfig()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "broker: ["},
		{"empty scope", "broker:\n  scope: \"\""},
		{"long scope", "broker:\n  scope: " + string(bytes.Repeat([]byte("s"), 63))},
		{"no listen address", "broker:\n  listen_addresses: []"},
		{"bad broker cid", "broker:\n  cid: nope"},
		{"dynamic broker uid", "broker:\n  uid: \"e574:00000000\""},
		{"negative limit", "broker:\n  max_devices: -1"},
		{"client type", "client:\n  type: gateway"},
		{"client uid", "client:\n  uid: \"ffff:ffffffff\""},
		{"duplicate scope", "client:\n  scopes:\n    - name: a\n    - name: a"},
		{"static broker", "client:\n  scopes:\n    - name: a\n      static_broker: nohostport"},
		{"log level", "logging:\n  level: loud"},
		{"log format", "logging:\n  format: xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rdmnet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "studio", cfg.Broker.Scope)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := LoggingConfig{Level: "warn", Format: "json"}
	logger := l.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestNewProtocolLogger(t *testing.T) {
	header := rlog.CaptureHeader{Role: rlog.RoleBroker, CID: "5a2c8a5e-8f4a-4a7e-9c1b-0f1e2d3c4b5a", Scope: "default"}

	l := LoggingConfig{Level: "info"}
	pl, closeFn, err := l.NewProtocolLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), header)
	require.NoError(t, err)
	assert.Nil(t, pl, "info level without a capture file logs nothing")
	require.NoError(t, closeFn())

	l.ProtocolLog = filepath.Join(t.TempDir(), "capture.rlog")
	pl, closeFn, err = l.NewProtocolLogger(nil, header)
	require.NoError(t, err)
	require.NotNil(t, pl)
	pl.Log(rlog.Event{ConnectionID: "c1", Scope: "default"})
	require.NoError(t, closeFn())

	r, err := rlog.NewReader(l.ProtocolLog)
	require.NoError(t, err)
	defer r.Close()
	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "c1", ev.ConnectionID)
	require.NotNil(t, r.Header())
	assert.Equal(t, rlog.RoleBroker, r.Header().Role)
	assert.Equal(t, header.CID, r.Header().CID)
}

func TestNewProtocolLoggerDebugMirrorsToSlog(t *testing.T) {
	var buf bytes.Buffer
	l := LoggingConfig{Level: "debug", ProtocolLog: filepath.Join(t.TempDir(), "capture.rlog")}
	pl, closeFn, err := l.NewProtocolLogger(l.NewLogger(&buf), rlog.CaptureHeader{Role: rlog.RoleDevice})
	require.NoError(t, err)
	defer closeFn()

	pl.Log(rlog.Event{ConnectionID: "conn-7", Message: &rlog.MessageEvent{Name: "NULL"}})
	assert.Contains(t, buf.String(), "conn_id=conn-7")
}
