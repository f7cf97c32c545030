package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ETCLabs/rdmnet-go/pkg/client"
	"github.com/ETCLabs/rdmnet-go/pkg/config"
	rlog "github.com/ETCLabs/rdmnet-go/pkg/log"
)

func TestLoadConfigForcesController(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client:\n  type: device\n  device_label: x\n"), 0o644))

	cfg, err := loadConfig(flags{configFile: path})
	require.NoError(t, err)
	assert.Equal(t, "controller", cfg.Client.Type)
}

func TestLoadConfigScopesAndBroker(t *testing.T) {
	cfg, err := loadConfig(flags{scopes: "stage, house", broker: "127.0.0.1:8888", logLevel: "warn"})
	require.NoError(t, err)
	assert.Equal(t, []config.ScopeConfig{
		{Name: "stage", StaticBroker: "127.0.0.1:8888"},
		{Name: "house", StaticBroker: "127.0.0.1:8888"},
	}, cfg.Client.Scopes)
	assert.Equal(t, "warn", cfg.Logging.Level)

	cc, scopes, err := cfg.ClientConfig()
	require.NoError(t, err)
	require.Len(t, scopes, 2)
	assert.True(t, scopes[1].IsStatic())
	assert.Nil(t, cc.Responder)
}

func TestLoadConfigInvalidScope(t *testing.T) {
	_, err := loadConfig(flags{scopes: ","})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestCaptureHeader(t *testing.T) {
	cfg, err := loadConfig(flags{scopes: "stage"})
	require.NoError(t, err)
	cc, scopes, err := cfg.ClientConfig()
	require.NoError(t, err)

	h := captureHeader(cc, scopes)
	assert.Equal(t, rlog.RoleController, h.Role)
	assert.Equal(t, cc.CID.String(), h.CID)
	assert.Equal(t, "stage", h.Scope)

	scopes = append(scopes, client.ScopeConfig{Scope: "house"})
	assert.Empty(t, captureHeader(cc, scopes).Scope)
}
