package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultServiceURL, cfg.Service.URL)
	assert.Equal(t, 16*time.Millisecond, cfg.Loop.TickInterval)
	assert.Empty(t, cfg.Store.Path)
	assert.Empty(t, cfg.Server.Addr)
	assert.False(t, cfg.Tray.Enabled)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
service:
  url: ws://tracker.local:9739/connect
  handshake_timeout: 3s
loop:
  tick_interval: 8ms
plugins:
  dir: /etc/handlink/plugins
store:
  path: /var/lib/handlink/analytics.db
server:
  addr: 127.0.0.1:8080
logging:
  level: debug
  format: json
tray:
  enabled: true
`))
	require.NoError(t, err)

	assert.Equal(t, "ws://tracker.local:9739/connect", cfg.Service.URL)
	assert.Equal(t, 3*time.Second, cfg.Service.HandshakeTimeout)
	assert.Equal(t, 8*time.Millisecond, cfg.Loop.TickInterval)
	assert.Equal(t, "/etc/handlink/plugins", cfg.Plugins.Dir)
	assert.Equal(t, "/var/lib/handlink/analytics.db", cfg.Store.Path)
	assert.Equal(t, 30*time.Second, cfg.Store.FlushInterval, "unset keys keep defaults")
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Tray.Enabled)
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("HANDLINK_TEST_HOST", "10.0.0.7")

	cfg, err := Parse([]byte("service:\n  url: ws://${HANDLINK_TEST_HOST}:9739/connect\n"))
	require.NoError(t, err)
	assert.Equal(t, "ws://10.0.0.7:9739/connect", cfg.Service.URL)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":      "service: [",
		"http url":      "service:\n  url: http://localhost\n",
		"zero tick":     "loop:\n  tick_interval: 0s\n",
		"bad format":    "logging:\n  format: xml\n",
		"zero flush":    "store:\n  path: a.db\n  flush_interval: 0s\n",
		"negative wait": "service:\n  handshake_timeout: -1s\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("loop:\n  tick_interval: 0s\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: :9090\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
