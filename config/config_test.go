package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/ws", cfg.Server.Pattern)
	assert.Equal(t, 30*time.Second, cfg.Socket.HeartbeatInterval)
	assert.Equal(t, 3, cfg.Socket.HeartbeatTryTimes)
	assert.Equal(t, 4096, cfg.Socket.ReceiveBufferSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Database.Enabled())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  pattern: /chat
socket:
  heartbeat_interval: 10s
  heartbeat_try_times: 5
  encoding: gbk
  message_rate: 100
redis:
  addr: 127.0.0.1:6379
  db: 2
database:
  driver: sqlite
  dsn: ":memory:"
`)
	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "/chat", cfg.Server.Pattern)
	assert.Equal(t, 10*time.Second, cfg.Socket.HeartbeatInterval)
	assert.Equal(t, 5, cfg.Socket.HeartbeatTryTimes)
	assert.Equal(t, "gbk", cfg.Socket.Encoding)
	assert.Equal(t, float64(100), cfg.Socket.MessageRate)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.True(t, cfg.Database.Enabled())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FIREASY_SERVER_ADDR", ":7070")
	t.Setenv("FIREASY_SOCKET_HEARTBEAT_INTERVAL", "5s")
	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Socket.HeartbeatInterval)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSocketConfig_BuildOption(t *testing.T) {
	opt, err := SocketConfig{Encoding: "utf-8", HeartbeatInterval: time.Minute}.BuildOption()
	assert.NoError(t, err)
	assert.Nil(t, opt.Encoding)
	assert.Equal(t, time.Minute, opt.HeartbeatInterval)

	opt, err = SocketConfig{Encoding: "GBK"}.BuildOption()
	assert.NoError(t, err)
	assert.NotNil(t, opt.Encoding)

	_, err = SocketConfig{Encoding: "klingon"}.BuildOption()
	assert.ErrorContains(t, err, "unknown encoding")
}
