package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recorder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Full(t *testing.T) {
	log.SetOutput(io.Discard)

	cfg, err := Load(writeConfig(t, `
serial:
  port: /dev/ttyUSB0
  baud: 9600
output: walk.yaml
count: 50
log:
  level: debug
  file: logs/recorder.log
  max_age_days: 30
mqtt:
  enable: true
  broker: tcp://10.0.0.5:1883
  client_id: rec-1
  topic: gps/track
live:
  enable: true
  addr: ":9090"
`))
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.EqualValues(t, 9600, cfg.Serial.Baud)
	assert.Equal(t, "walk.yaml", cfg.Output)
	assert.Equal(t, 50, cfg.Count)
	assert.Equal(t, "logs/recorder.log", cfg.Log.File)
	assert.Equal(t, 30, cfg.Log.MaxAgeDays)
	assert.True(t, cfg.MQTT.Enable)
	assert.Equal(t, "tcp://10.0.0.5:1883", cfg.MQTT.Broker)
	assert.Equal(t, "rec-1", cfg.MQTT.ClientID)
	assert.Equal(t, "gps/track", cfg.MQTT.Topic)
	assert.True(t, cfg.Live.Enable)
	assert.Equal(t, ":9090", cfg.Live.Addr)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
serial:
  port: /dev/ttyUSB0
`))
	require.NoError(t, err)

	assert.EqualValues(t, 4800, cfg.Serial.Baud)
	assert.Equal(t, "gps_track.yaml", cfg.Output)
	assert.Equal(t, 0, cfg.Count)
	assert.False(t, cfg.MQTT.Enable)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "track-recorder", cfg.MQTT.ClientID)
	assert.Equal(t, "track/fix", cfg.MQTT.Topic)
	assert.False(t, cfg.Live.Enable)
	assert.Equal(t, ":8080", cfg.Live.Addr)
}

func TestLoad_MissingPort(t *testing.T) {
	_, err := Load(writeConfig(t, `
output: walk.yaml
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serial.port")
}

func TestLoad_NegativeCount(t *testing.T) {
	_, err := Load(writeConfig(t, `
serial:
  port: /dev/ttyUSB0
count: -3
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count")
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "serial: [unclosed\n"))
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLogConfig_LogrusLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, LogConfig{Level: "debug"}.LogrusLevel())
	assert.Equal(t, log.InfoLevel, LogConfig{Level: "info"}.LogrusLevel())
	assert.Equal(t, log.WarnLevel, LogConfig{Level: "warn"}.LogrusLevel())
	assert.Equal(t, log.ErrorLevel, LogConfig{Level: "error"}.LogrusLevel())
	assert.Equal(t, log.DebugLevel, LogConfig{Level: "DEBUG"}.LogrusLevel())
	assert.Equal(t, log.InfoLevel, LogConfig{}.LogrusLevel())
	assert.Equal(t, log.InfoLevel, LogConfig{Level: "bogus"}.LogrusLevel())
}
