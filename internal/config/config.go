package config

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds all recorder settings, loaded from a YAML file.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	// Output is the track file path.
	Output string `yaml:"output"`
	// Count stops the recorder after this many new fixes; 0 runs until
	// interrupted.
	Count int        `yaml:"count"`
	Log   LogConfig  `yaml:"log"`
	MQTT  MQTTConfig `yaml:"mqtt"`
	Live  LiveConfig `yaml:"live"`
}

type SerialConfig struct {
	Port string `yaml:"port"`
	Baud uint   `yaml:"baud"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// MQTTConfig mirrors accepted fixes to an MQTT topic when enabled.
type MQTTConfig struct {
	Enable   bool   `yaml:"enable"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
}

// LiveConfig serves accepted fixes to websocket clients when enabled.
type LiveConfig struct {
	Enable bool   `yaml:"enable"`
	Addr   string `yaml:"addr"`
}

// Load reads the config file at path, applies defaults, and validates it.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.Serial.Port == "" {
		return Config{}, fmt.Errorf("serial.port is required")
	}
	if cfg.Serial.Baud == 0 {
		// The BU-353N and most consumer NMEA receivers talk at 4800.
		cfg.Serial.Baud = 4800
	}
	if cfg.Output == "" {
		cfg.Output = "gps_track.yaml"
	}
	if cfg.Count < 0 {
		return Config{}, fmt.Errorf("count must not be negative, got %d", cfg.Count)
	}
	if cfg.MQTT.Broker == "" {
		cfg.MQTT.Broker = "tcp://localhost:1883"
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "track-recorder"
	}
	if cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = "track/fix"
	}
	if cfg.Live.Addr == "" {
		cfg.Live.Addr = ":8080"
	}

	return cfg, nil
}

// LogrusLevel maps the configured log level onto a logrus level,
// defaulting to info for anything unrecognized.
func (l LogConfig) LogrusLevel() log.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return log.DebugLevel
	case "info", "":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
