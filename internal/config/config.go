// internal/config/config.go
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SampleBlockRegisters is the register footprint of one sample
// (six float32 axes, two registers each).
const SampleBlockRegisters = 12

// Target protocols.
const (
	ProtocolModbus = "modbus"
	ProtocolIngest = "ingest"
)

type Config struct {
	Replicator ReplicatorConfig `yaml:"replicator"`
}

type ReplicatorConfig struct {
	Log     LogConfig      `yaml:"log"`
	Metrics MetricsConfig  `yaml:"metrics"`
	Sensors []SensorConfig `yaml:"sensors"`
}

// ---- AMBIENT ----

type LogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// ---- SENSOR ----

type SensorConfig struct {
	ID      string         `yaml:"id"`
	Source  SourceConfig   `yaml:"source"`
	Poll    PollConfig     `yaml:"poll"`
	Targets []TargetConfig `yaml:"targets"`
	Redis   *RedisConfig   `yaml:"redis"`
}

// ---- SOURCE ----

type SourceConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	ZeroOnStart bool   `yaml:"zero_on_start"`

	// Device status block (optional, opt-in)
	StatusSlot *uint16 `yaml:"status_slot"`
	DeviceName string  `yaml:"device_name"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int  `yaml:"interval_ms"`
	Raw        bool `yaml:"raw"` // skip bias correction
}

// ---- TARGET ----

type TargetConfig struct {
	ID           uint32 `yaml:"id"`
	Endpoint     string `yaml:"endpoint"`
	Protocol     string `yaml:"protocol"`
	UnitID       uint8  `yaml:"unit_id"`        // data memory
	Address      uint16 `yaml:"address"`        // first register of the sample block
	StatusUnitID *uint8 `yaml:"status_unit_id"` // per-target status memory (optional)
}

// ---- REDIS ----

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// Load reads a YAML config file. It does not validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

// Parse decodes YAML config bytes. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "parse config")
	}
	return &cfg, nil
}
