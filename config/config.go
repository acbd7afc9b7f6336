package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	LogSentry LogSentryConfig `yaml:"logsentry"`
}

// LogSentryConfig is the project configuration.
type LogSentryConfig struct {
	DB      DBConfig      `yaml:"db"`
	Input   InputConfig   `yaml:"input"`
	Rules   RulesConfig   `yaml:"rules"`
	API     APIConfig     `yaml:"api"`
	Logging LoggingConfig `yaml:"logging"`
}

// DBConfig controls the shared SQLite database.
type DBConfig struct {
	Path string `yaml:"path"`
}

// InputConfig controls the ingest source.
type InputConfig struct {
	Mode           string      `yaml:"mode"` // udp|redis
	EnvelopeMarker string      `yaml:"envelope_marker"`
	UDP            UDPConfig   `yaml:"udp"`
	Redis          RedisConfig `yaml:"redis"`
}

// UDPConfig controls the datagram receiver.
type UDPConfig struct {
	Addr       string `yaml:"addr"`
	ReadBuffer int    `yaml:"read_buffer"`
}

// RedisConfig controls the Redis list receiver.
type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	Key          string        `yaml:"key"`
	BlockTimeout time.Duration `yaml:"block_timeout"`
}

// RulesConfig controls the detection engine.
type RulesConfig struct {
	Interval        time.Duration    `yaml:"interval"`
	Cooldown        time.Duration    `yaml:"cooldown"`
	SuppressionSize int              `yaml:"suppression_size"`
	BruteForce      BruteForceConfig `yaml:"brute_force"`
	OffHours        OffHoursConfig   `yaml:"off_hours"`
	Domains         DomainsConfig    `yaml:"domains"`
	AlertFile       string           `yaml:"alert_file"`
}

// BruteForceConfig controls the brute-force-then-success rule.
type BruteForceConfig struct {
	Window    time.Duration `yaml:"window"`
	Threshold int           `yaml:"threshold"`
}

// OffHoursConfig controls the off-hours account creation rule.
// The business-hours interval is half-open: [Start, End).
type OffHoursConfig struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// DomainsConfig controls the known-bad-domain rule. Indicators maps an
// indicator substring to a human-readable reason; when empty the
// built-in reputation list is used.
type DomainsConfig struct {
	Recent     int               `yaml:"recent"`
	Indicators map[string]string `yaml:"indicators"`
}

// APIConfig controls the read-only query server.
type APIConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool         `yaml:"enabled"`
	Level   string       `yaml:"level"`
	File    string       `yaml:"file"`
	Console bool         `yaml:"console"`
	Rotate  RotateConfig `yaml:"rotate"`
}

// RotateConfig controls rotation of the log file sink.
type RotateConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxAgeDays int  `yaml:"max_age_days"`
	MaxBackups int  `yaml:"max_backups"`
	Compress   bool `yaml:"compress"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
