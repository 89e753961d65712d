// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file > embedded > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "10s", "60s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all reporter configuration. It is loaded once at startup and
// treated as read-only afterwards.
type Config struct {
	MQTT         MQTTConfig         `yaml:"mqtt"`
	NodeExporter NodeExporterConfig `yaml:"node_exporter"`
	Collection   CollectionConfig   `yaml:"collection"`
	Discovery    DiscoveryConfig    `yaml:"discovery"`
	Logging      LoggingConfig      `yaml:"logging"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
}

// MQTTConfig holds broker connection settings.
type MQTTConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	ClientID string   `yaml:"client_id"`
	Timeout  Duration `yaml:"timeout"`
}

// NodeExporterConfig holds the metrics source settings.
type NodeExporterConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// CollectionConfig holds cycle timing and the devices the extractor looks at.
type CollectionConfig struct {
	Interval         Duration `yaml:"interval"`
	RetryBackoff     Duration `yaml:"retry_backoff"`
	NetworkInterface string   `yaml:"network_interface"`
	BlockDevice      string   `yaml:"block_device"`
	RootMountpoint   string   `yaml:"root_mountpoint"`
}

// DiscoveryConfig holds Home Assistant discovery settings.
type DiscoveryConfig struct {
	Prefix string `yaml:"prefix"`
	// Device overrides the hostname used as device identity.
	Device string `yaml:"device"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// TelemetryConfig holds the self-metrics endpoint settings.
// An empty Listen address disables the endpoint.
type TelemetryConfig struct {
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Host:    "localhost",
			Port:    1883,
			Timeout: Duration{10 * time.Second},
		},
		NodeExporter: NodeExporterConfig{
			URL:     "http://localhost:9100/metrics",
			Timeout: Duration{10 * time.Second},
		},
		Collection: CollectionConfig{
			Interval:         Duration{60 * time.Second},
			RetryBackoff:     Duration{10 * time.Second},
			NetworkInterface: "eth0",
			BlockDevice:      "mmcblk0",
			RootMountpoint:   "/",
		},
		Discovery: DiscoveryConfig{
			Prefix: "homeassistant",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Path: "/metrics",
		},
	}
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty or the file does not exist, only defaults and environment
// variables are used.
func Load(path string) (*Config, error) {
	return LoadLayered(CLIOverrides{}, nil, path)
}

// CLIOverrides holds values from command-line flags.
// Empty strings are treated as "not set" and skipped.
type CLIOverrides struct {
	MQTTHost string
	Device   string
	LogLevel string
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no external file)
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	var filePath string
	if len(configPath) > 0 {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if cli.MQTTHost != "" {
		cfg.MQTT.Host = cli.MQTTHost
	}
	if cli.Device != "" {
		cfg.Discovery.Device = cli.Device
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

// applyEnvOverrides applies REPORTER_* environment variables.
func applyEnvOverrides(cfg *Config) error {
	if host := os.Getenv("REPORTER_MQTT_HOST"); host != "" {
		cfg.MQTT.Host = host
	}
	if port := os.Getenv("REPORTER_MQTT_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid REPORTER_MQTT_PORT %q: %w", port, err)
		}
		cfg.MQTT.Port = p
	}
	if user := os.Getenv("REPORTER_MQTT_USERNAME"); user != "" {
		cfg.MQTT.Username = user
	}
	if pass := os.Getenv("REPORTER_MQTT_PASSWORD"); pass != "" {
		cfg.MQTT.Password = pass
	}
	if url := os.Getenv("REPORTER_NODE_EXPORTER_URL"); url != "" {
		cfg.NodeExporter.URL = url
	}
	if device := os.Getenv("REPORTER_DEVICE"); device != "" {
		cfg.Discovery.Device = device
	}
	if level := os.Getenv("REPORTER_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.MQTT.Host == "" {
		return fmt.Errorf("mqtt host is required")
	}
	if c.MQTT.Port < 1 || c.MQTT.Port > 65535 {
		return fmt.Errorf("mqtt port out of range: %d", c.MQTT.Port)
	}
	if c.MQTT.Timeout.Duration <= 0 {
		return fmt.Errorf("mqtt timeout must be positive")
	}
	if !strings.HasPrefix(c.NodeExporter.URL, "http://") && !strings.HasPrefix(c.NodeExporter.URL, "https://") {
		return fmt.Errorf("node exporter URL must be http or https (got: %s)", c.NodeExporter.URL)
	}
	if c.NodeExporter.Timeout.Duration <= 0 {
		return fmt.Errorf("node exporter timeout must be positive")
	}
	if c.Collection.Interval.Duration <= 0 {
		return fmt.Errorf("collection interval must be positive")
	}
	if c.Collection.RetryBackoff.Duration <= 0 {
		return fmt.Errorf("retry backoff must be positive")
	}
	if c.Discovery.Prefix == "" {
		return fmt.Errorf("discovery prefix is required")
	}
	return nil
}

// HasCredentials reports whether broker authentication should be used.
// Both username and password must be set.
func (m MQTTConfig) HasCredentials() bool {
	return m.Username != "" && m.Password != ""
}

// Address returns the broker URI in host:port form with the tcp scheme.
func (m MQTTConfig) Address() string {
	return fmt.Sprintf("tcp://%s:%d", m.Host, m.Port)
}
