// Package config loads the wedohub YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so intervals can be written as "120ms"
// or "2s" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all application configuration.
type Config struct {
	Hub      HubConfig     `yaml:"hub"`
	Motor    MotorConfig   `yaml:"motor"`
	LED      LEDConfig     `yaml:"led"`
	Sensors  SensorConfig  `yaml:"sensors"`
	Monitor  MonitorConfig `yaml:"monitor"`
	LogLevel string        `yaml:"log_level"`
}

// HubConfig holds discovery and connection settings.
type HubConfig struct {
	// NameFilters are matched against advertised local names.
	NameFilters []string `yaml:"name_filters"`
	// Address skips scanning and connects directly when set.
	Address        string   `yaml:"address"`
	MinRSSI        int      `yaml:"min_rssi"`
	ScanTimeout    Duration `yaml:"scan_timeout"`
	ConnectTimeout Duration `yaml:"connect_timeout"`
}

// MotorConfig holds motor drive loop settings.
type MotorConfig struct {
	Power         int      `yaml:"power"`
	DriveInterval Duration `yaml:"drive_interval"`
	PollInterval  Duration `yaml:"poll_interval"`
}

// LEDConfig holds LED cycling settings.
type LEDConfig struct {
	CycleInterval Duration `yaml:"cycle_interval"`
}

// SensorConfig holds sensor polling settings.
type SensorConfig struct {
	PollInterval Duration `yaml:"poll_interval"`
}

// MonitorConfig holds port monitor settings.
type MonitorConfig struct {
	Interval Duration `yaml:"interval"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "wedohub")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Hub: HubConfig{
			NameFilters:    []string{"WeDo", "LPF2", "LEGO"},
			MinRSSI:        -80,
			ScanTimeout:    Duration(30 * time.Second),
			ConnectTimeout: Duration(10 * time.Second),
		},
		Motor: MotorConfig{
			Power:         50,
			DriveInterval: Duration(120 * time.Millisecond),
			PollInterval:  Duration(time.Second),
		},
		LED: LEDConfig{
			CycleInterval: Duration(3 * time.Second),
		},
		Sensors: SensorConfig{
			PollInterval: Duration(2 * time.Second),
		},
		Monitor: MonitorConfig{
			Interval: Duration(10 * time.Second),
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if len(c.Hub.NameFilters) == 0 && c.Hub.Address == "" {
		return fmt.Errorf("hub.name_filters must not be empty when hub.address is unset")
	}
	if c.Hub.ScanTimeout <= 0 {
		return fmt.Errorf("hub.scan_timeout must be > 0")
	}
	if c.Hub.ConnectTimeout <= 0 {
		return fmt.Errorf("hub.connect_timeout must be > 0")
	}

	if c.Motor.Power < -100 || c.Motor.Power > 100 {
		return fmt.Errorf("motor.power must be in [-100, 100], got %d", c.Motor.Power)
	}
	if c.Motor.DriveInterval <= 0 {
		return fmt.Errorf("motor.drive_interval must be > 0")
	}
	if c.Motor.PollInterval <= 0 {
		return fmt.Errorf("motor.poll_interval must be > 0")
	}

	if c.LED.CycleInterval <= 0 {
		return fmt.Errorf("led.cycle_interval must be > 0")
	}
	if c.Sensors.PollInterval <= 0 {
		return fmt.Errorf("sensors.poll_interval must be > 0")
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be > 0")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}
