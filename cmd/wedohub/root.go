package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jtarrant/wedohub/internal/ble"
	"github.com/jtarrant/wedohub/internal/config"
	"github.com/jtarrant/wedohub/internal/hub"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "wedohub",
	Short: "Control a LEGO WeDo 2.0 hub over Bluetooth LE",
	Long: `wedohub scans for a LEGO WeDo 2.0 hub, connects to it and drives the
peripherals plugged into its ports: motors, the RGB LED, and the tilt
and distance sensors.

Configuration is read from ~/.config/wedohub/config.yaml when present,
or from the file given with --config.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to config file (default: ~/.config/wedohub/config.yaml)")
}

// loadConfig reads the configured or default config file. A missing
// default file is not an error; defaults apply.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
		if _, err := os.Stat(path); err != nil {
			cfg := config.Default()
			return cfg, cfg.Validate()
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func hubFilter(cfg *config.Config) ble.Filter {
	return ble.Filter{
		NameContains: cfg.Hub.NameFilters,
		MinRSSI:      cfg.Hub.MinRSSI,
	}
}

// dialSession resolves the hub address (configured or scanned) and
// opens a session to it.
func dialSession(ctx context.Context, cfg *config.Config) (*hub.Session, error) {
	adapter := ble.NewTinygoAdapter()

	address := cfg.Hub.Address
	if address == "" {
		slog.Info("[BLE] scanning for hub", "timeout", cfg.Hub.ScanTimeout.Std())
		dev, err := ble.ScanForHub(adapter, hubFilter(cfg), cfg.Hub.ScanTimeout.Std())
		if err != nil {
			return nil, err
		}
		slog.Info("[BLE] hub found", "name", dev.Name, "address", dev.Address, "rssi", dev.RSSI)
		address = dev.Address
	}

	opts := hub.DefaultOptions()
	opts.ConnectTimeout = cfg.Hub.ConnectTimeout.Std()
	return hub.Dial(ctx, adapter, address, opts)
}

// commandContext bounds a command by --for; zero means until interrupted.
func commandContext(parent context.Context, runFor time.Duration) (context.Context, context.CancelFunc) {
	if runFor > 0 {
		return context.WithTimeout(parent, runFor)
	}
	return context.WithCancel(parent)
}
