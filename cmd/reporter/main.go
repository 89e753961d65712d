// Package main is the entry point for the Raspberry Pi Home Assistant reporter.
// It loads configuration, resolves the device identity, wires the node
// exporter source, the extraction rules and the MQTT publisher, and runs the
// cycle loop until SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/larrywright/pi-homeassistant-reporter/internal/collector"
	"github.com/larrywright/pi-homeassistant-reporter/internal/config"
	"github.com/larrywright/pi-homeassistant-reporter/internal/mqtt"
	"github.com/larrywright/pi-homeassistant-reporter/internal/platform"
	"github.com/larrywright/pi-homeassistant-reporter/internal/publisher"
	"github.com/larrywright/pi-homeassistant-reporter/internal/scheduler"
	"github.com/larrywright/pi-homeassistant-reporter/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "pi-reporter",
		Usage:   "Publish node exporter metrics to Home Assistant over MQTT",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file (default: auto-discover)",
			},
			&cli.StringFlag{
				Name:  "mqtt-host",
				Usage: "MQTT broker host",
			},
			&cli.StringFlag{
				Name:  "device",
				Usage: "device identity used in topics (default: hostname)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "write-config",
				Usage: "write the effective configuration to `FILE` and exit",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	overrides := config.CLIOverrides{
		MQTTHost: cmd.String("mqtt-host"),
		Device:   cmd.String("device"),
		LogLevel: cmd.String("log-level"),
	}

	var (
		cfg *config.Config
		err error
	)
	if cmd.IsSet("config") {
		cfg, err = config.LoadLayered(overrides, embeddedConfig, cmd.String("config"))
	} else {
		cfg, err = config.LoadLayered(overrides, embeddedConfig)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if path := cmd.String("write-config"); path != "" {
		if err := config.WriteConfig(cfg, path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	host := platform.New()
	device, err := platform.DeviceIdentity(ctx, host, cfg.Discovery.Device)
	if err != nil {
		return err
	}

	logger.Info("Starting Pi monitoring",
		zap.String("version", version),
		zap.String("platform", host.Name()),
		zap.String("device", device),
		zap.String("broker", cfg.MQTT.Address()),
		zap.String("source", cfg.NodeExporter.URL),
		zap.Duration("interval", cfg.Collection.Interval.Duration))

	runAgent(ctx, cfg, device, logger)
	logger.Info("Stopping Pi monitoring")
	return nil
}

// runAgent wires all components and runs the cycle loop.
// It blocks until the context is cancelled.
func runAgent(ctx context.Context, cfg *config.Config, device string, logger *zap.Logger) {
	metrics := telemetry.New()
	if cfg.Telemetry.Listen != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Telemetry.Listen, cfg.Telemetry.Path, logger); err != nil {
				logger.Error("Telemetry server failed", zap.Error(err))
			}
		}()
	}

	source := collector.NewHTTPSource(cfg.NodeExporter.URL, cfg.NodeExporter.Timeout.Duration)
	registry := collector.NewDefaultRegistry(cfg.Collection, logger)
	broker := mqtt.NewBroker(cfg.MQTT, device, logger)
	pub := publisher.New(broker, cfg.Discovery.Prefix, logger)

	sched := scheduler.New(source, registry, pub, device, cfg.Collection, metrics, logger)
	sched.Start(ctx)
}

// initLogger creates a zap logger based on the configuration.
// It outputs to console (human-readable) and optionally a JSON log file.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
