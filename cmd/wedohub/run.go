package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jtarrant/wedohub/internal/hub"
	"github.com/jtarrant/wedohub/internal/wedo"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect and run all control loops",
	Long: `Connects to the hub and runs the full session: the port monitor, the
sensor consumer and poller, the motor drive loop and LED color cycling.
Stops on Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		session, err := dialSession(ctx, cfg)
		if err != nil {
			return err
		}
		defer session.Close()

		go hub.NewPortMonitor(session, cfg.Monitor.Interval.Std()).Run(ctx)
		go hub.NewSensorPoller(session, cfg.Sensors.PollInterval.Std()).Run(ctx)
		go consumeSensorEvents(ctx, session)

		led := hub.NewLEDController(session)
		led.Cycle(ctx, nil, cfg.LED.CycleInterval.Std())
		defer led.Stop()

		motor := hub.NewMotorLoop(session, hub.MotorConfig{
			Power:         cfg.Motor.Power,
			PollInterval:  cfg.Motor.PollInterval.Std(),
			DriveInterval: cfg.Motor.DriveInterval.Std(),
		})

		slog.Info("[Run] session started, Ctrl-C to stop")
		if err := motor.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

// consumeSensorEvents logs pushed tilt and distance readings.
func consumeSensorEvents(ctx context.Context, session *hub.Session) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-session.SensorEvents():
			switch ev.Kind {
			case wedo.SensorTilt:
				slog.Info("[Sensors] tilt", "port", ev.Port, "direction", ev.Tilt.String())
			case wedo.SensorDistance:
				slog.Info("[Sensors] distance", "port", ev.Port, "cm", ev.Distance)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}
