package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jtarrant/wedohub/internal/hub"
)

var (
	motorPower  int
	motorRunFor time.Duration
)

var motorCmd = &cobra.Command{
	Use:   "motor",
	Short: "Wait for a motor and drive it",
	Long: `Connects to the hub, waits for a motor to be detected on any port,
initializes it and drives it at the given power. Runs for --for, or
until interrupted when --for is zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		session, err := dialSession(sigCtx, cfg)
		if err != nil {
			return err
		}
		defer session.Close()

		ctx, cancel := commandContext(sigCtx, motorRunFor)
		defer cancel()

		motor := hub.NewMotorLoop(session, hub.MotorConfig{
			Power:         motorPower,
			PollInterval:  cfg.Motor.PollInterval.Std(),
			DriveInterval: cfg.Motor.DriveInterval.Std(),
		})
		if err := motor.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	motorCmd.Flags().IntVar(&motorPower, "power", 50, "motor power, -100..100")
	motorCmd.Flags().DurationVar(&motorRunFor, "for", 0, "how long to drive (0 = until interrupted)")
	rootCmd.AddCommand(motorCmd)
}
