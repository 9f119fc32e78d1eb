package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jtarrant/wedohub/internal/config"
	"github.com/jtarrant/wedohub/internal/hub"
)

var ledBlinkFor time.Duration

var ledCmd = &cobra.Command{
	Use:   "led",
	Short: "Control the hub LED",
}

var ledCycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Cycle through the color palette until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLED(func(ctx context.Context, cfg *config.Config, led *hub.LEDController) error {
			led.Cycle(ctx, nil, cfg.LED.CycleInterval.Std())
			<-ctx.Done()
			return nil
		})
	},
}

var ledHoldCmd = &cobra.Command{
	Use:   "hold <r> <g> <b>",
	Short: "Set the LED to one color and hold it until interrupted",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := parseColor(args)
		if err != nil {
			return err
		}
		return withLED(func(ctx context.Context, cfg *config.Config, led *hub.LEDController) error {
			led.Hold(color)
			// The hub reverts the LED on disconnect, so keep the
			// session alive until interrupted.
			<-ctx.Done()
			return nil
		})
	},
}

var ledBlinkCmd = &cobra.Command{
	Use:   "blink <r> <g> <b>",
	Short: "Blink a color for a duration, then leave it on",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := parseColor(args)
		if err != nil {
			return err
		}
		return withLED(func(ctx context.Context, cfg *config.Config, led *hub.LEDController) error {
			led.Blink(ctx, color, 0, ledBlinkFor)
			// Give the blink its full duration before tearing down.
			select {
			case <-ctx.Done():
			case <-time.After(ledBlinkFor + time.Second):
			}
			return nil
		})
	},
}

// withLED opens a session and hands an LED controller to fn.
func withLED(fn func(ctx context.Context, cfg *config.Config, led *hub.LEDController) error) error {
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

	led := hub.NewLEDController(session)
	defer led.Stop()
	return fn(ctx, cfg, led)
}

func parseColor(args []string) (hub.Color, error) {
	var vals [3]uint8
	for i, a := range args {
		n, err := strconv.ParseUint(a, 10, 8)
		if err != nil {
			return hub.Color{}, fmt.Errorf("color component %q must be 0..255", a)
		}
		vals[i] = uint8(n)
	}
	return hub.Color{R: vals[0], G: vals[1], B: vals[2]}, nil
}

func init() {
	ledBlinkCmd.Flags().DurationVar(&ledBlinkFor, "for", 5*time.Second, "how long to blink")
	ledCmd.AddCommand(ledCycleCmd, ledHoldCmd, ledBlinkCmd)
	rootCmd.AddCommand(ledCmd)
}
