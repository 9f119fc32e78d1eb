package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Color is an RGB triple for the hub LED.
type Color struct {
	R, G, B uint8
}

var (
	ColorOff    = Color{0, 0, 0}
	ColorBlue   = Color{0, 0, 255}
	ColorRed    = Color{255, 0, 0}
	ColorGreen  = Color{0, 255, 0}
	ColorPurple = Color{128, 0, 128}
	ColorWhite  = Color{255, 255, 255}
)

// DefaultPalette is the cycle order for LED cycling mode.
func DefaultPalette() []Color {
	return []Color{ColorBlue, ColorRed, ColorGreen, ColorPurple}
}

const defaultBlinkInterval = 500 * time.Millisecond

// LEDController runs at most one LED mode at a time. Starting a mode
// cancels the previous one and waits for its goroutine to finish before
// the new mode writes anything, so two modes never race on the output
// characteristic.
type LEDController struct {
	session *Session

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewLEDController(session *Session) *LEDController {
	return &LEDController{session: session}
}

// Cycle steps through the palette forever, one color per interval, until
// another mode replaces it or ctx is cancelled.
func (l *LEDController) Cycle(ctx context.Context, palette []Color, interval time.Duration) {
	if len(palette) == 0 {
		palette = DefaultPalette()
	}
	if interval <= 0 {
		interval = 3 * time.Second
	}
	l.start(ctx, func(ctx context.Context) {
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for i := 0; ; i++ {
			c := palette[i%len(palette)]
			l.set(c)
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
			}
		}
	})
}

// Blink alternates the color with off for the given duration, then
// leaves the color on.
func (l *LEDController) Blink(ctx context.Context, c Color, interval, duration time.Duration) {
	if interval <= 0 {
		interval = defaultBlinkInterval
	}
	l.start(ctx, func(ctx context.Context) {
		deadline := time.Now().Add(duration)
		on := true
		for time.Now().Before(deadline) {
			if on {
				l.set(c)
			} else {
				l.set(ColorOff)
			}
			on = !on
			select {
			case <-ctx.Done():
				return
			case <-time.After(interval):
			}
		}
		l.set(c)
	})
}

// Hold stops any running mode and leaves the LED on one color.
func (l *LEDController) Hold(c Color) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
	l.set(c)
}

// Stop cancels the active mode, if any, and waits for it to exit.
func (l *LEDController) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

// start replaces the active mode. The previous mode is fully stopped
// before the replacement goroutine launches.
func (l *LEDController) start(parent context.Context, run func(ctx context.Context)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done

	go func() {
		defer close(done)
		run(ctx)
	}()
}

func (l *LEDController) stopLocked() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
	l.cancel = nil
	l.done = nil
}

func (l *LEDController) set(c Color) {
	if err := l.session.SetLEDColor(c.R, c.G, c.B); err != nil {
		slog.Warn("[LED] color command failed", "error", err)
	}
}
