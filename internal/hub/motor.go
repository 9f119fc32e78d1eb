package hub

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jtarrant/wedohub/internal/wedo"
)

// MotorState is the drive loop's current phase.
type MotorState int32

const (
	WaitingForMotor MotorState = iota
	Initializing
	Driving
)

func (s MotorState) String() string {
	switch s {
	case WaitingForMotor:
		return "waiting for motor"
	case Initializing:
		return "initializing"
	case Driving:
		return "driving"
	default:
		return "unknown"
	}
}

// MotorConfig configures a drive loop.
type MotorConfig struct {
	Power         int           // -100..100
	PollInterval  time.Duration // registry poll while waiting for a motor
	DriveInterval time.Duration // cadence of drive commands
}

// DefaultMotorConfig mirrors the cadence the hub expects: the motor
// stops on its own unless the command is refreshed frequently.
func DefaultMotorConfig() MotorConfig {
	return MotorConfig{
		Power:         50,
		PollInterval:  time.Second,
		DriveInterval: 120 * time.Millisecond,
	}
}

// MotorLoop waits for a motor to appear in the registry, initializes its
// port once, then streams drive commands until cancelled. If the motor
// detaches mid-drive the loop falls back to waiting instead of sending
// commands to a port that no longer has a motor.
type MotorLoop struct {
	session *Session
	cfg     MotorConfig
	state   atomic.Int32
}

func NewMotorLoop(session *Session, cfg MotorConfig) *MotorLoop {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.DriveInterval <= 0 {
		cfg.DriveInterval = 120 * time.Millisecond
	}
	return &MotorLoop{session: session, cfg: cfg}
}

// State reports the loop's current phase.
func (m *MotorLoop) State() MotorState {
	return MotorState(m.state.Load())
}

func (m *MotorLoop) setState(s MotorState) {
	m.state.Store(int32(s))
}

// Run drives the state machine until ctx is cancelled. The power setting
// is validated up front; transport errors mid-loop are logged and the
// loop keeps going.
func (m *MotorLoop) Run(ctx context.Context) error {
	if _, err := wedo.EncodeMotorPower(m.cfg.Power); err != nil {
		return err
	}

	poll := time.NewTicker(m.cfg.PollInterval)
	defer poll.Stop()

	for {
		m.setState(WaitingForMotor)
		port, ok := m.waitForMotor(ctx, poll)
		if !ok {
			return ctx.Err()
		}

		m.setState(Initializing)
		if err := m.session.InitMotor(port); err != nil {
			slog.Warn("[Motor] init failed, retrying", "port", port, "error", err)
			continue
		}
		slog.Info("[Motor] driving", "port", port, "power", m.cfg.Power)

		m.setState(Driving)
		if done := m.drive(ctx, port); done {
			// Best-effort stop so the motor does not keep spinning.
			if err := m.session.SetMotorPower(port, 0); err != nil {
				slog.Warn("[Motor] stop command failed", "port", port, "error", err)
			}
			return ctx.Err()
		}
		slog.Info("[Motor] motor detached, waiting", "port", port)
	}
}

// waitForMotor polls the registry until a motor port is known. ok=false
// means ctx was cancelled.
func (m *MotorLoop) waitForMotor(ctx context.Context, poll *time.Ticker) (byte, bool) {
	for {
		if port, ok := m.session.Registry().MotorPort(); ok {
			return port, true
		}
		select {
		case <-ctx.Done():
			return 0, false
		case <-poll.C:
		}
	}
}

// drive streams drive commands. Returns true when ctx ended the loop,
// false when the motor left the registry.
func (m *MotorLoop) drive(ctx context.Context, port byte) bool {
	tick := time.NewTicker(m.cfg.DriveInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return true
		case <-tick.C:
		}
		if dev, ok := m.session.Registry().Get(port); !ok || dev != wedo.DeviceMotor {
			return false
		}
		if err := m.session.SetMotorPower(port, m.cfg.Power); err != nil {
			slog.Warn("[Motor] drive command failed", "port", port, "error", err)
		}
	}
}
