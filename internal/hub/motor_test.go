package hub

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jtarrant/wedohub/internal/wedo"
)

func testMotorConfig() MotorConfig {
	return MotorConfig{
		Power:         50,
		PollInterval:  5 * time.Millisecond,
		DriveInterval: 5 * time.Millisecond,
	}
}

func TestMotorLoopRejectsBadPower(t *testing.T) {
	s, _ := dialFake(t, DefaultOptions())

	loop := NewMotorLoop(s, MotorConfig{Power: 200})
	err := loop.Run(context.Background())
	if !errors.Is(err, wedo.ErrInvalidArgument) {
		t.Errorf("Run() error = %v, want ErrInvalidArgument", err)
	}
}

func TestMotorLoopWaitsThenDrives(t *testing.T) {
	s, conn := dialFake(t, DefaultOptions())

	loop := NewMotorLoop(s, testMotorConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	// No motor yet: the loop must not write anything.
	time.Sleep(20 * time.Millisecond)
	if got := conn.output.writeCount(); got != 0 {
		t.Fatalf("loop wrote %d commands before a motor attached", got)
	}
	if loop.State() != WaitingForMotor {
		t.Fatalf("State() = %v, want waiting", loop.State())
	}

	attachMotor(conn, 2)

	waitFor(t, time.Second, func() bool {
		return loop.State() == Driving && conn.output.writeCount() > 2
	}, "loop never started driving")

	// The init handshake went to the input characteristic once.
	inits := conn.input.writesCopy()
	if len(inits) != 1 || !bytes.Equal(inits[0], wedo.MotorInit(2)) {
		t.Errorf("init writes = %v, want one %v", inits, wedo.MotorInit(2))
	}

	// Drive commands carry the attached port and the encoded power.
	for _, w := range conn.output.writesCopy() {
		if !bytes.Equal(w, []byte{2, 0x01, 0x01, 50}) {
			t.Fatalf("drive command = %v, want [2 1 1 50]", w)
		}
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() after cancel = %v, want context.Canceled", err)
	}

	// The final write is a best-effort stop.
	writes := conn.output.writesCopy()
	last := writes[len(writes)-1]
	if !bytes.Equal(last, []byte{2, 0x01, 0x01, 0}) {
		t.Errorf("last command = %v, want stop [2 1 1 0]", last)
	}
}

func TestMotorLoopFallsBackOnDetach(t *testing.T) {
	s, conn := dialFake(t, DefaultOptions())

	loop := NewMotorLoop(s, testMotorConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	attachMotor(conn, 1)
	waitFor(t, time.Second, func() bool { return loop.State() == Driving },
		"loop never started driving")

	// Detach: the loop must stop commanding the dead port.
	conn.port.Notify([]byte{1, 0, 0, 0})
	waitFor(t, time.Second, func() bool { return loop.State() == WaitingForMotor },
		"loop never fell back to waiting after detach")

	// Re-attach on another port resumes driving there.
	attachMotor(conn, 3)
	waitFor(t, time.Second, func() bool { return loop.State() == Driving },
		"loop never resumed after re-attach")
}

func TestMotorStateString(t *testing.T) {
	states := map[MotorState]string{
		WaitingForMotor: "waiting for motor",
		Initializing:    "initializing",
		Driving:         "driving",
	}
	for s, want := range states {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
