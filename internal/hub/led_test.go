package hub

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestLEDHoldWritesOnce(t *testing.T) {
	s, conn := dialFake(t, DefaultOptions())
	led := NewLEDController(s)

	led.Hold(ColorRed)

	writes := conn.output.writesCopy()
	want := []byte{0x06, 0x04, 0x03, 255, 0, 0}
	if len(writes) != 1 || !bytes.Equal(writes[0], want) {
		t.Errorf("writes = %v, want one %v", writes, want)
	}
}

func TestLEDCycleStepsThroughPalette(t *testing.T) {
	s, conn := dialFake(t, DefaultOptions())
	led := NewLEDController(s)

	led.Cycle(context.Background(), nil, 5*time.Millisecond)
	waitFor(t, time.Second, func() bool { return conn.output.writeCount() >= 4 },
		"cycle never wrote a full palette round")
	led.Stop()

	palette := DefaultPalette()
	writes := conn.output.writesCopy()
	for i := 0; i < 4; i++ {
		c := palette[i%len(palette)]
		want := []byte{0x06, 0x04, 0x03, c.R, c.G, c.B}
		if !bytes.Equal(writes[i], want) {
			t.Errorf("write %d = %v, want %v", i, writes[i], want)
		}
	}
}

func TestLEDStopHaltsWrites(t *testing.T) {
	s, conn := dialFake(t, DefaultOptions())
	led := NewLEDController(s)

	led.Cycle(context.Background(), nil, 5*time.Millisecond)
	waitFor(t, time.Second, func() bool { return conn.output.writeCount() >= 2 },
		"cycle never started")
	led.Stop()

	n := conn.output.writeCount()
	time.Sleep(30 * time.Millisecond)
	if got := conn.output.writeCount(); got != n {
		t.Errorf("writes continued after Stop(): %d -> %d", n, got)
	}
}

func TestLEDModeReplacementNeverRaces(t *testing.T) {
	s, conn := dialFake(t, DefaultOptions())
	led := NewLEDController(s)

	led.Cycle(context.Background(), nil, time.Millisecond)
	waitFor(t, time.Second, func() bool { return conn.output.writeCount() >= 1 },
		"cycle never started")

	// Hold must stop the cycling task before writing its own color, so
	// once its write lands no cycling write may follow.
	led.Hold(ColorWhite)

	writes := conn.output.writesCopy()
	last := writes[len(writes)-1]
	want := []byte{0x06, 0x04, 0x03, 255, 255, 255}
	if !bytes.Equal(last, want) {
		t.Fatalf("last write = %v, want hold color %v", last, want)
	}

	n := conn.output.writeCount()
	time.Sleep(20 * time.Millisecond)
	if got := conn.output.writeCount(); got != n {
		t.Errorf("cycling kept writing after Hold(): %d -> %d", n, got)
	}
}

func TestLEDBlinkLeavesColorOn(t *testing.T) {
	s, conn := dialFake(t, DefaultOptions())
	led := NewLEDController(s)

	led.Blink(context.Background(), ColorBlue, 2*time.Millisecond, 20*time.Millisecond)
	waitFor(t, time.Second, func() bool { return conn.output.writeCount() >= 4 },
		"blink never toggled")

	// Let the blink run out, then stop via the controller to join it.
	time.Sleep(30 * time.Millisecond)
	led.Stop()

	writes := conn.output.writesCopy()
	on := []byte{0x06, 0x04, 0x03, 0, 0, 255}
	off := []byte{0x06, 0x04, 0x03, 0, 0, 0}

	last := writes[len(writes)-1]
	if !bytes.Equal(last, on) {
		t.Errorf("last write = %v, want the blink color %v", last, on)
	}
	sawOff := false
	for _, w := range writes {
		if bytes.Equal(w, off) {
			sawOff = true
		}
	}
	if !sawOff {
		t.Error("blink never wrote the off color")
	}
}
