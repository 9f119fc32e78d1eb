package hub

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jtarrant/wedohub/internal/ble"
	"github.com/jtarrant/wedohub/internal/wedo"
)

// fakeCharacteristic records writes and reads and lets tests push
// notifications at the subscriber.
type fakeCharacteristic struct {
	mu        sync.Mutex
	writes    [][]byte
	value     []byte
	readCalls int
	callback  func([]byte)
}

func (c *fakeCharacteristic) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	c.writes = append(c.writes, cp)
	return nil
}

func (c *fakeCharacteristic) Read() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readCalls++
	cp := make([]byte, len(c.value))
	copy(cp, c.value)
	return cp, nil
}

func (c *fakeCharacteristic) Subscribe(cb func([]byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callback = cb
	return nil
}

func (c *fakeCharacteristic) Notify(data []byte) {
	c.mu.Lock()
	cb := c.callback
	c.mu.Unlock()
	if cb != nil {
		cb(data)
	}
}

func (c *fakeCharacteristic) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func (c *fakeCharacteristic) writesCopy() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.writes))
	copy(out, c.writes)
	return out
}

func (c *fakeCharacteristic) subscribed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callback != nil
}

// fakeConnection serves the four hub characteristics.
type fakeConnection struct {
	port, sensor, input, output *fakeCharacteristic

	mu           sync.Mutex
	disconnected bool
}

func newFakeConnection() *fakeConnection {
	return &fakeConnection{
		port:   &fakeCharacteristic{},
		sensor: &fakeCharacteristic{},
		input:  &fakeCharacteristic{},
		output: &fakeCharacteristic{},
	}
}

func (c *fakeConnection) DiscoverCharacteristic(serviceUUID, charUUID string) (ble.Characteristic, error) {
	switch charUUID {
	case wedo.PortTypeUUID:
		return c.port, nil
	case wedo.SensorValueUUID:
		return c.sensor, nil
	case wedo.InputCommandUUID:
		return c.input, nil
	case wedo.OutputCommandUUID:
		return c.output, nil
	default:
		return nil, fmt.Errorf("fake: unknown characteristic UUID %q", charUUID)
	}
}

func (c *fakeConnection) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
	return nil
}

func (c *fakeConnection) OnDisconnect(cb func()) {}

type fakeAdapter struct {
	connection *fakeConnection
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{connection: newFakeConnection()}
}

func (a *fakeAdapter) Enable() error { return nil }

func (a *fakeAdapter) Scan(_ context.Context, _ ble.Filter) ([]ble.Device, error) {
	return nil, nil
}

func (a *fakeAdapter) Connect(_ context.Context, _ string) (ble.Connection, error) {
	return a.connection, nil
}

var _ ble.Adapter = (*fakeAdapter)(nil)

// dialFake connects a session over a fake transport.
func dialFake(t *testing.T, opts Options) (*Session, *fakeConnection) {
	t.Helper()
	adapter := newFakeAdapter()
	s, err := Dial(context.Background(), adapter, "24:71:89:AA:BB:CC", opts)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, adapter.connection
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

// attachMotor pushes a motor attach notification for a port.
func attachMotor(conn *fakeConnection, port byte) {
	conn.port.Notify([]byte{port, 1, 0, byte(wedo.DeviceMotor)})
}
