// Package hub coordinates one connection to a WeDo 2.0 hub: it owns the
// port registry, serializes outbound command writes, turns raw
// notifications into decoded events on channels, and hosts the motor,
// LED and monitoring loops.
package hub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jtarrant/wedohub/internal/ble"
	"github.com/jtarrant/wedohub/internal/wedo"
)

// Options configures a session.
type Options struct {
	ConnectTimeout time.Duration
	// AutoInitSensors sends the port setup handshake for tilt and
	// distance sensors as soon as they attach, so they start reporting
	// without the caller doing anything.
	AutoInitSensors bool
	// Buffer sizes for the decoded event channels. When a consumer falls
	// behind, new events are dropped with a log line rather than
	// blocking the notification callback.
	PortEventBuffer   int
	SensorEventBuffer int
}

// DefaultOptions returns the settings used by the CLI.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout:    10 * time.Second,
		AutoInitSensors:   true,
		PortEventBuffer:   16,
		SensorEventBuffer: 64,
	}
}

type initKey struct {
	port byte
	dev  wedo.DeviceType
}

// Session is the owner of one hub connection. All outbound writes are
// funneled through a single mutex so concurrent control loops never
// interleave partial commands on the link.
type Session struct {
	conn     ble.Connection
	registry *wedo.Registry

	writeMu sync.Mutex
	output  ble.Characteristic
	input   ble.Characteristic
	sensor  ble.Characteristic

	portEvents   chan wedo.PortEvent
	sensorEvents chan wedo.SensorEvent

	mu          sync.Mutex
	initialized map[initKey]bool
	closed      bool
}

// Dial connects to the hub at the given address, discovers the protocol
// characteristics and subscribes to port and sensor notifications.
func Dial(ctx context.Context, adapter ble.Adapter, address string, opts Options) (*Session, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.PortEventBuffer <= 0 {
		opts.PortEventBuffer = 16
	}
	if opts.SensorEventBuffer <= 0 {
		opts.SensorEventBuffer = 64
	}

	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("hub: enable adapter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	conn, err := adapter.Connect(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("hub: connect: %w", err)
	}

	s := &Session{
		conn:         conn,
		registry:     wedo.NewRegistry(),
		portEvents:   make(chan wedo.PortEvent, opts.PortEventBuffer),
		sensorEvents: make(chan wedo.SensorEvent, opts.SensorEventBuffer),
		initialized:  make(map[initKey]bool),
	}

	if err := s.discover(conn); err != nil {
		conn.Disconnect()
		return nil, err
	}
	if err := s.subscribe(conn, opts.AutoInitSensors); err != nil {
		conn.Disconnect()
		return nil, err
	}

	conn.OnDisconnect(func() {
		slog.Warn("[Hub] connection lost", "address", address)
	})

	slog.Info("[Hub] connected", "address", address)
	return s, nil
}

func (s *Session) discover(conn ble.Connection) error {
	var err error
	if s.output, err = conn.DiscoverCharacteristic(wedo.IOServiceUUID, wedo.OutputCommandUUID); err != nil {
		return fmt.Errorf("hub: discover output command: %w", err)
	}
	if s.input, err = conn.DiscoverCharacteristic(wedo.IOServiceUUID, wedo.InputCommandUUID); err != nil {
		return fmt.Errorf("hub: discover input command: %w", err)
	}
	if s.sensor, err = conn.DiscoverCharacteristic(wedo.IOServiceUUID, wedo.SensorValueUUID); err != nil {
		return fmt.Errorf("hub: discover sensor value: %w", err)
	}
	return nil
}

func (s *Session) subscribe(conn ble.Connection, autoInit bool) error {
	portChar, err := conn.DiscoverCharacteristic(wedo.HubServiceUUID, wedo.PortTypeUUID)
	if err != nil {
		return fmt.Errorf("hub: discover port type: %w", err)
	}
	if err := portChar.Subscribe(func(data []byte) {
		s.handlePortNotification(data, autoInit)
	}); err != nil {
		return fmt.Errorf("hub: subscribe to port notifications: %w", err)
	}

	if err := s.sensor.Subscribe(s.handleSensorNotification); err != nil {
		return fmt.Errorf("hub: subscribe to sensor notifications: %w", err)
	}
	return nil
}

// handlePortNotification updates the registry before the event is
// forwarded, so a consumer that sees the event can already trust the
// registry state it implies.
func (s *Session) handlePortNotification(data []byte, autoInit bool) {
	ev, err := wedo.DecodePortEvent(data)
	if err != nil {
		slog.Warn("[Ports] dropping notification", "error", err, "data", fmt.Sprintf("% x", data))
		return
	}
	s.registry.Apply(ev)
	slog.Info("[Ports] port event",
		"port", ev.Port, "attached", ev.Attached, "device", ev.Device.String())

	if autoInit && ev.Attached {
		switch ev.Device {
		case wedo.DeviceTilt:
			if err := s.InitTilt(ev.Port); err != nil {
				slog.Warn("[Ports] tilt init failed", "port", ev.Port, "error", err)
			}
		case wedo.DeviceDistance:
			if err := s.InitDistance(ev.Port); err != nil {
				slog.Warn("[Ports] distance init failed", "port", ev.Port, "error", err)
			}
		}
	}

	select {
	case s.portEvents <- ev:
	default:
		slog.Debug("[Ports] event channel full, dropping", "port", ev.Port)
	}
}

func (s *Session) handleSensorNotification(data []byte) {
	ev := wedo.DecodeSensorEvent(data, s.registry.Get)
	if ev.Kind == wedo.SensorUnhandled {
		slog.Debug("[Sensors] unhandled notification",
			"port", ev.Port, "device", ev.Device.String(), "data", fmt.Sprintf("% x", data))
		return
	}
	select {
	case s.sensorEvents <- ev:
	default:
		slog.Debug("[Sensors] event channel full, dropping", "port", ev.Port)
	}
}

// Registry exposes the port registry for the control loops.
func (s *Session) Registry() *wedo.Registry { return s.registry }

// PortEvents delivers decoded attach/detach events in arrival order.
func (s *Session) PortEvents() <-chan wedo.PortEvent { return s.portEvents }

// SensorEvents delivers decoded tilt and distance readings in arrival order.
func (s *Session) SensorEvents() <-chan wedo.SensorEvent { return s.sensorEvents }

// WriteOutput sends a command to the output-command characteristic.
func (s *Session) WriteOutput(cmd []byte) error {
	return s.write(s.output, cmd)
}

// WriteInput sends a handshake to the input-command characteristic.
func (s *Session) WriteInput(cmd []byte) error {
	return s.write(s.input, cmd)
}

func (s *Session) write(char ble.Characteristic, cmd []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.isClosed() {
		return fmt.Errorf("hub: session closed")
	}
	if err := char.Write(cmd); err != nil {
		return fmt.Errorf("hub: write: %w", err)
	}
	return nil
}

// ReadSensor performs an explicit read of the sensor-value
// characteristic, for polling on transports where notifications are
// unreliable.
func (s *Session) ReadSensor() ([]byte, error) {
	data, err := s.sensor.Read()
	if err != nil {
		return nil, fmt.Errorf("hub: read sensor value: %w", err)
	}
	return data, nil
}

// SetMotorPower drives the motor on a port at a power in [-100, 100].
func (s *Session) SetMotorPower(port byte, power int) error {
	cmd, err := wedo.EncodeMotorCommand(port, power)
	if err != nil {
		return err
	}
	return s.WriteOutput(cmd)
}

// SetLEDColor sets the hub LED to an RGB color.
func (s *Session) SetLEDColor(r, g, b uint8) error {
	return s.WriteOutput(wedo.EncodeLEDCommand(r, g, b))
}

// InitMotor sends the motor port handshake. Repeated calls for the same
// port are no-ops, so re-attach notifications do not re-run the setup.
func (s *Session) InitMotor(port byte) error {
	return s.initPort(port, wedo.DeviceMotor, wedo.MotorInit(port))
}

// InitTilt sends the tilt sensor port handshake, once per port.
func (s *Session) InitTilt(port byte) error {
	return s.initPort(port, wedo.DeviceTilt, wedo.TiltInit(port))
}

// InitDistance sends the distance sensor port handshake, once per port.
func (s *Session) InitDistance(port byte) error {
	return s.initPort(port, wedo.DeviceDistance, wedo.DistanceInit(port))
}

func (s *Session) initPort(port byte, dev wedo.DeviceType, cmd []byte) error {
	key := initKey{port, dev}
	s.mu.Lock()
	if s.initialized[key] {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.WriteInput(cmd); err != nil {
		return err
	}

	s.mu.Lock()
	s.initialized[key] = true
	s.mu.Unlock()
	slog.Info("[Hub] port initialized", "port", port, "device", dev.String())
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close disconnects from the hub. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.conn.Disconnect()
	slog.Info("[Hub] disconnected")
	return err
}
