package wedo

import (
	"errors"
	"fmt"
)

// Errors returned by the notification decoders. Both mark packets to log
// and drop; neither is fatal to a session.
var (
	ErrIncomplete    = errors.New("wedo: incomplete packet")
	ErrInvalidPacket = errors.New("wedo: invalid packet")
)

// DeviceType identifies what the hub reports as plugged into a port.
type DeviceType byte

const (
	DeviceNone     DeviceType = 0x00
	DeviceMotor    DeviceType = 0x01
	DeviceVoltage  DeviceType = 0x14
	DeviceCurrent  DeviceType = 0x15
	DevicePiezo    DeviceType = 0x16
	DeviceRGBLight DeviceType = 0x17
	DeviceTilt     DeviceType = 0x22
	DeviceDistance DeviceType = 0x23
)

func (d DeviceType) String() string {
	switch d {
	case DeviceNone:
		return "none"
	case DeviceMotor:
		return "motor"
	case DeviceVoltage:
		return "voltage sensor"
	case DeviceCurrent:
		return "current sensor"
	case DevicePiezo:
		return "piezo speaker"
	case DeviceRGBLight:
		return "RGB light"
	case DeviceTilt:
		return "tilt sensor"
	case DeviceDistance:
		return "distance sensor"
	default:
		return fmt.Sprintf("unknown (0x%02x)", byte(d))
	}
}

// PortEvent is a decoded attach/detach notification.
type PortEvent struct {
	Port     byte
	Attached bool
	Device   DeviceType
}

// DecodePortEvent decodes a port-type notification: byte 0 is the port,
// byte 1 the connection flag, byte 3 the device type. Shorter packets
// return ErrIncomplete.
func DecodePortEvent(data []byte) (PortEvent, error) {
	if len(data) < 4 {
		return PortEvent{}, fmt.Errorf("%w: port notification %d bytes, need 4", ErrIncomplete, len(data))
	}
	return PortEvent{
		Port:     data[0],
		Attached: data[1] != 0,
		Device:   DeviceType(data[3]),
	}, nil
}

// Tilt is a decoded tilt sensor direction.
type Tilt int

const (
	NoTilt Tilt = iota
	TiltBack
	TiltRight
	TiltForward
	TiltLeft
)

func (t Tilt) String() string {
	switch t {
	case TiltBack:
		return "BACK"
	case TiltRight:
		return "RIGHT"
	case TiltForward:
		return "FORWARD"
	case TiltLeft:
		return "LEFT"
	default:
		return "NO_TILT"
	}
}

// tilt marker bytes observed on the wire; a reading is only valid next to
// one of these.
func isTiltMarker(b byte) bool { return b == 38 || b == 39 }

// DecodeTilt decodes a tilt sensor notification of at least 8 bytes. The
// raw value sits at byte 2 when byte 3 carries a marker, else at byte 4
// when byte 5 does; byte 3 takes precedence when both match. Raw values
// classify by exclusive ranges: (10,40) back, (60,90) right, (170,190)
// forward, (220,240) left. Everything else, including the gaps
// between ranges and packets with no marker at all, reads as NoTilt.
func DecodeTilt(data []byte) (Tilt, error) {
	if len(data) < 8 {
		return NoTilt, fmt.Errorf("%w: tilt notification %d bytes, need 8", ErrIncomplete, len(data))
	}
	raw := -1
	if isTiltMarker(data[3]) {
		raw = int(data[2])
	} else if isTiltMarker(data[5]) {
		raw = int(data[4])
	}
	switch {
	case 10 < raw && raw < 40:
		return TiltBack, nil
	case 60 < raw && raw < 90:
		return TiltRight, nil
	case 170 < raw && raw < 190:
		return TiltForward, nil
	case 220 < raw && raw < 240:
		return TiltLeft, nil
	default:
		return NoTilt, nil
	}
}

// distanceOffset is subtracted from the raw byte to get centimeters.
const distanceOffset = 69

// DecodeDistance decodes a distance sensor notification. The packet must
// be exactly 8 bytes with a format marker of 176..179 at byte 5; the
// reading is byte 4 minus a fixed offset and may be negative at very
// close range. A wrong-sized packet returns ErrIncomplete, a wrong marker
// ErrInvalidPacket.
func DecodeDistance(data []byte) (int, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: distance notification %d bytes, need 8", ErrIncomplete, len(data))
	}
	if data[5] < 176 || data[5] > 179 {
		return 0, fmt.Errorf("%w: distance format byte 0x%02x", ErrInvalidPacket, data[5])
	}
	return int(data[4]) - distanceOffset, nil
}

// SensorEventKind tells which field of a SensorEvent is meaningful.
type SensorEventKind int

const (
	SensorUnhandled SensorEventKind = iota
	SensorTilt
	SensorDistance
)

// SensorEvent is a decoded sensor-value notification.
type SensorEvent struct {
	Port     byte
	Device   DeviceType
	Kind     SensorEventKind
	Tilt     Tilt
	Distance int
}

// DecodeSensorEvent routes a sensor-value notification to the decoder for
// whatever device the registry reports on the packet's port (byte 1).
// Unknown device types, ports with no registry entry and undecodable
// payloads all yield an Unhandled event for the caller to log and drop.
func DecodeSensorEvent(data []byte, lookup func(port byte) (DeviceType, bool)) SensorEvent {
	if len(data) < 4 {
		return SensorEvent{Kind: SensorUnhandled}
	}
	port := data[1]
	ev := SensorEvent{Port: port, Kind: SensorUnhandled}
	dev, ok := lookup(port)
	if !ok {
		return ev
	}
	ev.Device = dev
	switch dev {
	case DeviceTilt:
		tilt, err := DecodeTilt(data)
		if err != nil {
			return ev
		}
		ev.Kind = SensorTilt
		ev.Tilt = tilt
	case DeviceDistance:
		dist, err := DecodeDistance(data)
		if err != nil {
			return ev
		}
		ev.Kind = SensorDistance
		ev.Distance = dist
	}
	return ev
}
