package wedo

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument reports a command parameter outside the range the hub
// accepts. The hub itself does no validation; sending an out-of-range value
// would silently wrap, so it is rejected here instead.
var ErrInvalidArgument = errors.New("wedo: invalid argument")

// EncodeMotorPower maps a power percentage in [-100, 100] to the unsigned
// byte the hub expects: positive values pass through, negative values wrap
// to 256+power (so -50 becomes 206), zero stops the motor.
func EncodeMotorPower(power int) (byte, error) {
	if power < -100 || power > 100 {
		return 0, fmt.Errorf("%w: motor power %d outside [-100, 100]", ErrInvalidArgument, power)
	}
	switch {
	case power > 0:
		return byte(power), nil
	case power < 0:
		return byte(256 + power), nil
	default:
		return 0, nil
	}
}

// EncodeMotorCommand builds the 4-byte motor drive command
// [port, 0x01, 0x01, power] for the output-command characteristic.
func EncodeMotorCommand(port byte, power int) ([]byte, error) {
	p, err := EncodeMotorPower(power)
	if err != nil {
		return nil, err
	}
	return []byte{port, 0x01, 0x01, p}, nil
}

// EncodeLEDCommand builds the 6-byte RGB command [0x06, 0x04, 0x03, r, g, b]
// for the output-command characteristic.
func EncodeLEDCommand(r, g, b uint8) []byte {
	return []byte{0x06, 0x04, 0x03, r, g, b}
}

// EncodePortInit builds the 11-byte handshake that configures a port for a
// device type before commands are accepted or sensor values reported.
func EncodePortInit(port byte, deviceType DeviceType, mode, valueFormat byte) []byte {
	return []byte{
		0x01, 0x02,
		port,
		byte(deviceType),
		mode,
		0x01, 0x00, 0x00, 0x00,
		valueFormat,
		0x01,
	}
}

// Port setup presets for the devices this package drives.

func MotorInit(port byte) []byte {
	return EncodePortInit(port, DeviceMotor, 0x02, 0x00)
}

func TiltInit(port byte) []byte {
	return EncodePortInit(port, DeviceTilt, 0x00, 0x00)
}

func DistanceInit(port byte) []byte {
	return EncodePortInit(port, DeviceDistance, 0x01, 0x00)
}
