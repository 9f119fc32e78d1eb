// Package wedo implements the LEGO WeDo 2.0 (LPF2) wire protocol: the
// characteristic UUID scheme, the fixed-layout command encoders for motors,
// the RGB light and port setup, the notification decoders for port and
// sensor events, and the registry of devices attached to hub ports.
package wedo

import "strings"

// vendorUUIDBase is the suffix shared by all LPF2 custom characteristics.
const vendorUUIDBase = "1212-efde-1523-785feabcd123"

// CharacteristicUUID builds a full LPF2 UUID from a short hex suffix such
// as "0x1565" or "1565". The suffix is left-padded with zeros to 8 digits;
// input longer than 8 hex digits keeps only the last 8.
func CharacteristicUUID(shortHex string) string {
	s := strings.TrimPrefix(strings.ToLower(shortHex), "0x")
	padded := "00000000" + s
	return padded[len(padded)-8:] + "-" + vendorUUIDBase
}

// Services and characteristics used by the hub. The port-type
// characteristic lives in the hub service; the command and sensor-value
// characteristics live in the I/O service.
var (
	HubServiceUUID = CharacteristicUUID("0x1523")
	IOServiceUUID  = CharacteristicUUID("0x4f0e")

	OutputCommandUUID = CharacteristicUUID("0x1565") // motor and LED commands
	InputCommandUUID  = CharacteristicUUID("0x1563") // port setup handshakes
	SensorValueUUID   = CharacteristicUUID("0x1560") // sensor notifications
)

// PortTypeUUID is the attach/detach notification characteristic. It does
// not follow the short-suffix scheme and is spelled out in full.
const PortTypeUUID = "00001527-1212-efde-1523-785feabcd123"
