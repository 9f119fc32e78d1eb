// Package ble abstracts the Bluetooth Low Energy transport used to talk
// to a LEGO WeDo 2.0 hub. It exposes scanning, connecting and GATT
// characteristic access behind small interfaces so the hub session and
// control loops can run against fakes in tests.
package ble

import (
	"context"
	"errors"
)

// ErrHubNotFound is returned when a scan ends without a matching hub.
var ErrHubNotFound = errors.New("ble: no hub found")

// Device describes a discovered BLE peripheral.
type Device struct {
	Name    string
	Address string
	RSSI    int
}

// Filter selects scan results. A device matches when its local name
// contains any of the substrings (case-insensitive) and its RSSI is at
// least MinRSSI. Limit > 0 stops the scan after that many matches.
type Filter struct {
	NameContains []string
	MinRSSI      int
	Limit        int
}

// Characteristic represents a BLE GATT characteristic.
type Characteristic interface {
	// Write sends data to the characteristic without response.
	Write(data []byte) error
	// Read performs an explicit read of the current value.
	Read() ([]byte, error)
	// Subscribe registers a callback for notifications on this characteristic.
	Subscribe(callback func(data []byte)) error
}

// Connection represents an active BLE connection to a hub.
type Connection interface {
	// DiscoverCharacteristic finds a characteristic by UUID within a service.
	DiscoverCharacteristic(serviceUUID, charUUID string) (Characteristic, error)
	// Disconnect terminates the connection.
	Disconnect() error
	// OnDisconnect registers a callback invoked when the connection drops.
	OnDisconnect(callback func())
}

// Adapter abstracts the BLE hardware adapter for testing.
type Adapter interface {
	// Enable powers on the BLE adapter.
	Enable() error
	// Scan discovers peripherals matching the filter until ctx is
	// cancelled or the filter's limit is reached.
	Scan(ctx context.Context, filter Filter) ([]Device, error)
	// Connect establishes a connection to the device at the given address.
	Connect(ctx context.Context, address string) (Connection, error)
}
