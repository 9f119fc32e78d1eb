package ble

import (
	"context"
	"fmt"
	"time"
)

// DefaultHubFilter matches the names WeDo 2.0 hubs advertise under. The
// RSSI floor keeps far-away hubs in other rooms out of the result.
func DefaultHubFilter() Filter {
	return Filter{
		NameContains: []string{"WeDo", "LPF2", "LEGO"},
		MinRSSI:      -80,
	}
}

// ScanForHub scans until the first matching hub is found or the timeout
// lapses, whichever comes first.
func ScanForHub(adapter Adapter, filter Filter, timeout time.Duration) (Device, error) {
	if err := adapter.Enable(); err != nil {
		return Device{}, fmt.Errorf("ble: enable adapter: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	filter.Limit = 1
	devices, err := adapter.Scan(ctx, filter)
	if err != nil {
		return Device{}, fmt.Errorf("ble: scan: %w", err)
	}
	if len(devices) == 0 {
		return Device{}, ErrHubNotFound
	}
	return devices[0], nil
}

// ScanForHubs collects every matching hub seen within the timeout.
func ScanForHubs(adapter Adapter, filter Filter, timeout time.Duration) ([]Device, error) {
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("ble: enable adapter: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	devices, err := adapter.Scan(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ble: scan: %w", err)
	}
	return devices, nil
}
