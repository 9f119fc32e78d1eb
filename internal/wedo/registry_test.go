package wedo

import (
	"sync"
	"testing"
)

func TestRegistryUpdateAndGet(t *testing.T) {
	reg := NewRegistry()

	if _, ok := reg.Get(1); ok {
		t.Error("Get(1) on empty registry should report absent")
	}

	reg.Update(1, DeviceTilt)
	dev, ok := reg.Get(1)
	if !ok || dev != DeviceTilt {
		t.Errorf("Get(1) = %v, %v, want tilt sensor, true", dev, ok)
	}

	// Re-plugging a different device overwrites.
	reg.Update(1, DeviceDistance)
	if dev, _ := reg.Get(1); dev != DeviceDistance {
		t.Errorf("Get(1) after overwrite = %v, want distance sensor", dev)
	}
}

func TestRegistryMotorTracking(t *testing.T) {
	reg := NewRegistry()

	if _, ok := reg.MotorPort(); ok {
		t.Error("MotorPort() on empty registry should report absent")
	}

	reg.Apply(PortEvent{Port: 2, Attached: true, Device: DeviceMotor})
	port, ok := reg.MotorPort()
	if !ok || port != 2 {
		t.Errorf("MotorPort() = %d, %v, want 2, true", port, ok)
	}

	// A second motor takes over the distinguished slot, last writer wins.
	reg.Apply(PortEvent{Port: 3, Attached: true, Device: DeviceMotor})
	if port, _ := reg.MotorPort(); port != 3 {
		t.Errorf("MotorPort() after second motor = %d, want 3", port)
	}

	// Detaching a non-motor port leaves the motor slot alone.
	reg.Apply(PortEvent{Port: 2, Attached: false})
	if _, ok := reg.MotorPort(); !ok {
		// Port 2 is no longer the motor port; slot must survive.
		t.Error("MotorPort() lost after unrelated detach")
	}

	// Detaching the motor port clears the slot.
	reg.Apply(PortEvent{Port: 3, Attached: false})
	if _, ok := reg.MotorPort(); ok {
		t.Error("MotorPort() should be absent after motor detach")
	}
}

func TestRegistryApplyIdempotent(t *testing.T) {
	ev := PortEvent{Port: 1, Attached: true, Device: DeviceTilt}

	once := NewRegistry()
	once.Apply(ev)

	twice := NewRegistry()
	twice.Apply(ev)
	twice.Apply(ev)

	a, b := once.Snapshot(), twice.Snapshot()
	if len(a) != len(b) {
		t.Fatalf("snapshot sizes differ: %d vs %d", len(a), len(b))
	}
	for p, d := range a {
		if b[p] != d {
			t.Errorf("port %d: %v vs %v", p, d, b[p])
		}
	}
}

func TestRegistryDetachRemovesEntry(t *testing.T) {
	reg := NewRegistry()
	reg.Apply(PortEvent{Port: 1, Attached: true, Device: DeviceDistance})
	reg.Apply(PortEvent{Port: 1, Attached: false})
	if _, ok := reg.Get(1); ok {
		t.Error("Get(1) after detach should report absent")
	}
}

func TestRegistrySnapshotIsCopy(t *testing.T) {
	reg := NewRegistry()
	reg.Update(0, DeviceMotor)

	snap := reg.Snapshot()
	snap[0] = DevicePiezo

	if dev, _ := reg.Get(0); dev != DeviceMotor {
		t.Error("mutating a snapshot must not touch the registry")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(port byte) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.Apply(PortEvent{Port: port, Attached: true, Device: DeviceMotor})
				reg.Apply(PortEvent{Port: port, Attached: false})
			}
		}(byte(i))
		go func(port byte) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.Get(port)
				reg.MotorPort()
				reg.Snapshot()
			}
		}(byte(i))
	}
	wg.Wait()
}
