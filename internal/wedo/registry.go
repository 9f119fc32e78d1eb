package wedo

import "sync"

// Registry tracks which device type occupies each hub port. One registry
// belongs to one hub session; it is written by decoded port events and
// read by the control loops, so all access goes through the lock.
//
// A single distinguished motor port is tracked alongside the map. When
// two motors are attached the most recently seen one wins; driving more
// than one motor would need a set and is out of scope.
type Registry struct {
	mu        sync.RWMutex
	ports     map[byte]DeviceType
	motorPort byte
	hasMotor  bool
}

func NewRegistry() *Registry {
	return &Registry{ports: make(map[byte]DeviceType)}
}

// Update records the device type attached to a port, replacing any
// previous entry.
func (r *Registry) Update(port byte, dev DeviceType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ports[port] = dev
}

// Remove forgets a port after a detach notification. If the port was the
// distinguished motor port, that is cleared too.
func (r *Registry) Remove(port byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ports, port)
	if r.hasMotor && r.motorPort == port {
		r.hasMotor = false
	}
}

// Get returns the device type on a port, if any.
func (r *Registry) Get(port byte) (DeviceType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dev, ok := r.ports[port]
	return dev, ok
}

// MarkMotor records a port as the distinguished motor port, overwriting
// any previous one.
func (r *Registry) MarkMotor(port byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.motorPort = port
	r.hasMotor = true
}

// MotorPort returns the distinguished motor port, if one is known.
func (r *Registry) MotorPort() (byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.motorPort, r.hasMotor
}

// Apply folds one decoded port event into the registry: attaches update
// the map (and the motor port for motors), detaches remove the entry.
// Applying the same event twice leaves the registry unchanged.
func (r *Registry) Apply(ev PortEvent) {
	if !ev.Attached {
		r.Remove(ev.Port)
		return
	}
	r.Update(ev.Port, ev.Device)
	if ev.Device == DeviceMotor {
		r.MarkMotor(ev.Port)
	}
}

// Snapshot copies the current port map for logging.
func (r *Registry) Snapshot() map[byte]DeviceType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[byte]DeviceType, len(r.ports))
	for p, d := range r.ports {
		out[p] = d
	}
	return out
}
