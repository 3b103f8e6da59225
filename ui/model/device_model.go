package model

import "sync"

// DeviceModel tracks the ordered device specs and which one is selected.
// The zero value has no devices and is usable. Guarded by a mutex because
// the device presenter may be poked from key bindings and ticks alike.
type DeviceModel struct {
	mu      sync.Mutex
	specs   []string
	current int
}

// NewDeviceModel returns a model over specs with the first one selected.
func NewDeviceModel(specs []string) *DeviceModel {
	return &DeviceModel{specs: append([]string(nil), specs...)}
}

// Len reports the number of configured devices.
func (m *DeviceModel) Len() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.specs)
}

// Current returns the selected spec and its index, or "" and -1 when empty.
func (m *DeviceModel) Current() (string, int) {
	if m == nil {
		return "", -1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.specs) == 0 {
		return "", -1
	}
	return m.specs[m.current], m.current
}

// Next advances the selection, wrapping around, and returns the new spec.
// With fewer than two devices the selection does not move.
func (m *DeviceModel) Next() (string, bool) {
	if m == nil {
		return "", false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.specs) < 2 {
		return "", false
	}
	m.current = (m.current + 1) % len(m.specs)
	return m.specs[m.current], true
}

// Select picks the device at index i.
func (m *DeviceModel) Select(i int) bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.specs) {
		return false
	}
	m.current = i
	return true
}

// Specs returns a copy of the device list.
func (m *DeviceModel) Specs() []string {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.specs...)
}
