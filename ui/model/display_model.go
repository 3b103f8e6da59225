package model

import "sync/atomic"

// DisplayModel holds presentation-only toggles: preview zoom and which
// overlay is open. The zero value is "contain", no overlay.
type DisplayModel struct {
	zoom       atomic.Bool
	info       atomic.Bool
	exportOpen atomic.Bool
}

// Zoom reports whether the preview fills its area (cover) rather than
// fitting inside it (contain).
func (m *DisplayModel) Zoom() bool {
	if m == nil {
		return false
	}
	return m.zoom.Load()
}

// ToggleZoom flips the zoom flag and returns the new value.
func (m *DisplayModel) ToggleZoom() bool {
	if m == nil {
		return false
	}
	for {
		prev := m.zoom.Load()
		if m.zoom.CompareAndSwap(prev, !prev) {
			return !prev
		}
	}
}

// InfoVisible reports whether the about overlay is shown.
func (m *DisplayModel) InfoVisible() bool {
	if m == nil {
		return false
	}
	return m.info.Load()
}

// SetInfoVisible shows or hides the about overlay.
func (m *DisplayModel) SetInfoVisible(b bool) {
	if m == nil {
		return
	}
	m.info.Store(b)
}

// ExportOpen reports whether an export is waiting for confirmation.
func (m *DisplayModel) ExportOpen() bool {
	if m == nil {
		return false
	}
	return m.exportOpen.Load()
}

// SetExportOpen records whether the export dialog is shown.
func (m *DisplayModel) SetExportOpen(b bool) {
	if m == nil {
		return
	}
	m.exportOpen.Store(b)
}
