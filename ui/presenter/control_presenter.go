package presenter

import (
	"github.com/soocke/ghost/domain/render"
)

// RenderControl narrows what the control presenter needs from the engine.
type RenderControl interface {
	SetRenderState(opts ...render.StateOption)
	State() render.RenderState
	CaptureBase() bool
	CaptureExport() bool
}

// DisplayModel provides the presentation toggles.
type DisplayModel interface {
	Zoom() bool
	ToggleZoom() bool
	InfoVisible() bool
	SetInfoVisible(bool)
	ExportOpen() bool
	SetExportOpen(bool)
}

// ControlView reflects render settings and overlays in the toolbar.
type ControlView interface {
	SetMode(render.BlendMode)
	SetOrientation(render.Orientation)
	SetZoom(bool)
	ShowInfo(bool)
	Flash(msg string)
}

// ExportConfirmer resolves a pending export dialog.
type ExportConfirmer interface {
	Confirm()
	Cancel()
}

// DeviceCycler switches to the next configured device.
type DeviceCycler interface{ Cycle() }

// ControlPresenter turns toolbar clicks and key presses into engine calls.
type ControlPresenter struct {
	engine  RenderControl
	display DisplayModel
	view    ControlView
	exports ExportConfirmer
	devices DeviceCycler

	// OnChange is called after any render setting changes, e.g. to persist it.
	OnChange func(render.RenderState)
}

func NewControlPresenter(engine RenderControl, display DisplayModel, view ControlView, exports ExportConfirmer, devices DeviceCycler) *ControlPresenter {
	return &ControlPresenter{engine: engine, display: display, view: view, exports: exports, devices: devices}
}

func (c *ControlPresenter) ok() bool {
	return c != nil && c.engine != nil && c.display != nil && c.view != nil
}

// Sync pushes the current engine state to the view.
func (c *ControlPresenter) Sync() {
	if !c.ok() {
		return
	}
	st := c.engine.State()
	c.view.SetMode(st.Mode)
	c.view.SetOrientation(st.Orientation)
	c.view.SetZoom(c.display.Zoom())
	c.view.ShowInfo(c.display.InfoVisible())
}

func (c *ControlPresenter) changed() {
	c.Sync()
	if c.OnChange != nil {
		c.OnChange(c.engine.State())
	}
}

// ToggleFlipHorizontal mirrors the feed left to right.
func (c *ControlPresenter) ToggleFlipHorizontal() {
	if !c.ok() {
		return
	}
	c.engine.SetRenderState(render.WithFlipHorizontal(!c.engine.State().Orientation.FlipHorizontal))
	c.changed()
}

// ToggleFlipVertical mirrors the feed top to bottom.
func (c *ControlPresenter) ToggleFlipVertical() {
	if !c.ok() {
		return
	}
	c.engine.SetRenderState(render.WithFlipVertical(!c.engine.State().Orientation.FlipVertical))
	c.changed()
}

// SetMode selects the blend mode.
func (c *ControlPresenter) SetMode(m render.BlendMode) {
	if !c.ok() || !m.Valid() {
		return
	}
	if c.engine.State().Mode == m {
		return
	}
	c.engine.SetRenderState(render.WithBlendMode(m))
	c.changed()
}

// CaptureBase stamps the reference frame.
func (c *ControlPresenter) CaptureBase() {
	if !c.ok() {
		return
	}
	if !c.engine.CaptureBase() {
		c.view.Flash("No camera frame yet")
	}
}

// Export captures the composite, or saves it when the export dialog is
// already open.
func (c *ControlPresenter) Export() {
	if !c.ok() {
		return
	}
	if c.display.ExportOpen() {
		if c.exports != nil {
			c.exports.Confirm()
		}
		return
	}
	if !c.engine.CaptureExport() {
		c.view.Flash("Nothing to export")
	}
}

// ToggleZoom switches the preview between cover and contain.
func (c *ControlPresenter) ToggleZoom() {
	if !c.ok() {
		return
	}
	c.view.SetZoom(c.display.ToggleZoom())
}

// ToggleInfo shows or hides the about overlay.
func (c *ControlPresenter) ToggleInfo() {
	if !c.ok() {
		return
	}
	v := !c.display.InfoVisible()
	c.display.SetInfoVisible(v)
	c.view.ShowInfo(v)
}

// Dismiss closes every overlay.
func (c *ControlPresenter) Dismiss() {
	if !c.ok() {
		return
	}
	c.display.SetInfoVisible(false)
	c.view.ShowInfo(false)
	if c.display.ExportOpen() && c.exports != nil {
		c.exports.Cancel()
	}
}

// CycleDevice switches to the next source.
func (c *ControlPresenter) CycleDevice() {
	if c == nil || c.devices == nil {
		return
	}
	c.devices.Cycle()
}

// HandleKey dispatches a Tk keysym. It reports whether the key was bound.
func (c *ControlPresenter) HandleKey(keysym string) bool {
	switch keysym {
	case "i":
		c.ToggleInfo()
	case "Escape":
		c.Dismiss()
	case "h":
		c.ToggleFlipHorizontal()
	case "v":
		c.ToggleFlipVertical()
	case "space":
		c.CaptureBase()
	case "Return", "KP_Enter":
		c.Export()
	case "m":
		c.SetMode(render.BlendMultiply)
	case "d":
		c.SetMode(render.BlendDifference)
	case "s":
		c.SetMode(render.BlendScreen)
	case "c":
		c.CycleDevice()
	case "z":
		c.ToggleZoom()
	default:
		return false
	}
	return true
}
