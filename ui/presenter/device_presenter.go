package presenter

import (
	"image"
	"log/slog"

	"github.com/soocke/ghost/domain/capture"
	"github.com/soocke/ghost/domain/render"
	"github.com/soocke/ghost/ui/model"
)

// SourceOpener builds an unstarted source from a device spec.
type SourceOpener func(spec string) (capture.Source, error)

// SourceAttacher narrows the engine to session management.
type SourceAttacher interface {
	AttachSource(src capture.FrameSource, size render.FrameSize) string
	DetachSource()
	SetRenderState(opts ...render.StateOption)
}

// DeviceView shows the active device.
type DeviceView interface {
	SetDevice(name string)
	Flash(msg string)
}

// DevicePresenter owns the active source. The engine is attached once the
// source has delivered its first frame, so the frame size is always known;
// later size changes are forwarded as render state updates.
type DevicePresenter struct {
	model  *model.DeviceModel
	open   SourceOpener
	engine SourceAttacher
	view   DeviceView
	logger *slog.Logger

	// OnChange receives the spec of each successfully opened device.
	OnChange func(spec string)

	active   capture.Source
	attached bool
	failed   bool
	size     render.FrameSize
}

func NewDevicePresenter(m *model.DeviceModel, open SourceOpener, engine SourceAttacher, view DeviceView, logger *slog.Logger) *DevicePresenter {
	return &DevicePresenter{model: m, open: open, engine: engine, view: view, logger: logger}
}

// Active returns the running source, if any.
func (p *DevicePresenter) Active() capture.Source {
	if p == nil {
		return nil
	}
	return p.active
}

// Activate opens and starts the selected device, replacing the current one.
func (p *DevicePresenter) Activate() {
	if p == nil || p.model == nil || p.open == nil || p.engine == nil || p.view == nil {
		return
	}
	p.Close()
	spec, _ := p.model.Current()
	if spec == "" {
		p.view.Flash("No devices configured")
		return
	}
	src, err := p.open(spec)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("device open", "spec", spec, "error", err)
		}
		p.view.Flash("Cannot open " + spec)
		p.view.SetDevice(spec + " (unavailable)")
		return
	}
	src.Start()
	p.active = src
	p.view.SetDevice(src.Name())
	if p.logger != nil {
		p.logger.Info("device.active", "name", src.Name())
	}
	if p.OnChange != nil {
		p.OnChange(spec)
	}
}

// Cycle moves to the next device. Nothing happens with a single device.
func (p *DevicePresenter) Cycle() {
	if p == nil || p.model == nil {
		return
	}
	if _, ok := p.model.Next(); !ok {
		return
	}
	p.Activate()
}

// Tick attaches the source once its size is known and tracks size changes
// and failures.
func (p *DevicePresenter) Tick() {
	if p == nil || p.active == nil || p.engine == nil {
		return
	}
	if !p.active.Running() {
		if err := p.active.Err(); err != nil && !p.failed {
			p.failed = true
			if p.attached {
				p.engine.DetachSource()
				p.attached = false
			}
			if p.view != nil {
				p.view.Flash(p.active.Name() + ": " + err.Error())
			}
		}
		return
	}
	p.failed = false
	size := render.SizeOf(image.Rectangle{Max: capture.FrameSize(p.active)})
	if size.Empty() {
		return
	}
	if !p.attached {
		p.engine.AttachSource(p.active, size)
		p.attached = true
		p.size = size
		return
	}
	if size != p.size {
		p.size = size
		p.engine.SetRenderState(render.WithFrameSize(size))
	}
}

// Close detaches and stops the active source.
func (p *DevicePresenter) Close() {
	if p == nil || p.active == nil {
		return
	}
	if p.attached && p.engine != nil {
		p.engine.DetachSource()
	}
	p.active.Stop()
	p.active = nil
	p.attached = false
	p.failed = false
	p.size = render.FrameSize{}
}
