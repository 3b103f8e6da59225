package presenter

import (
	"image"

	"github.com/soocke/ghost/domain/capture"
	"github.com/soocke/ghost/domain/render"
)

// CompositeSource supplies the visible composite.
type CompositeSource interface {
	Snapshot(dst *image.RGBA) *image.RGBA
	Phase() render.Phase
	Stats() render.TickStats
}

// ZoomModel reports the preview scaling mode.
type ZoomModel interface{ Zoom() bool }

// PreviewView displays the composite.
type PreviewView interface {
	UpdatePreview(img image.Image, cover bool)
	PreviewReset()
}

// PreviewPresenter copies the composite into a reused buffer and pushes it to
// the view when a new frame has been drawn or the zoom changed.
type PreviewPresenter struct {
	src  CompositeSource
	zoom ZoomModel
	view PreviewView

	buf       *image.RGBA
	lastDrawn uint64
	lastZoom  bool
	reset     bool
}

func NewPreviewPresenter(src CompositeSource, zoom ZoomModel, view PreviewView) *PreviewPresenter {
	return &PreviewPresenter{src: src, zoom: zoom, view: view}
}

// Tick refreshes the preview.
func (p *PreviewPresenter) Tick() {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	if p.src.Phase() == render.PhaseIdle {
		if !p.reset {
			p.view.PreviewReset()
			p.reset = true
			capture.RecycleFrame(p.buf)
			p.buf = nil
		}
		return
	}
	zoom := p.zoom != nil && p.zoom.Zoom()
	drawn := p.src.Stats().Drawn
	if !p.reset && p.buf != nil && drawn == p.lastDrawn && zoom == p.lastZoom {
		return
	}
	snap := p.src.Snapshot(p.buf)
	if snap == nil {
		return
	}
	if p.buf != nil && snap != p.buf {
		capture.RecycleFrame(p.buf)
	}
	p.buf = snap
	p.lastDrawn = drawn
	p.lastZoom = zoom
	p.reset = false
	p.view.UpdatePreview(snap, zoom)
}
