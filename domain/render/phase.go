package render

import (
	"image"
	"time"
)

// Phase is the observable state of the render loop.
type Phase int32

const (
	// PhaseIdle: no source or no frame size; ticks are no-ops.
	PhaseIdle Phase = iota
	// PhaseRunning: every tick composites Base and Live into the output.
	PhaseRunning
	// PhasePaused: an export is in flight; ticks skip drawing.
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// PhaseListener is called on the tick goroutine after each phase change.
type PhaseListener func(prev, next Phase)

// ExportFrame is a still copy of the composite taken by CaptureExport.
type ExportFrame struct {
	ID          string
	Image       *image.RGBA
	CapturedAt  time.Time
	Mode        BlendMode
	Orientation Orientation
}

// ExportSink receives export frames. Export runs on its own goroutine and the
// frame stays valid until it returns; the engine accepts no further export
// in the meantime.
type ExportSink interface {
	Export(ExportFrame) error
}

// ExportSinkFunc adapts a plain function to ExportSink.
type ExportSinkFunc func(ExportFrame) error

func (f ExportSinkFunc) Export(frame ExportFrame) error { return f(frame) }

// TickStats counts what the loop did with its ticks.
type TickStats struct {
	Ticks           uint64
	Drawn           uint64
	SkippedSource   uint64
	SkippedMismatch uint64
	SkippedPaused   uint64
	BaseCaptures    uint64
	Exports         uint64
	AvgTick         time.Duration
	LastDrawn       time.Time
}
