package presenter

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"sync"

	"github.com/soocke/ghost/domain/export"
	"github.com/soocke/ghost/domain/render"
)

// ExportWriter persists a confirmed export.
type ExportWriter interface {
	Export(render.ExportFrame) error
}

// ExportView shows the export confirmation dialog.
type ExportView interface {
	ShowExport(preview image.Image)
	HideExport()
	Flash(msg string)
}

// ExportPresenter sits between the engine and the writer: captured frames
// are shown for confirmation first and only written once confirmed.
//
// Export is called on the engine's export goroutine; everything else runs
// on the UI thread.
type ExportPresenter struct {
	writer  ExportWriter
	view    ExportView
	display DisplayModel
	logger  *slog.Logger
	// Run executes a save off the UI thread. Defaults to a new goroutine.
	Run func(func())

	mu      sync.Mutex
	pending *render.ExportFrame
	results []export.Result

	shown *render.ExportFrame
}

var _ render.ExportSink = (*ExportPresenter)(nil)

func NewExportPresenter(writer ExportWriter, view ExportView, display DisplayModel, logger *slog.Logger) *ExportPresenter {
	return &ExportPresenter{writer: writer, view: view, display: display, logger: logger, Run: func(fn func()) { go fn() }}
}

// SetWriter replaces the writer used for confirmed exports.
func (p *ExportPresenter) SetWriter(w ExportWriter) {
	if p != nil {
		p.writer = w
	}
}

// Export implements render.ExportSink. The frame is copied because the
// engine reuses its export buffer once this returns.
func (p *ExportPresenter) Export(frame render.ExportFrame) error {
	if p == nil || frame.Image == nil {
		return nil
	}
	img := image.NewRGBA(frame.Image.Rect)
	copy(img.Pix, frame.Image.Pix)
	frame.Image = img
	p.mu.Lock()
	p.pending = &frame
	p.mu.Unlock()
	return nil
}

// OnSaved queues a writer result for display on the next Tick.
func (p *ExportPresenter) OnSaved(res export.Result) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.results = append(p.results, res)
	p.mu.Unlock()
}

// Tick opens the dialog for a newly captured frame and reports finished saves.
func (p *ExportPresenter) Tick() {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	results := p.results
	p.results = nil
	p.mu.Unlock()

	if pending != nil {
		p.shown = pending
		p.view.ShowExport(pending.Image)
		if p.display != nil {
			p.display.SetExportOpen(true)
		}
	}
	for _, r := range results {
		if r.Err != nil {
			p.view.Flash(fmt.Sprintf("Export failed: %v", r.Err))
			continue
		}
		p.view.Flash("Saved " + filepath.Base(r.Path))
	}
}

// Confirm writes the shown frame and closes the dialog.
func (p *ExportPresenter) Confirm() {
	if p == nil || p.shown == nil {
		return
	}
	frame := *p.shown
	p.close()
	writer := p.writer
	if writer == nil {
		return
	}
	run := p.Run
	if run == nil {
		run = func(fn func()) { go fn() }
	}
	run(func() {
		defer func() {
			if r := recover(); r != nil && p.logger != nil {
				p.logger.Error("export write panic", "error", r, "stack", string(debug.Stack()))
			}
		}()
		if err := writer.Export(frame); err != nil && p.logger != nil {
			p.logger.Error("export write", "id", frame.ID, "error", err)
		}
	})
}

// Cancel discards the shown frame.
func (p *ExportPresenter) Cancel() {
	if p == nil || p.shown == nil {
		return
	}
	p.close()
}

func (p *ExportPresenter) close() {
	p.shown = nil
	if p.view != nil {
		p.view.HideExport()
	}
	if p.display != nil {
		p.display.SetExportOpen(false)
	}
}
