package presenter

import (
	"errors"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/soocke/ghost/domain/capture"
	"github.com/soocke/ghost/domain/export"
	"github.com/soocke/ghost/domain/render"
	"github.com/soocke/ghost/ui/model"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// mockEngine implements RenderControl, SourceAttacher and CompositeSource.
type mockEngine struct {
	state      render.RenderState
	baseOK     bool
	exportOK   bool
	bases      int
	exports    int
	attached   capture.FrameSource
	attachSize render.FrameSize
	attaches   int
	detaches   int
	phase      render.Phase
	stats      render.TickStats
	frame      *image.RGBA
	snapshots  int
	start      time.Time
}

func (m *mockEngine) SetRenderState(opts ...render.StateOption) {
	for _, o := range opts {
		o(&m.state)
	}
}
func (m *mockEngine) State() render.RenderState { return m.state }
func (m *mockEngine) CaptureBase() bool         { m.bases++; return m.baseOK }
func (m *mockEngine) CaptureExport() bool       { m.exports++; return m.exportOK }
func (m *mockEngine) AttachSource(src capture.FrameSource, size render.FrameSize) string {
	m.attached, m.attachSize = src, size
	m.state.Size = size
	m.attaches++
	return "session"
}
func (m *mockEngine) DetachSource()           { m.attached = nil; m.detaches++ }
func (m *mockEngine) Phase() render.Phase     { return m.phase }
func (m *mockEngine) Stats() render.TickStats { return m.stats }
func (m *mockEngine) StartTime() time.Time    { return m.start }
func (m *mockEngine) Snapshot(dst *image.RGBA) *image.RGBA {
	if m.frame == nil {
		return nil
	}
	m.snapshots++
	if dst == nil || dst.Rect != m.frame.Rect {
		dst = image.NewRGBA(m.frame.Rect)
	}
	copy(dst.Pix, m.frame.Pix)
	return dst
}

// mockView implements every view interface used by the presenters.
type mockView struct {
	mode        render.BlendMode
	orientation render.Orientation
	zoom        bool
	info        bool
	flashes     []string
	device      string
	status      []string
	previews    int
	lastCover   bool
	resets      int
	exportShown image.Image
	exportHides int
	tsOK        bool
	tsStart     time.Time
}

func (v *mockView) SetMode(m render.BlendMode)          { v.mode = m }
func (v *mockView) SetOrientation(o render.Orientation) { v.orientation = o }
func (v *mockView) SetZoom(b bool)                      { v.zoom = b }
func (v *mockView) ShowInfo(b bool)                     { v.info = b }
func (v *mockView) Flash(msg string)                    { v.flashes = append(v.flashes, msg) }
func (v *mockView) SetDevice(name string)               { v.device = name }
func (v *mockView) SetStatus(s string)                  { v.status = append(v.status, s) }
func (v *mockView) UpdatePreview(_ image.Image, cover bool) {
	v.previews++
	v.lastCover = cover
}
func (v *mockView) PreviewReset()              { v.resets++ }
func (v *mockView) ShowExport(img image.Image) { v.exportShown = img }
func (v *mockView) HideExport()                { v.exportShown = nil; v.exportHides++ }
func (v *mockView) SetTimestamps(start, _ time.Time, _ time.Duration, ok bool) {
	v.tsStart, v.tsOK = start, ok
}

type mockConfirmer struct{ confirms, cancels int }

func (m *mockConfirmer) Confirm() { m.confirms++ }
func (m *mockConfirmer) Cancel()  { m.cancels++ }

type mockCycler struct{ n int }

func (m *mockCycler) Cycle() { m.n++ }

// mockSource is a controllable capture.Source.
type mockSource struct {
	name    string
	img     *image.RGBA
	running bool
	err     error
	starts  int
	stops   int
}

func (s *mockSource) LatestFrame() capture.FrameSnapshot {
	if s.img == nil {
		return capture.FrameSnapshot{}
	}
	return capture.FrameSnapshot{Image: s.img, Sequence: 1}
}
func (s *mockSource) Running() bool { return s.running }
func (s *mockSource) Start()        { s.running = true; s.starts++ }
func (s *mockSource) Stop()         { s.running = false; s.stops++ }
func (s *mockSource) Name() string  { return s.name }
func (s *mockSource) Err() error    { return s.err }

type mockWriter struct {
	frames []render.ExportFrame
	err    error
}

func (w *mockWriter) Export(f render.ExportFrame) error {
	w.frames = append(w.frames, f)
	return w.err
}

func newControl() (*ControlPresenter, *mockEngine, *model.DisplayModel, *mockView, *mockConfirmer, *mockCycler) {
	eng := &mockEngine{state: render.RenderState{Mode: render.BlendDifference}, baseOK: true, exportOK: true}
	display := &model.DisplayModel{}
	view := &mockView{}
	conf := &mockConfirmer{}
	cyc := &mockCycler{}
	return NewControlPresenter(eng, display, view, conf, cyc), eng, display, view, conf, cyc
}

func TestControlPresenter_Flips(t *testing.T) {
	c, eng, _, view, _, _ := newControl()
	var changes int
	c.OnChange = func(render.RenderState) { changes++ }
	c.HandleKey("h")
	if !eng.state.Orientation.FlipHorizontal || !view.orientation.FlipHorizontal {
		t.Fatalf("h did not flip: %+v", eng.state.Orientation)
	}
	c.HandleKey("v")
	c.HandleKey("h")
	if eng.state.Orientation != (render.Orientation{FlipVertical: true}) {
		t.Fatalf("orientation %+v", eng.state.Orientation)
	}
	if changes != 3 {
		t.Fatalf("expected 3 change callbacks, got %d", changes)
	}
}

func TestControlPresenter_Modes(t *testing.T) {
	c, eng, _, view, _, _ := newControl()
	var changes int
	c.OnChange = func(render.RenderState) { changes++ }
	for _, tc := range []struct {
		key  string
		want render.BlendMode
	}{{"m", render.BlendMultiply}, {"s", render.BlendScreen}, {"d", render.BlendDifference}} {
		c.HandleKey(tc.key)
		if eng.state.Mode != tc.want || view.mode != tc.want {
			t.Fatalf("%s: mode %v view %v", tc.key, eng.state.Mode, view.mode)
		}
	}
	c.SetMode(render.BlendDifference)
	if changes != 3 {
		t.Fatalf("re-selecting the current mode should not notify, got %d", changes)
	}
	c.SetMode(render.BlendMode(9))
	if eng.state.Mode != render.BlendDifference {
		t.Fatal("invalid mode applied")
	}
}

func TestControlPresenter_BaseAndExport(t *testing.T) {
	c, eng, display, view, conf, _ := newControl()
	c.HandleKey("space")
	if eng.bases != 1 || len(view.flashes) != 0 {
		t.Fatalf("base: %d flashes %v", eng.bases, view.flashes)
	}
	eng.baseOK = false
	c.CaptureBase()
	if len(view.flashes) != 1 {
		t.Fatal("rejected base not reported")
	}

	c.HandleKey("Return")
	if eng.exports != 1 || conf.confirms != 0 {
		t.Fatalf("export: %d confirms %d", eng.exports, conf.confirms)
	}
	// A second Enter with the dialog open saves instead of capturing again.
	display.SetExportOpen(true)
	c.HandleKey("Return")
	if eng.exports != 1 || conf.confirms != 1 {
		t.Fatalf("enter with dialog open: exports %d confirms %d", eng.exports, conf.confirms)
	}
	c.HandleKey("Escape")
	if conf.cancels != 1 {
		t.Fatal("escape did not cancel the dialog")
	}
}

func TestControlPresenter_Overlays(t *testing.T) {
	c, _, display, view, conf, cyc := newControl()
	c.HandleKey("i")
	if !display.InfoVisible() || !view.info {
		t.Fatal("info not shown")
	}
	c.HandleKey("Escape")
	if display.InfoVisible() || view.info || conf.cancels != 0 {
		t.Fatal("escape should only close info")
	}
	c.HandleKey("z")
	if !display.Zoom() || !view.zoom {
		t.Fatal("zoom not toggled")
	}
	c.HandleKey("c")
	if cyc.n != 1 {
		t.Fatal("device not cycled")
	}
	if c.HandleKey("q") {
		t.Fatal("unbound key reported as handled")
	}
}

func TestControlPresenter_NilSafe(t *testing.T) {
	var c *ControlPresenter
	c.Sync()
	c.ToggleFlipHorizontal()
	c.Export()
	c.CycleDevice()
	c.HandleKey("h")
}

func TestExportPresenter_ConfirmWrites(t *testing.T) {
	view := &mockView{}
	display := &model.DisplayModel{}
	w := &mockWriter{}
	p := NewExportPresenter(w, view, display, discardLogger)
	p.Run = func(fn func()) { fn() }

	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.RGBA{R: 9, A: 255})
	if err := p.Export(render.ExportFrame{ID: "x", Image: src}); err != nil {
		t.Fatal(err)
	}
	// The engine may reuse its buffer once Export returns.
	src.Pix[0] = 0
	if view.exportShown != nil {
		t.Fatal("dialog opened off the UI tick")
	}
	p.Tick()
	if view.exportShown == nil || !display.ExportOpen() {
		t.Fatal("dialog not opened")
	}
	p.Confirm()
	if len(w.frames) != 1 || w.frames[0].ID != "x" {
		t.Fatalf("writer frames %+v", w.frames)
	}
	if w.frames[0].Image.Pix[0] != 9 {
		t.Fatal("export frame not copied")
	}
	if display.ExportOpen() || view.exportHides != 1 {
		t.Fatal("dialog not closed")
	}
	p.Confirm()
	if len(w.frames) != 1 {
		t.Fatal("confirm without a shown frame wrote again")
	}
}

func TestExportPresenter_Cancel(t *testing.T) {
	view := &mockView{}
	display := &model.DisplayModel{}
	w := &mockWriter{}
	p := NewExportPresenter(w, view, display, discardLogger)
	p.Run = func(fn func()) { fn() }
	_ = p.Export(render.ExportFrame{ID: "x", Image: image.NewRGBA(image.Rect(0, 0, 1, 1))})
	p.Tick()
	p.Cancel()
	if len(w.frames) != 0 || display.ExportOpen() {
		t.Fatal("cancel wrote or left the dialog open")
	}
}

func TestExportPresenter_Results(t *testing.T) {
	view := &mockView{}
	p := NewExportPresenter(&mockWriter{}, view, nil, discardLogger)
	p.OnSaved(export.Result{Path: "/tmp/out/ghost-1.png"})
	p.OnSaved(export.Result{Err: errors.New("disk full")})
	p.Tick()
	if len(view.flashes) != 2 || view.flashes[0] != "Saved ghost-1.png" || !strings.Contains(view.flashes[1], "disk full") {
		t.Fatalf("flashes %v", view.flashes)
	}
	p.Tick()
	if len(view.flashes) != 2 {
		t.Fatal("results reported twice")
	}
}

func TestDevicePresenter_AttachesAfterFirstFrame(t *testing.T) {
	src := &mockSource{name: "cam"}
	eng := &mockEngine{}
	view := &mockView{}
	p := NewDevicePresenter(model.NewDeviceModel([]string{"cam"}), func(string) (capture.Source, error) { return src, nil }, eng, view, discardLogger)
	p.Activate()
	if src.starts != 1 || view.device != "cam" {
		t.Fatalf("source not started: %+v %q", src, view.device)
	}
	p.Tick()
	if eng.attaches != 0 {
		t.Fatal("attached before the first frame")
	}
	src.img = image.NewRGBA(image.Rect(0, 0, 4, 3))
	p.Tick()
	if eng.attaches != 1 || eng.attachSize != (render.FrameSize{Width: 4, Height: 3}) {
		t.Fatalf("attach %d size %v", eng.attaches, eng.attachSize)
	}
	p.Tick()
	if eng.attaches != 1 {
		t.Fatal("reattached on an unchanged source")
	}
	src.img = image.NewRGBA(image.Rect(0, 0, 8, 6))
	p.Tick()
	if eng.state.Size != (render.FrameSize{Width: 8, Height: 6}) {
		t.Fatalf("size change not forwarded: %v", eng.state.Size)
	}
	p.Close()
	if eng.detaches != 1 || src.stops != 1 || p.Active() != nil {
		t.Fatal("close did not detach and stop")
	}
}

func TestDevicePresenter_Cycle(t *testing.T) {
	opened := map[string]*mockSource{}
	open := func(spec string) (capture.Source, error) {
		s := &mockSource{name: spec, img: image.NewRGBA(image.Rect(0, 0, 2, 2))}
		opened[spec] = s
		return s, nil
	}
	eng := &mockEngine{}
	view := &mockView{}
	p := NewDevicePresenter(model.NewDeviceModel([]string{"a", "b"}), open, eng, view, discardLogger)
	var chosen []string
	p.OnChange = func(spec string) { chosen = append(chosen, spec) }
	p.Activate()
	p.Tick()
	p.Cycle()
	if len(chosen) != 2 || chosen[0] != "a" || chosen[1] != "b" {
		t.Fatalf("device changes %v", chosen)
	}
	if opened["a"].stops != 1 || eng.detaches != 1 {
		t.Fatal("previous device not released")
	}
	if view.device != "b" || p.Active() != opened["b"] {
		t.Fatalf("active %q", view.device)
	}
	p.Tick()
	if eng.attaches != 2 || eng.attached != opened["b"] {
		t.Fatal("new device not attached")
	}

	single := NewDevicePresenter(model.NewDeviceModel([]string{"only"}), open, eng, view, discardLogger)
	single.Activate()
	first := single.Active()
	single.Cycle()
	if single.Active() != first {
		t.Fatal("single device cycled")
	}
}

func TestDevicePresenter_Failures(t *testing.T) {
	eng := &mockEngine{}
	view := &mockView{}
	p := NewDevicePresenter(model.NewDeviceModel([]string{"bad"}), func(string) (capture.Source, error) {
		return nil, errors.New("no such device")
	}, eng, view, discardLogger)
	p.OnChange = func(spec string) { t.Fatalf("device change reported for failed open of %q", spec) }
	p.Activate()
	if p.Active() != nil || len(view.flashes) != 1 {
		t.Fatal("open error not reported")
	}

	src := &mockSource{name: "cam", img: image.NewRGBA(image.Rect(0, 0, 2, 2))}
	p = NewDevicePresenter(model.NewDeviceModel([]string{"cam"}), func(string) (capture.Source, error) { return src, nil }, eng, view, discardLogger)
	p.Activate()
	p.Tick()
	src.running = false
	src.err = errors.New("unplugged")
	p.Tick()
	p.Tick()
	if eng.detaches != 1 {
		t.Fatalf("expected one detach, got %d", eng.detaches)
	}
	if last := view.flashes[len(view.flashes)-1]; !strings.Contains(last, "unplugged") {
		t.Fatalf("flash %q", last)
	}
}

func TestPreviewPresenter_PushesNewFrames(t *testing.T) {
	eng := &mockEngine{phase: render.PhaseRunning, frame: image.NewRGBA(image.Rect(0, 0, 4, 4))}
	display := &model.DisplayModel{}
	view := &mockView{}
	p := NewPreviewPresenter(eng, display, view)
	p.Tick()
	if view.previews != 1 {
		t.Fatal("first frame not shown")
	}
	p.Tick()
	if view.previews != 1 || eng.snapshots != 1 {
		t.Fatal("unchanged frame copied again")
	}
	eng.stats.Drawn++
	p.Tick()
	if view.previews != 2 {
		t.Fatal("new frame not shown")
	}
	display.ToggleZoom()
	p.Tick()
	if view.previews != 3 || !view.lastCover {
		t.Fatal("zoom change not shown")
	}
}

func TestPreviewPresenter_IdleResets(t *testing.T) {
	eng := &mockEngine{phase: render.PhaseRunning, frame: image.NewRGBA(image.Rect(0, 0, 4, 4))}
	view := &mockView{}
	p := NewPreviewPresenter(eng, nil, view)
	p.Tick()
	eng.phase = render.PhaseIdle
	p.Tick()
	p.Tick()
	if view.resets != 1 {
		t.Fatalf("expected one reset, got %d", view.resets)
	}
	eng.phase = render.PhaseRunning
	p.Tick()
	if view.previews != 2 {
		t.Fatal("preview not restored after idle")
	}

	eng.frame = nil
	eng.stats.Drawn++
	p.Tick()
	if view.previews != 2 {
		t.Fatal("nil snapshot pushed")
	}
}

func TestTimestampPresenter(t *testing.T) {
	eng := &mockEngine{}
	view := &mockView{}
	p := NewTimestampPresenter(model.NewTimestampModel(), eng, view)
	p.Tick(time.Now())
	if view.tsOK {
		t.Fatal("timestamps shown before a base capture")
	}
	eng.start = time.Date(2026, 1, 2, 15, 4, 5, 0, time.Local)
	p.Tick(eng.start.Add(time.Minute))
	if !view.tsOK || !view.tsStart.Equal(eng.start) {
		t.Fatalf("timestamps %v %v", view.tsOK, view.tsStart)
	}
}

func TestStatusPresenter(t *testing.T) {
	view := &mockView{}
	p := NewStatusPresenter(view)
	p.Tick(time.Now())
	if len(view.status) != 1 || view.status[0] != "Waiting for camera" {
		t.Fatalf("initial status %v", view.status)
	}
	p.OnPhase(render.PhaseIdle, render.PhaseRunning)
	p.OnPhase(render.PhaseRunning, render.PhasePaused)
	p.Tick(time.Now())
	if view.status[len(view.status)-1] != "Capturing" {
		t.Fatalf("status %v", view.status)
	}
	p.Tick(time.Now())
	if len(view.status) != 2 {
		t.Fatal("unchanged phase pushed again")
	}
}

func TestLoop_NilSafeAndSchedules(t *testing.T) {
	var l *Loop
	l.Tick()
	scheduled := 0
	l = NewLoop(nil, NewStatusPresenter(&mockView{}), nil, nil, nil, func() { scheduled++ })
	l.Tick()
	if scheduled != 1 {
		t.Fatal("schedule not called")
	}
}
