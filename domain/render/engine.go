package render

import (
	"errors"
	"image"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/soocke/ghost/domain/capture"
)

const (
	defaultTickRate     = 60.0
	defaultPauseWindow  = time.Second
	renderStatsInterval = 5 * time.Second
)

// Options tunes an Engine. The zero value is usable; DefaultOptions returns
// the settings the application starts with.
type Options struct {
	// TickRate is the loop frequency in Hz (default 60).
	TickRate float64
	// PauseWindow is how long drawing stays paused after an export.
	PauseWindow time.Duration
	// Workers caps the goroutines compositing one frame; <= 0 means GOMAXPROCS.
	Workers int
	// Interpolator is used when a sample has to be rescaled to the frame size.
	Interpolator draw.Interpolator
	// CaptureBaseOnAttach stamps Base from the first sample after a source is
	// attached or the frame size changes.
	CaptureBaseOnAttach bool
	// Orientation is the initial flip state.
	Orientation Orientation
}

// DefaultOptions mirrors the camera selfie view: mirrored horizontally, base
// captured automatically on attach.
func DefaultOptions() Options {
	return Options{
		TickRate:            defaultTickRate,
		PauseWindow:         defaultPauseWindow,
		CaptureBaseOnAttach: true,
		Orientation:         Orientation{FlipHorizontal: true},
	}
}

type session struct {
	id         string
	src        capture.FrameSource
	attachedAt time.Time
}

type tickCounters struct {
	ticks           atomic.Uint64
	drawn           atomic.Uint64
	skippedSource   atomic.Uint64
	skippedMismatch atomic.Uint64
	skippedPaused   atomic.Uint64
	baseCaptures    atomic.Uint64
	exports         atomic.Uint64
	tickNanos       atomic.Uint64
	lastDrawn       atomic.Int64
}

// Engine owns the render state, the frame buffers and the loop that
// composites a reference frame (Base) with the live feed (Live).
//
// Every buffer is written from inside a tick only. Ticks come from the loop
// goroutine started by Start or from direct Tick calls; both are serialised.
// Public setters never block on a tick: they update atomics or raise request
// flags that the next tick services.
type Engine struct {
	logger     *slog.Logger
	opts       Options
	compositor Compositor

	stateMu sync.Mutex
	state   atomic.Pointer[RenderState]
	session atomic.Pointer[session]

	paused     atomic.Bool
	pauseGen   atomic.Uint64
	exportBusy atomic.Bool
	exportReq  atomic.Uint64 // pause generation of the pending export, 0 if none
	baseReq    atomic.Bool
	published  atomic.Bool
	startTime  atomic.Pointer[time.Time]
	lastExport atomic.Pointer[ExportFrame]

	tickMu  sync.Mutex
	buffers frameBuffers
	output  *doubleBuffer

	phase      atomic.Int32
	listenerMu sync.Mutex
	listeners  []PhaseListener

	sinkMu sync.Mutex
	sink   ExportSink

	stats tickCounters

	loopMu  sync.Mutex
	running atomic.Bool
	done    chan struct{}
}

// NewEngine returns an idle engine. Call Start to run the loop or drive it
// with Tick.
func NewEngine(logger *slog.Logger, opts Options) *Engine {
	if opts.TickRate <= 0 {
		opts.TickRate = defaultTickRate
	}
	if opts.PauseWindow <= 0 {
		opts.PauseWindow = defaultPauseWindow
	}
	e := &Engine{
		logger:     logger,
		opts:       opts,
		compositor: Compositor{Workers: opts.Workers},
		output:     newDoubleBuffer(),
	}
	e.state.Store(&RenderState{Orientation: opts.Orientation, Mode: DefaultBlendMode})
	return e
}

// SetRenderState merges opts into the shared snapshot. The next tick sees
// the whole update at once.
func (e *Engine) SetRenderState(opts ...StateOption) {
	if len(opts) == 0 {
		return
	}
	e.stateMu.Lock()
	prev := *e.state.Load()
	next := prev
	for _, opt := range opts {
		if opt != nil {
			opt(&next)
		}
	}
	next.Paused = false
	e.state.Store(&next)
	e.stateMu.Unlock()
	if next != prev && e.logger != nil {
		e.logger.Debug("render.state",
			"size", next.Size.String(),
			"mode", next.Mode.String(),
			"flip_h", next.Orientation.FlipHorizontal,
			"flip_v", next.Orientation.FlipVertical,
		)
	}
}

// State returns a copy of the current snapshot, including the pause flag.
func (e *Engine) State() RenderState {
	s := *e.state.Load()
	s.Paused = e.paused.Load()
	return s
}

// Phase reports the phase set by the most recent tick.
func (e *Engine) Phase() Phase { return Phase(e.phase.Load()) }

// AddListener registers l for phase changes.
func (e *Engine) AddListener(l PhaseListener) {
	if l == nil {
		return
	}
	e.listenerMu.Lock()
	e.listeners = append(e.listeners, l)
	e.listenerMu.Unlock()
}

// SetExportSink sets where CaptureExport frames are delivered. nil keeps the
// frame only in LatestExport.
func (e *Engine) SetExportSink(s ExportSink) {
	e.sinkMu.Lock()
	e.sink = s
	e.sinkMu.Unlock()
}

// AttachSource makes src the live feed and returns the new session id. When
// size is empty it is taken from the source's latest frame; if that is not
// known yet the engine stays idle until SetRenderState provides a size. The
// engine never starts or stops src.
func (e *Engine) AttachSource(src capture.FrameSource, size FrameSize) string {
	if src == nil {
		e.DetachSource()
		return ""
	}
	if size.Empty() {
		size = SizeOf(image.Rectangle{Max: capture.FrameSize(src)})
	}
	s := &session{id: uuid.New().String(), src: src, attachedAt: time.Now()}
	prev := e.session.Swap(s)
	e.startTime.Store(nil)
	if !size.Empty() {
		e.SetRenderState(WithFrameSize(size))
	}
	if e.opts.CaptureBaseOnAttach {
		e.baseReq.Store(true)
	}
	if e.logger != nil {
		args := []any{"session", s.id, "size", size.String()}
		if prev != nil {
			args = append(args, "replaced", prev.id)
		}
		e.logger.Info("render.attach", args...)
	}
	return s.id
}

// DetachSource ends the current session. The next tick goes idle and clears
// the output.
func (e *Engine) DetachSource() {
	prev := e.session.Swap(nil)
	if prev == nil {
		return
	}
	e.baseReq.Store(false)
	e.startTime.Store(nil)
	if e.logger != nil {
		e.logger.Info("render.detach", "session", prev.id, "duration", time.Since(prev.attachedAt))
	}
}

// SessionID returns the id of the attached session or "".
func (e *Engine) SessionID() string {
	if s := e.session.Load(); s != nil {
		return s.id
	}
	return ""
}

// CaptureBase asks the next running tick to copy the current oriented sample
// into Base. A request made during an export pause applies after resume. It
// returns false, doing nothing, when no source is attached or the
// frame size is unknown.
func (e *Engine) CaptureBase() bool {
	if e.session.Load() == nil {
		e.debug("render.base ignored", "reason", "no source")
		return false
	}
	if e.state.Load().Size.Empty() {
		e.debug("render.base ignored", "reason", "no frame size")
		return false
	}
	e.baseReq.Store(true)
	return true
}

// StartTime is when Base was last captured, or the zero time.
func (e *Engine) StartTime() time.Time {
	if t := e.startTime.Load(); t != nil {
		return *t
	}
	return time.Time{}
}

// CaptureExport pauses drawing, and the next tick copies the visible
// composite into the export buffer and hands it to the sink. Drawing resumes
// PauseWindow after the copy. It returns false when there is no composite
// yet or an export is already in flight.
func (e *Engine) CaptureExport() bool {
	if !e.published.Load() {
		e.debug("render.export ignored", "reason", "no output")
		return false
	}
	if !e.exportBusy.CompareAndSwap(false, true) {
		e.debug("render.export ignored", "reason", "export in flight")
		return false
	}
	if e.paused.Load() {
		e.exportBusy.Store(false)
		e.debug("render.export ignored", "reason", "paused")
		return false
	}
	gen := e.pauseGen.Add(1)
	e.paused.Store(true)
	e.exportReq.Store(gen)
	return true
}

// LatestExport returns a private copy of the most recent export frame. The
// export buffer is reused by later exports, so the copy is taken under the
// tick lock.
func (e *Engine) LatestExport() (ExportFrame, bool) {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	f := e.lastExport.Load()
	if f == nil {
		return ExportFrame{}, false
	}
	out := *f
	out.Image = image.NewRGBA(f.Image.Rect)
	copy(out.Image.Pix, f.Image.Pix)
	return out, true
}

// Snapshot copies the visible composite into dst, reallocating dst from the
// capture frame pool when it is nil or the wrong size. It returns nil when
// nothing has been composited. Callers may hand the result back with
// capture.RecycleFrame.
func (e *Engine) Snapshot(dst *image.RGBA) *image.RGBA {
	if !e.published.Load() {
		return nil
	}
	var out *image.RGBA
	e.output.read(func(front *image.RGBA) {
		if front == nil {
			return
		}
		if dst == nil || SizeOf(dst.Bounds()) != SizeOf(front.Bounds()) {
			dst = capture.AcquireFrame(front.Rect)
		}
		if copyRGBA(dst, front) {
			out = dst
		}
	})
	return out
}

// Stats returns the tick counters.
func (e *Engine) Stats() TickStats {
	ticks := e.stats.ticks.Load()
	var avg time.Duration
	if ticks > 0 {
		avg = time.Duration(e.stats.tickNanos.Load() / ticks)
	}
	var last time.Time
	if n := e.stats.lastDrawn.Load(); n != 0 {
		last = time.Unix(0, n)
	}
	return TickStats{
		Ticks:           ticks,
		Drawn:           e.stats.drawn.Load(),
		SkippedSource:   e.stats.skippedSource.Load(),
		SkippedMismatch: e.stats.skippedMismatch.Load(),
		SkippedPaused:   e.stats.skippedPaused.Load(),
		BaseCaptures:    e.stats.baseCaptures.Load(),
		Exports:         e.stats.exports.Load(),
		AvgTick:         avg,
		LastDrawn:       last,
	}
}

// Start runs the loop at Options.TickRate until Stop.
func (e *Engine) Start() {
	e.loopMu.Lock()
	defer e.loopMu.Unlock()
	if e.running.Swap(true) {
		return
	}
	e.done = make(chan struct{})
	go e.loop(e.done)
	if e.logger != nil {
		e.logger.Info("render.start", "tick_hz", e.opts.TickRate)
	}
}

// Stop halts the loop. Buffers and state are kept.
func (e *Engine) Stop() {
	e.loopMu.Lock()
	defer e.loopMu.Unlock()
	if !e.running.Swap(false) {
		return
	}
	close(e.done)
	if e.logger != nil {
		e.logger.Info("render.stop")
	}
}

// Running reports whether the loop goroutine is active.
func (e *Engine) Running() bool { return e.running.Load() }

func (e *Engine) loop(done <-chan struct{}) {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / e.opts.TickRate))
	defer ticker.Stop()
	statsTicker := time.NewTicker(renderStatsInterval)
	defer statsTicker.Stop()
	for {
		select {
		case <-done:
			return
		case <-statsTicker.C:
			e.logStats()
		case <-ticker.C:
			e.safeTick()
		}
	}
}

// safeTick keeps the loop alive across a panicking source or listener.
func (e *Engine) safeTick() {
	defer recoverLog(e.logger, "render tick panic")
	e.Tick()
}

// Tick performs one render step:
//
//  1. go idle without a source or frame size
//  2. resize buffers to the frame size
//  3. service a pending export request
//  4. skip the rest while paused
//  5. service a pending base request
//  6. draw the oriented sample into Live
//  7. composite Base and Live into the back surface and publish it
func (e *Engine) Tick() {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	start := time.Now()
	defer func() {
		e.stats.ticks.Add(1)
		e.stats.tickNanos.Add(uint64(time.Since(start)))
	}()

	st := *e.state.Load()
	sess := e.session.Load()
	if sess == nil || st.Size.Empty() {
		e.goIdle()
		return
	}

	if !e.buffers.matches(st.Size) {
		e.buffers.resize(st.Size)
		e.output.resize(st.Size)
		e.published.Store(false)
		if e.opts.CaptureBaseOnAttach {
			e.baseReq.Store(true)
		}
		if e.logger != nil {
			e.logger.Debug("render.resize", "size", st.Size.String())
		}
	}

	var sample *image.RGBA
	if sess.src.Running() {
		sample = sess.src.LatestFrame().Image
	}

	if gen := e.exportReq.Swap(0); gen != 0 {
		e.serviceExport(gen, st)
	}
	// A base request made during the pause stays pending until resume.
	if e.paused.Load() {
		e.setPhase(PhasePaused)
		e.stats.skippedPaused.Add(1)
		return
	}
	e.setPhase(PhaseRunning)

	if sample != nil && e.baseReq.CompareAndSwap(true, false) {
		DrawOriented(e.buffers.base, sample, st.Orientation, e.opts.Interpolator)
		now := time.Now()
		e.startTime.Store(&now)
		e.stats.baseCaptures.Add(1)
		e.debug("render.base captured", "session", sess.id)
	}
	if sample == nil {
		e.stats.skippedSource.Add(1)
		return
	}

	DrawOriented(e.buffers.live, sample, st.Orientation, e.opts.Interpolator)
	err := e.output.draw(func(back *image.RGBA) error {
		return e.compositor.Composite(back, e.buffers.base, e.buffers.live, st.Mode)
	})
	if err != nil {
		if errors.Is(err, ErrSizeMismatch) {
			e.stats.skippedMismatch.Add(1)
		}
		e.debug("render.composite skipped", "error", err)
		return
	}
	e.published.Store(true)
	e.stats.drawn.Add(1)
	e.stats.lastDrawn.Store(time.Now().UnixNano())
}

// goIdle drops pending requests and clears the output on the first idle
// tick. Later idle ticks are no-ops.
func (e *Engine) goIdle() {
	if e.Phase() == PhaseIdle {
		return
	}
	e.baseReq.Store(false)
	if gen := e.exportReq.Swap(0); gen != 0 {
		e.exportBusy.Store(false)
		e.resume(gen)
	}
	e.output.clear()
	e.published.Store(false)
	e.setPhase(PhaseIdle)
}

// serviceExport copies the visible composite into the export buffer and
// delivers it. The pause window starts after the copy.
func (e *Engine) serviceExport(gen uint64, st RenderState) {
	copied := false
	if e.published.Load() {
		e.output.read(func(front *image.RGBA) {
			copied = copyRGBA(e.buffers.export, front)
		})
	}
	if !copied {
		e.exportBusy.Store(false)
		e.resume(gen)
		e.debug("render.export dropped", "reason", "output resized")
		return
	}
	frame := ExportFrame{
		ID:          uuid.New().String(),
		Image:       e.buffers.export,
		CapturedAt:  time.Now(),
		Mode:        st.Mode,
		Orientation: st.Orientation,
	}
	e.lastExport.Store(&frame)
	e.stats.exports.Add(1)
	time.AfterFunc(e.opts.PauseWindow, func() { e.resume(gen) })

	e.sinkMu.Lock()
	sink := e.sink
	e.sinkMu.Unlock()
	if sink == nil {
		e.exportBusy.Store(false)
		return
	}
	go func() {
		defer e.exportBusy.Store(false)
		defer recoverLog(e.logger, "export sink panic")
		if err := sink.Export(frame); err != nil && e.logger != nil {
			e.logger.Error("render.export failed", "id", frame.ID, "error", err)
		}
	}()
}

// resume clears the pause flag unless a newer export has taken it over.
func (e *Engine) resume(gen uint64) {
	if e.pauseGen.Load() == gen {
		e.paused.Store(false)
	}
}

func (e *Engine) setPhase(next Phase) {
	prev := Phase(e.phase.Swap(int32(next)))
	if prev == next {
		return
	}
	if e.logger != nil {
		e.logger.Info("render.phase", "from", prev.String(), "to", next.String())
	}
	e.listenerMu.Lock()
	ls := append([]PhaseListener(nil), e.listeners...)
	e.listenerMu.Unlock()
	for _, l := range ls {
		l(prev, next)
	}
}

func (e *Engine) logStats() {
	if e.logger == nil {
		return
	}
	s := e.Stats()
	e.logger.Debug("render.stats",
		"ticks", s.Ticks,
		"drawn", s.Drawn,
		"skipped_source", s.SkippedSource,
		"skipped_mismatch", s.SkippedMismatch,
		"skipped_paused", s.SkippedPaused,
		"avg_tick", s.AvgTick,
	)
}

func (e *Engine) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil && logger != nil {
		logger.Error(msg, "error", r, "stack", string(debug.Stack()))
	}
}
