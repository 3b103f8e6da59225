package capture

import (
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const captureStatsLogInterval = 5 * time.Second

// GrabFunc produces one frame. Returning a nil image with a nil error counts
// the attempt as skipped.
type GrabFunc func() (*image.RGBA, error)

// CaptureService polls a GrabFunc on its own goroutine and exposes the latest
// capture alongside instrumentation data. Screen and synthetic sources are
// built on it; the camera source is push-based and does not need it.
type CaptureService interface {
	Source
	Stats() CaptureStats
}

type captureService struct {
	name         string
	grab         GrabFunc
	interval     time.Duration
	running      atomic.Bool
	latest       atomic.Pointer[FrameSnapshot]
	logger       *slog.Logger
	captures     atomic.Uint64
	skipped      atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64
	errMu        sync.Mutex
	err          error
	done         chan struct{}
}

func newCaptureService(name string, logger *slog.Logger, interval time.Duration, grab GrabFunc) *captureService {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &captureService{name: name, grab: grab, interval: interval, logger: logger}
}

// NewCaptureService constructs a polling source named name that calls grab
// every interval once started.
func NewCaptureService(name string, logger *slog.Logger, interval time.Duration, grab GrabFunc) CaptureService {
	return newCaptureService(name, logger, interval, grab)
}

func (s *captureService) Name() string { return s.name }

func (s *captureService) LatestFrame() FrameSnapshot {
	snap := s.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

func (s *captureService) Running() bool { return s.running.Load() }

func (s *captureService) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *captureService) setErr(err error) {
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
}

func (s *captureService) Stats() CaptureStats {
	captures := s.captures.Load()
	skipped := s.skipped.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	snapshot := s.LatestFrame()
	age := time.Duration(0)
	if !snapshot.CapturedAt.IsZero() {
		age = time.Since(snapshot.CapturedAt)
	}
	return CaptureStats{
		Captures:         captures,
		Skipped:          skipped,
		AvgCapture:       avg,
		AvgCaptureMicros: avgMicros,
		LastCapture:      snapshot.CapturedAt,
		LatestFrameAge:   age,
		Sequence:         snapshot.Sequence,
	}
}

func (s *captureService) Start() {
	if s.running.Swap(true) {
		return
	}
	s.setErr(nil)
	s.done = make(chan struct{})
	go s.loop(s.done)
}

func (s *captureService) Stop() {
	if !s.running.Swap(false) {
		return
	}
	close(s.done)
}

func (s *captureService) loop(done <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	logTicker := time.NewTicker(captureStatsLogInterval)
	defer logTicker.Stop()
	for {
		s.captureOnce()
		select {
		case <-done:
			return
		case <-logTicker.C:
			s.logStats()
		case <-ticker.C:
		}
	}
}

func (s *captureService) captureOnce() {
	start := time.Now()
	img, err := s.grab()
	if err != nil {
		s.skipped.Add(1)
		prev := s.Err()
		s.setErr(err)
		// repeated identical failures are only logged once
		if s.logger != nil && (prev == nil || prev.Error() != err.Error()) {
			s.logger.Error("capture grab", "source", s.name, "error", err)
		}
		return
	}
	if img == nil {
		s.skipped.Add(1)
		return
	}
	elapsed := time.Since(start)
	s.captureNanos.Add(uint64(elapsed.Nanoseconds()))
	s.captures.Add(1)
	seq := s.sequence.Add(1)
	s.latest.Store(&FrameSnapshot{Image: img, CapturedAt: time.Now(), Sequence: seq})
}

func (s *captureService) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"source", s.name,
		"captures", stats.Captures,
		"skipped", stats.Skipped,
		"avg_capture", stats.AvgCapture,
		"age", stats.LatestFrameAge,
	)
}
