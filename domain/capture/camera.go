package capture

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// CameraConfig describes a V4L2 capture device.
type CameraConfig struct {
	Device string // e.g. /dev/video0
	Width  int    // requested width; the pipeline scales to it
	Height int
	FPS    float64
}

// CameraSource pulls RGBA frames from a GStreamer pipeline:
//
//	v4l2src → videoconvert → videoscale → videorate → capsfilter(RGBA) → appsink
//
// The appsink keeps a single buffer and drops the rest, so LatestFrame always
// returns the most recent sample.
type CameraSource struct {
	cfg      CameraConfig
	logger   *slog.Logger
	mu       sync.Mutex
	pipeline *gst.Pipeline
	done     chan struct{}
	running  atomic.Bool
	latest   atomic.Pointer[FrameSnapshot]
	sequence atomic.Uint64
	dropped  atomic.Uint64
	errMu    sync.Mutex
	err      error
}

// NewCameraSource returns an unstarted camera source.
func NewCameraSource(logger *slog.Logger, cfg CameraConfig) *CameraSource {
	if cfg.Device == "" {
		cfg.Device = "/dev/video0"
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	return &CameraSource{cfg: cfg, logger: logger}
}

func (c *CameraSource) Name() string { return "camera:" + c.cfg.Device }

func (c *CameraSource) Running() bool { return c.running.Load() }

func (c *CameraSource) LatestFrame() FrameSnapshot {
	snap := c.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

func (c *CameraSource) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *CameraSource) fail(err error) {
	c.errMu.Lock()
	c.err = err
	c.errMu.Unlock()
	c.running.Store(false)
	if c.logger != nil {
		c.logger.Error("camera failed", "device", c.cfg.Device, "error", err)
	}
}

// Start builds and plays the pipeline. Failures are recorded in Err and
// leave the source stopped.
func (c *CameraSource) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pipeline != nil {
		return
	}
	pipeline, sink, err := c.buildPipeline()
	if err != nil {
		c.fail(err)
		return
	}
	sink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: c.onNewSample,
	})
	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		c.fail(fmt.Errorf("capture: start camera pipeline: %w", err))
		return
	}
	c.pipeline = pipeline
	c.done = make(chan struct{})
	c.errMu.Lock()
	c.err = nil
	c.errMu.Unlock()
	c.running.Store(true)
	go c.watchBus(pipeline, c.done)
	if c.logger != nil {
		c.logger.Info("camera started", "device", c.cfg.Device, "width", c.cfg.Width, "height", c.cfg.Height)
	}
}

// Stop tears the pipeline down. Idempotent.
func (c *CameraSource) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pipeline == nil {
		return
	}
	close(c.done)
	if err := c.pipeline.SetState(gst.StateNull); err != nil && c.logger != nil {
		c.logger.Warn("camera stop", "device", c.cfg.Device, "error", err)
	}
	c.pipeline = nil
	c.running.Store(false)
	c.latest.Store(nil)
}

func (c *CameraSource) buildPipeline() (*gst.Pipeline, *app.Sink, error) {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, nil, fmt.Errorf("capture: create pipeline: %w", err)
	}
	src, err := gst.NewElement("v4l2src")
	if err != nil {
		return nil, nil, fmt.Errorf("capture: create v4l2src: %w", err)
	}
	src.SetProperty("device", c.cfg.Device)

	convert, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, nil, fmt.Errorf("capture: create videoconvert: %w", err)
	}
	scale, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, nil, fmt.Errorf("capture: create videoscale: %w", err)
	}
	rate, err := gst.NewElement("videorate")
	if err != nil {
		return nil, nil, fmt.Errorf("capture: create videorate: %w", err)
	}
	caps, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, nil, fmt.Errorf("capture: create capsfilter: %w", err)
	}
	caps.SetProperty("caps", gst.NewCapsFromString(c.capsString()))

	sink, err := app.NewAppSink()
	if err != nil {
		return nil, nil, fmt.Errorf("capture: create appsink: %w", err)
	}
	sink.SetProperty("sync", false)
	sink.SetProperty("max-buffers", 1)
	sink.SetProperty("drop", true)

	pipeline.AddMany(src, convert, scale, rate, caps, sink.Element)
	if err := gst.ElementLinkMany(src, convert, scale, rate, caps, sink.Element); err != nil {
		return nil, nil, fmt.Errorf("capture: link camera pipeline: %w", err)
	}
	return pipeline, sink, nil
}

func (c *CameraSource) capsString() string {
	s := "video/x-raw,format=RGBA"
	if c.cfg.Width > 0 && c.cfg.Height > 0 {
		s += fmt.Sprintf(",width=%d,height=%d", c.cfg.Width, c.cfg.Height)
	}
	if c.cfg.FPS > 0 {
		s += fmt.Sprintf(",framerate=%d/1", max(1, int(math.Round(c.cfg.FPS))))
	}
	return s
}

// onNewSample copies the mapped buffer into a fresh RGBA frame. Frame size
// comes from the negotiated caps so unconstrained pipelines still work.
func (c *CameraSource) onNewSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		return gst.FlowOK
	}
	w, h := c.cfg.Width, c.cfg.Height
	if caps := sample.GetCaps(); caps != nil && caps.GetSize() > 0 {
		st := caps.GetStructureAt(0)
		if v, err := st.GetValue("width"); err == nil {
			if n, ok := v.(int); ok {
				w = n
			}
		}
		if v, err := st.GetValue("height"); err == nil {
			if n, ok := v.(int); ok {
				h = n
			}
		}
	}
	buffer := sample.GetBuffer()
	if buffer == nil || w <= 0 || h <= 0 {
		c.dropped.Add(1)
		return gst.FlowOK
	}
	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	if len(data) < w*h*4 {
		buffer.Unmap()
		c.dropped.Add(1)
		return gst.FlowOK
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, data[:w*h*4])
	buffer.Unmap()

	seq := c.sequence.Add(1)
	c.latest.Store(&FrameSnapshot{Image: img, CapturedAt: time.Now(), Sequence: seq})
	return gst.FlowOK
}

// watchBus stops the source on EOS or pipeline error; the compositor sees a
// stopped source and idles until the collaborator reattaches one.
func (c *CameraSource) watchBus(pipeline *gst.Pipeline, done <-chan struct{}) {
	bus := pipeline.GetPipelineBus()
	for {
		select {
		case <-done:
			return
		default:
		}
		msg := bus.TimedPop(50 * time.Millisecond)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS:
			c.fail(fmt.Errorf("capture: %s end of stream", c.cfg.Device))
			return
		case gst.MessageError:
			gerr := msg.ParseError()
			c.fail(fmt.Errorf("capture: %s pipeline error: %s", c.cfg.Device, gerr.Error()))
			if c.logger != nil {
				c.logger.Debug("camera pipeline debug", "device", c.cfg.Device, "debug", gerr.DebugString())
			}
			return
		}
	}
}
