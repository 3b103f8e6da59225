package capture

import (
	"errors"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func waitFrame(t *testing.T, src FrameSource) FrameSnapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if snap := src.LatestFrame(); snap.Image != nil {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no frame captured")
	return FrameSnapshot{}
}

func TestPattern_SizeAndOpacity(t *testing.T) {
	img := Pattern(64, 32, 0)
	if img.Bounds() != image.Rect(0, 0, 64, 32) {
		t.Fatalf("bounds %v", img.Bounds())
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xFF {
			t.Fatal("pattern not opaque")
		}
	}
	if Pattern(0, 10, 0) != nil {
		t.Fatal("empty pattern should be nil")
	}
}

func TestPatternSource_ProducesFrames(t *testing.T) {
	src := NewPatternSource(discardLogger, 32, 24, 200)
	src.Start()
	defer src.Stop()
	snap := waitFrame(t, src)
	if got := FrameSize(src); got != (image.Point{X: 32, Y: 24}) {
		t.Fatalf("frame size %v", got)
	}
	if snap.Sequence == 0 || snap.CapturedAt.IsZero() {
		t.Fatalf("snapshot metadata missing: %+v", snap)
	}
	if src.Name() != "pattern:32x24" {
		t.Fatalf("name %q", src.Name())
	}
}

func TestStillSource_ReplaysImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "still.png")
	want := image.NewNRGBA(image.Rect(0, 0, 12, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 12; x++ {
			want.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 20), G: uint8(y * 30), B: 7, A: 0xFF})
		}
	}
	if err := imaging.Save(want, path); err != nil {
		t.Fatal(err)
	}
	src, err := NewStillSource(discardLogger, path)
	if err != nil {
		t.Fatal(err)
	}
	src.Start()
	defer src.Stop()
	snap := waitFrame(t, src)
	if got := snap.Image.RGBAAt(5, 3); got != (color.RGBA{R: 100, G: 90, B: 7, A: 0xFF}) {
		t.Fatalf("pixel %v", got)
	}
}

func TestStillSource_MissingFile(t *testing.T) {
	if _, err := NewStillSource(discardLogger, filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCaptureService_StartStopIdempotent(t *testing.T) {
	var calls atomic.Int32
	svc := NewCaptureService("test", discardLogger, 5*time.Millisecond, func() (*image.RGBA, error) {
		calls.Add(1)
		return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
	})
	svc.Start()
	svc.Start()
	if !svc.Running() {
		t.Fatal("not running after start")
	}
	waitFrame(t, svc)
	svc.Stop()
	svc.Stop()
	if svc.Running() {
		t.Fatal("still running after stop")
	}
	n := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if calls.Load() > n+1 {
		t.Fatal("grab called after stop")
	}
	if st := svc.Stats(); st.Captures == 0 || st.Sequence == 0 {
		t.Fatalf("stats not recorded: %+v", st)
	}
}

func TestCaptureService_RecordsErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := NewCaptureService("failing", discardLogger, 5*time.Millisecond, func() (*image.RGBA, error) {
		return nil, boom
	})
	svc.Start()
	defer svc.Stop()
	deadline := time.Now().Add(time.Second)
	for svc.Err() == nil && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if !errors.Is(svc.Err(), boom) {
		t.Fatalf("err = %v", svc.Err())
	}
	if svc.LatestFrame().Image != nil {
		t.Fatal("failing grab produced a frame")
	}
	if svc.Stats().Skipped == 0 {
		t.Fatal("failed grabs not counted as skipped")
	}
}

func TestFramePool_AcquireRecycle(t *testing.T) {
	r := image.Rect(0, 0, 10, 4)
	img := AcquireFrame(r)
	if len(img.Pix) != 10*4*4 || img.Stride != 40 || img.Rect != r {
		t.Fatalf("bad frame: len=%d stride=%d rect=%v", len(img.Pix), img.Stride, img.Rect)
	}
	RecycleFrame(img)
	small := AcquireFrame(image.Rect(0, 0, 3, 3))
	if len(small.Pix) != 36 || small.Stride != 12 {
		t.Fatalf("bad reused frame: len=%d stride=%d", len(small.Pix), small.Stride)
	}
	RecycleFrame(nil)
}
