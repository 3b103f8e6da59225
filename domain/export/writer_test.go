package export

import (
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/soocke/ghost/domain/capture"
	"github.com/soocke/ghost/domain/render"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

type stillSource struct{ img *image.RGBA }

func (s *stillSource) LatestFrame() capture.FrameSnapshot {
	return capture.FrameSnapshot{Image: s.img, Sequence: 1}
}
func (s *stillSource) Running() bool { return true }

func testFrame() render.ExportFrame {
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF
	}
	return render.ExportFrame{
		ID:         "abc",
		Image:      img,
		CapturedAt: time.Date(2026, 3, 4, 5, 6, 7, 890_000_000, time.UTC),
		Mode:       render.BlendDifference,
	}
}

func TestFileName(t *testing.T) {
	got := FileName(time.Date(2026, 3, 4, 5, 6, 7, 890_000_000, time.UTC), "png")
	if got != "ghost-2026-03-04T05-06-07.890Z.png" {
		t.Fatalf("name %q", got)
	}
	if strings.ContainsAny(got, ":/\\") {
		t.Fatalf("name %q contains path-unsafe characters", got)
	}
}

func TestWriter_SavesPNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := NewWriter(discardLogger, dir, "png", 0)
	if err != nil {
		t.Fatal(err)
	}
	var got []Result
	w.OnSaved(func(r Result) { got = append(got, r) })

	frame := testFrame()
	if err := w.Export(frame); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "ghost-2026-03-04T05-06-07.890Z.png")
	if len(got) != 1 || got[0].Path != want || got[0].Size <= 0 || got[0].ID != "abc" {
		t.Fatalf("unexpected results %+v", got)
	}
	if w.Last().Path != want {
		t.Fatalf("last %+v", w.Last())
	}
	img, err := imaging.Open(want)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Size() != (image.Point{X: 16, Y: 9}) {
		t.Fatalf("decoded size %v", img.Bounds().Size())
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestWriter_JPEG(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(discardLogger, dir, ".JPG", 80)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Export(testFrame()); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(w.Last().Path, ".jpg") {
		t.Fatalf("path %q", w.Last().Path)
	}
}

func TestWriter_Errors(t *testing.T) {
	if _, err := NewWriter(discardLogger, t.TempDir(), "webp", 0); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if _, err := NewWriter(discardLogger, "", "png", 0); err == nil {
		t.Fatal("expected error for empty dir")
	}
	w, err := NewWriter(discardLogger, t.TempDir(), "png", 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Export(render.ExportFrame{ID: "x"}); err != ErrNoImage {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	if w.Last().Err != ErrNoImage {
		t.Fatal("failed result not recorded")
	}
}

// The engine hands frames straight to the writer.
func TestWriter_AsEngineSink(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(discardLogger, dir, "png", 0)
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan Result, 1)
	w.OnSaved(func(r Result) { done <- r })

	e := render.NewEngine(discardLogger, render.Options{PauseWindow: 10 * time.Millisecond})
	e.SetExportSink(w)
	src := &stillSource{img: image.NewRGBA(image.Rect(0, 0, 8, 8))}
	e.AttachSource(src, render.FrameSize{Width: 8, Height: 8})
	e.Tick()
	if !e.CaptureExport() {
		t.Fatal("export rejected")
	}
	e.Tick()
	select {
	case r := <-done:
		if r.Err != nil || r.Path == "" {
			t.Fatalf("result %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("writer not called")
	}
}
