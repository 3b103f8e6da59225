package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"

	"github.com/soocke/ghost/domain/render"
)

// ErrNoImage is returned when an export frame carries no pixels.
var ErrNoImage = errors.New("export: frame has no image")

// fileTimeLayout is RFC 3339 in UTC with ':' swapped for '-' so names are
// valid on every filesystem.
const fileTimeLayout = "2006-01-02T15-04-05.000Z"

// Result describes one finished export.
type Result struct {
	ID   string
	Path string
	Size int64
	Err  error
}

// Writer encodes export frames to files named ghost-<timestamp>.<ext> in a
// directory. It implements render.ExportSink.
type Writer struct {
	dir     string
	format  imaging.Format
	ext     string
	quality int
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	notify []func(Result)
	last   Result
}

var _ render.ExportSink = (*Writer)(nil)

// NewWriter returns a Writer for dir. format is a file extension such as
// "png" or "jpeg"; jpegQuality is only used for JPEG.
func NewWriter(logger *slog.Logger, dir, format string, jpegQuality int) (*Writer, error) {
	if dir == "" {
		return nil, errors.New("export: empty directory")
	}
	if format == "" {
		format = "png"
	}
	ext := strings.ToLower(strings.TrimPrefix(format, "."))
	f, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, fmt.Errorf("export: format %q: %w", format, err)
	}
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = 95
	}
	return &Writer{dir: dir, format: f, ext: ext, quality: jpegQuality, logger: logger, now: time.Now}, nil
}

// Dir is the output directory.
func (w *Writer) Dir() string { return w.dir }

// FileName is the name used for a frame exported at t.
func FileName(t time.Time, ext string) string {
	return "ghost-" + t.UTC().Format(fileTimeLayout) + "." + ext
}

// OnSaved registers fn to be called after every export attempt.
func (w *Writer) OnSaved(fn func(Result)) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	w.notify = append(w.notify, fn)
	w.mu.Unlock()
}

// Last returns the result of the most recent export attempt.
func (w *Writer) Last() Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Export implements render.ExportSink.
func (w *Writer) Export(frame render.ExportFrame) error {
	res := w.save(frame)
	w.mu.Lock()
	w.last = res
	ls := append([]func(Result){}, w.notify...)
	w.mu.Unlock()
	for _, fn := range ls {
		fn(res)
	}
	return res.Err
}

// save encodes into a temp file next to the target and renames it, so a
// half-written export is never visible under its final name.
func (w *Writer) save(frame render.ExportFrame) Result {
	res := Result{ID: frame.ID}
	if frame.Image == nil {
		res.Err = ErrNoImage
		return res
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		res.Err = fmt.Errorf("export: create dir: %w", err)
		return res
	}
	at := frame.CapturedAt
	if at.IsZero() {
		at = w.now()
	}
	path := filepath.Join(w.dir, FileName(at, w.ext))
	tmp, err := os.CreateTemp(w.dir, ".ghost-*.tmp")
	if err != nil {
		res.Err = fmt.Errorf("export: create temp: %w", err)
		return res
	}
	defer os.Remove(tmp.Name())
	if err := imaging.Encode(tmp, frame.Image, w.format, imaging.JPEGQuality(w.quality)); err != nil {
		tmp.Close()
		res.Err = fmt.Errorf("export: encode %s: %w", w.format, err)
		return res
	}
	info, err := tmp.Stat()
	if err == nil {
		res.Size = info.Size()
	}
	if err := tmp.Close(); err != nil {
		res.Err = fmt.Errorf("export: close: %w", err)
		return res
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		res.Err = fmt.Errorf("export: rename: %w", err)
		return res
	}
	res.Path = path
	if w.logger != nil {
		w.logger.Info("export.saved",
			"id", frame.ID,
			"path", path,
			"size", humanize.Bytes(uint64(res.Size)),
			"mode", frame.Mode.String(),
		)
	}
	return res
}
