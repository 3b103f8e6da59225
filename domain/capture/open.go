package capture

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"strings"
)

// ErrUnknownDevice is returned by Open for an unrecognised device spec.
var ErrUnknownDevice = errors.New("capture: unknown device")

// OpenOptions carries the hints shared by every source kind.
type OpenOptions struct {
	Width  int
	Height int
	FPS    float64
}

// Open builds an unstarted Source from a device spec:
//
//	camera[:/dev/videoN]   V4L2 camera through GStreamer
//	screen[:x,y,w,h]       primary screen or a region of it
//	still:<path>           a single image replayed as a feed
//	pattern[:WxH]          synthetic test pattern
func Open(logger *slog.Logger, spec string, opts OpenOptions) (Source, error) {
	kind, arg, _ := strings.Cut(strings.TrimSpace(spec), ":")
	switch strings.ToLower(kind) {
	case "camera", "cam", "v4l2":
		return NewCameraSource(logger, CameraConfig{
			Device: arg,
			Width:  opts.Width,
			Height: opts.Height,
			FPS:    opts.FPS,
		}), nil
	case "screen":
		region, err := parseRegion(arg)
		if err != nil {
			return nil, err
		}
		return NewScreenSource(logger, region, opts.FPS), nil
	case "still", "file":
		if arg == "" {
			return nil, fmt.Errorf("capture: still source needs a path")
		}
		return NewStillSource(logger, arg)
	case "pattern":
		w, h := opts.Width, opts.Height
		if arg != "" {
			var err error
			if w, h, err = parseSize(arg); err != nil {
				return nil, err
			}
		}
		if w <= 0 || h <= 0 {
			w, h = 640, 480
		}
		return NewPatternSource(logger, w, h, opts.FPS), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, spec)
}

func parseRegion(s string) (image.Rectangle, error) {
	if s == "" {
		return image.Rectangle{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("capture: region %q: want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("capture: region %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("capture: region %q: empty", s)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("capture: size %q: want WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("capture: size %q: %w", s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("capture: size %q: %w", s, err)
	}
	return w, h, nil
}
