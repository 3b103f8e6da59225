package capture

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// NewScreenSource returns a source that captures region of the primary
// screen (the full screen when region is empty) at fps frames per second.
func NewScreenSource(logger *slog.Logger, region image.Rectangle, fps float64) CaptureService {
	name := "screen"
	if !region.Empty() {
		name = fmt.Sprintf("screen:%d,%d,%d,%d", region.Min.X, region.Min.Y, region.Dx(), region.Dy())
	}
	return newCaptureService(name, logger, interval(fps), func() (*image.RGBA, error) {
		return grabScreen(region)
	})
}

// NewStillSource returns a source that replays the image at path as a
// motionless feed, which is handy for checking blend modes without a camera.
func NewStillSource(logger *slog.Logger, path string) (CaptureService, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("capture: open still %s: %w", path, err)
	}
	frame := toRGBA(img)
	return newCaptureService("still:"+path, logger, time.Second/5, func() (*image.RGBA, error) {
		return frame, nil
	}), nil
}

// NewPatternSource returns a synthetic source drawing a moving gradient with
// a sweeping bar, sized w x h.
func NewPatternSource(logger *slog.Logger, w, h int, fps float64) CaptureService {
	start := time.Now()
	return newCaptureService(fmt.Sprintf("pattern:%dx%d", w, h), logger, interval(fps), func() (*image.RGBA, error) {
		return Pattern(w, h, time.Since(start)), nil
	})
}

// Pattern renders the synthetic test frame at time offset t.
func Pattern(w, h int, t time.Duration) *image.RGBA {
	if w <= 0 || h <= 0 {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	phase := t.Seconds()
	barX := int((math.Sin(phase)*0.5 + 0.5) * float64(w-1))
	barW := max(w/16, 1)
	for y := 0; y < h; y++ {
		g := uint8(y * 255 / max(h-1, 1))
		for x := 0; x < w; x++ {
			c := color.RGBA{R: uint8(x * 255 / max(w-1, 1)), G: g, B: 0x80, A: 0xFF}
			if x >= barX && x < barX+barW {
				c = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func interval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 30
	}
	return time.Duration(float64(time.Second) / fps)
}
