package render

import (
	"errors"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrSizeMismatch is returned when compositing buffers of different sizes.
var ErrSizeMismatch = errors.New("render: buffer size mismatch")

// minBandRows keeps small frames on a single goroutine.
const minBandRows = 32

// blendFunc combines one 8-bit base channel with one live channel.
type blendFunc func(base, live uint8) uint8

// BlendChannel applies mode to a single channel pair. Values are treated as
// normalised [0,1] intensities:
//
//	multiply   b*l
//	screen     1 - (1-b)*(1-l)
//	difference |b - l|
func BlendChannel(mode BlendMode, base, live uint8) uint8 {
	return channelFunc(mode)(base, live)
}

func channelFunc(mode BlendMode) blendFunc {
	switch mode {
	case BlendMultiply:
		return multiply
	case BlendScreen:
		return screen
	default:
		return difference
	}
}

func multiply(b, l uint8) uint8 { return mul255(b, l) }

func screen(b, l uint8) uint8 { return 255 - mul255(255-b, 255-l) }

func difference(b, l uint8) uint8 {
	if b > l {
		return b - l
	}
	return l - b
}

// mul255 computes round(a*b/255) without division.
func mul255(a, b uint8) uint8 {
	t := uint32(a)*uint32(b) + 128
	return uint8((t + (t >> 8)) >> 8)
}

// Compositor blends Live over Base into an output surface. Rows are split
// into bands processed by up to Workers goroutines; all bands join before
// Composite returns.
type Compositor struct {
	Workers int
}

// Composite writes base, then live combined with mode, into dst. This is the
// same as drawing base with a plain copy and then drawing live with the
// blend operator on top. The output is always opaque.
func (c Compositor) Composite(dst, base, live *image.RGBA, mode BlendMode) error {
	if dst == nil || base == nil || live == nil {
		return ErrSizeMismatch
	}
	size := SizeOf(dst.Bounds())
	if SizeOf(base.Bounds()) != size || SizeOf(live.Bounds()) != size {
		return ErrSizeMismatch
	}
	if size.Empty() {
		return nil
	}
	fn := channelFunc(mode)
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	bands := size.Height / minBandRows
	if bands < 1 {
		bands = 1
	}
	if bands > workers {
		bands = workers
	}
	if bands == 1 {
		blendRows(dst, base, live, 0, size.Height, size.Width, fn)
		return nil
	}
	var g errgroup.Group
	per := (size.Height + bands - 1) / bands
	for y0 := 0; y0 < size.Height; y0 += per {
		y1 := min(y0+per, size.Height)
		g.Go(func() error {
			blendRows(dst, base, live, y0, y1, size.Width, fn)
			return nil
		})
	}
	return g.Wait()
}

func blendRows(dst, base, live *image.RGBA, y0, y1, w int, fn blendFunc) {
	n := w * 4
	for y := y0; y < y1; y++ {
		d := dst.Pix[y*dst.Stride : y*dst.Stride+n]
		b := base.Pix[y*base.Stride : y*base.Stride+n]
		l := live.Pix[y*live.Stride : y*live.Stride+n]
		for i := 0; i < n; i += 4 {
			d[i+0] = fn(b[i+0], l[i+0])
			d[i+1] = fn(b[i+1], l[i+1])
			d[i+2] = fn(b[i+2], l[i+2])
			d[i+3] = 0xFF
		}
	}
}
