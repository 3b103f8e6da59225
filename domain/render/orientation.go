package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// OrientationMatrix returns the affine transform that mirrors a buffer of
// the given size according to o. The flips map the buffer onto itself:
//
//	identity   x' = x,      y' = y
//	horizontal x' = w - x,  y' = y
//	vertical   x' = x,      y' = h - y
//	both       x' = w - x,  y' = h - y
func OrientationMatrix(o Orientation, size FrameSize) gg.Matrix {
	w, h := float64(size.Width), float64(size.Height)
	switch {
	case o.FlipHorizontal && o.FlipVertical:
		return gg.Translate(w, h).Multiply(gg.Scale(-1, -1))
	case o.FlipHorizontal:
		return gg.Translate(w, 0).Multiply(gg.Scale(-1, 1))
	case o.FlipVertical:
		return gg.Translate(0, h).Multiply(gg.Scale(1, -1))
	default:
		return gg.Identity()
	}
}

// sourceToDest maps src pixel space onto dst: the source is first stretched
// to fill dst, then mirrored, then moved to dst's origin.
func sourceToDest(dst, src image.Rectangle, o Orientation) gg.Matrix {
	size := SizeOf(dst)
	m := gg.Translate(-float64(src.Min.X), -float64(src.Min.Y))
	if sw, sh := src.Dx(), src.Dy(); sw != size.Width || sh != size.Height {
		m = gg.Scale(float64(size.Width)/float64(sw), float64(size.Height)/float64(sh)).Multiply(m)
	}
	m = OrientationMatrix(o, size).Multiply(m)
	return gg.Translate(float64(dst.Min.X), float64(dst.Min.Y)).Multiply(m)
}

func toAff3(m gg.Matrix) f64.Aff3 {
	return f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
}

// DrawOriented overwrites dst with src, stretched to dst's bounds and
// mirrored according to o. Same-size draws always use nearest-neighbour
// sampling so that a flip is an exact pixel permutation; interp is only
// consulted when src has to be rescaled. A nil interp means bilinear.
func DrawOriented(dst *image.RGBA, src image.Image, o Orientation, interp draw.Interpolator) {
	if dst == nil || src == nil {
		return
	}
	db, sb := dst.Bounds(), src.Bounds()
	if db.Empty() || sb.Empty() {
		return
	}
	if o.IsIdentity() && db.Size() == sb.Size() {
		draw.Draw(dst, db, src, sb.Min, draw.Src)
		return
	}
	var z draw.Transformer = draw.NearestNeighbor
	if db.Size() != sb.Size() {
		z = interp
		if z == nil {
			z = draw.ApproxBiLinear
		}
	}
	z.Transform(dst, toAff3(sourceToDest(db, sb, o)), src, sb, draw.Src, nil)
}

// ParseInterpolator maps a config name onto an x/image/draw interpolator.
func ParseInterpolator(name string) (draw.Interpolator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bilinear":
		return draw.ApproxBiLinear, nil
	case "nearest":
		return draw.NearestNeighbor, nil
	case "catmullrom":
		return draw.CatmullRom, nil
	}
	return nil, fmt.Errorf("render: unknown interpolation %q", name)
}
