package render

import "image"

// frameBuffers owns the three off-screen rasters. They are only touched from
// inside a tick, so they need no locking of their own.
type frameBuffers struct {
	size   FrameSize
	base   *image.RGBA
	live   *image.RGBA
	export *image.RGBA
}

// resize reallocates every buffer to size. Base content does not survive a
// resize; the caller decides whether to re-capture it.
func (b *frameBuffers) resize(size FrameSize) {
	b.size = size
	if size.Empty() {
		b.base, b.live, b.export = nil, nil, nil
		return
	}
	r := size.Rect()
	b.base = image.NewRGBA(r)
	b.live = image.NewRGBA(r)
	b.export = image.NewRGBA(r)
	opaque(b.base)
}

// matches reports whether every buffer has exactly size.
func (b *frameBuffers) matches(size FrameSize) bool {
	if b.size != size || size.Empty() {
		return false
	}
	for _, img := range []*image.RGBA{b.base, b.live, b.export} {
		if img == nil || SizeOf(img.Bounds()) != size {
			return false
		}
	}
	return true
}

// opaque fills img with opaque black, the appearance of a base that has not
// been captured yet.
func opaque(img *image.RGBA) {
	if img == nil {
		return
	}
	clear(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF
	}
}

// copyRGBA copies src into dst when both have the same size.
func copyRGBA(dst, src *image.RGBA) bool {
	if dst == nil || src == nil || SizeOf(dst.Bounds()) != SizeOf(src.Bounds()) {
		return false
	}
	if dst.Stride == src.Stride && len(dst.Pix) == len(src.Pix) {
		copy(dst.Pix, src.Pix)
		return true
	}
	n := dst.Rect.Dx() * 4
	for y := 0; y < dst.Rect.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+n], src.Pix[y*src.Stride:y*src.Stride+n])
	}
	return true
}
