package images

import (
	"bytes"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed))
	return buf.Bytes()
}

// Contain scales src to fit within maxW x maxH preserving aspect ratio. If the
// source already fits, the original is returned.
func Contain(src image.Image, maxW, maxH int) image.Image {
	if src == nil {
		return nil
	}
	maxW, maxH = atLeastOne(maxW), atLeastOne(maxH)
	b := src.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return src
	}
	return imaging.Fit(src, maxW, maxH, imaging.Linear)
}

// Cover scales and center-crops src so it fills exactly w x h.
func Cover(src image.Image, w, h int) image.Image {
	if src == nil {
		return nil
	}
	w, h = atLeastOne(w), atLeastOne(h)
	if b := src.Bounds(); b.Dx() == w && b.Dy() == h {
		return src
	}
	return imaging.Fill(src, w, h, imaging.Center, imaging.Linear)
}

// Placeholder returns an opaque black image of the given size.
func Placeholder(w, h int) image.Image {
	return imaging.New(atLeastOne(w), atLeastOne(h), image.Black)
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
