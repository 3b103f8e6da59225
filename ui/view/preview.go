package view

import (
	"image"

	"github.com/soocke/ghost/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Preview shows the composite scaled into a fixed box, either letterboxed
// (contain) or cropped to fill (cover).
type Preview interface {
	Update(img image.Image, cover bool)
	Reset()
}

type preview struct {
	label     *LabelWidget
	targetW   int
	targetH   int
	prevPhoto *Img // last Tk photo image instance
}

// Internal state tracks the current photo so we can dispose it before
// replacing it, preventing accumulation of off-screen image data.

// NewPreview creates the preview label inside parent, grids it at row and
// returns the view. w and h bound the displayed image.
func NewPreview(parent *FrameWidget, row, w, h int) Preview {
	v := &preview{}
	v.setTargetSize(w, h)
	v.prevPhoto = NewPhoto(Data(images.EncodePNG(images.Placeholder(v.targetW, v.targetH))))
	v.label = parent.Label(Image(v.prevPhoto), Borderwidth(0), Background("#000000"))
	Grid(v.label, In(parent), Row(row), Column(0), Sticky("nsew"))
	return v
}

func (v *preview) Update(img image.Image, cover bool) {
	if v.label == nil || img == nil {
		return
	}
	var scaled image.Image
	if cover {
		scaled = images.Cover(img, v.targetW, v.targetH)
	} else {
		scaled = images.Contain(img, v.targetW, v.targetH)
	}
	v.show(images.EncodePNG(scaled))
}

func (v *preview) Reset() {
	if v.label == nil {
		return
	}
	v.show(images.EncodePNG(images.Placeholder(v.targetW, v.targetH)))
}

func (v *preview) show(pngBytes []byte) {
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	v.prevPhoto = NewPhoto(Data(pngBytes))
	v.label.Configure(Image(v.prevPhoto))
}

// setTargetSize updates the box used for scaling.
func (v *preview) setTargetSize(w, h int) {
	if w < 50 {
		w = 50
	}
	if h < 50 {
		h = 50
	}
	v.targetW, v.targetH = w, h
}
