//go:build !windows

package capture

import (
	"errors"
	"image"

	"github.com/vova616/screenshot"
)

// grabScreen captures region (clipped to the screen), or the whole screen
// when region is empty.
func grabScreen(region image.Rectangle) (*image.RGBA, error) {
	if region.Empty() {
		return screenshot.CaptureScreen()
	}
	bounds, err := screenshot.ScreenRect()
	if err != nil {
		return nil, err
	}
	r := region.Intersect(bounds)
	if r.Empty() {
		return nil, errors.New("capture: region outside screen")
	}
	return screenshot.CaptureRect(r)
}
