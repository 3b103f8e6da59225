package capture

import (
	"errors"
	"image"
)

// ErrNoFrame is reported by sources that have not produced a frame yet.
var ErrNoFrame = errors.New("capture: no frame available")

// FrameSource provides pull-based access to captured frames.
// LatestFrame returns the freshest snapshot while Running reports liveness.
type FrameSource interface {
	LatestFrame() FrameSnapshot
	Running() bool
}

// ServiceContract exposes basic lifecycle control for capture services.
type ServiceContract interface {
	Start()
	Stop()
	Running() bool
}

// Source is a live video feed the compositor can attach to.
type Source interface {
	FrameSource
	ServiceContract
	// Name identifies the device, e.g. "camera:/dev/video0".
	Name() string
	// Err returns the last error that stopped the source, if any.
	Err() error
}

// FrameSize returns the pixel size of the latest frame of src, or the zero
// point when no frame has been captured yet.
func FrameSize(src FrameSource) image.Point {
	if src == nil {
		return image.Point{}
	}
	snap := src.LatestFrame()
	if snap.Image == nil {
		return image.Point{}
	}
	return snap.Image.Bounds().Size()
}
