package render

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// ErrUnknownBlendMode is returned when parsing an unrecognised blend mode name.
var ErrUnknownBlendMode = errors.New("render: unknown blend mode")

// BlendMode selects the pixel combination used when drawing Live over Base.
type BlendMode uint8

const (
	BlendMultiply BlendMode = iota
	BlendDifference
	BlendScreen
)

// DefaultBlendMode is the mode used until the UI picks another one.
const DefaultBlendMode = BlendDifference

func (m BlendMode) String() string {
	switch m {
	case BlendMultiply:
		return "multiply"
	case BlendDifference:
		return "difference"
	case BlendScreen:
		return "screen"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the supported modes.
func (m BlendMode) Valid() bool { return m <= BlendScreen }

// ParseBlendMode accepts the lowercase mode names and their single-letter
// keyboard shortcuts (m, d, s).
func ParseBlendMode(s string) (BlendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "multiply", "m":
		return BlendMultiply, nil
	case "difference", "d":
		return BlendDifference, nil
	case "screen", "s":
		return BlendScreen, nil
	}
	return DefaultBlendMode, fmt.Errorf("%w: %q", ErrUnknownBlendMode, s)
}

func (m BlendMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBlendMode, m)
	}
	return []byte(m.String()), nil
}

func (m *BlendMode) UnmarshalText(b []byte) error {
	v, err := ParseBlendMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Orientation holds the two independent flip toggles.
type Orientation struct {
	FlipHorizontal bool
	FlipVertical   bool
}

// IsIdentity reports whether no flip is applied.
func (o Orientation) IsIdentity() bool { return !o.FlipHorizontal && !o.FlipVertical }

// FrameSize is the pixel size of the active stream. The zero value means unknown.
type FrameSize struct {
	Width  int
	Height int
}

// Empty reports whether the size is unknown or degenerate.
func (s FrameSize) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

// Rect returns the buffer rectangle anchored at the origin.
func (s FrameSize) Rect() image.Rectangle { return image.Rect(0, 0, s.Width, s.Height) }

func (s FrameSize) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// SizeOf returns the FrameSize of r.
func SizeOf(r image.Rectangle) FrameSize { return FrameSize{Width: r.Dx(), Height: r.Dy()} }

// RenderState is the per-tick parameter snapshot. Values are copied out of
// the engine; mutating a returned RenderState has no effect.
type RenderState struct {
	Size        FrameSize
	Orientation Orientation
	Mode        BlendMode
	Paused      bool
}

// StateOption merges one field into the shared snapshot.
type StateOption func(*RenderState)

// WithBlendMode sets the blend mode. Invalid modes are ignored.
func WithBlendMode(m BlendMode) StateOption {
	return func(s *RenderState) {
		if m.Valid() {
			s.Mode = m
		}
	}
}

// WithOrientation replaces both flip flags.
func WithOrientation(o Orientation) StateOption {
	return func(s *RenderState) { s.Orientation = o }
}

// WithFlipHorizontal sets the horizontal mirror flag.
func WithFlipHorizontal(on bool) StateOption {
	return func(s *RenderState) { s.Orientation.FlipHorizontal = on }
}

// WithFlipVertical sets the vertical mirror flag.
func WithFlipVertical(on bool) StateOption {
	return func(s *RenderState) { s.Orientation.FlipVertical = on }
}

// WithFrameSize sets the stream size. A zero size returns the loop to Idle.
func WithFrameSize(size FrameSize) StateOption {
	return func(s *RenderState) {
		if size.Empty() {
			s.Size = FrameSize{}
			return
		}
		s.Size = size
	}
}
