package render

import (
	"image"
	"sync"
	"sync/atomic"
)

type surface struct {
	mu  sync.Mutex
	img *image.RGBA
}

// doubleBuffer is the visible output surface. The render loop draws into the
// back surface and swaps it to the front; readers lock the front surface, so
// a reader never observes a partially composited frame.
type doubleBuffer struct {
	surfaces [2]surface
	back     *surface
	front    atomic.Pointer[surface]
}

func newDoubleBuffer() *doubleBuffer {
	db := &doubleBuffer{}
	db.back = &db.surfaces[0]
	db.front.Store(&db.surfaces[1])
	return db
}

// resize reallocates both surfaces. Must only be called by the render loop.
func (db *doubleBuffer) resize(size FrameSize) {
	for i := range db.surfaces {
		s := &db.surfaces[i]
		s.mu.Lock()
		if size.Empty() {
			s.img = nil
		} else {
			s.img = image.NewRGBA(size.Rect())
		}
		s.mu.Unlock()
	}
}

// clear zeroes both surfaces without changing their size.
func (db *doubleBuffer) clear() {
	for i := range db.surfaces {
		s := &db.surfaces[i]
		s.mu.Lock()
		if s.img != nil {
			clear(s.img.Pix)
		}
		s.mu.Unlock()
	}
}

// draw runs fn against the back surface and publishes it.
func (db *doubleBuffer) draw(fn func(back *image.RGBA) error) error {
	b := db.back
	b.mu.Lock()
	err := fn(b.img)
	b.mu.Unlock()
	if err != nil {
		return err
	}
	db.back = db.front.Swap(b)
	return nil
}

// read runs fn against the front surface. img is nil when no output exists.
func (db *doubleBuffer) read(fn func(front *image.RGBA)) {
	f := db.front.Load()
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.img)
}
