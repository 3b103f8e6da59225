package presenter

import (
	"time"

	"github.com/soocke/ghost/ui/model"
)

// StartTimeSource reports when the base frame was captured.
type StartTimeSource interface{ StartTime() time.Time }

// TimestampView displays the base time next to the current time.
type TimestampView interface {
	SetTimestamps(start, current time.Time, elapsed time.Duration, ok bool)
}

// TimestampPresenter moves base and wall-clock times from the model to the view.
type TimestampPresenter struct {
	ts   *model.TimestampModel
	src  StartTimeSource
	view TimestampView
}

// NewTimestampPresenter returns a new TimestampPresenter.
func NewTimestampPresenter(ts *model.TimestampModel, src StartTimeSource, view TimestampView) *TimestampPresenter {
	return &TimestampPresenter{ts: ts, src: src, view: view}
}

// Tick advances the model and pushes values to the view.
func (p *TimestampPresenter) Tick(now time.Time) {
	if p == nil || p.ts == nil || p.src == nil || p.view == nil {
		return
	}
	p.ts.OnTick(p.src.StartTime(), now)
	p.view.SetTimestamps(p.ts.Values())
}
