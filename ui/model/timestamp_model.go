package model

import "time"

// TimestampModel tracks when the current base frame was taken and the wall
// clock shown next to it. Presenters poll Values() and update views.
// The zero value is ready to use.
type TimestampModel struct {
	start   time.Time
	current time.Time
}

// NewTimestampModel returns a pointer to a ready-to-use TimestampModel.
func NewTimestampModel() *TimestampModel { return &TimestampModel{} }

// OnTick records the base capture time and the current time. A zero start
// means no base has been captured in this session.
func (m *TimestampModel) OnTick(start, now time.Time) {
	if m == nil {
		return
	}
	m.start = start
	m.current = now
}

// Values returns the base time, the current time and the time elapsed since
// the base was taken. ok is false while no base exists.
func (m *TimestampModel) Values() (start, current time.Time, elapsed time.Duration, ok bool) {
	if m == nil || m.start.IsZero() {
		return time.Time{}, time.Time{}, 0, false
	}
	elapsed = m.current.Sub(m.start)
	if elapsed < 0 {
		elapsed = 0
	}
	return m.start, m.current, elapsed, true
}
