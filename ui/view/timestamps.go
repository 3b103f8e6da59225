package view

import (
	"fmt"
	"time"

	"github.com/soocke/ghost/ui/theme"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// clockLayout matches a 12-hour wall clock with seconds.
const clockLayout = "03:04:05 PM"

// Timestamps shows when the base frame was taken next to the current time.
type Timestamps interface {
	Set(start, current time.Time, elapsed time.Duration, ok bool)
}

type timestamps struct {
	startLbl   *TLabelWidget
	currentLbl *TLabelWidget
	elapsedLbl *TLabelWidget
}

// NewTimestamps creates the start, current and elapsed labels in parent at
// (row, startCol) and the two following columns.
func NewTimestamps(parent *FrameWidget, row, startCol int) Timestamps {
	s := &timestamps{
		startLbl:   parent.TLabel(Style(theme.StyleClockLabel), Width(12)),
		currentLbl: parent.TLabel(Style(theme.StyleClockLabel), Width(12)),
		elapsedLbl: parent.TLabel(Style(theme.StyleClockLabel), Width(10)),
	}
	Grid(s.startLbl, In(parent), Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
	Grid(s.currentLbl, In(parent), Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	Grid(s.elapsedLbl, In(parent), Row(row), Column(startCol+2), Sticky("w"), Padx("0.2m"))
	s.Set(time.Time{}, time.Time{}, 0, false)
	return s
}

func (s *timestamps) Set(start, current time.Time, elapsed time.Duration, ok bool) {
	if s == nil || s.startLbl == nil {
		return
	}
	if !ok {
		s.startLbl.Configure(Txt("--:--:-- --"))
		s.currentLbl.Configure(Txt("--:--:-- --"))
		s.elapsedLbl.Configure(Txt("+00:00"))
		return
	}
	s.startLbl.Configure(Txt(start.Format(clockLayout)))
	s.currentLbl.Configure(Txt(current.Format(clockLayout)))
	s.elapsedLbl.Configure(Txt(formatElapsed(elapsed)))
}

func formatElapsed(d time.Duration) string {
	seconds := int(d.Seconds())
	h, min, sec := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("+%d:%02d:%02d", h, min, sec)
	}
	return fmt.Sprintf("+%02d:%02d", min, sec)
}
