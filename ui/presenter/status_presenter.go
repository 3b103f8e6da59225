package presenter

import (
	"sync"
	"time"

	"github.com/soocke/ghost/domain/render"
)

// StatusView sets the status label in the view.
type StatusView interface{ SetStatus(string) }

// StatusPresenter receives phase changes from the render loop and reflects
// the most recent one on the next Tick.
type StatusPresenter struct {
	view StatusView

	mu      sync.Mutex
	pending []render.Phase
	latest  render.Phase
	shown   bool
}

func NewStatusPresenter(view StatusView) *StatusPresenter {
	return &StatusPresenter{view: view}
}

// OnPhase queues a transition. It is safe to call from the render goroutine.
func (p *StatusPresenter) OnPhase(_, next render.Phase) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, next)
	p.mu.Unlock()
}

// Tick updates the view with the most recent phase.
func (p *StatusPresenter) Tick(now time.Time) {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	var last render.Phase
	have := len(p.pending) > 0
	if have {
		last = p.pending[len(p.pending)-1]
		p.pending = p.pending[:0]
	}
	p.mu.Unlock()
	if !p.shown {
		p.shown = true
		if !have {
			last, have = p.latest, true
		}
		p.latest = last
		p.view.SetStatus(statusText(last))
		return
	}
	if have && last != p.latest {
		p.latest = last
		p.view.SetStatus(statusText(last))
	}
}

func statusText(p render.Phase) string {
	switch p {
	case render.PhaseIdle:
		return "Waiting for camera"
	case render.PhasePaused:
		return "Capturing"
	default:
		return "Live"
	}
}
