package workflow

import (
	"context"
	"sync/atomic"

	"github.com/jimezsa/imagemail/internal/models"
)

const eventBuffer = 16

// Runner moves runs off the caller's goroutine. At most one run is in
// flight; a Submit during a run fails with ErrRunInProgress.
type Runner struct {
	newController func() *Controller
	busy          atomic.Bool
}

func NewRunner(newController func() *Controller) *Runner {
	return &Runner{newController: newController}
}

func (r *Runner) Busy() bool {
	return r.busy.Load()
}

// Submit starts a run in the background and returns its events. The channel
// is closed after the terminal event. Callers must drain it.
func (r *Runner) Submit(ctx context.Context, form models.Form) (<-chan Event, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}

	events := make(chan Event, eventBuffer)
	go func() {
		defer close(events)
		defer r.busy.Store(false)

		ctrl := r.newController()
		_, _ = ctrl.Run(ctx, form, func(ev Event) {
			events <- ev
		})
	}()
	return events, nil
}
