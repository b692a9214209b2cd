package cli

import (
	"errors"
	"log/slog"

	"sakuga-cli/internal/drag"
	"sakuga-cli/internal/model"
	"sakuga-cli/internal/pointer"
	"sakuga-cli/internal/schedule"
	"sakuga-cli/internal/timeline"
)

type dragRequest struct {
	TaskID          string
	Gesture         model.Gesture
	From            float64
	To              float64
	PixelsPerColumn float64
	Steps           int
	Cancel          bool
	Axis            timeline.Axis
}

// replayDrag drives the same controller the TUI uses, feeding synthetic pointer events
// through a bus so the release paths are the real ones.
func replayDrag(sch *schedule.Store, req dragRequest, logger *slog.Logger, revertOnCancel bool) (drag.Result, error) {
	bus := pointer.NewBus()

	var (
		res  drag.Result
		done bool
	)
	ctrl := drag.New(sch, bus,
		drag.WithLogger(logger),
		drag.WithRevertOnCancel(revertOnCancel),
		drag.WithObserver(func(r drag.Result) {
			res = r
			done = true
		}),
	)
	if err := ctrl.BeginDrag(req.TaskID, req.Gesture, req.From, drag.View{Axis: req.Axis, PixelsPerColumn: req.PixelsPerColumn}); err != nil {
		return drag.Result{}, err
	}

	steps := req.Steps
	if steps < 1 {
		steps = 1
	}
	for i := 1; i <= steps; i++ {
		x := req.From + (req.To-req.From)*float64(i)/float64(steps)
		if i == steps && !req.Cancel {
			bus.Up(req.To)
			break
		}
		bus.Move(x)
	}
	if req.Cancel {
		bus.Lost()
	}

	if !done || bus.Active() != 0 {
		return drag.Result{}, errors.New("drag session did not finish")
	}
	return res, nil
}
