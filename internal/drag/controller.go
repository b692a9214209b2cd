// Package drag turns pointer motion over a Gantt bar into date-range edits.
//
// A Controller holds at most one Session. BeginDrag subscribes to the host's global pointer
// source so the gesture keeps tracking when the pointer leaves the bar; every exit path
// (EndDrag, CancelDrag, pointer-up, pointer-lost) releases that subscription.
package drag

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"sakuga-cli/internal/model"
	"sakuga-cli/internal/pointer"
	"sakuga-cli/internal/timeline"
)

var (
	ErrSessionActive  = errors.New("drag already in progress")
	ErrUnknownTask    = errors.New("unknown task")
	ErrInvalidGesture = errors.New("invalid gesture")
	ErrInvalidView    = errors.New("invalid view")
	ErrInvalidPointer = errors.New("invalid pointer position")
)

// Editor is the write side of the task store the controller drives.
type Editor interface {
	Task(id string) (model.Task, bool)
	ApplyDelta(id string, g model.Gesture, origin timeline.Span, delta int, axis timeline.Axis) bool
	Restore(id string, start, end model.Date) bool
}

// View is the rendering context a drag happens in. PixelsPerColumn comes from the host layout.
type View struct {
	Axis            timeline.Axis
	PixelsPerColumn float64
}

type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Session is the ephemeral state of one drag. Origin columns are captured once at begin.
// The origin dates are what a zero delta restores; on a weekly axis they need not sit on a
// column boundary.
type Session struct {
	TaskID         string        `json:"taskId"`
	Gesture        model.Gesture `json:"gesture"`
	OriginPointerX float64       `json:"originPointerX"`
	Origin         timeline.Span `json:"origin"`

	OriginStartDate model.Date `json:"originStartDate"`
	OriginEndDate   model.Date `json:"originEndDate"`

	// LastDelta is the column delta most recently applied (0 before the first move).
	LastDelta int `json:"lastDelta"`
	Moves     int `json:"moves"`

	view View
}

func (s Session) View() View { return s.view }

// Result describes how a session ended.
type Result struct {
	TaskID    string        `json:"taskId"`
	Gesture   model.Gesture `json:"gesture"`
	Delta     int           `json:"deltaColumns"`
	Moves     int           `json:"moves"`
	Cancelled bool          `json:"cancelled"`
	Reverted  bool          `json:"reverted"`

	Before model.Task `json:"before"`
	After  model.Task `json:"after"`
	// Found is false when the task disappeared mid-drag.
	Found bool `json:"found"`
}

// Changed reports whether the task's dates differ from the session start.
func (r Result) Changed() bool {
	if !r.Found {
		return false
	}
	return !r.Before.StartDate.Equal(r.After.StartDate) || !r.Before.EndDate.Equal(r.After.EndDate)
}

type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRevertOnCancel makes CancelDrag put the task back on its session-origin columns.
// Without it, cancelling keeps whatever the last move applied.
func WithRevertOnCancel(v bool) Option {
	return func(c *Controller) { c.revertOnCancel = v }
}

// WithObserver registers fn to be called once per finished session.
func WithObserver(fn func(Result)) Option {
	return func(c *Controller) { c.observers = append(c.observers, fn) }
}

// Controller is not safe for concurrent use; the host calls it from its event loop.
type Controller struct {
	store  Editor
	source pointer.Source
	logger *slog.Logger

	revertOnCancel bool
	observers      []func(Result)

	session *Session
	release func()
	before  model.Task
}

func New(store Editor, source pointer.Source, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		source: source,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	if c.session != nil {
		return Dragging
	}
	return Idle
}

func (c *Controller) Dragging() bool { return c.session != nil }

// Session returns a copy of the active session.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// BeginDrag starts a session. A second BeginDrag while dragging is rejected with
// ErrSessionActive and leaves the running session untouched.
func (c *Controller) BeginDrag(taskID string, g model.Gesture, pointerX float64, view View) error {
	if c.session != nil {
		c.logger.Debug("drag rejected: session active", "task", taskID, "active", c.session.TaskID)
		return fmt.Errorf("%w: task %s", ErrSessionActive, c.session.TaskID)
	}
	if !g.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidGesture, g)
	}
	if view.Axis.IsZero() {
		return fmt.Errorf("%w: missing axis", ErrInvalidView)
	}
	if !finite(pointerX) {
		return fmt.Errorf("%w: %v", ErrInvalidPointer, pointerX)
	}
	if !(view.PixelsPerColumn > 0) || math.IsInf(view.PixelsPerColumn, 0) {
		return fmt.Errorf("%w: pixelsPerColumn must be > 0 (got %v)", ErrInvalidView, view.PixelsPerColumn)
	}
	task, ok := c.store.Task(taskID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, taskID)
	}

	c.session = &Session{
		TaskID:          taskID,
		Gesture:         g,
		OriginPointerX:  pointerX,
		Origin:          view.Axis.SpanOf(task),
		OriginStartDate: task.StartDate,
		OriginEndDate:   task.EndDate,
		view:            view,
	}
	c.before = task
	if c.source != nil {
		c.release = c.source.Subscribe(listener{c: c})
	}
	c.logger.Debug("drag begin", "task", taskID, "gesture", string(g), "x", pointerX, "origin_start", c.session.Origin.Start, "origin_end", c.session.Origin.End)
	return nil
}

// UpdateDrag applies the edit for the pointer at x. ok is false when idle or when x is not a
// finite position; such events are dropped and the session keeps its last edit.
func (c *Controller) UpdateDrag(x float64) (delta int, ok bool) {
	s := c.session
	if s == nil {
		return 0, false
	}
	if !finite(x) {
		c.logger.Warn("drag: ignoring non-finite pointer position", "task", s.TaskID, "x", x)
		return s.LastDelta, false
	}
	delta = ColumnDelta(x-s.OriginPointerX, s.view.PixelsPerColumn)
	s.LastDelta = delta
	s.Moves++
	if !c.apply(s, delta) {
		c.logger.Warn("drag target missing; edit dropped", "task", s.TaskID, "gesture", string(s.Gesture), "delta", delta)
	}
	return delta, true
}

// apply writes the range for delta. Zero puts back the exact dates the session began with,
// which a coarse axis could otherwise snap to a column boundary.
func (c *Controller) apply(s *Session, delta int) bool {
	if delta == 0 {
		return c.store.Restore(s.TaskID, s.OriginStartDate, s.OriginEndDate)
	}
	return c.store.ApplyDelta(s.TaskID, s.Gesture, s.Origin, delta, s.view.Axis)
}

// EndDrag finishes the session, keeping the last applied edit.
func (c *Controller) EndDrag() (Result, bool) {
	return c.finish(false)
}

// CancelDrag abandons the session. See WithRevertOnCancel.
func (c *Controller) CancelDrag() (Result, bool) {
	return c.finish(true)
}

func (c *Controller) finish(cancelled bool) (Result, bool) {
	s := c.session
	if s == nil {
		return Result{}, false
	}
	res := c.settle(s, cancelled)
	// Observers run after the controller is idle, so they may start the next drag.
	for _, fn := range c.observers {
		fn(res)
	}
	return res, true
}

func (c *Controller) settle(s *Session, cancelled bool) (res Result) {
	// Clear state and drop the listener even if the store panics below.
	defer c.reset()

	res = Result{
		TaskID:    s.TaskID,
		Gesture:   s.Gesture,
		Delta:     s.LastDelta,
		Moves:     s.Moves,
		Cancelled: cancelled,
		Before:    c.before,
	}
	if cancelled && c.revertOnCancel && s.Moves > 0 {
		res.Reverted = c.apply(s, 0)
		res.Delta = 0
	}
	res.After, res.Found = c.store.Task(s.TaskID)
	if !res.Found {
		c.logger.Warn("drag target missing at end of session", "task", s.TaskID)
	}
	c.logger.Debug("drag end", "task", s.TaskID, "cancelled", cancelled, "delta", res.Delta, "moves", s.Moves)
	return res
}

func (c *Controller) reset() {
	c.session = nil
	c.before = model.Task{}
	if c.release != nil {
		rel := c.release
		c.release = nil
		rel()
	}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// ColumnDelta converts a pixel offset into whole columns, rounding halves toward +∞.
func ColumnDelta(deltaPixels, pixelsPerColumn float64) int {
	return int(math.Floor(deltaPixels/pixelsPerColumn + 0.5))
}

// listener adapts global pointer events onto the controller.
type listener struct {
	c *Controller
}

func (l listener) PointerMove(x float64) { l.c.UpdateDrag(x) }

// PointerUp ends the session. The release position is applied only when it lands in a
// different column than the last move, so a click without motion never writes.
func (l listener) PointerUp(x float64) {
	s := l.c.session
	if s == nil {
		return
	}
	if finite(x) && ColumnDelta(x-s.OriginPointerX, s.view.PixelsPerColumn) != s.LastDelta {
		l.c.UpdateDrag(x)
	}
	l.c.EndDrag()
}

func (l listener) PointerLost() { l.c.CancelDrag() }
