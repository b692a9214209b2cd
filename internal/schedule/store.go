// Package schedule owns the task list behind the Gantt chart. Store.ApplyDelta and
// Store.Restore are the only code paths that write a task's date range.
package schedule

import (
	"sakuga-cli/internal/model"
	"sakuga-cli/internal/timeline"
)

// Store is not safe for concurrent use; it is driven from a single event loop.
type Store struct {
	tasks []model.Task
	byID  map[string]int
}

// New validates tasks and takes a private copy of them.
func New(tasks []model.Task) (*Store, error) {
	if problems := Check(tasks); len(problems) > 0 {
		return nil, ValidationError{Problems: problems}
	}
	s := &Store{
		tasks: make([]model.Task, len(tasks)),
		byID:  make(map[string]int, len(tasks)),
	}
	copy(s.tasks, tasks)
	for i, t := range s.tasks {
		s.byID[t.ID] = i
	}
	return s, nil
}

func (s *Store) Len() int { return len(s.tasks) }

func (s *Store) Task(id string) (model.Task, bool) {
	i, ok := s.byID[id]
	if !ok {
		return model.Task{}, false
	}
	return s.tasks[i], true
}

// ApplyDelta recomputes the task's range from the session-origin span, never from its live
// dates, so repeated calls during one drag cannot accumulate rounding.
// It returns false (and changes nothing) when the task does not exist.
func (s *Store) ApplyDelta(id string, g model.Gesture, origin timeline.Span, delta int, axis timeline.Axis) bool {
	i, ok := s.byID[id]
	if !ok {
		return false
	}
	sp := Resolve(g, origin, delta)
	s.tasks[i].StartDate = axis.ColumnToDate(sp.Start)
	s.tasks[i].EndDate = axis.ColumnToDate(sp.End)
	return true
}

// Restore puts a task back on an exact range captured earlier, usually the dates it had when a
// drag began. Coarse axes cannot express such a range as columns, so it bypasses the axis.
// It returns false (and changes nothing) for an unknown task or an inverted range.
func (s *Store) Restore(id string, start, end model.Date) bool {
	i, ok := s.byID[id]
	if !ok || end.Before(start) {
		return false
	}
	s.tasks[i].StartDate = start
	s.tasks[i].EndDate = end
	return true
}

// Commit returns a snapshot of the task list in its original order.
func (s *Store) Commit() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Resolve applies a gesture to a span. Resizes clamp so the range never inverts.
func Resolve(g model.Gesture, origin timeline.Span, delta int) timeline.Span {
	sp := origin
	switch g {
	case model.GestureMove:
		sp = origin.Shift(delta)
	case model.GestureResizeStart:
		sp.Start = origin.Start + delta
		if sp.Start > sp.End {
			sp.Start = sp.End
		}
	case model.GestureResizeEnd:
		sp.End = origin.End + delta
		if sp.End < sp.Start {
			sp.End = sp.Start
		}
	}
	return sp
}

// Group is one chart row: every task sharing a groupKey, in list order.
type Group struct {
	Key   string       `json:"groupKey"`
	Tasks []model.Task `json:"tasks"`
}

// Groups returns the rows in first-seen order.
func (s *Store) Groups() []Group {
	return GroupTasks(s.tasks)
}

func GroupTasks(tasks []model.Task) []Group {
	var out []Group
	idx := map[string]int{}
	for _, t := range tasks {
		i, ok := idx[t.GroupKey]
		if !ok {
			i = len(out)
			idx[t.GroupKey] = i
			out = append(out, Group{Key: t.GroupKey})
		}
		out[i].Tasks = append(out[i].Tasks, t)
	}
	return out
}
