package schedule

import (
	"fmt"
	"strings"

	"sakuga-cli/internal/model"
)

// Problem describes one invariant violation in a task list.
type Problem struct {
	TaskID  string `json:"taskId,omitempty"`
	Index   int    `json:"index"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	ProblemMissingID   = "missing_id"
	ProblemDuplicateID = "duplicate_id"
	ProblemUnknownKind = "unknown_kind"
	ProblemMissingDate = "missing_date"
	ProblemInverted    = "inverted_range"
)

// ValidationError aggregates every problem found in a task list.
type ValidationError struct {
	Problems []Problem
}

func (e ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid task list: " + e.Problems[0].Message
	}
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Message)
	}
	return fmt.Sprintf("invalid task list (%d problems): %s", len(e.Problems), strings.Join(msgs, "; "))
}

// Check reports every invariant violation in tasks. An empty result means the list is at rest
// in a valid state.
func Check(tasks []model.Task) []Problem {
	var out []Problem
	seen := map[string]int{}
	for i, t := range tasks {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			out = append(out, Problem{Index: i, Code: ProblemMissingID, Message: fmt.Sprintf("task #%d has no id", i)})
		} else if j, dup := seen[id]; dup {
			out = append(out, Problem{TaskID: id, Index: i, Code: ProblemDuplicateID, Message: fmt.Sprintf("task id %s repeated (first at #%d)", id, j)})
		} else {
			seen[id] = i
		}
		if !t.Kind.Valid() {
			out = append(out, Problem{TaskID: id, Index: i, Code: ProblemUnknownKind, Message: fmt.Sprintf("task %s has unknown kind %q", id, t.Kind)})
		}
		if t.StartDate.IsZero() || t.EndDate.IsZero() {
			out = append(out, Problem{TaskID: id, Index: i, Code: ProblemMissingDate, Message: fmt.Sprintf("task %s is missing a start or end date", id)})
			continue
		}
		if !t.Ordered() {
			out = append(out, Problem{TaskID: id, Index: i, Code: ProblemInverted, Message: fmt.Sprintf("task %s ends (%s) before it starts (%s)", id, t.EndDate, t.StartDate)})
		}
	}
	return out
}
