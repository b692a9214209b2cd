package tui

import (
	"strings"

	"sakuga-cli/internal/model"
	"sakuga-cli/internal/schedule"

	xansi "github.com/charmbracelet/x/ansi"
)

const (
	labelWidth = 22
	// title, month labels, day labels
	headerLines = 3
	// status, help
	footerLines = 2
)

type rowKind int

const (
	rowGroup rowKind = iota
	rowTask
)

// row is one rendered chart line: a group header or a task.
type row struct {
	kind   rowKind
	group  string
	taskID string
	// count is the number of tasks under a group header.
	count int
}

func buildRows(groups []schedule.Group, collapsed map[string]bool) []row {
	var out []row
	for _, g := range groups {
		out = append(out, row{kind: rowGroup, group: g.Key, count: len(g.Tasks)})
		if collapsed[g.Key] {
			continue
		}
		for _, t := range g.Tasks {
			out = append(out, row{kind: rowTask, group: g.Key, taskID: t.ID})
		}
	}
	return out
}

// target is what a mouse press landed on. row is -1 outside the chart body.
type target struct {
	row     int
	taskID  string
	gesture model.Gesture
}

// hitTest maps a terminal cell to a bar and the gesture its position selects: the outermost
// cell on each end of a bar is a resize handle, everything between moves the task.
func (m ganttModel) hitTest(x, y int) (target, bool) {
	if y < headerLines || y >= headerLines+m.bodyHeight() {
		return target{row: -1}, false
	}
	ri := y - headerLines + m.offset
	if ri < 0 || ri >= len(m.rows) {
		return target{row: -1}, false
	}
	r := m.rows[ri]
	if r.kind != rowTask || x < labelWidth {
		return target{row: ri}, false
	}

	cw := m.cellWidth()
	chartX := x - labelWidth
	col := chartX / cw
	if col >= m.axis.ColumnCount() {
		return target{row: ri}, false
	}
	t, ok := m.host.sched.Task(r.taskID)
	if !ok {
		return target{row: ri}, false
	}
	p, ok := m.axis.Place(t.StartDate, t.EndDate)
	if !ok || col < p.First || col > p.Last {
		return target{row: ri}, false
	}

	left := p.First * cw
	right := (p.Last+1)*cw - 1
	g := model.GestureMove
	switch {
	case left == right:
	case chartX == left && !p.ClippedStart:
		g = model.GestureResizeStart
	case chartX == right && !p.ClippedEnd:
		g = model.GestureResizeEnd
	}
	return target{row: ri, taskID: r.taskID, gesture: g}, true
}

// fitCell forces s to exactly width cells (ANSI-aware), cutting with an ellipsis.
func fitCell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := xansi.StringWidth(s)
	if w > width {
		if width == 1 {
			return xansi.Cut(s, 0, 1)
		}
		s = xansi.Cut(s, 0, width-1) + "…"
		w = xansi.StringWidth(s)
	}
	if w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// normalizePane forces s to be exactly width columns wide and height lines tall so the frame
// never jitters when rows change length.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i := range lines {
		lines[i] = fitCell(lines[i], width)
	}
	return strings.Join(lines, "\n")
}
