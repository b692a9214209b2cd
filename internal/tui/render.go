package tui

import (
	"fmt"
	"strings"
	"time"

	"sakuga-cli/internal/model"
	"sakuga-cli/internal/timeline"

	"github.com/charmbracelet/lipgloss"
)

// kindTags are the short labels shown in the task column.
var kindTags = map[model.Kind]string{
	model.KindStoryboard:  "STB",
	model.KindLayout:      "LO",
	model.KindAnimation:   "ANI",
	model.KindBackground:  "BG",
	model.KindColoring:    "COL",
	model.KindCompositing: "CMP",
	model.KindEditing:     "EDT",
}

func (m ganttModel) View() string {
	lines := make([]string, 0, m.height)
	lines = append(lines, m.renderTitle())
	lines = append(lines, m.renderMonthHeader())
	lines = append(lines, m.renderColumnHeader())

	h := m.bodyHeight()
	for i := m.offset; i < m.offset+h; i++ {
		if i < len(m.rows) {
			lines = append(lines, m.renderRow(i))
		} else {
			lines = append(lines, "")
		}
	}

	status := m.status
	if m.statusErr {
		status = styleError().Render(status)
	} else {
		status = styleMuted().Render(status)
	}
	lines = append(lines, status)
	lines = append(lines, m.help.View(m.keys))

	height := m.height
	if m.help.ShowAll {
		height = 0
	}
	return normalizePane(strings.Join(lines, "\n"), m.width, height)
}

func (m ganttModel) renderTitle() string {
	label := m.month.Time().Format("2006-01")
	if m.scale == timeline.ScaleWeekly {
		label = fmt.Sprintf("%s (+%d months)", label, m.opts.Config.View.WeeklyMonths)
	}
	ws := m.opts.Workspace
	if ws == "" {
		ws = "sakuga"
	}
	return styleTitle().Render(ws) + styleChrome().Render(fmt.Sprintf("  %s  %s  %d tasks", m.scale, label, m.host.sched.Len()))
}

func (m ganttModel) renderMonthHeader() string {
	cw := m.cellWidth()
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth))
	for _, g := range m.axis.MonthGroups() {
		b.WriteString(styleChrome().Render(fitCell(g.Label(), g.Columns*cw)))
	}
	return b.String()
}

func (m ganttModel) renderColumnHeader() string {
	cw := m.cellWidth()
	today, hasToday := m.axis.ColumnOf(model.Today())
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth))
	for c := 0; c < m.axis.ColumnCount(); c++ {
		d := m.axis.ColumnToDate(c)
		cell := fmt.Sprintf("%*d", cw, d.Day())
		if len(cell) > cw {
			cell = cell[len(cell)-cw:]
		}
		st := styleMuted()
		switch {
		case hasToday && c == today:
			st = lipgloss.NewStyle().Bold(true).Background(colorTodayBg)
		case m.isWeekend(c):
			st = st.Background(colorWeekendBg)
		}
		b.WriteString(st.Render(cell))
	}
	return b.String()
}

func (m ganttModel) renderRow(i int) string {
	r := m.rows[i]
	selected := i == m.cursor

	var label string
	switch r.kind {
	case rowGroup:
		marker := "▾"
		if m.collapsed[r.group] {
			marker = "▸"
		}
		name := r.group
		if name == "" {
			name = "(no group)"
		}
		label = styleGroupHeader().Render(fitCell(fmt.Sprintf("%s %s (%d)", marker, name, r.count), labelWidth-1)) + " "
	default:
		t, _ := m.host.sched.Task(r.taskID)
		tag := kindTags[t.Kind]
		label = fitCell(fmt.Sprintf("  %-3s %s", tag, t.ID), labelWidth-1) + " "
	}
	if selected {
		label = styleSelected().Render(label)
	}

	return label + m.renderChart(r)
}

func (m ganttModel) renderChart(r row) string {
	cw := m.cellWidth()
	blank := strings.Repeat(" ", cw)
	today, hasToday := m.axis.ColumnOf(model.Today())

	var (
		p      timeline.Placement
		onBar  bool
		kind   model.Kind
		active bool
	)
	switch r.kind {
	case rowTask:
		t, ok := m.host.sched.Task(r.taskID)
		if ok {
			p, onBar = m.axis.Place(t.StartDate, t.EndDate)
			kind = t.Kind
		}
		if s, ok := m.host.ctrl.Session(); ok && s.TaskID == r.taskID {
			active = true
		}
	case rowGroup:
		p, onBar = m.groupPlacement(r.group)
	}

	var b strings.Builder
	for c := 0; c < m.axis.ColumnCount(); c++ {
		if onBar && c >= p.First && c <= p.Last {
			b.WriteString(m.renderBarCell(r, p, c, kind, active))
			continue
		}
		st := lipgloss.NewStyle()
		switch {
		case hasToday && c == today:
			st = st.Background(colorTodayBg)
		case m.isWeekend(c):
			st = st.Background(colorWeekendBg)
		}
		b.WriteString(st.Render(blank))
	}
	return b.String()
}

func (m ganttModel) renderBarCell(r row, p timeline.Placement, c int, kind model.Kind, active bool) string {
	cw := m.cellWidth()
	if r.kind == rowGroup {
		return styleMuted().Render(strings.Repeat("─", cw))
	}
	cell := []rune(strings.Repeat(" ", cw))
	if c == p.First && p.ClippedStart {
		cell[0] = '◀'
	}
	if c == p.Last && p.ClippedEnd {
		cell[len(cell)-1] = '▶'
	}
	return styleBar(kind, active).Render(string(cell))
}

// groupPlacement is the union of a group's task ranges, drawn as a summary line.
func (m ganttModel) groupPlacement(group string) (timeline.Placement, bool) {
	var start, end model.Date
	for _, g := range m.host.sched.Groups() {
		if g.Key != group {
			continue
		}
		for _, t := range g.Tasks {
			if start.IsZero() || t.StartDate.Before(start) {
				start = t.StartDate
			}
			if end.IsZero() || t.EndDate.After(end) {
				end = t.EndDate
			}
		}
	}
	if start.IsZero() {
		return timeline.Placement{}, false
	}
	return m.axis.Place(start, end)
}

func (m ganttModel) isWeekend(c int) bool {
	if m.axis.GranularityDays() != 1 {
		return false
	}
	wd := m.axis.ColumnToDate(c).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
