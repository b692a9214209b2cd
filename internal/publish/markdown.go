package publish

import (
	"bytes"
	"fmt"
	"strings"

	"sakuga-cli/internal/model"
	"sakuga-cli/internal/schedule"
	"sakuga-cli/internal/store"
)

type RenderOptions struct {
	Title string
	// Edits, when non-nil, adds a history section.
	Edits []store.Edit
}

// RenderScheduleMarkdown renders every group as a table, in chart order.
func RenderScheduleMarkdown(tasks []model.Task, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title := strings.TrimSpace(opt.Title)
	if title == "" {
		title = "Schedule"
	}
	writeLn("# " + title)
	writeLn("")

	groups := schedule.GroupTasks(tasks)
	if len(groups) == 0 {
		writeLn("_No tasks._")
		return buf.String()
	}

	start, end := overallRange(tasks)
	writeLn(fmt.Sprintf("- Tasks: %d", len(tasks)))
	writeLn(fmt.Sprintf("- Groups: %d", len(groups)))
	writeLn(fmt.Sprintf("- Range: %s → %s", start, end))
	writeLn("")

	for _, g := range groups {
		buf.WriteString(renderGroupSection(g, "##"))
		writeLn("")
	}

	if opt.Edits != nil {
		writeLn("## Recent edits")
		writeLn("")
		if len(opt.Edits) == 0 {
			writeLn("_None._")
		}
		for _, e := range opt.Edits {
			writeLn("- " + editLine(e))
		}
	}
	return buf.String()
}

// RenderGroupMarkdown renders one group as a standalone page.
func RenderGroupMarkdown(g schedule.Group) string {
	return renderGroupSection(g, "#")
}

func renderGroupSection(g schedule.Group, heading string) string {
	var buf bytes.Buffer
	buf.WriteString(heading + " " + groupTitle(g.Key) + "\n\n")
	buf.WriteString("| ID | Process | Start | End | Days |\n")
	buf.WriteString("|---|---|---|---|---:|\n")
	for _, t := range g.Tasks {
		fmt.Fprintf(&buf, "| %s | %s | %s | %s | %d |\n", escapeCell(t.ID), t.Kind, t.StartDate, t.EndDate, t.Days())
	}
	return buf.String()
}

func editLine(e store.Edit) string {
	s := fmt.Sprintf("%s `%s` %s %+d: %s → %s became %s → %s",
		e.CreatedAt.Format("2006-01-02 15:04"), e.TaskID, e.Gesture, e.DeltaColumns,
		e.BeforeStart, e.BeforeEnd, e.AfterStart, e.AfterEnd)
	if e.Cancelled {
		s += " (cancelled)"
	}
	return s
}

func overallRange(tasks []model.Task) (model.Date, model.Date) {
	var start, end model.Date
	for _, t := range tasks {
		if start.IsZero() || t.StartDate.Before(start) {
			start = t.StartDate
		}
		if end.IsZero() || t.EndDate.After(end) {
			end = t.EndDate
		}
	}
	return start, end
}

func groupTitle(key string) string {
	if strings.TrimSpace(key) == "" {
		return "(no group)"
	}
	return key
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
