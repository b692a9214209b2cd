package timeline

import (
	"fmt"
	"strings"
	"time"

	"sakuga-cli/internal/model"
)

// Scale selects one of the stock view presets.
type Scale string

const (
	ScaleDaily  Scale = "daily"
	ScaleWeekly Scale = "weekly"
)

// DefaultWeeklyMonths is how far the weekly chart reaches past the selected month.
const DefaultWeeklyMonths = 24

func ParseScale(s string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "daily", "day":
		return ScaleDaily, nil
	case "weekly", "week":
		return ScaleWeekly, nil
	default:
		return "", fmt.Errorf("unknown view: %q (want daily|weekly)", s)
	}
}

// ParseMonth reads "YYYY-MM" (or a full date) and returns the 1st of that month.
// An empty string means the current month.
func ParseMonth(s string) (model.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Today().FirstOfMonth(), nil
	}
	if t, err := time.Parse("2006-01", s); err == nil {
		return model.DateOf(t), nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, fmt.Errorf("invalid month %q (want YYYY-MM)", s)
	}
	return d.FirstOfMonth(), nil
}

// DailyMonth is one column per day of the month containing d.
func DailyMonth(d model.Date) Config {
	first := d.FirstOfMonth()
	return Config{
		Origin:          first,
		GranularityDays: 1,
		ColumnCount:     model.DaysInMonth(first.Year(), first.Month()),
	}
}

// WeeklyFrom is one column per Monday-anchored week. Column 0 is the first Monday on or after
// the 1st of d's month, and the chart runs through the end of the month `months` months later.
func WeeklyFrom(d model.Date, months int) Config {
	if months < 0 {
		months = 0
	}
	first := d.FirstOfMonth()
	origin := NextMonday(first)
	end := model.NewDate(first.Year(), first.Month()+time.Month(months)+1, 1).AddDays(-1)

	count := 0
	if !origin.After(end) {
		count = end.DaysSince(origin)/7 + 1
	}
	return Config{Origin: origin, GranularityDays: 7, ColumnCount: count}
}

// NextMonday returns d when it is a Monday, otherwise the following Monday.
func NextMonday(d model.Date) model.Date {
	off := (int(time.Monday) - int(d.Weekday()) + 7) % 7
	return d.AddDays(off)
}

// Preset builds the stock axis for scale around month.
func Preset(scale Scale, month model.Date, weeklyMonths int) (Axis, error) {
	switch scale {
	case ScaleDaily:
		return NewAxis(DailyMonth(month))
	case ScaleWeekly:
		return NewAxis(WeeklyFrom(month, weeklyMonths))
	default:
		return Axis{}, fmt.Errorf("unknown view: %q", scale)
	}
}

// Placement is where a task lands inside the rendered window.
type Placement struct {
	// Span is the unclipped column span.
	Span Span `json:"span"`
	// First and Last are the visible columns after clipping to [0, columnCount).
	First int `json:"first"`
	Last  int `json:"last"`

	ClippedStart bool `json:"clippedStart"`
	ClippedEnd   bool `json:"clippedEnd"`
}

// VisibleWidth is the number of rendered columns the bar occupies.
func (p Placement) VisibleWidth() int { return p.Last - p.First + 1 }

// Place clips the task range to the window. ok is false when no part of it is visible.
func (a Axis) Place(start, end model.Date) (Placement, bool) {
	sp := Span{Start: a.DateToColumn(start), End: a.DateToColumn(end)}
	if a.cfg.ColumnCount == 0 || sp.End < 0 || sp.Start >= a.cfg.ColumnCount {
		return Placement{Span: sp}, false
	}
	p := Placement{Span: sp, First: sp.Start, Last: sp.End}
	if p.First < 0 {
		p.First = 0
		p.ClippedStart = true
	}
	if p.Last > a.cfg.ColumnCount-1 {
		p.Last = a.cfg.ColumnCount - 1
		p.ClippedEnd = true
	}
	return p, true
}

// MonthGroup is a run of consecutive columns whose dates fall in the same month.
type MonthGroup struct {
	Year    int        `json:"year"`
	Month   time.Month `json:"month"`
	First   int        `json:"first"`
	Columns int        `json:"columns"`
}

func (g MonthGroup) Label() string {
	return fmt.Sprintf("%d-%02d", g.Year, int(g.Month))
}

// MonthGroups groups the rendered columns by the month of each column's first day.
func (a Axis) MonthGroups() []MonthGroup {
	var out []MonthGroup
	for c := 0; c < a.cfg.ColumnCount; c++ {
		d := a.ColumnToDate(c)
		if n := len(out); n > 0 && out[n-1].Year == d.Year() && out[n-1].Month == d.Month() {
			out[n-1].Columns++
			continue
		}
		out = append(out, MonthGroup{Year: d.Year(), Month: d.Month(), First: c, Columns: 1})
	}
	return out
}

// ColumnOf returns the column containing d, and whether it is rendered.
func (a Axis) ColumnOf(d model.Date) (int, bool) {
	c := a.DateToColumn(d)
	return c, a.InWindow(c)
}

// Overlaps reports whether [start, end] intersects the rendered window.
func (a Axis) Overlaps(start, end model.Date) bool {
	_, ok := a.Place(start, end)
	return ok
}
