// Package timeline maps calendar days onto the discrete column space of a Gantt chart.
//
// An Axis is a value: it carries no mutable state and may be copied freely. Views that
// change what they show (another month, daily vs weekly) build a new Axis.
package timeline

import (
	"fmt"

	"sakuga-cli/internal/model"
)

// Config defines the coordinate system of one rendering session.
type Config struct {
	Origin          model.Date `json:"originDate" yaml:"originDate"`
	GranularityDays int        `json:"granularityDays" yaml:"granularityDays"`
	ColumnCount     int        `json:"columnCount" yaml:"columnCount"`
}

// ConfigError reports a malformed axis configuration.
type ConfigError struct {
	Field string
	Value int
}

func (e ConfigError) Error() string {
	switch e.Field {
	case "granularityDays":
		return fmt.Sprintf("invalid axis: granularityDays must be > 0 (got %d)", e.Value)
	case "columnCount":
		return fmt.Sprintf("invalid axis: columnCount must be >= 0 (got %d)", e.Value)
	case "originDate":
		return "invalid axis: originDate is required"
	default:
		return fmt.Sprintf("invalid axis: %s=%d", e.Field, e.Value)
	}
}

type Axis struct {
	cfg Config
}

// NewAxis validates cfg. It is the only place the engine treats input as fatal.
func NewAxis(cfg Config) (Axis, error) {
	if cfg.Origin.IsZero() {
		return Axis{}, ConfigError{Field: "originDate"}
	}
	if cfg.GranularityDays <= 0 {
		return Axis{}, ConfigError{Field: "granularityDays", Value: cfg.GranularityDays}
	}
	if cfg.ColumnCount < 0 {
		return Axis{}, ConfigError{Field: "columnCount", Value: cfg.ColumnCount}
	}
	return Axis{cfg: cfg}, nil
}

// MustAxis panics on a malformed config. Intended for presets and tests.
func MustAxis(cfg Config) Axis {
	a, err := NewAxis(cfg)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Axis) Config() Config { return a.cfg }

func (a Axis) Origin() model.Date { return a.cfg.Origin }

func (a Axis) GranularityDays() int { return a.cfg.GranularityDays }

func (a Axis) ColumnCount() int { return a.cfg.ColumnCount }

// IsZero reports whether a was never built through NewAxis.
func (a Axis) IsZero() bool { return a.cfg.GranularityDays == 0 }

// DateToColumn returns floor((d - origin) / granularityDays).
func (a Axis) DateToColumn(d model.Date) int {
	return floorDiv(d.DaysSince(a.cfg.Origin), a.cfg.GranularityDays)
}

// ColumnToDate returns origin + col*granularityDays days.
func (a Axis) ColumnToDate(col int) model.Date {
	return a.cfg.Origin.AddDays(col * a.cfg.GranularityDays)
}

// SpanColumns is the inclusive width in columns of [start, end].
func (a Axis) SpanColumns(start, end model.Date) int {
	return a.DateToColumn(end) - a.DateToColumn(start) + 1
}

// SpanOf returns the column span of a task.
func (a Axis) SpanOf(t model.Task) Span {
	return Span{Start: a.DateToColumn(t.StartDate), End: a.DateToColumn(t.EndDate)}
}

// InWindow reports whether col is one of the rendered columns.
func (a Axis) InWindow(col int) bool {
	return col >= 0 && col < a.cfg.ColumnCount
}

// Last returns the date of the last rendered column's final day.
func (a Axis) Last() model.Date {
	return a.ColumnToDate(a.cfg.ColumnCount).AddDays(-1)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Span is an inclusive range of columns.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Width is the inclusive column count of the span.
func (s Span) Width() int { return s.End - s.Start + 1 }

// Shift moves both edges by n.
func (s Span) Shift(n int) Span { return Span{Start: s.Start + n, End: s.End + n} }
