package timeline

import (
	"errors"
	"testing"
	"time"

	"sakuga-cli/internal/model"
)

func TestNewAxis_RejectsMalformedConfig(t *testing.T) {
	t.Parallel()

	origin := model.MustDate("2025-03-01")
	cases := []struct {
		name  string
		cfg   Config
		field string
	}{
		{name: "zero granularity", cfg: Config{Origin: origin, GranularityDays: 0, ColumnCount: 5}, field: "granularityDays"},
		{name: "negative granularity", cfg: Config{Origin: origin, GranularityDays: -7, ColumnCount: 5}, field: "granularityDays"},
		{name: "negative columns", cfg: Config{Origin: origin, GranularityDays: 1, ColumnCount: -1}, field: "columnCount"},
		{name: "missing origin", cfg: Config{GranularityDays: 1, ColumnCount: 1}, field: "originDate"},
	}
	for _, tc := range cases {
		_, err := NewAxis(tc.cfg)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		var ce ConfigError
		if !errors.As(err, &ce) || ce.Field != tc.field {
			t.Fatalf("%s: expected ConfigError on %s; got %v", tc.name, tc.field, err)
		}
	}

	if _, err := NewAxis(Config{Origin: origin, GranularityDays: 1, ColumnCount: 0}); err != nil {
		t.Fatalf("expected empty window to be valid; got %v", err)
	}
}

func TestAxis_DailyRoundTripForAllDates(t *testing.T) {
	t.Parallel()

	a := MustAxis(Config{Origin: model.MustDate("2025-03-01"), GranularityDays: 1, ColumnCount: 31})

	// Cover a span that crosses DST transitions and a leap day in both directions.
	d := model.MustDate("2023-10-01")
	for i := 0; i < 1200; i++ {
		got := a.ColumnToDate(a.DateToColumn(d))
		if !got.Equal(d) {
			t.Fatalf("round trip drifted: %s -> col %d -> %s", d, a.DateToColumn(d), got)
		}
		d = d.AddDays(1)
	}
}

func TestAxis_FarDatesMapExactly(t *testing.T) {
	t.Parallel()

	origin := model.MustDate("2025-03-01")
	daily := MustAxis(Config{Origin: origin, GranularityDays: 1, ColumnCount: 31})
	weekly := MustAxis(Config{Origin: origin, GranularityDays: 7, ColumnCount: 5})

	cases := []struct {
		date         string
		daily, weeks int
	}{
		{"1700-03-01", -118704, -16958},
		{"2400-03-01", 136966, 19566},
	}
	for _, tc := range cases {
		d := model.MustDate(tc.date)
		if got := daily.DateToColumn(d); got != tc.daily {
			t.Fatalf("%s: daily column %d want %d", tc.date, got, tc.daily)
		}
		if back := daily.ColumnToDate(tc.daily); !back.Equal(d) {
			t.Fatalf("%s: round trip gave %s", tc.date, back)
		}
		if got := weekly.DateToColumn(d); got != tc.weeks {
			t.Fatalf("%s: weekly column %d want %d", tc.date, got, tc.weeks)
		}
	}
}

func TestAxis_DateToColumnFloorsForWeeks(t *testing.T) {
	t.Parallel()

	// 2025-03-03 is a Monday.
	a := MustAxis(Config{Origin: model.MustDate("2025-03-03"), GranularityDays: 7, ColumnCount: 10})

	cases := map[string]int{
		"2025-03-03": 0,
		"2025-03-09": 0,
		"2025-03-10": 1,
		"2025-03-02": -1, // day before origin belongs to the previous week, not week 0
		"2025-02-24": -1,
		"2025-02-23": -2,
	}
	for s, want := range cases {
		if got := a.DateToColumn(model.MustDate(s)); got != want {
			t.Fatalf("DateToColumn(%s)=%d want %d", s, got, want)
		}
	}
	if got := a.ColumnToDate(-1).String(); got != "2025-02-24" {
		t.Fatalf("ColumnToDate(-1)=%s", got)
	}
}

func TestAxis_SpanColumns(t *testing.T) {
	t.Parallel()

	a := MustAxis(Config{Origin: model.MustDate("2025-03-01"), GranularityDays: 1, ColumnCount: 31})
	if got := a.SpanColumns(model.MustDate("2025-03-03"), model.MustDate("2025-03-05")); got != 3 {
		t.Fatalf("expected span 3; got %d", got)
	}
	if got := a.SpanColumns(model.MustDate("2025-03-03"), model.MustDate("2025-03-03")); got != 1 {
		t.Fatalf("expected single-day span 1; got %d", got)
	}

	w := MustAxis(Config{Origin: model.MustDate("2025-03-03"), GranularityDays: 7, ColumnCount: 10})
	// Sub-week task inside one week still occupies one column.
	if got := w.SpanColumns(model.MustDate("2025-03-04"), model.MustDate("2025-03-06")); got != 1 {
		t.Fatalf("expected sub-week span 1; got %d", got)
	}
}

func TestAxis_WeeklyBoundaryRoundTrip(t *testing.T) {
	t.Parallel()

	origin := model.MustDate("2025-03-03")
	a := MustAxis(Config{Origin: origin, GranularityDays: 7, ColumnCount: 10})
	for k := -20; k <= 20; k++ {
		d := origin.AddDays(7 * k)
		if got := a.ColumnToDate(a.DateToColumn(d)); !got.Equal(d) {
			t.Fatalf("k=%d: %s -> %s", k, d, got)
		}
	}
}

func TestWeeklyFrom_StartsOnMonday(t *testing.T) {
	t.Parallel()

	// March 2025 starts on a Saturday; first Monday is the 3rd.
	cfg := WeeklyFrom(model.MustDate("2025-03-18"), 0)
	if cfg.Origin.String() != "2025-03-03" {
		t.Fatalf("origin=%s", cfg.Origin)
	}
	if cfg.Origin.Weekday() != time.Monday {
		t.Fatalf("origin weekday=%s", cfg.Origin.Weekday())
	}
	// Mondays in March 2025: 3, 10, 17, 24, 31.
	if cfg.ColumnCount != 5 {
		t.Fatalf("expected 5 weeks; got %d", cfg.ColumnCount)
	}

	long := WeeklyFrom(model.MustDate("2025-03-01"), DefaultWeeklyMonths)
	if long.ColumnCount < 100 {
		t.Fatalf("expected roughly two years of weeks; got %d", long.ColumnCount)
	}
}

func TestDailyMonth(t *testing.T) {
	t.Parallel()

	cfg := DailyMonth(model.MustDate("2024-02-14"))
	if cfg.Origin.String() != "2024-02-01" || cfg.ColumnCount != 29 || cfg.GranularityDays != 1 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestAxis_PlaceClipsToWindow(t *testing.T) {
	t.Parallel()

	a := MustAxis(DailyMonth(model.MustDate("2025-03-01")))

	p, ok := a.Place(model.MustDate("2025-02-25"), model.MustDate("2025-03-02"))
	if !ok {
		t.Fatalf("expected partially visible task to be placed")
	}
	if p.First != 0 || p.Last != 1 || !p.ClippedStart || p.ClippedEnd {
		t.Fatalf("unexpected placement: %+v", p)
	}
	if p.Span.Start != -4 {
		t.Fatalf("expected unclipped start -4; got %d", p.Span.Start)
	}

	p, ok = a.Place(model.MustDate("2025-03-30"), model.MustDate("2025-04-04"))
	if !ok || p.Last != 30 || !p.ClippedEnd {
		t.Fatalf("unexpected placement: ok=%v %+v", ok, p)
	}

	if _, ok := a.Place(model.MustDate("2025-04-01"), model.MustDate("2025-04-02")); ok {
		t.Fatalf("expected task after window to be hidden")
	}
	if _, ok := a.Place(model.MustDate("2025-01-01"), model.MustDate("2025-02-28")); ok {
		t.Fatalf("expected task before window to be hidden")
	}

	empty := MustAxis(Config{Origin: model.MustDate("2025-03-01"), GranularityDays: 1, ColumnCount: 0})
	if _, ok := empty.Place(model.MustDate("2025-02-01"), model.MustDate("2025-04-01")); ok {
		t.Fatalf("expected nothing to be placed in an empty window")
	}
}

func TestAxis_MonthGroups(t *testing.T) {
	t.Parallel()

	a := MustAxis(WeeklyFrom(model.MustDate("2025-03-01"), 1))
	groups := a.MonthGroups()
	if len(groups) != 2 {
		t.Fatalf("expected March and April groups; got %+v", groups)
	}
	if groups[0].Label() != "2025-03" || groups[0].Columns != 5 {
		t.Fatalf("unexpected first group: %+v", groups[0])
	}
	if groups[1].First != 5 || groups[1].Columns != 4 {
		t.Fatalf("unexpected second group: %+v", groups[1])
	}
}

func TestAxis_ColumnOf(t *testing.T) {
	t.Parallel()

	a := MustAxis(DailyMonth(model.MustDate("2025-03-01")))
	if c, ok := a.ColumnOf(model.MustDate("2025-03-15")); !ok || c != 14 {
		t.Fatalf("got col=%d ok=%v", c, ok)
	}
	if _, ok := a.ColumnOf(model.MustDate("2025-04-01")); ok {
		t.Fatalf("expected April to be outside March window")
	}
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2025-03")
	if err != nil {
		t.Fatalf("ParseMonth: %v", err)
	}
	if !got.Equal(model.MustDate("2025-03-01")) {
		t.Fatalf("expected 2025-03-01, got %s", got)
	}
	got, err = ParseMonth("2024-02-17")
	if err != nil || !got.Equal(model.MustDate("2024-02-01")) {
		t.Fatalf("expected 2024-02-01, got %s (%v)", got, err)
	}
	if _, err := ParseMonth("March"); err == nil {
		t.Fatalf("expected error")
	}
	if got, err := ParseMonth(""); err != nil || got.Day() != 1 {
		t.Fatalf("expected first of current month, got %s (%v)", got, err)
	}
}
