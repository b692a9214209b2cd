package drag

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"sakuga-cli/internal/model"
	"sakuga-cli/internal/pointer"
	"sakuga-cli/internal/schedule"
	"sakuga-cli/internal/timeline"
)

func dailyView(t *testing.T) View {
	t.Helper()
	a, err := timeline.NewAxis(timeline.Config{Origin: model.MustDate("2025-03-01"), GranularityDays: 1, ColumnCount: 31})
	if err != nil {
		t.Fatalf("NewAxis: %v", err)
	}
	return View{Axis: a, PixelsPerColumn: 10}
}

func newStore(t *testing.T, tasks ...model.Task) *schedule.Store {
	t.Helper()
	if len(tasks) == 0 {
		tasks = []model.Task{{
			ID:        "t1",
			GroupKey:  "ep1",
			Kind:      model.KindLayout,
			StartDate: model.MustDate("2025-03-03"),
			EndDate:   model.MustDate("2025-03-05"),
		}}
	}
	s, err := schedule.New(tasks)
	if err != nil {
		t.Fatalf("schedule.New: %v", err)
	}
	return s
}

func dates(t *testing.T, s *schedule.Store, id string) (string, string) {
	t.Helper()
	task, ok := s.Task(id)
	if !ok {
		t.Fatalf("task %s missing", id)
	}
	return task.StartDate.String(), task.EndDate.String()
}

func TestScenarioA_MoveThreeColumns(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	c := New(s, pointer.NewBus())
	if err := c.BeginDrag("t1", model.GestureMove, 100, dailyView(t)); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	sess, _ := c.Session()
	if sess.Origin.Start != 2 || sess.Origin.End != 4 {
		t.Fatalf("expected origin columns 2..4; got %+v", sess.Origin)
	}
	delta, ok := c.UpdateDrag(130)
	if !ok || delta != 3 {
		t.Fatalf("expected delta 3; got %d ok=%v", delta, ok)
	}
	c.EndDrag()

	start, end := dates(t, s, "t1")
	if start != "2025-03-06" || end != "2025-03-08" {
		t.Fatalf("got %s..%s", start, end)
	}
}

func TestScenarioB_ResizeEndClampsToStart(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	c := New(s, pointer.NewBus())
	if err := c.BeginDrag("t1", model.GestureResizeEnd, 100, dailyView(t)); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if delta, _ := c.UpdateDrag(70); delta != -3 {
		t.Fatalf("expected delta -3; got %d", delta)
	}
	res, _ := c.EndDrag()

	start, end := dates(t, s, "t1")
	if start != "2025-03-03" || end != "2025-03-03" {
		t.Fatalf("expected zero-length task on 03-03; got %s..%s", start, end)
	}
	if !res.Changed() || res.Cancelled {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestScenarioC_WeeklyMovesDoNotDrift(t *testing.T) {
	t.Parallel()

	monday := model.MustDate("2025-03-03")
	a, err := timeline.NewAxis(timeline.WeeklyFrom(monday, 6))
	if err != nil {
		t.Fatalf("NewAxis: %v", err)
	}
	if !a.Origin().Equal(monday) {
		t.Fatalf("expected Monday origin; got %s", a.Origin())
	}
	task := model.Task{ID: "w", GroupKey: "ep1", Kind: model.KindAnimation, StartDate: monday.AddDays(7), EndDate: monday.AddDays(13)}
	s := newStore(t, task)
	c := New(s, pointer.NewBus())
	view := View{Axis: a, PixelsPerColumn: 25}

	for i := 1; i <= 10; i++ {
		if err := c.BeginDrag("w", model.GestureMove, 0, view); err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
		c.UpdateDrag(25)
		c.EndDrag()

		// Both edges persist as the Monday of their column, so a one-week task keeps a
		// one-column span and its start advances exactly seven days per move.
		got, _ := s.Task("w")
		wantStart := monday.AddDays(7 * (1 + i))
		if !got.StartDate.Equal(wantStart) || !got.EndDate.Equal(wantStart) {
			t.Fatalf("move %d: got %s..%s want %s", i, got.StartDate, got.EndDate, wantStart)
		}
		if span := a.SpanColumns(got.StartDate, got.EndDate); span != 1 {
			t.Fatalf("move %d: expected one-column span; got %d", i, span)
		}
		if back := a.ColumnToDate(a.DateToColumn(got.StartDate)); !back.Equal(got.StartDate) {
			t.Fatalf("move %d: start %s not on a column boundary", i, got.StartDate)
		}
	}
}

func TestUpdateDrag_ManySmallMovesMatchOneLargeMove(t *testing.T) {
	t.Parallel()

	view := dailyView(t)
	many := newStore(t)
	one := newStore(t)

	cm := New(many, nil)
	if err := cm.BeginDrag("t1", model.GestureMove, 0, view); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	// 100 pointer moves of 1.7px each: the bar follows the cumulative offset, 170px = 17 columns.
	x := 0.0
	for i := 0; i < 100; i++ {
		x += 1.7
		cm.UpdateDrag(x)
	}
	cm.EndDrag()

	co := New(one, nil)
	if err := co.BeginDrag("t1", model.GestureMove, 0, view); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	co.UpdateDrag(x)
	co.EndDrag()

	a1, b1 := dates(t, many, "t1")
	a2, b2 := dates(t, one, "t1")
	if a1 != a2 || b1 != b2 {
		t.Fatalf("drift: many=%s..%s one=%s..%s", a1, b1, a2, b2)
	}
	if a1 != "2025-03-20" {
		t.Fatalf("expected 17-column move to 03-20; got %s", a1)
	}
}

func TestBeginDrag_RejectsReentry(t *testing.T) {
	t.Parallel()

	bus := pointer.NewBus()
	s := newStore(t,
		model.Task{ID: "a", GroupKey: "g", Kind: model.KindLayout, StartDate: model.MustDate("2025-03-03"), EndDate: model.MustDate("2025-03-05")},
		model.Task{ID: "b", GroupKey: "g", Kind: model.KindLayout, StartDate: model.MustDate("2025-03-10"), EndDate: model.MustDate("2025-03-12")},
	)
	c := New(s, bus)
	view := dailyView(t)
	if err := c.BeginDrag("a", model.GestureMove, 0, view); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	err := c.BeginDrag("b", model.GestureResizeEnd, 50, view)
	if !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive; got %v", err)
	}
	sess, ok := c.Session()
	if !ok || sess.TaskID != "a" || sess.Gesture != model.GestureMove {
		t.Fatalf("expected first session to be preserved; got %+v", sess)
	}
	if bus.Active() != 1 {
		t.Fatalf("expected a single subscription; got %d", bus.Active())
	}
}

func TestBeginDrag_ValidatesInput(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	c := New(s, nil)
	view := dailyView(t)

	if err := c.BeginDrag("nope", model.GestureMove, 0, view); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask; got %v", err)
	}
	if err := c.BeginDrag("t1", model.Gesture("spin"), 0, view); !errors.Is(err, ErrInvalidGesture) {
		t.Fatalf("expected ErrInvalidGesture; got %v", err)
	}
	if err := c.BeginDrag("t1", model.GestureMove, 0, View{Axis: view.Axis}); !errors.Is(err, ErrInvalidView) {
		t.Fatalf("expected ErrInvalidView for zero width; got %v", err)
	}
	if err := c.BeginDrag("t1", model.GestureMove, 0, View{PixelsPerColumn: 10}); !errors.Is(err, ErrInvalidView) {
		t.Fatalf("expected ErrInvalidView for missing axis; got %v", err)
	}
	if c.Dragging() {
		t.Fatalf("expected controller to stay idle after rejected begins")
	}
}

func TestController_ReleasesListenerOnEveryExitPath(t *testing.T) {
	t.Parallel()

	exits := map[string]func(c *Controller, bus *pointer.Bus){
		"end":    func(c *Controller, _ *pointer.Bus) { c.EndDrag() },
		"cancel": func(c *Controller, _ *pointer.Bus) { c.CancelDrag() },
		"up":     func(_ *Controller, bus *pointer.Bus) { bus.Up(120) },
		"lost":   func(_ *Controller, bus *pointer.Bus) { bus.Lost() },
	}
	for name, exit := range exits {
		bus := pointer.NewBus()
		s := newStore(t)
		c := New(s, bus)
		if err := c.BeginDrag("t1", model.GestureMove, 100, dailyView(t)); err != nil {
			t.Fatalf("%s: BeginDrag: %v", name, err)
		}
		if bus.Active() != 1 {
			t.Fatalf("%s: expected subscription during drag", name)
		}
		exit(c, bus)
		if bus.Active() != 0 {
			t.Fatalf("%s: listener leaked", name)
		}
		if c.Dragging() {
			t.Fatalf("%s: expected idle", name)
		}

		// Nothing after the exit may touch the task.
		before, _ := s.Task("t1")
		bus.Move(500)
		if _, ok := c.UpdateDrag(500); ok {
			t.Fatalf("%s: UpdateDrag applied after session ended", name)
		}
		after, _ := s.Task("t1")
		if before != after {
			t.Fatalf("%s: task changed after exit: %+v -> %+v", name, before, after)
		}
	}
}

func TestController_GlobalPointerEventsDriveTheSession(t *testing.T) {
	t.Parallel()

	bus := pointer.NewBus()
	s := newStore(t)
	var results []Result
	c := New(s, bus, WithObserver(func(r Result) { results = append(results, r) }))
	if err := c.BeginDrag("t1", model.GestureResizeStart, 100, dailyView(t)); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	// Far outside the bar; still tracked. The release lands in the column of the last move.
	bus.Move(-900)
	bus.Move(80)
	bus.Up(81)

	start, end := dates(t, s, "t1")
	if start != "2025-03-01" || end != "2025-03-05" {
		t.Fatalf("got %s..%s", start, end)
	}
	if len(results) != 1 || results[0].Delta != -2 || results[0].Moves != 2 {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestCancelDrag_KeepsLiveEditByDefault(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	c := New(s, nil)
	_ = c.BeginDrag("t1", model.GestureMove, 0, dailyView(t))
	c.UpdateDrag(50)
	res, ok := c.CancelDrag()
	if !ok || !res.Cancelled || res.Reverted {
		t.Fatalf("unexpected result: %+v", res)
	}
	start, _ := dates(t, s, "t1")
	if start != "2025-03-08" {
		t.Fatalf("expected optimistic edit to survive cancel; got %s", start)
	}
}

func TestCancelDrag_RevertOption(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	c := New(s, nil, WithRevertOnCancel(true))
	_ = c.BeginDrag("t1", model.GestureMove, 0, dailyView(t))
	c.UpdateDrag(50)
	res, _ := c.CancelDrag()
	if !res.Reverted || res.Changed() {
		t.Fatalf("expected revert; got %+v", res)
	}
	start, end := dates(t, s, "t1")
	if start != "2025-03-03" || end != "2025-03-05" {
		t.Fatalf("got %s..%s", start, end)
	}
}

// shrinkingStore forgets a task mid-drag, like a list owner deleting it.
type shrinkingStore struct {
	*schedule.Store
	gone map[string]bool
}

func (s shrinkingStore) Task(id string) (model.Task, bool) {
	if s.gone[id] {
		return model.Task{}, false
	}
	return s.Store.Task(id)
}

func (s shrinkingStore) ApplyDelta(id string, g model.Gesture, origin timeline.Span, delta int, axis timeline.Axis) bool {
	if s.gone[id] {
		return false
	}
	return s.Store.ApplyDelta(id, g, origin, delta, axis)
}

func (s shrinkingStore) Restore(id string, start, end model.Date) bool {
	if s.gone[id] {
		return false
	}
	return s.Store.Restore(id, start, end)
}

func TestUpdateDrag_StaleTaskIsLoggedNotFatal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	st := shrinkingStore{Store: newStore(t), gone: map[string]bool{}}
	c := New(st, nil, WithLogger(logger))
	if err := c.BeginDrag("t1", model.GestureMove, 0, dailyView(t)); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	st.gone["t1"] = true

	if _, ok := c.UpdateDrag(40); !ok {
		t.Fatalf("expected session to survive a stale target")
	}
	if !c.Dragging() {
		t.Fatalf("expected still dragging")
	}
	res, _ := c.EndDrag()
	if res.Found || res.Changed() {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.Contains(buf.String(), "drag target missing") {
		t.Fatalf("expected warning in log; got %q", buf.String())
	}
}

// weeklyView starts on Monday 2025-03-03, 25 units per column.
func weeklyView(t *testing.T) View {
	t.Helper()
	a, err := timeline.NewAxis(timeline.WeeklyFrom(model.MustDate("2025-03-01"), 6))
	if err != nil {
		t.Fatalf("NewAxis: %v", err)
	}
	return View{Axis: a, PixelsPerColumn: 25}
}

// midweekTask starts on a Wednesday and ends on a Thursday, off every weekly column boundary.
func midweekTask() model.Task {
	return model.Task{ID: "w", GroupKey: "ep1", Kind: model.KindColoring, StartDate: model.MustDate("2025-03-12"), EndDate: model.MustDate("2025-03-20")}
}

func TestPointerUp_ClickWithoutMotionKeepsWeeklyDates(t *testing.T) {
	t.Parallel()

	for _, g := range []model.Gesture{model.GestureMove, model.GestureResizeStart, model.GestureResizeEnd} {
		bus := pointer.NewBus()
		s := newStore(t, midweekTask())
		var results []Result
		c := New(s, bus, WithObserver(func(r Result) { results = append(results, r) }))
		if err := c.BeginDrag("w", g, 10, weeklyView(t)); err != nil {
			t.Fatalf("%s: BeginDrag: %v", g, err)
		}
		// Jitter inside the starting column.
		bus.Up(14)

		start, end := dates(t, s, "w")
		if start != "2025-03-12" || end != "2025-03-20" {
			t.Fatalf("%s: click changed dates to %s..%s", g, start, end)
		}
		if len(results) != 1 || results[0].Changed() || results[0].Moves != 0 {
			t.Fatalf("%s: unexpected results: %+v", g, results)
		}
	}
}

func TestUpdateDrag_ReturningToOriginRestoresWeeklyDates(t *testing.T) {
	t.Parallel()

	s := newStore(t, midweekTask())
	c := New(s, nil)
	if err := c.BeginDrag("w", model.GestureMove, 10, weeklyView(t)); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	c.UpdateDrag(60)
	if start, _ := dates(t, s, "w"); start != "2025-03-24" {
		t.Fatalf("expected snap to the Monday two columns on; got %s", start)
	}
	c.UpdateDrag(10)
	res, _ := c.EndDrag()

	start, end := dates(t, s, "w")
	if start != "2025-03-12" || end != "2025-03-20" || res.Changed() {
		t.Fatalf("expected original dates back; got %s..%s %+v", start, end, res)
	}
}

func TestCancelDrag_RevertRestoresWeeklyDates(t *testing.T) {
	t.Parallel()

	s := newStore(t, midweekTask())
	c := New(s, nil, WithRevertOnCancel(true))
	if err := c.BeginDrag("w", model.GestureMove, 10, weeklyView(t)); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	c.UpdateDrag(10 + 3*25)
	res, _ := c.CancelDrag()

	start, end := dates(t, s, "w")
	if start != "2025-03-12" || end != "2025-03-20" {
		t.Fatalf("expected revert to original dates; got %s..%s", start, end)
	}
	if !res.Reverted || res.Changed() || res.Delta != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestController_RejectsNonFinitePointer(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	c := New(s, nil)
	view := dailyView(t)

	for _, x := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if err := c.BeginDrag("t1", model.GestureMove, x, view); !errors.Is(err, ErrInvalidPointer) {
			t.Fatalf("BeginDrag(%v): expected ErrInvalidPointer; got %v", x, err)
		}
	}

	if err := c.BeginDrag("t1", model.GestureMove, 0, view); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	c.UpdateDrag(20)
	if delta, ok := c.UpdateDrag(math.NaN()); ok || delta != 2 {
		t.Fatalf("expected NaN to be ignored; got delta=%d ok=%v", delta, ok)
	}
	res, _ := c.EndDrag()
	if res.Delta != 2 || res.Moves != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if start, _ := dates(t, s, "t1"); start != "2025-03-05" {
		t.Fatalf("got start %s", start)
	}
}

func TestColumnDelta_RoundsHalfUp(t *testing.T) {
	t.Parallel()

	cases := []struct {
		px, ppc float64
		want    int
	}{
		{30, 10, 3},
		{-30, 10, -3},
		{14, 10, 1},
		{15, 10, 2},
		{-15, 10, -1},
		{-16, 10, -2},
		{0, 25, 0},
	}
	for _, tc := range cases {
		if got := ColumnDelta(tc.px, tc.ppc); got != tc.want {
			t.Fatalf("ColumnDelta(%v, %v)=%d want %d", tc.px, tc.ppc, got, tc.want)
		}
	}
}
