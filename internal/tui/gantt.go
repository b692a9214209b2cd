package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"sakuga-cli/internal/config"
	"sakuga-cli/internal/drag"
	"sakuga-cli/internal/model"
	"sakuga-cli/internal/pointer"
	"sakuga-cli/internal/schedule"
	"sakuga-cli/internal/store"
	"sakuga-cli/internal/timeline"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// dragHost is the mutable state shared by every copy of ganttModel.
type dragHost struct {
	sched *schedule.Store
	bus   *pointer.Bus
	ctrl  *drag.Controller

	// finished collects observer callbacks until Update turns them into save commands.
	finished []drag.Result
	// granularity of the axis the current (or last) session started on.
	granularity int

	// Saves run as tea.Cmds (concurrently); seq keeps an older snapshot from overwriting a newer one.
	saveMu   sync.Mutex
	seq      int
	savedSeq int
}

type savedMsg struct {
	res drag.Result
	err error
}

type ganttModel struct {
	opts   Options
	host   *dragHost
	keys   keyMap
	help   help.Model
	logger *slog.Logger

	scale     timeline.Scale
	month     model.Date
	axis      timeline.Axis
	rows      []row
	collapsed map[string]bool

	cursor int
	offset int
	width  int
	height int

	status    string
	statusErr bool
}

func newModel(opts Options) (ganttModel, error) {
	sched, err := schedule.New(opts.Tasks)
	if err != nil {
		return ganttModel{}, err
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	if opts.Config.View.CellWidth < 1 {
		opts.Config = config.Defaults()
	}

	host := &dragHost{sched: sched, bus: pointer.NewBus()}
	host.ctrl = drag.New(sched, host.bus,
		drag.WithLogger(opts.Logger),
		drag.WithRevertOnCancel(opts.Config.Drag.RevertOnCancel),
		drag.WithObserver(func(r drag.Result) { host.finished = append(host.finished, r) }),
	)

	scale, err := timeline.ParseScale(opts.Config.View.Default)
	if err != nil {
		scale = timeline.ScaleDaily
	}
	month := opts.Month
	if month.IsZero() {
		month = model.Today()
	}

	m := ganttModel{
		opts:      opts,
		host:      host,
		keys:      defaultKeyMap(),
		help:      help.New(),
		logger:    opts.Logger,
		scale:     scale,
		month:     month.FirstOfMonth(),
		collapsed: map[string]bool{},
		width:     100,
		height:    30,
	}
	if err := m.rebuildAxis(); err != nil {
		return ganttModel{}, err
	}
	m.rebuildRows()
	return m, nil
}

func (m ganttModel) Init() tea.Cmd { return nil }

func (m ganttModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureCursorVisible()
		return m, nil

	case tea.BlurMsg:
		// Focus loss is pointer loss: the release may never arrive.
		m.abortDrag()
		return m, m.drainFinished()

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		return m.updateKey(msg)

	case savedMsg:
		if msg.err != nil {
			m.setError(fmt.Errorf("save %s: %w", msg.res.TaskID, msg.err))
		}
		return m, nil
	}
	return m, nil
}

func (m ganttModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	ctrl := m.host.ctrl
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.moveCursor(-1)
			return m, nil
		case tea.MouseButtonWheelDown:
			m.moveCursor(1)
			return m, nil
		case tea.MouseButtonLeft:
		default:
			return m, nil
		}
		if ctrl.Dragging() {
			return m, nil
		}
		tg, ok := m.hitTest(msg.X, msg.Y)
		if tg.row >= 0 {
			m.cursor = tg.row
			if r := m.rows[tg.row]; r.kind == rowGroup && msg.X < labelWidth {
				m.toggleGroup(r.group)
				return m, nil
			}
		}
		if !ok {
			return m, nil
		}
		view := drag.View{Axis: m.axis, PixelsPerColumn: float64(m.cellWidth())}
		if err := ctrl.BeginDrag(tg.taskID, tg.gesture, float64(msg.X), view); err != nil {
			m.setError(err)
			return m, nil
		}
		m.host.granularity = m.axis.GranularityDays()
		m.setStatus(m.dragStatus())

	case tea.MouseActionMotion:
		if !ctrl.Dragging() {
			return m, nil
		}
		m.host.bus.Move(float64(msg.X))
		m.setStatus(m.dragStatus())

	case tea.MouseActionRelease:
		if !ctrl.Dragging() {
			return m, nil
		}
		m.host.bus.Up(float64(msg.X))
	}
	return m, m.drainFinished()
}

func (m ganttModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.abortDrag()
		return m, tea.Sequence(m.drainFinished(), tea.Quit)

	case key.Matches(msg, m.keys.Cancel):
		if !m.abortDrag() {
			return m, nil
		}

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.PrevMonth):
		m.abortDrag()
		m.shiftMonth(-1)

	case key.Matches(msg, m.keys.NextMonth):
		m.abortDrag()
		m.shiftMonth(1)

	case key.Matches(msg, m.keys.Today):
		m.abortDrag()
		m.month = model.Today().FirstOfMonth()
		m.rebuildAxisOrReport()

	case key.Matches(msg, m.keys.View):
		m.abortDrag()
		if m.scale == timeline.ScaleDaily {
			m.scale = timeline.ScaleWeekly
		} else {
			m.scale = timeline.ScaleDaily
		}
		m.rebuildAxisOrReport()

	case key.Matches(msg, m.keys.Toggle):
		if m.cursor >= 0 && m.cursor < len(m.rows) {
			m.toggleGroup(m.rows[m.cursor].group)
		}

	case key.Matches(msg, m.keys.Yank):
		m.yankSelection()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, m.drainFinished()
}

// abortDrag reports pointer loss to an active drag. It returns false when idle.
func (m *ganttModel) abortDrag() bool {
	if !m.host.ctrl.Dragging() {
		return false
	}
	m.host.bus.Lost()
	return true
}

// drainFinished turns completed sessions into status text and save commands.
func (m *ganttModel) drainFinished() tea.Cmd {
	results := m.host.finished
	m.host.finished = nil
	if len(results) == 0 {
		return nil
	}
	var cmds []tea.Cmd
	for _, res := range results {
		m.setStatus(resultStatus(res))
		if !res.Found {
			m.logger.Warn("finished drag on missing task", "task", res.TaskID)
			continue
		}
		if res.Moves == 0 {
			// Press and release in the same column: nothing to save or log.
			continue
		}
		if m.opts.Store != nil {
			cmds = append(cmds, m.saveCmd(res))
		}
	}
	return tea.Batch(cmds...)
}

func (m *ganttModel) saveCmd(res drag.Result) tea.Cmd {
	saver := m.opts.Store
	host := m.host
	host.seq++
	seq := host.seq
	tasks := host.sched.Commit()
	edit := store.EditFromResult(res, host.granularity, "tui")

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		host.saveMu.Lock()
		defer host.saveMu.Unlock()
		if res.Changed() && seq > host.savedSeq {
			if err := saver.SaveTasks(ctx, tasks); err != nil {
				return savedMsg{res: res, err: err}
			}
			host.savedSeq = seq
		}
		_, err := saver.AppendEdit(ctx, edit)
		return savedMsg{res: res, err: err}
	}
}

func (m *ganttModel) rebuildAxis() error {
	a, err := timeline.Preset(m.scale, m.month, m.opts.Config.View.WeeklyMonths)
	if err != nil {
		return err
	}
	m.axis = a
	return nil
}

func (m *ganttModel) rebuildAxisOrReport() {
	if err := m.rebuildAxis(); err != nil {
		m.setError(err)
	}
}

func (m *ganttModel) shiftMonth(n int) {
	m.month = model.NewDate(m.month.Year(), m.month.Month()+time.Month(n), 1)
	m.rebuildAxisOrReport()
}

func (m *ganttModel) rebuildRows() {
	m.rows = buildRows(m.host.sched.Groups(), m.collapsed)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

func (m *ganttModel) toggleGroup(group string) {
	m.collapsed[group] = !m.collapsed[group]
	if m.collapsed[group] {
		// Keep the cursor on the folded header.
		for i, r := range m.rows {
			if r.kind == rowGroup && r.group == group {
				m.cursor = i
				break
			}
		}
	}
	m.rebuildRows()
}

func (m *ganttModel) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor > len(m.rows)-1 {
		m.cursor = len(m.rows) - 1
	}
	m.ensureCursorVisible()
}

func (m *ganttModel) ensureCursorVisible() {
	h := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if last := len(m.rows) - h; m.offset > last {
		m.offset = last
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// yankSelection copies the selected task (or every task of the selected group) as
// tab-separated lines.
func (m *ganttModel) yankSelection() {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return
	}
	r := m.rows[m.cursor]
	var tasks []model.Task
	if r.kind == rowTask {
		if t, ok := m.host.sched.Task(r.taskID); ok {
			tasks = append(tasks, t)
		}
	} else {
		for _, g := range m.host.sched.Groups() {
			if g.Key == r.group {
				tasks = g.Tasks
			}
		}
	}
	if len(tasks) == 0 {
		return
	}
	var b strings.Builder
	for _, t := range tasks {
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\n", t.ID, t.Kind, t.StartDate, t.EndDate)
	}
	if err := copyToClipboard(b.String()); err != nil {
		m.setError(fmt.Errorf("copy: %w", err))
		return
	}
	m.setStatus(fmt.Sprintf("copied %d task(s)", len(tasks)))
}

func (m ganttModel) bodyHeight() int {
	h := m.height - headerLines - footerLines
	if h < 1 {
		return 1
	}
	return h
}

func (m ganttModel) cellWidth() int {
	if m.opts.Config.View.CellWidth < 1 {
		return config.DefaultCellWidth
	}
	return m.opts.Config.View.CellWidth
}

func (m *ganttModel) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *ganttModel) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m ganttModel) dragStatus() string {
	s, ok := m.host.ctrl.Session()
	if !ok {
		return ""
	}
	t, _ := m.host.sched.Task(s.TaskID)
	return fmt.Sprintf("dragging %s (%s) %+d  %s → %s", s.TaskID, s.Gesture, s.LastDelta, t.StartDate, t.EndDate)
}

func resultStatus(r drag.Result) string {
	switch {
	case !r.Found:
		return fmt.Sprintf("%s no longer exists", r.TaskID)
	case r.Reverted:
		return fmt.Sprintf("%s restored to %s → %s", r.TaskID, r.After.StartDate, r.After.EndDate)
	case !r.Changed():
		return fmt.Sprintf("%s unchanged", r.TaskID)
	case r.Cancelled:
		return fmt.Sprintf("%s kept at %s → %s (cancelled)", r.TaskID, r.After.StartDate, r.After.EndDate)
	default:
		return fmt.Sprintf("%s %s %+d  %s → %s", r.TaskID, r.Gesture, r.Delta, r.After.StartDate, r.After.EndDate)
	}
}
