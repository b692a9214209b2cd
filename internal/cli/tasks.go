package cli

import (
	"fmt"
	"math"
	"strings"

	"sakuga-cli/internal/model"
	"sakuga-cli/internal/schedule"
	"sakuga-cli/internal/store"
	"sakuga-cli/internal/timeline"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Inspect and edit scheduled tasks",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksDragCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var (
		group   string
		kind    string
		grouped bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in chart order",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, _, err := loadTasks(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}

			var wantKind model.Kind
			if strings.TrimSpace(kind) != "" {
				k, err := model.ParseKind(kind)
				if err != nil {
					return writeErr(cmd, err)
				}
				wantKind = k
			}
			group = strings.TrimSpace(group)

			out := make([]model.Task, 0, len(tasks))
			for _, t := range tasks {
				if group != "" && t.GroupKey != group {
					continue
				}
				if wantKind != "" && t.Kind != wantKind {
					continue
				}
				out = append(out, t)
			}

			if grouped {
				groups := schedule.GroupTasks(out)
				if groups == nil {
					groups = []schedule.Group{}
				}
				return writeOut(cmd, app, map[string]any{
					"data": groups,
					"meta": map[string]any{"count": len(out), "groups": len(groups)},
				})
			}
			return writeOut(cmd, app, map[string]any{
				"data": out,
				"meta": map[string]any{"count": len(out), "total": len(tasks)},
			})
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "Only tasks with this group key")
	cmd.Flags().StringVar(&kind, "kind", "", "Only tasks of this process kind")
	cmd.Flags().BoolVar(&grouped, "grouped", false, "Nest tasks under their group key")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task and its recent edits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, s, err := loadTasks(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			t, ok := findTask(tasks, id)
			if !ok {
				return writeErr(cmd, errNotFound("task", id))
			}
			edits, err := s.Edits(ctxOrBackground(cmd.Context()), id, 10)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"task":  t,
					"days":  t.Days(),
					"edits": edits,
				},
			})
		},
	}
	return cmd
}

func newTasksDragCmd(app *App) *cobra.Command {
	var (
		gesture string
		from    float64
		to      float64
		px      float64
		steps   int
		view    string
		month   string
		cancel  bool
		revert  bool
	)

	cmd := &cobra.Command{
		Use:   "drag <task-id>",
		Short: "Replay a drag gesture on a task and save the result",
		Long: strings.TrimSpace(`
Replays a pointer drag without a terminal: the pointer goes down at --from, moves
toward --to in --steps increments and is released at --to. Positions are in the same
units as --px (pixels or cells per column).

With --cancel the pointer is lost instead of released; the task keeps the last applied
position unless --revert (or drag.revertOnCancel) is set.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOrBackground(cmd.Context())
			tasks, s, err := loadTasks(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			t, ok := findTask(tasks, id)
			if !ok {
				return writeErr(cmd, errNotFound("task", id))
			}

			g, err := model.ParseGesture(gesture)
			if err != nil {
				return writeErr(cmd, err)
			}
			for name, v := range map[string]float64{"--from": from, "--to": to} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return writeErr(cmd, fmt.Errorf("%s must be a finite number (got %v)", name, v))
				}
			}
			if view == "" {
				view = app.Config.View.Default
			}
			scale, err := timeline.ParseScale(view)
			if err != nil {
				return writeErr(cmd, err)
			}
			anchor := t.StartDate.FirstOfMonth()
			if strings.TrimSpace(month) != "" {
				if anchor, err = parseMonthFlag(month); err != nil {
					return writeErr(cmd, err)
				}
			}
			axis, err := timeline.Preset(scale, anchor, app.Config.View.WeeklyMonths)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !cmd.Flags().Changed("px") {
				px = float64(app.Config.View.CellWidth)
			}
			if !cmd.Flags().Changed("revert") {
				revert = app.Config.Drag.RevertOnCancel
			}

			sch, err := schedule.New(tasks)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := replayDrag(sch, dragRequest{
				TaskID:          id,
				Gesture:         g,
				From:            from,
				To:              to,
				PixelsPerColumn: px,
				Steps:           steps,
				Cancel:          cancel,
				Axis:            axis,
			}, app.logger(), revert)
			if err != nil {
				return writeErr(cmd, err)
			}

			saved := false
			if res.Changed() {
				if err := s.SaveTasks(ctx, sch.Commit()); err != nil {
					return writeErr(cmd, err)
				}
				saved = true
			}
			// A drag that never left its starting column is a click, not an edit.
			var edit *store.Edit
			if res.Moves > 0 {
				e := store.EditFromResult(res, axis.GranularityDays(), "cli")
				if e.ID, err = s.AppendEdit(ctx, e); err != nil {
					return writeErr(cmd, err)
				}
				edit = &e
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"task":   res.After,
					"result": res,
					"edit":   edit,
				},
				"meta": map[string]any{
					"saved": saved,
					"view":  string(scale),
					"axis":  axis.Config(),
				},
			})
		},
	}

	cmd.Flags().StringVar(&gesture, "gesture", "move", "Gesture: move|resize-start|resize-end")
	cmd.Flags().Float64Var(&from, "from", 0, "Pointer position where the drag starts")
	cmd.Flags().Float64Var(&to, "to", 0, "Pointer position where the drag ends")
	cmd.Flags().Float64Var(&px, "px", 0, "Pointer units per column (default: view.cellWidth)")
	cmd.Flags().IntVar(&steps, "steps", 1, "Number of pointer moves between --from and --to")
	cmd.Flags().StringVar(&view, "view", "", "Axis preset: daily|weekly (default: view.default)")
	cmd.Flags().StringVar(&month, "month", "", "Month the view starts at, YYYY-MM (default: the task's start month)")
	cmd.Flags().BoolVar(&cancel, "cancel", false, "Lose the pointer instead of releasing it")
	cmd.Flags().BoolVar(&revert, "revert", false, "On --cancel, put the task back where it started")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func findTask(tasks []model.Task, id string) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func parseMonthFlag(s string) (model.Date, error) {
	d, err := timeline.ParseMonth(s)
	if err != nil {
		return model.Date{}, fmt.Errorf("--month: %w", err)
	}
	return d, nil
}
