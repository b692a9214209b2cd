package cli

import (
	"sakuga-cli/internal/model"
	"sakuga-cli/internal/timeline"

	"github.com/spf13/cobra"
)

type axisColumn struct {
	Index int        `json:"index"`
	Start model.Date `json:"start"`
	End   model.Date `json:"end"`
}

type axisMonth struct {
	Label   string `json:"label"`
	First   int    `json:"firstColumn"`
	Columns int    `json:"columns"`
}

func newAxisCmd(app *App) *cobra.Command {
	var (
		view  string
		month string
	)

	cmd := &cobra.Command{
		Use:   "axis",
		Short: "Print the column layout of a view",
		RunE: func(cmd *cobra.Command, args []string) error {
			if view == "" {
				view = app.Config.View.Default
			}
			scale, err := timeline.ParseScale(view)
			if err != nil {
				return writeErr(cmd, err)
			}
			anchor, err := parseMonthFlag(month)
			if err != nil {
				return writeErr(cmd, err)
			}
			axis, err := timeline.Preset(scale, anchor, app.Config.View.WeeklyMonths)
			if err != nil {
				return writeErr(cmd, err)
			}

			cols := make([]axisColumn, 0, axis.ColumnCount())
			for i := 0; i < axis.ColumnCount(); i++ {
				start := axis.ColumnToDate(i)
				cols = append(cols, axisColumn{Index: i, Start: start, End: start.AddDays(axis.GranularityDays() - 1)})
			}
			months := []axisMonth{}
			for _, g := range axis.MonthGroups() {
				months = append(months, axisMonth{Label: g.Label(), First: g.First, Columns: g.Columns})
			}

			var today any
			if col, ok := axis.ColumnOf(model.Today()); ok {
				today = col
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"view":        string(scale),
					"config":      axis.Config(),
					"columns":     cols,
					"months":      months,
					"todayColumn": today,
				},
			})
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "Axis preset: daily|weekly (default: view.default)")
	cmd.Flags().StringVar(&month, "month", "", "Month the view starts at, YYYY-MM (default: this month)")
	return cmd
}
