package cli

import (
	"strings"

	"sakuga-cli/internal/timeline"

	"github.com/spf13/cobra"
)

func newGanttCmd(app *App) *cobra.Command {
	var (
		month string
		view  string
	)

	cmd := &cobra.Command{
		Use:   "gantt",
		Short: "Open the interactive Gantt chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseMonthFlag(month)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(view) != "" {
				s, err := timeline.ParseScale(view)
				if err != nil {
					return writeErr(cmd, err)
				}
				app.Config.View.Default = string(s)
			}
			if err := runTUI(cmd.Context(), app, m); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to open on (YYYY-MM; default current month)")
	cmd.Flags().StringVar(&view, "view", "", "Initial view: daily|weekly (default from config)")
	return cmd
}
