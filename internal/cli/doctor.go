package cli

import (
	"sakuga-cli/internal/schedule"

	"github.com/spf13/cobra"
)

func newDoctorCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check stored tasks against the schedule invariants",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, _, err := loadTasks(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}

			problems := schedule.Check(tasks)
			if problems == nil {
				problems = []schedule.Problem{}
			}
			if err := writeOut(cmd, app, map[string]any{
				"data": problems,
				"meta": map[string]any{
					"tasks":    len(tasks),
					"problems": len(problems),
				},
			}); err != nil {
				return err
			}
			if len(problems) > 0 {
				return ErrDoctorIssuesFound
			}
			return nil
		},
	}
	return cmd
}
