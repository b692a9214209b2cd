package cli

import (
	"sakuga-cli/internal/store"

	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the workspace task list from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := store.ReadTaskFile(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !dryRun {
				s, err := resolveStore(app)
				if err != nil {
					return writeErr(cmd, err)
				}
				ctx := ctxOrBackground(cmd.Context())
				// Importing into a fresh workspace initializes it.
				if _, err := s.Init(ctx); err != nil {
					return writeErr(cmd, err)
				}
				if err := s.SaveTasks(ctx, tasks); err != nil {
					return writeErr(cmd, err)
				}
				app.logger().Info("tasks imported", "count", len(tasks), "dir", app.Dir)
			}
			return writeOut(cmd, app, map[string]any{
				"data": tasks,
				"meta": map[string]any{"count": len(tasks), "dryRun": dryRun},
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and print without saving")
	return cmd
}
