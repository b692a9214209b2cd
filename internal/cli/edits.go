package cli

import (
	"strings"

	"sakuga-cli/internal/store"

	"github.com/spf13/cobra"
)

func newEditsCmd(app *App) *cobra.Command {
	var (
		taskID string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "edits",
		Short: "Show the drag edit history (newest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			edits, err := s.Edits(ctxOrBackground(cmd.Context()), strings.TrimSpace(taskID), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			if edits == nil {
				edits = []store.Edit{}
			}
			return writeOut(cmd, app, map[string]any{
				"data": edits,
				"meta": map[string]any{"count": len(edits)},
			})
		},
	}

	cmd.Flags().StringVar(&taskID, "task", "", "Only edits of this task")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of edits (0 = all)")
	return cmd
}
