package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize workspace storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := s.Init(ctxOrBackground(cmd.Context()))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":         app.Dir,
					"workspace":   app.Workspace,
					"workspaceId": id,
					"sqlitePath":  filepath.Join(app.Dir, "sakuga.sqlite"),
				},
			})
		},
	}
	return cmd
}
