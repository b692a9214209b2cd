package cli

import (
	"fmt"
	"strings"

	"sakuga-cli/internal/docs"
	"sakuga-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var (
		toDir     string
		title     string
		edits     int
		overwrite bool
		render    bool
		width     int
		style     string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Export the schedule as Markdown (derived, not canonical)",
		Long: "Without --to the Markdown is printed to stdout. With --to an index page plus one page per group\n" +
			"is written under the target directory.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOrBackground(cmd.Context())
			tasks, s, err := loadTasks(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			opt := publish.RenderOptions{Title: title}
			if edits > 0 {
				opt.Edits, err = s.Edits(ctx, "", edits)
				if err != nil {
					return writeErr(cmd, err)
				}
			}

			if strings.TrimSpace(toDir) == "" {
				md := publish.RenderScheduleMarkdown(tasks, opt)
				if render {
					md, err = docs.Render(md, width, style)
					if err != nil {
						return writeErr(cmd, err)
					}
				}
				_, err := fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}

			res, err := publish.WriteSchedule(tasks, toDir, publish.WriteOptions{Render: opt, Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			app.logger().Info("published schedule", "dir", toDir, "files", len(res.Written))
			return writeOut(cmd, app, map[string]any{
				"data": res,
				"_hints": []string{
					"git status",
					"git add -A",
					"git commit -m \"Publish schedule\"",
				},
			})
		},
	}

	cmd.Flags().StringVar(&toDir, "to", "", "Output directory (omit to print to stdout)")
	cmd.Flags().StringVar(&title, "title", "", "Document title (default \"Schedule\")")
	cmd.Flags().IntVar(&edits, "edits", 0, "Include the N most recent edits")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&render, "render", false, "Render for the terminal (stdout only)")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	cmd.Flags().StringVar(&style, "style", "dark", "Glamour style for --render")
	return cmd
}
