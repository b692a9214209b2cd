package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"sakuga-cli/internal/config"
	"sakuga-cli/internal/format"
	"sakuga-cli/internal/model"
	"sakuga-cli/internal/store"
	"sakuga-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Workspace  string
	PrettyJSON bool
	Format     string
	LogLevel   string

	Config config.Config
	Logger *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{Config: config.Defaults()}

	cmd := &cobra.Command{
		Use:          "sakuga",
		Short:        "Sakuga production schedule (Gantt CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive Gantt chart
  sakuga

  # Load a schedule
  sakuga init
  sakuga import tasks.yaml

  # Move a task three days later without a terminal
  sakuga tasks drag c001-lo --gesture move --from 100 --to 130 --px 10 --month 2025-03
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd.Context(), app, model.Date{})
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("SAKUGA_DIR", ""), "Path to workspace dir (overrides workspace resolution)")
	cmd.PersistentFlags().StringVar(&app.Workspace, "workspace", envOr("SAKUGA_WORKSPACE", ""), "Workspace name (default: 'default')")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("SAKUGA_FORMAT", "json"), "Output format (json|yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error); overrides log.level")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newEditsCmd(app))
	cmd.AddCommand(newAxisCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newGanttCmd(app))

	return cmd
}

// setup loads config and builds the logger. Logs go to stderr so stdout stays machine-readable.
func (app *App) setup(cmd *cobra.Command) error {
	cfgDir, err := store.ConfigDir()
	if err != nil {
		return writeErr(cmd, err)
	}
	cfg, err := config.Load(cfgDir)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.Config = cfg

	level := cfg.Log.Level
	if strings.TrimSpace(app.LogLevel) != "" {
		level = app.LogLevel
	}
	app.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: config.ParseLogLevel(level),
	}))
	return nil
}

func (app *App) logger() *slog.Logger {
	if app.Logger == nil {
		app.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return app.Logger
}

func runTUI(ctx context.Context, app *App, month model.Date) error {
	s, err := resolveStore(app)
	if err != nil {
		return err
	}
	tasks, err := s.LoadTasks(ctxOrBackground(ctx))
	if err != nil {
		return err
	}
	return tui.Run(tui.Options{
		Store:     s,
		Tasks:     tasks,
		Config:    app.Config,
		Logger:    app.logger(),
		Workspace: app.Workspace,
		Month:     month,
	})
}

func resolveDir(app *App) (string, error) {
	if app.Dir != "" {
		return app.Dir, nil
	}
	if strings.TrimSpace(app.Workspace) == "" {
		app.Workspace = store.DefaultWorkspace
	}
	d, err := store.WorkspaceDir(app.Workspace)
	if err != nil {
		return "", err
	}
	app.Dir = d
	return d, nil
}

func resolveStore(app *App) (store.Store, error) {
	dir, err := resolveDir(app)
	if err != nil {
		return store.Store{}, err
	}
	return store.Store{Dir: dir}, nil
}

func loadTasks(ctx context.Context, app *App) ([]model.Task, store.Store, error) {
	s, err := resolveStore(app)
	if err != nil {
		return nil, s, err
	}
	tasks, err := s.LoadTasks(ctxOrBackground(ctx))
	if err != nil {
		return nil, s, err
	}
	return tasks, s, nil
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
