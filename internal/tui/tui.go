// Package tui is the interactive Gantt chart. Mouse input is fed into a pointer.Bus so the
// drag controller sees the same global events a windowed host would deliver.
package tui

import (
	"context"
	"io"
	"log/slog"

	"sakuga-cli/internal/config"
	"sakuga-cli/internal/model"
	"sakuga-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Saver persists the outcome of a finished drag. store.Store implements it.
type Saver interface {
	SaveTasks(ctx context.Context, tasks []model.Task) error
	AppendEdit(ctx context.Context, e store.Edit) (int64, error)
}

type Options struct {
	Store     Saver
	Tasks     []model.Task
	Config    config.Config
	Logger    *slog.Logger
	Workspace string
	// Month the chart opens on; zero means the current month.
	Month model.Date
}

func Run(opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()

	m, err := newModel(opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	).Run()
	return err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
