// Package publish exports the schedule as markdown files.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"sakuga-cli/internal/model"
	"sakuga-cli/internal/schedule"
)

type WriteOptions struct {
	Render    RenderOptions
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteSchedule writes index.md plus one page per group under groups/.
func WriteSchedule(tasks []model.Task, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	groupsDir := filepath.Join(toDir, "groups")
	if err := os.MkdirAll(groupsDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderScheduleMarkdown(tasks, opt.Render)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	written := []string{indexPath}
	for _, g := range schedule.GroupTasks(tasks) {
		p := filepath.Join(groupsDir, fileName(g.Key)+".md")
		if err := writeFile(p, []byte(RenderGroupMarkdown(g)), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}
	return WriteResult{Written: written}, nil
}

// fileName keeps group keys usable as file names on every platform.
func fileName(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "_ungrouped"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, key)
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
