// Package store persists a workspace: the task list behind the Gantt chart plus the history
// of drag edits applied to it. State lives in a single SQLite file inside the workspace dir.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	dbFileName       = "sakuga.sqlite"
	DefaultWorkspace = "default"
)

type Store struct {
	Dir string
}

// ConfigDir is ~/.sakuga unless SAKUGA_CONFIG_DIR overrides it.
func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.sakuga).
	if v := strings.TrimSpace(os.Getenv("SAKUGA_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".sakuga"), nil
}

func NormalizeWorkspaceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("workspace name is empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", errors.New("workspace name must be a plain directory name")
	}
	return name, nil
}

func WorkspaceDir(name string) (string, error) {
	name, err := NormalizeWorkspaceName(name)
	if err != nil {
		return "", err
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "workspaces", name), nil
}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store dir is empty")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(filepath.Clean(s.Dir), dbFileName)
}

// Exists reports whether the workspace has been initialized.
func (s Store) Exists() bool {
	_, err := os.Stat(s.sqlitePath())
	return err == nil
}
