// Package config loads user preferences for the Gantt views.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCellWidth    = 3
	DefaultWeeklyMonths = 24
)

type Config struct {
	View ViewConfig `yaml:"view" json:"view"`
	Drag DragConfig `yaml:"drag" json:"drag"`
	Log  LogConfig  `yaml:"log" json:"log"`
}

type ViewConfig struct {
	// Default is "daily" or "weekly".
	Default string `yaml:"default" json:"default"`
	// CellWidth is the number of terminal cells per axis column.
	CellWidth    int `yaml:"cellWidth" json:"cellWidth"`
	WeeklyMonths int `yaml:"weeklyMonths" json:"weeklyMonths"`
}

type DragConfig struct {
	RevertOnCancel bool `yaml:"revertOnCancel" json:"revertOnCancel"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

func Defaults() Config {
	return Config{
		View: ViewConfig{
			Default:      "daily",
			CellWidth:    DefaultCellWidth,
			WeeklyMonths: DefaultWeeklyMonths,
		},
		Log: LogConfig{Level: "warn"},
	}
}

// Load overlays, in order: the YAML file (SAKUGA_CONFIG, else <configDir>/config.yaml),
// a .env file in the working directory, then SAKUGA_* environment variables.
// A missing default config file is not an error; a missing SAKUGA_CONFIG file is.
func Load(configDir string) (Config, error) {
	cfg := Defaults()

	path := strings.TrimSpace(os.Getenv("SAKUGA_CONFIG"))
	explicit := path != ""
	if !explicit && strings.TrimSpace(configDir) != "" {
		path = filepath.Join(configDir, "config.yaml")
	}
	if path != "" {
		err := loadFromFile(path, &cfg)
		if err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
			return Config{}, err
		}
	}

	// Load .env if present; it never overrides variables already set.
	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("SAKUGA_VIEW")); v != "" {
		cfg.View.Default = v
	}
	if v := strings.TrimSpace(os.Getenv("SAKUGA_CELL_WIDTH")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SAKUGA_CELL_WIDTH: %w", err)
		}
		cfg.View.CellWidth = n
	}
	if v := strings.TrimSpace(os.Getenv("SAKUGA_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("SAKUGA_REVERT_ON_CANCEL")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SAKUGA_REVERT_ON_CANCEL: %w", err)
		}
		cfg.Drag.RevertOnCancel = b
	}
	return nil
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.View.Default)) {
	case "daily", "weekly":
	default:
		return fmt.Errorf("view.default must be daily or weekly (got %q)", c.View.Default)
	}
	if c.View.CellWidth < 1 {
		return fmt.Errorf("view.cellWidth must be >= 1 (got %d)", c.View.CellWidth)
	}
	if c.View.WeeklyMonths < 1 {
		return fmt.Errorf("view.weeklyMonths must be >= 1 (got %d)", c.View.WeeklyMonths)
	}
	return nil
}

func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
