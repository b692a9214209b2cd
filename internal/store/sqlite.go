package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"sakuga-cli/internal/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotInitialized is returned when a workspace has no database yet.
var ErrNotInitialized = errors.New("workspace not initialized (run `sakuga init`)")

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL lets the TUI keep a reader open while the CLI writes from another terminal.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s Store) openExisting(ctx context.Context) (*sql.DB, error) {
	if !s.Exists() {
		return nil, ErrNotInitialized
	}
	return s.openSQLite(ctx)
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			group_key TEXT NOT NULL,
			kind TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_group ON tasks(group_key);`,
		`CREATE TABLE IF NOT EXISTS edits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id TEXT NOT NULL,
			gesture TEXT NOT NULL,
			delta_columns INTEGER NOT NULL,
			granularity_days INTEGER NOT NULL,
			before_start TEXT NOT NULL,
			before_end TEXT NOT NULL,
			after_start TEXT NOT NULL,
			after_end TEXT NOT NULL,
			cancelled INTEGER NOT NULL,
			source TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_edits_task ON edits(task_id, id);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// Init creates the workspace database and stamps it with a workspace id.
func (s Store) Init(ctx context.Context) (string, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()
	return ensureMetaUUID(ctx, db, "workspace_id")
}

func ensureMetaUUID(ctx context.Context, db *sql.DB, key string) (string, error) {
	var v string
	err := db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, key).Scan(&v)
	if err == nil && strings.TrimSpace(v) != "" {
		return v, nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	v = uuid.NewString()
	if _, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, key, v); err != nil {
		return "", err
	}
	return v, nil
}

func (s Store) WorkspaceID(ctx context.Context) (string, error) {
	db, err := s.openExisting(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()
	return ensureMetaUUID(ctx, db, "workspace_id")
}

// LoadTasks returns the task list in its saved order.
func (s Store) LoadTasks(ctx context.Context) ([]model.Task, error) {
	db, err := s.openExisting(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT id, group_key, kind, start_date, end_date FROM tasks ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		var (
			t          model.Task
			kind       string
			start, end string
		)
		if err := rows.Scan(&t.ID, &t.GroupKey, &kind, &start, &end); err != nil {
			return nil, err
		}
		// Stored rows were validated on the way in; keep unknown kinds visible to doctor.
		t.Kind = model.Kind(kind)
		if t.StartDate, err = model.ParseDate(start); err != nil {
			return nil, fmt.Errorf("task %s: %w", t.ID, err)
		}
		if t.EndDate, err = model.ParseDate(end); err != nil {
			return nil, fmt.Errorf("task %s: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveTasks replaces the stored task list with tasks.
func (s Store) SaveTasks(ctx context.Context, tasks []model.Task) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Replace-all keeps ordering trivially consistent; lists are a few hundred rows at most.
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return err
	}
	nowMs := time.Now().UTC().UnixMilli()
	for i, t := range tasks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tasks(id, position, group_key, kind, start_date, end_date, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?, ?)`,
			t.ID, i, t.GroupKey, string(t.Kind), t.StartDate.String(), t.EndDate.String(), nowMs); err != nil {
			return fmt.Errorf("save task %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}
