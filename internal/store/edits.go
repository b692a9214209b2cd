package store

import (
	"context"
	"strings"
	"time"

	"sakuga-cli/internal/drag"
	"sakuga-cli/internal/model"
)

// Edit is one finished drag session as recorded in the workspace history.
type Edit struct {
	ID              int64         `json:"id" yaml:"id"`
	TaskID          string        `json:"taskId" yaml:"taskId"`
	Gesture         model.Gesture `json:"gesture" yaml:"gesture"`
	DeltaColumns    int           `json:"deltaColumns" yaml:"deltaColumns"`
	GranularityDays int           `json:"granularityDays" yaml:"granularityDays"`
	BeforeStart     model.Date    `json:"beforeStart" yaml:"beforeStart"`
	BeforeEnd       model.Date    `json:"beforeEnd" yaml:"beforeEnd"`
	AfterStart      model.Date    `json:"afterStart" yaml:"afterStart"`
	AfterEnd        model.Date    `json:"afterEnd" yaml:"afterEnd"`
	Cancelled       bool          `json:"cancelled" yaml:"cancelled"`
	// Source names the host that produced the edit ("tui", "cli").
	Source    string    `json:"source" yaml:"source"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// EditFromResult converts a finished drag session into a history row.
func EditFromResult(res drag.Result, granularityDays int, source string) Edit {
	return Edit{
		TaskID:          res.TaskID,
		Gesture:         res.Gesture,
		DeltaColumns:    res.Delta,
		GranularityDays: granularityDays,
		BeforeStart:     res.Before.StartDate,
		BeforeEnd:       res.Before.EndDate,
		AfterStart:      res.After.StartDate,
		AfterEnd:        res.After.EndDate,
		Cancelled:       res.Cancelled,
		Source:          source,
		CreatedAt:       time.Now().UTC(),
	}
}

func (s Store) AppendEdit(ctx context.Context, e Edit) (int64, error) {
	db, err := s.openExisting(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	cancelled := 0
	if e.Cancelled {
		cancelled = 1
	}
	r, err := db.ExecContext(ctx,
		`INSERT INTO edits(task_id, gesture, delta_columns, granularity_days, before_start, before_end, after_start, after_end, cancelled, source, created_at_unixms)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.TaskID, string(e.Gesture), e.DeltaColumns, e.GranularityDays,
		e.BeforeStart.String(), e.BeforeEnd.String(), e.AfterStart.String(), e.AfterEnd.String(),
		cancelled, strings.TrimSpace(e.Source), e.CreatedAt.UTC().UnixMilli())
	if err != nil {
		return 0, err
	}
	return r.LastInsertId()
}

// Edits returns recorded edits, newest first. An empty taskID means all tasks; limit <= 0 means no limit.
func (s Store) Edits(ctx context.Context, taskID string, limit int) ([]Edit, error) {
	db, err := s.openExisting(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT id, task_id, gesture, delta_columns, granularity_days, before_start, before_end, after_start, after_end, cancelled, source, created_at_unixms FROM edits`
	var args []any
	if taskID = strings.TrimSpace(taskID); taskID != "" {
		q += ` WHERE task_id = ?`
		args = append(args, taskID)
	}
	q += ` ORDER BY id DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Edit{}
	for rows.Next() {
		var (
			e              Edit
			gesture        string
			bs, be, as, ae string
			cancelled      int
			createdMs      int64
		)
		if err := rows.Scan(&e.ID, &e.TaskID, &gesture, &e.DeltaColumns, &e.GranularityDays, &bs, &be, &as, &ae, &cancelled, &e.Source, &createdMs); err != nil {
			return nil, err
		}
		e.Gesture = model.Gesture(gesture)
		e.Cancelled = cancelled != 0
		e.CreatedAt = time.UnixMilli(createdMs).UTC()
		for _, f := range []struct {
			dst *model.Date
			raw string
		}{{&e.BeforeStart, bs}, {&e.BeforeEnd, be}, {&e.AfterStart, as}, {&e.AfterEnd, ae}} {
			if err := f.dst.UnmarshalText([]byte(f.raw)); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
