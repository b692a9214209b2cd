package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"sakuga-cli/internal/model"
	"sakuga-cli/internal/schedule"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// fileTask mirrors model.Task with raw strings so parse errors can name the row.
type fileTask struct {
	ID        string `yaml:"id"`
	GroupKey  string `yaml:"groupKey"`
	Kind      string `yaml:"kind"`
	StartDate string `yaml:"startDate"`
	EndDate   string `yaml:"endDate"`
}

type taskFile struct {
	Tasks []fileTask `yaml:"tasks"`
}

// ReadTaskFile loads a task list from YAML or JSON (JSON is valid YAML).
func ReadTaskFile(path string) ([]model.Task, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTasks(b)
}

// ParseTasks accepts either a bare list of tasks or a document with a top-level "tasks" key.
// Rows without an id get a fresh UUID. The result is validated as a whole.
func ParseTasks(b []byte) ([]model.Task, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, errors.New("task file is empty")
	}
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}

	var rows []fileTask
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&rows); err != nil {
			return nil, fmt.Errorf("parse task file: %w", err)
		}
	case yaml.MappingNode:
		var f taskFile
		if err := doc.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse task file: %w", err)
		}
		rows = f.Tasks
	default:
		return nil, errors.New("task file must be a list of tasks or a mapping with a tasks key")
	}

	tasks := make([]model.Task, 0, len(rows))
	for i, r := range rows {
		t, err := r.task()
		if err != nil {
			return nil, fmt.Errorf("task #%d: %w", i, err)
		}
		tasks = append(tasks, t)
	}
	if _, err := schedule.New(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r fileTask) task() (model.Task, error) {
	t := model.Task{
		ID:       strings.TrimSpace(r.ID),
		GroupKey: strings.TrimSpace(r.GroupKey),
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	k, err := model.ParseKind(r.Kind)
	if err != nil {
		return model.Task{}, err
	}
	t.Kind = k
	if t.StartDate, err = model.ParseDate(strings.TrimSpace(r.StartDate)); err != nil {
		return model.Task{}, fmt.Errorf("startDate: %w", err)
	}
	if t.EndDate, err = model.ParseDate(strings.TrimSpace(r.EndDate)); err != nil {
		return model.Task{}, fmt.Errorf("endDate: %w", err)
	}
	return t, nil
}
