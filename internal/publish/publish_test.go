package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sakuga-cli/internal/model"
	"sakuga-cli/internal/store"
)

func publishFixture() []model.Task {
	return []model.Task{
		{ID: "c001-lo", GroupKey: "ep01", Kind: model.KindLayout, StartDate: model.MustDate("2025-03-03"), EndDate: model.MustDate("2025-03-05")},
		{ID: "c001-an", GroupKey: "ep01", Kind: model.KindAnimation, StartDate: model.MustDate("2025-03-06"), EndDate: model.MustDate("2025-03-12")},
		{ID: "ed", GroupKey: "ep02/final", Kind: model.KindEditing, StartDate: model.MustDate("2025-04-01"), EndDate: model.MustDate("2025-04-01")},
	}
}

func TestRenderScheduleMarkdown_GroupsAndEdits(t *testing.T) {
	edits := []store.Edit{{
		TaskID: "c001-lo", Gesture: model.GestureMove, DeltaColumns: 2,
		BeforeStart: model.MustDate("2025-03-01"), BeforeEnd: model.MustDate("2025-03-03"),
		AfterStart: model.MustDate("2025-03-03"), AfterEnd: model.MustDate("2025-03-05"),
		Cancelled: true,
	}}
	md := RenderScheduleMarkdown(publishFixture(), RenderOptions{Title: "Episode plan", Edits: edits})

	for _, want := range []string{
		"# Episode plan",
		"- Range: 2025-03-03 → 2025-04-01",
		"## ep01",
		"| c001-an | animation | 2025-03-06 | 2025-03-12 | 7 |",
		"## ep02/final",
		"## Recent edits",
		"`c001-lo` move +2",
		"(cancelled)",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if strings.Index(md, "## ep01") > strings.Index(md, "## ep02/final") {
		t.Fatalf("expected groups in first-seen order")
	}
}

func TestRenderScheduleMarkdown_Empty(t *testing.T) {
	md := RenderScheduleMarkdown(nil, RenderOptions{})
	if !strings.Contains(md, "# Schedule") || !strings.Contains(md, "_No tasks._") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
}

func TestWriteSchedule_WritesIndexAndGroups(t *testing.T) {
	dir := t.TempDir()
	res, err := WriteSchedule(publishFixture(), dir, WriteOptions{})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(res.Written) != 3 {
		t.Fatalf("expected 3 files, got %v", res.Written)
	}
	b, err := os.ReadFile(filepath.Join(dir, "groups", "ep02_final.md"))
	if err != nil {
		t.Fatalf("read group page: %v", err)
	}
	if !strings.HasPrefix(string(b), "# ep02/final") {
		t.Fatalf("unexpected group page:\n%s", string(b))
	}

	if _, err := WriteSchedule(publishFixture(), dir, WriteOptions{}); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if _, err := WriteSchedule(publishFixture(), dir, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}
