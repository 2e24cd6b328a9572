package history_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"launchpad/history"
)

func exportRecord() *history.Record {
	return &history.Record{
		ID:        "abc12345-0000-0000-0000-000000000000",
		Preset:    "train dit",
		Program:   "lerobot/scripts/train.py",
		Args:      []string{"--policy.type=dit"},
		Argv:      []string{"python3", "lerobot/scripts/train.py", "--policy.type=dit"},
		Status:    history.StatusExited,
		ExitCode:  0,
		StartedAt: time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
		EndedAt:   time.Date(2026, 8, 20, 11, 2, 15, 0, time.UTC),
	}
}

func TestExportMarkdown(t *testing.T) {
	md := history.ExportMarkdown(exportRecord())

	for _, want := range []string{
		"# train dit",
		"- **Program:** lerobot/scripts/train.py",
		"`python3 lerobot/scripts/train.py --policy.type=dit`",
		"- **Started:** 2026-08-20 09:30:00",
		"- **Ended:** 2026-08-20 11:02:15",
		"exited (exit code 0)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestExportMarkdownRunning(t *testing.T) {
	rec := exportRecord()
	rec.Status = history.StatusRunning
	rec.EndedAt = time.Time{}

	md := history.ExportMarkdown(rec)
	if strings.Contains(md, "Ended") {
		t.Errorf("running record must not render an end time:\n%s", md)
	}
	if strings.Contains(md, "exit code") {
		t.Errorf("running record must not render an exit code:\n%s", md)
	}
}

func TestExportJSON(t *testing.T) {
	data, err := history.ExportJSON(exportRecord())
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	var rec history.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if rec.Preset != "train dit" || rec.Argv[0] != "python3" {
		t.Fatalf("round trip lost fields: %+v", rec)
	}
}
