package jobs

import (
	"strings"
	"testing"
	"time"
)

func TestNewJobIDEmbedsVideoAndTime(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	job := NewJob("https://example.com/watch?v=abc123", "abc123", now)

	if job.ID != "abc123_20250314_092653" {
		t.Errorf("ID = %q, want abc123_20250314_092653", job.ID)
	}
	if job.Status != StatusPending {
		t.Errorf("Status = %q, want pending", job.Status)
	}
	if job.CurrentStage != 0 {
		t.Errorf("CurrentStage = %d, want 0", job.CurrentStage)
	}
}

func TestAdvanceStageIsMonotonic(t *testing.T) {
	job := NewJob("u", "v", time.Now())
	job.MarkRunning()

	if !job.AdvanceStage(3, "Generating notes") {
		t.Fatal("advance to 3 reported no change")
	}
	if job.AdvanceStage(1, "Generating subtitles") {
		t.Error("advance to earlier stage reported a change")
	}
	if job.CurrentStage != 3 || job.StageLabel != "Generating notes" {
		t.Errorf("stage = %d %q after stale update, want 3 Generating notes", job.CurrentStage, job.StageLabel)
	}
	if !job.AdvanceStage(4, "Uploading video") {
		t.Error("advance to 4 reported no change")
	}
}

func TestAppendLogCapsWindow(t *testing.T) {
	job := NewJob("u", "v", time.Now())
	for i := 0; i < 10; i++ {
		job.AppendLog(strings.Repeat("x", i+1), 4)
	}
	if len(job.LogLines) != 4 {
		t.Fatalf("retained %d lines, want 4", len(job.LogLines))
	}
	if job.LogLines[0] != strings.Repeat("x", 7) {
		t.Errorf("oldest retained line = %q, want the 7th", job.LogLines[0])
	}
}

func TestMarkCompletedAdvancesStage(t *testing.T) {
	job := NewJob("u", "v", time.Now())
	job.MarkRunning()
	job.AdvanceStage(2, "Burning in subtitles")
	job.MarkCompleted(5, &Result{VideoID: "v"}, time.Now())

	if job.CurrentStage != 5 {
		t.Errorf("CurrentStage = %d, want 5", job.CurrentStage)
	}
	if !job.Status.Terminal() {
		t.Error("completed job not terminal")
	}
	if job.CompletedAt.IsZero() {
		t.Error("CompletedAt not set")
	}
}

func TestCloneIsDeep(t *testing.T) {
	job := NewJob("u", "v", time.Now())
	job.Result = &Result{VideoID: "v", Warnings: []string{"w1"}}
	job.LogLines = []string{"line"}

	clone := job.Clone()
	clone.Result.Warnings[0] = "mutated"
	clone.LogLines[0] = "mutated"

	if job.Result.Warnings[0] != "w1" || job.LogLines[0] != "line" {
		t.Error("clone aliases original slices")
	}
}

func TestParseStatus(t *testing.T) {
	if _, err := ParseStatus("Running"); err != nil {
		t.Errorf("ParseStatus(Running) error: %v", err)
	}
	if _, err := ParseStatus("paused"); err == nil {
		t.Error("ParseStatus(paused) accepted an unknown status")
	}
}

func TestDisplayErrorTruncates(t *testing.T) {
	job := NewJob("u", "v", time.Now())
	job.Error = strings.Repeat("e", 100)
	got := job.DisplayError(20)
	if len(got) != 20 || !strings.HasSuffix(got, "...") {
		t.Errorf("DisplayError = %q, want 20 chars ending in ...", got)
	}
}
