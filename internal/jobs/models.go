// Package jobs defines the job model and its persistence interface.
// A job tracks one video through the processing pipeline from
// submission to a terminal state.
package jobs

import (
	"fmt"
	"strings"
	"time"
)

// Status identifies where a job is in its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseStatus validates a status string from an API query.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusPending:
		return StatusPending, nil
	case StatusRunning:
		return StatusRunning, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusFailed:
		return StatusFailed, nil
	default:
		return "", fmt.Errorf("unknown status %q", value)
	}
}

// Result holds the artifacts of a completed job.
type Result struct {
	VideoID    string   `json:"videoId"`
	OutputDir  string   `json:"outputDir"`
	UploadURL  string   `json:"uploadUrl,omitempty"`
	ArchiveURL string   `json:"archiveUrl,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Job is one submitted video processing request.
type Job struct {
	ID           string
	SourceURL    string
	VideoID      string
	Status       Status
	CurrentStage int
	StageLabel   string
	StartedAt    time.Time
	CompletedAt  time.Time
	Result       *Result
	Error        string
	LogLines     []string
}

// NewJob builds a pending job. The id embeds the video id and
// submission time so concurrent submissions of the same video get
// distinct jobs.
func NewJob(sourceURL, videoID string, now time.Time) *Job {
	return &Job{
		ID:         fmt.Sprintf("%s_%s", videoID, now.Format("20060102_150405")),
		SourceURL:  sourceURL,
		VideoID:    videoID,
		Status:     StatusPending,
		StartedAt:  now,
		StageLabel: "Queued",
	}
}

// MarkRunning transitions the job into its active state.
func (j *Job) MarkRunning() {
	j.Status = StatusRunning
	j.StageLabel = "Starting"
}

// AdvanceStage moves CurrentStage forward to ordinal. Progress is
// monotonic; a classifier match for an earlier stage is ignored and
// the method reports whether anything changed.
func (j *Job) AdvanceStage(ordinal int, label string) bool {
	if ordinal < j.CurrentStage {
		return false
	}
	changed := ordinal > j.CurrentStage || label != j.StageLabel
	j.CurrentStage = ordinal
	if label != "" {
		j.StageLabel = label
	}
	return changed
}

// AppendLog retains line in the job's rolling log window, dropping the
// oldest lines once max is exceeded.
func (j *Job) AppendLog(line string, max int) {
	j.LogLines = append(j.LogLines, line)
	if max > 0 && len(j.LogLines) > max {
		j.LogLines = j.LogLines[len(j.LogLines)-max:]
	}
}

// MarkCompleted finalizes a successful job at finalOrdinal.
func (j *Job) MarkCompleted(finalOrdinal int, result *Result, now time.Time) {
	if finalOrdinal > j.CurrentStage {
		j.CurrentStage = finalOrdinal
	}
	j.Status = StatusCompleted
	j.StageLabel = "Completed"
	j.Result = result
	j.CompletedAt = now
}

// MarkFailed finalizes a failed job with a human-readable message.
func (j *Job) MarkFailed(message string, now time.Time) {
	j.Status = StatusFailed
	j.StageLabel = "Failed"
	j.Error = message
	j.CompletedAt = now
}

// DisplayError returns the error trimmed to a length suitable for
// list views.
func (j *Job) DisplayError(maxLen int) string {
	if maxLen <= 0 || len(j.Error) <= maxLen {
		return j.Error
	}
	if maxLen <= 3 {
		return j.Error[:maxLen]
	}
	return j.Error[:maxLen-3] + "..."
}

// Clone returns a deep copy so store callers cannot alias internal
// state.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	clone := *j
	if j.Result != nil {
		result := *j.Result
		result.Warnings = append([]string(nil), j.Result.Warnings...)
		clone.Result = &result
	}
	clone.LogLines = append([]string(nil), j.LogLines...)
	return &clone
}
