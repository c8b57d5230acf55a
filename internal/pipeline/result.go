package pipeline

import (
	"encoding/json"
	"os"

	"vodkeep/internal/jobs"
	"vodkeep/internal/workdir"
)

// buildResult assembles the job result from the side-channel files the
// upload and archive tools leave in the working directory. Missing or
// unreadable files simply leave their field empty; the stages
// themselves already decided success.
func buildResult(job *jobs.Job, layout workdir.Layout, warnings []string) *jobs.Result {
	return &jobs.Result{
		VideoID:    job.VideoID,
		OutputDir:  layout.Root(),
		UploadURL:  readInfoURL(layout.Path(workdir.UploadInfoFile), "url", "uploadUrl", "upload_url"),
		ArchiveURL: readInfoURL(layout.Path(workdir.ArchiveInfoFile), "url", "archiveUrl", "archive_url"),
		Warnings:   warnings,
	}
}

func readInfoURL(path string, keys ...string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	for _, key := range keys {
		if value, ok := payload[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}
