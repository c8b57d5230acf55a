package api

import (
	"time"

	"vodkeep/internal/jobs"
)

// displayErrorLimit bounds the error text in snapshots; the full
// message stays in the daemon log.
const displayErrorLimit = 500

// FromJob converts a stored job into its wire representation.
func FromJob(job *jobs.Job) JobSnapshot {
	snapshot := JobSnapshot{
		ID:           job.ID,
		SourceURL:    job.SourceURL,
		VideoID:      job.VideoID,
		Status:       string(job.Status),
		CurrentStage: job.CurrentStage,
		StageLabel:   job.StageLabel,
		StartedAt:    job.StartedAt.UTC().Format(time.RFC3339),
		Error:        job.DisplayError(displayErrorLimit),
	}
	if !job.CompletedAt.IsZero() {
		snapshot.CompletedAt = job.CompletedAt.UTC().Format(time.RFC3339)
	}
	if job.Result != nil {
		snapshot.Result = &ResultPayload{
			VideoID:    job.Result.VideoID,
			OutputDir:  job.Result.OutputDir,
			UploadURL:  job.Result.UploadURL,
			ArchiveURL: job.Result.ArchiveURL,
			Warnings:   job.Result.Warnings,
		}
	}
	return snapshot
}

// FromJobs converts a job list, preserving order.
func FromJobs(list []*jobs.Job) []JobSnapshot {
	snapshots := make([]JobSnapshot, 0, len(list))
	for _, job := range list {
		snapshots = append(snapshots, FromJob(job))
	}
	return snapshots
}
