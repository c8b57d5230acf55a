package api

import (
	"context"

	"vodkeep/internal/jobs"
)

// Orchestrator is the workflow surface the API needs.
type Orchestrator interface {
	Submit(ctx context.Context, sourceURL string) (*jobs.Job, error)
	GetStatus(ctx context.Context, id string) (*jobs.Job, error)
	ListJobs(ctx context.Context, status jobs.Status) ([]*jobs.Job, error)
	Logs(ctx context.Context, id string) ([]string, error)
}

// Service translates between wire types and the orchestrator.
type Service struct {
	orchestrator Orchestrator
}

// NewService returns a Service backed by orchestrator.
func NewService(orchestrator Orchestrator) *Service {
	return &Service{orchestrator: orchestrator}
}

// Submit accepts a processing request and returns the acknowledgment.
func (s *Service) Submit(ctx context.Context, req ProcessRequest) (ProcessResponse, error) {
	job, err := s.orchestrator.Submit(ctx, req.URL)
	if err != nil {
		return ProcessResponse{}, err
	}
	return ProcessResponse{JobID: job.ID, Message: "processing started"}, nil
}

// Describe returns the snapshot of one job.
func (s *Service) Describe(ctx context.Context, id string) (JobSnapshot, error) {
	job, err := s.orchestrator.GetStatus(ctx, id)
	if err != nil {
		return JobSnapshot{}, err
	}
	return FromJob(job), nil
}

// List returns snapshots, optionally filtered by a validated status.
func (s *Service) List(ctx context.Context, status jobs.Status) (JobListResponse, error) {
	list, err := s.orchestrator.ListJobs(ctx, status)
	if err != nil {
		return JobListResponse{}, err
	}
	return JobListResponse{Jobs: FromJobs(list)}, nil
}

// Logs returns the retained log window of one job.
func (s *Service) Logs(ctx context.Context, id string) (JobLogsResponse, error) {
	lines, err := s.orchestrator.Logs(ctx, id)
	if err != nil {
		return JobLogsResponse{}, err
	}
	if lines == nil {
		lines = []string{}
	}
	return JobLogsResponse{JobID: id, Lines: lines}, nil
}
