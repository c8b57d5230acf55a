// Package api defines the HTTP wire types of the status-query surface
// and the service that backs it.
package api

// ProcessRequest is the body of POST /jobs.
type ProcessRequest struct {
	URL string `json:"url"`
}

// ProcessResponse acknowledges an accepted submission.
type ProcessResponse struct {
	JobID   string `json:"jobId"`
	Message string `json:"message"`
}

// ResultPayload mirrors a completed job's artifacts.
type ResultPayload struct {
	VideoID    string   `json:"videoId"`
	OutputDir  string   `json:"outputDir"`
	UploadURL  string   `json:"uploadUrl,omitempty"`
	ArchiveURL string   `json:"archiveUrl,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// JobSnapshot is the externally visible view of one job.
type JobSnapshot struct {
	ID           string         `json:"id"`
	SourceURL    string         `json:"sourceUrl"`
	VideoID      string         `json:"videoId"`
	Status       string         `json:"status"`
	CurrentStage int            `json:"currentStage"`
	StageLabel   string         `json:"stageLabel"`
	StartedAt    string         `json:"startedAt"`
	CompletedAt  string         `json:"completedAt,omitempty"`
	Result       *ResultPayload `json:"result,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// JobListResponse is the body of GET /jobs.
type JobListResponse struct {
	Jobs []JobSnapshot `json:"jobs"`
}

// JobLogsResponse is the body of GET /jobs/{id}/logs.
type JobLogsResponse struct {
	JobID string   `json:"jobId"`
	Lines []string `json:"lines"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse carries a client-facing failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}
