// Package workflow owns job orchestration: it accepts submissions,
// resolves video identity, and runs each accepted job through the
// pipeline on its own goroutine.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"vodkeep/internal/config"
	"vodkeep/internal/jobs"
	"vodkeep/internal/logging"
	"vodkeep/internal/services"
)

// IDResolver resolves a source URL to its canonical video id.
type IDResolver interface {
	ResolveID(ctx context.Context, sourceURL string) (string, error)
}

// JobExecutor runs one job to a terminal state.
type JobExecutor interface {
	Execute(ctx context.Context, job *jobs.Job) error
}

// Manager coordinates the submit-and-process lifecycle. Submissions
// are accepted synchronously (identity resolution included) and
// processed asynchronously.
type Manager struct {
	cfg      *config.Config
	store    jobs.Store
	resolver IDResolver
	executor JobExecutor
	logger   *slog.Logger

	mu      sync.Mutex
	runCtx  context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewManager wires a manager over the given collaborators.
func NewManager(cfg *config.Config, store jobs.Store, resolver IDResolver, executor JobExecutor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		store:    store,
		resolver: resolver,
		executor: executor,
		logger:   logger,
	}
}

// Start makes the manager ready to accept submissions. Jobs started
// after this run until Stop cancels them.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return errors.New("manager already started")
	}
	m.runCtx, m.cancel = context.WithCancel(ctx)
	m.started = true
	m.logger.Info("workflow manager started")
	return nil
}

// Stop cancels running jobs and waits for their goroutines to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	m.cancel()
	m.mu.Unlock()

	m.wg.Wait()
	m.logger.Info("workflow manager stopped")
}

// Submit validates and registers a new job, then launches its
// processing goroutine. The returned job is the pending snapshot;
// callers poll GetStatus for progress.
func (m *Manager) Submit(ctx context.Context, sourceURL string) (*jobs.Job, error) {
	if sourceURL == "" {
		return nil, services.Wrap(services.ErrValidation, "submit", "", "url must not be empty", nil)
	}

	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return nil, errors.New("manager not started")
	}
	runCtx := m.runCtx
	m.mu.Unlock()

	resolveCtx, cancel := context.WithTimeout(ctx, time.Duration(m.cfg.Pipeline.ResolveTimeout)*time.Second)
	defer cancel()
	videoID, err := m.resolver.ResolveID(resolveCtx, sourceURL)
	if err != nil {
		return nil, err
	}

	job, err := m.createJob(ctx, sourceURL, videoID)
	if err != nil {
		return nil, err
	}

	m.wg.Add(1)
	go m.runJob(runCtx, job)

	m.logger.Info("job submitted",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldVideoID, videoID))
	return job.Clone(), nil
}

// createJob registers the job, retrying with a later timestamp when a
// resubmission of the same video lands within the same second.
func (m *Manager) createJob(ctx context.Context, sourceURL, videoID string) (*jobs.Job, error) {
	now := time.Now()
	for attempt := 0; attempt < 3; attempt++ {
		job := jobs.NewJob(sourceURL, videoID, now.Add(time.Duration(attempt)*time.Second))
		err := m.store.Create(ctx, job)
		if err == nil {
			return job, nil
		}
		if !errors.Is(err, jobs.ErrDuplicateID) {
			return nil, fmt.Errorf("register job: %w", err)
		}
	}
	return nil, fmt.Errorf("register job: %w", jobs.ErrDuplicateID)
}

func (m *Manager) runJob(ctx context.Context, job *jobs.Job) {
	defer m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("job panicked",
				logging.String(logging.FieldJobID, job.ID),
				logging.Any("panic", r))
			job.MarkFailed(fmt.Sprintf("internal error: %v", r), time.Now())
			if err := m.store.Update(context.Background(), job); err != nil {
				m.logger.Error("could not record panic failure", logging.Error(err))
			}
		}
	}()

	if err := m.executor.Execute(ctx, job); err != nil {
		m.logger.Error("job processing failed",
			logging.String(logging.FieldJobID, job.ID),
			logging.Error(err))
	}
}

// GetStatus returns the stored snapshot of a job.
func (m *Manager) GetStatus(ctx context.Context, id string) (*jobs.Job, error) {
	return m.store.GetByID(ctx, id)
}

// ListJobs returns jobs, newest first, optionally filtered by status.
func (m *Manager) ListJobs(ctx context.Context, status jobs.Status) ([]*jobs.Job, error) {
	return m.store.List(ctx, status)
}

// Logs returns the retained log window for a job.
func (m *Manager) Logs(ctx context.Context, id string) ([]string, error) {
	job, err := m.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return job.LogLines, nil
}
