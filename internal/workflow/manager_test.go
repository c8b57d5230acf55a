package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"vodkeep/internal/jobs"
	"vodkeep/internal/services"
	"vodkeep/internal/testsupport"
)

type fakeResolver struct {
	id  string
	err error
}

func (f *fakeResolver) ResolveID(context.Context, string) (string, error) {
	return f.id, f.err
}

type fakeExecutor struct {
	mu      sync.Mutex
	store   jobs.Store
	done    chan string
	fail    bool
	blockCh chan struct{}
}

func (f *fakeExecutor) Execute(ctx context.Context, job *jobs.Job) error {
	if f.blockCh != nil {
		select {
		case <-f.blockCh:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		job.MarkFailed("stage failed", time.Now())
	} else {
		job.MarkCompleted(5, &jobs.Result{VideoID: job.VideoID}, time.Now())
	}
	if err := f.store.Update(context.Background(), job); err != nil {
		return err
	}
	if f.done != nil {
		f.done <- job.ID
	}
	return nil
}

func newManager(t *testing.T, resolver *fakeResolver, executor *fakeExecutor) (*Manager, jobs.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := jobs.NewMemoryStore()
	executor.store = store
	manager := NewManager(cfg, store, resolver, executor, nil)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(manager.Stop)
	return manager, store
}

func TestSubmitRunsJobAsynchronously(t *testing.T) {
	executor := &fakeExecutor{done: make(chan string, 1)}
	manager, store := newManager(t, &fakeResolver{id: "vid01"}, executor)

	job, err := manager.Submit(context.Background(), "https://example.com/watch?v=vid01")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if job.Status != jobs.StatusPending {
		t.Errorf("submitted job status = %q, want pending", job.Status)
	}
	if !strings.HasPrefix(job.ID, "vid01_") {
		t.Errorf("job ID = %q, want vid01_ prefix", job.ID)
	}

	select {
	case <-executor.done:
	case <-time.After(2 * time.Second):
		t.Fatal("executor never ran")
	}

	stored, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != jobs.StatusCompleted {
		t.Errorf("status = %q, want completed", stored.Status)
	}
}

func TestSubmitRejectsUnresolvableURL(t *testing.T) {
	resolverErr := services.Wrap(services.ErrValidation, "resolve", "resolve_id", "unsupported URL", nil)
	manager, store := newManager(t, &fakeResolver{err: resolverErr}, &fakeExecutor{})

	_, err := manager.Submit(context.Background(), "not-a-video")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}

	// Nothing was registered.
	all, err := store.List(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("store has %d jobs after a rejected submission", len(all))
	}
}

func TestSubmitRejectsEmptyURL(t *testing.T) {
	manager, _ := newManager(t, &fakeResolver{id: "vid01"}, &fakeExecutor{})
	if _, err := manager.Submit(context.Background(), ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestConcurrentSubmissionsGetDistinctJobs(t *testing.T) {
	executor := &fakeExecutor{done: make(chan string, 2)}
	manager, _ := newManager(t, &fakeResolver{id: "vid01"}, executor)

	first, err := manager.Submit(context.Background(), "https://example.com/watch?v=vid01")
	if err != nil {
		t.Fatal(err)
	}
	second, err := manager.Submit(context.Background(), "https://example.com/watch?v=vid01")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == second.ID {
		t.Errorf("same-second resubmission produced duplicate id %q", first.ID)
	}
}

func TestStatusQueriesDuringRun(t *testing.T) {
	executor := &fakeExecutor{blockCh: make(chan struct{})}
	manager, _ := newManager(t, &fakeResolver{id: "vid01"}, executor)

	job, err := manager.Submit(context.Background(), "https://example.com/watch?v=vid01")
	if err != nil {
		t.Fatal(err)
	}

	// While the executor is blocked mid-run the job stays queryable.
	stored, err := manager.GetStatus(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetStatus during run: %v", err)
	}
	if stored.Status.Terminal() {
		t.Errorf("status = %q before executor finished", stored.Status)
	}

	list, err := manager.ListJobs(context.Background(), jobs.StatusPending)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("pending list has %d jobs, want 1", len(list))
	}

	close(executor.blockCh)
}

func TestGetStatusUnknownJob(t *testing.T) {
	manager, _ := newManager(t, &fakeResolver{id: "vid01"}, &fakeExecutor{})
	if _, err := manager.GetStatus(context.Background(), "missing"); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("error = %v, want jobs.ErrNotFound", err)
	}
}

func TestStopWaitsForRunningJobs(t *testing.T) {
	executor := &fakeExecutor{blockCh: make(chan struct{})}
	manager, store := newManager(t, &fakeResolver{id: "vid01"}, executor)

	job, err := manager.Submit(context.Background(), "https://example.com/watch?v=vid01")
	if err != nil {
		t.Fatal(err)
	}

	stopped := make(chan struct{})
	go func() {
		manager.Stop()
		close(stopped)
	}()

	// Stop cancels the run context; the blocked executor observes it
	// and returns, letting Stop finish.
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	if _, err := store.GetByID(context.Background(), job.ID); err != nil {
		t.Errorf("job lost after Stop: %v", err)
	}
}

func TestSubmitAfterStopFails(t *testing.T) {
	manager, _ := newManager(t, &fakeResolver{id: "vid01"}, &fakeExecutor{})
	manager.Stop()
	if _, err := manager.Submit(context.Background(), "https://example.com/v"); err == nil {
		t.Fatal("Submit accepted after Stop")
	}
}
