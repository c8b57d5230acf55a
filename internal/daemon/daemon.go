// Package daemon assembles the long-running vodkeepd process: the
// single-instance lock, the workflow manager, and the HTTP API.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"vodkeep/internal/api"
	"vodkeep/internal/config"
	"vodkeep/internal/jobs"
	"vodkeep/internal/logging"
	"vodkeep/internal/media"
	"vodkeep/internal/pipeline"
	"vodkeep/internal/services/translator"
	"vodkeep/internal/workflow"
)

// Daemon owns the process-level lifecycle.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	lock    *flock.Flock
	store   jobs.Store
	manager *workflow.Manager
	server  *APIServer
	errCh   chan error
}

// New builds an unstarted daemon from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Daemon{cfg: cfg, logger: logger, errCh: make(chan error, 1)}
}

// Start acquires the instance lock and brings up the manager and API
// server. It returns once the API is listening.
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}
	if err := d.acquireLock(); err != nil {
		return err
	}

	store, err := jobs.OpenStore(d.cfg)
	if err != nil {
		d.releaseLock()
		return fmt.Errorf("open job store: %w", err)
	}
	d.store = store

	resolver := media.NewResolver(d.cfg.Tools.YtDlp, d.logger)
	var trans pipeline.Translator
	if d.cfg.Pipeline.UploadEnabled {
		trans = translator.New(d.cfg.Tools.Translator,
			time.Duration(d.cfg.Pipeline.TranslateTimeout)*time.Second, d.logger)
	}
	executor := pipeline.NewExecutor(d.cfg, store, resolver, trans, d.logger)

	d.manager = workflow.NewManager(d.cfg, store, resolver, executor, d.logger)
	if err := d.manager.Start(ctx); err != nil {
		d.shutdownStore()
		d.releaseLock()
		return err
	}

	d.server = NewAPIServer(d.cfg.Paths.APIBind, api.NewService(d.manager), d.logger)
	if err := d.server.Start(d.errCh); err != nil {
		d.manager.Stop()
		d.shutdownStore()
		d.releaseLock()
		return err
	}

	d.logger.Info("daemon started", logging.String("api", d.server.Addr()))
	return nil
}

// Wait blocks until ctx is canceled or a component fails.
func (d *Daemon) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case err := <-d.errCh:
		return err
	}
}

// Stop tears the daemon down in reverse start order.
func (d *Daemon) Stop() {
	if d.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := d.server.Stop(shutdownCtx); err != nil {
			d.logger.Warn("api shutdown incomplete", logging.Error(err))
		}
		cancel()
	}
	if d.manager != nil {
		d.manager.Stop()
	}
	d.shutdownStore()
	d.releaseLock()
	d.logger.Info("daemon stopped")
}

// Addr returns the API server's bound address.
func (d *Daemon) Addr() string {
	if d.server == nil {
		return ""
	}
	return d.server.Addr()
}

func (d *Daemon) acquireLock() error {
	lockPath := filepath.Join(d.cfg.Paths.LogDir, "vodkeepd.lock")
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	d.lock = flock.New(lockPath)
	acquired, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("another vodkeepd instance holds %s", lockPath)
	}
	return nil
}

func (d *Daemon) releaseLock() {
	if d.lock == nil {
		return
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("instance lock release failed", logging.Error(err))
	}
	d.lock = nil
}

func (d *Daemon) shutdownStore() {
	if d.store == nil {
		return
	}
	if err := d.store.Close(); err != nil {
		d.logger.Warn("store close failed", logging.Error(err))
	}
	d.store = nil
}
