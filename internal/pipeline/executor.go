package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"vodkeep/internal/config"
	"vodkeep/internal/jobs"
	"vodkeep/internal/logging"
	"vodkeep/internal/media"
	"vodkeep/internal/services"
	"vodkeep/internal/workdir"
)

// MetadataFetcher supplies video metadata for a working directory.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, sourceURL string, layout workdir.Layout) (*media.Metadata, error)
}

// Translator produces the translated metadata file used by the upload
// stage. It returns a warning string when it had to fall back to the
// untranslated metadata.
type Translator interface {
	Ensure(ctx context.Context, layout workdir.Layout) (warning string, err error)
}

// Executor drives one job through the stage sequence. It is the sole
// writer of the job while Execute runs; the store holds the canonical
// copy that API readers see.
type Executor struct {
	cfg        *config.Config
	store      jobs.Store
	metadata   MetadataFetcher
	translator Translator
	runner     *Runner
	logger     *slog.Logger
}

// NewExecutor wires an executor. translator may be nil when the upload
// stage is disabled.
func NewExecutor(cfg *config.Config, store jobs.Store, metadata MetadataFetcher, translator Translator, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{
		cfg:        cfg,
		store:      store,
		metadata:   metadata,
		translator: translator,
		runner:     NewRunner(logger),
		logger:     logger,
	}
}

// Execute runs the pipeline for job and moves it to a terminal state.
// The returned error mirrors what was recorded on the job; callers
// use it for logging only.
func (e *Executor) Execute(ctx context.Context, job *jobs.Job) error {
	logger := e.logger.With(logging.String(logging.FieldJobID, job.ID), logging.String(logging.FieldVideoID, job.VideoID))

	layout := workdir.New(e.cfg.Paths.LibraryDir, job.VideoID)
	if err := layout.Ensure(); err != nil {
		return e.fail(ctx, job, logger, fmt.Sprintf("could not prepare working directory: %v", err), err)
	}

	runLog, err := e.openRunLog(layout)
	if err != nil {
		return e.fail(ctx, job, logger, fmt.Sprintf("could not open run log: %v", err), err)
	}
	defer runLog.Close()

	job.MarkRunning()
	if err := e.store.Update(ctx, job); err != nil {
		return err
	}

	if _, err := e.metadata.FetchMetadata(ctx, job.SourceURL, layout); err != nil {
		return e.fail(ctx, job, logger, fmt.Sprintf("metadata: %s", services.Details(err)), err)
	}

	stages := Stages(e.cfg)
	classifier := NewRuleClassifier(stages)
	req := Request{
		SourceURL: job.SourceURL,
		WorkDir:   layout.Root(),
		Language:  e.cfg.Pipeline.SubtitleLanguage,
		DryRun:    e.cfg.Pipeline.DryRun,
	}

	var warnings []string
	reached := 0
	for _, stage := range stages {
		if stage.Satisfied(layout) {
			job.AdvanceStage(stage.Ordinal, CachedLabel(stage))
			reached = stage.Ordinal
			if err := e.store.Update(ctx, job); err != nil {
				return err
			}
			logger.Info("stage skipped, checkpoints present", logging.String(logging.FieldStage, stage.Name))
			continue
		}

		if stage.Name == "upload" && e.translator != nil {
			warning, err := e.translator.Ensure(ctx, layout)
			if err != nil {
				warning = fmt.Sprintf("metadata translation failed: %v", services.Details(err))
			}
			if warning != "" {
				warnings = append(warnings, warning)
				logger.Warn("metadata translation degraded", logging.String("detail", warning))
			}
		}

		err := e.runner.Run(ctx, stage, req, func(line string) {
			fmt.Fprintln(runLog, line)
			job.AppendLog(line, e.cfg.Pipeline.MaxLogLines)
			if update, ok := classifier.Classify(line); ok {
				job.AdvanceStage(update.Ordinal, update.Label)
			}
			if updateErr := e.store.Update(ctx, job); updateErr != nil {
				logger.Warn("store update failed during stage", logging.Error(updateErr))
			}
		})
		if err == nil && !req.DryRun && !stage.Satisfied(layout) {
			err = services.Wrap(services.ErrExternalTool, stage.Name, "verify",
				fmt.Sprintf("stage exited cleanly but checkpoints %v are missing", stage.Checkpoints), nil)
		}
		if err != nil {
			if ctx.Err() != nil && !stage.BestEffort {
				return e.fail(ctx, job, logger, "job canceled", ctx.Err())
			}
			if stage.BestEffort {
				warning := fmt.Sprintf("%s stage skipped: %v", stage.Name, services.Details(err))
				warnings = append(warnings, warning)
				logger.Warn("best-effort stage failed",
					logging.String(logging.FieldStage, stage.Name),
					logging.Error(err))
				continue
			}
			return e.fail(ctx, job, logger, fmt.Sprintf("stage %d failed: %s", stage.Ordinal, services.Details(err)), err)
		}

		job.AdvanceStage(stage.Ordinal, stage.Label)
		reached = stage.Ordinal
		if err := e.store.Update(ctx, job); err != nil {
			return err
		}
		logger.Info("stage completed", logging.String(logging.FieldStage, stage.Name))
	}

	if !e.cfg.Pipeline.KeepSource && !e.cfg.Pipeline.DryRun {
		if err := layout.RemoveSourceFiles(); err != nil {
			warnings = append(warnings, fmt.Sprintf("source cleanup failed: %v", err))
		}
	}

	result := buildResult(job, layout, warnings)
	job.MarkCompleted(reached, result, time.Now())
	if err := e.store.Update(ctx, job); err != nil {
		return err
	}
	logger.Info("job completed",
		logging.Int("stage", job.CurrentStage),
		logging.Int("warnings", len(warnings)))
	return nil
}

func (e *Executor) fail(ctx context.Context, job *jobs.Job, logger *slog.Logger, message string, cause error) error {
	job.MarkFailed(message, time.Now())
	if err := e.store.Update(ctx, job); err != nil {
		logger.Error("could not record job failure", logging.Error(err))
	}
	logger.Error("job failed", logging.String("reason", message), logging.Error(cause))
	return cause
}

func (e *Executor) openRunLog(layout workdir.Layout) (*os.File, error) {
	name := fmt.Sprintf("%s/run_%s.log", workdir.LogsDir, time.Now().Format("20060102_150405"))
	return os.OpenFile(layout.Path(name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
