package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"vodkeep/internal/logging"
	"vodkeep/internal/services"
)

// commandContext allows tests to stub subprocess creation.
var commandContext = exec.CommandContext

// Runner executes one stage command, streaming its combined output
// line by line to onLine while the process runs.
type Runner struct {
	logger *slog.Logger
}

// NewRunner returns a Runner logging through logger.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{logger: logger}
}

// Run starts the stage's command and blocks until it exits. Every
// output line is delivered to onLine before Run returns. Stage
// timeouts yield ErrTimeout; other non-zero exits yield
// ErrExternalTool.
func (r *Runner) Run(ctx context.Context, stage Stage, req Request, onLine func(string)) error {
	runCtx := ctx
	var cancel context.CancelFunc
	if stage.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, stage.Timeout)
		defer cancel()
	}

	binary, args := stage.Command(req)
	r.logger.Info("starting stage command",
		logging.String(logging.FieldStage, stage.Name),
		logging.String("binary", binary))

	cmd := commandContext(runCtx, binary, args...)
	cmd.Dir = req.WorkDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("attach stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalTool, stage.Name, "start",
			fmt.Sprintf("could not start %q", binary), err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		onLine(scanner.Text())
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	if waitErr != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, stage.Name, "run",
				fmt.Sprintf("stage exceeded its %s timeout", stage.Timeout), runCtx.Err())
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrExternalTool, stage.Name, "run",
			fmt.Sprintf("%q exited with an error", binary), waitErr)
	}
	if scanErr != nil {
		return fmt.Errorf("read stage output: %w", scanErr)
	}
	return nil
}
