package pipeline

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"vodkeep/internal/services"
	"vodkeep/internal/testsupport"
)

func newStage(name string, timeout time.Duration) Stage {
	return Stage{
		Ordinal:  1,
		Name:     name,
		Label:    "Testing",
		Progress: regexp.MustCompile(`step 1`),
		Command: func(req Request) (string, []string) {
			return name, []string{req.SourceURL}
		},
		Timeout: timeout,
	}
}

func TestRunStreamsInterleavedOutput(t *testing.T) {
	testsupport.WithStubbedBinaries(t, map[string]string{
		"tool-ok": `echo out-line; echo err-line >&2; echo done`,
	})

	var lines []string
	runner := NewRunner(nil)
	err := runner.Run(context.Background(), newStage("tool-ok", 0), Request{SourceURL: "u", WorkDir: t.TempDir()}, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines %v, want 3", len(lines), lines)
	}
	// stderr is merged into the same stream.
	seen := map[string]bool{}
	for _, line := range lines {
		seen[line] = true
	}
	if !seen["err-line"] {
		t.Errorf("stderr line missing from stream: %v", lines)
	}
}

func TestRunNonZeroExitIsExternalTool(t *testing.T) {
	testsupport.WithStubbedBinaries(t, map[string]string{
		"tool-fail": `echo before-failure; exit 3`,
	})

	var lines []string
	runner := NewRunner(nil)
	err := runner.Run(context.Background(), newStage("tool-fail", 0), Request{SourceURL: "u", WorkDir: t.TempDir()}, func(line string) {
		lines = append(lines, line)
	})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("error = %v, want ErrExternalTool", err)
	}
	// Output emitted before the failure is still delivered.
	if len(lines) != 1 || lines[0] != "before-failure" {
		t.Errorf("lines = %v", lines)
	}
}

func TestRunTimeout(t *testing.T) {
	testsupport.WithStubbedBinaries(t, map[string]string{
		"tool-slow": `sleep 5`,
	})

	runner := NewRunner(nil)
	start := time.Now()
	err := runner.Run(context.Background(), newStage("tool-slow", 200*time.Millisecond), Request{SourceURL: "u", WorkDir: t.TempDir()}, func(string) {})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("timeout took %s, process was not killed promptly", elapsed)
	}
}

func TestRunCancellation(t *testing.T) {
	testsupport.WithStubbedBinaries(t, map[string]string{
		"tool-slow": `sleep 5`,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	runner := NewRunner(nil)
	err := runner.Run(ctx, newStage("tool-slow", 0), Request{SourceURL: "u", WorkDir: t.TempDir()}, func(string) {})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
