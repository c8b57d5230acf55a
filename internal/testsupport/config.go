// Package testsupport provides helpers shared by package tests:
// throwaway configurations, stores, stubbed external binaries, and
// checkpoint fixtures.
package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"vodkeep/internal/config"
)

// NewConfig returns a validated configuration rooted in temporary
// directories, suitable for exercising the pipeline without touching
// the user's library.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()

	cfg := config.Default()
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Store.Backend = "memory"

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("prepare test directories: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithStubbedBinaries writes each named script as an executable shell
// stub and prepends the stub directory to PATH for the duration of the
// test. Scripts run under sh and receive the real arguments.
func WithStubbedBinaries(t *testing.T, scripts map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, body := range scripts {
		path := filepath.Join(dir, name)
		content := fmt.Sprintf("#!/bin/sh\n%s\n", body)
		if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}
