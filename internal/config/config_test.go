package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for a missing config file")
	}
	if cfg.Paths.APIBind != defaultAPIBind {
		t.Errorf("APIBind = %q, want %q", cfg.Paths.APIBind, defaultAPIBind)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Pipeline.MaxLogLines != defaultMaxLogLines {
		t.Errorf("MaxLogLines = %d, want %d", cfg.Pipeline.MaxLogLines, defaultMaxLogLines)
	}
	if !cfg.Pipeline.UploadEnabled || !cfg.Pipeline.ArchiveEnabled {
		t.Error("expected upload and archive stages enabled by default")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
library_dir = "` + filepath.Join(dir, "lib") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[store]
backend = "SQLite"

[pipeline]
subtitle_language = "KO"
archive_timeout = 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v, want %q true", resolved, exists, path)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("Store.Backend = %q, want sqlite", cfg.Store.Backend)
	}
	wantStore := filepath.Join(dir, "logs", "jobs.db")
	if cfg.Store.Path != wantStore {
		t.Errorf("Store.Path = %q, want %q", cfg.Store.Path, wantStore)
	}
	if cfg.Pipeline.SubtitleLanguage != "ko" {
		t.Errorf("SubtitleLanguage = %q, want ko", cfg.Pipeline.SubtitleLanguage)
	}
	if cfg.Pipeline.ArchiveTimeout != defaultArchiveTimeout {
		t.Errorf("ArchiveTimeout = %d, want default %d backfill", cfg.Pipeline.ArchiveTimeout, defaultArchiveTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VODKEEP_API_BIND", "0.0.0.0:9000")
	t.Setenv("VODKEEP_LOG_LEVEL", "debug")

	cfg, _, _, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIBind != "0.0.0.0:9000" {
		t.Errorf("APIBind = %q, want env override", cfg.Paths.APIBind)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "unknown store backend",
			mutate:  func(c *Config) { c.Store.Backend = "redis" },
			wantSub: "store.backend",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Store.Backend = "sqlite"; c.Store.Path = "" },
			wantSub: "store.path",
		},
		{
			name:    "upload without burn-in",
			mutate:  func(c *Config) { c.Pipeline.BurnInEnabled = false },
			wantSub: "burnin_enabled",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "yaml" },
			wantSub: "logging.format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestExpandPathHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/videos")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "videos") {
		t.Errorf("expandPath = %q, want %q", got, filepath.Join(home, "videos"))
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[pipeline]") {
		t.Error("sample config missing [pipeline] section")
	}
}
