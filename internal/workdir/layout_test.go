package workdir

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureCreatesLogsDir(t *testing.T) {
	layout := New(t.TempDir(), "abc123")
	if err := layout.Ensure(); err != nil {
		t.Fatalf("Ensure returned error: %v", err)
	}
	info, err := os.Stat(filepath.Join(layout.Root(), LogsDir))
	if err != nil {
		t.Fatalf("logs dir missing: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("logs path is not a directory")
	}
}

func TestExistsIgnoresEmptyFiles(t *testing.T) {
	layout := New(t.TempDir(), "abc123")
	if err := layout.Ensure(); err != nil {
		t.Fatal(err)
	}

	if layout.Exists(NotesFile) {
		t.Error("Exists true for absent file")
	}
	if err := os.WriteFile(layout.Path(NotesFile), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if layout.Exists(NotesFile) {
		t.Error("Exists true for zero-byte file")
	}
	if err := os.WriteFile(layout.Path(NotesFile), []byte("# notes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !layout.Exists(NotesFile) {
		t.Error("Exists false for non-empty file")
	}
}

func TestSourceFileCleanup(t *testing.T) {
	layout := New(t.TempDir(), "abc123")
	if err := layout.Ensure(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"source.mp4", "source.webm", "burnin.mp4"} {
		if err := os.WriteFile(layout.Path(name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := layout.SourceFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("SourceFiles returned %d files, want 2", len(files))
	}

	if err := layout.RemoveSourceFiles(); err != nil {
		t.Fatalf("RemoveSourceFiles returned error: %v", err)
	}
	files, err = layout.SourceFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("source files remain after cleanup: %v", files)
	}
	if !layout.Exists(BurnInFile) {
		t.Error("cleanup removed a non-source file")
	}
}

func TestSubtitleFile(t *testing.T) {
	if got := SubtitleFile("ko"); got != "ko.srt" {
		t.Errorf("SubtitleFile = %q, want ko.srt", got)
	}
}
