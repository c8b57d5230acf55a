package translator

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"testing"
	"time"

	"vodkeep/internal/workdir"
)

func stubCommand(t *testing.T, script string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", script)
	}
	t.Cleanup(func() { commandContext = original })
}

func newLayout(t *testing.T) workdir.Layout {
	t.Helper()
	layout := workdir.New(t.TempDir(), "vid01")
	if err := layout.Ensure(); err != nil {
		t.Fatal(err)
	}
	meta := []byte(`{"id":"vid01","title":"원래 제목","description":"원래 설명"}`)
	if err := os.WriteFile(layout.Path(workdir.MetadataFile), meta, 0o644); err != nil {
		t.Fatal(err)
	}
	return layout
}

func readTranslated(t *testing.T, layout workdir.Layout) Translation {
	t.Helper()
	data, err := os.ReadFile(layout.Path(workdir.TranslatedMetadataFile))
	if err != nil {
		t.Fatalf("read translated metadata: %v", err)
	}
	var out Translation
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestEnsureWritesTranslation(t *testing.T) {
	stubCommand(t, `cat >/dev/null; printf '{"title":"Original Title","description":"Original Description"}'`)
	layout := newLayout(t)

	service := New("vk-translate", time.Minute, nil)
	warning, err := service.Ensure(context.Background(), layout)
	if err != nil {
		t.Fatalf("Ensure returned error: %v", err)
	}
	if warning != "" {
		t.Errorf("unexpected warning: %q", warning)
	}

	got := readTranslated(t, layout)
	if got.Title != "Original Title" {
		t.Errorf("Title = %q", got.Title)
	}
}

func TestEnsureFallsBackOnFailure(t *testing.T) {
	stubCommand(t, `echo 'quota exceeded' >&2; exit 1`)
	layout := newLayout(t)

	service := New("vk-translate", time.Minute, nil)
	warning, err := service.Ensure(context.Background(), layout)
	if err != nil {
		t.Fatalf("Ensure returned error: %v", err)
	}
	if warning == "" {
		t.Fatal("expected a degradation warning")
	}

	got := readTranslated(t, layout)
	if got.Title != "원래 제목" {
		t.Errorf("fallback Title = %q, want original", got.Title)
	}
}

func TestEnsureFallsBackOnInvalidJSON(t *testing.T) {
	stubCommand(t, `cat >/dev/null; echo 'not json'`)
	layout := newLayout(t)

	service := New("vk-translate", time.Minute, nil)
	warning, err := service.Ensure(context.Background(), layout)
	if err != nil {
		t.Fatal(err)
	}
	if warning == "" {
		t.Fatal("expected a degradation warning")
	}
	if got := readTranslated(t, layout); got.Title != "원래 제목" {
		t.Errorf("fallback Title = %q", got.Title)
	}
}

func TestEnsureReusesExistingFile(t *testing.T) {
	stubCommand(t, `echo should-not-run >&2; exit 97`)
	layout := newLayout(t)

	cached := []byte(`{"title":"Cached","description":""}`)
	if err := os.WriteFile(layout.Path(workdir.TranslatedMetadataFile), cached, 0o644); err != nil {
		t.Fatal(err)
	}

	service := New("vk-translate", time.Minute, nil)
	warning, err := service.Ensure(context.Background(), layout)
	if err != nil || warning != "" {
		t.Fatalf("Ensure = %q, %v; want clean reuse", warning, err)
	}
	if got := readTranslated(t, layout); got.Title != "Cached" {
		t.Errorf("Title = %q, cached file was overwritten", got.Title)
	}
}
