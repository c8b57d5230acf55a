package testsupport

import (
	"encoding/json"
	"os"
	"testing"

	"vodkeep/internal/workdir"
)

// WriteCheckpoint places a non-empty checkpoint file into the layout.
func WriteCheckpoint(t *testing.T, layout workdir.Layout, name string) {
	t.Helper()
	WriteFile(t, layout, name, []byte("checkpoint"))
}

// WriteFile writes arbitrary content into the layout.
func WriteFile(t *testing.T, layout workdir.Layout, name string, content []byte) {
	t.Helper()
	if err := layout.Ensure(); err != nil {
		t.Fatalf("ensure layout: %v", err)
	}
	if err := os.WriteFile(layout.Path(name), content, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// WriteJSON marshals payload into the layout under name.
func WriteJSON(t *testing.T, layout workdir.Layout, name string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	WriteFile(t, layout, name, data)
}
