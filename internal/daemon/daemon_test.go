package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"vodkeep/internal/api"
	"vodkeep/internal/testsupport"
)

func TestDaemonStartServesAPI(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := New(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer d.Stop()

	resp, err := http.Get("http://" + d.Addr() + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var health api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" {
		t.Errorf("health = %+v", health)
	}
}

func TestSecondInstanceRefused(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first := New(cfg, nil)
	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer first.Stop()

	second := New(cfg, nil)
	err := second.Start(ctx)
	if err == nil {
		second.Stop()
		t.Fatal("second instance started despite the lock")
	}
	if !strings.Contains(err.Error(), "lock") && !strings.Contains(err.Error(), "instance") {
		t.Errorf("error = %v, want a lock conflict", err)
	}
}
