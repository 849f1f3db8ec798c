package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()

	if cfg.NATS.Port != 4222 {
		t.Errorf("expected nats port 4222, got %d", cfg.NATS.Port)
	}
	if cfg.Store.Path != "data/smenos.db" {
		t.Errorf("expected store path data/smenos.db, got %s", cfg.Store.Path)
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("expected web port 8080, got %d", cfg.Web.Port)
	}
	if !cfg.Web.Enabled {
		t.Error("expected web enabled by default")
	}
	if cfg.History.Capacity != 100 {
		t.Errorf("expected history capacity 100, got %d", cfg.History.Capacity)
	}
	if cfg.Defaults.Timeout != 30*time.Second {
		t.Errorf("expected default agent timeout 30s, got %v", cfg.Defaults.Timeout)
	}
	if cfg.Defaults.Retries != 2 {
		t.Errorf("expected default retries 2, got %d", cfg.Defaults.Retries)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	// Point config to a non-existent file so we use defaults
	t.Setenv("SMENOS_CONFIG", "/nonexistent/config.yaml")
	t.Setenv("SMENOS_STORE_PATH", "/tmp/other.db")
	t.Setenv("SMENOS_WEB_PORT", "9090")
	t.Setenv("SMENOS_HISTORY_CAPACITY", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Store.Path != "/tmp/other.db" {
		t.Errorf("expected store path /tmp/other.db, got %s", cfg.Store.Path)
	}
	if cfg.Web.Port != 9090 {
		t.Errorf("expected web port 9090, got %d", cfg.Web.Port)
	}
	if cfg.History.Capacity != 50 {
		t.Errorf("expected history capacity 50, got %d", cfg.History.Capacity)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smenos.yaml")

	content := `
defaults:
  timeout: 10s
  retries: 1
agents:
  product:
    description: Product matcher
    timeout: 45s
  stock:
    description: Stock predictor
    retries: 0
swarms:
  - name: nightly
    schedule: "0 3 * * *"
    agent_types: [price, stock]
    task:
      price: 10
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SMENOS_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	product := cfg.Agents["product"]
	if product.ResolveTimeout(cfg.Defaults) != 45*time.Second {
		t.Errorf("expected product timeout 45s, got %v", product.ResolveTimeout(cfg.Defaults))
	}
	if product.ResolveRetries(cfg.Defaults) != 1 {
		t.Errorf("expected product to inherit retries 1, got %d", product.ResolveRetries(cfg.Defaults))
	}

	stock := cfg.Agents["stock"]
	if stock.ResolveTimeout(cfg.Defaults) != 10*time.Second {
		t.Errorf("expected stock to inherit timeout 10s, got %v", stock.ResolveTimeout(cfg.Defaults))
	}
	// Explicit retries: 0 must not fall back to the default.
	if stock.ResolveRetries(cfg.Defaults) != 0 {
		t.Errorf("expected stock retries 0, got %d", stock.ResolveRetries(cfg.Defaults))
	}

	if len(cfg.Swarms) != 1 {
		t.Fatalf("expected 1 scheduled swarm, got %d", len(cfg.Swarms))
	}
	if cfg.Swarms[0].Schedule != "0 3 * * *" {
		t.Errorf("unexpected schedule: %s", cfg.Swarms[0].Schedule)
	}
	if len(cfg.Swarms[0].AgentTypes) != 2 {
		t.Errorf("expected 2 agent types, got %v", cfg.Swarms[0].AgentTypes)
	}
}

func TestLoadEnvExpansion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smenos.yaml")

	t.Setenv("TEST_SMENOS_DB", "/var/lib/smenos.db")
	if err := os.WriteFile(path, []byte("store:\n  path: ${TEST_SMENOS_DB}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SMENOS_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Path != "/var/lib/smenos.db" {
		t.Errorf("expected env-expanded store path, got %s", cfg.Store.Path)
	}
}
