package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DefaultProvider != "claude" {
		t.Errorf("expected default provider 'claude', got %q", cfg.DefaultProvider)
	}
	if cfg.Timeouts.Execution != 0 {
		t.Errorf("expected no execution cap by default, got %v", cfg.Timeouts.Execution)
	}
	if cfg.Timeouts.StallThreshold != 2*time.Minute {
		t.Errorf("expected stall threshold 2m, got %v", cfg.Timeouts.StallThreshold)
	}
	if cfg.Git.Remote != "origin" {
		t.Errorf("expected git remote 'origin', got %q", cfg.Git.Remote)
	}
	if _, ok := cfg.Providers["claude"]; !ok {
		t.Error("expected a built-in claude provider instance")
	}
}

func TestLoadFromPath(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	configContent := `
default_provider: work
providers:
  work:
    vendor: claude
    mode: api
    model: claude-sonnet-4-20250514
    api_key: test-key
  scratch:
    vendor: codex
    executable: /opt/codex/bin/codex
timeouts:
  execution: 30m
  stall_threshold: 90s
git:
  remote: upstream
  branch: main
logging:
  debug_file: /tmp/drover.log
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.DefaultProvider != "work" {
		t.Errorf("default_provider = %q", cfg.DefaultProvider)
	}
	work, err := cfg.Provider("")
	if err != nil {
		t.Fatalf("Provider(\"\") error = %v", err)
	}
	if work.Vendor != "claude" || work.Mode != "api" || work.APIKey != "test-key" {
		t.Errorf("work instance = %+v", work)
	}
	scratch, err := cfg.Provider("scratch")
	if err != nil {
		t.Fatalf("Provider(scratch) error = %v", err)
	}
	if scratch.Executable != "/opt/codex/bin/codex" {
		t.Errorf("scratch executable = %q", scratch.Executable)
	}
	if cfg.Timeouts.Execution != 30*time.Minute {
		t.Errorf("execution timeout = %v", cfg.Timeouts.Execution)
	}
	if cfg.Timeouts.StallThreshold != 90*time.Second {
		t.Errorf("stall threshold = %v", cfg.Timeouts.StallThreshold)
	}
	if cfg.Git.Remote != "upstream" || cfg.Git.Branch != "main" {
		t.Errorf("git = %+v", cfg.Git)
	}
	if cfg.Logging.DebugFile != "/tmp/drover.log" {
		t.Errorf("debug file = %q", cfg.Logging.DebugFile)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("LoadFromPath() succeeded for a missing file")
	}
}

func TestProviderUnknownInstance(t *testing.T) {
	cfg := Default()
	if _, err := cfg.Provider("nope"); err == nil {
		t.Fatal("Provider(nope) succeeded")
	}
}

func TestAPIKeyEnvExpansion(t *testing.T) {
	t.Setenv("DROVER_TEST_KEY", "expanded-secret")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `
providers:
  claude:
    vendor: claude
    mode: api
    api_key: ${DROVER_TEST_KEY}
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if got := cfg.Providers["claude"].APIKey; got != "expanded-secret" {
		t.Errorf("api_key = %q, want env expansion", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	want := Default()
	want.DefaultProvider = "codex"
	want.Providers["codex"] = ProviderConfig{Vendor: "codex", Mode: "cli", Model: "o4-mini"}
	want.Git.Remote = "upstream"

	if err := Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := LoadFromPath(UserConfigPath())
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if got.DefaultProvider != "codex" {
		t.Errorf("default_provider = %q", got.DefaultProvider)
	}
	if got.Providers["codex"].Model != "o4-mini" {
		t.Errorf("codex model = %q", got.Providers["codex"].Model)
	}
	if got.Git.Remote != "upstream" {
		t.Errorf("git remote = %q", got.Git.Remote)
	}
}
