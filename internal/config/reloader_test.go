package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestReloader_Current(t *testing.T) {
	cfg := &Config{}
	cfg.Serve.Port = 9999

	r := NewReloader("", "", cfg)
	got := r.Current()
	if got.Serve.Port != 9999 {
		t.Errorf("Current().Serve.Port = %d, want 9999", got.Serve.Port)
	}
}

func TestReloader_Reload(t *testing.T) {
	dir := t.TempDir()
	dotenvPath := filepath.Join(dir, ".env")
	configPath := filepath.Join(dir, "config.jsonc")

	t.Setenv("DEVHELPER_TEST_FIXTURES", "")

	if err := os.WriteFile(dotenvPath, []byte("DEVHELPER_TEST_FIXTURES=/tmp/initial.yaml\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	configContent := `{
		// fixtures come from the environment
		"serve": {"fixtures": "${{ .Env.DEVHELPER_TEST_FIXTURES }}"},
	}`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatal(err)
	}

	initial := &Config{}
	r := NewReloader(configPath, dotenvPath, initial)

	var callCount atomic.Int32
	r.OnReload(func(cfg *Config) {
		callCount.Add(1)
	})

	if err := os.WriteFile(dotenvPath, []byte("DEVHELPER_TEST_FIXTURES=/tmp/reloaded.yaml\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := r.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if callCount.Load() != 1 {
		t.Errorf("listener called %d times, want 1", callCount.Load())
	}

	got := r.Current()
	if got == initial {
		t.Fatal("Current() still returns initial config after reload")
	}
	if got.Serve.Fixtures != "/tmp/reloaded.yaml" {
		t.Errorf("Serve.Fixtures = %q, want /tmp/reloaded.yaml", got.Serve.Fixtures)
	}
}

func TestReloader_ReloadMissingFiles(t *testing.T) {
	dir := t.TempDir()
	r := NewReloader(filepath.Join(dir, "config.jsonc"), filepath.Join(dir, ".env"), &Config{})

	if err := r.Reload(); err != nil {
		t.Fatalf("Reload with missing files: %v", err)
	}
	if r.Current().Service.TopK != DefaultTopK {
		t.Errorf("expected defaults after reload, got top_k %d", r.Current().Service.TopK)
	}
}

func TestReloader_InvalidKeepsCurrent(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.jsonc")
	if err := os.WriteFile(configPath, []byte(`{"service": `), 0o644); err != nil {
		t.Fatal(err)
	}

	initial := Default()
	r := NewReloader(configPath, filepath.Join(dir, ".env"), initial)

	if err := r.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if r.Current() != initial {
		t.Error("failed reload must keep the current config")
	}
}
