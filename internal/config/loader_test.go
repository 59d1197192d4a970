package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `{
	// This is a JSONC comment
	"service": {
		"endpoint": "${{ .Env.DEVHELPER_TEST_ENDPOINT }}",
		"top_k": 8,
		"timeout": "30s",
	},
	/* block comment */
	"serve": {
		"host": "0.0.0.0",
		"port": 9999,
		"fixtures": "/tmp/fixtures.yaml"
	},
}`

	t.Setenv("DEVHELPER_TEST_ENDPOINT", "http://rag.internal:8000")
	path := writeConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Service.Endpoint != "http://rag.internal:8000" {
		t.Errorf("expected templated endpoint, got %s", cfg.Service.Endpoint)
	}
	if cfg.Service.TopK != 8 {
		t.Errorf("expected top_k 8, got %d", cfg.Service.TopK)
	}
	if cfg.Service.Timeout.Duration() != 30*time.Second {
		t.Errorf("expected timeout 30s, got %s", cfg.Service.Timeout.Duration())
	}
	if cfg.Serve.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Serve.Host)
	}
	if cfg.Serve.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Serve.Port)
	}
	if cfg.Serve.Fixtures != "/tmp/fixtures.yaml" {
		t.Errorf("expected fixtures path, got %s", cfg.Serve.Fixtures)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEVHELPER_PATH", "/tmp/test-devhelper")
	path := writeConfig(t, `{}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Service.Endpoint != "http://localhost:8000" {
		t.Errorf("expected default endpoint, got %s", cfg.Service.Endpoint)
	}
	if cfg.Service.TopK != 5 {
		t.Errorf("expected default top_k 5, got %d", cfg.Service.TopK)
	}
	if cfg.Service.Timeout != 0 {
		t.Errorf("expected no timeout by default, got %s", cfg.Service.Timeout.Duration())
	}
	if cfg.Serve.Host != "127.0.0.1" {
		t.Errorf("expected default host 127.0.0.1, got %s", cfg.Serve.Host)
	}
	if cfg.Serve.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Serve.Port)
	}
	if cfg.Serve.Fixtures != "/tmp/test-devhelper/fixtures.yaml" {
		t.Errorf("expected default fixtures path, got %s", cfg.Serve.Fixtures)
	}
	if cfg.Events.BufferSize != DefaultBufferSize {
		t.Errorf("expected default buffer %d, got %d", DefaultBufferSize, cfg.Events.BufferSize)
	}
	if cfg.TUI.LogFile != "/tmp/test-devhelper/tui.log" {
		t.Errorf("expected default log file, got %s", cfg.TUI.LogFile)
	}
}

func TestLoadNegativeTopK(t *testing.T) {
	path := writeConfig(t, `{"service": {"top_k": -1}}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Service.TopK != DefaultTopK {
		t.Errorf("expected top_k to fall back to %d, got %d", DefaultTopK, cfg.Service.TopK)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `{"service": `},
		{"type", `{"service": {"top_k": "five"}}`},
		{"duration", `{"service": {"timeout": "soon"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.jsonc"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Service.TopK != DefaultTopK || cfg.Service.Endpoint != DefaultEndpoint {
		t.Errorf("expected defaults, got %+v", cfg.Service)
	}
}

func TestExpandEnvTemplates(t *testing.T) {
	t.Setenv("TEST_KEY", "my-secret")
	result := expandEnvTemplates(`{"key": "${{ .Env.TEST_KEY }}"}`)
	expected := `{"key": "my-secret"}`
	if result != expected {
		t.Errorf("expected %s, got %s", expected, result)
	}
}

func TestEventsConfigLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := (EventsConfig{LogLevel: tt.in}).Level(); got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
