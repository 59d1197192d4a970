package heartbeat

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteThenCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.heartbeat.json")

	w := NewWriter(path, "127.0.0.1:8000", func() int { return 3 })
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	status, hb, err := Check(path, time.Minute)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusAlive {
		t.Errorf("expected alive, got %s", status)
	}
	if hb == nil {
		t.Fatal("expected heartbeat, got nil")
	}
	if hb.PID != os.Getpid() {
		t.Errorf("PID: got %d, want %d", hb.PID, os.Getpid())
	}
	if hb.Addr != "127.0.0.1:8000" {
		t.Errorf("Addr: got %q", hb.Addr)
	}
	if hb.Fixtures != 3 {
		t.Errorf("Fixtures: got %d, want 3", hb.Fixtures)
	}
	if hb.Uptime == "" {
		t.Error("expected non-empty uptime")
	}
}

func TestStaleDetection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.heartbeat.json")

	old := Heartbeat{
		PID:       os.Getpid(),
		Addr:      "127.0.0.1:8000",
		StartedAt: time.Now().Add(-2 * time.Hour),
		Timestamp: time.Now().Add(-1 * time.Hour),
		Uptime:    "1h0m0s",
	}
	data, _ := json.Marshal(old)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	status, hb, err := Check(path, 30*time.Minute)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusStale {
		t.Errorf("expected stale, got %s", status)
	}
	if hb == nil {
		t.Fatal("expected heartbeat, got nil")
	}
}

func TestMissingFileIsDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.heartbeat.json")

	status, hb, err := Check(path, time.Minute)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusDown {
		t.Errorf("expected down, got %s", status)
	}
	if hb != nil {
		t.Errorf("expected nil heartbeat, got %+v", hb)
	}
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.heartbeat.json")
	os.WriteFile(path, []byte("{not json"), 0o644)

	status, _, err := Check(path, time.Minute)
	if err == nil {
		t.Fatal("expected error for corrupt heartbeat")
	}
	if status != StatusDown {
		t.Errorf("expected down, got %s", status)
	}
}

func TestStopRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.heartbeat.json")

	w := NewWriter(path, "127.0.0.1:8000", nil)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	w.Stop()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected heartbeat file to be removed after Stop")
	}
	// second Stop is a no-op
	w.Stop()
}

func TestStartUnwritableDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "serve.heartbeat.json")

	w := NewWriter(path, "127.0.0.1:8000", nil)
	if err := w.Start(); err == nil {
		w.Stop()
		t.Fatal("expected error when the directory does not exist")
	}
}
