package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("got %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoadOverlaysYAMLOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	contents := "worker_sleep: 5ms\nmax_idle_conns_per_host: 20\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkerSleep != 5*time.Millisecond {
		t.Fatalf("got worker sleep %v, want 5ms", cfg.WorkerSleep)
	}
	if cfg.MaxIdleConnsPerHost != 20 {
		t.Fatalf("got max idle conns %d, want 20", cfg.MaxIdleConnsPerHost)
	}
	if cfg.DefaultTimeout != Default().DefaultTimeout {
		t.Fatalf("expected untouched field to keep default, got %v", cfg.DefaultTimeout)
	}
}
