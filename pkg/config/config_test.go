package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Workload.Loops != 3 {
		t.Errorf("Loops = %d, want 3", cfg.Workload.Loops)
	}
	if cfg.Workload.Size != "10G" {
		t.Errorf("Size = %q, want 10G", cfg.Workload.Size)
	}
	if cfg.Workload.Jobs != runtime.NumCPU() {
		t.Errorf("Jobs = %d, want NumCPU (%d)", cfg.Workload.Jobs, runtime.NumCPU())
	}
	if cfg.Search.Range != 10 {
		t.Errorf("Range = %d, want 10", cfg.Search.Range)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rrtune.yaml")
	data := []byte(`
workload:
  loops: 1
  size: 2G
search:
  range: 5
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workload.Loops != 1 || cfg.Workload.Size != "2G" {
		t.Errorf("workload = %+v", cfg.Workload)
	}
	if cfg.Search.Range != 5 {
		t.Errorf("Range = %d, want 5", cfg.Search.Range)
	}
	if cfg.Workload.Jobs != runtime.NumCPU() {
		t.Errorf("unset Jobs = %d, want default", cfg.Workload.Jobs)
	}
}

func TestLoadRejectsNegativeRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rrtune.yaml")
	if err := os.WriteFile(path, []byte("search:\n  range: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for negative range")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("workload: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
