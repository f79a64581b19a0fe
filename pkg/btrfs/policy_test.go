package btrfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPolicies(t *testing.T) {
	fs := newTestFS(t, "pid [roundrobin] latency\n")

	got, err := fs.Policies()
	if err != nil {
		t.Fatalf("Policies: %v", err)
	}

	want := []string{"pid", "roundrobin", "latency"}
	if len(got) != len(want) {
		t.Fatalf("Policies() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Policies()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestActivePolicy(t *testing.T) {
	fs := newTestFS(t, "pid [roundrobin] latency\n")
	got, err := fs.ActivePolicy()
	if err != nil {
		t.Fatalf("ActivePolicy: %v", err)
	}
	if got != "roundrobin" {
		t.Errorf("ActivePolicy() = %q, want %q", got, "roundrobin")
	}
}

func TestActivePolicyFallback(t *testing.T) {
	// No bracketed entry: the kernel default is assumed.
	fs := newTestFS(t, "roundrobin latency\n")
	got, err := fs.ActivePolicy()
	if err != nil {
		t.Fatalf("ActivePolicy: %v", err)
	}
	if got != "pid" {
		t.Errorf("ActivePolicy() = %q, want fallback %q", got, "pid")
	}
}

func TestSetPolicyAndRestore(t *testing.T) {
	fs := newTestFS(t, "[pid] roundrobin latency\n")

	guard, err := fs.SetPolicy("roundrobin")
	if err != nil {
		t.Fatalf("SetPolicy: %v", err)
	}
	if guard.Prev() != "pid" {
		t.Errorf("Prev() = %q, want %q", guard.Prev(), "pid")
	}

	raw, err := os.ReadFile(fs.PolicyPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "roundrobin" {
		t.Errorf("policy file = %q after SetPolicy, want %q", raw, "roundrobin")
	}

	if err := guard.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	raw, err = os.ReadFile(fs.PolicyPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "pid" {
		t.Errorf("policy file = %q after Restore, want %q", raw, "pid")
	}
}

func TestRestoreErrorSurfaced(t *testing.T) {
	fs := newTestFS(t, "[pid] roundrobin\n")
	guard, err := fs.SetPolicy("roundrobin")
	if err != nil {
		t.Fatal(err)
	}

	// Make the sysfs file unwritable by removing its directory.
	if err := os.RemoveAll(filepath.Join(fs.SysfsRoot, testFsid)); err != nil {
		t.Fatal(err)
	}

	err = guard.Restore()
	var rerr *RestoreError
	if err == nil || !errors.As(err, &rerr) {
		t.Fatalf("want RestoreError, got %v", err)
	}
	if rerr.Policy != "pid" {
		t.Errorf("RestoreError.Policy = %q, want %q", rerr.Policy, "pid")
	}
}
