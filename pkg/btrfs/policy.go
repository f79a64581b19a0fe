package btrfs

import (
	"fmt"
	"os"
	"strings"
)

// Policies lists the available read policies. The sysfs file looks like
// "pid [roundrobin] latency"; brackets mark the active policy and are
// stripped here.
func (fs *FS) Policies() ([]string, error) {
	raw, err := os.ReadFile(fs.PolicyPath())
	if err != nil {
		return nil, fmt.Errorf("read policies: %w", err)
	}

	var policies []string
	for _, p := range strings.Fields(string(raw)) {
		policies = append(policies, strings.Trim(p, "[]"))
	}
	return policies, nil
}

// ActivePolicy returns the currently selected read policy. Falls back to
// "pid", the kernel default, when no entry is bracketed.
func (fs *FS) ActivePolicy() (string, error) {
	raw, err := os.ReadFile(fs.PolicyPath())
	if err != nil {
		return "", fmt.Errorf("read active policy: %w", err)
	}

	for _, p := range strings.Fields(string(raw)) {
		if strings.HasPrefix(p, "[") {
			return strings.Trim(p, "[]"), nil
		}
	}
	return "pid", nil
}

// RestoreError is a failure to put the previous read policy back in place.
// It leaves the filesystem on an unexpected policy, so callers must surface
// it rather than treat it as routine cleanup noise.
type RestoreError struct {
	Policy string
	Err    error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("restore read policy %q: %v", e.Policy, e.Err)
}

func (e *RestoreError) Unwrap() error { return e.Err }

// PolicyGuard is a scoped policy selection. Restore must run on every exit
// path; a crash mid-search must not leave the filesystem permanently on a
// non-default policy.
type PolicyGuard struct {
	fs   *FS
	prev string
}

// Prev reports the policy that Restore will re-apply.
func (g *PolicyGuard) Prev() string { return g.prev }

// Restore re-applies the policy that was active when the guard was taken.
func (g *PolicyGuard) Restore() error {
	if err := os.WriteFile(g.fs.PolicyPath(), []byte(g.prev), 0o644); err != nil {
		return &RestoreError{Policy: g.prev, Err: err}
	}
	return nil
}

// SetPolicy activates a read policy and returns a guard that restores the
// previously active one.
func (fs *FS) SetPolicy(policy string) (*PolicyGuard, error) {
	prev, err := fs.ActivePolicy()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(fs.PolicyPath(), []byte(policy), 0o644); err != nil {
		return nil, fmt.Errorf("set read policy %q: %w", policy, err)
	}
	return &PolicyGuard{fs: fs, prev: prev}, nil
}
