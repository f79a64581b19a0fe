// Package btrfs exposes the sysfs knobs of a btrfs filesystem: raid1 read
// policy selection, the roundrobin policy's penalty tunables, and the page
// cache reset needed between benchmark trials.
package btrfs

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Sysfs names of the roundrobin penalty tunables.
const (
	TunableNonRot = "roundrobin_nonrot_nonlocal_inc"
	TunableRot    = "roundrobin_rot_nonlocal_inc"
)

// DefaultTunableRange is the candidate bound for penalty values; sysfs does
// not advertise one, and values past this have never measured best.
const DefaultTunableRange = 10

const superMagic = 0x9123683e // BTRFS_SUPER_MAGIC

// FS identifies one mounted btrfs filesystem. All sysfs paths are keyed by
// its filesystem id; callers hold the FS value for the life of a run instead
// of re-resolving paths per access.
type FS struct {
	ID string

	// SysfsRoot and ProcRoot exist so tests can point the FS at a scratch
	// directory. Left empty they resolve to the real kernel trees.
	SysfsRoot string
	ProcRoot  string

	// TunableBound overrides DefaultTunableRange when > 0.
	TunableBound int
}

// Lookup resolves a mountpoint to its filesystem id. It fails when the
// mount is not btrfs.
func Lookup(mountpoint string) (*FS, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(mountpoint, &st); err != nil {
		return nil, fmt.Errorf("statfs %s: %w", mountpoint, err)
	}
	if st.Type != superMagic {
		return nil, fmt.Errorf("%s is not a btrfs filesystem", mountpoint)
	}

	out, err := exec.Command("btrfs", "filesystem", "show", mountpoint).Output()
	if err != nil {
		return nil, fmt.Errorf("btrfs filesystem show %s: %w", mountpoint, err)
	}
	id, err := parseFilesystemShow(out)
	if err != nil {
		return nil, err
	}
	return &FS{ID: id}, nil
}

// parseFilesystemShow pulls the uuid out of `btrfs filesystem show` output.
// The first line ends with "uuid: <fsid>".
func parseFilesystemShow(out []byte) (string, error) {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) == 0 {
		return "", fmt.Errorf("empty btrfs filesystem show output")
	}
	fields := strings.Fields(lines[0])
	if len(fields) == 0 {
		return "", fmt.Errorf("malformed btrfs filesystem show output: %q", lines[0])
	}
	return fields[len(fields)-1], nil
}

func (fs *FS) sysfsRoot() string {
	if fs.SysfsRoot != "" {
		return fs.SysfsRoot
	}
	return "/sys/fs/btrfs"
}

func (fs *FS) procRoot() string {
	if fs.ProcRoot != "" {
		return fs.ProcRoot
	}
	return "/proc"
}

// TunablePath returns the sysfs file backing a read-policy tunable.
func (fs *FS) TunablePath(name string) string {
	return filepath.Join(fs.sysfsRoot(), fs.ID, "read_policies", name)
}

// PolicyPath returns the sysfs file selecting the active read policy.
func (fs *FS) PolicyPath() string {
	return filepath.Join(fs.sysfsRoot(), fs.ID, "read_policies", "policy")
}

// TunableWriteError is a failed write of a candidate value to sysfs, e.g.
// value rejected by the kernel or permission denied.
type TunableWriteError struct {
	Name  string
	Value int
	Err   error
}

func (e *TunableWriteError) Error() string {
	return fmt.Sprintf("write %s=%d: %v", e.Name, e.Value, e.Err)
}

func (e *TunableWriteError) Unwrap() error { return e.Err }

// SetTunable writes a penalty value. Writes are total overwrites and take
// effect for the next read issued against the filesystem.
func (fs *FS) SetTunable(name string, value int) error {
	path := fs.TunablePath(name)
	if err := os.WriteFile(path, []byte(strconv.Itoa(value)), 0o644); err != nil {
		return &TunableWriteError{Name: name, Value: value, Err: err}
	}
	return nil
}

// TunableRange returns the exclusive upper bound of a tunable's candidate
// values.
func (fs *FS) TunableRange(name string) int {
	if fs.TunableBound > 0 {
		return fs.TunableBound
	}
	return DefaultTunableRange
}

// DropCaches flushes the page cache so no trial benefits from a previous
// candidate's reads. Expect it to take a while on a busy box.
func (fs *FS) DropCaches() error {
	path := filepath.Join(fs.procRoot(), "sys", "vm", "drop_caches")
	if err := os.WriteFile(path, []byte("1"), 0o644); err != nil {
		return fmt.Errorf("drop caches: %w", err)
	}
	return nil
}
