package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runningwild/rrtune/pkg/btrfs"
	"github.com/runningwild/rrtune/pkg/fio"
	"github.com/runningwild/rrtune/pkg/tune"
)

const testFsid = "0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9"

func newTestFS(t *testing.T) *btrfs.FS {
	t.Helper()
	sysfs := t.TempDir()
	rpDir := filepath.Join(sysfs, testFsid, "read_policies")
	require.NoError(t, os.MkdirAll(rpDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(rpDir, "policy"), []byte("[pid] roundrobin latency\n"), 0o644))
	return &btrfs.FS{ID: testFsid, SysfsRoot: sysfs}
}

type scriptedRunner struct {
	calls  int
	failAt int
}

func (r *scriptedRunner) Run(_ context.Context, job fio.Job) (fio.Sample, error) {
	r.calls++
	if r.failAt > 0 && r.calls == r.failAt {
		return fio.Sample{}, &fio.MeasurementError{Job: job.String(), Err: errors.New("exit status 1")}
	}
	return fio.Sample{PerJob: []int64{int64(1000 + r.calls)}}, nil
}

func (r *scriptedRunner) RunFile(context.Context, string) (fio.Sample, error) {
	return fio.Sample{}, errors.New("not used")
}

type nopDropper struct{}

func (nopDropper) DropCaches() error { return nil }

func newSearch(fs *btrfs.FS, runner fio.Runner, n int) *tune.Search {
	return &tune.Search{
		Grid: tune.SingleAxis(btrfs.TunableNonRot, n),
		Trial: &tune.Trial{
			Store:   fs,
			Dropper: nopDropper{},
			Runner:  runner,
			Job:     fio.DefaultJob(fio.SeqRead, false),
		},
		K: 1,
	}
}

func TestSearchUnderPolicyActivatesRoundrobin(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, os.WriteFile(fs.TunablePath(btrfs.TunableNonRot), []byte("0"), 0o644))

	runner := &scriptedRunner{}
	report, err := searchUnderPolicy(context.Background(), fs, newSearch(fs, runner, 4))
	require.NoError(t, err)
	require.True(t, report.Committed)

	// The last sample was the largest, so the final candidate wins and its
	// value is the committed sysfs content.
	raw, rerr := os.ReadFile(fs.TunablePath(btrfs.TunableNonRot))
	require.NoError(t, rerr)
	assert.Equal(t, "3", string(raw))

	active, aerr := fs.ActivePolicy()
	require.NoError(t, aerr)
	assert.Equal(t, "pid", active, "original policy restored after the search")
}

func TestSearchUnderPolicyRestoresOnMidLoopFailure(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, os.WriteFile(fs.TunablePath(btrfs.TunableNonRot), []byte("0"), 0o644))

	runner := &scriptedRunner{failAt: 3}
	report, err := searchUnderPolicy(context.Background(), fs, newSearch(fs, runner, 10))

	var merr *fio.MeasurementError
	require.ErrorAs(t, err, &merr)
	assert.False(t, report.Committed)
	assert.Equal(t, 3, runner.calls)

	active, aerr := fs.ActivePolicy()
	require.NoError(t, aerr)
	assert.Equal(t, "pid", active, "original policy restored even when the search aborts")
}
