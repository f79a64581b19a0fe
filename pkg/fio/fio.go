// Package fio drives the external fio tool as the measurement oracle for
// read-policy tuning. It renders job files, invokes fio with JSON output,
// and extracts per-worker read bandwidth.
package fio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrPrerequisite marks a missing tool or privilege detected at startup.
var ErrPrerequisite = errors.New("missing prerequisite")

// CheckPrerequisites verifies fio is installed and the process can write to
// sysfs and drop caches. Called once before any search is attempted.
func CheckPrerequisites() error {
	if unix.Geteuid() != 0 {
		return fmt.Errorf("%w: must be run as root", ErrPrerequisite)
	}
	if _, err := exec.LookPath("fio"); err != nil {
		return fmt.Errorf("%w: fio is not installed", ErrPrerequisite)
	}
	return nil
}

// MeasurementError is a failed or unparsable fio invocation. It aborts the
// whole search: a missing sample would make the ranking table inconsistent.
type MeasurementError struct {
	Job string // job description or file path
	Err error
}

func (e *MeasurementError) Error() string {
	return fmt.Sprintf("fio measurement for %s failed: %v", e.Job, e.Err)
}

func (e *MeasurementError) Unwrap() error { return e.Err }

// Sample holds the raw read bandwidth of one fio run, in KiB/s per worker.
// Values are never rounded; ranking compares them exactly as reported.
type Sample struct {
	PerJob []int64
}

// First returns the first worker's individual bandwidth. This is the figure
// ranking and commit decisions use, even for multi-worker jobs.
func (s Sample) First() int64 {
	if len(s.PerJob) == 0 {
		return 0
	}
	return s.PerJob[0]
}

// Aggregate returns the sum across workers. Reported only when the job ran
// more than one worker; reporting-only, never used for ranking.
func (s Sample) Aggregate() (int64, bool) {
	if len(s.PerJob) < 2 {
		return 0, false
	}
	var sum int64
	for _, bw := range s.PerJob {
		sum += bw
	}
	return sum, true
}

// MiBps converts a raw KiB/s bandwidth to MiB/s for human display, rounded
// to the nearest integer. Display-only; never feed the result back into
// ranking comparisons.
func MiBps(bw int64) int64 {
	return int64(math.Round(float64(bw) / 1024))
}

type fioOutput struct {
	Jobs []fioJob `json:"jobs"`
}

type fioJob struct {
	Read fioRead `json:"read"`
}

type fioRead struct {
	BW int64 `json:"bw"`
}

// ParseSample extracts per-worker read bandwidth from fio's JSON output.
func ParseSample(data []byte) (Sample, error) {
	var out fioOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return Sample{}, fmt.Errorf("unparsable fio output: %w", err)
	}
	if len(out.Jobs) == 0 {
		return Sample{}, errors.New("fio output contains no jobs")
	}

	s := Sample{PerJob: make([]int64, len(out.Jobs))}
	for i, j := range out.Jobs {
		s.PerJob[i] = j.Read.BW
	}
	return s, nil
}

// Runner executes one benchmark and returns its raw sample. The call blocks
// until fio finishes; there is no timeout, overlapping runs would corrupt
// each other's measurement.
type Runner interface {
	Run(ctx context.Context, job Job) (Sample, error)
	RunFile(ctx context.Context, path string) (Sample, error)
}

// ExecRunner invokes the fio binary as a subprocess.
type ExecRunner struct {
	Binary string // defaults to "fio"
}

var _ Runner = (*ExecRunner)(nil)

func (r *ExecRunner) binary() string {
	if r.Binary != "" {
		return r.Binary
	}
	return "fio"
}

// Run pipes a rendered job to fio on stdin.
func (r *ExecRunner) Run(ctx context.Context, job Job) (Sample, error) {
	return r.exec(ctx, job.String(), strings.NewReader(job.Render()), "-")
}

// RunFile runs an externally authored job file.
func (r *ExecRunner) RunFile(ctx context.Context, path string) (Sample, error) {
	return r.exec(ctx, path, nil, path)
}

func (r *ExecRunner) exec(ctx context.Context, desc string, stdin *strings.Reader, jobArg string) (Sample, error) {
	cmd := exec.CommandContext(ctx, r.binary(), "--output-format=json", jobArg)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	out, err := cmd.Output()
	if err != nil {
		return Sample{}, &MeasurementError{Job: desc, Err: err}
	}
	sample, err := ParseSample(out)
	if err != nil {
		return Sample{}, &MeasurementError{Job: desc, Err: err}
	}
	return sample, nil
}

// String describes a job for logs and errors.
func (j Job) String() string {
	return fmt.Sprintf("%s x%d (loops=%d, size=%s)", j.Pattern, j.Jobs, j.Loops, j.Size)
}
