// Package bench compares the available raid1 read policies against each
// other by running the same read benchmarks under every policy.
package bench

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/runningwild/rrtune/pkg/btrfs"
	"github.com/runningwild/rrtune/pkg/fio"
)

// PolicyResult holds the four benchmark figures for one read policy, in raw
// KiB/s. Multi-worker entries carry the aggregate alongside the first
// worker's individual figure.
type PolicyResult struct {
	Policy string

	SeqSingle    int64
	SeqMulti     int64
	SeqMultiSum  int64
	RandSingle   int64
	RandMulti    int64
	RandMultiSum int64

	Jobs int // worker count of the multithread runs
}

// Comparison benchmarks every available read policy. Each policy is set via
// a scoped guard and restored before the next one is measured.
type Comparison struct {
	FS     *btrfs.FS
	Runner fio.Runner

	Loops int
	Size  string
	Jobs  int // multithread worker count; 0 keeps the job default

	Log *log.Logger
}

func (c *Comparison) logger() *log.Logger {
	if c.Log != nil {
		return c.Log
	}
	return log.Default()
}

// Run measures all policies in the order sysfs lists them.
func (c *Comparison) Run(ctx context.Context) ([]PolicyResult, error) {
	policies, err := c.FS.Policies()
	if err != nil {
		return nil, err
	}

	results := make([]PolicyResult, 0, len(policies))
	for _, policy := range policies {
		res, err := c.measurePolicy(ctx, policy)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (c *Comparison) measurePolicy(ctx context.Context, policy string) (res PolicyResult, err error) {
	c.logger().Debug("benchmarking policy", "policy", policy)

	guard, err := c.FS.SetPolicy(policy)
	if err != nil {
		return PolicyResult{}, err
	}
	defer func() {
		if rerr := guard.Restore(); rerr != nil {
			c.logger().Error("policy restore failed", "policy", guard.Prev(), "err", rerr)
			if err == nil {
				err = rerr
			}
		}
	}()

	res.Policy = policy

	single, err := c.run(ctx, fio.SeqRead, false)
	if err != nil {
		return res, err
	}
	res.SeqSingle = single.First()

	multi, err := c.run(ctx, fio.SeqRead, true)
	if err != nil {
		return res, err
	}
	res.SeqMulti = multi.First()
	res.SeqMultiSum, _ = multi.Aggregate()
	res.Jobs = len(multi.PerJob)

	single, err = c.run(ctx, fio.RandRead, false)
	if err != nil {
		return res, err
	}
	res.RandSingle = single.First()

	multi, err = c.run(ctx, fio.RandRead, true)
	if err != nil {
		return res, err
	}
	res.RandMulti = multi.First()
	res.RandMultiSum, _ = multi.Aggregate()

	return res, nil
}

func (c *Comparison) run(ctx context.Context, pattern fio.Pattern, multithread bool) (fio.Sample, error) {
	job := fio.DefaultJob(pattern, multithread)
	if c.Loops > 0 {
		job.Loops = c.Loops
	}
	if c.Size != "" {
		job.Size = c.Size
	}
	if multithread && c.Jobs > 0 {
		job.Jobs = c.Jobs
	}
	return c.Runner.Run(ctx, job)
}
