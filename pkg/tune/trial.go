package tune

import (
	"context"
	"fmt"

	"github.com/runningwild/rrtune/pkg/fio"
)

// TunableStore applies candidate values. Writes are total overwrites and
// take effect immediately for subsequent measurements.
type TunableStore interface {
	SetTunable(name string, value int) error
}

// CacheDropper resets the page cache between trials.
type CacheDropper interface {
	DropCaches() error
}

// Trial composes one full measurement: reset cache, apply the candidate,
// run the benchmark. One raw sample per candidate; no retries, no outlier
// rejection. Collaborator failures propagate unmodified and abort the
// search.
type Trial struct {
	Store   TunableStore
	Dropper CacheDropper
	Runner  fio.Runner

	// Job is the synthesized workload. JobFile, when set, replaces job
	// synthesis entirely; aggregate bandwidth is then not reported.
	Job     fio.Job
	JobFile string
}

// Run measures one candidate. The cache reset happens unconditionally,
// even for the very first trial.
func (t *Trial) Run(ctx context.Context, c Candidate) (TrialResult, error) {
	if err := t.Dropper.DropCaches(); err != nil {
		return TrialResult{}, err
	}

	// All writes must land before the measurement starts; order across
	// tunables is not significant.
	for _, s := range c.Settings {
		if err := t.Store.SetTunable(s.Name, s.Value); err != nil {
			return TrialResult{}, fmt.Errorf("candidate %s: %w", c, err)
		}
	}

	var (
		sample fio.Sample
		err    error
	)
	if t.JobFile != "" {
		sample, err = t.Runner.RunFile(ctx, t.JobFile)
	} else {
		sample, err = t.Runner.Run(ctx, t.Job)
	}
	if err != nil {
		return TrialResult{}, err
	}

	tr := TrialResult{Candidate: c, Bandwidth: sample.First()}
	if t.JobFile == "" {
		if agg, ok := sample.Aggregate(); ok {
			tr.Aggregate = agg
			tr.HasAggregate = true
		}
	}
	return tr, nil
}
