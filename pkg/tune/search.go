package tune

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/runningwild/rrtune/pkg/fio"
)

// Search drives the full tuning run: enumerate the grid, measure every
// candidate exactly once, rank the results, and commit the winner. The
// engine is single-threaded; overlapping benchmarks would corrupt each
// other's throughput numbers.
type Search struct {
	Grid  Grid
	Trial *Trial

	// K bounds the ranking table: 1 for single-axis sweeps, 3 for the
	// joint search. Defaults to 1.
	K int

	Log *log.Logger
}

// Report is the outcome of a search.
type Report struct {
	Winner Candidate
	Table  []TrialResult

	// Committed is false when the run aborted before the winner was
	// written back. The store is then left at whatever the last attempted
	// trial set; there is no transactional rollback.
	Committed bool
}

func (s *Search) logger() *log.Logger {
	if s.Log != nil {
		return s.Log
	}
	return log.Default()
}

// Run executes the search. On any trial error the run aborts with the
// ranking table accumulated so far and commit skipped.
func (s *Search) Run(ctx context.Context) (Report, error) {
	k := s.K
	if k < 1 {
		k = 1
	}
	ranking := NewRanking(k)
	logger := s.logger()

	candidates := s.Grid.Candidates()
	if len(candidates) == 0 {
		return Report{}, errors.New("empty search space")
	}

	for i, c := range candidates {
		logger.Debug("checking candidate", "candidate", c.String(), "trial", i+1, "total", len(candidates))

		tr, err := s.Trial.Run(ctx, c)
		if err != nil {
			return Report{Table: ranking.Entries()}, err
		}

		logger.Debug("measured",
			"candidate", c.String(),
			"bw", humanize.Comma(tr.Bandwidth)+" KiB/s",
			"bw_mibs", fio.MiBps(tr.Bandwidth))
		ranking.Offer(tr)
	}

	best, _ := ranking.Best()
	if err := s.commit(best.Candidate); err != nil {
		return Report{Winner: best.Candidate, Table: ranking.Entries()}, err
	}

	return Report{
		Winner:    best.Candidate,
		Table:     ranking.Entries(),
		Committed: true,
	}, nil
}

// commit writes the winning values exactly as a trial would, but runs no
// further measurement and no cache reset. This is the search's only durable
// side effect.
func (s *Search) commit(c Candidate) error {
	for _, set := range c.Settings {
		if err := s.Trial.Store.SetTunable(set.Name, set.Value); err != nil {
			return err
		}
	}
	return nil
}
