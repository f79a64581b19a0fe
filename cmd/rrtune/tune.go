package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/runningwild/rrtune/pkg/btrfs"
	"github.com/runningwild/rrtune/pkg/fio"
	"github.com/runningwild/rrtune/pkg/tune"
)

var (
	tuneNonRot    bool
	tuneRot       bool
	tuneMulti     bool
	tuneBenchType string

	tuneCmd = &cobra.Command{
		Use:   "tune [mountpoint]",
		Short: "Find the best roundrobin penalty values",
		Long: `Searches for the best values of the roundrobin read policy settings:

  roundrobin_nonrot_nonlocal_inc (--nonrotational)
  roundrobin_rot_nonlocal_inc    (--rotational)

With one flag a single setting is swept; with both, every combination is
measured and the top three are reported. The winning values are written back
to sysfs when the search completes.`,
		Args: cobra.ExactArgs(1),
		RunE: runTune,
	}
)

func init() {
	tuneCmd.Flags().BoolVar(&tuneNonRot, "nonrotational", false, "find the best value for roundrobin_nonrot_nonlocal_inc")
	tuneCmd.Flags().BoolVar(&tuneRot, "rotational", false, "find the best value for roundrobin_rot_nonlocal_inc")
	tuneCmd.Flags().BoolVar(&tuneMulti, "multithread", false, "run multithreaded benchmarks")
	tuneCmd.Flags().StringVar(&tuneBenchType, "benchmark-type", "seqread", "benchmark type (seqread or randread)")
	rootCmd.AddCommand(tuneCmd)
}

func runTune(cmd *cobra.Command, args []string) error {
	if !tuneNonRot && !tuneRot {
		return fmt.Errorf("nothing to tune: pass --nonrotational, --rotational, or both")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pattern, err := fio.ParsePattern(tuneBenchType)
	if err != nil {
		return err
	}
	if err := fio.CheckPrerequisites(); err != nil {
		return err
	}

	mountpoint := args[0]
	if err := enterMountpoint(mountpoint); err != nil {
		return err
	}
	fs, err := btrfs.Lookup(mountpoint)
	if err != nil {
		return err
	}
	fs.TunableBound = cfg.Search.Range
	log.Debug("resolved filesystem", "mountpoint", mountpoint, "fsid", fs.ID)

	job := fio.DefaultJob(pattern, tuneMulti)
	job.Loops = cfg.Workload.Loops
	job.Size = cfg.Workload.Size
	if tuneMulti {
		job.Jobs = cfg.Workload.Jobs
	}

	var (
		grid tune.Grid
		topK = 1
	)
	switch {
	case tuneNonRot && tuneRot:
		grid = tune.Joint(
			tune.Axis{Name: btrfs.TunableNonRot, N: fs.TunableRange(btrfs.TunableNonRot)},
			tune.Axis{Name: btrfs.TunableRot, N: fs.TunableRange(btrfs.TunableRot)},
		)
		topK = 3
	case tuneNonRot:
		grid = tune.SingleAxis(btrfs.TunableNonRot, fs.TunableRange(btrfs.TunableNonRot))
	case tuneRot:
		grid = tune.SingleAxis(btrfs.TunableRot, fs.TunableRange(btrfs.TunableRot))
	}

	search := &tune.Search{
		Grid: grid,
		Trial: &tune.Trial{
			Store:   fs,
			Dropper: fs,
			Runner:  &fio.ExecRunner{},
			Job:     job,
			JobFile: fioJob,
		},
		K:   topK,
		Log: log.Default(),
	}

	report, err := searchUnderPolicy(cmd.Context(), fs, search)
	if err != nil {
		return err
	}

	printReport(fs, report)
	return nil
}

// searchUnderPolicy runs the search with the roundrobin policy active and
// puts the original policy back on every exit path. A restore failure
// leaves the filesystem in an unexpected state and must not be hidden
// behind the search result.
func searchUnderPolicy(ctx context.Context, fs *btrfs.FS, search *tune.Search) (tune.Report, error) {
	guard, err := fs.SetPolicy("roundrobin")
	if err != nil {
		return tune.Report{}, err
	}

	report, err := search.Run(ctx)

	if rerr := guard.Restore(); rerr != nil {
		log.Error("failed to restore read policy", "policy", guard.Prev(), "err", rerr)
		if err == nil {
			err = rerr
		}
	}
	return report, err
}

func printReport(fs *btrfs.FS, report tune.Report) {
	best := report.Table[0]
	for _, s := range report.Winner.Settings {
		fmt.Printf("The best %s value: %d\n", fs.TunablePath(s.Name), s.Value)
	}
	fmt.Printf("Best bandwidth: %s KiB/s (%d MiB/s)\n",
		humanize.Comma(best.Bandwidth), fio.MiBps(best.Bandwidth))
	if best.HasAggregate {
		fmt.Printf("Aggregate across workers: %s KiB/s (%d MiB/s)\n",
			humanize.Comma(best.Aggregate), fio.MiBps(best.Aggregate))
	}

	// The top-3 report is informational; only the winner was committed.
	if len(report.Table) > 1 {
		fmt.Println("\nTop candidates:")
		for i, tr := range report.Table {
			fmt.Printf("  %d. %s  bw: %s KiB/s (%d MiB/s)\n",
				i+1, tr.Candidate, humanize.Comma(tr.Bandwidth), fio.MiBps(tr.Bandwidth))
		}
	}
}
