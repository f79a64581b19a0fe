package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/runningwild/rrtune/pkg/bench"
	"github.com/runningwild/rrtune/pkg/btrfs"
	"github.com/runningwild/rrtune/pkg/fio"
)

var benchCmd = &cobra.Command{
	Use:   "bench [mountpoint]",
	Short: "Benchmark every available read policy for comparison",
	Long: `Runs sequential and random read benchmarks, single- and multithreaded,
under every available raid1 read policy and prints a comparison table.
The previously active policy is restored afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
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
	log.Debug("resolved filesystem", "mountpoint", mountpoint, "fsid", fs.ID)

	comparison := &bench.Comparison{
		FS:     fs,
		Runner: &fio.ExecRunner{},
		Loops:  cfg.Workload.Loops,
		Size:   cfg.Workload.Size,
		Jobs:   cfg.Workload.Jobs,
		Log:    log.Default(),
	}

	results, err := comparison.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Print(bench.Table(results))
	return nil
}
