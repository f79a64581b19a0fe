package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/runningwild/rrtune/pkg/config"
)

var (
	cfgFile string
	debug   bool
	fioJob  string

	rootCmd = &cobra.Command{
		Use:   "rrtune",
		Short: "Tune and benchmark btrfs raid1 read policies",
		Long: `rrtune finds the best values for the sysfs settings of the btrfs
roundrobin raid1 read policy by benchmarking every candidate value with fio,
and can benchmark all available read policies for comparison.

Must be run as root on a mounted btrfs filesystem.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetReportTimestamp(false)
			if debug {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose debug log")
	rootCmd.PersistentFlags().StringVarP(&fioJob, "fio-job", "j", "", "path to a fio job file to use instead of the predefined one")
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		log.Error(err.Error())
	}
	return err
}

// loadConfig returns the run configuration: the --config file if given,
// defaults otherwise.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// enterMountpoint validates the mountpoint and makes it the working
// directory so the fio test file lands on the filesystem under test.
func enterMountpoint(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return os.Chdir(path)
}
