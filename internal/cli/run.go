package cli

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/wordarena/arena"
	"github.com/vkngwrapper/wordarena/memutils/metadata"
)

type runConfiguration struct {
	Base *baseConfiguration

	WordSize     int
	Words        int
	Strategy     string
	WorkloadFile string
	DumpFile     string
	BitmapFile   string
	Stats        bool
	Detailed     bool
}

func newRunCmd(baseConfig *baseConfiguration) *cobra.Command {
	config := &runConfiguration{Base: baseConfig}
	var cmd = &cobra.Command{
		Use:   "run",
		Short: "Replays a workload against a fresh arena",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkload(cmd, config)
		},
	}

	cmd.Flags().IntVar(&config.WordSize, "word-size", 8, "size of one arena word in bytes")
	cmd.Flags().IntVar(&config.Words, "words", 1024, "arena size in words")
	cmd.Flags().StringVar(&config.Strategy, "strategy", "best-fit", "placement strategy, one of: best-fit, worst-fit")
	cmd.Flags().StringVarP(&config.WorkloadFile, "workload", "w", "", "workload file (yaml)")
	cmd.Flags().StringVar(&config.DumpFile, "dump", "", "write the hole map to this file after the replay")
	cmd.Flags().StringVar(&config.BitmapFile, "bitmap", "", "write the encoded occupancy bitmap to this file after the replay")
	cmd.Flags().BoolVar(&config.Stats, "stats", false, "print arena statistics as JSON after the replay")
	cmd.Flags().BoolVar(&config.Detailed, "detailed", false, "include every region in the statistics")

	return cmd
}

func runWorkload(cmd *cobra.Command, config *runConfiguration) error {
	logger := config.Base.Logger()

	if config.WorkloadFile == "" {
		return errors.New("a workload file is required (--workload)")
	}

	strategy, err := metadata.StrategyByName(config.Strategy)
	if err != nil {
		return err
	}

	workload, err := LoadWorkload(config.WorkloadFile)
	if err != nil {
		return err
	}

	manager, err := arena.New(logger, config.WordSize, strategy, arena.CreateOptions{})
	if err != nil {
		return errors.Wrap(err, "creating manager")
	}
	if err := manager.Initialize(config.Words); err != nil {
		return errors.Wrap(err, "initializing arena")
	}
	defer manager.Shutdown()

	out := cmd.OutOrStdout()
	if err := workload.Replay(manager, out); err != nil {
		return err
	}

	if config.DumpFile != "" {
		if err := manager.DumpMemoryMap(config.DumpFile); err != nil {
			return err
		}
	}

	if config.BitmapFile != "" {
		if err := writeFile(config.BitmapFile, manager.Bitmap()); err != nil {
			return err
		}
	}

	if config.Stats {
		if _, err := fmt.Fprintln(out, manager.BuildStatsString(config.Detailed)); err != nil {
			return errors.Wrap(err, "writing statistics")
		}
	}

	return nil
}
