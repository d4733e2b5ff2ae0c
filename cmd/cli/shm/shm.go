package shm

import (
	"github.com/spf13/cobra"

	"github.com/bacalhau-project/gtbarrier/cmd/util"
	"github.com/bacalhau-project/gtbarrier/cmd/util/flags"
	"github.com/bacalhau-project/gtbarrier/cmd/util/output"
	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
	"github.com/bacalhau-project/gtbarrier/pkg/barrier/shm"
	"github.com/bacalhau-project/gtbarrier/pkg/runner"
	"github.com/bacalhau-project/gtbarrier/pkg/telemetry"
)

var barrierFlag = flags.Definition{
	FlagName:     "barrier",
	Shorthand:    "b",
	ConfigKey:    flags.LocalBarrier.ConfigKey,
	DefaultValue: flags.LocalBarrier.DefaultValue,
	Description:  flags.LocalBarrier.Description,
}

var definitions = []flags.Definition{
	barrierFlag,
	flags.Threads,
	flags.Rounds,
	flags.SpinBudget,
	flags.Pin,
	flags.ResultsPath,
}

type Options struct {
	OutputOpts output.OutputOptions
}

func NewOptions() *Options {
	return &Options{
		OutputOpts: output.OutputOptions{Format: output.TableFormat},
	}
}

func NewCmd() *cobra.Command {
	o := NewOptions()

	shmCmd := &cobra.Command{
		Use:   "shm",
		Short: "Run a shared-memory barrier between goroutines of this process",
		Example: `  # Eight goroutines synchronizing through the combining tree
  gtbarrier shm --barrier tree --threads 8 --rounds 1000`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := o.run(cmd); err != nil {
				util.Fatal(cmd, err, 1)
			}
		},
	}

	flags.Register(shmCmd.Flags(), definitions...)
	shmCmd.Flags().AddFlagSet(flags.OutputFormatFlags(&o.OutputOpts))
	return shmCmd
}

func (o *Options) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := util.LoadConfig(cmd, definitions...)
	if err != nil {
		return err
	}

	kind := barrier.Kind(cfg.Barrier.Local)
	b, err := shm.New(kind, cfg.Threads, shm.WithSpinBudget(cfg.Barrier.SpinBudget))
	if err != nil {
		return err
	}
	defer b.Close()

	metrics, err := telemetry.NewBarrierMetrics()
	if err != nil {
		return err
	}

	result, err := runner.RunLocal(ctx, b, kind.String(), runner.Params{
		Rounds:  cfg.Rounds,
		Pin:     cfg.Pin,
		Metrics: metrics,
	})
	if err != nil {
		return err
	}

	util.SaveResults(ctx, cfg, result)
	return output.Output(cmd, util.ResultColumns, o.OutputOpts, []runner.Result{result})
}
