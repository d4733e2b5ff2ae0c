package hybrid

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/bacalhau-project/gtbarrier/cmd/util"
	"github.com/bacalhau-project/gtbarrier/cmd/util/flags"
	"github.com/bacalhau-project/gtbarrier/cmd/util/output"
	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
	"github.com/bacalhau-project/gtbarrier/pkg/barrier/hybrid"
	"github.com/bacalhau-project/gtbarrier/pkg/barrier/shm"
	"github.com/bacalhau-project/gtbarrier/pkg/config"
	"github.com/bacalhau-project/gtbarrier/pkg/config/types"
	"github.com/bacalhau-project/gtbarrier/pkg/logger"
	"github.com/bacalhau-project/gtbarrier/pkg/runner"
	"github.com/bacalhau-project/gtbarrier/pkg/telemetry"
	"github.com/bacalhau-project/gtbarrier/pkg/transport"
	"github.com/bacalhau-project/gtbarrier/pkg/transport/inmemory"
)

var definitions = append([]flags.Definition{
	flags.LocalBarrier,
	flags.DistributedBarrier,
	flags.Processes,
	flags.Threads,
	flags.Rounds,
	flags.SpinBudget,
	flags.Pin,
	flags.ResultsPath,
}, flags.TransportFlags...)

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

	hybridCmd := &cobra.Command{
		Use:   "hybrid",
		Short: "Run a shared-memory barrier inside each process joined by a distributed barrier",
		Example: `  # Two processes of four threads, simulated in this process
  gtbarrier hybrid --processes 2 --threads 4 --local tree --distributed butterfly`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := o.run(cmd); err != nil {
				util.Fatal(cmd, err, 1)
			}
		},
	}

	flags.Register(hybridCmd.Flags(), definitions...)
	hybridCmd.Flags().AddFlagSet(flags.OutputFormatFlags(&o.OutputOpts))
	return hybridCmd
}

func (o *Options) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := util.LoadConfig(cmd, definitions...)
	if err != nil {
		return err
	}

	metrics, err := telemetry.NewBarrierMetrics()
	if err != nil {
		return err
	}
	params := runner.Params{Rounds: cfg.Rounds, Pin: cfg.Pin, Metrics: metrics}

	var results []runner.Result
	switch cfg.Transport.Kind {
	case config.TransportNATS:
		t, err := util.ConnectNATS(ctx, cfg)
		if err != nil {
			return err
		}
		result, err := runProcess(ctx, cfg, t, params)
		if err != nil {
			return err
		}
		results = append(results, result)
	default:
		results, err = runInMemory(ctx, cfg, params)
		if err != nil {
			return err
		}
	}

	util.SaveResults(ctx, cfg, results...)
	return output.Output(cmd, util.ResultColumns, o.OutputOpts, results)
}

// runInMemory simulates every process of the group in this one, each with
// its own shared-memory barrier.
func runInMemory(ctx context.Context, cfg types.Config, params runner.Params) ([]runner.Result, error) {
	fabric, err := inmemory.NewFabric(cfg.Processes, inmemory.WithThreadLevel(transport.Funneled))
	if err != nil {
		return nil, err
	}
	defer fabric.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]runner.Result, cfg.Processes)
	errs := make([]error, cfg.Processes)
	done := make(chan int, cfg.Processes)
	for rank, t := range fabric.Transports() {
		go func(rank int, t transport.Transport) {
			defer func() { done <- rank }()
			results[rank], errs[rank] = runProcess(ctx, cfg, t, params)
			if errs[rank] != nil {
				errs[rank] = fmt.Errorf("process %d: %w", rank, errs[rank])
				cancel()
			}
		}(rank, t)
	}
	for i := 0; i < cfg.Processes; i++ {
		<-done
	}
	return results, multierr.Combine(errs...)
}

func runProcess(ctx context.Context, cfg types.Config, t transport.Transport, params runner.Params) (runner.Result, error) {
	ctx = logger.ContextWithRankLogger(ctx, t.Rank())
	local, err := shm.New(barrier.Kind(cfg.Barrier.Local), cfg.Threads, shm.WithSpinBudget(cfg.Barrier.SpinBudget))
	if err != nil {
		return runner.Result{}, err
	}
	h, err := hybrid.New(hybrid.Params{
		Local:             local,
		Transport:         t,
		Distributed:       barrier.Kind(cfg.Barrier.Distributed),
		ExpectedProcesses: cfg.Processes,
	})
	if err != nil {
		return runner.Result{}, multierr.Append(err, local.Close())
	}
	defer h.Close()

	name := fmt.Sprintf("%s+%s", cfg.Barrier.Local, cfg.Barrier.Distributed)
	return runner.RunHybrid(ctx, h, name, params)
}
