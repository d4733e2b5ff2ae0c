package dist

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/bacalhau-project/gtbarrier/cmd/util"
	"github.com/bacalhau-project/gtbarrier/cmd/util/flags"
	"github.com/bacalhau-project/gtbarrier/cmd/util/output"
	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
	"github.com/bacalhau-project/gtbarrier/pkg/barrier/dist"
	"github.com/bacalhau-project/gtbarrier/pkg/config"
	"github.com/bacalhau-project/gtbarrier/pkg/config/types"
	"github.com/bacalhau-project/gtbarrier/pkg/logger"
	"github.com/bacalhau-project/gtbarrier/pkg/runner"
	"github.com/bacalhau-project/gtbarrier/pkg/telemetry"
	"github.com/bacalhau-project/gtbarrier/pkg/transport"
	"github.com/bacalhau-project/gtbarrier/pkg/transport/inmemory"
)

var barrierFlag = flags.Definition{
	FlagName:     "barrier",
	Shorthand:    "b",
	ConfigKey:    flags.DistributedBarrier.ConfigKey,
	DefaultValue: flags.DistributedBarrier.DefaultValue,
	Description:  flags.DistributedBarrier.Description,
}

var definitions = append([]flags.Definition{
	barrierFlag,
	flags.Processes,
	flags.Rounds,
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

	distCmd := &cobra.Command{
		Use:   "dist",
		Short: "Run a message-passing barrier between processes",
		Example: `  # Eight ranks inside this process
  gtbarrier dist --barrier butterfly --processes 8

  # Rank 2 of a four process job rendezvousing on a NATS server
  gtbarrier dist --transport nats --nats-url nats://10.0.0.1:4222 --group job-1 --processes 4 --rank 2`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := o.run(cmd); err != nil {
				util.Fatal(cmd, err, 1)
			}
		},
	}

	flags.Register(distCmd.Flags(), definitions...)
	distCmd.Flags().AddFlagSet(flags.OutputFormatFlags(&o.OutputOpts))
	return distCmd
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
	kind := barrier.Kind(cfg.Barrier.Distributed)

	var results []runner.Result
	switch cfg.Transport.Kind {
	case config.TransportNATS:
		t, err := util.ConnectNATS(ctx, cfg)
		if err != nil {
			return err
		}
		result, err := runRank(ctx, kind, t, cfg.Processes, params)
		if err != nil {
			return err
		}
		results = append(results, result)
	default:
		results, err = runInMemory(ctx, kind, cfg, params)
		if err != nil {
			return err
		}
	}

	util.SaveResults(ctx, cfg, results...)
	return output.Output(cmd, util.ResultColumns, o.OutputOpts, results)
}

// runInMemory runs every rank of the group in this process, one goroutine
// per rank.
func runInMemory(ctx context.Context, kind barrier.Kind, cfg types.Config, params runner.Params) ([]runner.Result, error) {
	fabric, err := inmemory.NewFabric(cfg.Processes)
	if err != nil {
		return nil, err
	}
	defer fabric.Close()

	// a failed rank leaves its peers blocked
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]runner.Result, cfg.Processes)
	errs := make([]error, cfg.Processes)
	done := make(chan int, cfg.Processes)
	for rank, t := range fabric.Transports() {
		go func(rank int, t transport.Transport) {
			defer func() { done <- rank }()
			results[rank], errs[rank] = runRank(ctx, kind, t, cfg.Processes, params)
			if errs[rank] != nil {
				errs[rank] = fmt.Errorf("rank %d: %w", rank, errs[rank])
				cancel()
			}
		}(rank, t)
	}
	for i := 0; i < cfg.Processes; i++ {
		<-done
	}
	return results, multierr.Combine(errs...)
}

func runRank(ctx context.Context, kind barrier.Kind, t transport.Transport, expected int, params runner.Params) (runner.Result, error) {
	ctx = logger.ContextWithRankLogger(ctx, t.Rank())
	b, err := dist.New(kind, t, expected)
	if err != nil {
		return runner.Result{}, err
	}
	defer b.Close()
	return runner.RunDistributed(ctx, b, kind.String(), params)
}
