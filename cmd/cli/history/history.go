package history

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/bacalhau-project/gtbarrier/cmd/util"
	"github.com/bacalhau-project/gtbarrier/cmd/util/flags"
	"github.com/bacalhau-project/gtbarrier/cmd/util/output"
	"github.com/bacalhau-project/gtbarrier/pkg/resultstore"
	"github.com/bacalhau-project/gtbarrier/pkg/runner"
)

var definitions = []flags.Definition{flags.ResultsPath}

var summaryColumns = []output.TableColumn[resultstore.Summary]{
	{
		ColumnConfig: table.ColumnConfig{Name: "Barrier"},
		Value:        func(s resultstore.Summary) string { return s.Barrier },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Participants", Align: text.AlignRight},
		Value:        func(s resultstore.Summary) string { return strconv.Itoa(s.Participants) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Runs", Align: text.AlignRight},
		Value:        func(s resultstore.Summary) string { return strconv.Itoa(s.Runs) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Avg", Align: text.AlignRight},
		Value:        func(s resultstore.Summary) string { return s.AvgPerRound.String() },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Min", Align: text.AlignRight},
		Value:        func(s resultstore.Summary) string { return s.MinPerRound.String() },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Max", Align: text.AlignRight},
		Value:        func(s resultstore.Summary) string { return s.MaxPerRound.String() },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "CPU/Round", Align: text.AlignRight},
		Value:        func(s resultstore.Summary) string { return s.CPUPerRound.String() },
	},
}

type Options struct {
	Barrier    string
	Kind       string
	Limit      int
	Summary    bool
	OutputOpts output.OutputOptions
}

func NewOptions() *Options {
	return &Options{
		Limit:      20,
		OutputOpts: output.OutputOptions{Format: output.TableFormat},
	}
}

func NewCmd() *cobra.Command {
	o := NewOptions()

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, or their per-barrier summary",
		Example: `  # The last five butterfly runs
  gtbarrier history --barrier butterfly --limit 5

  # Average time per round for every barrier and group size
  gtbarrier history --summary`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := o.run(cmd); err != nil {
				util.Fatal(cmd, err, 1)
			}
		},
	}

	flags.Register(historyCmd.Flags(), definitions...)
	historyCmd.Flags().StringVar(&o.Barrier, "barrier", o.Barrier, "Only show runs of this barrier")
	historyCmd.Flags().StringVar(&o.Kind, "kind", o.Kind, "Only show runs of this kind (shm, dist or hybrid)")
	historyCmd.Flags().IntVar(&o.Limit, "limit", o.Limit, "Maximum number of runs to show, 0 for all")
	historyCmd.Flags().BoolVar(&o.Summary, "summary", o.Summary, "Aggregate runs per barrier and group size")
	historyCmd.Flags().AddFlagSet(flags.OutputFormatFlags(&o.OutputOpts))
	return historyCmd
}

func (o *Options) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := util.LoadConfig(cmd, definitions...)
	if err != nil {
		return err
	}
	if cfg.Results.Path == "" {
		return errors.New("no results database configured")
	}

	store, err := resultstore.Open(ctx, cfg.Results.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	if o.Summary {
		summary, err := store.Summary(ctx)
		if err != nil {
			return err
		}
		return output.Output(cmd, summaryColumns, o.OutputOpts, summary)
	}

	results, err := store.List(ctx, resultstore.Filter{
		Barrier: o.Barrier,
		Kind:    runner.Mode(o.Kind),
		Limit:   o.Limit,
	})
	if err != nil {
		return err
	}
	return output.Output(cmd, util.ResultColumns, o.OutputOpts, results)
}
