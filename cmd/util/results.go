package util

import (
	"context"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog/log"

	"github.com/bacalhau-project/gtbarrier/cmd/util/output"
	"github.com/bacalhau-project/gtbarrier/pkg/config/types"
	"github.com/bacalhau-project/gtbarrier/pkg/resultstore"
	"github.com/bacalhau-project/gtbarrier/pkg/runner"
)

var ResultColumns = []output.TableColumn[runner.Result]{
	{
		ColumnConfig: table.ColumnConfig{Name: "Kind"},
		Value:        func(r runner.Result) string { return string(r.Kind) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Barrier"},
		Value:        func(r runner.Result) string { return r.Barrier },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Participants", Align: text.AlignRight},
		Value:        func(r runner.Result) string { return strconv.Itoa(r.Participants) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Processes", Align: text.AlignRight},
		Value:        func(r runner.Result) string { return strconv.Itoa(r.Processes) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Rank", Align: text.AlignRight},
		Value:        func(r runner.Result) string { return strconv.Itoa(r.Rank) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Rounds", Align: text.AlignRight},
		Value:        func(r runner.Result) string { return strconv.Itoa(r.Rounds) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Wall", Align: text.AlignRight},
		Value:        func(r runner.Result) string { return r.Wall.String() },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "CPU", Align: text.AlignRight},
		Value:        func(r runner.Result) string { return r.CPU.String() },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Per Round", Align: text.AlignRight},
		Value:        func(r runner.Result) string { return r.AvgPerRound.String() },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Started"},
		Value:        func(r runner.Result) string { return r.StartedAt.Format(time.DateTime) },
	},
}

// SaveResults appends results to the history database, when one is
// configured. Failures are logged, never fatal.
func SaveResults(ctx context.Context, cfg types.Config, results ...runner.Result) {
	if cfg.Results.Path == "" {
		return
	}
	store, err := resultstore.Open(ctx, cfg.Results.Path)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("results will not be recorded")
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("failed to close results database")
		}
	}()
	for _, r := range results {
		if err := store.Save(ctx, r); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("failed to record result")
		}
	}
}
