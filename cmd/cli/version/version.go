package version

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/bacalhau-project/gtbarrier/cmd/util"
	"github.com/bacalhau-project/gtbarrier/cmd/util/flags"
	"github.com/bacalhau-project/gtbarrier/cmd/util/output"
	"github.com/bacalhau-project/gtbarrier/pkg/version"
)

var columns = []output.TableColumn[version.BuildInfo]{
	{
		ColumnConfig: table.ColumnConfig{Name: "Version"},
		Value:        func(v version.BuildInfo) string { return v.GitVersion },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Commit"},
		Value:        func(v version.BuildInfo) string { return v.GitCommit },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Go"},
		Value:        func(v version.BuildInfo) string { return v.GoVersion },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Platform"},
		Value:        func(v version.BuildInfo) string { return v.GOOS + "/" + v.GOARCH },
	},
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
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Get the gtbarrier version.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := output.Output(cmd, columns, o.OutputOpts, []version.BuildInfo{version.Get()}); err != nil {
				util.Fatal(cmd, err, 1)
			}
		},
	}
	versionCmd.Flags().AddFlagSet(flags.OutputFormatFlags(&o.OutputOpts))
	return versionCmd
}
