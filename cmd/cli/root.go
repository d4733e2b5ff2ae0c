package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/bacalhau-project/gtbarrier/cmd/cli/dist"
	"github.com/bacalhau-project/gtbarrier/cmd/cli/history"
	"github.com/bacalhau-project/gtbarrier/cmd/cli/hybrid"
	"github.com/bacalhau-project/gtbarrier/cmd/cli/serve"
	"github.com/bacalhau-project/gtbarrier/cmd/cli/shm"
	"github.com/bacalhau-project/gtbarrier/cmd/cli/version"
	"github.com/bacalhau-project/gtbarrier/cmd/util"
	"github.com/bacalhau-project/gtbarrier/cmd/util/flags"
	"github.com/bacalhau-project/gtbarrier/pkg/config"
	"github.com/bacalhau-project/gtbarrier/pkg/logger"
	"github.com/bacalhau-project/gtbarrier/pkg/system"
	"github.com/bacalhau-project/gtbarrier/pkg/telemetry"
)

func NewRootCmd() *cobra.Command {
	var (
		configFile  string
		loggingMode = logger.LogModeDefault
	)
	if mode, err := logger.ParseLogMode(os.Getenv("LOG_TYPE")); err == nil {
		loggingMode = mode
	}

	rootCmd := &cobra.Command{
		Use:   "gtbarrier",
		Short: "Shared-memory, distributed and hybrid synchronization barriers",
		Long: `Run and measure reusable barriers: sense-reversing and combining-tree barriers
between goroutines, ring and butterfly barriers between processes, and a hybrid
of the two.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()

			logger.ConfigureLogging(loggingMode)
			telemetry.SetupFromEnvs(ctx)

			cm := system.NewCleanupManager()
			cm.RegisterCallbackWithContext("telemetry", telemetry.Cleanup)
			ctx = context.WithValue(ctx, util.SystemManagerKey, cm)
			ctx = context.WithValue(ctx, util.ViperKey, config.New())
			ctx = context.WithValue(ctx, util.ConfigFileKey, configFile)

			cmd.SetContext(ctx)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			_ = util.GetCleanupManager(ctx).Cleanup(ctx)
		},
	}

	rootCmd.AddCommand(shm.NewCmd())
	rootCmd.AddCommand(dist.NewCmd())
	rootCmd.AddCommand(hybrid.NewCmd())
	rootCmd.AddCommand(serve.NewCmd())
	rootCmd.AddCommand(history.NewCmd())
	rootCmd.AddCommand(version.NewCmd())

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"YAML config file; environment variables GTBARRIER_<KEY> and flags override it")
	rootCmd.PersistentFlags().Var(flags.LoggingFlag(&loggingMode), "log-mode",
		`Log format: 'default','json','combined','event'`)
	return rootCmd
}

func Execute() {
	rootCmd := NewRootCmd()

	// Ensure commands are able to stop cleanly if someone presses ctrl+c
	ctx, cancel := signal.NotifyContext(context.Background(), util.ShutdownSignals...)
	defer cancel()
	rootCmd.SetContext(ctx)

	// Use stdout, not stderr for cmd.Print output, so that
	// e.g. RESULT=$(gtbarrier shm --output json) works
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		util.Fatal(rootCmd, err, 1)
	}
}
