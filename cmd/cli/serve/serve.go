package serve

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bacalhau-project/gtbarrier/cmd/util"
	"github.com/bacalhau-project/gtbarrier/cmd/util/flags"
	"github.com/bacalhau-project/gtbarrier/pkg/transport/nats"
)

var definitions = []flags.Definition{
	flags.ServerHost,
	flags.ServerPort,
}

func NewCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run an embedded NATS server that distributed ranks rendezvous on",
		Example: `  gtbarrier serve --host 0.0.0.0 --port 4222`,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := serve(cmd); err != nil {
				util.Fatal(cmd, err, 1)
			}
		},
	}
	flags.Register(serveCmd.Flags(), definitions...)
	return serveCmd
}

func serve(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := util.LoadConfig(cmd, definitions...)
	if err != nil {
		return err
	}

	sm, err := nats.NewServerManager(ctx, nats.ServerManagerParams{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
		Name: "gtbarrier",
	})
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("URL", sm.ClientURL()).Msg("NATS server ready")
	cmd.Printf("Ranks can connect with --transport nats --nats-url %s\n", sm.ClientURL())

	<-ctx.Done()

	if stats, err := sm.Stats(); err == nil {
		log.Ctx(ctx).Info().
			Int("Connections", stats.Connections).
			Int64("InMsgs", stats.InMsgs).
			Int64("OutMsgs", stats.OutMsgs).
			Msg("shutting down NATS server")
	}
	sm.Stop()
	return nil
}
