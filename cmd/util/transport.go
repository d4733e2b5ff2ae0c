package util

import (
	"context"

	"github.com/bacalhau-project/gtbarrier/pkg/config/types"
	"github.com/bacalhau-project/gtbarrier/pkg/transport/nats"
)

// ConnectNATS joins this process to the group described by cfg. The
// connection is closed by the command's cleanup manager.
func ConnectNATS(ctx context.Context, cfg types.Config) (*nats.Transport, error) {
	nc := cfg.Transport.NATS
	t, err := nats.Connect(ctx, nats.Config{
		URL:         nc.URL,
		Group:       nc.Group,
		Rank:        nc.Rank,
		Size:        cfg.Processes,
		JoinTimeout: nc.JoinTimeout,
	})
	if err != nil {
		return nil, err
	}
	GetCleanupManager(ctx).RegisterCallbackWithContext("nats transport", func(context.Context) error {
		return t.Close()
	})
	return t, nil
}
