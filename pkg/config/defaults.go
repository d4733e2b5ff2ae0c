package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
	"github.com/bacalhau-project/gtbarrier/pkg/barrier/shm"
	"github.com/bacalhau-project/gtbarrier/pkg/config/types"
	"github.com/bacalhau-project/gtbarrier/pkg/transport/nats"
)

const (
	TransportInMemory = "inmemory"
	TransportNATS     = "nats"

	DefaultRounds = 10
	DefaultPort   = 4222
)

// Default is the configuration used when nothing else is set.
func Default() types.Config {
	return types.Config{
		Rounds:    DefaultRounds,
		Threads:   4,
		Processes: 2,
		Barrier: types.BarrierConfig{
			Local:       barrier.KindSense.String(),
			Distributed: barrier.KindRing.String(),
			SpinBudget:  shm.DefaultSpinBudget,
		},
		Transport: types.TransportConfig{
			Kind: TransportInMemory,
			NATS: types.NATSConfig{
				URL:         "nats://127.0.0.1:4222",
				Group:       "default",
				JoinTimeout: nats.DefaultJoinTimeout,
			},
		},
		Server: types.ServerConfig{
			Host: "0.0.0.0",
			Port: DefaultPort,
		},
		Results: types.ResultsConfig{
			Path: defaultResultsPath(),
		},
	}
}

func defaultResultsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gtbarrier", "results.db")
}

// setDefaults registers every field of cfg as a viper default so that
// environment variables are picked up for all keys.
func setDefaults(v *viper.Viper, cfg types.Config) {
	defaults := map[string]interface{}{
		RoundsKey:                cfg.Rounds,
		ThreadsKey:               cfg.Threads,
		ProcessesKey:             cfg.Processes,
		PinKey:                   cfg.Pin,
		BarrierLocalKey:          cfg.Barrier.Local,
		BarrierDistributedKey:    cfg.Barrier.Distributed,
		BarrierSpinBudgetKey:     cfg.Barrier.SpinBudget,
		TransportKindKey:         cfg.Transport.Kind,
		TransportNATSURLKey:      cfg.Transport.NATS.URL,
		TransportNATSGroupKey:    cfg.Transport.NATS.Group,
		TransportNATSRankKey:     cfg.Transport.NATS.Rank,
		TransportNATSJoinTimeout: cfg.Transport.NATS.JoinTimeout.String(),
		ServerHostKey:            cfg.Server.Host,
		ServerPortKey:            cfg.Server.Port,
		ResultsPathKey:           cfg.Results.Path,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}
