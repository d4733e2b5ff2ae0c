package flags

import (
	"fmt"

	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
	"github.com/bacalhau-project/gtbarrier/pkg/config"
)

var defaults = config.Default()

var (
	Rounds = Definition{
		FlagName:     "rounds",
		Shorthand:    "r",
		ConfigKey:    config.RoundsKey,
		DefaultValue: defaults.Rounds,
		Description:  "Number of barrier rounds each participant runs",
	}
	Threads = Definition{
		FlagName:     "threads",
		Shorthand:    "t",
		ConfigKey:    config.ThreadsKey,
		DefaultValue: defaults.Threads,
		Description:  "Number of threads (goroutines) per process",
	}
	Processes = Definition{
		FlagName:     "processes",
		Shorthand:    "p",
		ConfigKey:    config.ProcessesKey,
		DefaultValue: defaults.Processes,
		Description:  "Number of processes in the distributed group",
	}
	Pin = Definition{
		FlagName:     "pin",
		ConfigKey:    config.PinKey,
		DefaultValue: defaults.Pin,
		Description:  "Pin every participant to its own OS thread and CPU",
	}
	LocalBarrier = Definition{
		FlagName:     "local",
		ConfigKey:    config.BarrierLocalKey,
		DefaultValue: defaults.Barrier.Local,
		Description:  fmt.Sprintf("Shared-memory barrier (one of %q)", barrier.LocalKinds),
	}
	DistributedBarrier = Definition{
		FlagName:     "distributed",
		ConfigKey:    config.BarrierDistributedKey,
		DefaultValue: defaults.Barrier.Distributed,
		Description:  fmt.Sprintf("Distributed barrier (one of %q)", barrier.DistributedKinds),
	}
	SpinBudget = Definition{
		FlagName:     "spin-budget",
		ConfigKey:    config.BarrierSpinBudgetKey,
		DefaultValue: defaults.Barrier.SpinBudget,
		Description:  "Busy-wait iterations before a waiting participant starts yielding",
	}
	Transport = Definition{
		FlagName:     "transport",
		ConfigKey:    config.TransportKindKey,
		DefaultValue: defaults.Transport.Kind,
		Description: fmt.Sprintf("%q runs every rank in this process, %q runs one rank of a multi-process group",
			config.TransportInMemory, config.TransportNATS),
	}
	NATSURL = Definition{
		FlagName:     "nats-url",
		ConfigKey:    config.TransportNATSURLKey,
		DefaultValue: defaults.Transport.NATS.URL,
		Description:  "NATS server the ranks rendezvous on",
	}
	NATSGroup = Definition{
		FlagName:     "group",
		ConfigKey:    config.TransportNATSGroupKey,
		DefaultValue: defaults.Transport.NATS.Group,
		Description:  "Name shared by all ranks of one job",
	}
	NATSRank = Definition{
		FlagName:     "rank",
		ConfigKey:    config.TransportNATSRankKey,
		DefaultValue: defaults.Transport.NATS.Rank,
		Description:  "Rank of this process; rank 0 coordinates the group",
	}
	NATSJoinTimeout = Definition{
		FlagName:     "join-timeout",
		ConfigKey:    config.TransportNATSJoinTimeout,
		DefaultValue: defaults.Transport.NATS.JoinTimeout.String(),
		Description:  "How long to wait for every rank to join",
	}
	ServerHost = Definition{
		FlagName:     "host",
		ConfigKey:    config.ServerHostKey,
		DefaultValue: defaults.Server.Host,
		Description:  "Address the NATS server listens on",
	}
	ServerPort = Definition{
		FlagName:     "port",
		ConfigKey:    config.ServerPortKey,
		DefaultValue: defaults.Server.Port,
		Description:  "Port the NATS server listens on",
	}
	ResultsPath = Definition{
		FlagName:     "results",
		ConfigKey:    config.ResultsPathKey,
		DefaultValue: defaults.Results.Path,
		Description:  "SQLite file recording run history (empty disables it)",
	}
)

// TransportFlags are shared by the dist and hybrid commands.
var TransportFlags = []Definition{Transport, NATSURL, NATSGroup, NATSRank, NATSJoinTimeout}
