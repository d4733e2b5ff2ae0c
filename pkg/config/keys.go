package config

// Configuration keys. Each maps to the environment variable
// GTBARRIER_<KEY> with dots replaced by underscores.
const (
	RoundsKey                = "rounds"
	ThreadsKey               = "threads"
	ProcessesKey             = "processes"
	PinKey                   = "pin"
	BarrierLocalKey          = "barrier.local"
	BarrierDistributedKey    = "barrier.distributed"
	BarrierSpinBudgetKey     = "barrier.spinbudget"
	TransportKindKey         = "transport.kind"
	TransportNATSURLKey      = "transport.nats.url"
	TransportNATSGroupKey    = "transport.nats.group"
	TransportNATSRankKey     = "transport.nats.rank"
	TransportNATSJoinTimeout = "transport.nats.jointimeout"
	ServerHostKey            = "server.host"
	ServerPortKey            = "server.port"
	ResultsPathKey           = "results.path"
)
