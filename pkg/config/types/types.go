// Package types holds the configuration schema of gtbarrier.
package types

import "time"

type Config struct {
	// Rounds is the number of barrier episodes each participant runs.
	Rounds int `yaml:"Rounds" mapstructure:"rounds"`
	// Threads per process for shm and hybrid runs.
	Threads int `yaml:"Threads" mapstructure:"threads"`
	// Processes in the distributed group.
	Processes int `yaml:"Processes" mapstructure:"processes"`
	// Pin locks each participant to an OS thread bound to one CPU.
	Pin bool `yaml:"Pin" mapstructure:"pin"`

	Barrier   BarrierConfig   `yaml:"Barrier" mapstructure:"barrier"`
	Transport TransportConfig `yaml:"Transport" mapstructure:"transport"`
	Server    ServerConfig    `yaml:"Server" mapstructure:"server"`
	Results   ResultsConfig   `yaml:"Results" mapstructure:"results"`
}

type BarrierConfig struct {
	// Local is the shared-memory barrier: sense or tree.
	Local string `yaml:"Local" mapstructure:"local"`
	// Distributed is the cross-process barrier: ring or butterfly.
	Distributed string `yaml:"Distributed" mapstructure:"distributed"`
	// SpinBudget is the number of pause-spins before a waiter yields.
	SpinBudget int `yaml:"SpinBudget" mapstructure:"spinbudget"`
}

type TransportConfig struct {
	// Kind is inmemory or nats.
	Kind string     `yaml:"Kind" mapstructure:"kind"`
	NATS NATSConfig `yaml:"NATS" mapstructure:"nats"`
}

type NATSConfig struct {
	URL         string        `yaml:"URL" mapstructure:"url"`
	Group       string        `yaml:"Group" mapstructure:"group"`
	Rank        int           `yaml:"Rank" mapstructure:"rank"`
	JoinTimeout time.Duration `yaml:"JoinTimeout" mapstructure:"jointimeout"`
}

type ServerConfig struct {
	Host string `yaml:"Host" mapstructure:"host"`
	Port int    `yaml:"Port" mapstructure:"port"`
}

type ResultsConfig struct {
	// Path of the SQLite history database. Empty disables history.
	Path string `yaml:"Path" mapstructure:"path"`
}
