package runner

import (
	"time"

	"github.com/bacalhau-project/gtbarrier/pkg/telemetry"
)

// Mode names the kind of run a Result describes.
type Mode string

const (
	ModeShm    Mode = "shm"
	ModeDist   Mode = "dist"
	ModeHybrid Mode = "hybrid"
)

const DefaultRounds = 10

type Params struct {
	// Rounds of Wait per participant. Zero means DefaultRounds.
	Rounds int
	// Pin locks every participant goroutine to its own OS thread and CPU.
	Pin bool
	// Metrics records rounds and round latency when set.
	Metrics *telemetry.BarrierMetrics
}

func (p Params) rounds() int {
	if p.Rounds <= 0 {
		return DefaultRounds
	}
	return p.Rounds
}

// Result is what one process measured during a run.
type Result struct {
	ID           string        `json:"id"`
	Kind         Mode          `json:"kind"`
	Barrier      string        `json:"barrier"`
	Participants int           `json:"participants"`
	Processes    int           `json:"processes"`
	Rank         int           `json:"rank"`
	Rounds       int           `json:"rounds"`
	Wall         time.Duration `json:"wall"`
	CPU          time.Duration `json:"cpu"`
	AvgPerRound  time.Duration `json:"avgPerRound"`
	StartedAt    time.Time     `json:"startedAt"`
}
