//go:build unit || !integration

package resultstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/bacalhau-project/gtbarrier/pkg/logger"
	"github.com/bacalhau-project/gtbarrier/pkg/runner"
)

type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())
	s.ctx = context.Background()
	var err error
	s.store, err = Open(s.ctx, filepath.Join(s.T().TempDir(), "nested", "results.db"))
	s.Require().NoError(err)
}

func (s *StoreSuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func result(kind runner.Mode, name string, participants int, avg time.Duration, started time.Time) runner.Result {
	return runner.Result{
		ID:           uuid.NewString(),
		Kind:         kind,
		Barrier:      name,
		Participants: participants,
		Processes:    1,
		Rounds:       10,
		Wall:         10 * avg,
		CPU:          5 * avg,
		AvgPerRound:  avg,
		StartedAt:    started,
	}
}

func (s *StoreSuite) TestSaveAndList() {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	first := result(runner.ModeShm, "sense", 4, time.Microsecond, base)
	second := result(runner.ModeShm, "tree", 4, 2*time.Microsecond, base.Add(time.Minute))
	third := result(runner.ModeDist, "ring", 8, 30*time.Microsecond, base.Add(2*time.Minute))
	for _, r := range []runner.Result{first, second, third} {
		s.Require().NoError(s.store.Save(s.ctx, r))
	}

	all, err := s.store.List(s.ctx, Filter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(third.ID, all[0].ID, "newest first")
	s.Equal(first, all[2])

	tree, err := s.store.List(s.ctx, Filter{Barrier: "tree"})
	s.Require().NoError(err)
	s.Require().Len(tree, 1)
	s.Equal(second.ID, tree[0].ID)

	shm, err := s.store.List(s.ctx, Filter{Kind: runner.ModeShm, Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(shm, 1)
	s.Equal(second.ID, shm[0].ID)
}

func (s *StoreSuite) TestDuplicateID() {
	r := result(runner.ModeShm, "sense", 2, time.Microsecond, time.Now())
	s.Require().NoError(s.store.Save(s.ctx, r))
	s.Error(s.store.Save(s.ctx, r))
}

func (s *StoreSuite) TestSummary() {
	now := time.Now().UTC()
	for _, avg := range []time.Duration{100, 200, 300} {
		s.Require().NoError(s.store.Save(s.ctx, result(runner.ModeShm, "sense", 4, avg, now)))
	}
	s.Require().NoError(s.store.Save(s.ctx, result(runner.ModeShm, "sense", 8, 1000, now)))

	summary, err := s.store.Summary(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(summary, 2)
	s.Equal(Summary{
		Barrier:      "sense",
		Participants: 4,
		Runs:         3,
		AvgPerRound:  200,
		MinPerRound:  100,
		MaxPerRound:  300,
		CPUPerRound:  100,
	}, summary[0])
	s.Equal(8, summary[1].Participants)
	s.Equal(500*time.Nanosecond, summary[1].CPUPerRound)
}

func (s *StoreSuite) TestSummaryIgnoresRunsWithoutRounds() {
	empty := result(runner.ModeDist, "ring", 2, 0, time.Now().UTC())
	empty.Rounds = 0
	s.Require().NoError(s.store.Save(s.ctx, empty))

	summary, err := s.store.Summary(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(summary, 1)
	s.Equal(1, summary[0].Runs)
	s.Zero(summary[0].CPUPerRound)
}
