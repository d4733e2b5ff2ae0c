//go:build unit || !integration

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/suite"

	"github.com/bacalhau-project/gtbarrier/cmd/util"
	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
	"github.com/bacalhau-project/gtbarrier/pkg/logger"
	"github.com/bacalhau-project/gtbarrier/pkg/resultstore"
	"github.com/bacalhau-project/gtbarrier/pkg/runner"
	"github.com/bacalhau-project/gtbarrier/pkg/version"
)

type CommandSuite struct {
	suite.Suite
	results  string
	fatalErr error
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandSuite))
}

func (s *CommandSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())
	s.T().Setenv("GTBARRIER_DISABLE_TELEMETRY", "1")
	s.results = filepath.Join(s.T().TempDir(), "results.db")
	s.fatalErr = nil

	oldFatal := util.Fatal
	util.Fatal = func(_ *cobra.Command, err error, _ int) {
		s.fatalErr = err
	}
	s.T().Cleanup(func() { util.Fatal = oldFatal })
}

func (s *CommandSuite) execute(args ...string) string {
	root := NewRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	s.Require().NoError(root.ExecuteContext(context.Background()))
	return out.String()
}

func (s *CommandSuite) runResults(args ...string) []runner.Result {
	out := s.execute(append(args, "--results", s.results, "--output", "json")...)
	s.Require().NoError(s.fatalErr)

	var results []runner.Result
	s.Require().NoError(json.Unmarshal([]byte(out), &results))
	return results
}

func (s *CommandSuite) TestVersion() {
	out := s.execute("version", "--output", "json")
	s.Require().NoError(s.fatalErr)

	var infos []version.BuildInfo
	s.Require().NoError(json.Unmarshal([]byte(out), &infos))
	s.Require().Len(infos, 1)
	s.Equal(version.Get(), infos[0])
}

func (s *CommandSuite) TestShm() {
	for _, kind := range barrier.LocalKinds {
		s.Run(kind.String(), func() {
			results := s.runResults("shm", "--barrier", kind.String(), "--threads", "5", "--rounds", "20")
			s.Require().Len(results, 1)
			s.Equal(runner.ModeShm, results[0].Kind)
			s.Equal(kind.String(), results[0].Barrier)
			s.Equal(5, results[0].Participants)
			s.Equal(20, results[0].Rounds)
		})
	}
}

func (s *CommandSuite) TestDistInMemory() {
	for _, kind := range barrier.DistributedKinds {
		s.Run(kind.String(), func() {
			results := s.runResults("dist", "--barrier", kind.String(), "--processes", "4", "--rounds", "15")
			s.Require().Len(results, 4)
			for rank, r := range results {
				s.Equal(runner.ModeDist, r.Kind)
				s.Equal(rank, r.Rank)
				s.Equal(4, r.Processes)
				s.Equal(15, r.Rounds)
			}
		})
	}
}

func (s *CommandSuite) TestDistRejectsButterflyOfThree() {
	s.execute("dist", "--barrier", "butterfly", "--processes", "3", "--results", s.results)
	s.ErrorIs(s.fatalErr, barrier.ErrNotPowerOfTwo)
}

func (s *CommandSuite) TestHybridInMemory() {
	results := s.runResults("hybrid",
		"--processes", "2", "--threads", "3", "--local", "tree", "--distributed", "butterfly", "--rounds", "10")
	s.Require().Len(results, 2)
	for rank, r := range results {
		s.Equal(runner.ModeHybrid, r.Kind)
		s.Equal("tree+butterfly", r.Barrier)
		s.Equal(rank, r.Rank)
		s.Equal(6, r.Participants)
		s.Equal(2, r.Processes)
	}
}

func (s *CommandSuite) TestInvalidBarrier() {
	s.execute("shm", "--barrier", "ring", "--results", s.results)
	s.Error(s.fatalErr)
}

func (s *CommandSuite) TestHistory() {
	s.runResults("shm", "--barrier", "sense", "--threads", "2")
	s.runResults("shm", "--barrier", "tree", "--threads", "2")
	s.runResults("dist", "--barrier", "ring", "--processes", "2")

	all := s.runResults("history")
	s.Len(all, 4)
	s.Equal("ring", all[0].Barrier)

	sense := s.runResults("history", "--barrier", "sense")
	s.Require().Len(sense, 1)
	s.Equal("sense", sense[0].Barrier)

	out := s.execute("history", "--summary", "--results", s.results, "--output", "json")
	s.Require().NoError(s.fatalErr)
	var summary []resultstore.Summary
	s.Require().NoError(json.Unmarshal([]byte(out), &summary))
	s.Len(summary, 3)
}
