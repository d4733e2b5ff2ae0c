//go:build unit || !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"sigs.k8s.io/yaml"

	"github.com/bacalhau-project/gtbarrier/pkg/config/types"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := Load(New(), "")
	s.Require().NoError(err)
	s.Equal(DefaultRounds, cfg.Rounds)
	s.Equal("sense", cfg.Barrier.Local)
	s.Equal("ring", cfg.Barrier.Distributed)
	s.Equal(TransportInMemory, cfg.Transport.Kind)
	s.Equal(30*time.Second, cfg.Transport.NATS.JoinTimeout)
	s.NoError(Validate(cfg))
}

func (s *ConfigSuite) TestEnvironmentOverrides() {
	s.T().Setenv(KeyAsEnvVar(RoundsKey), "25")
	s.T().Setenv(KeyAsEnvVar(BarrierLocalKey), "tree")
	s.T().Setenv(KeyAsEnvVar(TransportNATSJoinTimeout), "5s")
	s.Equal("GTBARRIER_TRANSPORT_NATS_JOINTIMEOUT", KeyAsEnvVar(TransportNATSJoinTimeout))

	cfg, err := Load(New(), "")
	s.Require().NoError(err)
	s.Equal(25, cfg.Rounds)
	s.Equal("tree", cfg.Barrier.Local)
	s.Equal(5*time.Second, cfg.Transport.NATS.JoinTimeout)
}

func (s *ConfigSuite) TestConfigFile() {
	file := types.Config{
		Rounds:  7,
		Threads: 16,
		Barrier: types.BarrierConfig{Distributed: "butterfly"},
	}
	// only the keys present in the file override defaults
	data, err := yaml.Marshal(map[string]interface{}{
		"rounds":  file.Rounds,
		"threads": file.Threads,
		"barrier": map[string]interface{}{"distributed": file.Barrier.Distributed},
	})
	s.Require().NoError(err)
	path := filepath.Join(s.T().TempDir(), "config.yaml")
	s.Require().NoError(os.WriteFile(path, data, 0o600))

	cfg, err := Load(New(), path)
	s.Require().NoError(err)
	s.Equal(7, cfg.Rounds)
	s.Equal(16, cfg.Threads)
	s.Equal("butterfly", cfg.Barrier.Distributed)
	s.Equal("sense", cfg.Barrier.Local)
}

func (s *ConfigSuite) TestMissingConfigFile() {
	_, err := Load(New(), filepath.Join(s.T().TempDir(), "missing.yaml"))
	s.Error(err)
}

func (s *ConfigSuite) TestValidate() {
	cfg := Default()
	cfg.Rounds = 0
	cfg.Barrier.Local = "ring"
	cfg.Transport.Kind = "carrier-pigeon"
	err := Validate(cfg)
	s.Require().Error(err)
	s.Contains(err.Error(), "rounds must be greater than zero")
	s.Contains(err.Error(), `unknown local barrier "ring"`)
	s.Contains(err.Error(), `unknown transport "carrier-pigeon"`)
}
