// Package config loads gtbarrier settings from defaults, an optional YAML
// file, GTBARRIER_* environment variables and command line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
	"github.com/bacalhau-project/gtbarrier/pkg/config/types"
	"github.com/bacalhau-project/gtbarrier/pkg/lib/validate"
)

const (
	environmentVariablePrefix = "GTBARRIER"
	configType                = "yaml"
)

var (
	environmentVariableReplace = strings.NewReplacer(".", "_")
	configDecoderHook          = viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	))
)

// New returns a viper instance with defaults and environment lookup set up.
// Flags can be bound to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(environmentVariablePrefix)
	v.SetEnvKeyReplacer(environmentVariableReplace)
	v.SetTypeByDefaultValue(true)
	setDefaults(v, Default())
	v.AutomaticEnv()
	return v
}

// Load reads path (if not empty) into v and decodes the result.
func Load(v *viper.Viper, path string) (types.Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(configType)
		if err := v.ReadInConfig(); err != nil {
			return types.Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var out types.Config
	if err := v.Unmarshal(&out, configDecoderHook); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return out, nil
}

// Validate checks the settings every command relies on.
func Validate(cfg types.Config) error {
	return errors.Join(
		validate.IsGreaterThanZero(cfg.Rounds, "rounds must be greater than zero, got %d", cfg.Rounds),
		validate.IsGreaterThanZero(cfg.Threads, "threads must be greater than zero, got %d", cfg.Threads),
		validate.IsGreaterThanZero(cfg.Processes, "processes must be greater than zero, got %d", cfg.Processes),
		validate.IsGreaterOrEqualToZero(cfg.Barrier.SpinBudget,
			"spin budget must not be negative, got %d", cfg.Barrier.SpinBudget),
		validate.OneOf(barrier.Kind(cfg.Barrier.Local), barrier.LocalKinds,
			"unknown local barrier %q", cfg.Barrier.Local),
		validate.OneOf(barrier.Kind(cfg.Barrier.Distributed), barrier.DistributedKinds,
			"unknown distributed barrier %q", cfg.Barrier.Distributed),
		validate.OneOf(cfg.Transport.Kind, []string{TransportInMemory, TransportNATS},
			"unknown transport %q", cfg.Transport.Kind),
		validate.IsInRange(cfg.Server.Port, 0, 65535, "invalid server port %d", cfg.Server.Port),
	)
}

// KeyAsEnvVar returns the environment variable corresponding to a config key
func KeyAsEnvVar(key string) string {
	return strings.ToUpper(
		fmt.Sprintf("%s_%s", environmentVariablePrefix, environmentVariableReplace.Replace(key)),
	)
}
