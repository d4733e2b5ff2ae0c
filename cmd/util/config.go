package util

import (
	"github.com/spf13/cobra"

	"github.com/bacalhau-project/gtbarrier/cmd/util/flags"
	"github.com/bacalhau-project/gtbarrier/pkg/config"
	"github.com/bacalhau-project/gtbarrier/pkg/config/types"
)

// LoadConfig binds the command's flags and returns the validated configuration.
func LoadConfig(cmd *cobra.Command, defs ...flags.Definition) (types.Config, error) {
	ctx := cmd.Context()
	v := GetViper(ctx)
	if err := flags.Bind(cmd, v, defs...); err != nil {
		return types.Config{}, err
	}
	cfg, err := config.Load(v, GetConfigFile(ctx))
	if err != nil {
		return types.Config{}, err
	}
	return cfg, config.Validate(cfg)
}
