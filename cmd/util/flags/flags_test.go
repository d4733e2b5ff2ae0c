//go:build unit || !integration

package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bacalhau-project/gtbarrier/cmd/util/output"
	"github.com/bacalhau-project/gtbarrier/pkg/logger"
)

func TestLoggingFlag(t *testing.T) {
	mode := logger.LogModeDefault
	f := LoggingFlag(&mode)

	require.NoError(t, f.Set("json"))
	assert.Equal(t, logger.LogModeJSON, mode)
	assert.Equal(t, "json", f.String())
	assert.Error(t, f.Set("xml"))
	assert.Equal(t, logger.LogModeJSON, mode)
}

func TestOutputFormatFlags(t *testing.T) {
	opts := output.OutputOptions{Format: output.TableFormat}
	fs := OutputFormatFlags(&opts)

	require.NoError(t, fs.Parse([]string{"--output", "yaml", "--hide-header"}))
	assert.Equal(t, output.YAMLFormat, opts.Format)
	assert.True(t, opts.HideHeader)
	assert.Error(t, fs.Parse([]string{"--output", "xml"}))
}

func TestRegisterAndBind(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	Register(cmd.Flags(), Rounds, Pin, LocalBarrier)

	rounds, err := cmd.Flags().GetInt(Rounds.FlagName)
	require.NoError(t, err)
	assert.Equal(t, Rounds.DefaultValue, rounds)

	require.NoError(t, cmd.Flags().Parse([]string{"--rounds", "42", "--local", "tree"}))

	v := viper.New()
	require.NoError(t, Bind(cmd, v, Rounds, Pin, LocalBarrier))
	assert.Equal(t, 42, v.GetInt(Rounds.ConfigKey))
	assert.Equal(t, "tree", v.GetString(LocalBarrier.ConfigKey))
	assert.False(t, v.GetBool(Pin.ConfigKey))
}
