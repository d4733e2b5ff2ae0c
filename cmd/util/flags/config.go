package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Definition ties a command line flag to a config key.
type Definition struct {
	FlagName     string
	ConfigKey    string
	DefaultValue interface{}
	Description  string
	Shorthand    string
}

// Register adds the flags of defs to fs with their defaults.
func Register(fs *pflag.FlagSet, defs ...Definition) {
	for _, d := range defs {
		switch v := d.DefaultValue.(type) {
		case int:
			fs.IntP(d.FlagName, d.Shorthand, v, d.Description)
		case bool:
			fs.BoolP(d.FlagName, d.Shorthand, v, d.Description)
		case string:
			fs.StringP(d.FlagName, d.Shorthand, v, d.Description)
		default:
			fs.StringP(d.FlagName, d.Shorthand, "", d.Description)
		}
	}
}

// Bind binds every flag of defs that the user set to its config key, so
// flags override the file and the environment.
func Bind(cmd *cobra.Command, v *viper.Viper, defs ...Definition) error {
	for _, d := range defs {
		if err := v.BindPFlag(d.ConfigKey, cmd.Flags().Lookup(d.FlagName)); err != nil {
			return err
		}
	}
	return nil
}
