package util

import (
	"context"
	"os"
	"syscall"

	"github.com/spf13/viper"

	"github.com/bacalhau-project/gtbarrier/pkg/system"
)

type contextKey struct {
	name string
}

var (
	SystemManagerKey = contextKey{name: "context key for storing the system manager"}
	ViperKey         = contextKey{name: "context key for storing the configuration"}
	ConfigFileKey    = contextKey{name: "context key for storing the config file path"}
)

var ShutdownSignals = []os.Signal{
	syscall.SIGTERM,
	syscall.SIGINT,
}

func GetCleanupManager(ctx context.Context) *system.CleanupManager {
	return ctx.Value(SystemManagerKey).(*system.CleanupManager)
}

func GetViper(ctx context.Context) *viper.Viper {
	return ctx.Value(ViperKey).(*viper.Viper)
}

func GetConfigFile(ctx context.Context) string {
	path, _ := ctx.Value(ConfigFileKey).(string)
	return path
}
