//go:build unit || !integration

package logger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *strings.Builder {
	oldLogger := log.Logger
	oldContextLogger := zerolog.DefaultContextLogger
	t.Cleanup(func() {
		log.Logger = oldLogger
		zerolog.DefaultContextLogger = oldContextLogger
	})

	var logging strings.Builder
	configureLogging(LogModeDefault, zerolog.NewConsoleWriter(defaultConsoleOptions, func(w *zerolog.ConsoleWriter) {
		w.Out = &logging
		w.NoColor = true
	}))
	return &logging
}

func TestConfigureLogging(t *testing.T) {
	logging := captureLogs(t)

	log.Error().Err(errors.New("testing error logging")).Msg("testing message")

	actual := logging.String()
	t.Log(actual)

	assert.Contains(t, actual, "testing message", "Log statement doesn't contain the log message")
	assert.Contains(t, actual, `error="testing error logging"`, "Log statement doesn't contain the logged error")
	assert.Contains(t, actual, "logger/logger_test.go", "Log statement doesn't contain the shortened caller path")
}

func TestContextWithRankLogger(t *testing.T) {
	logging := captureLogs(t)

	ctx := ContextWithGroupLogger(context.Background(), "group-a")
	ctx = ContextWithRankLogger(ctx, 3)
	log.Ctx(ctx).Info().Msg("entered round")

	actual := logging.String()
	assert.Contains(t, actual, "[Rank:3]")
	assert.Contains(t, actual, "[Group:group-a]")
}

func TestParseLogMode(t *testing.T) {
	mode, err := ParseLogMode("json")
	require.NoError(t, err)
	assert.Equal(t, LogModeJSON, mode)

	_, err = ParseLogMode("xml")
	assert.Error(t, err)
}

func TestBufferedLogsAreFlushed(t *testing.T) {
	buffer := &bufferingLogWriter{}
	_, err := buffer.Write([]byte("early line\n"))
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, buffer.writeLogs(&out))
	assert.Equal(t, "early line\n", out.String())
}

func TestMarshalCaller(t *testing.T) {
	assert.Equal(t, "shm/sense.go:42", marshalCaller(0, "/root/module/pkg/barrier/shm/sense.go", 42))
}
