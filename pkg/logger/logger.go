package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type LogMode string

// Available logging modes
const (
	LogModeDefault  LogMode = "default"
	LogModeJSON     LogMode = "json"
	LogModeCombined LogMode = "combined"
	LogModeEvent    LogMode = "event"
)

func ParseLogMode(s string) (LogMode, error) {
	lm := []LogMode{LogModeDefault, LogModeJSON, LogModeCombined, LogModeEvent}
	for _, logMode := range lm {
		if s == string(logMode) {
			return logMode, nil
		}
	}
	return "Error", fmt.Errorf("%q is an invalid log-mode (valid modes: %q)", s, lm)
}

var stderr = struct{ io.Writer }{os.Stderr}

const (
	rankFieldName  = "Rank"
	groupFieldName = "Group"
)

func init() { //nolint:gochecknoinits // init with zerolog is idiomatic
	logMode := LogModeDefault
	if mode, err := ParseLogMode(strings.ToLower(os.Getenv("LOG_TYPE"))); err == nil {
		logMode = mode
	}
	configureLogging(logMode, bufferLogs())
}

type tTesting interface {
	Log(args ...interface{})
	Logf(format string, args ...interface{})
	Helper()
	Cleanup(f func())
}

// ConfigureTestLogging allows logs to be associated with individual tests
func ConfigureTestLogging(t tTesting) {
	oldLogger := log.Logger
	oldContextLogger := zerolog.DefaultContextLogger
	configureLogging(LogModeDefault, zerolog.NewConsoleWriter(defaultConsoleOptions, zerolog.ConsoleTestWriter(t)))
	t.Cleanup(func() {
		log.Logger = oldLogger
		zerolog.DefaultContextLogger = oldContextLogger
	})
}

// ConfigureLogging sets the global logger for the given mode and flushes
// anything that was logged before logging was configured.
func ConfigureLogging(mode LogMode) {
	writer := writerForMode(mode)
	configureLogging(mode, writer)
	LogBufferedLogs(writer)
}

func configureLogging(mode LogMode, writer io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	setLevelFromEnv()

	zerolog.CallerMarshalFunc = marshalCaller

	log.Logger = zerolog.New(writer).With().Timestamp().Caller().Logger()
	// While the normal flow will use ContextWithRankLogger, this won't be so for tests.
	// Tests will use the DefaultContextLogger instead
	zerolog.DefaultContextLogger = &log.Logger
}

func setLevelFromEnv() {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func writerForMode(mode LogMode) io.Writer {
	switch mode {
	case LogModeJSON:
		return os.Stdout
	case LogModeCombined:
		return zerolog.MultiLevelWriter(defaultLogging(), os.Stdout)
	case LogModeEvent:
		return io.Discard
	default:
		return defaultLogging()
	}
}

func defaultLogging() io.Writer {
	return zerolog.NewConsoleWriter(defaultConsoleOptions)
}

func defaultConsoleOptions(w *zerolog.ConsoleWriter) {
	w.Out = stderr
	w.NoColor = !isatty.IsTerminal(os.Stderr.Fd())
	w.TimeFormat = "15:04:05.999 |"
	w.PartsOrder = []string{
		zerolog.TimestampFieldName,
		zerolog.LevelFieldName,
		zerolog.CallerFieldName,
		zerolog.MessageFieldName,
	}

	w.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("[%s:", i)
	}

	w.FormatFieldValue = func(i interface{}) string {
		// don't print nil in case field value wasn't preset. e.g. no rank
		if i == nil {
			i = ""
		}
		return fmt.Sprintf("%s]", i)
	}
}

// marshalCaller keeps the last two path elements of the caller's file.
func marshalCaller(_ uintptr, file string, line int) string {
	short := file

	separatorCount := 2
	countedSeparators := 0

	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			countedSeparators += 1
			if countedSeparators >= separatorCount {
				short = file[i+1:]
				break
			}
		}
	}
	return short + ":" + strconv.Itoa(line)
}

// ContextWithRankLogger will return a context whose logger tags every line
// with the participant's rank.
func ContextWithRankLogger(ctx context.Context, rank int) context.Context {
	l := zerolog.Ctx(ctx).With().Int(rankFieldName, rank).Logger()
	return l.WithContext(ctx)
}

// ContextWithGroupLogger tags every line with the barrier group name.
func ContextWithGroupLogger(ctx context.Context, group string) context.Context {
	l := zerolog.Ctx(ctx).With().Str(groupFieldName, group).Logger()
	return l.WithContext(ctx)
}
