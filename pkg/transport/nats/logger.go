package nats

import (
	"github.com/nats-io/nats-server/v2/server"
	"github.com/rs/zerolog"
)

// serverLogger routes embedded server logs to zerolog. Notices and debug
// lines are demoted to trace since the server is chatty at those levels.
type serverLogger struct {
	logger zerolog.Logger
}

func newServerLogger(logger zerolog.Logger, serverName string) serverLogger {
	return serverLogger{logger: logger.With().Str("NATSServer", serverName).Logger()}
}

func (l serverLogger) Noticef(format string, v ...interface{}) { l.log(zerolog.TraceLevel, format, v) }
func (l serverLogger) Warnf(format string, v ...interface{})   { l.log(zerolog.WarnLevel, format, v) }
func (l serverLogger) Fatalf(format string, v ...interface{})  { l.log(zerolog.FatalLevel, format, v) }
func (l serverLogger) Errorf(format string, v ...interface{})  { l.log(zerolog.ErrorLevel, format, v) }
func (l serverLogger) Debugf(format string, v ...interface{})  { l.log(zerolog.TraceLevel, format, v) }
func (l serverLogger) Tracef(format string, v ...interface{})  { l.log(zerolog.TraceLevel, format, v) }

func (l serverLogger) log(level zerolog.Level, format string, v []interface{}) {
	l.logger.WithLevel(level).Msgf(format, v...)
}

var _ server.Logger = serverLogger{}
