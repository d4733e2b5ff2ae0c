package logger

import (
	"io"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
)

// maxBufferedLines bounds the memory held by messages logged before
// logging is configured.
const maxBufferedLines = 1024

var logBufferedLogs func(io.Writer) error

// LogBufferedLogs writes any message logged before logging was configured
// to writer, or to the default console writer when writer is nil. It does
// nothing once the buffer has been flushed.
func LogBufferedLogs(writer io.Writer) {
	if logBufferedLogs == nil {
		return
	}
	if writer == nil {
		writer = defaultLogging()
	}

	if err := logBufferedLogs(writer); err != nil {
		log.Err(err).Msg("Failed to log messages")
	}
	logBufferedLogs = nil
}

// bufferLogs returns a writer that keeps log lines until LogBufferedLogs is
// called with the real writer.
func bufferLogs() io.Writer {
	buffer := &bufferingLogWriter{}
	logBufferedLogs = buffer.writeLogs
	return buffer
}

type bufferingLogWriter struct {
	mu      sync.Mutex
	buffer  [][]byte
	dropped int
}

func (b *bufferingLogWriter) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.buffer) >= maxBufferedLines {
		b.dropped++
		return len(p), nil
	}
	// zerolog reuses p once Write returns
	b.buffer = append(b.buffer, slices.Clone(p))
	return len(p), nil
}

func (b *bufferingLogWriter) writeLogs(w io.Writer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs error
	for _, line := range b.buffer {
		if _, err := w.Write(line); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if b.dropped > 0 {
		log.Warn().Int("dropped", b.dropped).Msg("Log lines were dropped before logging was configured")
	}
	b.buffer = nil
	return errs
}

var _ io.Writer = &bufferingLogWriter{}
