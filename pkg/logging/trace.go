package logging

import (
	"log/slog"
	"sync/atomic"
)

// traceEnabled gates per-tick trace logs. Set from log.trace by Init.
var traceEnabled atomic.Bool

// SetTrace turns per-tick trace logs on or off.
func SetTrace(on bool) { traceEnabled.Store(on) }

// TraceEnabled reports whether per-tick trace logs are on.
func TraceEnabled() bool { return traceEnabled.Load() }

// Trace logs a message at DEBUG level, but only while tracing is on.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if traceEnabled.Load() {
		logger.Debug(msg, args...)
	}
}

// TraceDefault is Trace on the default logger.
func TraceDefault(msg string, args ...any) {
	Trace(slog.Default(), msg, args...)
}
