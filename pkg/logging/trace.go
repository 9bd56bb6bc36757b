package logging

import "log/slog"

// EnableTrace turns on per-frame trace logging. Off by default, the hot
// paths call Trace unconditionally and rely on this check being cheap.
var EnableTrace = false

// Trace logs at DEBUG level only while EnableTrace is set.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if EnableTrace {
		logger.Debug(msg, args...)
	}
}
