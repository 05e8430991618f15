package ai

import "sync/atomic"

// debugLoggingEnabled gates the per-tick debug logs of the AI subsystem so a
// tick does not pay for building their arguments.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables debug logging for AI subsystem.
// Called once from main after the log level is parsed.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if debug logging is enabled.
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("AI target acquired", "target", t.Name())
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
