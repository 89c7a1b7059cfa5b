package logger

import corelogger "github.com/kilianp07/evplanner/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards everything. Tests and optional components use it.
type NopLogger = corelogger.Nop

// New returns a Logger tagged with the given component name. The output
// format follows APP_ENV and the level follows LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}
