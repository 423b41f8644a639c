package logger

import (
	"log/slog"
	"os"
)

// ProgramLevel is the process-wide slog level. It is mutated in place by
// SetDebug after startup rather than fixed at handler construction time,
// so a single handler installed by SetupLogger can change verbosity mid-run.
var ProgramLevel = new(slog.LevelVar)

// SetupLogger installs a JSON handler on os.Stdout as the default logger,
// starting at info level.
func SetupLogger() {
	ProgramLevel.Set(slog.LevelInfo)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     ProgramLevel,
		AddSource: false,
	}))
	slog.SetDefault(logger)
}

// SetDebug raises the level to debug when debug is true; it leaves the
// level untouched otherwise, so calling it with false after SetupLogger
// is a no-op rather than a reset to info.
func SetDebug(debug bool) {
	if debug {
		ProgramLevel.Set(slog.LevelDebug)
	}
}
