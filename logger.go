package ink

import (
	"log/slog"

	"github.com/gogpu/ink/internal/ilog"
)

// SetLogger configures the logger for ink and all its sub-packages.
// By default, ink produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by ink:
//   - [slog.LevelDebug]: internal diagnostics (superseded tiles, cache churn)
//   - [slog.LevelInfo]: lifecycle events (format upgrades, imports)
//   - [slog.LevelWarn]: non-fatal issues (dropped input samples, skipped
//     elements on import or export)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	ink.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	ink.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	ilog.SetLogger(l)
}

// Logger returns the current logger used by ink. Sub-packages share the same
// logger configuration.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return ilog.Logger()
}
