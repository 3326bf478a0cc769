package render

import (
	"log/slog"

	"github.com/stewi1014/fractalexplorer/internal/logger"
)

// SetLogger configures logging for render and the packages it drives.
// By default nothing is logged. Pass nil to restore that.
//
// Levels used:
//   - [slog.LevelDebug]: per frame diagnostics (generation, duration, superseded frames)
//   - [slog.LevelInfo]: lifecycle (fractal selected, worker count)
//   - [slog.LevelWarn]: recovered problems (parameters replaced by defaults)
func SetLogger(l *slog.Logger) {
	logger.Set(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return logger.Logger()
}
