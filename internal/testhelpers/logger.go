package testhelpers

import (
	"io"
	"log/slog"

	"github.com/myrjola/routinegen/internal/logging"
)

// NewLogger creates a debug-level logger writing to the given sink, typically
// a testhelpers.Writer so output surfaces only for failed tests.
func NewLogger(logSink io.Writer) *slog.Logger {
	handler := logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	return slog.New(handler)
}
