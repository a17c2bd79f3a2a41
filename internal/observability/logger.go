package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide logger: JSON for deployments, plain
// text in dev where log lines are read by eye. Records pick up request
// and trace ids through the ContextHandler wrapper.
func NewLogger(env string) *slog.Logger {
	var handler slog.Handler

	if env == "dev" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	return slog.New(NewContextHandler(handler))
}
