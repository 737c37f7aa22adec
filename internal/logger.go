package internal

import (
	"log/slog"
	"os"
)

var testLogger = slog.New(slog.DiscardHandler)

func init() {
	if os.Getenv("SCENIC_TEST_LOG") == "1" {
		testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
}

// TestLogger returns a debug logger when SCENIC_TEST_LOG=1, otherwise a discard logger.
func TestLogger() *slog.Logger {
	return testLogger
}
