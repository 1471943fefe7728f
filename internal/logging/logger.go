package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs a JSON slog logger on stdout. APP_ENV=development lowers
// the level to debug.
func Setup() {
	slog.SetDefault(slog.New(NewStdoutHandler()))
}

// NewStdoutHandler returns the JSON stdout handler used before and after the
// database handler is attached.
func NewStdoutHandler() slog.Handler {
	level := slog.LevelInfo
	if strings.EqualFold(os.Getenv("APP_ENV"), "development") {
		level = slog.LevelDebug
	}
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
}
