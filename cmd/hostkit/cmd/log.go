package cmd

import (
	"io"
	"log/slog"

	"github.com/go-drift/hostkit/cmd/hostkit/internal/config"
	hkerrors "github.com/go-drift/hostkit/pkg/errors"
)

// newLogger builds the CLI logger for the resolved format and level.
func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// installLogger routes lifecycle error reports through logger. The returned
// func restores the previous handler.
func installLogger(logger *slog.Logger, verbose bool) func() {
	prev := hkerrors.SetHandler(&hkerrors.LogHandler{Logger: logger, Verbose: verbose})
	return func() { hkerrors.SetHandler(prev) }
}
