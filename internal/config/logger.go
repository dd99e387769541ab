package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"facequiz/internal/dirs"
)

// InitLogger installs the process-wide slog logger writing to w. format is
// "text" or "json"; verbose lowers the level to debug.
func InitLogger(w io.Writer, format string, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceTimeAttr,
		AddSource:   verbose,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// OpenLogFile opens the log file in the state directory for appending. The
// TUI logs there since it owns the terminal.
func OpenLogFile() (*os.File, error) {
	p, err := dirs.LogPath()
	if err != nil {
		return nil, err
	}
	sd, err := dirs.StateDir()
	if err != nil {
		return nil, err
	}
	if err := dirs.Ensure(sd); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(p, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func replaceTimeAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && len(groups) == 0 {
		return slog.String("time", a.Value.Time().Local().Format("2006-01-02 15:04:05"))
	}
	return a
}
