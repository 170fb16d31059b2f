// Package logging builds the process logger from the log config section.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lifehub/lifehub/internal/config"
)

// New returns a text logger writing to stdout, or to a rotating file when
// cfg.File is set. The returned closer releases the file; it is a no-op
// for stdout.
func New(cfg config.LogConfig, stdout io.Writer) (*slog.Logger, io.Closer) {
	var out io.Writer = stdout
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB, // megabytes
			MaxBackups: cfg.MaxBackups,
			LocalTime:  false, // UTC timestamps in rotated names
			Compress:   true,
		}
		out, closer = lj, lj
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: Level(cfg.Level)})
	return slog.New(handler), closer
}

// Level maps a config level name to a slog level. Unknown names are Info.
func Level(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
