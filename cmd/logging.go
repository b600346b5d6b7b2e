package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/scitags/rdma-res-go/types"
)

func logReplacements(groups []string, a slog.Attr) slog.Attr {
	// Remove time.
	if a.Key == slog.TimeKey && len(groups) == 0 && !logTimeFlag {
		return slog.Attr{}
	}

	// Remove the directory from the source's filename.
	if a.Key == slog.SourceKey {
		source := a.Value.Any().(*slog.Source)
		source.File = filepath.Base(source.File)
	}

	// Give the trace level a proper name.
	if a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok && level == types.LevelTrace {
			return slog.String(a.Key, "TRACE")
		}
	}

	return a
}

// setupLogging installs the default logger. Records go to stderr so that
// they never get mixed with the rendered resources.
func setupLogging(level string) {
	logLevel, ok := types.ParseLogLevel(level)
	if !ok {
		logLevel = types.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource:   true,
		Level:       logLevel,
		ReplaceAttr: logReplacements,
	}))
	slog.SetDefault(logger)

	if !ok {
		slog.Warn("wrong log level specified, defaulting to info", "level", level)
	}
}
