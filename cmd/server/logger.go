package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/habit-tracker/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds the process logger. With LOG_FILE set, output also goes
// to a size-rotated file. The returned func flushes and closes that file.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stdout
	closeFn := func() {}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, nil, err
		}
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = io.MultiWriter(os.Stdout, file)
		closeFn = func() { file.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}
