// Package logging routes the default slog logger to a rotating file so
// command output stays clean while every run leaves a trail.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const logFileName = "docsmith.log"

// Setup installs a text handler writing to stateDir/docsmith.log with
// rotation. Verbose lowers the level to debug and mirrors records to
// stderr. The returned func closes the file sink.
func Setup(stateDir string, verbose bool) func() error {
	sink := &lumberjack.Logger{
		Filename:   filepath.Join(stateDir, logFileName),
		MaxSize:    15, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := slog.LevelInfo
	var w io.Writer = sink
	if verbose {
		level = slog.LevelDebug
		w = io.MultiWriter(sink, os.Stderr)
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return sink.Close
}
