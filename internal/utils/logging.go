package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
)

// LogFileName is the log file appended to inside the output directory.
const LogFileName = "lineagebench.log"

// LogOptions configures SetupLogging.
type LogOptions struct {
	// Level is one of DEBUG, INFO, WARNING, ERROR or CRITICAL. Unknown values fall back to INFO.
	Level string
	// Console receives human-facing log lines. Defaults to os.Stderr.
	Console io.Writer
	// FilePath, when set, appends JSON records to this file.
	FilePath string
}

var levelNames = map[string]slog.Level{
	"DEBUG":    slog.LevelDebug,
	"INFO":     slog.LevelInfo,
	"WARN":     slog.LevelWarn,
	"WARNING":  slog.LevelWarn,
	"ERROR":    slog.LevelError,
	"CRITICAL": slog.LevelError,
}

// ParseLevel maps a level name to a slog.Level. The second result is false
// when the name is unknown, in which case slog.LevelInfo is returned.
func ParseLevel(name string) (slog.Level, bool) {
	lvl, ok := levelNames[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return slog.LevelInfo, false
	}
	return lvl, true
}

// SetupLogging builds the process logger and installs it as the slog
// default. Console output is text on a terminal and JSON otherwise. The
// returned close func restores the previous default and releases the log
// file.
func SetupLogging(opts LogOptions) (*slog.Logger, func() error, error) {
	level, known := ParseLevel(opts.Level)
	hopts := &slog.HandlerOptions{Level: level}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	handlers := []slog.Handler{consoleHandler(console, hopts)}
	var file *os.File

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, hopts))
		file = f
	}

	var h slog.Handler = handlers[0]
	if len(handlers) > 1 {
		h = fanoutHandler(handlers)
	}
	logger := slog.New(h)

	previous := slog.Default()
	slog.SetDefault(logger)
	closeFn := func() error {
		slog.SetDefault(previous)
		if file != nil {
			return file.Close()
		}
		return nil
	}

	if !known && opts.Level != "" {
		logger.Warn("unknown log level, using INFO", "level", opts.Level)
	}
	return logger, closeFn, nil
}

func consoleHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// fanoutHandler sends each record to every handler that accepts its level.
type fanoutHandler []slog.Handler

func (fh fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range fh {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (fh fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range fh {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (fh fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(fh))
	for i, h := range fh {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (fh fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(fh))
	for i, h := range fh {
		out[i] = h.WithGroup(name)
	}
	return out
}
