// Package logging builds the zap logger used for every run: console output
// on stderr, colored when stderr is a terminal, plus an optional plain-text
// file sink.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects level and sinks.
type Options struct {
	Verbose bool
	// LogFile, when set, receives a copy of every entry. Its parent
	// directory is created if needed.
	LogFile string
	// Console overrides stderr, mainly for tests.
	Console io.Writer
	// ConsoleLevel, when set, gates the console sink only and may be
	// raised while a progress display owns the terminal. New sets it to
	// the starting level. The file sink is unaffected.
	ConsoleLevel *zap.AtomicLevel
}

// New returns the logger and a close function that flushes it and releases
// the log file.
func New(opts Options) (*zap.Logger, func() error, error) {
	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	console := opts.Console
	color := false
	if console == nil {
		console = os.Stderr
		color = IsTerminal(os.Stderr) && os.Getenv("NO_COLOR") == ""
	}

	var consoleLevel zapcore.LevelEnabler = level
	if opts.ConsoleLevel != nil {
		opts.ConsoleLevel.SetLevel(level)
		consoleLevel = *opts.ConsoleLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder(color), zapcore.AddSync(console), consoleLevel),
	}

	var file *os.File
	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		file = f
		cores = append(cores, zapcore.NewCore(encoder(false), zapcore.AddSync(f), level))
	}

	opt := []zap.Option{}
	if opts.Verbose {
		opt = append(opt, zap.AddCaller())
	}
	logger := zap.New(zapcore.NewTee(cores...), opt...)

	closeFn := func() error {
		_ = logger.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return logger, closeFn, nil
}

func encoder(color bool) zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// IsTerminal reports whether f is attached to a character device.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
