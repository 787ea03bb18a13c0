// Package logger builds the zap loggers used by the rama binaries.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the log level
type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel // Debug information (only shown with --verbose)
	LevelInfo  = zapcore.InfoLevel  // Important steps
	LevelWarn  = zapcore.WarnLevel  // Degraded operation, e.g. fallback results
	LevelError = zapcore.ErrorLevel // Error messages
)

// Options controls the console output
type Options struct {
	Level     Level
	ColorMode bool
	ShowTime  bool
}

// ParseLevel converts a config string into a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New creates a console logger writing to w.
// The child process owns stdout in the provider binary, so callers there must pass os.Stderr.
func New(w io.Writer, opts Options) *zap.Logger {
	if w == nil {
		w = os.Stderr
	}

	encCfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		NameKey:          "logger",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}
	if opts.ColorMode {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if opts.ShowTime {
		encCfg.TimeKey = "time"
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(opts.Level),
	)

	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
}

// Nop returns a logger that discards everything
func Nop() *zap.Logger {
	return zap.NewNop()
}
