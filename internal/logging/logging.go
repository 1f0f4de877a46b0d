// Package logging builds the zap logger shared by every u2a component.
//
// Every entry is written as a JSON line to a daily file under the logs
// directory. Debug entries are echoed to the terminal only when debug
// output is enabled.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvDebug enables terminal debug output when set to any non-empty value.
const EnvDebug = "DEBUG"

// Options configures New.
type Options struct {
	// Dir is the logs directory. Empty disables the file core.
	Dir string

	// Debug echoes debug entries to Console.
	Debug bool

	// Console receives terminal output. Nil means os.Stderr.
	Console io.Writer

	// Now is used for the daily file name. Nil means time.Now.
	Now func() time.Time
}

// FileName returns the log file name for the given day.
func FileName(t time.Time) string {
	return fmt.Sprintf("u2a-%s.log", t.Format("2006-01-02"))
}

// DebugFromEnv reports whether the DEBUG environment variable is set.
func DebugFromEnv() bool {
	return os.Getenv(EnvDebug) != ""
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// New builds a logger from opts. The returned close function syncs and
// closes the log file.
func New(opts Options) (*zap.Logger, func() error, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var cores []zapcore.Core
	var file *os.File

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create logs directory: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(opts.Dir, FileName(now())), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig()),
			zapcore.AddSync(f),
			zap.DebugLevel,
		))
	}

	if opts.Debug {
		cfg := encoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(cfg),
			zapcore.AddSync(console),
			zap.DebugLevel,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...))

	closeFn := func() error {
		_ = logger.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return logger, closeFn, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
