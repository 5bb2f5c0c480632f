// Package logger wraps zap with the five-level contract used across the
// service: Log/Info, Error (with an optional trace), Warn, Debug and Verbose.
// Every entry goes to two sinks: a human-readable console line and a JSON
// line in the log file.
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// VerboseLevel sits just below zap's debug level.
const VerboseLevel = zapcore.DebugLevel - 1

// Config 描述兩個輸出端與最低等級
type Config struct {
	// Level is one of error, warn, info, debug, verbose. Empty means info.
	Level string
	// File is the JSON sink. Empty disables the file sink.
	File string
	// Console defaults to os.Stdout.
	Console io.Writer
}

type Logger struct {
	z     *zap.Logger
	close func() error
}

// New builds the console + file logger described by cfg.
func New(cfg Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	enabler := zap.NewAtomicLevelAt(level)

	console := cfg.Console
	if console == nil {
		console = os.Stdout
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig()), zapcore.AddSync(console), enabler),
	}

	closeFn := func() error { return nil }
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig()), zapcore.AddSync(f), enabler))
		closeFn = f.Close
	}

	return &Logger{z: zap.New(zapcore.NewTee(cores...)), close: closeFn}, nil
}

// NewWithCore is used by tests to capture entries (zaptest/observer).
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{z: zap.New(core), close: func() error { return nil }}
}

func NewNop() *Logger {
	return NewWithCore(zapcore.NewNopCore())
}

// ParseLevel 接受 zap 的等級名稱外加 verbose
func ParseLevel(s string) (zapcore.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return zapcore.InfoLevel, nil
	case "verbose":
		return VerboseLevel, nil
	}
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

func (l *Logger) Log(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field) { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field) { l.z.Warn(msg, fields...) }

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }

// Error adds a "trace" field when trace is non-empty.
func (l *Logger) Error(msg, trace string, fields ...zap.Field) {
	if trace != "" {
		fields = append(fields, zap.String("trace", trace))
	}
	l.z.Error(msg, fields...)
}

func (l *Logger) Verbose(msg string, fields ...zap.Field) {
	if ce := l.z.Check(VerboseLevel, msg); ce != nil {
		ce.Write(fields...)
	}
}

// Sync flushes buffered entries and closes the log file.
func (l *Logger) Sync() error {
	syncErr := l.z.Sync()
	if err := l.close(); err != nil {
		return err
	}
	if syncErr != nil && !isUnsyncable(syncErr) {
		return syncErr
	}
	return nil
}

// isUnsyncable 回報 stdout 這類不支援 fsync 的輸出端錯誤
func isUnsyncable(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY)
}

func levelName(l zapcore.Level) string {
	if l == VerboseLevel {
		return "verbose"
	}
	return l.String()
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "timestamp",
		LevelKey:         "level",
		MessageKey:       "message",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + levelName(l) + "]")
		},
	}
}

func fileEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(levelName(l))
		},
	}
}
