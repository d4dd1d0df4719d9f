package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogger configures the process-wide slog default logger with a JSON
// handler and stacktrace formatting for wrapped errors.
func SetupLogger(loglevel string) {
	SetupLoggerWithOutput(loglevel, os.Stdout)
}

// SetupLoggerToFile configures the default logger to write to a rotating
// log file in addition to stdout. Rotation keeps at most maxBackups files
// of maxSizeMB each.
func SetupLoggerToFile(loglevel, path string, maxSizeMB, maxBackups int) {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
	SetupLoggerWithOutput(loglevel, io.MultiWriter(os.Stdout, rotator))
}

// SetupLoggerWithOutput configures the default logger against an arbitrary
// writer. Used by tests to capture log output.
func SetupLoggerWithOutput(loglevel string, w io.Writer) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(w, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
}

// ParseLevel maps a level name to its slog level. Callers handling
// user-supplied configuration should use this and report the error; the
// Setup functions themselves assume an already validated level.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %q (want debug, info, warn or error)", level)
	}
}

// ToLogLevel maps a level name to its slog level, panicking on an unknown
// name.
func ToLogLevel(level string) slog.Level {
	l, err := ParseLevel(level)
	if err != nil {
		panic(err.Error())
	}
	return l
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
