package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/liuran001/KnowItAll-Go/bot"
)

// Logger wraps slog.Logger to satisfy bot.Logger.
// Children created with With share the parent's level.
type Logger struct {
	logger  *slog.Logger
	level   *slog.LevelVar
	logFile *os.File
}

// New creates a Logger writing to stdout and to a daily file under dir.
// An empty dir disables the file output.
func New(level, format, dir string, addSource bool) (*Logger, error) {
	logFile, output, err := logOutput(dir)
	if err != nil {
		return nil, fmt.Errorf("open log output: %w", err)
	}

	l := NewWithWriter(output, level, format, addSource)
	l.logFile = logFile
	return l, nil
}

// NewWithWriter creates a Logger that writes only to w.
// format is "json" or "text"; anything else falls back to text.
func NewWithWriter(w io.Writer, level, format string, addSource bool) *Logger {
	levelVar := new(slog.LevelVar)
	levelVar.Set(ParseLevel(level))
	options := &slog.HandlerOptions{
		Level:     levelVar,
		AddSource: addSource,
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		handler = slog.NewJSONHandler(w, options)
	default:
		handler = slog.NewTextHandler(w, options)
	}
	return &Logger{logger: slog.New(handler), level: levelVar}
}

// With returns a child logger with additional fields.
func (l *Logger) With(args ...any) bot.Logger {
	return &Logger{logger: l.logger.With(args...), level: l.level}
}

func (l *Logger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// SetLevel changes the minimum level of this logger and all its children.
func (l *Logger) SetLevel(level string) {
	l.level.Set(ParseLevel(level))
}

// Level reports the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Slog returns the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

// ParseLevel accepts slog level names ("debug", "INFO", "warn+2") plus the
// "warning" alias. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	level = strings.TrimSpace(level)
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return parsed
}

// logOutput opens dir/YYYY-MM-DD.log and tees it with stdout.
func logOutput(dir string) (*os.File, io.Writer, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, os.Stdout, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}

	name := time.Now().Format(time.DateOnly) + ".log"
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return file, io.MultiWriter(os.Stdout, file), nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.logFile == nil {
		return nil
	}
	err := l.logFile.Close()
	l.logFile = nil
	return err
}
