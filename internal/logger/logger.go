package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Level represents log severity
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a Level
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

func (l Level) slog() slog.Level {
	switch l {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// F is a shorthand for creating a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Config holds logger configuration
type Config struct {
	Level    Level     // Minimum log level
	Format   string    // "text" or "json"
	FilePath string    // Optional log file, appended to
	Console  bool      // Also write to stderr
	Output   io.Writer // Overrides FilePath/Console when set (tests)
}

// DefaultConfig returns default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:   INFO,
		Format:  "text",
		Console: true,
	}
}

// Logger is the main logger instance
type Logger struct {
	config Config
	file   *os.File
	slog   *slog.Logger
}

var (
	globalLogger *Logger
	mu           sync.RWMutex
)

// Init initializes the global logger, replacing any previous one
func Init(config Config) error {
	l, err := New(config)
	if err != nil {
		return err
	}

	mu.Lock()
	prev := globalLogger
	globalLogger = l
	mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// New creates a new logger instance
func New(config Config) (*Logger, error) {
	l := &Logger{config: config}

	var writers []io.Writer
	switch {
	case config.Output != nil:
		writers = append(writers, config.Output)
	default:
		if config.FilePath != "" {
			if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
			file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return nil, fmt.Errorf("failed to open log file: %w", err)
			}
			l.file = file
			writers = append(writers, file)
		}
		if config.Console || len(writers) == 0 {
			writers = append(writers, os.Stderr)
		}
	}

	opts := &slog.HandlerOptions{Level: config.Level.slog()}
	out := io.MultiWriter(writers...)

	var h slog.Handler
	if strings.EqualFold(config.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	l.slog = slog.New(h)

	return l, nil
}

func (l *Logger) log(level Level, msg string, fields []Field) {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			args = append(args, slog.String(f.Key, err.Error()))
			continue
		}
		args = append(args, slog.Any(f.Key, f.Value))
	}
	l.slog.Log(context.Background(), level.slog(), msg, args...)
}

// WithFields creates a new logger with preset fields
func (l *Logger) WithFields(fields ...Field) *Logger {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, slog.Any(f.Key, f.Value))
	}
	return &Logger{config: l.config, slog: l.slog.With(args...)}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...Field) {
	l.log(DEBUG, msg, fields)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...Field) {
	l.log(INFO, msg, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(WARN, msg, fields)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...Field) {
	l.log(ERROR, msg, fields)
}

// Slog exposes the underlying slog.Logger for libraries that take one
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Close closes the log file if one is open
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Global logger functions

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Debug logs a debug message using the global logger
func Debug(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Debug(msg, fields...)
	}
}

// Info logs an info message using the global logger
func Info(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Info(msg, fields...)
	}
}

// Warn logs a warning message using the global logger
func Warn(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Warn(msg, fields...)
	}
}

// Error logs an error message using the global logger
func Error(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Error(msg, fields...)
	}
}

// WithFields creates a new logger with preset fields using the global logger
func WithFields(fields ...Field) *Logger {
	if l := current(); l != nil {
		return l.WithFields(fields...)
	}
	return nil
}

// Close closes the global logger
func Close() error {
	if l := current(); l != nil {
		return l.Close()
	}
	return nil
}

// GetConfig returns the current logger configuration
func GetConfig() Config {
	if l := current(); l != nil {
		return l.config
	}
	return DefaultConfig()
}
