// Package logger internal/infrastructure/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level represents the severity level of a log message
type Level string

const (
	// DebugLevel is used for request and retry details
	DebugLevel Level = "debug"
	// InfoLevel is used for general operational information
	InfoLevel Level = "info"
	// WarnLevel is used for soft failures such as a rejected reference date
	WarnLevel Level = "warn"
	// ErrorLevel is used for failed upstream calls
	ErrorLevel Level = "error"
	// FatalLevel is used for critical errors that require termination
	FatalLevel Level = "fatal"
)

// ParseLevel converts a level name such as "INFO" or "warning" into a Level
func ParseLevel(s string) (Level, error) {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return "", fmt.Errorf("invalid log level %q: %w", s, err)
	}
	switch lvl {
	case logrus.TraceLevel, logrus.DebugLevel:
		return DebugLevel, nil
	case logrus.InfoLevel:
		return InfoLevel, nil
	case logrus.WarnLevel:
		return WarnLevel, nil
	case logrus.ErrorLevel:
		return ErrorLevel, nil
	default:
		return FatalLevel, nil
	}
}

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case DebugLevel:
		return logrus.DebugLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case FatalLevel:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger defines the interface for the application logger
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Fatal(msg string, fields map[string]interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// JSONLogger writes structured JSON logs through logrus
type JSONLogger struct {
	entry *logrus.Entry
}

// NewJSONLogger creates a new JSON logger
func NewJSONLogger(output io.Writer, level Level) *JSONLogger {
	if output == nil {
		output = os.Stdout
	}

	base := logrus.New()
	base.SetOutput(output)
	base.SetLevel(level.logrusLevel())
	base.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})

	return &JSONLogger{entry: logrus.NewEntry(base)}
}

// WithField returns a new logger with the field added to the log context
func (l *JSONLogger) WithField(key string, value interface{}) Logger {
	return &JSONLogger{entry: l.entry.WithField(key, value)}
}

// WithFields returns a new logger with the fields added to the log context
func (l *JSONLogger) WithFields(fields map[string]interface{}) Logger {
	if len(fields) == 0 {
		return l
	}
	return &JSONLogger{entry: l.entry.WithFields(fields)}
}

// Debug logs a message at debug level
func (l *JSONLogger) Debug(msg string, fields map[string]interface{}) {
	l.log(logrus.DebugLevel, msg, fields)
}

// Info logs a message at info level
func (l *JSONLogger) Info(msg string, fields map[string]interface{}) {
	l.log(logrus.InfoLevel, msg, fields)
}

// Warn logs a message at warn level
func (l *JSONLogger) Warn(msg string, fields map[string]interface{}) {
	l.log(logrus.WarnLevel, msg, fields)
}

// Error logs a message at error level
func (l *JSONLogger) Error(msg string, fields map[string]interface{}) {
	l.log(logrus.ErrorLevel, msg, fields)
}

// Fatal logs a message at fatal level and then terminates the program
func (l *JSONLogger) Fatal(msg string, fields map[string]interface{}) {
	l.log(logrus.FatalLevel, msg, fields)
	l.entry.Logger.Exit(1)
}

func (l *JSONLogger) log(level logrus.Level, msg string, fields map[string]interface{}) {
	if !l.entry.Logger.IsLevelEnabled(level) {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
		line = 0
	}

	entry := l.entry.WithFields(fields).WithFields(logrus.Fields{
		"file": file,
		"line": line,
	})
	entry.Log(level, msg)
}

var (
	defaultLogger Logger = NewJSONLogger(os.Stdout, InfoLevel)
)

// GetDefaultLogger returns the default logger
func GetDefaultLogger() Logger {
	return defaultLogger
}

// SetDefaultLogger sets the default logger
func SetDefaultLogger(logger Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}
