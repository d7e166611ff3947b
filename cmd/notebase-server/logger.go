package main

import (
	"io"
	"log"
	"strings"
)

// LogLevel is the minimum severity that gets written
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var levelNames = map[LogLevel]string{
	LogLevelDebug: "debug",
	LogLevelInfo:  "info",
	LogLevelWarn:  "warn",
	LogLevelError: "error",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// parseLogLevel is case-insensitive and falls back to info
func parseLogLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger writes "[LEVEL] message" lines through the standard log package.
type Logger struct {
	level LogLevel
	out   *log.Logger
}

// NewLogger creates a logger writing to the standard logger's output
func NewLogger(level string) *Logger {
	return &Logger{level: parseLogLevel(level), out: log.Default()}
}

// NewLoggerTo creates a logger writing to w with the standard date/time flags
func NewLoggerTo(level string, w io.Writer) *Logger {
	return &Logger{level: parseLogLevel(level), out: log.New(w, "", log.LstdFlags)}
}

func (l *Logger) logf(level LogLevel, format string, v ...any) {
	if level < l.level {
		return
	}
	l.out.Printf("["+strings.ToUpper(level.String())+"] "+format, v...)
}

func (l *Logger) Debugf(format string, v ...any) { l.logf(LogLevelDebug, format, v...) }
func (l *Logger) Infof(format string, v ...any)  { l.logf(LogLevelInfo, format, v...) }
func (l *Logger) Warnf(format string, v ...any)  { l.logf(LogLevelWarn, format, v...) }
func (l *Logger) Errorf(format string, v ...any) { l.logf(LogLevelError, format, v...) }

// Fatalf logs and exits regardless of level
func (l *Logger) Fatalf(format string, v ...any) {
	l.out.Fatalf("[FATAL] "+format, v...)
}
