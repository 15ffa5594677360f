// Package logger provides the leveled, component-scoped logging used by the
// decoder's observers. Hot-path code (the ACS loop, traceback) never logs;
// callers log lifecycle events, renormalizations, and dashboard activity
// around it.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level orders log severities.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Config holds logger configuration. Level is one of "debug", "info",
// "warn", "error"; anything else means info. A nil Output goes to stdout.
type Config struct {
	Level  string
	Output io.Writer
}

// Logger is a leveled logger scoped to one component of the decode
// pipeline. The zero value is not usable; construct with New.
type Logger struct {
	level     Level
	component string
	out       *log.Logger
}

// Field is one key=value pair attached to a log line.
type Field struct {
	Key   string
	Value interface{}
}

// New creates a root logger.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	return &Logger{
		level: parseLevel(cfg.Level),
		out:   log.New(output, "", log.LstdFlags),
	}
}

// WithComponent returns a child logger whose lines carry the given
// component name ("store", "web", "metrics", ...). The child shares the
// parent's level and output.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		level:     l.level,
		component: component,
		out:       l.out,
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields ...Field) { l.emit(DebugLevel, "DEBUG", msg, fields) }

// Info logs at info level.
func (l *Logger) Info(msg string, fields ...Field) { l.emit(InfoLevel, "INFO", msg, fields) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields ...Field) { l.emit(WarnLevel, "WARN", msg, fields) }

// Error logs at error level.
func (l *Logger) Error(msg string, fields ...Field) { l.emit(ErrorLevel, "ERROR", msg, fields) }

func (l *Logger) emit(level Level, tag, msg string, fields []Field) {
	if level < l.level {
		return
	}

	var b strings.Builder
	if l.component != "" {
		b.WriteString("[")
		b.WriteString(l.component)
		b.WriteString("] ")
	}
	b.WriteString("[")
	b.WriteString(tag)
	b.WriteString("] ")
	b.WriteString(msg)
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	l.out.Print(b.String())
}

func parseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Field constructors. The generic ones cover most lines; State and Metric
// format trellis states and renormal-adjusted path metrics consistently
// everywhere they appear.

// String creates a string field.
func String(key, val string) Field {
	return Field{Key: key, Value: val}
}

// Int creates an int field.
func Int(key string, val int) Field {
	return Field{Key: key, Value: val}
}

// Int64 creates an int64 field.
func Int64(key string, val int64) Field {
	return Field{Key: key, Value: val}
}

// Bool creates a bool field.
func Bool(key string, val bool) Field {
	return Field{Key: key, Value: val}
}

// State formats a K-1-bit trellis state as six hex digits, the same shape
// states take in traceback diagnostics.
func State(key string, s uint32) Field {
	return Field{Key: key, Value: fmt.Sprintf("0x%06x", s)}
}

// Metric creates a field for a renormal-adjusted path metric.
func Metric(key string, val int64) Field {
	return Field{Key: key, Value: val}
}

// Err creates an error field. A nil error renders as "nil".
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "nil"}
	}
	return Field{Key: "error", Value: err.Error()}
}
