// Package logging provides the structured logger used by the CLI.
// Log lines go to stderr so shrunken source on stdout stays clean.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Level is the severity of a log message.
type Level int

const (
	// DebugLevel for diagnostics.
	DebugLevel Level = iota
	// InfoLevel for progress messages.
	InfoLevel
	// WarnLevel for recoverable problems (a file that failed to parse).
	WarnLevel
	// ErrorLevel for failures.
	ErrorLevel
)

var levelNames = map[Level]string{
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warn",
	ErrorLevel: "error",
}

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
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

// Format selects the log line encoding.
type Format string

const (
	// JSONFormat emits one JSON object per line.
	JSONFormat Format = "json"
	// HumanFormat emits timestamped human-readable lines.
	HumanFormat Format = "human"
)

// Field is one key/value pair attached to a log message. Fields are kept
// as an ordered slice so identical calls render identical lines.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger writes leveled, structured log lines.
type Logger struct {
	level  Level
	format Format
	writer io.Writer
}

// New creates a logger. A nil writer defaults to stderr.
func New(level Level, format Format, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{level: level, format: format, writer: w}
}

// Discard returns a logger that drops everything, for tests.
func Discard() *Logger {
	return New(ErrorLevel+1, HumanFormat, io.Discard)
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }

// Info logs at info level.
func (l *Logger) Info(msg string, fields ...Field) { l.log(InfoLevel, msg, fields) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields ...Field) { l.log(WarnLevel, msg, fields) }

// Error logs at error level.
func (l *Logger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

func (l *Logger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}
	if l.format == JSONFormat {
		l.logJSON(level, msg, fields)
		return
	}
	l.logHuman(level, msg, fields)
}

func (l *Logger) logJSON(level Level, msg string, fields []Field) {
	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"level":     levelNames[level],
		"message":   msg,
	}
	for _, f := range fields {
		entry[f.Key] = f.Value
	}
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal log entry: %v\n", err)
		return
	}
	fmt.Fprintln(l.writer, string(data))
}

func (l *Logger) logHuman(level Level, msg string, fields []Field) {
	fmt.Fprintf(l.writer, "%s [%s] %s", time.Now().UTC().Format(time.RFC3339), levelNames[level], msg)
	for i, f := range fields {
		if i == 0 {
			fmt.Fprint(l.writer, " | ")
		} else {
			fmt.Fprint(l.writer, ", ")
		}
		fmt.Fprintf(l.writer, "%s=%v", f.Key, f.Value)
	}
	fmt.Fprintln(l.writer)
}
