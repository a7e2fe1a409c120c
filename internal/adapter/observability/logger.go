// Package observability provides the structured logger used by the review
// use case.
package observability

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"

	"github.com/difflens/difflens/internal/usecase/review"
)

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
)

// LogFormat defines the output format for logs.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// Logger implements the review.Logger port on the standard log package.
type Logger struct {
	level  LogLevel
	format LogFormat
}

// NewLogger creates a logger with the given level and format.
func NewLogger(level LogLevel, format LogFormat) *Logger {
	return &Logger{level: level, format: format}
}

var _ review.Logger = (*Logger)(nil)

// LogWarning logs a warning message with structured fields.
func (l *Logger) LogWarning(_ context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelWarning {
		return
	}
	l.emit("warning", message, fields)
}

// LogInfo logs an informational message with structured fields.
func (l *Logger) LogInfo(_ context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelInfo {
		return
	}
	l.emit("info", message, fields)
}

func (l *Logger) emit(level, message string, fields map[string]interface{}) {
	if l.format == LogFormatJSON {
		entry := map[string]interface{}{
			"level":   level,
			"message": message,
		}
		for k, v := range fields {
			entry[k] = v
		}
		data, err := json.Marshal(entry)
		if err != nil {
			log.Printf("[%s] %s (unmarshalable fields)", strings.ToUpper(level), message)
			return
		}
		log.Print(string(data))
		return
	}

	if len(fields) == 0 {
		log.Printf("[%s] %s", strings.ToUpper(level), message)
		return
	}
	log.Printf("[%s] %s (%s)", strings.ToUpper(level), message, formatFields(fields))
}

// formatFields renders fields as key=value pairs in key order so log lines
// are stable.
func formatFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString("=")
		data, err := json.Marshal(fields[k])
		if err != nil {
			sb.WriteString("?")
			continue
		}
		sb.Write(data)
	}
	return sb.String()
}
