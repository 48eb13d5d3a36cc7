package logger

import (
	"encoding/json"
	"io"
	"log"
	"maps"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// Logger writes one JSON object per line. It is safe for concurrent use.
type Logger struct {
	level  Level
	logger *log.Logger
	base   map[string]any
}

type logEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// New creates a logger writing to output, or stdout when output is nil.
func New(level string, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}

	return &Logger{
		level:  ParseLevel(level),
		logger: log.New(output, "", 0),
	}
}

var (
	nopOnce sync.Once
	nop     *Logger
)

// Nop returns a logger that discards everything.
func Nop() *Logger {
	nopOnce.Do(func() {
		nop = New("ERROR", io.Discard)
	})
	return nop
}

// ParseLevel converts a level name to a Level, defaulting to INFO.
func ParseLevel(level string) Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG
	case "WARN":
		return WARN
	case "ERROR", "FATAL":
		return ERROR
	default:
		return INFO
	}
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields map[string]any) *Logger {
	base := make(map[string]any, len(l.base)+len(fields))
	maps.Copy(base, l.base)
	maps.Copy(base, fields)
	return &Logger{level: l.level, logger: l.logger, base: base}
}

// Enabled reports whether entries at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return l.level <= level
}

func (l *Logger) write(level Level, message string, fields map[string]any) {
	if !l.Enabled(level) {
		return
	}

	entry := logEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     levelName(level),
		Message:   message,
		Fields:    l.merge(fields),
	}

	if data, err := json.Marshal(entry); err == nil {
		l.logger.Println(string(data))
	} else {
		// Fallback to simple format if JSON fails
		l.logger.Printf("[%s] %s", entry.Level, message)
	}
}

func (l *Logger) merge(fields map[string]any) map[string]any {
	if len(l.base) == 0 {
		return fields
	}
	merged := make(map[string]any, len(l.base)+len(fields))
	maps.Copy(merged, l.base)
	maps.Copy(merged, fields)
	return merged
}

func levelName(level Level) string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	return "UNKNOWN"
}

func first(fields []map[string]any) map[string]any {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}

func (l *Logger) Debug(message string, fields ...map[string]any) {
	l.write(DEBUG, message, first(fields))
}

func (l *Logger) Info(message string, fields ...map[string]any) {
	l.write(INFO, message, first(fields))
}

func (l *Logger) Warn(message string, fields ...map[string]any) {
	l.write(WARN, message, first(fields))
}

func (l *Logger) Error(message string, fields ...map[string]any) {
	l.write(ERROR, message, first(fields))
}

// Task logs a store event for taskID at the given level.
func (l *Logger) Task(level Level, taskID, message string, fields ...map[string]any) {
	if !l.Enabled(level) {
		return
	}
	allFields := map[string]any{
		"task_id": taskID,
		"type":    "task",
	}
	if f := first(fields); f != nil {
		maps.Copy(allFields, f)
	}
	l.write(level, message, allFields)
}

// Command logs a processor event for a command.
func (l *Logger) Command(commandID, text, message string, fields ...map[string]any) {
	allFields := map[string]any{
		"command_id": commandID,
		"command":    text,
		"type":       "command",
	}
	if f := first(fields); f != nil {
		maps.Copy(allFields, f)
	}
	l.write(INFO, message, allFields)
}

func (l *Logger) HTTP(method, path string, statusCode int, duration time.Duration, fields ...map[string]any) {
	allFields := map[string]any{
		"http_method": method,
		"http_path":   path,
		"http_status": statusCode,
		"duration_ns": duration.Nanoseconds(),
		"type":        "http_request",
	}
	if f := first(fields); f != nil {
		maps.Copy(allFields, f)
	}
	l.write(INFO, "HTTP request completed", allFields)
}
