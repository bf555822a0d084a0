// Package logger provides logging implementations for the chunking engine
package logger

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/joaoccaldas/rag-sub006/pkg/interfaces"
)

var levelRank = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

// ConsoleLogger writes leveled key=value lines through the standard log package
type ConsoleLogger struct {
	Level  string
	fields map[string]interface{}
}

var _ interfaces.Logger = (*ConsoleLogger)(nil)

// Debug logs debug level messages
func (l *ConsoleLogger) Debug(msg string, fields ...map[string]interface{}) {
	if l.enabled("debug") {
		l.logWithFields("DEBUG", msg, fields...)
	}
}

// Info logs info level messages
func (l *ConsoleLogger) Info(msg string, fields ...map[string]interface{}) {
	if l.enabled("info") {
		l.logWithFields("INFO", msg, fields...)
	}
}

// Warn logs warning level messages
func (l *ConsoleLogger) Warn(msg string, fields ...map[string]interface{}) {
	if l.enabled("warn") {
		l.logWithFields("WARN", msg, fields...)
	}
}

// Error logs error level messages
func (l *ConsoleLogger) Error(msg string, err error, fields ...map[string]interface{}) {
	var allFields []map[string]interface{}
	if err != nil {
		allFields = append(allFields, map[string]interface{}{"error": err.Error()})
	}
	allFields = append(allFields, fields...)
	l.logWithFields("ERROR", msg, allFields...)
}

// Fatal logs fatal level messages and exits
func (l *ConsoleLogger) Fatal(msg string, err error, fields ...map[string]interface{}) {
	l.Error(msg, err, fields...)
	os.Exit(1)
}

// WithFields returns a child logger that carries the given base fields
func (l *ConsoleLogger) WithFields(fields map[string]interface{}) interfaces.Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &ConsoleLogger{Level: l.Level, fields: merged}
}

func (l *ConsoleLogger) enabled(level string) bool {
	min, ok := levelRank[strings.ToLower(l.Level)]
	if !ok {
		min = levelRank["info"]
	}
	return levelRank[level] >= min
}

func (l *ConsoleLogger) logWithFields(level, msg string, fields ...map[string]interface{}) {
	logMsg := fmt.Sprintf("[%s] %s", level, msg)

	merged := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, fieldMap := range fields {
		for k, v := range fieldMap {
			merged[k] = v
		}
	}

	// Sorted keys keep log lines stable for a given call
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		logMsg += fmt.Sprintf(" %s=%v", k, merged[k])
	}

	log.Println(logMsg)
}

// NewConsoleLogger creates a new console logger with the given minimum level
func NewConsoleLogger(level string) interfaces.Logger {
	return &ConsoleLogger{
		Level: level,
	}
}

// NewTestLogger creates a logger for testing
func NewTestLogger() interfaces.Logger {
	return &ConsoleLogger{
		Level: "debug",
	}
}

// NewLogger creates a new logger with default settings
func NewLogger() interfaces.Logger {
	return &ConsoleLogger{
		Level: "info",
	}
}
