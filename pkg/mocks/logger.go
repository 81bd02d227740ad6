package mocks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/user/alphaplay/pkg/ports"
)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level     ports.LogLevel
	Component string
	Message   string
}

// Logger is a ports.Logger that records formatted messages.
// Loggers derived with WithComponent share the same record.
type Logger struct {
	component string
	record    *logRecord
}

type logRecord struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogger creates an empty recording logger.
func NewLogger() *Logger {
	return &Logger{record: &logRecord{}}
}

func (m *Logger) log(level ports.LogLevel, msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	m.record.mu.Lock()
	defer m.record.mu.Unlock()
	m.record.entries = append(m.record.entries, LogEntry{Level: level, Component: m.component, Message: msg})
}

func (m *Logger) Debug(msg string, args ...interface{}) { m.log(ports.LevelDebug, msg, args...) }
func (m *Logger) Info(msg string, args ...interface{}) { m.log(ports.LevelInfo, msg, args...) }
func (m *Logger) Warn(msg string, args ...interface{}) { m.log(ports.LevelWarn, msg, args...) }
func (m *Logger) Error(msg string, args ...interface{}) { m.log(ports.LevelError, msg, args...) }

func (m *Logger) WithComponent(component string) ports.Logger {
	return &Logger{component: component, record: m.record}
}

// Entries returns all recorded entries.
func (m *Logger) Entries() []LogEntry {
	m.record.mu.Lock()
	defer m.record.mu.Unlock()
	return append([]LogEntry(nil), m.record.entries...)
}

// Count returns how many entries at level contain substr.
func (m *Logger) Count(level ports.LogLevel, substr string) int {
	n := 0
	for _, e := range m.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			n++
		}
	}
	return n
}

var _ ports.Logger = (*Logger)(nil)
