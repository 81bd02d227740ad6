package ports

import (
	"fmt"
	"strings"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for per-frame detail such as dropped stale buffers.
	LevelDebug LogLevel = iota
	// LevelInfo is for lifecycle messages: loaded, started, transitions, finished.
	LevelInfo
	// LevelWarn is for data-quality signals that do not stop playback,
	// such as a color/alpha desync or a late clip start.
	LevelWarn
	// LevelError is for failures that end a session.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

var levelNames = [...]string{"debug", "info", "warn", "error", "quiet"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// ParseLogLevel parses a level name, ignoring case. Unknown names return
// LevelInfo and an error.
func ParseLogLevel(s string) (LogLevel, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return LogLevel(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger is the logging port. Messages are lexicon keys in printf form and
// may be translated before output.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with component.
	// Streams pass their uid so interleaved output stays readable.
	WithComponent(component string) Logger
}
