// Package logger provides logging implementations.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
	"github.com/user/alphaplay/pkg/ports"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

var levelColors = map[ports.LogLevel]string{
	ports.LevelDebug: colorGray,
	ports.LevelWarn:  colorYellow,
	ports.LevelError: colorRed,
}

// ConsoleLogger writes translated messages to the console. Streams log from
// the presentation loop and from produce workers at the same time, so every
// line is written under a lock shared by all component loggers.
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	color     bool
	clock     ports.HostClock
	out       *lineWriter
	errOut    *lineWriter
}

type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *lineWriter) println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, line)
}

// NewConsole creates a logger on stdout and stderr.
// Color output is enabled when stdout is a terminal.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	l := NewWriter(level, os.Stdout, os.Stderr)
	l.color = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return l
}

// NewWriter creates a logger writing info and debug to out and warnings
// and errors to errOut, without color.
func NewWriter(level ports.LogLevel, out, errOut io.Writer) *ConsoleLogger {
	return &ConsoleLogger{
		level:  level,
		out:    &lineWriter{w: out},
		errOut: &lineWriter{w: errOut},
	}
}

// WithClock stamps every line with the host time of clock in seconds.
func (l *ConsoleLogger) WithClock(clock ports.HostClock) *ConsoleLogger {
	c := *l
	c.clock = clock
	return &c
}

func (l *ConsoleLogger) Debug(msg string, args ...interface{}) {
	l.log(ports.LevelDebug, msg, args...)
}

func (l *ConsoleLogger) Info(msg string, args ...interface{}) {
	l.log(ports.LevelInfo, msg, args...)
}

func (l *ConsoleLogger) Warn(msg string, args ...interface{}) {
	l.log(ports.LevelWarn, msg, args...)
}

func (l *ConsoleLogger) Error(msg string, args ...interface{}) {
	l.log(ports.LevelError, msg, args...)
}

// WithComponent returns a logger that prefixes lines with component.
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	c := *l
	c.component = component
	return &c
}

func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args ...interface{}) {
	if level < l.level {
		return
	}

	line := l10n.F(msg, args...)
	if l.component != "" {
		prefix := "[" + l.component + "]"
		if l.color {
			prefix = colorCyan + prefix + colorReset
		}
		line = prefix + " " + line
	}
	if l.clock != nil {
		line = formatHostTime(l.clock.Now()) + " " + line
	}
	if c, ok := levelColors[level]; ok && l.color {
		line = c + line + colorReset
	}

	if level >= ports.LevelWarn {
		l.errOut.println(line)
	} else {
		l.out.println(line)
	}
}

var _ ports.Logger = (*ConsoleLogger)(nil)

// formatHostTime renders d as seconds with millisecond precision.
func formatHostTime(d time.Duration) string {
	return fmt.Sprintf("%9.3f", d.Seconds())
}
