// Package log is the levelled logger of the command line tools. Level tags
// are colourised when the output is a terminal.
//
// The library packages never log; they return errors.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fatih/color"
)

// Level filters log output. Messages above the logger level are dropped.
type Level int32

const (
	Off Level = iota
	Fatal
	Error
	Warn
	Info
	Debug
)

var levelNames = []string{"off", "fatal", "error", "warn", "info", "debug"}

// String returns the lower-case level name.
func (l Level) String() string {
	if l < Off || int(l) >= len(levelNames) {
		return fmt.Sprintf("level(%d)", int32(l))
	}

	return levelNames[l]
}

// ParseLevel maps a level name to a Level. Matching ignores case.
func ParseLevel(name string) (Level, error) {
	for i, n := range levelNames {
		if strings.EqualFold(name, n) {
			return Level(i), nil
		}
	}

	return Off, fmt.Errorf("unknown log level %q, want one of %s", name, strings.Join(levelNames, ", "))
}

type levelSpec struct {
	tag       string
	colorizer func(a ...any) string
}

var levelSpecs = []levelSpec{
	Off:   {"", fmt.Sprint},
	Fatal: {"FTL", color.New(color.BgRed, color.FgHiWhite).Sprint},
	Error: {"ERR", color.New(color.FgHiRed).Sprint},
	Warn:  {"WRN", color.New(color.FgHiYellow).Sprint},
	Info:  {"INF", color.New(color.FgHiGreen).Sprint},
	Debug: {"DBG", color.New(color.FgHiBlue).Sprint},
}

// Logger writes "TAG message" lines. A Logger is safe for concurrent use.
type Logger struct {
	mu    sync.Mutex
	w     io.Writer
	level atomic.Int32
	exit  func(code int)
}

// New creates a Logger writing to w at the given level.
func New(w io.Writer, level Level) *Logger {
	l := &Logger{w: w, exit: os.Exit}
	l.level.Store(int32(level))

	return l
}

// SetLevel changes the level.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

// Level returns the current level.
func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool {
	return level != Off && level <= l.Level()
}

func (l *Logger) printf(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}

	spec := levelSpecs[level]
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.w, "%s %s\n", spec.colorizer(spec.tag), strings.TrimRight(msg, "\n"))
}

// Fatalf logs at Fatal level and exits with status 1.
func (l *Logger) Fatalf(format string, args ...any) {
	l.printf(Fatal, format, args...)
	l.exit(1)
}

// Errorf logs at Error level.
func (l *Logger) Errorf(format string, args ...any) { l.printf(Error, format, args...) }

// Warnf logs at Warn level.
func (l *Logger) Warnf(format string, args ...any) { l.printf(Warn, format, args...) }

// Infof logs at Info level.
func (l *Logger) Infof(format string, args ...any) { l.printf(Info, format, args...) }

// Debugf logs at Debug level.
func (l *Logger) Debugf(format string, args ...any) { l.printf(Debug, format, args...) }

// Check logs err at Error level and reports whether it was non-nil.
func (l *Logger) Check(err error) bool {
	if err == nil {
		return false
	}
	l.Errorf("%v", err)

	return true
}
