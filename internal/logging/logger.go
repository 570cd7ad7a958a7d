// Package logging writes the operational log for a mortem project. Every line
// carries a timestamp and the component that wrote it:
//
//	[2026-05-06T07:08:09Z] watch: rendered request=a.yaml phase=aware units=42
//
// A nil *Logger discards everything, so callers never branch on whether the
// log file could be opened.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileName is the log file inside the project's logs directory.
const FileName = "mortem.log"

// Option customises a Logger.
type Option func(*Logger)

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(l *Logger) {
		if clock != nil {
			l.now = clock
		}
	}
}

type sink struct {
	mu sync.Mutex
	w  io.WriteCloser
}

// Logger appends component-tagged lines to the project log.
type Logger struct {
	out       *sink
	component string
	now       func() time.Time
}

// New opens (or creates) logsDir/mortem.log for appending.
func New(logsDir string, opts ...Option) (*Logger, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logsDir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	l := &Logger{out: &sink{w: f}, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// With returns a logger that tags its lines with component. It shares the
// underlying file; closing either closes both.
func (l *Logger) With(component string) *Logger {
	if l == nil {
		return nil
	}
	child := *l
	child.component = component
	return &child
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.out == nil {
		return nil
	}
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	if l.out.w == nil {
		return nil
	}
	err := l.out.w.Close()
	l.out.w = nil
	return err
}

// Printf writes a single free-form line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.write(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// Event writes msg followed by key=value pairs in the order given. A trailing
// key without a value is written as key=?.
func (l *Logger) Event(msg string, kv ...any) {
	if l == nil {
		return
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		value := any("?")
		if i+1 < len(kv) {
			value = kv[i+1]
		}
		fmt.Fprintf(&b, " %v=%s", kv[i], quoteIfNeeded(fmt.Sprint(value)))
	}
	l.write(b.String())
}

func (l *Logger) write(line string) {
	if l.out == nil {
		return
	}
	if l.component != "" {
		line = l.component + ": " + line
	}
	stamp := l.now().UTC().Format(time.RFC3339)
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	if l.out.w == nil {
		return
	}
	fmt.Fprintf(l.out.w, "[%s] %s\n", stamp, line)
}

func quoteIfNeeded(v string) string {
	if v == "" || strings.ContainsAny(v, " \t\n\"=") {
		return fmt.Sprintf("%q", v)
	}
	return v
}
