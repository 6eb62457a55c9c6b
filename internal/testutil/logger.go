package testutil

import (
	"fmt"
	"strings"
	"sync"
)

// SpyLogger records every log call so tests can assert on what was (or was
// not) logged. Safe for concurrent use.
type SpyLogger struct {
	mu    sync.Mutex
	lines []string
}

func NewSpyLogger() *SpyLogger {
	return &SpyLogger{}
}

func (l *SpyLogger) log(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	b.WriteString(level)
	b.WriteByte('\t')
	b.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, "\t%v=%v", args[i], args[i+1])
	}
	l.lines = append(l.lines, b.String())
}

func (l *SpyLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args) }
func (l *SpyLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args) }
func (l *SpyLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args) }
func (l *SpyLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args) }

// Lines returns a copy of everything logged so far.
func (l *SpyLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Contains reports whether any logged line contains substr.
func (l *SpyLogger) Contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
