package dashboard

import (
	"strings"
	"sync"
)

// LogTail is an io.Writer that keeps the last N log lines for the log
// section. Multi-line writes are split on newlines.
type LogTail struct {
	mu    sync.Mutex
	lines []string
	max   int
}

// NewLogTail creates a tail keeping at most maxLines lines.
func NewLogTail(maxLines int) *LogTail {
	if maxLines <= 0 {
		maxLines = 50
	}
	return &LogTail{max: maxLines}
}

// Write implements io.Writer.
func (t *LogTail) Write(p []byte) (int, error) {
	text := strings.TrimRight(string(p), "\n")
	if text == "" {
		return len(p), nil
	}
	t.mu.Lock()
	for _, line := range strings.Split(text, "\n") {
		t.lines = append(t.lines, line)
	}
	if n := len(t.lines); n > t.max {
		t.lines = append([]string(nil), t.lines[n-t.max:]...)
	}
	t.mu.Unlock()
	return len(p), nil
}

// Lines returns the buffered lines, oldest first.
func (t *LogTail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}
