package exec

import (
	"bytes"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

const stderrTailSize = 4 * 1024

// stderrTail is an io.Writer that keeps the last max bytes written to it.
// It is safe for concurrent use.
type stderrTail struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newStderrTail(max int) *stderrTail {
	return &stderrTail{max: max}
}

func (t *stderrTail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		// Copy to release the old backing array.
		t.buf = append([]byte(nil), t.buf[len(t.buf)-t.max:]...)
	}
	return len(p), nil
}

// Diagnostic returns the last non-empty line written, cleaned for display.
func (t *stderrTail) Diagnostic() string {
	t.mu.Lock()
	b := bytes.Clone(t.buf)
	t.mu.Unlock()

	lines := strings.Split(clean(string(b)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// clean strips ANSI escape sequences and control characters other than tab
// and newline. CRLF becomes LF and a lone CR starts a new line.
func clean(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\r':
			b.WriteByte('\n')
		case r == '\t' || r == '\n' || r > 0x1F && r != 0x7F:
			b.WriteRune(r)
		}
	}
	return b.String()
}
