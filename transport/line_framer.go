package transport

import (
	"bytes"
	"strings"
	"sync"
)

// lineFramer implements the AT dialect framer policy: accumulate into a
// line buffer, split on `\r\n`, swallow empty frames, and strip a leading
// echo of the last-written command on older devices that ignore ATE0.
type lineFramer struct {
	mu   sync.Mutex
	buf  []byte
	echo []byte // the last command's bytes, trimmed of its own \r\n
}

func newLineFramer() *lineFramer {
	return &lineFramer{}
}

// expectEcho records the command just written so the next matching leading
// line can be stripped instead of surfaced as a frame: a two-pass match
// against the outstanding command's bytes.
func (f *lineFramer) expectEcho(cmd []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.echo = bytes.TrimRight(cmd, "\r\n")
}

func (f *lineFramer) Feed(chunk []byte) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.buf = append(f.buf, chunk...)
	var frames [][]byte
	for {
		idx := bytes.Index(f.buf, []byte("\r\n"))
		if idx < 0 {
			break
		}
		line := f.buf[:idx]
		f.buf = f.buf[idx+2:]

		if len(line) == 0 {
			continue
		}
		if f.echo != nil && bytes.Equal(bytes.TrimSpace(line), f.echo) {
			f.echo = nil
			continue
		}
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		out := make([]byte, len(trimmed))
		copy(out, trimmed)
		frames = append(frames, out)
	}
	return frames
}

// Frame is the string view of a line frame; callers working with the AT
// dialect almost always want text, not bytes.
func Frame(b []byte) string {
	return strings.TrimSpace(string(b))
}
