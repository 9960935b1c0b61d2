package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineFramerSplitsAndSwallowsEmpty(t *testing.T) {
	t.Parallel()

	f := newLineFramer()
	frames := f.Feed([]byte("\r\nOK\r\n\r\n+CREG: 1,\"1A2B\"\r\n"))
	assert.Equal(t, []string{"OK", "+CREG: 1,\"1A2B\""}, toStrings(frames))
}

func TestLineFramerStripsLeadingEcho(t *testing.T) {
	t.Parallel()

	f := newLineFramer()
	f.expectEcho([]byte("AT+CREG?\r\n"))
	frames := f.Feed([]byte("AT+CREG?\r\n+CREG: 1,0\r\nOK\r\n"))
	assert.Equal(t, []string{"+CREG: 1,0", "OK"}, toStrings(frames))
}

func TestLineFramerBuffersAcrossChunks(t *testing.T) {
	t.Parallel()

	f := newLineFramer()
	assert.Empty(t, f.Feed([]byte("+CM")))
	frames := f.Feed([]byte("TI: \"SM\",3\r\n"))
	assert.Equal(t, []string{`+CMTI: "SM",3`}, toStrings(frames))
}

func toStrings(frames [][]byte) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = string(f)
	}
	return out
}
