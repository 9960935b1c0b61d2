// Package transport owns the per-port device handle: it configures the
// serial line once at open, runs the single reader goroutine that feeds
// read bytes to the dialect's framer, and writes outbound bytes atomically.
// It never interprets a frame's contents — that is the Command Queue's and
// URC Dispatcher's job.
package transport

import (
	"errors"
	"io"
	"sync"
	"time"

	serial "github.com/tarm/goserial"
)

// Dialect selects the framer a Port runs: AT lines, or QCDM HDLC frames.
type Dialect int

// The two supported framing dialects.
const (
	DialectAT Dialect = iota
	DialectQCDM
)

// Params are the line parameters (baud, framing, flow control) fixed once
// at open.
type Params struct {
	Path    string
	Baud    int
	Dialect Dialect
	// ReadTimeout bounds each underlying Read call so the reader goroutine
	// can notice Close promptly instead of blocking forever on an idle line.
	ReadTimeout time.Duration
}

// Errors the transport's public contract can return.
var (
	ErrNotOpen = errors.New("transport: port not open")
	ErrIo      = errors.New("transport: i/o error")
)

// FrameSink is the single callback a Handle's frames are delivered to. AT
// frames arrive as decoded lines; QCDM frames arrive as raw unstuffed,
// CRC-checked payloads.
type FrameSink func(frame []byte)

// GoneSink is invoked once, after the first read error other than EOF, when
// the transport has given up and closed itself.
type GoneSink func(err error)

// rwc is the minimal surface Handle needs from an open device; tarm/goserial's
// *serial.Port and an *os.File both satisfy it, which keeps pseudo-ttys (used
// in tests) and real character devices on the same code path.
type rwc interface {
	io.ReadWriteCloser
}

// Handle is one open port's transport. Exactly one reader goroutine and one
// writer (the Command Queue) ever touch it.
type Handle struct {
	params Params
	dev    rwc

	framer frameFramer

	mu       sync.Mutex
	writeMu  sync.Mutex
	closed   bool
	onFrame  FrameSink
	onGone   GoneSink
	done     chan struct{}
}

// frameFramer is the shape both dialect framers (line-buffer and QCDM) share.
type frameFramer interface {
	// Feed appends chunk and returns any frames it completed.
	Feed(chunk []byte) [][]byte
}

// dialFunc is overridable by tests so they can drive a Handle over an
// in-memory pipe instead of a real serial device.
var dialFunc = func(p Params) (rwc, error) {
	c := &serial.Config{Name: p.Path, Baud: p.Baud}
	if p.ReadTimeout > 0 {
		c.ReadTimeout = p.ReadTimeout
	}
	return serial.OpenPort(c)
}

// Open configures and opens the device named by params. The returned
// Handle has no frame sink until OnFrame is called; callers should
// register sinks before the first Write.
func Open(params Params) (*Handle, error) {
	dev, err := dialFunc(params)
	if err != nil {
		return nil, err
	}
	h := &Handle{
		params: params,
		dev:    dev,
		done:   make(chan struct{}),
	}
	switch params.Dialect {
	case DialectQCDM:
		h.framer = newQCDMAdapter()
	default:
		h.framer = newLineFramer()
	}
	return h, nil
}

// OnFrame registers the single sink for completed frames, and starts the
// reader goroutine.
func (h *Handle) OnFrame(sink FrameSink, gone GoneSink) {
	h.mu.Lock()
	h.onFrame = sink
	h.onGone = gone
	h.mu.Unlock()
	go h.readLoop()
}

func (h *Handle) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := h.dev.Read(buf)
		if n > 0 {
			for _, frame := range h.framer.Feed(buf[:n]) {
				h.mu.Lock()
				sink := h.onFrame
				h.mu.Unlock()
				if sink != nil {
					sink(frame)
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || h.isClosed() {
				return
			}
			h.mu.Lock()
			gone := h.onGone
			h.mu.Unlock()
			h.Close()
			if gone != nil {
				gone(err)
			}
			return
		}
	}
}

func (h *Handle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Write writes the entire buffer before returning, retrying partial writes
// internally.
func (h *Handle) Write(p []byte) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if h.isClosed() {
		return ErrNotOpen
	}
	for len(p) > 0 {
		n, err := h.dev.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

// Close is idempotent.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	close(h.done)
	h.mu.Unlock()
	return h.dev.Close()
}
