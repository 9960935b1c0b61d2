package transport

// ATWriter adapts a Handle opened with DialectAT to atqueue.Writer, while
// also telling the line framer which echo to strip next: devices that
// ignore ATE0 echo the command back as the first line.
type ATWriter struct {
	h *Handle
}

// NewATWriter wraps h. h must have been opened with DialectAT.
func NewATWriter(h *Handle) *ATWriter {
	return &ATWriter{h: h}
}

// Write satisfies atqueue.Writer.
func (w *ATWriter) Write(p []byte) error {
	if lf, ok := w.h.framer.(*lineFramer); ok {
		lf.expectEcho(p)
	}
	return w.h.Write(p)
}
