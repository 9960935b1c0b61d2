package qcdm

// Framer accumulates bytes from a stream and emits one payload per complete
// HDLC frame it recognizes. It holds no knowledge of transport or
// concurrency; transport.Port feeds it bytes and forwards what it yields
// to the frame sink.
type Framer struct {
	buf []byte
}

// Feed appends chunk to the framer's buffer and returns zero or more
// complete, CRC-checked payloads. Corrupt frames (bad CRC, truncated) are
// dropped silently; callers that want to log drops should inspect the
// return value of Decapsulate themselves via FeedFrames.
func (f *Framer) Feed(chunk []byte) [][]byte {
	f.buf = append(f.buf, chunk...)
	var out [][]byte
	for {
		idx := indexByte(f.buf, FrameDelimiter)
		if idx < 0 {
			return out
		}
		raw := f.buf[:idx]
		f.buf = f.buf[idx+1:]
		if len(raw) == 0 {
			continue
		}
		payload, err := Decapsulate(raw)
		if err != nil {
			continue
		}
		out = append(out, payload)
	}
}

// FeedFrames is like Feed but also reports drops, keyed by the error that
// caused the frame to be discarded; callers pass a non-nil onDrop to log
// corrupt frames instead of silently discarding them.
func (f *Framer) FeedFrames(chunk []byte, onDrop func(raw []byte, err error)) [][]byte {
	f.buf = append(f.buf, chunk...)
	var out [][]byte
	for {
		idx := indexByte(f.buf, FrameDelimiter)
		if idx < 0 {
			return out
		}
		raw := f.buf[:idx]
		f.buf = f.buf[idx+1:]
		if len(raw) == 0 {
			continue
		}
		payload, err := Decapsulate(raw)
		if err != nil {
			if onDrop != nil {
				onDrop(raw, err)
			}
			continue
		}
		out = append(out, payload)
	}
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}
