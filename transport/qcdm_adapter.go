package transport

import (
	"github.com/linux-mobile-broadband/ModemManager-sub009/qcdm"
)

// qcdmAdapter adapts qcdm.Framer (HDLC byte-stuffing/CRC framing) to the
// frameFramer shape Handle expects, dropping corrupt frames rather than
// surfacing them.
type qcdmAdapter struct {
	framer *qcdm.Framer
	onDrop func(raw []byte, err error)
}

func newQCDMAdapter() *qcdmAdapter {
	return &qcdmAdapter{framer: &qcdm.Framer{}}
}

func (a *qcdmAdapter) Feed(chunk []byte) [][]byte {
	if a.onDrop != nil {
		return a.framer.FeedFrames(chunk, a.onDrop)
	}
	return a.framer.Feed(chunk)
}
