package qcdm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncapsulateDecapsulateRoundTrip(t *testing.T) {
	t.Parallel()

	cases := [][]byte{
		{0x00},
		{0x4B, 0x08, 0x24},
		{0x7E, 0x7D, 0x01, 0x02, 0x03},
		make([]byte, 64),
	}
	for _, payload := range cases {
		framed := Encapsulate(payload)
		assert.Equal(t, byte(FrameDelimiter), framed[len(framed)-1])
		for _, b := range framed[:len(framed)-1] {
			assert.NotEqual(t, byte(FrameDelimiter), b)
		}
		decoded, err := Decapsulate(framed[:len(framed)-1])
		require.NoError(t, err)
		assert.Equal(t, payload, decoded)
	}
}

func TestDecapsulateRejectsBadCRC(t *testing.T) {
	t.Parallel()

	framed := Encapsulate([]byte{0x01, 0x02})
	raw := framed[:len(framed)-1]
	raw[0] ^= 0xFF
	_, err := Decapsulate(raw)
	assert.ErrorIs(t, err, ErrCRC)
}

func TestDecapsulateRejectsTruncated(t *testing.T) {
	t.Parallel()

	_, err := Decapsulate([]byte{0x01})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestFramerSplitsStream(t *testing.T) {
	t.Parallel()

	var f Framer
	a := Encapsulate([]byte{0x00})
	b := Encapsulate([]byte{0x4B, 0x08, 0x24})

	stream := append(append([]byte{}, a...), b...)
	frames := f.Feed(stream[:len(stream)-3])
	assert.Len(t, frames, 1)
	assert.Equal(t, []byte{0x00}, frames[0])

	frames = f.Feed(stream[len(stream)-3:])
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x4B, 0x08, 0x24}, frames[0])
}

func TestFramerDropsCorruptFrame(t *testing.T) {
	t.Parallel()

	var f Framer
	var dropped int
	corrupt := []byte{0x01, 0x02, 0x03, FrameDelimiter}
	frames := f.FeedFrames(corrupt, func(raw []byte, err error) {
		dropped++
		assert.Error(t, err)
	})
	assert.Empty(t, frames)
	assert.Equal(t, 1, dropped)
}
