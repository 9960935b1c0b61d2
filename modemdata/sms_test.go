package modemdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmsListSinglePart(t *testing.T) {
	t.Parallel()

	l := NewSmsList()
	sms, err := l.AddPart("+15551234", &SmsPart{Text: "hello", Type: PDUTypeDeliver})
	require.NoError(t, err)
	require.NotNil(t, sms)
	assert.True(t, sms.Complete())
	assert.Equal(t, "hello", sms.Text())
}

func TestSmsListMultipartAssembly(t *testing.T) {
	t.Parallel()

	l := NewSmsList()
	md := func(seq int) *MultipartDescriptor {
		return &MultipartDescriptor{Reference: 7, Total: 2, Sequence: seq}
	}

	sms, err := l.AddPart("+15551234", &SmsPart{Text: "hello ", Multipart: md(1)})
	require.NoError(t, err)
	assert.Nil(t, sms, "should not complete until both parts arrive")
	assert.Len(t, l.Pending(), 1)

	sms, err = l.AddPart("+15551234", &SmsPart{Text: "world", Multipart: md(2)})
	require.NoError(t, err)
	require.NotNil(t, sms)
	assert.True(t, sms.Complete())
	assert.Equal(t, "hello world", sms.Text())
}

func TestSmsListRejectsOversizedMultipart(t *testing.T) {
	t.Parallel()

	l := NewSmsList()
	_, err := l.AddPart("+15551234", &SmsPart{
		Multipart: &MultipartDescriptor{Reference: 1, Total: 256, Sequence: 1},
	})
	assert.ErrorIs(t, err, ErrMultipartTooLarge)
}

func TestBearerListAllocatesLowestFreeCID(t *testing.T) {
	t.Parallel()

	l := NewBearerList()
	b1 := &Bearer{APN: "internet"}
	require.NoError(t, l.Add(b1))
	assert.Equal(t, 1, b1.CID)

	b2 := &Bearer{APN: "ims"}
	require.NoError(t, l.Add(b2))
	assert.Equal(t, 2, b2.CID)

	l.Remove(1)
	b3 := &Bearer{APN: "mms"}
	require.NoError(t, l.Add(b3))
	assert.Equal(t, 1, b3.CID)
}

func TestAggregateRegistration(t *testing.T) {
	t.Parallel()

	assert.True(t, AggregateRegistration(RegIdle, RegIdle, RegRegisteredHome).Registered())
	assert.False(t, AggregateRegistration(RegIdle, RegSearching, RegDenied).Registered())
}
