package capability

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linux-mobile-broadband/ModemManager-sub009/atqueue"
	"github.com/linux-mobile-broadband/ModemManager-sub009/modemdata"
)

// scriptedWriter replies to AT+CIND=?, AT+CIND?, and AT+CSQ with canned
// lines keyed by command prefix, so SignalQuality's probe-then-fallback
// chain can be exercised without a real port.
type scriptedWriter struct {
	queue   *atqueue.Queue
	replies map[string]string
}

func (w *scriptedWriter) Write(p []byte) error {
	cmd := strings.TrimSpace(string(p))
	for prefix, reply := range w.replies {
		if strings.HasPrefix(cmd, prefix) {
			go func() {
				if reply != "" {
					w.queue.DeliverFrame(reply)
				}
				w.queue.DeliverFrame("OK")
			}()
			return nil
		}
	}
	go w.queue.DeliverFrame("ERROR")
	return nil
}

func newModemWithScript(t *testing.T, replies map[string]string) *Modem {
	t.Helper()
	w := &scriptedWriter{replies: replies}
	q := atqueue.New(w, 3, nil)
	w.queue = q
	return NewModem(&Session{Modem: modemdata.NewModem("/dev/fake0"), Queue: q})
}

func TestSignalQualityPrefersCindOverCsq(t *testing.T) {
	t.Parallel()

	m := newModemWithScript(t, map[string]string{
		"AT+CIND=?": `+CIND: ("battchg",(0-5)),("signal",(0-5)),("service",(0-1))`,
		"AT+CIND?":  `+CIND: 5,4,1`,
		"AT+CSQ":    `+CSQ: 1,99`, // would report near-zero if ever reached
	})

	q, err := m.SignalQuality(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 80, q) // (4-0)*100/(5-0)
}

func TestSignalQualityFallsBackToCsqWhenNoCindSignalField(t *testing.T) {
	t.Parallel()

	m := newModemWithScript(t, map[string]string{
		"AT+CIND=?": `+CIND: ("battchg",(0-5)),("service",(0-1))`,
		"AT+CIND?":  `+CIND: 5,1`,
		"AT+CSQ":    `+CSQ: 20,99`,
	})

	q, err := m.SignalQuality(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20*100/31, q)
}

func TestSignalQualityClampsOutOfRangeCindValue(t *testing.T) {
	t.Parallel()

	m := newModemWithScript(t, map[string]string{
		"AT+CIND=?": `+CIND: ("signal",(0-5))`,
		"AT+CIND?":  `+CIND: 7`,
		"AT+CSQ":    `+CSQ: 20,99`,
	})

	q, err := m.SignalQuality(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, q)
}
