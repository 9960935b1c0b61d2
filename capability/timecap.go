package capability

import (
	"context"
	"strings"
	"time"
)

// Time is the Time capability interface: it registers for the network time
// URC and exposes the last value received.
type Time struct {
	*Session

	NetworkTime    time.Time
	NetworkTimeSet bool
	TimeZoneOffset int // quarter-hours east of UTC, per 3GPP TS 27.007 +CCLK
}

// NewTime returns a Time capability bound to s.
func NewTime(s *Session) *Time { return &Time{Session: s} }

func (t *Time) Initialize(ctx context.Context) error { return nil }

// Enable registers for +CTZV/+CTZE network-time URCs; errors here are
// non-fatal to the Enable pipeline.
func (t *Time) Enable(ctx context.Context) error {
	t.URCs.Register(`^\+CTZV: `, func(frame string, groups []string) { t.onNetworkTime(frame) })
	t.URCs.Register(`^\+CTZE: `, func(frame string, groups []string) { t.onNetworkTime(frame) })

	if res := t.Queue.Enqueue(atCommand("AT+CCLK?", 0, firstLine)).Wait(); res.Err == nil {
		t.onNetworkTime(res.Value.(string))
	}
	return nil
}

func (t *Time) Disable(ctx context.Context) error { return nil }

func (t *Time) onNetworkTime(frame string) {
	idx := strings.Index(frame, ":")
	if idx < 0 {
		return
	}
	raw := strings.Trim(strings.TrimSpace(frame[idx+1:]), `"`)
	ts, err := time.Parse("06/01/02,15:04:05", raw)
	if err != nil {
		return
	}
	t.NetworkTime = ts
	t.NetworkTimeSet = true
}
