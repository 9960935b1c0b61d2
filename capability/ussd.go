package capability

import (
	"context"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/linux-mobile-broadband/ModemManager-sub009/cmderr"
	"github.com/linux-mobile-broadband/ModemManager-sub009/pdu"
)

// USSDState mirrors a +CUSD session's lifecycle: user-response while the
// network is waiting on a reply from the user (+CUSD: 1), idle once the
// session closes (+CUSD: 0 or 2).
type USSDState int

const (
	USSDIdle USSDState = iota
	USSDActive
	USSDUserResponse
)

// ThreeGppUSSD is the 3GPP-USSD capability interface. It owns its own
// last-known-good DCS variant, memoized across calls, and a
// URC registration since the reply to a +CUSD send arrives asynchronously
// as a `+CUSD: <m>,"<str>",<dcs>` notification rather than inline in the
// command's own OK.
type ThreeGppUSSD struct {
	*Session

	mu      sync.Mutex
	lastDCS int // 0 = raw/GSM-default, 15 = GSM7-hex-encoded
	state   USSDState

	replies chan ussdReply
}

type ussdReply struct {
	state int
	text  string
	dcs   int
}

// NewThreeGppUSSD returns a ThreeGppUSSD capability bound to s.
func NewThreeGppUSSD(s *Session) *ThreeGppUSSD {
	return &ThreeGppUSSD{Session: s, lastDCS: 15, replies: make(chan ussdReply, 1)}
}

func (u *ThreeGppUSSD) Initialize(ctx context.Context) error { return nil }

func (u *ThreeGppUSSD) Enable(ctx context.Context) error {
	u.URCs.Register(`^\+CUSD: `, func(frame string, groups []string) {
		u.onCUSD(frame)
	})
	return nil
}

func (u *ThreeGppUSSD) Disable(ctx context.Context) error { return nil }

func (u *ThreeGppUSSD) onCUSD(frame string) {
	idx := strings.Index(frame, ":")
	if idx < 0 {
		return
	}
	fields := splitQuoted(frame[idx+1:])
	if len(fields) == 0 {
		return
	}
	state, _ := strconv.Atoi(strings.TrimSpace(fields[0]))
	reply := ussdReply{state: state}
	if len(fields) >= 3 {
		reply.text = fields[1]
		reply.dcs, _ = strconv.Atoi(strings.TrimSpace(fields[2]))
	}

	u.mu.Lock()
	if state == 1 {
		u.state = USSDUserResponse
	} else {
		u.state = USSDIdle
	}
	u.mu.Unlock()

	select {
	case u.replies <- reply:
	default:
	}
}

// Send tries the last-known-good DCS variant first, falls back to the other
// on error, and memoizes whichever succeeds. For DCS 15 the text is
// GSM7-packed and hex-encoded, for DCS 0 it is sent as given; the modem's
// current charset is not consulted.
func (u *ThreeGppUSSD) Send(ctx context.Context, text string) (string, error) {
	u.mu.Lock()
	dcs := u.lastDCS
	u.mu.Unlock()

	reply, err := u.sendWithDCS(text, dcs)
	if err == nil {
		return reply, nil
	}

	other := 15
	if dcs == 15 {
		other = 0
	}
	reply, err = u.sendWithDCS(text, other)
	if err == nil {
		u.mu.Lock()
		u.lastDCS = other
		u.mu.Unlock()
	}
	return reply, err
}

func (u *ThreeGppUSSD) sendWithDCS(text string, dcs int) (string, error) {
	payload := text
	if dcs == 15 {
		encoded, err := pdu.FromUTF8(text, pdu.GSM7)
		if err != nil {
			return "", err
		}
		payload = strings.ToUpper(hex.EncodeToString(encoded))
	}

	cmd := `AT+CUSD=1,"` + payload + `",` + strconv.Itoa(dcs)
	res := u.Queue.Enqueue(atCommand(cmd, 15*time.Second, noParse)).Wait()
	if res.Err != nil {
		return "", res.Err
	}

	select {
	case reply := <-u.replies:
		return decodeUSSDReply(reply)
	case <-time.After(15 * time.Second):
		return "", cmderr.ErrTimeout
	}
}

func decodeUSSDReply(reply ussdReply) (string, error) {
	if reply.text == "" {
		return "", nil
	}
	if reply.dcs == 15 {
		raw, err := hex.DecodeString(reply.text)
		if err != nil {
			return "", err
		}
		return pdu.ToUTF8(raw, pdu.GSM7)
	}
	return reply.text, nil
}
