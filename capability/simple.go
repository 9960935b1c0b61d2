package capability

import (
	"context"

	"github.com/linux-mobile-broadband/ModemManager-sub009/cmderr"
	"github.com/linux-mobile-broadband/ModemManager-sub009/modemdata"
)

// ConnectProperties is the input to Simple.Connect.
type ConnectProperties struct {
	PIN          string
	OperatorID   string
	APN          string
	IPType       string
	AllowRoaming bool
}

// Simple is the orchestrated-connect capability interface. It drives the
// other capability interfaces rather than talking to the transport itself.
type Simple struct {
	*Session

	Modem    *Modem
	ThreeGpp *ThreeGpp
}

// NewSimple returns a Simple capability bound to s, driving modemCap and
// threeGpp.
func NewSimple(s *Session, modemCap *Modem, threeGpp *ThreeGpp) *Simple {
	return &Simple{Session: s, Modem: modemCap, ThreeGpp: threeGpp}
}

// Connect runs unlock-check, Enable, network registration, and
// bearer-create-or-reuse-then-connect in sequence. A PIN in props is
// consumed by the unlock check; any other lock state fails with
// Unauthorized.
func (s *Simple) Connect(ctx context.Context, props ConnectProperties) (*modemdata.Bearer, error) {
	if err := s.unlockCheck(ctx, props.PIN); err != nil {
		return nil, err
	}
	if err := s.Modem.Enable(ctx); err != nil {
		return nil, err
	}
	if err := s.ThreeGpp.Register(ctx, props.OperatorID); err != nil {
		return nil, err
	}

	bearer := s.createOrReuseBearer(props)
	if err := s.bearerConnect(ctx, bearer); err != nil {
		return nil, err
	}
	return bearer, nil
}

// Disconnect tears a connected bearer down with +CGACT=0,1, leaving it
// Disconnected whether or not the modem acknowledges the hangup. Only PDP
// context 1, the one bearerConnect defines, is deactivated, whatever CID
// the bearer holds.
func (s *Simple) Disconnect(ctx context.Context, b *modemdata.Bearer) error {
	if b.Status != modemdata.BearerConnected && b.Status != modemdata.BearerConnecting {
		return nil
	}
	b.Status = modemdata.BearerDisconnecting
	res := s.Queue.Enqueue(atCommand("AT+CGACT=0,1", 0, noParse)).Wait()
	b.Status = modemdata.BearerDisconnected
	return res.Err
}

func (s *Simple) unlockCheck(ctx context.Context, pin string) error {
	if s.Session.Modem.SIM == nil || !s.Session.Modem.SIM.PINLocked {
		return nil
	}
	if pin == "" {
		return cmderr.ErrUnauthorized
	}
	res := s.Queue.Enqueue(atCommand(`AT+CPIN="`+pin+`"`, 0, noParse)).Wait()
	if res.Err != nil {
		return cmderr.ErrUnauthorized
	}
	s.Session.Modem.SIM.PINLocked = false
	return nil
}

func (s *Simple) createOrReuseBearer(props ConnectProperties) *modemdata.Bearer {
	for _, b := range s.Session.Modem.Bearers.All() {
		if b.APN == props.APN && b.Status != modemdata.BearerConnected {
			return b
		}
	}
	b := &modemdata.Bearer{
		APN:          props.APN,
		IPType:       props.IPType,
		AllowRoaming: props.AllowRoaming,
	}
	s.Session.Modem.Bearers.Add(b)
	return b
}

func (s *Simple) bearerConnect(ctx context.Context, b *modemdata.Bearer) error {
	b.Status = modemdata.BearerConnecting
	res := s.Queue.Enqueue(atCommand(`AT+CGDCONT=1,"IP","`+b.APN+`"`, 0, noParse)).Wait()
	if res.Err != nil {
		b.Status = modemdata.BearerDisconnected
		return res.Err
	}
	res = s.Queue.Enqueue(atCommand("ATD*99#", 0, noParse)).Wait()
	if res.Err != nil {
		b.Status = modemdata.BearerDisconnected
		return res.Err
	}
	b.Status = modemdata.BearerConnected
	return nil
}
