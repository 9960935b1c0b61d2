package capability

import (
	"context"

	"github.com/linux-mobile-broadband/ModemManager-sub009/modemdata"
)

// LocationCapability is a bitset of the location sources a modem can report.
type LocationCapability int

// Location sources. The generic core only ever offers ThreeGPPLacCi;
// NMEA/raw GPS sources are subclass-provided.
const (
	ThreeGPPLacCi LocationCapability = 1 << iota
	GPSRaw
	GPSNMEA
	GPSUnmanaged
)

// Location is the Location capability interface.
type Location struct {
	*Session
	ThreeGpp *ThreeGpp

	Capabilities LocationCapability
	LAC, CI      int
}

// NewLocation returns a Location capability bound to s, wired to g so
// enable-location can refresh LAC/CI via the same registration logic
// ThreeGpp.Enable uses.
func NewLocation(s *Session, g *ThreeGpp) *Location {
	caps := LocationCapability(0)
	if s.Modem.Capabilities&modemdata.CapabilityGSMUMTS != 0 || s.Modem.Capabilities&modemdata.CapabilityLTE != 0 {
		caps = ThreeGPPLacCi
	}
	return &Location{Session: s, ThreeGpp: g, Capabilities: caps}
}

func (l *Location) Initialize(ctx context.Context) error { return nil }

// Enable re-runs registration checks to refresh LAC/CI for a 3GPP modem.
// NMEA/raw GPS sources require a dedicated GPS port and are
// subclass-provided; the generic core never sets those bits.
func (l *Location) Enable(ctx context.Context) error {
	if l.Capabilities&ThreeGPPLacCi == 0 || l.ThreeGpp == nil {
		return nil
	}
	err := l.ThreeGpp.RefreshRegistration(ctx)
	l.LAC, l.CI = l.ThreeGpp.LAC, l.ThreeGpp.CI
	return err
}

func (l *Location) Disable(ctx context.Context) error { return nil }
