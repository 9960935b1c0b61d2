package capability

import "context"

// FirmwareSlot describes one firmware image identified on the modem.
type FirmwareSlot struct {
	UniqueID string
	Version  string
	Active   bool
}

// Firmware is the Firmware capability interface. It never writes firmware;
// it only reports what is already installed.
type Firmware struct {
	*Session

	Slots []FirmwareSlot
}

// NewFirmware returns a Firmware capability bound to s.
func NewFirmware(s *Session) *Firmware { return &Firmware{Session: s} }

// Initialize reads the active revision via +CGMR; this core has no
// multi-slot vendor protocol, so it reports exactly one, active slot. A
// vendor plugin that knows its own multi-image scheme overrides this.
func (f *Firmware) Initialize(ctx context.Context) error {
	res := f.Queue.Enqueue(atCommand("AT+CGMR", 0, firstLine)).Wait()
	if res.Err != nil {
		return res.Err
	}
	f.Slots = []FirmwareSlot{{Version: res.Value.(string), Active: true}}
	return nil
}

func (f *Firmware) Enable(ctx context.Context) error  { return nil }
func (f *Firmware) Disable(ctx context.Context) error { return nil }
