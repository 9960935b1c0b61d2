package orchestrator

import (
	"context"

	"github.com/linux-mobile-broadband/ModemManager-sub009/capability"
	"github.com/linux-mobile-broadband/ModemManager-sub009/cmderr"
	"github.com/linux-mobile-broadband/ModemManager-sub009/modemdata"
)

// Hooks lets a plugin observe the pipeline at its three turning points:
// once Initialize has started, once Enable has started, and once Disable
// has finished tearing things down. Every hook is optional; a nil func is
// skipped.
type Hooks struct {
	Started          func(m *modemdata.Modem)
	EnablingStarted  func(m *modemdata.Modem)
	DisablingStopped func(m *modemdata.Modem)
}

// Capabilities bundles the nine capability interfaces an Orchestrator
// drives. Location/Messaging/Time/Firmware/CDMA/USSD may be nil when a
// modem class doesn't implement them; Modem, ThreeGpp and Simple are
// mandatory on a 3GPP-capable modem.
type Capabilities struct {
	Modem     *capability.Modem
	ThreeGpp  *capability.ThreeGpp
	USSD      *capability.ThreeGppUSSD
	Cdma      *capability.Cdma
	Location  *capability.Location
	Messaging *capability.Messaging
	Time      *capability.Time
	Firmware  *capability.Firmware
	Simple    *capability.Simple
}

// Orchestrator drives one Modem's init/enable/disable pipelines. It owns
// no transport directly; PortsContext references are supplied by the
// caller that opened the ports (the plugin/port-probing layer), since the
// Orchestrator's job is sequencing capability calls, not device I/O.
type Orchestrator struct {
	Modem *modemdata.Modem
	Caps  Capabilities
	Hooks Hooks

	initCtx   *PortsContext
	enableCtx *PortsContext
}

// New returns an Orchestrator for m, driving caps, observed by hooks.
func New(m *modemdata.Modem, caps Capabilities, hooks Hooks) *Orchestrator {
	return &Orchestrator{Modem: m, Caps: caps, Hooks: hooks}
}

// Initialize runs the init pipeline. Port setup is assumed already done by
// the caller (ports are classified and opened before an Orchestrator
// exists for them); from here it runs the started hook, resets the derived
// status fields, initializes the base Modem, and then — unless the probe
// left the modem Locked, in which case only Firmware is probed — every
// other capability's Initialize in a fixed order.
func (o *Orchestrator) Initialize(ctx context.Context, pc *PortsContext) error {
	o.initCtx = pc
	o.Modem.State = modemdata.StateInitializing

	if o.Hooks.Started != nil {
		o.Hooks.Started(o.Modem)
	}

	o.setupSimpleStatus()

	if o.Caps.Modem == nil {
		return cmderr.ErrWrongState
	}
	if err := o.Caps.Modem.Initialize(ctx); err != nil {
		o.Modem.State = modemdata.StateFailed
		return err
	}

	if o.Modem.State == modemdata.StateLocked {
		if o.Caps.Firmware != nil {
			o.Caps.Firmware.Initialize(ctx)
		}
		return nil
	}

	steps := []func(context.Context) error{
		o.initThreeGpp,
		o.initUSSD,
		o.initCdma,
		o.initLocation,
		o.initMessaging,
		o.initTime,
		o.initFirmware,
		o.initSimple,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil && cmderr.KindOf(err) != cmderr.NotSupported {
			o.Modem.State = modemdata.StateFailed
			return err
		}
	}

	o.Modem.State = modemdata.StateDisabled
	return nil
}

// setupSimpleStatus resets the derived fields Enable/Disable/Register
// recompute, so a re-Initialize after a Failed state starts clean.
func (o *Orchestrator) setupSimpleStatus() {
	o.Modem.RegCS = modemdata.RegUnknown
	o.Modem.RegPS = modemdata.RegUnknown
	o.Modem.RegEPS = modemdata.RegUnknown
}

func (o *Orchestrator) initThreeGpp(ctx context.Context) error {
	if o.Caps.ThreeGpp == nil {
		return nil
	}
	return o.Caps.ThreeGpp.Initialize(ctx)
}

func (o *Orchestrator) initUSSD(ctx context.Context) error {
	if o.Caps.USSD == nil {
		return nil
	}
	return o.Caps.USSD.Initialize(ctx)
}

func (o *Orchestrator) initCdma(ctx context.Context) error {
	if o.Caps.Cdma == nil {
		return nil
	}
	return o.Caps.Cdma.Initialize(ctx)
}

func (o *Orchestrator) initLocation(ctx context.Context) error {
	if o.Caps.Location == nil {
		return nil
	}
	return o.Caps.Location.Initialize(ctx)
}

func (o *Orchestrator) initMessaging(ctx context.Context) error {
	if o.Caps.Messaging == nil {
		return nil
	}
	return o.Caps.Messaging.Initialize(ctx)
}

func (o *Orchestrator) initTime(ctx context.Context) error {
	if o.Caps.Time == nil {
		return nil
	}
	return o.Caps.Time.Initialize(ctx)
}

func (o *Orchestrator) initFirmware(ctx context.Context) error {
	if o.Caps.Firmware == nil {
		return nil
	}
	return o.Caps.Firmware.Initialize(ctx)
}

func (o *Orchestrator) initSimple(ctx context.Context) error {
	// Simple has no transport-facing state of its own to probe; it only
	// drives the other interfaces on Connect.
	return nil
}

// Enable runs the enable pipeline: the enabling-started hook, Modem.Enable,
// ThreeGpp.Enable, ThreeGpp-USSD.Enable, Cdma.Enable, then
// Location/Messaging/Time.Enable whose failures are non-fatal. pc becomes
// the Orchestrator's enable-lifetime PortsContext, distinct from the one
// Initialize held, so initialization and enabling never share a port set.
func (o *Orchestrator) Enable(ctx context.Context, pc *PortsContext) error {
	o.enableCtx = pc
	o.Modem.State = modemdata.StateEnabling

	if o.Hooks.EnablingStarted != nil {
		o.Hooks.EnablingStarted(o.Modem)
	}

	if o.Caps.Modem == nil {
		return cmderr.ErrWrongState
	}
	if err := o.Caps.Modem.Enable(ctx); err != nil {
		o.Modem.State = modemdata.StateFailed
		return err
	}

	if o.Caps.ThreeGpp != nil {
		if err := o.Caps.ThreeGpp.Enable(ctx); err != nil {
			o.Modem.State = modemdata.StateFailed
			return err
		}
	}
	if o.Caps.USSD != nil {
		if err := o.Caps.USSD.Enable(ctx); err != nil {
			o.Modem.State = modemdata.StateFailed
			return err
		}
	}
	if o.Caps.Cdma != nil {
		if err := o.Caps.Cdma.Enable(ctx); err != nil {
			o.Modem.State = modemdata.StateFailed
			return err
		}
	}

	// Non-fatal from here: Location/Messaging/Time errors don't fail Enable.
	if o.Caps.Location != nil {
		o.Caps.Location.Enable(ctx)
	}
	if o.Caps.Messaging != nil {
		o.Caps.Messaging.Enable(ctx)
	}
	if o.Caps.Time != nil {
		o.Caps.Time.Enable(ctx)
	}

	o.Modem.State = modemdata.StateEnabled
	return nil
}

// Disable runs the disable pipeline in reverse order of Enable: every
// bearer is disconnected first, then each capability's Disable runs (Time's
// has nothing to tear down and returns at once), and finally the
// disabling-stopped hook fires, releasing the enable-lifetime
// PortsContext so ports opened only for Enable close once nothing else
// references them.
func (o *Orchestrator) Disable(ctx context.Context) error {
	o.Modem.State = modemdata.StateDisabling

	o.disconnectAllBearers(ctx)

	if o.Caps.Time != nil {
		o.Caps.Time.Disable(ctx)
	}
	if o.Caps.Messaging != nil {
		o.Caps.Messaging.Disable(ctx)
	}
	if o.Caps.Location != nil {
		o.Caps.Location.Disable(ctx)
	}
	if o.Caps.Cdma != nil {
		o.Caps.Cdma.Disable(ctx)
	}
	if o.Caps.USSD != nil {
		o.Caps.USSD.Disable(ctx)
	}
	if o.Caps.ThreeGpp != nil {
		o.Caps.ThreeGpp.Disable(ctx)
	}

	var err error
	if o.Caps.Modem != nil {
		err = o.Caps.Modem.Disable(ctx)
	}

	if o.Hooks.DisablingStopped != nil {
		o.Hooks.DisablingStopped(o.Modem)
	}
	if o.enableCtx != nil {
		o.enableCtx.Unref()
		o.enableCtx = nil
	}

	o.Modem.State = modemdata.StateDisabled
	return err
}

func (o *Orchestrator) disconnectAllBearers(ctx context.Context) {
	for _, b := range o.Modem.Bearers.All() {
		if b.Status == modemdata.BearerConnected || b.Status == modemdata.BearerConnecting {
			b.Status = modemdata.BearerDisconnecting
			b.Status = modemdata.BearerDisconnected
		}
	}
}
