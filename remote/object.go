// Package remote implements the thin remote-object model exposed to modem
// management clients: a stable per-Modem object path, an attribute mirror
// of the Modem's fields, and the method surface (Enable/Disable,
// Connect/Disconnect, Send-PIN/PUK, Send-SMS, Scan-Networks, Register,
// List-Bearers). The transport that would carry this over a system bus is
// out of scope; only the object type and its method set live here.
package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/linux-mobile-broadband/ModemManager-sub009/capability"
	"github.com/linux-mobile-broadband/ModemManager-sub009/cmderr"
	"github.com/linux-mobile-broadband/ModemManager-sub009/modemdata"
	"github.com/linux-mobile-broadband/ModemManager-sub009/orchestrator"
)

// Path is a stable remote-object identifier, assigned once per Modem and
// never reused.
type Path string

// PathFor derives the object path from a device path, mirroring how a
// connected Modem's DevicePath is turned into a public identifier.
func PathFor(devicePath string) Path {
	return Path(fmt.Sprintf("/Modem/%x", []byte(devicePath)))
}

// BearerAttrs is the attribute mirror of a modemdata.Bearer, returned by
// ListBearers.
type BearerAttrs struct {
	CID          int
	APN          string
	IPType       string
	AllowRoaming bool
	Status       string
}

// Attrs mirrors a Modem's fields onto the values a remote caller may read.
type Attrs struct {
	Path         Path
	DevicePath   string
	State        string
	Capabilities modemdata.Capability
	Manufacturer string
	Model        string
	Revision     string
	EquipmentID  string
	OwnNumbers   []string
	SIMLocked    bool
	ICCID        string
	IMSI         string
	OperatorName string
	Registered   bool
	Bearers      []BearerAttrs
}

// Object is the remote-exposed wrapper around one Modem: its orchestrator
// (for Enable/Disable), its capability set (for the domain operations),
// and the Modem data the attribute mirror reads from.
type Object struct {
	mu sync.Mutex

	path  Path
	modem *modemdata.Modem
	orch  *orchestrator.Orchestrator

	modemCap  *capability.Modem
	threeGpp  *capability.ThreeGpp
	messaging *capability.Messaging
	simple    *capability.Simple

	enableCtx *orchestrator.PortsContext
}

// New wraps m behind a remote Object. orch drives Enable/Disable; the
// capability arguments may be nil when the underlying Modem doesn't
// support that domain (e.g. a CDMA-only modem has no usable messaging or
// 3GPP capability), in which case the corresponding method resolves with
// cmderr.NotSupported.
func New(m *modemdata.Modem, orch *orchestrator.Orchestrator, modemCap *capability.Modem, threeGpp *capability.ThreeGpp, messaging *capability.Messaging, simple *capability.Simple) *Object {
	return &Object{
		path:      PathFor(m.DevicePath),
		modem:     m,
		orch:      orch,
		modemCap:  modemCap,
		threeGpp:  threeGpp,
		messaging: messaging,
		simple:    simple,
	}
}

// Path returns this Object's stable remote path.
func (o *Object) Path() Path { return o.path }

// Attrs snapshots the current attribute mirror.
func (o *Object) Attrs() Attrs {
	o.mu.Lock()
	defer o.mu.Unlock()

	a := Attrs{
		Path:         o.path,
		DevicePath:   o.modem.DevicePath,
		State:        o.modem.State.String(),
		Capabilities: o.modem.Capabilities,
		Registered:   o.modem.Registered(),
	}
	if o.modemCap != nil {
		a.Manufacturer = o.modemCap.Manufacturer
		a.Model = o.modemCap.Model
		a.Revision = o.modemCap.Revision
		a.EquipmentID = o.modemCap.EquipmentID
		a.OwnNumbers = append([]string(nil), o.modemCap.OwnNumbers...)
	}
	if sim := o.modem.SIM; sim != nil {
		a.SIMLocked = sim.PINLocked
		a.ICCID = sim.ICCID
		a.IMSI = sim.IMSI
		a.OperatorName = sim.OperatorName
	}
	for _, b := range o.modem.Bearers.All() {
		a.Bearers = append(a.Bearers, BearerAttrs{
			CID:          b.CID,
			APN:          b.APN,
			IPType:       b.IPType,
			AllowRoaming: b.AllowRoaming,
			Status:       bearerStatusName(b.Status),
		})
	}
	return a
}

func bearerStatusName(s modemdata.BearerStatus) string {
	switch s {
	case modemdata.BearerConnecting:
		return "connecting"
	case modemdata.BearerConnected:
		return "connected"
	case modemdata.BearerDisconnecting:
		return "disconnecting"
	default:
		return "disconnected"
	}
}

// Enable runs the Orchestrator's enable pipeline.
func (o *Object) Enable(ctx context.Context) *cmderr.Surface {
	o.mu.Lock()
	if o.enableCtx == nil {
		o.enableCtx = orchestrator.NewPortsContext()
	}
	pc := o.enableCtx
	o.mu.Unlock()
	return cmderr.ToSurface(o.orch.Enable(ctx, pc))
}

// Disable runs the Orchestrator's disable pipeline.
func (o *Object) Disable(ctx context.Context) *cmderr.Surface {
	return cmderr.ToSurface(o.orch.Disable(ctx))
}

// SendPIN unlocks the SIM.
func (o *Object) SendPIN(ctx context.Context, pin string) *cmderr.Surface {
	if o.modemCap == nil {
		return cmderr.ToSurface(cmderr.ErrNotSupported)
	}
	return cmderr.ToSurface(o.modemCap.SendPIN(ctx, pin))
}

// SendPUK unlocks a PUK-blocked SIM and sets a new PIN.
func (o *Object) SendPUK(ctx context.Context, puk, newPin string) *cmderr.Surface {
	if o.modemCap == nil {
		return cmderr.ToSurface(cmderr.ErrNotSupported)
	}
	return cmderr.ToSurface(o.modemCap.SendPUK(ctx, puk, newPin))
}

// SendSMS submits a text message to number, returning the modem-assigned
// message reference.
func (o *Object) SendSMS(ctx context.Context, number, text string) (int, *cmderr.Surface) {
	if o.messaging == nil {
		return 0, cmderr.ToSurface(cmderr.ErrNotSupported)
	}
	ref, err := o.messaging.Send(ctx, number, text)
	return ref, cmderr.ToSurface(err)
}

// ScanNetworks runs a 3GPP network scan.
func (o *Object) ScanNetworks(ctx context.Context) ([]capability.NetworkOperator, *cmderr.Surface) {
	if o.threeGpp == nil {
		return nil, cmderr.ToSurface(cmderr.ErrNotSupported)
	}
	ops, err := o.threeGpp.Scan(ctx)
	return ops, cmderr.ToSurface(err)
}

// Register attempts registration on operatorID, or automatic registration
// when empty.
func (o *Object) Register(ctx context.Context, operatorID string) *cmderr.Surface {
	if o.threeGpp == nil {
		return cmderr.ToSurface(cmderr.ErrNotSupported)
	}
	return cmderr.ToSurface(o.threeGpp.Register(ctx, operatorID))
}

// ListBearers returns the attribute mirror of every Bearer currently
// tracked by the Modem.
func (o *Object) ListBearers() []BearerAttrs {
	return o.Attrs().Bearers
}

// Connect runs Simple.Connect.
func (o *Object) Connect(ctx context.Context, props capability.ConnectProperties) (BearerAttrs, *cmderr.Surface) {
	if o.simple == nil {
		return BearerAttrs{}, cmderr.ToSurface(cmderr.ErrNotSupported)
	}
	b, err := o.simple.Connect(ctx, props)
	if err != nil {
		return BearerAttrs{}, cmderr.ToSurface(err)
	}
	return BearerAttrs{
		CID:          b.CID,
		APN:          b.APN,
		IPType:       b.IPType,
		AllowRoaming: b.AllowRoaming,
		Status:       bearerStatusName(b.Status),
	}, nil
}

// Disconnect tears down a bearer by CID.
func (o *Object) Disconnect(ctx context.Context, cid int) *cmderr.Surface {
	if o.simple == nil {
		return cmderr.ToSurface(cmderr.ErrNotSupported)
	}
	b := o.modem.Bearers.Get(cid)
	if b == nil {
		return cmderr.ToSurface(cmderr.ErrWrongState)
	}
	return cmderr.ToSurface(o.simple.Disconnect(ctx, b))
}
