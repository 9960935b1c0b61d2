package modemdata

import (
	"sync"

	"github.com/linux-mobile-broadband/ModemManager-sub009/pdu"
	"github.com/linux-mobile-broadband/ModemManager-sub009/port"
)

// SIM holds the identifiers and lock state loaded once a SIM has been
// unlocked. It is created after successful unlock probing and destroyed
// with its Modem.
type SIM struct {
	ICCID        string
	IMSI         string
	OperatorID   string // MCC+MNC
	OperatorName string
	PINLocked    bool
}

// Bearer is a PDP context and its connection state.
type Bearer struct {
	APN          string
	IPType       string
	User         string
	Password     string
	AllowRoaming bool
	Status       BearerStatus
	CID          int

	// PrimaryPort and DataPort are held exclusively while Connected or
	// Connecting.
	PrimaryPort port.Key
	DataPort    port.Key
}

// BearerStatus is a Bearer's connection status.
type BearerStatus int

// The bearer lifecycle states: Connecting/Connected/Disconnecting plus the
// resting Disconnected state.
const (
	BearerDisconnected BearerStatus = iota
	BearerConnecting
	BearerConnected
	BearerDisconnecting
)

// BearerList owns CID allocation for a Modem: at any moment, each CID is
// owned by at most one Bearer.
type BearerList struct {
	mu      sync.Mutex
	bearers map[int]*Bearer
}

// NewBearerList returns an empty list.
func NewBearerList() *BearerList {
	return &BearerList{bearers: make(map[int]*Bearer)}
}

// ErrNoFreeCID is returned by Add when every CID in 1..255 is taken.
var ErrNoFreeCID = errNoFreeCID{}

type errNoFreeCID struct{}

func (errNoFreeCID) Error() string { return "modemdata: no free CID (1..255 exhausted)" }

// Add allocates the lowest free CID (1..255) to b and inserts it.
func (l *BearerList) Add(b *Bearer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for cid := 1; cid <= 255; cid++ {
		if _, taken := l.bearers[cid]; !taken {
			b.CID = cid
			l.bearers[cid] = b
			return nil
		}
	}
	return ErrNoFreeCID
}

// Remove releases b's CID.
func (l *BearerList) Remove(cid int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.bearers, cid)
}

// Get returns the Bearer for cid, or nil.
func (l *BearerList) Get(cid int) *Bearer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bearers[cid]
}

// All returns a snapshot of the bearer list.
func (l *BearerList) All() []*Bearer {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Bearer, 0, len(l.bearers))
	for _, b := range l.bearers {
		out = append(out, b)
	}
	return out
}

// Modem is the top-level per-device object, identified by a stable
// device-path string. Its State is written by the Orchestrator and by the
// capability package's Modem (see the package doc).
type Modem struct {
	DevicePath string

	Ports        map[port.Key]*port.Port
	SIM          *SIM
	Bearers      *BearerList
	State        State
	Capabilities Capability
	Charset      pdu.Charset

	VendorID  string
	ProductID string
	Drivers   []string

	RegCS  RegistrationState
	RegPS  RegistrationState
	RegEPS RegistrationState

	// ConsecutivePortGones counts failures on the primary port toward the
	// threshold that moves the modem to Failed.
	ConsecutivePortGones int

	Messages *SmsList
}

// NewModem constructs a Modem in StateUnknown with empty collections.
func NewModem(devicePath string) *Modem {
	return &Modem{
		DevicePath: devicePath,
		Ports:      make(map[port.Key]*port.Port),
		Bearers:    NewBearerList(),
		Messages:   NewSmsList(),
	}
}

// Registered returns the Modem's aggregate registration state.
func (m *Modem) Registered() bool {
	return AggregateRegistration(m.RegCS, m.RegPS, m.RegEPS).Registered()
}

// PrimaryPort returns the modem's Primary AT port, or nil. At any time at
// most one Primary AT port exists on a modem.
func (m *Modem) PrimaryPort() *port.Port {
	for _, p := range m.Ports {
		if p.Type == port.TypePrimary {
			return p
		}
	}
	return nil
}

// QCDMPort returns the modem's QCDM diagnostic port, or nil.
func (m *Modem) QCDMPort() *port.Port {
	for _, p := range m.Ports {
		if p.Type == port.TypeQCDM {
			return p
		}
	}
	return nil
}
