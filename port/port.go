// Package port implements the Port data model and the port-discovery event
// types consumed from the external kernel-device enumeration source.
package port

// Subsystem classifies the kernel mechanism a port is reached through.
type Subsystem string

// Recognized port subsystems.
const (
	SubsystemTTY     Subsystem = "tty"
	SubsystemNet     Subsystem = "net"
	SubsystemWDM     Subsystem = "wdm"
	SubsystemUsbmisc Subsystem = "usbmisc"
)

// Type is the role a port plays within a modem, assigned during port setup.
type Type int

// Recognized port types.
const (
	TypeUnknown Type = iota
	TypePrimary
	TypeSecondary
	TypeData
	TypeQCDM
	TypeGPS
	TypeAudio
	TypeIgnored
)

func (t Type) String() string {
	switch t {
	case TypePrimary:
		return "primary"
	case TypeSecondary:
		return "secondary"
	case TypeData:
		return "data"
	case TypeQCDM:
		return "qcdm"
	case TypeGPS:
		return "gps"
	case TypeAudio:
		return "audio"
	case TypeIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Flag is a bit in a Port's flags bitset.
type Flag int

// Recognized port flags.
const (
	FlagPPP Flag = 1 << iota
	FlagSecondaryAT
	FlagGPSControl
)

// Port identifies a single kernel-exposed device file belonging to a modem.
// It is addressed by (subsystem, name); at most one Primary AT port exists
// on a modem at any time.
type Port struct {
	Subsystem  Subsystem
	Name       string
	DevicePath string
	Driver     string
	ParentPath string
	Type       Type
	Flags      Flag

	// Properties mirrors the udev-like property map the discovery event
	// carried when this Port appeared.
	Properties map[string]string
}

// HasFlag reports whether f is set on the port.
func (p Port) HasFlag(f Flag) bool {
	return p.Flags&f != 0
}

// Key returns the (subsystem, name) identity used to address a Port.
func (p Port) Key() Key {
	return Key{Subsystem: p.Subsystem, Name: p.Name}
}

// Key is the address of a Port: (subsystem, name).
type Key struct {
	Subsystem Subsystem
	Name      string
}

// AppearedEvent is the PortAppeared discovery event.
type AppearedEvent struct {
	Subsystem  Subsystem
	Name       string
	Driver     string
	ParentPath string
	Properties map[string]string
}

// RemovedEvent is the PortRemoved discovery event.
type RemovedEvent struct {
	Subsystem Subsystem
	Name      string
}

// Well-known property keys the Plugin Router and port classifier consume,
// plus any vendor-specific tag keys (ID_MM_*).
const (
	PropVendorID      = "ID_VENDOR_ID"
	PropModelID       = "ID_MODEL_ID"
	PropUSBInterface  = "ID_USB_INTERFACE_NUM"
	PropVendorString  = "ID_VENDOR_ENC"
	PropModelString   = "ID_MODEL_ENC"
)

// VendorTag reports whether key is one of the ID_MM_* vendor tags the
// Plugin Router's allow-lists can match against.
func VendorTag(key string) bool {
	return len(key) > 5 && key[:5] == "ID_MM"
}
