// Package modemdata holds the Modem/SIM/Bearer/RegistrationState/Sms data
// model. It is pure state: no I/O, no transport, no AT/QCDM knowledge —
// capability and orchestrator packages mutate it. The Modem's State field
// is written by the Orchestrator and also by the capability package's
// Modem (Locked from its unlock probe, Enabled/Disabled from its own
// Enable/Disable, Disabled after SendPIN/SendPUK).
package modemdata

// State is the Modem lifecycle state. The declaration order below is
// documentation only; State does not support numeric comparison between
// arbitrary pairs ("Locked" is not "less than" "Disabled").
type State int

// The Modem lifecycle states.
const (
	StateUnknown State = iota
	StateFailed
	StateInitializing
	StateLocked
	StateDisabled
	StateDisabling
	StateEnabling
	StateEnabled
	StateSearching
	StateRegistered
	StateConnecting
	StateDisconnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateFailed:
		return "failed"
	case StateInitializing:
		return "initializing"
	case StateLocked:
		return "locked"
	case StateDisabled:
		return "disabled"
	case StateDisabling:
		return "disabling"
	case StateEnabling:
		return "enabling"
	case StateEnabled:
		return "enabled"
	case StateSearching:
		return "searching"
	case StateRegistered:
		return "registered"
	case StateConnecting:
		return "connecting"
	case StateDisconnecting:
		return "disconnecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Capability is a bit in a Modem's capability bitset.
type Capability int

// The capability bits a Modem may report.
const (
	CapabilityGSMUMTS Capability = 1 << iota
	CapabilityCDMAEVDO
	CapabilityLTE
	CapabilityIridium
)

// RegistrationState is a per-domain registration value.
type RegistrationState int

// The registration states a domain may be in.
const (
	RegUnknown RegistrationState = iota
	RegIdle
	RegSearching
	RegDenied
	RegRegisteredHome
	RegRegisteredRoaming
)

// Registered reports whether s counts toward the Modem's aggregate
// registration state: registered iff any domain is Registered-Home or
// Registered-Roaming.
func (s RegistrationState) Registered() bool {
	return s == RegRegisteredHome || s == RegRegisteredRoaming
}

// RegistrationDomain names one of the three registration domains tracked
// independently.
type RegistrationDomain int

// The three registration domains.
const (
	DomainCS RegistrationDomain = iota
	DomainPS
	DomainEPS
)

// AggregateRegistration combines the three per-domain registration states
// into the Modem's overall registration state.
func AggregateRegistration(cs, ps, eps RegistrationState) RegistrationState {
	for _, s := range []RegistrationState{eps, ps, cs} {
		if s.Registered() {
			return s
		}
	}
	return cs
}
