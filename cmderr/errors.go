// Package cmderr collects the error taxonomy shared by the transport, the
// command queue and the capability interfaces. Every error a remote
// operation can surface reduces to one of the kinds below, per the
// {kind, message, underlying_code} contract.
package cmderr

import (
	"errors"
	"fmt"
)

// Kind identifies a broad error category that higher layers branch on.
// Component-specific detail (a CME code, a parse position) travels in the
// concrete error value, not in Kind.
type Kind string

// The error kinds a remote operation may resolve with.
const (
	Io             Kind = "io"
	Timeout        Kind = "timeout"
	ParseError     Kind = "parse_error"
	Cme            Kind = "cme_error"
	Cms            Kind = "cms_error"
	NotSupported   Kind = "not_supported"
	Connected      Kind = "connected"
	WrongState     Kind = "wrong_state"
	Unauthorized   Kind = "unauthorized"
	Cancelled      Kind = "cancelled"
	Retry          Kind = "retry"
	ConnectFailed  Kind = "connection_failed"
	Generic        Kind = "generic"
)

// Sentinel errors for kinds that carry no extra data.
var (
	ErrTimeout      = errors.New("at: command timed out")
	ErrPortClosed   = errors.New("at: port is closed")
	ErrCancelled    = errors.New("at: operation was cancelled")
	ErrNotSupported = errors.New("at: command not supported by modem")
	ErrConnected    = errors.New("at: primary port busy with a data call")
	ErrWrongState   = errors.New("modem: operation forbidden in current state")
	ErrUnauthorized = errors.New("modem: unauthorized (locked SIM or policy)")
	ErrRetry        = errors.New("modem: resource busy, retry later")
	ErrGeneric      = errors.New("at: ERROR")
)

// CmeError is a mobile-equipment error reported by the modem, e.g.
// "+CME ERROR: 10" (SIM not inserted).
type CmeError struct {
	Code int
}

func (e CmeError) Error() string { return fmt.Sprintf("+CME ERROR: %d", e.Code) }

// Unsupported reports whether this CME code (4, 32 or 100) means "operation
// not supported", the codes response-processors collapse to Continue rather
// than surfacing as a hard failure.
func (e CmeError) Unsupported() bool {
	switch e.Code {
	case 4, 32, 100:
		return true
	default:
		return false
	}
}

// CmsError is a message-service error reported by the modem, e.g.
// "+CMS ERROR: 500".
type CmsError struct {
	Code int
}

func (e CmsError) Error() string { return fmt.Sprintf("+CMS ERROR: %d", e.Code) }

// ConnectionFailedError wraps a dial-failure final result (NO CARRIER,
// NO ANSWER, NO DIALTONE, BUSY) with its literal token for diagnostics.
type ConnectionFailedError struct {
	Reason string
}

func (e ConnectionFailedError) Error() string { return "at: connection failed: " + e.Reason }

// ProcessorError is returned by a response-processor that detected a
// malformed or semantically invalid response body.
type ProcessorError struct {
	Kind    string
	Message string
}

func (e ProcessorError) Error() string { return "at: " + e.Kind + ": " + e.Message }

// KindOf classifies err into the Kind a remote caller should see. Unknown
// error values classify as Generic.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var cme CmeError
	var cms CmsError
	var connFailed ConnectionFailedError
	var proc ProcessorError
	switch {
	case errors.As(err, &cme):
		return Cme
	case errors.As(err, &cms):
		return Cms
	case errors.As(err, &connFailed):
		return ConnectFailed
	case errors.As(err, &proc):
		return Generic
	case errors.Is(err, ErrTimeout):
		return Timeout
	case errors.Is(err, ErrPortClosed):
		return Io
	case errors.Is(err, ErrCancelled):
		return Cancelled
	case errors.Is(err, ErrNotSupported):
		return NotSupported
	case errors.Is(err, ErrConnected):
		return Connected
	case errors.Is(err, ErrWrongState):
		return WrongState
	case errors.Is(err, ErrUnauthorized):
		return Unauthorized
	case errors.Is(err, ErrRetry):
		return Retry
	default:
		return Generic
	}
}

// Surface is the single {kind, message, underlying_code} triple a remote
// operation resolves with.
type Surface struct {
	Kind     Kind   `json:"kind"`
	Message  string `json:"message"`
	Code     int    `json:"underlying_code,omitempty"`
	HasCode  bool   `json:"-"`
}

// ToSurface flattens err into the user-visible triple, discarding any
// internal chain (which stays in the log trail, not in the surface).
func ToSurface(err error) *Surface {
	if err == nil {
		return nil
	}
	s := &Surface{Kind: KindOf(err), Message: err.Error()}
	var cme CmeError
	var cms CmsError
	if errors.As(err, &cme) {
		s.Code, s.HasCode = cme.Code, true
	} else if errors.As(err, &cms) {
		s.Code, s.HasCode = cms.Code, true
	}
	return s
}
