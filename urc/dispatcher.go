// Package urc implements the per-port URC Dispatcher: an ordered list of
// (pattern, handler) registrations tried in registration order against
// every frame the Command Queue declines, first match wins.
package urc

import (
	"regexp"
	"sync"
)

// Handler receives a matched frame plus the regexp submatches (index 0 is
// the whole match, per regexp.FindStringSubmatch). It runs synchronously,
// with the frame still owned by the dispatcher.
type Handler func(frame string, groups []string)

// RegistrationId identifies one (pattern, handler) registration so a caller
// can unregister it later without holding onto anything but the id.
type RegistrationId int

type registration struct {
	id      RegistrationId
	pattern *regexp.Regexp
	handler Handler
}

// Dispatcher owns one port's URC registration list. All methods are safe
// for concurrent use; it is intended to be called from a single port's
// reader goroutine, but registration/unregistration may come from any
// capability interface.
type Dispatcher struct {
	mu     sync.Mutex
	nextID RegistrationId
	regs   []*registration
}

// New returns an empty Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{}
}

// Register adds a handler tried, in registration order, against every
// frame Dispatch sees. Re-registering under the same pattern text does not
// overwrite a prior registration — each call gets its own RegistrationId
// and its own position at the end of the list; callers that want
// replace-semantics should Unregister the old id first.
func (d *Dispatcher) Register(pattern string, handler Handler) (RegistrationId, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.regs = append(d.regs, &registration{id: id, pattern: re, handler: handler})
	return id, nil
}

// Unregister removes a registration by id. It is a no-op if id is unknown
// (already unregistered, or from a different Dispatcher).
func (d *Dispatcher) Unregister(id RegistrationId) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, r := range d.regs {
		if r.id == id {
			d.regs = append(d.regs[:i], d.regs[i+1:]...)
			return
		}
	}
}

// Dispatch tries frame against every registered pattern in registration
// order and invokes the first match. It reports whether any handler fired;
// an unmatched frame is the caller's to log and drop.
func (d *Dispatcher) Dispatch(frame string) bool {
	d.mu.Lock()
	regs := make([]*registration, len(d.regs))
	copy(regs, d.regs)
	d.mu.Unlock()

	for _, r := range regs {
		if groups := r.pattern.FindStringSubmatch(frame); groups != nil {
			r.handler(frame, groups)
			return true
		}
	}
	return false
}
