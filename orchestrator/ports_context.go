// Package orchestrator drives the per-Modem init/enable/disable pipelines,
// in a fixed step order, and owns the PortsContext reference-counted port
// sets used across the enabling and disabling lifecycles.
package orchestrator

import (
	"sync"

	"github.com/linux-mobile-broadband/ModemManager-sub009/port"
	"github.com/linux-mobile-broadband/ModemManager-sub009/transport"
)

// PortsContext is a reference-counted handle on a set of open ports.
// Initialization and enabling each hold their own PortsContext, so a
// shutdown racing with another lifecycle never closes a port still in use.
type PortsContext struct {
	mu    sync.Mutex
	refs  int
	ports map[port.Key]*transport.Handle
}

// NewPortsContext returns an empty, one-referenced context.
func NewPortsContext() *PortsContext {
	return &PortsContext{refs: 1, ports: make(map[port.Key]*transport.Handle)}
}

// Add registers an already-open handle under key.
func (c *PortsContext) Add(key port.Key, h *transport.Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ports[key] = h
}

// Get returns the handle for key, or nil.
func (c *PortsContext) Get(key port.Key) *transport.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ports[key]
}

// Ref increments the reference count and returns c for chaining.
func (c *PortsContext) Ref() *PortsContext {
	c.mu.Lock()
	c.refs++
	c.mu.Unlock()
	return c
}

// Unref decrements the reference count; at zero, every held port is
// closed. Safe to call more than once past zero (a no-op after the first
// trip to zero).
func (c *PortsContext) Unref() {
	c.mu.Lock()
	c.refs--
	refs := c.refs
	var toClose []*transport.Handle
	if refs <= 0 {
		for _, h := range c.ports {
			toClose = append(toClose, h)
		}
		c.ports = make(map[port.Key]*transport.Handle)
	}
	c.mu.Unlock()
	for _, h := range toClose {
		h.Close()
	}
}
