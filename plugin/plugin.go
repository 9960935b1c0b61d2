// Package plugin implements the modem-class plugin router: allow-list
// scoring per candidate port, declaration-order/sort_last tie-breaking, and
// the interface-0-first probing protocol with deferred probing of the
// remaining ports. Vendor quirk plugins (Huawei, Iridium) are data behind
// the same Plugin interface as any other, never special-cased in the
// router.
package plugin

import (
	"strings"

	"github.com/linux-mobile-broadband/ModemManager-sub009/port"
)

// AllowList is the set of (subsystem/driver/vendor/product/string/tag)
// filters a Plugin declares. A nil/empty list for any field means "don't
// filter on this field"; every non-empty list must match for the plugin to
// be a candidate at all.
type AllowList struct {
	Subsystems     []port.Subsystem
	Drivers        []string
	VendorIDs      []string // hex, as ID_VENDOR_ID appears
	ProductIDs     []string
	VendorStrings  []string
	ProductStrings []string
	UdevTags       []string
	AllowAT        bool // true if the plugin accepts AT-capable ports at all (Iridium-style)
}

func matchesList(list []string, value string) bool {
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

func matchesSubsystem(list []port.Subsystem, value port.Subsystem) bool {
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// Matches reports whether p's properties satisfy every declared filter in
// a: a plugin is a candidate iff every declared allow-list matches.
// Matches implements the two-tier rule the original plugin-base scoring
// tables (mm-plugin-huawei.c, mm-plugin-iridium.c) imply: Subsystems and
// Drivers are structural filters, every declared one of which must match.
// VendorIDs/ProductIDs/VendorStrings/ProductStrings/UdevTags are
// *identification* filters — a device identifies as belonging to a plugin
// by ANY one of them matching (Iridium declares both a vendor id and a
// vendor-string/product-string pair for re-branded Motorola units; either
// is sufficient). If none of the identification lists are declared at all,
// the plugin makes no identification claim and matches on structure alone.
func (a AllowList) Matches(p port.Port) bool {
	if !matchesSubsystem(a.Subsystems, p.Subsystem) {
		return false
	}
	if !matchesList(a.Drivers, p.Driver) {
		return false
	}

	idLists := [][]string{a.VendorIDs, a.ProductIDs, a.VendorStrings, a.ProductStrings}
	anyDeclared := len(a.UdevTags) > 0
	for _, l := range idLists {
		if len(l) > 0 {
			anyDeclared = true
		}
	}
	if !anyDeclared {
		return true
	}

	if matchesList(a.VendorIDs, p.Properties[port.PropVendorID]) && len(a.VendorIDs) > 0 {
		return true
	}
	if matchesList(a.ProductIDs, p.Properties[port.PropModelID]) && len(a.ProductIDs) > 0 {
		return true
	}
	if matchesList(a.VendorStrings, p.Properties[port.PropVendorString]) && len(a.VendorStrings) > 0 {
		return true
	}
	if matchesList(a.ProductStrings, p.Properties[port.PropModelString]) && len(a.ProductStrings) > 0 {
		return true
	}
	for _, tag := range a.UdevTags {
		if _, ok := p.Properties[tag]; ok {
			return true
		}
	}
	return false
}

// ProbeResult is what Plugin.Probe returns for a candidate port: the AT
// capability bitset a fixed +GCAP/ATI/+CPIN?/+CGMM probe observed, plus
// whatever the plugin's own custom init commands discovered.
type ProbeResult struct {
	Capabilities CapabilityBits
	QCDMPresent  bool
	// PortHints lets a plugin's custom-init-command parsing (e.g. Huawei's
	// ^GETPORTMODE) tell the router which physical USB interface should be
	// classified as which Type once grab happens.
	PortHints map[int]port.Type
}

// CapabilityBits mirrors modemdata.Capability without importing it, so this
// package stays usable by a probing layer that hasn't built a Modem yet.
type CapabilityBits int

// The capability bits a probe may observe (see modemdata.Capability).
const (
	CapGSMUMTS CapabilityBits = 1 << iota
	CapCDMAEVDO
	CapLTE
)

// Plugin is the contract every modem-class plugin implements: decide
// whether it supports a candidate port and at what level, and which Modem
// class to instantiate.
type Plugin interface {
	// Name identifies the plugin for logging and declaration-order
	// tie-breaking.
	Name() string
	// AllowList returns the filters that make a port a candidate at all.
	AllowList() AllowList
	// CustomInitCommands returns the AT lines (without \r\n) to send before
	// the router's own fixed probe sequence, or nil for none.
	CustomInitCommands() []string
	// Level scores a probed candidate 0-20; 0 means unsupported.
	Level(probe ProbeResult) int
	// SortLast marks a fallback plugin that should only win when nothing
	// else claims the port (e.g. Iridium).
	SortLast() bool
}

// entry pairs a registered Plugin with its declaration index, since ties
// break by declaration order.
type entry struct {
	plugin Plugin
	index  int
}

// Router holds the ordered plugin registry and the router's probing state.
type Router struct {
	entries    []entry
	maxDefers  int
	deferCount map[port.Key]int
}

// New returns a Router with maxDefers as the deferral bound for non-
// interface-0 ports (default 5).
func New(maxDefers int) *Router {
	if maxDefers <= 0 {
		maxDefers = 5
	}
	return &Router{maxDefers: maxDefers, deferCount: make(map[port.Key]int)}
}

// Register appends p to the registry in the order called; declaration order
// is the router's tie-breaker.
func (r *Router) Register(p Plugin) {
	r.entries = append(r.entries, entry{plugin: p, index: len(r.entries)})
}

// usbInterface reads ID_USB_INTERFACE_NUM (hex) off p's properties,
// returning -1 if absent or unparsable.
func usbInterface(p port.Port) int {
	raw, ok := p.Properties[port.PropUSBInterface]
	if !ok {
		return -1
	}
	n := 0
	for _, r := range strings.TrimPrefix(strings.ToLower(raw), "0x") {
		d := strings.IndexRune("0123456789abcdef", r)
		if d < 0 {
			return -1
		}
		n = n*16 + d
	}
	return n
}

// Decision is what Decide returns: the winning plugin, or a request to
// defer this port until interface 0 has been classified.
type Decision struct {
	Defer  bool
	Plugin Plugin
	Level  int
}

// Decide combines ShouldDefer and Match into the single call a port-probing
// driver makes per candidate port: defer first if interface 0 hasn't been
// classified yet, otherwise score and return the winner.
func (r *Router) Decide(p port.Port, haveInterfaceZero bool, probe ProbeResult) Decision {
	if r.ShouldDefer(p, haveInterfaceZero) {
		return Decision{Defer: true}
	}
	best := r.Match(p, probe)
	if best == nil {
		return Decision{}
	}
	return Decision{Plugin: best, Level: best.Level(probe)}
}

// Candidates returns every registered plugin whose allow-list matches p, in
// declaration order.
func (r *Router) Candidates(p port.Port) []Plugin {
	var out []Plugin
	for _, e := range r.entries {
		if e.plugin.AllowList().Matches(p) {
			out = append(out, e.plugin)
		}
	}
	return out
}

// ShouldDefer reports whether p's probing must wait for interface 0 of the
// same device to be classified first. haveInterfaceZero is supplied by the
// caller, which tracks per-device interface-0 completion; the router only
// owns the defer counter.
func (r *Router) ShouldDefer(p port.Port, haveInterfaceZero bool) bool {
	if haveInterfaceZero {
		delete(r.deferCount, p.Key())
		return false
	}
	usbif := usbInterface(p)
	if usbif <= 0 {
		// No USB interface number at all, or already interface 0: nothing
		// to wait for.
		return false
	}
	n := r.deferCount[p.Key()]
	if n >= r.maxDefers {
		delete(r.deferCount, p.Key())
		return false
	}
	r.deferCount[p.Key()]++
	return true
}

// Match scores every candidate plugin's probe result and returns the
// highest-Level winner; ties go to the earliest declared, non-sort_last
// plugin, and a sort_last plugin only wins when it is the only candidate
// with a nonzero level.
func (r *Router) Match(p port.Port, probe ProbeResult) Plugin {
	var best Plugin
	bestLevel := -1
	bestIndex := -1
	bestSortLast := false

	for _, e := range r.entries {
		if !e.plugin.AllowList().Matches(p) {
			continue
		}
		level := e.plugin.Level(probe)
		if level <= 0 {
			continue
		}
		sortLast := e.plugin.SortLast()

		switch {
		case best == nil:
			best, bestLevel, bestIndex, bestSortLast = e.plugin, level, e.index, sortLast
		case bestSortLast && !sortLast:
			// A non-sort_last candidate always displaces a sort_last one,
			// regardless of level.
			best, bestLevel, bestIndex, bestSortLast = e.plugin, level, e.index, sortLast
		case sortLast && !bestSortLast:
			// Current winner is already a real match; keep it.
		case level > bestLevel:
			best, bestLevel, bestIndex, bestSortLast = e.plugin, level, e.index, sortLast
		case level == bestLevel && e.index < bestIndex:
			best, bestLevel, bestIndex, bestSortLast = e.plugin, level, e.index, sortLast
		}
	}
	return best
}

// FixedProbeCommands is the router's own fixed AT probe sequence, run after
// a plugin's custom init commands.
var FixedProbeCommands = []string{"AT+GCAP", "ATI", "AT+CPIN?", "AT+CGMM"}
