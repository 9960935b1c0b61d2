package plugin

import (
	"strconv"
	"strings"

	"github.com/linux-mobile-broadband/ModemManager-sub009/port"
)

// Huawei is the Huawei vendor plugin, grounded on mm-plugin-huawei.c: vendor
// ID 0x12d1, AT^CURC=0 to quiet unsolicited messages on secondary ports
// before the fixed probe, AT^GETPORTMODE to recover the PCUI/MDM/NDIS/DIAG
// port layout. A GSM, CDMA, or QCDM probe result all score equally (10 in
// the original; this router's 0-20 scale keeps the same relative weight).
type Huawei struct {
	// PortModeReply holds the tag-to-interface-number map ParsePortMode
	// extracted from the ^GETPORTMODE reply; nil until it has been called.
	PortModeReply map[string]int
}

// NewHuawei returns an unconfigured Huawei plugin.
func NewHuawei() *Huawei { return &Huawei{} }

func (h *Huawei) Name() string { return "huawei" }

func (h *Huawei) AllowList() AllowList {
	return AllowList{
		Subsystems: []port.Subsystem{port.SubsystemTTY, port.SubsystemWDM},
		VendorIDs:  []string{"12d1"},
	}
}

func (h *Huawei) CustomInitCommands() []string {
	return []string{"AT^CURC=0", "AT^GETPORTMODE"}
}

// Level mirrors get_level_for_capabilities: any of GSM/CDMA/QCDM scores 10.
func (h *Huawei) Level(probe ProbeResult) int {
	if probe.Capabilities&(CapGSMUMTS|CapCDMAEVDO|CapLTE) != 0 || probe.QCDMPresent {
		return 10
	}
	return 0
}

func (h *Huawei) SortLast() bool { return false }

// ParsePortMode extracts the PCUI:/MDM:/NDIS:/DIAG: interface numbers from
// an AT^GETPORTMODE reply, informing port-flag assignment (grounded on
// cache_port_mode in mm-plugin-huawei.c). A device with no working
// AT^GETPORTMODE (pre-2010 firmware) returns an empty map, and
// ClassifyInterface then falls back on the interface number alone.
func (h *Huawei) ParsePortMode(lines []string) map[string]int {
	out := make(map[string]int)
	for _, line := range lines {
		for _, tag := range []string{"PCUI:", "MDM:", "NDIS:", "DIAG:"} {
			idx := strings.Index(line, tag)
			if idx < 0 {
				continue
			}
			rest := strings.TrimSpace(line[idx+len(tag):])
			end := strings.IndexAny(rest, ", \t")
			if end >= 0 {
				rest = rest[:end]
			}
			if n, err := strconv.Atoi(rest); err == nil {
				out[strings.TrimSuffix(tag, ":")] = n
			}
		}
	}
	h.PortModeReply = out
	return out
}

// ClassifyInterface assigns a Type to usbInterface given a (possibly empty)
// port-mode map and the probed capabilities, replicating grab_port's
// fallback chain: PCUI -> Primary, MDM -> Data, NDIS -> Data when no MDM
// port is listed, DIAG -> QCDM; else (no GETPORTMODE) usbif 0 is Data, or
// Primary for a CDMA modem; every other port is Secondary.
func (h *Huawei) ClassifyInterface(usbInterface int, caps CapabilityBits) port.Type {
	if n, ok := h.PortModeReply["PCUI"]; ok && n == usbInterface {
		return port.TypePrimary
	}
	if n, ok := h.PortModeReply["MDM"]; ok && n == usbInterface {
		return port.TypeData
	}
	if n, ok := h.PortModeReply["NDIS"]; ok && n == usbInterface && h.PortModeReply["MDM"] == 0 {
		return port.TypeData
	}
	if n, ok := h.PortModeReply["DIAG"]; ok && n == usbInterface {
		return port.TypeQCDM
	}
	if len(h.PortModeReply) == 0 && usbInterface == 0 {
		if caps&CapCDMAEVDO != 0 {
			return port.TypePrimary
		}
		return port.TypeData
	}
	return port.TypeSecondary
}
