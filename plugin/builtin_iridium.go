package plugin

import "github.com/linux-mobile-broadband/ModemManager-sub009/port"

// Iridium is the satellite-modem fallback plugin, grounded on
// mm-plugin-iridium.c: vendor id 0x1edd, vendor string "iridium", or
// product string "satellite" (matched on its own, whatever the vendor
// string), and
// sort_last so it only wins a tie when no other plugin claims the port
// (mm-plugin-iridium.c's MM_PLUGIN_BASE_SORT_LAST).
type Iridium struct{}

// NewIridium returns the Iridium plugin.
func NewIridium() *Iridium { return &Iridium{} }

func (i *Iridium) Name() string { return "iridium" }

func (i *Iridium) AllowList() AllowList {
	return AllowList{
		Subsystems:     []port.Subsystem{port.SubsystemTTY},
		VendorIDs:      []string{"1edd"},
		VendorStrings:  []string{"iridium"},
		ProductStrings: []string{"satellite"},
		AllowAT:        true,
	}
}

func (i *Iridium) CustomInitCommands() []string { return nil }

// Level accepts any AT-capable port; the original plugin has no capability
// probe beyond "is this an AT port at all", so a GSM/CDMA probe result or
// an empty one both score the same low weight.
func (i *Iridium) Level(probe ProbeResult) int {
	return 5
}

func (i *Iridium) SortLast() bool { return true }
