package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linux-mobile-broadband/ModemManager-sub009/port"
)

func huaweiPort(usbif string) port.Port {
	return port.Port{
		Subsystem: port.SubsystemTTY,
		Name:      "ttyUSB0",
		Properties: map[string]string{
			port.PropVendorID:     "12d1",
			port.PropUSBInterface: usbif,
		},
	}
}

func TestAllowListMatchesByVendorID(t *testing.T) {
	t.Parallel()

	h := NewHuawei()
	assert.True(t, h.AllowList().Matches(huaweiPort("00")))

	other := huaweiPort("00")
	other.Properties[port.PropVendorID] = "1234"
	assert.False(t, h.AllowList().Matches(other))
}

func TestAllowListIridiumMatchesEitherVendorIDOrStrings(t *testing.T) {
	t.Parallel()

	i := NewIridium()

	byID := port.Port{Subsystem: port.SubsystemTTY, Properties: map[string]string{port.PropVendorID: "1edd"}}
	assert.True(t, i.AllowList().Matches(byID))

	byBrand := port.Port{Subsystem: port.SubsystemTTY, Properties: map[string]string{
		port.PropVendorString: "motorola",
		port.PropModelString:  "satellite",
	}}
	assert.True(t, i.AllowList().Matches(byBrand))

	unrelated := port.Port{Subsystem: port.SubsystemTTY, Properties: map[string]string{port.PropVendorID: "05c6"}}
	assert.False(t, i.AllowList().Matches(unrelated))
}

func TestMatchPicksHighestLevel(t *testing.T) {
	t.Parallel()

	r := New(5)
	r.Register(NewIridium())
	r.Register(NewHuawei())

	p := huaweiPort("00")
	winner := r.Match(p, ProbeResult{Capabilities: CapGSMUMTS})
	require.NotNil(t, winner)
	assert.Equal(t, "huawei", winner.Name())
}

func TestMatchSortLastOnlyWinsAlone(t *testing.T) {
	t.Parallel()

	r := New(5)
	r.Register(NewIridium())

	p := port.Port{Subsystem: port.SubsystemTTY, Properties: map[string]string{port.PropVendorID: "1edd"}}
	winner := r.Match(p, ProbeResult{})
	require.NotNil(t, winner)
	assert.Equal(t, "iridium", winner.Name())
}

func TestMatchNoCandidateReturnsNil(t *testing.T) {
	t.Parallel()

	r := New(5)
	r.Register(NewHuawei())

	p := port.Port{Subsystem: port.SubsystemTTY, Properties: map[string]string{port.PropVendorID: "05c6"}}
	assert.Nil(t, r.Match(p, ProbeResult{Capabilities: CapGSMUMTS}))
}

func TestShouldDeferNonInterfaceZeroUntilThresholdThenGivesUp(t *testing.T) {
	t.Parallel()

	r := New(2)
	p := huaweiPort("01")

	assert.True(t, r.ShouldDefer(p, false))
	assert.True(t, r.ShouldDefer(p, false))
	assert.False(t, r.ShouldDefer(p, false), "after maxDefers cycles the router gives up waiting")
}

func TestShouldDeferFalseOnceInterfaceZeroSeen(t *testing.T) {
	t.Parallel()

	r := New(5)
	p := huaweiPort("01")
	r.ShouldDefer(p, false)
	assert.False(t, r.ShouldDefer(p, true))
}

func TestShouldDeferFalseForInterfaceZeroItself(t *testing.T) {
	t.Parallel()

	r := New(5)
	assert.False(t, r.ShouldDefer(huaweiPort("00"), false))
}

func TestHuaweiParsePortModeAndClassify(t *testing.T) {
	t.Parallel()

	h := NewHuawei()
	h.ParsePortMode([]string{"^GETPORTMODE: PCUI:1,MDM:0,NDIS:2,DIAG:3"})

	assert.Equal(t, port.TypeData, h.ClassifyInterface(0, CapGSMUMTS))
	assert.Equal(t, port.TypePrimary, h.ClassifyInterface(1, CapGSMUMTS))
	assert.Equal(t, port.TypeQCDM, h.ClassifyInterface(3, CapGSMUMTS))
	assert.Equal(t, port.TypeSecondary, h.ClassifyInterface(9, CapGSMUMTS))
}

func TestHuaweiClassifyFallsBackWithoutGetPortMode(t *testing.T) {
	t.Parallel()

	h := NewHuawei()
	assert.Equal(t, port.TypeData, h.ClassifyInterface(0, CapGSMUMTS))
	assert.Equal(t, port.TypePrimary, h.ClassifyInterface(0, CapCDMAEVDO))
}

func TestDecideDefersNonInterfaceZeroBeforeScoring(t *testing.T) {
	t.Parallel()

	r := New(5)
	r.Register(NewHuawei())

	d := r.Decide(huaweiPort("01"), false, ProbeResult{Capabilities: CapGSMUMTS})
	assert.True(t, d.Defer)
	assert.Nil(t, d.Plugin)
}

func TestDecideReturnsWinnerOnceInterfaceZeroKnown(t *testing.T) {
	t.Parallel()

	r := New(5)
	r.Register(NewHuawei())

	d := r.Decide(huaweiPort("01"), true, ProbeResult{Capabilities: CapGSMUMTS})
	assert.False(t, d.Defer)
	require.NotNil(t, d.Plugin)
	assert.Equal(t, "huawei", d.Plugin.Name())
	assert.Equal(t, 10, d.Level)
}
