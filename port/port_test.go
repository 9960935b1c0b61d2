package port

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortFlags(t *testing.T) {
	t.Parallel()

	p := Port{Flags: FlagPPP | FlagGPSControl}
	assert.True(t, p.HasFlag(FlagPPP))
	assert.True(t, p.HasFlag(FlagGPSControl))
	assert.False(t, p.HasFlag(FlagSecondaryAT))
}

func TestPortKey(t *testing.T) {
	t.Parallel()

	p := Port{Subsystem: SubsystemTTY, Name: "ttyUSB0"}
	assert.Equal(t, Key{Subsystem: SubsystemTTY, Name: "ttyUSB0"}, p.Key())
}

func TestTypeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "primary", TypePrimary.String())
	assert.Equal(t, "unknown", Type(99).String())
}

func TestVendorTag(t *testing.T) {
	t.Parallel()

	assert.True(t, VendorTag("ID_MM_PORT_IGNORE"))
	assert.False(t, VendorTag("ID_VENDOR_ID"))
}
