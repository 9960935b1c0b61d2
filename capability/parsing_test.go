package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linux-mobile-broadband/ModemManager-sub009/modemdata"
)

func TestParseCSQ(t *testing.T) {
	t.Parallel()

	q, ok := parseCSQ("+CSQ: 20,99")
	assert.True(t, ok)
	assert.Equal(t, 20*100/31, q)

	_, ok = parseCSQ("+CSQ: 99,99")
	assert.False(t, ok, "99 means unknown")
}

func TestParseCindDescriptors(t *testing.T) {
	t.Parallel()

	descs := parseCindDescriptors(`+CIND: ("battchg",(0-5)),("signal",(0-5)),("service",(0-1))`)
	if assert.Len(t, descs, 3) {
		assert.Equal(t, cindIndicator{name: "battchg", min: 0, max: 5}, descs[0])
		assert.Equal(t, cindIndicator{name: "signal", min: 0, max: 5}, descs[1])
		assert.Equal(t, cindIndicator{name: "service", min: 0, max: 1}, descs[2])
	}
}

func TestParseCindDescriptorsMissingSignal(t *testing.T) {
	t.Parallel()

	descs := parseCindDescriptors(`+CIND: ("battchg",(0-5)),("service",(0-1))`)
	for _, d := range descs {
		assert.NotEqual(t, "signal", d.name)
	}
}

func TestRegStateFromStat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, modemdata.RegRegisteredHome, regStateFromStat(1))
	assert.Equal(t, modemdata.RegRegisteredRoaming, regStateFromStat(5))
	assert.Equal(t, modemdata.RegDenied, regStateFromStat(3))
	assert.Equal(t, modemdata.RegUnknown, regStateFromStat(9))
}

func TestSplitQuoted(t *testing.T) {
	t.Parallel()

	got := splitQuoted(` 2,"Vodafone","VF","23415",7`)
	assert.Equal(t, []string{"2", "Vodafone", "VF", "23415", "7"}, got)
}

func TestParseCopsScanLine(t *testing.T) {
	t.Parallel()

	ops := parseCopsScanLine(`+COPS: (2,"Vodafone","VF","23415",7),(1,"O2","O2","23410",2)`)
	if assert.Len(t, ops, 2) {
		assert.Equal(t, "current", ops[0].Status)
		assert.Equal(t, "Vodafone", ops[0].LongName)
		assert.Equal(t, "23415", ops[0].OperatorID)
		assert.Equal(t, "7", ops[0].AccessTech)
		assert.Equal(t, "available", ops[1].Status)
	}
}

func TestDecodePDUToPart(t *testing.T) {
	t.Parallel()

	// The inbound-SMS example PDU from the "read an inbound SMS" scenario:
	// number +31624000000, GSM7 text "hello".
	hexPDU := "07911326040000F0040B911326080000F000000121013212110008AAE8329BFD4697D9EC37"
	part := decodePDUToPart(hexPDU, modemdata.StorageSM, 3, modemdata.SmsStateReceived)
	if assert.NotNil(t, part) {
		assert.Equal(t, modemdata.StorageSM, part.Storage)
		assert.Equal(t, 3, part.Index)
		assert.Equal(t, modemdata.PDUTypeDeliver, part.Type)
		assert.Equal(t, "hello", part.Text)
	}
}

func TestDecodePDUToPartRejectsGarbage(t *testing.T) {
	t.Parallel()

	assert.Nil(t, decodePDUToPart("not hex", modemdata.StorageSM, 0, modemdata.SmsStateUnknown))
}

func TestSmsStateFromCMGLStat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, modemdata.SmsStateReceived, smsStateFromCMGLStat(`+CMGL: 1,"REC UNREAD","+15551234",,"24/01/01,00:00:00+00"`))
	assert.Equal(t, modemdata.SmsStateUnknown, smsStateFromCMGLStat(`+CMGL: 1,"???","+15551234"`))
}
