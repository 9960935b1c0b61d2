package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linux-mobile-broadband/ModemManager-sub009/atqueue"
	"github.com/linux-mobile-broadband/ModemManager-sub009/capability"
	"github.com/linux-mobile-broadband/ModemManager-sub009/modemdata"
	"github.com/linux-mobile-broadband/ModemManager-sub009/port"
	"github.com/linux-mobile-broadband/ModemManager-sub009/urc"
)

// autoOKWriter answers every write with an immediate "OK" frame, simulating
// a cooperative modem so the pipeline runs without real transport I/O.
// AT+CPIN? gets a dedicated reply line so probeUnlockState's READY/locked
// branch can be driven by the cpinLocked flag.
type autoOKWriter struct {
	mu         sync.Mutex
	queue      *atqueue.Queue
	count      int
	cpinLocked bool
}

func (w *autoOKWriter) Write(p []byte) error {
	w.mu.Lock()
	w.count++
	locked := w.cpinLocked
	w.mu.Unlock()

	line := string(p)
	if contains(line, "+CPIN?") {
		reply := "+CPIN: READY"
		if locked {
			reply = "+CPIN: SIM PIN"
		}
		go func() {
			w.queue.DeliverFrame(reply)
			w.queue.DeliverFrame("OK")
		}()
		return nil
	}
	go w.queue.DeliverFrame("OK")
	return nil
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func newSession(t *testing.T, cpinLocked bool) (*capability.Session, *autoOKWriter) {
	t.Helper()
	w := &autoOKWriter{cpinLocked: cpinLocked}
	q := atqueue.New(w, 3, nil)
	w.queue = q
	sess := &capability.Session{
		Modem: modemdata.NewModem("/dev/fake0"),
		Queue: q,
		URCs:  urc.New(),
	}
	return sess, w
}

func TestInitializeRunsStepsInOrderAndPublishesDisabled(t *testing.T) {
	t.Parallel()

	sess, _ := newSession(t, false)
	modemCap := capability.NewModem(sess)
	threeGpp := capability.NewThreeGpp(sess)
	ussd := capability.NewThreeGppUSSD(sess)
	location := capability.NewLocation(sess, threeGpp)
	messaging := capability.NewMessaging(sess)
	timeCap := capability.NewTime(sess)
	firmware := capability.NewFirmware(sess)
	simple := capability.NewSimple(sess, modemCap, threeGpp)

	var startedCalls int
	o := New(sess.Modem, Capabilities{
		Modem:     modemCap,
		ThreeGpp:  threeGpp,
		USSD:      ussd,
		Location:  location,
		Messaging: messaging,
		Time:      timeCap,
		Firmware:  firmware,
		Simple:    simple,
	}, Hooks{
		Started: func(m *modemdata.Modem) { startedCalls++ },
	})

	pc := NewPortsContext()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := o.Initialize(ctx, pc)
	require.NoError(t, err)
	assert.Equal(t, 1, startedCalls)
	assert.Equal(t, modemdata.StateDisabled, sess.Modem.State)
}

func TestInitializeLockedSkipsToFirmwareOnly(t *testing.T) {
	t.Parallel()

	// cpinLocked makes the fake modem answer AT+CPIN? with "SIM PIN" (no
	// "READY"), so Modem.Initialize's own +CPIN? probe marks the SIM locked
	// and moves State to Locked, exactly as a real locked modem would.
	sess, _ := newSession(t, true)
	modemCap := capability.NewModem(sess)
	threeGpp := capability.NewThreeGpp(sess)
	firmware := capability.NewFirmware(sess)

	o := New(sess.Modem, Capabilities{Modem: modemCap, ThreeGpp: threeGpp, Firmware: firmware}, Hooks{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := o.Initialize(ctx, NewPortsContext())
	require.NoError(t, err)
	assert.Equal(t, modemdata.StateLocked, sess.Modem.State)
	assert.NotEmpty(t, firmware.Slots, "Firmware.Initialize should still run when Locked")
}

func TestEnableThenDisablePipeline(t *testing.T) {
	t.Parallel()

	sess, _ := newSession(t, false)
	modemCap := capability.NewModem(sess)
	threeGpp := capability.NewThreeGpp(sess)

	var enablingStarted, disablingStopped bool
	o := New(sess.Modem, Capabilities{Modem: modemCap, ThreeGpp: threeGpp}, Hooks{
		EnablingStarted:  func(m *modemdata.Modem) { enablingStarted = true },
		DisablingStopped: func(m *modemdata.Modem) { disablingStopped = true },
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pc := NewPortsContext()
	require.NoError(t, o.Enable(ctx, pc))
	assert.True(t, enablingStarted)
	assert.Equal(t, modemdata.StateEnabled, sess.Modem.State)

	require.NoError(t, o.Disable(ctx))
	assert.True(t, disablingStopped)
	assert.Equal(t, modemdata.StateDisabled, sess.Modem.State)
}

func TestDisableDisconnectsBearersFirst(t *testing.T) {
	t.Parallel()

	sess, _ := newSession(t, false)
	modemCap := capability.NewModem(sess)
	b := &modemdata.Bearer{APN: "internet", Status: modemdata.BearerConnected}
	sess.Modem.Bearers.Add(b)

	o := New(sess.Modem, Capabilities{Modem: modemCap}, Hooks{})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, o.Disable(ctx))
	assert.Equal(t, modemdata.BearerDisconnected, b.Status)
}

func TestPortsContextRefCounting(t *testing.T) {
	t.Parallel()

	pc := NewPortsContext()
	key := port.Key{Subsystem: port.SubsystemTTY, Name: "ttyUSB0"}

	pc.Ref() // refs: 2
	pc.Unref()
	// One Ref balanced by one Unref must not clear the set yet.
	assert.Equal(t, 1, pc.refs)

	pc.Unref() // refs: 0, the set is cleared
	assert.Equal(t, 0, pc.refs)
	assert.Nil(t, pc.Get(key))
}
