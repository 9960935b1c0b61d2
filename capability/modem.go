package capability

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/linux-mobile-broadband/ModemManager-sub009/atqueue"
	"github.com/linux-mobile-broadband/ModemManager-sub009/cmderr"
	"github.com/linux-mobile-broadband/ModemManager-sub009/modemdata"
	"github.com/linux-mobile-broadband/ModemManager-sub009/pdu"
	"github.com/linux-mobile-broadband/ModemManager-sub009/qcdm"
)

// Modem is the base capability interface.
type Modem struct {
	*Session

	Manufacturer string
	Model        string
	Revision     string
	EquipmentID  string // IMEI or ESN
	OwnNumbers   []string
}

// NewModem returns a Modem capability bound to s.
func NewModem(s *Session) *Modem { return &Modem{Session: s} }

// Initialize probes identity and capability, in order. A CDMA-only modem
// (no SIM-backed charset negotiation) skips the
// SIM/charset/unlock steps: those probes run only when the capability
// probe reports GSM-UMTS or LTE, and NotSupported from either is tolerated.
func (m *Modem) Initialize(ctx context.Context) error {
	if err := m.probeCapabilities(ctx); err != nil {
		return err
	}
	if err := m.probeIdentity(ctx); err != nil {
		return err
	}
	if m.Modem.Capabilities&modemdata.CapabilityGSMUMTS != 0 || m.Modem.Capabilities&modemdata.CapabilityLTE != 0 {
		if err := m.probeUnlockState(ctx); err != nil && cmderr.KindOf(err) != cmderr.NotSupported {
			return err
		}
		if err := m.probeCharsets(ctx); err != nil && cmderr.KindOf(err) != cmderr.NotSupported {
			return err
		}
	}
	return m.probeOwnNumbers(ctx)
}

func (m *Modem) probeCapabilities(ctx context.Context) error {
	res := m.Queue.Enqueue(atCommand("AT+GCAP", 0, noParse)).Wait()
	caps := modemdata.Capability(0)
	if res.Err == nil {
		for _, line := range res.Value.([]string) {
			up := strings.ToUpper(line)
			switch {
			case strings.Contains(up, "+CGSM"):
				caps |= modemdata.CapabilityGSMUMTS
			case strings.Contains(up, "+CIS707"), strings.Contains(up, "+CIS856"):
				caps |= modemdata.CapabilityCDMAEVDO
			}
		}
	} else {
		// Fall back to ATI when +GCAP is unsupported.
		m.Queue.Enqueue(atCommand("ATI", 0, noParse)).Wait()
	}
	m.Queue.Enqueue(atCommand("AT+CPIN?", 0, noParse)).Wait()
	m.Queue.Enqueue(atCommand("AT+CGMM", 0, noParse)).Wait()
	if caps == 0 {
		caps = modemdata.CapabilityGSMUMTS
	}
	m.Modem.Capabilities = caps
	return nil
}

func (m *Modem) probeIdentity(ctx context.Context) error {
	if res := m.Queue.Enqueue(atCommand("AT+CGMI", 0, firstLine)).Wait(); res.Err == nil {
		m.Manufacturer = res.Value.(string)
	}
	if res := m.Queue.Enqueue(atCommand("AT+CGMM", 0, firstLine)).Wait(); res.Err == nil {
		m.Model = res.Value.(string)
	}
	if res := m.Queue.Enqueue(atCommand("AT+CGMR", 0, firstLine)).Wait(); res.Err == nil {
		m.Revision = res.Value.(string)
	}
	if res := m.Queue.Enqueue(atCommand("AT+CGSN", 0, firstLine)).Wait(); res.Err == nil {
		m.EquipmentID = res.Value.(string)
	}
	return nil
}

func (m *Modem) probeUnlockState(ctx context.Context) error {
	res := m.Queue.Enqueue(atCommand("AT+CPIN?", 0, firstLine)).Wait()
	if res.Err != nil {
		return res.Err
	}
	line := res.Value.(string)
	if m.Modem.SIM == nil {
		m.Modem.SIM = &modemdata.SIM{}
	}
	m.Modem.SIM.PINLocked = !strings.Contains(line, "READY")
	if m.Modem.SIM.PINLocked {
		m.Modem.State = modemdata.StateLocked
	}
	return nil
}

func (m *Modem) probeCharsets(ctx context.Context) error {
	res := m.Queue.Enqueue(atCommand("AT+CSCS=?", 0, noParse)).Wait()
	if res.Err != nil {
		return res.Err
	}
	var supported []pdu.Charset
	for _, line := range res.Value.([]string) {
		for _, tok := range splitQuoted(line) {
			if c := pdu.ParseCharsetName(tok); c != pdu.Unknown {
				supported = append(supported, c)
			}
		}
	}
	m.Modem.Charset = pdu.Pick(supported)
	return nil
}

func (m *Modem) probeOwnNumbers(ctx context.Context) error {
	res := m.Queue.Enqueue(atCommand("AT+CNUM", 0, noParse)).Wait()
	if res.Err != nil {
		return nil // non-fatal: many modems have no own-number to report
	}
	for _, line := range res.Value.([]string) {
		parts := splitQuoted(line)
		if len(parts) >= 2 {
			m.OwnNumbers = append(m.OwnNumbers, parts[1])
		}
	}
	return nil
}

// Enable runs the init sequence, non-fatal flow-control negotiation, power
// up, and charset selection.
func (m *Modem) Enable(ctx context.Context) error {
	seq := []*atqueue.Command{
		atCommand("ATZ", 0, noParse),
		atCommand("ATE0 V1", 0, noParse),
		atCommand("AT+CMEE=1", 0, noParse),
		atCommand("ATX4 &C1", 0, noParse),
	}
	if res := m.Queue.EnqueueSequence(seq).Wait(); res.Err != nil {
		return res.Err
	}

	if res := m.Queue.Enqueue(atCommand("AT+IFC=1,1", 0, noParse)).Wait(); res.Err != nil {
		m.Queue.Enqueue(atCommand("AT+IFC=2,2", 0, noParse)).Wait() // non-fatal either way
	}

	if res := m.Queue.Enqueue(atCommand("AT+CFUN=1", 0, noParse)).Wait(); res.Err != nil {
		return res.Err
	}

	if m.Modem.Charset != pdu.Unknown {
		m.Queue.Enqueue(atCommand(`AT+CSCS="`+m.Modem.Charset.String()+`"`, 0, noParse)).Wait()
	}
	m.Modem.State = modemdata.StateEnabled
	return nil
}

// Disable powers the radio down, preferring +CFUN=4.
func (m *Modem) Disable(ctx context.Context) error {
	res := m.Queue.Enqueue(atCommand("AT+CFUN=4", 0, noParse)).Wait()
	if res.Err != nil {
		res = m.Queue.Enqueue(atCommand("AT+CFUN=0", 0, noParse)).Wait()
	}
	m.Modem.State = modemdata.StateDisabled
	return res.Err
}

// SendPIN unlocks the SIM with +CPIN=pin.
func (m *Modem) SendPIN(ctx context.Context, pin string) error {
	res := m.Queue.Enqueue(atCommand(`AT+CPIN="`+pin+`"`, 0, noParse)).Wait()
	if res.Err != nil {
		return res.Err
	}
	if m.Modem.SIM == nil {
		m.Modem.SIM = &modemdata.SIM{}
	}
	m.Modem.SIM.PINLocked = false
	m.Modem.State = modemdata.StateDisabled
	return nil
}

// SendPUK unlocks a PUK-blocked SIM with +CPIN=puk,newPin and sets the new
// PIN in the same command.
func (m *Modem) SendPUK(ctx context.Context, puk, newPin string) error {
	res := m.Queue.Enqueue(atCommand(`AT+CPIN="`+puk+`","`+newPin+`"`, 0, noParse)).Wait()
	if res.Err != nil {
		return res.Err
	}
	if m.Modem.SIM == nil {
		m.Modem.SIM = &modemdata.SIM{}
	}
	m.Modem.SIM.PINLocked = false
	m.Modem.State = modemdata.StateDisabled
	return nil
}

// SignalQuality returns a 0..100 percentage, preferring +CIND? when
// +CIND=? advertises a "signal" indicator, else +CSQ, else (on a
// QCDM-only port) the EC/Io-derived estimate.
func (m *Modem) SignalQuality(ctx context.Context) (int, error) {
	if q, ok := m.signalQualityFromCind(); ok {
		return q, nil
	}
	if res := m.Queue.Enqueue(atCommand("AT+CSQ", 0, firstLine)).Wait(); res.Err == nil {
		if q, ok := parseCSQ(res.Value.(string)); ok {
			return q, nil
		}
	}
	if m.QCDMQueue != nil {
		req := qcdm.EncodeSubsysRequest(qcdm.SubsysCM, qcdm.CMSubsysStateInfo)
		res := m.QCDMQueue.Enqueue(&atqueue.Command{Bytes: req, Timeout: 5 * time.Second, Processor: rawQCDMProcessor}).Wait()
		if res.Err == nil {
			if ecio, ok := res.Value.(int); ok {
				return qcdm.SignalQualityFromEcIo(ecio), nil
			}
		}
	}
	return 0, cmderr.ErrNotSupported
}

// rawQCDMProcessor treats the single accumulated frame as the terminal
// response; QCDM has no notion of OK/ERROR, so Command.Timeout alone bounds
// the wait and the first frame ends the exchange.
func rawQCDMProcessor(body []string, terminal string) atqueue.ProcessorResult {
	return atqueue.ProcessorResult{Signal: atqueue.TerminalOk, Value: 0}
}

// cindIndicator is one (name, min, max) entry from a +CIND=? descriptor.
type cindIndicator struct {
	name     string
	min, max int
}

var cindDescRe = regexp.MustCompile(`\(\s*"?(\w+)"?\s*,\s*\((\d+)\s*-\s*(\d+)\)\s*\)`)

// parseCindDescriptors parses a +CIND=? line into its ordered indicators,
// e.g. `+CIND: ("battchg",(0-5)),("signal",(0-5)),("service",(0-1))`.
func parseCindDescriptors(line string) []cindIndicator {
	matches := cindDescRe.FindAllStringSubmatch(line, -1)
	out := make([]cindIndicator, 0, len(matches))
	for _, g := range matches {
		min, _ := strconv.Atoi(g[2])
		max, _ := strconv.Atoi(g[3])
		out = append(out, cindIndicator{name: strings.ToLower(g[1]), min: min, max: max})
	}
	return out
}

// signalQualityFromCind probes +CIND=? for a "signal" indicator and, if
// found, reads its current value via +CIND? and scales it to 0..100. It
// reports false (fall through to +CSQ) when the modem's indicator set has
// no signal field at all — a missing indicator is unknown, not zero.
func (m *Modem) signalQualityFromCind() (int, bool) {
	descRes := m.Queue.Enqueue(atCommand("AT+CIND=?", 0, firstLine)).Wait()
	if descRes.Err != nil {
		return 0, false
	}
	descs := parseCindDescriptors(descRes.Value.(string))
	idx := -1
	var indicator cindIndicator
	for i, d := range descs {
		if d.name == "signal" {
			idx = i
			indicator = d
			break
		}
	}
	if idx < 0 || indicator.max <= indicator.min {
		return 0, false
	}

	valRes := m.Queue.Enqueue(atCommand("AT+CIND?", 0, firstLine)).Wait()
	if valRes.Err != nil {
		return 0, false
	}
	fields := splitQuoted(strings.TrimPrefix(valRes.Value.(string), "+CIND:"))
	if idx >= len(fields) {
		return 0, false
	}
	value, err := strconv.Atoi(strings.TrimSpace(fields[idx]))
	if err != nil {
		return 0, false
	}
	if value < indicator.min || value > indicator.max {
		return 0, true
	}
	return (value - indicator.min) * 100 / (indicator.max - indicator.min), true
}

func parseCSQ(line string) (int, bool) {
	if !strings.HasPrefix(line, "+CSQ:") {
		return 0, false
	}
	fields := strings.Split(strings.TrimPrefix(line, "+CSQ:"), ",")
	if len(fields) == 0 {
		return 0, false
	}
	rssi, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil || rssi == 99 {
		return 0, false
	}
	return rssi * 100 / 31, true
}

func firstLine(body []string) (interface{}, error) {
	if len(body) == 0 {
		return "", nil
	}
	return strings.TrimSpace(body[0]), nil
}

func splitQuoted(line string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	out = append(out, strings.TrimSpace(cur.String()))
	return out
}
