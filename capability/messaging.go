package capability

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/linux-mobile-broadband/ModemManager-sub009/cmderr"
	"github.com/linux-mobile-broadband/ModemManager-sub009/modemdata"
	"github.com/linux-mobile-broadband/ModemManager-sub009/sms"
)

// Messaging is the Messaging capability interface.
type Messaging struct {
	*Session

	mu         sync.Mutex
	supported  bool
	pduMode    bool
	mem1Store  modemdata.SmsStorage
	mem2Store  modemdata.SmsStorage
	mem1Locked bool
	mem2Locked bool
	prevMem1   modemdata.SmsStorage // storage selection to restore on release
	prevMem2   modemdata.SmsStorage
	tracked    map[string]bool // (storage,index) pairs already surfaced
}

// NewMessaging returns a Messaging capability bound to s.
func NewMessaging(s *Session) *Messaging {
	return &Messaging{Session: s, tracked: make(map[string]bool)}
}

// Initialize checks support via +CNMI=?. A modem whose Modem.Capabilities
// has neither GSM-UMTS nor LTE (CDMA-only) is reported as NotSupported
// without probing.
func (m *Messaging) Initialize(ctx context.Context) error {
	if m.Modem.Capabilities&(modemdata.CapabilityGSMUMTS|modemdata.CapabilityLTE) == 0 {
		m.supported = false
		return cmderr.ErrNotSupported
	}
	res := m.Queue.Enqueue(atCommand("AT+CNMI=?", 0, noParse)).Wait()
	m.supported = res.Err == nil
	if !m.supported {
		return cmderr.ErrNotSupported
	}

	if res := m.Queue.Enqueue(atCommand("AT+CMGF=0", 0, noParse)).Wait(); res.Err == nil {
		m.pduMode = true
	} else if res := m.Queue.Enqueue(atCommand("AT+CMGF=?", 0, noParse)).Wait(); res.Err == nil {
		m.Queue.Enqueue(atCommand("AT+CMGF=1", 0, noParse)).Wait()
		m.pduMode = false
	} else {
		m.pduMode = true // neither mode query succeeded; default to PDU
	}
	return nil
}

func (m *Messaging) Enable(ctx context.Context) error {
	if !m.supported {
		return nil
	}
	m.URCs.Register(`^\+CMTI:\s*"?(\w+)"?,\s*(\d+)`, func(frame string, groups []string) { m.onCMTI(groups) })
	m.URCs.Register(`^\+CDS: `, func(frame string, groups []string) { m.onCDS(frame) })
	return m.initialList(context.Background())
}

func (m *Messaging) Disable(ctx context.Context) error { return nil }

// LockStorages issues +CPMS=... and sets the lock flag. A second
// concurrent lock attempt fails with Retry. The storage selection in
// effect before the lock is snapshotted so ReleaseStorages can restore it.
func (m *Messaging) LockStorages(ctx context.Context, mem1Store, mem2Store modemdata.SmsStorage) error {
	m.mu.Lock()
	if m.mem1Locked || m.mem2Locked {
		m.mu.Unlock()
		return cmderr.ErrRetry
	}
	m.mem1Locked, m.mem2Locked = true, true
	m.prevMem1, m.prevMem2 = m.mem1Store, m.mem2Store
	m.mu.Unlock()

	cmd := fmt.Sprintf(`AT+CPMS="%s","%s"`, mem1Store, mem2Store)
	res := m.Queue.Enqueue(atCommand(cmd, 0, noParse)).Wait()
	if res.Err != nil {
		m.ReleaseStorages()
		return res.Err
	}
	m.mu.Lock()
	m.mem1Store, m.mem2Store = mem1Store, mem2Store
	m.mu.Unlock()
	return nil
}

// ReleaseStorages releases both lock flags and restores the storage
// selection to what it was before the matching LockStorages call. Callers
// MUST call this after LockStorages succeeds; dropping a lock without
// release leaves the selection stuck at whatever was last locked.
func (m *Messaging) ReleaseStorages() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mem1Locked, m.mem2Locked = false, false
	m.mem1Store, m.mem2Store = m.prevMem1, m.prevMem2
}

func (m *Messaging) onCMTI(groups []string) {
	if len(groups) < 3 {
		return
	}
	storage := modemdata.SmsStorage(groups[1])
	index := groups[2]
	key := string(storage) + ":" + index
	m.mu.Lock()
	if m.tracked[key] {
		m.mu.Unlock()
		return
	}
	m.tracked[key] = true
	m.mu.Unlock()

	if err := m.LockStorages(context.Background(), storage, m.mem2Store); err != nil {
		return
	}
	defer m.ReleaseStorages()

	idx, _ := strconv.Atoi(index)
	res := m.Queue.Enqueue(atCommand(fmt.Sprintf("AT+CMGR=%d", idx), 0, firstLine)).Wait()
	if res.Err != nil {
		return
	}
	part := decodePDUToPart(res.Value.(string), storage, idx, modemdata.SmsStateReceived)
	if part != nil {
		m.Modem.Messages.AddPart(part.Number, part)
	}
}

func (m *Messaging) onCDS(frame string) {
	idx := strings.Index(frame, ":")
	if idx < 0 {
		return
	}
	hexPDU := strings.TrimSpace(strings.Trim(frame[idx+1:], `"`))
	part := decodePDUToPart(hexPDU, modemdata.StorageSR, 0, modemdata.SmsStateReceived)
	if part != nil {
		m.Modem.Messages.AddPart(part.Number, part)
	}
}

// initialList locks MEM1 to ME and then to SM and lists every message
// stored there; the storages the modem itself declares are not queried.
func (m *Messaging) initialList(ctx context.Context) error {
	for _, storage := range []modemdata.SmsStorage{modemdata.StorageME, modemdata.StorageSM} {
		if err := m.LockStorages(ctx, storage, m.mem2Store); err != nil {
			continue
		}
		listCmd := "AT+CMGL=4"
		if !m.pduMode {
			listCmd = `AT+CMGL="ALL"`
		}
		res := m.Queue.Enqueue(atCommand(listCmd, 0, noParse)).Wait()
		m.ReleaseStorages()
		if res.Err != nil {
			continue
		}
		for _, line := range res.Value.([]string) {
			if part := decodePDUToPart(line, storage, 0, smsStateFromCMGLStat(line)); part != nil {
				m.Modem.Messages.AddPart(part.Number, part)
			}
		}
	}
	return nil
}

// Send encodes text as a PDU submit and sends it with +CMGS, returning the
// modem-assigned message reference.
func (m *Messaging) Send(ctx context.Context, number, text string) (int, error) {
	msg := sms.Message{
		Type:    sms.MessageTypes.Submit,
		Address: sms.PhoneNumber(number),
		Text:    text,
	}
	tpduLen, raw, err := msg.PDU()
	if err != nil {
		return 0, err
	}
	cmd := fmt.Sprintf("AT+CMGS=%d\r%s\x1a", tpduLen, hex.EncodeToString(raw))
	res := m.Queue.Enqueue(atCommand(cmd, 0, firstLine)).Wait()
	if res.Err != nil {
		return 0, res.Err
	}
	line := res.Value.(string)
	idx := strings.Index(line, ":")
	if idx < 0 {
		return 0, nil
	}
	ref, _ := strconv.Atoi(strings.TrimSpace(line[idx+1:]))
	return ref, nil
}

// smsStateFromCMGLStat maps a +CMGL `<stat>` field to SmsState. Per Open
// Question 1, a field this parser cannot classify maps to Unknown rather
// than defaulting to Received.
func smsStateFromCMGLStat(line string) modemdata.SmsState {
	switch {
	case strings.Contains(line, "REC UNREAD"), strings.Contains(line, "REC READ"):
		return modemdata.SmsStateReceived
	case strings.Contains(line, "STO UNSENT"), strings.Contains(line, "STO SENT"):
		return modemdata.SmsStateStored
	default:
		return modemdata.SmsStateUnknown
	}
}

// decodePDUToPart decodes a hex PDU line into an SmsPart, or nil if it
// cannot be parsed as a PDU at all.
func decodePDUToPart(line string, storage modemdata.SmsStorage, index int, state modemdata.SmsState) *modemdata.SmsPart {
	hexStr := strings.TrimSpace(line)
	if idx := strings.LastIndex(hexStr, " "); idx >= 0 {
		hexStr = hexStr[idx+1:]
	}
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil
	}
	var msg sms.Message
	if _, err := msg.ReadFrom(raw); err != nil {
		return nil
	}
	part := &modemdata.SmsPart{
		Storage: storage,
		Index:   index,
		State:   state,
		Number:  string(msg.Address),
		Text:    msg.Text,
		Raw:     raw,
	}
	switch msg.Type {
	case sms.MessageTypes.Deliver:
		part.Type = modemdata.PDUTypeDeliver
	case sms.MessageTypes.Submit:
		part.Type = modemdata.PDUTypeSubmit
	case sms.MessageTypes.StatusReport:
		part.Type = modemdata.PDUTypeStatusReport
	}
	return part
}
