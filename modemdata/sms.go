package modemdata

import "sync"

// SmsStorage is the memory bank a SmsPart lives in.
type SmsStorage string

// The storage banks a modem can report.
const (
	StorageME SmsStorage = "ME"
	StorageSM SmsStorage = "SM"
	StorageMT SmsStorage = "MT"
	StorageSR SmsStorage = "SR"
	StorageBM SmsStorage = "BM"
	StorageTA SmsStorage = "TA"
)

// SmsPDUType is the PDU-type field.
type SmsPDUType int

// The PDU types a part may carry.
const (
	PDUTypeUnknown SmsPDUType = iota
	PDUTypeDeliver
	PDUTypeSubmit
	PDUTypeStatusReport
)

// SmsState is the per-part state field. A `<stat>` field CMGL cannot
// classify reports Unknown rather than defaulting to Received.
type SmsState int

// The states a part may be in.
const (
	SmsStateUnknown SmsState = iota
	SmsStateReceived
	SmsStateStored
	SmsStateSent
)

// MultipartDescriptor is the (reference, total, sequence) triple concatenated
// SMS parts carry in their User-Data-Header.
type MultipartDescriptor struct {
	Reference int
	Total     int
	Sequence  int
}

// SmsPart is a single stored/received PDU.
type SmsPart struct {
	Storage   SmsStorage
	Index     int
	Type      SmsPDUType
	State     SmsState
	Number    string
	Timestamp string
	Text      string
	Raw       []byte
	Class     int
	Multipart *MultipartDescriptor
}

// MaxMultipartSize bounds the number of parts a concatenated Sms may have,
// matching the TP-UDH max.
const MaxMultipartSize = 255

// Sms is a logical message assembled from one or more SmsParts sharing a
// reference.
type Sms struct {
	Reference int
	Total     int
	Parts     map[int]*SmsPart // keyed by Sequence
}

// Complete reports whether every part 1..Total has arrived.
func (s *Sms) Complete() bool {
	return len(s.Parts) == s.Total
}

// Text concatenates the parts in sequence order. Callers should only call
// this once Complete reports true.
func (s *Sms) Text() string {
	var out string
	for i := 1; i <= s.Total; i++ {
		if p, ok := s.Parts[i]; ok {
			out += p.Text
		}
	}
	return out
}

// smsKey indexes the reassembly table by (sender, reference, total).
type smsKey struct {
	sender    string
	reference int
	total     int
}

// SmsList holds both single-part messages and the in-progress/completed
// reassembly table for multipart ones. There is no persisted on-disk
// state: completed reassemblies stay in memory for the SmsList's lifetime;
// SmsList has no method that removes them.
type SmsList struct {
	mu         sync.Mutex
	singles    []*SmsPart
	assembling map[smsKey]*Sms
}

// NewSmsList returns an empty list.
func NewSmsList() *SmsList {
	return &SmsList{assembling: make(map[smsKey]*Sms)}
}

// ErrMultipartTooLarge is returned by AddPart when a part's declared Total
// exceeds MaxMultipartSize.
var ErrMultipartTooLarge = errMultipartTooLarge{}

type errMultipartTooLarge struct{}

func (errMultipartTooLarge) Error() string {
	return "modemdata: multipart total exceeds the 255-part bound"
}

// AddPart inserts part into the list. If part carries no multipart
// descriptor it is appended to the single-part list and returned
// immediately as a one-part Sms. Otherwise it is merged into the
// reassembly table keyed by (sender, reference, total); the returned Sms
// is non-nil only once it is Complete.
func (l *SmsList) AddPart(sender string, part *SmsPart) (*Sms, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if part.Multipart == nil {
		l.singles = append(l.singles, part)
		return &Sms{Reference: 0, Total: 1, Parts: map[int]*SmsPart{1: part}}, nil
	}

	md := part.Multipart
	if md.Total > MaxMultipartSize {
		return nil, ErrMultipartTooLarge
	}
	key := smsKey{sender: sender, reference: md.Reference, total: md.Total}
	sms, ok := l.assembling[key]
	if !ok {
		sms = &Sms{Reference: md.Reference, Total: md.Total, Parts: make(map[int]*SmsPart)}
		l.assembling[key] = sms
	}
	sms.Parts[md.Sequence] = part
	if sms.Complete() {
		return sms, nil
	}
	return nil, nil
}

// Pending returns the reassembly entries that are not yet Complete, for
// diagnostics.
func (l *SmsList) Pending() []*Sms {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*Sms
	for _, sms := range l.assembling {
		if !sms.Complete() {
			out = append(out, sms)
		}
	}
	return out
}

// Singles returns the non-multipart parts received so far.
func (l *SmsList) Singles() []*SmsPart {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*SmsPart, len(l.singles))
	copy(out, l.singles)
	return out
}
