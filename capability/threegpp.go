package capability

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/linux-mobile-broadband/ModemManager-sub009/modemdata"
)

// NetworkOperator is one entry of a +COPS=? scan result.
type NetworkOperator struct {
	Status     string // "unknown" | "available" | "current" | "forbidden"
	LongName   string
	ShortName  string
	OperatorID string // MCCMNC
	AccessTech string
}

// AcT names the access technology reported as the 4th field of a
// +CREG/+CGREG/+CEREG registration line, per 3GPP TS 27.007.
var actNames = map[int]string{
	0: "GSM",
	1: "GSM Compact",
	2: "UTRAN",
	3: "GSM w/EGPRS",
	4: "UTRAN w/HSDPA",
	5: "UTRAN w/HSUPA",
	6: "UTRAN w/HSPA",
	7: "LTE",
	8: "EC-GSM-IoT",
	9: "E-UTRAN NB-S1",
}

// ThreeGpp is the 3GPP registration, scan, and facility-lock capability
// interface.
type ThreeGpp struct {
	*Session

	mu       sync.Mutex
	stopPoll chan struct{}

	LAC, CI int
	AcT     string
}

// NewThreeGpp returns a ThreeGpp capability bound to s.
func NewThreeGpp(s *Session) *ThreeGpp { return &ThreeGpp{Session: s} }

func (g *ThreeGpp) Initialize(ctx context.Context) error { return nil }

// Enable configures unsolicited indicator events and registration
// reporting. A modem that rejects the richer event level falls back to the
// plain one rather than failing Enable.
func (g *ThreeGpp) Enable(ctx context.Context) error {
	if res := g.Queue.Enqueue(atCommand("AT+CMER=3,0,0,1", 0, noParse)).Wait(); res.Err != nil {
		g.Queue.Enqueue(atCommand("AT+CMER=3,0,0,0", 0, noParse)).Wait()
	}
	for _, pair := range [][2]string{{"AT+CREG=2", "AT+CREG=1"}, {"AT+CGREG=2", "AT+CGREG=1"}, {"AT+CEREG=2", "AT+CEREG=1"}} {
		if res := g.Queue.Enqueue(atCommand(pair[0], 0, noParse)).Wait(); res.Err != nil {
			g.Queue.Enqueue(atCommand(pair[1], 0, noParse)).Wait()
		}
	}

	for _, pattern := range []string{`^\+CREG: `, `^\+CGREG: `, `^\+CEREG: `} {
		p := pattern
		g.URCs.Register(p, func(frame string, groups []string) { g.onRegistrationURC(p, frame) })
	}

	g.stopPoll = make(chan struct{})
	go g.pollLoop()
	return nil
}

func (g *ThreeGpp) Disable(ctx context.Context) error {
	if g.stopPoll != nil {
		close(g.stopPoll)
		g.stopPoll = nil
	}
	return nil
}

// pollLoop re-issues the registration query every 30s while Enabled but not
// yet registered on any domain.
func (g *ThreeGpp) pollLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-g.stopPoll:
			return
		case <-ticker.C:
			if !g.Modem.Registered() {
				g.RefreshRegistration(context.Background())
			}
		}
	}
}

func (g *ThreeGpp) onRegistrationURC(pattern, frame string) {
	g.applyRegistrationLine(pattern, frame)
}

// RefreshRegistration queries +CREG?, +CGREG?, and +CEREG? in turn on the
// primary port, applying whichever succeed.
func (g *ThreeGpp) RefreshRegistration(ctx context.Context) error {
	queries := map[string]string{`^\+CREG: `: "AT+CREG?", `^\+CGREG: `: "AT+CGREG?", `^\+CEREG: `: "AT+CEREG?"}
	for pattern, cmd := range queries {
		res := g.Queue.Enqueue(atCommand(cmd, 0, firstLine)).Wait()
		if res.Err == nil {
			g.applyRegistrationLine(pattern, res.Value.(string))
		}
	}
	return nil
}

// applyRegistrationLine parses `<stat>, <lac>, <ci>, <act>` and updates the
// matching registration domain, plus LAC/CI/AcT when present.
func (g *ThreeGpp) applyRegistrationLine(pattern, line string) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return
	}
	fields := strings.Split(line[idx+1:], ",")
	if len(fields) == 0 {
		return
	}
	stat, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return
	}
	rs := regStateFromStat(stat)

	g.mu.Lock()
	defer g.mu.Unlock()
	switch pattern {
	case `^\+CREG: `:
		g.Modem.RegCS = rs
	case `^\+CGREG: `:
		g.Modem.RegPS = rs
	case `^\+CEREG: `:
		g.Modem.RegEPS = rs
	}
	if len(fields) >= 3 {
		if lac, err := strconv.ParseInt(strings.Trim(strings.TrimSpace(fields[1]), `"`), 16, 32); err == nil {
			g.LAC = int(lac)
		}
		if ci, err := strconv.ParseInt(strings.Trim(strings.TrimSpace(fields[2]), `"`), 16, 32); err == nil {
			g.CI = int(ci)
		}
	}
	if len(fields) >= 4 {
		if act, err := strconv.Atoi(strings.TrimSpace(fields[3])); err == nil {
			if name, ok := actNames[act]; ok {
				g.AcT = name
			}
		}
	}
}

func regStateFromStat(stat int) modemdata.RegistrationState {
	switch stat {
	case 0:
		return modemdata.RegIdle
	case 1:
		return modemdata.RegRegisteredHome
	case 2:
		return modemdata.RegSearching
	case 3:
		return modemdata.RegDenied
	case 5:
		return modemdata.RegRegisteredRoaming
	default:
		return modemdata.RegUnknown
	}
}

// Scan runs +COPS=? with its 120s timeout and no caching. It accepts both
// the four-quote legacy variant and the numeric-AcT extension.
func (g *ThreeGpp) Scan(ctx context.Context) ([]NetworkOperator, error) {
	res := g.Queue.Enqueue(atCommand("AT+COPS=?", 120*time.Second, noParse)).Wait()
	if res.Err != nil {
		return nil, res.Err
	}
	var ops []NetworkOperator
	for _, line := range res.Value.([]string) {
		ops = append(ops, parseCopsScanLine(line)...)
	}
	return ops, nil
}

var copsStatusNames = map[int]string{0: "unknown", 1: "available", 2: "current", 3: "forbidden"}

func parseCopsScanLine(line string) []NetworkOperator {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return nil
	}
	body := line[idx+1:]
	var ops []NetworkOperator
	for _, entry := range splitParenGroups(body) {
		fields := splitQuoted(entry)
		if len(fields) < 4 {
			continue
		}
		statusNum, _ := strconv.Atoi(strings.TrimSpace(fields[0]))
		op := NetworkOperator{
			Status:     copsStatusNames[statusNum],
			LongName:   fields[1],
			ShortName:  fields[2],
			OperatorID: fields[3],
		}
		if len(fields) >= 5 {
			op.AccessTech = fields[4]
		}
		ops = append(ops, op)
	}
	return ops
}

// splitParenGroups splits "(a,b,c),(d,e,f)" into ["a,b,c", "d,e,f"].
func splitParenGroups(s string) []string {
	var out []string
	depth := 0
	var cur strings.Builder
	for _, r := range s {
		switch r {
		case '(':
			depth++
			if depth == 1 {
				continue
			}
		case ')':
			depth--
			if depth == 0 {
				out = append(out, cur.String())
				cur.Reset()
				continue
			}
		}
		if depth > 0 {
			cur.WriteRune(r)
		}
	}
	return out
}

// Register attempts to register on operatorID, or automatic registration
// when operatorID is empty.
func (g *ThreeGpp) Register(ctx context.Context, operatorID string) error {
	cmd := "AT+COPS=0"
	if operatorID != "" {
		cmd = `AT+COPS=1,2,"` + operatorID + `"`
	}
	res := g.Queue.Enqueue(atCommand(cmd, 120*time.Second, noParse)).Wait()
	return res.Err
}

// FacilityLock is one +CLCK="<fac>",2 query result.
type FacilityLock struct {
	Facility string
	Locked   bool
	Unknown  bool
}

// FacilityLocks learns the advertised facilities via +CLCK=? and queries
// each individually; a failure on a single facility is recorded as unknown
// rather than failing the batch.
func (g *ThreeGpp) FacilityLocks(ctx context.Context) ([]FacilityLock, error) {
	res := g.Queue.Enqueue(atCommand("AT+CLCK=?", 0, noParse)).Wait()
	if res.Err != nil {
		return nil, res.Err
	}
	var facilities []string
	for _, line := range res.Value.([]string) {
		facilities = append(facilities, splitQuoted(line)...)
	}
	var out []FacilityLock
	for _, fac := range facilities {
		fac = strings.Trim(strings.TrimSpace(fac), `"()`)
		if fac == "" {
			continue
		}
		r := g.Queue.Enqueue(atCommand(`AT+CLCK="`+fac+`",2`, 0, firstLine)).Wait()
		if r.Err != nil {
			out = append(out, FacilityLock{Facility: fac, Unknown: true})
			continue
		}
		fields := strings.Split(r.Value.(string), ",")
		locked := len(fields) > 0 && strings.Contains(fields[0], "1")
		out = append(out, FacilityLock{Facility: fac, Locked: locked})
	}
	return out, nil
}
