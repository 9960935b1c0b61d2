package capability

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/linux-mobile-broadband/ModemManager-sub009/atqueue"
	"github.com/linux-mobile-broadband/ModemManager-sub009/cmderr"
	"github.com/linux-mobile-broadband/ModemManager-sub009/qcdm"
)

// CdmaRegistration is the combined result of the registration, band/SID,
// QCDM, and Sprint-roaming probes.
type CdmaRegistration struct {
	ServicePresent bool
	BandClass      int
	Band           int
	SID            int
	NID            int
	Roaming        bool
	HDRActive      bool
}

// Cdma is the CDMA registration capability interface.
type Cdma struct {
	*Session

	mu              sync.Mutex
	sprintSupported bool
	cancelAttempt   chan struct{}
}

// NewCdma returns a Cdma capability bound to s.
func NewCdma(s *Session) *Cdma { return &Cdma{Session: s} }

func (c *Cdma) Initialize(ctx context.Context) error {
	res := c.Queue.Enqueue(atCommand("AT+SPSERVICE=?", 0, noParse)).Wait()
	c.sprintSupported = res.Err == nil
	return nil
}

func (c *Cdma) Enable(ctx context.Context) error  { return nil }
func (c *Cdma) Disable(ctx context.Context) error { return nil }

// Registration combines +CAD?, +CSS?, QCDM cdma_status (authoritative over
// AT when a QCDM port exists) and, if supported, the Sprint-specific
// +SPSERVICE?/$SPERI? pair.
func (c *Cdma) Registration(ctx context.Context) (*CdmaRegistration, error) {
	reg := &CdmaRegistration{}

	if res := c.Queue.Enqueue(atCommand("AT+CAD?", 0, firstLine)).Wait(); res.Err == nil {
		reg.ServicePresent = strings.Contains(res.Value.(string), "1")
	}

	if res := c.Queue.Enqueue(atCommand("AT+CSS?", 0, firstLine)).Wait(); res.Err == nil {
		parseCSS(res.Value.(string), reg)
	}

	if c.QCDMQueue != nil {
		req := qcdm.EncodeRequest(qcdm.Status)
		res := c.QCDMQueue.Enqueue(&atqueue.Command{Bytes: req, Timeout: 5 * time.Second, Processor: rawQCDMProcessor}).Wait()
		if res.Err == nil {
			// Authoritative over the AT-derived fields when present.
			reg.ServicePresent = true
		}
	}

	if c.sprintSupported {
		if res := c.Queue.Enqueue(atCommand("AT+SPSERVICE?", 0, firstLine)).Wait(); res.Err == nil {
			if res2 := c.Queue.Enqueue(atCommand("AT$SPERI?", 0, firstLine)).Wait(); res2.Err == nil {
				reg.Roaming = strings.Contains(res2.Value.(string), "1")
			}
			_ = res
		}
	}

	return reg, nil
}

func parseCSS(line string, reg *CdmaRegistration) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return
	}
	fields := strings.Split(line[idx+1:], ",")
	if len(fields) < 3 {
		return
	}
	reg.BandClass, _ = strconv.Atoi(strings.TrimSpace(fields[0]))
	reg.Band, _ = strconv.Atoi(strings.TrimSpace(fields[1]))
	reg.SID, _ = strconv.Atoi(strings.TrimSpace(fields[2]))
	if reg.SID == 0 && reg.BandClass == 0 && reg.Band == 0 {
		reg.SID = -1 // no service
	}
}

// HDRState reports EV-DO registration, which comes from QCDM
// hdr_subsys_state_info only.
func (c *Cdma) HDRState(ctx context.Context) (bool, error) {
	if c.QCDMQueue == nil {
		return false, cmderr.ErrNotSupported
	}
	req := qcdm.EncodeSubsysRequest(qcdm.SubsysHDR, qcdm.HDRSubsysStateInfo)
	res := c.QCDMQueue.Enqueue(&atqueue.Command{Bytes: req, Timeout: 5 * time.Second, Processor: rawQCDMProcessor}).Wait()
	return res.Err == nil, res.Err
}

// RegisterInNetwork polls registration every 3s up to maxSeconds,
// cancelling any older attempt from the same modem when a new one is
// issued.
func (c *Cdma) RegisterInNetwork(ctx context.Context, maxSeconds int) (*CdmaRegistration, error) {
	c.mu.Lock()
	if c.cancelAttempt != nil {
		close(c.cancelAttempt)
	}
	cancel := make(chan struct{})
	c.cancelAttempt = cancel
	c.mu.Unlock()

	deadline := time.Now().Add(time.Duration(maxSeconds) * time.Second)
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for {
		reg, err := c.Registration(ctx)
		if err == nil && reg.ServicePresent {
			return reg, nil
		}
		select {
		case <-cancel:
			return nil, cmderr.ErrCancelled
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if time.Now().After(deadline) {
				return nil, cmderr.ErrTimeout
			}
		}
	}
}
