// Package capability implements the nine capability interfaces as a set of
// Go interfaces plus one concrete implementation per domain, composed onto
// modemdata.Modem by the Orchestrator instead of being inherited.
package capability

import (
	"context"
	"time"

	"github.com/linux-mobile-broadband/ModemManager-sub009/atqueue"
	"github.com/linux-mobile-broadband/ModemManager-sub009/modemdata"
	"github.com/linux-mobile-broadband/ModemManager-sub009/urc"
)

// Session is the shared plumbing every capability interface is constructed
// with: the primary port's Command Queue and URC Dispatcher, and the Modem
// whose state they mutate. Interfaces communicate only through the Modem's
// shared state and their own URC registrations, never directly with each
// other.
type Session struct {
	Modem *modemdata.Modem
	Queue *atqueue.Queue
	URCs  *urc.Dispatcher

	// QCDMQueue is nil unless the modem has a QCDM diagnostic port open.
	QCDMQueue *atqueue.Queue
}

// Interface is the contract every capability exposes: initialize, enable,
// disable.
type Interface interface {
	Initialize(ctx context.Context) error
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
}

// atCommand builds a Command whose Processor stops at the first terminal
// token and hands the intermediate lines to parse. A zero Timeout means the
// package default of 10s, tight enough for a single AT round trip; only the
// slow operations — network scan, registration attempts — override it.
func atCommand(line string, timeout time.Duration, parse func(body []string) (interface{}, error)) *atqueue.Command {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &atqueue.Command{
		Bytes:     []byte(line + "\r\n"),
		Timeout:   timeout,
		Processor: atqueue.SimpleOK(parse),
	}
}

func noParse(body []string) (interface{}, error) { return body, nil }
