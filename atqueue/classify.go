package atqueue

import (
	"regexp"
	"strconv"

	"github.com/linux-mobile-broadband/ModemManager-sub009/cmderr"
)

var (
	cmeErrorRe = regexp.MustCompile(`^\+CME ERROR: (\d+)$`)
	cmsErrorRe = regexp.MustCompile(`^\+CMS ERROR: (\d+)$`)
)

// ClassifyTerminal reports whether line is one of the recognized terminal
// tokens, and if so what ProcessorResult it implies when no more specific
// parsing is needed. Response-processors that need the
// accumulated body (e.g. +CREG?) call this first on each new frame and
// only run their own parsing once it reports terminal.
func ClassifyTerminal(line string) (result ProcessorResult, terminal bool) {
	if m := cmeErrorRe.FindStringSubmatch(line); m != nil {
		code, _ := strconv.Atoi(m[1])
		return ProcessorResult{Signal: TerminalErr, Err: cmderr.CmeError{Code: code}}, true
	}
	if m := cmsErrorRe.FindStringSubmatch(line); m != nil {
		code, _ := strconv.Atoi(m[1])
		return ProcessorResult{Signal: TerminalErr, Err: cmderr.CmsError{Code: code}}, true
	}
	switch line {
	case "OK", "CONNECT":
		return ProcessorResult{Signal: TerminalOk}, true
	case "ERROR":
		return ProcessorResult{Signal: TerminalErr, Err: cmderr.ErrGeneric}, true
	case "COMMAND NOT SUPPORT":
		return ProcessorResult{Signal: CommandNotSupported}, true
	case "NO CARRIER", "NO ANSWER", "NO DIALTONE", "BUSY":
		return ProcessorResult{Signal: TerminalErr, Err: cmderr.ConnectionFailedError{Reason: line}}, true
	case "TOO MANY PARAMETERS":
		return ProcessorResult{Signal: TerminalErr, Err: cmderr.ProcessorError{Kind: "parse_error", Message: line}}, true
	default:
		return ProcessorResult{}, false
	}
}

// SimpleOK builds the common Processor for commands that only care whether
// the exchange succeeded: run until a terminal token, accumulate the body,
// and hand it to build on success.
func SimpleOK(build func(body []string) (interface{}, error)) Processor {
	return func(body []string, terminal string) ProcessorResult {
		res, isTerminal := ClassifyTerminal(terminal)
		if !isTerminal {
			return ProcessorResult{Signal: Continue}
		}
		if res.Signal != TerminalOk {
			return res
		}
		// body's last line is the terminal token itself; strip it before
		// handing the intermediate frames to build.
		intermediate := body
		if len(intermediate) > 0 {
			intermediate = intermediate[:len(intermediate)-1]
		}
		value, err := build(intermediate)
		if err != nil {
			return ProcessorResult{Signal: TerminalErr, Err: err}
		}
		return ProcessorResult{Signal: TerminalOk, Value: value}
	}
}
