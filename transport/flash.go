//go:build linux

package transport

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// fileDescriptor is implemented by any device handle that can hand back its
// raw fd; *os.File does, and so does a pty used in tests.
type fileDescriptor interface {
	Fd() uintptr
}

// ErrNoFd is returned by Flash when the open device does not expose a raw
// file descriptor (so DTR cannot be toggled via ioctl).
var ErrNoFd = errors.New("transport: device does not expose a file descriptor")

// Flash drops DTR for duration then raises it again, as some modems require
// before initialization.
func (h *Handle) Flash(duration time.Duration) error {
	fd, ok := h.dev.(fileDescriptor)
	if !ok {
		return ErrNoFd
	}
	if err := setDTR(fd.Fd(), false); err != nil {
		return err
	}
	time.Sleep(duration)
	return setDTR(fd.Fd(), true)
}

func setDTR(fd uintptr, up bool) error {
	bit := unix.TIOCM_DTR
	if up {
		return unix.IoctlSetPointerInt(int(fd), unix.TIOCMBIS, bit)
	}
	return unix.IoctlSetPointerInt(int(fd), unix.TIOCMBIC, bit)
}
