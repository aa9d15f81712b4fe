//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package reactor

import (
	"golang.org/x/sys/unix"
)

const sendFlags = 0

func newSocket(typ int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, typ, 0)
	if err != nil {
		return -1, &TransportError{Op: "socket", Err: err}
	}
	unix.CloseOnExec(fd)
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, &TransportError{Op: "set nonblock", Err: err}
	}
	// на BSD системах SIGPIPE отключается опцией сокета
	unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_NOSIGPIPE, 1)
	return fd, nil
}

func setSockOptStream(fd int) {
	unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
}

func setSockOptDSCP(fd, dscp int) error {
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_TOS, dscp<<2); err != nil {
		return &TransportError{Op: "setsockopt IP_TOS", Err: err}
	}
	return nil
}
