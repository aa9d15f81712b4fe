package reactor

import (
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"
)

func toSockaddr(addr netip.AddrPort) (unix.Sockaddr, error) {
	ip := addr.Addr().Unmap()
	if !ip.Is4() {
		return nil, fmt.Errorf("%w: %s", ErrAddressFamily, addr)
	}
	return &unix.SockaddrInet4{Port: int(addr.Port()), Addr: ip.As4()}, nil
}

func fromSockaddr(sa unix.Sockaddr) netip.AddrPort {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port))
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.Addr).Unmap(), uint16(a.Port))
	}
	return netip.AddrPort{}
}

func sockname(fd int) (netip.AddrPort, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return netip.AddrPort{}, &TransportError{Op: "getsockname", Err: err}
	}
	return fromSockaddr(sa), nil
}

func peername(fd int) (netip.AddrPort, error) {
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return netip.AddrPort{}, &TransportError{Op: "getpeername", Err: err}
	}
	return fromSockaddr(sa), nil
}

func isTemporary(err error) bool {
	return err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR
}
