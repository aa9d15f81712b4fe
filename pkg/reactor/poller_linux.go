//go:build linux

package reactor

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// epollPoller реализация poller на epoll (Linux)
type epollPoller struct {
	epfd   int
	events []unix.EpollEvent
}

func newPoller() (poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, &TransportError{Op: "epoll_create", Err: err}
	}
	return &epollPoller{
		epfd:   epfd,
		events: make([]unix.EpollEvent, 64),
	}, nil
}

func epollMask(in Interest) uint32 {
	var mask uint32
	if in&InterestRead != 0 {
		mask |= unix.EPOLLIN
	}
	if in&InterestWrite != 0 {
		mask |= unix.EPOLLOUT
	}
	return mask
}

func (p *epollPoller) add(fd int, in Interest) error {
	ev := unix.EpollEvent{Events: epollMask(in), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return &TransportError{Op: "epoll_ctl add", Err: err}
	}
	return nil
}

func (p *epollPoller) modify(fd int, in Interest) error {
	ev := unix.EpollEvent{Events: epollMask(in), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return &TransportError{Op: "epoll_ctl mod", Err: err}
	}
	return nil
}

func (p *epollPoller) remove(fd int) error {
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return &TransportError{Op: "epoll_ctl del", Err: err}
	}
	return nil
}

func (p *epollPoller) wait(timeout time.Duration) ([]readyEvent, error) {
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		n, err := unix.EpollWait(p.epfd, p.events, timeoutMillis(timeout))
		if errors.Is(err, unix.EINTR) {
			// сигнал рантайма прервал ожидание, ждем оставшееся время
			if timeout >= 0 {
				timeout = time.Until(deadline)
				if timeout < 0 {
					return nil, nil
				}
			}
			continue
		}
		if err != nil {
			return nil, &TransportError{Op: "epoll_wait", Err: err}
		}

		ready := make([]readyEvent, 0, n)
		for _, ev := range p.events[:n] {
			var r Ready
			if ev.Events&(unix.EPOLLIN|unix.EPOLLPRI) != 0 {
				r |= ReadyRead
			}
			if ev.Events&unix.EPOLLOUT != 0 {
				r |= ReadyWrite
			}
			if ev.Events&unix.EPOLLHUP != 0 {
				r |= ReadyHangup
			}
			if ev.Events&unix.EPOLLERR != 0 {
				r |= ReadyError
			}
			ready = append(ready, readyEvent{fd: int(ev.Fd), ready: r})
		}
		return ready, nil
	}
}

func (p *epollPoller) close() error {
	return unix.Close(p.epfd)
}
