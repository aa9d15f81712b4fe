//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package reactor

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// pollPoller реализация poller на poll(2) для BSD систем и macOS
type pollPoller struct {
	// порядок регистрации сохраняется, чтобы события отдавались детерминированно
	fds      []int
	interest map[int]Interest
}

func newPoller() (poller, error) {
	return &pollPoller{interest: make(map[int]Interest)}, nil
}

func pollMask(in Interest) int16 {
	var mask int16
	if in&InterestRead != 0 {
		mask |= unix.POLLIN
	}
	if in&InterestWrite != 0 {
		mask |= unix.POLLOUT
	}
	return mask
}

func (p *pollPoller) add(fd int, in Interest) error {
	if _, ok := p.interest[fd]; ok {
		return &TransportError{Op: "poll add", Err: unix.EEXIST}
	}
	p.fds = append(p.fds, fd)
	p.interest[fd] = in
	return nil
}

func (p *pollPoller) modify(fd int, in Interest) error {
	if _, ok := p.interest[fd]; !ok {
		return &TransportError{Op: "poll modify", Err: unix.ENOENT}
	}
	p.interest[fd] = in
	return nil
}

func (p *pollPoller) remove(fd int) error {
	if _, ok := p.interest[fd]; !ok {
		return &TransportError{Op: "poll remove", Err: unix.ENOENT}
	}
	delete(p.interest, fd)
	for i, v := range p.fds {
		if v == fd {
			p.fds = append(p.fds[:i], p.fds[i+1:]...)
			break
		}
	}
	return nil
}

func (p *pollPoller) wait(timeout time.Duration) ([]readyEvent, error) {
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}

	pfds := make([]unix.PollFd, len(p.fds))
	for i, fd := range p.fds {
		pfds[i] = unix.PollFd{Fd: int32(fd), Events: pollMask(p.interest[fd])}
	}

	for {
		n, err := unix.Poll(pfds, timeoutMillis(timeout))
		if errors.Is(err, unix.EINTR) {
			if timeout >= 0 {
				timeout = time.Until(deadline)
				if timeout < 0 {
					return nil, nil
				}
			}
			continue
		}
		if err != nil {
			return nil, &TransportError{Op: "poll", Err: err}
		}

		ready := make([]readyEvent, 0, n)
		for _, pfd := range pfds {
			if pfd.Revents == 0 {
				continue
			}
			var r Ready
			if pfd.Revents&unix.POLLIN != 0 {
				r |= ReadyRead
			}
			if pfd.Revents&unix.POLLOUT != 0 {
				r |= ReadyWrite
			}
			if pfd.Revents&unix.POLLHUP != 0 {
				r |= ReadyHangup
			}
			if pfd.Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
				r |= ReadyError
			}
			ready = append(ready, readyEvent{fd: int(pfd.Fd), ready: r})
		}
		return ready, nil
	}
}

func (p *pollPoller) close() error {
	p.fds = nil
	p.interest = make(map[int]Interest)
	return nil
}
