package reactor

import (
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"
)

// DatagramHandler получатель входящих датаграмм
type DatagramHandler func(data []byte, from netip.AddrPort)

type datagram struct {
	data []byte
	to   netip.AddrPort
}

// DatagramSocket неблокирующий UDP сокет под управлением реактора
type DatagramSocket struct {
	r          *Reactor
	fd         int
	onData     DatagramHandler
	queue      []datagram
	interest   Interest
	registered bool
	bound      bool
	closed     bool
}

// NewDatagramSocket создает UDP сокет. Сокет регистрируется в реакторе
// при Bind или первой отправке.
func (r *Reactor) NewDatagramSocket(onData DatagramHandler) (*DatagramSocket, error) {
	if r.closed {
		return nil, ErrClosed
	}
	fd, err := newSocket(unix.SOCK_DGRAM)
	if err != nil {
		return nil, err
	}
	s := &DatagramSocket{
		r:      r,
		fd:     fd,
		onData: onData,
	}
	r.attach(fd, s)
	return s, nil
}

func (s *DatagramSocket) isClosed() bool {
	return s.closed
}

// Interest текущая маска интереса
func (s *DatagramSocket) Interest() Interest {
	return s.interest
}

// Pending количество датаграмм в очереди на отправку
func (s *DatagramSocket) Pending() int {
	return len(s.queue)
}

// SetDSCP выставляет DSCP маркировку исходящих пакетов
func (s *DatagramSocket) SetDSCP(dscp int) error {
	if s.closed {
		return ErrClosed
	}
	if dscp < 0 || dscp > 63 {
		return fmt.Errorf("invalid DSCP value %d", dscp)
	}
	return setSockOptDSCP(s.fd, dscp)
}

// Bind привязывает сокет к адресу и начинает прием. Порт 0 выбирает ОС.
func (s *DatagramSocket) Bind(addr netip.AddrPort) error {
	if s.closed {
		return ErrClosed
	}
	if s.bound {
		return fmt.Errorf("%w: already bound", ErrInvalidState)
	}
	sa, err := toSockaddr(addr)
	if err != nil {
		return err
	}
	if err := unix.Bind(s.fd, sa); err != nil {
		return &TransportError{Op: "bind", Err: err}
	}
	s.bound = true
	return s.updateInterest()
}

// LocalAddr локальный адрес сокета
func (s *DatagramSocket) LocalAddr() (netip.AddrPort, error) {
	if s.closed {
		return netip.AddrPort{}, ErrClosed
	}
	return sockname(s.fd)
}

// SendTo ставит датаграмму в очередь на отправку
func (s *DatagramSocket) SendTo(data []byte, to netip.AddrPort) error {
	if s.closed {
		return ErrClosed
	}
	if _, err := toSockaddr(to); err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.queue = append(s.queue, datagram{data: buf, to: to})
	return s.updateInterest()
}

// Close закрывает сокет. Повторный вызов ничего не делает.
func (s *DatagramSocket) Close() {
	if s.closed {
		return
	}
	if s.registered {
		if err := s.r.poller.remove(s.fd); err != nil {
			s.r.logger.WithError(err).Warnf("fd %d: unregister", s.fd)
		}
		s.registered = false
	}
	s.r.detach(s.fd)
	unix.Close(s.fd)
	s.closed = true
	s.interest = 0
	s.queue = nil
}

func (s *DatagramSocket) wantedInterest() Interest {
	var in Interest
	if s.bound {
		in |= InterestRead
	}
	if len(s.queue) > 0 {
		in |= InterestWrite
	}
	return in
}

func (s *DatagramSocket) updateInterest() error {
	in := s.wantedInterest()
	switch {
	case !s.registered:
		if in == 0 {
			return nil
		}
		if err := s.r.poller.add(s.fd, in); err != nil {
			return err
		}
		s.registered = true
	case in != s.interest:
		if err := s.r.poller.modify(s.fd, in); err != nil {
			return err
		}
	}
	s.interest = in
	return nil
}

func (s *DatagramSocket) onReady(r Ready) {
	if r&ReadyRead != 0 {
		n, from, err := unix.Recvfrom(s.fd, s.r.recvBuf, 0)
		switch {
		case err != nil && isTemporary(err):
		case err != nil:
			s.r.logger.WithError(err).Debugf("fd %d: recvfrom", s.fd)
			s.Close()
			return
		default:
			data := make([]byte, n)
			copy(data, s.r.recvBuf[:n])
			if s.onData != nil {
				s.onData(data, fromSockaddr(from))
			}
			if s.closed {
				return
			}
		}
	}

	if r&(ReadyHangup|ReadyError) != 0 {
		s.Close()
		return
	}

	if r&ReadyWrite != 0 {
		s.flush()
	}

	if err := s.updateInterest(); err != nil {
		s.r.logger.WithError(err).Warnf("fd %d: update interest", s.fd)
		s.Close()
	}
}

// flush отправляет очередь, пока ОС принимает датаграммы
func (s *DatagramSocket) flush() {
	for len(s.queue) > 0 {
		d := s.queue[0]
		sa, _ := toSockaddr(d.to)
		err := unix.Sendto(s.fd, d.data, sendFlags, sa)
		if err != nil && isTemporary(err) {
			return
		}
		if err != nil {
			s.r.logger.WithError(err).Warnf("fd %d: sendto %s, datagram dropped", s.fd, d.to)
		}
		s.queue[0] = datagram{}
		s.queue = s.queue[1:]
	}
}
