package reactor

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	"github.com/looplab/fsm"
	"golang.org/x/sys/unix"
)

// Состояния потокового сокета
const (
	StreamUnconnected = "unconnected"
	StreamConnecting  = "connecting"
	StreamConnected   = "connected"
	StreamClosed      = "closed"
)

// StreamCallbacks обратные вызовы потокового сокета. Любой может быть nil.
type StreamCallbacks struct {
	// Established соединение установлено
	Established func()
	// Data получены данные
	Data func(data []byte)
	// Closed соединение закрыто удаленной стороной или из-за ошибки
	Closed func()
}

// StreamSocket неблокирующий TCP сокет под управлением реактора
type StreamSocket struct {
	r          *Reactor
	fd         int
	state      *fsm.FSM
	interest   Interest
	registered bool
	sendBuf    []byte
	cb         StreamCallbacks
}

// NewStreamSocket создает TCP сокет
func (r *Reactor) NewStreamSocket(cb StreamCallbacks) (*StreamSocket, error) {
	if r.closed {
		return nil, ErrClosed
	}
	fd, err := newSocket(unix.SOCK_STREAM)
	if err != nil {
		return nil, err
	}
	setSockOptStream(fd)

	s := &StreamSocket{
		r:  r,
		fd: fd,
		cb: cb,
	}
	s.state = fsm.NewFSM(
		StreamUnconnected,
		fsm.Events{
			{Name: "connect", Src: []string{StreamUnconnected}, Dst: StreamConnecting},
			{Name: "establish", Src: []string{StreamConnecting}, Dst: StreamConnected},
			{Name: "close", Src: []string{StreamUnconnected, StreamConnecting, StreamConnected}, Dst: StreamClosed},
		},
		fsm.Callbacks{},
	)
	r.attach(fd, s)
	return s, nil
}

// SetCallbacks заменяет обратные вызовы
func (s *StreamSocket) SetCallbacks(cb StreamCallbacks) {
	s.cb = cb
}

// State текущее состояние сокета
func (s *StreamSocket) State() string {
	return s.state.Current()
}

// Interest текущая маска интереса
func (s *StreamSocket) Interest() Interest {
	return s.interest
}

// Pending количество неотправленных байт
func (s *StreamSocket) Pending() int {
	return len(s.sendBuf)
}

func (s *StreamSocket) isClosed() bool {
	return s.state.Is(StreamClosed)
}

// LocalAddr локальный адрес сокета
func (s *StreamSocket) LocalAddr() (netip.AddrPort, error) {
	if s.isClosed() {
		return netip.AddrPort{}, ErrClosed
	}
	return sockname(s.fd)
}

// RemoteAddr адрес удаленной стороны
func (s *StreamSocket) RemoteAddr() (netip.AddrPort, error) {
	if s.isClosed() {
		return netip.AddrPort{}, ErrClosed
	}
	return peername(s.fd)
}

func (s *StreamSocket) transition(event string) {
	if err := s.state.Event(context.Background(), event); err != nil {
		s.r.logger.WithError(err).Debugf("fd %d: transition %s", s.fd, event)
	}
}

// Connect начинает неблокирующее подключение. Если оно завершилось сразу,
// сокет переходит в Connected и вызывается Established. Иначе сокет
// остается в Connecting до готовности на запись.
func (s *StreamSocket) Connect(addr netip.AddrPort) error {
	if !s.state.Is(StreamUnconnected) {
		return fmt.Errorf("%w: cannot connect: %s", ErrInvalidState, s.State())
	}
	sa, err := toSockaddr(addr)
	if err != nil {
		return err
	}

	s.transition("connect")
	err = unix.Connect(s.fd, sa)
	switch {
	case err == nil:
		s.transition("establish")
		if err := s.register(s.wantedInterest()); err != nil {
			s.Close()
			return err
		}
		s.call(s.cb.Established)
		return nil
	case errors.Is(err, unix.EINPROGRESS):
		s.r.logger.Debugf("fd %d: connection to %s in progress", s.fd, addr)
		if err := s.register(InterestWrite); err != nil {
			s.Close()
			return err
		}
		return nil
	default:
		s.Close()
		return &TransportError{Op: "connect", Err: err}
	}
}

// Send добавляет данные в буфер отправки. Данные уходят при готовности
// сокета на запись, по одному вызову send за такт.
func (s *StreamSocket) Send(data []byte) error {
	if !s.state.Is(StreamConnected) && !s.state.Is(StreamConnecting) {
		return fmt.Errorf("%w: cannot send: %s", ErrNotConnected, s.State())
	}
	s.sendBuf = append(s.sendBuf, data...)
	if s.interest&InterestWrite == 0 {
		return s.setInterest(s.interest | InterestWrite)
	}
	return nil
}

// Close закрывает сокет без вызова Closed. Повторный вызов ничего не делает.
func (s *StreamSocket) Close() {
	if s.isClosed() {
		return
	}

	// сначала снимаем с опроса, затем освобождаем дескриптор
	if s.registered {
		if err := s.r.poller.remove(s.fd); err != nil {
			s.r.logger.WithError(err).Warnf("fd %d: unregister", s.fd)
		}
		s.registered = false
	}
	s.r.detach(s.fd)
	unix.Close(s.fd)

	s.interest = 0
	s.sendBuf = nil
	s.transition("close")
}

func (s *StreamSocket) closeWithCallback() {
	s.Close()
	s.call(s.cb.Closed)
}

func (s *StreamSocket) call(fn func()) {
	if fn != nil {
		fn()
	}
}

func (s *StreamSocket) wantedInterest() Interest {
	if !s.state.Is(StreamConnected) {
		return InterestWrite
	}
	if len(s.sendBuf) > 0 {
		return InterestRead | InterestWrite
	}
	return InterestRead
}

func (s *StreamSocket) register(in Interest) error {
	if err := s.r.poller.add(s.fd, in); err != nil {
		return err
	}
	s.registered = true
	s.interest = in
	return nil
}

func (s *StreamSocket) setInterest(in Interest) error {
	if !s.registered {
		// сокет еще не подключается, интерес будет выставлен в Connect
		return nil
	}
	if in == s.interest {
		return nil
	}
	if err := s.r.poller.modify(s.fd, in); err != nil {
		return err
	}
	s.interest = in
	return nil
}

func (s *StreamSocket) onReady(r Ready) {
	if r&ReadyRead != 0 {
		n, err := unix.Read(s.fd, s.r.recvBuf)
		switch {
		case err != nil && isTemporary(err):
		case err != nil:
			s.r.logger.WithError(err).Debugf("fd %d: read", s.fd)
			s.closeWithCallback()
			return
		case n == 0:
			// удаленная сторона закрыла соединение
			s.closeWithCallback()
			return
		default:
			data := make([]byte, n)
			copy(data, s.r.recvBuf[:n])
			if s.cb.Data != nil {
				s.cb.Data(data)
			}
			if s.isClosed() {
				return
			}
		}
	}

	if r&(ReadyHangup|ReadyError) != 0 {
		s.closeWithCallback()
		return
	}

	if r&ReadyWrite != 0 {
		if s.state.Is(StreamConnecting) {
			soErr, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_ERROR)
			if err != nil || soErr != 0 {
				s.r.logger.Debugf("fd %d: connect failed: %v", s.fd, unix.Errno(soErr))
				s.closeWithCallback()
				return
			}
			s.transition("establish")
			s.call(s.cb.Established)
			if s.isClosed() {
				return
			}
		}
		if len(s.sendBuf) > 0 {
			n, err := unix.SendmsgN(s.fd, s.sendBuf, nil, nil, sendFlags)
			switch {
			case err != nil && isTemporary(err):
			case err != nil:
				s.r.logger.WithError(err).Debugf("fd %d: send", s.fd)
				s.closeWithCallback()
				return
			default:
				s.sendBuf = s.sendBuf[n:]
			}
		}
	}

	if err := s.setInterest(s.wantedInterest()); err != nil {
		s.r.logger.WithError(err).Warnf("fd %d: update interest", s.fd)
		s.closeWithCallback()
	}
}
