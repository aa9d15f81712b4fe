// Package reactor однопоточный неблокирующий цикл ввода-вывода.
//
// Reactor мультиплексирует потоковые (TCP) и датаграммные (UDP) сокеты
// поверх epoll (Linux) или poll(2). Обработчики сокетов вызываются
// синхронно изнутри Poll, в порядке, в котором ОС сообщила о готовности.
// Интерес на запись держится тогда и только тогда, когда у сокета есть
// неотправленные данные.
//
// Reactor не потокобезопасен: все вызовы выполняются из одной горутины.
package reactor

import (
	"time"

	"github.com/sirupsen/logrus"
)

// recvBufferSize максимальный объем одного чтения из сокета
const recvBufferSize = 2048

// proxy сокет, зарегистрированный в реакторе
type proxy interface {
	onReady(r Ready)
	isClosed() bool
}

// Reactor цикл ожидания готовности сокетов
type Reactor struct {
	poller  poller
	sockets map[int]proxy
	logger  logrus.FieldLogger
	recvBuf []byte
	closed  bool
}

// Option опция реактора
type Option func(*Reactor)

// WithLogger задает логгер
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Reactor) {
		r.logger = logger
	}
}

// New создает реактор
func New(opts ...Option) (*Reactor, error) {
	p, err := newPoller()
	if err != nil {
		return nil, err
	}

	r := &Reactor{
		poller:  p,
		sockets: make(map[int]proxy),
		logger:  logrus.StandardLogger(),
		recvBuf: make([]byte, recvBufferSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithField("component", "reactor")
	return r, nil
}

// Poll выполняет ровно одно ожидание готовности и синхронно вызывает
// обработчики готовых сокетов. Если за timeout ничего не произошло,
// возвращается ErrTimeout. Отрицательный timeout ждет бесконечно.
func (r *Reactor) Poll(timeout time.Duration) error {
	if r.closed {
		return ErrClosed
	}

	events, err := r.poller.wait(timeout)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return ErrTimeout
	}

	// Сопоставляем дескрипторы с сокетами до вызова обработчиков: обработчик
	// может закрыть сокет, и ОС переиспользует его дескриптор для нового.
	type target struct {
		p     proxy
		ready Ready
	}
	targets := make([]target, 0, len(events))
	for _, ev := range events {
		p, ok := r.sockets[ev.fd]
		if !ok {
			r.logger.Debugf("poll event %s for unknown fd %d", ev.ready, ev.fd)
			continue
		}
		targets = append(targets, target{p: p, ready: ev.ready})
	}

	for _, t := range targets {
		if t.p.isClosed() {
			continue
		}
		t.p.onReady(t.ready)
	}
	return nil
}

// Len количество открытых сокетов
func (r *Reactor) Len() int {
	return len(r.sockets)
}

// Close закрывает все сокеты и сам реактор. Обратные вызовы не вызываются.
func (r *Reactor) Close() error {
	if r.closed {
		return nil
	}
	for _, p := range r.sockets {
		switch s := p.(type) {
		case *StreamSocket:
			s.Close()
		case *DatagramSocket:
			s.Close()
		}
	}
	r.closed = true
	return r.poller.close()
}

func (r *Reactor) attach(fd int, p proxy) {
	r.sockets[fd] = p
}

func (r *Reactor) detach(fd int) {
	delete(r.sockets, fd)
}
