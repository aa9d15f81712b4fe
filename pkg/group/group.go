// Package group управление набором устройств на общем реакторе.
//
// Устройства группы публикуют события в общий буфер. Методы ожидания
// достают события из буфера по одному, передают их составному обработчику
// (постоянные обработчики плюс обработчики текущего ожидания) и проверяют
// условие после каждого события. Непрочитанные события остаются в буфере
// для следующего ожидания. Когда буфер пуст, группа крутит реактор.
package group

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arzzra/sccp_tester/pkg/device"
	"github.com/arzzra/sccp_tester/pkg/event"
	"github.com/arzzra/sccp_tester/pkg/reactor"
)

// DefaultTimeout время ожидания по умолчанию
const DefaultTimeout = 10 * time.Second

// Group набор устройств с общим реактором и буфером событий
type Group struct {
	reactor *reactor.Reactor
	buffer  *event.Buffer
	handler *event.Composite
	devices []*device.Device
	timeout time.Duration
	logger  logrus.FieldLogger
}

// Option опция группы
type Option func(*Group)

// WithTimeout задает время ожидания по умолчанию
func WithTimeout(timeout time.Duration) Option {
	return func(g *Group) {
		g.timeout = timeout
	}
}

// WithBufferSize задает емкость буфера событий
func WithBufferSize(size int) Option {
	return func(g *Group) {
		g.buffer = event.NewBuffer(size)
	}
}

// WithLogger задает логгер
func WithLogger(logger logrus.FieldLogger) Option {
	return func(g *Group) {
		g.logger = logger
	}
}

// New создает группу. handler получает все события, прочитанные из буфера;
// nil означает event.Null.
func New(r *reactor.Reactor, handler event.Handler, opts ...Option) *Group {
	if handler == nil {
		handler = event.Null{}
	}
	g := &Group{
		reactor: r,
		handler: event.NewComposite(handler),
		timeout: DefaultTimeout,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.buffer == nil {
		g.buffer = event.NewBuffer(event.DefaultBufferSize)
	}
	g.logger = g.logger.WithField("component", "group")
	return g
}

// Reactor общий реактор группы
func (g *Group) Reactor() *reactor.Reactor {
	return g.reactor
}

// Buffer буфер событий устройств
func (g *Group) Buffer() *event.Buffer {
	return g.buffer
}

// Devices устройства группы в порядке добавления
func (g *Group) Devices() []*device.Device {
	out := make([]*device.Device, len(g.devices))
	copy(out, g.devices)
	return out
}

// AddDevice добавляет устройство, его события начинают попадать в буфер
func (g *Group) AddDevice(d *device.Device) {
	d.SetHandler(g.buffer)
	g.devices = append(g.devices, d)
}

// RemoveDevice отключает устройство от буфера и закрывает его
func (g *Group) RemoveDevice(d *device.Device) bool {
	for i, cur := range g.devices {
		if cur == d {
			g.deinit(d)
			g.devices = append(g.devices[:i], g.devices[i+1:]...)
			return true
		}
	}
	return false
}

// Close закрывает все устройства группы. События закрытия не публикуются.
func (g *Group) Close() {
	for _, d := range g.devices {
		g.deinit(d)
	}
	g.devices = nil
}

func (g *Group) deinit(d *device.Device) {
	d.SetHandler(nil)
	d.Close()
}

// AddHandler добавляет постоянный обработчик
func (g *Group) AddHandler(h event.Handler) {
	g.handler.Append(h)
}

// RemoveHandler удаляет постоянный обработчик
func (g *Group) RemoveHandler(h event.Handler) bool {
	return g.handler.Remove(h)
}

func (g *Group) timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return g.timeout
	}
	return timeout
}

// ConnectAll подключает все устройства и ждет CONNECTION_SUCCESS от каждого.
// Первый CONNECTION_FAILURE прерывает ожидание с *event.UnexpectedEventError.
func (g *Group) ConnectAll(timeout time.Duration) error {
	for _, d := range g.devices {
		if err := d.Connect(); err != nil {
			if errors.Is(err, device.ErrAlreadyConnected) {
				return err
			}
			// CONNECTION_FAILURE уже в буфере и прервет ожидание
			g.logger.WithError(err).Warnf("connect %s", d.Name())
		}
	}
	return g.waitForCount(event.ConnectionSuccess, event.ConnectionFailure, timeout)
}

// RegisterAll регистрирует все устройства и ждет REGISTRATION_SUCCESS от каждого.
// Первый REGISTRATION_FAILURE прерывает ожидание с *event.UnexpectedEventError.
func (g *Group) RegisterAll(timeout time.Duration) error {
	for _, d := range g.devices {
		if err := d.Register(); err != nil {
			return fmt.Errorf("register %s: %w", d.Name(), err)
		}
	}
	return g.waitForCount(event.RegistrationSuccess, event.RegistrationFailure, timeout)
}

func (g *Group) waitForCount(success, failure event.Name, timeout time.Duration) error {
	cond := event.NewInteger(0, len(g.devices), event.Eq)
	handlers := []event.Handler{
		event.NewMatch(event.NameIs(success), func(event.Event) { cond.Add(1) }),
		event.NewUnexpected(event.NameIs(failure)),
	}
	return g.WaitForConditionWithHandlers(cond, handlers, timeout)
}

// Wait выполняет один такт реактора
func (g *Group) Wait(timeout time.Duration) error {
	return g.reactor.Poll(g.timeoutOrDefault(timeout))
}

// WaitForCondition читает события из буфера, пока cond не станет истинным.
// Когда буфер пуст, крутит реактор до общего срока timeout. Истечение срока
// возвращает reactor.ErrTimeout, ошибка обработчика возвращается как есть.
func (g *Group) WaitForCondition(cond event.Condition, timeout time.Duration) error {
	if cond.Satisfied() {
		return nil
	}
	timeout = g.timeoutOrDefault(timeout)
	deadline := time.Now().Add(timeout)

	for {
		for {
			ev, ok := g.buffer.Pop()
			if !ok {
				break
			}
			if err := g.handler.Handle(ev); err != nil {
				return err
			}
			if cond.Satisfied() {
				return nil
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("%w: condition not met in %s", reactor.ErrTimeout, timeout)
		}
		if err := g.reactor.Poll(remaining); err != nil {
			if errors.Is(err, reactor.ErrTimeout) {
				return fmt.Errorf("%w: condition not met in %s", reactor.ErrTimeout, timeout)
			}
			return err
		}
	}
}

// WaitForConditionWithHandlers как WaitForCondition, но на время ожидания
// добавляет handlers. При любом исходе удаляются ровно добавленные позиции.
func (g *Group) WaitForConditionWithHandlers(cond event.Condition, handlers []event.Handler, timeout time.Duration) error {
	start := g.handler.Len()
	g.handler.Extend(handlers)
	defer g.handler.RemoveRange(start, len(handlers))
	return g.WaitForCondition(cond, timeout)
}

// WaitForEvent ждет первое событие, удовлетворяющее matcher
func (g *Group) WaitForEvent(matcher event.Matcher, timeout time.Duration) error {
	cond := event.NewBool(false)
	h := event.NewMatch(matcher, func(event.Event) { cond.Set(true) })
	return g.WaitForConditionWithHandlers(cond, []event.Handler{h}, timeout)
}

// WaitForAllEvents ждет, пока каждый предикат совпадет хотя бы с одним событием
func (g *Group) WaitForAllEvents(matchers []event.Matcher, timeout time.Duration) error {
	cond := event.NewMatchAll(matchers...)
	return g.WaitForConditionWithHandlers(cond, []event.Handler{cond}, timeout)
}
