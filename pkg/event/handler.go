package event

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"
)

// DefaultBufferSize емкость буфера событий по умолчанию
const DefaultBufferSize = 4096

// ErrBufferFull буфер событий переполнен, событие потеряно
var ErrBufferFull = errors.New("event: buffer full")

// UnexpectedEventError во время ожидания пришло запрещенное событие
type UnexpectedEventError struct {
	Event Event
}

func (e *UnexpectedEventError) Error() string {
	return fmt.Sprintf("unexpected event: %s", e.Event)
}

// Handler обработчик событий. Ошибка обработчика прерывает текущее ожидание.
type Handler interface {
	Handle(ev Event) error
}

// HandlerFunc функция как обработчик
type HandlerFunc func(ev Event) error

func (f HandlerFunc) Handle(ev Event) error {
	return f(ev)
}

// Null отбрасывает все события
type Null struct{}

func (Null) Handle(Event) error {
	return nil
}

// Log пишет каждое событие в лог
type Log struct {
	logger logrus.FieldLogger
}

// NewLog создает обработчик, пишущий события в лог
func NewLog(logger logrus.FieldLogger) *Log {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Log{logger: logger.WithField("component", "events")}
}

func (h *Log) Handle(ev Event) error {
	entry := h.logger.WithField("event", string(ev.Name))
	if ev.Device != nil {
		entry = entry.WithField("device", ev.Device.Name())
	}
	if ev.Data != nil {
		entry = entry.WithField("data", fmt.Sprintf("%v", ev.Data))
	}
	entry.Info("on event")
	return nil
}

// Composite передает событие всем обработчикам по порядку.
// Обработчики можно добавлять и удалять во время обработки события:
// изменения действуют со следующего события.
type Composite struct {
	handlers []Handler
}

// NewComposite создает составной обработчик
func NewComposite(handlers ...Handler) *Composite {
	c := &Composite{}
	c.Extend(handlers)
	return c
}

// Append добавляет обработчик в конец
func (c *Composite) Append(h Handler) {
	c.handlers = append(c.handlers, h)
}

// Extend добавляет обработчики в конец
func (c *Composite) Extend(handlers []Handler) {
	c.handlers = append(c.handlers, handlers...)
}

// Remove удаляет первое вхождение обработчика. Возвращает false, если
// обработчик не найден.
func (c *Composite) Remove(h Handler) bool {
	for i, cur := range c.handlers {
		if sameHandler(cur, h) {
			handlers := make([]Handler, 0, len(c.handlers)-1)
			handlers = append(handlers, c.handlers[:i]...)
			c.handlers = append(handlers, c.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveRange удаляет count обработчиков начиная с позиции start.
// Границы обрезаются по длине списка.
func (c *Composite) RemoveRange(start, count int) {
	if start < 0 {
		start = 0
	}
	end := start + count
	if end > len(c.handlers) {
		end = len(c.handlers)
	}
	if start >= end {
		return
	}
	handlers := make([]Handler, 0, len(c.handlers)-(end-start))
	handlers = append(handlers, c.handlers[:start]...)
	c.handlers = append(handlers, c.handlers[end:]...)
}

// Len количество обработчиков
func (c *Composite) Len() int {
	return len(c.handlers)
}

func (c *Composite) Handle(ev Event) error {
	// Remove и RemoveRange создают новый срез, поэтому итерация идет по снимку
	for _, h := range c.handlers {
		if err := h.Handle(ev); err != nil {
			return err
		}
	}
	return nil
}

// sameHandler сравнивает обработчики по идентичности. Функции несравнимы
// и никогда не считаются равными.
func sameHandler(a, b Handler) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Match вызывает действие для событий, удовлетворяющих предикату
type Match struct {
	matcher Matcher
	action  func(ev Event)
}

// NewMatch создает обработчик предикат-действие
func NewMatch(matcher Matcher, action func(ev Event)) *Match {
	return &Match{matcher: matcher, action: action}
}

func (h *Match) Handle(ev Event) error {
	if h.matcher(ev) {
		h.action(ev)
	}
	return nil
}

// Unexpected прерывает ожидание с UnexpectedEventError на совпавшем событии
type Unexpected struct {
	matcher Matcher
}

// NewUnexpected создает обработчик запрещенных событий
func NewUnexpected(matcher Matcher) *Unexpected {
	return &Unexpected{matcher: matcher}
}

func (h *Unexpected) Handle(ev Event) error {
	if h.matcher(ev) {
		return &UnexpectedEventError{Event: ev}
	}
	return nil
}

// Buffer ограниченная FIFO очередь событий
type Buffer struct {
	events []Event
	head   int
	size   int
}

// NewBuffer создает буфер. Емкость <= 0 заменяется на DefaultBufferSize.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &Buffer{events: make([]Event, capacity)}
}

// Handle кладет событие в конец очереди
func (b *Buffer) Handle(ev Event) error {
	if b.size == len(b.events) {
		return fmt.Errorf("%w: %s dropped", ErrBufferFull, ev.Name)
	}
	b.events[(b.head+b.size)%len(b.events)] = ev
	b.size++
	return nil
}

// Pop достает первое событие. ok равно false, если очередь пуста.
func (b *Buffer) Pop() (ev Event, ok bool) {
	if b.size == 0 {
		return Event{}, false
	}
	ev = b.events[b.head]
	b.events[b.head] = Event{}
	b.head = (b.head + 1) % len(b.events)
	b.size--
	return ev, true
}

// Len количество событий в очереди
func (b *Buffer) Len() int {
	return b.size
}

// Cap емкость очереди
func (b *Buffer) Cap() int {
	return len(b.events)
}

// Clear очищает очередь
func (b *Buffer) Clear() {
	for b.size > 0 {
		b.Pop()
	}
}
