package reactor

import "time"

// Interest маска интересующих событий сокета
type Interest uint8

const (
	InterestRead Interest = 1 << iota
	InterestWrite
)

// Ready маска готовности, сообщенная ОС
type Ready uint8

const (
	ReadyRead Ready = 1 << iota
	ReadyWrite
	ReadyHangup
	ReadyError
)

func (r Ready) String() string {
	s := ""
	for _, f := range []struct {
		bit  Ready
		name string
	}{
		{ReadyRead, "R"},
		{ReadyWrite, "W"},
		{ReadyHangup, "H"},
		{ReadyError, "E"},
	} {
		if r&f.bit != 0 {
			s += f.name
		}
	}
	if s == "" {
		return "-"
	}
	return s
}

type readyEvent struct {
	fd    int
	ready Ready
}

// poller обертка над механизмом ожидания готовности ОС
type poller interface {
	add(fd int, in Interest) error
	modify(fd int, in Interest) error
	remove(fd int) error
	// wait выполняет одно ожидание. Отрицательный timeout означает бесконечное ожидание.
	wait(timeout time.Duration) ([]readyEvent, error)
	close() error
}

// timeoutMillis переводит timeout в миллисекунды для системного вызова,
// округляя вверх, чтобы не получить холостой цикл на малых значениях.
func timeoutMillis(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	ms := timeout / time.Millisecond
	if timeout%time.Millisecond != 0 {
		ms++
	}
	return int(ms)
}
