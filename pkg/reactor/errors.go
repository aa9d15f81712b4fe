package reactor

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout Poll не дождался ни одного события за отведенное время
	ErrTimeout = errors.New("reactor: poll timeout")
	// ErrClosed операция над закрытым сокетом или реактором
	ErrClosed = errors.New("reactor: socket closed")
	// ErrNotConnected отправка через неподключенный сокет
	ErrNotConnected = errors.New("reactor: not connected")
	// ErrInvalidState операция недопустима в текущем состоянии сокета
	ErrInvalidState = errors.New("reactor: invalid socket state")
	// ErrAddressFamily поддерживаются только IPv4 адреса
	ErrAddressFamily = errors.New("reactor: only IPv4 addresses are supported")
)

// TransportError ошибка системного вызова при работе с сокетом
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("reactor %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
