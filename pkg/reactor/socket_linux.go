//go:build linux

package reactor

import (
	"golang.org/x/sys/unix"
)

// sendFlags не даем ядру послать SIGPIPE при записи в разорванное соединение
const sendFlags = unix.MSG_NOSIGNAL

func newSocket(typ int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, typ|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, &TransportError{Op: "socket", Err: err}
	}
	return fd, nil
}

// setSockOptStream настройки управляющего TCP соединения.
// Сигнализация короткими сообщениями, поэтому отключаем алгоритм Нейгла.
func setSockOptStream(fd int) {
	unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
}

// setSockOptDSCP устанавливает DSCP маркировку для QoS (Linux реализация)
func setSockOptDSCP(fd, dscp int) error {
	// DSCP находится в старших 6 битах TOS поля
	tos := dscp << 2
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_TOS, tos); err != nil {
		return &TransportError{Op: "setsockopt IP_TOS", Err: err}
	}

	// Высокий приоритет сокета для голосового трафика. В контейнерах может
	// быть запрещено, это не критично.
	unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_PRIORITY, 6)
	return nil
}
