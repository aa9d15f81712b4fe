package device

import (
	"errors"
	"fmt"

	"github.com/arzzra/sccp_tester/pkg/sccp/message"
)

var (
	// ErrAlreadyConnected Connect вызывается не более одного раза за жизнь устройства
	ErrAlreadyConnected = errors.New("device: already connected")
	// ErrNotConnected у устройства нет управляющего соединения
	ErrNotConnected = errors.New("device: not connected")
	// ErrNoRTPChannel RTP канал не открыт
	ErrNoRTPChannel = errors.New("device: no RTP channel")
	// ErrNoRemoteRTP для вызова не известен удаленный RTP адрес
	ErrNoRemoteRTP = errors.New("device: no remote RTP address")
)

// ProtocolStateError сообщение ссылается на неизвестный вызов или конфликтует
// с текущим состоянием. Публикуется как данные события ERROR.
type ProtocolStateError struct {
	MsgID  message.ID
	Reason string
}

func (e *ProtocolStateError) Error() string {
	return fmt.Sprintf("protocol state error on msg %s: %s", e.MsgID, e.Reason)
}
