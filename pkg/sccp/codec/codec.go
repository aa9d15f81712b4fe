package codec

import (
	"fmt"

	"github.com/arzzra/sccp_tester/pkg/sccp/message"
)

// Codec кодирует сообщения в кадры и декодирует кадры в сообщения
type Codec struct {
	registry *message.Registry
}

// New создает Codec. При nil используется реестр по умолчанию.
func New(registry *message.Registry) *Codec {
	if registry == nil {
		registry = message.DefaultRegistry()
	}
	return &Codec{registry: registry}
}

// Registry возвращает реестр сообщений
func (c *Codec) Registry() *message.Registry {
	return c.registry
}

// Encode кодирует одно или несколько сообщений в один буфер
func (c *Codec) Encode(msgs ...message.Message) ([]byte, error) {
	var out []byte
	for _, m := range msgs {
		body, err := message.Marshal(m)
		if err != nil {
			return nil, err
		}
		if len(body)+msgIDSize > MaxTotalSize {
			return nil, fmt.Errorf("msg %s: body of %d bytes exceeds frame limit", m.ID(), len(body))
		}
		out = append(out, Frame{MsgID: m.ID(), Body: body}.Bytes()...)
	}
	return out, nil
}

// Decode декодирует тело кадра в сообщение
func (c *Codec) Decode(f Frame) (message.Message, error) {
	return c.registry.Decode(f.MsgID, f.Body)
}
