// Package codec разбивает поток байт управляющего соединения SCCP на
// кадры и кодирует/декодирует сообщения через реестр.
//
// Кадр: [total-size:u32-le][reserved:u32-le=0][message-id:u32-le][body],
// где длина body равна total-size-4, а total-size лежит в [4, 2000].
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/arzzra/sccp_tester/pkg/sccp/message"
)

const (
	lengthSize   = 4
	reservedSize = 4
	msgIDSize    = 4

	// HeaderSize размер заголовка кадра
	HeaderSize = lengthSize + reservedSize + msgIDSize

	// MinTotalSize минимальное значение поля total-size
	MinTotalSize = msgIDSize
	// MaxTotalSize максимальное значение поля total-size
	MaxTotalSize = 2000
)

// ErrFraming поток содержит некорректную длину кадра
var ErrFraming = errors.New("framing error")

// FramingError недопустимое значение total-size. Соединение считается поврежденным.
type FramingError struct {
	Size uint32
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("invalid length: %d", e.Size)
}

func (e *FramingError) Is(target error) bool {
	return target == ErrFraming
}

// Frame один кадр управляющего соединения
type Frame struct {
	MsgID message.ID
	Body  []byte
}

// Bytes кодирует кадр с заголовком
func (f Frame) Bytes() []byte {
	buf := make([]byte, HeaderSize+len(f.Body))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(f.Body)+msgIDSize))
	binary.LittleEndian.PutUint32(buf[4:8], 0)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(f.MsgID))
	copy(buf[HeaderSize:], f.Body)
	return buf
}

// Framer накапливает байты потока и выделяет из них целые кадры
type Framer struct {
	buf []byte
}

// NewFramer создает пустой Framer
func NewFramer() *Framer {
	return &Framer{}
}

// Append добавляет прочитанные из сокета данные
func (f *Framer) Append(data []byte) {
	f.buf = append(f.buf, data...)
}

// Buffered количество накопленных, еще не разобранных байт
func (f *Framer) Buffered() int {
	return len(f.buf)
}

// Next выделяет следующий кадр. Возвращает ok=false, если данных
// пока недостаточно. *FramingError означает, что поток поврежден.
func (f *Framer) Next() (Frame, bool, error) {
	if len(f.buf) < lengthSize {
		return Frame{}, false, nil
	}

	size := binary.LittleEndian.Uint32(f.buf[:lengthSize])
	if size < MinTotalSize || size > MaxTotalSize {
		return Frame{}, false, &FramingError{Size: size}
	}

	total := lengthSize + reservedSize + int(size)
	if len(f.buf) < total {
		return Frame{}, false, nil
	}

	frame := Frame{
		MsgID: message.ID(binary.LittleEndian.Uint32(f.buf[8:12])),
		Body:  make([]byte, total-HeaderSize),
	}
	copy(frame.Body, f.buf[HeaderSize:total])

	// сдвигаем буфер без удержания уже разобранных данных
	rest := len(f.buf) - total
	copy(f.buf, f.buf[total:])
	f.buf = f.buf[:rest]

	return frame, true, nil
}

// Split добавляет данные и выделяет все готовые кадры
func (f *Framer) Split(data []byte) ([]Frame, error) {
	f.Append(data)

	var frames []Frame
	for {
		frame, ok, err := f.Next()
		if err != nil {
			return frames, err
		}
		if !ok {
			return frames, nil
		}
		frames = append(frames, frame)
	}
}
