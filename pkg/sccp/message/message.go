// Package message описывает сообщения протокола SCCP (Skinny):
// типы полей, раскладку каждого сообщения на проводе и реестр
// идентификаторов сообщений.
//
// Порядок полей задается явно методом Fields каждого типа и определяет
// раскладку тела сообщения. Неизвестные идентификаторы декодируются в
// Opaque, который хранит тело без изменений.
package message

import (
	"fmt"
)

// ID числовой идентификатор сообщения
type ID uint32

func (id ID) String() string {
	return fmt.Sprintf("0x%04X", uint32(id))
}

// Message сообщение SCCP
type Message interface {
	// ID идентификатор сообщения
	ID() ID
	// Fields упорядоченный список полей, привязанных к сообщению
	Fields() []Field
}

// Opaque сообщение с неизвестным идентификатором. Тело хранится как есть.
type Opaque struct {
	MsgID ID
	Raw   []byte
}

func (m *Opaque) ID() ID          { return m.MsgID }
func (m *Opaque) Fields() []Field { return nil }

func (m *Opaque) String() string {
	return fmt.Sprintf("<Opaque (id %s)>", m.MsgID)
}

// Marshal кодирует тело сообщения: поля по порядку объявления.
func Marshal(m Message) ([]byte, error) {
	if o, ok := m.(*Opaque); ok {
		out := make([]byte, len(o.Raw))
		copy(out, o.Raw)
		return out, nil
	}

	var body []byte
	for _, f := range m.Fields() {
		b, err := f.Type.Serialize(f.Value())
		if err != nil {
			return nil, fmt.Errorf("encode field %s of msg %s: %w", f.Name, m.ID(), err)
		}
		body = append(body, b...)
	}
	return body, nil
}

// Unmarshal декодирует тело сообщения в m, продвигая смещение поле за полем.
// Ошибка любого поля возвращается как *DecodeError.
func Unmarshal(m Message, body []byte) error {
	if o, ok := m.(*Opaque); ok {
		o.Raw = make([]byte, len(body))
		copy(o.Raw, body)
		return nil
	}

	offset := 0
	for _, f := range m.Fields() {
		end := offset + f.Type.Size()
		if end > len(body) {
			end = len(body)
		}
		start := offset
		if start > len(body) {
			start = len(body)
		}
		offset += f.Type.Size()

		v, err := f.Type.Deserialize(body[start:end])
		if err == nil {
			err = f.Set(v)
		}
		if err != nil {
			return &DecodeError{MsgID: m.ID(), Field: f.Name, Err: err}
		}
	}
	return nil
}

// Get возвращает значение поля по имени
func Get(m Message, name string) (interface{}, error) {
	for _, f := range m.Fields() {
		if f.Name == name {
			return f.Value(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s in msg %s", ErrUnknownField, name, m.ID())
}

// Set проверяет и записывает значение поля по имени
func Set(m Message, name string, v interface{}) error {
	for _, f := range m.Fields() {
		if f.Name == name {
			return f.Set(v)
		}
	}
	return fmt.Errorf("%w: %s in msg %s", ErrUnknownField, name, m.ID())
}

// Name возвращает имя типа сообщения из реестра по умолчанию
func Name(m Message) string {
	if s, ok := defaultRegistry.lookup(m.ID()); ok {
		return s.Name
	}
	return "Opaque"
}
