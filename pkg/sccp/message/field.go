package message

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// FieldType описывает кодирование одного поля сообщения на проводе.
//
// Все целочисленные типы кодируются в little-endian фиксированной ширины,
// байтовые строки имеют фиксированную емкость и дополняются нулями.
type FieldType interface {
	// Size размер закодированного поля в байтах
	Size() int
	// Default значение поля по умолчанию
	Default() interface{}
	// Check проверяет тип и диапазон значения
	Check(v interface{}) error
	// Serialize кодирует значение
	Serialize(v interface{}) ([]byte, error)
	// Deserialize декодирует значение из data
	Deserialize(data []byte) (interface{}, error)
}

// Uint32Type 32-битное беззнаковое целое
type Uint32Type struct{}

func (Uint32Type) Size() int            { return 4 }
func (Uint32Type) Default() interface{} { return uint32(0) }

func (t Uint32Type) Check(v interface{}) error {
	_, err := toUint(v, math.MaxUint32)
	return err
}

func (t Uint32Type) Serialize(v interface{}) ([]byte, error) {
	n, err := toUint(v, math.MaxUint32)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(n))
	return buf, nil
}

func (t Uint32Type) Deserialize(data []byte) (interface{}, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("need 4 bytes, got %d", len(data))
	}
	return binary.LittleEndian.Uint32(data), nil
}

// Uint8Type 8-битное беззнаковое целое
type Uint8Type struct{}

func (Uint8Type) Size() int            { return 1 }
func (Uint8Type) Default() interface{} { return uint8(0) }

func (t Uint8Type) Check(v interface{}) error {
	_, err := toUint(v, math.MaxUint8)
	return err
}

func (t Uint8Type) Serialize(v interface{}) ([]byte, error) {
	n, err := toUint(v, math.MaxUint8)
	if err != nil {
		return nil, err
	}
	return []byte{byte(n)}, nil
}

func (t Uint8Type) Deserialize(data []byte) (interface{}, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("need 1 byte, got 0")
	}
	return data[0], nil
}

// BytesType байтовая строка фиксированной емкости.
// При кодировании дополняется нулями справа, при декодировании
// завершающие нули отбрасываются.
type BytesType struct {
	Capacity int
}

func (t BytesType) Size() int            { return t.Capacity }
func (t BytesType) Default() interface{} { return "" }

func (t BytesType) Check(v interface{}) error {
	_, err := t.toBytes(v)
	return err
}

func (t BytesType) Serialize(v interface{}) ([]byte, error) {
	b, err := t.toBytes(v)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, t.Capacity)
	copy(buf, b)
	return buf, nil
}

func (t BytesType) Deserialize(data []byte) (interface{}, error) {
	return string(bytes.TrimRight(data, "\x00")), nil
}

func (t BytesType) toBytes(v interface{}) ([]byte, error) {
	var b []byte
	switch s := v.(type) {
	case string:
		b = []byte(s)
	case []byte:
		b = s
	default:
		return nil, &ValueError{Value: v, Reason: fmt.Sprintf("expected string type; got %T", v)}
	}
	if len(b) > t.Capacity {
		return nil, &ValueError{Value: v, Reason: fmt.Sprintf("too long for %d bytes", t.Capacity)}
	}
	return b, nil
}

// toUint приводит целое значение любого знакового/беззнакового типа к uint64
// с проверкой диапазона [0, max].
func toUint(v interface{}, max uint64) (uint64, error) {
	var (
		n   uint64
		neg bool
	)
	switch x := v.(type) {
	case int:
		neg, n = x < 0, uint64(x)
	case int8:
		neg, n = x < 0, uint64(x)
	case int16:
		neg, n = x < 0, uint64(x)
	case int32:
		neg, n = x < 0, uint64(x)
	case int64:
		neg, n = x < 0, uint64(x)
	case uint:
		n = uint64(x)
	case uint8:
		n = uint64(x)
	case uint16:
		n = uint64(x)
	case uint32:
		n = uint64(x)
	case uint64:
		n = x
	default:
		return 0, &ValueError{Value: v, Reason: fmt.Sprintf("expected integer type; got %T", v)}
	}
	if neg || n > max {
		return 0, &ValueError{Value: v, Reason: "out of range"}
	}
	return n, nil
}

// Field именованное поле сообщения, привязанное к члену структуры
type Field struct {
	Name string
	Type FieldType
	ptr  interface{}
}

// Uint32 объявляет 32-битное поле
func Uint32(name string, p *uint32) Field {
	return Field{Name: name, Type: Uint32Type{}, ptr: p}
}

// Uint8 объявляет 8-битное поле
func Uint8(name string, p *uint8) Field {
	return Field{Name: name, Type: Uint8Type{}, ptr: p}
}

// Bytes объявляет байтовую строку емкостью n
func Bytes(name string, n int, p *string) Field {
	return Field{Name: name, Type: BytesType{Capacity: n}, ptr: p}
}

// Value возвращает текущее значение поля
func (f Field) Value() interface{} {
	switch p := f.ptr.(type) {
	case *uint32:
		return *p
	case *uint8:
		return *p
	case *string:
		return *p
	}
	return f.Type.Default()
}

// Set проверяет значение и записывает его в поле
func (f Field) Set(v interface{}) error {
	if err := f.Type.Check(v); err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	switch p := f.ptr.(type) {
	case *uint32:
		n, _ := toUint(v, math.MaxUint32)
		*p = uint32(n)
	case *uint8:
		n, _ := toUint(v, math.MaxUint8)
		*p = uint8(n)
	case *string:
		switch s := v.(type) {
		case string:
			*p = s
		case []byte:
			*p = string(s)
		}
	default:
		return fmt.Errorf("field %s: unbound", f.Name)
	}
	return nil
}
