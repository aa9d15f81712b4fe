package message

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidValue значение не проходит проверку типа поля
	ErrInvalidValue = errors.New("invalid field value")
	// ErrDecode поле сообщения не удалось декодировать
	ErrDecode = errors.New("message decode failed")
	// ErrUnknownButton символ не соответствует кнопке клавиатуры
	ErrUnknownButton = errors.New("cannot map character to keypad button")
	// ErrDuplicateID два типа сообщений с одним идентификатором
	ErrDuplicateID = errors.New("duplicate message id")
	// ErrUnknownField поле с таким именем не объявлено в сообщении
	ErrUnknownField = errors.New("unknown field")
)

// ValueError ошибка проверки значения поля
type ValueError struct {
	Value  interface{}
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value %v: %s", e.Value, e.Reason)
}

func (e *ValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

// DecodeError ошибка декодирования конкретного поля сообщения
type DecodeError struct {
	MsgID ID
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode field %s of msg 0x%04X: %v", e.Field, uint32(e.MsgID), e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
