// Package event события устройств, обработчики событий и условия ожидания.
//
// Устройства публикуют события синхронно изнутри цикла реактора. Сценарий
// потребляет их в своем темпе через Buffer: цикл ожидания достает события
// по одному, передает их в Composite с обработчиками текущего ожидания и
// проверяет условие после каждого события.
package event

import (
	"fmt"
	"net/netip"

	"github.com/arzzra/sccp_tester/pkg/rtp"
	"github.com/arzzra/sccp_tester/pkg/sccp/message"
)

// Name тип события
type Name string

const (
	ConnectionSuccess   Name = "CONNECTION_SUCCESS"
	ConnectionFailure   Name = "CONNECTION_FAILURE"
	ConnectionClosed    Name = "CONNECTION_CLOSED"
	RegistrationSuccess Name = "REGISTRATION_SUCCESS"
	RegistrationFailure Name = "REGISTRATION_FAILURE"
	CallIncoming        Name = "CALL_INCOMING"
	CallOutgoing        Name = "CALL_OUTGOING"
	CallConnected       Name = "CALL_CONNECTED"
	CallHangup          Name = "CALL_HANGUP"
	MessageReceived     Name = "SCCP_MSG_RECEIVED"
	RTPPacketReceived   Name = "RTP_PACKET_RECEIVED"
	Error               Name = "ERROR"
)

// Names все типы событий
func Names() []Name {
	return []Name{
		ConnectionSuccess, ConnectionFailure, ConnectionClosed,
		RegistrationSuccess, RegistrationFailure,
		CallIncoming, CallOutgoing, CallConnected, CallHangup,
		MessageReceived, RTPPacketReceived, Error,
	}
}

// Source источник события, обычно устройство
type Source interface {
	Name() string
}

// Event событие устройства.
//
// Data зависит от Name:
//   - MessageReceived: message.Message
//   - RTPPacketReceived: RTPData
//   - CallIncoming, CallOutgoing, CallConnected, CallHangup: идентификатор звонка (uint32)
//   - Error: error
//
// Для остальных событий Data равно nil.
type Event struct {
	Name   Name
	Device Source
	Data   any
}

// RTPData принятый RTP пакет и адрес отправителя
type RTPData struct {
	Packet *rtp.Packet
	From   netip.AddrPort
}

func (e Event) String() string {
	device := "<nil>"
	if e.Device != nil {
		device = e.Device.Name()
	}
	if e.Data == nil {
		return fmt.Sprintf("%s from %s", e.Name, device)
	}
	return fmt.Sprintf("%s from %s: %v", e.Name, device, e.Data)
}

// Matcher предикат над событием
type Matcher func(ev Event) bool

// NameIs совпадает с событием любого из перечисленных типов
func NameIs(names ...Name) Matcher {
	return func(ev Event) bool {
		for _, n := range names {
			if ev.Name == n {
				return true
			}
		}
		return false
	}
}

// FromDevice совпадает с событием указанного устройства
func FromDevice(src Source) Matcher {
	return func(ev Event) bool {
		return ev.Device == src
	}
}

// And совпадает, когда совпали все предикаты
func And(matchers ...Matcher) Matcher {
	return func(ev Event) bool {
		for _, m := range matchers {
			if !m(ev) {
				return false
			}
		}
		return true
	}
}

// Or совпадает, когда совпал хотя бы один предикат
func Or(matchers ...Matcher) Matcher {
	return func(ev Event) bool {
		for _, m := range matchers {
			if m(ev) {
				return true
			}
		}
		return false
	}
}

// MessageIs совпадает с MessageReceived, несущим сообщение с одним из идентификаторов
func MessageIs(ids ...message.ID) Matcher {
	return func(ev Event) bool {
		if ev.Name != MessageReceived {
			return false
		}
		msg, ok := ev.Data.(message.Message)
		if !ok {
			return false
		}
		for _, id := range ids {
			if msg.ID() == id {
				return true
			}
		}
		return false
	}
}
