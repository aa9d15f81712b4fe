package message

import "fmt"

// Типы устройств
const (
	DeviceType7960   uint32 = 7
	DeviceType7940   uint32 = 8
	DeviceType7941   uint32 = 115
	DeviceType7911   uint32 = 307
	DeviceType7941GE uint32 = 309
	DeviceType7931   uint32 = 348
	DeviceType7921   uint32 = 365
	DeviceType7906   uint32 = 369
	DeviceType7962   uint32 = 404
	DeviceType7937   uint32 = 431
	DeviceType7942   uint32 = 434
	DeviceType7905   uint32 = 20000
	DeviceType7970   uint32 = 30006
	DeviceType7912   uint32 = 30007
	DeviceType7961   uint32 = 30018
)

// Состояния вызова в CallState
const (
	StateOffhook    uint32 = 1
	StateOnhook     uint32 = 2
	StateRingout    uint32 = 3
	StateRingin     uint32 = 4
	StateConnected  uint32 = 5
	StateBusy       uint32 = 6
	StateCongestion uint32 = 7
	StateHold       uint32 = 8
	StateCallWait   uint32 = 9
	StateTransfer   uint32 = 10
	StatePark       uint32 = 11
	StateProgress   uint32 = 12
	StateInvalid    uint32 = 14
)

// События софт-клавиш
const (
	SoftkeyNone         uint32 = 0x00
	SoftkeyRedial       uint32 = 0x01
	SoftkeyNewCall      uint32 = 0x02
	SoftkeyHold         uint32 = 0x03
	SoftkeyTransfer     uint32 = 0x04
	SoftkeyCfwdAll      uint32 = 0x05
	SoftkeyCfwdBusy     uint32 = 0x06
	SoftkeyCfwdNoAnswer uint32 = 0x07
	SoftkeyBackspace    uint32 = 0x08
	SoftkeyEndCall      uint32 = 0x09
	SoftkeyResume       uint32 = 0x0A
	SoftkeyAnswer       uint32 = 0x0B
	SoftkeyInfo         uint32 = 0x0C
	SoftkeyConference   uint32 = 0x0D
	SoftkeyPark         uint32 = 0x0E
	SoftkeyJoin         uint32 = 0x0F
	SoftkeyMeetMe       uint32 = 0x10
	SoftkeyPickup       uint32 = 0x11
	SoftkeyGroupPickup  uint32 = 0x12
	SoftkeyCancel       uint32 = 0x08
	SoftkeyDND          uint32 = 0x14
)

// Кнопки клавиатуры, не являющиеся цифрами
const (
	ButtonStar  uint32 = 14
	ButtonPound uint32 = 15
)

// ButtonFromChar отображает символ набора на кнопку клавиатуры
func ButtonFromChar(c rune) (uint32, error) {
	switch {
	case c >= '0' && c <= '9':
		return uint32(c - '0'), nil
	case c == '*':
		return ButtonStar, nil
	case c == '#':
		return ButtonPound, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownButton, c)
}
