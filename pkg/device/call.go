package device

import (
	"fmt"
	"net/netip"

	"github.com/arzzra/sccp_tester/pkg/sccp/message"
)

// lineID все вызовы эмулятора идут по первой линии
const lineID uint32 = 1

// Call активный вызов устройства
type Call struct {
	device *Device
	// ID идентификатор вызова, назначенный сервером
	ID uint32
	// RemoteRTP адрес, куда передавать RTP. Пуст до StartMediaTransmission.
	RemoteRTP netip.AddrPort
}

// Device устройство, которому принадлежит вызов
func (c *Call) Device() *Device {
	return c.device
}

// Answer отвечает на вызов
func (c *Call) Answer() error {
	return c.device.send(&message.SoftkeyEvent{
		SoftkeyEvent: message.SoftkeyAnswer,
		LineID:       lineID,
		CallID:       c.ID,
	})
}

// Hangup завершает вызов
func (c *Call) Hangup() error {
	return c.device.send(&message.SoftkeyEvent{
		SoftkeyEvent: message.SoftkeyEndCall,
		LineID:       lineID,
		CallID:       c.ID,
	})
}

func (c *Call) String() string {
	return fmt.Sprintf("call %d of %s", c.ID, c.device.Name())
}
