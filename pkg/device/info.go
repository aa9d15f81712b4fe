package device

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/arzzra/sccp_tester/pkg/sccp/message"
)

const (
	// DefaultPort стандартный порт SCCP
	DefaultPort uint16 = 2000
	// DefaultDeviceType тип устройства по умолчанию (7940)
	DefaultDeviceType = message.DeviceType7940
	// DefaultProtoVersion версия протокола по умолчанию
	DefaultProtoVersion uint8 = 11
)

// DeviceInfo идентификация устройства
type DeviceInfo struct {
	Name         string
	Type         uint32
	ProtoVersion uint8
}

// NewDeviceInfo создает идентификацию с типом и версией протокола по умолчанию
func NewDeviceInfo(name string) DeviceInfo {
	return DeviceInfo{
		Name:         name,
		Type:         DefaultDeviceType,
		ProtoVersion: DefaultProtoVersion,
	}
}

// ConnectionInfo адрес сервера управления вызовами
type ConnectionInfo struct {
	// Host имя хоста или IPv4 адрес в текстовом виде
	Host string
	// HostIPv4 адрес, к которому подключается устройство
	HostIPv4 netip.Addr
	Port     uint16
}

// NewConnectionInfo создает адрес сервера с портом по умолчанию
func NewConnectionInfo(host string, hostIPv4 netip.Addr) ConnectionInfo {
	return ConnectionInfo{
		Host:     host,
		HostIPv4: hostIPv4,
		Port:     DefaultPort,
	}
}

// Resolver разрешает имя хоста в адреса. *net.Resolver подходит.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// NewConnectionInfoFromHostname разрешает hostname в IPv4 адрес
func NewConnectionInfoFromHostname(ctx context.Context, hostname string, resolver Resolver) (ConnectionInfo, error) {
	if addr, err := netip.ParseAddr(hostname); err == nil {
		addr = addr.Unmap()
		if !addr.Is4() {
			return ConnectionInfo{}, fmt.Errorf("host %s: not an IPv4 address", hostname)
		}
		return NewConnectionInfo(hostname, addr), nil
	}

	addrs, err := resolver.LookupNetIP(ctx, "ip4", hostname)
	if err != nil {
		return ConnectionInfo{}, fmt.Errorf("resolve %s: %w", hostname, err)
	}
	for _, addr := range addrs {
		if addr = addr.Unmap(); addr.Is4() {
			return NewConnectionInfo(hostname, addr), nil
		}
	}
	return ConnectionInfo{}, fmt.Errorf("resolve %s: no IPv4 address", hostname)
}

// AddrPort адрес для подключения
func (c ConnectionInfo) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(c.HostIPv4, c.Port)
}

func (c ConnectionInfo) String() string {
	return fmt.Sprintf("%s (%s:%d)", c.Host, c.HostIPv4, c.Port)
}
