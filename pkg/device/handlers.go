package device

import (
	"net/netip"

	"github.com/sirupsen/logrus"

	"github.com/arzzra/sccp_tester/pkg/event"
	"github.com/arzzra/sccp_tester/pkg/sccp/message"
)

func (d *Device) onRegisterAck(_ *message.RegisterAck) {
	if d.registered {
		d.logger.Warn("registration succeed but already registered")
	} else {
		d.metrics.Registered(1)
	}
	d.registered = true
	d.publish(event.RegistrationSuccess, nil)
}

func (d *Device) onRegisterRej(m *message.RegisterRej) {
	d.logger.Warnf("registration rejected: %s", m.ErrMsg)
	d.publish(event.RegistrationFailure, nil)
}

func (d *Device) onCallState(m *message.CallState) {
	call, found := d.FindCall(m.CallID)
	log := d.logger.WithFields(logrus.Fields{"call_id": m.CallID, "call_state": m.CallState})

	switch m.CallState {
	case message.StateOffhook:
		if found {
			log.Warn("call state is offhook but call already exists")
			return
		}
		d.addCall(m.CallID)
	case message.StateOnhook:
		if !found {
			log.Warn("call state is onhook but call doesn't exist")
			return
		}
		d.removeCall(call)
		d.publish(event.CallHangup, m.CallID)
	case message.StateRingin:
		if !found {
			d.addCall(m.CallID)
		}
		d.publish(event.CallIncoming, m.CallID)
	case message.StateRingout:
		d.publish(event.CallOutgoing, m.CallID)
	case message.StateConnected:
		d.publish(event.CallConnected, m.CallID)
	default:
		log.Debug("ignoring call state")
	}
}

func (d *Device) addCall(callID uint32) {
	d.calls = append(d.calls, &Call{device: d, ID: callID})
}

func (d *Device) removeCall(call *Call) {
	for i, c := range d.calls {
		if c == call {
			d.calls = append(d.calls[:i], d.calls[i+1:]...)
			return
		}
	}
}

func (d *Device) onOpenReceiveChannel(m *message.OpenReceiveChannel) {
	if _, ok := d.FindCall(m.ConferenceID); !ok {
		d.publishError(&ProtocolStateError{MsgID: m.ID(), Reason: "open receive channel msg could not be mapped to a call"})
		return
	}
	if d.rtpSock != nil {
		d.publishError(&ProtocolStateError{MsgID: m.ID(), Reason: "RTP channel already open"})
		return
	}

	local, err := d.sock.LocalAddr()
	if err != nil {
		d.publishError(err)
		return
	}
	sock, err := d.reactor.NewDatagramSocket(d.onRTPData)
	if err != nil {
		d.publishError(err)
		return
	}
	if err := sock.Bind(netip.AddrPortFrom(local.Addr(), 0)); err != nil {
		sock.Close()
		d.publishError(err)
		return
	}
	if d.rtpDSCP > 0 {
		if err := sock.SetDSCP(d.rtpDSCP); err != nil {
			d.logger.WithError(err).Warn("set RTP DSCP")
		}
	}
	bound, err := sock.LocalAddr()
	if err != nil {
		sock.Close()
		d.publishError(err)
		return
	}

	d.rtpSock = sock
	d.metrics.RTPChannels(1)
	d.logger.Infof("RTP channel open on %s", bound)

	ip := bound.Addr().As4()
	ack := &message.OpenReceiveChannelAck{
		IPAddr:     string(ip[:]),
		Port:       uint32(bound.Port()),
		PassThruID: m.PartyID,
	}
	if err := d.send(ack); err != nil {
		d.logger.WithError(err).Warn("send OpenReceiveChannelAck")
	}
}

func (d *Device) onCloseReceiveChannel(m *message.CloseReceiveChannel) {
	if d.rtpSock == nil {
		d.publishError(&ProtocolStateError{MsgID: m.ID(), Reason: "no RTP channel to close"})
		return
	}
	d.closeRTP()
	d.logger.Info("RTP channel closed")
}

func (d *Device) onStartMediaTransmission(m *message.StartMediaTransmission) {
	call, ok := d.FindCall(m.ConferenceID)
	if !ok {
		d.publishError(&ProtocolStateError{MsgID: m.ID(), Reason: "start media transmission msg could not be mapped to a call"})
		return
	}
	call.RemoteRTP = netip.AddrPortFrom(IPv4FromBytes(m.RemoteIP), uint16(m.RemotePort))
	d.logger.Infof("remote RTP for call %d: %s", call.ID, call.RemoteRTP)
}

// onStopMediaTransmission только проверяет вызов: удаленный адрес сохраняется
func (d *Device) onStopMediaTransmission(m *message.StopMediaTransmission) {
	if _, ok := d.FindCall(m.ConferenceID); !ok {
		d.publishError(&ProtocolStateError{MsgID: m.ID(), Reason: "stop media transmission msg could not be mapped to a call"})
	}
}

// IPv4FromBytes восстанавливает адрес из поля bytes(4). Нулевые байты в конце
// отрезаются при декодировании, поэтому поле дополняется до 4 байт.
func IPv4FromBytes(s string) netip.Addr {
	var ip [4]byte
	copy(ip[:], s)
	return netip.AddrFrom4(ip)
}
