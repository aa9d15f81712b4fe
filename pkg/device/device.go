// Package device эмулятор SCCP телефона.
//
// Device владеет одним управляющим TCP соединением с сервером управления
// вызовами, ведет состояние регистрации и список активных вызовов,
// открывает RTP канал по команде сервера и публикует события в
// event.Handler. Все методы вызываются из горутины, крутящей реактор.
package device

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"github.com/arzzra/sccp_tester/pkg/event"
	"github.com/arzzra/sccp_tester/pkg/metrics"
	"github.com/arzzra/sccp_tester/pkg/reactor"
	"github.com/arzzra/sccp_tester/pkg/rtp"
	"github.com/arzzra/sccp_tester/pkg/sccp/codec"
	"github.com/arzzra/sccp_tester/pkg/sccp/message"
)

// Состояния управляющего соединения
const (
	StateDisconnected = "disconnected"
	StateConnecting   = "connecting"
	StateConnected    = "connected"
	StateClosed       = "closed"
)

// Device эмулируемый SCCP телефон
type Device struct {
	info    DeviceInfo
	conn    ConnectionInfo
	reactor *reactor.Reactor
	codec   *codec.Codec
	framer  *codec.Framer
	logger  logrus.FieldLogger
	metrics *metrics.Collector
	rtpDSCP int

	state      *fsm.FSM
	sock       *reactor.StreamSocket
	rtpSock    *reactor.DatagramSocket
	calls      []*Call
	registered bool

	handler  event.Handler
	handlers map[message.ID]func(message.Message)
}

// Option опция устройства
type Option func(*Device)

// WithLogger задает логгер
func WithLogger(logger logrus.FieldLogger) Option {
	return func(d *Device) {
		d.logger = logger
	}
}

// WithMetrics задает сборщик метрик
func WithMetrics(c *metrics.Collector) Option {
	return func(d *Device) {
		d.metrics = c
	}
}

// WithCodec задает кодек сообщений
func WithCodec(c *codec.Codec) Option {
	return func(d *Device) {
		d.codec = c
	}
}

// WithRTPDSCP задает DSCP маркировку RTP пакетов. 0 оставляет маркировку ОС.
func WithRTPDSCP(dscp int) Option {
	return func(d *Device) {
		d.rtpDSCP = dscp
	}
}

// WithHandler задает получателя событий
func WithHandler(h event.Handler) Option {
	return func(d *Device) {
		d.handler = h
	}
}

// New создает устройство. Соединение открывается в Connect.
func New(r *reactor.Reactor, info DeviceInfo, conn ConnectionInfo, opts ...Option) *Device {
	d := &Device{
		info:    info,
		conn:    conn,
		reactor: r,
		framer:  codec.NewFramer(),
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.codec == nil {
		d.codec = codec.New(nil)
	}
	d.logger = d.logger.WithFields(logrus.Fields{
		"component": "device",
		"device":    info.Name,
	})

	d.state = fsm.NewFSM(
		StateDisconnected,
		fsm.Events{
			{Name: "connect", Src: []string{StateDisconnected}, Dst: StateConnecting},
			{Name: "establish", Src: []string{StateConnecting}, Dst: StateConnected},
			{Name: "close", Src: []string{StateDisconnected, StateConnecting, StateConnected}, Dst: StateClosed},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				d.logger.Debugf("connection state %s -> %s", e.Src, e.Dst)
			},
		},
	)

	d.handlers = map[message.ID]func(message.Message){
		message.RegisterAckID:            handle(d.onRegisterAck),
		message.RegisterRejID:            handle(d.onRegisterRej),
		message.CallStateID:              handle(d.onCallState),
		message.OpenReceiveChannelID:     handle(d.onOpenReceiveChannel),
		message.CloseReceiveChannelID:    handle(d.onCloseReceiveChannel),
		message.StartMediaTransmissionID: handle(d.onStartMediaTransmission),
		message.StopMediaTransmissionID:  handle(d.onStopMediaTransmission),
	}
	return d
}

// handle приводит обработчик конкретного сообщения к общему виду
func handle[T message.Message](fn func(T)) func(message.Message) {
	return func(m message.Message) {
		if msg, ok := m.(T); ok {
			fn(msg)
		}
	}
}

// Name имя устройства
func (d *Device) Name() string {
	return d.info.Name
}

// Info идентификация устройства
func (d *Device) Info() DeviceInfo {
	return d.info
}

// ConnectionInfo адрес сервера
func (d *Device) ConnectionInfo() ConnectionInfo {
	return d.conn
}

// State состояние управляющего соединения
func (d *Device) State() string {
	return d.state.Current()
}

// Registered получен ли RegisterAck
func (d *Device) Registered() bool {
	return d.registered
}

// Calls активные вызовы в порядке создания
func (d *Device) Calls() []*Call {
	calls := make([]*Call, len(d.calls))
	copy(calls, d.calls)
	return calls
}

// FindCall ищет активный вызов по идентификатору
func (d *Device) FindCall(callID uint32) (*Call, bool) {
	for _, c := range d.calls {
		if c.ID == callID {
			return c, true
		}
	}
	return nil, false
}

// SetHandler задает получателя событий. nil отключает публикацию.
func (d *Device) SetHandler(h event.Handler) {
	d.handler = h
}

// Handler текущий получатель событий
func (d *Device) Handler() event.Handler {
	return d.handler
}

// RTPAddr локальный адрес открытого RTP канала
func (d *Device) RTPAddr() (netip.AddrPort, bool) {
	if d.rtpSock == nil {
		return netip.AddrPort{}, false
	}
	addr, err := d.rtpSock.LocalAddr()
	if err != nil {
		return netip.AddrPort{}, false
	}
	return addr, true
}

func (d *Device) transition(name string) {
	if err := d.state.Event(context.Background(), name); err != nil {
		d.logger.WithError(err).Debugf("transition %s", name)
	}
}

func (d *Device) publish(name event.Name, data any) {
	d.metrics.Event(string(name))
	if d.handler == nil {
		return
	}
	if err := d.handler.Handle(event.Event{Name: name, Device: d, Data: data}); err != nil {
		d.logger.WithError(err).Warnf("publish %s", name)
	}
}

func (d *Device) publishError(err error) {
	d.logger.Warn(err.Error())
	d.publish(event.Error, err)
}

// Connect начинает подключение к серверу. Вызывается не более одного раза.
// Немедленная ошибка публикует CONNECTION_FAILURE и возвращается вызывающему.
// Успешное подключение публикует CONNECTION_SUCCESS, асинхронная ошибка
// CONNECTION_FAILURE и затем CONNECTION_CLOSED.
func (d *Device) Connect() error {
	if !d.state.Is(StateDisconnected) {
		return fmt.Errorf("%w: %s", ErrAlreadyConnected, d.State())
	}
	d.transition("connect")

	sock, err := d.reactor.NewStreamSocket(reactor.StreamCallbacks{
		Established: d.onEstablished,
		Data:        d.onData,
		Closed:      d.onClosed,
	})
	if err != nil {
		d.failConnect(err)
		return err
	}

	d.sock = sock
	d.logger.Infof("connecting to %s", d.conn)
	if err := sock.Connect(d.conn.AddrPort()); err != nil {
		sock.Close()
		d.sock = nil
		d.failConnect(err)
		return err
	}
	return nil
}

func (d *Device) failConnect(err error) {
	d.logger.WithError(err).Warn("connection failed")
	d.publish(event.ConnectionFailure, nil)
	d.transition("close")
}

func (d *Device) onEstablished() {
	d.transition("establish")
	d.logger.Info("connection established")
	d.publish(event.ConnectionSuccess, nil)
}

func (d *Device) onClosed() {
	if d.state.Is(StateConnecting) {
		d.logger.Warn("connection failed")
		d.publish(event.ConnectionFailure, nil)
	} else {
		d.logger.Info("connection closed by peer")
	}
	d.Close()
}

// Close закрывает RTP канал и управляющее соединение. CONNECTION_CLOSED
// публикуется, только если соединение было открыто. Повторный вызов ничего не делает.
func (d *Device) Close() {
	if d.state.Is(StateClosed) {
		return
	}
	d.transition("close")

	d.closeRTP()
	if d.registered {
		d.metrics.Registered(-1)
	}
	if d.sock != nil {
		d.sock.Close()
		d.sock = nil
		d.publish(event.ConnectionClosed, nil)
	}
}

func (d *Device) closeRTP() {
	if d.rtpSock == nil {
		return
	}
	d.rtpSock.Close()
	d.rtpSock = nil
	d.metrics.RTPChannels(-1)
}

// Register отправляет Register с идентификацией устройства
func (d *Device) Register() error {
	return d.send(&message.Register{
		Name:         d.info.Name,
		Type:         d.info.Type,
		ProtoVersion: d.info.ProtoVersion,
	})
}

// KeepAlive отправляет KeepAlive. Ответ виден как SCCP_MSG_RECEIVED с KeepAliveAck.
func (d *Device) KeepAlive() error {
	return d.send(&message.KeepAlive{})
}

// Call набирает номер: NEWCALL и по кнопке на каждый символ exten + "#",
// все одним пакетом.
func (d *Device) Call(exten string) error {
	msgs := []message.Message{
		&message.SoftkeyEvent{SoftkeyEvent: message.SoftkeyNewCall},
	}
	for _, c := range exten + "#" {
		btn := &message.KeypadButton{LineID: lineID}
		if err := btn.SetButton(c); err != nil {
			return fmt.Errorf("dial %q: %w", exten, err)
		}
		msgs = append(msgs, btn)
	}
	return d.send(msgs...)
}

// SendRTP отправляет пакет из открытого RTP канала на удаленный адрес вызова
func (d *Device) SendRTP(call *Call, pkt *rtp.Packet) error {
	if d.rtpSock == nil {
		return ErrNoRTPChannel
	}
	if !call.RemoteRTP.IsValid() {
		return fmt.Errorf("%w: %s", ErrNoRemoteRTP, call)
	}
	data, err := pkt.Marshal()
	if err != nil {
		return err
	}
	if err := d.rtpSock.SendTo(data, call.RemoteRTP); err != nil {
		return err
	}
	d.metrics.RTPSent()
	return nil
}

func (d *Device) send(msgs ...message.Message) error {
	if d.sock == nil {
		return ErrNotConnected
	}
	data, err := d.codec.Encode(msgs...)
	if err != nil {
		return err
	}
	if err := d.sock.Send(data); err != nil {
		return err
	}
	for _, m := range msgs {
		name := message.Name(m)
		d.logger.Debugf("send %s", name)
		d.metrics.MessageSent(name)
	}
	return nil
}

func (d *Device) onData(data []byte) {
	frames, err := d.framer.Split(data)
	for _, f := range frames {
		if d.sock == nil {
			return
		}
		d.onFrame(f)
	}
	if err != nil && d.sock != nil {
		d.logger.WithError(err).Error("corrupted control stream, closing connection")
		d.metrics.FramingError()
		d.Close()
	}
}

func (d *Device) onFrame(f codec.Frame) {
	msg, err := d.codec.Decode(f)
	if err != nil {
		var de *message.DecodeError
		if errors.As(err, &de) {
			d.logger.WithFields(logrus.Fields{"msg_id": de.MsgID.String(), "field": de.Field}).
				WithError(de.Err).Warn("dropping undecodable message")
		} else {
			d.logger.WithError(err).Warn("dropping undecodable message")
		}
		d.metrics.DecodeError()
		return
	}

	name := message.Name(msg)
	d.logger.Debugf("received %s", name)
	d.metrics.MessageReceived(name)

	d.publish(event.MessageReceived, msg)
	if fn, ok := d.handlers[msg.ID()]; ok {
		fn(msg)
	}
}

func (d *Device) onRTPData(data []byte, from netip.AddrPort) {
	pkt := &rtp.Packet{}
	if err := pkt.Unmarshal(data); err != nil {
		d.logger.WithError(err).Warnf("invalid RTP packet from %s", from)
		return
	}
	d.logger.Debugf("received RTP packet from %s", from)
	d.metrics.RTPReceived()
	d.publish(event.RTPPacketReceived, event.RTPData{Packet: pkt, From: from})
}
