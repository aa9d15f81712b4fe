package device

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arzzra/sccp_tester/internal/sccptest"
	"github.com/arzzra/sccp_tester/pkg/event"
	"github.com/arzzra/sccp_tester/pkg/metrics"
	"github.com/arzzra/sccp_tester/pkg/reactor"
	"github.com/arzzra/sccp_tester/pkg/rtp"
	"github.com/arzzra/sccp_tester/pkg/sccp/message"
)

const (
	deviceA  = "SEP001122334401"
	deviceB  = "SEP001122334402"
	unknownD = "SEP001122334499"

	waitTimeout = 5 * time.Second
)

type harness struct {
	t   *testing.T
	r   *reactor.Reactor
	srv *sccptest.Server
	buf *event.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger, _ := logtest.NewNullLogger()

	srv, err := sccptest.NewServer(
		sccptest.WithLogger(logger),
		sccptest.WithDevice(deviceA, "01"),
		sccptest.WithDevice(deviceB, "02"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	r, err := reactor.New(reactor.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	return &harness{t: t, r: r, srv: srv, buf: event.NewBuffer(0)}
}

func (h *harness) newDevice(name string, opts ...Option) *Device {
	logger, _ := logtest.NewNullLogger()
	addr := h.srv.Addr()
	conn := NewConnectionInfo(addr.Addr().String(), addr.Addr())
	conn.Port = addr.Port()

	opts = append([]Option{WithLogger(logger), WithHandler(h.buf)}, opts...)
	d := New(h.r, NewDeviceInfo(name), conn, opts...)
	h.t.Cleanup(d.Close)
	return d
}

// next достает следующее событие, при необходимости крутя реактор
func (h *harness) next() event.Event {
	h.t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for {
		if ev, ok := h.buf.Pop(); ok {
			return ev
		}
		remaining := time.Until(deadline)
		require.Positive(h.t, remaining, "no event within %s", waitTimeout)
		if err := h.r.Poll(remaining); err != nil && !errors.Is(err, reactor.ErrTimeout) {
			require.NoError(h.t, err)
		}
	}
}

// waitAll читает события, пока каждый предикат не совпадет, и возвращает все прочитанные
func (h *harness) waitAll(matchers ...event.Matcher) []event.Event {
	h.t.Helper()
	cond := event.NewMatchAll(matchers...)
	var seen []event.Event
	for !cond.Satisfied() {
		ev := h.next()
		seen = append(seen, ev)
		cond.Handle(ev)
	}
	return seen
}

func (h *harness) waitFor(m event.Matcher) event.Event {
	h.t.Helper()
	seen := h.waitAll(m)
	return seen[len(seen)-1]
}

func (h *harness) connect(d *Device) {
	h.t.Helper()
	require.NoError(h.t, d.Connect())
	h.waitFor(event.And(event.NameIs(event.ConnectionSuccess), event.FromDevice(d)))
	assert.Equal(h.t, StateConnected, d.State())
}

func (h *harness) connectAndRegister(d *Device) {
	h.t.Helper()
	h.connect(d)
	require.NoError(h.t, d.Register())
	h.waitFor(event.And(event.NameIs(event.RegistrationSuccess), event.FromDevice(d)))
}

// sync отправляет KeepAlive и возвращает все события до KeepAliveAck
func (h *harness) sync(d *Device) []event.Event {
	h.t.Helper()
	require.NoError(h.t, d.KeepAlive())
	return h.waitAll(event.And(event.MessageIs(message.KeepAliveAckID), event.FromDevice(d)))
}

func names(events []event.Event) []event.Name {
	out := make([]event.Name, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Name)
	}
	return out
}

func countName(events []event.Event, name event.Name) int {
	n := 0
	for _, ev := range events {
		if ev.Name == name {
			n++
		}
	}
	return n
}

func TestRegisterSuccess(t *testing.T) {
	h := newHarness(t)
	d := h.newDevice(deviceA)
	assert.Equal(t, StateDisconnected, d.State())

	h.connectAndRegister(d)
	assert.True(t, d.Registered())

	received := h.srv.Received(deviceA)
	require.NotEmpty(t, received)
	reg, ok := received[0].(*message.Register)
	require.True(t, ok)
	assert.Equal(t, deviceA, reg.Name)
	assert.Equal(t, message.DeviceType7940, reg.Type)
	assert.Equal(t, DefaultProtoVersion, reg.ProtoVersion)
}

func TestRegisterReject(t *testing.T) {
	h := newHarness(t)
	d := h.newDevice(unknownD)
	h.connect(d)

	require.NoError(t, d.Register())
	ev := h.waitFor(event.NameIs(event.RegistrationFailure, event.RegistrationSuccess))
	assert.Equal(t, event.RegistrationFailure, ev.Name)
	assert.False(t, d.Registered())

	// второго отказа нет
	rest := h.sync(d)
	assert.Zero(t, countName(rest, event.RegistrationFailure))
	assert.False(t, d.Registered())
}

func TestDuplicateRegisterAck(t *testing.T) {
	h := newHarness(t)
	c := metrics.NewCollector()
	d := h.newDevice(deviceA, WithMetrics(c))
	h.connectAndRegister(d)

	require.NoError(t, h.srv.Send(deviceA, &message.RegisterAck{}))
	h.waitFor(event.NameIs(event.RegistrationSuccess))
	assert.True(t, d.Registered())

	expected := `
# HELP sccp_devices_registered Number of currently registered devices
# TYPE sccp_devices_registered gauge
sccp_devices_registered 1
`
	assert.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "sccp_devices_registered"))

	d.Close()
	expected = strings.Replace(expected, "registered 1", "registered 0", 1)
	assert.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "sccp_devices_registered"))
}

func TestConnectTwice(t *testing.T) {
	h := newHarness(t)
	d := h.newDevice(deviceA)
	h.connect(d)

	assert.ErrorIs(t, d.Connect(), ErrAlreadyConnected)
}

func TestConnectRefused(t *testing.T) {
	h := newHarness(t)

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	addr := netip.MustParseAddrPort(ln.Addr().String())
	ln.Close()

	logger, _ := logtest.NewNullLogger()
	conn := NewConnectionInfo("localhost", addr.Addr())
	conn.Port = addr.Port()
	d := New(h.r, NewDeviceInfo(deviceA), conn, WithLogger(logger), WithHandler(h.buf))

	if err := d.Connect(); err != nil {
		ev := h.next()
		assert.Equal(t, event.ConnectionFailure, ev.Name)
		assert.Zero(t, h.buf.Len())
	} else {
		events := h.waitAll(event.NameIs(event.ConnectionClosed))
		assert.Equal(t, []event.Name{event.ConnectionFailure, event.ConnectionClosed}, names(events))
	}
	assert.Equal(t, StateClosed, d.State())
	assert.ErrorIs(t, d.Connect(), ErrAlreadyConnected)
}

func TestSendBeforeConnect(t *testing.T) {
	h := newHarness(t)
	d := h.newDevice(deviceA)

	assert.ErrorIs(t, d.Register(), ErrNotConnected)
	assert.ErrorIs(t, d.KeepAlive(), ErrNotConnected)
	assert.ErrorIs(t, d.Call("02"), ErrNotConnected)
}

func TestCloseIdempotent(t *testing.T) {
	h := newHarness(t)
	d := h.newDevice(deviceA)
	h.connect(d)

	d.Close()
	d.Close()
	assert.Equal(t, StateClosed, d.State())

	require.Equal(t, 1, h.buf.Len())
	ev, _ := h.buf.Pop()
	assert.Equal(t, event.ConnectionClosed, ev.Name)
	assert.Same(t, d, ev.Device)

	// устройство без соединения закрывается молча
	idle := h.newDevice(deviceB)
	idle.Close()
	assert.Zero(t, h.buf.Len())
	assert.ErrorIs(t, idle.Connect(), ErrAlreadyConnected)
}

func TestRemoteClose(t *testing.T) {
	h := newHarness(t)
	d := h.newDevice(deviceA)
	h.connectAndRegister(d)

	require.NoError(t, h.srv.Disconnect(deviceA))
	h.waitFor(event.NameIs(event.ConnectionClosed))
	assert.Equal(t, StateClosed, d.State())
	assert.ErrorIs(t, d.KeepAlive(), ErrNotConnected)
}

func TestKeepAlive(t *testing.T) {
	h := newHarness(t)
	d := h.newDevice(deviceA)
	h.connectAndRegister(d)

	events := h.sync(d)
	last := events[len(events)-1]
	assert.IsType(t, &message.KeepAliveAck{}, last.Data)
}

func TestDialSendsDigitsInOneBatch(t *testing.T) {
	h := newHarness(t)
	d := h.newDevice(deviceA)
	h.connectAndRegister(d)

	require.NoError(t, d.Call("02"))
	h.sync(d)

	var sent []message.Message
	for _, m := range h.srv.Received(deviceA) {
		switch m.(type) {
		case *message.SoftkeyEvent, *message.KeypadButton:
			sent = append(sent, m)
		}
	}
	require.Len(t, sent, 4)
	assert.Equal(t, &message.SoftkeyEvent{SoftkeyEvent: message.SoftkeyNewCall}, sent[0])
	for i, btn := range []uint32{0, 2, message.ButtonPound} {
		assert.Equal(t, &message.KeypadButton{Button: btn, LineID: 1}, sent[i+1])
	}
}

func TestDialInvalidCharacter(t *testing.T) {
	h := newHarness(t)
	d := h.newDevice(deviceA)
	h.connectAndRegister(d)

	err := d.Call("1a")
	assert.ErrorIs(t, err, message.ErrUnknownButton)

	h.sync(d)
	for _, m := range h.srv.Received(deviceA) {
		assert.NotEqual(t, message.SoftkeyEventID, m.ID())
	}
}

func TestCallStateTransitions(t *testing.T) {
	h := newHarness(t)
	d := h.newDevice(deviceA)
	h.connectAndRegister(d)

	cs := func(state, callID uint32) message.Message {
		return &message.CallState{CallState: state, LineID: 1, CallID: callID}
	}
	tests := []struct {
		name   string
		msgs   []message.Message
		events []event.Name
		calls  []uint32
	}{
		{"offhook creates call", []message.Message{cs(message.StateOffhook, 5)}, nil, []uint32{5}},
		{"offhook existing is noop", []message.Message{cs(message.StateOffhook, 5)}, nil, []uint32{5}},
		{"ringin existing republishes", []message.Message{cs(message.StateRingin, 5)}, []event.Name{event.CallIncoming}, []uint32{5}},
		{"ringin creates call", []message.Message{cs(message.StateRingin, 6)}, []event.Name{event.CallIncoming}, []uint32{5, 6}},
		{"ringout", []message.Message{cs(message.StateRingout, 5)}, []event.Name{event.CallOutgoing}, []uint32{5, 6}},
		{"connected", []message.Message{cs(message.StateConnected, 6)}, []event.Name{event.CallConnected}, []uint32{5, 6}},
		{"other state ignored", []message.Message{cs(message.StateBusy, 6)}, nil, []uint32{5, 6}},
		{"onhook removes", []message.Message{cs(message.StateOnhook, 5)}, []event.Name{event.CallHangup}, []uint32{6}},
		{"onhook missing is noop", []message.Message{cs(message.StateOnhook, 5)}, nil, []uint32{6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, h.srv.Send(deviceA, tt.msgs...))
			events := h.sync(d)

			var got []event.Name
			for _, n := range names(events) {
				if n != event.MessageReceived {
					got = append(got, n)
				}
			}
			assert.Equal(t, tt.events, got)

			var ids []uint32
			for _, c := range d.Calls() {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.calls, ids)
		})
	}
}

func TestMessageReceivedBeforeHandler(t *testing.T) {
	h := newHarness(t)
	d := h.newDevice(deviceA)
	h.connect(d)
	require.NoError(t, d.Register())

	events := h.waitAll(event.NameIs(event.RegistrationSuccess))
	require.Len(t, events, 2)
	assert.Equal(t, event.MessageReceived, events[0].Name)
	assert.IsType(t, &message.RegisterAck{}, events[0].Data)
}

func protocolErrors(events []event.Event) []*ProtocolStateError {
	var out []*ProtocolStateError
	for _, ev := range events {
		if ev.Name != event.Error {
			continue
		}
		var pe *ProtocolStateError
		if err, ok := ev.Data.(error); ok && errors.As(err, &pe) {
			out = append(out, pe)
		}
	}
	return out
}

func TestMediaMessagesForUnknownCall(t *testing.T) {
	h := newHarness(t)
	d := h.newDevice(deviceA)
	h.connectAndRegister(d)

	require.NoError(t, h.srv.Send(deviceA,
		&message.OpenReceiveChannel{ConferenceID: 42},
		&message.CloseReceiveChannel{ConferenceID: 42},
		&message.StartMediaTransmission{ConferenceID: 42},
		&message.StopMediaTransmission{ConferenceID: 42},
	))
	errs := protocolErrors(h.sync(d))

	require.Len(t, errs, 4)
	assert.Equal(t, message.OpenReceiveChannelID, errs[0].MsgID)
	assert.Equal(t, message.CloseReceiveChannelID, errs[1].MsgID)
	assert.Equal(t, message.StartMediaTransmissionID, errs[2].MsgID)
	assert.Equal(t, message.StopMediaTransmissionID, errs[3].MsgID)

	_, open := d.RTPAddr()
	assert.False(t, open)
}

func TestReceiveChannelLifecycle(t *testing.T) {
	h := newHarness(t)
	c := metrics.NewCollector()
	d := h.newDevice(deviceA, WithMetrics(c))
	h.connectAndRegister(d)

	require.NoError(t, h.srv.Send(deviceA,
		&message.CallState{CallState: message.StateOffhook, LineID: 1, CallID: 7},
		&message.OpenReceiveChannel{ConferenceID: 7, PartyID: 70},
	))
	h.sync(d)

	rtpAddr, open := d.RTPAddr()
	require.True(t, open)
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), rtpAddr.Addr())
	assert.NotZero(t, rtpAddr.Port())

	// ответ на OpenReceiveChannel ушел раньше второго KeepAlive
	h.sync(d)
	var ack *message.OpenReceiveChannelAck
	for _, m := range h.srv.Received(deviceA) {
		if a, ok := m.(*message.OpenReceiveChannelAck); ok {
			ack = a
		}
	}
	require.NotNil(t, ack)
	assert.Equal(t, rtpAddr.Addr(), IPv4FromBytes(ack.IPAddr))
	assert.Equal(t, uint32(rtpAddr.Port()), ack.Port)
	assert.Equal(t, uint32(70), ack.PassThruID)

	// второй канал не открывается
	require.NoError(t, h.srv.Send(deviceA, &message.OpenReceiveChannel{ConferenceID: 7}))
	errs := protocolErrors(h.sync(d))
	require.Len(t, errs, 1)
	same, _ := d.RTPAddr()
	assert.Equal(t, rtpAddr, same)

	// StopMediaTransmission не сбрасывает удаленный адрес
	remoteIP := netip.MustParseAddr("10.0.0.1").As4()
	require.NoError(t, h.srv.Send(deviceA,
		&message.StartMediaTransmission{ConferenceID: 7, RemoteIP: string(remoteIP[:]), RemotePort: 4000},
		&message.StopMediaTransmission{ConferenceID: 7},
	))
	assert.Empty(t, protocolErrors(h.sync(d)))
	call, ok := d.FindCall(7)
	require.True(t, ok)
	assert.Equal(t, netip.MustParseAddrPort("10.0.0.1:4000"), call.RemoteRTP)

	require.NoError(t, h.srv.Send(deviceA, &message.CloseReceiveChannel{ConferenceID: 7}))
	h.sync(d)
	_, open = d.RTPAddr()
	assert.False(t, open)
	assert.ErrorIs(t, d.SendRTP(call, &rtp.Packet{}), ErrNoRTPChannel)

	expected := `
# HELP sccp_rtp_channels_open Number of currently open RTP channels
# TYPE sccp_rtp_channels_open gauge
sccp_rtp_channels_open 0
`
	assert.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "sccp_rtp_channels_open"))
}

func TestSendRTPWithoutRemote(t *testing.T) {
	h := newHarness(t)
	d := h.newDevice(deviceA)
	h.connectAndRegister(d)

	require.NoError(t, h.srv.Send(deviceA,
		&message.CallState{CallState: message.StateOffhook, LineID: 1, CallID: 3},
		&message.OpenReceiveChannel{ConferenceID: 3},
	))
	h.sync(d)

	call, ok := d.FindCall(3)
	require.True(t, ok)
	assert.ErrorIs(t, d.SendRTP(call, &rtp.Packet{}), ErrNoRemoteRTP)
}

func TestFramingErrorClosesConnection(t *testing.T) {
	h := newHarness(t)
	c := metrics.NewCollector()
	d := h.newDevice(deviceA, WithMetrics(c))
	h.connectAndRegister(d)

	require.NoError(t, h.srv.SendRaw(deviceA, sccptest.Frame(2001, message.KeepAliveAckID, nil)))
	h.waitFor(event.NameIs(event.ConnectionClosed))
	assert.Equal(t, StateClosed, d.State())

	expected := `
# HELP sccp_framing_errors_total Total number of control connections closed because of framing errors
# TYPE sccp_framing_errors_total counter
sccp_framing_errors_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "sccp_framing_errors_total"))
}

func TestDecodeErrorSkipsMessage(t *testing.T) {
	h := newHarness(t)
	d := h.newDevice(deviceA)
	h.connectAndRegister(d)

	// call_state короче 4 байт
	bad := sccptest.Frame(4+3, message.CallStateID, []byte{1, 2, 3})
	require.NoError(t, h.srv.SendRaw(deviceA, bad))

	events := h.sync(d)
	require.Len(t, events, 1)
	assert.IsType(t, &message.KeepAliveAck{}, events[0].Data)
	assert.Equal(t, StateConnected, d.State())
	assert.Empty(t, d.Calls())
}

func TestUnknownMessageIsOpaque(t *testing.T) {
	h := newHarness(t)
	d := h.newDevice(deviceA)
	h.connectAndRegister(d)

	require.NoError(t, h.srv.SendRaw(deviceA, sccptest.Frame(4+2, 0x9999, []byte{0xAB, 0xCD})))
	ev := h.waitFor(event.NameIs(event.MessageReceived))

	opaque, ok := ev.Data.(*message.Opaque)
	require.True(t, ok)
	assert.Equal(t, message.ID(0x9999), opaque.MsgID)
	assert.Equal(t, []byte{0xAB, 0xCD}, opaque.Raw)
}

func TestCallFlowWithDirectMedia(t *testing.T) {
	h := newHarness(t)
	a := h.newDevice(deviceA)
	b := h.newDevice(deviceB)
	h.connectAndRegister(a)
	h.connectAndRegister(b)

	on := func(d *Device, names ...event.Name) event.Matcher {
		return event.And(event.NameIs(names...), event.FromDevice(d))
	}
	msgOn := func(d *Device, id message.ID) event.Matcher {
		return event.And(event.MessageIs(id), event.FromDevice(d))
	}

	require.NoError(t, a.Call("02"))
	h.waitAll(on(a, event.CallOutgoing), on(b, event.CallIncoming))
	require.Len(t, a.Calls(), 1)
	require.Len(t, b.Calls(), 1)

	callA, callB := a.Calls()[0], b.Calls()[0]
	require.NoError(t, callB.Answer())
	h.waitAll(
		on(a, event.CallConnected), on(b, event.CallConnected),
		msgOn(a, message.OpenReceiveChannelID), msgOn(b, message.OpenReceiveChannelID),
		msgOn(a, message.StartMediaTransmissionID), msgOn(b, message.StartMediaTransmissionID),
	)

	aAddr, ok := a.RTPAddr()
	require.True(t, ok)
	bAddr, ok := b.RTPAddr()
	require.True(t, ok)
	assert.Equal(t, bAddr, callA.RemoteRTP)
	assert.Equal(t, aAddr, callB.RemoteRTP)
	assert.Equal(t, a.ConnectionInfo().HostIPv4, callA.RemoteRTP.Addr())

	send := func(from, to *Device, call *Call, fromAddr netip.AddrPort, payload string) {
		pkt := &rtp.Packet{PayloadType: 0, SequenceNumber: 1, Timestamp: 160, SSRC: 0xCAFE, Payload: []byte(payload)}
		require.NoError(t, from.SendRTP(call, pkt))
		ev := h.waitFor(on(to, event.RTPPacketReceived))
		data, ok := ev.Data.(event.RTPData)
		require.True(t, ok)
		assert.Equal(t, []byte(payload), data.Packet.Payload)
		assert.Equal(t, uint32(0xCAFE), data.Packet.SSRC)
		assert.Equal(t, fromAddr, data.From)
	}
	send(a, b, callA, aAddr, "hello from A")
	send(b, a, callB, bAddr, "hello from B")

	require.NoError(t, callA.Hangup())
	h.waitAll(on(a, event.CallHangup), on(b, event.CallHangup))
	assert.Empty(t, a.Calls())
	assert.Empty(t, b.Calls())
	_, ok = a.RTPAddr()
	assert.False(t, ok)
	_, ok = b.RTPAddr()
	assert.False(t, ok)
}

func TestDeviceInfoDefaults(t *testing.T) {
	info := NewDeviceInfo(deviceA)
	assert.Equal(t, deviceA, info.Name)
	assert.Equal(t, uint32(8), info.Type)
	assert.Equal(t, uint8(11), info.ProtoVersion)
}

type fakeResolver struct {
	addrs []netip.Addr
	err   error
}

func (r fakeResolver) LookupNetIP(context.Context, string, string) ([]netip.Addr, error) {
	return r.addrs, r.err
}

func TestConnectionInfoFromHostname(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		host     string
		resolver Resolver
		want     netip.Addr
		wantErr  bool
	}{
		{"ipv4 literal", "10.0.0.2", nil, netip.MustParseAddr("10.0.0.2"), false},
		{"ipv6 literal", "::1", nil, netip.Addr{}, true},
		{"resolved", "pbx.example.org", fakeResolver{addrs: []netip.Addr{netip.MustParseAddr("192.0.2.10")}}, netip.MustParseAddr("192.0.2.10"), false},
		{"mapped", "pbx.example.org", fakeResolver{addrs: []netip.Addr{netip.MustParseAddr("::ffff:192.0.2.11")}}, netip.MustParseAddr("192.0.2.11"), false},
		{"no ipv4", "pbx.example.org", fakeResolver{addrs: []netip.Addr{netip.MustParseAddr("2001:db8::1")}}, netip.Addr{}, true},
		{"lookup error", "pbx.example.org", fakeResolver{err: errors.New("no such host")}, netip.Addr{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := NewConnectionInfoFromHostname(ctx, tt.host, tt.resolver)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, info.Host)
			assert.Equal(t, tt.want, info.HostIPv4)
			assert.Equal(t, DefaultPort, info.Port)
			assert.Equal(t, netip.AddrPortFrom(tt.want, 2000), info.AddrPort())
		})
	}
}

func TestIPv4FromBytes(t *testing.T) {
	assert.Equal(t, netip.MustParseAddr("10.0.0.0"), IPv4FromBytes("\x0a"))
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), IPv4FromBytes("\x7f\x00\x00\x01"))
	assert.Equal(t, netip.MustParseAddr("0.0.0.0"), IPv4FromBytes(""))
}
