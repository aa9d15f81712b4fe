// Package sccptest упрощенный сервер управления вызовами для тестов.
//
// Server говорит на настоящем протоколе SCCP поверх TCP: регистрирует
// известные устройства и отклоняет остальные, принимает набор номера
// (NEWCALL, цифры, '#'), звонит вызываемому устройству, после ответа
// открывает RTP каналы на обеих сторонах и направляет медиа напрямую
// между устройствами (direct media).
package sccptest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/arzzra/sccp_tester/pkg/sccp/codec"
	"github.com/arzzra/sccp_tester/pkg/sccp/message"
)

// leg сторона вызова на одном устройстве
type leg struct {
	conn   *conn
	callID uint32
	rtp    netip.AddrPort
	peer   *leg
}

type conn struct {
	srv     *Server
	nc      net.Conn
	writeMu sync.Mutex

	// под srv.mu
	name     string
	dialing  uint32
	digits   string
	legs     map[uint32]*leg
	received []message.Message
}

// Server фейковый сервер управления вызовами
type Server struct {
	ln     net.Listener
	codec  *codec.Codec
	logger logrus.FieldLogger
	wg     sync.WaitGroup

	mu         sync.Mutex
	extensions map[string]string // номер -> имя устройства
	known      map[string]bool
	conns      map[*conn]struct{}
	byName     map[string]*conn
	nextCallID uint32
	closed     bool
}

// Option опция сервера
type Option func(*Server)

// WithLogger задает логгер
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithDevice регистрирует устройство name с внутренним номером exten
func WithDevice(name, exten string) Option {
	return func(s *Server) {
		s.known[name] = true
		if exten != "" {
			s.extensions[exten] = name
		}
	}
}

// NewServer запускает сервер на 127.0.0.1 со случайным портом
func NewServer(opts ...Option) (*Server, error) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &Server{
		ln:         ln,
		codec:      codec.New(nil),
		logger:     logrus.StandardLogger(),
		extensions: make(map[string]string),
		known:      make(map[string]bool),
		conns:      make(map[*conn]struct{}),
		byName:     make(map[string]*conn),
		nextCallID: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithField("component", "sccptest")

	s.wg.Add(1)
	go s.serve()
	return s, nil
}

// Addr адрес, на котором слушает сервер
func (s *Server) Addr() netip.AddrPort {
	return netip.MustParseAddrPort(s.ln.Addr().String())
}

// Close останавливает сервер и закрывает все соединения
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	err := s.ln.Close()
	for c := range s.conns {
		c.nc.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

// Received сообщения, полученные от устройства name после его регистрации
func (s *Server) Received(name string) []message.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byName[name]
	if !ok {
		return nil
	}
	out := make([]message.Message, len(c.received))
	copy(out, c.received)
	return out
}

// Send отправляет сообщения устройству name
func (s *Server) Send(name string, msgs ...message.Message) error {
	data, err := s.codec.Encode(msgs...)
	if err != nil {
		return err
	}
	return s.SendRaw(name, data)
}

// SendRaw отправляет устройству name произвольные байты
func (s *Server) SendRaw(name string, data []byte) error {
	s.mu.Lock()
	c, ok := s.byName[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("device %s is not connected", name)
	}
	return c.write(data)
}

// Disconnect закрывает соединение устройства name со стороны сервера
func (s *Server) Disconnect(name string) error {
	s.mu.Lock()
	c, ok := s.byName[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("device %s is not connected", name)
	}
	return c.nc.Close()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		nc, err := s.ln.Accept()
		if err != nil {
			return
		}
		c := &conn{srv: s, nc: nc, legs: make(map[uint32]*leg)}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			nc.Close()
			return
		}
		s.conns[c] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go c.serve()
	}
}

func (c *conn) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.nc.Write(data)
	return err
}

func (c *conn) send(msgs ...message.Message) {
	data, err := c.srv.codec.Encode(msgs...)
	if err != nil {
		c.srv.logger.WithError(err).Error("encode")
		return
	}
	if err := c.write(data); err != nil {
		c.srv.logger.WithError(err).Debug("write")
	}
}

func (c *conn) serve() {
	s := c.srv
	defer s.wg.Done()
	defer func() {
		c.nc.Close()
		s.mu.Lock()
		delete(s.conns, c)
		if c.name != "" && s.byName[c.name] == c {
			delete(s.byName, c.name)
		}
		s.mu.Unlock()
	}()

	framer := codec.NewFramer()
	buf := make([]byte, 2048)
	for {
		n, err := c.nc.Read(buf)
		if n > 0 {
			frames, ferr := framer.Split(buf[:n])
			for _, f := range frames {
				msg, derr := s.codec.Decode(f)
				if derr != nil {
					s.logger.WithError(derr).Warn("decode")
					continue
				}
				s.handle(c, msg)
			}
			if ferr != nil {
				s.logger.WithError(ferr).Warn("framing")
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.logger.WithError(err).Debug("read")
			}
			return
		}
	}
}

type outgoing struct {
	to   *conn
	msgs []message.Message
}

// handle обрабатывает сообщение под блокировкой и отправляет ответы после нее
func (s *Server) handle(c *conn, msg message.Message) {
	s.mu.Lock()
	if reg, ok := msg.(*message.Register); ok {
		c.name = reg.Name
		s.byName[reg.Name] = c
	}
	if c.name != "" {
		c.received = append(c.received, msg)
	}
	out := s.process(c, msg)
	s.mu.Unlock()

	for _, o := range out {
		o.to.send(o.msgs...)
	}
}

func (s *Server) process(c *conn, msg message.Message) []outgoing {
	switch m := msg.(type) {
	case *message.Register:
		if !s.known[m.Name] {
			return []outgoing{{c, []message.Message{&message.RegisterRej{ErrMsg: "No Authority: " + m.Name}}}}
		}
		return []outgoing{{c, []message.Message{&message.RegisterAck{
			KeepAlive:          30,
			DateTemplate:       "M/D/YA",
			SecondaryKeepAlive: 60,
			ProtoVersion:       m.ProtoVersion,
		}}}}

	case *message.KeepAlive:
		return []outgoing{{c, []message.Message{&message.KeepAliveAck{}}}}

	case *message.SoftkeyEvent:
		switch m.SoftkeyEvent {
		case message.SoftkeyNewCall:
			return s.newCall(c)
		case message.SoftkeyAnswer:
			return s.answer(c, m.CallID)
		case message.SoftkeyEndCall:
			return s.endCall(c, m.CallID)
		}

	case *message.KeypadButton:
		return s.dial(c, m.Button)

	case *message.OpenReceiveChannelAck:
		return s.channelOpened(c, m)
	}
	return nil
}

func (s *Server) allocCallID() uint32 {
	id := s.nextCallID
	s.nextCallID++
	return id
}

func callState(state, callID uint32) *message.CallState {
	return &message.CallState{CallState: state, LineID: 1, CallID: callID}
}

func (s *Server) newCall(c *conn) []outgoing {
	id := s.allocCallID()
	c.dialing = id
	c.digits = ""
	c.legs[id] = &leg{conn: c, callID: id}
	return []outgoing{{c, []message.Message{callState(message.StateOffhook, id)}}}
}

func (s *Server) dial(c *conn, button uint32) []outgoing {
	if c.dialing == 0 {
		return nil
	}
	switch {
	case button <= 9:
		c.digits += string(rune('0' + button))
		return nil
	case button == message.ButtonStar:
		c.digits += "*"
		return nil
	case button != message.ButtonPound:
		return nil
	}

	callerID := c.dialing
	caller := c.legs[callerID]
	c.dialing = 0

	callee, ok := s.byName[s.extensions[c.digits]]
	if !ok || callee == c {
		delete(c.legs, callerID)
		return []outgoing{{c, []message.Message{callState(message.StateOnhook, callerID)}}}
	}

	calleeLeg := &leg{conn: callee, callID: s.allocCallID(), peer: caller}
	caller.peer = calleeLeg
	callee.legs[calleeLeg.callID] = calleeLeg

	return []outgoing{
		{c, []message.Message{callState(message.StateRingout, callerID)}},
		{callee, []message.Message{callState(message.StateRingin, calleeLeg.callID)}},
	}
}

func openReceiveChannel(l *leg) *message.OpenReceiveChannel {
	return &message.OpenReceiveChannel{
		ConferenceID:  l.callID,
		PartyID:       l.callID,
		Packets:       20,
		Capability:    4, // G.711 u-law
		ConferenceID1: l.callID,
		RTPTimeout:    10,
	}
}

func (s *Server) answer(c *conn, callID uint32) []outgoing {
	l, ok := c.legs[callID]
	if !ok || l.peer == nil {
		return nil
	}
	peer := l.peer
	return []outgoing{
		{c, []message.Message{callState(message.StateConnected, l.callID), openReceiveChannel(l)}},
		{peer.conn, []message.Message{callState(message.StateConnected, peer.callID), openReceiveChannel(peer)}},
	}
}

func (s *Server) channelOpened(c *conn, m *message.OpenReceiveChannelAck) []outgoing {
	var l *leg
	for _, cur := range c.legs {
		if cur.callID == m.PassThruID || l == nil && cur.peer != nil {
			l = cur
		}
	}
	if l == nil {
		return nil
	}

	var ip [4]byte
	copy(ip[:], m.IPAddr)
	l.rtp = netip.AddrPortFrom(netip.AddrFrom4(ip), uint16(m.Port))

	peer := l.peer
	if peer == nil || !l.rtp.IsValid() || !peer.rtp.IsValid() {
		return nil
	}
	return []outgoing{
		{l.conn, []message.Message{startMedia(l, peer.rtp)}},
		{peer.conn, []message.Message{startMedia(peer, l.rtp)}},
	}
}

func startMedia(l *leg, remote netip.AddrPort) *message.StartMediaTransmission {
	ip := remote.Addr().As4()
	return &message.StartMediaTransmission{
		ConferenceID:    l.callID,
		PassThruPartyID: l.callID,
		RemoteIP:        string(ip[:]),
		RemotePort:      uint32(remote.Port()),
		PacketSize:      20,
		PayloadType:     4,
		ConferenceID1:   l.callID,
	}
}

func (s *Server) endCall(c *conn, callID uint32) []outgoing {
	l, ok := c.legs[callID]
	if !ok {
		return nil
	}
	var out []outgoing
	for _, cur := range []*leg{l, l.peer} {
		if cur == nil {
			continue
		}
		delete(cur.conn.legs, cur.callID)
		var msgs []message.Message
		if cur.rtp.IsValid() {
			msgs = append(msgs,
				&message.StopMediaTransmission{ConferenceID: cur.callID, PartyID: cur.callID, ConferenceID1: cur.callID},
				&message.CloseReceiveChannel{ConferenceID: cur.callID, PartyID: cur.callID, ConferenceID1: cur.callID},
			)
		}
		msgs = append(msgs, callState(message.StateOnhook, cur.callID))
		out = append(out, outgoing{cur.conn, msgs})
	}
	return out
}

// Frame кодирует кадр с произвольным total-size, в том числе недопустимым
func Frame(totalSize uint32, id message.ID, body []byte) []byte {
	buf := make([]byte, codec.HeaderSize+len(body))
	binary.LittleEndian.PutUint32(buf[0:4], totalSize)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(id))
	copy(buf[codec.HeaderSize:], body)
	return buf
}
