// Package rtp минимальный RTP пакет для тестовых медиа потоков.
//
// Поддерживается только фиксированный 12-байтовый заголовок версии 2 без
// CSRC, расширений и padding. При разборе все, что после 12 байт, считается
// полезной нагрузкой. Кодирование выполняет pion/rtp.
package rtp

import (
	"fmt"

	"github.com/pion/rtp"
)

// HeaderSize размер заголовка RTP
const HeaderSize = 12

// Packet RTP пакет
type Packet struct {
	PayloadType    uint8
	SequenceNumber uint16
	Timestamp      uint32
	SSRC           uint32
	Payload        []byte
}

// Marshal кодирует пакет: [0x80][pt&0x7F][seq][timestamp][ssrc] + payload
func (p *Packet) Marshal() ([]byte, error) {
	pkt := rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    p.PayloadType & 0x7F,
			SequenceNumber: p.SequenceNumber,
			Timestamp:      p.Timestamp,
			SSRC:           p.SSRC,
		},
		Payload: p.Payload,
	}
	data, err := pkt.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal RTP packet: %w", err)
	}
	return data, nil
}

// Unmarshal декодирует пакет из data
func (p *Packet) Unmarshal(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("RTP packet too short: %d bytes", len(data))
	}

	// биты P, X и CC игнорируются: заголовок всегда 12 байт
	hdr := make([]byte, HeaderSize)
	copy(hdr, data)
	hdr[0] &^= 0x3F

	var h rtp.Header
	if _, err := h.Unmarshal(hdr); err != nil {
		return fmt.Errorf("unmarshal RTP header: %w", err)
	}

	p.PayloadType = h.PayloadType & 0x7F
	p.SequenceNumber = h.SequenceNumber
	p.Timestamp = h.Timestamp
	p.SSRC = h.SSRC
	p.Payload = append([]byte(nil), data[HeaderSize:]...)
	return nil
}

func (p *Packet) String() string {
	return fmt.Sprintf("RTP{pt=%d seq=%d ts=%d ssrc=%d len=%d}",
		p.PayloadType, p.SequenceNumber, p.Timestamp, p.SSRC, len(p.Payload))
}
