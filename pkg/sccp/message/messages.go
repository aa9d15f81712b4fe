package message

// Идентификаторы сообщений
const (
	KeepAliveID                 ID = 0x0000
	RegisterID                  ID = 0x0001
	KeypadButtonID              ID = 0x0003
	AlarmID                     ID = 0x0020
	OpenReceiveChannelAckID     ID = 0x0022
	SoftkeyEventID              ID = 0x0026
	RegisterAckID               ID = 0x0081
	SetRingerID                 ID = 0x0085
	StartMediaTransmissionID    ID = 0x008A
	StopMediaTransmissionID     ID = 0x008B
	CallInfoID                  ID = 0x008F
	RegisterRejID               ID = 0x009D
	ResetID                     ID = 0x009F
	KeepAliveAckID              ID = 0x0100
	OpenReceiveChannelID        ID = 0x0105
	CloseReceiveChannelID       ID = 0x0106
	CallStateID                 ID = 0x0111
	StartMediaTransmissionAckID ID = 0x0159
)

// KeepAlive keepalive от устройства
type KeepAlive struct{}

func (m *KeepAlive) ID() ID          { return KeepAliveID }
func (m *KeepAlive) Fields() []Field { return nil }

// Register запрос регистрации устройства
type Register struct {
	Name          string
	UserID        uint32
	LineID        uint32
	IP            uint32
	Type          uint32
	MaxStreams    uint32
	ActiveStreams uint32
	ProtoVersion  uint8
}

func (m *Register) ID() ID { return RegisterID }
func (m *Register) Fields() []Field {
	return []Field{
		Bytes("name", 16, &m.Name),
		Uint32("user_id", &m.UserID),
		Uint32("line_id", &m.LineID),
		Uint32("ip", &m.IP),
		Uint32("type", &m.Type),
		Uint32("max_streams", &m.MaxStreams),
		Uint32("active_streams", &m.ActiveStreams),
		Uint8("proto_version", &m.ProtoVersion),
	}
}

// KeypadButton нажатие кнопки клавиатуры
type KeypadButton struct {
	Button uint32
	LineID uint32
	CallID uint32
}

func (m *KeypadButton) ID() ID { return KeypadButtonID }
func (m *KeypadButton) Fields() []Field {
	return []Field{
		Uint32("button", &m.Button),
		Uint32("line_id", &m.LineID),
		Uint32("call_id", &m.CallID),
	}
}

// SetButton устанавливает кнопку по символу: '0'..'9', '*' или '#'
func (m *KeypadButton) SetButton(c rune) error {
	b, err := ButtonFromChar(c)
	if err != nil {
		return err
	}
	m.Button = b
	return nil
}

// Alarm
type Alarm struct {
	AlarmSeverity  uint32
	DisplayMessage string
	AlarmParam1    uint32
	AlarmParam2    uint32
}

func (m *Alarm) ID() ID { return AlarmID }
func (m *Alarm) Fields() []Field {
	return []Field{
		Uint32("alarm_severity", &m.AlarmSeverity),
		Bytes("display_message", 80, &m.DisplayMessage),
		Uint32("alarm_param1", &m.AlarmParam1),
		Uint32("alarm_param2", &m.AlarmParam2),
	}
}

// OpenReceiveChannelAck ответ устройства с адресом RTP канала
type OpenReceiveChannelAck struct {
	Status     uint32
	IPAddr     string
	Port       uint32
	PassThruID uint32
}

func (m *OpenReceiveChannelAck) ID() ID { return OpenReceiveChannelAckID }
func (m *OpenReceiveChannelAck) Fields() []Field {
	return []Field{
		Uint32("status", &m.Status),
		Bytes("ip_addr", 4, &m.IPAddr),
		Uint32("port", &m.Port),
		Uint32("pass_thru_id", &m.PassThruID),
	}
}

// SoftkeyEvent нажатие софт-клавиши
type SoftkeyEvent struct {
	SoftkeyEvent uint32
	LineID       uint32
	CallID       uint32
}

func (m *SoftkeyEvent) ID() ID { return SoftkeyEventID }
func (m *SoftkeyEvent) Fields() []Field {
	return []Field{
		Uint32("softkey_event", &m.SoftkeyEvent),
		Uint32("line_id", &m.LineID),
		Uint32("call_id", &m.CallID),
	}
}

// RegisterAck подтверждение регистрации
type RegisterAck struct {
	KeepAlive          uint32
	DateTemplate       string
	Res                string
	SecondaryKeepAlive uint32
	ProtoVersion       uint8
	Unknown1           uint8
	Unknown2           uint8
	Unknown3           uint8
}

func (m *RegisterAck) ID() ID { return RegisterAckID }
func (m *RegisterAck) Fields() []Field {
	return []Field{
		Uint32("keepalive", &m.KeepAlive),
		Bytes("date_template", 6, &m.DateTemplate),
		Bytes("res", 2, &m.Res),
		Uint32("secondary_keep_alive", &m.SecondaryKeepAlive),
		Uint8("proto_version", &m.ProtoVersion),
		Uint8("unknown1", &m.Unknown1),
		Uint8("unknown2", &m.Unknown2),
		Uint8("unknown3", &m.Unknown3),
	}
}

// SetRinger
type SetRinger struct {
	RingerMode uint32
	Unknown1   uint32
	Unknown2   uint32
	Space      string
}

func (m *SetRinger) ID() ID { return SetRingerID }
func (m *SetRinger) Fields() []Field {
	return []Field{
		Uint32("ringer_mode", &m.RingerMode),
		Uint32("unknown1", &m.Unknown1),
		Uint32("unknown2", &m.Unknown2),
		Bytes("space", 8, &m.Space),
	}
}

// StartMediaTransmission команда начать передачу RTP на удаленный адрес
type StartMediaTransmission struct {
	ConferenceID    uint32
	PassThruPartyID uint32
	RemoteIP        string
	RemotePort      uint32
	PacketSize      uint32
	PayloadType     uint32
	// media qualifier
	Precedence uint32
	VAD        uint32
	Packets    uint32
	BitRate    uint32

	ConferenceID1  uint32
	Space          string
	RTPDTMFPayload uint32
	RTPTimeout     uint32
	MixingMode     uint32
	MixingParty    uint32
}

func (m *StartMediaTransmission) ID() ID { return StartMediaTransmissionID }
func (m *StartMediaTransmission) Fields() []Field {
	return []Field{
		Uint32("conference_id", &m.ConferenceID),
		Uint32("pass_thru_party_id", &m.PassThruPartyID),
		Bytes("remote_ip", 4, &m.RemoteIP),
		Uint32("remote_port", &m.RemotePort),
		Uint32("packet_size", &m.PacketSize),
		Uint32("payload_type", &m.PayloadType),
		Uint32("precedence", &m.Precedence),
		Uint32("vad", &m.VAD),
		Uint32("packets", &m.Packets),
		Uint32("bit_rate", &m.BitRate),
		Uint32("conference_id1", &m.ConferenceID1),
		Bytes("space", 56, &m.Space),
		Uint32("rtp_dtmf_payload", &m.RTPDTMFPayload),
		Uint32("rtp_timeout", &m.RTPTimeout),
		Uint32("mixing_mode", &m.MixingMode),
		Uint32("mixing_party", &m.MixingParty),
	}
}

// StopMediaTransmission
type StopMediaTransmission struct {
	ConferenceID  uint32
	PartyID       uint32
	ConferenceID1 uint32
	Unknown1      uint32
}

func (m *StopMediaTransmission) ID() ID { return StopMediaTransmissionID }
func (m *StopMediaTransmission) Fields() []Field {
	return []Field{
		Uint32("conference_id", &m.ConferenceID),
		Uint32("party_id", &m.PartyID),
		Uint32("conference_id1", &m.ConferenceID1),
		Uint32("unknown1", &m.Unknown1),
	}
}

// CallInfo информация о сторонах вызова
type CallInfo struct {
	CallingPartyName                  string
	CallingParty                      string
	CalledPartyName                   string
	CalledParty                       string
	LineID                            uint32
	CallID                            uint32
	Type                              uint32
	OriginalCalledPartyName           string
	OriginalCalledParty               string
	LastRedirectingPartyName          string
	LastRedirectingParty              string
	OriginalCalledPartyRedirectReason uint32
	LastRedirectingReason             uint32
	CallingPartyVoiceMailbox          string
	CalledPartyVoiceMailbox           string
	OriginalCalledPartyVoiceMailbox   string
	LastRedirectingVoiceMailbox       string
	Space                             string
}

func (m *CallInfo) ID() ID { return CallInfoID }
func (m *CallInfo) Fields() []Field {
	return []Field{
		Bytes("calling_party_name", 40, &m.CallingPartyName),
		Bytes("calling_party", 24, &m.CallingParty),
		Bytes("called_party_name", 40, &m.CalledPartyName),
		Bytes("called_party", 24, &m.CalledParty),
		Uint32("line_id", &m.LineID),
		Uint32("call_id", &m.CallID),
		Uint32("type", &m.Type),
		Bytes("original_called_party_name", 40, &m.OriginalCalledPartyName),
		Bytes("original_called_party", 24, &m.OriginalCalledParty),
		Bytes("last_redirecting_party_name", 40, &m.LastRedirectingPartyName),
		Bytes("last_redirecting_party", 24, &m.LastRedirectingParty),
		Uint32("original_called_party_redirect_reason", &m.OriginalCalledPartyRedirectReason),
		Uint32("last_redirecting_reason", &m.LastRedirectingReason),
		Bytes("calling_party_voice_mailbox", 24, &m.CallingPartyVoiceMailbox),
		Bytes("called_party_voice_mailbox", 24, &m.CalledPartyVoiceMailbox),
		Bytes("original_called_party_voice_mailbox", 24, &m.OriginalCalledPartyVoiceMailbox),
		Bytes("last_redirecting_voice_mailbox", 24, &m.LastRedirectingVoiceMailbox),
		Bytes("space", 12, &m.Space),
	}
}

// RegisterRej отказ в регистрации
type RegisterRej struct {
	ErrMsg string
}

func (m *RegisterRej) ID() ID { return RegisterRejID }
func (m *RegisterRej) Fields() []Field {
	return []Field{
		Bytes("err_msg", 33, &m.ErrMsg),
	}
}

// Reset
type Reset struct {
	Type uint32
}

func (m *Reset) ID() ID { return ResetID }
func (m *Reset) Fields() []Field {
	return []Field{
		Uint32("type", &m.Type),
	}
}

// KeepAliveAck
type KeepAliveAck struct{}

func (m *KeepAliveAck) ID() ID          { return KeepAliveAckID }
func (m *KeepAliveAck) Fields() []Field { return nil }

// OpenReceiveChannel запрос открыть RTP канал приема
type OpenReceiveChannel struct {
	ConferenceID   uint32
	PartyID        uint32
	Packets        uint32
	Capability     uint32
	Echo           uint32
	BitRate        uint32
	ConferenceID1  uint32
	Unknown        string
	RTPDTMFPayload uint32
	RTPTimeout     uint32
	MixingMode     uint32
	MixingParty    uint32
	IPAddr         uint32
	Unknown17      string
}

func (m *OpenReceiveChannel) ID() ID { return OpenReceiveChannelID }
func (m *OpenReceiveChannel) Fields() []Field {
	return []Field{
		Uint32("conference_id", &m.ConferenceID),
		Uint32("party_id", &m.PartyID),
		Uint32("packets", &m.Packets),
		Uint32("capability", &m.Capability),
		Uint32("echo", &m.Echo),
		Uint32("bitrate", &m.BitRate),
		Uint32("conference_id1", &m.ConferenceID1),
		Bytes("unknown", 56, &m.Unknown),
		Uint32("rtp_dtmf_payload", &m.RTPDTMFPayload),
		Uint32("rtp_timeout", &m.RTPTimeout),
		Uint32("mixing_mode", &m.MixingMode),
		Uint32("mixing_party", &m.MixingParty),
		Uint32("ip_addr", &m.IPAddr),
		Bytes("unknown17", 4, &m.Unknown17),
	}
}

// CloseReceiveChannel запрос закрыть RTP канал приема
type CloseReceiveChannel struct {
	ConferenceID  uint32
	PartyID       uint32
	ConferenceID1 uint32
}

func (m *CloseReceiveChannel) ID() ID { return CloseReceiveChannelID }
func (m *CloseReceiveChannel) Fields() []Field {
	return []Field{
		Uint32("conference_id", &m.ConferenceID),
		Uint32("party_id", &m.PartyID),
		Uint32("conference_id1", &m.ConferenceID1),
	}
}

// CallState смена состояния вызова
type CallState struct {
	CallState  uint32
	LineID     uint32
	CallID     uint32
	Visibility uint32
	Priority   uint32
	Reserved   uint32
}

func (m *CallState) ID() ID { return CallStateID }
func (m *CallState) Fields() []Field {
	return []Field{
		Uint32("call_state", &m.CallState),
		Uint32("line_id", &m.LineID),
		Uint32("call_id", &m.CallID),
		Uint32("visibility", &m.Visibility),
		Uint32("priority", &m.Priority),
		Uint32("reserved", &m.Reserved),
	}
}

// StartMediaTransmissionAck
type StartMediaTransmissionAck struct{}

func (m *StartMediaTransmissionAck) ID() ID          { return StartMediaTransmissionAckID }
func (m *StartMediaTransmissionAck) Fields() []Field { return nil }
