package message

import (
	"fmt"
	"sort"
)

// Schema описание типа сообщения в реестре
type Schema struct {
	ID   ID
	Name string
	New  func() Message
}

// Registry отображает идентификатор сообщения на его схему.
// Строится один раз и после создания не изменяется.
type Registry struct {
	schemas map[ID]Schema
}

// NewRegistry создает реестр. Повтор идентификатора является ошибкой.
func NewRegistry(schemas ...Schema) (*Registry, error) {
	r := &Registry{schemas: make(map[ID]Schema, len(schemas))}
	for _, s := range schemas {
		if prev, exists := r.schemas[s.ID]; exists {
			return nil, fmt.Errorf("%w: %s used by %s and %s", ErrDuplicateID, s.ID, prev.Name, s.Name)
		}
		if s.New == nil {
			return nil, fmt.Errorf("schema %s (%s) has no constructor", s.Name, s.ID)
		}
		r.schemas[s.ID] = s
	}
	return r, nil
}

// Schemas возвращает схемы всех сообщений протокола
func Schemas() []Schema {
	return []Schema{
		{KeepAliveID, "KeepAlive", func() Message { return &KeepAlive{} }},
		{RegisterID, "Register", func() Message { return &Register{} }},
		{KeypadButtonID, "KeypadButton", func() Message { return &KeypadButton{} }},
		{AlarmID, "Alarm", func() Message { return &Alarm{} }},
		{OpenReceiveChannelAckID, "OpenReceiveChannelAck", func() Message { return &OpenReceiveChannelAck{} }},
		{SoftkeyEventID, "SoftkeyEvent", func() Message { return &SoftkeyEvent{} }},
		{RegisterAckID, "RegisterAck", func() Message { return &RegisterAck{} }},
		{SetRingerID, "SetRinger", func() Message { return &SetRinger{} }},
		{StartMediaTransmissionID, "StartMediaTransmission", func() Message { return &StartMediaTransmission{} }},
		{StopMediaTransmissionID, "StopMediaTransmission", func() Message { return &StopMediaTransmission{} }},
		{CallInfoID, "CallInfo", func() Message { return &CallInfo{} }},
		{RegisterRejID, "RegisterRej", func() Message { return &RegisterRej{} }},
		{ResetID, "Reset", func() Message { return &Reset{} }},
		{KeepAliveAckID, "KeepAliveAck", func() Message { return &KeepAliveAck{} }},
		{OpenReceiveChannelID, "OpenReceiveChannel", func() Message { return &OpenReceiveChannel{} }},
		{CloseReceiveChannelID, "CloseReceiveChannel", func() Message { return &CloseReceiveChannel{} }},
		{CallStateID, "CallState", func() Message { return &CallState{} }},
		{StartMediaTransmissionAckID, "StartMediaTransmissionAck", func() Message { return &StartMediaTransmissionAck{} }},
	}
}

var defaultRegistry = mustNewRegistry(Schemas()...)

// DefaultRegistry реестр всех сообщений протокола
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func mustNewRegistry(schemas ...Schema) *Registry {
	r, err := NewRegistry(schemas...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) lookup(id ID) (Schema, bool) {
	s, ok := r.schemas[id]
	return s, ok
}

// Known сообщает, зарегистрирован ли идентификатор
func (r *Registry) Known(id ID) bool {
	_, ok := r.schemas[id]
	return ok
}

// New создает пустое сообщение по идентификатору.
// Для неизвестного идентификатора возвращается *Opaque.
func (r *Registry) New(id ID) Message {
	if s, ok := r.schemas[id]; ok {
		return s.New()
	}
	return &Opaque{MsgID: id}
}

// Decode создает сообщение по идентификатору и декодирует в него тело
func (r *Registry) Decode(id ID, body []byte) (Message, error) {
	m := r.New(id)
	if err := Unmarshal(m, body); err != nil {
		return nil, err
	}
	return m, nil
}

// IDs возвращает зарегистрированные идентификаторы по возрастанию
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.schemas))
	for id := range r.schemas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Name возвращает имя сообщения по идентификатору
func (r *Registry) Name(id ID) string {
	if s, ok := r.schemas[id]; ok {
		return s.Name
	}
	return "Opaque"
}
