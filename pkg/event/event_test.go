package event

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arzzra/sccp_tester/pkg/sccp/message"
)

type fakeSource string

func (s fakeSource) Name() string { return string(s) }

// recorder запоминает все полученные события
type recorder struct {
	events []Event
}

func (r *recorder) Handle(ev Event) error {
	r.events = append(r.events, ev)
	return nil
}

func TestCompositeFanOut(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	c := NewComposite(first)
	c.Append(second)

	ev := Event{Name: CallIncoming, Device: fakeSource("a")}
	require.NoError(t, c.Handle(ev))

	assert.Equal(t, []Event{ev}, first.events)
	assert.Equal(t, []Event{ev}, second.events)
}

func TestCompositeRemove(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	c := NewComposite(first, second)

	assert.True(t, c.Remove(first))
	assert.False(t, c.Remove(first))
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Handle(Event{Name: Error}))
	assert.Empty(t, first.events)
	assert.Len(t, second.events, 1)
}

func TestCompositeRemoveRange(t *testing.T) {
	shared := &recorder{}
	var calls int
	f := HandlerFunc(func(Event) error {
		calls++
		return nil
	})
	c := NewComposite(shared)
	c.Extend([]Handler{f, shared})

	c.RemoveRange(1, 2)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Handle(Event{Name: Error}))
	assert.Zero(t, calls)
	assert.Len(t, shared.events, 1)

	// выход за границы обрезается
	c.RemoveRange(1, 5)
	c.RemoveRange(-1, 0)
	assert.Equal(t, 1, c.Len())
	c.RemoveRange(0, 5)
	assert.Zero(t, c.Len())
}

func TestCompositeRemoveRangeDuringHandle(t *testing.T) {
	after := &recorder{}
	c := NewComposite()
	c.Append(HandlerFunc(func(Event) error {
		c.RemoveRange(0, 2)
		return nil
	}))
	c.Append(after)

	require.NoError(t, c.Handle(Event{Name: Error}))
	assert.Len(t, after.events, 1)
	assert.Zero(t, c.Len())
}

func TestCompositeModifiedDuringHandle(t *testing.T) {
	late := &recorder{}
	c := NewComposite()
	var self Handler
	self = HandlerFunc(func(Event) error {
		c.Append(late)
		return nil
	})
	c.Append(self)

	require.NoError(t, c.Handle(Event{Name: Error}))
	assert.Empty(t, late.events)

	require.NoError(t, c.Handle(Event{Name: Error}))
	assert.Len(t, late.events, 1)
}

func TestCompositeStopsOnError(t *testing.T) {
	after := &recorder{}
	c := NewComposite(NewUnexpected(NameIs(ConnectionFailure)), after)

	err := c.Handle(Event{Name: ConnectionFailure})
	var unexpected *UnexpectedEventError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, ConnectionFailure, unexpected.Event.Name)
	assert.Empty(t, after.events)

	require.NoError(t, c.Handle(Event{Name: ConnectionSuccess}))
	assert.Len(t, after.events, 1)
}

func TestMatchHandler(t *testing.T) {
	a, b := fakeSource("a"), fakeSource("b")
	var matched []Event
	h := NewMatch(And(NameIs(CallIncoming), FromDevice(b)), func(ev Event) {
		matched = append(matched, ev)
	})

	for _, ev := range []Event{
		{Name: CallIncoming, Device: a},
		{Name: CallOutgoing, Device: b},
		{Name: CallIncoming, Device: b},
	} {
		require.NoError(t, h.Handle(ev))
	}
	require.Len(t, matched, 1)
	assert.Equal(t, Event{Name: CallIncoming, Device: b}, matched[0])
}

func TestMatchers(t *testing.T) {
	ack := &message.RegisterAck{}
	tests := []struct {
		name    string
		matcher Matcher
		ev      Event
		want    bool
	}{
		{"name any of", NameIs(CallHangup, CallConnected), Event{Name: CallConnected}, true},
		{"name none", NameIs(CallHangup), Event{Name: CallConnected}, false},
		{"or", Or(NameIs(Error), NameIs(CallHangup)), Event{Name: CallHangup}, true},
		{"and empty", And(), Event{}, true},
		{"message id", MessageIs(message.RegisterAckID), Event{Name: MessageReceived, Data: ack}, true},
		{"message other id", MessageIs(message.RegisterRejID), Event{Name: MessageReceived, Data: ack}, false},
		{"message wrong event", MessageIs(message.RegisterAckID), Event{Name: Error, Data: ack}, false},
		{"message no data", MessageIs(message.RegisterAckID), Event{Name: MessageReceived}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.matcher(tt.ev))
		})
	}
}

func TestBufferFIFO(t *testing.T) {
	b := NewBuffer(2)
	assert.Equal(t, 2, b.Cap())

	_, ok := b.Pop()
	assert.False(t, ok)

	require.NoError(t, b.Handle(Event{Name: CallIncoming}))
	require.NoError(t, b.Handle(Event{Name: CallConnected}))
	err := b.Handle(Event{Name: CallHangup})
	assert.ErrorIs(t, err, ErrBufferFull)
	assert.Equal(t, 2, b.Len())

	ev, ok := b.Pop()
	require.True(t, ok)
	assert.Equal(t, CallIncoming, ev.Name)

	// после Pop освободилось место, кольцо переходит через границу
	require.NoError(t, b.Handle(Event{Name: CallHangup}))
	ev, _ = b.Pop()
	assert.Equal(t, CallConnected, ev.Name)
	ev, _ = b.Pop()
	assert.Equal(t, CallHangup, ev.Name)
	assert.Zero(t, b.Len())
}

func TestBufferDefaultCapacity(t *testing.T) {
	b := NewBuffer(0)
	assert.Equal(t, DefaultBufferSize, b.Cap())

	b.Handle(Event{Name: Error})
	b.Handle(Event{Name: Error})
	b.Clear()
	assert.Zero(t, b.Len())
}

func TestLogHandler(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	h := NewLog(logger)

	require.NoError(t, h.Handle(Event{Name: CallHangup, Device: fakeSource("SEP001122334401"), Data: uint32(7)}))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "CALL_HANGUP", entry.Data["event"])
	assert.Equal(t, "SEP001122334401", entry.Data["device"])
	assert.Equal(t, "7", entry.Data["data"])
}

func TestNullHandler(t *testing.T) {
	assert.NoError(t, Null{}.Handle(Event{Name: Error}))
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "ERROR from <nil>", Event{Name: Error}.String())
	ev := Event{Name: Error, Device: fakeSource("dev"), Data: errors.New("boom")}
	assert.Equal(t, "ERROR from dev: boom", ev.String())
}

func TestIntegerCondition(t *testing.T) {
	c := NewInteger(0, 2, nil)
	assert.False(t, c.Satisfied())
	c.Add(1)
	assert.False(t, c.Satisfied())
	c.Add(1)
	assert.True(t, c.Satisfied())
	c.Add(1)
	assert.False(t, c.Satisfied())

	ge := NewInteger(3, 2, Ge)
	assert.True(t, ge.Satisfied())
}

func TestCompareOps(t *testing.T) {
	tests := []struct {
		name string
		op   Compare
		want [3]bool // value 1, 2, 3 против цели 2
	}{
		{"eq", Eq, [3]bool{false, true, false}},
		{"ne", Ne, [3]bool{true, false, true}},
		{"lt", Lt, [3]bool{true, false, false}},
		{"le", Le, [3]bool{true, true, false}},
		{"gt", Gt, [3]bool{false, false, true}},
		{"ge", Ge, [3]bool{false, true, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, v := range []int{1, 2, 3} {
				assert.Equal(t, tt.want[i], tt.op(v, 2), "value %d", v)
			}
		})
	}
}

func TestBoolAndAllConditions(t *testing.T) {
	a, b := NewBool(false), NewBool(true)
	all := All{a, b}
	assert.False(t, all.Satisfied())
	a.Set(true)
	assert.True(t, all.Satisfied())
	assert.True(t, All{}.Satisfied())
}

func TestUnaryBinaryConditions(t *testing.T) {
	calls := NewUnary([]uint32{}, func(v []uint32) bool { return len(v) > 0 })
	assert.False(t, calls.Satisfied())
	calls.Value = append(calls.Value, 1)
	assert.True(t, calls.Satisfied())

	same := NewBinary("a", "b", func(l, r string) bool { return l == r })
	assert.False(t, same.Satisfied())
	same.Rhs = "a"
	assert.True(t, same.Satisfied())

	assert.True(t, ConditionFunc(func() bool { return true }).Satisfied())
}

func TestMatchAllOrderAndDuplicates(t *testing.T) {
	a, b := fakeSource("a"), fakeSource("b")
	incomingB := And(NameIs(CallIncoming), FromDevice(b))
	outgoingA := And(NameIs(CallOutgoing), FromDevice(a))

	orders := [][]Event{
		{{Name: CallIncoming, Device: b}, {Name: CallOutgoing, Device: a}},
		{{Name: CallOutgoing, Device: a}, {Name: CallIncoming, Device: b}},
		{{Name: CallOutgoing, Device: a}, {Name: CallOutgoing, Device: a}, {Name: CallIncoming, Device: b}},
	}
	for _, events := range orders {
		c := NewMatchAll(incomingB, outgoingA)
		for i, ev := range events {
			assert.False(t, c.Satisfied())
			require.NoError(t, c.Handle(ev))
			if i < len(events)-1 {
				assert.Equal(t, 1, c.Pending())
			}
		}
		assert.True(t, c.Satisfied())
	}
}

func TestMatchAllEmpty(t *testing.T) {
	assert.True(t, NewMatchAll().Satisfied())
}
