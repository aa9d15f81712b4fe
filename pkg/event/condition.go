package event

// Condition логическое условие, перевычисляемое по мере поступления событий
type Condition interface {
	Satisfied() bool
}

// ConditionFunc функция как условие
type ConditionFunc func() bool

func (f ConditionFunc) Satisfied() bool {
	return f()
}

// Bool флаг
type Bool struct {
	value bool
}

// NewBool создает флаг с начальным значением
func NewBool(value bool) *Bool {
	return &Bool{value: value}
}

// Set выставляет значение флага
func (c *Bool) Set(value bool) {
	c.value = value
}

func (c *Bool) Satisfied() bool {
	return c.value
}

// Compare сравнение счетчика с целью
type Compare func(value, target int) bool

// Сравнения для Integer
var (
	Eq Compare = func(v, t int) bool { return v == t }
	Ne Compare = func(v, t int) bool { return v != t }
	Lt Compare = func(v, t int) bool { return v < t }
	Le Compare = func(v, t int) bool { return v <= t }
	Gt Compare = func(v, t int) bool { return v > t }
	Ge Compare = func(v, t int) bool { return v >= t }
)

// Integer счетчик, сравниваемый с целью
type Integer struct {
	Value  int
	Target int
	op     Compare
}

// NewInteger создает счетчик. nil op означает Eq.
func NewInteger(value, target int, op Compare) *Integer {
	if op == nil {
		op = Eq
	}
	return &Integer{Value: value, Target: target, op: op}
}

// Add увеличивает счетчик на inc
func (c *Integer) Add(inc int) {
	c.Value += inc
}

func (c *Integer) Satisfied() bool {
	return c.op(c.Value, c.Target)
}

// All конъюнкция условий. Пустая конъюнкция истинна.
type All []Condition

func (c All) Satisfied() bool {
	for _, cond := range c {
		if !cond.Satisfied() {
			return false
		}
	}
	return true
}

// Unary предикат над значением
type Unary[T any] struct {
	Value T
	op    func(T) bool
}

// NewUnary создает условие op(value)
func NewUnary[T any](value T, op func(T) bool) *Unary[T] {
	return &Unary[T]{Value: value, op: op}
}

func (c *Unary[T]) Satisfied() bool {
	return c.op(c.Value)
}

// Binary предикат над парой значений
type Binary[T any] struct {
	Lhs T
	Rhs T
	op  func(lhs, rhs T) bool
}

// NewBinary создает условие op(lhs, rhs)
func NewBinary[T any](lhs, rhs T, op func(lhs, rhs T) bool) *Binary[T] {
	return &Binary[T]{Lhs: lhs, Rhs: rhs, op: op}
}

func (c *Binary[T]) Satisfied() bool {
	return c.op(c.Lhs, c.Rhs)
}

// MatchAll одновременно обработчик и условие: истинно, когда каждый
// предикат совпал хотя бы с одним событием. Повторные совпадения
// ничего не добавляют.
type MatchAll struct {
	matchers []Matcher
	pending  map[int]struct{}
}

// NewMatchAll создает условие над набором предикатов
func NewMatchAll(matchers ...Matcher) *MatchAll {
	pending := make(map[int]struct{}, len(matchers))
	for i := range matchers {
		pending[i] = struct{}{}
	}
	return &MatchAll{matchers: matchers, pending: pending}
}

func (c *MatchAll) Handle(ev Event) error {
	for i, m := range c.matchers {
		if _, ok := c.pending[i]; ok && m(ev) {
			delete(c.pending, i)
		}
	}
	return nil
}

// Pending количество еще не совпавших предикатов
func (c *MatchAll) Pending() int {
	return len(c.pending)
}

func (c *MatchAll) Satisfied() bool {
	return len(c.pending) == 0
}
