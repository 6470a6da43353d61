package workload

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"hop.computer/containers/pkg/array"
	"hop.computer/containers/pkg/list"
	"hop.computer/containers/pkg/readers"
	"hop.computer/containers/pkg/seq"
)

// ErrExpectation is wrapped by step failures caused by a container state or
// result that differs from what the scenario expects.
var ErrExpectation = errors.New("expectation failed")

// target adapts one container to the step operations.
type target interface {
	seq.Sequence[int]
	apply(s Step) error
	// isolated clones the container, mutates the clone and reports whether
	// the original is unchanged.
	isolated(v int) bool
}

func newTarget(kind string, sc *Scenario) target {
	if kind == KindArray {
		return &arrayTarget{
			Array:       array.New(sc.Size, sc.Fill),
			incremental: sc.Strategy == StrategyIncremental,
		}
	}
	return &listTarget{List: list.New(sc.Size, sc.Fill)}
}

func expect(t target, want []int) error {
	got := seq.Collect[int](t)
	if !slices.Equal(got, want) {
		return errors.Wrapf(ErrExpectation, "got %v, want %v", got, want)
	}
	return nil
}

// drain empties t from the back. If want is set, the removed values must match
// it in removal order.
func drain(t target, want []int) error {
	got := seq.Drain[int](t)
	if want != nil && !slices.Equal(got, want) {
		return errors.Wrapf(ErrExpectation, "drained %v, want %v", got, want)
	}
	return nil
}

var frontVariant = map[string]string{
	OpPushBack: OpPushFront,
	OpPopBack:  OpPopFront,
}

// randomOps applies s.N operations drawn from s.Seed. Pushes are twice as
// likely as pops, so runs tend to grow. With frontOps, a coin flip moves each
// push or pop to the front.
func randomOps(t target, s Step, frontOps bool) error {
	p := readers.NewPicker(s.Seed)
	front := readers.NewDeterministicCoinFlipper(s.Seed+1, 1)
	ops := []string{OpPushBack, OpPushBack, OpPopBack, OpResize}
	for i := 0; i < s.N; i++ {
		v := readers.Below(p, 1000)
		op := readers.Choose(p, ops)
		if op == OpResize {
			t.Resize(readers.Below(p, 2*t.Len()+2), v)
			continue
		}
		if frontOps && front.Flip() {
			op = frontVariant[op]
		}
		if err := t.apply(Step{Op: op, Value: v}); err != nil {
			return errors.Wrapf(err, "random op %d (%s)", i, op)
		}
	}
	return nil
}

type arrayTarget struct {
	*array.Array[int]
	incremental bool
}

// PushBack appends v with the scenario's growth strategy.
func (t *arrayTarget) PushBack(v int) {
	if t.incremental {
		t.Array.PushBackIncremental(v)
	} else {
		t.Array.PushBack(v)
	}
}

func (t *arrayTarget) apply(s Step) error {
	a := t.Array
	switch s.Op {
	case OpPushBack:
		t.PushBack(s.Value)
	case OpPopBack:
		a.PopBack()
	case OpInsert:
		pos := s.Pos
		if s.End {
			pos = a.End()
		}
		a.Insert(pos, s.Value)
	case OpErase:
		pos := s.Pos
		if s.End {
			pos = a.End() - 1
		}
		a.Erase(pos)
	case OpResize:
		a.Resize(s.N, s.Value)
	case OpReserve:
		a.Reserve(s.N)
	case OpClear:
		a.Clear()
	case OpAt:
		v, err := a.At(s.Pos)
		switch {
		case s.Fail && err == nil:
			return errors.Wrapf(ErrExpectation, "at(%d) = %d, want out of range", s.Pos, v)
		case s.Fail:
			return nil
		case err != nil:
			return err
		case v != s.Value:
			return errors.Wrapf(ErrExpectation, "at(%d) = %d, want %d", s.Pos, v, s.Value)
		}
	case OpExpect:
		return expect(t, s.Values)
	case OpClone:
		if !t.isolated(s.Value) {
			return errors.Wrap(ErrExpectation, "clone shares storage with the original")
		}
	case OpFill:
		seq.Fill[int](t, s.Values...)
	case OpDrain:
		return drain(t, s.Values)
	case OpRandom:
		return randomOps(t, s, false)
	default:
		return errors.Wrapf(ErrUnsupportedOp, "%s on array", s.Op)
	}
	return nil
}

func (t *arrayTarget) isolated(v int) bool {
	orig := t.Clone()
	c := t.Clone()
	c.PushBack(v)
	c.Set(0, v)
	return seq.Equal[int](t, orig)
}

type listTarget struct {
	*list.List[int]
}

// position walks pos steps from the front.
func (t *listTarget) position(pos int) list.Iterator[int] {
	it := t.Begin()
	for i := 0; i < pos; i++ {
		it = it.Next()
	}
	return it
}

func (t *listTarget) apply(s Step) error {
	l := t.List
	switch s.Op {
	case OpPushBack:
		l.PushBack(s.Value)
	case OpPushFront:
		l.PushFront(s.Value)
	case OpPopBack:
		l.PopBack()
	case OpPopFront:
		l.PopFront()
	case OpInsert:
		if s.End {
			l.Insert(l.End(), s.Value)
		} else {
			l.Insert(t.position(s.Pos), s.Value)
		}
	case OpErase:
		// Erasing at the end position removes the last element.
		if s.End {
			l.Erase(l.End())
		} else {
			l.Erase(t.position(s.Pos))
		}
	case OpResize:
		l.Resize(s.N, s.Value)
	case OpClear:
		l.Clear()
	case OpExpect:
		return expect(t, s.Values)
	case OpClone:
		if !t.isolated(s.Value) {
			return errors.Wrap(ErrExpectation, "clone shares nodes with the original")
		}
	case OpFill:
		seq.Fill[int](t, s.Values...)
	case OpDrain:
		return drain(t, s.Values)
	case OpRandom:
		return randomOps(t, s, true)
	default:
		return errors.Wrapf(ErrUnsupportedOp, "%s on list", s.Op)
	}
	return nil
}

func (t *listTarget) isolated(v int) bool {
	orig := t.Clone()
	c := t.Clone()
	c.PushFront(v)
	if second := c.Begin().Next(); !second.IsEnd() {
		second.Set(v)
	}
	c.PopBack()
	return seq.Equal[int](t, orig)
}
