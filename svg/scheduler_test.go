package svg

import (
	"testing"

	"github.com/kotuku-run/parasol/core/object"
	"github.com/stretchr/testify/require"
)

type fakeNode struct{ x float64 }

type fakeTarget struct {
	node  *fakeNode
	class *object.Class
}

func (f *fakeTarget) Object() any           { return f.node }
func (f *fakeTarget) Class() *object.Class  { return f.class }
func (f *fakeTarget) FieldName() string     { return "X" }

func newFakeTarget() *fakeTarget {
	c := object.NewClass("Node", 1, func() any { return &fakeNode{} })
	c.AddField("X", object.FieldReadable|object.FieldWritable,
		func(obj any) (object.Variant, error) { return object.VFloat(obj.(*fakeNode).x), nil },
		func(obj any, v object.Variant) error { obj.(*fakeNode).x = v.Float; return nil },
	)
	c.Finalize()
	return &fakeTarget{node: &fakeNode{}, class: c}
}

func TestSchedulerLinearInterpolation(t *testing.T) {
	target := newFakeTarget()
	s := NewScheduler()
	anim := &Animation{
		Kind: KindValue, Target: target,
		Begin: 0, Duration: 10, RepeatCount: 1,
		CalcMode: CalcLinear,
		Values:   []float64{0, 100},
	}
	s.Register(anim)

	s.Tick(5)
	require.InDelta(t, 50, target.node.x, 0.001)

	s.Tick(10)
	require.InDelta(t, 0, target.node.x, 0.001) // Fill=Remove restores baseline
}

func TestSchedulerFreeze(t *testing.T) {
	target := newFakeTarget()
	s := NewScheduler()
	anim := &Animation{
		Kind: KindValue, Target: target,
		Begin: 0, Duration: 10, RepeatCount: 1, Fill: FillFreeze,
		CalcMode: CalcLinear,
		Values:   []float64{0, 100},
	}
	s.Register(anim)
	s.Tick(20)
	require.InDelta(t, 100, target.node.x, 0.001)
}

func TestSchedulerDiscrete(t *testing.T) {
	target := newFakeTarget()
	s := NewScheduler()
	anim := &Animation{
		Kind: KindValue, Target: target,
		Begin: 0, Duration: 10, RepeatCount: 1,
		CalcMode: CalcDiscrete,
		Values:   []float64{0, 50, 100},
	}
	s.Register(anim)
	s.Tick(2)
	require.Equal(t, 0.0, target.node.x)
	s.Tick(6)
	require.Equal(t, 50.0, target.node.x)
}

func TestPacedInterpolation(t *testing.T) {
	values := []float64{0, 10, 100}
	v := pacedInterp(values, nil, nil, 0.5)
	require.InDelta(t, 50, v, 0.001)
}

func TestSplineEasing(t *testing.T) {
	s := KeySpline{X1: 0.25, Y1: 0.1, X2: 0.25, Y2: 1}
	y := solveBezierY(s, 0.5)
	require.Greater(t, y, 0.5)
}

// TestSchedulerFreezeAccumulate: a translate 0->10 with RepeatCount=3
// and accumulate=sum must freeze at offset 30 (one pass of delta 10 for
// each of the two cycles completed before the third, final one plays
// out), not 40.
func TestSchedulerFreezeAccumulate(t *testing.T) {
	target := newFakeTarget()
	s := NewScheduler()
	anim := &Animation{
		Kind: KindValue, Target: target,
		Begin: 0, Duration: 10, RepeatCount: 3,
		Fill: FillFreeze, Accumulate: true,
		CalcMode: CalcLinear,
		Values:   []float64{0, 10},
	}
	s.Register(anim)
	s.Tick(30)
	require.InDelta(t, 30, target.node.x, 0.001)
}

func TestIndefiniteRepeatNeverCompletes(t *testing.T) {
	target := newFakeTarget()
	s := NewScheduler()
	anim := &Animation{
		Kind: KindValue, Target: target,
		Begin: 0, Duration: 10, RepeatCount: -1,
		CalcMode: CalcLinear,
		Values:   []float64{0, 100},
	}
	s.Register(anim)
	s.Tick(25) // well past one cycle
	require.InDelta(t, 50, target.node.x, 0.001)
}
