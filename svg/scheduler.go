package svg

import (
	"sync"

	"github.com/kotuku-run/parasol/core/object"
)

// animState is the scheduler's per-Animation bookkeeping: the baseline
// value to restore on Fill=Remove, and whether the animation has ever
// applied a value (recorded only; Fill=Remove restores the baseline
// whether or not it is set).
type animState struct {
	anim     *Animation
	baseline float64
	applied  bool
	done     bool
}

// Scheduler advances every registered Animation on each Tick, computing
// SMIL timing and writing interpolated values back through
// core/object.SetField. One Scheduler typically corresponds to one SVG
// document's timeline.
type Scheduler struct {
	mu    sync.Mutex
	anims []*animState
}

func NewScheduler() *Scheduler { return &Scheduler{} }

// Register adds anim to the schedule, capturing its target's current
// field value as the baseline to restore under Fill=Remove.
func (s *Scheduler) Register(anim *Animation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	baseline := 0.0
	if anim.Target != nil {
		if v, err := object.GetField(anim.Target.Object(), anim.Target.Class(), anim.Target.FieldName()); err == nil && v.Kind == object.KindFloat64 {
			baseline = v.Float
		}
	}
	s.anims = append(s.anims, &animState{anim: anim, baseline: baseline})
}

// Tick advances every registered animation to time now (seconds since
// timeline start) and applies its computed value, following the
// original scheduler's per-frame algorithm:
//
//  1. skip animations not yet begun (now < Begin)
//  2. compute elapsed = now - Begin
//  3. determine the active repeat count and whether it has completed
//  4. if completed and Fill=Remove, restore the baseline once and mark done
//  5. if completed and Fill=Freeze, hold the final value and mark done
//  6. otherwise compute local progress within the current repeat cycle
//  7. interpolate and write the value through SetField, honoring
//     Additive (sum with baseline) and Accumulate (add repeat-count *
//     total delta)
func (s *Scheduler) Tick(now float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.anims {
		if st.done {
			continue
		}
		a := st.anim
		if now < a.Begin {
			continue
		}

		elapsed := now - a.Begin
		if a.Duration <= 0 {
			// Indefinite duration: hold at the first keyframe forever.
			s.apply(st, valueAt(a, 0))
			continue
		}

		cycle := elapsed / a.Duration
		completedCycles := int(cycle)
		localT := cycle - float64(completedCycles)

		completed := !a.isIndefiniteRepeat() && cycle >= a.RepeatCount
		if completed {
			switch a.Fill {
			case FillFreeze:
				// A whole-number RepeatCount ends exactly on a cycle
				// boundary, so the cycle it just finished is not one of
				// the completed cycles preceding it. A fractional
				// RepeatCount ends mid-cycle, so the cycle count
				// preceding that partial final cycle is simply its
				// integer part.
				finalT := a.RepeatCount - float64(int(a.RepeatCount))
				finalCycles := int(a.RepeatCount)
				if finalT == 0 {
					finalT = 1
					finalCycles--
				}
				s.apply(st, s.accumulated(a, valueAt(a, finalT), finalCycles))
			case FillRemove:
				s.applyRaw(st, st.baseline)
			}
			st.done = true
			continue
		}

		v := valueAt(a, localT)
		if a.Accumulate {
			v = s.accumulated(a, v, completedCycles)
		}
		s.apply(st, v)
	}
}

// valueAt interpolates a single-channel value for an animation at local
// progress t in [0,1]. Every kind reads Values; Transform/Motion kinds
// are interpolated from Values too, and their Transform/Motion payloads
// are not read.
func valueAt(a *Animation, t float64) float64 {
	if a.Kind == KindSet {
		if len(a.Values) > 0 {
			return a.Values[0]
		}
		return 0
	}
	if len(a.Values) == 0 {
		return 0
	}
	keyTimes := a.KeyTimes
	if len(keyTimes) != len(a.Values) {
		keyTimes = evenKeyTimes(len(a.Values))
	}
	return interpolatorFor(a.CalcMode)(a.Values, keyTimes, a.KeySplines, t)
}

func evenKeyTimes(n int) []float64 {
	if n < 2 {
		return []float64{0}
	}
	kt := make([]float64, n)
	for i := range kt {
		kt[i] = float64(i) / float64(n-1)
	}
	return kt
}

// accumulated implements accumulate="sum" (Animation.Accumulate): each completed repeat
// cycle adds one full pass of the value delta on top of the current
// interpolated value.
func (s *Scheduler) accumulated(a *Animation, v float64, completedCycles int) float64 {
	if !a.Accumulate || len(a.Values) == 0 || completedCycles <= 0 {
		return v
	}
	delta := a.Values[len(a.Values)-1] - a.Values[0]
	return v + delta*float64(completedCycles)
}

func (s *Scheduler) apply(st *animState, v float64) {
	if st.anim.Additive {
		v += st.baseline
	}
	s.applyRaw(st, v)
}

func (s *Scheduler) applyRaw(st *animState, v float64) {
	st.applied = true
	a := st.anim
	if a.Target == nil {
		return
	}
	object.SetField(a.Target.Object(), a.Target.Class(), a.Target.FieldName(), object.VFloat(v))
}
