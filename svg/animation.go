// Package svg implements Parasol's SVG animation scheduler: SMIL timing
// (begin/duration/repeatCount/fill/additive/accumulate/calcMode) and the
// per-tick interpolation driving animated attribute values.
//
// Grounded on original_source/include/parasol/modules/svg.h for the
// class-specific negative method IDs (Render = -1, ParseSymbol = -2)
// that SVG objects expose alongside the universal action set, and on
// the svg/smil.go-style scheduling shape found across the pack's
// timer-driven components (core/eventloop's timer wheel is reused here
// rather than duplicated — Scheduler.Tick is meant to be driven by an
// eventloop.Loop timer, not to run its own clock).
package svg

import "github.com/kotuku-run/parasol/core/object"

// CalcMode selects how Scheduler interpolates between animation values.
type CalcMode int

const (
	CalcDiscrete CalcMode = iota
	CalcLinear
	CalcPaced
	CalcSpline
)

// Fill selects the animation's behaviour once its active duration ends.
type Fill int

const (
	FillRemove Fill = iota // revert to the underlying (non-animated) value
	FillFreeze            // hold the last computed value
)

// AnimKind tags which of Parasol's four animation element types (SMIL
// <animate>/<animateTransform>/<animateMotion>/<set>) a given Animation
// represents.
type AnimKind int

const (
	KindValue AnimKind = iota
	KindTransform
	KindMotion
	KindSet
)

// Target receives interpolated values, routed through core/object's
// field dispatch so an animated attribute is indistinguishable from one
// set by any other caller (spec requirement: animated nodes remain
// first-class kernel objects).
type Target interface {
	Object() any
	Class() *object.Class
	FieldName() string
}

// KeySpline is one cubic Bézier control pair for CalcSpline timing
// between two keyTimes, matching SMIL's keySplines attribute.
type KeySpline struct {
	X1, Y1, X2, Y2 float64
}

// Animation is the tagged union of SMIL timing plus the value set being
// interpolated; Kind selects which of Values/Transform/Motion describes
// it, though the Scheduler interpolates every kind from Values.
type Animation struct {
	Kind   AnimKind
	Target Target

	Begin         float64 // seconds, relative to document/timeline start
	Duration      float64 // seconds; 0 = indefinite (never completes on its own)
	RepeatCount   float64 // fractional repeats allowed; <0 means "indefinite"
	Fill          Fill
	Additive      bool
	Accumulate    bool
	CalcMode      CalcMode
	KeyTimes      []float64 // normalised [0,1], parallel to Values
	KeySplines    []KeySpline

	Values    []float64 // KindValue / KindSet (KindSet uses Values[0] only)
	Transform TransformAnim
	Motion    MotionAnim
}

// TransformAnim models animateTransform's single transform-type payload
// (translate/scale/rotate/skewX/skewY), each row of From holding that
// transform's parameter vector at each keyTime.
type TransformAnim struct {
	Type string
	From [][]float64
}

// MotionAnim models animateMotion's path-following payload: a
// pre-sampled polyline (since full path-data parsing is out of the
// spec's SVG scope) with optional per-point rotation.
type MotionAnim struct {
	Points   [][2]float64
	Rotate   []float64
	HasRotate bool
}

// isIndefiniteRepeat reports whether RepeatCount represents SMIL's
// "indefinite" keyword.
func (a *Animation) isIndefiniteRepeat() bool { return a.RepeatCount < 0 }
