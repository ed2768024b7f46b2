package svg

import "math"

// Interpolator computes a value at normalised progress t in [0,1]
// between two keyframe-adjacent samples.
type Interpolator func(values []float64, keyTimes []float64, splines []KeySpline, t float64) float64

func interpolatorFor(mode CalcMode) Interpolator {
	switch mode {
	case CalcDiscrete:
		return discreteInterp
	case CalcPaced:
		return pacedInterp
	case CalcSpline:
		return splineInterp
	default:
		return linearInterp
	}
}

// segmentFor locates the keyTime bracket [i, i+1] containing t and
// returns the local progress within that segment.
func segmentFor(keyTimes []float64, t float64) (lo, hi int, local float64) {
	if len(keyTimes) < 2 {
		return 0, 0, 0
	}
	for i := 0; i < len(keyTimes)-1; i++ {
		if t >= keyTimes[i] && t <= keyTimes[i+1] {
			span := keyTimes[i+1] - keyTimes[i]
			if span <= 0 {
				return i, i + 1, 0
			}
			return i, i + 1, (t - keyTimes[i]) / span
		}
	}
	return len(keyTimes) - 2, len(keyTimes) - 1, 1
}

func discreteInterp(values []float64, keyTimes []float64, _ []KeySpline, t float64) float64 {
	lo, _, local := segmentFor(keyTimes, t)
	if local >= 1 {
		return values[lo+1]
	}
	return values[lo]
}

func linearInterp(values []float64, keyTimes []float64, _ []KeySpline, t float64) float64 {
	lo, hi, local := segmentFor(keyTimes, t)
	return values[lo] + (values[hi]-values[lo])*local
}

// pacedInterp recomputes progress so that equal increments of distance
// travelled (not time) map to equal animation steps, matching SMIL's
// calcMode="paced": cumulative per-segment distance replaces the
// author-supplied keyTimes entirely.
func pacedInterp(values []float64, keyTimes []float64, _ []KeySpline, t float64) float64 {
	if len(values) < 2 {
		if len(values) == 1 {
			return values[0]
		}
		return 0
	}
	cum := make([]float64, len(values))
	total := 0.0
	for i := 1; i < len(values); i++ {
		total += math.Abs(values[i] - values[i-1])
		cum[i] = total
	}
	if total == 0 {
		return values[0]
	}
	target := t * total
	for i := 1; i < len(cum); i++ {
		if target <= cum[i] {
			span := cum[i] - cum[i-1]
			local := 0.0
			if span > 0 {
				local = (target - cum[i-1]) / span
			}
			return values[i-1] + (values[i]-values[i-1])*local
		}
	}
	return values[len(values)-1]
}

// splineInterp applies a cubic Bézier easing curve (keySplines) within
// the keyTimes segment containing t, solving for the Bézier parameter
// via Newton-Raphson the way CSS/SMIL implementations commonly do.
func splineInterp(values []float64, keyTimes []float64, splines []KeySpline, t float64) float64 {
	lo, hi, local := segmentFor(keyTimes, t)
	if lo >= len(splines) {
		return linearInterp(values, keyTimes, splines, t)
	}
	eased := solveBezierY(splines[lo], local)
	return values[lo] + (values[hi]-values[lo])*eased
}

// solveBezierY finds y for the cubic Bézier defined by control points
// (0,0), (x1,y1), (x2,y2), (1,1) at parameter x, via at most 8
// Newton-Raphson steps clamped to [0,1]. It stops early where the slope
// is near zero and has no bisection fallback.
func solveBezierY(s KeySpline, x float64) float64 {
	bezier := func(p0, p1, p2, p3, u float64) float64 {
		mu := 1 - u
		return mu*mu*mu*p0 + 3*mu*mu*u*p1 + 3*mu*u*u*p2 + u*u*u*p3
	}
	bezierDeriv := func(p0, p1, p2, p3, u float64) float64 {
		mu := 1 - u
		return 3*mu*mu*(p1-p0) + 6*mu*u*(p2-p1) + 3*u*u*(p3-p2)
	}

	u := x
	for i := 0; i < 8; i++ {
		fx := bezier(0, s.X1, s.X2, 1, u) - x
		dfx := bezierDeriv(0, s.X1, s.X2, 1, u)
		if math.Abs(dfx) < 1e-6 {
			break
		}
		u -= fx / dfx
		if u < 0 {
			u = 0
		} else if u > 1 {
			u = 1
		}
	}
	return bezier(0, s.Y1, s.Y2, 1, u)
}
