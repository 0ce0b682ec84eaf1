package runtime

// EasingCurve maps normalized animation time to an interpolation factor.
// The parametric curves solve for the bezier parameter whose x component
// matches the input, then evaluate the y component at that parameter.
type EasingCurve struct {
	Name           string // "linear" or "cubic-bezier"
	X1, Y1, X2, Y2 float64
}

var (
	LinearCurve    = EasingCurve{Name: "linear"}
	EaseCurve      = CubicBezier(0.25, 0.1, 0.25, 1.0)
	EaseInCurve    = CubicBezier(0.42, 0, 1.0, 1.0)
	EaseOutCurve   = CubicBezier(0, 0, 0.58, 1.0)
	EaseInOutCurve = CubicBezier(0.42, 0, 0.58, 1.0)
)

func CubicBezier(x1, y1, x2, y2 float64) EasingCurve {
	return EasingCurve{Name: "cubic-bezier", X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// CurveByName resolves the easing keywords; unknown names fall back to
// linear.
func CurveByName(name string) EasingCurve {
	switch name {
	case "ease":
		return EaseCurve
	case "ease-in":
		return EaseInCurve
	case "ease-out":
		return EaseOutCurve
	case "ease-in-out":
		return EaseInOutCurve
	}
	return LinearCurve
}

// Apply maps t in [0,1] to the eased interpolation factor.
func (c EasingCurve) Apply(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	if c.Name != "cubic-bezier" {
		return t
	}
	p := c.solveForX(t)
	return bezierComponent(p, c.Y1, c.Y2)
}

// solveForX finds the curve parameter whose x component equals t, by
// bisection. The x component is monotonic for control points in [0,1], so
// 64 halvings pin the parameter well below float precision.
func (c EasingCurve) solveForX(t float64) float64 {
	lo, hi := 0.0, 1.0
	for i := 0; i < 64; i++ {
		mid := (lo + hi) / 2
		if bezierComponent(mid, c.X1, c.X2) < t {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// bezierComponent evaluates one component of the cubic bezier with end
// points 0 and 1 and the given control values.
func bezierComponent(p, c1, c2 float64) float64 {
	inv := 1 - p
	return 3*inv*inv*p*c1 + 3*inv*p*p*c2 + p*p*p
}
