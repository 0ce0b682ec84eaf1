package runtime

import (
	"errors"
	"math"
	"testing"
)

func TestSetAndGet(t *testing.T) {
	a := NewArena()
	p := a.NewProperty(41)
	if v := a.Get(p); v != 41 {
		t.Errorf("initial value: %v", v)
	}
	a.Set(p, 42)
	if v := a.Get(p); v != 42 {
		t.Errorf("after set: %v", v)
	}
	if a.State(p) != Clean {
		t.Error("set cell should be clean")
	}
}

func TestTwoWaySymmetry(t *testing.T) {
	a := NewArena()
	x := a.NewProperty(1)
	y := a.NewProperty(2)
	a.LinkTwoWay(x, y)
	if v := a.Get(y); v != 1 {
		t.Errorf("link should copy the first value over: %v", v)
	}
	a.Set(x, 10)
	if v := a.Get(y); v != 10 {
		t.Errorf("set x, read y: %v", v)
	}
	a.Set(y, 20)
	if v := a.Get(x); v != 20 {
		t.Errorf("set y, read x: %v", v)
	}
}

func TestLazySingleRecomputation(t *testing.T) {
	a := NewArena()
	p1 := a.NewProperty(1)
	p2 := a.NewProperty(2)
	evals := 0
	sum := a.NewProperty(nil)
	a.SetBinding(sum, func() interface{} {
		evals++
		return a.Get(p1).(int) + a.Get(p2).(int)
	})
	if v := a.Get(sum); v != 3 {
		t.Fatalf("sum: %v", v)
	}
	if evals != 1 {
		t.Fatalf("evaluations: %d", evals)
	}
	// two input changes, no recomputation until the next read
	a.Set(p1, 10)
	a.Set(p2, 20)
	if evals != 1 {
		t.Fatalf("invalidation must not recompute: %d", evals)
	}
	if a.State(sum) != Dirty {
		t.Fatal("sum should be dirty")
	}
	if v := a.Get(sum); v != 30 {
		t.Fatalf("sum after change: %v", v)
	}
	if evals != 2 {
		t.Fatalf("one read recomputes exactly once: %d", evals)
	}
	a.Get(sum)
	if evals != 2 {
		t.Fatalf("clean read must be cached: %d", evals)
	}
}

func TestTransitiveInvalidation(t *testing.T) {
	a := NewArena()
	base := a.NewProperty(1)
	mid := a.NewProperty(nil)
	a.SetBinding(mid, func() interface{} { return a.Get(base).(int) * 2 })
	top := a.NewProperty(nil)
	a.SetBinding(top, func() interface{} { return a.Get(mid).(int) + 1 })
	other := a.NewProperty(7)
	a.Get(top)
	a.Set(base, 5)
	if a.State(top) != Dirty || a.State(mid) != Dirty {
		t.Error("change must dirty the transitive dependents")
	}
	if a.State(other) != Clean {
		t.Error("unrelated cell must stay clean")
	}
	if v := a.Get(top); v != 11 {
		t.Errorf("top: %v", v)
	}
}

func TestSubscribeFiresOnChangeAndInvalidation(t *testing.T) {
	a := NewArena()
	base := a.NewProperty(1)
	derived := a.NewProperty(nil)
	a.SetBinding(derived, func() interface{} { return a.Get(base) })
	a.Get(derived)
	fired := 0
	a.Subscribe(derived, func() { fired++ })
	a.Set(base, 2)
	if fired != 1 {
		t.Fatalf("invalidation notification: %d", fired)
	}
	// already dirty, a second input change is not a new notification
	a.Set(base, 3)
	if fired != 1 {
		t.Fatalf("no over-notification: %d", fired)
	}
	a.Get(derived)
	a.Set(base, 3)
	if fired != 1 {
		t.Fatalf("same value is not a change: %d", fired)
	}
}

func TestSetReplacesBinding(t *testing.T) {
	a := NewArena()
	base := a.NewProperty(1)
	p := a.NewProperty(nil)
	a.SetBinding(p, func() interface{} { return a.Get(base) })
	a.Get(p)
	a.Set(p, 99)
	a.Set(base, 5)
	if v := a.Get(p); v != 99 {
		t.Errorf("imperative set must sever the binding: %v", v)
	}
}

func TestDestroyUnlinksEdges(t *testing.T) {
	a := NewArena()
	base := a.NewProperty(1)
	derived := a.NewProperty(nil)
	a.SetBinding(derived, func() interface{} { return a.Get(base) })
	a.Get(derived)
	peer := a.NewProperty(0)
	a.LinkTwoWay(base, peer)
	a.Destroy(derived)
	a.Destroy(peer)
	// no dangling reverse edges may survive
	a.Set(base, 2)
	if v := a.Get(base); v != 2 {
		t.Errorf("base: %v", v)
	}
	recycled := a.NewProperty("fresh")
	if v := a.Get(recycled); v != "fresh" {
		t.Errorf("recycled cell: %v", v)
	}
}

func TestReentrantEvaluationPanics(t *testing.T) {
	a := NewArena()
	p := a.NewProperty(nil)
	a.SetBinding(p, func() interface{} { return a.Get(p) })
	defer func() {
		if recover() == nil {
			t.Error("re-entrant evaluation must panic")
		}
	}()
	a.Get(p)
}

func TestGlobalsRegistry(t *testing.T) {
	a := NewArena()
	g := NewGlobals(a)
	g.RegisterProperty("Theme", "accent", "red")
	g.RegisterCallback("Theme", "reset", func(args ...interface{}) interface{} {
		return len(args)
	})

	v, err := g.Get("Theme", "accent")
	if err != nil || v != "red" {
		t.Fatalf("get: %v %v", v, err)
	}
	if err := g.Set("Theme", "accent", "blue"); err != nil {
		t.Fatal(err)
	}
	if v, _ := g.Get("Theme", "accent"); v != "blue" {
		t.Fatalf("after set: %v", v)
	}
	n, err := g.Invoke("Theme", "reset", 1, 2)
	if err != nil || n != 2 {
		t.Fatalf("invoke: %v %v", n, err)
	}

	if _, err := g.Get("Nope", "accent"); !errors.Is(err, ErrNoSuchGlobal) {
		t.Errorf("unknown global: %v", err)
	}
	if _, err := g.Get("Theme", "nope"); !errors.Is(err, ErrNoSuchProperty) {
		t.Errorf("unknown property: %v", err)
	}
	if _, err := g.Invoke("Theme", "nope"); !errors.Is(err, ErrNoSuchCallback) {
		t.Errorf("unknown callback: %v", err)
	}
}

func TestLinearAnimation(t *testing.T) {
	a := NewArena()
	d := NewDriver(a)
	ap := d.NewAnimatedProperty(0, Animation{DurationMs: 100, Easing: LinearCurve})
	ap.Set(10)
	if !d.HasActiveAnimations() {
		t.Fatal("animation should be active")
	}
	d.AdvanceTo(50)
	if v := ap.Value(); v != 5.0 {
		t.Errorf("at half duration: %v", v)
	}
	d.AdvanceTo(100)
	if v := ap.Value(); v != 10.0 {
		t.Errorf("at full duration: %v", v)
	}
	if d.HasActiveAnimations() {
		t.Error("animation must be inactive after the duration")
	}
	d.AdvanceTo(200)
	if v := ap.Value(); v != 10.0 {
		t.Errorf("after the end: %v", v)
	}
}

func TestAnimationDelayAndSchedule(t *testing.T) {
	a := NewArena()
	d := NewDriver(a)
	ap := d.NewAnimatedProperty(0, Animation{DurationMs: 100, DelayMs: 40, Easing: LinearCurve})
	ap.Set(10)
	if wait, ok := d.DurationUntilNextChange(); !ok || wait != 40 {
		t.Errorf("wait for delayed start: %v %v", wait, ok)
	}
	d.AdvanceTo(20)
	if v := ap.Value(); v != 0.0 {
		t.Errorf("before the delay: %v", v)
	}
	if wait, ok := d.DurationUntilNextChange(); !ok || wait != 20 {
		t.Errorf("remaining delay: %v %v", wait, ok)
	}
	d.AdvanceTo(90)
	if v := ap.Value(); v != 5.0 {
		t.Errorf("mid transition: %v", v)
	}
	if wait, ok := d.DurationUntilNextChange(); !ok || wait != 1 {
		t.Errorf("interpolating wait: %v %v", wait, ok)
	}
	d.AdvanceTo(140)
	if v := ap.Value(); v != 10.0 {
		t.Errorf("end: %v", v)
	}
	if _, ok := d.DurationUntilNextChange(); ok {
		t.Error("nothing scheduled after the end")
	}
}

func TestZeroDurationJumps(t *testing.T) {
	a := NewArena()
	d := NewDriver(a)
	ap := d.NewAnimatedProperty(3, Animation{})
	ap.Set(8)
	if v := ap.Value(); v != 8.0 {
		t.Errorf("zero duration: %v", v)
	}
	if d.HasActiveAnimations() {
		t.Error("no animation should be active")
	}
}

func TestRetargetMidFlight(t *testing.T) {
	a := NewArena()
	d := NewDriver(a)
	ap := d.NewAnimatedProperty(0, Animation{DurationMs: 100, Easing: LinearCurve})
	ap.Set(10)
	d.AdvanceTo(50)
	ap.Set(0) // restart from the interpolated value
	d.AdvanceTo(100)
	if v := ap.Value(); v != 2.5 {
		t.Errorf("retargeted midpoint: %v", v)
	}
}

func TestClockDependency(t *testing.T) {
	a := NewArena()
	d := NewDriver(a)
	p := a.NewProperty(nil)
	a.SetBinding(p, func() interface{} { return d.Tick() * 2 })
	if v := a.Get(p); v != int64(0) {
		t.Fatalf("at start: %v", v)
	}
	d.AdvanceTo(30)
	if a.State(p) != Dirty {
		t.Fatal("clock advance must invalidate the reader")
	}
	if v := a.Get(p); v != int64(60) {
		t.Errorf("after advance: %v", v)
	}
	// the clock never moves backwards
	d.AdvanceTo(10)
	if v := a.Get(p); v != int64(60) {
		t.Errorf("backward advance ignored: %v", v)
	}
}

func TestEasingCurves(t *testing.T) {
	curves := []EasingCurve{LinearCurve, EaseCurve, EaseInCurve, EaseOutCurve, EaseInOutCurve}
	for _, c := range curves {
		if v := c.Apply(0); v != 0 {
			t.Errorf("%s at 0: %v", c.Name, v)
		}
		if v := c.Apply(1); v != 1 {
			t.Errorf("%s at 1: %v", c.Name, v)
		}
	}
	if v := LinearCurve.Apply(0.25); v != 0.25 {
		t.Errorf("linear: %v", v)
	}
	// ease-in-out is point symmetric around the middle
	if v := EaseInOutCurve.Apply(0.5); math.Abs(v-0.5) > 1e-9 {
		t.Errorf("ease-in-out midpoint: %v", v)
	}
	in := EaseInCurve.Apply(0.2)
	if in >= 0.2 {
		t.Errorf("ease-in should start slow: %v", in)
	}
	out := EaseOutCurve.Apply(0.2)
	if out <= 0.2 {
		t.Errorf("ease-out should start fast: %v", out)
	}
	if CurveByName("ease-in-out") != EaseInOutCurve {
		t.Error("curve lookup by name")
	}
	if CurveByName("bogus") != LinearCurve {
		t.Error("unknown names fall back to linear")
	}
}

func TestColorInterpolation(t *testing.T) {
	black := RGB(0, 0, 0)
	white := RGB(255, 255, 255)
	if c := black.Interpolate(white, 0); c != black {
		t.Errorf("t=0: %08x", uint32(c))
	}
	if c := black.Interpolate(white, 1); c != white {
		t.Errorf("t=1: %08x", uint32(c))
	}
	mid := black.Interpolate(white, 0.5)
	if mid.Red() != 128 || mid.Green() != 128 || mid.Blue() != 128 || mid.Alpha() != 255 {
		t.Errorf("midpoint: %08x", uint32(mid))
	}
}

func TestAnimatedColor(t *testing.T) {
	a := NewArena()
	d := NewDriver(a)
	ac := d.NewAnimatedColor(RGB(0, 0, 0), Animation{DurationMs: 100, Easing: LinearCurve})
	ac.Set(RGB(200, 100, 50))
	d.AdvanceTo(50)
	got := ac.Value()
	if got.Red() != 100 || got.Green() != 50 || got.Blue() != 25 {
		t.Errorf("halfway: %08x", uint32(got))
	}
	d.AdvanceTo(100)
	if got := ac.Value(); got != RGB(200, 100, 50) {
		t.Errorf("end: %08x", uint32(got))
	}
}
