package runtime

// Color is a 0xAARRGGBB value, matching the compiler's color literals.
type Color uint32

func RGB(r, g, b uint8) Color {
	return RGBA(0xff, r, g, b)
}

func RGBA(a, r, g, b uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

func (c Color) Alpha() uint8 { return uint8(c >> 24) }
func (c Color) Red() uint8   { return uint8(c >> 16) }
func (c Color) Green() uint8 { return uint8(c >> 8) }
func (c Color) Blue() uint8  { return uint8(c) }

// Interpolate mixes two colors channel-wise; t 0 is c, t 1 is to.
// Animated color bindings use this as their interpolation step.
func (c Color) Interpolate(to Color, t float64) Color {
	if t <= 0 {
		return c
	}
	if t >= 1 {
		return to
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
	}
	return RGBA(
		mix(c.Alpha(), to.Alpha()),
		mix(c.Red(), to.Red()),
		mix(c.Green(), to.Green()),
		mix(c.Blue(), to.Blue()),
	)
}

// AnimatedColor interpolates a color property the way AnimatedProperty
// interpolates a number.
type AnimatedColor struct {
	driver  *Driver
	cell    Property
	anim    Animation
	from    Color
	to      Color
	start   int64
	running bool
}

func (d *Driver) NewAnimatedColor(initial Color, anim Animation) *AnimatedColor {
	ac := &AnimatedColor{
		driver: d,
		anim:   anim,
		from:   initial,
		to:     initial,
	}
	ac.cell = d.arena.NewProperty(initial)
	return ac
}

func (ac *AnimatedColor) Cell() Property { return ac.cell }

func (ac *AnimatedColor) Value() Color {
	return ac.driver.arena.Get(ac.cell).(Color)
}

func (ac *AnimatedColor) Set(target Color) {
	ac.from = ac.Value()
	ac.to = target
	ac.start = ac.driver.now()
	if ac.anim.DurationMs <= 0 {
		ac.running = false
		ac.driver.arena.Set(ac.cell, target)
		return
	}
	ac.running = true
	ac.driver.arena.SetBinding(ac.cell, ac.compute)
}

func (ac *AnimatedColor) compute() interface{} {
	now := ac.driver.Tick()
	elapsed := now - ac.start - ac.anim.DelayMs
	if elapsed < 0 {
		return ac.from
	}
	if ac.anim.LoopCount >= 0 &&
		now >= ac.start+ac.anim.DelayMs+ac.anim.DurationMs*ac.anim.loops() {
		ac.running = false
		return ac.to
	}
	pos := elapsed % ac.anim.DurationMs
	t := float64(pos) / float64(ac.anim.DurationMs)
	return ac.from.Interpolate(ac.to, ac.anim.Easing.Apply(t))
}
