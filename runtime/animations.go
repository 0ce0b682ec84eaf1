package runtime

// Driver owns the virtual animation clock: an integer millisecond instant
// advanced only by an explicit AdvanceTo call from the host, once per
// frame. The clock is itself a property cell, so a binding that reads it
// through Tick re-evaluates whenever the clock advances.
type Driver struct {
	arena      *Arena
	clock      Property
	animations []*AnimatedProperty
}

func NewDriver(arena *Arena) *Driver {
	return &Driver{
		arena: arena,
		clock: arena.NewProperty(int64(0)),
	}
}

// Tick reads the current virtual instant in milliseconds. Called from
// inside a binding it records the clock dependency.
func (d *Driver) Tick() int64 {
	return d.arena.Get(d.clock).(int64)
}

// AdvanceTo moves the virtual clock forward, invalidating every binding
// that read it. The clock never moves backwards.
func (d *Driver) AdvanceTo(ms int64) {
	if ms <= d.now() {
		return
	}
	d.arena.Set(d.clock, ms)
}

// now reads the clock without recording a dependency.
func (d *Driver) now() int64 {
	return d.arena.cells[d.clock].value.(int64)
}

// HasActiveAnimations reports whether any animated property still has a
// transition in flight at the current instant.
func (d *Driver) HasActiveAnimations() bool {
	active := false
	now := d.now()
	for _, ap := range d.animations {
		if ap.running && ap.finishedAt(now) {
			ap.running = false
		}
		if ap.running {
			active = true
		}
	}
	return active
}

// DurationUntilNextChange tells the host how long it may sleep before an
// animated value changes: the time to the nearest delayed start, or one
// millisecond while a transition is interpolating. The boolean is false
// when nothing is scheduled.
func (d *Driver) DurationUntilNextChange() (int64, bool) {
	if !d.HasActiveAnimations() {
		return 0, false
	}
	now := d.now()
	next := int64(-1)
	for _, ap := range d.animations {
		if !ap.running {
			continue
		}
		wait := int64(1)
		if begin := ap.start + ap.anim.DelayMs; now < begin {
			wait = begin - now
		}
		if next < 0 || wait < next {
			next = wait
		}
	}
	return next, true
}

// Animation configures how an AnimatedProperty moves between values.
// LoopCount 0 or 1 runs the transition once, n runs it n times, -1 loops
// forever.
type Animation struct {
	DurationMs int64
	DelayMs    int64
	LoopCount  int
	Easing     EasingCurve
}

func (a Animation) loops() int64 {
	if a.LoopCount > 1 {
		return int64(a.LoopCount)
	}
	return 1
}

// AnimatedProperty interpolates a float property towards each new target
// instead of jumping. The backing cell's binding reads the virtual clock,
// so every AdvanceTo invalidates it and the next read produces the value
// for the new instant.
type AnimatedProperty struct {
	driver  *Driver
	cell    Property
	anim    Animation
	from    float64
	to      float64
	start   int64
	running bool
}

func (d *Driver) NewAnimatedProperty(initial float64, anim Animation) *AnimatedProperty {
	ap := &AnimatedProperty{
		driver: d,
		anim:   anim,
		from:   initial,
		to:     initial,
	}
	ap.cell = d.arena.NewProperty(initial)
	d.animations = append(d.animations, ap)
	return ap
}

// Cell exposes the backing property so other bindings can depend on the
// animated value.
func (ap *AnimatedProperty) Cell() Property { return ap.cell }

// Value reads the animated value at the current virtual instant.
func (ap *AnimatedProperty) Value() float64 {
	return ap.driver.arena.Get(ap.cell).(float64)
}

// Set starts a transition from the current animated value to target. A
// zero duration applies the target immediately.
func (ap *AnimatedProperty) Set(target float64) {
	ap.from = ap.Value()
	ap.to = target
	ap.start = ap.driver.now()
	if ap.anim.DurationMs <= 0 {
		ap.running = false
		ap.driver.arena.Set(ap.cell, target)
		return
	}
	ap.running = true
	ap.driver.arena.SetBinding(ap.cell, ap.compute)
}

func (ap *AnimatedProperty) finishedAt(now int64) bool {
	if ap.anim.LoopCount < 0 {
		return false
	}
	return now >= ap.start+ap.anim.DelayMs+ap.anim.DurationMs*ap.anim.loops()
}

func (ap *AnimatedProperty) compute() interface{} {
	now := ap.driver.Tick()
	elapsed := now - ap.start - ap.anim.DelayMs
	if elapsed < 0 {
		return ap.from
	}
	if ap.finishedAt(now) {
		ap.running = false
		return ap.to
	}
	pos := elapsed % ap.anim.DurationMs
	t := float64(pos) / float64(ap.anim.DurationMs)
	f := ap.anim.Easing.Apply(t)
	return ap.from + (ap.to-ap.from)*f
}
