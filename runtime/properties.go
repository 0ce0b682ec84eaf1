// Package runtime is the reactive property engine generated code and host
// programs talk to: arena-backed property cells with push invalidation and
// lazy pull evaluation, a globals registry, and a virtual-clock animation
// driver. Everything here assumes a single-threaded, event-driven caller.
package runtime

import "fmt"

// CellState tracks the freshness of one property cell.
type CellState int

const (
	// Clean means the cached value is valid.
	Clean CellState = iota
	// Dirty means an input changed and the value must be recomputed on
	// the next read.
	Dirty
	// Evaluating means the cell's binding is currently running. Reading
	// a cell in this state is a runtime binding loop; static analysis
	// rejects those at compile time, so it is fatal here.
	Evaluating
)

// Property is an index into an Arena. Dependency edges are stored as
// indices, never as pointers, so destroying a cell cannot leave dangling
// references behind.
type Property int

// Binding computes a cell's value. Property reads performed through the
// arena while a binding runs are recorded as dependencies of that cell.
type Binding func() interface{}

type cell struct {
	alive       bool
	state       CellState
	value       interface{}
	binding     Binding
	deps        []Property       // cells read during the last evaluation
	dependents  map[Property]bool // cells whose bindings read this one
	subscribers []func()
	twoWay      []Property
}

// Arena owns a set of property cells. One arena per component instance is
// the expected granularity; edges never cross arenas.
type Arena struct {
	cells []cell
	free  []Property
	// stack of cells currently evaluating, innermost last
	evalStack []Property
}

func NewArena() *Arena {
	return &Arena{}
}

// NewProperty allocates a cell holding the given initial value.
func (a *Arena) NewProperty(initial interface{}) Property {
	var p Property
	if n := len(a.free); n > 0 {
		p = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.cells = append(a.cells, cell{})
		p = Property(len(a.cells) - 1)
	}
	a.cells[p] = cell{
		alive:      true,
		state:      Clean,
		value:      initial,
		dependents: make(map[Property]bool),
	}
	return p
}

func (a *Arena) cell(p Property) *cell {
	if int(p) < 0 || int(p) >= len(a.cells) || !a.cells[p].alive {
		panic(fmt.Sprintf("runtime: use of destroyed property %d", p))
	}
	return &a.cells[p]
}

// State reports the cell's current freshness.
func (a *Arena) State(p Property) CellState {
	return a.cell(p).state
}

// Get returns the cell's value, recomputing it first when it is Dirty. A
// read performed while another cell's binding is evaluating records a
// dependency edge from that cell to this one.
func (a *Arena) Get(p Property) interface{} {
	c := a.cell(p)
	switch c.state {
	case Evaluating:
		panic(fmt.Sprintf("runtime: binding loop detected at property %d", p))
	case Dirty:
		if c.binding != nil {
			a.evaluate(p)
			c = &a.cells[p]
		} else {
			c.state = Clean
		}
	}
	a.recordRead(p)
	return c.value
}

func (a *Arena) evaluate(p Property) {
	c := &a.cells[p]
	a.dropDeps(p)
	c.state = Evaluating
	a.evalStack = append(a.evalStack, p)
	value := c.binding()
	a.evalStack = a.evalStack[:len(a.evalStack)-1]
	c = &a.cells[p]
	c.state = Clean
	c.value = value
}

// recordRead installs the edge reader -> p when a binding is running.
func (a *Arena) recordRead(p Property) {
	if len(a.evalStack) == 0 {
		return
	}
	reader := a.evalStack[len(a.evalStack)-1]
	if reader == p {
		return
	}
	c := &a.cells[p]
	if !c.dependents[reader] {
		c.dependents[reader] = true
		rc := &a.cells[reader]
		rc.deps = append(rc.deps, p)
	}
}

// dropDeps removes the cell's forward edges and their reverse halves,
// before a re-evaluation installs the fresh set.
func (a *Arena) dropDeps(p Property) {
	c := &a.cells[p]
	for _, d := range c.deps {
		if a.cells[d].alive {
			delete(a.cells[d].dependents, p)
		}
	}
	c.deps = c.deps[:0]
}

// Set stores a value imperatively. It replaces any binding, notifies
// subscribers, marks all transitive dependents Dirty without recomputing
// them, and mirrors the value into two-way linked peers.
func (a *Arena) Set(p Property, value interface{}) {
	a.setLinked(p, value, nil)
}

func (a *Arena) setLinked(p Property, value interface{}, visited map[Property]bool) {
	c := a.cell(p)
	c.binding = nil
	a.dropDeps(p)
	changed := c.value != value
	c.value = value
	c.state = Clean
	if !changed {
		return
	}
	a.notify(p)
	a.invalidateDependents(p)
	if len(c.twoWay) > 0 {
		if visited == nil {
			visited = make(map[Property]bool)
		}
		visited[p] = true
		for _, peer := range c.twoWay {
			if !visited[peer] {
				a.setLinked(peer, value, visited)
			}
		}
	}
}

// SetBinding installs a binding and marks the cell Dirty; the binding runs
// on the next read.
func (a *Arena) SetBinding(p Property, b Binding) {
	c := a.cell(p)
	c.binding = b
	if c.state == Clean {
		c.state = Dirty
		a.notify(p)
		a.invalidateDependents(p)
	}
}

func (a *Arena) invalidateDependents(p Property) {
	c := &a.cells[p]
	for d := range c.dependents {
		dc := &a.cells[d]
		if !dc.alive || dc.state != Clean {
			continue
		}
		dc.state = Dirty
		a.notify(d)
		a.invalidateDependents(d)
	}
}

func (a *Arena) notify(p Property) {
	for _, f := range a.cells[p].subscribers {
		f()
	}
}

// Subscribe registers a change callback: it fires when the cell is set or
// becomes Dirty through invalidation.
func (a *Arena) Subscribe(p Property, f func()) {
	c := a.cell(p)
	c.subscribers = append(c.subscribers, f)
}

// LinkTwoWay ties two cells together: writing either one writes the other.
// The second property takes the first one's current value.
func (a *Arena) LinkTwoWay(p, q Property) {
	pc := a.cell(p)
	qc := a.cell(q)
	pc.twoWay = append(pc.twoWay, q)
	qc.twoWay = append(qc.twoWay, p)
	value := pc.value
	qc.binding = nil
	if qc.value != value {
		qc.value = value
		qc.state = Clean
		a.notify(q)
		a.invalidateDependents(q)
	}
}

// Destroy releases a cell and unlinks every edge touching it, in both
// directions, so no reverse reference survives the teardown.
func (a *Arena) Destroy(p Property) {
	c := a.cell(p)
	a.dropDeps(p)
	for d := range c.dependents {
		dc := &a.cells[d]
		if !dc.alive {
			continue
		}
		for i, dep := range dc.deps {
			if dep == p {
				dc.deps = append(dc.deps[:i], dc.deps[i+1:]...)
				break
			}
		}
	}
	for _, peer := range c.twoWay {
		pc := &a.cells[peer]
		if !pc.alive {
			continue
		}
		for i, link := range pc.twoWay {
			if link == p {
				pc.twoWay = append(pc.twoWay[:i], pc.twoWay[i+1:]...)
				break
			}
		}
	}
	a.cells[p] = cell{}
	a.free = append(a.free, p)
}
