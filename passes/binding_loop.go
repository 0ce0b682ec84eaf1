package passes

import (
	"sort"

	"github.com/slint-go/slint"
)

// checkBindingLoops builds the static property dependency graph and
// reports every cycle as an error. A two-way pair on its own is not a
// loop; only expression reads create edges. Detection is compile-time,
// the runtime can then treat re-entrant evaluation as unreachable.
func checkBindingLoops(ctx *Context) {
	type node struct {
		element  *slint.Element
		property string
	}
	edges := map[node][]node{}
	location := map[node]slint.Location{}
	var order []node

	addNode := func(n node, loc slint.Location) {
		if _, ok := location[n]; !ok {
			location[n] = loc
			order = append(order, n)
		}
	}
	for _, c := range allComponents(ctx.Doc) {
		c.VisitElements(func(e *slint.Element) {
			for _, name := range sortedBindingNames(e) {
				b := e.Bindings[name]
				if b.Expression == nil {
					continue
				}
				from := node{e, name}
				addNode(from, b.Location)
				slint.Visit(b.Expression, func(sub slint.Expression) bool {
					var to node
					switch x := sub.(type) {
					case *slint.PropertyReference:
						to = node{x.Element, x.Name}
					case *slint.StateReference:
						to = node{x.Element, x.Name}
					default:
						return true
					}
					addNode(to, location[from])
					edges[from] = append(edges[from], to)
					return true
				})
			}
		})
	}

	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := map[node]int{}
	var stack []node
	var visit func(n node)
	reported := map[node]bool{}
	visit = func(n node) {
		color[n] = grey
		stack = append(stack, n)
		for _, to := range edges[n] {
			switch color[to] {
			case white:
				visit(to)
			case grey:
				// the cycle is the stack suffix starting at `to`
				start := len(stack) - 1
				for start >= 0 && stack[start] != to {
					start--
				}
				cycle := append([]node(nil), stack[start:]...)
				sort.Slice(cycle, func(i, j int) bool {
					if cycle[i].property != cycle[j].property {
						return cycle[i].property < cycle[j].property
					}
					return cycle[i].element.ID < cycle[j].element.ID
				})
				for _, m := range cycle {
					if !reported[m] {
						reported[m] = true
						ctx.Diags.Errorf(location[m],
							"The binding for %q is part of a binding loop", m.property)
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
	}
	for _, n := range order {
		if color[n] == white {
			visit(n)
		}
	}
}
