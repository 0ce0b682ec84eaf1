package passes

import (
	"github.com/slint-go/slint"
)

// materializeUsedProperties adds a real declaration for every builtin item
// property that something reads or writes without the element binding it.
// The flattened output only allocates declared properties, so a property
// used solely through references must be materialized here.
func materializeUsedProperties(ctx *Context) {
	for _, c := range allComponents(ctx.Doc) {
		visitAllExpressions(c, func(expr slint.Expression) {
			slint.Visit(expr, func(sub slint.Expression) bool {
				if pr, ok := sub.(*slint.PropertyReference); ok {
					materialize(pr.Element, pr.Name)
				}
				if a, ok := sub.(*slint.Assignment); ok && a.Lhs != nil {
					materialize(a.Lhs.Element, a.Lhs.Name)
				}
				return true
			})
		})
		c.VisitElements(func(e *slint.Element) {
			for _, name := range sortedBindingNames(e) {
				materialize(e, name)
				if tw := e.Bindings[name].TwoWay; tw != nil {
					materialize(tw.Element, tw.Name)
				}
			}
			for _, st := range e.States {
				for i := range st.Changes {
					materialize(st.Changes[i].Element, st.Changes[i].Property)
				}
			}
		})
	}
}

func materialize(e *slint.Element, name string) {
	if e == nil {
		return
	}
	if _, declared := e.PropertyDeclarations[name]; declared {
		return
	}
	if e.Base.Kind != slint.TypeBuiltinItem {
		return
	}
	t, ok := e.Base.Properties[name]
	if !ok {
		return
	}
	e.PropertyDeclarations[name] = &slint.PropertyDeclaration{
		Name:     name,
		Type:     t,
		Location: e.Location,
	}
}

// visitAllExpressions applies f to every resolved expression of the
// component: bindings, handlers, state machinery and repeater models.
func visitAllExpressions(c *slint.Component, f func(slint.Expression)) {
	c.VisitElements(func(e *slint.Element) {
		for _, name := range sortedBindingNames(e) {
			if b := e.Bindings[name]; b.Expression != nil {
				f(b.Expression)
			}
		}
		for _, name := range sortedHandlerNames(e) {
			if h := e.CallbackHandlers[name]; h.Expression != nil {
				f(h.Expression)
			}
		}
		if e.Repeated != nil && e.Repeated.Model != nil {
			f(e.Repeated.Model)
		}
		for _, st := range e.States {
			if st.ConditionExpr != nil {
				f(st.ConditionExpr)
			}
			for i := range st.Changes {
				if st.Changes[i].ValueExpr != nil {
					f(st.Changes[i].ValueExpr)
				}
			}
		}
	})
}
