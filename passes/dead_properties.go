package passes

import (
	"github.com/slint-go/slint"
)

// removeDeadProperties drops declared properties nothing can observe: no
// expression reads them, no two-way or animation involves them, they are
// not part of an exported component's interface, and no handler is
// connected. Their bindings disappear with them.
func removeDeadProperties(ctx *Context) {
	used := map[renameKey]bool{}
	note := func(e *slint.Element, name string) {
		if e != nil {
			used[renameKey{e, name}] = true
		}
	}
	for _, c := range allComponents(ctx.Doc) {
		visitAllExpressions(c, func(expr slint.Expression) {
			slint.Visit(expr, func(sub slint.Expression) bool {
				switch x := sub.(type) {
				case *slint.PropertyReference:
					note(x.Element, x.Name)
				case *slint.CallbackReference:
					note(x.Element, x.Name)
				case *slint.StateReference:
					note(x.Element, x.Name)
				}
				return true
			})
		})
		c.VisitElements(func(e *slint.Element) {
			for _, name := range sortedBindingNames(e) {
				if tw := e.Bindings[name].TwoWay; tw != nil {
					note(tw.Element, tw.Name)
					note(e, name)
				}
				if e.Bindings[name].Animation != nil {
					note(e, name)
				}
			}
			for _, name := range sortedHandlerNames(e) {
				note(e, name)
			}
		})
	}
	for _, c := range allComponents(ctx.Doc) {
		comp := c
		comp.VisitElements(func(e *slint.Element) {
			for _, name := range sortedDeclarationNames(e) {
				decl := e.PropertyDeclarations[name]
				if used[renameKey{e, name}] {
					continue
				}
				if e == comp.Root && comp.Exported && decl.Exposed {
					continue
				}
				// builtin item properties always reach the render tree
				if e.Base.Kind == slint.TypeBuiltinItem {
					if _, item := e.Base.Properties[name]; item {
						continue
					}
				}
				delete(e.PropertyDeclarations, name)
				delete(e.Bindings, name)
				delete(e.CallbackHandlers, name)
				delete(e.PropertyAnimations, name)
			}
		})
	}
}
