package passes

import (
	"github.com/slint-go/slint"
)

// removeTwoWayAliases collapses a two-way pair onto a single property
// when one side is a private implementation detail: every reference to
// the alias is redirected to its target and the alias declaration
// disappears. Aliases on the public interface of a component survive,
// their two-way link is kept for the instantiation layer.
func removeTwoWayAliases(ctx *Context) {
	for _, c := range allComponents(ctx.Doc) {
		comp := c
		redirect := map[renameKey]*slint.PropertyReference{}
		comp.VisitElements(func(e *slint.Element) {
			for _, name := range sortedBindingNames(e) {
				b := e.Bindings[name]
				if b.TwoWay == nil {
					continue
				}
				decl, declared := e.PropertyDeclarations[name]
				if !declared || decl.Type.Kind == slint.TypeCallback {
					continue
				}
				if e == comp.Root && comp.Exported && decl.Exposed {
					continue
				}
				redirect[renameKey{e, name}] = b.TwoWay
				delete(e.Bindings, name)
				delete(e.PropertyDeclarations, name)
			}
		})
		if len(redirect) == 0 {
			continue
		}
		// follow alias chains to the surviving end
		resolve := func(e *slint.Element, name string) *slint.PropertyReference {
			cur := &slint.PropertyReference{Element: e, Name: name}
			for i := 0; i < len(redirect)+1; i++ {
				next, ok := redirect[renameKey{cur.Element, cur.Name}]
				if !ok {
					return cur
				}
				cur = next
			}
			return cur
		}
		transformAllExpressions(comp, func(expr slint.Expression) slint.Expression {
			if pr, ok := expr.(*slint.PropertyReference); ok {
				if final := resolve(pr.Element, pr.Name); final.Element != pr.Element || final.Name != pr.Name {
					return final
				}
			}
			return expr
		})
		comp.VisitElements(func(e *slint.Element) {
			for _, b := range e.Bindings {
				if b.TwoWay != nil {
					b.TwoWay = resolve(b.TwoWay.Element, b.TwoWay.Name)
				}
			}
		})
	}
}
