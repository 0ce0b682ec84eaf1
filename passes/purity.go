package passes

import (
	"github.com/slint-go/slint"
)

// checkPurity rejects side effects where only pure evaluation is allowed:
// property bindings, state conditions, repeater models, and the bodies of
// callbacks declared `pure`. Side effects are assignments and calls of
// non-pure callbacks.
func checkPurity(ctx *Context) {
	for _, c := range allComponents(ctx.Doc) {
		c.VisitElements(func(e *slint.Element) {
			for _, name := range sortedBindingNames(e) {
				b := e.Bindings[name]
				if b.Expression != nil {
					reportSideEffects(ctx, b.Expression, b.Location, "a binding")
				}
			}
			for _, st := range e.States {
				if st.ConditionExpr != nil {
					reportSideEffects(ctx, st.ConditionExpr, st.Location, "a state condition")
				}
			}
			if e.Repeated != nil && e.Repeated.Model != nil {
				reportSideEffects(ctx, e.Repeated.Model, e.Location, "a model")
			}
			for _, name := range sortedHandlerNames(e) {
				h := e.CallbackHandlers[name]
				decl := findDeclaration(e, name)
				if decl != nil && decl.Pure && h.Expression != nil {
					reportSideEffects(ctx, h.Expression, h.Location, "a pure callback")
				}
			}
		})
	}
}

// findDeclaration walks the base chain for the declaration of name.
func findDeclaration(e *slint.Element, name string) *slint.PropertyDeclaration {
	for e != nil {
		if decl, ok := e.PropertyDeclarations[name]; ok {
			return decl
		}
		if e.Base.Kind == slint.TypeComponent && e.Base.Component != nil {
			e = e.Base.Component.Root
		} else {
			return nil
		}
	}
	return nil
}

func reportSideEffects(ctx *Context, expr slint.Expression, loc slint.Location, where string) {
	slint.Visit(expr, func(sub slint.Expression) bool {
		switch x := sub.(type) {
		case *slint.Assignment:
			ctx.Diags.Errorf(loc, "Cannot assign to %q inside %s", x.Lhs.Name, where)
		case *slint.FunctionCall:
			if cb, ok := x.Function.(*slint.CallbackReference); ok {
				decl := findDeclaration(cb.Element, cb.Name)
				if decl == nil || !decl.Pure {
					ctx.Diags.Errorf(loc, "Cannot call non-pure callback %q inside %s", cb.Name, where)
				}
			}
		}
		return true
	})
}
