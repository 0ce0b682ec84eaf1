package passes

import (
	"github.com/slint-go/slint"
)

// lowerFocusHandling resolves forward-focus chains. A `forward-focus`
// binding points at another element; chains are followed to the final
// focusable target and the forward-focus bindings are erased afterwards,
// the flattened output stores only the resolved target element.
func lowerFocusHandling(ctx *Context) {
	for _, c := range allComponents(ctx.Doc) {
		c.VisitElements(func(e *slint.Element) {
			b, ok := e.Bindings["forward-focus"]
			if !ok {
				return
			}
			target := focusTarget(ctx, e, map[*slint.Element]bool{})
			if target != nil && target != e {
				e.Bindings["forward-focus"] = &slint.Binding{
					Expression: &slint.ElementReference{Element: target},
					Location:   b.Location,
				}
			} else {
				delete(e.Bindings, "forward-focus")
			}
		})
	}
}

// focusTarget follows the forward-focus chain from e; a cycle yields a
// diagnostic and nil.
func focusTarget(ctx *Context, e *slint.Element, seen map[*slint.Element]bool) *slint.Element {
	if seen[e] {
		ctx.Diags.Errorf(e.Location, "forward-focus loop involving %q", e.ID)
		return nil
	}
	seen[e] = true
	b, ok := e.Bindings["forward-focus"]
	if !ok || b.Expression == nil {
		return e
	}
	ref, ok := b.Expression.(*slint.ElementReference)
	if !ok {
		ctx.Diags.Errorf(b.Location, "forward-focus must name an element")
		return nil
	}
	return focusTarget(ctx, ref.Element, seen)
}
