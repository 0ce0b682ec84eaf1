package passes

import (
	"github.com/slint-go/slint"
)

// deduplicateReads shares the reference node when one binding reads the
// same property several times. Lowering then registers a single
// dependency edge per property instead of one per occurrence. Re-running
// the pass finds everything already shared and changes nothing.
func deduplicateReads(ctx *Context) {
	for _, c := range allComponents(ctx.Doc) {
		c.VisitElements(func(e *slint.Element) {
			for _, name := range sortedBindingNames(e) {
				b := e.Bindings[name]
				if b.Expression == nil {
					continue
				}
				seen := map[renameKey]*slint.PropertyReference{}
				b.Expression = slint.Transform(b.Expression, func(expr slint.Expression) slint.Expression {
					pr, ok := expr.(*slint.PropertyReference)
					if !ok {
						return expr
					}
					key := renameKey{pr.Element, pr.Name}
					if first, dup := seen[key]; dup {
						return first
					}
					seen[key] = pr
					return pr
				})
			}
		})
	}
}
