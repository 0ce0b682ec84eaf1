package passes

import (
	"github.com/slint-go/slint"
)

// assignItemIndices numbers every element of every component depth-first
// from the root. The numbering is the row order of the flattened item
// tree; repeater and popup placeholders occupy one row each, their
// templates are numbered within their own component.
func assignItemIndices(ctx *Context) {
	for _, c := range allComponents(ctx.Doc) {
		index := 0
		c.VisitElements(func(e *slint.Element) {
			e.ItemIndex = index
			index++
		})
	}
}
