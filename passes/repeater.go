package passes

import (
	"fmt"

	"github.com/slint-go/slint"
)

// lowerRepeaters moves every `for`/`if` subtree into a nested component
// template. The placeholder element that stays behind carries the model
// expression and instantiates the new component; an `if` is a repeater
// whose model is 0 or 1.
func lowerRepeaters(ctx *Context) {
	// the worklist grows while nested repeaters peel off inner components
	comps := allComponents(ctx.Doc)
	for i := 0; i < len(comps); i++ {
		comp := comps[i]
		seen := len(ctx.Doc.InnerComponents)
		comp.VisitElements(func(parent *slint.Element) {
			for j, child := range parent.Children {
				if child.Repeated == nil {
					continue
				}
				parent.Children[j] = detachIntoComponent(ctx, comp, child,
					fmt.Sprintf("%s-repeated-%s", comp.Name, child.ID))
			}
		})
		comps = append(comps, ctx.Doc.InnerComponents[seen:]...)
	}
}

// lowerPopups moves popup subtrees into nested component templates the
// same way; a popup is instantiated on demand rather than by a model.
func lowerPopups(ctx *Context) {
	comps := allComponents(ctx.Doc)
	for i := 0; i < len(comps); i++ {
		comp := comps[i]
		seen := len(ctx.Doc.InnerComponents)
		comp.VisitElements(func(parent *slint.Element) {
			for j, child := range parent.Children {
				if child.BaseName != "Popup" || child.Repeated != nil {
					continue
				}
				child.IsPopup = true
				placeholder := detachIntoComponent(ctx, comp, child,
					fmt.Sprintf("%s-popup-%s", comp.Name, child.ID))
				placeholder.IsPopup = true
				parent.Children[j] = placeholder
			}
		})
		comps = append(comps, ctx.Doc.InnerComponents[seen:]...)
	}
}

// detachIntoComponent wraps the subtree rooted at e in a new inner
// component and returns the placeholder element left in its place. The
// repeater info moves onto the placeholder; references into the subtree
// from the enclosing component keep working because the elements
// themselves do not change identity.
func detachIntoComponent(ctx *Context, c *slint.Component, e *slint.Element, name string) *slint.Element {
	placeholder := slint.NewElement(name, e.Location)
	placeholder.ID = e.ID + "-template"
	placeholder.EnclosingComponent = c
	placeholder.Repeated = e.Repeated
	placeholder.IsPopup = e.IsPopup
	e.Repeated = nil
	e.IsPopup = false

	inner := &slint.Component{
		Name:          name,
		Root:          e,
		Location:      e.Location,
		ParentElement: placeholder,
	}
	e.Visit(func(el *slint.Element) {
		el.EnclosingComponent = inner
	})
	placeholder.Base = &slint.Type{
		Kind:      slint.TypeComponent,
		Name:      name,
		Component: inner,
	}
	ctx.Doc.InnerComponents = append(ctx.Doc.InnerComponents, inner)
	return placeholder
}
