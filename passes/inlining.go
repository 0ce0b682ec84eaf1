package passes

import (
	"github.com/slint-go/slint"
)

// inlineComponents copies the body of every used component into its use
// sites, bottom-up, so that afterwards every element's base is a builtin
// item. Globals are never inlined, repeater and popup placeholders keep
// their component base (they instantiate it per model entry). Components
// that end up unused and unexported are marked optimized out.
func inlineComponents(ctx *Context) {
	done := map[*slint.Component]bool{}
	var inlineInto func(c *slint.Component)
	inlineInto = func(c *slint.Component) {
		if done[c] {
			return
		}
		done[c] = true
		c.VisitElements(func(e *slint.Element) {
			if e.Base.Kind != slint.TypeComponent || e.Base.Component == nil {
				return
			}
			base := e.Base.Component
			if base.IsGlobal || e.Repeated != nil || e.IsPopup {
				return
			}
			if base.Root == nil || base.Root.Base.Kind == slint.TypeInvalid {
				return
			}
			inlineInto(base)
			inlineElement(e, base)
		})
	}
	for _, c := range allComponents(ctx.Doc) {
		inlineInto(c)
	}
	markUnusedComponents(ctx.Doc)
}

// inlineElement merges a copy of base's root into e. Use-site bindings
// win over the component's own bindings; copied bindings get a bumped
// priority so later merges order correctly.
func inlineElement(e *slint.Element, base *slint.Component) {
	mapping := map[*slint.Element]*slint.Element{}
	dupRoot := base.Root.Duplicate(mapping, 1)
	// content of the copied root merges into the use site itself
	mapping[base.Root] = e
	delete(mapping, dupRoot)

	for name, decl := range dupRoot.PropertyDeclarations {
		if _, exists := e.PropertyDeclarations[name]; !exists {
			d := *decl
			// inlined interior properties are implementation detail
			if e.EnclosingComponent == nil || e != e.EnclosingComponent.Root {
				d.Exposed = false
			}
			e.PropertyDeclarations[name] = &d
		}
	}
	for name, b := range dupRoot.Bindings {
		if existing, exists := e.Bindings[name]; exists {
			// the use site overrides; keep its animation fallback
			if existing.Animation == nil {
				existing.Animation = b.Animation
			}
			continue
		}
		e.Bindings[name] = b
	}
	for name, h := range dupRoot.CallbackHandlers {
		if _, exists := e.CallbackHandlers[name]; !exists {
			e.CallbackHandlers[name] = h
		}
	}
	for name, a := range dupRoot.PropertyAnimations {
		if _, exists := e.PropertyAnimations[name]; !exists {
			e.PropertyAnimations[name] = a
		}
	}
	e.States = append(e.States, dupRoot.States...)
	e.Transitions = append(e.Transitions, dupRoot.Transitions...)
	// base children come before the use site's own children
	e.Children = append(dupRoot.Children, e.Children...)
	e.Base = dupRoot.Base
	e.BaseName = dupRoot.BaseName
	if e.DebugName != "" && dupRoot.DebugName != "" {
		e.DebugName = e.DebugName + "(" + dupRoot.DebugName + ")"
	}

	owner := e.EnclosingComponent
	for _, child := range dupRoot.Children {
		child.Visit(func(el *slint.Element) {
			el.EnclosingComponent = owner
		})
	}
	// rewrite references: copied expressions still point into the
	// original component's elements
	e.RemapReferences(mapping)
	remapTwoWayOnSelf(e, mapping)
}

// remapTwoWayOnSelf fixes two-way targets and repeater models on the use
// site element itself; RemapReferences covers only the subtree below an
// element's own bindings, which now include dupRoot's merged ones.
func remapTwoWayOnSelf(e *slint.Element, mapping map[*slint.Element]*slint.Element) {
	for _, b := range e.Bindings {
		if b.TwoWay != nil {
			if n, ok := mapping[b.TwoWay.Element]; ok {
				b.TwoWay = &slint.PropertyReference{Element: n, Name: b.TwoWay.Name}
			}
		}
	}
}

func markUnusedComponents(doc *slint.Document) {
	used := map[*slint.Component]bool{}
	for _, c := range allComponents(doc) {
		c.VisitElements(func(e *slint.Element) {
			if e.Base.Kind == slint.TypeComponent && e.Base.Component != nil {
				used[e.Base.Component] = true
			}
		})
	}
	for _, c := range doc.Components {
		if !c.Exported && !c.IsGlobal && !used[c] {
			c.OptimizedOut = true
		}
	}
}
