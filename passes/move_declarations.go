package passes

import (
	"sort"
	"strconv"

	"github.com/slint-go/slint"
)

// moveDeclarations hoists custom property declarations from interior
// elements to the component root. After inlining, interior declarations
// only exist because a component author declared them on a child; the
// flattened output allocates all custom state on the root, builtin item
// properties stay on their item. Hoisted properties are renamed
// "<element-id>-<property>" and every reference is rewritten.
func moveDeclarations(ctx *Context) {
	for _, c := range allComponents(ctx.Doc) {
		comp := c
		renames := map[renameKey]string{}
		comp.VisitElements(func(e *slint.Element) {
			if e == comp.Root {
				return
			}
			for _, name := range sortedDeclarationNames(e) {
				decl := e.PropertyDeclarations[name]
				if isItemProperty(e, name) {
					continue
				}
				hoisted := uniqueRootName(comp.Root, e.ID+"-"+name)
				moved := *decl
				moved.Name = hoisted
				moved.Exposed = false
				comp.Root.PropertyDeclarations[hoisted] = &moved
				delete(e.PropertyDeclarations, name)
				if b, ok := e.Bindings[name]; ok {
					comp.Root.Bindings[hoisted] = b
					delete(e.Bindings, name)
				}
				if h, ok := e.CallbackHandlers[name]; ok {
					comp.Root.CallbackHandlers[hoisted] = h
					delete(e.CallbackHandlers, name)
				}
				if a, ok := e.PropertyAnimations[name]; ok {
					comp.Root.PropertyAnimations[hoisted] = a
					delete(e.PropertyAnimations, name)
				}
				renames[renameKey{e, name}] = hoisted
			}
		})
		if len(renames) > 0 {
			rewriteRenamedReferences(comp, renames)
		}
	}
}

type renameKey struct {
	element *slint.Element
	name    string
}

// isItemProperty reports whether the declaration shadows or materializes
// a property of the element's builtin item; those stay on the item.
func isItemProperty(e *slint.Element, name string) bool {
	if e.Base.Kind != slint.TypeBuiltinItem {
		return true
	}
	_, ok := e.Base.Properties[name]
	return ok
}

func sortedDeclarationNames(e *slint.Element) []string {
	names := make([]string, 0, len(e.PropertyDeclarations))
	for name := range e.PropertyDeclarations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func uniqueRootName(root *slint.Element, name string) string {
	candidate := name
	for i := 2; ; i++ {
		if _, taken := root.PropertyDeclarations[candidate]; !taken {
			if _, bound := root.Bindings[candidate]; !bound {
				return candidate
			}
		}
		candidate = name + "-" + strconv.Itoa(i)
	}
}

func rewriteRenamedReferences(c *slint.Component, renames map[renameKey]string) {
	rewrite := func(expr slint.Expression) slint.Expression {
		switch x := expr.(type) {
		case *slint.PropertyReference:
			if n, ok := renames[renameKey{x.Element, x.Name}]; ok {
				return &slint.PropertyReference{Element: c.Root, Name: n}
			}
		case *slint.CallbackReference:
			if n, ok := renames[renameKey{x.Element, x.Name}]; ok {
				return &slint.CallbackReference{Element: c.Root, Name: n}
			}
		case *slint.StateReference:
			if n, ok := renames[renameKey{x.Element, x.Name}]; ok {
				return &slint.StateReference{Element: c.Root, Name: n}
			}
		}
		return expr
	}
	c.VisitElements(func(e *slint.Element) {
		for _, b := range e.Bindings {
			if b.Expression != nil {
				b.Expression = slint.Transform(b.Expression, rewrite)
			}
			if b.TwoWay != nil {
				if n, ok := renames[renameKey{b.TwoWay.Element, b.TwoWay.Name}]; ok {
					b.TwoWay = &slint.PropertyReference{Element: c.Root, Name: n}
				}
			}
		}
		for _, h := range e.CallbackHandlers {
			if h.Expression != nil {
				h.Expression = slint.Transform(h.Expression, rewrite)
			}
		}
		if e.Repeated != nil && e.Repeated.Model != nil {
			e.Repeated.Model = slint.Transform(e.Repeated.Model, rewrite)
		}
	})
}


