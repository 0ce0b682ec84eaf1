package passes

import (
	"sort"

	"github.com/slint-go/slint"
)

// collectGlobals records on the root component every global singleton any
// expression touches, so instantiation knows which globals to allocate.
func collectGlobals(ctx *Context) {
	root := ctx.Doc.RootComponent()
	if root == nil {
		return
	}
	used := map[*slint.Component]bool{}
	note := func(e *slint.Element) {
		if e != nil && e.EnclosingComponent != nil && e.EnclosingComponent.IsGlobal {
			used[e.EnclosingComponent] = true
		}
	}
	for _, c := range allComponents(ctx.Doc) {
		if c.IsGlobal {
			continue
		}
		visitAllExpressions(c, func(expr slint.Expression) {
			slint.Visit(expr, func(sub slint.Expression) bool {
				switch x := sub.(type) {
				case *slint.PropertyReference:
					note(x.Element)
				case *slint.CallbackReference:
					note(x.Element)
				case *slint.ElementReference:
					note(x.Element)
				}
				return true
			})
		})
	}
	// exported globals are part of the public surface even when nothing
	// inside the document reads them
	for _, c := range ctx.Doc.Components {
		if c.IsGlobal && c.Exported {
			used[c] = true
		}
	}
	root.UsedGlobals = root.UsedGlobals[:0]
	for g := range used {
		root.UsedGlobals = append(root.UsedGlobals, g)
	}
	sort.Slice(root.UsedGlobals, func(i, j int) bool {
		return root.UsedGlobals[i].Name < root.UsedGlobals[j].Name
	})
}

// collectStructs makes sure every struct type the public interface or any
// expression uses is present in the document's struct list, in a stable
// order with declared structs first.
func collectStructs(ctx *Context) {
	seen := map[*slint.Type]bool{}
	for _, st := range ctx.Doc.Structs {
		seen[st] = true
	}
	add := func(t *slint.Type) {
		if t != nil && t.Kind == slint.TypeStruct && t.Name != "" && !seen[t] {
			seen[t] = true
			ctx.Doc.Structs = append(ctx.Doc.Structs, t)
		}
	}
	for _, c := range allComponents(ctx.Doc) {
		c.VisitElements(func(e *slint.Element) {
			for _, decl := range e.PropertyDeclarations {
				collectStructType(decl.Type, add)
			}
		})
	}
	for _, name := range ctx.Doc.ExportOrder {
		if t, ok := ctx.Doc.Exports[name].(*slint.Type); ok {
			collectStructType(t, add)
		}
	}
}

func collectStructType(t *slint.Type, add func(*slint.Type)) {
	if t == nil {
		return
	}
	switch t.Kind {
	case slint.TypeStruct:
		add(t)
		for _, ft := range t.Fields {
			collectStructType(ft, add)
		}
	case slint.TypeArray:
		collectStructType(t.ElementType, add)
	case slint.TypeCallback:
		for _, at := range t.Args {
			collectStructType(at, add)
		}
		collectStructType(t.ReturnType, add)
	}
}
