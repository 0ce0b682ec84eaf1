package slint

import (
	"strings"
)

// LookupContext carries the scopes visible to one expression. The lookup
// order is fixed: callback arguments, reserved names (self/root/parent),
// repeater variables, named sibling elements, properties of the current
// element and its ancestors, builtin functions, registered global types.
type LookupContext struct {
	Registry  *TypeRegister
	Component *Component
	// Ancestors is the element chain from the component root down to the
	// parent of Current.
	Ancestors []*Element
	Current   *Element
	ArgNames  []string
	ArgTypes  []*Type
	Diags     *DiagnosticList
}

// LookupQualified resolves a dotted path like "self.width" or
// "Theme.background" to an expression, or Invalid (with a diagnostic).
func (ctx *LookupContext) LookupQualified(path string, loc Location) Expression {
	parts := strings.Split(path, ".")
	base := ctx.lookupFirst(parts[0], loc)
	if _, bad := base.(Invalid); bad {
		return base
	}
	for _, part := range parts[1:] {
		base = ctx.member(base, part, loc)
		if _, bad := base.(Invalid); bad {
			return base
		}
	}
	// a bare element reference is not a value
	if _, isElem := base.(*ElementReference); isElem && len(parts) > 1 {
		ctx.Diags.Errorf(loc, "%q names an element, not a value", path)
		return Invalid{}
	}
	return base
}

func (ctx *LookupContext) lookupFirst(name string, loc Location) Expression {
	for i, arg := range ctx.ArgNames {
		if arg == name {
			t := Float32Type
			if i < len(ctx.ArgTypes) {
				t = ctx.ArgTypes[i]
			}
			return &FunctionArgReference{Index: i, Type: t}
		}
	}
	switch name {
	case "self":
		return &ElementReference{Element: ctx.Current}
	case "root":
		return &ElementReference{Element: ctx.Component.Root}
	case "parent":
		if n := len(ctx.Ancestors); n > 0 {
			return &ElementReference{Element: ctx.Ancestors[n-1]}
		}
		ctx.Diags.Errorf(loc, "The root element has no parent")
		return Invalid{}
	case "true":
		return &BoolLiteral{Value: true}
	case "false":
		return &BoolLiteral{Value: false}
	}
	// repeater data/index variables of the enclosing repeated elements
	chain := append(append([]*Element{}, ctx.Ancestors...), ctx.Current)
	for i := len(chain) - 1; i >= 0; i-- {
		r := chain[i].Repeated
		if r == nil {
			continue
		}
		if r.DataName == name {
			return &RepeaterModelReference{Element: chain[i], Type: modelDataType(r)}
		}
		if r.IndexName != "" && r.IndexName == name {
			return &RepeaterIndexReference{Element: chain[i]}
		}
	}
	if ctx.Component.Root != nil {
		if el := ctx.Component.Root.LookupChild(name); el != nil && el.ID == name {
			return &ElementReference{Element: el}
		}
	}
	if expr := ctx.propertyOn(ctx.Current, name); expr != nil {
		return expr
	}
	for i := len(ctx.Ancestors) - 1; i >= 0; i-- {
		if expr := ctx.propertyOn(ctx.Ancestors[i], name); expr != nil {
			return expr
		}
	}
	if t, ok := builtinFunctions[name]; ok {
		return &BuiltinFunctionReference{Name: name, Type: t}
	}
	if t, found := ctx.Registry.Lookup(name); found {
		switch t.Kind {
		case TypeComponent:
			if t.Component != nil && t.Component.IsGlobal && t.Component.Root != nil {
				return &ElementReference{Element: t.Component.Root}
			}
		case TypeEnum:
			return &enumTypeReference{enum: t}
		}
	}
	ctx.Diags.Errorf(loc, "Unknown identifier %q", name)
	return Invalid{}
}

func (ctx *LookupContext) propertyOn(e *Element, name string) Expression {
	t := e.PropertyType(name)
	if t == InvalidType || t.Kind == TypeInvalid {
		return nil
	}
	if t.Kind == TypeCallback || t.Kind == TypeInferredCallback {
		return &CallbackReference{Element: e, Name: name}
	}
	return &PropertyReference{Element: e, Name: name}
}

func (ctx *LookupContext) member(base Expression, name string, loc Location) Expression {
	switch x := base.(type) {
	case *ElementReference:
		if expr := ctx.propertyOn(x.Element, name); expr != nil {
			return expr
		}
		ctx.Diags.Errorf(loc, "Element %q has no property %q", x.Element.BaseName, name)
		return Invalid{}
	case *enumTypeReference:
		for _, v := range x.enum.EnumValues {
			if v == name {
				return &EnumValue{Enum: x.enum, Value: name}
			}
		}
		ctx.Diags.Errorf(loc, "Enum %q has no value %q", x.enum.Name, name)
		return Invalid{}
	}
	if base.Ty().Kind == TypeStruct {
		if _, ok := base.Ty().Fields[name]; ok {
			return &StructFieldAccess{Base: base, Field: name}
		}
		ctx.Diags.Errorf(loc, "Struct has no field %q", name)
		return Invalid{}
	}
	ctx.Diags.Errorf(loc, "Cannot access %q on a value of type %s", name, base.Ty())
	return Invalid{}
}

// enumTypeReference is an intermediate lookup result; it never survives
// into a resolved expression tree.
type enumTypeReference struct {
	enum *Type
}

func (e *enumTypeReference) Ty() *Type { return e.enum }

// modelDataType derives the data variable's type from the model
// expression once it is resolved; before that it is a plain float.
func modelDataType(r *RepeatedInfo) *Type {
	if r.Model != nil {
		mt := r.Model.Ty()
		if mt.Kind == TypeArray {
			return mt.ElementType
		}
		if mt.Kind == TypeInt32 || mt.Kind == TypeFloat32 {
			// an integer model repeats 0..n-1
			return Int32Type
		}
	}
	return Float32Type
}
