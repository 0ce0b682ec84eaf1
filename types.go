package slint

import (
	"fmt"
	"strings"
)

// TypeKind enumerates the kinds of static types in the language.
type TypeKind int

const (
	TypeInvalid TypeKind = iota
	TypeVoid
	TypeFloat32
	TypeInt32
	TypeString
	TypeColor
	TypeDuration
	TypeAngle
	TypePhysicalLength
	TypeLogicalLength
	TypePercent
	TypeBool
	TypeModel
	TypeEasing
	TypeArray
	TypeStruct
	TypeEnum
	TypeCallback
	TypeComponent
	TypeBuiltinItem
	TypeElementReference
	TypeInferredProperty
	TypeInferredCallback
)

// Type is a value's static type. Types are interned in a TypeRegister and
// immutable once created; pointer equality is identity for named types.
type Type struct {
	Kind TypeKind

	// Name is set for named types: structs, enums, components, builtins.
	Name string

	// ElementType is the item type for Array and Model.
	ElementType *Type

	// Fields/FieldOrder describe Struct types.
	Fields     map[string]*Type
	FieldOrder []string

	// EnumValues lists the values of an Enum type, in declaration order.
	EnumValues []string

	// Args/ReturnType describe Callback types.
	Args       []*Type
	ReturnType *Type

	// Component links a TypeComponent back to its definition.
	Component *Component

	// Properties lists the builtin properties of a TypeBuiltinItem.
	Properties map[string]*Type
}

var (
	InvalidType        = &Type{Kind: TypeInvalid}
	VoidType           = &Type{Kind: TypeVoid}
	Float32Type        = &Type{Kind: TypeFloat32}
	Int32Type          = &Type{Kind: TypeInt32}
	StringType         = &Type{Kind: TypeString}
	ColorType          = &Type{Kind: TypeColor}
	DurationType       = &Type{Kind: TypeDuration}
	AngleType          = &Type{Kind: TypeAngle}
	PhysicalLengthType = &Type{Kind: TypePhysicalLength}
	LogicalLengthType  = &Type{Kind: TypeLogicalLength}
	PercentType        = &Type{Kind: TypePercent}
	BoolType           = &Type{Kind: TypeBool}
	ModelType          = &Type{Kind: TypeModel}
	EasingType         = &Type{Kind: TypeEasing}
	ElementRefType     = &Type{Kind: TypeElementReference}
	InferredProperty   = &Type{Kind: TypeInferredProperty}
	InferredCallback   = &Type{Kind: TypeInferredCallback}
)

func ArrayType(element *Type) *Type {
	return &Type{Kind: TypeArray, ElementType: element}
}

func CallbackType(ret *Type, args ...*Type) *Type {
	return &Type{Kind: TypeCallback, ReturnType: ret, Args: args}
}

func (t *Type) String() string {
	switch t.Kind {
	case TypeInvalid:
		return "<error>"
	case TypeVoid:
		return "void"
	case TypeFloat32:
		return "float"
	case TypeInt32:
		return "int"
	case TypeString:
		return "string"
	case TypeColor:
		return "color"
	case TypeDuration:
		return "duration"
	case TypeAngle:
		return "angle"
	case TypePhysicalLength:
		return "physical-length"
	case TypeLogicalLength:
		return "length"
	case TypePercent:
		return "percent"
	case TypeBool:
		return "bool"
	case TypeModel:
		return "model"
	case TypeEasing:
		return "easing"
	case TypeArray:
		return "[" + t.ElementType.String() + "]"
	case TypeStruct:
		if t.Name != "" {
			return t.Name
		}
		var fields []string
		for _, f := range t.FieldOrder {
			fields = append(fields, f+": "+t.Fields[f].String())
		}
		return "{ " + strings.Join(fields, ", ") + " }"
	case TypeEnum:
		return "enum " + t.Name
	case TypeCallback:
		var args []string
		for _, a := range t.Args {
			args = append(args, a.String())
		}
		s := "callback(" + strings.Join(args, ",") + ")"
		if t.ReturnType != nil && t.ReturnType.Kind != TypeVoid {
			s += "->" + t.ReturnType.String()
		}
		return s
	case TypeComponent, TypeBuiltinItem:
		return t.Name
	case TypeElementReference:
		return "element-ref"
	case TypeInferredProperty:
		return "<inferred-property>"
	case TypeInferredCallback:
		return "<inferred-callback>"
	}
	return "?"
}

// IsNumeric tells whether values of this type take part in arithmetic.
func (t *Type) IsNumeric() bool {
	switch t.Kind {
	case TypeFloat32, TypeInt32, TypeDuration, TypeAngle,
		TypePhysicalLength, TypeLogicalLength, TypePercent:
		return true
	}
	return false
}

// IsUnitCarrying tells whether the numeric type carries a physical unit.
func (t *Type) IsUnitCarrying() bool {
	switch t.Kind {
	case TypeDuration, TypeAngle, TypePhysicalLength, TypeLogicalLength, TypePercent:
		return true
	}
	return false
}

func (t *Type) IsPropertyType() bool {
	switch t.Kind {
	case TypeInvalid, TypeVoid, TypeCallback, TypeComponent, TypeBuiltinItem:
		return false
	}
	return true
}

// CanConvert tells whether a value of type t converts implicitly to "to".
// The rules follow the language's conversion matrix: numeric promotion,
// numeric to string, percent to plain number, physical/logical length only
// with a pixel-ratio context, structs when one side is a subset of the
// other, arrays element-wise.
func (t *Type) CanConvert(to *Type) bool {
	if t == to || t.Kind == to.Kind && t.Name == to.Name && t.Kind != TypeStruct && t.Kind != TypeArray {
		return true
	}
	canConvertUnits := func(a, b TypeKind) bool {
		return a == TypePhysicalLength && b == TypeLogicalLength ||
			a == TypeLogicalLength && b == TypePhysicalLength
	}
	switch {
	case t.Kind == TypeFloat32 && to.Kind == TypeInt32:
		return true
	case t.Kind == TypeInt32 && to.Kind == TypeFloat32:
		return true
	case t.IsNumeric() && to.Kind == TypeString:
		return true
	case t.Kind == TypePercent && to.Kind == TypeFloat32:
		return true
	case t.Kind == TypeFloat32 && to.Kind == TypePercent:
		return true
	case canConvertUnits(t.Kind, to.Kind):
		// needs a pixel-ratio context, checked by the resolver
		return true
	case t.Kind == TypeArray && to.Kind == TypeArray:
		return t.ElementType.CanConvert(to.ElementType)
	case t.Kind == TypeStruct && to.Kind == TypeStruct:
		return structCanConvert(t, to)
	}
	return false
}

// structCanConvert allows a struct conversion when the source is missing
// fields or has extra fields, but not both at once.
func structCanConvert(from, to *Type) bool {
	missing := false
	extra := false
	for name, ft := range to.Fields {
		st, ok := from.Fields[name]
		if !ok {
			missing = true
			continue
		}
		if !st.CanConvert(ft) {
			return false
		}
	}
	for name := range from.Fields {
		if _, ok := to.Fields[name]; !ok {
			extra = true
		}
	}
	return !(missing && extra)
}

// OperatorResultType computes the type of a binary arithmetic expression,
// enforcing unit arithmetic: unit + unit keeps the unit, unit * plain
// keeps the unit, unit / unit is plain. InvalidType means the combination
// is a diagnostic.
func OperatorResultType(op byte, lhs, rhs *Type) *Type {
	if !lhs.IsNumeric() || !rhs.IsNumeric() {
		if op == '+' && lhs.Kind == TypeString && rhs.Kind == TypeString {
			return StringType
		}
		return InvalidType
	}
	plain := func(t *Type) bool { return !t.IsUnitCarrying() }
	switch op {
	case '+', '-':
		if lhs.Kind == rhs.Kind {
			return lhs
		}
		if plain(lhs) && plain(rhs) {
			return Float32Type
		}
	case '*':
		if plain(lhs) {
			return rhs
		}
		if plain(rhs) {
			return lhs
		}
	case '/':
		if lhs.Kind == rhs.Kind {
			return Float32Type
		}
		if plain(rhs) {
			return lhs
		}
	}
	return InvalidType
}

// TypeRegister interns named types, with parent chaining so a document's
// register extends the builtin register.
type TypeRegister struct {
	parent *TypeRegister
	types  map[string]*Type
}

func NewTypeRegister(parent *TypeRegister) *TypeRegister {
	return &TypeRegister{
		parent: parent,
		types:  make(map[string]*Type),
	}
}

// Lookup resolves a type name through the register chain. The boolean
// reports whether the name was found at all; a found name may still map to
// InvalidType if its declaration had errors.
func (tr *TypeRegister) Lookup(name string) (*Type, bool) {
	for r := tr; r != nil; r = r.parent {
		if t, ok := r.types[name]; ok {
			return t, true
		}
	}
	return InvalidType, false
}

func (tr *TypeRegister) Register(name string, t *Type) error {
	if _, ok := tr.types[name]; ok {
		return fmt.Errorf("Duplicate type: %s", name)
	}
	tr.types[name] = t
	return nil
}

// LocalNames lists the names registered at this level, not the parents'.
func (tr *TypeRegister) LocalNames() []string {
	var names []string
	for name := range tr.types {
		names = append(names, name)
	}
	return names
}
