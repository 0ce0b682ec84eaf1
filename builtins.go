package slint

// The builtin element library. The real widget library is ordinary input
// source compiled by the same pipeline; these are the native items every
// target must provide.

var geometryProperties = map[string]*Type{
	"x":      LogicalLengthType,
	"y":      LogicalLengthType,
	"width":  LogicalLengthType,
	"height": LogicalLengthType,
}

func builtinItem(name string, props map[string]*Type) *Type {
	all := make(map[string]*Type)
	for k, v := range geometryProperties {
		all[k] = v
	}
	for k, v := range props {
		all[k] = v
	}
	all["opacity"] = Float32Type
	all["visible"] = BoolType
	return &Type{Kind: TypeBuiltinItem, Name: name, Properties: all}
}

var builtinItems = []*Type{
	builtinItem("Rectangle", map[string]*Type{
		"background":    ColorType,
		"border-width":  LogicalLengthType,
		"border-radius": LogicalLengthType,
		"border-color":  ColorType,
	}),
	builtinItem("Text", map[string]*Type{
		"text":      StringType,
		"color":     ColorType,
		"font-size": LogicalLengthType,
	}),
	builtinItem("Image", map[string]*Type{
		"source":         StringType,
		"image-rotation": AngleType,
	}),
	builtinItem("TouchArea", map[string]*Type{
		"pressed":        BoolType,
		"enabled":        BoolType,
		"clicked":        CallbackType(VoidType),
		"mouse-x":        LogicalLengthType,
		"mouse-y":        LogicalLengthType,
		"pressed-x":      LogicalLengthType,
		"pressed-y":      LogicalLengthType,
		"pointer-event":  CallbackType(VoidType),
		"forward-focus":  ElementRefType,
	}),
	builtinItem("FocusScope", map[string]*Type{
		"has-focus":     BoolType,
		"enabled":       BoolType,
		"key-pressed":   CallbackType(BoolType, StringType),
		"forward-focus": ElementRefType,
	}),
	builtinItem("Window", map[string]*Type{
		"title":            StringType,
		"background":       ColorType,
		"default-font-size": LogicalLengthType,
	}),
	builtinItem("Popup", map[string]*Type{
		"close-on-click": BoolType,
	}),
	builtinItem("Path", map[string]*Type{
		"stroke":       ColorType,
		"stroke-width": LogicalLengthType,
		"fill":         ColorType,
	}),
	builtinItem("Empty", nil),
}

// builtinFunctions maps builtin call names to their signatures. The first
// argument type doubles as the result type for the polymorphic numeric
// functions; the resolver special-cases them.
var builtinFunctions = map[string]*Type{
	"min":            CallbackType(Float32Type, Float32Type, Float32Type),
	"max":            CallbackType(Float32Type, Float32Type, Float32Type),
	"clamp":          CallbackType(Float32Type, Float32Type, Float32Type, Float32Type),
	"abs":            CallbackType(Float32Type, Float32Type),
	"round":          CallbackType(Float32Type, Float32Type),
	"floor":          CallbackType(Float32Type, Float32Type),
	"ceil":           CallbackType(Float32Type, Float32Type),
	"mod":            CallbackType(Float32Type, Float32Type, Float32Type),
	"animation-tick": CallbackType(DurationType),
}

// BuiltinTypeRegister returns the root register every document register
// chains to.
func BuiltinTypeRegister() *TypeRegister {
	tr := NewTypeRegister(nil)
	for _, item := range builtinItems {
		tr.Register(item.Name, item)
	}
	tr.Register("TextHorizontalAlignment", &Type{
		Kind:       TypeEnum,
		Name:       "TextHorizontalAlignment",
		EnumValues: []string{"left", "center", "right"},
	})
	tr.Register("TextVerticalAlignment", &Type{
		Kind:       TypeEnum,
		Name:       "TextVerticalAlignment",
		EnumValues: []string{"top", "center", "bottom"},
	})
	return tr
}

// Unit describes a numeric literal suffix: the type it produces and the
// factor to the type's canonical unit (logical px, ms, deg).
type Unit struct {
	Suffix string
	Type   *Type
	Factor float64
}

var Units = []Unit{
	{"px", LogicalLengthType, 1},
	{"phx", PhysicalLengthType, 1},
	{"%", PercentType, 1},
	{"ms", DurationType, 1},
	{"s", DurationType, 1000},
	{"deg", AngleType, 1},
	{"rad", AngleType, 180.0 / 3.141592653589793},
	{"turn", AngleType, 360},
}

func LookupUnit(suffix string) *Unit {
	for i := range Units {
		if Units[i].Suffix == suffix {
			return &Units[i]
		}
	}
	return nil
}
