// Package llr is the flattened low-level representation a compiled
// document lowers to. Everything is self-contained and serializable:
// name resolution is finished, references are (item index, property)
// pairs, the element tree is a flat item list per component.
package llr

import "github.com/slint-go/slint"

// Unit is one compiled compilation unit. The ID is a fresh UUID per
// build, for provenance when units are cached or diffed.
type Unit struct {
	ID            slint.UUID  `json:"id"`
	Version       string      `json:"version"`
	Source        string      `json:"source"`
	RootComponent string      `json:"rootComponent,omitempty"`
	Structs       []Struct    `json:"structs,omitempty"`
	Globals       []Global    `json:"globals,omitempty"`
	Components    []Component `json:"components"`
}

type Struct struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Global is a singleton: properties without items.
type Global struct {
	Name       string     `json:"name"`
	Exported   bool       `json:"exported,omitempty"`
	Properties []Property `json:"properties,omitempty"`
	Bindings   []Binding  `json:"bindings,omitempty"`
}

// Component is one flattened element tree. Template components back
// repeaters and popups and are instantiated per model entry.
type Component struct {
	Name       string     `json:"name"`
	Exported   bool       `json:"exported,omitempty"`
	Template   bool       `json:"template,omitempty"`
	Items      []Item     `json:"items"`
	Properties []Property `json:"properties,omitempty"`
	Bindings   []Binding  `json:"bindings,omitempty"`
	Globals    []string   `json:"globals,omitempty"`
}

// Item is one row of the flattened tree. Children are item indices;
// index 0 is the root. A repeater row has no children of its own, its
// template component holds the repeated subtree.
type Item struct {
	Index    int       `json:"index"`
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Children []int     `json:"children,omitempty"`
	Popup    bool      `json:"popup,omitempty"`
	Repeater *Repeater `json:"repeater,omitempty"`
}

type Repeater struct {
	Component   string `json:"component"`
	Model       *Expr  `json:"model,omitempty"`
	Conditional bool   `json:"conditional,omitempty"`
}

type Property struct {
	Item     int      `json:"item"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Exposed  bool     `json:"exposed,omitempty"`
	Callback bool     `json:"callback,omitempty"`
	Pure     bool     `json:"pure,omitempty"`
	Args     []string `json:"args,omitempty"`
	Return   string   `json:"return,omitempty"`
}

type Binding struct {
	Item      int        `json:"item"`
	Property  string     `json:"property"`
	Expr      *Expr      `json:"expr,omitempty"`
	TwoWay    *PropRef   `json:"twoWay,omitempty"`
	Animation *Animation `json:"animation,omitempty"`
	// Constant bindings have no dependencies and never re-evaluate.
	Constant bool `json:"constant,omitempty"`
}

// PropRef addresses a property. ParentLevel counts enclosing component
// hops for references out of a template into its instantiating
// component; Global names a singleton instead of an item.
type PropRef struct {
	Item        int    `json:"item"`
	Property    string `json:"property"`
	ParentLevel int    `json:"parentLevel,omitempty"`
	Global      string `json:"global,omitempty"`
}

type Animation struct {
	DurationMs int64  `json:"durationMs"`
	DelayMs    int64  `json:"delayMs,omitempty"`
	LoopCount  int    `json:"loopCount,omitempty"`
	Easing     Easing `json:"easing"`
}

type Easing struct {
	Name string  `json:"name"`
	X1   float64 `json:"x1,omitempty"`
	Y1   float64 `json:"y1,omitempty"`
	X2   float64 `json:"x2,omitempty"`
	Y2   float64 `json:"y2,omitempty"`
}

// Expr is a serialized expression node. Kind selects which fields are
// meaningful.
type Expr struct {
	Kind     string           `json:"kind"`
	Type     string           `json:"type,omitempty"`
	Value    float64          `json:"value,omitempty"`
	Bool     bool             `json:"bool,omitempty"`
	Text     string           `json:"text,omitempty"`
	Op       string           `json:"op,omitempty"`
	Ref      *PropRef         `json:"ref,omitempty"`
	Index    int              `json:"argIndex,omitempty"`
	Fields   map[string]*Expr `json:"fields,omitempty"`
	Children []*Expr          `json:"children,omitempty"`
}

const (
	ExprNumber        = "number"
	ExprString        = "string"
	ExprBool          = "bool"
	ExprColor         = "color"
	ExprEnum          = "enum"
	ExprProperty      = "property"
	ExprCallback      = "callback"
	ExprElement       = "element"
	ExprRepeaterIndex = "repeater-index"
	ExprRepeaterModel = "repeater-model"
	ExprArg           = "arg"
	ExprFieldAccess   = "field"
	ExprCast          = "cast"
	ExprBinary        = "binary"
	ExprUnary         = "unary"
	ExprConditional   = "conditional"
	ExprCall          = "call"
	ExprBuiltin       = "builtin"
	ExprAssign        = "assign"
	ExprArray         = "array"
	ExprStruct        = "struct"
	ExprBlock         = "block"
	ExprReturn        = "return"
	ExprEasing        = "easing"
	ExprAnimationTick = "animation-tick"
	ExprState         = "state"
	ExprInvalid       = "invalid"
)
