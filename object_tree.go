package slint

import (
	"fmt"
)

// Document is the typed representation of one source file.
type Document struct {
	SourceFile string
	Components []*Component
	Structs    []*Type
	// Exports maps exported name to the component or struct it names,
	// after de-duplication (last or explicit alias wins).
	Exports map[string]interface{}
	// ExportOrder keeps exported names in declaration order.
	ExportOrder []string
	// LocalRegistry holds this document's named types, chained to the
	// builtin register (and transitively to imported documents).
	LocalRegistry *TypeRegister
	// Inner components synthesized by lowering passes (repeaters, popups).
	InnerComponents []*Component
}

// RootComponent is the last exported component, the one a program
// instantiates. Nil when the document exports none.
func (doc *Document) RootComponent() *Component {
	for i := len(doc.ExportOrder) - 1; i >= 0; i-- {
		if c, ok := doc.Exports[doc.ExportOrder[i]].(*Component); ok {
			if !c.IsGlobal {
				return c
			}
		}
	}
	return nil
}

// Component is a reusable element template. Passes mutate it in place; it
// is frozen once lowering produced the LLR.
type Component struct {
	Name     string
	Root     *Element
	IsGlobal bool
	Exported bool
	Location Location

	// OptimizedOut marks components fully inlined into their use sites.
	OptimizedOut bool

	// UsedGlobals lists the global singletons referenced from bindings,
	// filled by the collect-globals pass on the root component.
	UsedGlobals []*Component

	// ParentElement is set for inner components: the repeated or popup
	// element in the enclosing component that instantiates this one.
	ParentElement *Element
}

// PropertyDeclaration declares one property or callback on an element.
type PropertyDeclaration struct {
	Name     string
	Type     *Type
	Pure     bool // callbacks only: declared `pure callback`
	Exposed  bool // part of the component's public interface
	Location Location
}

// Binding is one expression assigned to a property. ExpressionSyntax is
// kept until the resolving pass replaces it with the typed Expression.
type Binding struct {
	ExpressionSyntax *SyntaxNode
	Expression       Expression
	// TwoWay is the target of `a <=> b`; the binding then has no
	// expression of its own until the alias is resolved away.
	TwoWay *PropertyReference
	// TwoWaySyntax holds the unresolved right side of a two-way binding.
	TwoWaySyntax *SyntaxNode
	// Animation animates value changes of this property.
	Animation *PropertyAnimation
	// Priority orders bindings merged during inlining: lower wins.
	Priority int
	Location Location
}

// PropertyAnimation is the animation metadata attached to a binding or a
// state transition.
type PropertyAnimation struct {
	DurationMs int64
	DelayMs    int64
	LoopCount  int
	Easing     *EasingCurveLiteral
}

// CallbackHandler is a resolved `name(args) => { ... }` connection.
type CallbackHandler struct {
	ExpressionSyntax *SyntaxNode
	ArgNames         []string
	Expression       Expression
	Location         Location
}

// State is one declarative state before lowering.
type State struct {
	Name      string
	Condition *SyntaxNode
	// resolved condition, filled by the resolving pass
	ConditionExpr Expression
	Changes       []StateChange
	Location      Location
}

type StateChange struct {
	Element  *Element
	Property string
	// ElementSyntax/Value hold the unresolved form until resolving runs.
	PathSyntax *SyntaxNode
	Value      *SyntaxNode
	ValueExpr  Expression
	Location   Location
}

// Transition carries enter/exit animation metadata for one state.
type Transition struct {
	StateName  string
	In         bool // `in state:` vs `out state:`
	Animations []TransitionAnimation
	Location   Location
}

type TransitionAnimation struct {
	Element   *Element
	Property  string
	PathSyntax *SyntaxNode
	Animation *PropertyAnimation
}

// RepeatedInfo describes a `for`/`if` element.
type RepeatedInfo struct {
	ModelSyntax   *SyntaxNode
	Model         Expression
	DataName      string // `for data in ...`; empty for `if`
	IndexName     string // `for data[index] in ...`
	IsConditional bool
}

// Element is one node in a component's element tree.
type Element struct {
	ID       string
	BaseName string
	// Base is the resolved base type: a builtin item, a user component
	// type, or InvalidType with a diagnostic already emitted.
	Base     *Type
	Children []*Element

	PropertyDeclarations map[string]*PropertyDeclaration
	Bindings             map[string]*Binding
	CallbackHandlers     map[string]*CallbackHandler
	PropertyAnimations   map[string]*PropertyAnimation

	States      []*State
	Transitions []*Transition

	// Repeated is set on `for`/`if` elements before the repeater pass
	// moves their subtree into an inner component.
	Repeated *RepeatedInfo
	// IsPopup marks a Popup child before the popup lowering pass.
	IsPopup bool

	// Component owning this element; kept current by inlining.
	EnclosingComponent *Component

	Location Location

	// DebugName records provenance through inlining ("Button/inner-rect").
	DebugName string

	// ItemIndex is the element's row in the flattened item tree, filled
	// by the final numbering pass; -1 until then.
	ItemIndex int
}

func NewElement(base string, location Location) *Element {
	return &Element{
		BaseName:             base,
		Base:                 InvalidType,
		PropertyDeclarations: make(map[string]*PropertyDeclaration),
		Bindings:             make(map[string]*Binding),
		CallbackHandlers:     make(map[string]*CallbackHandler),
		PropertyAnimations:   make(map[string]*PropertyAnimation),
		Location:             location,
		ItemIndex:            -1,
	}
}

// PropertyType resolves a property name on this element: local
// declarations first, then the base chain (user component roots, then the
// builtin item's property table).
func (e *Element) PropertyType(name string) *Type {
	if decl, ok := e.PropertyDeclarations[name]; ok {
		return decl.Type
	}
	switch e.Base.Kind {
	case TypeComponent:
		if e.Base.Component != nil && e.Base.Component.Root != nil {
			return e.Base.Component.Root.PropertyType(name)
		}
	case TypeBuiltinItem:
		if t, ok := e.Base.Properties[name]; ok {
			return t
		}
	}
	return InvalidType
}

// HasProperty reports whether name resolves on this element at all.
func (e *Element) HasProperty(name string) bool {
	return e.PropertyType(name) != InvalidType && e.PropertyType(name).Kind != TypeInvalid
}

// LookupChild finds a named descendant element by id, depth first, without
// crossing into repeated subtrees (those form their own scope).
func (e *Element) LookupChild(id string) *Element {
	if e.ID == id {
		return e
	}
	for _, c := range e.Children {
		if c.Repeated != nil {
			continue
		}
		if found := c.LookupChild(id); found != nil {
			return found
		}
	}
	return nil
}

// Visit walks the element tree depth-first, parents before children.
func (e *Element) Visit(f func(*Element)) {
	f(e)
	for _, c := range e.Children {
		c.Visit(f)
	}
}

// VisitElements applies f to every element of the component, including the
// roots of inner components created by lowering.
func (c *Component) VisitElements(f func(*Element)) {
	if c.Root != nil {
		c.Root.Visit(f)
	}
}

// VisitBindings applies f to every binding in the component tree.
func (c *Component) VisitBindings(f func(*Element, string, *Binding)) {
	c.VisitElements(func(e *Element) {
		for name, b := range e.Bindings {
			f(e, name, b)
		}
	})
}

// Duplicate deep-copies an element subtree for inlining. priorityDelta is
// added to every binding priority so inlined bindings lose against use-site
// bindings. The mapping from original to copied elements is recorded in
// mapping so expression references can be remapped afterwards.
func (e *Element) Duplicate(mapping map[*Element]*Element, priorityDelta int) *Element {
	dup := NewElement(e.BaseName, e.Location)
	dup.ID = e.ID
	dup.Base = e.Base
	dup.EnclosingComponent = e.EnclosingComponent
	dup.IsPopup = e.IsPopup
	dup.DebugName = e.DebugName
	mapping[e] = dup
	for name, decl := range e.PropertyDeclarations {
		d := *decl
		dup.PropertyDeclarations[name] = &d
	}
	for name, b := range e.Bindings {
		nb := *b
		nb.Priority += priorityDelta
		nb.Expression = CopyExpression(b.Expression)
		if b.TwoWay != nil {
			tw := *b.TwoWay
			nb.TwoWay = &tw
		}
		dup.Bindings[name] = &nb
	}
	for name, h := range e.CallbackHandlers {
		nh := *h
		nh.Expression = CopyExpression(h.Expression)
		dup.CallbackHandlers[name] = &nh
	}
	for name, a := range e.PropertyAnimations {
		na := *a
		dup.PropertyAnimations[name] = &na
	}
	if e.Repeated != nil {
		r := *e.Repeated
		r.Model = CopyExpression(e.Repeated.Model)
		dup.Repeated = &r
	}
	for _, st := range e.States {
		ns := *st
		ns.ConditionExpr = CopyExpression(st.ConditionExpr)
		ns.Changes = append([]StateChange(nil), st.Changes...)
		for i := range ns.Changes {
			ns.Changes[i].ValueExpr = CopyExpression(st.Changes[i].ValueExpr)
		}
		dup.States = append(dup.States, &ns)
	}
	for _, tr := range e.Transitions {
		nt := *tr
		nt.Animations = append([]TransitionAnimation(nil), tr.Animations...)
		dup.Transitions = append(dup.Transitions, &nt)
	}
	for _, child := range e.Children {
		dup.Children = append(dup.Children, child.Duplicate(mapping, priorityDelta))
	}
	return dup
}

// RemapReferences rewrites element pointers inside all expressions of the
// subtree according to mapping, after a Duplicate.
func (e *Element) RemapReferences(mapping map[*Element]*Element) {
	remap := func(expr Expression) Expression {
		switch x := expr.(type) {
		case *PropertyReference:
			if n, ok := mapping[x.Element]; ok {
				return &PropertyReference{Element: n, Name: x.Name}
			}
		case *CallbackReference:
			if n, ok := mapping[x.Element]; ok {
				return &CallbackReference{Element: n, Name: x.Name}
			}
		case *ElementReference:
			if n, ok := mapping[x.Element]; ok {
				return &ElementReference{Element: n}
			}
		case *RepeaterIndexReference:
			if n, ok := mapping[x.Element]; ok {
				return &RepeaterIndexReference{Element: n}
			}
		case *RepeaterModelReference:
			if n, ok := mapping[x.Element]; ok {
				return &RepeaterModelReference{Element: n, Type: x.Type}
			}
		case *StateReference:
			if n, ok := mapping[x.Element]; ok {
				return &StateReference{Element: n, Name: x.Name}
			}
		}
		return expr
	}
	e.Visit(func(el *Element) {
		for _, b := range el.Bindings {
			if b.Expression != nil {
				b.Expression = Transform(b.Expression, remap)
			}
			if b.TwoWay != nil {
				if n, ok := mapping[b.TwoWay.Element]; ok {
					b.TwoWay = &PropertyReference{Element: n, Name: b.TwoWay.Name}
				}
			}
		}
		for _, h := range el.CallbackHandlers {
			if h.Expression != nil {
				h.Expression = Transform(h.Expression, remap)
			}
		}
		for _, st := range el.States {
			if st.ConditionExpr != nil {
				st.ConditionExpr = Transform(st.ConditionExpr, remap)
			}
			for i := range st.Changes {
				if n, ok := mapping[st.Changes[i].Element]; ok {
					st.Changes[i].Element = n
				}
				if st.Changes[i].ValueExpr != nil {
					st.Changes[i].ValueExpr = Transform(st.Changes[i].ValueExpr, remap)
				}
			}
		}
		for _, tr := range el.Transitions {
			for i := range tr.Animations {
				if n, ok := mapping[tr.Animations[i].Element]; ok {
					tr.Animations[i].Element = n
				}
			}
		}
	})
}

func (e *Element) String() string {
	id := e.ID
	if id == "" {
		id = "<anonymous>"
	}
	return fmt.Sprintf("%s := %s", id, e.BaseName)
}
