package llr

import (
	"fmt"
	"sort"

	"github.com/slint-go/slint"
)

// Lower flattens a fully compiled document into a Unit. The document must
// have gone through the whole pass pipeline: expressions resolved, states
// and repeaters lowered, item indices assigned.
func Lower(doc *slint.Document) (*Unit, error) {
	unit := &Unit{
		ID:      slint.NewUUID(),
		Version: slint.Version,
		Source:  doc.SourceFile,
	}
	if root := doc.RootComponent(); root != nil {
		unit.RootComponent = root.Name
	}

	lw := &lowerer{doc: doc}

	for _, st := range doc.Structs {
		unit.Structs = append(unit.Structs, lowerStruct(st))
	}

	for _, g := range collectedGlobals(doc) {
		lg, err := lw.lowerGlobal(g)
		if err != nil {
			return nil, err
		}
		unit.Globals = append(unit.Globals, lg)
	}

	for _, c := range doc.Components {
		if c.IsGlobal || c.OptimizedOut {
			continue
		}
		lc, err := lw.lowerComponent(c, false)
		if err != nil {
			return nil, err
		}
		unit.Components = append(unit.Components, lc)
	}
	for _, c := range doc.InnerComponents {
		if c.OptimizedOut {
			continue
		}
		lc, err := lw.lowerComponent(c, true)
		if err != nil {
			return nil, err
		}
		unit.Components = append(unit.Components, lc)
	}
	return unit, nil
}

// collectedGlobals returns the globals the root component uses plus every
// exported global, each once, in name order.
func collectedGlobals(doc *slint.Document) []*slint.Component {
	seen := make(map[*slint.Component]bool)
	var globals []*slint.Component
	add := func(g *slint.Component) {
		if g != nil && !seen[g] {
			seen[g] = true
			globals = append(globals, g)
		}
	}
	if root := doc.RootComponent(); root != nil {
		for _, g := range root.UsedGlobals {
			add(g)
		}
	}
	for _, c := range doc.Components {
		if c.IsGlobal && c.Exported {
			add(c)
		}
	}
	sort.Slice(globals, func(i, j int) bool { return globals[i].Name < globals[j].Name })
	return globals
}

func lowerStruct(t *slint.Type) Struct {
	s := Struct{Name: t.Name}
	for _, f := range t.FieldOrder {
		s.Fields = append(s.Fields, Field{Name: f, Type: t.Fields[f].String()})
	}
	return s
}

type lowerer struct {
	doc *slint.Document
}

func (lw *lowerer) lowerGlobal(g *slint.Component) (Global, error) {
	out := Global{Name: g.Name, Exported: g.Exported}
	e := g.Root
	for _, name := range sortedDeclNames(e) {
		out.Properties = append(out.Properties, lowerDeclaration(0, name, e.PropertyDeclarations[name]))
	}
	bindings, err := lw.lowerElementBindings(g, e)
	if err != nil {
		return Global{}, err
	}
	out.Bindings = bindings
	return out, nil
}

func (lw *lowerer) lowerComponent(c *slint.Component, template bool) (Component, error) {
	out := Component{
		Name:     c.Name,
		Exported: c.Exported,
		Template: template,
	}
	for _, g := range c.UsedGlobals {
		out.Globals = append(out.Globals, g.Name)
	}

	elements := elementsByIndex(c)
	for _, e := range elements {
		item, err := lw.lowerItem(c, e)
		if err != nil {
			return Component{}, err
		}
		out.Items = append(out.Items, item)
		for _, name := range sortedDeclNames(e) {
			out.Properties = append(out.Properties, lowerDeclaration(e.ItemIndex, name, e.PropertyDeclarations[name]))
		}
		bindings, err := lw.lowerElementBindings(c, e)
		if err != nil {
			return Component{}, err
		}
		out.Bindings = append(out.Bindings, bindings...)
	}
	return out, nil
}

// elementsByIndex returns the component's elements ordered by their
// assigned item index. The numbering pass uses the same depth-first order,
// so position and index always agree.
func elementsByIndex(c *slint.Component) []*slint.Element {
	var elements []*slint.Element
	c.VisitElements(func(e *slint.Element) {
		elements = append(elements, e)
	})
	sort.Slice(elements, func(i, j int) bool { return elements[i].ItemIndex < elements[j].ItemIndex })
	return elements
}

func (lw *lowerer) lowerItem(c *slint.Component, e *slint.Element) (Item, error) {
	item := Item{
		Index: e.ItemIndex,
		ID:    e.ID,
		Type:  e.Base.Name,
		Popup: e.IsPopup,
	}
	for _, child := range e.Children {
		item.Children = append(item.Children, child.ItemIndex)
	}
	if e.Repeated != nil {
		if e.Base.Kind != slint.TypeComponent || e.Base.Component == nil {
			return Item{}, fmt.Errorf("llr: repeater %q was not lowered to a template", e.ID)
		}
		rep := &Repeater{
			Component:   e.Base.Component.Name,
			Conditional: e.Repeated.IsConditional,
		}
		if e.Repeated.Model != nil {
			model, err := lw.lowerExpr(c, e.Repeated.Model)
			if err != nil {
				return Item{}, err
			}
			rep.Model = model
		}
		item.Repeater = rep
	}
	return item, nil
}

func lowerDeclaration(itemIndex int, name string, decl *slint.PropertyDeclaration) Property {
	p := Property{
		Item:    itemIndex,
		Name:    name,
		Type:    decl.Type.String(),
		Exposed: decl.Exposed,
	}
	if decl.Type.Kind == slint.TypeCallback {
		p.Callback = true
		p.Pure = decl.Pure
		for _, a := range decl.Type.Args {
			p.Args = append(p.Args, a.String())
		}
		if decl.Type.ReturnType != nil && decl.Type.ReturnType.Kind != slint.TypeVoid {
			p.Return = decl.Type.ReturnType.String()
		}
	}
	return p
}

func (lw *lowerer) lowerElementBindings(c *slint.Component, e *slint.Element) ([]Binding, error) {
	var out []Binding
	for _, name := range sortedBindingNames(e) {
		b := e.Bindings[name]
		lb := Binding{Item: e.ItemIndex, Property: name}
		if b.TwoWay != nil {
			ref, err := lw.propRef(c, b.TwoWay.Element, b.TwoWay.Name)
			if err != nil {
				return nil, err
			}
			lb.TwoWay = ref
		}
		if b.Expression != nil {
			expr, err := lw.lowerExpr(c, b.Expression)
			if err != nil {
				return nil, err
			}
			lb.Expr = expr
			lb.Constant = isConstant(b.Expression)
		}
		if b.Animation != nil {
			lb.Animation = lowerAnimation(b.Animation)
		}
		if lb.Expr == nil && lb.TwoWay == nil && lb.Animation == nil {
			continue
		}
		out = append(out, lb)
	}
	for _, name := range sortedHandlerNames(e) {
		h := e.CallbackHandlers[name]
		if h.Expression == nil {
			continue
		}
		expr, err := lw.lowerExpr(c, h.Expression)
		if err != nil {
			return nil, err
		}
		out = append(out, Binding{Item: e.ItemIndex, Property: name, Expr: expr})
	}
	return out, nil
}

func lowerAnimation(a *slint.PropertyAnimation) *Animation {
	out := &Animation{
		DurationMs: a.DurationMs,
		DelayMs:    a.DelayMs,
		LoopCount:  a.LoopCount,
		Easing:     Easing{Name: "linear"},
	}
	if a.Easing != nil {
		out.Easing = Easing{
			Name: a.Easing.Name,
			X1:   a.Easing.X1,
			Y1:   a.Easing.Y1,
			X2:   a.Easing.X2,
			Y2:   a.Easing.Y2,
		}
	}
	return out
}

// propRef encodes a reference to a property of some element as seen from
// component c. References out of a repeater template into the enclosing
// component gain a parent level per hop.
func (lw *lowerer) propRef(c *slint.Component, e *slint.Element, name string) (*PropRef, error) {
	owner := e.EnclosingComponent
	if owner == nil {
		return nil, fmt.Errorf("llr: reference to %q on a detached element", name)
	}
	if owner.IsGlobal {
		return &PropRef{Global: owner.Name, Property: name}, nil
	}
	level := 0
	for cur := c; cur != nil; {
		if cur == owner {
			if e.ItemIndex < 0 {
				return nil, fmt.Errorf("llr: element %q has no item index", e.ID)
			}
			return &PropRef{Item: e.ItemIndex, Property: name, ParentLevel: level}, nil
		}
		if cur.ParentElement == nil {
			break
		}
		cur = cur.ParentElement.EnclosingComponent
		level++
	}
	return nil, fmt.Errorf("llr: reference to %q escapes component %q", name, c.Name)
}

func (lw *lowerer) lowerExpr(c *slint.Component, e slint.Expression) (*Expr, error) {
	switch x := e.(type) {
	case nil:
		return nil, nil
	case slint.Invalid, *slint.Invalid:
		return &Expr{Kind: ExprInvalid}, nil
	case *slint.NumberLiteral:
		return &Expr{Kind: ExprNumber, Type: x.Type.String(), Value: x.Value}, nil
	case *slint.StringLiteral:
		return &Expr{Kind: ExprString, Text: x.Value}, nil
	case *slint.BoolLiteral:
		return &Expr{Kind: ExprBool, Bool: x.Value}, nil
	case *slint.ColorLiteral:
		return &Expr{Kind: ExprColor, Value: float64(x.Value)}, nil
	case *slint.EnumValue:
		return &Expr{Kind: ExprEnum, Type: x.Enum.String(), Text: x.Value}, nil
	case *slint.PropertyReference:
		ref, err := lw.propRef(c, x.Element, x.Name)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprProperty, Type: e.Ty().String(), Ref: ref}, nil
	case *slint.CallbackReference:
		ref, err := lw.propRef(c, x.Element, x.Name)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprCallback, Ref: ref}, nil
	case *slint.StateReference:
		ref, err := lw.propRef(c, x.Element, x.Name)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprState, Ref: ref}, nil
	case *slint.ElementReference:
		ref, err := lw.propRef(c, x.Element, "")
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprElement, Ref: ref}, nil
	case *slint.RepeaterIndexReference:
		ref, err := lw.propRef(c, x.Element, "")
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprRepeaterIndex, Ref: ref}, nil
	case *slint.RepeaterModelReference:
		ref, err := lw.propRef(c, x.Element, "")
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprRepeaterModel, Type: x.Type.String(), Ref: ref}, nil
	case *slint.FunctionArgReference:
		return &Expr{Kind: ExprArg, Type: x.Type.String(), Index: x.Index}, nil
	case *slint.StructFieldAccess:
		base, err := lw.lowerExpr(c, x.Base)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprFieldAccess, Type: e.Ty().String(), Text: x.Field, Children: []*Expr{base}}, nil
	case *slint.Cast:
		from, err := lw.lowerExpr(c, x.From)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprCast, Type: x.To.String(), Children: []*Expr{from}}, nil
	case *slint.BinaryExpression:
		lhs, err := lw.lowerExpr(c, x.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := lw.lowerExpr(c, x.Rhs)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprBinary, Type: e.Ty().String(), Op: binaryOpName(x.Op), Children: []*Expr{lhs, rhs}}, nil
	case *slint.UnaryExpression:
		sub, err := lw.lowerExpr(c, x.Sub)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprUnary, Type: e.Ty().String(), Op: string(x.Op), Children: []*Expr{sub}}, nil
	case *slint.ConditionalExpression:
		children, err := lw.lowerAll(c, x.Condition, x.TrueExpr, x.FalseExpr)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprConditional, Type: e.Ty().String(), Children: children}, nil
	case *slint.FunctionCall:
		if b, ok := x.Function.(*slint.BuiltinFunctionReference); ok {
			args, err := lw.lowerAll(c, x.Args...)
			if err != nil {
				return nil, err
			}
			return &Expr{Kind: ExprBuiltin, Type: e.Ty().String(), Text: b.Name, Children: args}, nil
		}
		children, err := lw.lowerAll(c, append([]slint.Expression{x.Function}, x.Args...)...)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprCall, Type: e.Ty().String(), Children: children}, nil
	case *slint.Assignment:
		ref, err := lw.propRef(c, x.Lhs.Element, x.Lhs.Name)
		if err != nil {
			return nil, err
		}
		rhs, err := lw.lowerExpr(c, x.Rhs)
		if err != nil {
			return nil, err
		}
		op := "="
		if x.Op != 0 {
			op = string(x.Op) + "="
		}
		return &Expr{Kind: ExprAssign, Op: op, Ref: ref, Children: []*Expr{rhs}}, nil
	case *slint.ArrayLiteral:
		values, err := lw.lowerAll(c, x.Values...)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprArray, Type: e.Ty().String(), Children: values}, nil
	case *slint.StructLiteral:
		out := &Expr{Kind: ExprStruct, Type: x.Type.String(), Fields: make(map[string]*Expr, len(x.Values))}
		for name, v := range x.Values {
			lv, err := lw.lowerExpr(c, v)
			if err != nil {
				return nil, err
			}
			out.Fields[name] = lv
		}
		return out, nil
	case *slint.CodeBlock:
		stmts, err := lw.lowerAll(c, x.Statements...)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprBlock, Type: e.Ty().String(), Children: stmts}, nil
	case *slint.ReturnStatement:
		ret := &Expr{Kind: ExprReturn}
		if x.Value != nil {
			v, err := lw.lowerExpr(c, x.Value)
			if err != nil {
				return nil, err
			}
			ret.Children = []*Expr{v}
			ret.Type = x.Value.Ty().String()
		}
		return ret, nil
	case *slint.EasingCurveLiteral:
		return &Expr{Kind: ExprEasing, Text: x.Name, Children: []*Expr{
			{Kind: ExprNumber, Value: x.X1},
			{Kind: ExprNumber, Value: x.Y1},
			{Kind: ExprNumber, Value: x.X2},
			{Kind: ExprNumber, Value: x.Y2},
		}}, nil
	case slint.AnimationTick, *slint.AnimationTick:
		return &Expr{Kind: ExprAnimationTick}, nil
	case *slint.BuiltinFunctionReference:
		return &Expr{Kind: ExprBuiltin, Text: x.Name}, nil
	}
	return nil, fmt.Errorf("llr: unhandled expression %T", e)
}

func (lw *lowerer) lowerAll(c *slint.Component, exprs ...slint.Expression) ([]*Expr, error) {
	out := make([]*Expr, 0, len(exprs))
	for _, e := range exprs {
		le, err := lw.lowerExpr(c, e)
		if err != nil {
			return nil, err
		}
		out = append(out, le)
	}
	return out, nil
}

// binaryOpName expands the single-byte operator encoding back to source
// spelling.
func binaryOpName(op byte) string {
	switch op {
	case '=':
		return "=="
	case '!':
		return "!="
	case 'l':
		return "<="
	case 'g':
		return ">="
	case '&':
		return "&&"
	case '|':
		return "||"
	}
	return string(op)
}

// isConstant reports whether an expression has no inputs: a binding on it
// evaluates once and never again.
func isConstant(e slint.Expression) bool {
	constant := true
	slint.Visit(e, func(sub slint.Expression) bool {
		switch sub.(type) {
		case *slint.PropertyReference, *slint.CallbackReference, *slint.StateReference,
			*slint.RepeaterIndexReference, *slint.RepeaterModelReference,
			*slint.FunctionArgReference, *slint.FunctionCall, *slint.Assignment,
			slint.AnimationTick, *slint.AnimationTick:
			constant = false
			return false
		}
		return constant
	})
	return constant
}

func sortedDeclNames(e *slint.Element) []string {
	var names []string
	for name := range e.PropertyDeclarations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedBindingNames(e *slint.Element) []string {
	var names []string
	for name := range e.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedHandlerNames(e *slint.Element) []string {
	var names []string
	for name := range e.CallbackHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
