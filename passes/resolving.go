package passes

import (
	"sort"

	"github.com/slint-go/slint"
)

// resolveTwoWayBindings resolves the right side of every `a <=> b` to a
// property reference. This runs before expression resolution because type
// inference needs the alias targets first.
func resolveTwoWayBindings(ctx *Context) {
	for _, c := range allComponents(ctx.Doc) {
		comp := c
		walkElements(comp, func(anc []*slint.Element, e *slint.Element) {
			for _, name := range sortedBindingNames(e) {
				b := e.Bindings[name]
				if b.TwoWaySyntax == nil || b.TwoWay != nil {
					continue
				}
				lc := lookupContext(ctx, comp, anc, e, nil, nil)
				expr := lc.LookupQualified(b.TwoWaySyntax.Text, b.TwoWaySyntax.Location)
				switch x := expr.(type) {
				case *slint.PropertyReference:
					b.TwoWay = x
				case *slint.CallbackReference:
					b.TwoWay = &slint.PropertyReference{Element: x.Element, Name: x.Name}
				case slint.Invalid:
					// already diagnosed by the lookup
				default:
					ctx.Diags.Errorf(b.TwoWaySyntax.Location,
						"The target of a two-way binding must be a property")
				}
			}
		})
	}
}

// inferPropertyTypes gives `property p <=> other.q;` declarations the type
// of their alias target. Chained aliases converge by iteration; anything
// still untyped afterwards is an error.
func inferPropertyTypes(ctx *Context) {
	changed := true
	for round := 0; changed && round < 32; round++ {
		changed = false
		for _, c := range allComponents(ctx.Doc) {
			walkElements(c, func(anc []*slint.Element, e *slint.Element) {
				for name, decl := range e.PropertyDeclarations {
					if decl.Type != slint.InferredProperty && decl.Type != slint.InferredCallback {
						continue
					}
					b := e.Bindings[name]
					if b == nil || b.TwoWay == nil {
						continue
					}
					t := b.TwoWay.Element.PropertyType(b.TwoWay.Name)
					if t == nil || t.Kind == slint.TypeInvalid ||
						t == slint.InferredProperty || t == slint.InferredCallback {
						continue
					}
					decl.Type = t
					changed = true
				}
			})
		}
	}
	for _, c := range allComponents(ctx.Doc) {
		walkElements(c, func(anc []*slint.Element, e *slint.Element) {
			for name, decl := range e.PropertyDeclarations {
				switch decl.Type {
				case slint.InferredProperty:
					ctx.Diags.Errorf(decl.Location, "Cannot infer the type of property %q", name)
					decl.Type = slint.InvalidType
				case slint.InferredCallback:
					ctx.Diags.Errorf(decl.Location, "Cannot infer the type of callback %q", name)
					decl.Type = slint.InvalidType
				}
			}
		})
	}
}

// resolveExpressions turns every remaining syntax expression into typed
// expression IR and checks its type against the bound property.
func resolveExpressions(ctx *Context) {
	r := &resolver{ctx: ctx}
	for _, c := range allComponents(ctx.Doc) {
		comp := c
		walkElements(comp, func(anc []*slint.Element, e *slint.Element) {
			r.resolveElement(comp, anc, e)
		})
	}
}

type resolver struct {
	ctx *Context
}

func lookupContext(ctx *Context, c *slint.Component, anc []*slint.Element, e *slint.Element,
	argNames []string, argTypes []*slint.Type) *slint.LookupContext {
	return &slint.LookupContext{
		Registry:  ctx.Doc.LocalRegistry,
		Component: c,
		Ancestors: anc,
		Current:   e,
		ArgNames:  argNames,
		ArgTypes:  argTypes,
		Diags:     ctx.Diags,
	}
}

func sortedBindingNames(e *slint.Element) []string {
	names := make([]string, 0, len(e.Bindings))
	for name := range e.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *resolver) resolveElement(c *slint.Component, anc []*slint.Element, e *slint.Element) {
	diags := r.ctx.Diags
	// the model first: the repeater data variable's type depends on it
	// and the element's own bindings may read that variable
	if e.Repeated != nil && e.Repeated.ModelSyntax != nil && e.Repeated.Model == nil {
		// the model is evaluated in the parent scope, the repeated
		// element's own properties are not visible to it
		var pAnc []*slint.Element
		pCur := e
		if n := len(anc); n > 0 {
			pAnc, pCur = anc[:n-1], anc[n-1]
		}
		lc := lookupContext(r.ctx, c, pAnc, pCur, nil, nil)
		m := r.expression(e.Repeated.ModelSyntax, lc)
		if e.Repeated.IsConditional {
			m = r.coerce(m, slint.BoolType, e.Repeated.ModelSyntax.Location)
		} else if mt := m.Ty(); mt.Kind != slint.TypeArray && !mt.IsNumeric() &&
			mt.Kind != slint.TypeBool && mt.Kind != slint.TypeInvalid {
			diags.Errorf(e.Repeated.ModelSyntax.Location,
				"A model must be an array, a number or a bool, not %s", mt)
		}
		e.Repeated.Model = m
	}
	for _, name := range sortedBindingNames(e) {
		b := e.Bindings[name]
		target := e.PropertyType(name)
		if target == nil || target.Kind == slint.TypeInvalid {
			diags.Errorf(b.Location, "Unknown property %q in %s", name, e.BaseName)
			continue
		}
		if b.ExpressionSyntax == nil || b.Expression != nil {
			continue
		}
		lc := lookupContext(r.ctx, c, anc, e, nil, nil)
		expr := r.expression(b.ExpressionSyntax, lc)
		b.Expression = r.coerce(expr, target, b.ExpressionSyntax.Location)
	}
	// attach animation metadata to the bindings it names; an animated
	// property without a binding still gets an empty binding carrier so
	// the runtime sees the animation
	for _, name := range sortedAnimationNames(e) {
		anim := e.PropertyAnimations[name]
		t := e.PropertyType(name)
		if t == nil || t.Kind == slint.TypeInvalid {
			diags.Errorf(e.Location, "Cannot animate unknown property %q", name)
			continue
		}
		if !t.IsNumeric() && t.Kind != slint.TypeColor {
			diags.Errorf(e.Location, "Property %q of type %s cannot be animated", name, t)
			continue
		}
		b := e.Bindings[name]
		if b == nil {
			b = &slint.Binding{Location: e.Location}
			e.Bindings[name] = b
		}
		b.Animation = anim
	}
	for _, name := range sortedHandlerNames(e) {
		h := e.CallbackHandlers[name]
		t := e.PropertyType(name)
		if t == nil || t.Kind != slint.TypeCallback {
			diags.Errorf(h.Location, "%s has no callback %q", e.BaseName, name)
			continue
		}
		if len(h.ArgNames) > len(t.Args) {
			diags.Errorf(h.Location, "Handler for %q names %d arguments, the callback has %d",
				name, len(h.ArgNames), len(t.Args))
			continue
		}
		if h.ExpressionSyntax == nil || h.Expression != nil {
			continue
		}
		lc := lookupContext(r.ctx, c, anc, e, h.ArgNames, t.Args)
		h.Expression = r.expression(h.ExpressionSyntax, lc)
	}
	for _, st := range e.States {
		if st.Condition != nil && st.ConditionExpr == nil {
			lc := lookupContext(r.ctx, c, anc, e, nil, nil)
			st.ConditionExpr = r.coerce(r.expression(st.Condition, lc), slint.BoolType, st.Condition.Location)
		}
		for i := range st.Changes {
			ch := &st.Changes[i]
			if ch.Element != nil || ch.PathSyntax == nil {
				continue
			}
			lc := lookupContext(r.ctx, c, anc, e, nil, nil)
			ref := lc.LookupQualified(ch.PathSyntax.Text, ch.PathSyntax.Location)
			pr, ok := ref.(*slint.PropertyReference)
			if !ok {
				if _, invalid := ref.(slint.Invalid); !invalid {
					diags.Errorf(ch.PathSyntax.Location, "A state change must name a property")
				}
				continue
			}
			ch.Element = pr.Element
			ch.Property = pr.Name
			if ch.Value != nil {
				ch.ValueExpr = r.coerce(r.expression(ch.Value, lc),
					pr.Element.PropertyType(pr.Name), ch.Value.Location)
			}
		}
	}
	for _, tr := range e.Transitions {
		for i := range tr.Animations {
			ta := &tr.Animations[i]
			if ta.Element != nil {
				continue
			}
			lc := lookupContext(r.ctx, c, anc, e, nil, nil)
			ref := lc.LookupQualified(ta.Property, tr.Location)
			if pr, ok := ref.(*slint.PropertyReference); ok {
				ta.Element = pr.Element
				ta.Property = pr.Name
			}
		}
	}
}

func sortedAnimationNames(e *slint.Element) []string {
	names := make([]string, 0, len(e.PropertyAnimations))
	for name := range e.PropertyAnimations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedHandlerNames(e *slint.Element) []string {
	names := make([]string, 0, len(e.CallbackHandlers))
	for name := range e.CallbackHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var binaryOpCodes = map[string]byte{
	"+": '+', "-": '-', "*": '*', "/": '/',
	"<": '<', ">": '>', "<=": 'l', ">=": 'g',
	"==": '=', "!=": '!', "&&": '&', "||": '|',
}

func (r *resolver) expression(node *slint.SyntaxNode, lc *slint.LookupContext) slint.Expression {
	diags := r.ctx.Diags
	switch node.Kind {
	case slint.SyntaxNumberLiteral:
		value, unit := slint.SplitNumberLiteral(node.Text)
		if unit != nil {
			return &slint.NumberLiteral{Value: value * unit.Factor, Type: unit.Type}
		}
		return &slint.NumberLiteral{Value: value, Type: slint.Float32Type}
	case slint.SyntaxStringLiteral:
		return &slint.StringLiteral{Value: node.Text}
	case slint.SyntaxColorLiteral:
		argb, err := slint.ParseColorLiteral(node.Text)
		if err != nil {
			diags.Errorf(node.Location, "%v", err)
			return slint.Invalid{}
		}
		return &slint.ColorLiteral{Value: argb}
	case slint.SyntaxIdentifier, slint.SyntaxQualifiedName:
		return lc.LookupQualified(node.Text, node.Location)
	case slint.SyntaxParenthesized:
		if len(node.Children) == 1 {
			return r.expression(node.Children[0], lc)
		}
		return slint.Invalid{}
	case slint.SyntaxUnaryExpression:
		sub := r.expression(node.Children[0], lc)
		if node.Text == "!" {
			return &slint.UnaryExpression{Op: '!', Sub: r.coerce(sub, slint.BoolType, node.Location)}
		}
		if !sub.Ty().IsNumeric() && sub.Ty().Kind != slint.TypeInvalid {
			diags.Errorf(node.Location, "Cannot negate a value of type %s", sub.Ty())
			return slint.Invalid{}
		}
		return &slint.UnaryExpression{Op: '-', Sub: sub}
	case slint.SyntaxBinaryExpression:
		return r.binary(node, lc)
	case slint.SyntaxConditionalExpression:
		cond := r.coerce(r.expression(node.Children[0], lc), slint.BoolType, node.Location)
		t := r.expression(node.Children[1], lc)
		f := r.expression(node.Children[2], lc)
		f = r.coerce(f, t.Ty(), node.Location)
		return &slint.ConditionalExpression{Condition: cond, TrueExpr: t, FalseExpr: f}
	case slint.SyntaxFunctionCall:
		return r.call(node, lc)
	case slint.SyntaxArrayLiteral:
		arr := &slint.ArrayLiteral{ElementType: slint.InvalidType}
		for i, child := range node.Children {
			v := r.expression(child, lc)
			if i == 0 {
				arr.ElementType = v.Ty()
			} else {
				v = r.coerce(v, arr.ElementType, child.Location)
			}
			arr.Values = append(arr.Values, v)
		}
		return arr
	case slint.SyntaxObjectLiteral:
		st := &slint.Type{Kind: slint.TypeStruct, Fields: make(map[string]*slint.Type)}
		lit := &slint.StructLiteral{Type: st, Values: make(map[string]slint.Expression)}
		for _, member := range node.ChildrenOfKind(slint.SyntaxObjectMember) {
			if len(member.Children) != 1 {
				continue
			}
			v := r.expression(member.Children[0], lc)
			if _, dup := lit.Values[member.Text]; dup {
				diags.Errorf(member.Location, "Duplicate field %q", member.Text)
				continue
			}
			st.Fields[member.Text] = v.Ty()
			st.FieldOrder = append(st.FieldOrder, member.Text)
			lit.Values[member.Text] = v
		}
		return lit
	case slint.SyntaxCodeBlock:
		block := &slint.CodeBlock{}
		for _, child := range node.Children {
			block.Statements = append(block.Statements, r.statement(child, lc))
		}
		return block
	case slint.SyntaxReturnStatement, slint.SyntaxSelfAssignment:
		return r.statement(node, lc)
	case slint.SyntaxError:
		return slint.Invalid{}
	}
	diags.Errorf(node.Location, "Cannot resolve this expression")
	return slint.Invalid{}
}

func (r *resolver) statement(node *slint.SyntaxNode, lc *slint.LookupContext) slint.Expression {
	diags := r.ctx.Diags
	switch node.Kind {
	case slint.SyntaxReturnStatement:
		ret := &slint.ReturnStatement{}
		if len(node.Children) == 1 {
			ret.Value = r.expression(node.Children[0], lc)
		}
		return ret
	case slint.SyntaxSelfAssignment:
		if len(node.Children) != 2 {
			return slint.Invalid{}
		}
		lhsNode := node.Children[0]
		target := lc.LookupQualified(lhsNode.Text, lhsNode.Location)
		pr, ok := target.(*slint.PropertyReference)
		if !ok {
			if _, invalid := target.(slint.Invalid); !invalid {
				diags.Errorf(lhsNode.Location, "Only properties can be assigned to")
			}
			return slint.Invalid{}
		}
		rhs := r.expression(node.Children[1], lc)
		var op byte
		if node.Text != "=" {
			op = node.Text[0]
			resType := slint.OperatorResultType(op, pr.Ty(), rhs.Ty())
			if resType.Kind == slint.TypeInvalid && pr.Ty().Kind != slint.TypeInvalid &&
				rhs.Ty().Kind != slint.TypeInvalid {
				diags.Errorf(node.Location, "Operator %q cannot combine %s and %s",
					node.Text, pr.Ty(), rhs.Ty())
			}
		} else {
			rhs = r.coerce(rhs, pr.Ty(), node.Location)
		}
		return &slint.Assignment{Lhs: pr, Op: op, Rhs: rhs}
	}
	return r.expression(node, lc)
}

func (r *resolver) binary(node *slint.SyntaxNode, lc *slint.LookupContext) slint.Expression {
	diags := r.ctx.Diags
	op, ok := binaryOpCodes[node.Text]
	if !ok || len(node.Children) != 2 {
		return slint.Invalid{}
	}
	lhs := r.expression(node.Children[0], lc)
	rhs := r.expression(node.Children[1], lc)
	lt, rt := lhs.Ty(), rhs.Ty()
	if lt.Kind == slint.TypeInvalid || rt.Kind == slint.TypeInvalid {
		return &slint.BinaryExpression{Op: op, Lhs: lhs, Rhs: rhs}
	}
	switch op {
	case '&', '|':
		lhs = r.coerce(lhs, slint.BoolType, node.Location)
		rhs = r.coerce(rhs, slint.BoolType, node.Location)
	case '=', '!', '<', '>', 'l', 'g':
		if !rt.CanConvert(lt) && !lt.CanConvert(rt) {
			diags.Errorf(node.Location, "Cannot compare %s and %s", lt, rt)
		} else if rt.CanConvert(lt) {
			rhs = r.coerce(rhs, lt, node.Location)
		} else {
			lhs = r.coerce(lhs, rt, node.Location)
		}
	case '+':
		if lt.Kind == slint.TypeString || rt.Kind == slint.TypeString {
			lhs = r.coerce(lhs, slint.StringType, node.Location)
			rhs = r.coerce(rhs, slint.StringType, node.Location)
			break
		}
		fallthrough
	default:
		if slint.OperatorResultType(op, lt, rt).Kind == slint.TypeInvalid {
			diags.Errorf(node.Location, "Operator %q cannot combine %s and %s", node.Text, lt, rt)
		}
	}
	return &slint.BinaryExpression{Op: op, Lhs: lhs, Rhs: rhs}
}

func (r *resolver) call(node *slint.SyntaxNode, lc *slint.LookupContext) slint.Expression {
	diags := r.ctx.Diags
	if len(node.Children) == 0 {
		return slint.Invalid{}
	}
	callee := node.Children[0]
	if callee.Text == "animation-tick" {
		if len(node.Children) != 1 {
			diags.Errorf(node.Location, "animation-tick takes no arguments")
		}
		return slint.AnimationTick{}
	}
	fn := lc.LookupQualified(callee.Text, callee.Location)
	var args []slint.Expression
	for _, child := range node.Children[1:] {
		args = append(args, r.expression(child, lc))
	}
	switch x := fn.(type) {
	case *slint.CallbackReference:
		ft := x.Ty()
		if ft.Kind != slint.TypeCallback {
			return &slint.FunctionCall{Function: x, Args: args}
		}
		if len(args) != len(ft.Args) {
			diags.Errorf(node.Location, "Callback %q expects %d arguments, got %d",
				x.Name, len(ft.Args), len(args))
		}
		for i := range args {
			if i < len(ft.Args) {
				args[i] = r.coerce(args[i], ft.Args[i], node.Location)
			}
		}
		return &slint.FunctionCall{Function: x, Args: args}
	case *slint.BuiltinFunctionReference:
		ft := x.Type
		if len(args) != len(ft.Args) {
			diags.Errorf(node.Location, "%s expects %d arguments, got %d",
				x.Name, len(ft.Args), len(args))
			return slint.Invalid{}
		}
		// numeric builtins are polymorphic over unit types: the first
		// argument fixes the specialization
		if len(args) > 0 && args[0].Ty().IsNumeric() {
			spec := args[0].Ty()
			types := make([]*slint.Type, len(args))
			for i := range types {
				types[i] = spec
				args[i] = r.coerce(args[i], spec, node.Location)
			}
			return &slint.FunctionCall{
				Function: &slint.BuiltinFunctionReference{
					Name: x.Name,
					Type: slint.CallbackType(spec, types...),
				},
				Args: args,
			}
		}
		for i := range args {
			args[i] = r.coerce(args[i], ft.Args[i], node.Location)
		}
		return &slint.FunctionCall{Function: x, Args: args}
	case slint.Invalid:
		return fn
	}
	diags.Errorf(callee.Location, "%q is not callable", callee.Text)
	return slint.Invalid{}
}

// coerce inserts a Cast when the expression's type differs from the
// wanted type but conversion is allowed, and diagnoses everything else.
func (r *resolver) coerce(expr slint.Expression, to *slint.Type, loc slint.Location) slint.Expression {
	from := expr.Ty()
	if to == nil || from == nil {
		return expr
	}
	if from.Kind == slint.TypeInvalid || to.Kind == slint.TypeInvalid {
		return expr
	}
	if typesEqual(from, to) {
		return expr
	}
	// a literal zero converts to any unit-carrying numeric
	if num, ok := expr.(*slint.NumberLiteral); ok && num.Value == 0 && to.IsNumeric() {
		return &slint.NumberLiteral{Value: 0, Type: to}
	}
	if from.CanConvert(to) {
		return &slint.Cast{From: expr, To: to}
	}
	r.ctx.Diags.Errorf(loc, "Cannot convert %s to %s", from, to)
	return slint.Invalid{}
}

func typesEqual(a, b *slint.Type) bool {
	if a == b {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case slint.TypeArray:
		return typesEqual(a.ElementType, b.ElementType)
	case slint.TypeStruct, slint.TypeEnum, slint.TypeComponent, slint.TypeBuiltinItem:
		return a == b
	case slint.TypeCallback:
		if len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !typesEqual(a.Args[i], b.Args[i]) {
				return false
			}
		}
		ra, rb := a.ReturnType, b.ReturnType
		if ra == nil || rb == nil {
			return ra == rb
		}
		return typesEqual(ra, rb)
	}
	return true
}
