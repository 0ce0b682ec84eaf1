package passes

import (
	"sort"

	"github.com/slint-go/slint"
)

// The hidden property the states lowering materializes. 0 means no state
// is active, state n in declaration order is n+1.
const currentStateProperty = "current-state"

// lowerStates replaces declarative states with a hidden current-state
// property and conditional bindings. Each changed property's binding
// becomes a chain of "current-state == n" conditionals falling back to
// the original binding (or the type's default). Transition animations
// attach to the rewritten bindings.
func lowerStates(ctx *Context) {
	for _, c := range allComponents(ctx.Doc) {
		c.VisitElements(func(e *slint.Element) {
			if len(e.States) == 0 {
				return
			}
			lowerElementStates(ctx, e)
			e.States = nil
			e.Transitions = nil
		})
	}
}

func lowerElementStates(ctx *Context, e *slint.Element) {
	e.PropertyDeclarations[currentStateProperty] = &slint.PropertyDeclaration{
		Name:     currentStateProperty,
		Type:     slint.Int32Type,
		Location: e.Location,
	}
	stateRef := func() slint.Expression {
		return &slint.StateReference{Element: e, Name: currentStateProperty}
	}

	// current-state: first state whose condition holds, else 0
	var stateExpr slint.Expression = &slint.NumberLiteral{Value: 0, Type: slint.Int32Type}
	for i := len(e.States) - 1; i >= 0; i-- {
		st := e.States[i]
		if st.ConditionExpr == nil {
			// a state without a condition is only entered imperatively,
			// which the hidden property does not model
			continue
		}
		stateExpr = &slint.ConditionalExpression{
			Condition: st.ConditionExpr,
			TrueExpr:  &slint.NumberLiteral{Value: float64(i + 1), Type: slint.Int32Type},
			FalseExpr: stateExpr,
		}
	}
	e.Bindings[currentStateProperty] = &slint.Binding{
		Expression: stateExpr,
		Location:   e.Location,
	}

	// group the changed properties, keeping state order per property
	type target struct {
		element  *slint.Element
		property string
	}
	changes := map[target][]int{}
	values := map[target]map[int]slint.Expression{}
	var order []target
	for i, st := range e.States {
		for _, ch := range st.Changes {
			if ch.Element == nil || ch.ValueExpr == nil {
				continue
			}
			tg := target{ch.Element, ch.Property}
			if _, seen := changes[tg]; !seen {
				order = append(order, tg)
				values[tg] = map[int]slint.Expression{}
			}
			changes[tg] = append(changes[tg], i)
			values[tg][i] = ch.ValueExpr
		}
	}

	for _, tg := range order {
		base := baseExpression(tg.element, tg.property)
		expr := base
		states := changes[tg]
		for j := len(states) - 1; j >= 0; j-- {
			i := states[j]
			expr = &slint.ConditionalExpression{
				Condition: &slint.BinaryExpression{
					Op:  '=',
					Lhs: stateRef(),
					Rhs: &slint.NumberLiteral{Value: float64(i + 1), Type: slint.Int32Type},
				},
				TrueExpr:  values[tg][i],
				FalseExpr: expr,
			}
		}
		b := tg.element.Bindings[tg.property]
		if b == nil {
			b = &slint.Binding{Location: e.Location}
			tg.element.Bindings[tg.property] = b
		}
		b.Expression = expr
		if anim := transitionAnimation(e, tg.element, tg.property); anim != nil {
			b.Animation = anim
		}
	}
}

// baseExpression is what a state-changed property evaluates to when no
// state overrides it: the original binding, or the type's default value.
func baseExpression(e *slint.Element, name string) slint.Expression {
	if b := e.Bindings[name]; b != nil && b.Expression != nil {
		return b.Expression
	}
	return defaultValue(e.PropertyType(name))
}

func defaultValue(t *slint.Type) slint.Expression {
	switch t.Kind {
	case slint.TypeString:
		return &slint.StringLiteral{}
	case slint.TypeBool:
		return &slint.BoolLiteral{}
	case slint.TypeColor:
		return &slint.ColorLiteral{}
	case slint.TypeStruct:
		return &slint.StructLiteral{Type: t, Values: map[string]slint.Expression{}}
	case slint.TypeArray:
		return &slint.ArrayLiteral{ElementType: t.ElementType}
	}
	if t.IsNumeric() {
		return &slint.NumberLiteral{Value: 0, Type: t}
	}
	return slint.Invalid{}
}

// transitionAnimation picks the animation for a changed property from the
// element's transitions. With both an `in` and an `out` transition naming
// the property, the `in` one wins deterministically.
func transitionAnimation(stateHolder, e *slint.Element, name string) *slint.PropertyAnimation {
	var candidates []*slint.Transition
	for _, tr := range stateHolder.Transitions {
		for _, ta := range tr.Animations {
			if (ta.Element == e || ta.Element == nil) && ta.Property == name {
				candidates = append(candidates, tr)
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].In && !candidates[j].In
	})
	for _, ta := range candidates[0].Animations {
		if (ta.Element == e || ta.Element == nil) && ta.Property == name {
			return ta.Animation
		}
	}
	return nil
}
