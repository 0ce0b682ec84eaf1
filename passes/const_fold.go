package passes

import (
	"math"
	"strconv"

	"github.com/slint-go/slint"
)

// foldConstants evaluates constant subexpressions at compile time. The
// rewrite is a fixed point: literals fold to literals, nothing else
// changes, so a second run is a no-op.
func foldConstants(ctx *Context) {
	for _, c := range allComponents(ctx.Doc) {
		transformAllExpressions(c, fold)
	}
}

// transformAllExpressions rewrites every expression of the component
// bottom-up with f.
func transformAllExpressions(c *slint.Component, f func(slint.Expression) slint.Expression) {
	c.VisitElements(func(e *slint.Element) {
		for _, name := range sortedBindingNames(e) {
			if b := e.Bindings[name]; b.Expression != nil {
				b.Expression = slint.Transform(b.Expression, f)
			}
		}
		for _, name := range sortedHandlerNames(e) {
			if h := e.CallbackHandlers[name]; h.Expression != nil {
				h.Expression = slint.Transform(h.Expression, f)
			}
		}
		if e.Repeated != nil && e.Repeated.Model != nil {
			e.Repeated.Model = slint.Transform(e.Repeated.Model, f)
		}
	})
}

func fold(expr slint.Expression) slint.Expression {
	switch x := expr.(type) {
	case *slint.UnaryExpression:
		switch sub := x.Sub.(type) {
		case *slint.NumberLiteral:
			if x.Op == '-' {
				return &slint.NumberLiteral{Value: -sub.Value, Type: sub.Type}
			}
		case *slint.BoolLiteral:
			if x.Op == '!' {
				return &slint.BoolLiteral{Value: !sub.Value}
			}
		}
	case *slint.BinaryExpression:
		return foldBinary(x)
	case *slint.ConditionalExpression:
		if cond, ok := x.Condition.(*slint.BoolLiteral); ok {
			if cond.Value {
				return x.TrueExpr
			}
			return x.FalseExpr
		}
	case *slint.Cast:
		return foldCast(x)
	case *slint.FunctionCall:
		return foldCall(x)
	}
	return expr
}

func foldBinary(x *slint.BinaryExpression) slint.Expression {
	if lb, ok := x.Lhs.(*slint.BoolLiteral); ok {
		if rb, ok := x.Rhs.(*slint.BoolLiteral); ok {
			switch x.Op {
			case '&':
				return &slint.BoolLiteral{Value: lb.Value && rb.Value}
			case '|':
				return &slint.BoolLiteral{Value: lb.Value || rb.Value}
			case '=':
				return &slint.BoolLiteral{Value: lb.Value == rb.Value}
			case '!':
				return &slint.BoolLiteral{Value: lb.Value != rb.Value}
			}
		}
		// short circuits with one known side
		switch x.Op {
		case '&':
			if !lb.Value {
				return &slint.BoolLiteral{Value: false}
			}
			return x.Rhs
		case '|':
			if lb.Value {
				return &slint.BoolLiteral{Value: true}
			}
			return x.Rhs
		}
	}
	if ls, ok := x.Lhs.(*slint.StringLiteral); ok {
		if rs, ok := x.Rhs.(*slint.StringLiteral); ok {
			switch x.Op {
			case '+':
				return &slint.StringLiteral{Value: ls.Value + rs.Value}
			case '=':
				return &slint.BoolLiteral{Value: ls.Value == rs.Value}
			case '!':
				return &slint.BoolLiteral{Value: ls.Value != rs.Value}
			}
		}
	}
	ln, ok := x.Lhs.(*slint.NumberLiteral)
	if !ok {
		return x
	}
	rn, ok := x.Rhs.(*slint.NumberLiteral)
	if !ok {
		return x
	}
	a, b := ln.Value, rn.Value
	switch x.Op {
	case '+':
		return &slint.NumberLiteral{Value: a + b, Type: x.Ty()}
	case '-':
		return &slint.NumberLiteral{Value: a - b, Type: x.Ty()}
	case '*':
		return &slint.NumberLiteral{Value: a * b, Type: x.Ty()}
	case '/':
		if b == 0 {
			return x
		}
		return &slint.NumberLiteral{Value: a / b, Type: x.Ty()}
	case '<':
		return &slint.BoolLiteral{Value: a < b}
	case '>':
		return &slint.BoolLiteral{Value: a > b}
	case 'l':
		return &slint.BoolLiteral{Value: a <= b}
	case 'g':
		return &slint.BoolLiteral{Value: a >= b}
	case '=':
		return &slint.BoolLiteral{Value: a == b}
	case '!':
		return &slint.BoolLiteral{Value: a != b}
	}
	return x
}

func foldCast(x *slint.Cast) slint.Expression {
	num, ok := x.From.(*slint.NumberLiteral)
	if !ok {
		return x
	}
	from, to := num.Type, x.To
	switch {
	case to.Kind == slint.TypeString:
		return &slint.StringLiteral{Value: strconv.FormatFloat(num.Value, 'g', -1, 64)}
	case !to.IsNumeric():
		return x
	case from.Kind == slint.TypePercent && to.Kind != slint.TypePercent:
		return &slint.NumberLiteral{Value: num.Value / 100, Type: to}
	case to.Kind == slint.TypePercent && from.Kind != slint.TypePercent:
		return &slint.NumberLiteral{Value: num.Value * 100, Type: to}
	case to.Kind == slint.TypeInt32:
		return &slint.NumberLiteral{Value: math.Trunc(num.Value), Type: to}
	}
	return &slint.NumberLiteral{Value: num.Value, Type: to}
}

func foldCall(x *slint.FunctionCall) slint.Expression {
	fn, ok := x.Function.(*slint.BuiltinFunctionReference)
	if !ok {
		return x
	}
	args := make([]float64, len(x.Args))
	var resultType *slint.Type
	for i, a := range x.Args {
		num, ok := a.(*slint.NumberLiteral)
		if !ok {
			return x
		}
		args[i] = num.Value
		if i == 0 {
			resultType = num.Type
		}
	}
	var v float64
	switch {
	case fn.Name == "min" && len(args) == 2:
		v = math.Min(args[0], args[1])
	case fn.Name == "max" && len(args) == 2:
		v = math.Max(args[0], args[1])
	case fn.Name == "clamp" && len(args) == 3:
		v = math.Min(math.Max(args[0], args[1]), args[2])
	case fn.Name == "abs" && len(args) == 1:
		v = math.Abs(args[0])
	case fn.Name == "round" && len(args) == 1:
		v = math.Round(args[0])
	case fn.Name == "floor" && len(args) == 1:
		v = math.Floor(args[0])
	case fn.Name == "ceil" && len(args) == 1:
		v = math.Ceil(args[0])
	case fn.Name == "mod" && len(args) == 2 && args[1] != 0:
		v = math.Mod(args[0], args[1])
	default:
		return x
	}
	return &slint.NumberLiteral{Value: v, Type: resultType}
}
