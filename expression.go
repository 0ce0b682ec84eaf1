package slint

// Expression is one node of the typed expression tree a binding evaluates.
// Expressions are created by the resolving pass and may be rewritten by
// later passes; they are pure unless explicitly noted.
type Expression interface {
	// Ty is the static type of the value this expression produces.
	Ty() *Type
}

// Invalid is the placeholder for an expression that failed to resolve. A
// diagnostic was already emitted when it was created.
type Invalid struct{}

func (Invalid) Ty() *Type { return InvalidType }

type NumberLiteral struct {
	Value float64
	Type  *Type
}

func (e *NumberLiteral) Ty() *Type { return e.Type }

type StringLiteral struct {
	Value string
}

func (*StringLiteral) Ty() *Type { return StringType }

type BoolLiteral struct {
	Value bool
}

func (*BoolLiteral) Ty() *Type { return BoolType }

// ColorLiteral holds a color as 0xAARRGGBB.
type ColorLiteral struct {
	Value uint32
}

func (*ColorLiteral) Ty() *Type { return ColorType }

type EnumValue struct {
	Enum  *Type
	Value string
}

func (e *EnumValue) Ty() *Type { return e.Enum }

// PropertyReference reads another property. The element pointer stays
// valid across passes; inlining remaps it when subtrees are duplicated.
type PropertyReference struct {
	Element *Element
	Name    string
}

func (e *PropertyReference) Ty() *Type {
	return e.Element.PropertyType(e.Name)
}

// CallbackReference names a callback for invocation or aliasing.
type CallbackReference struct {
	Element *Element
	Name    string
}

func (e *CallbackReference) Ty() *Type {
	return e.Element.PropertyType(e.Name)
}

// ElementReference refers to an element itself (focus targets).
type ElementReference struct {
	Element *Element
}

func (*ElementReference) Ty() *Type { return ElementRefType }

// RepeaterIndexReference reads the index variable of an enclosing
// repeated element.
type RepeaterIndexReference struct {
	Element *Element // the repeated element
}

func (*RepeaterIndexReference) Ty() *Type { return Int32Type }

// RepeaterModelReference reads the model data variable of an enclosing
// repeated element.
type RepeaterModelReference struct {
	Element *Element
	Type    *Type
}

func (e *RepeaterModelReference) Ty() *Type { return e.Type }

// FunctionArgReference reads an argument of the enclosing callback handler.
type FunctionArgReference struct {
	Index int
	Type  *Type
}

func (e *FunctionArgReference) Ty() *Type { return e.Type }

type StructFieldAccess struct {
	Base  Expression
	Field string
}

func (e *StructFieldAccess) Ty() *Type {
	base := e.Base.Ty()
	if base.Kind == TypeStruct {
		if t, ok := base.Fields[e.Field]; ok {
			return t
		}
	}
	return InvalidType
}

// Cast is an implicit conversion inserted by the resolver when CanConvert
// holds between the inner type and To.
type Cast struct {
	From Expression
	To   *Type
}

func (e *Cast) Ty() *Type { return e.To }

type BinaryExpression struct {
	// Op is one of + - * / < > and the digraph codes:
	// '=' for ==, '!' for !=, 'l' for <=, 'g' for >=, '&' for &&, '|' for ||.
	Op  byte
	Lhs Expression
	Rhs Expression
}

func (e *BinaryExpression) Ty() *Type {
	switch e.Op {
	case '=', '!', '<', '>', 'l', 'g', '&', '|':
		return BoolType
	}
	return OperatorResultType(e.Op, e.Lhs.Ty(), e.Rhs.Ty())
}

type UnaryExpression struct {
	Op  byte // '-' or '!'
	Sub Expression
}

func (e *UnaryExpression) Ty() *Type {
	if e.Op == '!' {
		return BoolType
	}
	return e.Sub.Ty()
}

type ConditionalExpression struct {
	Condition Expression
	TrueExpr  Expression
	FalseExpr Expression
}

func (e *ConditionalExpression) Ty() *Type { return e.TrueExpr.Ty() }

// FunctionCall invokes a callback or a builtin function. Invoking a
// non-pure callback is a side effect.
type FunctionCall struct {
	Function Expression // CallbackReference or BuiltinFunctionReference
	Args     []Expression
}

func (e *FunctionCall) Ty() *Type {
	ft := e.Function.Ty()
	if ft.Kind == TypeCallback && ft.ReturnType != nil {
		return ft.ReturnType
	}
	return InvalidType
}

// BuiltinFunctionReference names one of the builtin functions.
type BuiltinFunctionReference struct {
	Name string
	Type *Type
}

func (e *BuiltinFunctionReference) Ty() *Type { return e.Type }

// Assignment writes a property from a callback handler body. Op 0 is plain
// assignment, otherwise the compound operator (+ - * /). Never pure.
type Assignment struct {
	Lhs *PropertyReference
	Op  byte
	Rhs Expression
}

func (*Assignment) Ty() *Type { return VoidType }

type ArrayLiteral struct {
	ElementType *Type
	Values      []Expression
}

func (e *ArrayLiteral) Ty() *Type { return ArrayType(e.ElementType) }

type StructLiteral struct {
	Type   *Type
	Values map[string]Expression
}

func (e *StructLiteral) Ty() *Type { return e.Type }

// CodeBlock is a sequence of statements; its value is the last statement's.
type CodeBlock struct {
	Statements []Expression
}

func (e *CodeBlock) Ty() *Type {
	if n := len(e.Statements); n > 0 {
		return e.Statements[n-1].Ty()
	}
	return VoidType
}

type ReturnStatement struct {
	Value Expression // nil for a bare return
}

func (e *ReturnStatement) Ty() *Type {
	if e.Value == nil {
		return VoidType
	}
	return e.Value.Ty()
}

// EasingCurveLiteral is an easing keyword or cubic-bezier literal.
type EasingCurveLiteral struct {
	Name                 string // "linear", "ease", "ease-in", "ease-out", "ease-in-out", "cubic-bezier"
	X1, Y1, X2, Y2       float64
}

func (*EasingCurveLiteral) Ty() *Type { return EasingType }

// AnimationTick reads the global animation clock; any binding containing
// it re-evaluates whenever the clock advances.
type AnimationTick struct{}

func (AnimationTick) Ty() *Type { return DurationType }

// StateReference reads the hidden current-state property the states
// lowering pass materializes.
type StateReference struct {
	Element *Element
	Name    string
}

func (*StateReference) Ty() *Type { return Int32Type }

// Visit walks e depth-first, calling f for every node. f returning false
// prunes the subtree.
func Visit(e Expression, f func(Expression) bool) {
	if e == nil || !f(e) {
		return
	}
	for _, sub := range Subexpressions(e) {
		Visit(sub, f)
	}
}

// Subexpressions returns the direct children of an expression node.
func Subexpressions(e Expression) []Expression {
	switch x := e.(type) {
	case *StructFieldAccess:
		return []Expression{x.Base}
	case *Cast:
		return []Expression{x.From}
	case *BinaryExpression:
		return []Expression{x.Lhs, x.Rhs}
	case *UnaryExpression:
		return []Expression{x.Sub}
	case *ConditionalExpression:
		return []Expression{x.Condition, x.TrueExpr, x.FalseExpr}
	case *FunctionCall:
		return append([]Expression{x.Function}, x.Args...)
	case *Assignment:
		return []Expression{x.Lhs, x.Rhs}
	case *ArrayLiteral:
		return x.Values
	case *StructLiteral:
		var subs []Expression
		for _, v := range x.Values {
			subs = append(subs, v)
		}
		return subs
	case *CodeBlock:
		return x.Statements
	case *ReturnStatement:
		if x.Value != nil {
			return []Expression{x.Value}
		}
	}
	return nil
}

// CopyExpression deep-copies an expression tree. Element pointers inside
// references are shared; RemapReferences rewrites them after duplication.
func CopyExpression(e Expression) Expression {
	switch x := e.(type) {
	case nil:
		return nil
	case *NumberLiteral:
		c := *x
		return &c
	case *StringLiteral:
		c := *x
		return &c
	case *BoolLiteral:
		c := *x
		return &c
	case *ColorLiteral:
		c := *x
		return &c
	case *EnumValue:
		c := *x
		return &c
	case *PropertyReference:
		c := *x
		return &c
	case *CallbackReference:
		c := *x
		return &c
	case *ElementReference:
		c := *x
		return &c
	case *RepeaterIndexReference:
		c := *x
		return &c
	case *RepeaterModelReference:
		c := *x
		return &c
	case *FunctionArgReference:
		c := *x
		return &c
	case *BuiltinFunctionReference:
		c := *x
		return &c
	case *EasingCurveLiteral:
		c := *x
		return &c
	case *StateReference:
		c := *x
		return &c
	case *StructFieldAccess:
		return &StructFieldAccess{Base: CopyExpression(x.Base), Field: x.Field}
	case *Cast:
		return &Cast{From: CopyExpression(x.From), To: x.To}
	case *BinaryExpression:
		return &BinaryExpression{Op: x.Op, Lhs: CopyExpression(x.Lhs), Rhs: CopyExpression(x.Rhs)}
	case *UnaryExpression:
		return &UnaryExpression{Op: x.Op, Sub: CopyExpression(x.Sub)}
	case *ConditionalExpression:
		return &ConditionalExpression{
			Condition: CopyExpression(x.Condition),
			TrueExpr:  CopyExpression(x.TrueExpr),
			FalseExpr: CopyExpression(x.FalseExpr),
		}
	case *FunctionCall:
		call := &FunctionCall{Function: CopyExpression(x.Function)}
		for _, a := range x.Args {
			call.Args = append(call.Args, CopyExpression(a))
		}
		return call
	case *Assignment:
		a := &Assignment{Op: x.Op, Rhs: CopyExpression(x.Rhs)}
		if lhs, ok := CopyExpression(x.Lhs).(*PropertyReference); ok {
			a.Lhs = lhs
		}
		return a
	case *ArrayLiteral:
		arr := &ArrayLiteral{ElementType: x.ElementType}
		for _, v := range x.Values {
			arr.Values = append(arr.Values, CopyExpression(v))
		}
		return arr
	case *StructLiteral:
		lit := &StructLiteral{Type: x.Type, Values: make(map[string]Expression, len(x.Values))}
		for k, v := range x.Values {
			lit.Values[k] = CopyExpression(v)
		}
		return lit
	case *CodeBlock:
		block := &CodeBlock{}
		for _, s := range x.Statements {
			block.Statements = append(block.Statements, CopyExpression(s))
		}
		return block
	case *ReturnStatement:
		return &ReturnStatement{Value: CopyExpression(x.Value)}
	}
	return e
}

// Transform rewrites an expression bottom-up: every child is replaced by
// f's result. Passes use it for constant folding and reference remapping.
func Transform(e Expression, f func(Expression) Expression) Expression {
	if e == nil {
		return nil
	}
	switch x := e.(type) {
	case *StructFieldAccess:
		x.Base = Transform(x.Base, f)
	case *Cast:
		x.From = Transform(x.From, f)
	case *BinaryExpression:
		x.Lhs = Transform(x.Lhs, f)
		x.Rhs = Transform(x.Rhs, f)
	case *UnaryExpression:
		x.Sub = Transform(x.Sub, f)
	case *ConditionalExpression:
		x.Condition = Transform(x.Condition, f)
		x.TrueExpr = Transform(x.TrueExpr, f)
		x.FalseExpr = Transform(x.FalseExpr, f)
	case *FunctionCall:
		x.Function = Transform(x.Function, f)
		for i := range x.Args {
			x.Args[i] = Transform(x.Args[i], f)
		}
	case *Assignment:
		if lhs, ok := Transform(x.Lhs, f).(*PropertyReference); ok {
			x.Lhs = lhs
		}
		x.Rhs = Transform(x.Rhs, f)
	case *ArrayLiteral:
		for i := range x.Values {
			x.Values[i] = Transform(x.Values[i], f)
		}
	case *StructLiteral:
		for k, v := range x.Values {
			x.Values[k] = Transform(v, f)
		}
	case *CodeBlock:
		for i := range x.Statements {
			x.Statements[i] = Transform(x.Statements[i], f)
		}
	case *ReturnStatement:
		if x.Value != nil {
			x.Value = Transform(x.Value, f)
		}
	}
	return f(e)
}
