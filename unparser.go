package slint

import (
	"fmt"
	"sort"
	"strings"
)

const indentAmount = "    "

// SourceGenerator renders a built document back to source text. The output
// is normalized (canonical indentation, sorted bindings) and meant for
// tooling and debugging, not byte-for-byte round trips.
type SourceGenerator struct {
	Generator
	Doc *Document
}

func NewSourceGenerator(doc *Document) *SourceGenerator {
	gen := &SourceGenerator{}
	gen.Doc = doc
	return gen
}

// Unparse renders the document as source text.
func Unparse(doc *Document) string {
	g := NewSourceGenerator(doc)
	src := g.Generate()
	if g.Err != nil {
		return ""
	}
	return src
}

func (g *SourceGenerator) Generate() string {
	g.Begin()
	for _, st := range g.Doc.Structs {
		g.emitStruct(st)
	}
	for _, c := range g.Doc.Components {
		if c.OptimizedOut {
			continue
		}
		g.emitComponent(c)
	}
	return g.End()
}

func (g *SourceGenerator) emitStruct(t *Type) {
	if g.exported(t) {
		g.Emit("export ")
	}
	g.Emitf("struct %s {\n", t.Name)
	for _, f := range t.FieldOrder {
		g.Emitf("%s%s: %s,\n", indentAmount, f, t.Fields[f])
	}
	g.Emit("}\n\n")
}

func (g *SourceGenerator) emitComponent(c *Component) {
	if c.Exported {
		g.Emit("export ")
	}
	if c.IsGlobal {
		g.Emitf("global %s {\n", c.Name)
		g.emitElementContent(c.Root, indentAmount)
		g.Emit("}\n\n")
		return
	}
	g.Emitf("component %s", c.Name)
	if c.Root.BaseName != "" && c.Root.BaseName != "Empty" {
		g.Emitf(" inherits %s", c.Root.BaseName)
	}
	g.Emit(" {\n")
	g.emitElementContent(c.Root, indentAmount)
	g.Emit("}\n\n")
}

func (g *SourceGenerator) emitElement(e *Element, indent string) {
	g.Emit(indent)
	if e.Repeated != nil {
		if e.Repeated.IsConditional {
			g.Emitf("if %s : ", g.expr(e.Repeated.ModelSyntax))
		} else if e.Repeated.IndexName != "" {
			g.Emitf("for %s[%s] in %s : ", e.Repeated.DataName, e.Repeated.IndexName, g.expr(e.Repeated.ModelSyntax))
		} else {
			g.Emitf("for %s in %s : ", e.Repeated.DataName, g.expr(e.Repeated.ModelSyntax))
		}
	} else if e.ID != "" {
		g.Emitf("%s := ", e.ID)
	}
	g.Emitf("%s {\n", e.BaseName)
	g.emitElementContent(e, indent+indentAmount)
	g.Emit(indent + "}\n")
}

func (g *SourceGenerator) emitElementContent(e *Element, indent string) {
	for _, name := range sortedKeys(e.PropertyDeclarations) {
		decl := e.PropertyDeclarations[name]
		b := e.Bindings[name]
		if decl.Type != nil && decl.Type.Kind == TypeCallback {
			g.emitCallbackDeclaration(name, decl, b, indent)
			continue
		}
		g.Emitf("%sproperty <%s> %s", indent, declTypeName(decl.Type), name)
		g.emitBindingTail(b)
	}
	for _, name := range sortedKeys(e.Bindings) {
		if _, declared := e.PropertyDeclarations[name]; declared {
			continue
		}
		b := e.Bindings[name]
		g.Emitf("%s%s", indent, name)
		g.emitBindingTail(b)
	}
	for _, name := range sortedKeys(e.CallbackHandlers) {
		h := e.CallbackHandlers[name]
		g.Emitf("%s%s", indent, name)
		if len(h.ArgNames) > 0 {
			g.Emitf("(%s)", strings.Join(h.ArgNames, ", "))
		}
		g.Emitf(" => %s\n", g.expr(h.ExpressionSyntax))
	}
	for _, name := range sortedKeys(e.PropertyAnimations) {
		a := e.PropertyAnimations[name]
		g.Emitf("%sanimate %s { duration: %dms; }\n", indent, name, a.DurationMs)
	}
	g.emitStates(e, indent)
	for _, child := range e.Children {
		g.emitElement(child, indent)
	}
}

func (g *SourceGenerator) emitCallbackDeclaration(name string, decl *PropertyDeclaration, b *Binding, indent string) {
	g.Emit(indent)
	if decl.Pure {
		g.Emit("pure ")
	}
	g.Emitf("callback %s", name)
	t := decl.Type
	if len(t.Args) > 0 {
		var args []string
		for _, a := range t.Args {
			args = append(args, a.String())
		}
		g.Emitf("(%s)", strings.Join(args, ", "))
	}
	if t.ReturnType != nil && t.ReturnType.Kind != TypeVoid {
		g.Emitf(" -> %s", t.ReturnType)
	}
	if b != nil && b.TwoWaySyntax != nil {
		g.Emitf(" <=> %s", b.TwoWaySyntax.Text)
	}
	g.Emit(";\n")
}

func (g *SourceGenerator) emitBindingTail(b *Binding) {
	switch {
	case b == nil:
		g.Emit(";\n")
	case b.TwoWaySyntax != nil:
		g.Emitf(" <=> %s;\n", b.TwoWaySyntax.Text)
	case b.ExpressionSyntax != nil:
		g.Emitf(": %s;\n", g.expr(b.ExpressionSyntax))
	default:
		g.Emit(";\n")
	}
}

func (g *SourceGenerator) emitStates(e *Element, indent string) {
	if len(e.States) == 0 {
		return
	}
	g.Emitf("%sstates [\n", indent)
	inner := indent + indentAmount
	for _, st := range e.States {
		g.Emitf("%s%s", inner, st.Name)
		if st.Condition != nil {
			g.Emitf(" when %s", g.expr(st.Condition))
		}
		g.Emit(" {\n")
		for _, ch := range st.Changes {
			path := ch.Property
			if ch.PathSyntax != nil {
				path = ch.PathSyntax.Text
			}
			g.Emitf("%s%s%s: %s;\n", inner, indentAmount, path, g.expr(ch.Value))
		}
		g.Emitf("%s}\n", inner)
	}
	g.Emitf("%s]\n", indent)
}

// expr renders an expression syntax subtree back to source.
func (g *SourceGenerator) expr(n *SyntaxNode) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case SyntaxNumberLiteral, SyntaxColorLiteral, SyntaxBoolLiteral,
		SyntaxIdentifier, SyntaxQualifiedName:
		return n.Text
	case SyntaxStringLiteral:
		return fmt.Sprintf("%q", n.Text)
	case SyntaxParenthesized:
		return "(" + g.expr(firstChild(n)) + ")"
	case SyntaxUnaryExpression:
		return n.Text + g.expr(firstChild(n))
	case SyntaxBinaryExpression:
		if len(n.Children) == 2 {
			return g.expr(n.Children[0]) + " " + n.Text + " " + g.expr(n.Children[1])
		}
	case SyntaxConditionalExpression:
		if len(n.Children) == 3 {
			return fmt.Sprintf("%s ? %s : %s",
				g.expr(n.Children[0]), g.expr(n.Children[1]), g.expr(n.Children[2]))
		}
	case SyntaxFunctionCall:
		if len(n.Children) > 0 {
			var args []string
			for _, a := range n.Children[1:] {
				args = append(args, g.expr(a))
			}
			return g.expr(n.Children[0]) + "(" + strings.Join(args, ", ") + ")"
		}
	case SyntaxMemberAccess:
		if len(n.Children) == 1 {
			return g.expr(n.Children[0]) + "." + n.Text
		}
	case SyntaxArrayLiteral:
		var values []string
		for _, v := range n.Children {
			values = append(values, g.expr(v))
		}
		return "[" + strings.Join(values, ", ") + "]"
	case SyntaxObjectLiteral:
		var members []string
		for _, m := range n.ChildrenOfKind(SyntaxObjectMember) {
			members = append(members, m.Text+": "+g.expr(firstChild(m)))
		}
		return "{ " + strings.Join(members, ", ") + " }"
	case SyntaxCodeBlock:
		var stmts []string
		for _, s := range n.Children {
			stmts = append(stmts, g.expr(s)+";")
		}
		return "{ " + strings.Join(stmts, " ") + " }"
	case SyntaxReturnStatement:
		if v := firstChild(n); v != nil {
			return "return " + g.expr(v)
		}
		return "return"
	case SyntaxSelfAssignment:
		if len(n.Children) == 2 {
			return g.expr(n.Children[0]) + " " + n.Text + " " + g.expr(n.Children[1])
		}
	}
	return "/* ? */"
}

func firstChild(n *SyntaxNode) *SyntaxNode {
	if len(n.Children) > 0 {
		return n.Children[0]
	}
	return nil
}

func declTypeName(t *Type) string {
	if t == nil || t.Kind == TypeInferredProperty || t.Kind == TypeInferredCallback {
		return "auto"
	}
	return t.String()
}

func (g *SourceGenerator) exported(t *Type) bool {
	for _, name := range g.Doc.ExportOrder {
		if g.Doc.Exports[name] == t {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
