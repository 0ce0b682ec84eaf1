package parse

import (
	"strings"
	"testing"

	"github.com/slint-go/slint"
)

func parseTest(t *testing.T, src string) (*slint.SyntaxNode, *slint.DiagnosticList) {
	t.Helper()
	diags := &slint.DiagnosticList{}
	tree := String(src, "test.slint", diags)
	if tree == nil {
		t.Fatal("String() returned nil tree")
	}
	return tree, diags
}

func parseClean(t *testing.T, src string) *slint.SyntaxNode {
	t.Helper()
	tree, diags := parseTest(t, src)
	if diags.HasError() {
		t.Fatalf("unexpected diagnostics:\n%s", diags)
	}
	return tree
}

func TestParseComponent(t *testing.T) {
	tree := parseClean(t, `
component App inherits Window {
    width: 100px;
    Rectangle {
        background: #ff0000;
    }
}
`)
	comp := tree.Child(slint.SyntaxComponent)
	if comp == nil {
		t.Fatal("no component node")
	}
	if comp.Text != "App" {
		t.Errorf("component name: %q", comp.Text)
	}
	body := comp.Child(slint.SyntaxElement)
	if body == nil || body.Text != "Window" {
		t.Fatalf("expected Window base, got %v", body)
	}
	if bind := body.Child(slint.SyntaxBinding); bind == nil || bind.Text != "width" {
		t.Errorf("expected width binding, got %v", bind)
	}
	child := body.Child(slint.SyntaxElement)
	if child == nil || child.Text != "Rectangle" {
		t.Fatalf("expected Rectangle child, got %v", child)
	}
	if bg := child.Child(slint.SyntaxBinding); bg == nil || bg.Text != "background" {
		t.Errorf("expected background binding, got %v", bg)
	}
}

func TestParseErrorPinned(t *testing.T) {
	src := "export component App {\n           garbage }\n"
	_, diags := parseTest(t, src)
	if len(diags.Diagnostics) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d:\n%s", len(diags.Diagnostics), diags)
	}
	d := diags.Diagnostics[0]
	if d.Level != slint.SeverityError {
		t.Errorf("level: %v", d.Level)
	}
	if d.Message != "Parse error" {
		t.Errorf("message: %q", d.Message)
	}
	if d.Line != 2 || d.Column != 12 {
		t.Errorf("position: %d:%d", d.Line, d.Column)
	}
}

func TestParseErrorRecovery(t *testing.T) {
	tree, diags := parseTest(t, `
component A {
    width: 1px
    @@@
    height: 2px;
}
component B {
}
`)
	if !diags.HasError() {
		t.Fatal("expected at least one diagnostic")
	}
	comps := tree.ChildrenOfKind(slint.SyntaxComponent)
	if len(comps) != 2 {
		t.Fatalf("recovery lost a component, got %d", len(comps))
	}
	if comps[1].Text != "B" {
		t.Errorf("second component: %q", comps[1].Text)
	}
}

func TestParsePropertyDeclarations(t *testing.T) {
	tree := parseClean(t, `
component C {
    property <int> count: 3;
    property <[string]> names;
    property total <=> other.count;
    other := Rectangle { property <int> count; }
}
`)
	body := tree.Child(slint.SyntaxComponent).Child(slint.SyntaxElement)
	decls := body.ChildrenOfKind(slint.SyntaxPropertyDeclaration)
	if len(decls) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(decls))
	}
	if tn := decls[0].Child(slint.SyntaxTypeName); tn == nil || tn.Text != "int" {
		t.Errorf("count type: %v", tn)
	}
	if bind := decls[0].Child(slint.SyntaxBinding); bind == nil {
		t.Error("count has no default binding")
	}
	if tn := decls[1].Child(slint.SyntaxTypeName); tn == nil || tn.Text != "[string]" {
		t.Errorf("names type: %v", tn)
	}
	if decls[2].Child(slint.SyntaxTypeName) != nil {
		t.Error("two-way alias should have no type name")
	}
	tw := decls[2].Child(slint.SyntaxTwoWayBinding)
	if tw == nil {
		t.Fatal("missing two-way binding")
	}
	if qn := tw.Child(slint.SyntaxQualifiedName); qn == nil || qn.Text != "other.count" {
		t.Errorf("two-way target: %v", qn)
	}
}

func TestParseCallbacks(t *testing.T) {
	tree := parseClean(t, `
component C {
    callback activated(int, string) -> bool;
    pure callback score() -> int;
    callback forwarded <=> inner.activated;
    activated(idx, name) => { root.count = idx; }
}
`)
	body := tree.Child(slint.SyntaxComponent).Child(slint.SyntaxElement)
	decls := body.ChildrenOfKind(slint.SyntaxCallbackDeclaration)
	if len(decls) != 3 {
		t.Fatalf("expected 3 callback declarations, got %d", len(decls))
	}
	if args := decls[0].ChildrenOfKind(slint.SyntaxTypeName); len(args) != 2 {
		t.Errorf("activated args: %d", len(args))
	}
	if rt := decls[0].Child(slint.SyntaxReturnType); rt == nil || rt.Text != "bool" {
		t.Errorf("activated return type: %v", rt)
	}
	if m := decls[1].Child(slint.SyntaxModifier); m == nil || m.Text != "pure" {
		t.Error("score is not marked pure")
	}
	if decls[2].Child(slint.SyntaxTwoWayBinding) == nil {
		t.Error("forwarded has no two-way binding")
	}
	conn := body.Child(slint.SyntaxCallbackConnection)
	if conn == nil || conn.Text != "activated" {
		t.Fatalf("missing callback connection, got %v", conn)
	}
	mods := conn.ChildrenOfKind(slint.SyntaxModifier)
	if len(mods) != 2 || mods[0].Text != "idx" || mods[1].Text != "name" {
		t.Errorf("handler arg names: %v", mods)
	}
	if conn.Child(slint.SyntaxCodeBlock) == nil {
		t.Error("handler body is not a code block")
	}
}

func TestParseRepeatedAndConditional(t *testing.T) {
	tree := parseClean(t, `
component C {
    for item[i] in root.model : Rectangle { x: i * 10px; }
    if root.visible : Text { text: "hi"; }
}
`)
	body := tree.Child(slint.SyntaxComponent).Child(slint.SyntaxElement)
	rep := body.Child(slint.SyntaxRepeatedElement)
	if rep == nil {
		t.Fatal("no repeated element")
	}
	if rep.Text != "item" {
		t.Errorf("data name: %q", rep.Text)
	}
	if idx := rep.Child(slint.SyntaxModifier); idx == nil || idx.Text != "i" {
		t.Errorf("index name: %v", idx)
	}
	if rep.Child(slint.SyntaxQualifiedName) == nil {
		t.Error("repeated element has no model expression")
	}
	if rep.Child(slint.SyntaxElement) == nil {
		t.Error("repeated element has no inner element")
	}
	cond := body.Child(slint.SyntaxConditionalElement)
	if cond == nil {
		t.Fatal("no conditional element")
	}
	if cond.Child(slint.SyntaxElement) == nil {
		t.Error("conditional element has no inner element")
	}
}

func TestParseStatesAndTransitions(t *testing.T) {
	tree := parseClean(t, `
component C {
    states [
        pressed when area.pressed : {
            rect.background: #00ff00;
        }
        idle : {
            rect.background: #cccccc;
        }
    ]
    transitions [
        in pressed : {
            animate background { duration: 100ms; }
        }
        out pressed : {
            animate background { duration: 300ms; easing: ease-out; }
        }
    ]
}
`)
	body := tree.Child(slint.SyntaxComponent).Child(slint.SyntaxElement)
	states := body.Child(slint.SyntaxStates)
	if states == nil {
		t.Fatal("no states block")
	}
	sts := states.ChildrenOfKind(slint.SyntaxState)
	if len(sts) != 2 || sts[0].Text != "pressed" || sts[1].Text != "idle" {
		t.Fatalf("states: %v", sts)
	}
	if sts[0].Child(slint.SyntaxQualifiedName) == nil {
		t.Error("pressed has no when condition")
	}
	if chg := sts[0].Child(slint.SyntaxStatePropertyChange); chg == nil {
		t.Error("pressed has no property change")
	} else if qn := chg.Child(slint.SyntaxQualifiedName); qn == nil || qn.Text != "rect.background" {
		t.Errorf("change path: %v", qn)
	}
	trs := body.Child(slint.SyntaxTransitions)
	if trs == nil {
		t.Fatal("no transitions block")
	}
	all := trs.ChildrenOfKind(slint.SyntaxTransition)
	if len(all) != 2 {
		t.Fatalf("transitions: %d", len(all))
	}
	if m := all[0].Child(slint.SyntaxModifier); m == nil || m.Text != "in" {
		t.Errorf("first transition direction: %v", m)
	}
	if m := all[1].Child(slint.SyntaxModifier); m == nil || m.Text != "out" {
		t.Errorf("second transition direction: %v", m)
	}
	if all[0].Child(slint.SyntaxPropertyAnimation) == nil {
		t.Error("transition has no animation")
	}
}

func TestParseAnimateMultipleProperties(t *testing.T) {
	tree := parseClean(t, `
component C {
    animate x, y { duration: 250ms; delay: 50ms; loop-count: 2; }
}
`)
	body := tree.Child(slint.SyntaxComponent).Child(slint.SyntaxElement)
	anim := body.Child(slint.SyntaxPropertyAnimation)
	if anim == nil {
		t.Fatal("no animation node")
	}
	if anim.Text != "x,y" {
		t.Errorf("animated properties: %q", anim.Text)
	}
	if binds := anim.ChildrenOfKind(slint.SyntaxBinding); len(binds) != 3 {
		t.Errorf("animation bindings: %d", len(binds))
	}
}

func TestParseImportsAndExports(t *testing.T) {
	tree := parseClean(t, `
import { Button, Slider as Fader } from "widgets.slint";
export { Helper, Helper as Aux }
export component App { }
export struct Point { x: length, y: length }
component Helper { }
`)
	imp := tree.Child(slint.SyntaxImport)
	if imp == nil {
		t.Fatal("no import node")
	}
	if imp.Text != "widgets.slint" {
		t.Errorf("import path: %q", imp.Text)
	}
	idents := imp.ChildrenOfKind(slint.SyntaxImportIdentifier)
	if len(idents) != 2 {
		t.Fatalf("import identifiers: %d", len(idents))
	}
	if alias := idents[1].Child(slint.SyntaxIdentifier); alias == nil || alias.Text != "Fader" {
		t.Errorf("import alias: %v", alias)
	}
	lists := tree.ChildrenOfKind(slint.SyntaxExportsList)
	if len(lists) != 3 {
		t.Fatalf("export lists: %d", len(lists))
	}
	specs := lists[0].ChildrenOfKind(slint.SyntaxExportSpecifier)
	if len(specs) != 2 {
		t.Fatalf("export specifiers: %d", len(specs))
	}
	if alias := specs[1].Child(slint.SyntaxIdentifier); alias == nil || alias.Text != "Aux" {
		t.Errorf("export alias: %v", alias)
	}
	st := tree.Child(slint.SyntaxStructDecl)
	if st == nil || st.Text != "Point" {
		t.Fatalf("struct: %v", st)
	}
	if fields := st.ChildrenOfKind(slint.SyntaxStructField); len(fields) != 2 {
		t.Errorf("struct fields: %d", len(fields))
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	tree := parseClean(t, `
component C {
    property <bool> ok: 1 + 2 * 3 == 7 && !flag || a < b;
}
`)
	body := tree.Child(slint.SyntaxComponent).Child(slint.SyntaxElement)
	bind := body.Child(slint.SyntaxPropertyDeclaration).Child(slint.SyntaxBinding)
	root := bind.Children[0]
	if root.Kind != slint.SyntaxBinaryExpression || root.Text != "||" {
		t.Fatalf("root operator: %v %q", root.Kind, root.Text)
	}
	left := root.Children[0]
	if left.Kind != slint.SyntaxBinaryExpression || left.Text != "&&" {
		t.Fatalf("left of ||: %q", left.Text)
	}
	eq := left.Children[0]
	if eq.Kind != slint.SyntaxBinaryExpression || eq.Text != "==" {
		t.Fatalf("left of &&: %q", eq.Text)
	}
	sum := eq.Children[0]
	if sum.Text != "+" {
		t.Fatalf("left of ==: %q", sum.Text)
	}
	if prod := sum.Children[1]; prod.Text != "*" {
		t.Errorf("right of +: %q", prod.Text)
	}
}

func TestParseConditionalExpression(t *testing.T) {
	tree := parseClean(t, `
component C {
    property <length> w: cond ? 10px : 20px;
}
`)
	body := tree.Child(slint.SyntaxComponent).Child(slint.SyntaxElement)
	bind := body.Child(slint.SyntaxPropertyDeclaration).Child(slint.SyntaxBinding)
	cond := bind.Children[0]
	if cond.Kind != slint.SyntaxConditionalExpression {
		t.Fatalf("kind: %v", cond.Kind)
	}
	if len(cond.Children) != 3 {
		t.Fatalf("children: %d", len(cond.Children))
	}
}

func TestParseLiterals(t *testing.T) {
	tree := parseClean(t, `
component C {
    property <[int]> xs: [1, 2, 3];
    property <color> c: #12345678;
    property <string> s: "a\nb";
    property <Point> p: { x: 1px, y: 2px };
}
`)
	body := tree.Child(slint.SyntaxComponent).Child(slint.SyntaxElement)
	decls := body.ChildrenOfKind(slint.SyntaxPropertyDeclaration)
	if arr := decls[0].Child(slint.SyntaxBinding).Children[0]; arr.Kind != slint.SyntaxArrayLiteral || len(arr.Children) != 3 {
		t.Errorf("array literal: %v", arr)
	}
	if col := decls[1].Child(slint.SyntaxBinding).Children[0]; col.Kind != slint.SyntaxColorLiteral || col.Text != "#12345678" {
		t.Errorf("color literal: %v", col)
	}
	if str := decls[2].Child(slint.SyntaxBinding).Children[0]; str.Kind != slint.SyntaxStringLiteral || str.Text != "a\nb" {
		t.Errorf("string literal: %q", str.Text)
	}
	obj := decls[3].Child(slint.SyntaxBinding).Children[0]
	if obj.Kind != slint.SyntaxObjectLiteral {
		t.Fatalf("object literal kind: %v", obj.Kind)
	}
	members := obj.ChildrenOfKind(slint.SyntaxObjectMember)
	if len(members) != 2 || members[0].Text != "x" || members[1].Text != "y" {
		t.Errorf("object members: %v", members)
	}
}

func TestParseSelfAssignmentStatements(t *testing.T) {
	tree := parseClean(t, `
component C {
    clicked => {
        root.count += 1;
        root.label = "done";
        return root.count;
    }
}
`)
	body := tree.Child(slint.SyntaxComponent).Child(slint.SyntaxElement)
	block := body.Child(slint.SyntaxCallbackConnection).Child(slint.SyntaxCodeBlock)
	if block == nil {
		t.Fatal("no code block")
	}
	if len(block.Children) != 3 {
		t.Fatalf("statements: %d", len(block.Children))
	}
	if sa := block.Children[0]; sa.Kind != slint.SyntaxSelfAssignment || sa.Text != "+=" {
		t.Errorf("first statement: %v %q", sa.Kind, sa.Text)
	}
	if sa := block.Children[1]; sa.Kind != slint.SyntaxSelfAssignment || sa.Text != "=" {
		t.Errorf("second statement: %v %q", sa.Kind, sa.Text)
	}
	if ret := block.Children[2]; ret.Kind != slint.SyntaxReturnStatement {
		t.Errorf("third statement: %v", ret.Kind)
	}
}

func TestParseDashedIdentifiers(t *testing.T) {
	tree := parseClean(t, `
component C {
    property <length> border-width: 2px;
    width: root.border-width - 1px;
}
`)
	body := tree.Child(slint.SyntaxComponent).Child(slint.SyntaxElement)
	decl := body.Child(slint.SyntaxPropertyDeclaration)
	if decl.Text != "border-width" {
		t.Errorf("declaration name: %q", decl.Text)
	}
	bind := body.Child(slint.SyntaxBinding)
	expr := bind.Children[0]
	if expr.Kind != slint.SyntaxBinaryExpression || expr.Text != "-" {
		t.Fatalf("expected subtraction, got %v %q", expr.Kind, expr.Text)
	}
	if qn := expr.Children[0]; qn.Text != "root.border-width" {
		t.Errorf("lhs: %q", qn.Text)
	}
}

func TestParseGlobal(t *testing.T) {
	tree := parseClean(t, `
export global Theme {
    property <color> accent: #0077ff;
    callback changed();
}
`)
	g := tree.Child(slint.SyntaxGlobal)
	if g == nil || g.Text != "Theme" {
		t.Fatalf("global: %v", g)
	}
	body := g.Child(slint.SyntaxElement)
	if body == nil || body.Text != "" {
		t.Fatalf("global body: %v", body)
	}
	if body.Child(slint.SyntaxPropertyDeclaration) == nil {
		t.Error("global has no property declaration")
	}
	list := tree.Child(slint.SyntaxExportsList)
	if list == nil || list.Child(slint.SyntaxExportSpecifier).Text != "Theme" {
		t.Error("global is not exported")
	}
}

func TestScannerUnits(t *testing.T) {
	s := NewScanner("100px 12.5% 300ms 1.5s 45deg 0.5turn 2phx")
	want := []string{"100px", "12.5%", "300ms", "1.5s", "45deg", "0.5turn", "2phx"}
	for _, w := range want {
		tok := s.Scan()
		if tok.Type != NUMBER || tok.Text != w {
			t.Errorf("expected NUMBER %q, got %v", w, tok)
		}
	}
	if tok := s.Scan(); tok.Type != EOF {
		t.Errorf("trailing token: %v", tok)
	}
}

func TestScannerOperators(t *testing.T) {
	src := "<=> := => -> <= >= == != && || += -= *= /= < >"
	want := []TokenType{DOUBLEARROW, COLONEQ, FATARROW, ARROW, LTEQ, GTEQ,
		EQ, NEQ, ANDAND, OROR, PLUSEQ, MINUSEQ, STAREQ, SLASHEQ, LT, GT}
	s := NewScanner(src)
	for _, w := range want {
		tok := s.Scan()
		if tok.Type != w {
			t.Errorf("expected %v, got %v", w, tok)
		}
	}
}

func TestScannerComments(t *testing.T) {
	s := NewScanner("a // line\n /* block\n across */ b")
	if tok := s.Scan(); tok.Text != "a" {
		t.Errorf("first token: %v", tok)
	}
	tok := s.Scan()
	if tok.Text != "b" {
		t.Errorf("second token: %v", tok)
	}
	if tok.Line != 3 {
		t.Errorf("line after block comment: %d", tok.Line)
	}
}

func TestScannerUnterminatedString(t *testing.T) {
	s := NewScanner(`"abc`)
	if tok := s.Scan(); tok.Type != ILLEGAL {
		t.Errorf("expected ILLEGAL, got %v", tok)
	}
}

func TestParseToleratesEverythingBroken(t *testing.T) {
	// the parser must terminate and produce a tree for arbitrary junk
	inputs := []string{
		"",
		"{}{}{}",
		"component",
		"component X inherits",
		"export",
		"import { } from",
		"component X { property < } ",
		"component X { states [ ",
		strings.Repeat("(", 50),
	}
	for _, src := range inputs {
		diags := &slint.DiagnosticList{}
		if tree := String(src, "junk.slint", diags); tree == nil {
			t.Errorf("nil tree for %q", src)
		}
	}
}
