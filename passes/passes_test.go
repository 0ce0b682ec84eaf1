package passes

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/slint-go/slint"
	"github.com/slint-go/slint/parse"
)

func buildDocument(t *testing.T, src string) (*slint.Document, *slint.DiagnosticList) {
	t.Helper()
	diags := &slint.DiagnosticList{}
	loader := parse.NewFileLoader()
	doc := loader.LoadString(src, "test.slint", diags)
	if doc == nil {
		t.Fatal("no document")
	}
	return doc, diags
}

func compile(t *testing.T, src string) (*slint.Document, *slint.DiagnosticList) {
	t.Helper()
	doc, diags := buildDocument(t, src)
	Run(doc, diags)
	return doc, diags
}

func compileClean(t *testing.T, src string) *slint.Document {
	t.Helper()
	doc, diags := compile(t, src)
	if diags.HasError() {
		t.Fatalf("unexpected diagnostics:\n%s", diags)
	}
	return doc
}

func TestBindingLoopDetected(t *testing.T) {
	_, diags := compile(t, `
export component App {
    property <int> a: b;
    property <int> b: a;
}
`)
	var loops []string
	for _, d := range diags.Diagnostics {
		if strings.Contains(d.Message, "binding loop") {
			loops = append(loops, d.Message)
		}
	}
	if len(loops) != 2 {
		t.Fatalf("expected a loop report for both properties, got %v", loops)
	}
	sort.Strings(loops)
	if !strings.Contains(loops[0], `"a"`) || !strings.Contains(loops[1], `"b"`) {
		t.Errorf("loop messages: %v", loops)
	}
}

func TestTwoWayBindingIsNotALoop(t *testing.T) {
	compileClean(t, `
export component App {
    property <int> a: 5;
    property <int> b <=> a;
}
`)
}

func TestIndirectBindingLoop(t *testing.T) {
	_, diags := compile(t, `
export component App {
    property <int> a: b + 1;
    property <int> b: c * 2;
    property <int> c: a;
}
`)
	count := 0
	for _, d := range diags.Diagnostics {
		if strings.Contains(d.Message, "binding loop") {
			count++
		}
	}
	if count != 3 {
		t.Errorf("expected 3 loop reports, got %d:\n%s", count, diags)
	}
}

func TestTypeInferenceFromTwoWay(t *testing.T) {
	doc := compileClean(t, `
export component App {
    inner := Rectangle {
        property <int> count: 7;
    }
    property total <=> inner.count;
}
`)
	root := doc.RootComponent().Root
	decl := root.PropertyDeclarations["total"]
	if decl == nil {
		t.Fatal("total was not kept")
	}
	if decl.Type.Kind != slint.TypeInt32 {
		t.Errorf("inferred type: %s", decl.Type)
	}
}

func TestInferenceFailureIsDiagnosed(t *testing.T) {
	_, diags := compile(t, `
export component App {
    property a <=> b;
    property b <=> a;
}
`)
	found := false
	for _, d := range diags.Diagnostics {
		if strings.Contains(d.Message, "Cannot infer") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an inference error:\n%s", diags)
	}
}

func TestPurityViolationInBinding(t *testing.T) {
	_, diags := compile(t, `
export component App {
    callback notify();
    property <int> x: { notify(); 1 }
}
`)
	found := false
	for _, d := range diags.Diagnostics {
		if strings.Contains(d.Message, "non-pure callback") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a purity error:\n%s", diags)
	}
}

func TestPureCallbackMayNotAssign(t *testing.T) {
	_, diags := compile(t, `
export component App {
    property <int> count;
    pure callback compute() -> int;
    compute() => { count = 3; return count; }
}
`)
	found := false
	for _, d := range diags.Diagnostics {
		if strings.Contains(d.Message, "Cannot assign") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an assignment error:\n%s", diags)
	}
}

func TestImpureHandlerMayAssign(t *testing.T) {
	compileClean(t, `
export component App {
    property <int> count;
    area := TouchArea {
        clicked => { count += 1; }
    }
}
`)
}

func TestStatesLowering(t *testing.T) {
	doc := compileClean(t, `
export component App {
    property <bool> active;
    rect := Rectangle {
        background: #000000;
    }
    states [
        on when active : {
            rect.background: #ffffff;
        }
    ]
}
`)
	root := doc.RootComponent().Root
	if len(root.States) != 0 {
		t.Error("states were not erased")
	}
	decl := root.PropertyDeclarations["current-state"]
	if decl == nil {
		t.Fatal("no current-state property")
	}
	if decl.Type.Kind != slint.TypeInt32 {
		t.Errorf("current-state type: %s", decl.Type)
	}
	if b := root.Bindings["current-state"]; b == nil || b.Expression == nil {
		t.Fatal("current-state has no binding")
	} else if _, ok := b.Expression.(*slint.ConditionalExpression); !ok {
		t.Errorf("current-state binding is %T", b.Expression)
	}
	rect := findByBase(root, "Rectangle")
	if rect == nil {
		t.Fatal("rectangle was lost")
	}
	bg := rect.Bindings["background"]
	if bg == nil || bg.Expression == nil {
		t.Fatal("background binding missing")
	}
	cond, ok := bg.Expression.(*slint.ConditionalExpression)
	if !ok {
		t.Fatalf("background binding is %T, not conditional", bg.Expression)
	}
	if lit, ok := cond.TrueExpr.(*slint.ColorLiteral); !ok || lit.Value != 0xffffffff {
		t.Errorf("state value: %#v", cond.TrueExpr)
	}
	if lit, ok := cond.FalseExpr.(*slint.ColorLiteral); !ok || lit.Value != 0xff000000 {
		t.Errorf("base value: %#v", cond.FalseExpr)
	}
}

func TestTransitionAnimationAttached(t *testing.T) {
	doc := compileClean(t, `
export component App {
    property <bool> active;
    rect := Rectangle { width: 10px; }
    states [
        wide when active : {
            rect.width: 100px;
        }
    ]
    transitions [
        in wide : {
            animate width { duration: 250ms; }
        }
    ]
}
`)
	rect := findByBase(doc.RootComponent().Root, "Rectangle")
	b := rect.Bindings["width"]
	if b == nil || b.Animation == nil {
		t.Fatal("no animation on the transitioned binding")
	}
	if b.Animation.DurationMs != 250 {
		t.Errorf("duration: %d", b.Animation.DurationMs)
	}
}

func TestRepeaterLowering(t *testing.T) {
	doc := compileClean(t, `
export component App {
    property <[string]> names: ["a", "b"];
    for name[i] in names : Text { text: name; }
}
`)
	if len(doc.InnerComponents) != 1 {
		t.Fatalf("inner components: %d", len(doc.InnerComponents))
	}
	inner := doc.InnerComponents[0]
	if inner.Root.BaseName != "Text" {
		t.Errorf("template base: %q", inner.Root.BaseName)
	}
	root := doc.RootComponent().Root
	if len(root.Children) != 1 {
		t.Fatalf("root children: %d", len(root.Children))
	}
	ph := root.Children[0]
	if ph.Repeated == nil {
		t.Fatal("placeholder lost its repeater info")
	}
	if ph.Repeated.DataName != "name" || ph.Repeated.IndexName != "i" {
		t.Errorf("repeater vars: %q %q", ph.Repeated.DataName, ph.Repeated.IndexName)
	}
	if ph.Base.Kind != slint.TypeComponent || ph.Base.Component != inner {
		t.Error("placeholder does not instantiate the template")
	}
	if ph.Repeated.Model == nil {
		t.Fatal("model was not resolved")
	}
	if mt := ph.Repeated.Model.Ty(); mt.Kind != slint.TypeArray {
		t.Errorf("model type: %s", mt)
	}
}

func TestConditionalElementLowering(t *testing.T) {
	doc := compileClean(t, `
export component App {
    property <bool> show;
    if show : Rectangle { }
}
`)
	ph := doc.RootComponent().Root.Children[0]
	if ph.Repeated == nil || !ph.Repeated.IsConditional {
		t.Fatal("conditional placeholder missing")
	}
	if mt := ph.Repeated.Model.Ty(); mt.Kind != slint.TypeBool {
		t.Errorf("condition type: %s", mt)
	}
}

func TestInlining(t *testing.T) {
	doc := compileClean(t, `
component Button {
    property <string> label;
    Rectangle {
        background: #333333;
        Text { text: label; }
    }
}
export component App {
    Button { label: "ok"; }
}
`)
	root := doc.RootComponent().Root
	use := root.Children[0]
	if use.Base.Kind != slint.TypeBuiltinItem {
		t.Fatalf("use site base after inlining: %s", use.Base)
	}
	var btn *slint.Component
	for _, c := range doc.Components {
		if c.Name == "Button" {
			btn = c
		}
	}
	if btn == nil || !btn.OptimizedOut {
		t.Error("fully inlined component was not optimized out")
	}
	// the label declaration is hoisted onto the root with the use-site
	// binding following it
	hoisted := ""
	for name := range root.PropertyDeclarations {
		if strings.HasSuffix(name, "-label") {
			hoisted = name
		}
	}
	if hoisted == "" {
		t.Fatalf("label was not hoisted, root has %v", declarationNames(root))
	}
	hb := root.Bindings[hoisted]
	if hb == nil || hb.Expression == nil {
		t.Fatal("hoisted binding missing")
	}
	if lit, ok := hb.Expression.(*slint.StringLiteral); !ok || lit.Value != "ok" {
		t.Errorf("hoisted binding folded to %#v", hb.Expression)
	}
	text := findByBase(use, "Text")
	if text == nil {
		t.Fatal("inlined child missing")
	}
	b := text.Bindings["text"]
	if b == nil || b.Expression == nil {
		t.Fatal("inlined binding missing")
	}
	ref := findPropertyRef(b.Expression, hoisted)
	if ref == nil {
		t.Fatal("hoisted label reference missing")
	}
	if ref.Element != root {
		t.Error("label reference was not redirected to the root")
	}
}

func declarationNames(e *slint.Element) []string {
	var names []string
	for name := range e.PropertyDeclarations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func TestConstantFolding(t *testing.T) {
	doc := compileClean(t, `
export component App {
    property <float> x: 1 + 2 * 3;
    property <bool> b: true && 4 > 3;
    property <string> s: "a" + "b";
    property <float> m: max(2, 5);
}
`)
	root := doc.RootComponent().Root
	if lit, ok := root.Bindings["x"].Expression.(*slint.NumberLiteral); !ok || lit.Value != 7 {
		t.Errorf("x folded to %#v", root.Bindings["x"].Expression)
	}
	if lit, ok := root.Bindings["b"].Expression.(*slint.BoolLiteral); !ok || !lit.Value {
		t.Errorf("b folded to %#v", root.Bindings["b"].Expression)
	}
	if lit, ok := root.Bindings["s"].Expression.(*slint.StringLiteral); !ok || lit.Value != "ab" {
		t.Errorf("s folded to %#v", root.Bindings["s"].Expression)
	}
	if lit, ok := root.Bindings["m"].Expression.(*slint.NumberLiteral); !ok || lit.Value != 5 {
		t.Errorf("m folded to %#v", root.Bindings["m"].Expression)
	}
}

func TestUnitLiteralNormalization(t *testing.T) {
	doc := compileClean(t, `
export component App {
    property <duration> d: 2s;
    property <angle> a: 0.5turn;
}
`)
	root := doc.RootComponent().Root
	if lit, ok := root.Bindings["d"].Expression.(*slint.NumberLiteral); !ok || lit.Value != 2000 {
		t.Errorf("2s normalized to %#v", root.Bindings["d"].Expression)
	}
	if lit, ok := root.Bindings["a"].Expression.(*slint.NumberLiteral); !ok || lit.Value != 180 {
		t.Errorf("0.5turn normalized to %#v", root.Bindings["a"].Expression)
	}
}

func TestOptimizationsAreIdempotent(t *testing.T) {
	doc, diags := buildDocument(t, `
component Box {
    property <length> side: 10px;
    Rectangle { width: side; height: side; }
}
export component App {
    property <float> dead: 1 + 1;
    property <length> w: 5px + 5px;
    property <length> alias <=> inner.width;
    inner := Box { side: 20px; }
}
`)
	Run(doc, diags)
	if diags.HasError() {
		t.Fatalf("unexpected diagnostics:\n%s", diags)
	}
	ctx := &Context{Doc: doc, Diags: diags}
	before := dumpDocument(doc)
	foldConstants(ctx)
	removeTwoWayAliases(ctx)
	deduplicateReads(ctx)
	removeDeadProperties(ctx)
	after := dumpDocument(doc)
	if before != after {
		t.Errorf("optimizations are not a fixed point:\n--- first\n%s\n--- second\n%s", before, after)
	}
}

func TestCollectGlobals(t *testing.T) {
	doc := compileClean(t, `
global Theme {
    property <color> accent: #0000ff;
}
export component App {
    Rectangle { background: Theme.accent; }
}
`)
	root := doc.RootComponent()
	if len(root.UsedGlobals) != 1 || root.UsedGlobals[0].Name != "Theme" {
		t.Errorf("used globals: %v", root.UsedGlobals)
	}
}

func TestItemIndices(t *testing.T) {
	doc := compileClean(t, `
export component App {
    Rectangle {
        Text { }
    }
    Image { }
}
`)
	var indices []int
	doc.RootComponent().VisitElements(func(e *slint.Element) {
		indices = append(indices, e.ItemIndex)
	})
	for i, idx := range indices {
		if idx != i {
			t.Fatalf("indices not depth-first sequential: %v", indices)
		}
	}
}

func TestUnknownPropertyInBinding(t *testing.T) {
	_, diags := compile(t, `
export component App {
    Rectangle { no-such-prop: 1; }
}
`)
	found := false
	for _, d := range diags.Diagnostics {
		if strings.Contains(d.Message, `Unknown property "no-such-prop"`) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an unknown-property error:\n%s", diags)
	}
}

func TestCannotConvertDiagnostic(t *testing.T) {
	_, diags := compile(t, `
export component App {
    property <color> c: "red";
}
`)
	found := false
	for _, d := range diags.Diagnostics {
		if strings.Contains(d.Message, "Cannot convert") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a conversion error:\n%s", diags)
	}
}

func findByBase(root *slint.Element, base string) *slint.Element {
	var found *slint.Element
	root.Visit(func(e *slint.Element) {
		if found == nil && e.BaseName == base && e != root {
			found = e
		}
	})
	return found
}

func findPropertyRef(expr slint.Expression, name string) *slint.PropertyReference {
	var found *slint.PropertyReference
	slint.Visit(expr, func(sub slint.Expression) bool {
		if pr, ok := sub.(*slint.PropertyReference); ok && pr.Name == name && found == nil {
			found = pr
		}
		return true
	})
	return found
}

// dumpDocument renders the lowered document structurally, for fixed-point
// comparisons. Pointers are rendered as stable ids.
func dumpDocument(doc *slint.Document) string {
	var sb strings.Builder
	for _, c := range doc.Components {
		if c.OptimizedOut {
			continue
		}
		dumpComponent(&sb, c)
	}
	for _, c := range doc.InnerComponents {
		dumpComponent(&sb, c)
	}
	return sb.String()
}

func dumpComponent(sb *strings.Builder, c *slint.Component) {
	fmt.Fprintf(sb, "component %s\n", c.Name)
	c.VisitElements(func(e *slint.Element) {
		fmt.Fprintf(sb, "  element %s (%s)\n", e.ID, e.BaseName)
		var names []string
		for name := range e.PropertyDeclarations {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(sb, "    property %s: %s\n", name, e.PropertyDeclarations[name].Type)
		}
		for _, name := range sortedBindingNames(e) {
			fmt.Fprintf(sb, "    binding %s = %s\n", name, dumpExpr(e.Bindings[name].Expression))
		}
	})
}

func dumpExpr(expr slint.Expression) string {
	switch x := expr.(type) {
	case nil:
		return "<none>"
	case *slint.NumberLiteral:
		return fmt.Sprintf("%v:%s", x.Value, x.Type)
	case *slint.StringLiteral:
		return fmt.Sprintf("%q", x.Value)
	case *slint.BoolLiteral:
		return fmt.Sprintf("%v", x.Value)
	case *slint.ColorLiteral:
		return fmt.Sprintf("#%08x", x.Value)
	case *slint.PropertyReference:
		return fmt.Sprintf("%s.%s", x.Element.ID, x.Name)
	case *slint.Cast:
		return fmt.Sprintf("cast(%s -> %s)", dumpExpr(x.From), x.To)
	case *slint.BinaryExpression:
		return fmt.Sprintf("(%s %c %s)", dumpExpr(x.Lhs), x.Op, dumpExpr(x.Rhs))
	case *slint.ConditionalExpression:
		return fmt.Sprintf("(%s ? %s : %s)",
			dumpExpr(x.Condition), dumpExpr(x.TrueExpr), dumpExpr(x.FalseExpr))
	case *slint.StateReference:
		return fmt.Sprintf("state(%s.%s)", x.Element.ID, x.Name)
	default:
		return fmt.Sprintf("%T", expr)
	}
}
