package slint_test

import (
	"strings"
	"testing"

	"github.com/slint-go/slint"
	"github.com/slint-go/slint/parse"
)

func buildString(t *testing.T, src string) (*slint.Document, *slint.DiagnosticList) {
	t.Helper()
	var diags slint.DiagnosticList
	doc := parse.NewFileLoader().LoadString(src, "build_test.slint", &diags)
	if doc == nil {
		t.Fatalf("no document: %v", diags.Diagnostics)
	}
	return doc, &diags
}

func TestUnknownElementType(t *testing.T) {
	_, diags := buildString(t, `
export component App {
    Bogus { }
}
`)
	if !diags.HasError() {
		t.Fatal("unknown element type must be an error")
	}
	found := false
	for _, d := range diags.Diagnostics {
		if strings.Contains(d.Message, `Unknown element type "Bogus"`) {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics: %v", diags.Diagnostics)
	}
}

func TestInvalidElementBase(t *testing.T) {
	_, diags := buildString(t, `
struct Point { x: length, y: length }
export component App {
    Point { }
}
`)
	if !diags.HasError() {
		t.Fatal("a struct cannot be an element base")
	}
	found := false
	for _, d := range diags.Diagnostics {
		if strings.Contains(d.Message, "cannot be used as an element base") {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics: %v", diags.Diagnostics)
	}
}

func TestExportsAndRootComponent(t *testing.T) {
	doc, diags := buildString(t, `
component Helper { }
export component First { }
export component Main { }
`)
	if diags.HasError() {
		t.Fatalf("unexpected: %v", diags.Diagnostics)
	}
	if root := doc.RootComponent(); root == nil || root.Name != "Main" {
		t.Errorf("the last exported component is the root: %+v", root)
	}
	if _, ok := doc.Exports["Helper"]; ok {
		t.Error("unexported component must not be exported")
	}
	if _, ok := doc.Exports["First"]; !ok {
		t.Error("First should be exported")
	}
}

func TestUnparseRoundTrip(t *testing.T) {
	src := `
export struct Entry {
    label: string,
    value: int,
}
export component App inherits Rectangle {
    property <int> count: 3;
    callback picked(int) -> bool;
    label := Text {
        text: "n: " + count;
    }
    for e in [1, 2] : Rectangle { }
}
`
	doc, diags := buildString(t, src)
	if diags.HasError() {
		t.Fatalf("unexpected: %v", diags.Diagnostics)
	}
	rendered := slint.Unparse(doc)
	for _, want := range []string{
		"export struct Entry {",
		"export component App inherits Rectangle {",
		"property <int> count: 3;",
		"callback picked(int) -> bool;",
		"label := Text {",
		`text: "n: " + count;`,
		"for e in [1, 2] : Rectangle {",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered source missing %q:\n%s", want, rendered)
		}
	}
	// the rendering must itself be valid source
	var diags2 slint.DiagnosticList
	doc2 := parse.NewFileLoader().LoadString(rendered, "roundtrip.slint", &diags2)
	if doc2 == nil || diags2.HasError() {
		t.Fatalf("re-parse of rendered source failed: %v\n%s", diags2.Diagnostics, rendered)
	}
	if len(doc2.Components) != len(doc.Components) {
		t.Errorf("component count changed: %d vs %d", len(doc2.Components), len(doc.Components))
	}
}

func TestFormattedAnnotation(t *testing.T) {
	src := "line one\nline two\nline three\n"
	d := slint.Diagnostic{
		Level: slint.SeverityError, Message: "boom", Line: 2, Column: 3,
		SourceFile: "x.slint",
	}
	out := slint.FormattedAnnotation(src, d, slint.RED, 1)
	if !strings.Contains(out, "line two") || !strings.Contains(out, "boom") {
		t.Errorf("annotation: %q", out)
	}
	if !strings.Contains(out, "x.slint:2:3") {
		t.Errorf("position: %q", out)
	}
}
