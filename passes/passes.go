// Package passes transforms a built document into its final, fully
// lowered form. The order is fixed: resolution and lowering always run,
// the optimization group can be skipped for debug builds. Every
// optimization pass is a fixed point, running it twice changes nothing.
package passes

import (
	"github.com/slint-go/slint"
)

type Options struct {
	SkipOptimizations bool
}

// Context is shared by all passes of one pipeline run.
type Context struct {
	Doc   *slint.Document
	Diags *slint.DiagnosticList
}

type pass struct {
	name string
	run  func(*Context)
	// optimization passes are skippable and idempotent
	optimization bool
	// a barrier pass stops the pipeline when diagnostics contain an
	// error once it has run; later passes assume resolved expressions
	barrier bool
}

var pipeline = []pass{
	{name: "resolve-two-way-bindings", run: resolveTwoWayBindings},
	{name: "infer-property-types", run: inferPropertyTypes},
	{name: "resolve-expressions", run: resolveExpressions},
	{name: "check-purity", run: checkPurity, barrier: true},
	{name: "assign-unique-ids", run: assignUniqueIDs},
	{name: "lower-focus-handling", run: lowerFocusHandling},
	{name: "materialize-used-properties", run: materializeUsedProperties},
	{name: "lower-states", run: lowerStates},
	{name: "lower-repeaters", run: lowerRepeaters},
	{name: "lower-popups", run: lowerPopups},
	{name: "inline-components", run: inlineComponents},
	{name: "move-declarations", run: moveDeclarations},
	{name: "collect-globals", run: collectGlobals},
	{name: "collect-structs", run: collectStructs},
	{name: "check-binding-loops", run: checkBindingLoops, barrier: true},
	{name: "fold-constants", run: foldConstants, optimization: true},
	{name: "remove-two-way-aliases", run: removeTwoWayAliases, optimization: true},
	{name: "deduplicate-reads", run: deduplicateReads, optimization: true},
	{name: "remove-dead-properties", run: removeDeadProperties, optimization: true},
	{name: "assign-item-indices", run: assignItemIndices},
}

// Run executes the whole pipeline on doc.
func Run(doc *slint.Document, diags *slint.DiagnosticList) {
	RunWithOptions(doc, diags, Options{})
}

func RunWithOptions(doc *slint.Document, diags *slint.DiagnosticList, opts Options) {
	ctx := &Context{Doc: doc, Diags: diags}
	for _, p := range pipeline {
		if p.optimization && opts.SkipOptimizations {
			continue
		}
		p.run(ctx)
		if p.barrier && diags.HasError() {
			return
		}
	}
}

// allComponents returns the document's components plus the inner
// components lowering synthesized, skipping inlined-away ones.
func allComponents(doc *slint.Document) []*slint.Component {
	var out []*slint.Component
	for _, c := range doc.Components {
		if !c.OptimizedOut {
			out = append(out, c)
		}
	}
	for _, c := range doc.InnerComponents {
		if !c.OptimizedOut {
			out = append(out, c)
		}
	}
	return out
}

// walkElements visits every element of a component, handing each visit
// the ancestor chain from the root down to the element's parent.
func walkElements(c *slint.Component, f func(ancestors []*slint.Element, e *slint.Element)) {
	var walk func(anc []*slint.Element, e *slint.Element)
	walk = func(anc []*slint.Element, e *slint.Element) {
		f(anc, e)
		anc = append(anc, e)
		for _, child := range e.Children {
			walk(anc, child)
		}
	}
	if c.Root != nil {
		walk(nil, c.Root)
	}
}
