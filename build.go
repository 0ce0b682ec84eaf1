package slint

import (
	"strings"
)

// Loader resolves an import statement to an already-built document. The
// parse package provides the file-system implementation; tests can plug in
// an in-memory one.
type Loader interface {
	LoadDocument(path string, from string, diags *DiagnosticList) (*Document, error)
}

// BuildDocument walks the concrete syntax tree into the typed object tree.
// It is best-effort: syntax error nodes are skipped, unresolved element
// bases become InvalidType with a diagnostic, and the result is always a
// usable Document for tooling even when diags has errors.
func BuildDocument(node *SyntaxNode, sourceFile string, builtins *TypeRegister, loader Loader, diags *DiagnosticList) *Document {
	doc := &Document{
		SourceFile:    sourceFile,
		Exports:       make(map[string]interface{}),
		LocalRegistry: NewTypeRegister(builtins),
	}
	b := &treeBuilder{doc: doc, diags: diags, loader: loader}

	for _, child := range node.Children {
		if child.Kind == SyntaxImport {
			b.processImport(child)
		}
	}
	// register all names first so components can refer to each other
	// regardless of declaration order
	for _, child := range node.Children {
		switch child.Kind {
		case SyntaxComponent, SyntaxGlobal:
			b.declareComponent(child)
		case SyntaxStructDecl:
			b.declareStruct(child)
		}
	}
	for _, child := range node.Children {
		switch child.Kind {
		case SyntaxComponent, SyntaxGlobal:
			b.buildComponent(child)
		}
	}
	for _, child := range node.Children {
		if child.Kind == SyntaxExportsList {
			b.processExports(child)
		}
	}
	return doc
}

type treeBuilder struct {
	doc        *Document
	diags      *DiagnosticList
	loader     Loader
	components map[string]*Component
}

func (b *treeBuilder) processImport(node *SyntaxNode) {
	if b.loader == nil {
		b.diags.Errorf(node.Location, "Cannot import %q: no loader configured", node.Text)
		return
	}
	imported, err := b.loader.LoadDocument(node.Text, b.doc.SourceFile, b.diags)
	if err != nil {
		b.diags.Errorf(node.Location, "Cannot import %q: %v", node.Text, err)
		return
	}
	for _, ident := range node.ChildrenOfKind(SyntaxImportIdentifier) {
		name := ident.Text
		localName := name
		if alias := ident.Child(SyntaxIdentifier); alias != nil {
			localName = alias.Text
		}
		exported, ok := imported.Exports[name]
		if !ok {
			b.diags.Errorf(ident.Location, "No exported type called %q found in %q", name, node.Text)
			continue
		}
		switch x := exported.(type) {
		case *Component:
			t := &Type{Kind: TypeComponent, Name: localName, Component: x}
			if err := b.doc.LocalRegistry.Register(localName, t); err != nil {
				b.diags.Errorf(ident.Location, "%v", err)
			}
		case *Type:
			if err := b.doc.LocalRegistry.Register(localName, x); err != nil {
				b.diags.Errorf(ident.Location, "%v", err)
			}
		}
	}
}

func (b *treeBuilder) declareComponent(node *SyntaxNode) {
	if b.components == nil {
		b.components = make(map[string]*Component)
	}
	c := &Component{
		Name:     node.Text,
		IsGlobal: node.Kind == SyntaxGlobal,
		Location: node.Location,
	}
	b.components[c.Name] = c
	t := &Type{Kind: TypeComponent, Name: c.Name, Component: c}
	if err := b.doc.LocalRegistry.Register(c.Name, t); err != nil {
		b.diags.Errorf(node.Location, "%v", err)
	}
}

func (b *treeBuilder) declareStruct(node *SyntaxNode) {
	t := &Type{
		Kind:   TypeStruct,
		Name:   node.Text,
		Fields: make(map[string]*Type),
	}
	for _, field := range node.ChildrenOfKind(SyntaxStructField) {
		ft := b.resolveTypeName(field.Child(SyntaxTypeName))
		if _, ok := t.Fields[field.Text]; ok {
			b.diags.Errorf(field.Location, "Duplicate struct field: %s", field.Text)
			continue
		}
		t.Fields[field.Text] = ft
		t.FieldOrder = append(t.FieldOrder, field.Text)
	}
	if err := b.doc.LocalRegistry.Register(t.Name, t); err != nil {
		b.diags.Errorf(node.Location, "%v", err)
	}
	b.doc.Structs = append(b.doc.Structs, t)
}

func (b *treeBuilder) buildComponent(node *SyntaxNode) {
	c := b.components[node.Text]
	if c == nil {
		return
	}
	body := node.Child(SyntaxElement)
	if body == nil {
		b.diags.Errorf(node.Location, "Component %q has no body", node.Text)
		return
	}
	c.Root = b.buildElement(body, c)
	if c.IsGlobal {
		// a global has no visual base
		c.Root.Base = &Type{Kind: TypeBuiltinItem, Name: "Global", Properties: map[string]*Type{}}
		c.Root.BaseName = "Global"
	}
	b.doc.Components = append(b.doc.Components, c)
}

func (b *treeBuilder) processExports(node *SyntaxNode) {
	for _, spec := range node.ChildrenOfKind(SyntaxExportSpecifier) {
		name := spec.Text
		exportedName := name
		if alias := spec.Child(SyntaxIdentifier); alias != nil {
			exportedName = alias.Text
		}
		var value interface{}
		if c, ok := b.components[name]; ok {
			value = c
			c.Exported = true
		} else if t, found := b.doc.LocalRegistry.Lookup(name); found {
			value = t
		} else {
			b.diags.Errorf(spec.Location, "Cannot export unknown name %q", name)
			continue
		}
		if _, dup := b.doc.Exports[exportedName]; dup {
			// last or explicit alias wins, the duplicate is flagged
			b.diags.Warnf(spec.Location, "Duplicate export of %q, the later one wins", exportedName)
		} else {
			b.doc.ExportOrder = append(b.doc.ExportOrder, exportedName)
		}
		b.doc.Exports[exportedName] = value
	}
}

func (b *treeBuilder) resolveTypeName(node *SyntaxNode) *Type {
	if node == nil {
		return InvalidType
	}
	name := node.Text
	if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
		inner := b.resolveTypeName(&SyntaxNode{
			Kind:     SyntaxTypeName,
			Text:     strings.TrimSpace(name[1 : len(name)-1]),
			Location: node.Location,
		})
		return ArrayType(inner)
	}
	switch name {
	case "int":
		return Int32Type
	case "float":
		return Float32Type
	case "string":
		return StringType
	case "color":
		return ColorType
	case "duration":
		return DurationType
	case "angle":
		return AngleType
	case "length":
		return LogicalLengthType
	case "physical-length":
		return PhysicalLengthType
	case "percent":
		return PercentType
	case "bool":
		return BoolType
	case "easing":
		return EasingType
	}
	if t, ok := b.doc.LocalRegistry.Lookup(name); ok {
		if t.Kind == TypeStruct || t.Kind == TypeEnum {
			return t
		}
	}
	b.diags.Errorf(node.Location, "Unknown type %q", name)
	return InvalidType
}

func (b *treeBuilder) buildElement(node *SyntaxNode, c *Component) *Element {
	e := NewElement(node.Text, node.Location)
	e.EnclosingComponent = c
	e.DebugName = c.Name
	if node.Text == "" {
		e.BaseName = "Empty"
	}
	if base, ok := b.doc.LocalRegistry.Lookup(e.BaseName); ok {
		switch base.Kind {
		case TypeBuiltinItem, TypeComponent:
			e.Base = base
		default:
			b.diags.Errorf(node.Location, "%q cannot be used as an element base", e.BaseName)
		}
	} else {
		b.diags.Errorf(node.Location, "Unknown element type %q", e.BaseName)
	}
	for _, child := range node.Children {
		b.buildElementContent(e, child, c)
	}
	return e
}

func (b *treeBuilder) buildElementContent(e *Element, child *SyntaxNode, c *Component) {
	switch child.Kind {
	case SyntaxIdentifier:
		e.ID = child.Text
	case SyntaxElement:
		e.Children = append(e.Children, b.buildElement(child, c))
	case SyntaxRepeatedElement:
		b.buildRepeated(e, child, c)
	case SyntaxConditionalElement:
		b.buildConditional(e, child, c)
	case SyntaxPropertyDeclaration:
		b.buildPropertyDeclaration(e, child)
	case SyntaxCallbackDeclaration:
		b.buildCallbackDeclaration(e, child)
	case SyntaxBinding:
		if _, ok := e.Bindings[child.Text]; ok {
			b.diags.Errorf(child.Location, "Duplicate binding for %q", child.Text)
			return
		}
		e.Bindings[child.Text] = &Binding{
			ExpressionSyntax: firstExpression(child),
			Location:         child.Location,
		}
	case SyntaxTwoWayBinding:
		if _, ok := e.Bindings[child.Text]; ok {
			b.diags.Errorf(child.Location, "Duplicate binding for %q", child.Text)
			return
		}
		e.Bindings[child.Text] = &Binding{
			TwoWaySyntax: child.Child(SyntaxQualifiedName),
			Location:     child.Location,
		}
	case SyntaxCallbackConnection:
		if _, ok := e.CallbackHandlers[child.Text]; ok {
			b.diags.Errorf(child.Location, "Duplicate handler for callback %q", child.Text)
			return
		}
		h := &CallbackHandler{Location: child.Location}
		for _, arg := range child.ChildrenOfKind(SyntaxModifier) {
			h.ArgNames = append(h.ArgNames, arg.Text)
		}
		h.ExpressionSyntax = firstExpression(child)
		e.CallbackHandlers[child.Text] = h
	case SyntaxPropertyAnimation:
		anim := b.buildAnimation(child)
		for _, name := range strings.Split(child.Text, ",") {
			e.PropertyAnimations[strings.TrimSpace(name)] = anim
		}
	case SyntaxStates:
		b.buildStates(e, child)
	case SyntaxTransitions:
		b.buildTransitions(e, child)
	case SyntaxError:
		// the parser already reported it
	}
}

func (b *treeBuilder) buildRepeated(e *Element, node *SyntaxNode, c *Component) {
	inner := node.Child(SyntaxElement)
	if inner == nil {
		return
	}
	sub := b.buildElement(inner, c)
	sub.Repeated = &RepeatedInfo{
		DataName:    node.Text,
		ModelSyntax: firstExpression(node),
	}
	if idx := node.Child(SyntaxModifier); idx != nil {
		sub.Repeated.IndexName = idx.Text
	}
	e.Children = append(e.Children, sub)
}

func (b *treeBuilder) buildConditional(e *Element, node *SyntaxNode, c *Component) {
	inner := node.Child(SyntaxElement)
	if inner == nil {
		return
	}
	sub := b.buildElement(inner, c)
	sub.Repeated = &RepeatedInfo{
		IsConditional: true,
		ModelSyntax:   firstExpression(node),
	}
	e.Children = append(e.Children, sub)
}

func (b *treeBuilder) buildPropertyDeclaration(e *Element, node *SyntaxNode) {
	name := node.Text
	if _, ok := e.PropertyDeclarations[name]; ok {
		b.diags.Errorf(node.Location, "Duplicate declaration of property %q", name)
		return
	}
	decl := &PropertyDeclaration{Name: name, Location: node.Location, Exposed: true}
	if tn := node.Child(SyntaxTypeName); tn != nil {
		decl.Type = b.resolveDeclarationType(tn)
	} else {
		// `property name <=> other.prop;` without a type: inferred later
		decl.Type = InferredProperty
	}
	e.PropertyDeclarations[name] = decl
	if tw := node.Child(SyntaxTwoWayBinding); tw != nil {
		e.Bindings[name] = &Binding{
			TwoWaySyntax: tw.Child(SyntaxQualifiedName),
			Location:     tw.Location,
		}
	} else if bind := node.Child(SyntaxBinding); bind != nil {
		e.Bindings[name] = &Binding{
			ExpressionSyntax: firstExpression(bind),
			Location:         bind.Location,
		}
	}
}

// resolveDeclarationType is like resolveTypeName but property declarations
// may use any property type, not only named structs/enums.
func (b *treeBuilder) resolveDeclarationType(node *SyntaxNode) *Type {
	t := b.resolveTypeNameQuiet(node)
	if t.Kind == TypeInvalid {
		b.diags.Errorf(node.Location, "Unknown type %q in property declaration", node.Text)
	}
	return t
}

func (b *treeBuilder) resolveTypeNameQuiet(node *SyntaxNode) *Type {
	saved := len(b.diags.Diagnostics)
	t := b.resolveTypeName(node)
	b.diags.Diagnostics = b.diags.Diagnostics[:saved]
	return t
}

func (b *treeBuilder) buildCallbackDeclaration(e *Element, node *SyntaxNode) {
	name := node.Text
	if _, ok := e.PropertyDeclarations[name]; ok {
		b.diags.Errorf(node.Location, "Duplicate declaration of callback %q", name)
		return
	}
	decl := &PropertyDeclaration{Name: name, Location: node.Location, Exposed: true}
	if m := node.Child(SyntaxModifier); m != nil && m.Text == "pure" {
		decl.Pure = true
	}
	if tw := node.Child(SyntaxTwoWayBinding); tw != nil {
		decl.Type = InferredCallback
		e.Bindings[name] = &Binding{
			TwoWaySyntax: tw.Child(SyntaxQualifiedName),
			Location:     tw.Location,
		}
	} else {
		var args []*Type
		ret := VoidType
		for _, tn := range node.ChildrenOfKind(SyntaxTypeName) {
			args = append(args, b.resolveDeclarationType(tn))
		}
		if rt := node.Child(SyntaxReturnType); rt != nil {
			ret = b.resolveDeclarationType(&SyntaxNode{
				Kind:     SyntaxTypeName,
				Text:     rt.Text,
				Location: rt.Location,
			})
		}
		decl.Type = CallbackType(ret, args...)
	}
	e.PropertyDeclarations[name] = decl
}

func (b *treeBuilder) buildAnimation(node *SyntaxNode) *PropertyAnimation {
	anim := &PropertyAnimation{LoopCount: 1, Easing: &EasingCurveLiteral{Name: "linear"}}
	for _, bind := range node.ChildrenOfKind(SyntaxBinding) {
		expr := firstExpression(bind)
		if expr == nil {
			continue
		}
		switch bind.Text {
		case "duration":
			anim.DurationMs = literalDuration(expr, b.diags)
		case "delay":
			anim.DelayMs = literalDuration(expr, b.diags)
		case "loop-count":
			anim.LoopCount = int(literalNumber(expr, b.diags))
		case "easing":
			anim.Easing = literalEasing(expr, b.diags)
		default:
			b.diags.Errorf(bind.Location, "Unknown animation property %q", bind.Text)
		}
	}
	return anim
}

func (b *treeBuilder) buildStates(e *Element, node *SyntaxNode) {
	for _, sn := range node.ChildrenOfKind(SyntaxState) {
		st := &State{Name: sn.Text, Location: sn.Location}
		st.Condition = firstExpression(sn)
		for _, ch := range sn.ChildrenOfKind(SyntaxStatePropertyChange) {
			st.Changes = append(st.Changes, StateChange{
				PathSyntax: ch.Child(SyntaxQualifiedName),
				Value:      firstExpression(ch),
				Location:   ch.Location,
			})
		}
		e.States = append(e.States, st)
	}
}

func (b *treeBuilder) buildTransitions(e *Element, node *SyntaxNode) {
	for _, tn := range node.ChildrenOfKind(SyntaxTransition) {
		tr := &Transition{StateName: tn.Text, Location: tn.Location}
		if m := tn.Child(SyntaxModifier); m != nil {
			tr.In = m.Text == "in"
		}
		for _, an := range tn.ChildrenOfKind(SyntaxPropertyAnimation) {
			anim := b.buildAnimation(an)
			for _, name := range strings.Split(an.Text, ",") {
				tr.Animations = append(tr.Animations, TransitionAnimation{
					Property:  strings.TrimSpace(name),
					Animation: anim,
				})
			}
		}
		e.Transitions = append(e.Transitions, tr)
	}
}

// firstExpression picks the first child that is an expression node.
func firstExpression(node *SyntaxNode) *SyntaxNode {
	for _, c := range node.Children {
		switch c.Kind {
		case SyntaxExpression, SyntaxCodeBlock, SyntaxConditionalExpression,
			SyntaxBinaryExpression, SyntaxUnaryExpression, SyntaxFunctionCall,
			SyntaxMemberAccess, SyntaxArrayLiteral, SyntaxObjectLiteral,
			SyntaxNumberLiteral, SyntaxStringLiteral, SyntaxColorLiteral,
			SyntaxBoolLiteral, SyntaxIdentifier, SyntaxQualifiedName,
			SyntaxParenthesized, SyntaxSelfAssignment, SyntaxReturnStatement:
			return c
		}
	}
	return nil
}

// literalDuration evaluates a constant duration expression at build time
// (animation metadata must be literal).
func literalDuration(node *SyntaxNode, diags *DiagnosticList) int64 {
	if node.Kind == SyntaxNumberLiteral {
		value, unit := SplitNumberLiteral(node.Text)
		if unit != nil && unit.Type == DurationType {
			return int64(value * unit.Factor)
		}
		if unit == nil {
			return int64(value)
		}
	}
	diags.Errorf(node.Location, "Animation duration must be a duration literal")
	return 0
}

func literalNumber(node *SyntaxNode, diags *DiagnosticList) float64 {
	if node.Kind == SyntaxNumberLiteral {
		value, unit := SplitNumberLiteral(node.Text)
		if unit == nil {
			return value
		}
	}
	diags.Errorf(node.Location, "Expected a plain number literal")
	return 0
}

func literalEasing(node *SyntaxNode, diags *DiagnosticList) *EasingCurveLiteral {
	switch node.Kind {
	case SyntaxIdentifier, SyntaxQualifiedName:
		switch node.Text {
		case "linear":
			return &EasingCurveLiteral{Name: "linear"}
		case "ease":
			return &EasingCurveLiteral{Name: "cubic-bezier", X1: 0.25, Y1: 0.1, X2: 0.25, Y2: 1.0}
		case "ease-in":
			return &EasingCurveLiteral{Name: "cubic-bezier", X1: 0.42, Y1: 0, X2: 1.0, Y2: 1.0}
		case "ease-out":
			return &EasingCurveLiteral{Name: "cubic-bezier", X1: 0, Y1: 0, X2: 0.58, Y2: 1.0}
		case "ease-in-out":
			return &EasingCurveLiteral{Name: "cubic-bezier", X1: 0.42, Y1: 0, X2: 0.58, Y2: 1.0}
		}
	case SyntaxFunctionCall:
		if len(node.Children) == 5 && node.Children[0].Text == "cubic-bezier" {
			params := make([]float64, 4)
			ok := true
			for i := 0; i < 4; i++ {
				arg := node.Children[i+1]
				if arg.Kind != SyntaxNumberLiteral {
					ok = false
					break
				}
				v, unit := SplitNumberLiteral(arg.Text)
				if unit != nil {
					ok = false
					break
				}
				params[i] = v
			}
			if ok {
				return &EasingCurveLiteral{
					Name: "cubic-bezier",
					X1:   params[0], Y1: params[1], X2: params[2], Y2: params[3],
				}
			}
		}
	}
	diags.Errorf(node.Location, "Invalid easing specification")
	return &EasingCurveLiteral{Name: "linear"}
}
