package parse

import (
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/slint-go/slint"
)

var Verbose bool

func Debug(args ...interface{}) {
	if Verbose {
		fmt.Println(args...)
	}
}

// File parses a source file into a concrete syntax tree. Parse problems
// are recorded as diagnostics, never returned as errors; the error return
// is for I/O only.
func File(path string, diags *slint.DiagnosticList) (*slint.SyntaxNode, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return String(string(b), path, diags), nil
}

// String parses source text. The returned tree is always complete: error
// recovery skips to the next safe point and keeps going, so the same tree
// serves batch compilation and live editing.
func String(src string, sourceFile string, diags *slint.DiagnosticList) *slint.SyntaxNode {
	p := &Parser{
		scanner: NewScanner(src),
		path:    sourceFile,
		diags:   diags,
	}
	p.next()
	return p.parseDocument()
}

type Parser struct {
	scanner *Scanner
	path    string
	diags   *slint.DiagnosticList
	tok     Token
	peeked  []Token
}

func (p *Parser) next() {
	if len(p.peeked) > 0 {
		p.tok = p.peeked[0]
		p.peeked = p.peeked[1:]
		return
	}
	p.tok = p.scanner.Scan()
	Debug("next() ->", p.tok)
}

func (p *Parser) peek(n int) Token {
	for len(p.peeked) < n {
		p.peeked = append(p.peeked, p.scanner.Scan())
	}
	return p.peeked[n-1]
}

func (p *Parser) at(tt TokenType) bool {
	return p.tok.Type == tt
}

func (p *Parser) atIdent(text string) bool {
	return p.tok.Type == IDENT && p.tok.Text == text
}

func (p *Parser) accept(tt TokenType) bool {
	if p.tok.Type == tt {
		p.next()
		return true
	}
	return false
}

func (p *Parser) loc() slint.Location {
	return slint.Location{Line: p.tok.Line, Column: p.tok.Column, SourceFile: p.path}
}

func (p *Parser) locOf(tok Token) slint.Location {
	return slint.Location{Line: tok.Line, Column: tok.Column, SourceFile: p.path}
}

// parseError records the canonical "Parse error" diagnostic at the
// current token. Recovery is the caller's responsibility.
func (p *Parser) parseError() {
	p.diags.Errorf(p.loc(), "Parse error")
}

// expect consumes a token of the given type or records a parse error and
// leaves the current token in place for recovery.
func (p *Parser) expect(tt TokenType) (Token, bool) {
	if p.tok.Type == tt {
		tok := p.tok
		p.next()
		return tok, true
	}
	p.parseError()
	return p.tok, false
}

// skipTo advances until one of the given token types or EOF, balancing
// nested braces so recovery does not leave the enclosing block.
func (p *Parser) skipTo(types ...TokenType) {
	depth := 0
	for !p.at(EOF) {
		if depth == 0 {
			for _, tt := range types {
				if p.tok.Type == tt {
					return
				}
			}
		}
		switch p.tok.Type {
		case LBRACE:
			depth++
		case RBRACE:
			if depth == 0 {
				return
			}
			depth--
		}
		p.next()
	}
}

func node(kind slint.SyntaxKind, text string, loc slint.Location, children ...*slint.SyntaxNode) *slint.SyntaxNode {
	return &slint.SyntaxNode{Kind: kind, Text: text, Location: loc, Children: children}
}

func (p *Parser) parseDocument() *slint.SyntaxNode {
	doc := node(slint.SyntaxDocument, "", p.loc())
	for !p.at(EOF) {
		switch {
		case p.atIdent("import"):
			if n := p.parseImport(); n != nil {
				doc.Children = append(doc.Children, n)
			}
		case p.atIdent("export"):
			p.parseExport(doc)
		case p.atIdent("component"):
			if n := p.parseComponent(false, doc); n != nil {
				doc.Children = append(doc.Children, n)
			}
		case p.atIdent("global"):
			if n := p.parseGlobal(); n != nil {
				doc.Children = append(doc.Children, n)
			}
		case p.atIdent("struct"):
			if n := p.parseStruct(); n != nil {
				doc.Children = append(doc.Children, n)
			}
		case p.accept(SEMICOLON):
			// stray semicolon
		default:
			p.parseError()
			p.next()
			p.skipTo(SEMICOLON, RBRACE)
			p.accept(SEMICOLON)
			p.accept(RBRACE)
		}
	}
	return doc
}

func (p *Parser) parseImport() *slint.SyntaxNode {
	start := p.loc()
	p.next() // import
	imp := node(slint.SyntaxImport, "", start)
	if _, ok := p.expect(LBRACE); !ok {
		p.skipTo(SEMICOLON, RBRACE)
		return nil
	}
	for !p.at(RBRACE) && !p.at(EOF) {
		if p.at(IDENT) {
			ident := node(slint.SyntaxImportIdentifier, p.tok.Text, p.loc())
			p.next()
			if p.atIdent("as") {
				p.next()
				if p.at(IDENT) {
					ident.Children = append(ident.Children,
						node(slint.SyntaxIdentifier, p.tok.Text, p.loc()))
					p.next()
				} else {
					p.parseError()
				}
			}
			imp.Children = append(imp.Children, ident)
		}
		if !p.accept(COMMA) {
			break
		}
	}
	p.expect(RBRACE)
	if !p.atIdent("from") {
		p.parseError()
		p.skipTo(SEMICOLON)
		p.accept(SEMICOLON)
		return imp
	}
	p.next()
	if p.at(STRING) {
		imp.Text = p.tok.Text
		p.next()
	} else {
		p.parseError()
	}
	p.accept(SEMICOLON)
	return imp
}

// parseExport handles `export component ...`, `export global ...`,
// `export struct ...` and the re-export list `export { A, B as C }`.
// Exported declarations also produce an ExportsList entry so the builder
// has a single source of exported names.
func (p *Parser) parseExport(doc *slint.SyntaxNode) {
	start := p.loc()
	p.next() // export
	switch {
	case p.at(LBRACE):
		p.next()
		list := node(slint.SyntaxExportsList, "", start)
		for !p.at(RBRACE) && !p.at(EOF) {
			if p.at(IDENT) {
				spec := node(slint.SyntaxExportSpecifier, p.tok.Text, p.loc())
				p.next()
				if p.atIdent("as") {
					p.next()
					if p.at(IDENT) {
						spec.Children = append(spec.Children,
							node(slint.SyntaxIdentifier, p.tok.Text, p.loc()))
						p.next()
					} else {
						p.parseError()
					}
				}
				list.Children = append(list.Children, spec)
			}
			if !p.accept(COMMA) {
				break
			}
		}
		p.expect(RBRACE)
		p.accept(SEMICOLON)
		doc.Children = append(doc.Children, list)
	case p.atIdent("component"):
		if n := p.parseComponent(true, doc); n != nil {
			doc.Children = append(doc.Children, n)
		}
	case p.atIdent("global"):
		if n := p.parseGlobal(); n != nil {
			doc.Children = append(doc.Children, n)
			p.exportName(doc, n)
		}
	case p.atIdent("struct"):
		if n := p.parseStruct(); n != nil {
			doc.Children = append(doc.Children, n)
			p.exportName(doc, n)
		}
	default:
		p.parseError()
		p.skipTo(SEMICOLON, RBRACE)
		p.accept(SEMICOLON)
		p.accept(RBRACE)
	}
}

func (p *Parser) exportName(doc *slint.SyntaxNode, decl *slint.SyntaxNode) {
	list := node(slint.SyntaxExportsList, "", decl.Location,
		node(slint.SyntaxExportSpecifier, decl.Text, decl.Location))
	doc.Children = append(doc.Children, list)
}

func (p *Parser) parseComponent(exported bool, doc *slint.SyntaxNode) *slint.SyntaxNode {
	start := p.loc()
	p.next() // component
	name, ok := p.expect(IDENT)
	if !ok {
		p.skipTo(RBRACE)
		p.accept(RBRACE)
		return nil
	}
	base := ""
	if p.atIdent("inherits") {
		p.next()
		if b, ok := p.expect(IDENT); ok {
			base = b.Text
		}
	}
	body := p.parseElementBody(base, start)
	comp := node(slint.SyntaxComponent, name.Text, start, body)
	if exported {
		p.exportName(doc, comp)
	}
	return comp
}

func (p *Parser) parseGlobal() *slint.SyntaxNode {
	start := p.loc()
	p.next() // global
	name, ok := p.expect(IDENT)
	if !ok {
		p.skipTo(RBRACE)
		p.accept(RBRACE)
		return nil
	}
	body := p.parseElementBody("", start)
	return node(slint.SyntaxGlobal, name.Text, start, body)
}

func (p *Parser) parseStruct() *slint.SyntaxNode {
	start := p.loc()
	p.next() // struct
	name, ok := p.expect(IDENT)
	if !ok {
		p.skipTo(RBRACE)
		p.accept(RBRACE)
		return nil
	}
	st := node(slint.SyntaxStructDecl, name.Text, start)
	if _, ok := p.expect(LBRACE); !ok {
		p.skipTo(RBRACE)
		p.accept(RBRACE)
		return st
	}
	for !p.at(RBRACE) && !p.at(EOF) {
		if p.at(IDENT) {
			field := node(slint.SyntaxStructField, p.tok.Text, p.loc())
			p.next()
			if _, ok := p.expect(COLON); ok {
				field.Children = append(field.Children, p.parseTypeName())
			}
			st.Children = append(st.Children, field)
		} else {
			p.parseError()
			p.skipTo(COMMA, RBRACE)
		}
		if !p.accept(COMMA) {
			break
		}
	}
	p.expect(RBRACE)
	return st
}

// parseTypeName reads a type: an identifier or an array type `[type]`.
func (p *Parser) parseTypeName() *slint.SyntaxNode {
	start := p.loc()
	if p.accept(LBRACKET) {
		inner := p.parseTypeName()
		p.expect(RBRACKET)
		return node(slint.SyntaxTypeName, "["+inner.Text+"]", start)
	}
	if p.at(IDENT) {
		n := node(slint.SyntaxTypeName, p.tok.Text, start)
		p.next()
		return n
	}
	p.parseError()
	return node(slint.SyntaxTypeName, "", start)
}

// parseElementBody parses `{ contents }` as an element with the given
// base name.
func (p *Parser) parseElementBody(base string, start slint.Location) *slint.SyntaxNode {
	el := node(slint.SyntaxElement, base, start)
	if _, ok := p.expect(LBRACE); !ok {
		p.skipTo(RBRACE)
		p.accept(RBRACE)
		return el
	}
	for !p.at(RBRACE) && !p.at(EOF) {
		p.parseElementContent(el)
	}
	p.expect(RBRACE)
	return el
}

func (p *Parser) parseElementContent(el *slint.SyntaxNode) {
	switch {
	case p.atIdent("property"):
		el.Children = append(el.Children, p.parsePropertyDeclaration())
	case p.atIdent("callback"):
		el.Children = append(el.Children, p.parseCallbackDeclaration(false))
	case p.atIdent("pure") && p.peek(1).Type == IDENT && p.peek(1).Text == "callback":
		p.next()
		el.Children = append(el.Children, p.parseCallbackDeclaration(true))
	case p.atIdent("animate"):
		el.Children = append(el.Children, p.parseAnimate())
	case p.atIdent("states") && p.peek(1).Type == LBRACKET:
		el.Children = append(el.Children, p.parseStates())
	case p.atIdent("transitions") && p.peek(1).Type == LBRACKET:
		el.Children = append(el.Children, p.parseTransitions())
	case p.atIdent("for"):
		el.Children = append(el.Children, p.parseRepeated())
	case p.atIdent("if"):
		el.Children = append(el.Children, p.parseConditionalElement())
	case p.at(SEMICOLON):
		p.next()
	case p.at(IDENT):
		p.parseIdentContent(el)
	default:
		p.parseError()
		p.next()
		p.skipTo(SEMICOLON, RBRACE)
		p.accept(SEMICOLON)
	}
}

// parseIdentContent disambiguates the constructs that start with an
// identifier by the following token.
func (p *Parser) parseIdentContent(el *slint.SyntaxNode) {
	name := p.tok
	switch p.peek(1).Type {
	case COLONEQ:
		// id := Base { ... }
		p.next()
		p.next()
		if base, ok := p.expect(IDENT); ok {
			child := p.parseElementBody(base.Text, p.locOf(base))
			child.Children = append([]*slint.SyntaxNode{
				node(slint.SyntaxIdentifier, name.Text, p.locOf(name)),
			}, child.Children...)
			el.Children = append(el.Children, child)
		} else {
			p.skipTo(SEMICOLON, RBRACE)
			p.accept(SEMICOLON)
		}
	case LBRACE:
		p.next()
		child := p.parseElementBody(name.Text, p.locOf(name))
		el.Children = append(el.Children, child)
	case COLON:
		p.next()
		p.next()
		bind := node(slint.SyntaxBinding, name.Text, p.locOf(name))
		bind.Children = append(bind.Children, p.parseBindingExpression())
		p.accept(SEMICOLON)
		el.Children = append(el.Children, bind)
	case DOUBLEARROW:
		p.next()
		p.next()
		tw := node(slint.SyntaxTwoWayBinding, name.Text, p.locOf(name))
		tw.Children = append(tw.Children, p.parseQualifiedName())
		p.accept(SEMICOLON)
		el.Children = append(el.Children, tw)
	case LPAREN, FATARROW:
		el.Children = append(el.Children, p.parseCallbackConnection())
	default:
		p.parseError()
		p.next()
		p.skipTo(SEMICOLON, RBRACE)
		p.accept(SEMICOLON)
	}
}

func (p *Parser) parsePropertyDeclaration() *slint.SyntaxNode {
	start := p.loc()
	p.next() // property
	decl := node(slint.SyntaxPropertyDeclaration, "", start)
	if p.accept(LT) {
		tn := p.parseTypeName()
		decl.Children = append(decl.Children, tn)
		p.expect(GT)
	}
	if p.at(IDENT) {
		decl.Text = p.tok.Text
		p.next()
	} else {
		p.parseError()
		p.skipTo(SEMICOLON, RBRACE)
		p.accept(SEMICOLON)
		return decl
	}
	switch p.tok.Type {
	case COLON:
		p.next()
		bind := node(slint.SyntaxBinding, decl.Text, p.loc())
		bind.Children = append(bind.Children, p.parseBindingExpression())
		decl.Children = append(decl.Children, bind)
	case DOUBLEARROW:
		p.next()
		tw := node(slint.SyntaxTwoWayBinding, decl.Text, p.loc())
		tw.Children = append(tw.Children, p.parseQualifiedName())
		decl.Children = append(decl.Children, tw)
	}
	p.accept(SEMICOLON)
	return decl
}

func (p *Parser) parseCallbackDeclaration(pure bool) *slint.SyntaxNode {
	start := p.loc()
	p.next() // callback
	decl := node(slint.SyntaxCallbackDeclaration, "", start)
	if pure {
		decl.Children = append(decl.Children, node(slint.SyntaxModifier, "pure", start))
	}
	if p.at(IDENT) {
		decl.Text = p.tok.Text
		p.next()
	} else {
		p.parseError()
		p.skipTo(SEMICOLON, RBRACE)
		p.accept(SEMICOLON)
		return decl
	}
	if p.at(DOUBLEARROW) {
		p.next()
		tw := node(slint.SyntaxTwoWayBinding, decl.Text, p.loc())
		tw.Children = append(tw.Children, p.parseQualifiedName())
		decl.Children = append(decl.Children, tw)
		p.accept(SEMICOLON)
		return decl
	}
	if p.accept(LPAREN) {
		for !p.at(RPAREN) && !p.at(EOF) {
			decl.Children = append(decl.Children, p.parseTypeName())
			if !p.accept(COMMA) {
				break
			}
		}
		p.expect(RPAREN)
	}
	if p.accept(ARROW) {
		rt := p.parseTypeName()
		decl.Children = append(decl.Children,
			node(slint.SyntaxReturnType, rt.Text, rt.Location))
	}
	p.accept(SEMICOLON)
	return decl
}

func (p *Parser) parseCallbackConnection() *slint.SyntaxNode {
	name := p.tok
	p.next()
	conn := node(slint.SyntaxCallbackConnection, name.Text, p.locOf(name))
	if p.accept(LPAREN) {
		for !p.at(RPAREN) && !p.at(EOF) {
			if p.at(IDENT) {
				conn.Children = append(conn.Children,
					node(slint.SyntaxModifier, p.tok.Text, p.loc()))
				p.next()
			} else {
				p.parseError()
				p.skipTo(COMMA, RPAREN)
			}
			if !p.accept(COMMA) {
				break
			}
		}
		p.expect(RPAREN)
	}
	if _, ok := p.expect(FATARROW); !ok {
		p.skipTo(SEMICOLON, RBRACE)
		p.accept(SEMICOLON)
		return conn
	}
	if p.at(LBRACE) {
		conn.Children = append(conn.Children, p.parseCodeBlock())
	} else {
		conn.Children = append(conn.Children, p.parseExpression())
	}
	p.accept(SEMICOLON)
	return conn
}

func (p *Parser) parseAnimate() *slint.SyntaxNode {
	start := p.loc()
	p.next() // animate
	names := []string{}
	for p.at(IDENT) {
		names = append(names, p.tok.Text)
		p.next()
		if !p.accept(COMMA) {
			break
		}
	}
	anim := node(slint.SyntaxPropertyAnimation, strings.Join(names, ","), start)
	if _, ok := p.expect(LBRACE); !ok {
		p.skipTo(RBRACE)
		p.accept(RBRACE)
		return anim
	}
	for !p.at(RBRACE) && !p.at(EOF) {
		if p.at(IDENT) && p.peek(1).Type == COLON {
			bind := node(slint.SyntaxBinding, p.tok.Text, p.loc())
			p.next()
			p.next()
			bind.Children = append(bind.Children, p.parseBindingExpression())
			p.accept(SEMICOLON)
			anim.Children = append(anim.Children, bind)
		} else {
			p.parseError()
			p.next()
			p.skipTo(SEMICOLON, RBRACE)
			p.accept(SEMICOLON)
		}
	}
	p.expect(RBRACE)
	return anim
}

func (p *Parser) parseStates() *slint.SyntaxNode {
	start := p.loc()
	p.next() // states
	states := node(slint.SyntaxStates, "", start)
	p.expect(LBRACKET)
	for !p.at(RBRACKET) && !p.at(EOF) {
		if !p.at(IDENT) {
			p.parseError()
			p.next()
			continue
		}
		st := node(slint.SyntaxState, p.tok.Text, p.loc())
		p.next()
		if p.atIdent("when") {
			p.next()
			st.Children = append(st.Children, p.parseExpression())
		}
		if _, ok := p.expect(COLON); !ok {
			p.skipTo(RBRACKET, LBRACE)
		}
		if p.accept(LBRACE) {
			for !p.at(RBRACE) && !p.at(EOF) {
				if p.at(IDENT) {
					change := node(slint.SyntaxStatePropertyChange, "", p.loc())
					change.Children = append(change.Children, p.parseQualifiedName())
					if _, ok := p.expect(COLON); ok {
						change.Children = append(change.Children, p.parseBindingExpression())
					}
					p.accept(SEMICOLON)
					st.Children = append(st.Children, change)
				} else {
					p.parseError()
					p.next()
				}
			}
			p.expect(RBRACE)
		}
		p.accept(SEMICOLON)
		states.Children = append(states.Children, st)
	}
	p.expect(RBRACKET)
	return states
}

func (p *Parser) parseTransitions() *slint.SyntaxNode {
	start := p.loc()
	p.next() // transitions
	trs := node(slint.SyntaxTransitions, "", start)
	p.expect(LBRACKET)
	for !p.at(RBRACKET) && !p.at(EOF) {
		if !p.atIdent("in") && !p.atIdent("out") {
			p.parseError()
			p.next()
			continue
		}
		dir := p.tok.Text
		dirLoc := p.loc()
		p.next()
		tr := node(slint.SyntaxTransition, "", p.loc())
		tr.Children = append(tr.Children, node(slint.SyntaxModifier, dir, dirLoc))
		if p.at(IDENT) {
			tr.Text = p.tok.Text
			p.next()
		} else {
			p.parseError()
		}
		if _, ok := p.expect(COLON); !ok {
			p.skipTo(RBRACKET, LBRACE)
		}
		if p.accept(LBRACE) {
			for !p.at(RBRACE) && !p.at(EOF) {
				if p.atIdent("animate") {
					tr.Children = append(tr.Children, p.parseAnimate())
				} else {
					p.parseError()
					p.next()
				}
			}
			p.expect(RBRACE)
		}
		trs.Children = append(trs.Children, tr)
	}
	p.expect(RBRACKET)
	return trs
}

func (p *Parser) parseRepeated() *slint.SyntaxNode {
	start := p.loc()
	p.next() // for
	rep := node(slint.SyntaxRepeatedElement, "", start)
	if p.at(IDENT) {
		rep.Text = p.tok.Text
		p.next()
	} else {
		p.parseError()
	}
	if p.accept(LBRACKET) {
		if p.at(IDENT) {
			rep.Children = append(rep.Children,
				node(slint.SyntaxModifier, p.tok.Text, p.loc()))
			p.next()
		} else {
			p.parseError()
		}
		p.expect(RBRACKET)
	}
	if !p.atIdent("in") {
		p.parseError()
		p.skipTo(COLON, RBRACE)
	} else {
		p.next()
		rep.Children = append(rep.Children, p.parseExpression())
	}
	p.expect(COLON)
	rep.Children = append(rep.Children, p.parseElementInstance())
	return rep
}

func (p *Parser) parseConditionalElement() *slint.SyntaxNode {
	start := p.loc()
	p.next() // if
	cond := node(slint.SyntaxConditionalElement, "", start)
	cond.Children = append(cond.Children, p.parseExpression())
	p.expect(COLON)
	cond.Children = append(cond.Children, p.parseElementInstance())
	return cond
}

// parseElementInstance parses `[id :=] Base { ... }` after a for/if head.
func (p *Parser) parseElementInstance() *slint.SyntaxNode {
	if p.at(IDENT) && p.peek(1).Type == COLONEQ {
		name := p.tok
		p.next()
		p.next()
		if base, ok := p.expect(IDENT); ok {
			child := p.parseElementBody(base.Text, p.locOf(base))
			child.Children = append([]*slint.SyntaxNode{
				node(slint.SyntaxIdentifier, name.Text, p.locOf(name)),
			}, child.Children...)
			return child
		}
	} else if p.at(IDENT) {
		base := p.tok
		p.next()
		return p.parseElementBody(base.Text, p.locOf(base))
	}
	p.parseError()
	p.skipTo(SEMICOLON, RBRACE)
	p.accept(SEMICOLON)
	return node(slint.SyntaxError, "", p.loc())
}

func (p *Parser) parseQualifiedName() *slint.SyntaxNode {
	start := p.loc()
	if !p.at(IDENT) {
		p.parseError()
		return node(slint.SyntaxQualifiedName, "", start)
	}
	parts := []string{p.tok.Text}
	p.next()
	for p.at(DOT) && p.peek(1).Type == IDENT {
		p.next()
		parts = append(parts, p.tok.Text)
		p.next()
	}
	return node(slint.SyntaxQualifiedName, strings.Join(parts, "."), start)
}

// parseBindingExpression parses either a code block or an expression as
// the right side of a binding. A leading `{` followed by `name:` is an
// object literal, any other `{` starts a code block.
func (p *Parser) parseBindingExpression() *slint.SyntaxNode {
	if p.at(LBRACE) {
		if p.peek(1).Type == IDENT && p.peek(2).Type == COLON {
			return p.parseExpression()
		}
		return p.parseCodeBlock()
	}
	return p.parseExpression()
}

func (p *Parser) parseCodeBlock() *slint.SyntaxNode {
	start := p.loc()
	block := node(slint.SyntaxCodeBlock, "", start)
	p.expect(LBRACE)
	for !p.at(RBRACE) && !p.at(EOF) {
		block.Children = append(block.Children, p.parseStatement())
		p.accept(SEMICOLON)
	}
	p.expect(RBRACE)
	return block
}

func (p *Parser) parseStatement() *slint.SyntaxNode {
	if p.atIdent("return") {
		start := p.loc()
		p.next()
		ret := node(slint.SyntaxReturnStatement, "", start)
		if !p.at(SEMICOLON) && !p.at(RBRACE) {
			ret.Children = append(ret.Children, p.parseExpression())
		}
		return ret
	}
	// an assignment starts with a qualified name followed by an
	// assignment operator
	if p.at(IDENT) {
		n := 1
		for p.peek(n).Type == DOT && p.peek(n+1).Type == IDENT {
			n += 2
		}
		switch p.peek(n).Type {
		case ASSIGN, PLUSEQ, MINUSEQ, STAREQ, SLASHEQ:
			lhs := p.parseQualifiedName()
			op := p.tok.Text
			opLoc := p.loc()
			p.next()
			stmt := node(slint.SyntaxSelfAssignment, op, opLoc)
			stmt.Children = append(stmt.Children, lhs, p.parseExpression())
			return stmt
		}
	}
	return p.parseExpression()
}

// expression parsing, classic precedence climbing

func (p *Parser) parseExpression() *slint.SyntaxNode {
	return p.parseConditional()
}

func (p *Parser) parseConditional() *slint.SyntaxNode {
	cond := p.parseBinary(0)
	if p.at(QUESTION) {
		loc := p.loc()
		p.next()
		t := p.parseConditional()
		p.expect(COLON)
		f := p.parseConditional()
		return node(slint.SyntaxConditionalExpression, "", loc, cond, t, f)
	}
	return cond
}

var binaryPrecedence = []map[TokenType]string{
	{OROR: "||"},
	{ANDAND: "&&"},
	{EQ: "==", NEQ: "!="},
	{LT: "<", LTEQ: "<=", GT: ">", GTEQ: ">="},
	{PLUS: "+", MINUS: "-"},
	{STAR: "*", SLASH: "/"},
}

func (p *Parser) parseBinary(level int) *slint.SyntaxNode {
	if level >= len(binaryPrecedence) {
		return p.parseUnary()
	}
	lhs := p.parseBinary(level + 1)
	for {
		op, ok := binaryPrecedence[level][p.tok.Type]
		if !ok {
			return lhs
		}
		loc := p.loc()
		p.next()
		rhs := p.parseBinary(level + 1)
		lhs = node(slint.SyntaxBinaryExpression, op, loc, lhs, rhs)
	}
}

func (p *Parser) parseUnary() *slint.SyntaxNode {
	if p.at(MINUS) || p.at(BANG) {
		op := p.tok.Text
		loc := p.loc()
		p.next()
		return node(slint.SyntaxUnaryExpression, op, loc, p.parseUnary())
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() *slint.SyntaxNode {
	loc := p.loc()
	switch p.tok.Type {
	case NUMBER:
		n := node(slint.SyntaxNumberLiteral, p.tok.Text, loc)
		p.next()
		return n
	case STRING:
		n := node(slint.SyntaxStringLiteral, p.tok.Text, loc)
		p.next()
		return n
	case COLOR:
		n := node(slint.SyntaxColorLiteral, p.tok.Text, loc)
		p.next()
		return n
	case LPAREN:
		p.next()
		inner := p.parseExpression()
		p.expect(RPAREN)
		return node(slint.SyntaxParenthesized, "", loc, inner)
	case LBRACKET:
		p.next()
		arr := node(slint.SyntaxArrayLiteral, "", loc)
		for !p.at(RBRACKET) && !p.at(EOF) {
			arr.Children = append(arr.Children, p.parseExpression())
			if !p.accept(COMMA) {
				break
			}
		}
		p.expect(RBRACKET)
		return arr
	case LBRACE:
		p.next()
		obj := node(slint.SyntaxObjectLiteral, "", loc)
		for !p.at(RBRACE) && !p.at(EOF) {
			if p.at(IDENT) {
				member := node(slint.SyntaxObjectMember, p.tok.Text, p.loc())
				p.next()
				if _, ok := p.expect(COLON); ok {
					member.Children = append(member.Children, p.parseExpression())
				}
				obj.Children = append(obj.Children, member)
			} else {
				p.parseError()
				p.next()
			}
			if !p.accept(COMMA) {
				break
			}
		}
		p.expect(RBRACE)
		return obj
	case IDENT:
		qn := p.parseQualifiedName()
		if p.at(LPAREN) {
			p.next()
			call := node(slint.SyntaxFunctionCall, "", loc, qn)
			for !p.at(RPAREN) && !p.at(EOF) {
				call.Children = append(call.Children, p.parseExpression())
				if !p.accept(COMMA) {
					break
				}
			}
			p.expect(RPAREN)
			return call
		}
		return qn
	}
	p.parseError()
	p.next()
	return node(slint.SyntaxError, "", loc)
}
