package parse

import (
	"fmt"
	"strings"
)

type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF
	IDENT
	NUMBER
	STRING
	COLOR
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	COLON
	SEMICOLON
	COMMA
	DOT
	PLUS
	MINUS
	STAR
	SLASH
	BANG
	QUESTION
	ASSIGN       // =
	EQ           // ==
	NEQ          // !=
	LT           // <
	LTEQ         // <=
	GT           // >
	GTEQ         // >=
	ANDAND       // &&
	OROR         // ||
	COLONEQ      // :=
	FATARROW     // =>
	ARROW        // ->
	DOUBLEARROW  // <=>
	PLUSEQ
	MINUSEQ
	STAREQ
	SLASHEQ
)

var tokenNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", IDENT: "IDENT", NUMBER: "NUMBER",
	STRING: "STRING", COLOR: "COLOR", LBRACE: "{", RBRACE: "}",
	LPAREN: "(", RPAREN: ")", LBRACKET: "[", RBRACKET: "]", COLON: ":",
	SEMICOLON: ";", COMMA: ",", DOT: ".", PLUS: "+", MINUS: "-",
	STAR: "*", SLASH: "/", BANG: "!", QUESTION: "?", ASSIGN: "=",
	EQ: "==", NEQ: "!=", LT: "<", LTEQ: "<=", GT: ">", GTEQ: ">=",
	ANDAND: "&&", OROR: "||", COLONEQ: ":=", FATARROW: "=>",
	ARROW: "->", DOUBLEARROW: "<=>", PLUSEQ: "+=", MINUSEQ: "-=",
	STAREQ: "*=", SLASHEQ: "/=",
}

func (tt TokenType) String() string {
	if s, ok := tokenNames[tt]; ok {
		return s
	}
	return "?"
}

type Token struct {
	Type   TokenType
	Text   string
	Line   int
	Column int
}

func (tok Token) String() string {
	return fmt.Sprintf("<%v %q %d:%d>", tok.Type, tok.Text, tok.Line, tok.Column)
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ch >= 'a' && ch <= 'f' || ch >= 'A' && ch <= 'F'
}

// Scanner turns source text into tokens with 1-based line/column
// positions. Comments are skipped. An identifier may contain dashes
// (`border-width`); a dash is part of the identifier when it is directly
// followed by a letter, so subtraction needs whitespace.
type Scanner struct {
	src    string
	pos    int
	line   int
	column int
}

func NewScanner(src string) *Scanner {
	return &Scanner{src: src, line: 1, column: 1}
}

func (s *Scanner) peekAt(offset int) byte {
	if s.pos+offset < len(s.src) {
		return s.src[s.pos+offset]
	}
	return 0
}

func (s *Scanner) advance() byte {
	ch := s.src[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return ch
}

func (s *Scanner) skipWhitespaceAndComments() {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if isWhitespace(ch) {
			s.advance()
		} else if ch == '/' && s.peekAt(1) == '/' {
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.advance()
			}
		} else if ch == '/' && s.peekAt(1) == '*' {
			s.advance()
			s.advance()
			for s.pos < len(s.src) {
				if s.src[s.pos] == '*' && s.peekAt(1) == '/' {
					s.advance()
					s.advance()
					break
				}
				s.advance()
			}
		} else {
			break
		}
	}
}

func (s *Scanner) token(tt TokenType, text string, line, column int) Token {
	return Token{Type: tt, Text: text, Line: line, Column: column}
}

func (s *Scanner) Scan() Token {
	s.skipWhitespaceAndComments()
	line, column := s.line, s.column
	if s.pos >= len(s.src) {
		return s.token(EOF, "", line, column)
	}
	ch := s.src[s.pos]
	switch {
	case isLetter(ch):
		return s.scanIdent(line, column)
	case isDigit(ch):
		return s.scanNumber(line, column)
	case ch == '"':
		return s.scanString(line, column)
	case ch == '#':
		return s.scanColor(line, column)
	}
	return s.scanPunct(line, column)
}

func (s *Scanner) scanIdent(line, column int) Token {
	start := s.pos
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if isLetter(ch) || isDigit(ch) {
			s.advance()
		} else if ch == '-' && isLetter(s.peekAt(1)) {
			s.advance()
		} else {
			break
		}
	}
	return s.token(IDENT, s.src[start:s.pos], line, column)
}

func (s *Scanner) scanNumber(line, column int) Token {
	start := s.pos
	gotDecimal := false
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if isDigit(ch) {
			s.advance()
		} else if ch == '.' && !gotDecimal && isDigit(s.peekAt(1)) {
			gotDecimal = true
			s.advance()
		} else {
			break
		}
	}
	// unit suffix: letters or a percent sign directly after the digits
	if s.pos < len(s.src) && s.src[s.pos] == '%' {
		s.advance()
	} else {
		for s.pos < len(s.src) && isLetter(s.src[s.pos]) {
			s.advance()
		}
	}
	return s.token(NUMBER, s.src[start:s.pos], line, column)
}

func (s *Scanner) scanString(line, column int) Token {
	s.advance() // opening quote
	var sb strings.Builder
	for s.pos < len(s.src) {
		ch := s.advance()
		switch ch {
		case '"':
			return s.token(STRING, sb.String(), line, column)
		case '\\':
			if s.pos >= len(s.src) {
				break
			}
			esc := s.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"', '\\':
				sb.WriteByte(esc)
			default:
				sb.WriteByte(esc)
			}
		case '\n':
			return s.token(ILLEGAL, "unterminated string", line, column)
		default:
			sb.WriteByte(ch)
		}
	}
	return s.token(ILLEGAL, "unterminated string", line, column)
}

func (s *Scanner) scanColor(line, column int) Token {
	start := s.pos
	s.advance() // '#'
	for s.pos < len(s.src) && isHexDigit(s.src[s.pos]) {
		s.advance()
	}
	text := s.src[start:s.pos]
	n := len(text) - 1
	if n != 3 && n != 6 && n != 8 {
		return s.token(ILLEGAL, text, line, column)
	}
	return s.token(COLOR, text, line, column)
}

func (s *Scanner) scanPunct(line, column int) Token {
	ch := s.advance()
	two := func(next byte, tt TokenType, text string) (Token, bool) {
		if s.pos < len(s.src) && s.src[s.pos] == next {
			s.advance()
			return s.token(tt, text, line, column), true
		}
		return Token{}, false
	}
	switch ch {
	case '{':
		return s.token(LBRACE, "{", line, column)
	case '}':
		return s.token(RBRACE, "}", line, column)
	case '(':
		return s.token(LPAREN, "(", line, column)
	case ')':
		return s.token(RPAREN, ")", line, column)
	case '[':
		return s.token(LBRACKET, "[", line, column)
	case ']':
		return s.token(RBRACKET, "]", line, column)
	case ';':
		return s.token(SEMICOLON, ";", line, column)
	case ',':
		return s.token(COMMA, ",", line, column)
	case '.':
		return s.token(DOT, ".", line, column)
	case '?':
		return s.token(QUESTION, "?", line, column)
	case ':':
		if tok, ok := two('=', COLONEQ, ":="); ok {
			return tok
		}
		return s.token(COLON, ":", line, column)
	case '+':
		if tok, ok := two('=', PLUSEQ, "+="); ok {
			return tok
		}
		return s.token(PLUS, "+", line, column)
	case '-':
		if tok, ok := two('=', MINUSEQ, "-="); ok {
			return tok
		}
		if tok, ok := two('>', ARROW, "->"); ok {
			return tok
		}
		return s.token(MINUS, "-", line, column)
	case '*':
		if tok, ok := two('=', STAREQ, "*="); ok {
			return tok
		}
		return s.token(STAR, "*", line, column)
	case '/':
		if tok, ok := two('=', SLASHEQ, "/="); ok {
			return tok
		}
		return s.token(SLASH, "/", line, column)
	case '!':
		if tok, ok := two('=', NEQ, "!="); ok {
			return tok
		}
		return s.token(BANG, "!", line, column)
	case '=':
		if tok, ok := two('=', EQ, "=="); ok {
			return tok
		}
		if tok, ok := two('>', FATARROW, "=>"); ok {
			return tok
		}
		return s.token(ASSIGN, "=", line, column)
	case '<':
		if s.pos+1 < len(s.src) && s.src[s.pos] == '=' && s.src[s.pos+1] == '>' {
			s.advance()
			s.advance()
			return s.token(DOUBLEARROW, "<=>", line, column)
		}
		if tok, ok := two('=', LTEQ, "<="); ok {
			return tok
		}
		return s.token(LT, "<", line, column)
	case '>':
		if tok, ok := two('=', GTEQ, ">="); ok {
			return tok
		}
		return s.token(GT, ">", line, column)
	case '&':
		if tok, ok := two('&', ANDAND, "&&"); ok {
			return tok
		}
	case '|':
		if tok, ok := two('|', OROR, "||"); ok {
			return tok
		}
	}
	return s.token(ILLEGAL, string(ch), line, column)
}
