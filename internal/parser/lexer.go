// Package parser turns the store's small SQL subset into a ParsedStmt the
// executor can run: a pure function from text to AST, with no knowledge
// of pages, tables, or the pager (see SPEC_FULL.md's external-collaborator
// boundary).
//
// What: a whitespace-aware tokenizer plus a recursive-descent parser over
// its token stream.
// How: the same two-token-lookahead shape as a hand-rolled SQL frontend —
// peek/next over a byte scanner, keywords recognized by a fixed allow-list,
// a Pratt-free precedence ladder for WHERE expressions (OR, AND, NOT,
// comparison, primary).
package parser

import (
	"strings"
	"unicode"
)

type tokenType int

const (
	tEOF tokenType = iota
	tIdent
	tNumber
	tString
	tSymbol
	tKeyword
)

var keywords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "AND": true, "OR": true,
	"NOT": true, "BETWEEN": true, "IN": true, "IS": true, "NULL": true,
	"ORDER": true, "BY": true, "ASC": true, "DESC": true, "LIMIT": true,
	"OFFSET": true, "INSERT": true, "INTO": true, "DELETE": true, "USE": true,
	"CREATE": true, "TABLE": true, "INT": true, "STRING": true, "TIMESTAMP": true,
}

type token struct {
	Typ tokenType
	Val string
}

type lexer struct {
	s   string
	pos int
}

func newLexer(s string) *lexer { return &lexer{s: s} }

func (lx *lexer) peek() byte {
	if lx.pos >= len(lx.s) {
		return 0
	}
	return lx.s[lx.pos]
}

func (lx *lexer) skipWS() {
	for lx.pos < len(lx.s) && unicode.IsSpace(rune(lx.s[lx.pos])) {
		lx.pos++
	}
}

func (lx *lexer) nextToken() token {
	lx.skipWS()
	if lx.pos >= len(lx.s) {
		return token{Typ: tEOF}
	}
	c := lx.s[lx.pos]

	switch {
	case c == '\'':
		return lx.lexString()
	case isDigit(c):
		return lx.lexNumber()
	case isIdentStart(c):
		return lx.lexIdentOrKeyword()
	default:
		return lx.lexSymbol()
	}
}

func (lx *lexer) lexString() token {
	lx.pos++ // opening quote
	var b strings.Builder
	for lx.pos < len(lx.s) {
		c := lx.s[lx.pos]
		if c == '\'' {
			if lx.pos+1 < len(lx.s) && lx.s[lx.pos+1] == '\'' {
				b.WriteByte('\'')
				lx.pos += 2
				continue
			}
			lx.pos++
			return token{Typ: tString, Val: b.String()}
		}
		b.WriteByte(c)
		lx.pos++
	}
	return token{Typ: tString, Val: b.String()}
}

func (lx *lexer) lexNumber() token {
	start := lx.pos
	for lx.pos < len(lx.s) && (isDigit(lx.s[lx.pos]) || lx.s[lx.pos] == '.' || (lx.s[lx.pos] == '-' && lx.pos == start)) {
		lx.pos++
	}
	return token{Typ: tNumber, Val: lx.s[start:lx.pos]}
}

func (lx *lexer) lexIdentOrKeyword() token {
	start := lx.pos
	for lx.pos < len(lx.s) && isIdentPart(lx.s[lx.pos]) {
		lx.pos++
	}
	word := lx.s[start:lx.pos]
	upper := strings.ToUpper(word)
	if keywords[upper] {
		return token{Typ: tKeyword, Val: upper}
	}
	return token{Typ: tIdent, Val: word}
}

func (lx *lexer) lexSymbol() token {
	two := ""
	if lx.pos+1 < len(lx.s) {
		two = lx.s[lx.pos : lx.pos+2]
	}
	switch two {
	case "!=", "<=", ">=":
		lx.pos += 2
		return token{Typ: tSymbol, Val: two}
	}
	c := lx.s[lx.pos]
	lx.pos++
	return token{Typ: tSymbol, Val: string(c)}
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
