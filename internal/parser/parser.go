package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/baiyangmu/db-tutorial-new/internal/catalog"
	"github.com/baiyangmu/db-tutorial-new/internal/predicate"
)

// Parser holds the lexer and current/peek tokens for recursive-descent
// parsing, same shape as a hand-written SQL frontend.
type Parser struct {
	lx   *lexer
	cur  token
	peek token
}

func newParser(sql string) *Parser {
	p := &Parser{lx: newLexer(sql)}
	p.cur = p.lx.nextToken()
	p.peek = p.lx.nextToken()
	return p
}

func (p *Parser) advance() { p.cur, p.peek = p.peek, p.lx.nextToken() }

func (p *Parser) errf(format string, a ...any) error {
	return fmt.Errorf("parser: near %q: %s", p.cur.Val, fmt.Sprintf(format, a...))
}

func (p *Parser) isKeyword(kw string) bool { return p.cur.Typ == tKeyword && p.cur.Val == kw }
func (p *Parser) isSymbol(sym string) bool { return p.cur.Typ == tSymbol && p.cur.Val == sym }

func (p *Parser) expectKeyword(kw string) error {
	if !p.isKeyword(kw) {
		return p.errf("expected keyword %s", kw)
	}
	p.advance()
	return nil
}

func (p *Parser) expectSymbol(sym string) error {
	if !p.isSymbol(sym) {
		return p.errf("expected %q", sym)
	}
	p.advance()
	return nil
}

// identLike accepts an identifier or a keyword used as a bare column/table
// name (original_source's columns are never reserved words in practice,
// but the lexer's allow-list is short enough to collide by accident).
func (p *Parser) identLike() (string, error) {
	if p.cur.Typ == tIdent || p.cur.Typ == tKeyword {
		v := p.cur.Val
		p.advance()
		return v, nil
	}
	return "", p.errf("expected identifier")
}

// Parse is the package's one exported entry point: a pure function from
// SQL text to a ParsedStmt (spec §6.3).
func Parse(sql string) (*ParsedStmt, error) {
	p := newParser(strings.TrimSpace(sql))
	switch {
	case p.isKeyword("SELECT"):
		return p.parseSelect()
	case p.isKeyword("INSERT"):
		return p.parseInsert()
	case p.isKeyword("DELETE"):
		return p.parseDelete()
	case p.isKeyword("USE"):
		return p.parseUse()
	case p.isKeyword("CREATE"):
		return p.parseCreateTable()
	default:
		return &ParsedStmt{Kind: Unknown}, fmt.Errorf("parser: unrecognized statement")
	}
}

func (p *Parser) parseUse() (*ParsedStmt, error) {
	if err := p.expectKeyword("USE"); err != nil {
		return nil, err
	}
	name, err := p.identLike()
	if err != nil {
		return nil, err
	}
	return &ParsedStmt{Kind: Use, TableName: name}, nil
}

func (p *Parser) parseInsert() (*ParsedStmt, error) {
	if err := p.expectKeyword("INSERT"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	table, err := p.identLike()
	if err != nil {
		return nil, err
	}
	var values []string
	for p.cur.Typ != tEOF {
		values = append(values, p.cur.Val)
		p.advance()
	}
	return &ParsedStmt{Kind: Insert, TableName: table, InsertTable: table, InsertValues: values}, nil
}

func (p *Parser) parseCreateTable() (*ParsedStmt, error) {
	if err := p.expectKeyword("CREATE"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	table, err := p.identLike()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var cols []catalog.Column
	for {
		name, err := p.identLike()
		if err != nil {
			return nil, err
		}
		typeName, err := p.identLike()
		if err != nil {
			return nil, err
		}
		ct := catalog.ParseColumnType(typeName)
		size := catalog.DefaultSize(ct)
		if p.isSymbol("(") {
			p.advance()
			if p.cur.Typ != tNumber {
				return nil, p.errf("expected column size")
			}
			n, err := strconv.ParseUint(p.cur.Val, 10, 32)
			if err != nil {
				return nil, p.errf("bad column size %q", p.cur.Val)
			}
			size = uint32(n)
			p.advance()
			if err := p.expectSymbol(")"); err != nil {
				return nil, err
			}
		}
		cols = append(cols, catalog.Column{Name: name, Type: ct, Size: size})
		if p.isSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return &ParsedStmt{Kind: CreateTable, TableName: table, Columns: cols}, nil
}

func (p *Parser) parseDelete() (*ParsedStmt, error) {
	if err := p.expectKeyword("DELETE"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.identLike()
	if err != nil {
		return nil, err
	}
	stmt := &ParsedStmt{Kind: Delete, TableName: table}
	if p.isKeyword("WHERE") {
		p.advance()
		where, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

func (p *Parser) parseSelect() (*ParsedStmt, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	stmt := &ParsedStmt{Kind: Select}
	if p.isSymbol("*") {
		stmt.SelectAll = true
		p.advance()
	} else {
		for {
			col, err := p.identLike()
			if err != nil {
				return nil, err
			}
			stmt.ProjList = append(stmt.ProjList, col)
			if p.isSymbol(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.identLike()
	if err != nil {
		return nil, err
	}
	stmt.TableName = table

	if p.isKeyword("WHERE") {
		p.advance()
		where, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	if p.isKeyword("ORDER") {
		p.advance()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		col, err := p.identLike()
		if err != nil {
			return nil, err
		}
		stmt.HasOrderBy = true
		stmt.OrderBy = col
		if p.isKeyword("DESC") {
			stmt.OrderDesc = true
			p.advance()
		} else if p.isKeyword("ASC") {
			p.advance()
		}
	}
	if p.isKeyword("LIMIT") {
		p.advance()
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		stmt.HasLimit = true
		stmt.Limit = n
	}
	if p.isKeyword("OFFSET") {
		p.advance()
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		stmt.HasOffset = true
		stmt.Offset = n
	}
	return stmt, nil
}

func (p *Parser) number() (int, error) {
	if p.cur.Typ != tNumber {
		return 0, p.errf("expected number")
	}
	n, err := strconv.Atoi(p.cur.Val)
	if err != nil {
		return 0, p.errf("bad number %q", p.cur.Val)
	}
	p.advance()
	return n, nil
}

// ── WHERE expression grammar: orExpr := andExpr (OR andExpr)*
//    andExpr := notExpr (AND notExpr)*
//    notExpr := NOT notExpr | comparison
//    comparison := primary (op primary | BETWEEN primary AND primary | IN '(' list ')' | IS [NOT] NULL)?
//    primary := column | literal

func (p *Parser) parseOrExpr() (*predicate.Node, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("OR") {
		p.advance()
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = &predicate.Node{Kind: predicate.Binary, Op: predicate.Or, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAndExpr() (*predicate.Node, error) {
	left, err := p.parseNotExpr()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("AND") {
		p.advance()
		right, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		left = &predicate.Node{Kind: predicate.Binary, Op: predicate.And, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNotExpr() (*predicate.Node, error) {
	if p.isKeyword("NOT") {
		p.advance()
		operand, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		return &predicate.Node{Kind: predicate.Not, Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (*predicate.Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	switch {
	case p.isKeyword("BETWEEN"):
		p.advance()
		low, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("AND"); err != nil {
			return nil, err
		}
		high, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return predicate.BetweenNode(left, low, high), nil

	case p.isKeyword("IN"):
		p.advance()
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		var list []*predicate.Node
		for {
			v, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			list = append(list, v)
			if p.isSymbol(",") {
				p.advance()
				continue
			}
			break
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return &predicate.Node{Kind: predicate.In, Left: left, In: list}, nil

	case p.isKeyword("IS"):
		p.advance()
		negate := false
		if p.isKeyword("NOT") {
			negate = true
			p.advance()
		}
		if err := p.expectKeyword("NULL"); err != nil {
			return nil, err
		}
		return &predicate.Node{Kind: predicate.IsNull, Operand: left, Negate: negate}, nil
	}

	op, ok := p.comparisonOp()
	if !ok {
		return left, nil
	}
	p.advance()
	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return &predicate.Node{Kind: predicate.Binary, Op: op, Left: left, Right: right}, nil
}

func (p *Parser) comparisonOp() (predicate.Op, bool) {
	if p.cur.Typ != tSymbol {
		return 0, false
	}
	switch p.cur.Val {
	case "=":
		return predicate.Eq, true
	case "!=":
		return predicate.Ne, true
	case "<":
		return predicate.Lt, true
	case "<=":
		return predicate.Le, true
	case ">":
		return predicate.Gt, true
	case ">=":
		return predicate.Ge, true
	}
	return 0, false
}

func (p *Parser) parsePrimary() (*predicate.Node, error) {
	switch p.cur.Typ {
	case tNumber:
		v := p.cur.Val
		p.advance()
		if strings.Contains(v, ".") {
			// No float columns exist (see catalog.ColumnType); a decimal
			// literal can only ever fail comparisons cleanly, not silently
			// misround.
			return &predicate.Node{Kind: predicate.Literal, Value: v}, nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parser: bad integer literal %q", v)
		}
		return &predicate.Node{Kind: predicate.Literal, Value: n}, nil
	case tString:
		v := p.cur.Val
		p.advance()
		return &predicate.Node{Kind: predicate.Literal, Value: v}, nil
	case tIdent:
		v := p.cur.Val
		p.advance()
		return &predicate.Node{Kind: predicate.Column, Column: v}, nil
	}
	return nil, p.errf("expected column or literal")
}
