// Package predicate evaluates the WHERE-clause expression tree the parser
// produces against one decoded row.
//
// What: a small expression AST (column reference, literal, unary/binary
// operator, BETWEEN, IN, IS [NOT] NULL) plus an Eval function that walks
// it against a catalog.Schema/row pair.
// How: same shape as a hand-written recursive-descent evaluator would
// take — a type switch over Node, numeric-vs-lexicographic comparison
// inferred from the operand types, and short-circuit AND/OR.
// Why: no column in this store is ever NULL (see catalog.ColumnType), so
// IS NULL/IS NOT NULL collapse to constants instead of a tri-state engine.
package predicate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/baiyangmu/db-tutorial-new/internal/catalog"
	"github.com/baiyangmu/db-tutorial-new/internal/row"
)

// Op is a comparison or boolean operator.
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
)

// Node is one expression tree node. Exactly one of the typed fields is
// meaningful, selected by Kind.
type Node struct {
	Kind NodeKind

	Column string // Kind == Column
	Value  any    // Kind == Literal: int64, string, or int64 unix seconds

	Op          Op // Kind == Binary
	Left, Right *Node

	Operand *Node // Kind == Not, Kind == IsNull

	Low, High *Node // Kind == Between

	In []*Node // Kind == In

	Negate bool // Kind == IsNull: true means IS NOT NULL
}

// NodeKind discriminates Node's variants.
type NodeKind int

const (
	Column NodeKind = iota
	Literal
	Binary
	Not
	Between
	In
	IsNull
)

// Eval evaluates n against row under schema, returning a bool. Comparisons
// across column/literal types are coerced per compare's rule rather than
// erroring (§4.7, §8 property 7: total over any two decoded values).
func Eval(schema catalog.Schema, rowBuf []byte, n *Node) (bool, error) {
	v, err := evalValue(schema, rowBuf, n)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("predicate: expression did not evaluate to a boolean (got %T)", v)
	}
	return b, nil
}

func evalValue(schema catalog.Schema, rowBuf []byte, n *Node) (any, error) {
	switch n.Kind {
	case Literal:
		return n.Value, nil

	case Column:
		idx := schema.ColIndex(n.Column)
		if idx < 0 {
			return nil, fmt.Errorf("predicate: unknown column %q", n.Column)
		}
		return row.GetValue(schema, rowBuf, idx), nil

	case Not:
		b, err := Eval(schema, rowBuf, n.Operand)
		if err != nil {
			return nil, err
		}
		return !b, nil

	case IsNull:
		// No column value is ever NULL in this store, so IS NULL is always
		// false and IS NOT NULL is always true.
		return n.Negate, nil

	case Between:
		operand, err := evalValue(schema, rowBuf, n.Left)
		if err != nil {
			return nil, err
		}
		low, err := evalValue(schema, rowBuf, n.Low)
		if err != nil {
			return nil, err
		}
		high, err := evalValue(schema, rowBuf, n.High)
		if err != nil {
			return nil, err
		}
		ge, err := compare(operand, low)
		if err != nil {
			return nil, err
		}
		le, err := compare(operand, high)
		if err != nil {
			return nil, err
		}
		return ge >= 0 && le <= 0, nil

	case In:
		target, err := evalValue(schema, rowBuf, n.Left)
		if err != nil {
			return nil, err
		}
		for _, candidate := range n.In {
			cv, err := evalValue(schema, rowBuf, candidate)
			if err != nil {
				return nil, err
			}
			cmp, err := compare(target, cv)
			if err == nil && cmp == 0 {
				return true, nil
			}
		}
		return false, nil

	case Binary:
		return evalBinary(schema, rowBuf, n)
	}
	return nil, fmt.Errorf("predicate: unknown node kind %d", n.Kind)
}

func evalBinary(schema catalog.Schema, rowBuf []byte, n *Node) (any, error) {
	if n.Op == And || n.Op == Or {
		l, err := Eval(schema, rowBuf, n.Left)
		if err != nil {
			return nil, err
		}
		if n.Op == And && !l {
			return false, nil
		}
		if n.Op == Or && l {
			return true, nil
		}
		return Eval(schema, rowBuf, n.Right)
	}

	lv, err := evalValue(schema, rowBuf, n.Left)
	if err != nil {
		return nil, err
	}
	rv, err := evalValue(schema, rowBuf, n.Right)
	if err != nil {
		return nil, err
	}
	cmp, err := compare(lv, rv)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case Eq:
		return cmp == 0, nil
	case Ne:
		return cmp != 0, nil
	case Lt:
		return cmp < 0, nil
	case Le:
		return cmp <= 0, nil
	case Gt:
		return cmp > 0, nil
	case Ge:
		return cmp >= 0, nil
	}
	return nil, fmt.Errorf("predicate: unknown binary operator %d", n.Op)
}

// compare orders a and b per §4.7: numeric comparison when both sides are
// numeric, each being an INT/TIMESTAMP column value or a string that
// parses as an integer; trimmed lexicographic string comparison otherwise,
// including an INT value against a non-numeric string. It never errors — every pair
// of decoded values is comparable one way or the other.
func compare(a, b any) (int, error) {
	af, aIsNum := asInt64(a)
	bf, bIsNum := asInt64(b)

	if !aIsNum {
		if n, ok := parseIntString(a); ok {
			af, aIsNum = n, true
		}
	}
	if !bIsNum {
		if n, ok := parseIntString(b); ok {
			bf, bIsNum = n, true
		}
	}

	if aIsNum && bIsNum {
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}

	as := strings.TrimSpace(stringOf(a))
	bs := strings.TrimSpace(stringOf(b))
	switch {
	case as < bs:
		return -1, nil
	case as > bs:
		return 1, nil
	default:
		return 0, nil
	}
}

// parseIntString reports whether v is a string whose trimmed contents
// parse as a base-10 integer, and that integer's value.
func parseIntString(v any) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// stringOf renders v as text for the lexicographic fallback, so an
// INT-vs-non-numeric-string comparison (e.g. `where code > 9`) still has a
// total ordering instead of erroring.
func stringOf(v any) string {
	switch x := v.(type) {
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case int:
		return int64(x), true
	}
	return 0, false
}

// BetweenNode builds a Between node meaning Low <= Operand <= High.
func BetweenNode(operand, low, high *Node) *Node {
	return &Node{Kind: Between, Left: operand, Low: low, High: high}
}
