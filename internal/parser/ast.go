package parser

import (
	"github.com/baiyangmu/db-tutorial-new/internal/catalog"
	"github.com/baiyangmu/db-tutorial-new/internal/predicate"
)

// Kind is the statement variety a ParsedStmt carries.
type Kind int

const (
	Unknown Kind = iota
	Select
	Insert
	Delete
	Use
	CreateTable
)

// ParsedStmt is the executor's sole input from this package (spec §6.3):
// a table name, a projection list, an optional predicate tree, optional
// ORDER BY/LIMIT/OFFSET, and statement-specific payloads (insert values,
// column definitions).
type ParsedStmt struct {
	Kind Kind

	TableName string

	ProjList  []string
	SelectAll bool
	Where     *predicate.Node

	HasOrderBy bool
	OrderBy    string
	OrderDesc  bool

	HasLimit  bool
	Limit     int
	HasOffset bool
	Offset    int

	InsertTable  string
	InsertValues []string

	Columns []catalog.Column
}
