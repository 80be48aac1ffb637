// Package executor implements the query executor: statement dispatch,
// the point-lookup/full-scan plan choice, predicate evaluation via
// internal/predicate, projection, and ORDER BY/LIMIT/OFFSET.
//
// What: one Executor per open connection, holding the pager, the
// catalog, the schema table, and whichever table is currently active
// (spec §4.8's Table-handle state machine: OPEN_NO_ACTIVE ↔ OPEN_ACTIVE).
// How: each ParsedStmt kind gets its own method; CREATE TABLE follows the
// durability ordering from spec §5 explicitly (flush page 0, then the
// schema blob, then page 0 again).
package executor

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/baiyangmu/db-tutorial-new/internal/btree"
	"github.com/baiyangmu/db-tutorial-new/internal/catalog"
	"github.com/baiyangmu/db-tutorial-new/internal/pager"
	"github.com/baiyangmu/db-tutorial-new/internal/parser"
	"github.com/baiyangmu/db-tutorial-new/internal/predicate"
	"github.com/baiyangmu/db-tutorial-new/internal/result"
	"github.com/baiyangmu/db-tutorial-new/internal/row"
)

// Executor is the per-connection statement runner.
type Executor struct {
	Pager   *pager.Pager
	Catalog *catalog.Catalog
	Schemas *catalog.SchemaTable

	active     *btree.Table
	activeName string
}

// New wraps an already-opened pager/catalog/schema-table triple.
func New(p *pager.Pager, cat *catalog.Catalog, schemas *catalog.SchemaTable) *Executor {
	return &Executor{Pager: p, Catalog: cat, Schemas: schemas}
}

// ActiveTable reports the name of the currently selected table, or "" if
// none is selected yet (OPEN_NO_ACTIVE).
func (e *Executor) ActiveTable() string { return e.activeName }

// ActiveBtree exposes the currently selected table's B+ tree, for the
// `.btree`/`.constants` REPL meta-commands. Returns nil if no table is
// selected.
func (e *Executor) ActiveBtree() *btree.Table { return e.active }

// Use switches the executor's active table to name, loading its root page
// and schema from the catalog.
func (e *Executor) Use(name string) error {
	idx := e.Catalog.Find(name)
	if idx < 0 {
		return fmt.Errorf("executor: table %q not found", name)
	}
	entry := e.Catalog.Entries[idx]
	schema, ok := e.Schemas.Get(int(entry.SchemaIndex))
	if !ok {
		return fmt.Errorf("executor: table %q has no schema installed", name)
	}
	e.active = btree.NewTable(e.Pager, entry.RootPageNum, schema)
	e.activeName = name
	return nil
}

// switchIfNamed implements the "switch to the target table if named"
// rule shared by INSERT, DELETE, and SELECT.
func (e *Executor) switchIfNamed(name string) error {
	if name == "" || name == e.activeName {
		return nil
	}
	return e.Use(name)
}

// CreateTable defines a new table: validates the schema, allocates a
// fresh root leaf, and persists both the catalog entry and the schema
// blob in the order spec §5 requires.
func (e *Executor) CreateTable(name string, cols []catalog.Column) error {
	if e.Catalog.Find(name) >= 0 {
		return fmt.Errorf("executor: table %q already exists", name)
	}
	if len(cols) == 0 {
		return fmt.Errorf("executor: table %q has no columns", name)
	}
	if cols[0].Type != catalog.Int {
		return fmt.Errorf("executor: column 0 of table %q must be INT", name)
	}

	schema := catalog.Schema{Name: name, Columns: cols}
	schemaIndex, err := e.Schemas.Install(schema)
	if err != nil {
		return err
	}

	rootPage := e.Pager.UnusedPageNum()
	if err := btree.CreateRoot(e.Pager, rootPage); err != nil {
		return err
	}

	if _, err := e.Catalog.AddTable(name, rootPage, uint32(schemaIndex)); err != nil {
		return err
	}

	// Durability ordering (spec §5): page 0 flushed with the *old* schema
	// pointer before the blob is touched; then the blob pages are written,
	// and page 0 is flushed again last with the new pointer. When the blob
	// goes to newly appended pages, a crash mid-write leaves a reader
	// seeing the old blob; when SaveSchemas rewrites the old pages in place,
	// a crash mid-write can leave them partly rewritten.
	if err := e.Catalog.Flush(e.Pager); err != nil {
		return err
	}
	if err := catalog.SaveSchemas(e.Pager, e.Catalog, e.Schemas); err != nil {
		return err
	}
	if err := e.Catalog.Flush(e.Pager); err != nil {
		return err
	}
	return nil
}

// Insert encodes stmt's values and adds a row to the target table.
// Returns ok=false (not an error) on a duplicate key, matching the
// library API's {"ok":false,"error":"duplicate_key"} contract.
func (e *Executor) Insert(stmt *parser.ParsedStmt) (ok bool, err error) {
	if err := e.switchIfNamed(stmt.TableName); err != nil {
		return false, err
	}
	if e.active == nil {
		return false, fmt.Errorf("executor: no table selected")
	}
	schema := e.active.Schema
	if len(schema.Columns) == 0 || schema.Columns[0].Type != catalog.Int {
		return false, fmt.Errorf("executor: column 0 must be INT")
	}
	if len(stmt.InsertValues) == 0 {
		return false, fmt.Errorf("executor: insert requires at least a key value")
	}
	if _, err := strconv.ParseInt(stmt.InsertValues[0], 10, 32); err != nil {
		return false, fmt.Errorf("executor: invalid key literal %q: %w", stmt.InsertValues[0], err)
	}

	buf := make([]byte, schema.RowSize())
	row.Serialize(schema, stmt.InsertValues, buf)
	key := row.Key(schema, buf)

	if err := e.active.Insert(key, buf); err != nil {
		if err == btree.ErrDuplicateKey {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete supports only "WHERE col0 = literal" (spec §6: only primary-key
// delete). Any other predicate shape, or no predicate at all, reports
// success with no effect rather than an error.
func (e *Executor) Delete(stmt *parser.ParsedStmt) (deleted bool, err error) {
	if err := e.switchIfNamed(stmt.TableName); err != nil {
		return false, err
	}
	if e.active == nil {
		return false, fmt.Errorf("executor: no table selected")
	}
	schema := e.active.Schema
	key, ok := pointLookupKey(schema, stmt.Where)
	if !ok {
		return true, nil
	}
	return e.active.Delete(key)
}

// Select runs a SELECT, choosing between a single point lookup and a
// full ascending scan, then sorting and paginating the survivors.
func (e *Executor) Select(stmt *parser.ParsedStmt) ([]result.Row, error) {
	if err := e.switchIfNamed(stmt.TableName); err != nil {
		return nil, err
	}
	if e.active == nil {
		return nil, fmt.Errorf("executor: no table selected")
	}
	schema := e.active.Schema

	var survivors [][]byte
	if key, ok := pointLookupKey(schema, stmt.Where); ok {
		cursor, err := e.active.Find(key)
		if err != nil {
			return nil, err
		}
		if found, err := cursorExactMatch(cursor, key); err != nil {
			return nil, err
		} else if found {
			r, err := cursor.Value()
			if err != nil {
				return nil, err
			}
			pass, err := evalWhere(schema, r, stmt.Where)
			if err != nil {
				return nil, err
			}
			if pass {
				survivors = append(survivors, append([]byte(nil), r...))
			}
		}
	} else {
		cursor, err := e.active.Start()
		if err != nil {
			return nil, err
		}
		for !cursor.EndOfTable {
			r, err := cursor.Value()
			if err != nil {
				return nil, err
			}
			pass, err := evalWhere(schema, r, stmt.Where)
			if err != nil {
				return nil, err
			}
			if pass {
				survivors = append(survivors, append([]byte(nil), r...))
			}
			if err := cursor.Advance(); err != nil {
				return nil, err
			}
		}
	}

	if stmt.HasOrderBy {
		idx := schema.ColIndex(stmt.OrderBy)
		if idx < 0 {
			return nil, fmt.Errorf("executor: unknown ORDER BY column %q", stmt.OrderBy)
		}
		sort.SliceStable(survivors, func(i, j int) bool {
			vi := row.GetValue(schema, survivors[i], idx)
			vj := row.GetValue(schema, survivors[j], idx)
			if stmt.OrderDesc {
				return lessValue(vj, vi)
			}
			return lessValue(vi, vj)
		})
	}

	if stmt.HasOffset && stmt.Offset < len(survivors) {
		survivors = survivors[stmt.Offset:]
	} else if stmt.HasOffset {
		survivors = nil
	}
	if stmt.HasLimit && stmt.Limit < len(survivors) {
		survivors = survivors[:stmt.Limit]
	}

	return project(schema, survivors, stmt), nil
}

func evalWhere(schema catalog.Schema, r []byte, where *predicate.Node) (bool, error) {
	if where == nil {
		return true, nil
	}
	return predicate.Eval(schema, r, where)
}

func cursorExactMatch(cursor *btree.Cursor, key uint32) (bool, error) {
	has, err := cursor.HasCell()
	if err != nil {
		return false, err
	}
	if !has {
		return false, nil
	}
	k, err := cursor.Key()
	if err != nil {
		return false, err
	}
	return k == key, nil
}

// pointLookupKey reports whether where contains, somewhere in a top-level
// chain of ANDs, an equality between the table's INT primary key (column
// 0) and a literal — and if so, that literal's value. Only an equality
// reached from the root through AND nodes counts; one under an OR is
// ignored, since the OR can make the predicate true without column 0
// matching, but an OR conjunct elsewhere in the chain does not stop
// another conjunct from enabling point lookup.
func pointLookupKey(schema catalog.Schema, where *predicate.Node) (uint32, bool) {
	if where == nil || len(schema.Columns) == 0 {
		return 0, false
	}
	col0 := schema.Columns[0].Name
	return findPointLookupKey(col0, where)
}

func findPointLookupKey(col0 string, n *predicate.Node) (uint32, bool) {
	if n.Kind != predicate.Binary {
		return 0, false
	}
	if n.Op == predicate.And {
		if k, ok := findPointLookupKey(col0, n.Left); ok {
			return k, true
		}
		return findPointLookupKey(col0, n.Right)
	}
	if n.Op != predicate.Eq {
		return 0, false
	}
	if k, ok := equalityKey(col0, n.Left, n.Right); ok {
		return k, true
	}
	return equalityKey(col0, n.Right, n.Left)
}

func equalityKey(col0 string, maybeCol, maybeLit *predicate.Node) (uint32, bool) {
	if maybeCol.Kind != predicate.Column || maybeCol.Column != col0 {
		return 0, false
	}
	if maybeLit.Kind != predicate.Literal {
		return 0, false
	}
	switch v := maybeLit.Value.(type) {
	case int64:
		return uint32(v), true
	case int32:
		return uint32(v), true
	case int:
		return uint32(v), true
	}
	return 0, false
}

func lessValue(a, b any) bool {
	switch av := a.(type) {
	case int32:
		if bv, ok := b.(int32); ok {
			return av < bv
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return av < bv
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	}
	return false
}

// project builds the JSON-ready rows in projection order, honoring
// SelectAll or an explicit projection list.
func project(schema catalog.Schema, rows [][]byte, stmt *parser.ParsedStmt) []result.Row {
	cols := stmt.ProjList
	if stmt.SelectAll || len(cols) == 0 {
		cols = make([]string, len(schema.Columns))
		for i, c := range schema.Columns {
			cols[i] = c.Name
		}
	}
	out := make([]result.Row, len(rows))
	for i, r := range rows {
		rr := result.Row{Cols: make([]string, 0, len(cols)), Vals: make([]any, 0, len(cols))}
		for _, name := range cols {
			idx := schema.ColIndex(name)
			if idx < 0 {
				continue
			}
			rr.Cols = append(rr.Cols, name)
			rr.Vals = append(rr.Vals, row.GetValue(schema, r, idx))
		}
		out[i] = rr
	}
	return out
}
