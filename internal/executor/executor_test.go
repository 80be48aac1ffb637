package executor

import (
	"path/filepath"
	"testing"

	"github.com/baiyangmu/db-tutorial-new/internal/catalog"
	"github.com/baiyangmu/db-tutorial-new/internal/pager"
	"github.com/baiyangmu/db-tutorial-new/internal/parser"
	"github.com/baiyangmu/db-tutorial-new/internal/result"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.db")
	p, err := pager.Open(path, nil)
	if err != nil {
		t.Fatalf("pager.Open: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	cat, err := catalog.InitNew(p)
	if err != nil {
		t.Fatalf("catalog.InitNew: %v", err)
	}
	return New(p, cat, catalog.NewSchemaTable())
}

func mustParse(t *testing.T, sql string) *parser.ParsedStmt {
	t.Helper()
	stmt, err := parser.Parse(sql)
	if err != nil {
		t.Fatalf("Parse(%q): %v", sql, err)
	}
	return stmt
}

func colVal(t *testing.T, r result.Row, name string) any {
	t.Helper()
	v, ok := r.Get(name)
	if !ok {
		t.Fatalf("row %+v has no column %q", r, name)
	}
	return v
}

func TestCreateTableThenInsertThenSelectAll(t *testing.T) {
	e := newTestExecutor(t)
	create := mustParse(t, "create table widgets (id int, name string(32))")
	if err := e.CreateTable(create.TableName, create.Columns); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	for _, sql := range []string{"insert into widgets 1 alice", "insert into widgets 2 bob"} {
		stmt := mustParse(t, sql)
		ok, err := e.Insert(stmt)
		if err != nil {
			t.Fatalf("Insert(%q): %v", sql, err)
		}
		if !ok {
			t.Fatalf("Insert(%q) reported not ok", sql)
		}
	}

	sel := mustParse(t, "select * from widgets")
	rows, err := e.Select(sel)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if colVal(t, rows[0], "name") != "alice" || colVal(t, rows[1], "name") != "bob" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestInsertDuplicateKeyReportsNotOK(t *testing.T) {
	e := newTestExecutor(t)
	create := mustParse(t, "create table widgets (id int, name string(32))")
	if err := e.CreateTable(create.TableName, create.Columns); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	ins := mustParse(t, "insert into widgets 1 alice")
	if ok, err := e.Insert(ins); err != nil || !ok {
		t.Fatalf("first Insert: ok=%v err=%v", ok, err)
	}
	dup := mustParse(t, "insert into widgets 1 eve")
	ok, err := e.Insert(dup)
	if err != nil {
		t.Fatalf("second Insert returned error instead of ok=false: %v", err)
	}
	if ok {
		t.Fatalf("duplicate insert should report ok=false")
	}
}

func TestSelectWithWhereUsesPointLookup(t *testing.T) {
	e := newTestExecutor(t)
	create := mustParse(t, "create table widgets (id int, name string(32))")
	if err := e.CreateTable(create.TableName, create.Columns); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	for _, sql := range []string{"insert into widgets 1 alice", "insert into widgets 2 bob", "insert into widgets 3 carl"} {
		stmt := mustParse(t, sql)
		if _, err := e.Insert(stmt); err != nil {
			t.Fatalf("Insert(%q): %v", sql, err)
		}
	}
	sel := mustParse(t, "select name from widgets where id = 2")
	rows, err := e.Select(sel)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 1 || colVal(t, rows[0], "name") != "bob" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestDeleteByPrimaryKey(t *testing.T) {
	e := newTestExecutor(t)
	create := mustParse(t, "create table widgets (id int, name string(32))")
	if err := e.CreateTable(create.TableName, create.Columns); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	for _, sql := range []string{"insert into widgets 1 alice", "insert into widgets 2 bob"} {
		stmt := mustParse(t, sql)
		if _, err := e.Insert(stmt); err != nil {
			t.Fatalf("Insert(%q): %v", sql, err)
		}
	}
	del := mustParse(t, "delete from widgets where id = 2")
	if _, err := e.Delete(del); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	rows, err := e.Select(mustParse(t, "select * from widgets"))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 1 || colVal(t, rows[0], "name") != "alice" {
		t.Fatalf("unexpected rows after delete: %+v", rows)
	}
}

func TestDeleteWithNonKeyPredicateIsNoop(t *testing.T) {
	e := newTestExecutor(t)
	create := mustParse(t, "create table widgets (id int, name string(32))")
	if err := e.CreateTable(create.TableName, create.Columns); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	stmt := mustParse(t, "insert into widgets 1 alice")
	if _, err := e.Insert(stmt); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	del := mustParse(t, "delete from widgets where name = 'alice'")
	ok, err := e.Delete(del)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !ok {
		t.Fatalf("unsupported-predicate delete should report success with no effect")
	}
	rows, err := e.Select(mustParse(t, "select * from widgets"))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("row should still be present, got %+v", rows)
	}
}

func TestSelectOrderByLimitOffset(t *testing.T) {
	e := newTestExecutor(t)
	create := mustParse(t, "create table widgets (id int, name string(32))")
	if err := e.CreateTable(create.TableName, create.Columns); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	for _, sql := range []string{
		"insert into widgets 3 carl",
		"insert into widgets 1 alice",
		"insert into widgets 2 bob",
	} {
		stmt := mustParse(t, sql)
		if _, err := e.Insert(stmt); err != nil {
			t.Fatalf("Insert(%q): %v", sql, err)
		}
	}
	sel := mustParse(t, "select * from widgets order by id desc limit 1 offset 1")
	rows, err := e.Select(sel)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 1 || colVal(t, rows[0], "name") != "bob" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
