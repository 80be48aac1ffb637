package parser

import (
	"testing"

	"github.com/baiyangmu/db-tutorial-new/internal/predicate"
)

func TestParseSelectStar(t *testing.T) {
	stmt, err := Parse("select * from widgets")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if stmt.Kind != Select || !stmt.SelectAll || stmt.TableName != "widgets" {
		t.Fatalf("unexpected stmt: %+v", stmt)
	}
}

func TestParseSelectProjectionList(t *testing.T) {
	stmt, err := Parse("select id, name from widgets")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"id", "name"}
	if len(stmt.ProjList) != len(want) || stmt.ProjList[0] != want[0] || stmt.ProjList[1] != want[1] {
		t.Fatalf("ProjList = %v, want %v", stmt.ProjList, want)
	}
}

func TestParseSelectWherePointLookup(t *testing.T) {
	stmt, err := Parse("select * from widgets where id = 2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if stmt.Where == nil || stmt.Where.Kind != predicate.Binary || stmt.Where.Op != predicate.Eq {
		t.Fatalf("Where = %+v, want a single Eq node", stmt.Where)
	}
	if stmt.Where.Left.Column != "id" {
		t.Fatalf("Where.Left.Column = %q, want id", stmt.Where.Left.Column)
	}
}

func TestParseSelectOrderByLimitOffset(t *testing.T) {
	stmt, err := Parse("select * from widgets order by id desc limit 10 offset 5")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !stmt.HasOrderBy || stmt.OrderBy != "id" || !stmt.OrderDesc {
		t.Fatalf("order by not parsed correctly: %+v", stmt)
	}
	if !stmt.HasLimit || stmt.Limit != 10 || !stmt.HasOffset || stmt.Offset != 5 {
		t.Fatalf("limit/offset not parsed correctly: %+v", stmt)
	}
}

func TestParseWhereAndOr(t *testing.T) {
	stmt, err := Parse("select * from widgets where id = 1 and name = 'bolt'")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if stmt.Where.Kind != predicate.Binary || stmt.Where.Op != predicate.And {
		t.Fatalf("top-level node should be AND, got %+v", stmt.Where)
	}

	stmt, err = Parse("select * from widgets where id = 1 or id = 2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if stmt.Where.Kind != predicate.Binary || stmt.Where.Op != predicate.Or {
		t.Fatalf("top-level node should be OR, got %+v", stmt.Where)
	}
}

func TestParseInsert(t *testing.T) {
	stmt, err := Parse("insert into widgets 1 bolt")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if stmt.Kind != Insert || stmt.TableName != "widgets" {
		t.Fatalf("unexpected stmt: %+v", stmt)
	}
	want := []string{"1", "bolt"}
	if len(stmt.InsertValues) != 2 || stmt.InsertValues[0] != want[0] || stmt.InsertValues[1] != want[1] {
		t.Fatalf("InsertValues = %v, want %v", stmt.InsertValues, want)
	}
}

func TestParseDeleteWhere(t *testing.T) {
	stmt, err := Parse("delete from widgets where id = 2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if stmt.Kind != Delete || stmt.Where == nil {
		t.Fatalf("unexpected stmt: %+v", stmt)
	}
}

func TestParseUse(t *testing.T) {
	stmt, err := Parse("use widgets")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if stmt.Kind != Use || stmt.TableName != "widgets" {
		t.Fatalf("unexpected stmt: %+v", stmt)
	}
}

func TestParseCreateTable(t *testing.T) {
	stmt, err := Parse("create table widgets (id int, name string(64))")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if stmt.Kind != CreateTable || len(stmt.Columns) != 2 {
		t.Fatalf("unexpected stmt: %+v", stmt)
	}
	if stmt.Columns[1].Size != 64 {
		t.Fatalf("explicit column size not honored: %+v", stmt.Columns[1])
	}
}

func TestParseBetweenAndIn(t *testing.T) {
	stmt, err := Parse("select * from widgets where id between 1 and 10")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if stmt.Where.Kind != predicate.Between {
		t.Fatalf("expected Between node, got %+v", stmt.Where)
	}

	stmt, err = Parse("select * from widgets where id in (1, 2, 3)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if stmt.Where.Kind != predicate.In || len(stmt.Where.In) != 3 {
		t.Fatalf("expected In node with 3 candidates, got %+v", stmt.Where)
	}
}

func TestParseUnrecognizedStatement(t *testing.T) {
	if _, err := Parse("frobnicate widgets"); err == nil {
		t.Fatalf("expected error for unrecognized statement")
	}
}
