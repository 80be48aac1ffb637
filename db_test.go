package filedb

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) Handle {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.db")
	h, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { Close(h) })
	return h
}

func TestExecuteBadHandle(t *testing.T) {
	status, body := Execute(Handle{}, "select * from widgets")
	if status != StatusBadHandle {
		t.Fatalf("status = %d, want %d", status, StatusBadHandle)
	}
	var decoded struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.OK {
		t.Fatalf("bad handle reported ok")
	}
}

func TestExecuteParseErrorReportsStatus(t *testing.T) {
	h := openTestDB(t)
	status, _ := Execute(h, "select from")
	if status != StatusParseError {
		t.Fatalf("status = %d, want %d", status, StatusParseError)
	}
}

func TestExecuteCreateInsertSelectRoundTrips(t *testing.T) {
	h := openTestDB(t)

	status, body := Execute(h, "create table widgets (id int, name string(32))")
	if status != StatusOK {
		t.Fatalf("create: status=%d body=%s", status, body)
	}

	status, body = Execute(h, "insert into widgets 1 alice")
	if status != StatusOK {
		t.Fatalf("insert: status=%d body=%s", status, body)
	}
	var mutation struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal([]byte(body), &mutation); err != nil || !mutation.OK {
		t.Fatalf("insert body = %s, err = %v", body, err)
	}

	status, body = Execute(h, "select * from widgets")
	if status != StatusOK {
		t.Fatalf("select: status=%d body=%s", status, body)
	}
	var selected struct {
		OK   bool             `json:"ok"`
		Rows []map[string]any `json:"rows"`
	}
	if err := json.Unmarshal([]byte(body), &selected); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(selected.Rows) != 1 || selected.Rows[0]["name"] != "alice" {
		t.Fatalf("unexpected rows: %+v", selected.Rows)
	}
}

func TestExecuteInsertDuplicateKeyReportsNotOK(t *testing.T) {
	h := openTestDB(t)
	Execute(h, "create table widgets (id int, name string(32))")
	Execute(h, "insert into widgets 1 alice")

	status, body := Execute(h, "insert into widgets 1 eve")
	if status != StatusOK {
		t.Fatalf("status = %d, want %d (duplicate key is not a transport error)", status, StatusOK)
	}
	var mutation struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &mutation); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if mutation.OK || mutation.Error != "duplicate_key" {
		t.Fatalf("unexpected duplicate-insert body: %s", body)
	}
}

func TestExecuteDeleteByPrimaryKey(t *testing.T) {
	h := openTestDB(t)
	Execute(h, "create table widgets (id int, name string(32))")
	Execute(h, "insert into widgets 1 alice")
	Execute(h, "insert into widgets 2 bob")

	status, _ := Execute(h, "delete from widgets where id = 1")
	if status != StatusOK {
		t.Fatalf("delete status = %d", status)
	}

	_, body := Execute(h, "select * from widgets")
	var selected struct {
		Rows []map[string]any `json:"rows"`
	}
	if err := json.Unmarshal([]byte(body), &selected); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(selected.Rows) != 1 || selected.Rows[0]["name"] != "bob" {
		t.Fatalf("unexpected rows after delete: %+v", selected.Rows)
	}
}

func TestCloseThenExecuteReportsBadHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.db")
	h, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := Close(h); err != nil {
		t.Fatalf("Close: %v", err)
	}
	status, _ := Execute(h, "select * from widgets")
	if status != StatusBadHandle {
		t.Fatalf("status after close = %d, want %d", status, StatusBadHandle)
	}
}

func TestReopenExistingDatabaseSeesPriorTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.db")
	h, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	Execute(h, "create table widgets (id int, name string(32))")
	Execute(h, "insert into widgets 1 alice")
	if err := Close(h); err != nil {
		t.Fatalf("Close: %v", err)
	}

	h2, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer Close(h2)

	status, body := Execute(h2, "select * from widgets")
	if status != StatusOK {
		t.Fatalf("select after reopen: status=%d body=%s", status, body)
	}
	var selected struct {
		Rows []map[string]any `json:"rows"`
	}
	if err := json.Unmarshal([]byte(body), &selected); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(selected.Rows) != 1 || selected.Rows[0]["name"] != "alice" {
		t.Fatalf("unexpected rows after reopen: %+v", selected.Rows)
	}
}
