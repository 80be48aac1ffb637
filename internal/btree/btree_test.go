package btree

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/baiyangmu/db-tutorial-new/internal/catalog"
	"github.com/baiyangmu/db-tutorial-new/internal/pager"
)

// smallSchema uses a 36-byte row, so a leaf holds 102 rows: the 103rd
// sequential insert splits a leaf, and a few hundred force an internal
// split, exercising the same boundary original_source exercises with its
// default row layout.
func smallSchema() catalog.Schema {
	return catalog.Schema{
		Name: "widgets",
		Columns: []catalog.Column{
			{Name: "id", Type: catalog.Int, Size: 4},
			{Name: "name", Type: catalog.String, Size: 32},
		},
	}
}

func openTestTable(t *testing.T) *Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.db")
	p, err := pager.Open(path, nil)
	if err != nil {
		t.Fatalf("pager.Open: %v", err)
	}
	t.Cleanup(func() { p.Close() })

	root := p.UnusedPageNum()
	if err := CreateRoot(p, root); err != nil {
		t.Fatalf("CreateRoot: %v", err)
	}
	return NewTable(p, root, smallSchema())
}

func rowFor(schema catalog.Schema, id int, name string) []byte {
	buf := make([]byte, schema.RowSize())
	for i := 0; i < 4; i++ {
		buf[i] = byte(id >> (8 * i))
	}
	copy(buf[4:], name)
	return buf
}

func TestInsertThenFindRoundTrips(t *testing.T) {
	table := openTestTable(t)
	row := rowFor(table.Schema, 7, "bolt")
	if err := table.Insert(7, row); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	cursor, err := table.Find(7)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	got, err := cursor.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if string(got[4:8]) != "bolt" {
		t.Fatalf("Value() = %q, want bolt", got[4:8])
	}
}

func TestInsertDuplicateKeyRejected(t *testing.T) {
	table := openTestTable(t)
	row := rowFor(table.Schema, 1, "a")
	if err := table.Insert(1, row); err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	if err := table.Insert(1, row); err != ErrDuplicateKey {
		t.Fatalf("second Insert error = %v, want ErrDuplicateKey", err)
	}
}

func TestAscendingScanAfterUnorderedInserts(t *testing.T) {
	table := openTestTable(t)
	keys := []int{50, 10, 30, 20, 40}
	for _, k := range keys {
		if err := table.Insert(uint32(k), rowFor(table.Schema, k, fmt.Sprintf("n%d", k))); err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
	}
	cursor, err := table.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	var seen []uint32
	for !cursor.EndOfTable {
		k, err := cursor.Key()
		if err != nil {
			t.Fatalf("Key: %v", err)
		}
		seen = append(seen, k)
		if err := cursor.Advance(); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	want := []uint32{10, 20, 30, 40, 50}
	if len(seen) != len(want) {
		t.Fatalf("scanned %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("scanned %v, want %v", seen, want)
		}
	}
}

func TestManyInsertsForceLeafAndInternalSplit(t *testing.T) {
	table := openTestTable(t)
	const n = 300
	for i := 0; i < n; i++ {
		if err := table.Insert(uint32(i), rowFor(table.Schema, i, fmt.Sprintf("r%d", i))); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	cursor, err := table.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	count := 0
	var last int64 = -1
	for !cursor.EndOfTable {
		k, err := cursor.Key()
		if err != nil {
			t.Fatalf("Key: %v", err)
		}
		if int64(k) <= last {
			t.Fatalf("scan not ascending: %d after %d", k, last)
		}
		last = int64(k)
		count++
		if err := cursor.Advance(); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	if count != n {
		t.Fatalf("scanned %d rows, want %d", count, n)
	}
}

func TestDeleteAllKeysLeavesEmptyRoot(t *testing.T) {
	table := openTestTable(t)
	const n = 40
	for i := 0; i < n; i++ {
		if err := table.Insert(uint32(i), rowFor(table.Schema, i, "x")); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	for i := 0; i < n; i++ {
		ok, err := table.Delete(uint32(i))
		if err != nil {
			t.Fatalf("Delete(%d): %v", i, err)
		}
		if !ok {
			t.Fatalf("Delete(%d) reported not found", i)
		}
	}
	cursor, err := table.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !cursor.EndOfTable {
		t.Fatalf("expected empty table after deleting all keys")
	}
}

func TestHasCellFalseForKeyPastEndOfFullLeaf(t *testing.T) {
	table := openTestTable(t)
	maxCells := LeafMaxCells(table.rowSize())
	for i := uint32(0); i < maxCells; i++ {
		if err := table.Insert(i, rowFor(table.Schema, int(i), "x")); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	// The leaf is now exactly full with no split triggered. A key greater
	// than every key present lands Find's cursor one past the last cell
	// (CellNum == numCells == maxCells) — HasCell must report false there
	// instead of a caller indexing past the leaf's cell array.
	cursor, err := table.Find(maxCells + 1)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	has, err := cursor.HasCell()
	if err != nil {
		t.Fatalf("HasCell: %v", err)
	}
	if has {
		t.Fatalf("HasCell() = true for a key past the end of a full leaf")
	}
}

func TestDeleteMissingKeyIsNoop(t *testing.T) {
	table := openTestTable(t)
	if err := table.Insert(1, rowFor(table.Schema, 1, "a")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	ok, err := table.Delete(99)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok {
		t.Fatalf("Delete(99) = true, want false (key absent)")
	}
}

func TestDeleteSubsetLeavesRemainderScannable(t *testing.T) {
	table := openTestTable(t)
	const n = 60
	for i := 0; i < n; i++ {
		if err := table.Insert(uint32(i), rowFor(table.Schema, i, "x")); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	for i := 0; i < n; i += 2 {
		if _, err := table.Delete(uint32(i)); err != nil {
			t.Fatalf("Delete(%d): %v", i, err)
		}
	}
	cursor, err := table.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	count := 0
	for !cursor.EndOfTable {
		k, err := cursor.Key()
		if err != nil {
			t.Fatalf("Key: %v", err)
		}
		if k%2 == 0 {
			t.Fatalf("found deleted even key %d still present", k)
		}
		count++
		if err := cursor.Advance(); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	if count != n/2 {
		t.Fatalf("scanned %d rows, want %d", count, n/2)
	}
}
