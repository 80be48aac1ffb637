package btree

import (
	"github.com/baiyangmu/db-tutorial-new/internal/catalog"
	"github.com/baiyangmu/db-tutorial-new/internal/pager"
)

// Table is the runtime handle for one table's B+ tree: a pager shared with
// every other table and the catalog, the page number of this tree's root,
// and the schema that gives row_size meaning to leaf cells.
type Table struct {
	Pager    *pager.Pager
	RootPage uint32
	Schema   catalog.Schema
}

// NewTable wraps an existing root page (read from the catalog at open
// time) in a Table handle.
func NewTable(p *pager.Pager, rootPage uint32, schema catalog.Schema) *Table {
	return &Table{Pager: p, RootPage: rootPage, Schema: schema}
}

// CreateRoot initializes rootPage as a brand-new, empty leaf root — the
// state a freshly CREATE TABLE'd tree starts in.
func CreateRoot(p *pager.Pager, rootPage uint32) error {
	page, err := p.GetPage(rootPage)
	if err != nil {
		return err
	}
	initializeLeaf(page.Buf[:])
	setIsRoot(page.Buf[:], true)
	return nil
}

func (t *Table) rowSize() uint32 { return t.Schema.RowSize() }
