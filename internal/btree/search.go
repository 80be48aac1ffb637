package btree

// Start returns a cursor positioned at the first cell of the leftmost
// leaf — the starting point for a full ascending scan.
func (t *Table) Start() (*Cursor, error) {
	c, err := t.Find(0)
	if err != nil {
		return nil, err
	}
	page, err := t.Pager.GetPage(c.PageNum)
	if err != nil {
		return nil, err
	}
	c.EndOfTable = leafNumCells(page.Buf[:]) == 0
	return c, nil
}

// Find descends from the root to the leaf that contains key, or where it
// would be inserted if absent. The returned cursor's CellNum is the
// smallest index whose key is >= key (possibly == leafNumCells, meaning
// "append at the end").
func (t *Table) Find(key uint32) (*Cursor, error) {
	pageNum := t.RootPage
	for {
		page, err := t.Pager.GetPage(pageNum)
		if err != nil {
			return nil, err
		}
		if getNodeType(page.Buf[:]) == NodeLeaf {
			cellNum := leafFindCell(page.Buf[:], t.rowSize(), key)
			return &Cursor{Table: t, PageNum: pageNum, CellNum: cellNum}, nil
		}
		childIdx := internalFindChild(page.Buf[:], key)
		pageNum = internalChild(page.Buf[:], childIdx)
	}
}

// leafFindCell binary searches a leaf's cells for the smallest index whose
// key is >= key, short-circuiting on an exact match.
func leafFindCell(buf []byte, rowSize uint32, key uint32) uint32 {
	numCells := leafNumCells(buf)
	lo, hi := uint32(0), numCells
	for lo != hi {
		mid := (lo + hi) / 2
		midKey := leafKey(buf, rowSize, mid)
		if key == midKey {
			return mid
		}
		if key < midKey {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
