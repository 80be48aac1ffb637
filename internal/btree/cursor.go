package btree

// Cursor positions a read or write at one cell of one leaf page, with
// EndOfTable marking the one-past-the-last position. Advance follows the
// leaf sibling chain (leaf_next_leaf), so a full scan never has to touch
// an internal node.
type Cursor struct {
	Table      *Table
	PageNum    uint32
	CellNum    uint32
	EndOfTable bool
}

// HasCell reports whether the cursor is positioned at an actual cell,
// rather than one-past-the-last cell of its leaf (the position Find
// returns for a key that would sort after every key already in a full
// leaf). Key and Value are only valid to call when this returns true.
func (c *Cursor) HasCell() (bool, error) {
	page, err := c.Table.Pager.GetPage(c.PageNum)
	if err != nil {
		return false, err
	}
	return c.CellNum < leafNumCells(page.Buf[:]), nil
}

// Key returns the key of the cell the cursor is positioned at.
func (c *Cursor) Key() (uint32, error) {
	page, err := c.Table.Pager.GetPage(c.PageNum)
	if err != nil {
		return 0, err
	}
	return leafKey(page.Buf[:], c.Table.rowSize(), c.CellNum), nil
}

// Value returns the row bytes of the cell the cursor is positioned at.
// The returned slice aliases the page buffer; callers that need to retain
// it across further cursor movement must copy it.
func (c *Cursor) Value() ([]byte, error) {
	page, err := c.Table.Pager.GetPage(c.PageNum)
	if err != nil {
		return nil, err
	}
	return leafValue(page.Buf[:], c.Table.rowSize(), c.CellNum), nil
}

// Advance moves the cursor to the next cell, crossing into the next leaf
// via its sibling pointer when the current leaf is exhausted.
func (c *Cursor) Advance() error {
	page, err := c.Table.Pager.GetPage(c.PageNum)
	if err != nil {
		return err
	}
	c.CellNum++
	if c.CellNum >= leafNumCells(page.Buf[:]) {
		next := leafNextLeaf(page.Buf[:])
		if next == 0 {
			c.EndOfTable = true
		} else {
			c.PageNum = next
			c.CellNum = 0
		}
	}
	return nil
}
