package btree

import (
	"fmt"
	"io"
	"strings"
)

// Constants reports the table's fixed layout widths, for the `.constants`
// REPL meta-command (ported from original_source's print_constants).
type Constants struct {
	RowSize          uint32
	LeafNodeCellSize uint32
	LeafNodeMaxCells uint32
}

// Describe computes t's Constants.
func (t *Table) Describe() Constants {
	rowSize := t.rowSize()
	return Constants{
		RowSize:          rowSize,
		LeafNodeCellSize: leafCellSize(rowSize),
		LeafNodeMaxCells: LeafMaxCells(rowSize),
	}
}

// PrintTree writes an indented dump of the subtree rooted at pageNum to w,
// ported from original_source's print_tree: one "- leaf (size N)" or
// "- internal (size N)" line per node, leaf keys listed directly, internal
// nodes recursing into each child before printing its separating key.
func (t *Table) PrintTree(w io.Writer, pageNum uint32, level int) error {
	page, err := t.Pager.GetPage(pageNum)
	if err != nil {
		return err
	}
	indent := strings.Repeat("  ", level)

	switch getNodeType(page.Buf[:]) {
	case NodeLeaf:
		numCells := leafNumCells(page.Buf[:])
		fmt.Fprintf(w, "%s- leaf (size %d)\n", indent, numCells)
		for i := uint32(0); i < numCells; i++ {
			fmt.Fprintf(w, "%s  - %d\n", indent, leafKey(page.Buf[:], t.rowSize(), i))
		}
	case NodeInternal:
		numKeys := internalNumKeys(page.Buf[:])
		fmt.Fprintf(w, "%s- internal (size %d)\n", indent, numKeys)
		for i := uint32(0); i < numKeys; i++ {
			child := internalChild(page.Buf[:], i)
			if err := t.PrintTree(w, child, level+1); err != nil {
				return err
			}
			fmt.Fprintf(w, "%s  - key %d\n", indent, internalKey(page.Buf[:], i))
		}
		if numKeys > 0 {
			if err := t.PrintTree(w, internalRightChild(page.Buf[:]), level+1); err != nil {
				return err
			}
		}
	}
	return nil
}
