package btree

import "github.com/baiyangmu/db-tutorial-new/internal/pager"

// Insert adds key/rowData to the tree, splitting leaves and internal
// nodes as needed. Returns ErrDuplicateKey if key is already present.
func (t *Table) Insert(key uint32, rowData []byte) error {
	cursor, err := t.Find(key)
	if err != nil {
		return err
	}
	page, err := t.Pager.GetPage(cursor.PageNum)
	if err != nil {
		return err
	}
	if cursor.CellNum < leafNumCells(page.Buf[:]) {
		if leafKey(page.Buf[:], t.rowSize(), cursor.CellNum) == key {
			return ErrDuplicateKey
		}
	}
	return t.leafInsert(cursor, key, rowData)
}

// nodeMaxKey returns the largest key reachable under the node at pageNum.
func (t *Table) nodeMaxKey(pageNum uint32) (uint32, error) {
	page, err := t.Pager.GetPage(pageNum)
	if err != nil {
		return 0, err
	}
	if getNodeType(page.Buf[:]) == NodeLeaf {
		return leafKey(page.Buf[:], t.rowSize(), leafNumCells(page.Buf[:])-1), nil
	}
	return t.nodeMaxKey(internalRightChild(page.Buf[:]))
}

// leafInsert inserts {key, rowData} at cursor's position, splitting the
// leaf first if it is already full.
func (t *Table) leafInsert(cursor *Cursor, key uint32, rowData []byte) error {
	page, err := t.Pager.GetPage(cursor.PageNum)
	if err != nil {
		return err
	}
	rowSize := t.rowSize()
	numCells := leafNumCells(page.Buf[:])

	if numCells >= LeafMaxCells(rowSize) {
		return t.leafSplitInsert(cursor, key, rowData)
	}

	for i := numCells; i > cursor.CellNum; i-- {
		copyLeafCell(page.Buf[:], i, page.Buf[:], i-1, rowSize)
	}
	setLeafNumCells(page.Buf[:], numCells+1)
	setLeafKey(page.Buf[:], rowSize, cursor.CellNum, key)
	copy(leafValue(page.Buf[:], rowSize, cursor.CellNum), rowData)
	return nil
}

// leafSplitInsert splits a full leaf into two, inserting the new cell into
// whichever half it belongs in, then wires the new leaf into the parent
// (creating a new root if the leaf being split was the root).
func (t *Table) leafSplitInsert(cursor *Cursor, key uint32, rowData []byte) error {
	rowSize := t.rowSize()
	maxCells := LeafMaxCells(rowSize)
	rightCount := (maxCells + 1) / 2
	leftCount := maxCells + 1 - rightCount

	oldPageNum := cursor.PageNum
	oldPage, err := t.Pager.GetPage(oldPageNum)
	if err != nil {
		return err
	}
	oldMax, err := t.nodeMaxKey(oldPageNum)
	if err != nil {
		return err
	}

	newPageNum := t.Pager.UnusedPageNum()
	newPage, err := t.Pager.GetPage(newPageNum)
	if err != nil {
		return err
	}
	initializeLeaf(newPage.Buf[:])
	setNodeParent(newPage.Buf[:], nodeParent(oldPage.Buf[:]))
	setLeafNextLeaf(newPage.Buf[:], leafNextLeaf(oldPage.Buf[:]))
	setLeafNextLeaf(oldPage.Buf[:], newPageNum)

	// Snapshot the old leaf's cells before overwriting them in place.
	oldCells := make([]byte, pager.PageSize)
	for i := uint32(0); i < maxCells; i++ {
		copyLeafCell(oldCells, i, oldPage.Buf[:], i, rowSize)
	}

	for i := int32(maxCells); i >= 0; i-- {
		var dst []byte
		if uint32(i) >= leftCount {
			dst = newPage.Buf[:]
		} else {
			dst = oldPage.Buf[:]
		}
		idx := uint32(i) % leftCount

		switch {
		case uint32(i) == cursor.CellNum:
			setLeafKey(dst, rowSize, idx, key)
			copy(leafValue(dst, rowSize, idx), rowData)
		case uint32(i) > cursor.CellNum:
			copyLeafCell(dst, idx, oldCells, uint32(i)-1, rowSize)
		default:
			copyLeafCell(dst, idx, oldCells, uint32(i), rowSize)
		}
	}

	setLeafNumCells(oldPage.Buf[:], leftCount)
	setLeafNumCells(newPage.Buf[:], rightCount)

	if isRoot(oldPage.Buf[:]) {
		return t.createNewRoot(newPageNum)
	}

	parentPageNum := nodeParent(oldPage.Buf[:])
	newMax, err := t.nodeMaxKey(oldPageNum)
	if err != nil {
		return err
	}
	parentPage, err := t.Pager.GetPage(parentPageNum)
	if err != nil {
		return err
	}
	updateInternalKey(parentPage.Buf[:], oldMax, newMax)
	return t.internalNodeInsert(parentPageNum, newPageNum)
}

// createNewRoot splits the current root in two: its old contents move
// into a freshly allocated left sibling, rightChildPageNum becomes the
// right sibling, and the root page is reinitialized as an internal node
// with one key pointing between them.
func (t *Table) createNewRoot(rightChildPageNum uint32) error {
	rootPage, err := t.Pager.GetPage(t.RootPage)
	if err != nil {
		return err
	}
	rightChildPage, err := t.Pager.GetPage(rightChildPageNum)
	if err != nil {
		return err
	}
	leftChildPageNum := t.Pager.UnusedPageNum()
	leftChildPage, err := t.Pager.GetPage(leftChildPageNum)
	if err != nil {
		return err
	}

	rootWasInternal := getNodeType(rootPage.Buf[:]) == NodeInternal
	if rootWasInternal {
		initializeInternal(rightChildPage.Buf[:])
		initializeInternal(leftChildPage.Buf[:])
	}

	leftChildPage.Buf = rootPage.Buf
	setIsRoot(leftChildPage.Buf[:], false)

	if getNodeType(leftChildPage.Buf[:]) == NodeInternal {
		numKeys := internalNumKeys(leftChildPage.Buf[:])
		for i := uint32(0); i < numKeys; i++ {
			childPage, err := t.Pager.GetPage(internalChild(leftChildPage.Buf[:], i))
			if err != nil {
				return err
			}
			setNodeParent(childPage.Buf[:], leftChildPageNum)
		}
		childPage, err := t.Pager.GetPage(internalRightChild(leftChildPage.Buf[:]))
		if err != nil {
			return err
		}
		setNodeParent(childPage.Buf[:], leftChildPageNum)
	}

	initializeInternal(rootPage.Buf[:])
	setIsRoot(rootPage.Buf[:], true)
	setInternalNumKeys(rootPage.Buf[:], 1)
	setInternalChild(rootPage.Buf[:], 0, leftChildPageNum)
	leftMax, err := t.nodeMaxKey(leftChildPageNum)
	if err != nil {
		return err
	}
	setInternalKey(rootPage.Buf[:], 0, leftMax)
	setInternalRightChild(rootPage.Buf[:], rightChildPageNum)
	setNodeParent(leftChildPage.Buf[:], t.RootPage)
	setNodeParent(rightChildPage.Buf[:], t.RootPage)
	return nil
}

// internalNodeInsert wires childPageNum into parent's child list, in
// sorted position by the child's own max key, splitting the parent first
// if it is already full.
func (t *Table) internalNodeInsert(parentPageNum, childPageNum uint32) error {
	parentPage, err := t.Pager.GetPage(parentPageNum)
	if err != nil {
		return err
	}
	childMax, err := t.nodeMaxKey(childPageNum)
	if err != nil {
		return err
	}
	index := internalFindChild(parentPage.Buf[:], childMax)
	originalNumKeys := internalNumKeys(parentPage.Buf[:])

	if originalNumKeys >= InternalMaxKeys {
		return t.internalNodeSplitInsert(parentPageNum, childPageNum)
	}

	rightChildPageNum := internalRightChild(parentPage.Buf[:])
	if rightChildPageNum == pager.InvalidPageNum {
		setInternalRightChild(parentPage.Buf[:], childPageNum)
		return nil
	}

	rightMax, err := t.nodeMaxKey(rightChildPageNum)
	if err != nil {
		return err
	}
	setInternalNumKeys(parentPage.Buf[:], originalNumKeys+1)

	if childMax > rightMax {
		setInternalChild(parentPage.Buf[:], originalNumKeys, rightChildPageNum)
		setInternalKey(parentPage.Buf[:], originalNumKeys, rightMax)
		setInternalRightChild(parentPage.Buf[:], childPageNum)
	} else {
		for i := originalNumKeys; i > index; i-- {
			copyInternalCell(parentPage.Buf[:], i, parentPage.Buf[:], i-1)
		}
		setInternalChild(parentPage.Buf[:], index, childPageNum)
		setInternalKey(parentPage.Buf[:], index, childMax)
	}
	return nil
}

// internalNodeSplitInsert splits a full internal node, moving its upper
// half of children into a new sibling before inserting childPageNum into
// whichever of the two halves its key belongs in.
func (t *Table) internalNodeSplitInsert(parentPageNum, childPageNum uint32) error {
	oldPageNum := parentPageNum
	oldPage, err := t.Pager.GetPage(parentPageNum)
	if err != nil {
		return err
	}
	oldMax, err := t.nodeMaxKey(oldPageNum)
	if err != nil {
		return err
	}
	childMax, err := t.nodeMaxKey(childPageNum)
	if err != nil {
		return err
	}

	newPageNum := t.Pager.UnusedPageNum()
	splittingRoot := isRoot(oldPage.Buf[:])

	var parentPage *pager.Page
	if splittingRoot {
		if err := t.createNewRoot(newPageNum); err != nil {
			return err
		}
		parentPage, err = t.Pager.GetPage(t.RootPage)
		if err != nil {
			return err
		}
		oldPageNum = internalChild(parentPage.Buf[:], 0)
		oldPage, err = t.Pager.GetPage(oldPageNum)
		if err != nil {
			return err
		}
	} else {
		parentPage, err = t.Pager.GetPage(nodeParent(oldPage.Buf[:]))
		if err != nil {
			return err
		}
		newPage, err := t.Pager.GetPage(newPageNum)
		if err != nil {
			return err
		}
		initializeInternal(newPage.Buf[:])
	}

	curPageNum := internalRightChild(oldPage.Buf[:])
	curPage, err := t.Pager.GetPage(curPageNum)
	if err != nil {
		return err
	}
	if err := t.internalNodeInsert(newPageNum, curPageNum); err != nil {
		return err
	}
	setNodeParent(curPage.Buf[:], newPageNum)
	setInternalRightChild(oldPage.Buf[:], pager.InvalidPageNum)

	for i := int32(InternalMaxKeys - 1); i > int32(InternalMaxKeys/2); i-- {
		curPageNum = internalChild(oldPage.Buf[:], uint32(i))
		curPage, err = t.Pager.GetPage(curPageNum)
		if err != nil {
			return err
		}
		if err := t.internalNodeInsert(newPageNum, curPageNum); err != nil {
			return err
		}
		setNodeParent(curPage.Buf[:], newPageNum)
		setInternalNumKeys(oldPage.Buf[:], internalNumKeys(oldPage.Buf[:])-1)
	}

	lastChildIdx := internalNumKeys(oldPage.Buf[:]) - 1
	setInternalRightChild(oldPage.Buf[:], internalChild(oldPage.Buf[:], lastChildIdx))
	setInternalNumKeys(oldPage.Buf[:], lastChildIdx)

	maxAfterSplit, err := t.nodeMaxKey(oldPageNum)
	if err != nil {
		return err
	}

	destinationPageNum := newPageNum
	if childMax < maxAfterSplit {
		destinationPageNum = oldPageNum
	}
	if err := t.internalNodeInsert(destinationPageNum, childPageNum); err != nil {
		return err
	}
	childPage, err := t.Pager.GetPage(childPageNum)
	if err != nil {
		return err
	}
	setNodeParent(childPage.Buf[:], destinationPageNum)

	newOldMax, err := t.nodeMaxKey(oldPageNum)
	if err != nil {
		return err
	}
	updateInternalKey(parentPage.Buf[:], oldMax, newOldMax)

	if !splittingRoot {
		oldParent := nodeParent(oldPage.Buf[:])
		newPage, err := t.Pager.GetPage(newPageNum)
		if err != nil {
			return err
		}
		setNodeParent(newPage.Buf[:], oldParent)
		if err := t.internalNodeInsert(oldParent, newPageNum); err != nil {
			return err
		}
	}
	return nil
}
