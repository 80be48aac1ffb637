// Package btree implements the B+ tree that stores one table's rows: leaf
// and internal node formats, point lookup, ordered scan via sibling
// links, insertion with leaf/internal split, and deletion with underflow
// handling.
//
// The node codec (this file) is a set of pure byte-offset accessors over a
// page buffer, mirroring the "page is just an untyped buffer plus typed
// accessor methods" approach called for in spec §9 instead of aliased
// pointers. Leaf cell accessors take an explicit rowSize because row width
// is a runtime property of the owning table's schema; internal node
// accessors never need it.
package btree

import (
	"encoding/binary"

	"github.com/baiyangmu/db-tutorial-new/internal/pager"
)

// NodeType tags a page as an internal routing node or a leaf that holds
// rows. The zero value is Internal, matching the enum order of the
// original C source (NODE_INTERNAL, NODE_LEAF).
type NodeType uint8

const (
	NodeInternal NodeType = iota
	NodeLeaf
)

// Common node header: {node_type: 1B, is_root: 1B, parent_page: 4B}.
const (
	nodeTypeOff     = 0
	isRootOff       = 1
	parentPointerOff = 2
	commonHeaderSize = 6
)

// Internal node header: {common, num_keys: 4B, right_child: 4B}, followed
// by num_keys cells of {child_page: 4B, key: 4B}.
const (
	internalNumKeysOff    = commonHeaderSize
	internalRightChildOff = internalNumKeysOff + 4
	internalHeaderSize    = internalRightChildOff + 4

	internalKeySize   = 4
	internalChildSize = 4
	internalCellSize  = internalChildSize + internalKeySize

	// InternalMaxKeys is deliberately small to exercise splits under test.
	InternalMaxKeys = 3
)

// Leaf node header: {common, num_cells: 4B, next_leaf: 4B}, followed by
// num_cells cells of {key: 4B, row: row_size}.
const (
	leafNumCellsOff = commonHeaderSize
	leafNextLeafOff = leafNumCellsOff + 4
	leafHeaderSize  = leafNextLeafOff + 4
)

// ── Common header ───────────────────────────────────────────────────────

func getNodeType(buf []byte) NodeType { return NodeType(buf[nodeTypeOff]) }

func setNodeType(buf []byte, t NodeType) { buf[nodeTypeOff] = byte(t) }

func isRoot(buf []byte) bool { return buf[isRootOff] != 0 }

func setIsRoot(buf []byte, v bool) {
	if v {
		buf[isRootOff] = 1
	} else {
		buf[isRootOff] = 0
	}
}

func nodeParent(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[parentPointerOff:])
}

func setNodeParent(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf[parentPointerOff:], v)
}

// ── Internal node ───────────────────────────────────────────────────────

func initializeInternal(buf []byte) {
	setNodeType(buf, NodeInternal)
	setIsRoot(buf, false)
	setInternalNumKeys(buf, 0)
	setInternalRightChild(buf, pager.InvalidPageNum)
}

func internalNumKeys(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[internalNumKeysOff:])
}

func setInternalNumKeys(buf []byte, n uint32) {
	binary.LittleEndian.PutUint32(buf[internalNumKeysOff:], n)
}

func internalRightChild(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[internalRightChildOff:])
}

func setInternalRightChild(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf[internalRightChildOff:], v)
}

func internalCellOffset(cellNum uint32) int {
	return internalHeaderSize + int(cellNum)*internalCellSize
}

// internalChild returns the page number of child childNum, where
// childNum == numKeys means "the right child" (matches original's
// internal_node_child, which treats childNum==numKeys specially).
func internalChild(buf []byte, childNum uint32) uint32 {
	numKeys := internalNumKeys(buf)
	if childNum == numKeys {
		return internalRightChild(buf)
	}
	off := internalCellOffset(childNum)
	return binary.LittleEndian.Uint32(buf[off:])
}

func setInternalChild(buf []byte, childNum uint32, v uint32) {
	numKeys := internalNumKeys(buf)
	if childNum == numKeys {
		setInternalRightChild(buf, v)
		return
	}
	off := internalCellOffset(childNum)
	binary.LittleEndian.PutUint32(buf[off:], v)
}

func internalKey(buf []byte, keyNum uint32) uint32 {
	off := internalCellOffset(keyNum) + internalChildSize
	return binary.LittleEndian.Uint32(buf[off:])
}

func setInternalKey(buf []byte, keyNum uint32, v uint32) {
	off := internalCellOffset(keyNum) + internalChildSize
	binary.LittleEndian.PutUint32(buf[off:], v)
}

func copyInternalCell(dst []byte, dstCell uint32, src []byte, srcCell uint32) {
	do := internalCellOffset(dstCell)
	so := internalCellOffset(srcCell)
	copy(dst[do:do+internalCellSize], src[so:so+internalCellSize])
}

// internalFindChild returns the smallest index i such that the key at
// internal cell i is >= key; that index's child is the subtree that may
// contain key (spec §4.5: "the smallest key_to_right >= search_key wins").
func internalFindChild(buf []byte, key uint32) uint32 {
	numKeys := internalNumKeys(buf)
	lo, hi := uint32(0), numKeys
	for lo != hi {
		mid := (lo + hi) / 2
		if internalKey(buf, mid) >= key {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// updateInternalKey finds the cell whose key equals oldKey and rewrites it
// to newKey — used when a child's max key changes after insert/delete.
func updateInternalKey(buf []byte, oldKey, newKey uint32) {
	idx := internalFindChild(buf, oldKey)
	setInternalKey(buf, idx, newKey)
}

// ── Leaf node ────────────────────────────────────────────────────────────

func initializeLeaf(buf []byte) {
	setNodeType(buf, NodeLeaf)
	setIsRoot(buf, false)
	setLeafNumCells(buf, 0)
	setLeafNextLeaf(buf, 0)
}

func leafNumCells(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[leafNumCellsOff:])
}

func setLeafNumCells(buf []byte, n uint32) {
	binary.LittleEndian.PutUint32(buf[leafNumCellsOff:], n)
}

func leafNextLeaf(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[leafNextLeafOff:])
}

func setLeafNextLeaf(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf[leafNextLeafOff:], v)
}

func leafCellSize(rowSize uint32) uint32 { return 4 + rowSize }

func leafCellOffset(rowSize uint32, cellNum uint32) int {
	return leafHeaderSize + int(cellNum)*int(leafCellSize(rowSize))
}

// LeafMaxCells returns how many {key,row} cells fit in one leaf page for
// the given row size.
func LeafMaxCells(rowSize uint32) uint32 {
	return uint32(pager.PageSize-leafHeaderSize) / leafCellSize(rowSize)
}

func leafKey(buf []byte, rowSize uint32, cellNum uint32) uint32 {
	off := leafCellOffset(rowSize, cellNum)
	return binary.LittleEndian.Uint32(buf[off:])
}

func setLeafKey(buf []byte, rowSize uint32, cellNum uint32, key uint32) {
	off := leafCellOffset(rowSize, cellNum)
	binary.LittleEndian.PutUint32(buf[off:], key)
}

func leafValue(buf []byte, rowSize uint32, cellNum uint32) []byte {
	off := leafCellOffset(rowSize, cellNum) + 4
	return buf[off : off+int(rowSize)]
}

func copyLeafCell(dst []byte, dstCell uint32, src []byte, srcCell uint32, rowSize uint32) {
	do := leafCellOffset(rowSize, dstCell)
	so := leafCellOffset(rowSize, srcCell)
	size := int(leafCellSize(rowSize))
	copy(dst[do:do+size], src[so:so+size])
}

func clearLeafCell(buf []byte, cellNum uint32, rowSize uint32) {
	off := leafCellOffset(rowSize, cellNum)
	size := int(leafCellSize(rowSize))
	for i := off; i < off+size; i++ {
		buf[i] = 0
	}
}
