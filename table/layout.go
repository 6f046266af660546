package table

import (
	"flatbase/pager"
	"flatbase/row"
)

// Node type tags (§3 common node header, byte 0).
const (
	nodeTypeInternal uint8 = 0
	nodeTypeLeaf     uint8 = 1
)

// Common node header layout: type(1) + isRoot(1) + parentPage(4).
const (
	typeOffset       = 0
	typeSize         = 1
	isRootOffset     = typeOffset + typeSize
	isRootSize       = 1
	parentOffset     = isRootOffset + isRootSize
	parentSize       = 4
	commonHeaderSize = typeSize + isRootSize + parentSize // 6
)

// Leaf node header layout: common header + numCells(4) + nextLeaf(4).
const (
	leafNumCellsOffset = commonHeaderSize
	leafNumCellsSize   = 4
	leafNextLeafOffset = leafNumCellsOffset + leafNumCellsSize
	leafNextLeafSize   = 4
	leafHeaderSize     = commonHeaderSize + leafNumCellsSize + leafNextLeafSize // 14
)

// Leaf node body layout: an array of (key uint32, value row.Size bytes) cells.
const (
	leafKeySize   = 4
	leafValueSize = row.Size
	leafCellSize  = leafKeySize + leafValueSize

	leafSpaceForCells = pager.PageSize - leafHeaderSize
	// LeafMaxCells is the maximum number of cells a leaf page can hold.
	LeafMaxCells = leafSpaceForCells / leafCellSize

	// LeafRightSplitCount and LeafLeftSplitCount divide a full leaf
	// (LeafMaxCells+1 cells, counting the one being inserted) between the
	// new right leaf and the old left leaf during a split.
	LeafRightSplitCount = (LeafMaxCells + 1) / 2
	LeafLeftSplitCount  = (LeafMaxCells + 1) - LeafRightSplitCount
)

// Internal node header layout: common header + numKeys(4) + rightChild(4).
const (
	internalNumKeysOffset = commonHeaderSize
	internalNumKeysSize   = 4
	internalRightChildOffset = internalNumKeysOffset + internalNumKeysSize
	internalRightChildSize  = 4
	internalHeaderSize      = commonHeaderSize + internalNumKeysSize + internalRightChildSize // 14
)

// Internal node body layout: an array of (childPage uint32, key uint32) cells.
const (
	internalChildSize = 4
	internalKeySize   = 4
	internalCellSize  = internalChildSize + internalKeySize

	// InternalMaxCells is kept low and fixed, to force splits during
	// testing, as the original schema does.
	InternalMaxCells = 3
)

// invalidPage is the sentinel for "uninitialized" used transiently while
// an internal node's right child is being reassigned during a split.
const invalidPage uint32 = 0xFFFFFFFF
