package table

import (
	"encoding/binary"

	"flatbase/pager"
	"flatbase/row"
)

// This file implements the node accessors as pure byte-offset functions
// over a *pager.Page, rather than an in-memory node struct: the page's
// byte layout is the only representation a node has, read and written in
// place, the same way the page cache hands pages to callers.

var order = binary.LittleEndian

// --- common header ---------------------------------------------------

func nodeType(p *pager.Page) uint8 { return p.Data[typeOffset] }

func setNodeType(p *pager.Page, t uint8) { p.Data[typeOffset] = t }

func isLeaf(p *pager.Page) bool { return nodeType(p) == nodeTypeLeaf }

func isNodeRoot(p *pager.Page) bool { return p.Data[isRootOffset] != 0 }

func setNodeRoot(p *pager.Page, isRoot bool) {
	var b byte
	if isRoot {
		b = 1
	}
	p.Data[isRootOffset] = b
}

func nodeParent(p *pager.Page) uint32 {
	return order.Uint32(p.Data[parentOffset : parentOffset+parentSize])
}

func setNodeParent(p *pager.Page, parent uint32) {
	order.PutUint32(p.Data[parentOffset:parentOffset+parentSize], parent)
}

// --- leaf node ---------------------------------------------------------

func leafNumCells(p *pager.Page) uint32 {
	return order.Uint32(p.Data[leafNumCellsOffset : leafNumCellsOffset+leafNumCellsSize])
}

func setLeafNumCells(p *pager.Page, n uint32) {
	order.PutUint32(p.Data[leafNumCellsOffset:leafNumCellsOffset+leafNumCellsSize], n)
}

func leafNextLeaf(p *pager.Page) uint32 {
	return order.Uint32(p.Data[leafNextLeafOffset : leafNextLeafOffset+leafNextLeafSize])
}

func setLeafNextLeaf(p *pager.Page, next uint32) {
	order.PutUint32(p.Data[leafNextLeafOffset:leafNextLeafOffset+leafNextLeafSize], next)
}

func leafCellOffset(cellNum uint32) int {
	return leafHeaderSize + int(cellNum)*leafCellSize
}

func leafKey(p *pager.Page, cellNum uint32) uint32 {
	off := leafCellOffset(cellNum)
	return order.Uint32(p.Data[off : off+leafKeySize])
}

func setLeafKey(p *pager.Page, cellNum uint32, key uint32) {
	off := leafCellOffset(cellNum)
	order.PutUint32(p.Data[off:off+leafKeySize], key)
}

func leafValue(p *pager.Page, cellNum uint32) []byte {
	off := leafCellOffset(cellNum) + leafKeySize
	return p.Data[off : off+leafValueSize]
}

func leafCell(p *pager.Page, cellNum uint32) []byte {
	off := leafCellOffset(cellNum)
	return p.Data[off : off+leafCellSize]
}

func initializeLeafNode(p *pager.Page) {
	setNodeType(p, nodeTypeLeaf)
	setNodeRoot(p, false)
	setLeafNumCells(p, 0)
	setLeafNextLeaf(p, 0) // 0 doubles as "no sibling", since page 0 is always the root
}

// --- internal node -------------------------------------------------------

func internalNumKeys(p *pager.Page) uint32 {
	return order.Uint32(p.Data[internalNumKeysOffset : internalNumKeysOffset+internalNumKeysSize])
}

func setInternalNumKeys(p *pager.Page, n uint32) {
	order.PutUint32(p.Data[internalNumKeysOffset:internalNumKeysOffset+internalNumKeysSize], n)
}

func internalRightChild(p *pager.Page) uint32 {
	return order.Uint32(p.Data[internalRightChildOffset : internalRightChildOffset+internalRightChildSize])
}

func setInternalRightChild(p *pager.Page, child uint32) {
	order.PutUint32(p.Data[internalRightChildOffset:internalRightChildOffset+internalRightChildSize], child)
}

func internalCellOffset(cellNum uint32) int {
	return internalHeaderSize + int(cellNum)*internalCellSize
}

func internalChild(p *pager.Page, cellNum uint32) uint32 {
	numKeys := internalNumKeys(p)
	if cellNum > numKeys {
		panic("table: internal child index out of bounds")
	}
	if cellNum == numKeys {
		return internalRightChild(p)
	}
	off := internalCellOffset(cellNum)
	return order.Uint32(p.Data[off : off+internalChildSize])
}

func setInternalChild(p *pager.Page, cellNum uint32, child uint32) {
	numKeys := internalNumKeys(p)
	if cellNum > numKeys {
		panic("table: internal child index out of bounds")
	}
	if cellNum == numKeys {
		setInternalRightChild(p, child)
		return
	}
	off := internalCellOffset(cellNum)
	order.PutUint32(p.Data[off:off+internalChildSize], child)
}

func internalKey(p *pager.Page, cellNum uint32) uint32 {
	off := internalCellOffset(cellNum) + internalChildSize
	return order.Uint32(p.Data[off : off+internalKeySize])
}

func setInternalKey(p *pager.Page, cellNum uint32, key uint32) {
	off := internalCellOffset(cellNum) + internalChildSize
	order.PutUint32(p.Data[off:off+internalKeySize], key)
}

func initializeInternalNode(p *pager.Page) {
	setNodeType(p, nodeTypeInternal)
	setNodeRoot(p, false)
	setInternalNumKeys(p, 0)
	// Sentinel: no right child assigned yet.
	setInternalRightChild(p, invalidPage)
}

// nodeMaxKey returns the largest key reachable under p. For a leaf this is
// its last cell's key; for an internal node it's the max key of its
// rightmost child, found recursively.
func nodeMaxKey(pgr *pager.Page, get func(uint32) (*pager.Page, error)) (uint32, error) {
	if isLeaf(pgr) {
		n := leafNumCells(pgr)
		if n == 0 {
			return 0, nil
		}
		return leafKey(pgr, n-1), nil
	}
	rightChild, err := get(internalRightChild(pgr))
	if err != nil {
		return 0, err
	}
	return nodeMaxKey(rightChild, get)
}
