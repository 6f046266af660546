package table

import (
	"github.com/sirupsen/logrus"

	"flatbase/logging"
	"flatbase/pager"
)

// Find descends the tree from the root looking for key, and returns a
// Cursor positioned either at that key (if present) or at the position
// where it would be inserted.
func (t *Table) Find(key uint32) (*Cursor, error) {
	root, err := t.getPage(t.RootPageNum)
	if err != nil {
		return nil, err
	}
	if isLeaf(root) {
		return t.leafFind(t.RootPageNum, key)
	}
	return t.internalFind(t.RootPageNum, key)
}

// leafFind binary-searches the leaf at pageNum for key.
func (t *Table) leafFind(pageNum uint32, key uint32) (*Cursor, error) {
	page, err := t.getPage(pageNum)
	if err != nil {
		return nil, err
	}
	numCells := leafNumCells(page)

	lo, hi := uint32(0), numCells
	for lo < hi {
		mid := lo + (hi-lo)/2
		midKey := leafKey(page, mid)
		if key == midKey {
			return &Cursor{table: t, PageNum: pageNum, CellNum: mid}, nil
		}
		if key < midKey {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return &Cursor{table: t, PageNum: pageNum, CellNum: lo}, nil
}

// internalFindChildIndex returns the index of the child that should
// contain key: the first cell whose key is >= key, or numKeys (the
// right child) if key exceeds every cell's key.
func internalFindChildIndex(page *pager.Page, key uint32) uint32 {
	numKeys := internalNumKeys(page)
	lo, hi := uint32(0), numKeys
	for lo < hi {
		mid := lo + (hi-lo)/2
		if internalKey(page, mid) >= key {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// internalFind descends through the internal node at pageNum toward key.
func (t *Table) internalFind(pageNum uint32, key uint32) (*Cursor, error) {
	page, err := t.getPage(pageNum)
	if err != nil {
		return nil, err
	}
	childIndex := internalFindChildIndex(page, key)
	childPageNum := internalChild(page, childIndex)
	childPage, err := t.getPage(childPageNum)
	if err != nil {
		return nil, err
	}
	if isLeaf(childPage) {
		return t.leafFind(childPageNum, key)
	}
	return t.internalFind(childPageNum, key)
}

// Insert places key/value at cursor's leaf, splitting the leaf (and, by
// propagation, any ancestor internal nodes) as needed.
func (t *Table) Insert(cursor *Cursor, key uint32, value []byte) error {
	page, err := t.getPage(cursor.PageNum)
	if err != nil {
		return err
	}

	if leafNumCells(page) >= LeafMaxCells {
		return t.leafSplitAndInsert(cursor, key, value)
	}

	numCells := leafNumCells(page)
	for i := numCells; i > cursor.CellNum; i-- {
		copy(leafCell(page, i), leafCell(page, i-1))
	}
	setLeafNumCells(page, numCells+1)
	setLeafKey(page, cursor.CellNum, key)
	copy(leafValue(page, cursor.CellNum), value)
	return nil
}

// leafSplitAndInsert splits a full leaf into two, distributing its
// LeafMaxCells existing cells plus the one being inserted between the
// old (left) and a freshly allocated new (right) leaf, then propagates
// the split upward.
func (t *Table) leafSplitAndInsert(cursor *Cursor, key uint32, value []byte) error {
	oldPage, err := t.getPage(cursor.PageNum)
	if err != nil {
		return err
	}
	oldMax, err := t.nodeMaxKeyForPage(oldPage)
	if err != nil {
		return err
	}

	newPageNum := t.Pager.GetUnusedPageNum()
	newPage, err := t.getPage(newPageNum)
	if err != nil {
		return err
	}
	initializeLeafNode(newPage)
	setNodeParent(newPage, nodeParent(oldPage))
	setLeafNextLeaf(newPage, leafNextLeaf(oldPage))
	setLeafNextLeaf(oldPage, newPageNum)

	for i := int(LeafMaxCells); i >= 0; i-- {
		var dest *pager.Page
		if uint32(i) >= LeafLeftSplitCount {
			dest = newPage
		} else {
			dest = oldPage
		}
		indexWithinNode := uint32(i) % LeafLeftSplitCount

		switch {
		case uint32(i) == cursor.CellNum:
			setLeafKey(dest, indexWithinNode, key)
			copy(leafValue(dest, indexWithinNode), value)
		case uint32(i) > cursor.CellNum:
			copy(leafCell(dest, indexWithinNode), leafCell(oldPage, uint32(i-1)))
		default:
			copy(leafCell(dest, indexWithinNode), leafCell(oldPage, uint32(i)))
		}
	}

	setLeafNumCells(oldPage, LeafLeftSplitCount)
	setLeafNumCells(newPage, LeafRightSplitCount)

	logging.Tree.WithFields(logrus.Fields{
		"old_page": cursor.PageNum, "new_page": newPageNum,
	}).Debug("split leaf node")

	if isNodeRoot(oldPage) {
		_, err := t.createNewRoot(newPageNum)
		return err
	}

	parentPageNum := nodeParent(oldPage)
	parentPage, err := t.getPage(parentPageNum)
	if err != nil {
		return err
	}
	newMax, err := t.nodeMaxKeyForPage(oldPage)
	if err != nil {
		return err
	}
	updateInternalKey(parentPage, oldMax, newMax)
	return t.internalInsert(parentPageNum, newPageNum)
}

// internalInsert adds a pointer to childPageNum into the internal node at
// parentPageNum, splitting it first if it is already full.
func (t *Table) internalInsert(parentPageNum uint32, childPageNum uint32) error {
	parentPage, err := t.getPage(parentPageNum)
	if err != nil {
		return err
	}
	childPage, err := t.getPage(childPageNum)
	if err != nil {
		return err
	}
	childMaxKey, err := t.nodeMaxKeyForPage(childPage)
	if err != nil {
		return err
	}

	index := internalFindChildIndex(parentPage, childMaxKey)
	originalNumKeys := internalNumKeys(parentPage)

	if originalNumKeys >= InternalMaxCells {
		return t.internalSplitAndInsert(parentPageNum, childPageNum)
	}

	// Grow numKeys before touching any cell slots: internalChild/setInternalChild
	// treat cellNum == numKeys as "the right child", so the slot at index
	// original_num_keys only becomes an addressable keyed cell once numKeys
	// reflects the post-insert count.
	setInternalNumKeys(parentPage, originalNumKeys+1)

	rightChildPageNum := internalRightChild(parentPage)
	rightChildPage, err := t.getPage(rightChildPageNum)
	if err != nil {
		return err
	}
	rightChildMaxKey, err := t.nodeMaxKeyForPage(rightChildPage)
	if err != nil {
		return err
	}

	if childMaxKey > rightChildMaxKey {
		// The new child becomes the rightmost; the old right child takes
		// the last keyed cell slot.
		setInternalChild(parentPage, originalNumKeys, rightChildPageNum)
		setInternalKey(parentPage, originalNumKeys, rightChildMaxKey)
		setInternalRightChild(parentPage, childPageNum)
	} else {
		for i := originalNumKeys; i > index; i-- {
			copy(parentPage.Data[internalCellOffset(i):internalCellOffset(i)+internalCellSize],
				parentPage.Data[internalCellOffset(i-1):internalCellOffset(i-1)+internalCellSize])
		}
		setInternalChild(parentPage, index, childPageNum)
		setInternalKey(parentPage, index, childMaxKey)
	}
	setNodeParent(childPage, parentPageNum)
	return nil
}

// moveChildInto transfers an existing child (already wired under some
// other node) to become part of newPage, as either its first right_child
// (if newPage is still empty) or its new smallest-keyed cell otherwise.
// Callers always move children in strictly descending max-key order, so
// "prepend as the smallest cell" is always the correct placement.
func (t *Table) moveChildInto(newPage *pager.Page, newPageNum uint32, childPageNum uint32) error {
	childPage, err := t.getPage(childPageNum)
	if err != nil {
		return err
	}

	if internalRightChild(newPage) == invalidPage && internalNumKeys(newPage) == 0 {
		setInternalRightChild(newPage, childPageNum)
	} else {
		childMax, err := t.nodeMaxKeyForPage(childPage)
		if err != nil {
			return err
		}
		numKeys := internalNumKeys(newPage)
		// Grow numKeys first, for the same reason internalInsert does:
		// setInternalChild(newPage, 0, ...) must land on a keyed cell,
		// not be reinterpreted as the right-child slot.
		setInternalNumKeys(newPage, numKeys+1)
		for i := numKeys; i > 0; i-- {
			copy(newPage.Data[internalCellOffset(i):internalCellOffset(i)+internalCellSize],
				newPage.Data[internalCellOffset(i-1):internalCellOffset(i-1)+internalCellSize])
		}
		setInternalChild(newPage, 0, childPageNum)
		setInternalKey(newPage, 0, childMax)
	}
	setNodeParent(childPage, newPageNum)
	return nil
}

// internalSplitAndInsert splits a full internal node into old (which
// keeps its page number) and a freshly allocated new. If old is the
// root, it is demoted first via createNewRoot, which moves its current
// contents to a new page — everything below operates on that page under
// the name oldPageNum from that point on.
//
// The upper half of old's children (its right_child and the cells above
// the midpoint) are moved into new, in descending max-key order, so each
// lands as new's right_child or new smallest cell in turn. Old's last
// remaining cell is then promoted to become its own right_child. The
// pending insert goes to whichever of {old, new} should contain its max
// key, and the grandparent's key entry for old is repaired to reflect
// old's new (smaller) max key.
func (t *Table) internalSplitAndInsert(oldPageNum uint32, childPageNum uint32) error {
	old, err := t.getPage(oldPageNum)
	if err != nil {
		return err
	}
	oldWasRoot := isNodeRoot(old)
	oldMax, err := t.nodeMaxKeyForPage(old)
	if err != nil {
		return err
	}

	newPageNum := t.Pager.GetUnusedPageNum()
	newPage, err := t.getPage(newPageNum)
	if err != nil {
		return err
	}
	initializeInternalNode(newPage)

	var parentPageNum uint32
	if oldWasRoot {
		leftPageNum, err := t.createNewRoot(newPageNum)
		if err != nil {
			return err
		}
		oldPageNum = leftPageNum
		old, err = t.getPage(oldPageNum)
		if err != nil {
			return err
		}
		parentPageNum = t.RootPageNum
	} else {
		parentPageNum = nodeParent(old)
		setNodeParent(newPage, parentPageNum)
	}

	oldRightChildPageNum := internalRightChild(old)
	if err := t.moveChildInto(newPage, newPageNum, oldRightChildPageNum); err != nil {
		return err
	}
	setInternalRightChild(old, invalidPage)

	half := uint32(InternalMaxCells) / 2
	for i := uint32(InternalMaxCells) - 1; i > half; i-- {
		movedPageNum := internalChild(old, i)
		if err := t.moveChildInto(newPage, newPageNum, movedPageNum); err != nil {
			return err
		}
		setInternalNumKeys(old, internalNumKeys(old)-1)
	}

	lastIdx := internalNumKeys(old) - 1
	promoted := internalChild(old, lastIdx)
	setInternalRightChild(old, promoted)
	setInternalNumKeys(old, lastIdx)

	maxAfterSplit, err := t.nodeMaxKeyForPage(old)
	if err != nil {
		return err
	}
	child, err := t.getPage(childPageNum)
	if err != nil {
		return err
	}
	childMax, err := t.nodeMaxKeyForPage(child)
	if err != nil {
		return err
	}

	logging.Tree.WithFields(logrus.Fields{
		"old_page": oldPageNum, "new_page": newPageNum,
	}).Debug("split internal node")

	if childMax < maxAfterSplit {
		if err := t.internalInsert(oldPageNum, childPageNum); err != nil {
			return err
		}
	} else {
		if err := t.internalInsert(newPageNum, childPageNum); err != nil {
			return err
		}
	}

	// The parent's (or, if old was the root, the new root's) key entry
	// for old always needs repairing to old's new, smaller max key — this
	// happens whether or not old itself was the root.
	grandparentPage, err := t.getPage(parentPageNum)
	if err != nil {
		return err
	}
	newOldMax, err := t.nodeMaxKeyForPage(old)
	if err != nil {
		return err
	}
	updateInternalKey(grandparentPage, oldMax, newOldMax)

	if oldWasRoot {
		return nil
	}
	return t.internalInsert(parentPageNum, newPageNum)
}

// updateInternalKey finds the cell whose key equals oldKey and rewrites
// it to newKey — called after a child's max key has shifted because that
// child (or one of its descendants) just split.
func updateInternalKey(page *pager.Page, oldKey uint32, newKey uint32) {
	index := internalFindChildIndex(page, oldKey)
	if index < internalNumKeys(page) {
		setInternalKey(page, index, newKey)
	}
	// If index == numKeys, oldKey belonged to the right child, whose
	// identity (and key) is implicit and needs no rewrite here.
}

// duplicateKeyExists reports whether the cell at cursor (as returned by
// Find) holds key; the executor uses it, via DuplicateKey, to reject
// duplicate inserts.
func duplicateKeyExists(cursor *Cursor, key uint32) (bool, error) {
	page, err := cursor.table.getPage(cursor.PageNum)
	if err != nil {
		return false, err
	}
	if cursor.CellNum >= leafNumCells(page) {
		return false, nil
	}
	return leafKey(page, cursor.CellNum) == key, nil
}

// DuplicateKey reports whether key is already present at cursor's
// position, as returned by Table.Find.
func DuplicateKey(cursor *Cursor, key uint32) (bool, error) {
	return duplicateKeyExists(cursor, key)
}
