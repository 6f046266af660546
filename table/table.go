// Package table implements the on-disk B+ tree that backs the single
// fixed-schema table: node layout (layout.go, node.go), the tree
// algorithms (btree.go), the ordered cursor (cursor.go), the table
// handle (this file), and the diagnostic tree dump (print.go).
package table

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"flatbase/logging"
	"flatbase/pager"
)

// Table binds a pager to the single root page of the B+ tree. There is
// exactly one table per open database file.
type Table struct {
	Pager       *pager.Pager
	RootPageNum uint32
}

// Open opens or creates the database file at path and returns a Table
// positioned at its root page. A brand-new file gets an empty leaf node
// at page 0, marked as root.
func Open(path string) (*Table, error) {
	pgr, err := pager.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}

	t := &Table{Pager: pgr, RootPageNum: 0}

	if pgr.NumPages() == 0 {
		root, err := pgr.GetPage(0)
		if err != nil {
			return nil, fmt.Errorf("table: allocate root page: %w", err)
		}
		initializeLeafNode(root)
		setNodeRoot(root, true)
		logging.Tree.Debug("initialized new table with empty root leaf")
	}

	return t, nil
}

// Close flushes every resident page and releases the backing file.
func (t *Table) Close() error {
	if err := t.Pager.Close(); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	return nil
}

func (t *Table) getPage(pageNum uint32) (*pager.Page, error) {
	return t.Pager.GetPage(pageNum)
}

// nodeMaxKeyForPage returns the largest key stored under page, recursing
// through internal nodes via the table's pager.
func (t *Table) nodeMaxKeyForPage(page *pager.Page) (uint32, error) {
	return nodeMaxKey(page, t.getPage)
}

// createNewRoot handles the case where the current root has just been
// split: rightChildPageNum holds the freshly allocated sibling. The
// existing root's contents are copied into a new left-child page, the
// root page is reinitialized as an internal node with two children, and
// both children's parent pointers point back at the root. Returns the
// page number the old root's contents were copied to, since callers
// splitting an internal root need to keep operating on that page under
// its new identity.
func (t *Table) createNewRoot(rightChildPageNum uint32) (uint32, error) {
	root, err := t.getPage(t.RootPageNum)
	if err != nil {
		return 0, err
	}
	rightChild, err := t.getPage(rightChildPageNum)
	if err != nil {
		return 0, err
	}

	leftChildPageNum := t.Pager.GetUnusedPageNum()
	leftChild, err := t.getPage(leftChildPageNum)
	if err != nil {
		return 0, err
	}

	// Copy the old root's full contents into the new left child.
	leftChild.Data = root.Data
	leftChild.PageNum = leftChildPageNum
	setNodeRoot(leftChild, false)

	// If the copy is an internal node, every one of its children thought
	// its parent was t.RootPageNum; that page now holds a different node
	// (the new root), so the children's parent pointers must follow the
	// copy to its new page.
	if !isLeaf(leftChild) {
		numKeys := internalNumKeys(leftChild)
		for i := uint32(0); i <= numKeys; i++ {
			grandchild, err := t.getPage(internalChild(leftChild, i))
			if err != nil {
				return 0, err
			}
			setNodeParent(grandchild, leftChildPageNum)
		}
	}

	initializeInternalNode(root)
	setNodeRoot(root, true)
	setInternalNumKeys(root, 1)
	setInternalChild(root, 0, leftChildPageNum)
	leftMax, err := t.nodeMaxKeyForPage(leftChild)
	if err != nil {
		return 0, err
	}
	setInternalKey(root, 0, leftMax)
	setInternalRightChild(root, rightChildPageNum)

	setNodeParent(leftChild, t.RootPageNum)
	setNodeParent(rightChild, t.RootPageNum)

	logging.Tree.WithFields(logrus.Fields{
		"left": leftChildPageNum, "right": rightChildPageNum,
	}).Debug("split root, created new internal root")
	return leftChildPageNum, nil
}
