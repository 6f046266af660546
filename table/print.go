package table

import (
	"fmt"

	"github.com/xlab/treeprint"

	"flatbase/pager"
)

// PrintTree renders the whole tree as an indented diagnostic dump,
// starting from the root. Every node prints "leaf (size N)" or
// "internal (size N)" followed by its keys (leaf) or its per-child
// subtrees interleaved with "key K" markers (internal) — including an
// internal node with zero keys, whose single right child is still
// recursed into rather than skipped.
func (t *Table) PrintTree() (string, error) {
	tree := treeprint.New()
	if err := t.addNodeBranch(tree, t.RootPageNum); err != nil {
		return "", err
	}
	return tree.String(), nil
}

func (t *Table) addNodeBranch(parent treeprint.Tree, pageNum uint32) error {
	page, err := t.getPage(pageNum)
	if err != nil {
		return err
	}

	if isLeaf(page) {
		return addLeafBranch(parent, page)
	}
	return t.addInternalBranch(parent, page)
}

func addLeafBranch(parent treeprint.Tree, page *pager.Page) error {
	numCells := leafNumCells(page)
	branch := parent.AddBranch(fmt.Sprintf("leaf (size %d)", numCells))
	for i := uint32(0); i < numCells; i++ {
		branch.AddNode(fmt.Sprintf("%d", leafKey(page, i)))
	}
	return nil
}

func (t *Table) addInternalBranch(parent treeprint.Tree, page *pager.Page) error {
	numKeys := internalNumKeys(page)
	branch := parent.AddBranch(fmt.Sprintf("internal (size %d)", numKeys))

	// Every child slot, including when numKeys is 0, is visited: an
	// internal node always has numKeys+1 children and none are skipped.
	for i := uint32(0); i < numKeys; i++ {
		if err := t.addNodeBranch(branch, internalChild(page, i)); err != nil {
			return err
		}
		branch.AddNode(fmt.Sprintf("key %d", internalKey(page, i)))
	}
	return t.addNodeBranch(branch, internalRightChild(page))
}
