package table

import (
	"fmt"
	"testing"

	"flatbase/row"
)

// checkNodeInvariants walks the whole tree from pageNum and verifies:
// every internal cell's stored key equals the max key of its child
// subtree, and every leaf's keys are strictly increasing.
func checkNodeInvariants(t *testing.T, tbl *Table, pageNum uint32) {
	t.Helper()
	page, err := tbl.getPage(pageNum)
	if err != nil {
		t.Fatalf("getPage(%d): %v", pageNum, err)
	}

	if isLeaf(page) {
		n := leafNumCells(page)
		for i := uint32(1); i < n; i++ {
			if leafKey(page, i-1) >= leafKey(page, i) {
				t.Fatalf("leaf %d: keys not strictly increasing at cell %d (%d >= %d)",
					pageNum, i, leafKey(page, i-1), leafKey(page, i))
			}
		}
		return
	}

	numKeys := internalNumKeys(page)
	for i := uint32(0); i < numKeys; i++ {
		childNum := internalChild(page, i)
		childPage, err := tbl.getPage(childNum)
		if err != nil {
			t.Fatalf("getPage(%d): %v", childNum, err)
		}
		gotMax, err := tbl.nodeMaxKeyForPage(childPage)
		if err != nil {
			t.Fatalf("nodeMaxKeyForPage: %v", err)
		}
		if wantMax := internalKey(page, i); gotMax != wantMax {
			t.Fatalf("internal %d: cell %d key = %d, want max(child)=%d", pageNum, i, wantMax, gotMax)
		}
		checkNodeInvariants(t, tbl, childNum)
	}
	checkNodeInvariants(t, tbl, internalRightChild(page))
}

// leftmostLeaf descends from the root through each internal node's first
// child and returns the page number of the leftmost leaf.
func leftmostLeaf(t *testing.T, tbl *Table) uint32 {
	t.Helper()
	pageNum := tbl.RootPageNum
	for {
		page, err := tbl.getPage(pageNum)
		if err != nil {
			t.Fatalf("getPage(%d): %v", pageNum, err)
		}
		if isLeaf(page) {
			return pageNum
		}
		pageNum = internalChild(page, 0)
	}
}

func TestNodeInvariantsAfterDeepInserts(t *testing.T) {
	tbl, _ := openTestTable(t)
	for id := uint32(1); id <= 32; id++ {
		insertRow(t, tbl, row.Row{ID: id, Username: fmt.Sprintf("u%d", id), Email: "e"})
	}
	checkNodeInvariants(t, tbl, tbl.RootPageNum)
}

func TestNextLeafChainCoversEveryLeafInOrder(t *testing.T) {
	tbl, _ := openTestTable(t)
	for id := uint32(1); id <= 40; id++ {
		insertRow(t, tbl, row.Row{ID: id, Username: "u", Email: "e"})
	}

	pageNum := leftmostLeaf(t, tbl)
	var lastKey uint32
	first := true
	seen := map[uint32]bool{}
	count := 0
	for {
		if seen[pageNum] {
			t.Fatalf("next_leaf chain revisited page %d", pageNum)
		}
		seen[pageNum] = true

		page, err := tbl.getPage(pageNum)
		if err != nil {
			t.Fatalf("getPage(%d): %v", pageNum, err)
		}
		n := leafNumCells(page)
		for i := uint32(0); i < n; i++ {
			key := leafKey(page, i)
			if !first && key <= lastKey {
				t.Fatalf("next_leaf chain out of order: %d after %d", key, lastKey)
			}
			lastKey = key
			first = false
			count++
		}

		next := leafNextLeaf(page)
		if next == 0 {
			break
		}
		pageNum = next
	}
	if count != 40 {
		t.Fatalf("next_leaf chain covered %d keys, want 40", count)
	}
}

func TestInsertAfterReopenContinuesTree(t *testing.T) {
	tbl, path := openTestTable(t)
	for id := uint32(1); id <= 20; id++ {
		insertRow(t, tbl, row.Row{ID: id, Username: "u", Email: "e"})
	}
	if err := tbl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	for id := uint32(21); id <= 40; id++ {
		insertRow(t, reopened, row.Row{ID: id, Username: "u", Email: "e"})
	}

	got := scanAll(t, reopened)
	if len(got) != 40 {
		t.Fatalf("scan returned %d rows, want 40", len(got))
	}
	for i, r := range got {
		if r.ID != uint32(i+1) {
			t.Fatalf("scan[%d].ID = %d, want %d", i, r.ID, i+1)
		}
	}
	checkNodeInvariants(t, reopened, reopened.RootPageNum)
}
