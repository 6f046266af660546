package table

// Cursor tracks a position within the table's ordered scan: a page and a
// cell within that leaf page. EndOfTable is set once Advance walks off
// the last leaf.
type Cursor struct {
	table      *Table
	PageNum    uint32
	CellNum    uint32
	EndOfTable bool
}

// Start returns a cursor positioned at the first row of the table (the
// leftmost cell of the leftmost leaf), with EndOfTable set if the table
// is empty.
func Start(t *Table) (*Cursor, error) {
	cursor, err := t.Find(0)
	if err != nil {
		return nil, err
	}
	page, err := t.getPage(cursor.PageNum)
	if err != nil {
		return nil, err
	}
	cursor.EndOfTable = leafNumCells(page) == 0
	return cursor, nil
}

// Value returns the raw serialized row bytes at the cursor's current
// position. The returned slice aliases the page buffer: it stays valid
// until the pager is closed, and a later insert may rewrite its contents.
func (c *Cursor) Value() ([]byte, error) {
	page, err := c.table.getPage(c.PageNum)
	if err != nil {
		return nil, err
	}
	return leafValue(page, c.CellNum), nil
}

// Advance moves the cursor to the next cell in key order, following the
// leaf chain via nextLeaf when the current leaf is exhausted.
func (c *Cursor) Advance() error {
	page, err := c.table.getPage(c.PageNum)
	if err != nil {
		return err
	}
	c.CellNum++
	if c.CellNum >= leafNumCells(page) {
		next := leafNextLeaf(page)
		if next == 0 {
			c.EndOfTable = true
		} else {
			c.PageNum = next
			c.CellNum = 0
		}
	}
	return nil
}
