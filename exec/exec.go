// Package exec translates parsed insert/select commands into table
// operations: resolve a cursor via Table.Find, then either write through
// it (insert) or walk it to completion (select).
package exec

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"flatbase/logging"
	"flatbase/row"
	"flatbase/table"
)

// ErrDuplicateKey is returned by Insert when the row's id is already
// present; the caller reports it and continues, per the REPL's error
// handling design — this is not a fatal condition.
var ErrDuplicateKey = fmt.Errorf("duplicate key")

// Insert resolves r.ID's position in the tree and writes r there,
// rejecting the insert if that id is already present.
func Insert(t *table.Table, r row.Row) error {
	if err := r.Validate(); err != nil {
		return err
	}

	cursor, err := t.Find(r.ID)
	if err != nil {
		return fmt.Errorf("exec: insert: %w", err)
	}

	dup, err := table.DuplicateKey(cursor, r.ID)
	if err != nil {
		return fmt.Errorf("exec: insert: %w", err)
	}
	if dup {
		return ErrDuplicateKey
	}

	buf := make([]byte, row.Size)
	if err := row.Serialize(r, buf); err != nil {
		return fmt.Errorf("exec: insert: %w", err)
	}

	if err := t.Insert(cursor, r.ID, buf); err != nil {
		return fmt.Errorf("exec: insert: %w", err)
	}

	logging.Tree.WithFields(logrus.Fields{"id": r.ID}).Debug("row inserted")
	return nil
}

// Select walks the whole table in key order, writing one "(id, username,
// email)" line per row to w.
func Select(t *table.Table, w io.Writer) error {
	cursor, err := table.Start(t)
	if err != nil {
		return fmt.Errorf("exec: select: %w", err)
	}

	for !cursor.EndOfTable {
		buf, err := cursor.Value()
		if err != nil {
			return fmt.Errorf("exec: select: %w", err)
		}
		r, err := row.Deserialize(buf)
		if err != nil {
			return fmt.Errorf("exec: select: %w", err)
		}
		if _, err := fmt.Fprintf(w, "(%d, %s, %s)\n", r.ID, r.Username, r.Email); err != nil {
			return fmt.Errorf("exec: select: %w", err)
		}
		if err := cursor.Advance(); err != nil {
			return fmt.Errorf("exec: select: %w", err)
		}
	}
	return nil
}
