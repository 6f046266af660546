// Package row implements the fixed-width on-disk encoding of a table row:
// (id uint32, username string, email string).
package row

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Column byte budgets, matching the original schema's COL_SIZE_USERNAME
// and COL_SIZE_EMAIL. Each string column reserves one extra byte beyond
// its max length for a NUL terminator, as the source schema does.
const (
	MaxUsernameLen = 32
	MaxEmailLen    = 255

	sizeID       = 4
	sizeUsername = MaxUsernameLen + 1
	sizeEmail    = MaxEmailLen + 1

	offsetID       = 0
	offsetUsername = offsetID + sizeID
	offsetEmail    = offsetUsername + sizeUsername

	// Size is the total packed width of a row on disk.
	Size = sizeID + sizeUsername + sizeEmail
)

// Row is a single table record.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

// Validate enforces the column length bounds the parser is responsible
// for checking before a row ever reaches the tree (row/codec itself does
// not enforce length, per the node-layout design).
func (r Row) Validate() error {
	if len(r.Username) > MaxUsernameLen {
		return fmt.Errorf("row: username %q exceeds %d bytes", r.Username, MaxUsernameLen)
	}
	if len(r.Email) > MaxEmailLen {
		return fmt.Errorf("row: email %q exceeds %d bytes", r.Email, MaxEmailLen)
	}
	return nil
}

// Serialize copies r into dst at the fixed offsets, preserving the exact
// byte width of each field (including trailing bytes of shorter strings).
// dst must be exactly Size bytes.
func Serialize(r Row, dst []byte) error {
	if len(dst) != Size {
		return fmt.Errorf("row.Serialize: dst length %d, expected %d", len(dst), Size)
	}
	for i := range dst {
		dst[i] = 0
	}
	binary.LittleEndian.PutUint32(dst[offsetID:offsetID+sizeID], r.ID)
	copy(dst[offsetUsername:offsetUsername+sizeUsername], r.Username)
	copy(dst[offsetEmail:offsetEmail+sizeEmail], r.Email)
	return nil
}

// Deserialize is the inverse of Serialize. It does not enforce string
// length; that is the parser's job upstream.
func Deserialize(src []byte) (Row, error) {
	if len(src) != Size {
		return Row{}, fmt.Errorf("row.Deserialize: src length %d, expected %d", len(src), Size)
	}
	id := binary.LittleEndian.Uint32(src[offsetID : offsetID+sizeID])
	username := trimNUL(src[offsetUsername : offsetUsername+sizeUsername])
	email := trimNUL(src[offsetEmail : offsetEmail+sizeEmail])
	return Row{ID: id, Username: username, Email: email}, nil
}

func trimNUL(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
