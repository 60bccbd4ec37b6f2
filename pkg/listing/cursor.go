package listing

import (
	"strconv"

	"github.com/recordbase/backend/pkg/utils"
)

// Cursor is a pagination continuation token: either a BlobCursor or an IntegerCursor. Which
// one is usable depends on the type of the relation's record key column.
type Cursor interface {
	// Value returns the value to bind against the record key column.
	Value() any
}

// BlobCursor references a 16 byte blob key such as a UUIDv7.
type BlobCursor []byte

// IntegerCursor references an integer key.
type IntegerCursor int64

func (c BlobCursor) Value() any    { return []byte(c) }
func (c IntegerCursor) Value() any { return int64(c) }

// ParseCursor decodes a cursor, trying the base64 id encoding first and a base-10 integer
// second. ok is false if neither applies, in which case listing starts from the beginning.
func ParseCursor(value string) (Cursor, bool) {
	if id, err := utils.Base64ToID(value); err == nil {
		return BlobCursor(id[:]), true
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return IntegerCursor(n), true
	}
	return nil, false
}
