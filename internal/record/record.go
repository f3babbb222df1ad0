// Package record implements the application-level (key, value) record:
// its in-memory write-entry shape (carrying a modification kind) and its
// on-disk encoding as two NUL-terminated byte strings concatenated
// together.
package record

import (
	"bytes"

	finchErrors "github.com/finch-db/finchdb/pkg/errors"
)

// Kind is a write entry's modification kind, the Go expression of the
// original's MOD enum.
type Kind int

const (
	Invalid Kind = iota
	Insert
	Update
	Delete
)

// Entry is a single write-buffer entry: a key, its value (unused for
// Delete), and the modification it represents.
type Entry struct {
	Key   string
	Value string
	Kind  Kind
}

// DiskSize returns the number of bytes Encode produces for this entry's
// key/value pair.
func (e Entry) DiskSize() int {
	return len(e.Key) + 1 + len(e.Value) + 1
}

// Encode writes key\0value\0 into buf, which must be at least
// len(key)+len(value)+2 bytes, and returns the number of bytes written.
func Encode(key, value string, buf []byte) int {
	n := copy(buf, key)
	buf[n] = 0
	n++
	n += copy(buf[n:], value)
	buf[n] = 0
	n++
	return n
}

// Decode parses key\0value\0 out of buf, which may be longer than the
// encoded record (trailing bytes, if any, are ignored).
func Decode(buf []byte) (key, value string, err error) {
	firstNul := bytes.IndexByte(buf, 0)
	if firstNul < 0 {
		return "", "", finchErrors.New(finchErrors.CodeFile, "malformed record: missing key terminator")
	}
	rest := buf[firstNul+1:]
	secondNul := bytes.IndexByte(rest, 0)
	if secondNul < 0 {
		return "", "", finchErrors.New(finchErrors.CodeFile, "malformed record: missing value terminator")
	}
	return string(buf[:firstNul]), string(rest[:secondNul]), nil
}
