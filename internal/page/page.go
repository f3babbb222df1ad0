// Package page holds the constants and small byte-level helpers shared by
// the FSIP and slotted-page interpreters: both read and write fixed-size
// page buffers and need the same alignment and page-indexing arithmetic.
package page

import "github.com/finch-db/finchdb/pkg/options"

// Size is the fixed on-disk page size in bytes.
const Size = options.PageSize

// Align8 rounds n up to the next multiple of 8, the record alignment the
// slotted page interpreter enforces.
func Align8(n int) int {
	return (n + 7) &^ 7
}
