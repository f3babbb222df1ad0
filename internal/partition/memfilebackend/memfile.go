// Package memfilebackend implements partition.BlockDevice over an
// in-memory buffer, so the core engine's tests exercise the same
// Partition/FSIP/slotted-page code paths as production without touching
// a real file — the teacher's ParentBufMgrDummy/ParentPageDummy pattern,
// repurposed onto a real in-memory file emulation instead of a bespoke
// sync.Map.
package memfilebackend

import (
	"github.com/dsnet/golib/memfile"

	"github.com/finch-db/finchdb/internal/page"
	finchErrors "github.com/finch-db/finchdb/pkg/errors"
)

// Device is a partition.BlockDevice backed by a memfile.File.
type Device struct {
	f *memfile.File
}

// New returns an empty in-memory Device.
func New() *Device {
	return &Device{f: memfile.New(nil)}
}

// NewPageBuffer satisfies partition.BlockDevice. An in-memory file has no
// alignment requirement, so a plain buffer is fine here.
func (d *Device) NewPageBuffer() []byte {
	return make([]byte, page.Size)
}

func (d *Device) ReadAt(buf []byte, pageIndex uint32) error {
	n, err := d.f.ReadAt(buf, int64(pageIndex)*page.Size)
	if err != nil || n != len(buf) {
		return finchErrors.Wrap(err, finchErrors.CodeFile, "partial or failed page read").WithPageIndex(pageIndex)
	}
	return nil
}

func (d *Device) WriteAt(buf []byte, pageIndex uint32) error {
	n, err := d.f.WriteAt(buf, int64(pageIndex)*page.Size)
	if err != nil || n != len(buf) {
		return finchErrors.Wrap(err, finchErrors.CodeFile, "partial or failed page write").WithPageIndex(pageIndex)
	}
	return nil
}

func (d *Device) Truncate(numPages uint32) error {
	if err := d.f.Truncate(int64(numPages) * page.Size); err != nil {
		return finchErrors.Wrap(err, finchErrors.CodeFile, "extend in-memory partition")
	}
	return nil
}

func (d *Device) NumPages() (uint32, error) {
	return uint32(len(d.f.Bytes())) / page.Size, nil
}

func (d *Device) Close() error {
	return nil
}
