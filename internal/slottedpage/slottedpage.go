// Package slottedpage implements the data-page record layout: records
// grow from the page start upward, the slot directory grows from the
// page tail downward, and deletion is soft (a sentinel slot value) with
// no compaction — fragmentation from deletes is accepted permanently,
// never reclaimed.
package slottedpage

import (
	"encoding/binary"

	"github.com/finch-db/finchdb/internal/page"
)

// HeaderSize is the fixed 8-byte header living at the page tail.
const HeaderSize = 8

// SlotSize is the fixed 2-byte slot directory entry size.
const SlotSize = 2

// Deleted is the sentinel slot offset marking a soft-deleted record.
const Deleted = 0xFFFF

// Header is the slotted page's fixed-size tail metadata.
type Header struct {
	PageIndex     uint16
	NoRecords     uint16
	FreeSpace     uint16
	NextFreeSpace uint16
}

// Page is a slotted-page-interpreting view over a raw page buffer.
type Page struct {
	buf []byte
}

// Attach wraps buf (which must be exactly page.Size bytes) as a slotted
// page, without altering its contents.
func Attach(buf []byte) *Page {
	return &Page{buf: buf}
}

func (p *Page) headerOffset() int { return page.Size - HeaderSize }

// ReadHeader decodes the page's tail header.
func (p *Page) ReadHeader() Header {
	b := p.buf[p.headerOffset():]
	return Header{
		PageIndex:     binary.LittleEndian.Uint16(b[0:2]),
		NoRecords:     binary.LittleEndian.Uint16(b[2:4]),
		FreeSpace:     binary.LittleEndian.Uint16(b[4:6]),
		NextFreeSpace: binary.LittleEndian.Uint16(b[6:8]),
	}
}

func (p *Page) writeHeader(h Header) {
	b := p.buf[p.headerOffset():]
	binary.LittleEndian.PutUint16(b[0:2], h.PageIndex)
	binary.LittleEndian.PutUint16(b[2:4], h.NoRecords)
	binary.LittleEndian.PutUint16(b[4:6], h.FreeSpace)
	binary.LittleEndian.PutUint16(b[6:8], h.NextFreeSpace)
}

func slotOffset(i uint16) int {
	return page.Size - HeaderSize - (int(i)+1)*SlotSize
}

func (p *Page) readSlot(i uint16) uint16 {
	o := slotOffset(i)
	return binary.LittleEndian.Uint16(p.buf[o : o+2])
}

func (p *Page) writeSlot(i uint16, offset uint16) {
	o := slotOffset(i)
	binary.LittleEndian.PutUint16(p.buf[o:o+2], offset)
}

// Initialize formats buf as a fresh, empty slotted page for pageIndex.
func Initialize(buf []byte, pageIndex uint16) *Page {
	p := Attach(buf)
	p.writeHeader(Header{
		PageIndex:     pageIndex,
		NoRecords:     0,
		FreeSpace:     page.Size - HeaderSize,
		NextFreeSpace: 0,
	})
	return p
}

// FreeSpace returns the page's contiguous free byte count.
func (p *Page) FreeSpace() uint16 {
	return p.ReadHeader().FreeSpace
}

// NoRecords returns the number of slots on the page, including soft
// deleted ones.
func (p *Page) NoRecords() uint16 {
	return p.ReadHeader().NoRecords
}

// AddRecord reserves size bytes (rounded up to 8-byte alignment) for a
// new record and returns the byte range to write it into plus its slot
// number. ok is false if the record (plus its slot) would not fit in the
// page's current free space; the caller must never attempt to split a
// record across pages.
func (p *Page) AddRecord(size int) (rec []byte, slotNo uint16, ok bool) {
	aligned := page.Align8(size)
	total := aligned + SlotSize
	h := p.ReadHeader()
	if total > int(h.FreeSpace) {
		return nil, 0, false
	}
	offset := h.NextFreeSpace
	rec = p.buf[offset : int(offset)+aligned]
	slotNo = h.NoRecords

	h.NextFreeSpace += uint16(aligned)
	h.FreeSpace -= uint16(total)
	h.NoRecords++
	p.writeHeader(h)
	p.writeSlot(slotNo, offset)
	return rec, slotNo, true
}

// SoftDelete marks slotNo deleted. The record's bytes are not reclaimed —
// there is no compaction/GC in this design, so the space is never
// reclaimed.
func (p *Page) SoftDelete(slotNo uint16) {
	p.writeSlot(slotNo, Deleted)
}

// GetRecord returns the byte slice for slotNo, or ok=false if the slot
// number is out of range or the slot is soft-deleted. Callers must know
// the record's length independently (the record codec is responsible for
// finding its own end, e.g. by NUL terminators).
func (p *Page) GetRecord(slotNo uint16) (rec []byte, ok bool) {
	if slotNo >= p.NoRecords() {
		return nil, false
	}
	offset := p.readSlot(slotNo)
	if offset == Deleted {
		return nil, false
	}
	h := p.ReadHeader()
	slotDirStart := page.Size - HeaderSize - int(h.NoRecords)*SlotSize
	return p.buf[offset:slotDirStart], true
}
