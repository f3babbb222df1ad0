// Package fsip implements the free-space indicator page: a bitmap-over-a-
// page view that tracks the allocation state of the M data pages that
// follow it, where M = (page.Size - HeaderSize) * 8. Bit i of the bitmap
// is 0 when the data page at absolute index (pageIndex + 1 + i) is free
// and 1 when it is allocated; bit ordering within a byte is LSB-first so
// bit j of byte b addresses page offset 8*b + j.
package fsip

import (
	"encoding/binary"
	"math/bits"

	"github.com/finch-db/finchdb/internal/page"
)

// HeaderSize is the fixed 16-byte header living at the page tail.
const HeaderSize = 16

// MaxManagedPages (M) is the number of data pages a single FSIP can
// track: one bit per page across the bitmap region.
const MaxManagedPages = (page.Size - HeaderSize) * 8

const bitmapWords = (page.Size - HeaderSize) / 4

// Header is the FSIP's fixed-size tail metadata.
type Header struct {
	FreeBlocks   uint32
	NextFreePage uint32
	ManagedPages uint32
	PageIndex    uint16
}

// Page is an FSIP-interpreting view over a raw page buffer. It does not
// own the buffer; callers read it from / write it to a partition.
type Page struct {
	buf []byte
}

// Attach wraps buf (which must be exactly page.Size bytes) as an FSIP.
func Attach(buf []byte) *Page {
	return &Page{buf: buf}
}

func (p *Page) headerOffset() int { return page.Size - HeaderSize }

// ReadHeader decodes the page's tail header.
func (p *Page) ReadHeader() Header {
	b := p.buf[p.headerOffset():]
	return Header{
		FreeBlocks:   binary.LittleEndian.Uint32(b[0:4]),
		NextFreePage: binary.LittleEndian.Uint32(b[4:8]),
		ManagedPages: binary.LittleEndian.Uint32(b[8:12]),
		PageIndex:    binary.LittleEndian.Uint16(b[12:14]),
	}
}

func (p *Page) writeHeader(h Header) {
	b := p.buf[p.headerOffset():]
	binary.LittleEndian.PutUint32(b[0:4], h.FreeBlocks)
	binary.LittleEndian.PutUint32(b[4:8], h.NextFreePage)
	binary.LittleEndian.PutUint32(b[8:12], h.ManagedPages)
	binary.LittleEndian.PutUint16(b[12:14], h.PageIndex)
	binary.LittleEndian.PutUint16(b[14:16], 0)
}

func (p *Page) word(i uint32) uint32 {
	return binary.LittleEndian.Uint32(p.buf[i*4 : i*4+4])
}

func (p *Page) setWord(i uint32, v uint32) {
	binary.LittleEndian.PutUint32(p.buf[i*4:i*4+4], v)
}

// Initialize formats buf as a fresh FSIP managing managedPages data pages
// (managedPages must be <= MaxManagedPages). Bits [0, managedPages) are
// cleared (free); bits [managedPages, MaxManagedPages) are set (reserved,
// unused). After return FreeBlocks == managedPages and NextFreePage == 0.
func Initialize(buf []byte, pageIndex uint16, managedPages uint32) *Page {
	p := Attach(buf)
	fullWords := managedPages / 32
	var i uint32
	for ; i < fullWords; i++ {
		p.setWord(i, 0)
	}
	if i < bitmapWords {
		mask := ^uint32(0) << (managedPages % 32)
		p.setWord(i, mask)
		i++
	}
	for ; i < bitmapWords; i++ {
		p.setWord(i, ^uint32(0))
	}
	p.writeHeader(Header{
		FreeBlocks:   managedPages,
		NextFreePage: 0,
		ManagedPages: managedPages,
		PageIndex:    pageIndex,
	})
	return p
}

// Allocate claims the page at NextFreePage, returning its absolute page
// index. ok is false when FreeBlocks == 0 (FULL).
func (p *Page) Allocate() (pageIndex uint32, ok bool) {
	h := p.ReadHeader()
	if h.FreeBlocks == 0 {
		return 0, false
	}
	pos := h.NextFreePage
	word := pos / 32
	bit := pos % 32
	p.setWord(word, p.word(word)|(1<<bit))
	h.FreeBlocks--
	h.NextFreePage = p.findNextFreePage(h)
	p.writeHeader(h)
	return pos + 1 + uint32(h.PageIndex), true
}

// Free clears the bit for the given absolute page index, the inverse of
// Allocate.
func (p *Page) Free(absolutePageIndex uint32) {
	h := p.ReadHeader()
	relative := absolutePageIndex - uint32(h.PageIndex) - 1
	word := relative / 32
	bit := relative % 32
	p.setWord(word, p.word(word)&^(1<<bit))
	if relative < h.NextFreePage {
		h.NextFreePage = relative
	}
	h.FreeBlocks++
	p.writeHeader(h)
}

// Reserve sets the bit for the given absolute page index without
// returning it from NextFreePage's cursor, for a page whose index is
// already known. Partition.Format does not call it.
func (p *Page) Reserve(absolutePageIndex uint32) {
	h := p.ReadHeader()
	relative := absolutePageIndex - uint32(h.PageIndex) - 1
	word := relative / 32
	bit := relative % 32
	p.setWord(word, p.word(word)|(1<<bit))
	h.FreeBlocks--
	h.NextFreePage = p.findNextFreePage(h)
	p.writeHeader(h)
}

// Grow extends the managed range by up to (MaxManagedPages - ManagedPages)
// pages, returning how many of pagesToAdd could not fit and must be
// managed by a successor FSIP.
func Grow(buf []byte, pagesToAdd uint32) (remainder uint32) {
	p := Attach(buf)
	h := p.ReadHeader()
	freeOnThisPage := MaxManagedPages - h.ManagedPages
	if freeOnThisPage == 0 {
		return pagesToAdd
	}

	fits := pagesToAdd <= freeOnThisPage
	var toFree uint32
	if fits {
		toFree = pagesToAdd
	} else {
		toFree = freeOnThisPage
	}
	h.FreeBlocks += toFree

	start := h.ManagedPages
	remaining := toFree
	if start%8 != 0 {
		byteIdx := start / 8
		lead := 8 - (start % 8)
		n := lead
		if n > remaining {
			n = remaining
		}
		var mask byte
		for b := uint32(0); b < n; b++ {
			mask |= 1 << ((start % 8) + b)
		}
		p.buf[byteIdx] &^= mask
		remaining -= n
		start += n
	}
	for remaining >= 8 {
		p.buf[start/8] = 0
		remaining -= 8
		start += 8
	}
	if remaining > 0 {
		byteIdx := start / 8
		var mask byte
		for b := uint32(0); b < remaining; b++ {
			mask |= 1 << b
		}
		p.buf[byteIdx] &^= mask
	}

	h.NextFreePage = h.ManagedPages
	if fits {
		h.ManagedPages += pagesToAdd
		p.writeHeader(h)
		return 0
	}
	h.ManagedPages = MaxManagedPages
	p.writeHeader(h)
	return pagesToAdd - freeOnThisPage
}

// findNextFreePage scans 32-bit words from the current word onward for
// the lowest zero bit, little-endian within each word (bit 0 of word w is
// page 32*w). Returns 0 if the bitmap has no zero bit (caller must check
// FreeBlocks before relying on this).
func (p *Page) findNextFreePage(h Header) uint32 {
	startWord := h.NextFreePage / 32
	for j := startWord; j < bitmapWords; j++ {
		inverted := ^p.word(j)
		if inverted != 0 {
			return j*32 + uint32(bits.TrailingZeros32(inverted))
		}
	}
	return 0
}
