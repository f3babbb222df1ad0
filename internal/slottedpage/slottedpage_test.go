package slottedpage

import (
	"testing"

	"github.com/finch-db/finchdb/internal/page"
)

func newBuf() []byte {
	return make([]byte, page.Size)
}

func TestInitialize(t *testing.T) {
	buf := newBuf()
	p := Initialize(buf, 7)
	h := p.ReadHeader()
	if h.PageIndex != 7 {
		t.Errorf("PageIndex = %d, want 7", h.PageIndex)
	}
	if h.NoRecords != 0 {
		t.Errorf("NoRecords = %d, want 0", h.NoRecords)
	}
	if h.FreeSpace != page.Size-HeaderSize {
		t.Errorf("FreeSpace = %d, want %d", h.FreeSpace, page.Size-HeaderSize)
	}
}

func TestAddRecordAndGetRecord(t *testing.T) {
	buf := newBuf()
	p := Initialize(buf, 0)

	payload := []byte("hello\x00world\x00")
	rec, slotNo, ok := p.AddRecord(len(payload))
	if !ok {
		t.Fatalf("AddRecord() ok = false, want true")
	}
	copy(rec, payload)

	got, ok := p.GetRecord(slotNo)
	if !ok {
		t.Fatalf("GetRecord() ok = false, want true")
	}
	if string(got[:len(payload)]) != string(payload) {
		t.Errorf("GetRecord() = %q, want %q", got[:len(payload)], payload)
	}
}

func TestAddRecordRespectsAlignmentAndAccounting(t *testing.T) {
	buf := newBuf()
	p := Initialize(buf, 0)

	before := p.FreeSpace()
	_, _, ok := p.AddRecord(5)
	if !ok {
		t.Fatalf("AddRecord() ok = false, want true")
	}
	after := p.FreeSpace()

	wantConsumed := page.Align8(5) + SlotSize
	if int(before-after) != wantConsumed {
		t.Errorf("FreeSpace consumed = %d, want %d", before-after, wantConsumed)
	}

	h := p.ReadHeader()
	identity := int(h.FreeSpace) + int(h.NextFreeSpace) + int(h.NoRecords)*SlotSize + HeaderSize
	if identity != page.Size {
		t.Errorf("page accounting identity = %d, want %d", identity, page.Size)
	}
}

func TestAddRecordFailsWhenPageFull(t *testing.T) {
	buf := newBuf()
	p := Initialize(buf, 0)

	count := 0
	for {
		if _, _, ok := p.AddRecord(64); !ok {
			break
		}
		count++
	}
	if count == 0 {
		t.Fatalf("AddRecord() failed immediately, want at least one success")
	}

	if _, _, ok := p.AddRecord(page.Size); ok {
		t.Errorf("AddRecord(page.Size) ok = true on a page with no room, want false")
	}
}

func TestSoftDeleteHidesRecord(t *testing.T) {
	buf := newBuf()
	p := Initialize(buf, 0)

	_, slotNo, ok := p.AddRecord(16)
	if !ok {
		t.Fatalf("AddRecord() ok = false, want true")
	}

	p.SoftDelete(slotNo)
	if _, ok := p.GetRecord(slotNo); ok {
		t.Errorf("GetRecord() after SoftDelete ok = true, want false")
	}
	if p.NoRecords() != 1 {
		t.Errorf("NoRecords() after SoftDelete = %d, want 1 (soft delete keeps the slot)", p.NoRecords())
	}
}

func TestGetRecordPrefixIntactAfterSubsequentRecord(t *testing.T) {
	buf := newBuf()
	p := Initialize(buf, 0)

	first := []byte("k1\x00v1\x00")
	rec1, slot1, ok := p.AddRecord(len(first))
	if !ok {
		t.Fatalf("AddRecord() first ok = false, want true")
	}
	copy(rec1, first)

	second := []byte("k2\x00v2longer-value\x00")
	rec2, _, ok := p.AddRecord(len(second))
	if !ok {
		t.Fatalf("AddRecord() second ok = false, want true")
	}
	copy(rec2, second)

	got, ok := p.GetRecord(slot1)
	if !ok {
		t.Fatalf("GetRecord() ok = false, want true")
	}
	if len(got) < len(first) || string(got[:len(first)]) != string(first) {
		t.Errorf("GetRecord(slot1) prefix = %q, want %q", got[:len(first)], first)
	}
}
