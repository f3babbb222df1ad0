package fsip

import (
	"testing"

	"github.com/finch-db/finchdb/internal/page"
)

func newBuf() []byte {
	return make([]byte, page.Size)
}

func TestInitialize(t *testing.T) {
	buf := newBuf()
	p := Initialize(buf, 0, 100)
	h := p.ReadHeader()
	if h.FreeBlocks != 100 {
		t.Errorf("FreeBlocks = %d, want 100", h.FreeBlocks)
	}
	if h.ManagedPages != 100 {
		t.Errorf("ManagedPages = %d, want 100", h.ManagedPages)
	}
	if h.NextFreePage != 0 {
		t.Errorf("NextFreePage = %d, want 0", h.NextFreePage)
	}
}

func TestAllocateAdvancesNextFreePage(t *testing.T) {
	buf := newBuf()
	p := Initialize(buf, 0, 4)

	first, ok := p.Allocate()
	if !ok {
		t.Fatalf("Allocate() ok = false, want true")
	}
	if first != 1 {
		t.Errorf("first allocated page = %d, want 1", first)
	}

	second, ok := p.Allocate()
	if !ok || second != 2 {
		t.Errorf("second allocated page = %d, ok = %v, want 2, true", second, ok)
	}

	h := p.ReadHeader()
	if h.FreeBlocks != 2 {
		t.Errorf("FreeBlocks after two allocations = %d, want 2", h.FreeBlocks)
	}
}

func TestAllocateUntilFull(t *testing.T) {
	buf := newBuf()
	p := Initialize(buf, 0, 3)
	for i := 0; i < 3; i++ {
		if _, ok := p.Allocate(); !ok {
			t.Fatalf("Allocate() failed on iteration %d, want success", i)
		}
	}
	if _, ok := p.Allocate(); ok {
		t.Errorf("Allocate() on exhausted FSIP ok = true, want false")
	}
}

func TestFreeMakesPageReallocatable(t *testing.T) {
	buf := newBuf()
	p := Initialize(buf, 0, 2)

	a, _ := p.Allocate()
	b, _ := p.Allocate()
	if _, ok := p.Allocate(); ok {
		t.Fatalf("Allocate() on full FSIP ok = true, want false")
	}

	p.Free(a)
	h := p.ReadHeader()
	if h.FreeBlocks != 1 {
		t.Errorf("FreeBlocks after Free = %d, want 1", h.FreeBlocks)
	}

	reused, ok := p.Allocate()
	if !ok || reused != a {
		t.Errorf("Allocate() after Free = (%d, %v), want (%d, true)", reused, ok, a)
	}
	_ = b
}

func TestGrowWithinSinglePage(t *testing.T) {
	buf := newBuf()
	Initialize(buf, 0, 10)

	remainder := Grow(buf, 5)
	if remainder != 0 {
		t.Fatalf("remainder = %d, want 0", remainder)
	}

	p := Attach(buf)
	h := p.ReadHeader()
	if h.ManagedPages != 15 {
		t.Errorf("ManagedPages after grow = %d, want 15", h.ManagedPages)
	}
	if h.FreeBlocks != 15 {
		t.Errorf("FreeBlocks after grow = %d, want 15", h.FreeBlocks)
	}

	for i := 0; i < 15; i++ {
		if _, ok := p.Allocate(); !ok {
			t.Fatalf("Allocate() failed on iteration %d after grow, want success", i)
		}
	}
	if _, ok := p.Allocate(); ok {
		t.Errorf("Allocate() after exhausting grown FSIP ok = true, want false")
	}
}

func TestGrowOverflowsToRemainder(t *testing.T) {
	buf := newBuf()
	Initialize(buf, 0, MaxManagedPages-2)

	remainder := Grow(buf, 5)
	if remainder != 3 {
		t.Errorf("remainder = %d, want 3", remainder)
	}

	p := Attach(buf)
	h := p.ReadHeader()
	if h.ManagedPages != MaxManagedPages {
		t.Errorf("ManagedPages after overflowing grow = %d, want %d", h.ManagedPages, MaxManagedPages)
	}
}

func TestReserveMarksPageAllocated(t *testing.T) {
	buf := newBuf()
	p := Initialize(buf, 0, 10)
	p.Reserve(5)

	h := p.ReadHeader()
	if h.FreeBlocks != 9 {
		t.Errorf("FreeBlocks after Reserve = %d, want 9", h.FreeBlocks)
	}

	for i := 0; i < 9; i++ {
		pg, ok := p.Allocate()
		if !ok {
			t.Fatalf("Allocate() failed on iteration %d, want success", i)
		}
		if pg == 5 {
			t.Errorf("Allocate() returned reserved page 5")
		}
	}
}
