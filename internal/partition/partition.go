// Package partition implements the paged file partition: a regular file
// treated as an array of fixed-size pages, with pages allocated and freed
// through free-space indicator pages (FSIPs) and grown on demand.
package partition

import (
	"sync"

	"go.uber.org/zap"

	"github.com/finch-db/finchdb/internal/fsip"
	finchErrors "github.com/finch-db/finchdb/pkg/errors"
)

// BlockDevice is the pluggable physical backend a Partition drives: raw
// page-indexed reads, writes, and growth. This is the teacher's
// ParentBufMgr/ParentPage split, repurposed from page-cache pinning to
// block I/O — a Partition owns its own page cache-free semantics and
// simply needs somewhere to put bytes.
type BlockDevice interface {
	ReadAt(buf []byte, pageIndex uint32) error
	WriteAt(buf []byte, pageIndex uint32) error
	Truncate(numPages uint32) error
	NumPages() (uint32, error)
	Close() error

	// NewPageBuffer returns a fresh page.Size buffer suitable for this
	// device's ReadAt/WriteAt — for an O_DIRECT backend this must be
	// allocated block-aligned, so callers may never substitute a plain
	// make([]byte, page.Size) for a buffer that reaches the device.
	NewPageBuffer() []byte
}

// Remover is implemented by backends that can delete their underlying
// storage, used to honor options.Options.DeleteOnClose.
type Remover interface {
	Remove() error
}

const m1 = uint32(fsip.MaxManagedPages) + 1

// Partition is the paged-file abstraction: allocate_page/free_page/
// read_page/write_page over a BlockDevice, with the growable-vs-raw
// distinction from spec.md §9's "inheritance as polymorphism" note folded
// into a single implementation that branches on Growable in AllocatePage.
type Partition struct {
	mu            sync.Mutex
	dev           BlockDevice
	refCount      int
	growthPages   uint32
	growable      bool
	deleteOnClose bool
	logger        *zap.SugaredLogger
}

// Options configures a new Partition.
type Options struct {
	Growable      bool
	GrowthPages   uint32
	DeleteOnClose bool
	Logger        *zap.SugaredLogger
}

// New wraps dev as a Partition. The caller is responsible for having
// already formatted dev (see Format) if it is freshly created.
func New(dev BlockDevice, opts Options) *Partition {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Partition{
		dev:           dev,
		growthPages:   opts.GrowthPages,
		growable:      opts.Growable,
		deleteOnClose: opts.DeleteOnClose,
		logger:        logger,
	}
}

// Open increments the reference count. The first Open is a no-op beyond
// bookkeeping since the BlockDevice is already live by construction.
func (p *Partition) Open() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refCount++
}

// Close decrements the reference count, closing (and, if configured,
// removing) the underlying device once it reaches zero.
func (p *Partition) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refCount == 0 {
		return nil
	}
	p.refCount--
	if p.refCount > 0 {
		return nil
	}
	if err := p.dev.Close(); err != nil {
		return err
	}
	if p.deleteOnClose {
		if r, ok := p.dev.(Remover); ok {
			if err := r.Remove(); err != nil {
				p.logger.Warnw("failed to remove partition file on close", "error", err)
				return err
			}
		}
	}
	return nil
}

// NewPageBuffer returns a page.Size buffer sourced from the underlying
// device, safe to pass to ReadPage/WritePage regardless of backend.
func (p *Partition) NewPageBuffer() []byte {
	return p.dev.NewPageBuffer()
}

// ReadPage reads exactly page.Size bytes at pageIndex into buf.
func (p *Partition) ReadPage(buf []byte, pageIndex uint32) error {
	return p.dev.ReadAt(buf, pageIndex)
}

// WritePage writes exactly page.Size bytes from buf at pageIndex.
func (p *Partition) WritePage(buf []byte, pageIndex uint32) error {
	return p.dev.WriteAt(buf, pageIndex)
}

// Format writes successive FSIPs covering the entire partition of
// initialPages pages: each FSIP manages up to fsip.MaxManagedPages pages
// and starts at (M+1)*k.
func (p *Partition) Format(initialPages uint32) error {
	for idx := uint32(0); idx < initialPages; idx += m1 {
		managed := initialPages - idx - 1
		if managed > uint32(fsip.MaxManagedPages) {
			managed = uint32(fsip.MaxManagedPages)
		}
		buf := p.dev.NewPageBuffer()
		fsip.Initialize(buf, uint16(idx), managed)
		if err := p.dev.WriteAt(buf, idx); err != nil {
			return finchErrors.Wrap(err, finchErrors.CodeFile, "format partition: write FSIP").WithPageIndex(idx)
		}
	}
	return nil
}

// AllocatePage scans FSIPs in order for a free page. In the growable
// variant, exhausting every existing FSIP extends the file by
// growthPages and retries; in the raw (fixed-size) variant it fails with
// a PartitionFullError.
func (p *Partition) AllocatePage() (uint32, error) {
	fsipIdx := uint32(0)
	for {
		buf := p.dev.NewPageBuffer()
		if err := p.dev.ReadAt(buf, fsipIdx); err != nil {
			return 0, finchErrors.Wrap(err, finchErrors.CodeFile, "allocate page: read FSIP").WithPageIndex(fsipIdx)
		}
		fp := fsip.Attach(buf)
		if idx, ok := fp.Allocate(); ok {
			if err := p.dev.WriteAt(buf, fsipIdx); err != nil {
				return 0, finchErrors.Wrap(err, finchErrors.CodeFile, "allocate page: write FSIP").WithPageIndex(fsipIdx)
			}
			return idx, nil
		}

		numPages, err := p.dev.NumPages()
		if err != nil {
			return 0, finchErrors.Wrap(err, finchErrors.CodeFile, "allocate page: stat partition")
		}
		nextFsip := fsipIdx + m1
		if nextFsip < numPages {
			fsipIdx = nextFsip
			continue
		}
		if !p.growable {
			return 0, finchErrors.NewPartitionFull(buf, fsipIdx)
		}
		if err := p.grow(fsipIdx, buf, numPages); err != nil {
			return 0, err
		}
		p.logger.Debugw("grew partition", "fsip_index", fsipIdx, "growth_pages", p.growthPages)
	}
}

// grow extends the file by growthPages pages, updates the exhausted
// FSIP's managed range, and — if the growth didn't fully fit in that
// FSIP — initializes a successor FSIP for the remainder.
func (p *Partition) grow(fsipIdx uint32, fsipBuf []byte, numPagesBefore uint32) error {
	if err := p.dev.Truncate(numPagesBefore + p.growthPages); err != nil {
		return finchErrors.Wrap(err, finchErrors.CodeFile, "grow partition: extend file")
	}
	remainder := fsip.Grow(fsipBuf, p.growthPages)
	if err := p.dev.WriteAt(fsipBuf, fsipIdx); err != nil {
		return finchErrors.Wrap(err, finchErrors.CodeFile, "grow partition: write FSIP").WithPageIndex(fsipIdx)
	}
	if remainder == 0 {
		return nil
	}
	newFsipIdx := fsipIdx + m1
	managed := remainder
	if managed > uint32(fsip.MaxManagedPages) {
		managed = uint32(fsip.MaxManagedPages)
	}
	newBuf := p.dev.NewPageBuffer()
	fsip.Initialize(newBuf, uint16(newFsipIdx), managed)
	if err := p.dev.WriteAt(newBuf, newFsipIdx); err != nil {
		return finchErrors.Wrap(err, finchErrors.CodeFile, "grow partition: write new FSIP").WithPageIndex(newFsipIdx)
	}
	return nil
}

// FreePage clears the allocation bit for pageIndex in its governing FSIP.
func (p *Partition) FreePage(pageIndex uint32) error {
	fsipIdx := (pageIndex / m1) * m1
	buf := p.dev.NewPageBuffer()
	if err := p.dev.ReadAt(buf, fsipIdx); err != nil {
		return finchErrors.Wrap(err, finchErrors.CodeFile, "free page: read FSIP").WithPageIndex(fsipIdx)
	}
	fsip.Attach(buf).Free(pageIndex)
	if err := p.dev.WriteAt(buf, fsipIdx); err != nil {
		return finchErrors.Wrap(err, finchErrors.CodeFile, "free page: write FSIP").WithPageIndex(fsipIdx)
	}
	return nil
}
