// Package storage implements the storage manager: the persistent back
// end owning one partition plus an in-memory hash index from key hash to
// record locator (page, slot), batching writes handed to it by the write
// manager and serving point lookups.
package storage

import (
	"hash/fnv"

	"go.uber.org/zap"

	"github.com/finch-db/finchdb/internal/latch"
	"github.com/finch-db/finchdb/internal/partition"
	"github.com/finch-db/finchdb/internal/record"
	"github.com/finch-db/finchdb/internal/slottedpage"
	finchErrors "github.com/finch-db/finchdb/pkg/errors"
)

// TID (Tuple Identifier) locates a persisted record.
type TID struct {
	PageIndex uint32
	Slot      uint16
}

// Manager is the storage manager: one partition, one hash multimap.
type Manager struct {
	mu     latch.RWLatch
	part   *partition.Partition
	index  map[uint64][]TID
	logger *zap.SugaredLogger
}

// New constructs a Manager over an already-open partition.
func New(part *partition.Partition, logger *zap.SugaredLogger) *Manager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{
		part:   part,
		index:  make(map[uint64][]TID),
		logger: logger,
	}
}

func hashKey(key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return h.Sum64()
}

// WriteToDisk drains batch to the partition. It deduplicates the batch
// into the latest entry per key (mirroring std::unordered_map::
// insert_or_assign — iteration order after dedup is unspecified), signals
// sync so the write manager may swap buffers again immediately, then
// performs the actual page I/O without holding the write manager's locks.
// batch itself is not modified; the write manager detaches it from its
// flush buffer before calling.
//
// Known durability gap (spec.md §9): there is no WAL. If the process
// crashes after this method soft-deletes a record on disk but before the
// caller observes success, a restart has no way to tell the delete
// happened — the index itself is in-memory only and is rebuilt from
// nothing on restart in this design. This is accepted scope, not fixed
// here.
func (m *Manager) WriteToDisk(batch []record.Entry, sync *latch.SyncFlag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	distinct := make(map[string]record.Entry, len(batch))
	for _, e := range batch {
		distinct[e.Key] = e
	}

	sync.SetAndNotify()

	m.part.Open()
	defer m.part.Close()

	pageIdx, err := m.part.AllocatePage()
	if err != nil {
		return err
	}
	buf := m.part.NewPageBuffer()
	sp := slottedpage.Initialize(buf, uint16(pageIdx))

	for _, kv := range distinct {
		switch kv.Kind {
		case record.Insert, record.Update:
			if err := m.insertOne(&pageIdx, &buf, &sp, kv); err != nil {
				return err
			}
		case record.Delete:
			if err := m.deleteOne(kv); err != nil {
				return err
			}
		}
	}

	if err := m.part.WritePage(buf, pageIdx); err != nil {
		return err
	}
	return nil
}

func (m *Manager) insertOne(pageIdx *uint32, buf *[]byte, sp **slottedpage.Page, kv record.Entry) error {
	for {
		rec, slotNo, ok := (*sp).AddRecord(kv.DiskSize())
		if ok {
			record.Encode(kv.Key, kv.Value, rec)
			m.index[hashKey(kv.Key)] = append(m.index[hashKey(kv.Key)], TID{PageIndex: *pageIdx, Slot: slotNo})
			return nil
		}
		if err := m.part.WritePage(*buf, *pageIdx); err != nil {
			return err
		}
		newIdx, err := m.part.AllocatePage()
		if err != nil {
			return err
		}
		*pageIdx = newIdx
		*buf = m.part.NewPageBuffer()
		*sp = slottedpage.Initialize(*buf, uint16(newIdx))
	}
}

func (m *Manager) deleteOne(kv record.Entry) error {
	h := hashKey(kv.Key)
	tids := m.index[h]
	remaining := tids[:0]
	for _, tid := range tids {
		buf := m.part.NewPageBuffer()
		if err := m.part.ReadPage(buf, tid.PageIndex); err != nil {
			return err
		}
		sp := slottedpage.Attach(buf)
		rec, ok := sp.GetRecord(tid.Slot)
		if !ok {
			remaining = append(remaining, tid)
			continue
		}
		key, _, err := record.Decode(rec)
		if err != nil {
			return err
		}
		if key != kv.Key {
			remaining = append(remaining, tid)
			continue
		}
		sp.SoftDelete(tid.Slot)
		if err := m.part.WritePage(buf, tid.PageIndex); err != nil {
			return err
		}
	}
	if len(remaining) == 0 {
		delete(m.index, h)
	} else {
		m.index[h] = remaining
	}
	return nil
}

// Get probes the index for key, iterating matching entries in reverse
// insertion order (latest-wins) until one's on-disk key matches exactly.
func (m *Manager) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tids := m.index[hashKey(key)]
	if len(tids) == 0 {
		return "", finchErrors.New(finchErrors.CodeKeyNotInStorage, "Requested key was not found in the storage manager.")
	}

	m.part.Open()
	defer m.part.Close()

	for i := len(tids) - 1; i >= 0; i-- {
		tid := tids[i]
		buf := m.part.NewPageBuffer()
		if err := m.part.ReadPage(buf, tid.PageIndex); err != nil {
			return "", err
		}
		sp := slottedpage.Attach(buf)
		rec, ok := sp.GetRecord(tid.Slot)
		if !ok {
			continue
		}
		k, v, err := record.Decode(rec)
		if err != nil {
			return "", err
		}
		if k == key {
			return v, nil
		}
	}
	return "", finchErrors.New(finchErrors.CodeKeyNotInStorage, "Requested key was not found in the storage manager.")
}
